package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/andyle182810/shippingeasy/params"
)

var ErrMissingCredentials = errors.New("signature: api key and secret are required")

const (
	ParamAPIKey       = "api_key"
	ParamAPITimestamp = "api_timestamp"
	ParamAPISignature = "api_signature"
)

type Credentials struct {
	Key    string
	Secret string
}

// Signer turns request intent into a ready-to-send absolute URL.
type Signer interface {
	Sign(method, path string, query params.Value, payload params.Value, creds Credentials) (string, error)
}

type SignerFunc func(method, path string, query params.Value, payload params.Value, creds Credentials) (string, error)

func (f SignerFunc) Sign(method, path string, query params.Value, payload params.Value, creds Credentials) (string, error) {
	return f(method, path, query, payload, creds)
}

var _ Signer = (*HMACSigner)(nil)

// HMACSigner signs requests with a hex HMAC-SHA256 of
// "METHOD&path&sorted-query&json-body" keyed by the API secret.
type HMACSigner struct {
	baseURL string
	now     func() time.Time
}

type Option func(*HMACSigner)

func WithClock(now func() time.Time) Option {
	return func(s *HMACSigner) {
		if now != nil {
			s.now = now
		}
	}
}

func NewHMACSigner(baseURL string, opts ...Option) *HMACSigner {
	s := &HMACSigner{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *HMACSigner) Sign(method, path string, query params.Value, payload params.Value, creds Credentials) (string, error) {
	if creds.Key == "" || creds.Secret == "" {
		return "", ErrMissingCredentials
	}

	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	signed := sortedQuery(query).
		With(ParamAPIKey, params.String(creds.Key)).
		With(ParamAPITimestamp, params.Int(s.now().Unix()))
	signed = sortedQuery(signed)

	body, err := payloadBody(payload)
	if err != nil {
		return "", err
	}

	plaintext := strings.Join([]string{strings.ToUpper(method), path, params.Encode(signed), body}, "&")
	signed = signed.With(ParamAPISignature, params.String(Digest(creds.Secret, plaintext)))

	return s.baseURL + path + "?" + params.Encode(signed), nil
}

// Digest returns the hex HMAC-SHA256 of plaintext keyed by secret.
func Digest(secret, plaintext string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(plaintext))

	return hex.EncodeToString(mac.Sum(nil))
}

func payloadBody(payload params.Value) (string, error) {
	if payload.IsEmpty() {
		return "", nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("signature: encode payload: %w", err)
	}

	return string(data), nil
}

// sortedQuery orders the top-level entries of a mapping by key so the
// signature does not depend on how the caller built the query.
func sortedQuery(query params.Value) params.Value {
	var entries []params.Entry

	switch query.Kind() {
	case params.KindMapping:
		entries = query.Entries()
	case params.KindSequence:
		for i, item := range query.Items() {
			entries = append(entries, params.KV(strconv.Itoa(i), item))
		}
	case params.KindNull, params.KindScalar:
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Key < entries[j].Key
	})

	return params.Map(entries...)
}
