package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/andyle182810/shippingeasy/config"
	"github.com/andyle182810/shippingeasy/httpclient"
	"github.com/andyle182810/shippingeasy/logutil"
	"github.com/andyle182810/shippingeasy/params"
	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	accountStore   = "store"
	accountPartner = "partner"
)

var errUsage = errors.New("usage: shippingeasy [-account store|partner] [-param key=value ...] [-payload file.json] METHOD PATH")

type paramFlags []string

func (p *paramFlags) String() string {
	return strings.Join(*p, "&")
}

func (p *paramFlags) Set(value string) error {
	if !strings.Contains(value, "=") {
		return fmt.Errorf("param %q is not key=value", value)
	}

	*p = append(*p, value)

	return nil
}

type invocation struct {
	account string
	method  string
	path    string
	query   params.Value
	payload params.Value
}

func main() {
	if err := run(); err != nil {
		logFailure(err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log.Logger = logutil.New(cfg.LogLevel, cfg.LogPretty)

	inv, err := parseArgs(os.Args[1:], os.Stdin)
	if err != nil {
		return err
	}

	registry := newRegistry(cfg, log.Logger)

	client, err := registry.Client(inv.account)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := client.Request(ctx, httpclient.Request{
		Method:      inv.method,
		Path:        inv.path,
		Params:      inv.query,
		Payload:     inv.payload,
		Credentials: nil,
	})
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(result); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}

	return nil
}

func newRegistry(cfg *config.Config, logger zerolog.Logger) *httpclient.Registry {
	registry := httpclient.NewRegistry(cfg.ClientConfig(), logger).
		Register(accountStore, cfg.Credentials())

	if partner, ok := cfg.PartnerCredentials(); ok {
		registry.Register(accountPartner, partner)
	}

	return registry
}

// parseArgs reads the payload from stdin when -payload is "-".
func parseArgs(args []string, stdin io.Reader) (invocation, error) {
	fs := flag.NewFlagSet("shippingeasy", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var queryFlags paramFlags

	account := fs.String("account", accountStore, "named account: store or partner")
	payloadFile := fs.String("payload", "", "JSON file holding the request body, - for stdin")
	fs.Var(&queryFlags, "param", "query parameter as key=value, repeatable")

	if err := fs.Parse(args); err != nil {
		return invocation{}, fmt.Errorf("%w: %w", errUsage, err)
	}

	if fs.NArg() != 2 { //nolint:mnd
		return invocation{}, errUsage
	}

	payload, err := readPayload(*payloadFile, stdin)
	if err != nil {
		return invocation{}, err
	}

	return invocation{
		account: *account,
		method:  fs.Arg(0),
		path:    fs.Arg(1),
		query:   buildQuery(queryFlags),
		payload: payload,
	}, nil
}

// buildQuery keeps flag order. Keys ending in [] accumulate into a list.
func buildQuery(pairs []string) params.Value {
	if len(pairs) == 0 {
		return params.Null()
	}

	query := params.Map()

	for _, pair := range pairs {
		key, value, _ := strings.Cut(pair, "=")

		listKey, isList := strings.CutSuffix(key, "[]")
		if !isList {
			query = query.With(key, params.String(value))

			continue
		}

		existing, _ := query.Get(listKey)
		items := append(existing.Items(), params.String(value))
		query = query.With(listKey, params.List(items...))
	}

	return query
}

func readPayload(path string, stdin io.Reader) (params.Value, error) {
	var (
		data []byte
		err  error
	)

	switch path {
	case "":
		return params.Null(), nil
	case "-":
		data, err = io.ReadAll(stdin)
	default:
		data, err = os.ReadFile(path)
	}

	if err != nil {
		return params.Null(), fmt.Errorf("failed to read payload: %w", err)
	}

	payload, err := params.Parse(data)
	if err != nil {
		return params.Null(), fmt.Errorf("failed to parse payload: %w", err)
	}

	return payload, nil
}

func logFailure(err error) {
	apiErr, ok := httpclient.AsError(err)
	if !ok {
		log.Error().Err(err).Msg("Request failed")

		return
	}

	event := log.Error().
		Str("kind", apiErr.Kind.String()).
		Str("request_id", apiErr.RequestID)

	if apiErr.HTTPStatus > 0 {
		event = event.Int("status", apiErr.HTTPStatus)
	}

	if items := apiErr.ErrorItems(); len(items) > 0 {
		event = event.Interface("errors", items)
	}

	event.Msg(apiErr.Message)
}
