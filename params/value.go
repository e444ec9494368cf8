package params

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"
)

var ErrUnsupportedType = errors.New("params: unsupported value type")

type Kind uint8

const (
	KindNull Kind = iota
	KindScalar
	KindSequence
	KindMapping
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindScalar:
		return "scalar"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	default:
		return "unknown"
	}
}

// Value is an immutable nested request value: null, scalar, sequence or an
// ordered mapping. The zero Value is Null.
type Value struct {
	kind    Kind
	text    string
	literal bool // text is a raw JSON literal (number or boolean)
	items   []Value
	entries []Entry
}

type Entry struct {
	Key   string
	Value Value
}

func Null() Value {
	return Value{} //nolint:exhaustruct
}

func String(s string) Value {
	return Value{kind: KindScalar, text: s, literal: false, items: nil, entries: nil}
}

func Int(i int64) Value {
	return literal(strconv.FormatInt(i, 10))
}

func Uint(u uint64) Value {
	return literal(strconv.FormatUint(u, 10))
}

func Float(f float64) Value {
	return literal(strconv.FormatFloat(f, 'f', -1, 64))
}

// Bool encodes as "true" or "false" in both JSON and query strings. Servers
// expecting PHP-style query booleans ("1" and "") need String("1") or
// String("") instead.
func Bool(b bool) Value {
	return literal(strconv.FormatBool(b))
}

func Decimal(d decimal.Decimal) Value {
	return literal(d.String())
}

func List(items ...Value) Value {
	return Value{kind: KindSequence, text: "", literal: false, items: append([]Value(nil), items...), entries: nil}
}

func Map(entries ...Entry) Value {
	return Value{kind: KindMapping, text: "", literal: false, items: nil, entries: append([]Entry(nil), entries...)}
}

func KV(key string, value Value) Entry {
	return Entry{Key: key, Value: value}
}

func literal(text string) Value {
	return Value{kind: KindScalar, text: text, literal: true, items: nil, entries: nil}
}

func (v Value) Kind() Kind {
	return v.kind
}

func (v Value) IsNull() bool {
	return v.kind == KindNull
}

func (v Value) IsComposite() bool {
	return v.kind == KindSequence || v.kind == KindMapping
}

// IsEmpty reports whether v is null or a composite without entries.
func (v Value) IsEmpty() bool {
	return v.kind == KindNull || (v.IsComposite() && v.Len() == 0)
}

func (v Value) Len() int {
	switch v.kind {
	case KindSequence:
		return len(v.items)
	case KindMapping:
		return len(v.entries)
	default:
		return 0
	}
}

// Text returns the scalar text. It is empty for every other kind.
func (v Value) Text() string {
	return v.text
}

func (v Value) Items() []Value {
	return append([]Value(nil), v.items...)
}

func (v Value) Entries() []Entry {
	return append([]Entry(nil), v.entries...)
}

// Get returns the first mapping entry named key.
func (v Value) Get(key string) (Value, bool) {
	for _, e := range v.entries {
		if e.Key == key {
			return e.Value, true
		}
	}

	return Null(), false
}

// With returns a copy of the mapping v with key set to value. An existing
// entry keeps its position; a new one is appended.
func (v Value) With(key string, value Value) Value {
	entries := make([]Entry, 0, len(v.entries)+1)
	replaced := false

	for _, e := range v.entries {
		if e.Key == key && !replaced {
			entries = append(entries, KV(key, value))
			replaced = true

			continue
		}

		entries = append(entries, e)
	}

	if !replaced {
		entries = append(entries, KV(key, value))
	}

	return Map(entries...)
}

// each walks the direct children of a composite. For sequences the key is the
// element index.
func (v Value) each(fn func(key string, index bool, child Value)) {
	switch v.kind {
	case KindSequence:
		for i, item := range v.items {
			fn(strconv.Itoa(i), true, item)
		}
	case KindMapping:
		for _, e := range v.entries {
			fn(e.Key, isIndexKey(e.Key), e.Value)
		}
	case KindNull, KindScalar:
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.writeJSON(&buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (v Value) writeJSON(buf *bytes.Buffer) error {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindScalar:
		if v.literal {
			buf.WriteString(v.text)

			return nil
		}

		encoded, err := json.Marshal(v.text)
		if err != nil {
			return err
		}

		buf.Write(encoded)
	case KindSequence:
		buf.WriteByte('[')

		for i, item := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}

			if err := item.writeJSON(buf); err != nil {
				return err
			}
		}

		buf.WriteByte(']')
	case KindMapping:
		buf.WriteByte('{')

		for i, e := range v.entries {
			if i > 0 {
				buf.WriteByte(',')
			}

			key, err := json.Marshal(e.Key)
			if err != nil {
				return err
			}

			buf.Write(key)
			buf.WriteByte(':')

			if err := e.Value.writeJSON(buf); err != nil {
				return err
			}
		}

		buf.WriteByte('}')
	}

	return nil
}

func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}

	*v = parsed

	return nil
}

//nolint:cyclop,funlen
func FromAny(in any) (Value, error) {
	switch typed := in.(type) {
	case nil:
		return Null(), nil
	case Value:
		return typed, nil
	case string:
		return String(typed), nil
	case bool:
		return Bool(typed), nil
	case int:
		return Int(int64(typed)), nil
	case int8:
		return Int(int64(typed)), nil
	case int16:
		return Int(int64(typed)), nil
	case int32:
		return Int(int64(typed)), nil
	case int64:
		return Int(typed), nil
	case uint:
		return Uint(uint64(typed)), nil
	case uint8:
		return Uint(uint64(typed)), nil
	case uint16:
		return Uint(uint64(typed)), nil
	case uint32:
		return Uint(uint64(typed)), nil
	case uint64:
		return Uint(typed), nil
	case float32:
		return Float(float64(typed)), nil
	case float64:
		return Float(typed), nil
	case json.Number:
		return literal(typed.String()), nil
	case decimal.Decimal:
		return Decimal(typed), nil
	case []string:
		items := make([]Value, 0, len(typed))
		for _, s := range typed {
			items = append(items, String(s))
		}

		return List(items...), nil
	case []any:
		items := make([]Value, 0, len(typed))

		for i, item := range typed {
			converted, err := FromAny(item)
			if err != nil {
				return Null(), fmt.Errorf("index %d: %w", i, err)
			}

			items = append(items, converted)
		}

		return List(items...), nil
	case map[string]string:
		entries := make([]Entry, 0, len(typed))
		for _, key := range sortedKeys(typed) {
			entries = append(entries, KV(key, String(typed[key])))
		}

		return Map(entries...), nil
	case map[string]any:
		entries := make([]Entry, 0, len(typed))

		for _, key := range sortedKeys(typed) {
			converted, err := FromAny(typed[key])
			if err != nil {
				return Null(), fmt.Errorf("key %q: %w", key, err)
			}

			entries = append(entries, KV(key, converted))
		}

		return Map(entries...), nil
	default:
		return Null(), fmt.Errorf("%w: %T", ErrUnsupportedType, in)
	}
}

// MustFromAny is FromAny for literals known to be convertible.
func MustFromAny(in any) Value {
	v, err := FromAny(in)
	if err != nil {
		panic(err)
	}

	return v
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

// isIndexKey reports whether a mapping key behaves as a sequence index: it is
// empty or a canonical decimal integer.
func isIndexKey(key string) bool {
	if key == "" {
		return true
	}

	n, err := strconv.ParseInt(key, 10, 64)
	if err != nil {
		return false
	}

	return strconv.FormatInt(n, 10) == key
}
