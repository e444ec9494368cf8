package params

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

var ErrInvalidJSON = errors.New("params: invalid JSON")

// Parse decodes a JSON document into a Value, keeping object keys in the
// order they appear on the wire.
func Parse(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := parseValue(dec)
	if err != nil {
		return Null(), fmt.Errorf("%w: %w", ErrInvalidJSON, err)
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Null(), fmt.Errorf("%w: trailing data after document", ErrInvalidJSON)
	}

	return v, nil
}

func parseValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Null(), err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return parseObject(dec)
		case '[':
			return parseArray(dec)
		default:
			return Null(), fmt.Errorf("unexpected delimiter %q", t)
		}
	case nil:
		return Null(), nil
	case string:
		return String(t), nil
	case bool:
		return Bool(t), nil
	case json.Number:
		return literal(t.String()), nil
	default:
		return Null(), fmt.Errorf("unexpected token %v", tok)
	}
}

func parseObject(dec *json.Decoder) (Value, error) {
	var entries []Entry

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Null(), err
		}

		key, ok := tok.(string)
		if !ok {
			return Null(), fmt.Errorf("unexpected object key %v", tok)
		}

		child, err := parseValue(dec)
		if err != nil {
			return Null(), err
		}

		entries = append(entries, KV(key, child))
	}

	if _, err := dec.Token(); err != nil {
		return Null(), err
	}

	return Map(entries...), nil
}

func parseArray(dec *json.Decoder) (Value, error) {
	var items []Value

	for dec.More() {
		child, err := parseValue(dec)
		if err != nil {
			return Null(), err
		}

		items = append(items, child)
	}

	if _, err := dec.Token(); err != nil {
		return Null(), err
	}

	return List(items...), nil
}
