package params

import (
	"net/url"
	"strings"
)

// Encode flattens v into a query string using bracketed keys. Null entries
// are skipped, sequence elements under a prefix share the key "prefix[]".
// A prefix of "0" counts as no prefix, so [[1,2]] encodes as "0=1&1=2".
// A scalar v is returned as its text, which is not a valid query string.
func Encode(v Value) string {
	return encode(v, "")
}

func encode(v Value, prefix string) string {
	if !v.IsComposite() {
		return v.text
	}

	parts := make([]string, 0, v.Len())

	v.each(func(key string, index bool, child Value) {
		if child.IsNull() {
			return
		}

		if activePrefix(prefix) {
			if index {
				key = prefix + "[]"
			} else {
				key = prefix + "[" + key + "]"
			}
		}

		if child.IsComposite() {
			if nested := encode(child, key); nested != "" {
				parts = append(parts, nested)
			}

			return
		}

		parts = append(parts, url.QueryEscape(key)+"="+url.QueryEscape(child.text))
	})

	return strings.Join(parts, "&")
}

func activePrefix(prefix string) bool {
	return prefix != "" && prefix != "0"
}
