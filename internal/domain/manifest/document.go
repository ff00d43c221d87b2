package manifest

import (
	"strconv"
	"strings"
)

// Document is a JSON-like tree: nested maps, lists and scalar leaves.
// Numbers decoded from storage are float64.
type Document map[string]any

// IDKey is the document field holding the package identifier.
const IDKey = "sw_package_id"

// ID returns the package identifier in its string form so that 42 and "42"
// compare equal.
func (d Document) ID() string {
	return scalarString(d[IDKey])
}

// HasID reports whether the document carries a non-empty package identifier.
func (d Document) HasID() bool {
	return d.ID() != ""
}

// String returns the named field as a string, or "" if it is absent or not a scalar.
func (d Document) String(key string) string {
	return scalarString(d[key])
}

// Map returns the named field as a Document, or nil.
func (d Document) Map(key string) Document {
	return asDocument(d[key])
}

// List returns the named field as a list, or nil.
func (d Document) List(key string) []any {
	list, _ := d[key].([]any)

	return list
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}

	cloned, _ := cloneNode(map[string]any(d)).(map[string]any)

	return cloned
}

// SameID reports whether two identifiers are equal by string comparison.
func SameID(a, b any) bool {
	return scalarString(a) == scalarString(b)
}

// IDString renders a raw identifier value the way stored ids are compared.
func IDString(v any) string {
	return scalarString(v)
}

// asDocument converts map-shaped nodes to Document.
func asDocument(v any) Document {
	switch m := v.(type) {
	case Document:
		return m
	case map[string]any:
		return m
	default:
		return nil
	}
}

// scalarString formats scalar leaves. Whole floats are printed without a
// fractional part, which keeps numeric ids stable across storage.
func scalarString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(s), 'f', -1, 32)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}

// intList extracts the integer members of a list, skipping anything that is
// not a whole number.
func intList(list []any) []int {
	result := make([]int, 0, len(list))

	for _, item := range list {
		switch n := item.(type) {
		case float64:
			if n == float64(int(n)) {
				result = append(result, int(n))
			}
		case int:
			result = append(result, n)
		case int64:
			result = append(result, int(n))
		case string:
			if parsed, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
				result = append(result, parsed)
			}
		}
	}

	return result
}

// cloneNode deep-copies maps and lists; leaves are shared.
func cloneNode(node any) any {
	switch n := node.(type) {
	case Document:
		return cloneNode(map[string]any(n))
	case map[string]any:
		out := make(map[string]any, len(n))
		for k, v := range n {
			out[k] = cloneNode(v)
		}

		return out
	case []any:
		out := make([]any, len(n))
		for i, v := range n {
			out[i] = cloneNode(v)
		}

		return out
	default:
		return node
	}
}
