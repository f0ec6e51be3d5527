package value

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Kind classifies a value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// KindOf reports the kind of v. Integer and float types of any width are
// numbers; []any and map[string]any are the container kinds. Typed slices and
// maps are not recognized until they have been passed through Normalize.
func KindOf(v any) Kind {
	switch v.(type) {
	case nil:
		return KindNull
	case bool:
		return KindBool
	case float64, float32, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, json.Number:
		return KindNumber
	case string:
		return KindString
	case []any:
		return KindArray
	case map[string]any:
		return KindObject
	default:
		return KindUnknown
	}
}

// AsFloat returns the numeric value of v, if v is a number.
func AsFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// Normalize converts an arbitrary Go value into the canonical value domain
// by round-tripping it through JSON. Values already in canonical form are
// deep-copied.
func Normalize(v any) (any, error) {
	switch KindOf(v) {
	case KindNull, KindBool, KindString:
		return v, nil
	case KindNumber:
		f, _ := AsFloat(v)
		return f, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize value of type %T: %w", v, err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to normalize value of type %T: %w", v, err)
	}
	return out, nil
}

// Clone returns a deep copy of a canonical value. Leaves that are not
// containers are returned as is.
func Clone(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = Clone(item)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = Clone(item)
		}
		return out
	default:
		return v
	}
}

// CanonicalJSON renders v as compact JSON with sorted object keys and without
// HTML escaping.
func CanonicalJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// Stringify returns the text form of v used when a value is spliced into a
// larger string: strings verbatim, numbers in shortest form, booleans as
// true/false, nil as "null" and containers as canonical JSON.
func Stringify(v any) string {
	switch KindOf(v) {
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(v.(bool))
	case KindNumber:
		f, _ := AsFloat(v)
		return FormatNumber(f)
	case KindString:
		return v.(string)
	default:
		s, err := CanonicalJSON(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return s
	}
}

// FormatNumber renders f the way JSON does: integers without a fraction and
// other values in their shortest round-tripping form.
func FormatNumber(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return "null"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Truthy follows JavaScript truthiness, which is what snippet authors expect
// from conditions in the utility library.
func Truthy(v any) bool {
	switch KindOf(v) {
	case KindNull:
		return false
	case KindBool:
		return v.(bool)
	case KindNumber:
		f, _ := AsFloat(v)
		return f != 0 && !math.IsNaN(f)
	case KindString:
		return v.(string) != ""
	default:
		return true
	}
}

// Equal reports deep equality between two values, treating all numeric
// types as float64.
func Equal(a, b any) bool {
	ka, kb := KindOf(a), KindOf(b)
	if ka != kb {
		return false
	}
	switch ka {
	case KindNull:
		return true
	case KindBool:
		return a.(bool) == b.(bool)
	case KindNumber:
		fa, _ := AsFloat(a)
		fb, _ := AsFloat(b)
		return fa == fb
	case KindString:
		return a.(string) == b.(string)
	case KindArray:
		aa, ab := a.([]any), b.([]any)
		if len(aa) != len(ab) {
			return false
		}
		for i := range aa {
			if !Equal(aa[i], ab[i]) {
				return false
			}
		}
		return true
	case KindObject:
		ma, mb := a.(map[string]any), b.(map[string]any)
		if len(ma) != len(mb) {
			return false
		}
		for k, va := range ma {
			vb, ok := mb[k]
			if !ok || !Equal(va, vb) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Compare orders two values. Numbers compare numerically, strings
// lexically, booleans false before true. Values of different kinds are
// ordered by kind, with null last so missing keys sink to the end of a sort.
func Compare(a, b any) int {
	ka, kb := KindOf(a), KindOf(b)
	if ka != kb {
		return kindRank(ka) - kindRank(kb)
	}
	switch ka {
	case KindNumber:
		fa, _ := AsFloat(a)
		fb, _ := AsFloat(b)
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	case KindString:
		sa, sb := a.(string), b.(string)
		switch {
		case sa < sb:
			return -1
		case sa > sb:
			return 1
		}
		return 0
	case KindBool:
		ba, bb := a.(bool), b.(bool)
		switch {
		case ba == bb:
			return 0
		case !ba:
			return -1
		}
		return 1
	case KindNull:
		return 0
	default:
		sa, sb := Stringify(a), Stringify(b)
		switch {
		case sa < sb:
			return -1
		case sa > sb:
			return 1
		}
		return 0
	}
}

func kindRank(k Kind) int {
	switch k {
	case KindNumber:
		return 0
	case KindString:
		return 1
	case KindBool:
		return 2
	case KindArray:
		return 3
	case KindObject:
		return 4
	case KindNull:
		return 6
	default:
		return 5
	}
}

// SortedKeys returns the keys of an object in lexical order.
func SortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
