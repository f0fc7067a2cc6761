// Package rowquery filters and sorts schemaless row payloads in memory.
//
// Column types are presentation metadata only, so every comparison here is
// done on the stringified form of a value, never on a typed projection.
package rowquery

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/iancoleman/orderedmap"
)

type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindObject
	KindArray
)

// Value is one decoded payload cell.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
	raw  any
}

// ValueOf classifies a decoded JSON value.
func ValueOf(v any) Value {
	switch t := v.(type) {
	case nil:
		return Value{kind: KindNull}
	case Value:
		return t
	case string:
		return Value{kind: KindString, str: t}
	case bool:
		return Value{kind: KindBool, b: t}
	case float64:
		return Value{kind: KindNumber, num: t}
	case float32:
		return Value{kind: KindNumber, num: float64(t)}
	case int:
		return Value{kind: KindNumber, num: float64(t)}
	case int64:
		return Value{kind: KindNumber, num: float64(t)}
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return Value{kind: KindString, str: t.String()}
		}
		return Value{kind: KindNumber, num: f}
	case []any:
		return Value{kind: KindArray, raw: t}
	case orderedmap.OrderedMap, *orderedmap.OrderedMap, map[string]any:
		return Value{kind: KindObject, raw: t}
	default:
		return Value{kind: KindObject, raw: t}
	}
}

func (v Value) Kind() Kind { return v.kind }

// Interface returns the value as a plain decoded JSON value.
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindBool:
		return v.b
	case KindObject, KindArray:
		return v.raw
	default:
		return nil
	}
}

// String is the text used for filtering and sorting: null becomes "",
// numbers and booleans use their script-style spelling, objects and arrays
// their JSON text.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return formatNumber(v.num)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindObject, KindArray:
		var buf bytes.Buffer
		if err := writeJSON(&buf, v.raw); err != nil {
			return ""
		}
		return buf.String()
	default:
		return ""
	}
}

// writeJSON encodes v compactly without HTML escaping at any depth. Nested
// orderedmaps escape HTML in their own MarshalJSON, so they are walked here.
func writeJSON(buf *bytes.Buffer, v any) error {
	switch t := v.(type) {
	case orderedmap.OrderedMap:
		return writeObject(buf, t.Keys(), t.Get)
	case *orderedmap.OrderedMap:
		return writeObject(buf, t.Keys(), t.Get)
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return writeObject(buf, keys, func(k string) (any, bool) {
			val, ok := t[k]
			return val, ok
		})
	case []any:
		buf.WriteByte('[')
		for i, el := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, el); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			buf.WriteString("null")
			return nil
		}
		buf.WriteString(formatNumber(t))
		return nil
	default:
		enc := json.NewEncoder(buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(t); err != nil {
			return err
		}
		buf.Truncate(buf.Len() - 1) // Encode appends a newline
		return nil
	}
}

func writeObject(buf *bytes.Buffer, keys []string, get func(string) (any, bool)) error {
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSON(buf, k); err != nil {
			return err
		}
		buf.WriteByte(':')
		val, _ := get(k)
		if err := writeJSON(buf, val); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

// Truthy follows script truthiness: "", 0, NaN, false and null are falsy,
// every object and array is truthy.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindString:
		return v.str != ""
	case KindNumber:
		return v.num != 0 && !math.IsNaN(v.num)
	case KindBool:
		return v.b
	case KindObject, KindArray:
		return true
	default:
		return false
	}
}

// StrictEqual is identity comparison: scalars compare by kind and value,
// objects and arrays never equal a separately decoded value.
func (v Value) StrictEqual(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return v.str == o.str
	case KindNumber:
		return v.num == o.num
	case KindBool:
		return v.b == o.b
	default:
		return false
	}
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}

	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		// 1e-07 -> 1e-7
		mant, exp, _ := strings.Cut(s, "e")
		sign := exp[:1]
		digits := strings.TrimLeft(exp[1:], "0")
		if digits == "" {
			digits = "0"
		}
		return mant + "e" + sign + digits
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
