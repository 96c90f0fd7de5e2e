package confdoc

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"
)

// Kind names used in diagnostics. These mirror the value vocabulary of
// the document format.
const (
	kindBool     = "bool"
	kindInteger  = "integer"
	kindFloat    = "float"
	kindString   = "string"
	kindDatetime = "datetime"
	kindArray    = "array"
	kindTable    = "table"
	kindNil      = "nil"
)

// kindOf classifies a value into the document format's vocabulary.
// Opaque values outside it yield "".
func kindOf(v any) string {
	if v == nil {
		return kindNil
	}
	if _, ok := v.(time.Time); ok {
		return kindDatetime
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Bool:
		return kindBool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return kindInteger
	case reflect.Float32, reflect.Float64:
		return kindFloat
	case reflect.String:
		return kindString
	case reflect.Slice, reflect.Array:
		return kindArray
	case reflect.Map:
		return kindTable
	default:
		return ""
	}
}

// isScalarKind reports whether a kind name denotes a leaf value.
func isScalarKind(kind string) bool {
	switch kind {
	case kindBool, kindInteger, kindFloat, kindString, kindDatetime:
		return true
	}
	return false
}

// normalizeTable normalizes a parsed document tree in place-ish,
// returning a tree built only from the canonical node types:
// int64, float64, bool, string, time.Time, []any and map[string]any.
// The TOML, JSON and YAML readers disagree on integer widths and
// container types; the rest of the engine assumes one vocabulary.
func normalizeTable(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = normalizeNode(v)
	}
	return out
}

func normalizeNode(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case time.Time:
		return t
	case map[string]any:
		return normalizeTable(t)
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalizeNode(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, el := range t {
			out[i] = normalizeNode(el)
		}
		return out
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = normalizeNode(rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[fmt.Sprint(iter.Key().Interface())] = normalizeNode(iter.Value().Interface())
		}
		return out
	}
	return v
}

// isValidVariableName checks that a name is a valid TOML bare key:
// ASCII letters, digits, underscores and dashes.
func isValidVariableName(s string) bool {
	if len(s) == 0 || strings.ContainsRune(s, '.') {
		return false
	}
	for _, r := range s {
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		if !(isLetter || isDigit || r == '_' || r == '-') {
			return false
		}
	}
	return true
}
