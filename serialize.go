package confdoc

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/mitchellh/mapstructure"
)

// Serializable is the capability protocol that lets opaque types
// participate in persistence. Go interface satisfaction is structural,
// so any type exposing both operations participates; no registration
// or embedding is required.
type Serializable interface {
	// Serialize reduces the value to primitives representable in the
	// document format. The result may itself contain Serializable
	// values; the engine reduces the result recursively.
	Serialize(opts Options) (any, error)

	// Deserialize builds a fresh value from raw document data. It is
	// invoked on the registered default, which acts as a prototype;
	// the result replaces the variable's value wholesale and is
	// trusted without further structural validation.
	Deserialize(data any, opts Options) (any, error)
}

// maxSerializeDepth bounds recursion through nested containers and
// capability indirections.
const maxSerializeDepth = 20

// serializeValue reduces a native value to a tree of primitive nodes.
// path traces the route from the variable name down to v, for
// diagnostics.
func serializeValue(v any, path []string, opts Options) (any, error) {
	if len(path) > maxSerializeDepth {
		return nil, &SerializationError{Path: joinPath(path), Value: v, Reason: "serialization recursion depth exceeded"}
	}

	if s, ok := v.(Serializable); ok {
		inner, err := s.Serialize(opts)
		if err != nil {
			return nil, &SerializationError{Path: joinPath(path), Value: v, Reason: fmt.Sprintf("serialize failed: %v", err)}
		}
		return serializeValue(inner, append(path, "[serialize]"), opts)
	}

	kind := kindOf(v)
	if isScalarKind(kind) {
		return v, nil
	}

	switch kind {
	case kindArray:
		rv := reflect.ValueOf(v)
		out := make([]any, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			el, err := serializeValue(rv.Index(i).Interface(), append(path, strconv.Itoa(i)), opts)
			if err != nil {
				return nil, err
			}
			out = append(out, el)
		}
		// the document format cannot represent arrays mixing tables
		// and non-table values
		if len(out) > 1 {
			_, firstIsTable := out[0].(map[string]any)
			for _, el := range out[1:] {
				if _, isTable := el.(map[string]any); isTable != firstIsTable {
					return nil, &SerializationError{Path: joinPath(path), Value: v, Reason: "array mixes tables and non-table values"}
				}
			}
		}
		return out, nil

	case kindTable:
		rv := reflect.ValueOf(v)
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			key := iter.Key()
			if key.Kind() != reflect.String {
				return nil, &SerializationError{
					Path:   joinPath(path),
					Value:  v,
					Reason: fmt.Sprintf("non-string mapping key %v", key.Interface()),
				}
			}
			node, err := serializeValue(iter.Value().Interface(), append(path, key.String()), opts)
			if err != nil {
				return nil, err
			}
			out[key.String()] = node
		}
		return out, nil
	}

	return nil, &SerializationError{Path: joinPath(path), Value: v, Reason: "type does not implement Serializable"}
}

// deserializeValue converts a primitive node into a value compatible
// with the type of def, the current default at this path. Shape is
// document-driven: sequence lengths and mapping keys come from the
// node, not the default.
func deserializeValue(node any, def any, path []string, opts Options, policy CoercionPolicy) (any, error) {
	if s, ok := def.(Serializable); ok {
		out, err := s.Deserialize(node, opts)
		if err != nil {
			return nil, &DeserializationError{Path: joinPath(path), Err: err}
		}
		return out, nil
	}

	// no type witness: accept the document value as-is
	if def == nil {
		return node, nil
	}

	defKind := kindOf(def)
	nodeKind := kindOf(node)

	switch defKind {
	case kindArray:
		if nodeKind != kindArray {
			return resolveMismatch(node, def, path, policy)
		}
		items, ok := node.([]any)
		if !ok {
			return resolveMismatch(node, def, path, policy)
		}
		// the default's first element, if any, is the prototype for
		// every document element
		var proto any
		if rv := reflect.ValueOf(def); rv.Len() > 0 {
			proto = rv.Index(0).Interface()
		}
		out := make([]any, 0, len(items))
		for i, el := range items {
			dv, err := deserializeValue(el, proto, append(path, strconv.Itoa(i)), opts, policy)
			if err != nil {
				return nil, err
			}
			out = append(out, dv)
		}
		return out, nil

	case kindTable:
		tbl, ok := node.(map[string]any)
		if !ok {
			return resolveMismatch(node, def, path, policy)
		}
		dm := reflect.ValueOf(def)
		stringKeyed := dm.Kind() == reflect.Map && dm.Type().Key().Kind() == reflect.String
		out := make(map[string]any, len(tbl))
		for key, el := range tbl {
			// keys absent from the default mapping are still loaded;
			// documents may introduce fields the defaults lack
			var proto any
			if stringKeyed {
				if pv := dm.MapIndex(reflect.ValueOf(key)); pv.IsValid() {
					proto = pv.Interface()
				}
			}
			dv, err := deserializeValue(el, proto, append(path, key), opts, policy)
			if err != nil {
				return nil, err
			}
			out[key] = dv
		}
		return out, nil

	case kindNil:
		return node, nil

	case "":
		return nil, &DeserializationError{
			Path: joinPath(path),
			Err:  fmt.Errorf("default of type %T does not implement Serializable", def),
		}
	}

	// scalar default
	if nodeKind == defKind {
		return alignScalar(node, def), nil
	}
	return resolveMismatch(node, def, path, policy)
}

// resolveMismatch applies the coercion policy to a document value
// whose kind disagrees with the default's.
func resolveMismatch(node, def any, path []string, policy CoercionPolicy) (any, error) {
	switch policy {
	case CoerceKeep:
		return node, nil
	case CoerceCast:
		if out, err := castToType(node, def); err == nil {
			return out, nil
		}
	}
	return nil, &TypeMismatchError{Path: joinPath(path), Expected: kindOf(def), Actual: kindOf(node)}
}

// castToType attempts a weak conversion of node to the concrete type
// of def.
func castToType(node, def any) (any, error) {
	target := reflect.New(reflect.TypeOf(def))
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target.Interface(),
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToTimeHookFunc(time.RFC3339),
		),
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(node); err != nil {
		return nil, err
	}
	return target.Elem().Interface(), nil
}

// alignScalar converts a same-kind primitive node to the default's
// concrete type, so an int default stays int after loading an int64
// node.
func alignScalar(node, def any) any {
	nt, dt := reflect.TypeOf(node), reflect.TypeOf(def)
	if nt == dt {
		return node
	}
	if nt.ConvertibleTo(dt) {
		return reflect.ValueOf(node).Convert(dt).Interface()
	}
	return node
}

// asTypeMismatch reports whether err is a per-field type mismatch
// diagnostic rather than a capability failure.
func asTypeMismatch(err error) (*TypeMismatchError, bool) {
	var tm *TypeMismatchError
	if errors.As(err, &tm) {
		return tm, true
	}
	return nil, false
}
