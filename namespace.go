package confdoc

import (
	"fmt"
	"reflect"
	"strings"
	"time"
)

// variable holds the registered default and current value for one name.
type variable struct {
	def   any
	value any
}

// Namespace is a caller-owned, ordered set of named configuration
// variables. Generate reads it; Load mutates it in place, replacing
// loaded values wholesale. The engine never retains a reference beyond
// a single call.
//
// A Namespace performs no internal locking. It is a single-writer
// resource: callers must not invoke Generate or Load concurrently
// against the same instance.
type Namespace struct {
	names []string
	vars  map[string]*variable
}

// NewNamespace creates an empty Namespace.
func NewNamespace() *Namespace {
	return &Namespace{
		vars: make(map[string]*variable),
	}
}

// Register makes a variable known to the Namespace with the given
// default value. The name must be a valid TOML bare key. Registering
// an existing name replaces its default and current value but keeps
// its position in declaration order.
func (n *Namespace) Register(name string, defaultValue any) error {
	if name == "" {
		return fmt.Errorf("variable name cannot be empty")
	}
	if !isValidVariableName(name) {
		return fmt.Errorf("invalid variable name %q", name)
	}

	if v, exists := n.vars[name]; exists {
		v.def = defaultValue
		v.value = defaultValue
		return nil
	}

	n.vars[name] = &variable{def: defaultValue, value: defaultValue}
	n.names = append(n.names, name)
	return nil
}

// Unregister removes a variable from the Namespace.
func (n *Namespace) Unregister(name string) error {
	if _, exists := n.vars[name]; !exists {
		return fmt.Errorf("variable not registered: %s", name)
	}
	delete(n.vars, name)
	for i, existing := range n.names {
		if existing == name {
			n.names = append(n.names[:i], n.names[i+1:]...)
			break
		}
	}
	return nil
}

// RegisterStruct registers one variable per exported field of the
// given struct or struct pointer, using the `toml` tag for names when
// present. Nested structs that do not implement Serializable are
// converted to table values; Serializable fields stay opaque and are
// reduced by the serializer at generation time.
func (n *Namespace) RegisterStruct(defaults any) error {
	v := reflect.ValueOf(defaults)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return fmt.Errorf("RegisterStruct requires a non-nil struct pointer or value")
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return fmt.Errorf("RegisterStruct requires a struct or struct pointer, got %T", defaults)
	}

	t := v.Type()
	var failed []string

	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		fieldValue := v.Field(i)

		if !field.IsExported() {
			continue
		}

		tag := field.Tag.Get("toml")
		if tag == "-" {
			continue
		}
		key := field.Name
		if tag != "" {
			if name := strings.Split(tag, ",")[0]; name != "" {
				key = name
			}
		}

		val := fieldValue.Interface()
		if _, capable := val.(Serializable); !capable {
			if fieldValue.Kind() == reflect.Struct && field.Type != reflect.TypeOf(time.Time{}) {
				val = structToTable(fieldValue)
			}
		}

		if err := n.Register(key, val); err != nil {
			failed = append(failed, fmt.Sprintf("field %s: %v", field.Name, err))
		}
	}

	if len(failed) > 0 {
		return fmt.Errorf("failed to register %d field(s): %s", len(failed), strings.Join(failed, "; "))
	}
	return nil
}

// structToTable converts a struct value to a nested map keyed by the
// `toml` tag or field name. Serializable fields are kept opaque.
func structToTable(v reflect.Value) map[string]any {
	t := v.Type()
	out := make(map[string]any, v.NumField())

	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		fieldValue := v.Field(i)

		if !field.IsExported() {
			continue
		}
		tag := field.Tag.Get("toml")
		if tag == "-" {
			continue
		}
		key := field.Name
		if tag != "" {
			if name := strings.Split(tag, ",")[0]; name != "" {
				key = name
			}
		}

		val := fieldValue.Interface()
		if _, capable := val.(Serializable); !capable {
			if fieldValue.Kind() == reflect.Struct && field.Type != reflect.TypeOf(time.Time{}) {
				val = structToTable(fieldValue)
			}
		}
		out[key] = val
	}
	return out
}

// Get retrieves a variable's current value. The second return value
// indicates whether the name is registered.
func (n *Namespace) Get(name string) (any, bool) {
	v, registered := n.vars[name]
	if !registered {
		return nil, false
	}
	return v.value, true
}

// Default retrieves a variable's registered default value.
func (n *Namespace) Default(name string) (any, bool) {
	v, registered := n.vars[name]
	if !registered {
		return nil, false
	}
	return v.def, true
}

// Set updates a variable's current value. The name must already be
// registered.
func (n *Namespace) Set(name string, value any) error {
	v, registered := n.vars[name]
	if !registered {
		return fmt.Errorf("variable not registered: %s", name)
	}
	v.value = value
	return nil
}

// Reset restores a variable's current value to its registered default.
func (n *Namespace) Reset(name string) error {
	v, registered := n.vars[name]
	if !registered {
		return fmt.Errorf("variable not registered: %s", name)
	}
	v.value = v.def
	return nil
}

// Names returns all registered variable names in declaration order.
func (n *Namespace) Names() []string {
	out := make([]string, len(n.names))
	copy(out, n.names)
	return out
}

// Len returns the number of registered variables.
func (n *Namespace) Len() int {
	return len(n.names)
}

// Clone creates a copy of the Namespace with the same declaration
// order, defaults and current values. Values themselves are shared,
// not deep-copied; Load replaces values wholesale, so a clone is not
// affected by loading into the original.
func (n *Namespace) Clone() *Namespace {
	clone := &Namespace{
		names: make([]string, len(n.names)),
		vars:  make(map[string]*variable, len(n.vars)),
	}
	copy(clone.names, n.names)
	for name, v := range n.vars {
		clone.vars[name] = &variable{def: v.def, value: v.value}
	}
	return clone
}
