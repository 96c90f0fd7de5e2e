package confdoc

import (
	"fmt"
	"reflect"
	"strconv"
)

// String retrieves a variable's current value as a string, converting
// common scalar types when the stored value isn't one already.
func (n *Namespace) String(name string) (string, error) {
	val, found := n.Get(name)
	if !found {
		return "", fmt.Errorf("variable not registered: %s", name)
	}
	if val == nil {
		return "", nil
	}

	switch v := val.(type) {
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	case []byte:
		return string(v), nil
	case error:
		return v.Error(), nil
	}

	rv := reflect.ValueOf(val)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64), nil
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), nil
	}

	return "", fmt.Errorf("cannot convert type %T to string for variable %s", val, name)
}

// Int64 retrieves a variable's current value as an int64, converting
// from numeric kinds, parsable strings and booleans.
func (n *Namespace) Int64(name string) (int64, error) {
	val, found := n.Get(name)
	if !found {
		return 0, fmt.Errorf("variable not registered: %s", name)
	}
	if val == nil {
		return 0, fmt.Errorf("value for variable %s is nil, cannot convert to int64", name)
	}

	rv := reflect.ValueOf(val)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > uint64(^uint64(0)>>1) {
			return 0, fmt.Errorf("cannot convert %d to int64 for variable %s: overflow", u, name)
		}
		return int64(u), nil
	case reflect.Float32, reflect.Float64:
		return int64(rv.Float()), nil
	case reflect.String:
		s := rv.String()
		if i, err := strconv.ParseInt(s, 0, 64); err == nil {
			return i, nil
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int64(f), nil
		}
		return 0, fmt.Errorf("cannot convert string %q to int64 for variable %s", s, name)
	case reflect.Bool:
		if rv.Bool() {
			return 1, nil
		}
		return 0, nil
	}

	return 0, fmt.Errorf("cannot convert type %T to int64 for variable %s", val, name)
}

// Bool retrieves a variable's current value as a bool, converting from
// numeric kinds (0 is false) and parsable strings.
func (n *Namespace) Bool(name string) (bool, error) {
	val, found := n.Get(name)
	if !found {
		return false, fmt.Errorf("variable not registered: %s", name)
	}
	if val == nil {
		return false, fmt.Errorf("value for variable %s is nil, cannot convert to bool", name)
	}

	rv := reflect.ValueOf(val)
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool(), nil
	case reflect.String:
		s := rv.String()
		b, err := strconv.ParseBool(s)
		if err != nil {
			return false, fmt.Errorf("cannot convert string %q to bool for variable %s: %w", s, name, err)
		}
		return b, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0, nil
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0, nil
	}

	return false, fmt.Errorf("cannot convert type %T to bool for variable %s", val, name)
}

// Float64 retrieves a variable's current value as a float64,
// converting from numeric kinds, parsable strings and booleans.
func (n *Namespace) Float64(name string) (float64, error) {
	val, found := n.Get(name)
	if !found {
		return 0.0, fmt.Errorf("variable not registered: %s", name)
	}
	if val == nil {
		return 0.0, fmt.Errorf("value for variable %s is nil, cannot convert to float64", name)
	}

	rv := reflect.ValueOf(val)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), nil
	case reflect.String:
		s := rv.String()
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0.0, fmt.Errorf("cannot convert string %q to float64 for variable %s: %w", s, name, err)
		}
		return f, nil
	case reflect.Bool:
		if rv.Bool() {
			return 1.0, nil
		}
		return 0.0, nil
	}

	return 0.0, fmt.Errorf("cannot convert type %T to float64 for variable %s", val, name)
}
