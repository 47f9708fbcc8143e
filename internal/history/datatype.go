package history

import (
	"fmt"
	"math/big"
	"reflect"
)

// A DataType constrains the runtime type of committed values. Every value a
// Buffer accepts must belong to the single category fixed at construction.
type DataType string

const (
	// Number accepts fixed-size numeric values (floats and machine integers).
	Number DataType = "number"
	// String accepts string values other than Symbol.
	String DataType = "string"
	// Integer accepts arbitrary-precision *big.Int values.
	Integer DataType = "integer"
	// Boolean accepts bool values.
	Boolean DataType = "boolean"
	// Opaque accepts Symbol values.
	Opaque DataType = "opaque"
	// Object accepts any non-nil value outside the five categories above.
	Object DataType = "object"
)

// A Symbol is an opaque token for Opaque buffers. Declaring a distinct type
// keeps symbols from colliding with ordinary strings.
type Symbol string

func (t DataType) Valid() bool {
	switch t {
	case Number, String, Integer, Boolean, Opaque, Object:
		return true
	}
	return false
}

func (t DataType) String() string {
	return string(t)
}

// check validates a value against the tag. Values are classified into exactly
// one category, so a mismatch against one tag can never pass another.
func (t DataType) check(v any) error {
	got, ok := classify(v)
	if !ok {
		return fmt.Errorf("%w: %s required, got untyped or nil value", ErrTypeMismatch, t)
	}
	if got != t {
		return fmt.Errorf("%w: %s required, got %s (%T)", ErrTypeMismatch, t, got, v)
	}
	return nil
}

// classify maps a runtime value to its category. The second return is false
// for values that belong to no category: untyped nil, nil *big.Int, and nil
// pointers, maps, slices, channels, functions, and interfaces.
func classify(v any) (DataType, bool) {
	switch v := v.(type) {
	case nil:
		return "", false
	case Symbol:
		return Opaque, true
	case *big.Int:
		if v == nil {
			return "", false
		}
		return Integer, true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return String, true
	case reflect.Bool:
		return Boolean, true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return Number, true
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		if rv.IsNil() {
			return "", false
		}
	}
	return Object, true
}

// ParseDataType converts a configuration string into a DataType.
func ParseDataType(s string) (DataType, error) {
	t := DataType(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidDataType, s)
	}
	return t, nil
}
