// Package value defines the scalar value domain shared by every layer of
// ptabler: the column data types recognized on the wire (§3 of the
// workflow spec) and the Go representation of a single cell.
package value

import (
	"fmt"

	"github.com/spf13/cast"
	errors "gopkg.in/src-d/go-errors.v1"
)

// Type is one of the recognized column data types.
type Type int

const (
	Int Type = iota
	Long
	Float
	Double
	String
	Bool
)

// ErrUnknownType is returned by ParseType for any name outside the
// recognized set.
var ErrUnknownType = errors.NewKind("unknown column type %q")

// ParseType maps a wire type name to a Type, per spec §3.
func ParseType(name string) (Type, error) {
	switch name {
	case "int":
		return Int, nil
	case "long":
		return Long, nil
	case "float":
		return Float, nil
	case "double":
		return Double, nil
	case "string":
		return String, nil
	case "bool":
		return Bool, nil
	default:
		return 0, ErrUnknownType.New(name)
	}
}

func (t Type) String() string {
	switch t {
	case Int:
		return "int"
	case Long:
		return "long"
	case Float:
		return "float"
	case Double:
		return "double"
	case String:
		return "string"
	case Bool:
		return "bool"
	default:
		return fmt.Sprintf("type(%d)", int(t))
	}
}

// IsNumeric reports whether the type participates in arithmetic.
func (t Type) IsNumeric() bool {
	switch t {
	case Int, Long, Float, Double:
		return true
	default:
		return false
	}
}

// Coerce converts v (as decoded from JSON or produced by a kernel) to the
// canonical Go representation for t. nil passes through unchanged: nulls
// are type-less.
func Coerce(v interface{}, t Type) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	switch t {
	case Int:
		i, err := cast.ToInt32E(v)
		if err != nil {
			return nil, err
		}
		return i, nil
	case Long:
		i, err := cast.ToInt64E(v)
		if err != nil {
			return nil, err
		}
		return i, nil
	case Float:
		f, err := cast.ToFloat32E(v)
		if err != nil {
			return nil, err
		}
		return f, nil
	case Double:
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return nil, err
		}
		return f, nil
	case String:
		s, err := cast.ToStringE(v)
		if err != nil {
			return nil, err
		}
		return s, nil
	case Bool:
		b, err := cast.ToBoolE(v)
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, ErrUnknownType.New(t.String())
	}
}

// AsFloat64 coerces any numeric scalar (or numeric-looking string) to a
// float64 for arithmetic kernels. Returns ok=false for null.
func AsFloat64(v interface{}) (float64, bool, error) {
	if v == nil {
		return 0, false, nil
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, false, err
	}
	return f, true, nil
}

// AsString coerces any scalar to its string form, used by str_join,
// str_len, hashing, and fuzzy-string kernels. Returns ok=false for null.
func AsString(v interface{}) (string, bool, error) {
	if v == nil {
		return "", false, nil
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return "", false, err
	}
	return s, true, nil
}

// AsBool coerces a scalar to bool. Returns ok=false for null.
func AsBool(v interface{}) (bool, bool, error) {
	if v == nil {
		return false, false, nil
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return false, false, err
	}
	return b, true, nil
}
