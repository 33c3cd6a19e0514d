package value

import (
	"math"
	"strconv"
	"strings"
)

// Type represents the tag in the Value tagged union.
type Type uint8

const (
	TypeVoid Type = iota
	TypeInt
	TypeFloat
)

// Value is a tagged union over the two runtime types.
// Data holds the raw bits, interpreted based on Type.
type Value struct {
	Type Type
	Data uint64
}

// Int constructs an integer value.
func Int(i int64) Value {
	return Value{Type: TypeInt, Data: uint64(i)}
}

// Float constructs a floating-point value.
func Float(f float64) Value {
	return Value{Type: TypeFloat, Data: math.Float64bits(f)}
}

// AsInt returns the value as int64.
func (v Value) AsInt() int64 {
	return int64(v.Data)
}

// AsFloat returns the value as float64.
func (v Value) AsFloat() float64 {
	if v.Type == TypeFloat {
		return math.Float64frombits(v.Data)
	}
	return float64(int64(v.Data))
}

// IsZero reports whether v is the zero of its type.
// Conditional jumps and the divide-by-zero check both key off this.
func (v Value) IsZero() bool {
	switch v.Type {
	case TypeFloat:
		return math.Float64frombits(v.Data) == 0
	default:
		return v.Data == 0
	}
}

// Format returns a string representation of the value.
// Floats that would print like an integer keep a trailing ".0"
// so the tag stays visible in driver output.
func (v Value) Format() string {
	switch v.Type {
	case TypeInt:
		return strconv.FormatInt(int64(v.Data), 10)
	case TypeFloat:
		s := strconv.FormatFloat(math.Float64frombits(v.Data), 'g', -1, 64)
		if !strings.ContainsAny(s, ".e") {
			s += ".0"
		}
		return s
	default:
		return "void"
	}
}
