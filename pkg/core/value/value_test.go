package value_test

import (
	"testing"

	"github.com/nalgeon/be"

	"github.com/agenthands/nanocc/pkg/core/value"
)

func TestIntRoundTrip(t *testing.T) {
	v := value.Int(-42)
	be.Equal(t, v.Type, value.TypeInt)
	be.Equal(t, v.AsInt(), int64(-42))
}

func TestFloatRoundTrip(t *testing.T) {
	v := value.Float(3.14)
	be.Equal(t, v.Type, value.TypeFloat)
	be.Equal(t, v.AsFloat(), 3.14)
}

func TestIsZero(t *testing.T) {
	be.True(t, value.Int(0).IsZero())
	be.True(t, value.Float(0.0).IsZero())
	be.True(t, !value.Int(-1).IsZero())
	be.True(t, !value.Float(0.5).IsZero())

	// Negative zero compares equal to zero.
	be.True(t, value.Float(-0.0).IsZero())
}

func TestFormat(t *testing.T) {
	be.Equal(t, value.Int(42).Format(), "42")
	be.Equal(t, value.Int(-7).Format(), "-7")
	be.Equal(t, value.Float(2.5).Format(), "2.5")
	be.Equal(t, value.Float(5).Format(), "5.0")
}
