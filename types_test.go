package typedprefs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValueType_Valid(t *testing.T) {
	for _, vt := range []ValueType{StringType, IntType, BoolType, ColorType, StringSetType} {
		assert.True(t, vt.Valid(), vt)
	}
	assert.False(t, ValueType("float").Valid())
	assert.False(t, ValueType("").Valid())
}

func TestTypeOf(t *testing.T) {
	assert.Equal(t, StringType, typeOf[string]())
	assert.Equal(t, IntType, typeOf[int32]())
	assert.Equal(t, BoolType, typeOf[bool]())
	assert.Equal(t, ColorType, typeOf[Color]())
	assert.Equal(t, StringSetType, typeOf[[]string]())
}

func TestDefaultSource_String(t *testing.T) {
	assert.Equal(t, "literal", DefaultLiteral.String())
	assert.Equal(t, "resource", DefaultResource.String())
	assert.Equal(t, "none", DefaultNone.String())
}

func TestDefaultSpec_Erase(t *testing.T) {
	src := []string{"a"}
	spec := Literal(src).erase()
	src[0] = "mutated"
	assert.Equal(t, []string{"a"}, spec.literal, "literal slices are copied at declaration")

	res := FromResource[int32](0x7f030000).erase()
	assert.Equal(t, DefaultResource, res.source)
	assert.Equal(t, 0x7f030000, res.resID)
	assert.Nil(t, res.literal)

	assert.Equal(t, DefaultNone, NoDefault[bool]().erase().source)
}
