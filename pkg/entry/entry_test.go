package entry

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/knobs/pkg/constraint"
	"github.com/mesh-intelligence/knobs/pkg/descriptor"
	"github.com/mesh-intelligence/knobs/pkg/types"
)

func TestCreate(t *testing.T) {
	reg := descriptor.NewRegistry()

	b, err := Create(reg, "TestInt", types.Int, 123)
	require.NoError(t, err)
	assert.Equal(t, "TestInt", b.Name())
	assert.Equal(t, 123, b.Value())
	assert.Equal(t, "123", b.String())
	assert.Equal(t, DefaultWidth, b.Width())
	assert.Equal(t, types.EntryInput, b.Kind())
	assert.False(t, b.Changed())
}

func TestCreateTypeMismatch(t *testing.T) {
	_, err := Create(descriptor.NewRegistry(), "TestInt", types.Int, "123")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrTypeMismatch)

	var me *types.TypeMismatchError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, "int", me.Type)
	assert.Equal(t, "123", me.Value)
}

func TestCreateUnsupported(t *testing.T) {
	_, err := Create(descriptor.NewRegistry(), "Position", types.Other("vector3"), "(0, 0, 0)")
	assert.ErrorIs(t, err, types.ErrUnsupportedType)
}

func TestCreateEnumOnTheFly(t *testing.T) {
	reg := descriptor.NewRegistry()
	style := types.NewEnum("EntryPointStyle", "NoIcon", "Gear", "MapTool")
	mapTool, _ := style.Enumerator("MapTool")

	b, err := Create(reg, "EntryPointStyle", style, mapTool)
	require.NoError(t, err)
	assert.Equal(t, types.EntryDropdown, b.Kind())
	assert.Equal(t, []string{"NoIcon", "Gear", "MapTool"}, b.Options())

	require.NoError(t, b.SetString("Gear"))
	assert.Equal(t, "Gear", b.String())

	_, ok := reg.Get(style)
	assert.True(t, ok, "enum descriptor is registered on first use")
}

func TestSetValueClampsRange(t *testing.T) {
	b, err := Create(nil, "TestIntWithRange", types.Int, 5)
	require.NoError(t, err)
	b.SetDefault(5).SetConstraint(constraint.MustRange(1, 10))

	assert.Equal(t, types.EntrySlider, b.Kind())
	assert.Equal(t, []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10"}, b.Options())

	require.NoError(t, b.SetValue(15))
	assert.Equal(t, 10, b.Value())
	assert.True(t, b.Changed())

	require.NoError(t, b.SetString("-3"))
	assert.Equal(t, 1, b.Value())
}

func TestSetValueRejectsListNonMember(t *testing.T) {
	b, err := Create(nil, "TestIntWithList", types.Int, 2)
	require.NoError(t, err)
	b.SetConstraint(constraint.MustList(-1, 1, 2, 3, 4, 5, 8))

	err = b.SetValue(7)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrValidation)

	var ve *types.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, []string{"-1", "1", "2", "3", "4", "5", "8"}, ve.Options)
	assert.Equal(t, "7", ve.Value)
	assert.Equal(t, "TestIntWithList: value not in options: -1, 1, 2, 3, 4, 5, 8", err.Error())

	assert.Equal(t, 2, b.Value(), "rejected writes leave the value unchanged")
	assert.False(t, b.Changed())
}

func TestRejectionCarriesBound(t *testing.T) {
	b, err := Create(nil, "Level", types.Int, 5)
	require.NoError(t, err)
	b.SetConstraint(constraint.MustRange(1, 10))

	var ve *types.ValidationError
	require.ErrorAs(t, b.rejection(42), &ve)
	assert.True(t, ve.Bounded)
	assert.Equal(t, "1", ve.Min)
	assert.Equal(t, "10", ve.Max)
	assert.Equal(t, "Level: value not in range: [1, 10]", ve.Error())
}

func TestRangeClampIsIdempotentOnWrites(t *testing.T) {
	b, err := Create(nil, "TestFloatWithRange", types.Float32, float32(0))
	require.NoError(t, err)
	b.SetConstraint(constraint.MustRange(float32(-10), float32(10)))

	for _, v := range []float32{-100, -10, 0, 3.5, 10, 100} {
		require.NoError(t, b.SetValue(v))
		first := b.Value()
		require.NoError(t, b.SetValue(first))
		assert.Equal(t, first, b.Value())
	}
}

func TestSetValueNoOpOnEqual(t *testing.T) {
	b, err := Create(nil, "TestDecimal", types.Decimal, decimal.RequireFromString("1.50"))
	require.NoError(t, err)

	require.NoError(t, b.SetValue(decimal.RequireFromString("1.5")))
	assert.False(t, b.Changed(), "equal decimals are not a change")
	assert.Equal(t, "1.5", b.String())
}

func TestSetValueTypeMismatch(t *testing.T) {
	b, err := Create(nil, "TestBool", types.Bool, true)
	require.NoError(t, err)

	assert.ErrorIs(t, b.SetValue("false"), types.ErrTypeMismatch)
	assert.Equal(t, true, b.Value())
}

func TestSetStringFormatError(t *testing.T) {
	b, err := Create(nil, "TestInt", types.Int, 123)
	require.NoError(t, err)

	err = b.SetString("12a")
	assert.ErrorIs(t, err, types.ErrFormat)
	assert.Equal(t, 123, b.Value())
}

func TestSetConstraintClampsCurrentValue(t *testing.T) {
	b, err := Create(nil, "TestInt", types.Int, 50)
	require.NoError(t, err)

	b.SetConstraint(constraint.MustRange(1, 10))
	assert.Equal(t, 10, b.Value())

	b2, err := Create(nil, "TestInt", types.Int, 7)
	require.NoError(t, err)
	b2.SetConstraint(constraint.MustList(1, 2))
	assert.Equal(t, 7, b2.Value(), "list constraints keep an out-of-list loaded value")
}

func TestDefaultAndReset(t *testing.T) {
	b, err := Create(nil, "TestString", types.String, "A String")
	require.NoError(t, err)

	assert.ErrorIs(t, b.Reset(), ErrNoDefault)

	b.SetDefault("A String")
	require.NoError(t, b.SetValue("other"))
	assert.False(t, b.IsDefault())
	require.NoError(t, b.Reset())
	assert.Equal(t, "A String", b.Value())
	assert.True(t, b.IsDefault())

	b.SetDefault(42)
	_, ok := b.Default()
	assert.False(t, ok, "defaults of another type are dropped")
}

func TestDefaultIsIncludedInOptions(t *testing.T) {
	b, err := Create(nil, "WidthRatio", types.Float32, float32(0.4))
	require.NoError(t, err)
	b.SetConstraint(constraint.MustList(float32(0.3), float32(0.5), float32(0.6)))

	b.SetDefault(float32(0.4))
	assert.Equal(t, []string{"0.3", "0.4", "0.5", "0.6"}, b.Options())
}

func TestSaveAndLoad(t *testing.T) {
	stored := any(5)
	b, err := Create(nil, "TestIntWithRange", types.Int, 5)
	require.NoError(t, err)
	b.SetConstraint(constraint.MustRange(1, 10)).
		SetOnSave(func(v any) error { stored = v; return nil }).
		SetOnLoad(func() (any, error) { return stored, nil })

	require.NoError(t, b.SetValue(8))
	assert.True(t, b.Dirty())
	require.NoError(t, b.Save())
	assert.Equal(t, 8, stored)
	assert.False(t, b.Dirty())
	assert.False(t, b.Changed())

	stored = 42
	require.NoError(t, b.Load())
	assert.Equal(t, 10, b.Value(), "loaded values are validated and clamped")
	assert.False(t, b.Changed())
}

func TestLoadWithoutHookKeepsValue(t *testing.T) {
	b, err := Create(nil, "TestBool", types.Bool, true)
	require.NoError(t, err)

	v, err := b.LoadValue()
	require.NoError(t, err)
	assert.Equal(t, true, v)
	require.NoError(t, b.Load())
	require.NoError(t, b.Save())
	assert.False(t, b.Dirty())
}

func TestSaveAndLoadErrors(t *testing.T) {
	boom := errors.New("disk full")
	b, err := Create(nil, "TestInt", types.Int, 1)
	require.NoError(t, err)
	b.SetOnSave(func(any) error { return boom }).
		SetOnLoad(func() (any, error) { return nil, boom })

	require.NoError(t, b.SetValue(2))
	assert.ErrorIs(t, b.Save(), boom)
	assert.True(t, b.Changed())
	assert.ErrorIs(t, b.Load(), boom)
	assert.True(t, b.Dirty())
}

func TestKindOverride(t *testing.T) {
	b, err := Create(nil, "WidthRatio", types.Float32, float32(0.4))
	require.NoError(t, err)
	b.SetConstraint(constraint.MustList(float32(0.3), float32(0.4)))
	assert.Equal(t, types.EntryDropdown, b.Kind())

	b.SetKind(types.EntrySlider)
	assert.Equal(t, types.EntrySlider, b.Kind())
}

func TestDescriptionEntry(t *testing.T) {
	b := NewDescription("with a newline. ", "#888888")

	assert.True(t, b.Static())
	assert.Equal(t, types.EntryDescription, b.Kind())
	assert.Equal(t, "#888888", b.NameColor())
	assert.ErrorIs(t, b.SetString("x"), ErrReadOnly)
	assert.ErrorIs(t, b.SetValue("x"), ErrReadOnly)
	assert.Nil(t, b.Options())
	assert.NoError(t, b.Save())
	assert.NoError(t, b.Load())
	assert.False(t, b.Dirty())
}

func TestErrorEntry(t *testing.T) {
	cause := &types.UnsupportedTypeError{Type: "vector3"}
	b := NewError("Position", cause)

	assert.Equal(t, "Position", b.Name())
	assert.Equal(t, "Position (Error!)", b.String())
	assert.Equal(t, types.EntryError, b.Kind())
	assert.Equal(t, ErrorColor, b.NameColor())
	assert.Equal(t, `UnsupportedTypeError: type "vector3" is not supported`, b.Tooltip())
	assert.Same(t, cause, b.Err())
	assert.ErrorIs(t, b.SetString("x"), ErrReadOnly)
}

func TestView(t *testing.T) {
	b, err := Create(nil, "Test Int", types.Int, 5)
	require.NoError(t, err)
	b.SetDefault(5).SetConstraint(constraint.MustRange(1, 10)).SetTooltip("tip").SetWidth(192)

	v := b.View("TestIntWithRange")
	assert.Equal(t, "TestIntWithRange", v.ID)
	assert.Equal(t, "Test Int", v.Name)
	assert.Equal(t, types.EntrySlider, v.Kind)
	assert.Len(t, v.Options, 10)
	assert.Equal(t, "5", v.Value)
	assert.Equal(t, "5", v.Default)
	assert.True(t, v.HasDefault)
	assert.Equal(t, "tip", v.Tooltip)
	assert.Equal(t, 192, v.Width)

	require.NoError(t, v.Set("7"))
	assert.Equal(t, "7", v.Current())
	assert.Error(t, v.Set("seven"))
	assert.Equal(t, "7", v.Current(), "a rejected edit leaves the value unchanged")
	require.NoError(t, v.Reset())
	assert.Equal(t, "5", v.Current())
}
