package descriptor

import (
	"math"
	"math/big"
	"strconv"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/knobs/pkg/constraint"
	"github.com/mesh-intelligence/knobs/pkg/types"
)

func builtin(t *testing.T, typ types.Type) *Descriptor {
	t.Helper()
	d, ok := Builtin(typ)
	require.True(t, ok, "no built-in descriptor for %s", typ)
	return d
}

func TestRoundTrip(t *testing.T) {
	samples := map[string][]any{
		"string":  {"", "hello", "with space", "ünïcödé"},
		"bool":    {true, false},
		"int8":    {int8(math.MinInt8), int8(0), int8(math.MaxInt8)},
		"int16":   {int16(math.MinInt16), int16(-7), int16(math.MaxInt16)},
		"int32":   {int32(math.MinInt32), int32(42), int32(math.MaxInt32)},
		"int64":   {int64(math.MinInt64), int64(-1), int64(math.MaxInt64)},
		"int":     {math.MinInt, 0, math.MaxInt},
		"uint8":   {uint8(0), uint8(math.MaxUint8)},
		"uint16":  {uint16(0), uint16(math.MaxUint16)},
		"uint32":  {uint32(0), uint32(math.MaxUint32)},
		"uint64":  {uint64(0), uint64(math.MaxUint64)},
		"uint":    {uint(0), uint(math.MaxUint)},
		"float32": {float32(0.1), float32(-3.4028235e38), float32(1e-45), float32(0.6)},
		"float64": {0.1, -10.0, math.MaxFloat64, math.SmallestNonzeroFloat64, 1.0 / 3},
		"decimal": {decimal.RequireFromString("0.1"), decimal.RequireFromString("-12345678901234567890.000001")},
		"KeyCode": {types.EnumValue{Type: "KeyCode", Name: "A"}, types.EnumValue{Type: "KeyCode", Name: "None"}},
	}

	for _, typ := range types.Builtins {
		values, ok := samples[typ.Name]
		require.True(t, ok, "missing samples for %s", typ.Name)
		d := builtin(t, typ)

		t.Run(typ.Name, func(t *testing.T) {
			for _, v := range values {
				s := d.Format(v)
				got, err := d.Parse(s)
				require.NoError(t, err, "parse %q", s)
				assert.True(t, d.Equal(v, got), "%s: parse(format(%v)) = %v via %q", typ.Name, v, got, s)
			}
		})
	}
}

func TestInvariantFormatting(t *testing.T) {
	assert.Equal(t, "1234567.5", builtin(t, types.Float64).Format(1234567.5))
	assert.Equal(t, "0.3", builtin(t, types.Float32).Format(float32(0.3)))
	assert.Equal(t, "-10", builtin(t, types.Float64).Format(-10.0))
	assert.Equal(t, "true", builtin(t, types.Bool).Format(true))
	assert.Equal(t, "0.25", builtin(t, types.Decimal).Format(decimal.RequireFromString("0.25")))
}

func TestParseReportsFormatError(t *testing.T) {
	tests := []struct {
		typ   types.Type
		input string
	}{
		{types.Int, "abc"},
		{types.Int8, "128"},
		{types.Uint16, "-1"},
		{types.Float64, "1,5"},
		{types.Bool, "yes"},
		{types.Decimal, "1.2.3"},
	}
	for _, tt := range tests {
		t.Run(tt.typ.Name+"/"+tt.input, func(t *testing.T) {
			_, err := builtin(t, tt.typ).Parse(tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, types.ErrFormat)

			var fe *types.FormatError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.typ.Name, fe.Type)
			assert.Equal(t, tt.input, fe.Input)
		})
	}
}

func TestParseTrimsSpace(t *testing.T) {
	v, err := builtin(t, types.Int).Parse(" 42 ")
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func assertNonDecreasing(t *testing.T, d *Descriptor, options []string) {
	t.Helper()
	for i := 1; i < len(options); i++ {
		a, err := d.Parse(options[i-1])
		require.NoError(t, err)
		b, err := d.Parse(options[i])
		require.NoError(t, err)
		c, ok := d.Compare(a, b)
		require.True(t, ok)
		assert.LessOrEqual(t, c, 0, "options[%d]=%s > options[%d]=%s", i-1, options[i-1], i, options[i])
	}
}

func TestRangeExpansionNarrow(t *testing.T) {
	tests := []struct {
		typ      types.Type
		min, max any
		want     int
	}{
		{types.Int8, int8(-3), int8(3), 7},
		{types.Int8, int8(math.MinInt8), int8(math.MaxInt8), 256},
		{types.Int16, int16(-1000), int16(1000), 2001},
		{types.Int16, int16(math.MinInt16), int16(math.MaxInt16), 65536},
		{types.Uint8, uint8(0), uint8(math.MaxUint8), 256},
		{types.Uint16, uint16(10), uint16(500), 491},
		{types.Uint16, uint16(7), uint16(7), 1},
	}
	for _, tt := range tests {
		d := builtin(t, tt.typ)
		t.Run(tt.typ.Name+"/"+strconv.Itoa(tt.want), func(t *testing.T) {
			c, err := d.RangeConstraint(tt.min, tt.max)
			require.NoError(t, err)

			options := d.Options(c)
			require.Len(t, options, tt.want)
			assert.Equal(t, d.Format(tt.min), options[0])
			assert.Equal(t, d.Format(tt.max), options[len(options)-1])
			assertNonDecreasing(t, d, options)
		})
	}
}

func TestRangeExpansionWide(t *testing.T) {
	tests := []struct {
		typ      types.Type
		min, max any
	}{
		{types.Int32, int32(math.MinInt32), int32(math.MaxInt32)},
		{types.Int32, int32(-500), int32(12345)},
		{types.Int64, int64(math.MinInt64), int64(math.MaxInt64)},
		{types.Int, math.MinInt, math.MaxInt},
		{types.Int, 0, 1000},
		{types.Uint32, uint32(0), uint32(math.MaxUint32)},
		{types.Uint64, uint64(0), uint64(math.MaxUint64)},
		{types.Uint64, uint64(math.MaxUint64 - 1000), uint64(math.MaxUint64)},
		{types.Uint, uint(1), uint(1 << 40)},
		{types.Float32, float32(-math.MaxFloat32), float32(math.MaxFloat32)},
		{types.Float32, float32(0.3), float32(0.6)},
		{types.Float64, -math.MaxFloat64, math.MaxFloat64},
		{types.Float64, 0.0, 1.0},
		{types.Decimal, decimal.NewFromInt(-10), decimal.NewFromInt(10)},
		{types.Decimal, decimal.RequireFromString("0.001"), decimal.RequireFromString("0.002")},
	}
	for _, tt := range tests {
		d := builtin(t, tt.typ)
		t.Run(tt.typ.Name+"/"+d.Format(tt.max), func(t *testing.T) {
			c, err := d.RangeConstraint(tt.min, tt.max)
			require.NoError(t, err)

			options := d.Options(c)
			require.Len(t, options, Resolution+1)
			assert.Equal(t, d.Format(tt.min), options[0])
			assert.Equal(t, d.Format(tt.max), options[Resolution])
			assertNonDecreasing(t, d, options)
		})
	}
}

func TestWideIntegerRangeIsEvenlySpaced(t *testing.T) {
	tests := []struct {
		typ      types.Type
		min, max any
	}{
		{types.Int32, int32(0), int32(199)},
		{types.Int32, int32(-500), int32(12345)},
		{types.Int32, int32(math.MinInt32), int32(math.MaxInt32)},
		{types.Int64, int64(math.MinInt64), int64(math.MaxInt64)},
		{types.Int, 0, 1001},
		{types.Uint64, uint64(0), uint64(math.MaxUint64)},
		{types.Uint, uint(7), uint(1<<40 + 3)},
	}
	for _, tt := range tests {
		d := builtin(t, tt.typ)
		t.Run(tt.typ.Name+"/"+d.Format(tt.min)+".."+d.Format(tt.max), func(t *testing.T) {
			c, err := d.RangeConstraint(tt.min, tt.max)
			require.NoError(t, err)

			options := d.Options(c)
			require.Len(t, options, Resolution+1)

			lo, hi := bigInt(t, d.Format(tt.min)), bigInt(t, d.Format(tt.max))
			span := new(big.Int).Sub(hi, lo)
			res := big.NewInt(Resolution)
			floor := new(big.Int).Quo(span, res)
			ceil := new(big.Int).Quo(new(big.Int).Add(span, big.NewInt(Resolution-1)), res)
			for i := 1; i < len(options); i++ {
				gap := new(big.Int).Sub(bigInt(t, options[i]), bigInt(t, options[i-1]))
				assert.True(t, gap.Cmp(floor) >= 0 && gap.Cmp(ceil) <= 0,
					"gap %s between options[%d] and options[%d] outside [%s, %s]", gap, i-1, i, floor, ceil)
			}
		})
	}
}

func bigInt(t *testing.T, s string) *big.Int {
	t.Helper()
	n, ok := new(big.Int).SetString(s, 10)
	require.True(t, ok, "not an integer: %q", s)
	return n
}

func TestIntRangeWithinResolutionIsExact(t *testing.T) {
	d := builtin(t, types.Int)
	c := constraint.MustRange(1, 10)

	assert.Equal(t, []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10"}, d.Options(c, 5))
	assert.Equal(t, types.EntrySlider, d.DefaultKind(c))
}

func TestFloatRangeScenario(t *testing.T) {
	d := builtin(t, types.Float64)
	c := constraint.MustRange(-10.0, 10.0)

	options := d.Options(c)
	require.Len(t, options, 101)
	assert.Equal(t, "-10", options[0])
	assert.Equal(t, "10", options[100])
}

func TestListOptions(t *testing.T) {
	d := builtin(t, types.Int)
	c := constraint.MustList(-1, 1, 2, 3, 4, 5, 8)
	want := []string{"-1", "1", "2", "3", "4", "5", "8"}

	assert.Equal(t, want, d.Options(c))
	assert.Equal(t, want, d.Options(c, 2), "present values are not injected")
	assert.Equal(t, want, d.Options(c, "2", int64(7), nil), "values of other types are ignored")
	assert.Equal(t, types.EntryDropdown, d.DefaultKind(c))
}

func TestListOptionsKeepDeclaredOrder(t *testing.T) {
	d := builtin(t, types.String)
	c := constraint.MustList("zeta", "alpha", "mid")

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, d.Options(c))
}

func TestMustIncludeIsInjectedAndSorted(t *testing.T) {
	d := builtin(t, types.Float32)
	c := constraint.MustList(float32(0.3), float32(0.4), float32(0.5), float32(0.6))

	got := d.Options(c, float32(0.45), float32(0.45), float32(0.1))
	assert.Equal(t, []string{"0.1", "0.3", "0.4", "0.45", "0.5", "0.6"}, got)
}

func TestMustIncludeOnRange(t *testing.T) {
	d := builtin(t, types.Int64)
	c := constraint.MustRange(int64(0), int64(1000))

	got := d.Options(c, int64(5))
	require.Len(t, got, Resolution+2)
	assert.Equal(t, []string{"0", "5", "10"}, got[:3])
	assertNonDecreasing(t, d, got)
}

func TestOptionsFallBackToDefaults(t *testing.T) {
	boolD := builtin(t, types.Bool)
	assert.Equal(t, []string{"true", "false"}, boolD.Options(nil))
	assert.Equal(t, []string{"true", "false"}, boolD.Options(nil, false))
	assert.Equal(t, types.EntryCycling, boolD.DefaultKind(nil))

	stringD := builtin(t, types.String)
	assert.Nil(t, stringD.Options(nil), "strings are free-form")
	assert.False(t, stringD.SupportsRange())

	rng, err := stringD.RangeConstraint("a", "m")
	require.NoError(t, err)
	assert.Nil(t, stringD.Options(rng), "ranges over types without expansion yield no options")
	assert.Equal(t, types.EntryInput, stringD.DefaultKind(rng))
}

func TestEnumStructuralDefaults(t *testing.T) {
	reg := NewRegistry()
	style := types.NewEnum("EntryPointStyle", "NoIcon", "Gear", "MapTool")

	_, ok := reg.Get(style)
	require.False(t, ok)

	d, err := reg.GetOrCreate(style)
	require.NoError(t, err)
	assert.Equal(t, []string{"NoIcon", "Gear", "MapTool"}, d.DefaultOptions())
	assert.Equal(t, []string{"NoIcon", "Gear", "MapTool"}, d.Options(nil))
	assert.Equal(t, types.EntryDropdown, d.DefaultKind(nil))

	gear, _ := style.Enumerator("Gear")
	assert.Equal(t, "Gear", d.Format(gear))
	v, err := d.Parse("MapTool")
	require.NoError(t, err)
	assert.Equal(t, types.EnumValue{Type: "EntryPointStyle", Name: "MapTool"}, v)

	_, err = d.Parse("Wrench")
	assert.ErrorIs(t, err, types.ErrFormat)

	c, ok := d.Compare(v, gear)
	require.True(t, ok)
	assert.Positive(t, c)

	again, err := reg.GetOrCreate(style)
	require.NoError(t, err)
	assert.Same(t, d, again)
}

func TestKeyCodeIsKeymap(t *testing.T) {
	d := builtin(t, types.KeyCode)
	assert.Equal(t, types.EntryKeymap, d.DefaultKind(nil))
	assert.Equal(t, "None", d.DefaultOptions()[0])
}

func TestEnumRejectsForeignValues(t *testing.T) {
	d := MustNew(Config{Type: types.NewEnum("Color", "Red", "Green")})

	assert.True(t, d.Accepts(types.EnumValue{Type: "Color", Name: "Red"}))
	assert.False(t, d.Accepts(types.EnumValue{Type: "Color", Name: "Blue"}))
	assert.False(t, d.Accepts(types.EnumValue{Type: "Shade", Name: "Red"}))
	assert.False(t, d.Accepts("Red"))
}

func TestGetOrCreateUnsupported(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.GetOrCreate(types.Other("vector3"))
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrUnsupportedType)

	var ue *types.UnsupportedTypeError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "vector3", ue.Type)
}

func TestNewRequiresFunctions(t *testing.T) {
	_, err := New(Config{Type: types.Other("vector3")})
	assert.ErrorIs(t, err, ErrNoFormat)

	_, err = New(Config{Type: types.Other("vector3"), Format: func(any) string { return "" }})
	assert.ErrorIs(t, err, ErrNoParse)

	_, err = New(Config{
		Type:   types.Other("vector3"),
		Format: func(any) string { return "" },
		Parse:  func(string) (any, error) { return nil, nil },
	})
	assert.ErrorIs(t, err, ErrNoAccepts)
}

type vector3 struct{ X, Y, Z float64 }

func vectorConfig() Config {
	return Config{
		Type:    types.Other("vector3"),
		Format:  func(v any) string { return strconv.FormatFloat(v.(vector3).X, 'f', -1, 64) },
		Parse:   func(s string) (any, error) { return vector3{}, nil },
		Accepts: acceptsOf[vector3],
	}
}

func TestRegisterOverride(t *testing.T) {
	reg := NewRegistry()
	custom := MustNew(vectorConfig())

	assert.True(t, reg.Register(custom, false))
	assert.False(t, reg.Register(MustNew(vectorConfig()), false), "first registration wins without override")

	got, err := reg.GetOrCreate(types.Other("vector3"))
	require.NoError(t, err)
	assert.Same(t, custom, got)

	replacement := MustNew(vectorConfig())
	assert.True(t, reg.Register(replacement, true))
	got, ok := reg.Lookup("vector3")
	require.True(t, ok)
	assert.Same(t, replacement, got)

	names := typeNames(reg.Types())
	assert.Equal(t, "vector3", names[len(names)-1])
	assert.Len(t, names, len(types.Builtins)+1)
}

func TestRegistryReset(t *testing.T) {
	reg := NewRegistry()
	reg.Register(MustNew(vectorConfig()), false)
	_, err := reg.GetOrCreate(types.NewEnum("Color", "Red"))
	require.NoError(t, err)

	reg.Reset()

	assert.Equal(t, typeNames(types.Builtins), typeNames(reg.Types()))
	_, ok := reg.Lookup("vector3")
	assert.False(t, ok)
	_, ok = reg.Lookup("Color")
	assert.False(t, ok)
}

func TestRegistryOverrideDoesNotTouchBuiltin(t *testing.T) {
	reg := NewRegistry()
	cfg := stringConfig()
	cfg.DefaultKind = types.EntryKeymap
	reg.Register(MustNew(cfg), true)

	d, _ := reg.Get(types.String)
	assert.Equal(t, types.EntryKeymap, d.DefaultKind(nil))
	assert.Equal(t, types.EntryInput, builtin(t, types.String).DefaultKind(nil))
}

func TestConcurrentEnumCreation(t *testing.T) {
	reg := NewRegistry()
	style := types.NewEnum("Mode", "A", "B")

	results := make(chan *Descriptor, 16)
	for range 16 {
		go func() {
			d, err := reg.GetOrCreate(style)
			if err != nil {
				results <- nil
				return
			}
			results <- d
		}()
	}
	first := <-results
	require.NotNil(t, first)
	for range 15 {
		assert.Same(t, first, <-results)
	}
}

func TestParsedConstraints(t *testing.T) {
	d := builtin(t, types.Int)

	list, err := d.ParseList("-1", "1", "8")
	require.NoError(t, err)
	assert.Equal(t, []any{-1, 1, 8}, list.ListedValues())

	rng, err := d.ParseRange("1", "10")
	require.NoError(t, err)
	lo, hi, ok := rng.Bound()
	require.True(t, ok)
	assert.Equal(t, 1, lo)
	assert.Equal(t, 10, hi)

	_, err = d.ParseRange("10", "1")
	assert.ErrorIs(t, err, constraint.ErrInvertedRange)

	_, err = d.ParseList("1", "x")
	assert.ErrorIs(t, err, types.ErrFormat)

	_, err = d.ListConstraint(1, "2")
	assert.ErrorIs(t, err, types.ErrTypeMismatch)

	_, err = MustNew(vectorConfig()).RangeConstraint(vector3{}, vector3{})
	assert.ErrorIs(t, err, ErrUnordered)
}

func TestDefaultRegistry(t *testing.T) {
	t.Cleanup(Default().Reset)

	d, err := Default().GetOrCreate(types.NewEnum("DefaultRegistryEnum", "One"))
	require.NoError(t, err)
	assert.Equal(t, []string{"One"}, d.DefaultOptions())
}

func typeNames(ts []types.Type) []string {
	names := make([]string, len(ts))
	for i, t := range ts {
		names[i] = t.Name
	}
	return names
}
