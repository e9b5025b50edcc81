package descriptor

import (
	"cmp"
	"math/bits"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/constraints"

	"github.com/mesh-intelligence/knobs/pkg/types"
)

func acceptsOf[T any](v any) bool {
	_, ok := v.(T)
	return ok
}

func compareOf[T cmp.Ordered](a, b any) int {
	return cmp.Compare(a.(T), b.(T))
}

// signedConfig describes a signed integer type of the given bit size. Narrow
// types enumerate every value of a range; wide types sample it.
func signedConfig[T constraints.Signed](t types.Type, bits int, narrow bool) Config {
	return Config{
		Type:   t,
		Format: func(v any) string { return strconv.FormatInt(int64(v.(T)), 10) },
		Parse: func(s string) (any, error) {
			n, err := strconv.ParseInt(strings.TrimSpace(s), 10, bits)
			if err != nil {
				return nil, err
			}
			return T(n), nil
		},
		Accepts:      acceptsOf[T],
		Compare:      compareOf[T],
		RangeOptions: signedRange[T](narrow),
	}
}

// unsignedConfig is the unsigned counterpart of signedConfig.
func unsignedConfig[T constraints.Unsigned](t types.Type, bits int, narrow bool) Config {
	return Config{
		Type:   t,
		Format: func(v any) string { return strconv.FormatUint(uint64(v.(T)), 10) },
		Parse: func(s string) (any, error) {
			n, err := strconv.ParseUint(strings.TrimSpace(s), 10, bits)
			if err != nil {
				return nil, err
			}
			return T(n), nil
		},
		Accepts:      acceptsOf[T],
		Compare:      compareOf[T],
		RangeOptions: unsignedRange[T](narrow),
	}
}

// floatConfig describes a floating point type. Values format in the shortest
// decimal-point form that parses back to the same bits.
func floatConfig[T constraints.Float](t types.Type, bits int) Config {
	return Config{
		Type:   t,
		Format: func(v any) string { return strconv.FormatFloat(float64(v.(T)), 'f', -1, bits) },
		Parse: func(s string) (any, error) {
			f, err := strconv.ParseFloat(strings.TrimSpace(s), bits)
			if err != nil {
				return nil, err
			}
			return T(f), nil
		},
		Accepts:      acceptsOf[T],
		Compare:      compareOf[T],
		RangeOptions: floatRange[T],
	}
}

func decimalConfig() Config {
	return Config{
		Type:   types.Decimal,
		Format: func(v any) string { return v.(decimal.Decimal).String() },
		Parse: func(s string) (any, error) {
			return decimal.NewFromString(strings.TrimSpace(s))
		},
		Accepts:      acceptsOf[decimal.Decimal],
		Compare:      func(a, b any) int { return a.(decimal.Decimal).Cmp(b.(decimal.Decimal)) },
		Equal:        func(a, b any) bool { return a.(decimal.Decimal).Equal(b.(decimal.Decimal)) },
		RangeOptions: decimalRange,
	}
}

// signedRange expands [lower, upper]. The span and every offset are computed in
// uint64, which holds the distance between any two int64 values.
func signedRange[T constraints.Signed](narrow bool) func(lower, upper any) []any {
	return func(lower, upper any) []any {
		lo, hi := lower.(T), upper.(T)
		if lo > hi {
			return nil
		}
		base := uint64(int64(lo))
		span := uint64(int64(hi)) - base
		at := func(offset uint64) any { return T(int64(base + offset)) }
		return sample(span, narrow, at)
	}
}

func unsignedRange[T constraints.Unsigned](narrow bool) func(lower, upper any) []any {
	return func(lower, upper any) []any {
		lo, hi := lower.(T), upper.(T)
		if lo > hi {
			return nil
		}
		base := uint64(lo)
		span := uint64(hi) - base
		at := func(offset uint64) any { return T(base + offset) }
		return sample(span, narrow, at)
	}
}

// sample enumerates every offset in [0, span] when the type is narrow or the
// span fits within Resolution, and otherwise takes the Resolution+1 offsets
// floor(i*span/Resolution). The product is formed in 128 bits so that no
// span overflows, and the last offset is span itself.
func sample(span uint64, narrow bool, at func(uint64) any) []any {
	if narrow || span <= Resolution {
		out := make([]any, 0, span+1)
		for i := uint64(0); i <= span; i++ {
			out = append(out, at(i))
		}
		return out
	}
	out := make([]any, Resolution+1)
	for i := range out {
		hi, lo := bits.Mul64(uint64(i), span)
		offset, _ := bits.Div64(hi, lo, Resolution)
		out[i] = at(offset)
	}
	return out
}

// floatRange samples [lower, upper] at Resolution+1 points. The step is
// taken as upper/N - lower/N so that it stays finite near the type's limits.
func floatRange[T constraints.Float](lower, upper any) []any {
	lo, hi := float64(lower.(T)), float64(upper.(T))
	if lo > hi {
		return nil
	}
	step := hi/Resolution - lo/Resolution
	out := make([]any, Resolution+1)
	out[0] = lower
	for i := 1; i < Resolution; i++ {
		out[i] = T(min(lo+float64(i)*step, hi))
	}
	out[Resolution] = upper
	return out
}

func decimalRange(lower, upper any) []any {
	lo, hi := lower.(decimal.Decimal), upper.(decimal.Decimal)
	if lo.GreaterThan(hi) {
		return nil
	}
	step := hi.Sub(lo).Div(decimal.NewFromInt(Resolution))
	out := make([]any, Resolution+1)
	out[0] = lower
	for i := 1; i < Resolution; i++ {
		out[i] = decimal.Min(lo.Add(step.Mul(decimal.NewFromInt(int64(i)))), hi)
	}
	out[Resolution] = upper
	return out
}
