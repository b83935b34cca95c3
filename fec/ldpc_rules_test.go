package fec

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseImplementation(t *testing.T) {
	for name, want := range map[string]Implementation{
		"sum-product":        SumProduct,
		"Phif64":             SumProduct,
		"phif32":             SumProduct,
		"SPA":                SumProduct,
		"Tanhf64":            Tanh,
		"TANHF32":            Tanh,
		"min-sum":            MinSum,
		"normalized-min-sum": NormalizedMinSum,
		" nms ":              NormalizedMinSum,
		"offset-min-sum":     OffsetMinSum,
		"Minstarapproxf64":   MinStarApprox,
		"Minstarapproxf32":   MinStarApprox,
		"min-star-approx":    MinStarApprox,
		"Aminstarf64":        AMinStar,
		"aminstarf32":        AMinStar,
		"a-min-star":         AMinStar,
	} {
		got, err := ParseImplementation(name)
		require.NoError(t, err, name)
		require.Equal(t, want, got, name)
	}
	for _, name := range []string{"HLPhif64", "Minstarapproxi8", "Aminstari8Jones", "f64", "belief"} {
		_, err := ParseImplementation(name)
		require.ErrorIs(t, err, ErrUnknownImplementation, name)
	}
	for _, impl := range Implementations() {
		got, err := ParseImplementation(impl.String())
		require.NoError(t, err)
		require.Equal(t, impl, got)
	}
}

func TestCheckMinSumFamily(t *testing.T) {
	in := []float64{2, -3, 5}
	out := make([]float64, 3)

	checkMinSum(in, out, 1, 0)
	require.Equal(t, []float64{-3, 2, -2}, out)

	checkMinSum(in, out, 0.75, 0)
	require.Equal(t, []float64{-2.25, 1.5, -1.5}, out)

	checkMinSum(in, out, 1, 0.5)
	require.Equal(t, []float64{-2.5, 1.5, -1.5}, out)

	checkMinSum([]float64{0.25, -4}, out[:2], 1, 0.5)
	require.Equal(t, []float64{-3.5, 0}, out[:2])
}

func TestSumProductMatchesTanhRule(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	tmp := make([]float64, 8)
	for trial := 0; trial < 200; trial++ {
		d := 2 + rng.Intn(6)
		in := make([]float64, d)
		for i := range in {
			in[i] = (0.2 + 4*rng.Float64()) * float64(1-2*rng.Intn(2))
		}
		a := make([]float64, d)
		b := make([]float64, d)
		checkSumProduct(in, a, tmp)
		checkTanh(in, b, tmp, tanhClamp64)
		for i := range a {
			require.InDelta(t, b[i], a[i], 1e-6)
		}
	}
}

func TestRulesStayFinite(t *testing.T) {
	scratch := make([]float64, 4)
	inputs := [][]float32{
		{maxLLR, -maxLLR, maxLLR},
		{0, 0, 0},
		{maxLLR},
		{1e-20, -1e-20, 30},
		{-maxLLR, -maxLLR},
	}
	for _, impl := range Implementations() {
		rule := bindRule[float32](ruleParams{impl: impl, tanhClamp: tanhClamp32, scale: 0.75, offset: 0.5})
		for _, in := range inputs {
			out := make([]float32, len(in))
			rule(in, out, scratch)
			for _, v := range out {
				require.False(t, math.IsNaN(float64(v)), impl.String())
				require.False(t, math.IsInf(float64(v), 0), impl.String())
				require.LessOrEqual(t, math.Abs(float64(v)), maxLLR)
			}
		}
	}
}

func TestClampLLR(t *testing.T) {
	require.Equal(t, float64(maxLLR), clampLLR[float64](math.Inf(1)))
	require.Equal(t, float32(-maxLLR), clampLLR[float32](-1e300))
	require.Equal(t, float64(0), clampLLR[float64](math.NaN()))
	require.Equal(t, float32(1.5), clampLLR[float32](1.5))
}

func TestAMinStarLeastReliableEdgeIsExact(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	tmp := make([]float64, 8)
	for trial := 0; trial < 200; trial++ {
		d := 2 + rng.Intn(6)
		in := make([]float64, d)
		minIdx := 0
		for i := range in {
			in[i] = (0.2 + 4*rng.Float64()) * float64(1-2*rng.Intn(2))
			if math.Abs(in[i]) < math.Abs(in[minIdx]) {
				minIdx = i
			}
		}
		spa := make([]float64, d)
		amin := make([]float64, d)
		checkSumProduct(in, spa, tmp)
		checkAMinStar(in, amin)
		require.InDelta(t, spa[minIdx], amin[minIdx], 1e-6)
		for i := range in {
			require.Equal(t, math.Signbit(spa[i]), math.Signbit(amin[i]))
			require.LessOrEqual(t, math.Abs(amin[i]), math.Abs(spa[i])+1e-9)
		}
	}
}

func TestMinStarApproxBoundedByMinSum(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	tmp := make([]float64, 8)
	for trial := 0; trial < 200; trial++ {
		d := 2 + rng.Intn(6)
		in := make([]float64, d)
		for i := range in {
			in[i] = (0.2 + 4*rng.Float64()) * float64(1-2*rng.Intn(2))
		}
		ms := make([]float64, d)
		approx := make([]float64, d)
		checkMinSum(in, ms, 1, 0)
		checkMinStarApprox(in, approx, tmp)
		for i := range in {
			if approx[i] != 0 {
				require.Equal(t, math.Signbit(ms[i]), math.Signbit(approx[i]))
			}
			require.LessOrEqual(t, math.Abs(approx[i]), math.Abs(ms[i])+1e-12)
		}
	}

	// Two equal inputs lose ln 2 relative to min-sum; far apart inputs lose nothing.
	out := make([]float64, 3)
	checkMinStarApprox([]float64{3, -3, 100}, out, tmp)
	require.Equal(t, []float64{-3, 3}, out[:2])
	require.InDelta(t, -(3 - math.Ln2), out[2], 1e-12)
}
