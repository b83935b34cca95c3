package fec

import (
	"fmt"
	"math"
	"strings"
)

// Implementation selects the check-node combination rule of a Decoder.
type Implementation int

const (
	SumProduct Implementation = iota
	Tanh
	MinSum
	NormalizedMinSum
	OffsetMinSum
	MinStarApprox
	AMinStar
)

var implementationNames = [...]string{
	SumProduct:       "sum-product",
	Tanh:             "tanh",
	MinSum:           "min-sum",
	NormalizedMinSum: "normalized-min-sum",
	OffsetMinSum:     "offset-min-sum",
	MinStarApprox:    "min-star-approx",
	AMinStar:         "a-min-star",
}

func (i Implementation) String() string {
	if i < 0 || int(i) >= len(implementationNames) {
		return fmt.Sprintf("Implementation(%d)", int(i))
	}
	return implementationNames[i]
}

// Implementations lists every supported rule.
func Implementations() []Implementation {
	return []Implementation{SumProduct, Tanh, MinSum, NormalizedMinSum, OffsetMinSum, MinStarApprox, AMinStar}
}

var implementationAliases = map[string]Implementation{
	"sum-product":        SumProduct,
	"sumproduct":         SumProduct,
	"spa":                SumProduct,
	"phi":                SumProduct,
	"tanh":               Tanh,
	"min-sum":            MinSum,
	"minsum":             MinSum,
	"normalized-min-sum": NormalizedMinSum,
	"nms":                NormalizedMinSum,
	"offset-min-sum":     OffsetMinSum,
	"oms":                OffsetMinSum,
	"min-star-approx":    MinStarApprox,
	"minstarapprox":      MinStarApprox,
	"a-min-star":         AMinStar,
	"aminstar":           AMinStar,
}

// ParseImplementation resolves a rule name. Names are case-insensitive and
// an f32/f64 precision suffix is accepted (Phif64 and Tanhf32 are valid).
func ParseImplementation(name string) (Implementation, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if i, ok := implementationAliases[key]; ok {
		return i, nil
	}
	if base, ok := strings.CutSuffix(key, "f64"); ok {
		key = base
	} else if base, ok := strings.CutSuffix(key, "f32"); ok {
		key = base
	}
	if i, ok := implementationAliases[key]; ok {
		return i, nil
	}
	return 0, fmt.Errorf("%q: %w", name, ErrUnknownImplementation)
}

const (
	// maxLLR bounds every channel value and message.
	maxLLR = 1e6
	// phiMinArg keeps phi finite; phi(1e-30) is about 69.8.
	phiMinArg = 1e-30

	tanhClamp64 = 18.0
	tanhClamp32 = 9.0

	defaultNormalizedScale = 0.75
	defaultMinSumOffset    = 0.5
)

// clampLLR maps x into [-maxLLR, maxLLR]. NaN becomes an erasure.
func clampLLR[T Float](x float64) T {
	switch {
	case x != x:
		return 0
	case x > maxLLR:
		return maxLLR
	case x < -maxLLR:
		return -maxLLR
	}
	return T(x)
}

// phi(x) = -ln(tanh(x/2)). phi is its own inverse on x > 0.
func phi(x float64) float64 {
	if x < phiMinArg {
		x = phiMinArg
	}
	return -math.Log(math.Tanh(0.5 * x))
}

// checkRule computes the outgoing messages of one check node from its incoming
// variable messages. tmp has room for at least len(in) values.
type checkRule[T Float] func(in, out []T, tmp []float64)

type ruleParams struct {
	impl      Implementation
	tanhClamp float64
	scale     float64
	offset    float64
}

func bindRule[T Float](p ruleParams) checkRule[T] {
	switch p.impl {
	case SumProduct:
		return checkSumProduct[T]
	case Tanh:
		clamp := p.tanhClamp
		return func(in, out []T, tmp []float64) { checkTanh(in, out, tmp, clamp) }
	case NormalizedMinSum:
		scale := p.scale
		return func(in, out []T, _ []float64) { checkMinSum(in, out, scale, 0) }
	case OffsetMinSum:
		offset := p.offset
		return func(in, out []T, _ []float64) { checkMinSum(in, out, 1, offset) }
	case MinStarApprox:
		return checkMinStarApprox[T]
	case AMinStar:
		return func(in, out []T, _ []float64) { checkAMinStar(in, out) }
	default:
		return func(in, out []T, _ []float64) { checkMinSum(in, out, 1, 0) }
	}
}

func checkSumProduct[T Float](in, out []T, tmp []float64) {
	var sign uint8
	sum := 0.0
	for i, m := range in {
		x := float64(m)
		if x < 0 {
			sign ^= 1
			x = -x
		}
		tmp[i] = phi(x)
		sum += tmp[i]
	}
	for i, m := range in {
		y := phi(sum - tmp[i])
		s := sign
		if m < 0 {
			s ^= 1
		}
		if s != 0 {
			y = -y
		}
		out[i] = clampLLR[T](y)
	}
}

func checkTanh[T Float](in, out []T, tmp []float64, clamp float64) {
	for i, m := range in {
		h := 0.5 * float64(m)
		h = max(-clamp, min(clamp, h))
		tmp[i] = math.Tanh(h)
	}
	for i := range in {
		prod := 1.0
		for j := range in {
			if j != i {
				prod *= tmp[j]
			}
		}
		out[i] = clampLLR[T](2 * math.Atanh(prod))
	}
}

func checkMinSum[T Float](in, out []T, scale, offset float64) {
	min1, min2 := math.Inf(1), math.Inf(1)
	minIdx := -1
	var sign uint8
	for i, m := range in {
		x := float64(m)
		if x < 0 {
			sign ^= 1
			x = -x
		}
		if x < min1 {
			min1, min2, minIdx = x, min1, i
		} else if x < min2 {
			min2 = x
		}
	}
	for i, m := range in {
		mag := min1
		if i == minIdx {
			mag = min2
		}
		mag = max(scale*mag-offset, 0)
		s := sign
		if m < 0 {
			s ^= 1
		}
		if s != 0 {
			mag = -mag
		}
		out[i] = clampLLR[T](mag)
	}
}

// boxPlusMag returns the magnitude of a ⊞ b for magnitudes a, b >= 0:
// min(a,b) + corr(a+b) - corr(|a-b|). +Inf is the identity element.
func boxPlusMag(a, b float64, corr func(float64) float64) float64 {
	if math.IsInf(a, 1) {
		return b
	}
	if math.IsInf(b, 1) {
		return a
	}
	return max(min(a, b)+corr(a+b)-corr(math.Abs(a-b)), 0)
}

// exactCorrection is ln(1 + e^-z).
func exactCorrection(z float64) float64 { return math.Log1p(math.Exp(-z)) }

// approxCorrection is the tangent of ln(1 + e^-z) at zero, floored at zero.
func approxCorrection(z float64) float64 { return max(math.Ln2-0.5*z, 0) }

func signedMessage[T Float](mag float64, sign uint8, m T) T {
	if m < 0 {
		sign ^= 1
	}
	if sign != 0 {
		mag = -mag
	}
	return clampLLR[T](mag)
}

// checkMinStarApprox folds every other input with the approximate min*
// operator, using forward prefixes in tmp and a backward running value.
func checkMinStarApprox[T Float](in, out []T, tmp []float64) {
	var sign uint8
	acc := math.Inf(1)
	for i, m := range in {
		x := float64(m)
		if x < 0 {
			sign ^= 1
			x = -x
		}
		acc = boxPlusMag(acc, x, approxCorrection)
		tmp[i] = acc
	}
	right := math.Inf(1)
	for i := len(in) - 1; i >= 0; i-- {
		left := math.Inf(1)
		if i > 0 {
			left = tmp[i-1]
		}
		m := in[i]
		mag := boxPlusMag(left, right, approxCorrection)
		right = boxPlusMag(right, math.Abs(float64(m)), approxCorrection)
		out[i] = signedMessage(mag, sign, m)
	}
}

// checkAMinStar sends the least reliable input the exact min* of all the
// others, and every other edge the min* of all inputs.
func checkAMinStar[T Float](in, out []T) {
	min1 := math.Inf(1)
	minIdx := -1
	var sign uint8
	for i, m := range in {
		x := float64(m)
		if x < 0 {
			sign ^= 1
			x = -x
		}
		if x < min1 {
			min1, minIdx = x, i
		}
	}
	others := math.Inf(1)
	for i, m := range in {
		if i != minIdx {
			others = boxPlusMag(others, math.Abs(float64(m)), exactCorrection)
		}
	}
	all := boxPlusMag(others, min1, exactCorrection)
	for i, m := range in {
		mag := all
		if i == minIdx {
			mag = others
		}
		out[i] = signedMessage(mag, sign, m)
	}
}
