// Package channel provides the BPSK test channels used to exercise decoders.
package channel

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Erasure implements a simple u<p erasure decision.
type Erasure struct {
	p   float64
	rng *rand.Rand
}

func NewErasure(p float64, seed uint64) *Erasure {
	return &Erasure{p: p, rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (e *Erasure) Drop() bool {
	if e.p <= 0 {
		return false
	}
	if e.p >= 1 {
		return true
	}
	return e.rng.Float64() < e.p
}

// Apply zeroes each LLR with probability p and returns how many were erased.
func (e *Erasure) Apply(llrs []float64) int {
	n := 0
	for i := range llrs {
		if e.Drop() {
			llrs[i] = 0
			n++
		}
	}
	return n
}

// AWGN is a BPSK channel with additive white Gaussian noise. Bit 0 maps to +1.
type AWGN struct {
	sigma float64
	noise distuv.Normal
}

// NewAWGN returns a channel at the given Eb/N0 (dB) for a code of the given rate.
func NewAWGN(ebn0DB, rate float64, seed uint64) *AWGN {
	esn0 := rate * math.Pow(10, ebn0DB/10)
	return NewAWGNSigma(math.Sqrt(1/(2*esn0)), seed)
}

func NewAWGNSigma(sigma float64, seed uint64) *AWGN {
	return &AWGN{
		sigma: sigma,
		noise: distuv.Normal{Mu: 0, Sigma: sigma, Src: rand.NewPCG(seed, ^seed)},
	}
}

func (a *AWGN) Sigma() float64 { return a.sigma }

// Transmit modulates bits and returns the channel LLRs 2y/sigma^2.
func (a *AWGN) Transmit(bits []uint8) []float64 {
	llrs := make([]float64, len(bits))
	scale := 2 / (a.sigma * a.sigma)
	for i, b := range bits {
		x := 1.0
		if b&1 == 1 {
			x = -1
		}
		llrs[i] = scale * (x + a.noise.Rand())
	}
	return llrs
}

// HardErrors counts positions where the LLR sign disagrees with bits.
func HardErrors(llrs []float64, bits []uint8) int {
	n := 0
	for i, l := range llrs {
		var b uint8
		if l < 0 {
			b = 1
		}
		if b != bits[i]&1 {
			n++
		}
	}
	return n
}
