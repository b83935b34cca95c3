package fec

import (
	"fmt"
	"slices"

	"go.uber.org/zap"
)

// GeneratorDescription is the systematic form of a parity-check matrix,
// obtained by Gauss-Jordan elimination over GF(2). It is immutable.
type GeneratorDescription struct {
	n, k       int
	infoCols   []int    // K columns carrying information bits, ascending
	parityCols []int    // M pivot columns, ascending
	parityRows []bitRow // parityCols[i] = <parityRows[i], info>
}

// NewGenerator derives the systematic generator of g. Pivot columns are
// searched from the last M columns first, so a code whose trailing MxM block
// is invertible keeps its information bits at positions 0..K-1.
func NewGenerator(g *TannerGraph) (*GeneratorDescription, error) {
	n, m := g.n, g.m
	if m >= n {
		return nil, fmt.Errorf("%dx%d matrix leaves no information bits: %w", m, n, ErrSingularMatrix)
	}
	order := make([]int, 0, n)
	for c := n - m; c < n; c++ {
		order = append(order, c)
	}
	for c := 0; c < n-m; c++ {
		order = append(order, c)
	}
	rows := packGraph(g)
	pivots := reduceGF2(rows, order)
	if len(pivots) < m {
		return nil, fmt.Errorf("rank %d < %d checks: %w", len(pivots), m, ErrSingularMatrix)
	}

	isPivot := make([]bool, n)
	for _, c := range pivots {
		isPivot[c] = true
	}
	gen := &GeneratorDescription{n: n, k: n - m}
	for c := 0; c < n; c++ {
		if !isPivot[c] {
			gen.infoCols = append(gen.infoCols, c)
		}
	}

	// Row i of the reduced matrix has a single pivot one at pivots[i];
	// its remaining ones sit on information columns.
	type parity struct {
		col int
		row bitRow
	}
	ps := make([]parity, m)
	for i, c := range pivots {
		r := newBitRow(gen.k)
		for k, ic := range gen.infoCols {
			if rows[i].get(ic) {
				r.set(k)
			}
		}
		ps[i] = parity{col: c, row: r}
	}
	slices.SortFunc(ps, func(a, b parity) int { return a.col - b.col })
	for _, p := range ps {
		gen.parityCols = append(gen.parityCols, p.col)
		gen.parityRows = append(gen.parityRows, p.row)
	}
	return gen, nil
}

// InfoLength returns K = N - M.
func (gen *GeneratorDescription) InfoLength() int { return gen.k }

// CodewordLength returns N.
func (gen *GeneratorDescription) CodewordLength() int { return gen.n }

// InfoColumns returns the codeword positions of the information bits.
func (gen *GeneratorDescription) InfoColumns() []int { return slices.Clone(gen.infoCols) }

// ParityColumns returns the codeword positions of the parity bits.
func (gen *GeneratorDescription) ParityColumns() []int { return slices.Clone(gen.parityCols) }

// Permutation maps systematic order (information then parity) to codeword positions.
func (gen *GeneratorDescription) Permutation() []int {
	return slices.Concat(gen.infoCols, gen.parityCols)
}

// IsIdentityPermutation reports whether information bits occupy positions 0..K-1.
func (gen *GeneratorDescription) IsIdentityPermutation() bool {
	return gen.infoCols[gen.k-1] == gen.k-1
}

// PermuteGraph returns g with its columns reordered into systematic order.
func (gen *GeneratorDescription) PermuteGraph(g *TannerGraph) (*TannerGraph, error) {
	if g.n != gen.n {
		return nil, lengthErrorf("graph columns", g.n, gen.n)
	}
	inv := make([]int, gen.n)
	for j, c := range gen.Permutation() {
		inv[c] = j
	}
	rows := make([][]int, g.m)
	for c, vars := range g.rows {
		r := make([]int, len(vars))
		for i, v := range vars {
			r[i] = inv[v]
		}
		rows[c] = r
	}
	return NewTannerGraph(g.m, g.n, rows)
}

func (gen *GeneratorDescription) encodeInto(cw []uint8, info []uint8) {
	packed := packBits(info)
	for k, c := range gen.infoCols {
		cw[c] = info[k] & 1
	}
	for i, c := range gen.parityCols {
		cw[c] = gen.parityRows[i].dotParity(packed)
	}
}

// EncoderOptions configures an Encoder.
type EncoderOptions struct {
	Metrics *Metrics // optional
}

// Encoder is a systematic LDPC encoder. It is safe for concurrent use.
type Encoder struct {
	graph   *TannerGraph
	gen     *GeneratorDescription
	punct   *PuncturingPattern
	metrics *Metrics
}

// NewEncoder builds an encoder for g. p may be nil.
func NewEncoder(g *TannerGraph, p *PuncturingPattern, opts EncoderOptions) (*Encoder, error) {
	if p != nil && p.CodewordLength() != g.n {
		return nil, descErrorf(0, "puncturing pattern covers %d bits, code has %d", p.CodewordLength(), g.n)
	}
	gen, err := NewGenerator(g)
	if err != nil {
		return nil, err
	}
	Logger().Debug("ldpc encoder ready",
		zap.Int("n", g.n),
		zap.Int("k", gen.k),
		zap.Bool("identity_permutation", gen.IsIdentityPermutation()),
		zap.Bool("punctured", p != nil),
	)
	return &Encoder{graph: g, gen: gen, punct: p, metrics: opts.Metrics}, nil
}

func (e *Encoder) Graph() *TannerGraph              { return e.graph }
func (e *Encoder) Generator() *GeneratorDescription { return e.gen }
func (e *Encoder) Puncturing() *PuncturingPattern   { return e.punct }
func (e *Encoder) InfoLength() int                  { return e.gen.k }
func (e *Encoder) CodewordLength() int              { return e.gen.n }

// TransmittedLength returns the length of Encode's output.
func (e *Encoder) TransmittedLength() int {
	if e.punct == nil {
		return e.gen.n
	}
	return e.punct.TransmittedLength()
}

// EncodeCodeword returns the full N-bit codeword for K information bits.
// Only the low bit of each input byte is used.
func (e *Encoder) EncodeCodeword(info []uint8) ([]uint8, error) {
	if len(info) != e.gen.k {
		return nil, lengthErrorf("information word", len(info), e.gen.k)
	}
	cw := make([]uint8, e.gen.n)
	e.gen.encodeInto(cw, info)
	e.metrics.observeEncode()
	return cw, nil
}

// Encode returns the transmitted codeword: all N bits, or the N' unpunctured
// bits when a puncturing pattern is configured.
func (e *Encoder) Encode(info []uint8) ([]uint8, error) {
	cw, err := e.EncodeCodeword(info)
	if err != nil || e.punct == nil {
		return cw, err
	}
	return ToTransmitted(e.punct, cw)
}
