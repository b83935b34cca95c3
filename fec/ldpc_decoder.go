package fec

import (
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Float is the LLR precision of a decode.
type Float interface {
	float32 | float64
}

// DecoderOptions configures a Decoder.
type DecoderOptions struct {
	Workers      int      // goroutines per check/variable pass (default 1)
	BatchWorkers int      // frames decoded concurrently by DecodeBatch (default numCPU)
	Scale        float64  // normalized min-sum factor (default 0.75)
	Offset       float64  // offset min-sum offset (default 0.5)
	Metrics      *Metrics // optional
}

func (o *DecoderOptions) setDefaults() {
	if o.Workers <= 0 {
		o.Workers = 1
	}
	if o.BatchWorkers <= 0 {
		o.BatchWorkers = runtime.NumCPU()
	}
	if o.Scale <= 0 || o.Scale > 1 {
		o.Scale = defaultNormalizedScale
	}
	if o.Offset <= 0 {
		o.Offset = defaultMinSumOffset
	}
}

// minChunk is the smallest number of nodes handed to one worker.
const minChunk = 64

// Decoder is a flooding-schedule belief propagation decoder. The graph and
// configuration are shared read-only; each call works on private message
// state, so a Decoder is safe for concurrent use.
type Decoder struct {
	graph *TannerGraph
	punct *PuncturingPattern
	impl  Implementation
	opts  DecoderOptions

	pool32 sync.Pool // *decodeState[float32]
	pool64 sync.Pool // *decodeState[float64]
}

// NewDecoder builds a decoder for g using the named implementation. p may be nil.
func NewDecoder(g *TannerGraph, implementation string, p *PuncturingPattern, opts DecoderOptions) (*Decoder, error) {
	impl, err := ParseImplementation(implementation)
	if err != nil {
		return nil, err
	}
	if p != nil && p.CodewordLength() != g.n {
		return nil, descErrorf(0, "puncturing pattern covers %d bits, code has %d", p.CodewordLength(), g.n)
	}
	opts.setDefaults()
	Logger().Debug("ldpc decoder ready",
		zap.Int("n", g.n),
		zap.Int("m", g.m),
		zap.Int("edges", g.NumEdges()),
		zap.Stringer("implementation", impl),
		zap.Int("workers", opts.Workers),
		zap.Bool("punctured", p != nil),
	)
	return &Decoder{graph: g, punct: p, impl: impl, opts: opts}, nil
}

func (d *Decoder) Graph() *TannerGraph            { return d.graph }
func (d *Decoder) Puncturing() *PuncturingPattern { return d.punct }
func (d *Decoder) Implementation() Implementation { return d.impl }
func (d *Decoder) CodewordLength() int            { return d.graph.n }

// TransmittedLength returns N', the expected number of input LLRs.
func (d *Decoder) TransmittedLength() int {
	if d.punct == nil {
		return d.graph.n
	}
	return d.punct.TransmittedLength()
}

// DecodeF64 decodes one frame of float64 LLRs. See Decode.
func (d *Decoder) DecodeF64(out []uint8, llrs []float64, maxIterations int) (int, error) {
	return Decode(d, out, llrs, maxIterations)
}

// DecodeF32 decodes one frame of float32 LLRs. See Decode.
func (d *Decoder) DecodeF32(out []uint8, llrs []float32, maxIterations int) (int, error) {
	return Decode(d, out, llrs, maxIterations)
}

// Decode runs up to maxIterations flooding iterations on llrs, which must hold
// the N' transmitted LLRs (positive favours bit 0). out receives either all N
// codeword bits (len(out) == N) or only the transmitted bits (len(out) == N').
//
// On success it returns the number of iterations used. When the budget is
// exhausted it returns maxIterations and ErrDecodeFailure, and out still
// holds the last hard decisions. Length errors leave out untouched.
func Decode[T Float](d *Decoder, out []uint8, llrs []T, maxIterations int) (int, error) {
	if err := d.checkLengths(len(out), len(llrs)); err != nil {
		return 0, err
	}
	iters, err := decodeFrame(d, out, llrs, maxIterations, d.opts.Workers)
	d.opts.Metrics.observeDecode(d.impl, iters, err)
	return iters, err
}

func (d *Decoder) checkLengths(outLen, inLen int) error {
	if want := d.TransmittedLength(); inLen != want {
		return lengthErrorf("llr input", inLen, want)
	}
	if outLen != d.graph.n && outLen != d.TransmittedLength() {
		return fmt.Errorf("output: got %d, want %d or %d: %w", outLen, d.graph.n, d.TransmittedLength(), ErrLengthMismatch)
	}
	return nil
}

// DecodeResult is the outcome of one frame of a batch.
type DecodeResult struct {
	Iterations int
	Err        error
}

// DecodeBatch decodes frames concurrently, up to BatchWorkers at a time.
// Each frame runs its passes on a single goroutine. Per-frame failures are
// reported in the results; the returned error is set only when out and llrs
// differ in length.
func DecodeBatch[T Float](d *Decoder, out [][]uint8, llrs [][]T, maxIterations int) ([]DecodeResult, error) {
	if len(out) != len(llrs) {
		return nil, lengthErrorf("batch frames", len(out), len(llrs))
	}
	res := make([]DecodeResult, len(llrs))
	var g errgroup.Group
	g.SetLimit(d.opts.BatchWorkers)
	for i := range llrs {
		g.Go(func() error {
			if err := d.checkLengths(len(out[i]), len(llrs[i])); err != nil {
				res[i].Err = err
				return nil
			}
			n, err := decodeFrame(d, out[i], llrs[i], maxIterations, 1)
			d.opts.Metrics.observeDecode(d.impl, n, err)
			res[i] = DecodeResult{Iterations: n, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return res, nil
}

func (d *Decoder) DecodeBatchF64(out [][]uint8, llrs [][]float64, maxIterations int) ([]DecodeResult, error) {
	return DecodeBatch(d, out, llrs, maxIterations)
}

func (d *Decoder) DecodeBatchF32(out [][]uint8, llrs [][]float32, maxIterations int) ([]DecodeResult, error) {
	return DecodeBatch(d, out, llrs, maxIterations)
}

// decodeState is the message state of one decode call.
type decodeState[T Float] struct {
	channel   []T // N, after depuncturing and clamping
	posterior []T // N
	v2c       []T // per edge
	c2v       []T // per edge
	hard      []uint8
	tmp       [][]float64 // per worker, max check degree
}

func newDecodeState[T Float](g *TannerGraph, workers int) *decodeState[T] {
	s := &decodeState[T]{
		channel:   make([]T, g.n),
		posterior: make([]T, g.n),
		v2c:       make([]T, g.NumEdges()),
		c2v:       make([]T, g.NumEdges()),
		hard:      make([]uint8, g.n),
	}
	s.ensureWorkers(g, workers)
	return s
}

func (s *decodeState[T]) ensureWorkers(g *TannerGraph, workers int) {
	for len(s.tmp) < workers {
		s.tmp = append(s.tmp, make([]float64, g.maxCheckDeg))
	}
}

func (d *Decoder) poolFor(size uintptr) *sync.Pool {
	if size == 4 {
		return &d.pool32
	}
	return &d.pool64
}

func decodeFrame[T Float](d *Decoder, out []uint8, llrs []T, maxIterations, workers int) (int, error) {
	g := d.graph
	var zero T
	pool := d.poolFor(unsafe.Sizeof(zero))
	s, _ := pool.Get().(*decodeState[T])
	if s == nil {
		s = newDecodeState[T](g, workers)
	}
	s.ensureWorkers(g, workers)
	defer pool.Put(s)

	s.load(d.punct, llrs)
	for e, v := range g.edgeVar {
		s.v2c[e] = s.channel[v]
	}

	tanhClamp := tanhClamp64
	if unsafe.Sizeof(zero) == 4 {
		tanhClamp = tanhClamp32
	}
	rule := bindRule[T](ruleParams{impl: d.impl, tanhClamp: tanhClamp, scale: d.opts.Scale, offset: d.opts.Offset})

	checkPass := func(w, lo, hi int) {
		tmp := s.tmp[w]
		for c := lo; c < hi; c++ {
			a, b := g.checkStart[c], g.checkStart[c+1]
			rule(s.v2c[a:b], s.c2v[a:b], tmp)
		}
	}
	varPass := func(_, lo, hi int) {
		for v := lo; v < hi; v++ {
			edges := g.varEdges[g.varStart[v]:g.varStart[v+1]]
			sum := float64(s.channel[v])
			for _, e := range edges {
				sum += float64(s.c2v[e])
			}
			for _, e := range edges {
				s.v2c[e] = clampLLR[T](sum - float64(s.c2v[e]))
			}
			post := clampLLR[T](sum)
			s.posterior[v] = post
			s.hard[v] = hardBit(post)
		}
	}

	iters, err := maxIterations, ErrDecodeFailure
	for it := 1; it <= maxIterations; it++ {
		parallelRange(g.m, workers, checkPass)
		parallelRange(g.n, workers, varPass)
		if g.checksSatisfied(s.hard) {
			iters, err = it, nil
			break
		}
	}
	if maxIterations < 0 {
		iters = 0
	}

	if len(out) == g.n {
		copy(out, s.hard)
	} else {
		gather(d.punct, out, s.hard)
	}
	return iters, err
}

// load depunctures and clamps the channel LLRs and takes their hard decisions.
func (s *decodeState[T]) load(p *PuncturingPattern, llrs []T) {
	if p == nil {
		for i, x := range llrs {
			s.channel[i] = clampLLR[T](float64(x))
		}
	} else {
		clear(s.channel)
		for j, i := range p.positions {
			s.channel[i] = clampLLR[T](float64(llrs[j]))
		}
	}
	for i, x := range s.channel {
		s.posterior[i] = x
		s.hard[i] = hardBit(x)
	}
}

func hardBit[T Float](llr T) uint8 {
	if llr < 0 {
		return 1
	}
	return 0
}

// parallelRange splits [0,n) into contiguous chunks, one per worker, and
// returns once every chunk is done.
func parallelRange(n, workers int, fn func(w, lo, hi int)) {
	if workers > n/minChunk {
		workers = n / minChunk
	}
	if workers <= 1 {
		fn(0, 0, n)
		return
	}
	chunk := (n + workers - 1) / workers
	var g errgroup.Group
	for w := 0; w < workers; w++ {
		lo := w * chunk
		if lo >= n {
			break
		}
		hi := min(lo+chunk, n)
		g.Go(func() error {
			fn(w, lo, hi)
			return nil
		})
	}
	_ = g.Wait()
}
