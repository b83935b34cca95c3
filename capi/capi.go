// Package capi is the handle-based boundary behind the C shared library.
// Decoders and encoders live in a registry keyed by opaque non-zero handles;
// every call reports failure through a return value, never through Go errors.
package capi

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/quic-go/quic-ldpc/fec"
)

// Handle identifies a decoder or encoder. 0 is the null handle.
type Handle uintptr

// Decode result codes. Non-negative results are iteration counts.
const (
	ResultDecodeFailure  int32 = -1
	ResultLengthMismatch int32 = -2
	ResultInvalidHandle  int32 = -3
)

var (
	nextHandle atomic.Uintptr
	decoders   sync.Map // Handle -> *fec.Decoder
	encoders   sync.Map // Handle -> *fec.Encoder

	optsMu      sync.RWMutex
	decoderOpts fec.DecoderOptions
)

// SetDecoderOptions sets the options used by subsequently constructed decoders.
func SetDecoderOptions(o fec.DecoderOptions) {
	optsMu.Lock()
	decoderOpts = o
	optsMu.Unlock()
}

func currentDecoderOptions() fec.DecoderOptions {
	optsMu.RLock()
	defer optsMu.RUnlock()
	return decoderOpts
}

func register(m *sync.Map, v any) Handle {
	h := Handle(nextHandle.Add(1))
	m.Store(h, v)
	return h
}

// NewDecoder builds a decoder from alist text. It returns 0 on any
// construction error. An empty puncturing string disables puncturing.
func NewDecoder(alist, implementation, puncturing string) Handle {
	g, err := fec.ParseAlist(alist)
	if err != nil {
		return constructFailed("decoder", err)
	}
	return newDecoder(g, implementation, puncturing)
}

// NewDecoderFromFile is NewDecoder reading the alist from path.
func NewDecoderFromFile(path, implementation, puncturing string) Handle {
	g, err := fec.ReadAlistFile(path)
	if err != nil {
		return constructFailed("decoder", err)
	}
	return newDecoder(g, implementation, puncturing)
}

func newDecoder(g *fec.TannerGraph, implementation, puncturing string) Handle {
	p, err := fec.ParsePuncturing(puncturing, g.NumVariables())
	if err != nil {
		return constructFailed("decoder", err)
	}
	dec, err := fec.NewDecoder(g, implementation, p, currentDecoderOptions())
	if err != nil {
		return constructFailed("decoder", err)
	}
	return register(&decoders, dec)
}

func constructFailed(kind string, err error) Handle {
	fec.Logger().Debug("construction failed", zap.String("kind", kind), zap.Error(err))
	return 0
}

// DestroyDecoder releases h. It is a no-op for 0 or an unknown handle.
func DestroyDecoder(h Handle) { decoders.Delete(h) }

func decoder(h Handle) *fec.Decoder {
	if h == 0 {
		return nil
	}
	v, ok := decoders.Load(h)
	if !ok {
		return nil
	}
	return v.(*fec.Decoder)
}

// DecodeF64 decodes llrs into out. It returns the iterations used, or a
// negative Result code. On ResultDecodeFailure out still holds the last hard
// decisions; on ResultLengthMismatch out is untouched.
func DecodeF64(h Handle, out []uint8, llrs []float64, maxIterations uint32) int32 {
	dec := decoder(h)
	if dec == nil {
		return ResultInvalidHandle
	}
	return result(dec.DecodeF64(out, llrs, int(maxIterations)))
}

// DecodeF32 is DecodeF64 for float32 LLRs.
func DecodeF32(h Handle, out []uint8, llrs []float32, maxIterations uint32) int32 {
	dec := decoder(h)
	if dec == nil {
		return ResultInvalidHandle
	}
	return result(dec.DecodeF32(out, llrs, int(maxIterations)))
}

func result(iterations int, err error) int32 {
	switch {
	case err == nil:
		return int32(iterations)
	case errors.Is(err, fec.ErrLengthMismatch):
		return ResultLengthMismatch
	default:
		return ResultDecodeFailure
	}
}

// NewEncoder builds an encoder from alist text, or returns 0.
func NewEncoder(alist, puncturing string) Handle {
	g, err := fec.ParseAlist(alist)
	if err != nil {
		return constructFailed("encoder", err)
	}
	return newEncoder(g, puncturing)
}

// NewEncoderFromFile is NewEncoder reading the alist from path.
func NewEncoderFromFile(path, puncturing string) Handle {
	g, err := fec.ReadAlistFile(path)
	if err != nil {
		return constructFailed("encoder", err)
	}
	return newEncoder(g, puncturing)
}

func newEncoder(g *fec.TannerGraph, puncturing string) Handle {
	p, err := fec.ParsePuncturing(puncturing, g.NumVariables())
	if err != nil {
		return constructFailed("encoder", err)
	}
	enc, err := fec.NewEncoder(g, p, fec.EncoderOptions{})
	if err != nil {
		return constructFailed("encoder", err)
	}
	return register(&encoders, enc)
}

// DestroyEncoder releases h. It is a no-op for 0 or an unknown handle.
func DestroyEncoder(h Handle) { encoders.Delete(h) }

// Encode writes the transmitted codeword for in into out. Callers must size
// in to the information length and out to the transmitted length; a
// violation, or an invalid handle, panics.
func Encode(h Handle, out, in []uint8) {
	var enc *fec.Encoder
	if v, ok := encoders.Load(h); ok && h != 0 {
		enc = v.(*fec.Encoder)
	}
	if enc == nil {
		panic("capi: invalid encoder handle")
	}
	if len(out) != enc.TransmittedLength() {
		panic(lengthViolation("output", len(out), enc.TransmittedLength()))
	}
	cw, err := enc.Encode(in)
	if err != nil {
		panic("capi: " + err.Error())
	}
	copy(out, cw)
}

// EncoderLengths reports the information and transmitted lengths of h, or
// (-1, -1) for an invalid handle.
func EncoderLengths(h Handle) (info, transmitted int) {
	v, ok := encoders.Load(h)
	if !ok {
		return -1, -1
	}
	enc := v.(*fec.Encoder)
	return enc.InfoLength(), enc.TransmittedLength()
}

// DecoderLengths reports the codeword and transmitted lengths of h, or
// (-1, -1) for an invalid handle.
func DecoderLengths(h Handle) (codeword, transmitted int) {
	dec := decoder(h)
	if dec == nil {
		return -1, -1
	}
	return dec.CodewordLength(), dec.TransmittedLength()
}

func lengthViolation(what string, got, want int) string {
	return fmt.Sprintf("capi: %s length %d, want %d", what, got, want)
}
