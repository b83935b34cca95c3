package ldpcrpc

import (
	"fmt"

	"github.com/francoispqt/gojay"
)

// DecodeRequest carries one frame of transmitted LLRs.
type DecodeRequest struct {
	Code          string
	LLRs          []float64
	MaxIterations int  // 0 uses the code's configured budget
	Full          bool // return all N codeword bits instead of the N' transmitted ones
}

// DecodeResponse holds the hard decisions. On a decode failure Converged is
// false and Bits holds the last hard decisions.
type DecodeResponse struct {
	Bits       []uint8
	Iterations int
	Converged  bool
}

type EncodeRequest struct {
	Code string
	Info []uint8
}

type EncodeResponse struct {
	Codeword []uint8
}

type InfoRequest struct {
	Code string
}

// InfoResponse describes a served code.
type InfoResponse struct {
	Code           string
	Implementation string
	N              int
	M              int
	K              int // 0 when the code has no encoder
	Transmitted    int
	Puncturing     string
	MaxIterations  int
}

type float64Array []float64

func (a float64Array) MarshalJSONArray(enc *gojay.Encoder) {
	for _, f := range a {
		enc.Float64(f)
	}
}

func (a float64Array) IsNil() bool { return a == nil }

func (a *float64Array) UnmarshalJSONArray(dec *gojay.Decoder) error {
	var f float64
	if err := dec.Float64(&f); err != nil {
		return err
	}
	*a = append(*a, f)
	return nil
}

type bitArray []uint8

func (a bitArray) MarshalJSONArray(enc *gojay.Encoder) {
	for _, b := range a {
		enc.Int(int(b))
	}
}

func (a bitArray) IsNil() bool { return a == nil }

func (a *bitArray) UnmarshalJSONArray(dec *gojay.Decoder) error {
	var b int
	if err := dec.Int(&b); err != nil {
		return err
	}
	if b != 0 && b != 1 {
		return fmt.Errorf("bit value %d is not 0 or 1", b)
	}
	*a = append(*a, uint8(b))
	return nil
}

func (r *DecodeRequest) MarshalJSONObject(enc *gojay.Encoder) {
	enc.StringKey("code", r.Code)
	enc.ArrayKey("llrs", float64Array(r.LLRs))
	enc.IntKeyOmitEmpty("max_iterations", r.MaxIterations)
	enc.BoolKeyOmitEmpty("full", r.Full)
}

func (r *DecodeRequest) IsNil() bool { return r == nil }

func (r *DecodeRequest) UnmarshalJSONObject(dec *gojay.Decoder, key string) error {
	switch key {
	case "code":
		return dec.String(&r.Code)
	case "llrs":
		a := float64Array(r.LLRs[:0])
		err := dec.Array(&a)
		r.LLRs = a
		return err
	case "max_iterations":
		return dec.Int(&r.MaxIterations)
	case "full":
		return dec.Bool(&r.Full)
	}
	return nil
}

func (r *DecodeRequest) NKeys() int { return 4 }

func (r *DecodeResponse) MarshalJSONObject(enc *gojay.Encoder) {
	enc.ArrayKey("bits", bitArray(r.Bits))
	enc.IntKey("iterations", r.Iterations)
	enc.BoolKey("converged", r.Converged)
}

func (r *DecodeResponse) IsNil() bool { return r == nil }

func (r *DecodeResponse) UnmarshalJSONObject(dec *gojay.Decoder, key string) error {
	switch key {
	case "bits":
		a := bitArray(r.Bits[:0])
		err := dec.Array(&a)
		r.Bits = a
		return err
	case "iterations":
		return dec.Int(&r.Iterations)
	case "converged":
		return dec.Bool(&r.Converged)
	}
	return nil
}

func (r *DecodeResponse) NKeys() int { return 3 }

func (r *EncodeRequest) MarshalJSONObject(enc *gojay.Encoder) {
	enc.StringKey("code", r.Code)
	enc.ArrayKey("info", bitArray(r.Info))
}

func (r *EncodeRequest) IsNil() bool { return r == nil }

func (r *EncodeRequest) UnmarshalJSONObject(dec *gojay.Decoder, key string) error {
	switch key {
	case "code":
		return dec.String(&r.Code)
	case "info":
		a := bitArray(r.Info[:0])
		err := dec.Array(&a)
		r.Info = a
		return err
	}
	return nil
}

func (r *EncodeRequest) NKeys() int { return 2 }

func (r *EncodeResponse) MarshalJSONObject(enc *gojay.Encoder) {
	enc.ArrayKey("codeword", bitArray(r.Codeword))
}

func (r *EncodeResponse) IsNil() bool { return r == nil }

func (r *EncodeResponse) UnmarshalJSONObject(dec *gojay.Decoder, key string) error {
	if key == "codeword" {
		a := bitArray(r.Codeword[:0])
		err := dec.Array(&a)
		r.Codeword = a
		return err
	}
	return nil
}

func (r *EncodeResponse) NKeys() int { return 1 }

func (r *InfoRequest) MarshalJSONObject(enc *gojay.Encoder) {
	enc.StringKey("code", r.Code)
}

func (r *InfoRequest) IsNil() bool { return r == nil }

func (r *InfoRequest) UnmarshalJSONObject(dec *gojay.Decoder, key string) error {
	if key == "code" {
		return dec.String(&r.Code)
	}
	return nil
}

func (r *InfoRequest) NKeys() int { return 1 }

func (r *InfoResponse) MarshalJSONObject(enc *gojay.Encoder) {
	enc.StringKey("code", r.Code)
	enc.StringKey("implementation", r.Implementation)
	enc.IntKey("n", r.N)
	enc.IntKey("m", r.M)
	enc.IntKey("k", r.K)
	enc.IntKey("transmitted", r.Transmitted)
	enc.StringKeyOmitEmpty("puncturing", r.Puncturing)
	enc.IntKey("max_iterations", r.MaxIterations)
}

func (r *InfoResponse) IsNil() bool { return r == nil }

func (r *InfoResponse) UnmarshalJSONObject(dec *gojay.Decoder, key string) error {
	switch key {
	case "code":
		return dec.String(&r.Code)
	case "implementation":
		return dec.String(&r.Implementation)
	case "n":
		return dec.Int(&r.N)
	case "m":
		return dec.Int(&r.M)
	case "k":
		return dec.Int(&r.K)
	case "transmitted":
		return dec.Int(&r.Transmitted)
	case "puncturing":
		return dec.String(&r.Puncturing)
	case "max_iterations":
		return dec.Int(&r.MaxIterations)
	}
	return nil
}

func (r *InfoResponse) NKeys() int { return 8 }
