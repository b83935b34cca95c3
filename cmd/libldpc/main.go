// Command libldpc builds the LDPC toolbox as a C shared library:
//
//	go build -buildmode=c-shared -o libldpc_toolbox.so ./cmd/libldpc
//
// Handles are opaque uintptr_t values; 0 signals a construction failure.
// Setting LDPC_TOOLBOX_WORKERS enables parallel passes in new decoders.
package main

/*
#include <stddef.h>
#include <stdint.h>
*/
import "C"

import (
	"os"
	"strconv"
	"unsafe"

	"github.com/quic-go/quic-ldpc/capi"
	"github.com/quic-go/quic-ldpc/fec"
)

func init() {
	if w, err := strconv.Atoi(os.Getenv("LDPC_TOOLBOX_WORKERS")); err == nil && w > 0 {
		capi.SetDecoderOptions(fec.DecoderOptions{Workers: w})
	}
}

func main() {}

// goString converts a C string; NULL becomes "".
func goString(s *C.char) string {
	if s == nil {
		return ""
	}
	return C.GoString(s)
}

func bytesOf(p *C.uint8_t, n C.size_t) []uint8 {
	if p == nil || n == 0 {
		return nil
	}
	return unsafe.Slice((*uint8)(unsafe.Pointer(p)), int(n))
}

//export ldpc_toolbox_decoder_ctor
func ldpc_toolbox_decoder_ctor(alistPath, implementation, puncturing *C.char) C.uintptr_t {
	return C.uintptr_t(capi.NewDecoderFromFile(goString(alistPath), goString(implementation), goString(puncturing)))
}

//export ldpc_toolbox_decoder_ctor_alist_string
func ldpc_toolbox_decoder_ctor_alist_string(alist, implementation, puncturing *C.char) C.uintptr_t {
	return C.uintptr_t(capi.NewDecoder(goString(alist), goString(implementation), goString(puncturing)))
}

//export ldpc_toolbox_decoder_dtor
func ldpc_toolbox_decoder_dtor(decoder C.uintptr_t) {
	capi.DestroyDecoder(capi.Handle(decoder))
}

//export ldpc_toolbox_decoder_decode_f64
func ldpc_toolbox_decoder_decode_f64(decoder C.uintptr_t, output *C.uint8_t, outputLen C.size_t, llrs *C.double, llrsLen C.size_t, maxIterations C.uint32_t) C.int32_t {
	var in []float64
	if llrs != nil && llrsLen > 0 {
		in = unsafe.Slice((*float64)(unsafe.Pointer(llrs)), int(llrsLen))
	}
	return C.int32_t(capi.DecodeF64(capi.Handle(decoder), bytesOf(output, outputLen), in, uint32(maxIterations)))
}

//export ldpc_toolbox_decoder_decode_f32
func ldpc_toolbox_decoder_decode_f32(decoder C.uintptr_t, output *C.uint8_t, outputLen C.size_t, llrs *C.float, llrsLen C.size_t, maxIterations C.uint32_t) C.int32_t {
	var in []float32
	if llrs != nil && llrsLen > 0 {
		in = unsafe.Slice((*float32)(unsafe.Pointer(llrs)), int(llrsLen))
	}
	return C.int32_t(capi.DecodeF32(capi.Handle(decoder), bytesOf(output, outputLen), in, uint32(maxIterations)))
}

//export ldpc_toolbox_encoder_ctor
func ldpc_toolbox_encoder_ctor(alistPath, puncturing *C.char) C.uintptr_t {
	return C.uintptr_t(capi.NewEncoderFromFile(goString(alistPath), goString(puncturing)))
}

//export ldpc_toolbox_encoder_ctor_alist_string
func ldpc_toolbox_encoder_ctor_alist_string(alist, puncturing *C.char) C.uintptr_t {
	return C.uintptr_t(capi.NewEncoder(goString(alist), goString(puncturing)))
}

//export ldpc_toolbox_encoder_dtor
func ldpc_toolbox_encoder_dtor(encoder C.uintptr_t) {
	capi.DestroyEncoder(capi.Handle(encoder))
}

//export ldpc_toolbox_encoder_encode
func ldpc_toolbox_encoder_encode(encoder C.uintptr_t, output *C.uint8_t, outputLen C.size_t, input *C.uint8_t, inputLen C.size_t) {
	capi.Encode(capi.Handle(encoder), bytesOf(output, outputLen), bytesOf(input, inputLen))
}

// storeLengths writes a and b through the non-NULL pointers. It reports
// ResultInvalidHandle when the lengths are negative.
func storeLengths(a, b int, pa, pb *C.size_t) C.int32_t {
	if a < 0 || b < 0 {
		return C.int32_t(capi.ResultInvalidHandle)
	}
	if pa != nil {
		*pa = C.size_t(a)
	}
	if pb != nil {
		*pb = C.size_t(b)
	}
	return 0
}

//export ldpc_toolbox_encoder_lengths
func ldpc_toolbox_encoder_lengths(encoder C.uintptr_t, info, transmitted *C.size_t) C.int32_t {
	k, tx := capi.EncoderLengths(capi.Handle(encoder))
	return storeLengths(k, tx, info, transmitted)
}

//export ldpc_toolbox_decoder_lengths
func ldpc_toolbox_decoder_lengths(decoder C.uintptr_t, codeword, transmitted *C.size_t) C.int32_t {
	n, tx := capi.DecoderLengths(capi.Handle(decoder))
	return storeLengths(n, tx, codeword, transmitted)
}
