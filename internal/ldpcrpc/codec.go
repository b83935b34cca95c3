package ldpcrpc

import (
	"fmt"

	"github.com/francoispqt/gojay"
	"google.golang.org/grpc/encoding"
)

// codecName is the gRPC content subtype carried by every call of the service.
const codecName = "json"

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// jsonCodec marshals the service messages with gojay, so the service needs
// no generated protobuf code.
type jsonCodec struct{}

func (jsonCodec) Name() string { return codecName }

func (jsonCodec) Marshal(v any) ([]byte, error) {
	m, ok := v.(gojay.MarshalerJSONObject)
	if !ok {
		return nil, fmt.Errorf("ldpcrpc: cannot marshal %T", v)
	}
	return gojay.MarshalJSONObject(m)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	u, ok := v.(gojay.UnmarshalerJSONObject)
	if !ok {
		return fmt.Errorf("ldpcrpc: cannot unmarshal into %T", v)
	}
	return gojay.UnmarshalJSONObject(data, u)
}
