package ldpcrpc

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/quic-go/quic-ldpc/fec"
	"github.com/quic-go/quic-ldpc/internal/config"
)

// Code is one LDPC code served by name.
type Code struct {
	Name          string
	Decoder       *fec.Decoder
	Encoder       *fec.Encoder // nil when the parity check matrix is rank deficient
	MaxIterations int
}

// CodesFromConfig loads every configured code. Decoders and encoders report
// to m, which may be nil.
func CodesFromConfig(cfg *config.Config, m *fec.Metrics) ([]*Code, error) {
	out := make([]*Code, 0, len(cfg.Codes))
	for _, cc := range cfg.Codes {
		code, err := loadCode(cc, m)
		if err != nil {
			return nil, fmt.Errorf("code %q: %w", cc.Name, err)
		}
		out = append(out, code)
	}
	return out, nil
}

func loadCode(cc config.CodeConfig, m *fec.Metrics) (*Code, error) {
	g, err := fec.ReadAlistFile(cc.Alist)
	if err != nil {
		return nil, err
	}
	p, err := fec.ParsePuncturing(cc.Puncturing, g.NumVariables())
	if err != nil {
		return nil, err
	}
	dec, err := fec.NewDecoder(g, cc.Implementation, p, fec.DecoderOptions{Workers: cc.Workers, Metrics: m})
	if err != nil {
		return nil, err
	}
	enc, err := fec.NewEncoder(g, p, fec.EncoderOptions{Metrics: m})
	switch {
	case errors.Is(err, fec.ErrSingularMatrix):
		fec.Logger().Warn("code has no systematic encoder", zap.String("code", cc.Name), zap.Error(err))
		enc = nil
	case err != nil:
		return nil, err
	}
	return &Code{Name: cc.Name, Decoder: dec, Encoder: enc, MaxIterations: cc.MaxIterations}, nil
}

// Server implements CodecServer over a fixed set of codes.
type Server struct {
	codes  map[string]*Code
	logger *zap.Logger
}

var _ CodecServer = (*Server)(nil)

// NewServer serves codes. logger may be nil.
func NewServer(codes []*Code, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{codes: make(map[string]*Code, len(codes)), logger: logger}
	for _, c := range codes {
		if _, ok := s.codes[c.Name]; ok {
			return nil, fmt.Errorf("duplicate code %q", c.Name)
		}
		s.codes[c.Name] = c
	}
	return s, nil
}

func (s *Server) lookup(name string) (*Code, error) {
	c, ok := s.codes[name]
	if !ok {
		return nil, status.Errorf(codes.NotFound, "unknown code %q", name)
	}
	return c, nil
}

// Decode runs belief propagation on one frame. Running out of iterations is
// reported in the response, not as an RPC error.
func (s *Server) Decode(ctx context.Context, req *DecodeRequest) (*DecodeResponse, error) {
	c, err := s.lookup(req.Code)
	if err != nil {
		return nil, err
	}
	if req.MaxIterations < 0 {
		return nil, status.Errorf(codes.InvalidArgument, "max_iterations must not be negative, got %d", req.MaxIterations)
	}
	maxIter := req.MaxIterations
	if maxIter == 0 {
		maxIter = c.MaxIterations
	}
	n := c.Decoder.TransmittedLength()
	if req.Full {
		n = c.Decoder.CodewordLength()
	}
	out := make([]uint8, n)
	iters, err := c.Decoder.DecodeF64(out, req.LLRs, maxIter)
	switch {
	case err == nil:
		return &DecodeResponse{Bits: out, Iterations: iters, Converged: true}, nil
	case errors.Is(err, fec.ErrDecodeFailure):
		s.logger.Debug("decode did not converge", zap.String("code", c.Name), zap.Int("iterations", iters))
		return &DecodeResponse{Bits: out, Iterations: iters}, nil
	case errors.Is(err, fec.ErrLengthMismatch):
		return nil, status.Error(codes.InvalidArgument, err.Error())
	default:
		s.logger.Error("decode failed", zap.String("code", c.Name), zap.Error(err))
		return nil, status.Error(codes.Internal, err.Error())
	}
}

// Encode returns the transmitted (punctured) codeword for the information bits.
func (s *Server) Encode(ctx context.Context, req *EncodeRequest) (*EncodeResponse, error) {
	c, err := s.lookup(req.Code)
	if err != nil {
		return nil, err
	}
	if c.Encoder == nil {
		return nil, status.Errorf(codes.FailedPrecondition, "code %q has no encoder", c.Name)
	}
	cw, err := c.Encoder.Encode(req.Info)
	if err != nil {
		if errors.Is(err, fec.ErrLengthMismatch) {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		return nil, status.Error(codes.Internal, err.Error())
	}
	return &EncodeResponse{Codeword: cw}, nil
}

func (s *Server) Info(ctx context.Context, req *InfoRequest) (*InfoResponse, error) {
	c, err := s.lookup(req.Code)
	if err != nil {
		return nil, err
	}
	g := c.Decoder.Graph()
	resp := &InfoResponse{
		Code:           c.Name,
		Implementation: c.Decoder.Implementation().String(),
		N:              g.NumVariables(),
		M:              g.NumChecks(),
		Transmitted:    c.Decoder.TransmittedLength(),
		MaxIterations:  c.MaxIterations,
	}
	if c.Encoder != nil {
		resp.K = c.Encoder.InfoLength()
	}
	if p := c.Decoder.Puncturing(); p != nil {
		resp.Puncturing = p.String()
	}
	return resp, nil
}
