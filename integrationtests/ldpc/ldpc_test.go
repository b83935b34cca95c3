package ldpc_test

import (
	"math/rand"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quic-go/quic-ldpc/capi"
	"github.com/quic-go/quic-ldpc/fec"
	"github.com/quic-go/quic-ldpc/internal/channel"
)

// iraCode builds a rate-1/2 irregular repeat-accumulate code: every
// information column has weight 3 and the parity part is a staircase, so H
// always has full rank.
func iraCode(t *testing.T, k int, seed int64) string {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	m := k
	rows := make([][]int, m)
	for v := 0; v < k; v++ {
		for _, c := range rng.Perm(m)[:3] {
			rows[c] = append(rows[c], v)
		}
	}
	for j := 0; j < m; j++ {
		rows[j] = append(rows[j], k+j)
		if j > 0 {
			rows[j] = append(rows[j], k+j-1)
		}
	}
	g, err := fec.NewTannerGraph(m, k+m, rows)
	require.NoError(t, err)
	return g.MarshalAlist(false)
}

// maxFrameErrors tolerates the error floor of the small random codes.
const maxFrameErrors = 2

func randomInfo(rng *rand.Rand, k int) []uint8 {
	info := make([]uint8, k)
	for i := range info {
		info[i] = uint8(rng.Intn(2))
	}
	return info
}

type codec struct {
	enc, dec capi.Handle
	k, n, tx int
}

func newCodec(t *testing.T, alist, implementation, puncturing string) codec {
	t.Helper()
	enc := capi.NewEncoder(alist, puncturing)
	require.NotZero(t, enc)
	t.Cleanup(func() { capi.DestroyEncoder(enc) })
	dec := capi.NewDecoder(alist, implementation, puncturing)
	require.NotZero(t, dec)
	t.Cleanup(func() { capi.DestroyDecoder(dec) })

	k, tx := capi.EncoderLengths(enc)
	n, dtx := capi.DecoderLengths(dec)
	require.Equal(t, tx, dtx)
	return codec{enc: enc, dec: dec, k: k, n: n, tx: tx}
}

func TestAWGNRoundTrip(t *testing.T) {
	alist := iraCode(t, 256, 1)
	for _, impl := range []string{"Phif64", "tanh", "normalized-min-sum", "offset-min-sum"} {
		t.Run(impl, func(t *testing.T) {
			c := newCodec(t, alist, impl, "")
			require.Equal(t, 256, c.k)
			require.Equal(t, 512, c.tx)

			ch := channel.NewAWGN(4, 0.5, 7)
			rng := rand.New(rand.NewSource(8))
			corrected, failures := 0, 0
			for frame := 0; frame < 20; frame++ {
				info := randomInfo(rng, c.k)
				cw := make([]uint8, c.tx)
				capi.Encode(c.enc, cw, info)

				llrs := ch.Transmit(cw)
				out := make([]uint8, c.tx)
				if capi.DecodeF64(c.dec, out, llrs, 50) < 0 {
					failures++
					continue
				}
				require.Equal(t, cw, out, "frame %d", frame)
				require.Equal(t, info, out[:c.k])
				corrected += channel.HardErrors(llrs, cw)
			}
			require.LessOrEqual(t, failures, maxFrameErrors)
			require.Positive(t, corrected, "channel introduced no errors")
		})
	}
}

func TestAWGNFloat32(t *testing.T) {
	c := newCodec(t, iraCode(t, 256, 2), "min-sum", "")
	ch := channel.NewAWGN(4, 0.5, 3)
	rng := rand.New(rand.NewSource(4))
	failures := 0
	for frame := 0; frame < 10; frame++ {
		cw := make([]uint8, c.tx)
		capi.Encode(c.enc, cw, randomInfo(rng, c.k))
		llrs := ch.Transmit(cw)
		f32 := make([]float32, len(llrs))
		for i, l := range llrs {
			f32[i] = float32(l)
		}
		out := make([]uint8, c.tx)
		if capi.DecodeF32(c.dec, out, f32, 50) < 0 {
			failures++
			continue
		}
		require.Equal(t, cw, out)
	}
	require.LessOrEqual(t, failures, maxFrameErrors)
}

func TestPuncturedAWGN(t *testing.T) {
	// Every 16th parity bit is not transmitted.
	var idx []string
	for j := 0; j < 256; j += 16 {
		idx = append(idx, strconv.Itoa(256+j))
	}
	c := newCodec(t, iraCode(t, 256, 5), "sum-product", "indices:"+strings.Join(idx, ","))
	require.Equal(t, 512, c.n)
	require.Equal(t, 512-16, c.tx)

	ch := channel.NewAWGN(4, 256.0/float64(c.tx), 11)
	rng := rand.New(rand.NewSource(12))
	failures := 0
	for frame := 0; frame < 10; frame++ {
		info := randomInfo(rng, c.k)
		tx := make([]uint8, c.tx)
		capi.Encode(c.enc, tx, info)

		full := make([]uint8, c.n)
		if capi.DecodeF64(c.dec, full, ch.Transmit(tx), 50) < 0 {
			failures++
		} else {
			require.Equal(t, info, full[:c.k])
		}

		sent := make([]uint8, c.tx)
		if capi.DecodeF64(c.dec, sent, ch.Transmit(tx), 50) < 0 {
			failures++
		} else {
			require.Equal(t, tx, sent)
		}
	}
	require.LessOrEqual(t, failures, maxFrameErrors)
}

func TestErasures(t *testing.T) {
	c := newCodec(t, iraCode(t, 256, 6), "offset-min-sum", "")
	er := channel.NewErasure(0.1, 21)
	rng := rand.New(rand.NewSource(22))
	failures := 0
	for frame := 0; frame < 10; frame++ {
		cw := make([]uint8, c.tx)
		capi.Encode(c.enc, cw, randomInfo(rng, c.k))
		llrs := make([]float64, c.tx)
		for i, b := range cw {
			llrs[i] = 4
			if b == 1 {
				llrs[i] = -4
			}
		}
		require.Positive(t, er.Apply(llrs))

		out := make([]uint8, c.tx)
		if capi.DecodeF64(c.dec, out, llrs, 50) < 0 {
			failures++
			continue
		}
		require.Equal(t, cw, out)
	}
	require.LessOrEqual(t, failures, maxFrameErrors)
}

func TestBelowCapacityFails(t *testing.T) {
	c := newCodec(t, iraCode(t, 256, 9), "sum-product", "")
	ch := channel.NewAWGN(-2, 0.5, 31)
	rng := rand.New(rand.NewSource(32))
	failures := 0
	for frame := 0; frame < 10; frame++ {
		cw := make([]uint8, c.tx)
		capi.Encode(c.enc, cw, randomInfo(rng, c.k))
		out := make([]uint8, c.tx)
		switch r := capi.DecodeF64(c.dec, out, ch.Transmit(cw), 20); {
		case r == capi.ResultDecodeFailure:
			failures++
		default:
			require.Positive(t, r)
		}
	}
	require.Positive(t, failures)
}
