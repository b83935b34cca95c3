package fec

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func bitsOf(s string) []uint8 {
	out := make([]uint8, len(s))
	for i := range s {
		out[i] = s[i] - '0'
	}
	return out
}

func TestEncoderKnownCodewords(t *testing.T) {
	enc, err := NewEncoder(mustAlist(t, encoder12x4), nil, EncoderOptions{})
	require.NoError(t, err)
	require.Equal(t, 8, enc.InfoLength())
	require.Equal(t, 12, enc.TransmittedLength())
	require.True(t, enc.Generator().IsIdentityPermutation())

	for msg, want := range map[string]string{
		"10110010": "101100101001",
		"01001110": "010011101010",
	} {
		cw, err := enc.Encode(bitsOf(msg))
		require.NoError(t, err)
		require.Equal(t, bitsOf(want), cw)
	}
}

func TestEncoderColumnPermutation(t *testing.T) {
	g := mustAlist(t, permuted3x9)
	enc, err := NewEncoder(g, nil, EncoderOptions{})
	require.NoError(t, err)

	gen := enc.Generator()
	require.False(t, gen.IsIdentityPermutation())
	require.Equal(t, []int{0, 1, 2, 3, 5, 8}, gen.InfoColumns())
	require.Equal(t, []int{4, 6, 7}, gen.ParityColumns())
	require.Equal(t, []int{0, 1, 2, 3, 5, 8, 4, 6, 7}, gen.Permutation())

	cw, err := enc.Encode([]uint8{1, 0, 1, 1, 0, 1})
	require.NoError(t, err)
	require.Equal(t, []uint8{1, 0, 1, 1, 0, 0, 0, 0, 1}, cw)

	// The permuted graph accepts the codeword in systematic order.
	pg, err := gen.PermuteGraph(g)
	require.NoError(t, err)
	sys := make([]uint8, len(cw))
	for j, c := range gen.Permutation() {
		sys[j] = cw[c]
	}
	require.True(t, pg.IsCodeword(sys))
}

func TestEncoderSyndromeClosure(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	graphs := []*TannerGraph{
		mustAlist(t, encoder12x4),
		mustAlist(t, permuted3x9),
		randomRegularGraph(t, 100, 200, 3, 11),
	}
	for _, g := range graphs {
		enc, err := NewEncoder(g, nil, EncoderOptions{})
		if err != nil {
			// Random graphs may be rank deficient; that is reported, not silently accepted.
			require.ErrorIs(t, err, ErrSingularMatrix)
			require.Less(t, rankGF2(g), g.NumChecks())
			continue
		}
		for trial := 0; trial < 32; trial++ {
			info := make([]uint8, enc.InfoLength())
			for i := range info {
				info[i] = uint8(rng.Intn(2))
			}
			cw, err := enc.Encode(info)
			require.NoError(t, err)
			s, err := g.Syndrome(cw)
			require.NoError(t, err)
			require.Equal(t, make([]uint8, g.NumChecks()), s)
			for k, c := range enc.Generator().InfoColumns() {
				require.Equal(t, info[k], cw[c])
			}
		}
	}
}

func TestEncoderSingularMatrix(t *testing.T) {
	_, err := NewEncoder(mustGraph(t, 4, 8, rank3Rows), nil, EncoderOptions{})
	require.ErrorIs(t, err, ErrSingularMatrix)
	require.Equal(t, 3, rankGF2(mustGraph(t, 4, 8, rank3Rows)))

	_, err = NewEncoder(mustGraph(t, 2, 2, [][]int{{0}, {1}}), nil, EncoderOptions{})
	require.ErrorIs(t, err, ErrSingularMatrix)
}

func TestEncoderLengthMismatch(t *testing.T) {
	enc, err := NewEncoder(mustAlist(t, encoder12x4), nil, EncoderOptions{})
	require.NoError(t, err)
	_, err = enc.Encode(make([]uint8, 7))
	require.ErrorIs(t, err, ErrLengthMismatch)
	_, err = enc.EncodeCodeword(make([]uint8, 9))
	require.ErrorIs(t, err, ErrLengthMismatch)
}

func TestEncoderPuncturing(t *testing.T) {
	g := mustAlist(t, encoder12x4)
	p, err := ParsePuncturing("indices:8,9", 12)
	require.NoError(t, err)
	enc, err := NewEncoder(g, p, EncoderOptions{})
	require.NoError(t, err)
	require.Equal(t, 10, enc.TransmittedLength())

	tx, err := enc.Encode(bitsOf("10110010"))
	require.NoError(t, err)
	require.Equal(t, bitsOf("1011001001"), tx)

	full, err := enc.EncodeCodeword(bitsOf("10110010"))
	require.NoError(t, err)
	require.Equal(t, bitsOf("101100101001"), full)

	short, err := ParsePuncturing("1,0", 10)
	require.NoError(t, err)
	_, err = NewEncoder(g, short, EncoderOptions{})
	require.ErrorIs(t, err, ErrMalformedDescription)
}
