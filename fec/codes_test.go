package fec

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// regular12x4 has checks j = {j, j+4, j+8}.
const regular12x4 = `12 4
1 3
1 1 1 1 1 1 1 1 1 1 1 1
3 3 3 3
1
2
3
4
1
2
3
4
1
2
3
4
1 5 9
2 6 10
3 7 11
4 8 12
`

// encoder12x4 is a (12,8) code whose trailing 4x4 block is invertible.
const encoder12x4 = `12 4
3 9
3 3 3 3 3 3 3 3 3 3 3 3
9 9 9 9
1 2 3
1 3 4
2 3 4
2 3 4
1 2 4
1 2 3
1 3 4
1 2 4
1 2 3
2 3 4
1 2 4
1 3 4
1 2 5 6 7 8 9 11 12
1 3 4 5 6 8 9 10 11
1 2 3 4 6 7 9 10 12
2 3 4 5 7 8 10 11 12
`

// permuted3x9 needs a column permutation to reach systematic form; column 3 is empty.
const permuted3x9 = `9 3
3 5
3 2 0 1 2 2 2 1 2
5 5 5
1 2 3
1 3

2
1 2
2 3
1 3
2
1 3
1 2 5 7 9
1 4 5 6 8
1 2 6 7 9
`

// johnsonRows is the 4x6 example code from Johnson's LDPC notes.
var johnsonRows = [][]int{{0, 1, 3}, {1, 2, 4}, {0, 4, 5}, {2, 3, 5}}

// johnsonCodeword satisfies every check of johnsonRows.
var johnsonCodeword = []uint8{0, 0, 1, 0, 1, 1}

// rank3Rows is a 4x8 regular code with dependent rows (r0+r1 = r2+r3).
var rank3Rows = [][]int{{0, 1, 2, 3}, {4, 5, 6, 7}, {0, 1, 4, 5}, {2, 3, 6, 7}}

func mustGraph(t testing.TB, m, n int, rows [][]int) *TannerGraph {
	t.Helper()
	g, err := NewTannerGraph(m, n, rows)
	require.NoError(t, err)
	return g
}

func mustAlist(t testing.TB, text string) *TannerGraph {
	t.Helper()
	g, err := ParseAlist(text)
	require.NoError(t, err)
	return g
}

// randomRegularGraph builds an n-variable code where every variable joins
// colWeight distinct checks out of m.
func randomRegularGraph(t testing.TB, m, n, colWeight int, seed int64) *TannerGraph {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	rows := make([][]int, m)
	for v := 0; v < n; v++ {
		for _, c := range rng.Perm(m)[:colWeight] {
			rows[c] = append(rows[c], v)
		}
	}
	return mustGraph(t, m, n, rows)
}

// bpsk maps bits to noiseless LLRs of the given magnitude.
func bpsk(bits []uint8, mag float64) []float64 {
	out := make([]float64, len(bits))
	for i, b := range bits {
		if b == 1 {
			out[i] = -mag
		} else {
			out[i] = mag
		}
	}
	return out
}

func toF32(x []float64) []float32 {
	out := make([]float32, len(x))
	for i, v := range x {
		out[i] = float32(v)
	}
	return out
}
