package fec

import "math/bits"

// bitRow is a GF(2) row vector packed into 64-bit words, bit j at word j>>6.
type bitRow []uint64

func newBitRow(n int) bitRow { return make(bitRow, (n+63)/64) }

func (r bitRow) get(j int) bool { return r[j>>6]&(1<<(uint(j)&63)) != 0 }
func (r bitRow) set(j int)      { r[j>>6] |= 1 << (uint(j) & 63) }

func (r bitRow) xor(o bitRow) {
	for i := range r {
		r[i] ^= o[i]
	}
}

// dotParity returns the GF(2) inner product of r and o.
func (r bitRow) dotParity(o bitRow) uint8 {
	var acc uint64
	for i := range r {
		acc ^= r[i] & o[i]
	}
	return uint8(bits.OnesCount64(acc) & 1)
}

// packBits packs the low bit of each entry of v.
func packBits(v []uint8) bitRow {
	r := newBitRow(len(v))
	for j, b := range v {
		if b&1 != 0 {
			r.set(j)
		}
	}
	return r
}

// packGraph returns H as packed rows.
func packGraph(g *TannerGraph) []bitRow {
	rows := make([]bitRow, g.m)
	for c, vars := range g.rows {
		r := newBitRow(g.n)
		for _, v := range vars {
			r.set(v)
		}
		rows[c] = r
	}
	return rows
}

// reduceGF2 brings rows to reduced row echelon form in place, visiting
// candidate pivot columns in the given order. It returns the pivot column of
// each leading row; len(pivots) is the rank.
func reduceGF2(rows []bitRow, order []int) []int {
	M := len(rows)
	pivots := make([]int, 0, M)
	r := 0
	for _, c := range order {
		if r == M {
			break
		}
		wordIdx := c >> 6
		bitMask := uint64(1) << (uint(c) & 63)
		// find pivot
		p := -1
		for i := r; i < M; i++ {
			if rows[i][wordIdx]&bitMask != 0 {
				p = i
				break
			}
		}
		if p == -1 {
			continue
		}
		rows[r], rows[p] = rows[p], rows[r]
		// eliminate this column in all other rows
		for i := 0; i < M; i++ {
			if i != r && rows[i][wordIdx]&bitMask != 0 {
				rows[i].xor(rows[r])
			}
		}
		pivots = append(pivots, c)
		r++
	}
	return pivots
}
