package fec

import (
	"fmt"
	"slices"
)

// TannerGraph is the bipartite graph of a parity-check matrix H (M checks x N variables).
// It is immutable after construction and safe for concurrent use.
//
// Edges are numbered check-major: the edges of check c are checkStart[c]..checkStart[c+1].
// Message arrays used by the decoder are indexed by edge number.
type TannerGraph struct {
	n, m int
	rows [][]int // check -> variables, ascending
	cols [][]int // variable -> checks, ascending

	checkStart []int // len m+1
	edgeVar    []int // edge -> variable
	varStart   []int // len n+1
	varEdges   []int // edges grouped by variable, in check order

	maxCheckDeg int
}

// NewTannerGraph builds a graph with m checks over n variables. rows[c] lists the
// 0-based variables checked by c. The row lists are copied and sorted.
func NewTannerGraph(m, n int, rows [][]int) (*TannerGraph, error) {
	if m <= 0 || n <= 0 {
		return nil, descErrorf(0, "invalid dimensions %dx%d", m, n)
	}
	if len(rows) != m {
		return nil, descErrorf(0, "got %d check rows, want %d", len(rows), m)
	}
	g := &TannerGraph{
		n:    n,
		m:    m,
		rows: make([][]int, m),
		cols: make([][]int, n),
	}
	for c, row := range rows {
		r := slices.Clone(row)
		slices.Sort(r)
		for i, v := range r {
			if v < 0 || v >= n {
				return nil, descErrorf(0, "check %d: variable %d out of range [0,%d)", c, v, n)
			}
			if i > 0 && r[i-1] == v {
				return nil, descErrorf(0, "check %d: duplicate variable %d", c, v)
			}
			g.cols[v] = append(g.cols[v], c)
		}
		g.rows[c] = r
	}
	g.buildEdges()
	return g, nil
}

func (g *TannerGraph) buildEdges() {
	g.checkStart = make([]int, g.m+1)
	for c, row := range g.rows {
		g.checkStart[c+1] = g.checkStart[c] + len(row)
		if len(row) > g.maxCheckDeg {
			g.maxCheckDeg = len(row)
		}
	}
	e := g.checkStart[g.m]
	g.edgeVar = make([]int, 0, e)
	for _, row := range g.rows {
		g.edgeVar = append(g.edgeVar, row...)
	}
	g.varStart = make([]int, g.n+1)
	for v, col := range g.cols {
		g.varStart[v+1] = g.varStart[v] + len(col)
	}
	g.varEdges = make([]int, e)
	next := slices.Clone(g.varStart[:g.n])
	for edge, v := range g.edgeVar {
		g.varEdges[next[v]] = edge
		next[v]++
	}
}

// NumVariables returns N, the codeword length before puncturing.
func (g *TannerGraph) NumVariables() int { return g.n }

// NumChecks returns M.
func (g *TannerGraph) NumChecks() int { return g.m }

// NumEdges returns the number of ones in H.
func (g *TannerGraph) NumEdges() int { return len(g.edgeVar) }

// CheckNeighbors returns the variables of check c. The slice must not be modified.
func (g *TannerGraph) CheckNeighbors(c int) []int { return g.rows[c] }

// VariableNeighbors returns the checks of variable v. The slice must not be modified.
func (g *TannerGraph) VariableNeighbors(v int) []int { return g.cols[v] }

func (g *TannerGraph) CheckDegree(c int) int    { return len(g.rows[c]) }
func (g *TannerGraph) VariableDegree(v int) int { return len(g.cols[v]) }

// Contains reports whether H[c][v] == 1.
func (g *TannerGraph) Contains(c, v int) bool {
	if c < 0 || c >= g.m {
		return false
	}
	_, ok := slices.BinarySearch(g.rows[c], v)
	return ok
}

// Syndrome returns H·bits over GF(2). Only the low bit of each entry is used.
func (g *TannerGraph) Syndrome(bits []uint8) ([]uint8, error) {
	if len(bits) != g.n {
		return nil, lengthErrorf("syndrome input", len(bits), g.n)
	}
	s := make([]uint8, g.m)
	for c, row := range g.rows {
		var acc uint8
		for _, v := range row {
			acc ^= bits[v] & 1
		}
		s[c] = acc
	}
	return s, nil
}

// IsCodeword reports whether bits has an all-zero syndrome.
func (g *TannerGraph) IsCodeword(bits []uint8) bool {
	if len(bits) != g.n {
		return false
	}
	return g.checksSatisfied(bits)
}

func (g *TannerGraph) checksSatisfied(bits []uint8) bool {
	for _, row := range g.rows {
		var acc uint8
		for _, v := range row {
			acc ^= bits[v]
		}
		if acc&1 != 0 {
			return false
		}
	}
	return true
}

func (g *TannerGraph) String() string {
	return fmt.Sprintf("TannerGraph{N=%d M=%d edges=%d}", g.n, g.m, g.NumEdges())
}
