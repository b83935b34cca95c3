package fec

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
)

// The alist format (MacKay):
//
//	N M
//	maxColWeight maxRowWeight
//	w(col 0) ... w(col N-1)
//	w(row 0) ... w(row M-1)
//	N lines of 1-based row indices, one per column
//	M lines of 1-based column indices, one per row
//
// Irregular codes may pad adjacency lines with zeros up to the maximum weight,
// or omit the padding (an empty line for a weight-0 node).

// ParseAlist parses an alist description held in a string.
func ParseAlist(text string) (*TannerGraph, error) {
	return ReadAlist(strings.NewReader(text))
}

// ReadAlistFile parses the alist file at path.
func ReadAlistFile(path string) (*TannerGraph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open alist: %w", err)
	}
	defer f.Close()
	g, err := ReadAlist(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

type alistReader struct {
	sc   *bufio.Scanner
	line int
}

func (r *alistReader) next() (string, bool) {
	if !r.sc.Scan() {
		return "", false
	}
	r.line++
	return strings.TrimRight(r.sc.Text(), "\r"), true
}

func (r *alistReader) ints(what string, want int) ([]int, error) {
	s, ok := r.next()
	if !ok {
		return nil, descErrorf(r.line+1, "missing %s line", what)
	}
	fields := strings.Fields(s)
	if want >= 0 && len(fields) != want {
		return nil, descErrorf(r.line, "%s: got %d values, want %d", what, len(fields), want)
	}
	out := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil || v < 0 {
			return nil, descErrorf(r.line, "%s: invalid value %q", what, f)
		}
		out[i] = v
	}
	return out, nil
}

// adjacency reads one line per node. Indices are 1-based; zeros are padding.
func (r *alistReader) adjacency(kind string, weights []int, maxWeight, bound int) ([][]int, error) {
	lists := make([][]int, len(weights))
	for i, w := range weights {
		vals, err := r.ints(fmt.Sprintf("%s %d", kind, i+1), -1)
		if err != nil {
			return nil, err
		}
		if len(vals) > max(maxWeight, 1) {
			return nil, descErrorf(r.line, "%s %d: %d entries exceed maximum weight %d", kind, i+1, len(vals), maxWeight)
		}
		list := make([]int, 0, w)
		for _, v := range vals {
			if v == 0 {
				continue
			}
			if v > bound {
				return nil, descErrorf(r.line, "%s %d: index %d out of range [1,%d]", kind, i+1, v, bound)
			}
			if slices.Contains(list, v-1) {
				return nil, descErrorf(r.line, "%s %d: duplicate index %d", kind, i+1, v)
			}
			list = append(list, v-1)
		}
		if len(list) != w {
			return nil, descErrorf(r.line, "%s %d: got %d indices, declared weight %d", kind, i+1, len(list), w)
		}
		lists[i] = list
	}
	return lists, nil
}

// ReadAlist parses an alist description. Both the column and row views are
// required and must describe the same edges.
func ReadAlist(rd io.Reader) (*TannerGraph, error) {
	r := &alistReader{sc: bufio.NewScanner(rd)}
	r.sc.Buffer(make([]byte, 64*1024), 16<<20)

	dims, err := r.ints("dimensions", 2)
	if err != nil {
		return nil, err
	}
	n, m := dims[0], dims[1]
	if n <= 0 || m <= 0 {
		return nil, descErrorf(r.line, "dimensions must be positive, got %d %d", n, m)
	}
	maxw, err := r.ints("maximum weights", 2)
	if err != nil {
		return nil, err
	}
	colW, err := r.ints("column weights", n)
	if err != nil {
		return nil, err
	}
	for i, w := range colW {
		if w > maxw[0] || w > m {
			return nil, descErrorf(r.line, "column %d: weight %d exceeds maximum %d", i+1, w, min(maxw[0], m))
		}
	}
	rowW, err := r.ints("row weights", m)
	if err != nil {
		return nil, err
	}
	for i, w := range rowW {
		if w > maxw[1] || w > n {
			return nil, descErrorf(r.line, "row %d: weight %d exceeds maximum %d", i+1, w, min(maxw[1], n))
		}
	}
	cols, err := r.adjacency("column", colW, maxw[0], m)
	if err != nil {
		return nil, err
	}
	colsEnd := r.line
	rows, err := r.adjacency("row", rowW, maxw[1], n)
	if err != nil {
		return nil, err
	}
	for {
		s, ok := r.next()
		if !ok {
			break
		}
		if strings.TrimSpace(s) != "" {
			return nil, descErrorf(r.line, "unexpected trailing content")
		}
	}
	if err := r.sc.Err(); err != nil {
		return nil, fmt.Errorf("read alist: %w", err)
	}

	// Row view must match the column view edge for edge.
	fromCols := make([][]int, m)
	for v, col := range cols {
		for _, c := range col {
			fromCols[c] = append(fromCols[c], v)
		}
	}
	for c := range rows {
		got := slices.Clone(rows[c])
		slices.Sort(got)
		if !slices.Equal(got, fromCols[c]) {
			return nil, descErrorf(colsEnd+c+1, "row %d disagrees with column lists", c+1)
		}
	}
	return NewTannerGraph(m, n, rows)
}

// MarshalAlist renders the graph in alist format. With padding, adjacency
// lines are zero-padded to the maximum weight as MacKay's files are.
func (g *TannerGraph) MarshalAlist(padding bool) string {
	var b strings.Builder
	_ = g.WriteAlist(&b, padding)
	return b.String()
}

// WriteAlist writes the alist rendering of g to w.
func (g *TannerGraph) WriteAlist(w io.Writer, padding bool) error {
	bw := bufio.NewWriter(w)
	maxCol, maxRow := 0, 0
	for _, c := range g.cols {
		maxCol = max(maxCol, len(c))
	}
	for _, r := range g.rows {
		maxRow = max(maxRow, len(r))
	}
	fmt.Fprintf(bw, "%d %d\n%d %d\n", g.n, g.m, maxCol, maxRow)
	writeWeights := func(lists [][]int) {
		for i, l := range lists {
			if i > 0 {
				bw.WriteByte(' ')
			}
			bw.WriteString(strconv.Itoa(len(l)))
		}
		bw.WriteByte('\n')
	}
	writeWeights(g.cols)
	writeWeights(g.rows)
	writeLists := func(lists [][]int, width int) {
		for _, l := range lists {
			for i, v := range l {
				if i > 0 {
					bw.WriteByte(' ')
				}
				bw.WriteString(strconv.Itoa(v + 1))
			}
			if padding {
				pad := width - len(l)
				if len(l) == 0 {
					bw.WriteByte('0')
					pad--
				}
				for ; pad > 0; pad-- {
					bw.WriteString(" 0")
				}
			}
			bw.WriteByte('\n')
		}
	}
	writeLists(g.cols, maxCol)
	writeLists(g.rows, maxRow)
	return bw.Flush()
}
