package fec

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAlistRegularRoundTrip(t *testing.T) {
	g := mustAlist(t, regular12x4)
	require.Equal(t, 12, g.NumVariables())
	require.Equal(t, 4, g.NumChecks())
	require.Equal(t, 12, g.NumEdges())
	for j := 0; j < 4; j++ {
		require.Equal(t, []int{j, j + 4, j + 8}, g.CheckNeighbors(j))
	}
	require.Equal(t, regular12x4, g.MarshalAlist(true))
	require.Equal(t, regular12x4, g.MarshalAlist(false))

	built := mustGraph(t, 4, 12, [][]int{{0, 4, 8}, {1, 5, 9}, {2, 6, 10}, {3, 7, 11}})
	require.Equal(t, regular12x4, built.MarshalAlist(true))
}

func TestAlistIrregularPadding(t *testing.T) {
	const padded = `12 4
1 3
1 1 1 1 1 1 1 1 1 1 0 0
3 3 2 2
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
0
0
1 5 9
2 6 10
3 7 0
4 8 0
`
	const unpadded = `12 4
1 3
1 1 1 1 1 1 1 1 1 1 0 0
3 3 2 2
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


1 5 9
2 6 10
3 7
4 8
`
	for _, text := range []string{padded, unpadded} {
		g := mustAlist(t, text)
		require.Equal(t, padded, g.MarshalAlist(true))
		require.Equal(t, unpadded, g.MarshalAlist(false))
		require.Equal(t, 0, g.VariableDegree(10))
		require.Equal(t, 2, g.CheckDegree(3))
	}
}

func TestAlistDeclaredWeightsMatchAdjacency(t *testing.T) {
	for _, text := range []string{regular12x4, encoder12x4, permuted3x9} {
		g := mustAlist(t, text)
		lines := strings.Split(text, "\n")
		colW := strings.Fields(lines[2])
		rowW := strings.Fields(lines[3])
		for v, w := range colW {
			require.Equal(t, w, strconv.Itoa(g.VariableDegree(v)))
		}
		for c, w := range rowW {
			require.Equal(t, w, strconv.Itoa(g.CheckDegree(c)))
		}
	}
}

func TestAlistCRLF(t *testing.T) {
	g := mustAlist(t, strings.ReplaceAll(regular12x4, "\n", "\r\n"))
	require.Equal(t, regular12x4, g.MarshalAlist(true))
}

func TestAlistErrors(t *testing.T) {
	replaceLine := func(text string, line int, with string) string {
		lines := strings.Split(text, "\n")
		lines[line-1] = with
		return strings.Join(lines, "\n")
	}
	cases := []struct {
		name string
		text string
		line int
	}{
		{"empty", "", 1},
		{"bad header", "12\n", 1},
		{"non-numeric", "12 x\n", 1},
		{"weight count", replaceLine(regular12x4, 3, "1 1 1"), 3},
		{"weight above max", replaceLine(regular12x4, 4, "3 3 3 4"), 4},
		{"column out of range", replaceLine(regular12x4, 6, "5"), 6},
		{"column weight mismatch", replaceLine(regular12x4, 6, "2 3"), 6},
		{"duplicate in column", replaceLine(regular12x4, 17, "1 5 5"), 17},
		{"row out of range", replaceLine(regular12x4, 17, "1 5 13"), 17},
		{"row disagrees", replaceLine(regular12x4, 17, "1 5 10"), 17},
		{"truncated", strings.Join(strings.Split(regular12x4, "\n")[:18], "\n"), 19},
		{"trailing content", regular12x4 + "\nextra garbage\n", 22},
		{"trailing values", "2 1\n1 2\n1 1\n2\n1\n1\n1 2\n3\n", 8},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseAlist(tc.text)
			require.ErrorIs(t, err, ErrMalformedDescription)
			var de *DescriptionError
			require.True(t, errors.As(err, &de))
			require.Equal(t, tc.line, de.Line)
		})
	}
}

func TestAlistTrailingBlankLines(t *testing.T) {
	g, err := ParseAlist(regular12x4 + "\n  \n\t\n")
	require.NoError(t, err)
	require.Equal(t, 12, g.NumVariables())
}

func TestReadAlistFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "code.alist")
	require.NoError(t, os.WriteFile(path, []byte(permuted3x9), 0o644))
	g, err := ReadAlistFile(path)
	require.NoError(t, err)
	require.Equal(t, 9, g.NumVariables())
	require.Equal(t, permuted3x9, g.MarshalAlist(false))

	_, err = ReadAlistFile(filepath.Join(t.TempDir(), "missing.alist"))
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrMalformedDescription)
}
