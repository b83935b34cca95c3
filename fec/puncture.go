package fec

import (
	"slices"
	"strconv"
	"strings"
	"unicode"
)

// PuncturingPattern maps between the full codeword index space (N) and the
// transmitted index space (N'). Punctured positions are decoded as erasures.
type PuncturingPattern struct {
	mask      []bool // len N, true = transmitted
	positions []int  // transmitted index -> full index, ascending
}

// ParsePuncturing parses a puncturing description for a code of length n.
// An empty string means no puncturing and yields a nil pattern.
//
// Accepted forms:
//
//	1,1,0,1           periodic keep-mask repeated across the codeword
//	mask:1,1,0,1      same, explicit
//	indices:3,7,11    0-based punctured positions
//	blocks:1,1,0,1    codeword split into len(mask) equal blocks, each kept or dropped whole
func ParsePuncturing(pattern string, n int) (*PuncturingPattern, error) {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return nil, nil
	}
	if n <= 0 {
		return nil, descErrorf(0, "puncturing: invalid codeword length %d", n)
	}
	kind, body := "mask", pattern
	if k, b, ok := strings.Cut(pattern, ":"); ok {
		kind, body = strings.ToLower(strings.TrimSpace(k)), b
	}
	tokens := strings.FieldsFunc(body, func(r rune) bool { return r == ',' || unicode.IsSpace(r) })
	if len(tokens) == 0 {
		return nil, descErrorf(0, "puncturing: empty %s", kind)
	}

	mask := make([]bool, n)
	switch kind {
	case "mask", "blocks":
		period, err := parseBits(tokens)
		if err != nil {
			return nil, err
		}
		if kind == "mask" {
			for i := range mask {
				mask[i] = period[i%len(period)]
			}
			break
		}
		if n%len(period) != 0 {
			return nil, descErrorf(0, "puncturing: codeword length %d not divisible by %d blocks", n, len(period))
		}
		bs := n / len(period)
		for i := range mask {
			mask[i] = period[i/bs]
		}
	case "indices":
		for i := range mask {
			mask[i] = true
		}
		for _, t := range tokens {
			idx, err := strconv.Atoi(t)
			if err != nil {
				return nil, descErrorf(0, "puncturing: invalid index %q", t)
			}
			if idx < 0 || idx >= n {
				return nil, descErrorf(0, "puncturing: index %d out of range [0,%d)", idx, n)
			}
			if !mask[idx] {
				return nil, descErrorf(0, "puncturing: duplicate index %d", idx)
			}
			mask[idx] = false
		}
	default:
		return nil, descErrorf(0, "puncturing: unknown form %q", kind)
	}
	return NewPuncturingPattern(mask)
}

func parseBits(tokens []string) ([]bool, error) {
	out := make([]bool, len(tokens))
	for i, t := range tokens {
		switch t {
		case "1":
			out[i] = true
		case "0":
		default:
			return nil, descErrorf(0, "puncturing: invalid mask value %q", t)
		}
	}
	return out, nil
}

// NewPuncturingPattern builds a pattern from a keep-mask of length N.
// At least one position must be transmitted.
func NewPuncturingPattern(mask []bool) (*PuncturingPattern, error) {
	p := &PuncturingPattern{mask: slices.Clone(mask)}
	for i, keep := range mask {
		if keep {
			p.positions = append(p.positions, i)
		}
	}
	if len(p.positions) == 0 {
		return nil, descErrorf(0, "puncturing: no transmitted positions")
	}
	return p, nil
}

// CodewordLength returns N.
func (p *PuncturingPattern) CodewordLength() int { return len(p.mask) }

// TransmittedLength returns N'.
func (p *PuncturingPattern) TransmittedLength() int { return len(p.positions) }

// IsTransmitted reports whether full-codeword position i is sent.
func (p *PuncturingPattern) IsTransmitted(i int) bool { return p.mask[i] }

// Positions returns the full-codeword index of each transmitted bit. The slice must not be modified.
func (p *PuncturingPattern) Positions() []int { return p.positions }

// Mask returns a copy of the keep-mask.
func (p *PuncturingPattern) Mask() []bool { return slices.Clone(p.mask) }

// Rate returns N/N', which is at least one.
func (p *PuncturingPattern) Rate() float64 {
	return float64(len(p.mask)) / float64(len(p.positions))
}

func (p *PuncturingPattern) String() string {
	var b strings.Builder
	b.WriteString("mask:")
	for i, keep := range p.mask {
		if i > 0 {
			b.WriteByte(',')
		}
		if keep {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

// ToTransmitted selects the transmitted positions of full, in index order.
// A nil pattern returns a copy of full.
func ToTransmitted[T any](p *PuncturingPattern, full []T) ([]T, error) {
	if p == nil {
		return slices.Clone(full), nil
	}
	if len(full) != len(p.mask) {
		return nil, lengthErrorf("puncture input", len(full), len(p.mask))
	}
	out := make([]T, len(p.positions))
	gather(p, out, full)
	return out, nil
}

// ToFull scatters tx back into the full index space, writing fill at punctured
// positions. A nil pattern returns a copy of tx.
func ToFull[T any](p *PuncturingPattern, tx []T, fill T) ([]T, error) {
	if p == nil {
		return slices.Clone(tx), nil
	}
	if len(tx) != len(p.positions) {
		return nil, lengthErrorf("depuncture input", len(tx), len(p.positions))
	}
	out := make([]T, len(p.mask))
	scatter(p, out, tx, fill)
	return out, nil
}

func gather[T any](p *PuncturingPattern, dst, full []T) {
	for j, i := range p.positions {
		dst[j] = full[i]
	}
}

func scatter[T any](p *PuncturingPattern, dst, tx []T, fill T) {
	for i := range dst {
		dst[i] = fill
	}
	for j, i := range p.positions {
		dst[i] = tx[j]
	}
}
