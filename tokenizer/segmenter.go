package tokenizer

import (
	"fmt"
	"iter"
	"slices"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
)

// Pretokenizer patterns for the supported encodings. These are the
// upstream tiktoken splitters; the \s+(?!\S) lookahead needs a
// backtracking engine, hence regexp2 rather than the stdlib.
const (
	CL100KPattern = `(?i:'s|'t|'re|'ve|'m|'ll|'d)|[^\r\n\p{L}\p{N}]?\p{L}+|\p{N}{1,3}| ?[^\s\p{L}\p{N}]+[\r\n]*|\s*[\r\n]+|\s+(?!\S)|\s+`

	O200KPattern = `[^\r\n\p{L}\p{N}]?[\p{Lu}\p{Lt}\p{Lm}\p{Lo}\p{M}]*[\p{Ll}\p{Lm}\p{Lo}\p{M}]+(?i:'s|'t|'re|'ve|'m|'ll|'d)?` +
		`|[^\r\n\p{L}\p{N}]?[\p{Lu}\p{Lt}\p{Lm}\p{Lo}\p{M}]+[\p{Ll}\p{Lm}\p{Lo}\p{M}]*(?i:'s|'t|'re|'ve|'m|'ll|'d)?` +
		`|\p{N}{1,3}` +
		`| ?[^\s\p{L}\p{N}]+[\r\n/]*` +
		`|\s*[\r\n]+` +
		`|\s+(?!\S)` +
		`|\s+`
)

// Pretokenizer splits a literal span into pieces before BPE merging.
// Merges never cross piece boundaries. A nil Pretokenizer passes the
// span through as a single piece.
type Pretokenizer struct {
	res []*regexp2.Regexp
}

// NewPretokenizer compiles the given patterns. Patterns are applied in
// order, each further splitting the pieces of the previous one.
func NewPretokenizer(patterns ...string) (*Pretokenizer, error) {
	p := &Pretokenizer{}
	for _, pat := range patterns {
		re, err := regexp2.Compile(pat, regexp2.None)
		if err != nil {
			return nil, fmt.Errorf("tokenizer: compile pretokenizer pattern: %w", err)
		}
		p.res = append(p.res, re)
	}
	return p, nil
}

// Split yields the pieces of s in order. Concatenating the pieces
// reproduces s exactly: text between matches is yielded as its own
// piece rather than dropped. Regex matching operates on runes, so a
// span that is not valid UTF-8 passes through as a single piece to keep
// encoding byte-exact.
func (p *Pretokenizer) Split(s string) iter.Seq[string] {
	if p == nil || len(p.res) == 0 || !utf8.ValidString(s) {
		return func(yield func(string) bool) {
			if s != "" {
				yield(s)
			}
		}
	}

	parts := []string{s}
	for _, re := range p.res {
		parts = slices.Collect(func(yield func(string) bool) {
			for _, part := range parts {
				r := []rune(part)
				var offset int
				for m, _ := re.FindRunesMatch(r); m != nil; m, _ = re.FindNextMatch(m) {
					if offset < m.Index {
						if !yield(string(r[offset:m.Index])) {
							return
						}
					}
					if !yield(m.String()) {
						return
					}
					offset = m.Index + m.Length
				}
				if offset < len(r) {
					if !yield(string(r[offset:])) {
						return
					}
				}
			}
		})
	}

	return slices.Values(parts)
}

// SegmentKind tags a Segment as ordinary text or a special token.
type SegmentKind uint8

const (
	SegmentLiteral SegmentKind = iota
	SegmentSpecial
)

// Segment is a contiguous span of the input. Special segments carry the
// matched token id; literal segments are subject to merging.
type Segment struct {
	Text string
	Kind SegmentKind
	ID   Rank
}

// Segments scans text left to right and splits it on special token
// boundaries. Concatenating the returned segment texts reproduces the
// input byte-for-byte regardless of how the segments encode. A literal
// substring identical to a registered special is always classified as
// that special; when several specials start at the same offset the
// longest one wins.
func (c *Core) Segments(text string) []Segment {
	var segs []Segment
	lit := 0
	for i := 0; i < len(text); {
		id, n, ok := c.specials.matchAt(text, i)
		if !ok {
			i++
			continue
		}
		if lit < i {
			segs = append(segs, Segment{Text: text[lit:i], Kind: SegmentLiteral})
		}
		segs = append(segs, Segment{Text: text[i : i+n], Kind: SegmentSpecial, ID: id})
		i += n
		lit = i
	}
	if lit < len(text) {
		segs = append(segs, Segment{Text: text[lit:], Kind: SegmentLiteral})
	}
	return segs
}
