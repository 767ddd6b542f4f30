// Package jptext provides the text normalization shared by the index
// builder, the query path, and the duplicate checks. Folding is limited
// to the two scripts the catalog actually mixes: kana and ASCII/Latin.
package jptext

import (
	"strings"

	"golang.org/x/text/width"
)

// Options control which foldings Normalize applies.
type Options struct {
	FoldKana  bool // katakana -> hiragana
	FoldCase  bool // ASCII A-Z -> a-z
	FoldWidth bool // full-width ASCII forms -> half-width (for IME-typed romaji)
}

// DefaultOptions matches what the search index uses.
func DefaultOptions() Options {
	return Options{FoldKana: true, FoldCase: true}
}

const (
	katakanaLo = 0x30A1 // ァ
	katakanaHi = 0x30F6 // ヶ
	kanaOffset = 0x60   // katakana code point minus this lands on hiragana
)

// Normalize trims s and applies the enabled foldings. It is pure and
// total: any input, including emoji and control characters, passes
// through unchanged apart from the requested foldings.
func Normalize(s string, opts Options) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if opts.FoldWidth {
		s = width.Fold.String(s)
	}
	if !opts.FoldKana && !opts.FoldCase {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case opts.FoldKana && r >= katakanaLo && r <= katakanaHi:
			r -= kanaOffset
		case opts.FoldCase && r >= 'A' && r <= 'Z':
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
