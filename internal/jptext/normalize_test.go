package jptext

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	opts := DefaultOptions()

	testCases := []struct {
		input    string
		expected string
		desc     string
	}{
		{"マアジ", "まあじ", "katakana folds to hiragana"},
		{"あじ", "あじ", "hiragana unchanged"},
		{"アジフライ", "あじふらい", "mixed katakana word"},
		{"Suzuki", "suzuki", "ASCII case folded"},
		{"  マアジ  ", "まあじ", "surrounding whitespace trimmed"},
		{"真鯵", "真鯵", "kanji passes through"},
		{"ヴ", "ゔ", "U+30F4 is inside the folded block"},
		{"ヷ", "ヷ", "U+30F7 is past the folded block"},
		{"ー", "ー", "long vowel mark unchanged"},
		{"🐟", "🐟", "emoji passes through"},
		{"", "", "empty input"},
		{"   ", "", "whitespace only"},
		{"\t\nアジ\n", "あじ", "control whitespace trimmed"},
		{"123-45", "123-45", "digits and symbols unchanged"},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, Normalize(tc.input, opts), tc.desc)
	}
}

func TestNormalizeOptionsOff(t *testing.T) {
	assert.Equal(t, "マアジ", Normalize("マアジ", Options{FoldCase: true}))
	assert.Equal(t, "ABC", Normalize("ABC", Options{FoldKana: true}))
	assert.Equal(t, "マアジABC", Normalize(" マアジABC ", Options{}))
}

func TestNormalizeWidthFold(t *testing.T) {
	opts := Options{FoldKana: true, FoldCase: true, FoldWidth: true}
	assert.Equal(t, "aji", Normalize("ＡＪＩ", opts))
	assert.Equal(t, "まあし", Normalize("ﾏｱｼ", opts), "half-width kana folds to full width, then to hiragana")
	// width folding stays off by default; full-width letters are outside
	// the ASCII case fold and pass through
	assert.Equal(t, "ＡＪＩ", Normalize("ＡＪＩ", DefaultOptions()))
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"マアジ", "あじ", "Suzuki", "真鯵", "  アジ  ", "🐟", "ＡＪＩ", "ｽｽﾞｷ", ""}
	for _, variant := range []Options{
		DefaultOptions(),
		{FoldKana: true, FoldCase: true, FoldWidth: true},
		{},
	} {
		for _, in := range inputs {
			once := Normalize(in, variant)
			assert.Equal(t, once, Normalize(once, variant), "idempotence for %q", in)
		}
	}
}

func TestNormalizeLongInput(t *testing.T) {
	long := strings.Repeat("ア", 10000)
	assert.Equal(t, strings.Repeat("あ", 10000), Normalize(long, DefaultOptions()))
}
