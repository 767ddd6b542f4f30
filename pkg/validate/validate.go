/*
Package validate enforces the data-quality rules for user-submitted
species names before they enter the catalog.

Checks run in a fixed order and the first failure wins, so a given
input always reports the same rejection: sanitize, length bounds,
forbidden words, allowed character classes, then duplicates. Capacity
is a separate call because it needs a catalog count the validator does
not track.
*/
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Code is the machine-readable rejection reason.
type Code string

const (
	CodeTooShort       Code = "TOO_SHORT"
	CodeTooLong        Code = "TOO_LONG"
	CodeInvalidPattern Code = "INVALID_PATTERN"
	CodeForbiddenWord  Code = "FORBIDDEN_WORD"
	CodeMaxSpecies     Code = "MAX_SPECIES_REACHED"
	CodeDuplicateName  Code = "DUPLICATE_NAME"
)

// Result is the outcome of a validation call. On success Sanitized
// carries the trimmed value to store; on failure Code and Message
// describe the first rule that rejected the input.
type Result struct {
	OK        bool
	Sanitized string
	Code      Code
	Message   string
}

// Rules configure the validator. DefaultRules matches the catalog's
// shipping policy.
type Rules struct {
	MinLength      int
	MaxLength      int
	ForbiddenWords []string
	AllowedPattern *regexp.Regexp
	MaxEntities    int
	TrimWhitespace bool
}

// Japanese scripts only: hiragana, katakana (with the long vowel mark),
// and the CJK unified ideograph block plus the iteration mark. The
// full-width space is deliberately outside the class.
var defaultPattern = regexp.MustCompile(`^[ぁ-んァ-ヶー一-龯々]+$`)

// DefaultRules returns the shipping rule set.
func DefaultRules() Rules {
	return Rules{
		MinLength:      2,
		MaxLength:      20,
		ForbiddenWords: []string{"テスト", "てすと", "test", "ダミー", "だみー", "dummy"},
		AllowedPattern: defaultPattern,
		MaxEntities:    100,
		TrimWhitespace: true,
	}
}

// Validator applies a rule set. It holds no mutable state; a single
// instance is safe for concurrent use.
type Validator struct {
	rules Rules
}

// New creates a validator with the default rules.
func New() *Validator {
	return NewWithRules(DefaultRules())
}

// NewWithRules creates a validator with custom rules. Zero-valued
// numeric fields fall back to the defaults; a nil pattern disables the
// character-class check.
func NewWithRules(rules Rules) *Validator {
	def := DefaultRules()
	if rules.MinLength <= 0 {
		rules.MinLength = def.MinLength
	}
	if rules.MaxLength <= 0 {
		rules.MaxLength = def.MaxLength
	}
	if rules.MaxEntities <= 0 {
		rules.MaxEntities = def.MaxEntities
	}
	return &Validator{rules: rules}
}

// Validate checks a candidate name against the rule ladder and the
// caller's existing names. It mutates nothing; a failed result just
// means re-prompting the user.
func (v *Validator) Validate(input string, existing []string) Result {
	s := input
	if v.rules.TrimWhitespace {
		s = strings.TrimSpace(s)
	}

	n := utf8.RuneCountInString(s)
	if n < v.rules.MinLength {
		return fail(CodeTooShort, fmt.Sprintf("名前は%d文字以上で入力してください", v.rules.MinLength))
	}
	if n > v.rules.MaxLength {
		return fail(CodeTooLong, fmt.Sprintf("名前は%d文字以内で入力してください", v.rules.MaxLength))
	}

	// forbidden words are reported before pattern violations so a
	// blocked romaji word is flagged as blocked, not as a bad script
	lower := strings.ToLower(s)
	for _, w := range v.rules.ForbiddenWords {
		if w != "" && strings.Contains(lower, strings.ToLower(w)) {
			return fail(CodeForbiddenWord, "使用できない単語が含まれています")
		}
	}

	if v.rules.AllowedPattern != nil && !v.rules.AllowedPattern.MatchString(s) {
		return fail(CodeInvalidPattern, "ひらがな・カタカナ・漢字で入力してください")
	}

	for _, name := range existing {
		if strings.EqualFold(strings.TrimSpace(name), s) {
			return fail(CodeDuplicateName, "同じ名前がすでに登録されています")
		}
	}

	return Result{OK: true, Sanitized: s}
}

// CheckCapacity rejects once the catalog holds the configured maximum
// of entities.
func (v *Validator) CheckCapacity(currentCount int) Result {
	if currentCount >= v.rules.MaxEntities {
		return fail(CodeMaxSpecies, fmt.Sprintf("登録できる魚種は%d種までです", v.rules.MaxEntities))
	}
	return Result{OK: true}
}

func fail(code Code, message string) Result {
	return Result{Code: code, Message: message}
}
