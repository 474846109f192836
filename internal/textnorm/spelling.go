package textnorm

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Correction maps a misspelled phrase to its canonical spelling.
type Correction struct {
	Misspelling string `json:"misspelling" yaml:"misspelling"`
	Correction  string `json:"correction" yaml:"correction"`
}

// Corrector applies an ordered list of corrections. Earlier pairs win when
// two misspellings could cover the same span.
type Corrector struct {
	rules []correctionRule
}

type correctionRule struct {
	pattern     *regexp.Regexp
	replacement string
}

// NewCorrector compiles the pairs. Pairs with an empty misspelling are skipped.
func NewCorrector(pairs []Correction) *Corrector {
	c := &Corrector{rules: make([]correctionRule, 0, len(pairs))}
	for _, p := range pairs {
		from := strings.TrimSpace(p.Misspelling)
		if from == "" {
			continue
		}
		c.rules = append(c.rules, correctionRule{
			pattern:     regexp.MustCompile(`(?i)` + regexp.QuoteMeta(from)),
			replacement: p.Correction,
		})
	}
	return c
}

// Correct replaces whole-word, case-insensitive occurrences of every
// misspelling. Text outside the replaced spans keeps its original case.
func (c *Corrector) Correct(text string) string {
	for _, rule := range c.rules {
		text = rule.apply(text)
	}
	return text
}

// CorrectSpelling is a one-shot helper around NewCorrector.
func CorrectSpelling(text string, pairs []Correction) string {
	return NewCorrector(pairs).Correct(text)
}

func (r correctionRule) apply(text string) string {
	var b strings.Builder
	pos := 0
	last := 0
	for pos < len(text) {
		loc := r.pattern.FindStringIndex(text[pos:])
		if loc == nil {
			break
		}
		start, end := pos+loc[0], pos+loc[1]
		if isWordBoundary(text, start, end) {
			b.WriteString(text[last:start])
			b.WriteString(r.replacement)
			last = end
			pos = end
			continue
		}
		// Not a whole word; retry one rune further so overlapping candidates are seen.
		_, size := utf8.DecodeRuneInString(text[start:])
		pos = start + size
	}
	if last == 0 {
		return text
	}
	b.WriteString(text[last:])
	return b.String()
}

func isWordBoundary(text string, start, end int) bool {
	if start > 0 {
		prev, _ := utf8.DecodeLastRuneInString(text[:start])
		if isWordRune(prev) {
			return false
		}
	}
	if end < len(text) {
		next, _ := utf8.DecodeRuneInString(text[end:])
		if isWordRune(next) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}
