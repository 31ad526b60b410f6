package rules

import (
	"regexp"
	"unicode"
	"unicode/utf8"
)

// WordMatcher finds a phrase as a whole word, ignoring case. Word runes are
// Unicode letters, numbers and '_', so "ber" does not match inside "über"
// and "café" matches at the end of a sentence.
type WordMatcher struct {
	re *regexp.Regexp
}

// NewWordMatcher compiles a matcher for phrase, which is taken literally
func NewWordMatcher(phrase string) *WordMatcher {
	return &WordMatcher{re: regexp.MustCompile(`(?i)` + regexp.QuoteMeta(phrase))}
}

// MatchString reports whether text contains the phrase with a word boundary
// at both ends
func (m *WordMatcher) MatchString(text string) bool {
	offset := 0
	for offset <= len(text) {
		loc := m.re.FindStringIndex(text[offset:])
		if loc == nil {
			return false
		}
		start, end := offset+loc[0], offset+loc[1]
		if isBoundary(text, start) && isBoundary(text, end) {
			return true
		}

		// candidates may overlap, so retry one rune past this start
		_, size := utf8.DecodeRuneInString(text[start:])
		if size == 0 {
			return false
		}
		offset = start + size
	}
	return false
}

// isBoundary reports whether the runes either side of byte offset i differ
// in word-ness. The ends of text count as non-word.
func isBoundary(text string, i int) bool {
	before, _ := utf8.DecodeLastRuneInString(text[:i])
	after, _ := utf8.DecodeRuneInString(text[i:])
	return isWordRune(before) != isWordRune(after)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}
