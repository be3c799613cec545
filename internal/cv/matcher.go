package cv

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// Matcher finds vocabulary entries in résumé text.
//
// Matching is plain case-insensitive containment, so "Go" is found inside
// "Gopher". WordBoundary restricts hits to whole-word occurrences; it is off
// by default.
type Matcher struct {
	WordBoundary bool
}

func NewMatcher(wordBoundary bool) *Matcher {
	return &Matcher{WordBoundary: wordBoundary}
}

// Match returns every vocabulary entry present in text, in vocabulary order,
// without case-insensitive duplicates. The result is never nil.
func (m *Matcher) Match(text string, vocab Vocabulary) []string {
	found := []string{}
	if text == "" || len(vocab) == 0 {
		return found
	}

	fold := cases.Fold()
	folded := fold.String(text)
	seen := make(map[string]struct{}, len(vocab))

	for _, skill := range vocab {
		if strings.TrimSpace(skill) == "" {
			continue
		}
		key := fold.String(skill)
		if _, dup := seen[key]; dup {
			continue
		}
		if !m.contains(folded, key) {
			continue
		}
		seen[key] = struct{}{}
		found = append(found, skill)
	}
	return found
}

func (m *Matcher) contains(text, needle string) bool {
	if !m.WordBoundary {
		return strings.Contains(text, needle)
	}
	for offset := 0; offset <= len(text)-len(needle); {
		i := strings.Index(text[offset:], needle)
		if i < 0 {
			return false
		}
		start := offset + i
		end := start + len(needle)
		if boundaryBefore(text, start, needle) && boundaryAfter(text, end, needle) {
			return true
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		offset = start + size
	}
	return false
}

// A boundary is only required where the needle itself starts or ends with a
// word character, so entries like "C++" or ".NET" still match.
func boundaryBefore(text string, start int, needle string) bool {
	first, _ := utf8.DecodeRuneInString(needle)
	if !isWordRune(first) || start == 0 {
		return true
	}
	prev, _ := utf8.DecodeLastRuneInString(text[:start])
	return !isWordRune(prev)
}

func boundaryAfter(text string, end int, needle string) bool {
	last, _ := utf8.DecodeLastRuneInString(needle)
	if !isWordRune(last) || end == len(text) {
		return true
	}
	next, _ := utf8.DecodeRuneInString(text[end:])
	return !isWordRune(next)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Dedupe drops case-insensitive repeats, keeping the first spelling and the
// original order.
func Dedupe(skills []string) []string {
	fold := cases.Fold()
	out := make([]string, 0, len(skills))
	seen := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		key := fold.String(s)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}
