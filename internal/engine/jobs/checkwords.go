package jobs

import (
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/anatolykoptev/go_seek/internal/engine/frame"
)

// Keyword filter output columns.
const (
	ColCheckWordsFound   = "check_words_found"
	ColCheckWordsChecked = "check_words_checked"
)

// CheckWordsMatcher finds whole-word, case-insensitive occurrences of a set
// of check-words. Word characters are Unicode letters, numbers and '_', so
// "ai" does not match inside "aiç".
type CheckWordsMatcher struct {
	alts []*regexp.Regexp
}

// CheckWordsPattern builds a matcher for words. Alternatives are tried in
// the given order at each word boundary. Returns nil when words has no
// non-blank entry.
func CheckWordsPattern(words []string) *CheckWordsMatcher {
	m := &CheckWordsMatcher{}
	for _, w := range words {
		if w = strings.TrimSpace(w); w != "" {
			m.alts = append(m.alts, regexp.MustCompile(`\A(?i:`+regexp.QuoteMeta(w)+`)`))
		}
	}
	if len(m.alts) == 0 {
		return nil
	}
	return m
}

// FindAll returns every non-overlapping match in s, left to right.
func (m *CheckWordsMatcher) FindAll(s string) []string {
	var out []string
	for i := 0; i < len(s); {
		if n := m.matchAt(s, i); n > 0 {
			out = append(out, s[i:i+n])
			i += n
			continue
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return out
}

// matchAt returns the length of the first alternative matching at i with a
// word boundary on both sides, or 0.
func (m *CheckWordsMatcher) matchAt(s string, i int) int {
	if !wordBoundary(s, i) {
		return 0
	}
	for _, re := range m.alts {
		loc := re.FindStringIndex(s[i:])
		if loc != nil && loc[1] > 0 && wordBoundary(s, i+loc[1]) {
			return loc[1]
		}
	}
	return 0
}

// wordBoundary reports whether exactly one side of byte offset i is a word
// character.
func wordBoundary(s string, i int) bool {
	before, after := false, false
	if i > 0 {
		r, _ := utf8.DecodeLastRuneInString(s[:i])
		before = isWordRune(r)
	}
	if i < len(s) {
		r, _ := utf8.DecodeRuneInString(s[i:])
		after = isWordRune(r)
	}
	return before != after
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

// MatchCheckWords returns the distinct lower-cased matches of m in texts, sorted.
func MatchCheckWords(m *CheckWordsMatcher, texts ...string) []string {
	var found []string
	for _, t := range texts {
		for _, w := range m.FindAll(t) {
			w = strings.ToLower(w)
			if !slices.Contains(found, w) {
				found = append(found, w)
			}
		}
	}
	slices.Sort(found)
	return found
}

// CheckWords tags each listing with the check-words found in its teaser and
// title. With no check-words the frame is returned unchanged.
func CheckWords(listings *frame.Frame, words []string) (*frame.Frame, error) {
	m := CheckWordsPattern(words)
	if m == nil {
		return listings, nil
	}
	if err := listings.Require("check words", "title", "teaser"); err != nil {
		return nil, err
	}

	out := listings.Clone()
	out.Set(ColCheckWordsFound, func(r frame.Row) any {
		return MatchCheckWords(m, textOf(r["teaser"]), textOf(r["title"]))
	})
	out.Set(ColCheckWordsChecked, func(r frame.Row) any {
		found, _ := r[ColCheckWordsFound].([]string)
		return len(found) > 0
	})
	return out, nil
}

// CheckedIDs returns the ids of listings eligible for detail download: those
// with check_words_checked set, or every id when the column is absent.
func CheckedIDs(listings *frame.Frame) []any {
	filtered := listings.Has(ColCheckWordsChecked)
	var ids []any
	for _, r := range listings.Rows {
		if frame.IsNull(r["id"]) {
			continue
		}
		if filtered {
			if ok, _ := r[ColCheckWordsChecked].(bool); !ok {
				continue
			}
		}
		ids = append(ids, r["id"])
	}
	return ids
}

func textOf(v any) string {
	s, _ := v.(string)
	return s
}
