package analysis

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var sentenceEnd = regexp.MustCompile(`[.!?。](\s|$)|\n`)

// Summarize returns the first sentence of text, cut to limit runes with a
// trailing ellipsis. limit <= 0 disables truncation.
func Summarize(text string, limit int) string {
	s := strings.TrimSpace(text)
	if loc := sentenceEnd.FindStringIndex(s); loc != nil {
		s = strings.TrimSpace(s[:loc[0]])
	}
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:limit])) + "..."
}

var segmentSplit = regexp.MustCompile(`[.\n,;]`)

// Context returns up to three segments of text relevant to a category,
// joined with ", ". Segments are split on '.', ',', ';' and newlines, and
// kept when a phrase rule or a keyword rule of the category matches.
func Context(text, category string) string {
	var matched []string
	seen := map[string]bool{}
	add := func(seg string) bool {
		if seen[seg] {
			return false
		}
		seen[seg] = true
		matched = append(matched, seg)
		return true
	}

	for _, raw := range segmentSplit.Split(text, -1) {
		seg := strings.TrimSpace(raw)
		if seg == "" {
			continue
		}
		for _, p := range phraseRules {
			if p.Category == category && p.Pattern.MatchString(seg) {
				add(seg)
				break
			}
		}
		for _, k := range keywordRules[category] {
			if k.Pattern.MatchString(seg) {
				add(seg)
				break
			}
		}
	}
	if len(matched) > 3 {
		matched = matched[:3]
	}
	return strings.Join(matched, ", ")
}
