package event

import (
	"regexp"
	"strings"
)

// Matcher abstracts plain-text vs. regex pattern matching, shared by event
// tracking and highlighting.
type Matcher interface {
	Matches(content string) bool
	FindAll(content string) [][2]int // byte-offset [start,end) pairs
}

// PlainMatcher is an ASCII case-fold (or case-sensitive) substring matcher.
type PlainMatcher struct {
	Pattern       string
	CaseSensitive bool
}

func (m PlainMatcher) Matches(content string) bool {
	if m.CaseSensitive {
		return strings.Contains(content, m.Pattern)
	}
	return strings.Contains(strings.ToLower(content), strings.ToLower(m.Pattern))
}

func (m PlainMatcher) FindAll(content string) [][2]int {
	if m.Pattern == "" {
		return nil
	}
	haystack := content
	needle := m.Pattern
	if !m.CaseSensitive {
		haystack = strings.ToLower(haystack)
		needle = strings.ToLower(needle)
	}
	var out [][2]int
	for i := 0; i+len(needle) <= len(haystack); {
		idx := strings.Index(haystack[i:], needle)
		if idx == -1 {
			break
		}
		start := i + idx
		out = append(out, [2]int{start, start + len(needle)})
		i = start + len(needle)
	}
	return out
}

// RegexMatcher wraps a compiled regular expression.
type RegexMatcher struct {
	Re *regexp.Regexp
}

func (m RegexMatcher) Matches(content string) bool { return m.Re.MatchString(content) }

func (m RegexMatcher) FindAll(content string) [][2]int {
	matches := m.Re.FindAllStringIndex(content, -1)
	out := make([][2]int, len(matches))
	for i, match := range matches {
		out[i] = [2]int{match[0], match[1]}
	}
	return out
}
