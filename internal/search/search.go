// Package search implements incremental substring search with
// next/previous navigation over the visible line list.
package search

import (
	"context"
	"regexp"
	"strings"

	"github.com/lazylog/lazylog/internal/history"
	"github.com/lazylog/lazylog/internal/logline"
	"golang.org/x/sync/errgroup"
)

// Search holds the active query and its computed matches.
type Search struct {
	Pattern       string
	CaseSensitive bool
	Regex         *regexp.Regexp

	matches      []int // log indices, ascending
	currentIndex int    // index into matches; -1 means no current match
	History      *history.History[string]
}

// New returns an empty Search with no active pattern.
func New() *Search {
	return &Search{currentIndex: -1, History: history.New[string]()}
}

// ApplyPattern sets the active pattern/case-sensitivity and recomputes
// matches over lines in parallel. Resets the cursor.
func (s *Search) ApplyPattern(ctx context.Context, pattern string, caseSensitive bool, lines []logline.Line) {
	s.Pattern = pattern
	s.CaseSensitive = caseSensitive
	s.currentIndex = -1
	if pattern != "" {
		s.History.Add(pattern)
	}
	s.matches = scanMatches(ctx, lines, pattern, caseSensitive)
}

func scanMatches(ctx context.Context, lines []logline.Line, pattern string, caseSensitive bool) []int {
	if pattern == "" || len(lines) == 0 {
		return nil
	}
	hit := make([]bool, len(lines))
	g, _ := errgroup.WithContext(ctx)
	const chunkSize = 2048
	for start := 0; start < len(lines); start += chunkSize {
		start := start
		end := start + chunkSize
		if end > len(lines) {
			end = len(lines)
		}
		g.Go(func() error {
			for i := start; i < end; i++ {
				if matchesPattern(lines[i].Content, pattern, caseSensitive) {
					hit[i] = true
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	var out []int
	for i, line := range lines {
		if hit[i] {
			out = append(out, line.Index)
		}
	}
	return out
}

func matchesPattern(content, pattern string, caseSensitive bool) bool {
	if caseSensitive {
		return strings.Contains(content, pattern)
	}
	return strings.Contains(strings.ToLower(content), strings.ToLower(pattern))
}

// AppendLine checks a single newly-streamed line against the active
// pattern and appends it to matches in O(1) if it matches.
func (s *Search) AppendLine(line logline.Line) {
	if s.Pattern == "" {
		return
	}
	if matchesPattern(line.Content, s.Pattern, s.CaseSensitive) {
		s.matches = append(s.matches, line.Index)
	}
}

// Matches returns the matching log indices in ascending order.
func (s *Search) Matches() []int { return s.matches }

// Next advances to the next match, wrapping to the first after the last.
// Returns false if there are no matches.
func (s *Search) Next() (int, bool) {
	if len(s.matches) == 0 {
		return 0, false
	}
	s.currentIndex = (s.currentIndex + 1) % len(s.matches)
	return s.matches[s.currentIndex], true
}

// Previous steps to the previous match, wrapping to the last after the
// first. Returns false if there are no matches.
func (s *Search) Previous() (int, bool) {
	if len(s.matches) == 0 {
		return 0, false
	}
	if s.currentIndex <= 0 {
		s.currentIndex = len(s.matches) - 1
	} else {
		s.currentIndex--
	}
	return s.matches[s.currentIndex], true
}

// FirstFrom seeks the cursor to the first match at or after pos (used when
// the user presses Enter for the first time on a new query).
func (s *Search) FirstFrom(pos int) (int, bool) {
	for i, m := range s.matches {
		if m >= pos {
			s.currentIndex = i
			return m, true
		}
	}
	if len(s.matches) == 0 {
		return 0, false
	}
	s.currentIndex = 0
	return s.matches[0], true
}

// MatchInfo reports (currentNumber, visibleMatches, totalMatches) for
// status display. currentNumber is 1-based, 0 if there is no current match.
// visible and total differ when called with a visible-only match count
// computed by the caller against the full buffer's total.
func (s *Search) MatchInfo(totalMatchesIncludingFiltered int) (current, visible, total int) {
	visible = len(s.matches)
	total = totalMatchesIncludingFiltered
	if s.currentIndex >= 0 && s.currentIndex < len(s.matches) {
		current = s.currentIndex + 1
	}
	return
}

// CountMatches returns the number of matching lines in the given line set,
// without mutating search state — used to compute the "total including
// filtered" half of MatchInfo.
func CountMatches(lines []logline.Line, pattern string, caseSensitive bool) int {
	count := 0
	for _, line := range lines {
		if matchesPattern(line.Content, pattern, caseSensitive) {
			count++
		}
	}
	return count
}
