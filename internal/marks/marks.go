// Package marks implements user-placed line bookmarks with ordered
// navigation.
package marks

import (
	"sort"
	"strings"

	"github.com/lazylog/lazylog/internal/logline"
)

// Mark is a single bookmark on a log line.
type Mark struct {
	LineIndex int
	Name      string
}

// Store is the ordered (insertion order) collection of Marks.
type Store struct {
	marks []Mark
}

// New returns an empty Store.
func New() *Store { return &Store{} }

// All returns marks in insertion order.
func (s *Store) All() []Mark { return s.marks }

// Count returns the number of marks.
func (s *Store) Count() int { return len(s.marks) }

func (s *Store) indexOf(lineIndex int) int {
	for i, m := range s.marks {
		if m.LineIndex == lineIndex {
			return i
		}
	}
	return -1
}

// Toggle removes an existing mark at lineIndex, or appends a new unnamed
// mark there.
func (s *Store) Toggle(lineIndex int) {
	if i := s.indexOf(lineIndex); i >= 0 {
		s.marks = append(s.marks[:i], s.marks[i+1:]...)
		return
	}
	s.marks = append(s.marks, Mark{LineIndex: lineIndex})
}

// Rename updates the name of an existing mark in place. No-op if absent.
func (s *Store) Rename(lineIndex int, name string) {
	if i := s.indexOf(lineIndex); i >= 0 {
		s.marks[i].Name = name
	}
}

// CreateFromPattern marks every line whose content contains pattern
// (case-insensitive), naming newly-created marks with pattern. Lines
// already marked are not renamed.
func (s *Store) CreateFromPattern(lines []logline.Line, pattern string) {
	lowerPattern := strings.ToLower(pattern)
	for _, line := range lines {
		if !strings.Contains(strings.ToLower(line.Content), lowerPattern) {
			continue
		}
		if s.indexOf(line.Index) == -1 {
			s.marks = append(s.marks, Mark{LineIndex: line.Index, Name: pattern})
		}
	}
}

// sortedByLine returns marks sorted by LineIndex ascending, stable so ties
// preserve insertion order.
func (s *Store) sortedByLine() []Mark {
	out := append([]Mark(nil), s.marks...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].LineIndex < out[j].LineIndex })
	return out
}

// NextAfter returns the mark with the smallest LineIndex strictly greater
// than i.
func (s *Store) NextAfter(i int) (Mark, bool) {
	for _, m := range s.sortedByLine() {
		if m.LineIndex > i {
			return m, true
		}
	}
	return Mark{}, false
}

// PreviousBefore returns the mark with the largest LineIndex strictly less
// than i.
func (s *Store) PreviousBefore(i int) (Mark, bool) {
	sorted := s.sortedByLine()
	for idx := len(sorted) - 1; idx >= 0; idx-- {
		if sorted[idx].LineIndex < i {
			return sorted[idx], true
		}
	}
	return Mark{}, false
}

// SelectNearest selects the mark minimizing |LineIndex - i|; ties are
// broken toward the mark inserted earlier.
func (s *Store) SelectNearest(i int) (Mark, bool) {
	if len(s.marks) == 0 {
		return Mark{}, false
	}
	best := s.marks[0]
	bestDist := abs(best.LineIndex - i)
	for _, m := range s.marks[1:] {
		d := abs(m.LineIndex - i)
		if d < bestDist {
			best = m
			bestDist = d
		}
	}
	return best, true
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
