// Package highlight maps patterns to styles and produces non-overlapping
// styled spans for a line, memoized per (text, offset, colors-enabled,
// cache version).
package highlight

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/lazylog/lazylog/internal/event"
)

// PatternStyle is a fg/bg/bold style triple. Colors are lipgloss-compatible
// strings (hex or named), left untyped here so the highlighter package has
// no rendering-library dependency; internal/tui converts them to
// lipgloss.Color at draw time.
type PatternStyle struct {
	FgColor string
	BgColor string
	Bold    bool
}

// hasFg/hasBg report whether a color was actually set, since the zero value
// of PatternStyle must mean "no color", not black.
func (s PatternStyle) hasFg() bool { return s.FgColor != "" }
func (s PatternStyle) hasBg() bool { return s.BgColor != "" }

// Pattern pairs a matcher with the style applied to its matches.
type Pattern struct {
	Name    string
	Matcher event.Matcher
	Style   PatternStyle
}

// StyledRange is a byte-offset span with its resolved style.
type StyledRange struct {
	Start, End int
	Style      PatternStyle
}

// Line is the complete, render-ready highlighting for one line.
type Line struct {
	Segments []StyledRange
}

type cacheKey struct {
	text    string
	offset  int
	colors  bool
	version uint64
}

const maxCacheSize = 500

// Highlighter owns span patterns, whole-line event patterns, and temporary
// search-highlight overlays, with a bounded memoization cache.
type Highlighter struct {
	patterns  []Pattern
	events    []Pattern
	temporary []Pattern

	cache   *lru.Cache[cacheKey, Line]
	version uint64
}

// New returns a Highlighter configured with span patterns and whole-line
// event patterns.
func New(patterns, events []Pattern) *Highlighter {
	cache, _ := lru.New[cacheKey, Line](maxCacheSize)
	return &Highlighter{patterns: patterns, events: events, cache: cache}
}

// Events returns the whole-line event patterns.
func (h *Highlighter) Events() []Pattern { return h.events }

func (h *Highlighter) invalidate() {
	h.version++
	h.cache.Purge()
}

// SetPatterns replaces the span-highlight pattern set.
func (h *Highlighter) SetPatterns(patterns []Pattern) {
	h.patterns = patterns
	h.invalidate()
}

// SetEvents replaces the whole-line event pattern set.
func (h *Highlighter) SetEvents(events []Pattern) {
	h.events = events
	h.invalidate()
}

// AddTemporaryHighlight pushes a temporary overlay pattern (used for the
// active search term), applied on top of every other pattern.
func (h *Highlighter) AddTemporaryHighlight(pattern Pattern) {
	h.temporary = append(h.temporary, pattern)
	h.invalidate()
}

// ClearTemporaryHighlights removes every temporary overlay.
func (h *Highlighter) ClearTemporaryHighlights() {
	h.temporary = nil
	h.invalidate()
}

// LineStyle returns the style of the first whole-line event pattern that
// matches text, if any.
func (h *Highlighter) LineStyle(text string) (PatternStyle, bool) {
	for _, e := range h.events {
		if e.Matcher.Matches(text) {
			return e.Style, true
		}
	}
	return PatternStyle{}, false
}

// HighlightLine returns the non-overlapping styled segments covering the
// visible slice of line starting at horizontal offset.
func (h *Highlighter) HighlightLine(line string, horizontalOffset int, colorsEnabled bool) Line {
	key := cacheKey{text: line, offset: horizontalOffset, colors: colorsEnabled, version: h.version}
	if cached, ok := h.cache.Get(key); ok {
		return cached
	}

	var ranges []StyledRange
	if colorsEnabled {
		if style, ok := h.LineStyle(line); ok {
			ranges = append(ranges, StyledRange{Start: 0, End: len(line), Style: style})
		}
		for _, p := range h.patterns {
			for _, span := range p.Matcher.FindAll(line) {
				ranges = append(ranges, StyledRange{Start: span[0], End: span[1], Style: p.Style})
			}
		}
	}
	for _, p := range h.temporary {
		for _, span := range p.Matcher.FindAll(line) {
			ranges = append(ranges, StyledRange{Start: span[0], End: span[1], Style: p.Style})
		}
	}

	ranges = adjustForOffset(ranges, horizontalOffset)
	segments := splitIntoSegments(ranges)

	result := Line{Segments: segments}
	h.cache.Add(key, result)
	return result
}

// adjustForOffset drops ranges entirely before the horizontal offset and
// shifts/clips the rest into viewport-relative coordinates.
func adjustForOffset(ranges []StyledRange, offset int) []StyledRange {
	if offset == 0 {
		return ranges
	}
	out := ranges[:0:0]
	for _, r := range ranges {
		switch {
		case r.End <= offset:
			continue
		case r.Start >= offset:
			out = append(out, StyledRange{Start: r.Start - offset, End: r.End - offset, Style: r.Style})
		default:
			out = append(out, StyledRange{Start: 0, End: r.End - offset, Style: r.Style})
		}
	}
	return out
}

// splitIntoSegments resolves overlaps so later ranges override earlier ones
// on the overlap, splitting the overridden range around the new one, and
// applies background inheritance for foreground-only overlays.
func splitIntoSegments(ranges []StyledRange) []StyledRange {
	if len(ranges) == 0 {
		return nil
	}

	var result []StyledRange
	for _, r := range ranges {
		var splits []StyledRange

		shouldInheritBg := !r.Style.hasBg() && r.Style.hasFg()
		var bgToPreserve string
		if shouldInheritBg {
			for _, existing := range result {
				if existing.Style.hasBg() && !(existing.End <= r.Start || existing.Start >= r.End) {
					bgToPreserve = existing.Style.BgColor
					break
				}
			}
		}

		kept := result[:0]
		for _, existing := range result {
			switch {
			case r.Start >= existing.End || r.End <= existing.Start:
				kept = append(kept, existing)
			case r.Start <= existing.Start && r.End >= existing.End:
				// new range fully covers existing: drop it
			case r.Start > existing.Start && r.End < existing.End:
				splits = append(splits, StyledRange{Start: r.End, End: existing.End, Style: existing.Style})
				existing.End = r.Start
				kept = append(kept, existing)
			case r.Start > existing.Start:
				existing.End = r.Start
				kept = append(kept, existing)
			case r.End < existing.End:
				existing.Start = r.End
				kept = append(kept, existing)
			default:
				kept = append(kept, existing)
			}
		}
		result = kept

		merged := r
		if bgToPreserve != "" {
			fg := r.Style.FgColor
			if fg == bgToPreserve {
				fg = "#ffffff"
			}
			merged = StyledRange{
				Start: r.Start,
				End:   r.End,
				Style: PatternStyle{FgColor: fg, BgColor: bgToPreserve, Bold: r.Style.Bold},
			}
		}
		result = append(result, merged)
		result = append(result, splits...)
	}

	sortByStart(result)
	return result
}

func sortByStart(ranges []StyledRange) {
	for i := 1; i < len(ranges); i++ {
		for j := i; j > 0 && ranges[j-1].Start > ranges[j].Start; j-- {
			ranges[j-1], ranges[j] = ranges[j], ranges[j-1]
		}
	}
}
