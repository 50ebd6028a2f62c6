package highlight

import (
	"testing"

	"github.com/lazylog/lazylog/internal/event"
)

func plain(pattern string) event.Matcher {
	return event.PlainMatcher{Pattern: pattern, CaseSensitive: true}
}

func TestHighlightLineNoPatterns(t *testing.T) {
	h := New(nil, nil)
	line := h.HighlightLine("hello world", 0, true)
	if len(line.Segments) != 0 {
		t.Fatalf("expected no segments, got %d", len(line.Segments))
	}
}

func TestHighlightLineSinglePattern(t *testing.T) {
	h := New([]Pattern{{Name: "err", Matcher: plain("ERROR"), Style: PatternStyle{FgColor: "red"}}}, nil)
	line := h.HighlightLine("an ERROR occurred", 0, true)
	if len(line.Segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(line.Segments))
	}
	if line.Segments[0].Start != 3 || line.Segments[0].End != 8 {
		t.Fatalf("unexpected span %+v", line.Segments[0])
	}
}

func TestHighlightLineDisabledColors(t *testing.T) {
	h := New([]Pattern{{Name: "err", Matcher: plain("ERROR"), Style: PatternStyle{FgColor: "red"}}}, nil)
	line := h.HighlightLine("an ERROR occurred", 0, false)
	if len(line.Segments) != 0 {
		t.Fatalf("expected colors disabled to suppress patterns, got %d segments", len(line.Segments))
	}
}

func TestHighlightLineEventWholeLine(t *testing.T) {
	h := New(nil, []Pattern{{Name: "panic", Matcher: plain("PANIC"), Style: PatternStyle{BgColor: "red"}}})
	line := h.HighlightLine("PANIC: out of memory", 0, true)
	if len(line.Segments) != 1 || line.Segments[0].Start != 0 || line.Segments[0].End != len("PANIC: out of memory") {
		t.Fatalf("expected whole-line span, got %+v", line.Segments)
	}
}

func TestOverlapLaterPatternOverrides(t *testing.T) {
	h := New([]Pattern{
		{Name: "a", Matcher: plain("hello world"), Style: PatternStyle{FgColor: "a"}},
		{Name: "b", Matcher: plain("world"), Style: PatternStyle{FgColor: "b"}},
	}, nil)
	line := h.HighlightLine("hello world", 0, true)
	var foundB bool
	for _, seg := range line.Segments {
		if seg.Style.FgColor == "b" {
			foundB = true
			if seg.Start != 6 || seg.End != 11 {
				t.Fatalf("expected overriding span at [6,11), got [%d,%d)", seg.Start, seg.End)
			}
		}
	}
	if !foundB {
		t.Fatal("expected the later, overriding pattern to be present")
	}
}

func TestBackgroundInheritanceForcesWhiteOnCollision(t *testing.T) {
	h := New([]Pattern{
		{Name: "line", Matcher: plain("hello"), Style: PatternStyle{FgColor: "red", BgColor: "red"}},
		{Name: "word", Matcher: plain("ell"), Style: PatternStyle{FgColor: "red"}},
	}, nil)
	line := h.HighlightLine("hello", 0, true)
	for _, seg := range line.Segments {
		if seg.Start == 1 && seg.End == 4 {
			if seg.Style.FgColor != "#ffffff" {
				t.Fatalf("expected forced white foreground, got %q", seg.Style.FgColor)
			}
			if seg.Style.BgColor != "red" {
				t.Fatalf("expected inherited red background, got %q", seg.Style.BgColor)
			}
		}
	}
}

func TestHorizontalOffsetClipsAndShifts(t *testing.T) {
	h := New([]Pattern{{Name: "x", Matcher: plain("world"), Style: PatternStyle{FgColor: "x"}}}, nil)
	line := h.HighlightLine("hello world", 8, true)
	if len(line.Segments) != 1 {
		t.Fatalf("expected 1 segment after offset, got %d", len(line.Segments))
	}
	if line.Segments[0].Start != 0 || line.Segments[0].End != 3 {
		t.Fatalf("expected clipped span [0,3), got [%d,%d)", line.Segments[0].Start, line.Segments[0].End)
	}
}

func TestTemporaryHighlightOverlaysAndClears(t *testing.T) {
	h := New(nil, nil)
	h.AddTemporaryHighlight(Pattern{Name: "search", Matcher: plain("world"), Style: PatternStyle{BgColor: "yellow"}})
	line := h.HighlightLine("hello world", 0, true)
	if len(line.Segments) != 1 {
		t.Fatalf("expected temporary highlight segment, got %d", len(line.Segments))
	}
	h.ClearTemporaryHighlights()
	line = h.HighlightLine("hello world", 0, true)
	if len(line.Segments) != 0 {
		t.Fatalf("expected no segments after clearing temporary highlights, got %d", len(line.Segments))
	}
}

func TestCacheInvalidatedOnPatternChange(t *testing.T) {
	h := New(nil, nil)
	first := h.HighlightLine("hello world", 0, true)
	if len(first.Segments) != 0 {
		t.Fatalf("expected no segments, got %d", len(first.Segments))
	}
	h.SetPatterns([]Pattern{{Name: "x", Matcher: plain("world"), Style: PatternStyle{FgColor: "x"}}})
	second := h.HighlightLine("hello world", 0, true)
	if len(second.Segments) != 1 {
		t.Fatalf("expected cache invalidated and new segment found, got %d", len(second.Segments))
	}
}
