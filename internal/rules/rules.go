// Package rules provides the VisibilityRule/TagRule capabilities the
// Resolver composes over the log buffer.
package rules

import (
	"time"

	"github.com/lazylog/lazylog/internal/logline"
)

// Tag is one of a closed set of per-line annotations a TagRule may attach.
type Tag string

const (
	TagSelected    Tag = "selected"
	TagFiltered    Tag = "filtered"
	TagMarked      Tag = "marked"
	TagEvent       Tag = "event"
	TagFileEnabled Tag = "file_enabled"
	TagExpanded    Tag = "expanded"
)

// VisibilityRule decides whether a line should appear in the visible list.
// An empty rule set means "all visible".
type VisibilityRule interface {
	IsVisible(line logline.Line) bool
}

// TagRule attaches zero or one Tag to a line. An empty rule set means "no
// tags". Multiple TagRules may fire on the same line; the Resolver collects
// every tag produced.
type TagRule interface {
	GetTag(line logline.Line) (Tag, bool)
}

// FileFilterRule keeps only lines whose FileID is in the enabled set. Lines
// without a FileID (streaming buffers) always pass.
type FileFilterRule struct {
	Enabled map[int]bool
}

func (r FileFilterRule) IsVisible(line logline.Line) bool {
	if !line.HasFileID {
		return true
	}
	return r.Enabled[line.FileID]
}

// TimeFilterRule keeps only lines whose timestamp falls in [Start, End].
// A side whose HasStart/HasEnd flag is false is unbounded. Lines with
// no timestamp always pass — a time filter has nothing to say about them.
type TimeFilterRule struct {
	Start, End time.Time
	HasStart   bool
	HasEnd     bool
}

func (r TimeFilterRule) IsVisible(line logline.Line) bool {
	if !line.HasTimestamp {
		return true
	}
	if r.HasStart && line.Timestamp.Before(r.Start) {
		return false
	}
	if r.HasEnd && line.Timestamp.After(r.End) {
		return false
	}
	return true
}

// MarksOnlyRule, when active, keeps only marked lines.
type MarksOnlyRule struct {
	Active      bool
	MarkedLines map[int]bool
}

func (r MarksOnlyRule) IsVisible(line logline.Line) bool {
	if !r.Active {
		return true
	}
	return r.MarkedLines[line.Index]
}

// MarkedTagRule tags every marked line.
type MarkedTagRule struct {
	MarkedLines map[int]bool
}

func (r MarkedTagRule) GetTag(line logline.Line) (Tag, bool) {
	if r.MarkedLines[line.Index] {
		return TagMarked, true
	}
	return "", false
}

// EventTagRule tags every line with at least one tracked event occurrence.
type EventTagRule struct {
	EventLines map[int]bool
}

func (r EventTagRule) GetTag(line logline.Line) (Tag, bool) {
	if r.EventLines[line.Index] {
		return TagEvent, true
	}
	return "", false
}

// FileIDTagRule tags every line carrying file-origin metadata, useful for
// per-file color coding in multi-file mode.
type FileIDTagRule struct{}

func (FileIDTagRule) GetTag(line logline.Line) (Tag, bool) {
	if line.HasFileID {
		return TagFileEnabled, true
	}
	return "", false
}
