// Package resolver composes the current rule set over the log buffer into
// the cached, ordered visible-line list the viewport renders from.
package resolver

import (
	"github.com/lazylog/lazylog/internal/expansion"
	"github.com/lazylog/lazylog/internal/logline"
	"github.com/lazylog/lazylog/internal/rules"
)

// VisibleLine is a per-frame rendering record.
type VisibleLine struct {
	LogIndex int
	Tags     map[rules.Tag]bool
}

// HasTag reports whether Tags contains t.
func (v VisibleLine) HasTag(t rules.Tag) bool { return v.Tags[t] }

// Resolver memoizes the visible-line list derived from a LogBuffer and the
// currently registered rules. Rule changes mark it dirty and the next
// Resolve rebuilds it; the slice Resolve returns stays valid until that
// rebuild, which reuses its backing array.
type Resolver struct {
	visibility []rules.VisibilityRule
	tags       []rules.TagRule
	expansions *expansion.Store

	cache        []VisibleLine
	logToView    map[int]int
	dirty        bool
	cachedBufLen int
}

// New returns a Resolver with no rules registered (meaning: all lines
// visible, no tags).
func New() *Resolver {
	return &Resolver{dirty: true, logToView: make(map[int]int)}
}

// SetRules replaces the rule set wholesale and forces a full rebuild on the
// next Resolve.
func (r *Resolver) SetRules(visibility []rules.VisibilityRule, tags []rules.TagRule) {
	r.visibility = visibility
	r.tags = tags
	r.dirty = true
}

// SetExpansions installs the expansion store consulted during assembly and
// forces a full rebuild.
func (r *Resolver) SetExpansions(e *expansion.Store) {
	r.expansions = e
	r.dirty = true
}

// Invalidate forces a full rebuild on the next Resolve, e.g. after a mark or
// filter mutation that SetRules didn't already cover.
func (r *Resolver) Invalidate() { r.dirty = true }

// Resolve returns the current visible-line list, rebuilding it if dirty or
// if the buffer has grown since the last build (the latter via a cheap
// incremental append when no rule mutation occurred).
func (r *Resolver) Resolve(buf *logline.Buffer) []VisibleLine {
	total := buf.TotalLines()
	switch {
	case r.dirty:
		r.rebuild(buf)
	case total > r.cachedBufLen:
		r.appendIncremental(buf)
	}
	return r.cache
}

func (r *Resolver) rebuild(buf *logline.Buffer) {
	r.cache = r.cache[:0]
	r.logToView = make(map[int]int)
	r.assembleRange(buf, 0, buf.TotalLines())
	r.dirty = false
	r.cachedBufLen = buf.TotalLines()
}

// appendIncremental extends the cache with newly-appended lines without
// recomputing the existing prefix. Only valid when no rule mutation
// occurred since the last build (the dirty flag guards that).
func (r *Resolver) appendIncremental(buf *logline.Buffer) {
	r.assembleRange(buf, r.cachedBufLen, buf.TotalLines())
	r.cachedBufLen = buf.TotalLines()
}

func (r *Resolver) assembleRange(buf *logline.Buffer, start, end int) {
	for _, line := range buf.Range(start, end) {
		if !r.isVisible(line) {
			continue
		}
		r.emit(line, false)
		if r.expansions == nil {
			continue
		}
		if children, ok := r.expansions.Children(line.Index); ok {
			for _, childIdx := range children {
				childLine, ok := buf.Get(childIdx)
				if !ok {
					continue
				}
				r.emit(childLine, true)
			}
		}
	}
}

func (r *Resolver) emit(line logline.Line, expanded bool) {
	tagSet := make(map[rules.Tag]bool)
	for _, tr := range r.tags {
		if tag, ok := tr.GetTag(line); ok {
			tagSet[tag] = true
		}
	}
	if expanded {
		tagSet[rules.TagExpanded] = true
	}
	r.cache = append(r.cache, VisibleLine{LogIndex: line.Index, Tags: tagSet})
	r.logToView[line.Index] = len(r.cache) - 1
}

func (r *Resolver) isVisible(line logline.Line) bool {
	for _, rule := range r.visibility {
		if !rule.IsVisible(line) {
			return false
		}
	}
	return true
}

// ViewportToLog maps a visible-list rank to its log index, in the list as
// of the last Resolve.
func (r *Resolver) ViewportToLog(rank int) (int, bool) {
	if rank < 0 || rank >= len(r.cache) {
		return 0, false
	}
	return r.cache[rank].LogIndex, true
}

// LogToViewport maps a log index to its rank in the visible list as of the
// last Resolve, if it is visible there.
func (r *Resolver) LogToViewport(logIndex int) (int, bool) {
	rank, ok := r.logToView[logIndex]
	return rank, ok
}

// Len returns the number of currently visible lines.
func (r *Resolver) Len() int { return len(r.cache) }

// UpdateMarkTags mutates only the Marked tag across the cached list in
// place, avoiding a full rebuild for the common mark-toggle operation.
func (r *Resolver) UpdateMarkTags(marked map[int]bool) {
	for i := range r.cache {
		if marked[r.cache[i].LogIndex] {
			r.cache[i].Tags[rules.TagMarked] = true
		} else {
			delete(r.cache[i].Tags, rules.TagMarked)
		}
	}
}
