// Package event tracks named recurring patterns (built-in and custom) over
// the log buffer, scanned in parallel.
package event

import (
	"context"
	"sort"

	"github.com/lazylog/lazylog/internal/logline"
	"golang.org/x/sync/errgroup"
)

const customNameMaxLen = 16

// Pattern is a named recurring-pattern matcher. Color is the whole-line
// background it paints when it fires (config's line_colors section, the
// Highlighter's "events" per spec.md §6); empty means no line painting, as
// for a custom ad hoc event tracked only for counting/navigation.
type Pattern struct {
	Name     string
	Matcher  Matcher
	Enabled  bool
	Count    int
	Critical bool
	IsCustom bool
	Color    string
}

// Occurrence records a single pattern match at a log index.
type Occurrence struct {
	Name      string
	LineIndex int
}

// Tracker owns the set of event patterns and their computed occurrences.
type Tracker struct {
	patterns  []Pattern
	events    []Occurrence
	ShowMarks bool
}

// New returns a Tracker preconfigured with patterns.
func New(patterns []Pattern) *Tracker {
	return &Tracker{patterns: patterns}
}

// ScanAll runs every enabled pattern in parallel over the buffer, replacing
// prior occurrences and counts with the freshly computed set, sorted by
// line index.
func (t *Tracker) ScanAll(ctx context.Context, lines []logline.Line) {
	type partial struct {
		occs  []Occurrence
		count int
	}
	results := make([]partial, len(t.patterns))

	g, _ := errgroup.WithContext(ctx)
	for i := range t.patterns {
		i := i
		if !t.patterns[i].Enabled {
			continue
		}
		g.Go(func() error {
			p := t.patterns[i]
			var occs []Occurrence
			for _, line := range lines {
				if p.Matcher.Matches(line.Content) {
					occs = append(occs, Occurrence{Name: p.Name, LineIndex: line.Index})
				}
			}
			results[i] = partial{occs: occs, count: len(occs)}
			return nil
		})
	}
	_ = g.Wait()

	var all []Occurrence
	for i := range t.patterns {
		t.patterns[i].Count = results[i].count
		all = append(all, results[i].occs...)
	}
	sort.Slice(all, func(a, b int) bool { return all[a].LineIndex < all[b].LineIndex })
	t.events = all
}

// ScanSingle updates counts and appends occurrences for one newly-streamed
// line, without rescanning the whole buffer.
func (t *Tracker) ScanSingle(line logline.Line) {
	for i := range t.patterns {
		if !t.patterns[i].Enabled {
			continue
		}
		if t.patterns[i].Matcher.Matches(line.Content) {
			t.patterns[i].Count++
			t.events = append(t.events, Occurrence{Name: t.patterns[i].Name, LineIndex: line.Index})
		}
	}
}

func (t *Tracker) Patterns() []Pattern   { return t.patterns }
func (t *Tracker) Occurrences() []Occurrence { return t.events }

func (t *Tracker) EnabledEventLines() map[int]bool {
	enabled := make(map[string]bool)
	for _, p := range t.patterns {
		if p.Enabled {
			enabled[p.Name] = true
		}
	}
	out := make(map[int]bool)
	for _, e := range t.events {
		if enabled[e.Name] {
			out[e.LineIndex] = true
		}
	}
	return out
}

func (t *Tracker) CriticalEventLines() map[int]bool {
	critical := make(map[string]bool)
	for _, p := range t.patterns {
		if p.Critical {
			critical[p.Name] = true
		}
	}
	out := make(map[int]bool)
	for _, e := range t.events {
		if critical[e.Name] {
			out[e.LineIndex] = true
		}
	}
	return out
}

func (t *Tracker) CustomEventLines() map[int]bool {
	custom := make(map[string]bool)
	for _, p := range t.patterns {
		if p.IsCustom {
			custom[p.Name] = true
		}
	}
	out := make(map[int]bool)
	for _, e := range t.events {
		if custom[e.Name] {
			out[e.LineIndex] = true
		}
	}
	return out
}

func (t *Tracker) IsCritical(name string) bool {
	for _, p := range t.patterns {
		if p.Name == name {
			return p.Critical
		}
	}
	return false
}

func (t *Tracker) IsCustom(name string) bool {
	for _, p := range t.patterns {
		if p.Name == name {
			return p.IsCustom
		}
	}
	return false
}

func (t *Tracker) ToggleEnabled(index int) {
	if index >= 0 && index < len(t.patterns) {
		t.patterns[index].Enabled = !t.patterns[index].Enabled
	}
}

func (t *Tracker) ToggleAllFilters() {
	if len(t.patterns) == 0 {
		return
	}
	allEnabled := true
	for _, p := range t.patterns {
		if !p.Enabled {
			allEnabled = false
			break
		}
	}
	for i := range t.patterns {
		t.patterns[i].Enabled = !allEnabled
	}
}

// SoloEventFilter enables only the named pattern, disabling every other.
func (t *Tracker) SoloEventFilter(name string) {
	for i := range t.patterns {
		t.patterns[i].Enabled = t.patterns[i].Name == name
	}
}

// RestoreFilterStates applies a saved enabled/disabled map keyed by pattern
// name, leaving unmentioned patterns untouched.
func (t *Tracker) RestoreFilterStates(states map[string]bool) {
	for i := range t.patterns {
		if enabled, ok := states[t.patterns[i].Name]; ok {
			t.patterns[i].Enabled = enabled
		}
	}
}

// AddCustomEvent adds a user-defined pattern. The display name is the
// pattern text truncated to 16 characters with a "..." suffix if longer.
// Returns false if an identical pattern text already exists under any name.
func (t *Tracker) AddCustomEvent(patternText string, caseSensitive bool) bool {
	for _, p := range t.patterns {
		if pm, ok := p.Matcher.(PlainMatcher); ok && pm.Pattern == patternText {
			return false
		}
	}
	name := patternText
	if len(name) > customNameMaxLen {
		name = name[:customNameMaxLen] + "..."
	}
	t.patterns = append(t.patterns, Pattern{
		Name:     name,
		Matcher:  PlainMatcher{Pattern: patternText, CaseSensitive: caseSensitive},
		Enabled:  true,
		IsCustom: true,
	})
	return true
}

func (t *Tracker) CustomEventPatterns() []Pattern {
	var out []Pattern
	for _, p := range t.patterns {
		if p.IsCustom {
			out = append(out, p)
		}
	}
	return out
}

// RemoveCustomEvent removes the named pattern and every occurrence
// attributed to it.
func (t *Tracker) RemoveCustomEvent(name string) {
	var kept []Pattern
	for _, p := range t.patterns {
		if !(p.IsCustom && p.Name == name) {
			kept = append(kept, p)
		}
	}
	t.patterns = kept

	var keptEvents []Occurrence
	for _, e := range t.events {
		if e.Name != name {
			keptEvents = append(keptEvents, e)
		}
	}
	t.events = keptEvents
}

// Stat is one row of aggregate event counts, used for a summary display.
type Stat struct {
	Name  string
	Count int
}

// Stats returns per-pattern counts sorted descending by count.
func (t *Tracker) Stats() []Stat {
	stats := make([]Stat, len(t.patterns))
	for i, p := range t.patterns {
		stats[i] = Stat{Name: p.Name, Count: p.Count}
	}
	sort.Slice(stats, func(a, b int) bool { return stats[a].Count > stats[b].Count })
	return stats
}
