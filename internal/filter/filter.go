// Package filter implements include/exclude substring filtering over log
// lines, with Exclude strictly dominant over Include.
package filter

import (
	"context"
	"strings"

	"github.com/lazylog/lazylog/internal/history"
	"github.com/lazylog/lazylog/internal/logline"
	"golang.org/x/sync/errgroup"
)

// Mode selects whether a pattern keeps or drops matching lines.
type Mode int

const (
	Include Mode = iota
	Exclude
)

func (m Mode) String() string {
	if m == Exclude {
		return "exclude"
	}
	return "include"
}

// ParseMode maps a persisted/config mode string back to a Mode, defaulting
// to Include for anything other than "exclude".
func ParseMode(s string) Mode {
	if s == "exclude" {
		return Exclude
	}
	return Include
}

const defaultCaseSensitivity = false

// Pattern is a single filter pattern. Identity for dedup purposes is the
// (Pattern, Mode) pair: the same text under different modes coexists.
type Pattern struct {
	Pattern       string
	Mode          Mode
	CaseSensitive bool
	Enabled       bool
	// FromFile marks a pattern loaded from a predefined filters file, so a
	// hot-reload (ReplacePredefined) can tell it apart from one the user
	// typed in interactively.
	FromFile bool
}

// HistoryEntry is the complete state of a submitted filter, recalled via
// History.
type HistoryEntry struct {
	Pattern       string
	Mode          Mode
	CaseSensitive bool
}

// Filter owns the active set of patterns plus the mode/case-sensitivity
// that will apply to the next pattern added via AddFromText.
type Filter struct {
	patterns      []Pattern
	mode          Mode
	caseSensitive bool
	History       *history.History[HistoryEntry]
}

// New returns an empty Filter in Include mode.
func New() *Filter {
	return &Filter{
		caseSensitive: defaultCaseSensitivity,
		History:       history.New[HistoryEntry](),
	}
}

// WithPatterns returns a Filter preconfigured with patterns (e.g. loaded
// from a filters file).
func WithPatterns(patterns []Pattern) *Filter {
	f := New()
	f.patterns = patterns
	return f
}

func (f *Filter) ToggleMode() {
	if f.mode == Include {
		f.mode = Exclude
	} else {
		f.mode = Include
	}
}

func (f *Filter) ResetMode() { f.mode = Include }
func (f *Filter) Mode() Mode { return f.mode }
func (f *Filter) SetMode(m Mode) { f.mode = m }

func (f *Filter) IsCaseSensitive() bool    { return f.caseSensitive }
func (f *Filter) ToggleCaseSensitivity()   { f.caseSensitive = !f.caseSensitive }
func (f *Filter) SetCaseSensitivity(v bool) { f.caseSensitive = v }
func (f *Filter) ResetCaseSensitivity()    { f.caseSensitive = defaultCaseSensitivity }

// AddFromText adds a new pattern using the filter's current mode/case
// sensitivity, unless pattern is empty or a pattern with the same text and
// mode already exists.
func (f *Filter) AddFromText(pattern string) {
	if pattern == "" || f.patternExists(pattern, f.mode) {
		return
	}
	f.patterns = append(f.patterns, Pattern{
		Pattern:       pattern,
		Mode:          f.mode,
		CaseSensitive: f.caseSensitive,
		Enabled:       true,
	})
	f.History.Add(HistoryEntry{Pattern: pattern, Mode: f.mode, CaseSensitive: f.caseSensitive})
}

// Add adds a fully-specified pattern, subject to the same dedup rule.
func (f *Filter) Add(p Pattern) {
	if f.patternExists(p.Pattern, p.Mode) {
		return
	}
	f.patterns = append(f.patterns, p)
	f.History.Add(HistoryEntry{Pattern: p.Pattern, Mode: p.Mode, CaseSensitive: p.CaseSensitive})
}

func (f *Filter) Patterns() []Pattern { return f.patterns }
func (f *Filter) Count() int          { return len(f.patterns) }

// ReplacePredefined drops every pattern previously loaded from a predefined
// filters file (tracked by FromFile) and adds replacements in its place,
// leaving patterns the user entered interactively untouched. Used for the
// filters file's hot-reload: a live edit should not discard filters the
// user has since typed in.
func (f *Filter) ReplacePredefined(patterns []Pattern) {
	kept := f.patterns[:0:0]
	for _, p := range f.patterns {
		if !p.FromFile {
			kept = append(kept, p)
		}
	}
	for _, p := range patterns {
		p.FromFile = true
		if f.patternExistsIn(kept, p.Pattern, p.Mode) {
			continue
		}
		kept = append(kept, p)
	}
	f.patterns = kept
}

func (f *Filter) patternExistsIn(patterns []Pattern, pattern string, mode Mode) bool {
	for _, p := range patterns {
		if p.Pattern == pattern && p.Mode == mode {
			return true
		}
	}
	return false
}

func (f *Filter) Get(index int) (Pattern, bool) {
	if index < 0 || index >= len(f.patterns) {
		return Pattern{}, false
	}
	return f.patterns[index], true
}

func (f *Filter) ToggleEnabled(index int) {
	if index >= 0 && index < len(f.patterns) {
		f.patterns[index].Enabled = !f.patterns[index].Enabled
	}
}

func (f *Filter) DisableAll() {
	for i := range f.patterns {
		f.patterns[i].Enabled = false
	}
}

// ToggleAllEnabled flips every pattern to disabled if all are currently
// enabled, otherwise enables every pattern.
func (f *Filter) ToggleAllEnabled() {
	if len(f.patterns) == 0 {
		return
	}
	allEnabled := true
	for _, p := range f.patterns {
		if !p.Enabled {
			allEnabled = false
			break
		}
	}
	for i := range f.patterns {
		f.patterns[i].Enabled = !allEnabled
	}
}

func (f *Filter) Remove(index int) {
	if index >= 0 && index < len(f.patterns) {
		f.patterns = append(f.patterns[:index], f.patterns[index+1:]...)
	}
}

func (f *Filter) TogglePatternCaseSensitivity(index int) {
	if index >= 0 && index < len(f.patterns) {
		f.patterns[index].CaseSensitive = !f.patterns[index].CaseSensitive
	}
}

func (f *Filter) TogglePatternMode(index int) {
	if index < 0 || index >= len(f.patterns) {
		return
	}
	if f.patterns[index].Mode == Include {
		f.patterns[index].Mode = Exclude
	} else {
		f.patterns[index].Mode = Include
	}
}

// UpdatePattern replaces the text of the pattern at index, unless doing so
// would collide with another pattern sharing the same mode. Returns whether
// the update succeeded.
func (f *Filter) UpdatePattern(index int, newText string) bool {
	if index < 0 || index >= len(f.patterns) {
		return false
	}
	mode := f.patterns[index].Mode
	for i, p := range f.patterns {
		if i != index && p.Pattern == newText && p.Mode == mode {
			return false
		}
	}
	f.patterns[index].Pattern = newText
	return true
}

func (f *Filter) patternExists(pattern string, mode Mode) bool {
	return f.patternExistsIn(f.patterns, pattern, mode)
}

// Apply reports whether content passes the filter's current pattern set.
func (f *Filter) Apply(content string) bool {
	return Apply(content, f.patterns)
}

// Apply reports whether content passes the given pattern set: any enabled
// Exclude match hides the line; otherwise, if at least one Include pattern
// is enabled, at least one must match (vacuously true with none enabled).
func Apply(content string, patterns []Pattern) bool {
	if len(patterns) == 0 {
		return true
	}

	hasInclude := false
	includeMatched := false

	for _, p := range patterns {
		if !p.Enabled {
			continue
		}
		var matches bool
		if p.CaseSensitive {
			matches = strings.Contains(content, p.Pattern)
		} else {
			matches = containsIgnoreCase(content, p.Pattern)
		}

		switch p.Mode {
		case Exclude:
			if matches {
				return false
			}
		case Include:
			hasInclude = true
			if matches {
				includeMatched = true
			}
		}
	}

	if hasInclude {
		return includeMatched
	}
	return true
}

// containsIgnoreCase performs an ASCII case-fold sliding-window substring
// search. Deliberately not Unicode-correct: predictable, allocation-free,
// and log content is overwhelmingly ASCII.
func containsIgnoreCase(content, pattern string) bool {
	if pattern == "" {
		return true
	}
	if len(pattern) > len(content) {
		return false
	}
	for i := 0; i+len(pattern) <= len(content); i++ {
		if asciiEqualFold(content[i:i+len(pattern)], pattern) {
			return true
		}
	}
	return false
}

func asciiEqualFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		if asciiLower(a[i]) != asciiLower(b[i]) {
			return false
		}
	}
	return true
}

func asciiLower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

// Rule adapts a Filter's current pattern set into a rules.VisibilityRule.
// It applies to every line the Resolver walks in its main pass; expansion
// children are spliced in separately by the Resolver and never run through
// this rule (or any other VisibilityRule) at all. Bypass, when set, names
// log indices that pass regardless of pattern match (the AlwaysShowXxx app
// options) — callers must populate it only with ordinary lines the main
// pass visits once, never with expansion-child indices, or a line would be
// both filtered-in here and spliced in again by the Resolver.
type Rule struct {
	Patterns []Pattern
	Bypass   map[int]bool
}

func (r Rule) IsVisible(line logline.Line) bool {
	if r.Bypass[line.Index] {
		return true
	}
	if len(r.Patterns) == 0 {
		return true
	}
	return Apply(line.Content, r.Patterns)
}

// ScanAll reports, in index order, whether each line passes the given
// pattern set, computed in parallel across a worker pool.
func ScanAll(ctx context.Context, lines []logline.Line, patterns []Pattern) []bool {
	results := make([]bool, len(lines))
	if len(lines) == 0 {
		return results
	}
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
				results[i] = Apply(lines[i].Content, patterns)
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}
