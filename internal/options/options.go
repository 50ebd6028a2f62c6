// Package options implements the viewer's toggleable app-wide display and
// behavior options: hiding the leading timestamp/hostname from each line,
// disabling color output, suppressing cursor-jumping on search match, and
// forcing marked/critical lines to stay visible regardless of the active
// filter set.
package options

import "regexp"

// Option identifies one toggleable app option.
type Option int

const (
	HideTimestamp Option = iota
	DisableColors
	SearchDisableJumping
	AlwaysShowMarkedLines
	AlwaysShowCriticalEvents
)

// String returns the stable slug used as the persistence key — distinct
// from Description, which is the longer label shown in the options list.
func (o Option) String() string {
	switch o {
	case HideTimestamp:
		return "hide_timestamp"
	case DisableColors:
		return "disable_colors"
	case SearchDisableJumping:
		return "search_disable_jumping"
	case AlwaysShowMarkedLines:
		return "always_show_marked_lines"
	case AlwaysShowCriticalEvents:
		return "always_show_critical_events"
	default:
		return "unknown"
	}
}

// ParseOption maps a persisted slug back to an Option. Unknown names are
// ignored by the caller (Restore skips them), matching the
// corrupt/missing-state-is-ignored policy used throughout persistence.
func ParseOption(name string) (Option, bool) {
	for _, d := range defs {
		if d.option.String() == name {
			return d.option, true
		}
	}
	return 0, false
}

type def struct {
	option      Option
	description string
}

// defs is ordered exactly as original_source/src/options.rs's Default
// impl, which also fixes the options list's display order.
var defs = []def{
	{HideTimestamp, "Hide Timestamp & Hostname"},
	{DisableColors, "Disable Colors"},
	{SearchDisableJumping, "Search: Disable jumping to match"},
	{AlwaysShowMarkedLines, "Always show marked lines"},
	{AlwaysShowCriticalEvents, "Always show critical events"},
}

// timestampPrefix strips a leading syslog ("Jan 02 15:04:05 host ") or
// ISO-8601-with-numeric-offset ("2024-01-02T15:04:05.000+0000 ") timestamp
// plus the hostname/field that follows it, matching the HideTimestamp
// LineTransform regex in original_source/src/options.rs exactly.
var timestampPrefix = regexp.MustCompile(
	`^(?:\w{3}\s+\d{2}\s+\d{2}:\d{2}:\d{2}\s+\S+\s+|\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d+[+-]\d{4}\s+)`)

// Def is one option's description paired with its current enabled state,
// for the options-list overlay.
type Def struct {
	Option      Option
	Description string
	Enabled     bool
}

// Store holds the enabled/disabled state of every option. The zero value
// (via New) has every option disabled, matching AppOptionDef::new's
// enabled: false default.
type Store struct {
	enabled map[Option]bool
}

// New returns a Store with every option disabled.
func New() *Store {
	return &Store{enabled: make(map[Option]bool, len(defs))}
}

// Count returns the number of known options.
func (s *Store) Count() int { return len(defs) }

// IsEnabled reports whether o is currently on.
func (s *Store) IsEnabled(o Option) bool { return s.enabled[o] }

// Toggle flips o's enabled state.
func (s *Store) Toggle(o Option) { s.enabled[o] = !s.enabled[o] }

// ToggleIndex flips the enabled state of the option at list position i,
// a no-op if i is out of range (mirrors AppOptions::toggle_option).
func (s *Store) ToggleIndex(i int) {
	if i < 0 || i >= len(defs) {
		return
	}
	s.Toggle(defs[i].option)
}

// All returns every option definition in display order with its current
// enabled state, for the options-list overlay.
func (s *Store) All() []Def {
	out := make([]Def, len(defs))
	for i, d := range defs {
		out[i] = Def{Option: d.option, Description: d.description, Enabled: s.enabled[d.option]}
	}
	return out
}

// ApplyToLine strips the leading timestamp/hostname from content when
// HideTimestamp is enabled, mirroring AppOptions::apply_to_line's
// LineTransform action. Only a match anchored at the very start counts.
func (s *Store) ApplyToLine(content string) string {
	if !s.enabled[HideTimestamp] {
		return content
	}
	if loc := timestampPrefix.FindStringIndex(content); loc != nil && loc[0] == 0 {
		return content[loc[1]:]
	}
	return content
}

// Restore applies a previously persisted set of enabled states. Unknown
// options are silently ignored (forward/backward schema tolerance, same
// policy as the rest of persistence).
func (s *Store) Restore(states map[Option]bool) {
	for o, enabled := range states {
		s.enabled[o] = enabled
	}
}
