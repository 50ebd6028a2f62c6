package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lazylog/lazylog/internal/app"
)

// handleMarksListKey browses the marks overlay: up/down select, enter jumps
// to the mark, r renames it, d deletes it (toggling it off), q/esc closes.
func (p *Program) handleMarksListKey(msg tea.KeyMsg) tea.Cmd {
	m := p.m
	marks := m.Marks.All()
	switch msg.String() {
	case "up", "k":
		m.MarksList.MoveUp()
	case "down", "j":
		m.MarksList.MoveDown()
	case "enter":
		if i := m.MarksList.SelectedIndex(); i < len(marks) {
			m.Mode = app.ModeNormal
			m.GotoLine(marks[i].LineIndex)
		}
		return nil
	case "r":
		if i := m.MarksList.SelectedIndex(); i < len(marks) {
			if ok := m.GotoLine(marks[i].LineIndex); ok {
				return p.startInput(app.ModeMarkNameInput, marks[i].Name)
			}
		}
		return nil
	case "d":
		if i := m.MarksList.SelectedIndex(); i < len(marks) {
			m.Marks.Toggle(marks[i].LineIndex)
			m.RebuildRules()
			m.MarksList.SetItemCount(m.Marks.Count())
		}
	case "q", "esc":
		m.Mode = app.ModeNormal
	}
	return nil
}

// handleFiltersListKey browses and edits the filter pattern list.
func (p *Program) handleFiltersListKey(msg tea.KeyMsg) tea.Cmd {
	m := p.m
	switch msg.String() {
	case "up", "k":
		m.FiltersList.MoveUp()
	case "down", "j":
		m.FiltersList.MoveDown()
	case " ":
		if i := m.FiltersList.SelectedIndex(); i < m.Filter.Count() {
			m.ToggleFilterEnabled(i)
		}
	case "d":
		if i := m.FiltersList.SelectedIndex(); i < m.Filter.Count() {
			m.RemoveFilter(i)
			m.FiltersList.SetItemCount(m.Filter.Count())
		}
	case "r":
		if i := m.FiltersList.SelectedIndex(); i < m.Filter.Count() {
			m.TogglePatternMode(i)
		}
	case "s":
		if i := m.FiltersList.SelectedIndex(); i < m.Filter.Count() {
			m.TogglePatternCaseSensitivity(i)
		}
	case "a":
		m.ToggleAllFiltersEnabled()
	case "q", "esc":
		m.Mode = app.ModeNormal
	}
	return nil
}

// handleEventsListKey browses the tracked-event list, toggling or soloing
// individual event filters.
func (p *Program) handleEventsListKey(msg tea.KeyMsg) tea.Cmd {
	m := p.m
	patterns := m.Events.Patterns()
	switch msg.String() {
	case "up", "k":
		m.EventsList.MoveUp()
	case "down", "j":
		m.EventsList.MoveDown()
	case " ":
		if i := m.EventsList.SelectedIndex(); i < len(patterns) {
			m.ToggleEventEnabled(i)
		}
	case "s":
		if i := m.EventsList.SelectedIndex(); i < len(patterns) {
			m.SoloEventFilter(patterns[i].Name)
		}
	case "d":
		if i := m.EventsList.SelectedIndex(); i < len(patterns) {
			if m.Events.IsCustom(patterns[i].Name) {
				m.RemoveCustomEvent(patterns[i].Name)
				m.EventsList.SetItemCount(len(m.Events.Patterns()))
			}
		}
	case "a":
		m.ToggleAllEventFilters()
	case "q", "esc":
		m.Mode = app.ModeNormal
	}
	return nil
}

// handleOptionsListKey browses the app-options overlay, toggling the
// selected option's enabled state.
func (p *Program) handleOptionsListKey(msg tea.KeyMsg) tea.Cmd {
	m := p.m
	switch msg.String() {
	case "up", "k":
		m.OptionsList.MoveUp()
	case "down", "j":
		m.OptionsList.MoveDown()
	case " ":
		if i := m.OptionsList.SelectedIndex(); i < m.Options.Count() {
			m.ToggleOptionAtSelection(i)
		}
	case "q", "esc":
		m.Mode = app.ModeNormal
	}
	return nil
}
