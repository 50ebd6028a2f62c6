// Package tui wraps internal/app's business-logic Model with the actual
// bubbletea tea.Model: key dispatch, periodic persistence, and rendering.
// It is the only package that imports bubbletea/lipgloss for the viewer's
// own UI (as opposed to app's message types, which only name tea.Msg/tea.Cmd
// to stay usable from Init/Update without a rendering dependency).
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lazylog/lazylog/internal/app"
	"github.com/lazylog/lazylog/internal/filter"
	"github.com/lazylog/lazylog/internal/options"
	"github.com/lazylog/lazylog/internal/persistence"
)

// Program is the root tea.Model. It owns no durable viewer state of its
// own (that all lives on *app.Model); it owns only the bubbles widget used
// to read single-line input across every ModeXxxInput mode.
type Program struct {
	m *app.Model

	input textinput.Model

	persistEvery time.Duration
}

// New wraps m as a tea.Model.
func New(m *app.Model) *Program {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 0
	return &Program{m: m, input: ti, persistEvery: 2 * time.Second}
}

// startInput switches to mode with a freshly focused text input seeded
// with initial (blank for new entry, pre-filled for e.g. renaming a mark).
func (p *Program) startInput(mode app.Mode, initial string) tea.Cmd {
	p.m.Mode = mode
	p.input.SetValue(initial)
	p.input.CursorEnd()
	return p.input.Focus()
}

// inputValue returns the current text of the active input widget.
func (p *Program) inputValue() string {
	return p.input.Value()
}

type persistTickMsg time.Time

func persistTickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return persistTickMsg(t) })
}

func (p *Program) Init() tea.Cmd {
	cmds := []tea.Cmd{p.m.Init()}
	if p.m.Persist {
		cmds = append(cmds, persistTickCmd(p.persistEvery))
	}
	return tea.Batch(cmds...)
}

func (p *Program) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.m.Resize(msg.Width, msg.Height)
		return p, nil

	case tea.KeyMsg:
		return p, p.dispatchKey(msg)

	case persistTickMsg:
		p.save()
		return p, persistTickCmd(p.persistEvery)

	case tea.QuitMsg:
		p.save()
		return p, nil
	}

	return p, p.m.HandleMessage(msg)
}

func (p *Program) View() string {
	return p.render()
}

// dispatchKey routes a key event to the handler for the model's current
// mode. Handlers live in keys_*.go, one file per mode family.
func (p *Program) dispatchKey(msg tea.KeyMsg) tea.Cmd {
	switch p.m.Mode {
	case app.ModeNormal:
		return p.handleNormalKey(msg)
	case app.ModeSearchInput:
		return p.handleSearchInputKey(msg)
	case app.ModeFilterInput:
		return p.handleFilterInputKey(msg)
	case app.ModeGotoInput:
		return p.handleGotoInputKey(msg)
	case app.ModeMarkNameInput:
		return p.handleMarkNameInputKey(msg)
	case app.ModeCustomEventInput:
		return p.handleCustomEventInputKey(msg)
	case app.ModeHelp:
		return p.handleHelpKey(msg)
	case app.ModeConfirmQuit:
		return p.handleConfirmQuitKey(msg)
	case app.ModeMarksList:
		return p.handleMarksListKey(msg)
	case app.ModeFiltersList:
		return p.handleFiltersListKey(msg)
	case app.ModeEventsList:
		return p.handleEventsListKey(msg)
	case app.ModeOptionsList:
		return p.handleOptionsListKey(msg)
	case app.ModeErrorOverlay:
		return p.handleErrorOverlayKey(msg)
	}
	return nil
}

// save persists viewer state if persistence is enabled, swallowing errors
// (a failed save degrades to "start fresh next time", never a crash).
func (p *Program) save() {
	if !p.m.Persist || p.m.LogFilePath == "" {
		return
	}
	state := persistence.State{
		Version:     persistence.CurrentVersion,
		LogFilePath: p.m.LogFilePath,
		Viewport: persistence.Viewport{
			SelectedLine:      p.m.Viewport.SelectedLine,
			TopLine:           p.m.Viewport.TopLine,
			HorizontalOffset:  p.m.Viewport.HorizontalOffset,
			CenterCursorMode:  p.m.Viewport.CenterCursorMode,
		},
		SearchHistory: p.m.Search.History.Entries(),
	}
	for _, pat := range p.m.Filter.Patterns() {
		state.Filters = append(state.Filters, persistence.FilterPatternState{
			Pattern:       pat.Pattern,
			Mode:          pat.Mode.String(),
			CaseSensitive: pat.CaseSensitive,
			Enabled:       pat.Enabled,
		})
	}
	for _, entry := range p.m.Filter.History.Entries() {
		state.FilterHistory = append(state.FilterHistory, persistence.FilterHistoryEntry{
			Pattern:       entry.Pattern,
			Mode:          entry.Mode.String(),
			CaseSensitive: entry.CaseSensitive,
		})
	}
	for _, mk := range p.m.Marks.All() {
		state.Marks = append(state.Marks, persistence.MarkState{LineIndex: mk.LineIndex, Name: mk.Name})
	}
	for _, pat := range p.m.Events.Patterns() {
		state.EventFilters = append(state.EventFilters, persistence.EventFilterState{Name: pat.Name, Enabled: pat.Enabled})
	}
	for _, d := range p.m.Options.All() {
		state.Options = append(state.Options, persistence.OptionState{Name: d.Option.String(), Enabled: d.Enabled})
	}

	_ = persistence.Save(p.m.LogFilePath, state)
}

// Restore applies previously persisted state to m, used by cmd/lazylog
// before starting the program (skipped entirely with --no-persist).
func Restore(m *app.Model, state persistence.State) {
	m.Viewport.SelectedLine = state.Viewport.SelectedLine
	m.Viewport.TopLine = state.Viewport.TopLine
	m.Viewport.HorizontalOffset = state.Viewport.HorizontalOffset
	m.Viewport.CenterCursorMode = state.Viewport.CenterCursorMode

	m.Search.History.Restore(state.SearchHistory)

	for _, f := range state.Filters {
		m.Filter.Add(filter.Pattern{
			Pattern:       f.Pattern,
			Mode:          filter.ParseMode(f.Mode),
			CaseSensitive: f.CaseSensitive,
			Enabled:       f.Enabled,
		})
	}
	var filterHistory []filter.HistoryEntry
	for _, entry := range state.FilterHistory {
		filterHistory = append(filterHistory, filter.HistoryEntry{
			Pattern:       entry.Pattern,
			Mode:          filter.ParseMode(entry.Mode),
			CaseSensitive: entry.CaseSensitive,
		})
	}
	m.Filter.History.Restore(filterHistory)

	for _, mk := range state.Marks {
		m.Marks.Toggle(mk.LineIndex)
		if mk.Name != "" {
			m.Marks.Rename(mk.LineIndex, mk.Name)
		}
	}

	restored := make(map[string]bool, len(state.EventFilters))
	for _, ef := range state.EventFilters {
		restored[ef.Name] = ef.Enabled
	}
	if len(restored) > 0 {
		m.Events.RestoreFilterStates(restored)
	}

	if len(state.Options) > 0 {
		optStates := make(map[options.Option]bool, len(state.Options))
		for _, o := range state.Options {
			if parsed, ok := options.ParseOption(o.Name); ok {
				optStates[parsed] = o.Enabled
			}
		}
		m.Options.Restore(optStates)
	}

	m.RebuildRules()
}
