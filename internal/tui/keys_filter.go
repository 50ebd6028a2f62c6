package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lazylog/lazylog/internal/app"
)

// handleFilterInputKey reads a new filter pattern. ctrl+r/ctrl+s flip the
// mode/case-sensitivity that will apply to the pattern once submitted; the
// prompt shows the filter's current mode as they type.
func (p *Program) handleFilterInputKey(msg tea.KeyMsg) tea.Cmd {
	m := p.m
	switch msg.Type {
	case tea.KeyEnter:
		m.Mode = app.ModeNormal
		m.ApplyFilterText(p.inputValue())
		return nil
	case tea.KeyEsc:
		m.Mode = app.ModeNormal
		return nil
	case tea.KeyCtrlR:
		m.ToggleFilterMode()
		return nil
	case tea.KeyCtrlS:
		m.ToggleFilterCaseSensitive()
		return nil
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return cmd
}
