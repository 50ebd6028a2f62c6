package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lazylog/lazylog/internal/app"
)

// handleHelpKey dismisses the help overlay on any key.
func (p *Program) handleHelpKey(msg tea.KeyMsg) tea.Cmd {
	p.m.Mode = app.ModeNormal
	return nil
}

// handleConfirmQuitKey requires an explicit y to quit; anything else
// cancels back to normal mode.
func (p *Program) handleConfirmQuitKey(msg tea.KeyMsg) tea.Cmd {
	m := p.m
	switch msg.String() {
	case "y", "Y", "enter":
		m.Quitting = true
		p.save()
		return tea.Quit
	default:
		m.Mode = app.ModeNormal
		return nil
	}
}

// handleErrorOverlayKey dismisses the error overlay on any key.
func (p *Program) handleErrorOverlayKey(msg tea.KeyMsg) tea.Cmd {
	m := p.m
	m.Err = nil
	m.Mode = app.ModeNormal
	return nil
}
