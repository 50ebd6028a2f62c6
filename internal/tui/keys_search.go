package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lazylog/lazylog/internal/app"
)

// handleSearchInputKey reads the incremental search query. Enter commits it
// as the active search (scanning the buffer and jumping to the first
// match); Escape cancels back to normal mode without touching the active
// search.
func (p *Program) handleSearchInputKey(msg tea.KeyMsg) tea.Cmd {
	m := p.m
	switch msg.Type {
	case tea.KeyEnter:
		m.Mode = app.ModeNormal
		m.ApplySearch(context.Background(), p.inputValue(), m.Search.CaseSensitive)
		return nil
	case tea.KeyEsc:
		m.Mode = app.ModeNormal
		return nil
	case tea.KeyCtrlS:
		m.Search.CaseSensitive = !m.Search.CaseSensitive
		return nil
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return cmd
}
