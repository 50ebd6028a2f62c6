package tui

import (
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lazylog/lazylog/internal/app"
)

// handleGotoInputKey reads a line number and jumps to it on Enter.
func (p *Program) handleGotoInputKey(msg tea.KeyMsg) tea.Cmd {
	m := p.m
	switch msg.Type {
	case tea.KeyEnter:
		m.Mode = app.ModeNormal
		text := strings.TrimSpace(p.inputValue())
		n, err := strconv.Atoi(text)
		if err != nil {
			return m.SetToast("not a line number: "+text, true)
		}
		if !m.GotoLine(n) {
			return m.SetToast("no such line", true)
		}
		return nil
	case tea.KeyEsc:
		m.Mode = app.ModeNormal
		return nil
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return cmd
}

// handleMarkNameInputKey renames the mark at the current selection.
func (p *Program) handleMarkNameInputKey(msg tea.KeyMsg) tea.Cmd {
	m := p.m
	switch msg.Type {
	case tea.KeyEnter:
		m.Mode = app.ModeNormal
		if logIndex, ok := m.Resolver.ViewportToLog(m.Viewport.SelectedLine); ok {
			m.Marks.Rename(logIndex, strings.TrimSpace(p.inputValue()))
		}
		return nil
	case tea.KeyEsc:
		m.Mode = app.ModeNormal
		return nil
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return cmd
}

// handleCustomEventInputKey reads a pattern for a new ad hoc event tracker.
func (p *Program) handleCustomEventInputKey(msg tea.KeyMsg) tea.Cmd {
	m := p.m
	switch msg.Type {
	case tea.KeyEnter:
		m.Mode = app.ModeNormal
		text := strings.TrimSpace(p.inputValue())
		if text == "" {
			return nil
		}
		if !m.AddCustomEvent(text, false) {
			return m.SetToast("event already tracked", true)
		}
		return m.SetToast("tracking \""+text+"\"", false)
	case tea.KeyEsc:
		m.Mode = app.ModeNormal
		return nil
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return cmd
}
