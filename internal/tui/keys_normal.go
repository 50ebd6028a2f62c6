package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lazylog/lazylog/internal/app"
)

// handleNormalKey dispatches a key press in the default line-browsing mode.
func (p *Program) handleNormalKey(msg tea.KeyMsg) tea.Cmd {
	m := p.m
	switch msg.String() {
	case "ctrl+c", "q":
		m.Mode = app.ModeConfirmQuit
		return nil

	case "up", "k":
		m.MoveUp()
	case "down", "j":
		m.MoveDown()
	case "pgup":
		m.PageUp()
	case "pgdown":
		m.PageDown()
	case "home", "g":
		m.Top()
	case "end", "G":
		m.Bottom()

	case "left", "h":
		m.ScrollHorizontal(-4)
	case "right", "l":
		m.ScrollHorizontal(4)

	case "/":
		return p.startInput(app.ModeSearchInput, "")
	case "n":
		if !m.SearchNext() {
			return m.SetToast("no matches", true)
		}
	case "N":
		if !m.SearchPrevious() {
			return m.SetToast("no matches", true)
		}

	case "f":
		return p.startInput(app.ModeFilterInput, "")
	case "ctrl+r":
		m.ToggleFilterMode()
	case "ctrl+s":
		m.ToggleFilterCaseSensitive()
	case "L":
		m.Mode = app.ModeFiltersList
		m.FiltersList.SetItemCount(m.Filter.Count())

	case "m":
		m.ToggleMarkAtSelection()
	case "]":
		if !m.NextMark() {
			return m.SetToast("no marks", true)
		}
	case "[":
		if !m.PreviousMark() {
			return m.SetToast("no marks", true)
		}
	case "M":
		m.Mode = app.ModeMarksList
		m.MarksList.SetItemCount(m.Marks.Count())
	case "o":
		m.ToggleMarksOnly()

	case "e":
		m.ToggleExpansionAtSelection(3)

	case ":":
		return p.startInput(app.ModeGotoInput, "")

	case "V":
		m.RescanEvents(context.Background())
		m.Mode = app.ModeEventsList
		m.EventsList.SetItemCount(len(m.Events.Patterns()))
	case "C":
		return p.startInput(app.ModeCustomEventInput, "")

	case "O":
		m.Mode = app.ModeOptionsList
		m.OptionsList.SetItemCount(m.Options.Count())

	case "F":
		m.ToggleFollow()
	case "ctrl+e":
		m.ToggleCenterCursor()
	case "P":
		m.TogglePause()

	case "ctrl+o":
		if !m.JumpBack() {
			return m.SetToast("no earlier position", true)
		}
	case "ctrl+i":
		if !m.JumpForward() {
			return m.SetToast("no later position", true)
		}

	case "?":
		m.Mode = app.ModeHelp

	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		if m.FileCount > 1 {
			m.ToggleFileEnabled(int(msg.String()[0] - '1'))
		}
	}
	return nil
}
