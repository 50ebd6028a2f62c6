package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lazylog/lazylog/internal/app"
	"github.com/lazylog/lazylog/internal/highlight"
	"github.com/lazylog/lazylog/internal/options"
	"github.com/lazylog/lazylog/internal/resolver"
	"github.com/lazylog/lazylog/internal/rules"
)

// render dispatches to the view for the current mode. Overlays (lists,
// help, confirm, error) are composited over the line viewport with
// lipgloss.Place so the base view keeps its own layout math simple.
func (p *Program) render() string {
	m := p.m
	if m.Width < 20 || m.Height < 6 {
		return "terminal too small"
	}

	base := p.renderLines()

	switch m.Mode {
	case app.ModeHelp:
		return p.overlay(base, p.renderHelp())
	case app.ModeConfirmQuit:
		return p.overlay(base, confirmStyle.Render("Quit lazylog? (y/n)"))
	case app.ModeErrorOverlay:
		return p.overlay(base, p.renderErrorOverlay())
	case app.ModeMarksList:
		return p.overlay(base, p.renderMarksList())
	case app.ModeFiltersList:
		return p.overlay(base, p.renderFiltersList())
	case app.ModeEventsList:
		return p.overlay(base, p.renderEventsList())
	case app.ModeOptionsList:
		return p.overlay(base, p.renderOptionsList())
	}
	return base
}

func (p *Program) overlay(base, box string) string {
	return lipgloss.Place(p.m.Width, p.m.Height, lipgloss.Center, lipgloss.Center, box)
}

// renderLines draws the title, the visible-line viewport, and the footer
// (status line, toast, and the active input prompt for whichever input
// mode is live, if any).
func (p *Program) renderLines() string {
	m := p.m
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("lazylog") + "\n\n")

	visible := m.Visible()
	total := len(visible)
	start, end := m.Viewport.Visible()
	if end > total {
		end = total
	}
	if start > end {
		start = end
	}

	for i := start; i < end; i++ {
		sb.WriteString(p.renderLine(visible[i], i == m.Viewport.SelectedLine) + "\n")
	}
	rendered := end - start
	for rendered < m.Viewport.Height {
		sb.WriteString("\n")
		rendered++
	}

	sb.WriteString(separatorStyle.Render(strings.Repeat("─", max(1, m.Width))) + "\n")
	sb.WriteString(p.renderFooter(total) + "\n")
	sb.WriteString(p.renderToastLine())

	if input, ok := p.activeInputPrompt(); ok {
		sb.WriteString("\n" + inputPromptStyle.Render(input))
	}

	return sb.String()
}

// renderLine formats one visible line: gutter (mark/event/expanded
// markers), highlighted content sliced to the horizontal offset, and the
// selection background.
func (p *Program) renderLine(vl resolver.VisibleLine, selected bool) string {
	m := p.m
	logLine, ok := m.Buffer.Get(vl.LogIndex)
	if !ok {
		return ""
	}

	gutter := gutterFor(vl)
	content := m.Options.ApplyToLine(logLine.Content)
	colorsEnabled := !m.Options.IsEnabled(options.DisableColors)

	width := m.Width - lipgloss.Width(gutter)
	if width < 1 {
		width = 1
	}
	styled := m.Highlighter.HighlightLine(content, m.Viewport.HorizontalOffset, colorsEnabled)
	rendered := renderSegments(sliceFrom(content, m.Viewport.HorizontalOffset), width, styled)

	line := gutter + rendered
	if selected {
		return selectedLineStyle.Render(padTo(line, m.Width))
	}
	return line
}

// gutterFor renders the two-character mark/event prefix for a visible line.
func gutterFor(vl resolver.VisibleLine) string {
	mark := " "
	if vl.HasTag(rules.TagMarked) {
		mark = markedGutterStyle.Render("●")
	} else if vl.HasTag(rules.TagEvent) {
		mark = colorfulDot()
	}
	exp := " "
	if vl.HasTag(rules.TagExpanded) {
		exp = "↳"
	}
	return mark + exp + " "
}

func colorfulDot() string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(colorWarning)).Render("◆")
}

// sliceFrom drops the portion of content before offset (byte offset, ASCII
// log content per the design's case-folding note), returning "" if offset
// is past the end.
func sliceFrom(content string, offset int) string {
	if offset <= 0 {
		return content
	}
	if offset >= len(content) {
		return ""
	}
	return content[offset:]
}

// renderSegments paints line (already sliced to the horizontal offset,
// matching l.Segments' offset-relative coordinates from
// Highlighter.HighlightLine) with l's styled ranges, clipping to width and
// leaving ungapped text unstyled.
func renderSegments(line string, width int, l highlight.Line) string {
	if len(line) > width {
		line = line[:width]
	}
	if len(l.Segments) == 0 {
		return line
	}

	var sb strings.Builder
	pos := 0
	for _, seg := range l.Segments {
		start, end := seg.Start, seg.End
		if start >= len(line) {
			break
		}
		if end > len(line) {
			end = len(line)
		}
		if start > pos {
			sb.WriteString(line[pos:start])
		}
		if start < pos {
			start = pos
		}
		if end <= start {
			continue
		}
		sb.WriteString(lipglossStyle(seg.Style.FgColor, seg.Style.BgColor, seg.Style.Bold).Render(line[start:end]))
		pos = end
	}
	if pos < len(line) {
		sb.WriteString(line[pos:])
	}
	return sb.String()
}

func padTo(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

func (p *Program) renderFooter(totalVisible int) string {
	m := p.m
	left := p.statusLeft(totalVisible)
	right := p.statusRight()
	spacing := m.Width - lipgloss.Width(left) - lipgloss.Width(right) - 1
	if spacing < 1 {
		spacing = 1
	}
	return footerStyle.Render(left) + strings.Repeat(" ", spacing) + footerDimStyle.Render(right)
}

func (p *Program) statusLeft(totalVisible int) string {
	m := p.m
	parts := []string{
		fmt.Sprintf("%d/%d lines", m.Viewport.SelectedLine+1, totalVisible),
		fmt.Sprintf("%d total", m.Buffer.TotalLines()),
	}
	if m.Search.Pattern != "" {
		current, visible, total := m.Search.MatchInfo(m.TotalSearchMatches())
		parts = append(parts, fmt.Sprintf("match %d/%d (%d incl. filtered)", current, visible, total))
	}
	if m.MarksOnly {
		parts = append(parts, "marks-only")
	}
	if m.Viewport.FollowMode {
		parts = append(parts, "follow")
	}
	if m.Viewport.PauseMode {
		parts = append(parts, "paused")
	}
	return strings.Join(parts, "  │  ")
}

func (p *Program) statusRight() string {
	m := p.m
	if rate := m.RateTracker.Rate(); rate > 0 {
		return fmt.Sprintf("%d lines/s", rate)
	}
	return "?  help"
}

func (p *Program) renderToastLine() string {
	m := p.m
	if m.Toast == "" {
		return " "
	}
	if m.ToastIsError {
		return toastErrorStyle.Render("✗ " + m.Toast)
	}
	return toastSuccessStyle.Render("✓ " + m.Toast)
}

func (p *Program) activeInputPrompt() (string, bool) {
	m := p.m
	switch m.Mode {
	case app.ModeSearchInput:
		cs := ""
		if m.Search.CaseSensitive {
			cs = " [case-sensitive]"
		}
		return "Search" + cs + ": " + p.input.View(), true
	case app.ModeFilterInput:
		return "Filter (" + m.Filter.Mode().String() + "): " + p.input.View(), true
	case app.ModeGotoInput:
		return "Go to line: " + p.input.View(), true
	case app.ModeMarkNameInput:
		return "Mark name: " + p.input.View(), true
	case app.ModeCustomEventInput:
		return "Track pattern: " + p.input.View(), true
	}
	return "", false
}

func (p *Program) renderHelp() string {
	lines := []string{
		"lazylog keybindings",
		"",
		"j/k, ↑/↓        move          /  search       f  filter",
		"pgup/pgdown     page          n/N next/prev   L  filters list",
		"g/G             top/bottom    m  mark         M  marks list",
		"h/l, ←/→        scroll        ]/[ next/prev mark",
		"e               expand        o  marks only   V  events list",
		"F               follow        C  track pattern O  options list",
		"ctrl+e          center cursor P  pause",
		"ctrl+o/ctrl+i   jump back/fwd :  go to line",
		"1-9             toggle file N (multi-file mode)",
		"",
		"press any key to close",
	}
	return overlayBoxStyle.Render(strings.Join(lines, "\n"))
}

func (p *Program) renderErrorOverlay() string {
	m := p.m
	msg := "unknown error"
	if m.Err != nil {
		msg = m.Err.Error()
	}
	return overlayBoxStyle.Render(errorStyle.Render("Error") + "\n\n" + msg + "\n\npress any key to dismiss")
}

func (p *Program) renderMarksList() string {
	m := p.m
	marks := m.Marks.All()
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(fmt.Sprintf("Marks (%d)", len(marks))) + "\n\n")
	if len(marks) == 0 {
		sb.WriteString("no marks yet\n")
	}
	for i, mk := range marks {
		line := fmt.Sprintf("%6d  %s", mk.LineIndex, mk.Name)
		if i == m.MarksList.SelectedIndex() {
			line = selectedLineStyle.Render(line)
		}
		sb.WriteString(line + "\n")
	}
	sb.WriteString("\nenter: jump  r: rename  d: delete  q: close")
	return overlayBoxStyle.Render(sb.String())
}

func (p *Program) renderFiltersList() string {
	m := p.m
	patterns := m.Filter.Patterns()
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(fmt.Sprintf("Filters (%d)", len(patterns))) + "\n\n")
	if len(patterns) == 0 {
		sb.WriteString("no filters yet\n")
	}
	for i, pat := range patterns {
		state := "off"
		if pat.Enabled {
			state = "on"
		}
		line := fmt.Sprintf("[%-3s] %-7s %-5s %s", state, pat.Mode.String(), caseLabel(pat.CaseSensitive), pat.Pattern)
		if i == m.FiltersList.SelectedIndex() {
			line = selectedLineStyle.Render(line)
		}
		sb.WriteString(line + "\n")
	}
	sb.WriteString("\nspace: toggle  r: mode  s: case  d: delete  a: all  q: close")
	return overlayBoxStyle.Render(sb.String())
}

func (p *Program) renderEventsList() string {
	m := p.m
	patterns := m.Events.Patterns()
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(fmt.Sprintf("Events (%d)", len(patterns))) + "\n\n")
	if len(patterns) == 0 {
		sb.WriteString("no events tracked\n")
	}
	for i, pat := range patterns {
		state := "off"
		if pat.Enabled {
			state = "on"
		}
		line := fmt.Sprintf("[%-3s] %6d  %s", state, pat.Count, pat.Name)
		if i == m.EventsList.SelectedIndex() {
			line = selectedLineStyle.Render(line)
		}
		sb.WriteString(line + "\n")
	}
	sb.WriteString("\nspace: toggle  s: solo  d: delete custom  a: all  q: close")
	return overlayBoxStyle.Render(sb.String())
}

func (p *Program) renderOptionsList() string {
	m := p.m
	defs := m.Options.All()
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(fmt.Sprintf("Options (%d)", len(defs))) + "\n\n")
	for i, d := range defs {
		box := "[ ]"
		if d.Enabled {
			box = "[x]"
		}
		line := fmt.Sprintf("%s %s", box, d.Description)
		if i == m.OptionsList.SelectedIndex() {
			line = selectedLineStyle.Render(line)
		}
		sb.WriteString(line + "\n")
	}
	sb.WriteString("\nspace: toggle  q: close")
	return overlayBoxStyle.Render(sb.String())
}

func caseLabel(sensitive bool) string {
	if sensitive {
		return "case"
	}
	return "nocase"
}
