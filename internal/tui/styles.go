package tui

import "github.com/charmbracelet/lipgloss"

// VSCode-derived color palette, matching the viewer's default dark theme.
const (
	bgDefault  = "#1e1e1e"
	bgSelected = "#264f78"
	bgBorder   = "#3c3c3c"

	fgDefault = "#cccccc"
	fgBright  = "#ffffff"
	fgDim     = "#808080"

	colorError   = "#f48771"
	colorSuccess = "#89d185"
	colorWarning = "#dcdcaa"
	colorAccent  = "#4fc1ff"
	colorMark    = "#c586c0"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorAccent))

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(fgBright))

	footerDimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(fgDim))

	selectedLineStyle = lipgloss.NewStyle().
				Background(lipgloss.Color(bgSelected))

	markedGutterStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color(colorMark)).
				Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorError)).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorSuccess))

	confirmStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(colorError)).
			Padding(1, 2).
			Bold(true)

	overlayBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(bgBorder)).
			Padding(0, 1)

	toastSuccessStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color(colorSuccess)).
				Background(lipgloss.Color(bgDefault)).
				Bold(true).
				Padding(0, 1)

	toastErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorError)).
			Background(lipgloss.Color(bgDefault)).
			Bold(true).
			Padding(0, 1)

	separatorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(bgBorder))

	inputPromptStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color(colorWarning)).
				Bold(true)
)

// lipglossStyle converts a rendering-library-agnostic highlight.PatternStyle
// into a concrete lipgloss.Style, the only place in the module that knows
// highlight's plain-string colors are meant for lipgloss.
func lipglossStyle(fg, bg string, bold bool) lipgloss.Style {
	s := lipgloss.NewStyle()
	if fg != "" {
		s = s.Foreground(lipgloss.Color(fg))
	}
	if bg != "" {
		s = s.Background(lipgloss.Color(bg))
	}
	if bold {
		s = s.Bold(bold)
	}
	return s
}
