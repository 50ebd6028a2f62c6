// Package app owns the viewer's mutable state machine: the log buffer,
// every rule/filter/search/mark/expansion component composed over it, and
// the message taxonomy folded into that state by the bubbletea runtime.
// Rendering and key-to-action dispatch live in internal/tui; this package
// exposes the mutator methods tui calls and the background-message
// handling shared by every view.
package app

import (
	"context"
	"log/slog"
	"sort"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lazylog/lazylog/internal/config"
	"github.com/lazylog/lazylog/internal/event"
	"github.com/lazylog/lazylog/internal/expansion"
	"github.com/lazylog/lazylog/internal/filter"
	"github.com/lazylog/lazylog/internal/highlight"
	"github.com/lazylog/lazylog/internal/ingest"
	"github.com/lazylog/lazylog/internal/listview"
	"github.com/lazylog/lazylog/internal/logline"
	"github.com/lazylog/lazylog/internal/marks"
	"github.com/lazylog/lazylog/internal/options"
	"github.com/lazylog/lazylog/internal/resolver"
	"github.com/lazylog/lazylog/internal/rules"
	"github.com/lazylog/lazylog/internal/search"
	"github.com/lazylog/lazylog/internal/viewport"
)

// Mode selects which overlay, if any, currently owns keyboard input.
type Mode int

const (
	ModeNormal Mode = iota
	ModeSearchInput
	ModeFilterInput
	ModeGotoInput
	ModeMarkNameInput
	ModeCustomEventInput
	ModeHelp
	ModeConfirmQuit
	ModeMarksList
	ModeFiltersList
	ModeEventsList
	ModeOptionsList
	ModeErrorOverlay
)

const footerReservedRows = 2

// reservedRows is how much of the terminal height the footer/status bar
// consumes, leaving the remainder for the line viewport.
func reservedRows() int { return footerReservedRows }

// Model is the complete state of a running viewer session.
type Model struct {
	Buffer      *logline.Buffer
	Resolver    *resolver.Resolver
	Filter      *filter.Filter
	Search      *search.Search
	Events      *event.Tracker
	Marks       *marks.Store
	Expansions  *expansion.Store
	Viewport    *viewport.Viewport
	Highlighter *highlight.Highlighter

	MarksList   *listview.State
	FiltersList *listview.State
	EventsList  *listview.State
	OptionsList *listview.State

	Options *options.Store

	Pipeline    *ingest.Pipeline
	RateTracker *ingest.RateTracker

	Config      config.Config
	Logger      *slog.Logger
	LogFilePath string
	Persist     bool

	Width, Height int
	Mode          Mode

	MarksOnly      bool
	FileFilterRule rules.FileFilterRule
	FileCount      int
	SkippedNoTS    int

	// GapThreshold, GapSeparators, and RolloverSeparators back the
	// renderer's separator dividers (computed by RecomputeSeparators);
	// they never affect which lines the Resolver considers visible.
	GapThreshold       time.Duration
	GapSeparators      map[int]bool
	RolloverSeparators map[int]bool

	Err          error
	Toast        string
	ToastIsError bool

	Quitting bool
}

// New returns a Model over buf, with every component in its default state.
// patterns/events seed the highlighter and event tracker from config.
func New(buf *logline.Buffer, patterns []highlight.Pattern, events []event.Pattern) *Model {
	m := &Model{
		Buffer:       buf,
		Resolver:     resolver.New(),
		Filter:       filter.New(),
		Search:       search.New(),
		Events:       event.New(events),
		Marks:        marks.New(),
		Expansions:   expansion.New(),
		Viewport:     viewport.New(),
		Highlighter:  highlight.New(patterns, toHighlightEvents(events)),
		MarksList:    listview.New(),
		FiltersList:  listview.New(),
		EventsList:   listview.New(),
		OptionsList:  listview.New(),
		Options:      options.New(),
		RateTracker:  ingest.NewRateTracker(),
		Persist:      true,
		GapThreshold: defaultGapThreshold,
	}
	m.OptionsList.SetItemCount(m.Options.Count())
	m.rebuildRules()
	m.RecomputeSeparators()
	return m
}

const defaultGapThreshold = 5 * time.Second

func toHighlightEvents(events []event.Pattern) []highlight.Pattern {
	out := make([]highlight.Pattern, 0, len(events))
	for _, e := range events {
		style := highlight.PatternStyle{}
		if e.Color != "" {
			style = highlight.PatternStyle{BgColor: e.Color, FgColor: "#ffffff"}
		}
		out = append(out, highlight.Pattern{Name: e.Name, Matcher: e.Matcher, Style: style})
	}
	return out
}

// rebuildRules re-registers the composed visibility/tag rule set with the
// Resolver, invalidating its cache. Call after any mutation to filters,
// marks, expansions, or file-enable state.
func (m *Model) rebuildRules() {
	var visibility []rules.VisibilityRule
	visibility = append(visibility, filter.Rule{Patterns: m.Filter.Patterns(), Bypass: m.filterBypassSet()})
	if m.FileCount > 1 {
		visibility = append(visibility, m.FileFilterRule)
	}
	if m.MarksOnly {
		visibility = append(visibility, rules.MarksOnlyRule{Active: true, MarkedLines: m.markedSet()})
	}

	tags := []rules.TagRule{
		rules.MarkedTagRule{MarkedLines: m.markedSet()},
		rules.EventTagRule{EventLines: m.Events.EnabledEventLines()},
	}
	if m.FileCount > 1 {
		tags = append(tags, rules.FileIDTagRule{})
	}

	m.Resolver.SetRules(visibility, tags)
	m.Resolver.SetExpansions(m.Expansions)
}

// RecomputeSeparators re-derives the gap/date-rollover divider sets the
// renderer consults (spec's separator rules — informational only, they do
// not affect Resolver visibility). Call after a full buffer load and after
// any batch of newly streamed lines.
func (m *Model) RecomputeSeparators() {
	lines := m.Buffer.All()
	m.RolloverSeparators = rules.DateRolloverSeparatorIndices(lines)
	m.GapSeparators = rules.GapSeparatorIndices(lines, m.GapThreshold, true)
}

func (m *Model) markedSet() map[int]bool {
	out := make(map[int]bool)
	for _, mk := range m.Marks.All() {
		out[mk.LineIndex] = true
	}
	return out
}

// filterBypassSet returns the log indices that must pass the filter rule
// regardless of pattern match, per the AlwaysShowMarkedLines/
// AlwaysShowCriticalEvents app options. Unlike expansion children (which
// the Resolver splices in directly and never re-visits through a
// VisibilityRule at all, see internal/resolver), every index here is a
// normal line the Resolver's main pass visits exactly once — so bypassing
// the filter for it here carries no risk of the double-emission bug that
// an expansion-driven bypass set would cause.
func (m *Model) filterBypassSet() map[int]bool {
	if !m.Options.IsEnabled(options.AlwaysShowMarkedLines) && !m.Options.IsEnabled(options.AlwaysShowCriticalEvents) {
		return nil
	}
	out := make(map[int]bool)
	if m.Options.IsEnabled(options.AlwaysShowMarkedLines) {
		for idx := range m.markedSet() {
			out[idx] = true
		}
	}
	if m.Options.IsEnabled(options.AlwaysShowCriticalEvents) {
		for idx := range m.Events.CriticalEventLines() {
			out[idx] = true
		}
	}
	return out
}

// visible returns the current resolved visible-line list.
func (m *Model) visible() []resolver.VisibleLine {
	return m.Resolver.Resolve(m.Buffer)
}

// Visible returns the current resolved visible-line list, for rendering.
func (m *Model) Visible() []resolver.VisibleLine { return m.visible() }

// RebuildRules re-derives the Resolver's rule set after external callers
// (persistence restore) mutate Filter/Marks/Events/Expansions directly.
func (m *Model) RebuildRules() { m.rebuildRules() }

// VisibleCount returns the number of currently visible lines.
func (m *Model) VisibleCount() int { return len(m.visible()) }

// SetFileCount records the number of distinct input files and resets the
// file-enable rule to "every file visible". Multi-file mode (FileCount > 1)
// is what activates FileFilterRule and per-line file-id tagging.
func (m *Model) SetFileCount(n int) {
	m.FileCount = n
	enabled := make(map[int]bool, n)
	for i := 0; i < n; i++ {
		enabled[i] = true
	}
	m.FileFilterRule = rules.FileFilterRule{Enabled: enabled}
}

// ToggleFileEnabled flips whether lines from fileID are visible.
func (m *Model) ToggleFileEnabled(fileID int) {
	if m.FileFilterRule.Enabled == nil || fileID < 0 || fileID >= m.FileCount {
		return
	}
	m.FileFilterRule.Enabled[fileID] = !m.FileFilterRule.Enabled[fileID]
	m.rebuildRulesAndRestoreCursor()
}

// Resize updates the terminal dimensions and re-derives the line viewport's
// height, preserving selection via the scroll-margin discipline.
func (m *Model) Resize(width, height int) {
	m.Width = width
	m.Height = height
	lineHeight := height - reservedRows()
	if lineHeight < 1 {
		lineHeight = 1
	}
	m.Viewport.Resize(lineHeight, m.VisibleCount())
	overlayHeight := height - 6
	if overlayHeight < 1 {
		overlayHeight = 1
	}
	m.MarksList.SetViewportHeight(overlayHeight)
	m.FiltersList.SetViewportHeight(overlayHeight)
	m.EventsList.SetViewportHeight(overlayHeight)
	m.OptionsList.SetViewportHeight(overlayHeight)
}

// --- Navigation ---

func (m *Model) MoveUp()   { m.Viewport.MoveUp(m.VisibleCount()) }
func (m *Model) MoveDown() { m.Viewport.MoveDown(m.VisibleCount()) }

func (m *Model) PageUp() {
	for i := 0; i < m.Viewport.Height && m.Viewport.SelectedLine > 0; i++ {
		m.Viewport.MoveUp(m.VisibleCount())
	}
}

func (m *Model) PageDown() {
	total := m.VisibleCount()
	for i := 0; i < m.Viewport.Height && m.Viewport.SelectedLine+1 < total; i++ {
		m.Viewport.MoveDown(total)
	}
}

func (m *Model) Top() {
	m.Viewport.FollowMode = false
	m.Viewport.SelectLine(0, m.VisibleCount())
}

func (m *Model) Bottom() {
	total := m.VisibleCount()
	m.Viewport.SelectLine(total-1, total)
}

// GotoLine jumps the selection to the visible rank closest to logIndex,
// pushing the prior position onto the jump-back stack.
func (m *Model) GotoLine(logIndex int) bool {
	rank, ok := m.Resolver.LogToViewport(logIndex)
	if !ok {
		return false
	}
	m.pushJump()
	m.Viewport.FollowMode = false
	m.Viewport.SelectLine(rank, m.VisibleCount())
	return true
}

func (m *Model) pushJump() {
	selLog, _ := m.Resolver.ViewportToLog(m.Viewport.SelectedLine)
	topLog, _ := m.Resolver.ViewportToLog(m.Viewport.TopLine)
	m.Viewport.PushJump(selLog, topLog)
}

// JumpBack restores the previous jump-stack position, if any.
func (m *Model) JumpBack() bool {
	selLog, _ := m.Resolver.ViewportToLog(m.Viewport.SelectedLine)
	topLog, _ := m.Resolver.ViewportToLog(m.Viewport.TopLine)
	snap, ok := m.Viewport.JumpBack(selLog, topLog)
	if !ok {
		return false
	}
	m.restoreSnapshot(snap)
	return true
}

// JumpForward replays a jump undone by JumpBack, if any.
func (m *Model) JumpForward() bool {
	selLog, _ := m.Resolver.ViewportToLog(m.Viewport.SelectedLine)
	topLog, _ := m.Resolver.ViewportToLog(m.Viewport.TopLine)
	snap, ok := m.Viewport.JumpForward(selLog, topLog)
	if !ok {
		return false
	}
	m.restoreSnapshot(snap)
	return true
}

func (m *Model) restoreSnapshot(snap viewport.Snapshot) {
	total := m.VisibleCount()
	if rank, ok := m.Resolver.LogToViewport(snap.SelectedLogIndex); ok {
		m.Viewport.SelectLine(rank, total)
	}
	if rank, ok := m.Resolver.LogToViewport(snap.TopLogIndex); ok {
		m.Viewport.TopLine = rank
	}
}

func (m *Model) ToggleFollow()       { m.Viewport.FollowMode = !m.Viewport.FollowMode }
func (m *Model) ToggleCenterCursor() { m.Viewport.CenterCursorMode = !m.Viewport.CenterCursorMode; m.Viewport.AdjustVisible(m.VisibleCount()) }
func (m *Model) TogglePause()        { m.Viewport.PauseMode = !m.Viewport.PauseMode }
func (m *Model) ScrollHorizontal(delta int) { m.Viewport.ScrollHorizontal(delta) }

// --- Marks ---

// ToggleMarkAtSelection toggles a mark on the currently selected line.
func (m *Model) ToggleMarkAtSelection() {
	logIndex, ok := m.Resolver.ViewportToLog(m.Viewport.SelectedLine)
	if !ok {
		return
	}
	m.Marks.Toggle(logIndex)
	m.rebuildRules()
}

func (m *Model) ToggleMarksOnly() {
	m.MarksOnly = !m.MarksOnly
	m.rebuildRules()
	m.Viewport.SelectLine(m.Viewport.SelectedLine, m.VisibleCount())
}

func (m *Model) NextMark() bool {
	logIndex, _ := m.Resolver.ViewportToLog(m.Viewport.SelectedLine)
	mk, ok := m.Marks.NextAfter(logIndex)
	if !ok {
		return false
	}
	return m.GotoLine(mk.LineIndex)
}

func (m *Model) PreviousMark() bool {
	logIndex, _ := m.Resolver.ViewportToLog(m.Viewport.SelectedLine)
	mk, ok := m.Marks.PreviousBefore(logIndex)
	if !ok {
		return false
	}
	return m.GotoLine(mk.LineIndex)
}

// --- Expansion ---

// ToggleExpansionAtSelection expands or collapses the nearby hidden context
// (up to contextSize lines on either side) around the currently selected line.
func (m *Model) ToggleExpansionAtSelection(contextSize int) {
	logIndex, ok := m.Resolver.ViewportToLog(m.Viewport.SelectedLine)
	if !ok {
		return
	}
	var children []int
	for i := logIndex - contextSize; i <= logIndex+contextSize; i++ {
		if i == logIndex || i < 0 || i >= m.Buffer.TotalLines() {
			continue
		}
		if _, visible := m.Resolver.LogToViewport(i); !visible {
			children = append(children, i)
		}
	}
	m.Expansions.Toggle(logIndex, children)
	m.rebuildRules()
}

// --- Filters ---

func (m *Model) ApplyFilterText(text string) {
	m.Filter.AddFromText(text)
	m.rebuildRulesAndRestoreCursor()
}

func (m *Model) ToggleFilterMode()          { m.Filter.ToggleMode() }
func (m *Model) ToggleFilterCaseSensitive() { m.Filter.ToggleCaseSensitivity() }

func (m *Model) ToggleFilterEnabled(index int) {
	m.Filter.ToggleEnabled(index)
	m.rebuildRulesAndRestoreCursor()
}

func (m *Model) RemoveFilter(index int) {
	m.Filter.Remove(index)
	m.rebuildRulesAndRestoreCursor()
}

func (m *Model) ToggleAllFiltersEnabled() {
	m.Filter.ToggleAllEnabled()
	m.rebuildRulesAndRestoreCursor()
}

func (m *Model) TogglePatternMode(index int) {
	m.Filter.TogglePatternMode(index)
	m.rebuildRulesAndRestoreCursor()
}

func (m *Model) TogglePatternCaseSensitivity(index int) {
	m.Filter.TogglePatternCaseSensitivity(index)
	m.rebuildRulesAndRestoreCursor()
}

// rebuildRulesAndRestoreCursor implements Scenario F: after a rule change
// that may hide the currently selected line, reselect the nearest visible
// line to the one previously under the cursor.
func (m *Model) rebuildRulesAndRestoreCursor() {
	priorLog, hadSelection := m.Resolver.ViewportToLog(m.Viewport.SelectedLine)
	m.rebuildRules()
	total := m.VisibleCount()
	if !hadSelection || total == 0 {
		m.Viewport.SelectLine(m.Viewport.SelectedLine, total)
		return
	}
	if rank, ok := m.Resolver.LogToViewport(priorLog); ok {
		m.Viewport.SelectLine(rank, total)
		return
	}
	var candidates []int
	for logIdx := range m.visibleLogIndices() {
		candidates = append(candidates, logIdx)
	}
	sort.Ints(candidates)
	if closest, ok := logline.FindClosest(candidates, priorLog); ok {
		if rank, ok := m.Resolver.LogToViewport(closest); ok {
			m.Viewport.SelectLine(rank, total)
			return
		}
	}
	m.Viewport.SelectLine(m.Viewport.SelectedLine, total)
}

func (m *Model) visibleLogIndices() map[int]bool {
	out := make(map[int]bool)
	for _, vl := range m.visible() {
		out[vl.LogIndex] = true
	}
	return out
}

// --- Search ---

// ApplySearch scans the currently visible lines for pattern (Scenario A:
// a search run under an active filter only reports matches the filter
// still shows). TotalSearchMatches separately reports the count across the
// whole buffer, for the "N visible of M total" status display.
func (m *Model) ApplySearch(ctx context.Context, pattern string, caseSensitive bool) {
	m.Search.ApplyPattern(ctx, pattern, caseSensitive, m.visibleLines())
	m.Highlighter.ClearTemporaryHighlights()
	if pattern != "" {
		m.Highlighter.AddTemporaryHighlight(highlight.Pattern{
			Name:    "search",
			Matcher: event.PlainMatcher{Pattern: pattern, CaseSensitive: caseSensitive},
			Style:   highlight.PatternStyle{BgColor: "#dcdcaa", FgColor: "#1e1e1e"},
		})
	}
	if logIndex, ok := m.Search.FirstFrom(0); ok && !m.Options.IsEnabled(options.SearchDisableJumping) {
		m.GotoLine(logIndex)
	}
}

// SearchNext advances the search cursor to the next match. When
// SearchDisableJumping is enabled the match index/count still advances but
// the viewport selection is left untouched, mirroring AppOptions's
// SearchDisableJumping.
func (m *Model) SearchNext() bool {
	logIndex, ok := m.Search.Next()
	if !ok {
		return false
	}
	if m.Options.IsEnabled(options.SearchDisableJumping) {
		return true
	}
	return m.GotoLine(logIndex)
}

func (m *Model) SearchPrevious() bool {
	logIndex, ok := m.Search.Previous()
	if !ok {
		return false
	}
	if m.Options.IsEnabled(options.SearchDisableJumping) {
		return true
	}
	return m.GotoLine(logIndex)
}

// visibleLines materializes the currently visible LogLines, for components
// (search) that scan over visibility rather than raw buffer order.
func (m *Model) visibleLines() []logline.Line {
	vis := m.visible()
	lines := make([]logline.Line, 0, len(vis))
	for _, vl := range vis {
		if line, ok := m.Buffer.Get(vl.LogIndex); ok {
			lines = append(lines, line)
		}
	}
	return lines
}

// TotalSearchMatches reports the match count for the active search pattern
// across the entire buffer, including lines hidden by the current filters
// — the "total" half of the visible/total status tuple.
func (m *Model) TotalSearchMatches() int {
	if m.Search.Pattern == "" {
		return 0
	}
	return search.CountMatches(m.Buffer.All(), m.Search.Pattern, m.Search.CaseSensitive)
}

// --- Events ---

func (m *Model) RescanEvents(ctx context.Context) {
	m.Events.ScanAll(ctx, m.Buffer.All())
	m.rebuildRules()
}

func (m *Model) ToggleEventEnabled(index int) {
	m.Events.ToggleEnabled(index)
	m.rebuildRules()
}

func (m *Model) AddCustomEvent(pattern string, caseSensitive bool) bool {
	if !m.Events.AddCustomEvent(pattern, caseSensitive) {
		return false
	}
	m.rebuildRules()
	return true
}

func (m *Model) RemoveCustomEvent(name string) {
	m.Events.RemoveCustomEvent(name)
	m.rebuildRules()
}

func (m *Model) ToggleAllEventFilters() {
	m.Events.ToggleAllFilters()
	m.rebuildRules()
}

func (m *Model) SoloEventFilter(name string) {
	m.Events.SoloEventFilter(name)
	m.rebuildRules()
}

// --- Options ---

// ToggleOptionAtSelection flips the enabled state of the option at list
// position i. AlwaysShowMarkedLines/AlwaysShowCriticalEvents change the
// filter's bypass set, so the rule set is rebuilt either way.
func (m *Model) ToggleOptionAtSelection(i int) {
	m.Options.ToggleIndex(i)
	m.rebuildRulesAndRestoreCursor()
}

// --- Messages ---

type pipelineBatchMsg []ingest.ProcessedLine
type pipelineClosedMsg struct{}
type rateTickMsg time.Time
type toastClearMsg struct{}

// ErrorMsg surfaces a background or startup error to the error overlay.
// Exported so internal/tui and cmd/lazylog can report failures (a failed
// config reload, a file-load warning) through the same channel as the
// pipeline's own errors.
type ErrorMsg struct{ Err error }

// FiltersReloadedMsg carries a freshly re-parsed predefined filters file,
// delivered by config.WatchFilters via tea.Program.Send from its own
// goroutine. Patterns the user has since added interactively are untouched.
type FiltersReloadedMsg struct{ Patterns []filter.Pattern }

// ToastDuration is how long a transient footer message is shown.
const ToastDuration = 3 * time.Second

func rateTickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg { return rateTickMsg(t) })
}

func waitForBatch(p *ingest.Pipeline) tea.Cmd {
	return func() tea.Msg {
		batch, ok := <-p.Out()
		if !ok {
			return pipelineClosedMsg{}
		}
		return pipelineBatchMsg(batch)
	}
}

// Init returns the commands to start background work: the rate-refresh
// ticker and, for streaming buffers, the pipeline listener.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{rateTickCmd()}
	if m.Pipeline != nil {
		cmds = append(cmds, waitForBatch(m.Pipeline))
	}
	return tea.Batch(cmds...)
}

// HandleMessage processes every bubbletea message except tea.KeyMsg
// (dispatched instead by internal/tui's per-mode key handlers) and
// tea.WindowSizeMsg (handled via Resize). Returns the follow-up command,
// if any.
func (m *Model) HandleMessage(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case pipelineBatchMsg:
		m.foldBatch(msg)
		return waitForBatch(m.Pipeline)

	case pipelineClosedMsg:
		return m.SetToast("stream ended", false)

	case rateTickMsg:
		return rateTickCmd()

	case toastClearMsg:
		m.Toast = ""
		m.ToastIsError = false
		return nil

	case ErrorMsg:
		m.Err = msg.Err
		m.Mode = ModeErrorOverlay
		return nil

	case FiltersReloadedMsg:
		m.Filter.ReplacePredefined(msg.Patterns)
		m.rebuildRulesAndRestoreCursor()
		return m.SetToast("filters reloaded", false)
	}
	return nil
}

// foldBatch appends a pipeline batch to the buffer, implementing Scenario D
// (live ordering + follow mode) and incrementally updating search/event
// state for each new line.
func (m *Model) foldBatch(batch []ingest.ProcessedLine) {
	for _, line := range batch {
		m.RateTracker.AddLine()
		logIndex := m.Buffer.AppendLine(line.Content)
		newLine, _ := m.Buffer.Get(logIndex)
		m.Search.AppendLine(newLine)
		m.Events.ScanSingle(newLine)
	}
	m.Resolver.Invalidate()
	m.RecomputeSeparators()
	total := m.VisibleCount()
	m.Viewport.Follow(total)
}

// SetToast sets a transient footer message and returns the command that
// clears it after ToastDuration.
func (m *Model) SetToast(message string, isError bool) tea.Cmd {
	m.Toast = message
	m.ToastIsError = isError
	return tea.Tick(ToastDuration, func(time.Time) tea.Msg { return toastClearMsg{} })
}
