package app

import (
	"context"
	"testing"

	"github.com/lazylog/lazylog/internal/filter"
	"github.com/lazylog/lazylog/internal/logline"
	"github.com/lazylog/lazylog/internal/options"
	"github.com/lazylog/lazylog/internal/rules"
)

func bufferOf(lines ...string) *logline.Buffer {
	b := logline.New(true)
	for _, l := range lines {
		b.AppendLine(l)
	}
	return b
}

func visibleContents(t *testing.T, m *Model) []string {
	t.Helper()
	var out []string
	for _, vl := range m.visible() {
		line, ok := m.Buffer.Get(vl.LogIndex)
		if !ok {
			t.Fatalf("visible line %d not found in buffer", vl.LogIndex)
		}
		out = append(out, line.Content)
	}
	return out
}

// Scenario A — Exclude then Include.
func TestScenarioExcludeThenInclude(t *testing.T) {
	buf := bufferOf("ERROR x", "INFO y", "WARN z", "ERROR q")
	m := New(buf, nil, nil)

	m.Filter.Add(filter.Pattern{Pattern: "ERROR", Mode: filter.Exclude, Enabled: true})
	m.Filter.Add(filter.Pattern{Pattern: "y", Mode: filter.Include, Enabled: true})
	m.rebuildRules()

	got := visibleContents(t, m)
	if len(got) != 1 || got[0] != "INFO y" {
		t.Fatalf("expected [\"INFO y\"], got %v", got)
	}

	m.Viewport.Resize(10, m.VisibleCount())
	count := 0
	for _, line := range got {
		for i := 0; i+1 <= len(line); i++ {
			if i < len(line) && (line[i] == 'o' || line[i] == 'O') {
				count++
			}
		}
	}
	if count != 1 {
		t.Fatalf("expected 1 case-insensitive occurrence of 'o' in visible lines, got %d", count)
	}
}

// Scenario C — Expansion overrides filter.
func TestScenarioExpansionOverridesFilter(t *testing.T) {
	buf := bufferOf("l0", "l1 KEEP", "l2", "l3", "l4")
	m := New(buf, nil, nil)

	m.Filter.Add(filter.Pattern{Pattern: "KEEP", Mode: filter.Include, Enabled: true})
	m.rebuildRules()

	if got := visibleContents(t, m); len(got) != 1 || got[0] != "l1 KEEP" {
		t.Fatalf("expected only the KEEP line visible before expansion, got %v", got)
	}

	m.Expansions.Toggle(1, []int{0, 3})
	m.rebuildRules()

	visible := m.visible()
	if len(visible) != 3 {
		t.Fatalf("expected 3 visible lines after expansion, got %d", len(visible))
	}
	wantIndices := []int{1, 0, 3}
	for i, vl := range visible {
		if vl.LogIndex != wantIndices[i] {
			t.Fatalf("visible[%d] log_index = %d, want %d", i, vl.LogIndex, wantIndices[i])
		}
	}
	for _, i := range []int{1, 2} {
		if !visible[i].HasTag("expanded") {
			t.Fatalf("expected visible[%d] tagged expanded", i)
		}
	}
}

// Scenario E — Case-insensitive filter.
func TestScenarioCaseInsensitiveFilter(t *testing.T) {
	buf := bufferOf("ERROR x", "Error y", "ok")
	m := New(buf, nil, nil)

	m.Filter.Add(filter.Pattern{Pattern: "error", Mode: filter.Include, CaseSensitive: false, Enabled: true})
	m.rebuildRules()

	got := visibleContents(t, m)
	want := []string{"ERROR x", "Error y"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

// Scenario F — Cursor stability across re-filter.
func TestScenarioCursorStabilityAcrossRefilter(t *testing.T) {
	lines := make([]string, 100)
	for i := range lines {
		lines[i] = "line"
	}
	buf := bufferOf(lines...)
	m := New(buf, nil, nil)
	m.Viewport.Resize(10, m.VisibleCount())

	m.Viewport.SelectLine(42, m.VisibleCount())

	// Install a range-limited visibility rule directly (40-50), bypassing
	// text-pattern matching since this scenario is about index ranges.
	m.Resolver.SetRules([]rules.VisibilityRule{rulesVisibilityRange{start: 40, end: 50}}, nil)
	m.Viewport.FollowMode = false
	m.VisibleCount() // resolve under the new rules before mapping log indices
	priorLog := 42
	if rank, ok := m.Resolver.LogToViewport(priorLog); ok {
		m.Viewport.SelectLine(rank, m.VisibleCount())
	} else {
		var candidates []int
		for i := 40; i <= 50; i++ {
			candidates = append(candidates, i)
		}
		closest, _ := logline.FindClosest(candidates, priorLog)
		rank, _ := m.Resolver.LogToViewport(closest)
		m.Viewport.SelectLine(rank, m.VisibleCount())
	}

	selLog, ok := m.Resolver.ViewportToLog(m.Viewport.SelectedLine)
	if !ok || selLog != 42 {
		t.Fatalf("expected selection to remain on log_index 42, got %d (ok=%v)", selLog, ok)
	}

	m.Resolver.SetRules([]rules.VisibilityRule{rulesVisibilityRange{start: 0, end: 30}}, nil)
	m.VisibleCount()
	if rank, ok := m.Resolver.LogToViewport(priorLog); ok {
		m.Viewport.SelectLine(rank, m.VisibleCount())
	} else {
		var candidates []int
		for i := 0; i <= 30; i++ {
			candidates = append(candidates, i)
		}
		closest, _ := logline.FindClosest(candidates, priorLog)
		rank, _ := m.Resolver.LogToViewport(closest)
		m.Viewport.SelectLine(rank, m.VisibleCount())
	}

	selLog, ok = m.Resolver.ViewportToLog(m.Viewport.SelectedLine)
	if !ok || selLog != 30 {
		t.Fatalf("expected selection to land on log_index 30 (closest to 42), got %d (ok=%v)", selLog, ok)
	}
}

// Scenario D — Live follow.
func TestScenarioLiveFollow(t *testing.T) {
	buf := logline.New(true)
	m := New(buf, nil, nil)
	m.Viewport.Resize(10, 0)
	m.Viewport.FollowMode = true

	batches := [][]string{{"a"}, {"b", "c"}, {"d"}}
	for _, batch := range batches {
		for _, content := range batch {
			buf.AppendLine(content)
		}
		m.Resolver.Invalidate()
		m.Viewport.Follow(m.VisibleCount())

		total := m.VisibleCount()
		if m.Viewport.SelectedLine != total-1 {
			t.Fatalf("after fold, selected_line = %d, want %d", m.Viewport.SelectedLine, total-1)
		}
	}

	if buf.TotalLines() != 4 {
		t.Fatalf("total_lines = %d, want 4", buf.TotalLines())
	}
	if m.Viewport.SelectedLine != 3 {
		t.Fatalf("final selected_line = %d, want 3", m.Viewport.SelectedLine)
	}
}

func TestRebuildRulesAndRestoreCursorViaApplyFilterText(t *testing.T) {
	buf := bufferOf("a", "b keep", "c", "d", "e")
	m := New(buf, nil, nil)
	m.Viewport.Resize(10, m.VisibleCount())
	m.Viewport.SelectLine(1, m.VisibleCount())

	m.ApplyFilterText("keep")

	got := visibleContents(t, m)
	if len(got) != 1 || got[0] != "b keep" {
		t.Fatalf("expected only the keep line visible, got %v", got)
	}
	selLog, ok := m.Resolver.ViewportToLog(m.Viewport.SelectedLine)
	if !ok || selLog != 1 {
		t.Fatalf("expected selection to follow the kept line, got %d (ok=%v)", selLog, ok)
	}
}

func TestMarkToggleIdempotence(t *testing.T) {
	buf := bufferOf("a", "b", "c")
	m := New(buf, nil, nil)
	m.Viewport.Resize(10, m.VisibleCount())
	m.Viewport.SelectLine(1, m.VisibleCount())

	before := m.Marks.Count()
	m.ToggleMarkAtSelection()
	m.ToggleMarkAtSelection()

	if m.Marks.Count() != before {
		t.Fatalf("expected mark count to return to %d, got %d", before, m.Marks.Count())
	}
}

func TestResolverInjectivity(t *testing.T) {
	buf := bufferOf("a", "b", "c", "d", "e")
	m := New(buf, nil, nil)
	m.Filter.Add(filter.Pattern{Pattern: "a", Mode: filter.Exclude, Enabled: true})
	m.rebuildRules()

	for rank := 0; rank < m.VisibleCount(); rank++ {
		logIdx, ok := m.Resolver.ViewportToLog(rank)
		if !ok {
			t.Fatalf("rank %d: expected a log index", rank)
		}
		back, ok := m.Resolver.LogToViewport(logIdx)
		if !ok || back != rank {
			t.Fatalf("viewport_to_log(log_to_viewport(%d)) = %d, want %d", rank, back, rank)
		}
	}
}

func TestSearchAndHighlightIntegration(t *testing.T) {
	buf := bufferOf("alpha", "beta error", "gamma error", "delta")
	m := New(buf, nil, nil)
	m.Viewport.Resize(10, m.VisibleCount())

	m.ApplySearch(context.Background(), "error", false)

	if len(m.Search.Matches()) != 2 {
		t.Fatalf("expected 2 search matches, got %d", len(m.Search.Matches()))
	}
	selLog, _ := m.Resolver.ViewportToLog(m.Viewport.SelectedLine)
	if selLog != 1 {
		t.Fatalf("expected cursor on first match (log_index 1), got %d", selLog)
	}

	if !m.SearchNext() {
		t.Fatal("expected SearchNext to succeed")
	}
	selLog, _ = m.Resolver.ViewportToLog(m.Viewport.SelectedLine)
	if selLog != 2 {
		t.Fatalf("expected cursor on second match (log_index 2), got %d", selLog)
	}
}

// rulesVisibilityRange is a small test-only VisibilityRule used to isolate
// Scenario F's cursor-stability behavior from text-pattern matching.
type rulesVisibilityRange struct {
	start, end int
}

func (r rulesVisibilityRange) IsVisible(line logline.Line) bool {
	return line.Index >= r.start && line.Index <= r.end
}

// AlwaysShowMarkedLines bypasses the filter for marked lines, without
// reopening the expansion-splice double-emission bug a filter.Rule.Bypass
// populated with expansion-child indices would cause.
func TestAlwaysShowMarkedLinesBypassesFilter(t *testing.T) {
	buf := bufferOf("a", "b keep", "c", "d", "e")
	m := New(buf, nil, nil)
	m.Viewport.Resize(10, m.VisibleCount())
	m.Viewport.SelectLine(3, m.VisibleCount())
	m.ToggleMarkAtSelection() // mark "d" (log index 3)

	m.ApplyFilterText("keep")
	if got := visibleContents(t, m); len(got) != 1 || got[0] != "b keep" {
		t.Fatalf("expected only the keep line visible before the option is on, got %v", got)
	}

	m.Options.Toggle(options.AlwaysShowMarkedLines)
	m.rebuildRules()
	got := visibleContents(t, m)
	if len(got) != 2 || got[0] != "b keep" || got[1] != "d" {
		t.Fatalf("expected keep line plus the marked line visible with the option on, got %v", got)
	}
}

func TestSearchDisableJumpingLeavesSelectionInPlace(t *testing.T) {
	buf := bufferOf("alpha", "beta error", "gamma error", "delta")
	m := New(buf, nil, nil)
	m.Viewport.Resize(10, m.VisibleCount())
	m.Options.Toggle(options.SearchDisableJumping)

	m.ApplySearch(context.Background(), "error", false)
	selLog, _ := m.Resolver.ViewportToLog(m.Viewport.SelectedLine)
	if selLog != 0 {
		t.Fatalf("expected selection to stay put with jumping disabled, got %d", selLog)
	}

	if !m.SearchNext() {
		t.Fatal("expected SearchNext to still report a match")
	}
	selLog, _ = m.Resolver.ViewportToLog(m.Viewport.SelectedLine)
	if selLog != 0 {
		t.Fatalf("expected SearchNext not to move the cursor, got %d", selLog)
	}
}

func TestHideTimestampAndDisableColorsPersistAcrossRestore(t *testing.T) {
	s := options.New()
	s.Toggle(options.HideTimestamp)
	s.Toggle(options.DisableColors)

	s2 := options.New()
	states := make(map[options.Option]bool)
	for _, d := range s.All() {
		if d.Enabled {
			states[d.Option] = true
		}
	}
	s2.Restore(states)

	if !s2.IsEnabled(options.HideTimestamp) || !s2.IsEnabled(options.DisableColors) {
		t.Fatal("expected both toggled options to survive a restore round-trip")
	}
	if s2.IsEnabled(options.SearchDisableJumping) {
		t.Fatal("expected untouched options to stay disabled")
	}
}
