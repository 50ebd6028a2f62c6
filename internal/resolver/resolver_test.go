package resolver

import (
	"testing"

	"github.com/lazylog/lazylog/internal/expansion"
	"github.com/lazylog/lazylog/internal/filter"
	"github.com/lazylog/lazylog/internal/logline"
	"github.com/lazylog/lazylog/internal/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bufferOf(contents ...string) *logline.Buffer {
	b := logline.New(true)
	for _, c := range contents {
		b.AppendLine(c)
	}
	return b
}

// Scenario A — Exclude then Include.
func TestResolverExcludeThenInclude(t *testing.T) {
	buf := bufferOf("ERROR x", "INFO y", "WARN z", "ERROR q")
	patterns := []filter.Pattern{
		{Pattern: "ERROR", Mode: filter.Exclude, Enabled: true, CaseSensitive: true},
		{Pattern: "y", Mode: filter.Include, Enabled: true, CaseSensitive: true},
	}
	r := New()
	r.SetRules([]rules.VisibilityRule{filter.Rule{Patterns: patterns}}, nil)

	visible := r.Resolve(buf)
	require.Len(t, visible, 1)
	line, _ := buf.Get(visible[0].LogIndex)
	assert.Equal(t, "INFO y", line.Content)
}

// Scenario C — Expansion overrides filter.
func TestResolverExpansionOverridesFilter(t *testing.T) {
	buf := bufferOf("a", "b", "KEEP c", "d", "e")
	patterns := []filter.Pattern{{Pattern: "KEEP", Mode: filter.Include, Enabled: true, CaseSensitive: true}}

	exp := expansion.New()
	exp.Toggle(2, []int{0, 4})

	r := New()
	r.SetRules([]rules.VisibilityRule{filter.Rule{Patterns: patterns}}, nil)
	r.SetExpansions(exp)

	visible := r.Resolve(buf)
	require.Len(t, visible, 3)
	assert.Equal(t, []int{2, 0, 4}, []int{visible[0].LogIndex, visible[1].LogIndex, visible[2].LogIndex})
	assert.False(t, visible[0].HasTag(rules.TagExpanded))
	assert.True(t, visible[1].HasTag(rules.TagExpanded))
	assert.True(t, visible[2].HasTag(rules.TagExpanded))
}

func TestResolverInjectivity(t *testing.T) {
	buf := bufferOf("a", "ERROR b", "c", "ERROR d", "e")
	patterns := []filter.Pattern{{Pattern: "ERROR", Mode: filter.Exclude, Enabled: true, CaseSensitive: true}}
	r := New()
	r.SetRules([]rules.VisibilityRule{filter.Rule{Patterns: patterns}}, nil)
	visible := r.Resolve(buf)

	for rank, v := range visible {
		logIdx, ok := r.ViewportToLog(rank)
		require.True(t, ok)
		assert.Equal(t, v.LogIndex, logIdx)
		backRank, ok := r.LogToViewport(logIdx)
		require.True(t, ok)
		assert.Equal(t, rank, backRank)
	}
}

func TestResolverIncrementalAppend(t *testing.T) {
	buf := bufferOf("a", "b")
	r := New()
	r.SetRules(nil, nil)
	first := r.Resolve(buf)
	require.Len(t, first, 2)

	buf.AppendLine("c")
	second := r.Resolve(buf)
	require.Len(t, second, 3)
	assert.Equal(t, 2, second[2].LogIndex)
}

func TestResolverEmptyRulesMeansAllVisible(t *testing.T) {
	buf := bufferOf("a", "b", "c")
	r := New()
	visible := r.Resolve(buf)
	assert.Len(t, visible, 3)
}

func TestResolverUpdateMarkTagsAvoidsRebuild(t *testing.T) {
	buf := bufferOf("a", "b", "c")
	r := New()
	r.Resolve(buf)
	r.UpdateMarkTags(map[int]bool{1: true})
	visible := r.Resolve(buf)
	assert.True(t, visible[1].HasTag(rules.TagMarked))
	assert.False(t, visible[0].HasTag(rules.TagMarked))
}
