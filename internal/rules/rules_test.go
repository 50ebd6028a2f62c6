package rules

import (
	"testing"
	"time"

	"github.com/lazylog/lazylog/internal/logline"
	"github.com/stretchr/testify/assert"
)

func TestFileFilterRule(t *testing.T) {
	r := FileFilterRule{Enabled: map[int]bool{0: true}}
	assert.True(t, r.IsVisible(logline.Line{HasFileID: true, FileID: 0}))
	assert.False(t, r.IsVisible(logline.Line{HasFileID: true, FileID: 1}))
	assert.True(t, r.IsVisible(logline.Line{HasFileID: false}))
}

func TestTimeFilterRule(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	r := TimeFilterRule{Start: start, End: end, HasStart: true, HasEnd: true}

	inside := logline.Line{HasTimestamp: true, Timestamp: start.Add(time.Hour)}
	before := logline.Line{HasTimestamp: true, Timestamp: start.Add(-time.Hour)}
	after := logline.Line{HasTimestamp: true, Timestamp: end.Add(time.Hour)}
	noTS := logline.Line{HasTimestamp: false}

	assert.True(t, r.IsVisible(inside))
	assert.False(t, r.IsVisible(before))
	assert.False(t, r.IsVisible(after))
	assert.True(t, r.IsVisible(noTS))
}

func TestMarksOnlyRule(t *testing.T) {
	r := MarksOnlyRule{Active: true, MarkedLines: map[int]bool{2: true}}
	assert.True(t, r.IsVisible(logline.Line{Index: 2}))
	assert.False(t, r.IsVisible(logline.Line{Index: 3}))

	inactive := MarksOnlyRule{Active: false}
	assert.True(t, inactive.IsVisible(logline.Line{Index: 3}))
}

func TestGapSeparatorIndices(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	lines := []logline.Line{
		{Index: 0, HasTimestamp: true, Timestamp: base},
		{Index: 1, HasTimestamp: true, Timestamp: base.Add(1 * time.Second)},
		{Index: 2, HasTimestamp: true, Timestamp: base.Add(10 * time.Minute)},
	}
	gaps := GapSeparatorIndices(lines, 5*time.Minute, false)
	assert.True(t, gaps[2])
	assert.False(t, gaps[1])
}

func TestGapSeparatorSkipsInherited(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	lines := []logline.Line{
		{Index: 0, HasTimestamp: true, Timestamp: base},
		{Index: 1, HasTimestamp: true, Timestamp: base.Add(10 * time.Minute), TimestampInherited: true},
	}
	gaps := GapSeparatorIndices(lines, 5*time.Minute, false)
	assert.False(t, gaps[1])
}

func TestDateRolloverSeparatorIndices(t *testing.T) {
	d1 := time.Date(2024, 1, 1, 23, 59, 0, 0, time.UTC)
	d2 := time.Date(2024, 1, 2, 0, 1, 0, 0, time.UTC)
	lines := []logline.Line{
		{Index: 0, HasTimestamp: true, Timestamp: d1},
		{Index: 1, HasTimestamp: true, Timestamp: d2},
	}
	rollover := DateRolloverSeparatorIndices(lines)
	assert.True(t, rollover[1])
	assert.False(t, rollover[0])
}
