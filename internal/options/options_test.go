package options

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStoreEveryOptionDisabled(t *testing.T) {
	s := New()
	for _, d := range s.All() {
		assert.False(t, d.Enabled, "%v should start disabled", d.Option)
	}
}

func TestToggleFlipsState(t *testing.T) {
	s := New()
	require.False(t, s.IsEnabled(DisableColors))
	s.Toggle(DisableColors)
	assert.True(t, s.IsEnabled(DisableColors))
	s.Toggle(DisableColors)
	assert.False(t, s.IsEnabled(DisableColors))
}

func TestToggleIndexOutOfRangeIsNoOp(t *testing.T) {
	s := New()
	s.ToggleIndex(-1)
	s.ToggleIndex(s.Count())
	for _, d := range s.All() {
		assert.False(t, d.Enabled)
	}
}

func TestApplyToLineStripsSyslogPrefix(t *testing.T) {
	s := New()
	s.Toggle(HideTimestamp)
	got := s.ApplyToLine("Jan 02 15:04:05 myhost something happened")
	assert.Equal(t, "something happened", got)
}

func TestApplyToLineStripsISO8601Prefix(t *testing.T) {
	s := New()
	s.Toggle(HideTimestamp)
	got := s.ApplyToLine("2024-01-02T15:04:05.123+0000 something happened")
	assert.Equal(t, "something happened", got)
}

func TestApplyToLineNoMatchReturnsUnchanged(t *testing.T) {
	s := New()
	s.Toggle(HideTimestamp)
	assert.Equal(t, "plain line", s.ApplyToLine("plain line"))
}

func TestApplyToLineDisabledReturnsUnchanged(t *testing.T) {
	s := New()
	line := "Jan 02 15:04:05 myhost something happened"
	assert.Equal(t, line, s.ApplyToLine(line))
}

func TestParseOptionRoundTrips(t *testing.T) {
	for _, d := range New().All() {
		name := d.Option.String()
		parsed, ok := ParseOption(name)
		require.True(t, ok)
		assert.Equal(t, d.Option, parsed)
	}
	_, ok := ParseOption("does_not_exist")
	assert.False(t, ok)
}

func TestRestoreAppliesKnownOptions(t *testing.T) {
	s := New()
	s.Restore(map[Option]bool{DisableColors: true})
	assert.True(t, s.IsEnabled(DisableColors))
	assert.False(t, s.IsEnabled(HideTimestamp))
}
