package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddDeduplicates(t *testing.T) {
	h := New[string]()
	h.Add("a")
	h.Add("b")
	h.Add("a")
	assert.Equal(t, []string{"a", "b"}, h.Entries())
}

func TestAddDuplicateResetsCursor(t *testing.T) {
	h := New[string]()
	h.Add("a")
	h.Add("b")
	_, _ = h.Previous()
	_, _ = h.Previous()
	h.Add("a") // duplicate, no-op on entries, but resets cursor
	v, ok := h.Previous()
	require.True(t, ok)
	assert.Equal(t, "b", v)
}

func TestPreviousThenNextNavigation(t *testing.T) {
	h := New[string]()
	h.Add("a")
	h.Add("b")
	h.Add("c")

	v, ok := h.Previous()
	require.True(t, ok)
	assert.Equal(t, "c", v)

	v, ok = h.Previous()
	require.True(t, ok)
	assert.Equal(t, "b", v)

	v, ok = h.Next()
	require.True(t, ok)
	assert.Equal(t, "c", v)

	_, ok = h.Next()
	assert.False(t, ok, "stepping past the newest entry clears the cursor")
}

func TestPreviousOnEmptyHistory(t *testing.T) {
	h := New[int]()
	_, ok := h.Previous()
	assert.False(t, ok)
}

func TestNextWithNoCursorIsNoOp(t *testing.T) {
	h := New[int]()
	h.Add(1)
	_, ok := h.Next()
	assert.False(t, ok)
}
