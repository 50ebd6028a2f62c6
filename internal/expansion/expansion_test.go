package expansion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleInstallsThenRemoves(t *testing.T) {
	s := New()
	s.Toggle(2, []int{0, 4})
	children, ok := s.Children(2)
	require.True(t, ok)
	assert.Equal(t, []int{0, 4}, children)

	s.Toggle(2, []int{0, 4})
	_, ok = s.Children(2)
	assert.False(t, ok)
}

func TestToggleEmptyListIsNoOp(t *testing.T) {
	s := New()
	s.Toggle(2, nil)
	_, ok := s.Children(2)
	assert.False(t, ok)
}

func TestFindParent(t *testing.T) {
	s := New()
	s.Toggle(2, []int{0, 4})
	parent, ok := s.FindParent(4)
	require.True(t, ok)
	assert.Equal(t, 2, parent)

	_, ok = s.FindParent(99)
	assert.False(t, ok)
}

func TestTotalExpandedLines(t *testing.T) {
	s := New()
	s.Toggle(2, []int{0, 4})
	s.Toggle(7, []int{5, 6, 8})
	assert.Equal(t, 5, s.TotalExpandedLines())
}
