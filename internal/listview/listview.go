// Package listview provides reusable selection + viewport tracking for any
// scrollable overlay list (filters, events, marks, files, options).
package listview

// State is selection plus viewport state for a single scrollable list.
type State struct {
	selectedIndex  int
	viewportOffset int
	itemCount      int
	viewportHeight int
}

// New returns a State with selection at index 0.
func New() *State { return &State{} }

func (s *State) SelectedIndex() int  { return s.selectedIndex }
func (s *State) ViewportOffset() int { return s.viewportOffset }
func (s *State) ItemCount() int      { return s.itemCount }

// SetViewportHeight records the last-rendered viewport height.
func (s *State) SetViewportHeight(h int) { s.viewportHeight = h }

// SetItemCount updates the total item count, clamping selection into range
// and re-adjusting the viewport.
func (s *State) SetItemCount(count int) {
	s.itemCount = count
	switch {
	case count > 0 && s.selectedIndex >= count:
		s.selectedIndex = count - 1
	case count == 0:
		s.selectedIndex = 0
	}
	s.adjustViewport()
}

func (s *State) adjustViewport() {
	if s.itemCount == 0 {
		s.viewportOffset = 0
		return
	}
	if s.viewportHeight == 0 {
		return
	}

	if s.selectedIndex < s.viewportOffset {
		s.viewportOffset = s.selectedIndex
	}
	bottomThreshold := s.viewportOffset + s.viewportHeight - 1
	if s.selectedIndex > bottomThreshold {
		s.viewportOffset = s.selectedIndex + 1 - s.viewportHeight
	}

	maxOffset := s.itemCount - s.viewportHeight
	if maxOffset < 0 {
		maxOffset = 0
	}
	if s.viewportOffset > maxOffset {
		s.viewportOffset = maxOffset
	}
}

// MoveUp moves the selection up by one, without wrapping.
func (s *State) MoveUp() {
	if s.itemCount > 0 && s.selectedIndex > 0 {
		s.selectedIndex--
		s.adjustViewport()
	}
}

// MoveDown moves the selection down by one, without wrapping.
func (s *State) MoveDown() {
	if s.itemCount > 0 && s.selectedIndex < s.itemCount-1 {
		s.selectedIndex++
		s.adjustViewport()
	}
}

// MoveUpWrap moves the selection up by one, wrapping to the last item.
func (s *State) MoveUpWrap() {
	if s.itemCount == 0 {
		return
	}
	if s.selectedIndex == 0 {
		s.selectedIndex = s.itemCount - 1
	} else {
		s.selectedIndex--
	}
	s.adjustViewport()
}

// MoveDownWrap moves the selection down by one, wrapping to the first item.
func (s *State) MoveDownWrap() {
	if s.itemCount == 0 {
		return
	}
	s.selectedIndex = (s.selectedIndex + 1) % s.itemCount
	s.adjustViewport()
}

func (s *State) halfPage() int {
	page := (s.viewportHeight - 1) / 2
	if page < 1 {
		page = 1
	}
	return page
}

// PageUp moves the selection up by half a page.
func (s *State) PageUp() {
	if s.itemCount == 0 {
		return
	}
	s.selectedIndex -= s.halfPage()
	if s.selectedIndex < 0 {
		s.selectedIndex = 0
	}
	s.adjustViewport()
}

// PageDown moves the selection down by half a page.
func (s *State) PageDown() {
	if s.itemCount == 0 {
		return
	}
	s.selectedIndex += s.halfPage()
	if s.selectedIndex > s.itemCount-1 {
		s.selectedIndex = s.itemCount - 1
	}
	s.adjustViewport()
}

// SelectFirst selects the first item.
func (s *State) SelectFirst() {
	if s.itemCount > 0 {
		s.selectedIndex = 0
		s.adjustViewport()
	}
}

// SelectLast selects the last item.
func (s *State) SelectLast() {
	if s.itemCount > 0 {
		s.selectedIndex = s.itemCount - 1
		s.adjustViewport()
	}
}

// SelectIndex selects a specific index, clamped to the valid range.
func (s *State) SelectIndex(index int) {
	if s.itemCount == 0 {
		return
	}
	if index > s.itemCount-1 {
		index = s.itemCount - 1
	}
	if index < 0 {
		index = 0
	}
	s.selectedIndex = index
	s.adjustViewport()
}

// Reset returns to the initial state: selection at 0, viewport at 0.
func (s *State) Reset() {
	s.selectedIndex = 0
	s.viewportOffset = 0
}
