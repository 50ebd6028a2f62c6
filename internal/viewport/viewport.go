// Package viewport tracks the selected/top line, horizontal offset, and
// scroll-margin discipline for the visible-line list, plus follow, center-
// cursor, and pause modes and a bounded jump-history stack.
package viewport

// Viewport is the cursor into the currently visible-line list. All indices
// are ranks in that list, not log indices.
type Viewport struct {
	TopLine           int
	SelectedLine      int
	Height            int
	HorizontalOffset  int
	ScrollMargin      int
	FollowMode        bool
	CenterCursorMode  bool
	PauseMode         bool

	jumpBack    []Snapshot
	jumpForward []Snapshot
}

// Snapshot is a saved (selected, top) position in log-index space, used by
// the jump-history stack.
type Snapshot struct {
	SelectedLogIndex int
	TopLogIndex      int
}

const maxJumpStack = 100

// New returns a Viewport with a 2-line scroll margin, matching the
// original's default.
func New() *Viewport {
	return &Viewport{ScrollMargin: 2}
}

// Resize sets the viewport height and re-clamps against total.
func (v *Viewport) Resize(height, total int) {
	v.Height = height
	v.AdjustVisible(total)
}

// MoveUp selects the previous line, disengaging follow mode.
func (v *Viewport) MoveUp(total int) {
	if v.SelectedLine > 0 {
		v.SelectedLine--
		v.FollowMode = false
		v.AdjustVisible(total)
	}
}

// MoveDown selects the next line.
func (v *Viewport) MoveDown(total int) {
	if v.SelectedLine+1 < total {
		v.SelectedLine++
		v.AdjustVisible(total)
	}
}

// SelectLine jumps the selection to an arbitrary rank, clamped to range.
func (v *Viewport) SelectLine(line, total int) {
	if total == 0 {
		v.SelectedLine = 0
		v.AdjustVisible(total)
		return
	}
	if line < 0 {
		line = 0
	}
	if line >= total {
		line = total - 1
	}
	v.SelectedLine = line
	v.AdjustVisible(total)
}

// Visible returns the [start, end) rank range currently shown.
func (v *Viewport) Visible() (int, int) {
	return v.TopLine, v.TopLine + v.Height
}

// AdjustVisible enforces the scroll-margin / center-cursor discipline and
// clamps TopLine to [0, max(0, total-height)].
func (v *Viewport) AdjustVisible(total int) {
	if total == 0 {
		v.TopLine = 0
		v.SelectedLine = 0
		return
	}
	if v.SelectedLine >= total {
		v.SelectedLine = total - 1
	}

	switch {
	case v.CenterCursorMode:
		v.TopLine = v.SelectedLine - v.Height/2
	case v.SelectedLine < v.TopLine+v.ScrollMargin:
		v.TopLine = v.SelectedLine - v.ScrollMargin
	case v.SelectedLine > v.TopLine+v.Height-v.ScrollMargin-1:
		v.TopLine = v.SelectedLine + v.ScrollMargin + 1 - v.Height
	}

	maxTop := total - v.Height
	if maxTop < 0 {
		maxTop = 0
	}
	if v.TopLine < 0 {
		v.TopLine = 0
	}
	if v.TopLine > maxTop {
		v.TopLine = maxTop
	}
	if total <= v.Height {
		v.TopLine = 0
	}
}

// Follow pins the selection to the last line, used after an ingest batch
// fold while FollowMode is engaged.
func (v *Viewport) Follow(total int) {
	if !v.FollowMode || total == 0 {
		return
	}
	v.SelectedLine = total - 1
	v.AdjustVisible(total)
}

// ScrollHorizontal adjusts HorizontalOffset by delta, never going negative.
func (v *Viewport) ScrollHorizontal(delta int) {
	v.HorizontalOffset += delta
	if v.HorizontalOffset < 0 {
		v.HorizontalOffset = 0
	}
}

// PushJump records a snapshot on the back stack before a "large jump"
// (goto-line, goto-event, goto-mark, relocating filter change) and clears
// the forward stack, matching normal back/forward browser-history semantics.
func (v *Viewport) PushJump(selectedLogIndex, topLogIndex int) {
	v.jumpBack = append(v.jumpBack, Snapshot{selectedLogIndex, topLogIndex})
	if len(v.jumpBack) > maxJumpStack {
		v.jumpBack = v.jumpBack[len(v.jumpBack)-maxJumpStack:]
	}
	v.jumpForward = nil
}

// JumpBack pops the most recent back-stack snapshot, pushing the given
// current position onto the forward stack. Returns false if the back stack
// is empty.
func (v *Viewport) JumpBack(currentSelectedLogIndex, currentTopLogIndex int) (Snapshot, bool) {
	if len(v.jumpBack) == 0 {
		return Snapshot{}, false
	}
	last := v.jumpBack[len(v.jumpBack)-1]
	v.jumpBack = v.jumpBack[:len(v.jumpBack)-1]
	v.jumpForward = append(v.jumpForward, Snapshot{currentSelectedLogIndex, currentTopLogIndex})
	return last, true
}

// JumpForward pops the most recent forward-stack snapshot, pushing the
// given current position back onto the back stack. Returns false if the
// forward stack is empty.
func (v *Viewport) JumpForward(currentSelectedLogIndex, currentTopLogIndex int) (Snapshot, bool) {
	if len(v.jumpForward) == 0 {
		return Snapshot{}, false
	}
	last := v.jumpForward[len(v.jumpForward)-1]
	v.jumpForward = v.jumpForward[:len(v.jumpForward)-1]
	v.jumpBack = append(v.jumpBack, Snapshot{currentSelectedLogIndex, currentTopLogIndex})
	return last, true
}
