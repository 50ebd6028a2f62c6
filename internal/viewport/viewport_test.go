package viewport

import "testing"

func TestAdjustVisibleScrollsDownNearBottom(t *testing.T) {
	v := New()
	v.Height = 10
	v.SelectedLine = 15
	v.AdjustVisible(100)
	if v.SelectedLine-v.TopLine >= v.Height {
		t.Fatalf("selected line %d not within viewport starting at %d height %d", v.SelectedLine, v.TopLine, v.Height)
	}
}

func TestAdjustVisibleClampsTopToTotal(t *testing.T) {
	v := New()
	v.Height = 10
	v.SelectLine(3, 5)
	if v.TopLine != 0 {
		t.Fatalf("expected top line 0 when total <= height, got %d", v.TopLine)
	}
}

func TestMoveUpDisengagesFollow(t *testing.T) {
	v := New()
	v.Height = 10
	v.FollowMode = true
	v.SelectedLine = 5
	v.MoveUp(20)
	if v.FollowMode {
		t.Fatal("expected follow mode to disengage after MoveUp")
	}
}

func TestFollowPinsToLastLine(t *testing.T) {
	v := New()
	v.Height = 5
	v.FollowMode = true
	v.Follow(3)
	if v.SelectedLine != 2 {
		t.Fatalf("expected selected line 2, got %d", v.SelectedLine)
	}
	v.Follow(10)
	if v.SelectedLine != 9 {
		t.Fatalf("expected selected line 9, got %d", v.SelectedLine)
	}
}

func TestCenterCursorMode(t *testing.T) {
	v := New()
	v.Height = 10
	v.CenterCursorMode = true
	v.SelectLine(50, 100)
	if v.TopLine != 45 {
		t.Fatalf("expected top line 45, got %d", v.TopLine)
	}
}

func TestJumpStackBackAndForward(t *testing.T) {
	v := New()
	v.PushJump(10, 5)
	v.PushJump(20, 15)

	snap, ok := v.JumpBack(30, 25)
	if !ok || snap.SelectedLogIndex != 20 {
		t.Fatalf("expected back jump to index 20, got %+v ok=%v", snap, ok)
	}

	snap, ok = v.JumpForward(20, 15)
	if !ok || snap.SelectedLogIndex != 30 {
		t.Fatalf("expected forward jump to index 30, got %+v ok=%v", snap, ok)
	}
}

func TestPushJumpClearsForwardStack(t *testing.T) {
	v := New()
	v.PushJump(1, 0)
	v.JumpBack(2, 1)
	v.PushJump(3, 2)
	if _, ok := v.JumpForward(3, 2); ok {
		t.Fatal("expected forward stack to be cleared by a new PushJump")
	}
}

func TestAdjustVisibleEmptyTotal(t *testing.T) {
	v := New()
	v.Height = 10
	v.SelectedLine = 5
	v.AdjustVisible(0)
	if v.TopLine != 0 || v.SelectedLine != 0 {
		t.Fatalf("expected reset to zero, got top=%d selected=%d", v.TopLine, v.SelectedLine)
	}
}
