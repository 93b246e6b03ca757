package engine

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/saylesss88/persway/internal/ipc"
)

func TestFocusTrackerRunsHooks(t *testing.T) {
	conn := &fakeConn{}
	tracker := &focusTracker{conn: conn, logger: testLogger()}
	ctx := context.Background()

	// First focus: no previous window, only the focus hook fires.
	tracker.Handle(ctx, focusEvent(10), "opacity 1", "opacity 0.9")
	want := []string{"opacity 1"}
	if diff := cmp.Diff(want, conn.commands()); diff != "" {
		t.Fatalf("commands mismatch (-want +got):\n%s", diff)
	}

	// Focus moving on: the leave hook targets the previous window.
	conn.reset()
	tracker.Handle(ctx, focusEvent(11), "opacity 1", "opacity 0.9")
	want = []string{"[con_id=10] opacity 0.9", "opacity 1"}
	if diff := cmp.Diff(want, conn.commands()); diff != "" {
		t.Fatalf("commands mismatch (-want +got):\n%s", diff)
	}
}

func TestFocusTrackerSkipsRepeatedFocus(t *testing.T) {
	conn := &fakeConn{}
	tracker := &focusTracker{conn: conn, logger: testLogger()}
	ctx := context.Background()

	tracker.Handle(ctx, focusEvent(10), "opacity 1", "opacity 0.9")
	conn.reset()

	// Same window again: no leave hook for itself.
	tracker.Handle(ctx, focusEvent(10), "opacity 1", "opacity 0.9")
	want := []string{"opacity 1"}
	if diff := cmp.Diff(want, conn.commands()); diff != "" {
		t.Fatalf("commands mismatch (-want +got):\n%s", diff)
	}
}

func TestFocusTrackerForgetsClosedWindow(t *testing.T) {
	conn := &fakeConn{}
	tracker := &focusTracker{conn: conn, logger: testLogger()}
	ctx := context.Background()

	tracker.Handle(ctx, focusEvent(10), "", "opacity 0.9")
	conn.reset()

	// The previously focused window closes; the leave hook must never
	// target its dead id afterwards.
	tracker.Handle(ctx, ipc.WindowEvent{Change: ipc.ChangeClose, Container: ipc.Node{ID: 10}}, "", "opacity 0.9")
	tracker.Handle(ctx, focusEvent(11), "", "opacity 0.9")
	if cmds := conn.commands(); len(cmds) != 0 {
		t.Fatalf("leave hook targeted a closed window: %v", cmds)
	}
}

func TestFocusTrackerEmptyHooks(t *testing.T) {
	conn := &fakeConn{}
	tracker := &focusTracker{conn: conn, logger: testLogger()}
	ctx := context.Background()

	tracker.Handle(ctx, focusEvent(10), "", "")
	tracker.Handle(ctx, focusEvent(11), "", "")
	if cmds := conn.commands(); len(cmds) != 0 {
		t.Fatalf("empty hooks issued commands: %v", cmds)
	}
}
