package engine

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/saylesss88/persway/internal/ipc"
)

func newStackCommands(conn Conn) *stackCommands {
	return &stackCommands{conn: conn, logger: testLogger()}
}

// establishedWorkspace builds the canonical stack-main arrangement: a stack
// container with three leaves next to a main window.
func establishedWorkspace() (*ipc.Node, *ipc.Node, *ipc.Node, *ipc.Node, *ipc.Node) {
	first, second, third := leaf(6), leaf(7), leaf(8)
	stack := &ipc.Node{ID: 5, Type: ipc.NodeCon, Layout: ipc.LayoutStacked, Nodes: []*ipc.Node{first, second, third}}
	main := leaf(20)
	return stack, main, first, second, third
}

func TestStackFocusNext(t *testing.T) {
	stack, main, first, second, _ := establishedWorkspace()
	first.Visible = false
	second.Focused = true
	second.Visible = true
	stack.Nodes[2].Visible = false

	conn := &fakeConn{tree: stackTree(stack, main), workspaces: stackWorkspaces()}
	sc := newStackCommands(conn)

	if err := sc.focusAdvance(context.Background(), false); err != nil {
		t.Fatalf("focusAdvance: %v", err)
	}
	want := []string{"[con_id=8] focus"}
	if diff := cmp.Diff(want, conn.commands()); diff != "" {
		t.Fatalf("commands mismatch (-want +got):\n%s", diff)
	}
}

func TestStackFocusNextWrapsAround(t *testing.T) {
	stack, main, _, _, third := establishedWorkspace()
	third.Focused = true

	conn := &fakeConn{tree: stackTree(stack, main), workspaces: stackWorkspaces()}
	sc := newStackCommands(conn)

	if err := sc.focusAdvance(context.Background(), false); err != nil {
		t.Fatalf("focusAdvance: %v", err)
	}
	want := []string{"[con_id=6] focus"}
	if diff := cmp.Diff(want, conn.commands()); diff != "" {
		t.Fatalf("commands mismatch (-want +got):\n%s", diff)
	}
}

func TestStackFocusPrev(t *testing.T) {
	stack, main, first, _, _ := establishedWorkspace()
	first.Focused = true

	conn := &fakeConn{tree: stackTree(stack, main), workspaces: stackWorkspaces()}
	sc := newStackCommands(conn)

	if err := sc.focusAdvance(context.Background(), true); err != nil {
		t.Fatalf("focusAdvance: %v", err)
	}
	want := []string{"[con_id=8] focus"}
	if diff := cmp.Diff(want, conn.commands()); diff != "" {
		t.Fatalf("commands mismatch (-want +got):\n%s", diff)
	}
}

func TestStackFocusSingleVisibleAnchor(t *testing.T) {
	// Nothing in the stack holds focus (main does). With exactly one
	// visible stack window, the cycle anchors there.
	stack, main, first, second, third := establishedWorkspace()
	first.Visible = false
	second.Visible = true
	third.Visible = false
	main.Focused = true

	conn := &fakeConn{tree: stackTree(stack, main), workspaces: stackWorkspaces()}
	sc := newStackCommands(conn)

	if err := sc.focusAdvance(context.Background(), false); err != nil {
		t.Fatalf("focusAdvance: %v", err)
	}
	want := []string{"[con_id=8] focus"}
	if diff := cmp.Diff(want, conn.commands()); diff != "" {
		t.Fatalf("commands mismatch (-want +got):\n%s", diff)
	}
}

func TestStackFocusNoEstablishedLayout(t *testing.T) {
	// A workspace without the stack/main split is a silent no-op.
	conn := &fakeConn{tree: stackTree(leaf(10)), workspaces: stackWorkspaces()}
	sc := newStackCommands(conn)

	if err := sc.focusAdvance(context.Background(), false); err != nil {
		t.Fatalf("focusAdvance: %v", err)
	}
	if cmds := conn.commands(); len(cmds) != 0 {
		t.Fatalf("bare workspace issued commands: %v", cmds)
	}
}

func TestStackMainRotateNext(t *testing.T) {
	stack, main, _, _, _ := establishedWorkspace()
	conn := &fakeConn{tree: stackTree(stack, main), workspaces: stackWorkspaces()}
	sc := newStackCommands(conn)

	if err := sc.rotate(context.Background(), false); err != nil {
		t.Fatalf("rotate: %v", err)
	}
	want := []string{
		"[con_id=8] swap container with con_id 7; " +
			"[con_id=7] swap container with con_id 6; " +
			"[con_id=20] focus; " +
			"[con_id=20] swap container with con_id 6; " +
			"[con_id=6] focus",
	}
	if diff := cmp.Diff(want, conn.commands()); diff != "" {
		t.Fatalf("commands mismatch (-want +got):\n%s", diff)
	}
}

func TestStackMainRotatePrev(t *testing.T) {
	stack, main, _, _, _ := establishedWorkspace()
	conn := &fakeConn{tree: stackTree(stack, main), workspaces: stackWorkspaces()}
	sc := newStackCommands(conn)

	if err := sc.rotate(context.Background(), true); err != nil {
		t.Fatalf("rotate: %v", err)
	}
	want := []string{
		"[con_id=6] swap container with con_id 7; " +
			"[con_id=7] swap container with con_id 8; " +
			"[con_id=20] focus; " +
			"[con_id=20] swap container with con_id 8; " +
			"[con_id=8] focus",
	}
	if diff := cmp.Diff(want, conn.commands()); diff != "" {
		t.Fatalf("commands mismatch (-want +got):\n%s", diff)
	}
}

func TestStackMainRotateRequiresMainWindow(t *testing.T) {
	stack, _, _, _, _ := establishedWorkspace()
	// Main position holds a split container, not a window.
	notAWindow := &ipc.Node{ID: 20, Type: ipc.NodeCon, Layout: ipc.LayoutSplitH, Nodes: []*ipc.Node{leaf(21)}}
	conn := &fakeConn{tree: stackTree(stack, notAWindow), workspaces: stackWorkspaces()}
	sc := newStackCommands(conn)

	if err := sc.rotate(context.Background(), false); err == nil {
		t.Fatal("rotate succeeded without a main window")
	}
}

func TestStackSwapMain(t *testing.T) {
	stack, main, _, second, _ := establishedWorkspace()
	second.Focused = true

	conn := &fakeConn{tree: stackTree(stack, main), workspaces: stackWorkspaces()}
	sc := newStackCommands(conn)

	if err := sc.swapMain(context.Background()); err != nil {
		t.Fatalf("swapMain: %v", err)
	}
	want := []string{"[con_id=20] focus; swap container with con_id 7; [con_id=7] focus"}
	if diff := cmp.Diff(want, conn.commands()); diff != "" {
		t.Fatalf("commands mismatch (-want +got):\n%s", diff)
	}
}

func TestStackSwapMainDefaultsToFirstStackWindow(t *testing.T) {
	stack, main, first, second, third := establishedWorkspace()
	first.Visible = true
	second.Visible = true
	third.Visible = true
	main.Focused = true

	conn := &fakeConn{tree: stackTree(stack, main), workspaces: stackWorkspaces()}
	sc := newStackCommands(conn)

	if err := sc.swapMain(context.Background()); err != nil {
		t.Fatalf("swapMain: %v", err)
	}
	want := []string{"[con_id=20] focus; swap container with con_id 6; [con_id=6] focus"}
	if diff := cmp.Diff(want, conn.commands()); diff != "" {
		t.Fatalf("commands mismatch (-want +got):\n%s", diff)
	}
}
