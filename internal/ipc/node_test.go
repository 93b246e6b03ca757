package ipc

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// sampleTree builds a root with one output, one workspace, a split container
// holding two windows, and one floating window.
func sampleTree() *Node {
	return &Node{
		ID:   1,
		Type: NodeRoot,
		Nodes: []*Node{
			{
				ID:   2,
				Name: "eDP-1",
				Type: NodeOutput,
				Nodes: []*Node{
					{
						ID:     3,
						Name:   "1",
						Num:    1,
						Type:   NodeWorkspace,
						Layout: LayoutSplitH,
						Nodes: []*Node{
							{ID: 4, Type: NodeCon, AppID: "foot", Visible: true, Focused: true},
							{
								ID:     5,
								Type:   NodeCon,
								Layout: LayoutStacked,
								Nodes: []*Node{
									{ID: 6, Type: NodeCon, AppID: "firefox", Visible: true},
									{ID: 7, Type: NodeCon, Name: "Editor", WindowProperties: &WindowProperties{Class: "Emacs"}},
								},
							},
						},
						FloatingNodes: []*Node{
							{ID: 8, Type: NodeFloatingCon, AppID: "pavucontrol", Visible: true},
						},
					},
				},
			},
		},
	}
}

func TestFindByID(t *testing.T) {
	root := sampleTree()
	if got := root.FindByID(7); got == nil || got.Name != "Editor" {
		t.Fatalf("FindByID(7) = %+v", got)
	}
	if got := root.FindByID(8); got == nil || got.AppID != "pavucontrol" {
		t.Fatalf("FindByID(8) missed floating node: %+v", got)
	}
	if got := root.FindByID(99); got != nil {
		t.Fatalf("FindByID(99) = %+v, want nil for stale id", got)
	}
}

func TestPathToAndParents(t *testing.T) {
	root := sampleTree()

	path := root.PathTo(6)
	var ids []int64
	for _, node := range path {
		ids = append(ids, node.ID)
	}
	if diff := cmp.Diff([]int64{1, 2, 3, 5, 6}, ids); diff != "" {
		t.Fatalf("PathTo(6) mismatch (-want +got):\n%s", diff)
	}

	if parent := root.FindParent(6); parent == nil || parent.ID != 5 {
		t.Fatalf("FindParent(6) = %+v", parent)
	}
	if parent := root.FindParent(1); parent != nil {
		t.Fatalf("FindParent(root) = %+v, want nil", parent)
	}
	if root.PathTo(99) != nil {
		t.Fatal("PathTo(99) returned a path for a stale id")
	}
}

func TestWorkspaceAndOutputFor(t *testing.T) {
	root := sampleTree()
	if ws := root.WorkspaceFor(7); ws == nil || ws.ID != 3 {
		t.Fatalf("WorkspaceFor(7) = %+v", ws)
	}
	if out := root.OutputFor(7); out == nil || out.Name != "eDP-1" {
		t.Fatalf("OutputFor(7) = %+v", out)
	}
	if ws := root.WorkspaceFor(2); ws != nil {
		t.Fatalf("WorkspaceFor(output) = %+v, want nil", ws)
	}
}

func TestWindowPredicates(t *testing.T) {
	root := sampleTree()
	if !root.FindByID(4).IsWindow() {
		t.Fatal("leaf con not recognized as window")
	}
	if root.FindByID(5).IsWindow() {
		t.Fatal("split container recognized as window")
	}
	if !root.FindByID(8).IsFloating() {
		t.Fatal("floating con not recognized as floating")
	}
	if !root.FloatingWithin(8) {
		t.Fatal("FloatingWithin missed a floating leaf")
	}
	if root.FloatingWithin(6) {
		t.Fatal("FloatingWithin flagged a tiled leaf")
	}
	full := &Node{ID: 9, Type: NodeCon, FullscreenMode: 1}
	if !full.IsFullscreen() {
		t.Fatal("fullscreen mode not recognized")
	}
}

func TestWindowsCollection(t *testing.T) {
	root := sampleTree()
	var ids []int64
	for _, w := range root.Windows() {
		ids = append(ids, w.ID)
	}
	if diff := cmp.Diff([]int64{4, 6, 7, 8}, ids); diff != "" {
		t.Fatalf("Windows() mismatch (-want +got):\n%s", diff)
	}

	var visible []int64
	for _, w := range root.VisibleWindows() {
		visible = append(visible, w.ID)
	}
	if diff := cmp.Diff([]int64{4, 6, 8}, visible); diff != "" {
		t.Fatalf("VisibleWindows() mismatch (-want +got):\n%s", diff)
	}

	if focused := root.FocusedWindow(); focused == nil || focused.ID != 4 {
		t.Fatalf("FocusedWindow() = %+v", focused)
	}
}

func TestAppName(t *testing.T) {
	root := sampleTree()
	if got := root.FindByID(4).AppName(); got != "foot" {
		t.Fatalf("AppName wayland = %q", got)
	}
	if got := root.FindByID(7).AppName(); got != "Emacs" {
		t.Fatalf("AppName xwayland = %q", got)
	}
	name := &Node{Type: NodeCon, Name: "untitled"}
	if got := name.AppName(); got != "untitled" {
		t.Fatalf("AppName fallback = %q", got)
	}
}
