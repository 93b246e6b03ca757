package engine

import (
	"context"
	"fmt"

	"github.com/saylesss88/persway/internal/ipc"
	"github.com/saylesss88/persway/internal/layout"
	"github.com/saylesss88/persway/internal/util"
)

// stackMain reacts to window lifecycle events on a stack-main workspace.
// It keeps no state across events; every invocation re-reads the tree.
// Once established, the workspace's top level holds exactly two groups:
// the stack container first and the main window last.
type stackMain struct {
	conn        Conn
	logger      *util.Logger
	size        int
	arrangement layout.Arrangement
}

func (m *stackMain) handle(ctx context.Context, ev ipc.WindowEvent) {
	var err error
	switch ev.Change {
	case ipc.ChangeNew:
		err = m.onNewWindow(ctx, &ev)
	case ipc.ChangeClose:
		err = m.onCloseWindow(ctx, &ev)
	case ipc.ChangeMove:
		err = m.onMoveWindow(ctx, &ev)
	case ipc.ChangeFloating:
		// Floating removes the window from the managed arrangement; docking
		// re-inserts it as if freshly created.
		if ev.Container.IsFloating() {
			err = m.onCloseWindow(ctx, &ev)
		} else {
			err = m.onNewWindow(ctx, &ev)
		}
	default:
		m.logger.Debugf("stack-main: ignoring %s event", ev.Change)
		return
	}
	if err != nil {
		m.logger.Errorf("stack-main %s: %v", ev.Change, err)
	}
}

// arrangementClause converts the stack into its configured presentation.
func (m *stackMain) arrangementClause() string {
	switch m.arrangement {
	case layout.ArrangementTabbed:
		return "split v; layout tabbed"
	case layout.ArrangementStacked:
		return "split v; layout stacking"
	default:
		return "split v"
	}
}

func (m *stackMain) onNewWindow(ctx context.Context, ev *ipc.WindowEvent) error {
	tree, err := m.conn.GetTree(ctx)
	if err != nil {
		return err
	}
	node := tree.FindByID(ev.Container.ID)
	if node == nil {
		m.logger.Debugf("stack-main: new window %d already gone", ev.Container.ID)
		return nil
	}
	ws := tree.WorkspaceFor(node.ID)
	if ws == nil {
		m.logger.Debugf("stack-main: window %d has no workspace", node.ID)
		return nil
	}
	if layout.ReservedWorkspace(ws.Name) {
		return nil
	}
	if node.IsFloating() || node.IsFullscreen() {
		return nil
	}

	switch len(ws.Nodes) {
	case 1:
		// First window: bootstrap the main/stack split.
		cmd := fmt.Sprintf("[con_id=%d] focus; split h", ev.Container.ID)
		return runCommand(ctx, m.conn, m.logger, cmd)
	case 2:
		main := ws.Nodes[len(ws.Nodes)-1]
		stack := ws.Nodes[0]
		var cmd string
		switch {
		case stack.IsWindow():
			// Second window: convert the bare leaf into the stack container.
			cmd = fmt.Sprintf("[con_id=%d] focus; %s; resize set width %d; [con_id=%d] focus",
				stack.ID, m.arrangementClause(), 100-m.size, main.ID)
		case stack.FindByID(ev.Container.ID) != nil:
			// The new window landed inside the stack: promote it to main.
			cmd = fmt.Sprintf("[con_id=%d] focus; swap container with con_id %d; [con_id=%d] focus",
				main.ID, ev.Container.ID, ev.Container.ID)
		default:
			cmd = "nop event container not in stack"
		}
		return runCommand(ctx, m.conn, m.logger, cmd)
	case 3:
		// Stack + main + fresh leaf: merge the leaf into the stack via a
		// mark, then swap it with main so the newest window takes over.
		var main *ipc.Node
		for _, n := range ws.Nodes[1:] {
			if n.IsWindow() && n.ID != ev.Container.ID {
				main = n
				break
			}
		}
		if main == nil {
			return fmt.Errorf("main window not found on workspace %d", ws.Num)
		}
		stack := ws.Nodes[0]
		mark := fmt.Sprintf("_stack_%d", stack.ID)
		cmd := fmt.Sprintf(
			"[con_id=%d] mark --add %s; [con_id=%d] focus; move container to mark %s; [con_mark=%s] unmark %s; [con_id=%d] focus; swap container with con_id %d; [con_id=%d] focus",
			stack.ID, mark,
			ev.Container.ID, mark,
			mark, mark,
			main.ID, ev.Container.ID,
			ev.Container.ID)
		m.logger.Debugf("stack-main new: %s", cmd)
		return runCommand(ctx, m.conn, m.logger, cmd)
	default:
		return nil
	}
}

func (m *stackMain) onCloseWindow(ctx context.Context, ev *ipc.WindowEvent) error {
	tree, err := m.conn.GetTree(ctx)
	if err != nil {
		return err
	}
	ws, err := focusedWorkspace(ctx, m.conn)
	if err != nil {
		return err
	}
	if layout.ReservedWorkspace(ws.Name) {
		return nil
	}
	wsNode := tree.FindByID(ws.ID)
	if wsNode == nil {
		m.logger.Debugf("stack-main: focused workspace %d missing from tree", ws.ID)
		return nil
	}
	if len(wsNode.Nodes) != 1 {
		return nil
	}
	stack := wsNode.Nodes[0]
	if stack.ID == ev.Container.ID {
		return nil
	}

	current := stack.FocusedWindow()
	if current == nil {
		if visible := stack.VisibleWindows(); len(visible) > 0 {
			current = visible[0]
		}
	}
	if current == nil {
		return fmt.Errorf("no focused or visible window left in stack on workspace %d", ws.Num)
	}

	var cmd string
	if len(wsNode.Windows()) == 1 {
		// Last window standing: dissolve the stack container.
		cmd = fmt.Sprintf("[con_id=%d] focus; layout splith; move up", current.ID)
	} else {
		// Pull the stack's current window over as the new main.
		cmd = fmt.Sprintf("[con_id=%d] focus; move right; resize set width %d", current.ID, m.size)
	}
	m.logger.Debugf("stack-main close: %s", cmd)
	return runCommand(ctx, m.conn, m.logger, cmd)
}

func (m *stackMain) onMoveWindow(ctx context.Context, ev *ipc.WindowEvent) error {
	tree, err := m.conn.GetTree(ctx)
	if err != nil {
		return err
	}
	node := tree.FindByID(ev.Container.ID)
	if node == nil {
		m.logger.Debugf("stack-main: moved window %d already gone", ev.Container.ID)
		return nil
	}
	ws := tree.WorkspaceFor(node.ID)
	if ws == nil {
		// The window left every workspace we can see; treat as a close on
		// the event's original workspace.
		return m.onCloseWindow(ctx, ev)
	}
	if layout.ReservedWorkspace(ws.Name) {
		return nil
	}
	if node.IsFloating() || node.IsFullscreen() {
		return nil
	}

	focused, err := focusedWorkspace(ctx, m.conn)
	if err != nil {
		return err
	}
	if ws.ID == focused.ID {
		// Moved within the focused workspace: re-run insertion in place.
		return m.onNewWindow(ctx, ev)
	}
	// Moved away: insert at the destination, then tidy the source.
	if err := m.onNewWindow(ctx, ev); err != nil {
		return err
	}
	return m.onCloseWindow(ctx, ev)
}
