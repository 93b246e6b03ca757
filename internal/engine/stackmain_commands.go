package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/saylesss88/persway/internal/ipc"
	"github.com/saylesss88/persway/internal/util"
)

// stackCommands implements the interactive stack-main operations reachable
// only through the control socket.
type stackCommands struct {
	conn   Conn
	logger *util.Logger
}

// workspaceGroups resolves the focused workspace's stack container and main
// node from a fresh snapshot. A workspace without the two established
// top-level groups yields nil groups, not an error; commands on it no-op.
func (c *stackCommands) workspaceGroups(ctx context.Context) (stack, main *ipc.Node, err error) {
	tree, err := c.conn.GetTree(ctx)
	if err != nil {
		return nil, nil, err
	}
	ws, err := focusedWorkspace(ctx, c.conn)
	if err != nil {
		return nil, nil, err
	}
	wsNode := tree.FindByID(ws.ID)
	if wsNode == nil {
		return nil, nil, fmt.Errorf("focused workspace %d vanished from tree", ws.Num)
	}
	if len(wsNode.Nodes) < 2 {
		return nil, nil, nil
	}
	return wsNode.Nodes[0], wsNode.Nodes[len(wsNode.Nodes)-1], nil
}

// anchor picks the stack's "current" node: the focused leaf, else the only
// visible leaf, else the given fallback edge. The returned node is always
// one of the stack's direct children so that it has a cycle position.
func anchor(stack *ipc.Node, fallback *ipc.Node) *ipc.Node {
	target := stack.FocusedWindow()
	if target == nil {
		if visible := stack.VisibleWindows(); len(visible) == 1 {
			target = visible[0]
		}
	}
	if target == nil {
		return fallback
	}
	// The focused/visible leaf may be nested; anchor on the top-level child
	// holding it.
	for _, child := range stack.Nodes {
		if child.FindByID(target.ID) != nil {
			return child
		}
	}
	return fallback
}

// focusAdvance cycles focus through the stack's children, wrapping around.
func (c *stackCommands) focusAdvance(ctx context.Context, reverse bool) error {
	stack, _, err := c.workspaceGroups(ctx)
	if err != nil {
		return err
	}
	if stack == nil || len(stack.Nodes) == 0 {
		return nil
	}

	fallback := stack.Nodes[len(stack.Nodes)-1]
	if reverse {
		fallback = stack.Nodes[0]
	}
	current := anchor(stack, fallback)

	order := stack.Nodes
	if reverse {
		order = make([]*ipc.Node, len(stack.Nodes))
		for i, n := range stack.Nodes {
			order[len(order)-1-i] = n
		}
	}
	idx := 0
	for i, n := range order {
		if n.ID == current.ID {
			idx = i
			break
		}
	}
	next := order[(idx+1)%len(order)]
	cmd := fmt.Sprintf("[con_id=%d] focus", next.ID)
	c.logger.Debugf("stack focus advance: %s", cmd)
	return runCommand(ctx, c.conn, c.logger, cmd)
}

// rotate shifts every stack window by one position through chained pairwise
// swaps, then swaps main against the stack's new edge, completing a full
// rotation that includes main.
func (c *stackCommands) rotate(ctx context.Context, reverse bool) error {
	stack, main, err := c.workspaceGroups(ctx)
	if err != nil {
		return err
	}
	if stack == nil {
		return nil
	}
	if main == nil || !main.IsWindow() {
		return fmt.Errorf("main window not found on focused workspace")
	}
	leaves := stack.Windows()
	if len(leaves) == 0 {
		return nil
	}

	var clauses []string
	swap := func(a, b *ipc.Node) {
		clauses = append(clauses, fmt.Sprintf("[con_id=%d] swap container with con_id %d", a.ID, b.ID))
	}
	var edge *ipc.Node
	if reverse {
		for i := 0; i < len(leaves)-1; i++ {
			swap(leaves[i], leaves[i+1])
		}
		edge = leaves[len(leaves)-1]
	} else {
		for i := len(leaves) - 1; i > 0; i-- {
			swap(leaves[i], leaves[i-1])
		}
		edge = leaves[0]
	}
	// After the shift the original edge leaf sits at the re-entry position;
	// trading it with main closes the cycle.
	clauses = append(clauses,
		fmt.Sprintf("[con_id=%d] focus", main.ID),
		fmt.Sprintf("[con_id=%d] swap container with con_id %d", main.ID, edge.ID),
		fmt.Sprintf("[con_id=%d] focus", edge.ID),
	)
	cmd := strings.Join(clauses, "; ")
	c.logger.Debugf("stack-main rotate: %s", cmd)
	return runCommand(ctx, c.conn, c.logger, cmd)
}

// swapMain exchanges main with the stack's current window and follows focus.
func (c *stackCommands) swapMain(ctx context.Context) error {
	stack, main, err := c.workspaceGroups(ctx)
	if err != nil {
		return err
	}
	if stack == nil || len(stack.Nodes) == 0 {
		return nil
	}
	if main == nil || !main.IsWindow() {
		return fmt.Errorf("main window not found on focused workspace")
	}
	current := anchor(stack, stack.Nodes[0])
	cmd := fmt.Sprintf("[con_id=%d] focus; swap container with con_id %d; [con_id=%d] focus",
		main.ID, current.ID, current.ID)
	c.logger.Debugf("stack swap main: %s", cmd)
	return runCommand(ctx, c.conn, c.logger, cmd)
}
