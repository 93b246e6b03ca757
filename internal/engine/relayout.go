package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/saylesss88/persway/internal/ipc"
	"github.com/saylesss88/persway/internal/layout"
)

// relayoutWorkspace rebuilds a workspace's arrangement under its new policy.
// It vacates the workspace by pulling the temporary workspace onto its
// output, then moves every captured window back in reverse order, one by
// one, so each re-enters as a fresh new-window event and the active policy
// lays it out again. The compositor acknowledges none of the intermediate
// steps; fixed settle delays stand in for sequencing.
func (e *Engine) relayoutWorkspace(ctx context.Context, wsNum int) error {
	opts := e.options()

	tree, err := e.conn.GetTree(ctx)
	if err != nil {
		return err
	}
	workspaces, err := e.conn.GetWorkspaces(ctx)
	if err != nil {
		return err
	}

	wsNode := tree.Find(func(n *ipc.Node) bool {
		return n.Type == ipc.NodeWorkspace && n.Num == wsNum
	})
	if wsNode == nil {
		return fmt.Errorf("workspace %d not found", wsNum)
	}
	output := tree.OutputFor(wsNode.ID)
	if output == nil {
		return fmt.Errorf("no output hosts workspace %d", wsNum)
	}
	focused, err := focusedEntry(workspaces)
	if err != nil {
		return err
	}
	windows := wsNode.Windows()

	cmd := fmt.Sprintf("workspace %s; move workspace to output %d", layout.TempWorkspace, output.ID)
	e.logger.Debugf("relayout: vacate via %q", cmd)
	if err := runCommand(ctx, e.conn, e.logger, cmd); err != nil {
		return err
	}
	if err := sleepCtx(ctx, opts.Settle); err != nil {
		return err
	}

	// Reverse capture order so the original front window re-enters last and
	// ends up where the insertion algorithm puts the newest window.
	for i := len(windows) - 1; i >= 0; i-- {
		w := windows[i]
		cmd := fmt.Sprintf("[con_id=%d] move to workspace number %d; [con_id=%d] focus", w.ID, wsNum, w.ID)
		if err := runCommand(ctx, e.conn, e.logger, cmd); err != nil {
			return err
		}
		if err := sleepCtx(ctx, opts.MoveDelay); err != nil {
			return err
		}
	}
	if err := sleepCtx(ctx, opts.Settle); err != nil {
		return err
	}

	after, err := e.conn.GetWorkspaces(ctx)
	if err != nil {
		return err
	}
	focusedAfter, err := focusedEntry(after)
	if err != nil {
		return err
	}
	var b strings.Builder
	if focusedAfter.Num != focused.Num {
		fmt.Fprintf(&b, "workspace number %d; move workspace to output %d; ", focused.Num, output.ID)
	}
	fmt.Fprintf(&b, "rename workspace to %s", focused.Name)
	e.logger.Debugf("relayout: restore via %q", b.String())
	return runCommand(ctx, e.conn, e.logger, b.String())
}

func focusedEntry(workspaces []ipc.Workspace) (ipc.Workspace, error) {
	for _, ws := range workspaces {
		if ws.Focused {
			return ws, nil
		}
	}
	return ipc.Workspace{}, fmt.Errorf("no focused workspace")
}
