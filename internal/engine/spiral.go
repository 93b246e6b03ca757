package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/saylesss88/persway/internal/ipc"
	"github.com/saylesss88/persway/internal/layout"
	"github.com/saylesss88/persway/internal/util"
)

// spiralThrottle is the minimum spacing between spiral decisions; focus
// events inside the window are dropped to avoid split flapping.
const spiralThrottle = 50 * time.Millisecond

// spiralWorker is the single sequential consumer of the spiral queue. It
// splits each focused window along its longer edge, producing the spiral.
type spiralWorker struct {
	conn   Conn
	logger *util.Logger
	now    func() time.Time

	lastFocusedID int64
	lastDecision  time.Time
}

func (w *spiralWorker) run(ctx context.Context, queue <-chan ipc.WindowEvent) {
	w.logger.Debugf("spiral worker started")
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-queue:
			if ev.Change != ipc.ChangeFocus {
				continue
			}
			if err := w.layout(ctx, ev); err != nil {
				w.logger.Errorf("spiral layout: %v", err)
			}
		}
	}
}

func (w *spiralWorker) layout(ctx context.Context, ev ipc.WindowEvent) error {
	if !w.lastDecision.IsZero() && w.now().Sub(w.lastDecision) < spiralThrottle {
		w.logger.Debugf("spiral: throttling rapid focus events")
		return nil
	}
	w.lastDecision = w.now()

	if ev.Container.ID == w.lastFocusedID {
		w.logger.Debugf("spiral: duplicate focus for %d, skipping", ev.Container.ID)
		return nil
	}
	w.lastFocusedID = ev.Container.ID

	tree, err := w.conn.GetTree(ctx)
	if err != nil {
		return err
	}
	node := tree.FindByID(ev.Container.ID)
	if node == nil {
		w.logger.Debugf("spiral: node %d no longer exists, skipping", ev.Container.ID)
		return nil
	}
	ws := tree.WorkspaceFor(node.ID)
	if ws == nil {
		w.logger.Debugf("spiral: node %d has no workspace, skipping", node.ID)
		return nil
	}
	if layout.ReservedWorkspace(ws.Name) {
		w.logger.Debugf("spiral: skipping reserved workspace %q", ws.Name)
		return nil
	}
	if node.IsFloating() || tree.FloatingWithin(node.ID) || node.IsFullscreen() {
		return nil
	}
	if node.Layout == ipc.LayoutTabbed || node.Layout == ipc.LayoutStacked {
		return nil
	}
	if parent := tree.FindParent(node.ID); parent != nil &&
		(parent.Layout == ipc.LayoutTabbed || parent.Layout == ipc.LayoutStacked) {
		return nil
	}

	desired := ipc.LayoutSplitH
	if node.Rect.Height > node.Rect.Width {
		desired = ipc.LayoutSplitV
	}
	if node.Layout == desired {
		w.logger.Debugf("spiral: node %d already split correctly", node.ID)
		return nil
	}
	split := "split h"
	if desired == ipc.LayoutSplitV {
		split = "split v"
	}
	cmd := fmt.Sprintf("[con_id=%d] %s", node.ID, split)
	w.logger.Debugf("spiral: %s", cmd)
	return runCommand(ctx, w.conn, w.logger, cmd)
}
