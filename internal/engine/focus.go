package engine

import (
	"context"
	"fmt"

	"github.com/saylesss88/persway/internal/ipc"
	"github.com/saylesss88/persway/internal/util"
)

// focusTracker runs the user's focus hooks and remembers which window held
// focus last, so the leave hook can target it when focus moves on.
type focusTracker struct {
	conn   Conn
	logger *util.Logger

	previouslyFocusedID int64
}

// Handle processes one window event. Hooks are optional; empty commands are
// skipped. Hook failures are routine (the target may already be gone) and
// are logged at debug level only.
func (t *focusTracker) Handle(ctx context.Context, ev ipc.WindowEvent, onFocus, onLeave string) {
	switch ev.Change {
	case ipc.ChangeFocus:
		if prev := t.previouslyFocusedID; prev != 0 && prev != ev.Container.ID {
			t.run(ctx, onLeave, "focus-leave", prev)
		}
		// Untargeted: applies to the window that just took focus.
		t.run(ctx, onFocus, "focus", 0)
		t.previouslyFocusedID = ev.Container.ID
	case ipc.ChangeClose:
		// Never address a dead id later.
		if t.previouslyFocusedID == ev.Container.ID {
			t.previouslyFocusedID = 0
		}
	}
}

func (t *focusTracker) run(ctx context.Context, hook, what string, target int64) {
	if hook == "" {
		return
	}
	cmd := hook
	if target != 0 {
		cmd = fmt.Sprintf("[con_id=%d] %s", target, hook)
	}
	if err := runCommand(ctx, t.conn, t.logger, cmd); err != nil {
		t.logger.Debugf("%s hook: %v", what, err)
	}
}
