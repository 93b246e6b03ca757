package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/saylesss88/persway/internal/layout"
)

// renameWorkspaces renames the focused numbered workspace after its windows:
// "<num>: <app>|<app>", or just the bare number when the workspace is empty.
// Fired from the debounce timer, never directly from the event loop.
func (e *Engine) renameWorkspaces(ctx context.Context) error {
	tree, err := e.conn.GetTree(ctx)
	if err != nil {
		return err
	}
	ws, err := focusedWorkspace(ctx, e.conn)
	if err != nil {
		return err
	}
	if ws.Num < 0 || layout.ReservedWorkspace(ws.Name) {
		return nil
	}
	wsNode := tree.FindByID(ws.ID)
	if wsNode == nil {
		return nil
	}

	seen := make(map[string]bool)
	var apps []string
	for _, w := range wsNode.Windows() {
		name := w.AppName()
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		apps = append(apps, name)
	}

	newName := fmt.Sprintf("%d", ws.Num)
	if len(apps) > 0 {
		newName = fmt.Sprintf("%d: %s", ws.Num, strings.Join(apps, "|"))
	}
	if newName == ws.Name {
		return nil
	}
	cmd := fmt.Sprintf("rename workspace %q to %q", ws.Name, newName)
	e.logger.Debugf("renamer: %s", cmd)
	return runCommand(ctx, e.conn, e.logger, cmd)
}
