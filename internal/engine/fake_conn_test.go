package engine

import (
	"context"
	"sync"

	"github.com/saylesss88/persway/internal/ipc"
	"github.com/saylesss88/persway/internal/util"
)

// fakeConn serves canned snapshots and records every command string issued
// against it.
type fakeConn struct {
	mu         sync.Mutex
	tree       *ipc.Node
	workspaces []ipc.Workspace
	cmds       []string

	treeErr error
	wsErr   error
	cmdErr  error
	results []ipc.CommandResult
}

func (f *fakeConn) GetTree(ctx context.Context) (*ipc.Node, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.treeErr != nil {
		return nil, f.treeErr
	}
	return f.tree, nil
}

func (f *fakeConn) GetWorkspaces(ctx context.Context) ([]ipc.Workspace, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.wsErr != nil {
		return nil, f.wsErr
	}
	return f.workspaces, nil
}

func (f *fakeConn) RunCommand(ctx context.Context, command string) ([]ipc.CommandResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cmdErr != nil {
		return nil, f.cmdErr
	}
	f.cmds = append(f.cmds, command)
	if f.results != nil {
		return f.results, nil
	}
	return []ipc.CommandResult{{Success: true}}, nil
}

func (f *fakeConn) commands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.cmds...)
}

func (f *fakeConn) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cmds = nil
}

func testLogger() *util.Logger {
	return util.NewLogger(util.LevelError)
}
