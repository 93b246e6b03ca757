package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/saylesss88/persway/internal/control"
	"github.com/saylesss88/persway/internal/ipc"
	"github.com/saylesss88/persway/internal/layout"
	"github.com/saylesss88/persway/internal/util"
)

// Conn is the slice of the compositor client the engine needs. Every read
// through it is a snapshot: referenced ids may already be gone by the time a
// command is issued.
type Conn interface {
	GetTree(ctx context.Context) (*ipc.Node, error)
	GetWorkspaces(ctx context.Context) ([]ipc.Workspace, error)
	RunCommand(ctx context.Context, command string) ([]ipc.CommandResult, error)
}

// Queue capacities. Both queues are bounded; when full, the oldest entry is
// dropped so the daemon keeps up with the present rather than the past.
const (
	spiralQueueCap = 64
	stackQueueCap  = 64
)

// Options carries the reloadable daemon settings.
type Options struct {
	DefaultPolicy      layout.Policy
	WorkspaceRenaming  bool
	OnWindowFocus      string
	OnWindowFocusLeave string
	Settle             time.Duration
	MoveDelay          time.Duration
	RenameDebounce     time.Duration
}

type commandRequest struct {
	cmd   control.Command
	reply chan error
}

type stackTask struct {
	event       ipc.WindowEvent
	size        int
	arrangement layout.Arrangement
}

// Engine owns the policy store and multiplexes the compositor event stream
// with control commands. The policy store and the worker registry are only
// touched from the Run loop, so they need no lock; the reloadable options do.
type Engine struct {
	conn   Conn
	logger *util.Logger

	mu   sync.Mutex
	opts Options

	policies     map[int]layout.Policy
	stackWorkers map[int]chan stackTask
	spiralQueue  chan ipc.WindowEvent
	commands     chan commandRequest
	focus        *focusTracker
	renameTimer  *time.Timer

	// Test seams.
	subscribe func(ctx context.Context, logger *util.Logger) (<-chan ipc.WindowEvent, error)
	relayout  func(ctx context.Context, wsNum int)
}

// New creates an engine around an established compositor connection.
func New(conn Conn, logger *util.Logger, opts Options) *Engine {
	e := &Engine{
		conn:         conn,
		logger:       logger,
		opts:         opts,
		policies:     make(map[int]layout.Policy),
		stackWorkers: make(map[int]chan stackTask),
		spiralQueue:  make(chan ipc.WindowEvent, spiralQueueCap),
		commands:     make(chan commandRequest, 16),
		focus:        &focusTracker{conn: conn, logger: logger},
		subscribe:    ipc.Subscribe,
	}
	e.relayout = func(ctx context.Context, wsNum int) {
		go func() {
			if err := e.relayoutWorkspace(ctx, wsNum); err != nil {
				e.logger.Errorf("relayout workspace %d: %v", wsNum, err)
			}
		}()
	}
	return e
}

// Reconfigure swaps the reloadable options. Existing per-workspace policies
// stay as they are; only lazily-created entries see the new default.
func (e *Engine) Reconfigure(opts Options) {
	e.mu.Lock()
	e.opts = opts
	e.mu.Unlock()
	e.logger.Infof("engine options reloaded")
}

func (e *Engine) options() Options {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.opts
}

// Submit hands a control command to the daemon loop and waits for its single
// outcome. It implements control.Dispatcher.
func (e *Engine) Submit(ctx context.Context, cmd control.Command) error {
	req := commandRequest{cmd: cmd, reply: make(chan error, 1)}
	select {
	case e.commands <- req:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-req.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run subscribes to the compositor and processes events and commands in
// arrival order until the context is cancelled. A failed initial subscribe
// is fatal to the caller.
func (e *Engine) Run(ctx context.Context) error {
	events, err := e.subscribe(ctx, e.logger)
	if err != nil {
		return fmt.Errorf("subscribe to window events: %w", err)
	}

	spiral := &spiralWorker{conn: e.conn, logger: e.logger, now: time.Now}
	go spiral.run(ctx, e.spiralQueue)

	e.logger.Infof("persway daemon started")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return fmt.Errorf("event stream closed")
			}
			e.dispatchEvent(ctx, ev)
		case req := <-e.commands:
			req.reply <- e.handleCommand(ctx, req.cmd)
		}
	}
}

// dispatchEvent routes one window event per the focused workspace's policy
// and always forwards it to the focus hooks, in loop order.
func (e *Engine) dispatchEvent(ctx context.Context, ev ipc.WindowEvent) {
	opts := e.options()

	if opts.WorkspaceRenaming {
		e.scheduleRename(ctx, opts.RenameDebounce)
	}

	ws, err := focusedWorkspace(ctx, e.conn)
	if err != nil {
		e.logger.Errorf("dispatch %s event: %v", ev.Change, err)
		return
	}

	switch policy := e.policyFor(ws.Num, opts.DefaultPolicy); policy.Kind {
	case layout.KindSpiral:
		e.enqueueSpiral(ev)
	case layout.KindStackMain:
		e.enqueueStack(ctx, ws.Num, stackTask{event: ev, size: policy.Size, arrangement: policy.Stack})
	case layout.KindManual:
	}

	e.focus.Handle(ctx, ev, opts.OnWindowFocus, opts.OnWindowFocusLeave)
}

// scheduleRename restarts the rename debounce timer: only a quiet period of
// the full debounce window lets the rename fire.
func (e *Engine) scheduleRename(ctx context.Context, debounce time.Duration) {
	if e.renameTimer != nil {
		e.renameTimer.Stop()
	}
	e.renameTimer = time.AfterFunc(debounce, func() {
		if ctx.Err() != nil {
			return
		}
		if err := e.renameWorkspaces(ctx); err != nil {
			e.logger.Debugf("workspace rename skipped: %v", err)
		}
	})
}

func (e *Engine) policyFor(wsNum int, fallback layout.Policy) layout.Policy {
	if policy, ok := e.policies[wsNum]; ok {
		return policy
	}
	e.policies[wsNum] = fallback
	return fallback
}

func (e *Engine) enqueueSpiral(ev ipc.WindowEvent) {
	select {
	case e.spiralQueue <- ev:
		return
	default:
	}
	select {
	case <-e.spiralQueue:
		e.logger.Warnf("spiral queue full, dropping oldest event")
	default:
	}
	select {
	case e.spiralQueue <- ev:
	default:
	}
}

// enqueueStack hands the event to the workspace's dedicated worker, creating
// it on first use. Serializing per workspace keeps rapid bursts for one
// workspace deterministic while workspaces stay independent.
func (e *Engine) enqueueStack(ctx context.Context, wsNum int, task stackTask) {
	ch, ok := e.stackWorkers[wsNum]
	if !ok {
		ch = make(chan stackTask, stackQueueCap)
		e.stackWorkers[wsNum] = ch
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case task := <-ch:
					m := &stackMain{conn: e.conn, logger: e.logger, size: task.size, arrangement: task.arrangement}
					m.handle(ctx, task.event)
				}
			}
		}()
	}
	select {
	case ch <- task:
		return
	default:
	}
	select {
	case <-ch:
		e.logger.Warnf("stack-main queue for workspace %d full, dropping oldest event", wsNum)
	default:
	}
	select {
	case ch <- task:
	default:
	}
}

// handleCommand executes one control command against the focused workspace.
func (e *Engine) handleCommand(ctx context.Context, cmd control.Command) error {
	if cmd.Kind == control.CmdDaemon {
		return fmt.Errorf("a running daemon cannot execute the daemon command")
	}

	ws, err := focusedWorkspace(ctx, e.conn)
	if err != nil {
		return err
	}
	if ws.Num < 0 {
		return fmt.Errorf("focused workspace %q has no workspace number; name workspaces with a leading number (e.g. '1: web')", ws.Name)
	}

	opts := e.options()
	current := e.policyFor(ws.Num, opts.DefaultPolicy)

	if cmd.Kind == control.CmdChangeLayout {
		if cmd.Policy == current {
			e.logger.Debugf("layout already %s on workspace %d", current, ws.Num)
			return nil
		}
		e.policies[ws.Num] = cmd.Policy
		e.logger.Infof("workspace %d layout changed to %s", ws.Num, cmd.Policy)
		e.relayout(ctx, ws.Num)
		return nil
	}

	if err := requireStackMain(cmd.Kind, ws, current); err != nil {
		return err
	}
	sc := &stackCommands{conn: e.conn, logger: e.logger}
	switch cmd.Kind {
	case control.CmdStackFocusNext:
		return sc.focusAdvance(ctx, false)
	case control.CmdStackFocusPrev:
		return sc.focusAdvance(ctx, true)
	case control.CmdStackMainRotateNext:
		return sc.rotate(ctx, false)
	case control.CmdStackMainRotatePrev:
		return sc.rotate(ctx, true)
	case control.CmdStackSwapMain:
		return sc.swapMain(ctx)
	}
	return fmt.Errorf("unknown command %q", cmd.Kind)
}

func requireStackMain(cmdName string, ws ipc.Workspace, current layout.Policy) error {
	if current.Kind == layout.KindStackMain {
		return nil
	}
	return fmt.Errorf("%s only works on stack-main workspaces; focused workspace %d (%q) is %s; fix: persway change-layout stack-main",
		cmdName, ws.Num, ws.Name, current)
}

// focusedWorkspace fetches a fresh workspace list and returns its focused
// entry.
func focusedWorkspace(ctx context.Context, conn Conn) (ipc.Workspace, error) {
	workspaces, err := conn.GetWorkspaces(ctx)
	if err != nil {
		return ipc.Workspace{}, err
	}
	return focusedEntry(workspaces)
}

// runCommand issues a command string, logging per-clause failures at debug
// level: targeting an id that just vanished is routine, not an error.
func runCommand(ctx context.Context, conn Conn, logger *util.Logger, command string) error {
	results, err := conn.RunCommand(ctx, command)
	if err != nil {
		return err
	}
	if err := ipc.FirstError(results); err != nil {
		logger.Debugf("command %q: %v", command, err)
	}
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
