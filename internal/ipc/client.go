package ipc

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"
)

// Client is a synchronous compositor IPC client. One request is in flight at
// a time; concurrent callers are serialized on an internal mutex.
type Client struct {
	mu   sync.Mutex
	conn net.Conn
}

// Dial connects to the compositor socket resolved from the environment.
func Dial() (*Client, error) {
	path, err := SocketPath()
	if err != nil {
		return nil, err
	}
	return DialPath(path)
}

// DialPath connects to the compositor socket at the given path.
func DialPath(path string) (*Client, error) {
	conn, err := net.Dial("unix", path)
	if err != nil {
		return nil, fmt.Errorf("connect compositor socket: %w", err)
	}
	return &Client{conn: conn}, nil
}

// Close terminates the underlying connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.Close()
}

func (c *Client) roundTrip(ctx context.Context, msgType uint32, payload []byte) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Time{}
	}
	if err := c.conn.SetDeadline(deadline); err != nil {
		return nil, fmt.Errorf("set deadline: %w", err)
	}
	if err := writeMessage(c.conn, msgType, payload); err != nil {
		return nil, err
	}
	for {
		replyType, reply, err := readMessage(c.conn)
		if err != nil {
			return nil, err
		}
		// Event frames can interleave on a connection that was previously
		// subscribed; this client never subscribes, but skip them anyway.
		if replyType&eventFlag != 0 {
			continue
		}
		if replyType != msgType {
			return nil, fmt.Errorf("unexpected reply type %d for request %d", replyType, msgType)
		}
		return reply, nil
	}
}

// GetTree fetches a fresh tree snapshot.
func (c *Client) GetTree(ctx context.Context) (*Node, error) {
	data, err := c.roundTrip(ctx, msgGetTree, nil)
	if err != nil {
		return nil, err
	}
	var root Node
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("decode tree: %w", err)
	}
	return &root, nil
}

// GetWorkspaces fetches the workspace list.
func (c *Client) GetWorkspaces(ctx context.Context) ([]Workspace, error) {
	data, err := c.roundTrip(ctx, msgGetWorkspaces, nil)
	if err != nil {
		return nil, err
	}
	var workspaces []Workspace
	if err := json.Unmarshal(data, &workspaces); err != nil {
		return nil, fmt.Errorf("decode workspaces: %w", err)
	}
	return workspaces, nil
}

// RunCommand executes one or more semicolon-separated command clauses and
// returns the per-clause results. The error covers transport failures only;
// callers decide how strict to be about per-clause failures.
func (c *Client) RunCommand(ctx context.Context, command string) ([]CommandResult, error) {
	data, err := c.roundTrip(ctx, msgRunCommand, []byte(command))
	if err != nil {
		return nil, err
	}
	var results []CommandResult
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("decode command results: %w", err)
	}
	return results, nil
}

// FirstError flattens command results into an error naming the failed clauses.
func FirstError(results []CommandResult) error {
	var failed []string
	for _, res := range results {
		if !res.Success {
			failed = append(failed, res.Error)
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return fmt.Errorf("command failed: %s", strings.Join(failed, "; "))
}
