// Package client talks to a running persway daemon over its control socket.
package client

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/saylesss88/persway/internal/control"
)

// defaultTimeout is used when the caller does not provide a context deadline.
const defaultTimeout = 3 * time.Second

// Client sends single command lines to the daemon's control socket.
type Client struct {
	socketPath string
}

// New creates a client for the provided socket path. When path is empty,
// the default runtime path is used.
func New(path string) *Client {
	if path == "" {
		path = control.DefaultSocketPath()
	}
	return &Client{socketPath: path}
}

// Send writes one command line and returns the daemon's reply line
// ("success" or "fail: <message>"). The reply being a failure is not an
// error at this level; transport problems are.
func (c *Client) Send(ctx context.Context, command string) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultTimeout)
		defer cancel()
	}
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return "", fmt.Errorf("dial control socket: %w", err)
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	if _, err := conn.Write([]byte(strings.TrimSpace(command) + "\n")); err != nil {
		return "", fmt.Errorf("write command: %w", err)
	}
	reply, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil && reply == "" {
		return "", fmt.Errorf("read reply: %w", err)
	}
	return strings.TrimSpace(reply), nil
}
