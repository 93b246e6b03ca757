package control

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"sync"

	"github.com/saylesss88/persway/internal/util"
)

// Dispatcher hands a parsed command to the daemon loop and waits for its
// single outcome.
type Dispatcher interface {
	Submit(ctx context.Context, cmd Command) error
}

// Server hosts the control socket. Each accepted connection carries exactly
// one request/reply exchange.
type Server struct {
	dispatch   Dispatcher
	logger     *util.Logger
	socketPath string

	mu       sync.Mutex
	listener net.Listener
}

// NewServer creates a control server bound to the given socket path.
func NewServer(dispatch Dispatcher, logger *util.Logger, socketPath string) *Server {
	if socketPath == "" {
		socketPath = DefaultSocketPath()
	}
	return &Server{
		dispatch:   dispatch,
		logger:     logger,
		socketPath: socketPath,
	}
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Serve listens on the control socket until the context is cancelled.
// A stale socket file at the path is removed first; failing to bind is fatal.
func (s *Server) Serve(ctx context.Context) error {
	if err := s.prepareSocket(); err != nil {
		return err
	}
	s.logger.Infof("control socket listening on %s", s.socketPath)
	defer s.cleanup()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		if s.listener != nil {
			s.listener.Close()
		}
		s.mu.Unlock()
	}()

	for {
		conn, err := s.accept(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			s.logger.Errorf("control accept error: %v", err)
			continue
		}
		go s.handle(ctx, conn)
	}
}

func (s *Server) accept(ctx context.Context) (net.Conn, error) {
	s.mu.Lock()
	listener := s.listener
	s.mu.Unlock()
	if listener == nil {
		return nil, context.Canceled
	}
	conn, err := listener.Accept()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	return conn, nil
}

func (s *Server) prepareSocket() error {
	if err := os.Remove(s.socketPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove stale socket: %w", err)
	}
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("listen on control socket: %w", err)
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()
	return nil
}

func (s *Server) cleanup() {
	s.mu.Lock()
	listener := s.listener
	s.listener = nil
	s.mu.Unlock()
	if listener != nil {
		listener.Close()
	}
	if err := os.Remove(s.socketPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warnf("remove control socket: %v", err)
	}
}

// handle reads one command line, dispatches it, and writes one reply line.
func (s *Server) handle(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil && line == "" {
		// Connection closed without a request.
		return
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}

	cmd, err := ParseCommand(line)
	if err != nil {
		s.logger.Debugf("invalid control line %q", line)
		s.reply(conn, "fail: invalid command")
		return
	}
	s.logger.Debugf("control command: %s", cmd.Kind)
	if err := s.dispatch.Submit(ctx, cmd); err != nil {
		s.reply(conn, "fail: "+oneLine(err.Error()))
		return
	}
	s.reply(conn, "success")
}

func (s *Server) reply(conn net.Conn, line string) {
	if _, err := conn.Write([]byte(line + "\n")); err != nil {
		s.logger.Warnf("control reply write: %v", err)
	}
}

// oneLine keeps the reply a single protocol line whatever the error text.
func oneLine(msg string) string {
	return strings.Join(strings.Fields(msg), " ")
}
