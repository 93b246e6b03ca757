package ipc

import (
	"context"
	"encoding/json"
	"fmt"
	"net"

	"github.com/saylesss88/persway/internal/util"
)

// Subscribe opens a dedicated connection to the compositor, subscribes to
// window and workspace events, and streams window events until context
// cancellation. Workspace events are consumed and dropped; only their side
// effects on the tree matter to the daemon.
func Subscribe(ctx context.Context, logger *util.Logger) (<-chan WindowEvent, error) {
	path, err := SocketPath()
	if err != nil {
		return nil, err
	}
	conn, err := net.Dial("unix", path)
	if err != nil {
		return nil, fmt.Errorf("connect event socket: %w", err)
	}
	payload, err := json.Marshal([]string{"window", "workspace"})
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := writeMessage(conn, msgSubscribe, payload); err != nil {
		conn.Close()
		return nil, err
	}
	ackType, ack, err := readMessage(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	if ackType != msgSubscribe {
		conn.Close()
		return nil, fmt.Errorf("unexpected subscribe reply type %d", ackType)
	}
	var status struct {
		Success bool `json:"success"`
	}
	if err := json.Unmarshal(ack, &status); err != nil || !status.Success {
		conn.Close()
		return nil, fmt.Errorf("subscribe rejected by compositor")
	}

	events := make(chan WindowEvent)
	go func() {
		defer close(events)
		defer conn.Close()
		go func() {
			<-ctx.Done()
			conn.Close()
		}()
		for {
			msgType, payload, err := readMessage(conn)
			if err != nil {
				if ctx.Err() == nil {
					logger.Warnf("event stream error: %v", err)
				}
				return
			}
			if msgType&eventFlag == 0 || msgType&^eventFlag != eventWindow {
				continue
			}
			var ev WindowEvent
			if err := json.Unmarshal(payload, &ev); err != nil {
				logger.Warnf("decode window event: %v", err)
				continue
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return events, nil
}
