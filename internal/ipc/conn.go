package ipc

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"os"
)

// i3-ipc framing: 6 magic bytes, then payload length and message type as
// little-endian uint32, then the JSON payload.
const magic = "i3-ipc"

const headerLen = len(magic) + 8

// Message types of the i3/sway IPC protocol.
const (
	msgRunCommand    uint32 = 0
	msgGetWorkspaces uint32 = 1
	msgSubscribe     uint32 = 2
	msgGetTree       uint32 = 4
)

// Replies with the high bit set carry asynchronous events.
const eventFlag uint32 = 1 << 31

const (
	eventWorkspace uint32 = 0
	eventWindow    uint32 = 3
)

// SocketPath locates the compositor IPC socket from the environment.
func SocketPath() (string, error) {
	if path := os.Getenv("SWAYSOCK"); path != "" {
		return path, nil
	}
	if path := os.Getenv("I3SOCK"); path != "" {
		return path, nil
	}
	return "", fmt.Errorf("neither SWAYSOCK nor I3SOCK is set")
}

func writeMessage(conn net.Conn, msgType uint32, payload []byte) error {
	buf := make([]byte, headerLen+len(payload))
	copy(buf, magic)
	binary.LittleEndian.PutUint32(buf[len(magic):], uint32(len(payload)))
	binary.LittleEndian.PutUint32(buf[len(magic)+4:], msgType)
	copy(buf[headerLen:], payload)
	if _, err := conn.Write(buf); err != nil {
		return fmt.Errorf("write ipc message: %w", err)
	}
	return nil
}

func readMessage(conn net.Conn) (uint32, []byte, error) {
	header := make([]byte, headerLen)
	if _, err := io.ReadFull(conn, header); err != nil {
		return 0, nil, fmt.Errorf("read ipc header: %w", err)
	}
	if string(header[:len(magic)]) != magic {
		return 0, nil, fmt.Errorf("bad ipc magic %q", header[:len(magic)])
	}
	length := binary.LittleEndian.Uint32(header[len(magic):])
	msgType := binary.LittleEndian.Uint32(header[len(magic)+4:])
	payload := make([]byte, length)
	if _, err := io.ReadFull(conn, payload); err != nil {
		return 0, nil, fmt.Errorf("read ipc payload: %w", err)
	}
	return msgType, payload, nil
}
