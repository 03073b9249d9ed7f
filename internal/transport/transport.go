package transport

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/eedd/esp32-extra-display/internal/logging"
	"github.com/eedd/esp32-extra-display/internal/protocol"
)

// DefaultBaudRate is the rate the display firmware listens at.
const DefaultBaudRate = 115200

// ErrClosed is returned by Send after Close.
var ErrClosed = errors.New("transport: link closed")

// FrameSender sends encoded frames to the display.
type FrameSender interface {
	Send(frame []byte) error
}

// Link owns the connection to one display and writes length-prefixed frames
// to it. Writes never interleave.
type Link struct {
	name string
	log  *slog.Logger

	mu     sync.Mutex
	port   io.WriteCloser
	closed bool
}

// NewLink wraps an open port.
func NewLink(name string, port io.WriteCloser, log *slog.Logger) *Link {
	return &Link{
		name: name,
		port: port,
		log:  logging.Component(log, "transport"),
	}
}

// Name returns the path or URL the link was opened with.
func (l *Link) Name() string {
	return l.name
}

// Send writes "<len><frame>" as one write. Errors are not retried.
func (l *Link) Send(frame []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrClosed
	}
	if err := protocol.WriteFrame(l.port, frame); err != nil {
		return fmt.Errorf("write %d byte frame to %s: %w", len(frame), l.name, err)
	}
	l.log.Debug("frame sent", "bytes", len(frame))
	return nil
}

// Close releases the port. It is safe to call more than once.
func (l *Link) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	l.log.Info("closing link", "port", l.name)
	return l.port.Close()
}

// Open connects to target: ws:// and wss:// URLs dial an emulator, anything
// else is opened as a serial device at baud.
func Open(target string, baud int, log *slog.Logger) (*Link, error) {
	if strings.HasPrefix(target, "ws://") || strings.HasPrefix(target, "wss://") {
		return DialWebSocket(target, log)
	}
	return OpenSerial(target, baud, log)
}
