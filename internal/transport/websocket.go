package transport

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	wsWriteTimeout = 5 * time.Second
	wsPingInterval = 25 * time.Second
)

// wsPort carries the serial byte stream over a websocket. Each Write becomes
// one binary message; the receiver concatenates them back into a stream.
type wsPort struct {
	conn *websocket.Conn
	mu   sync.Mutex
	done chan struct{}
	once sync.Once
}

// DialWebSocket connects to a display emulator listening at url.
func DialWebSocket(url string, log *slog.Logger) (*Link, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("websocket dial %s: %w", url, err)
	}
	p := &wsPort{conn: conn, done: make(chan struct{})}
	go p.readLoop()
	go p.pingLoop()
	return NewLink(url, p, log), nil
}

func (p *wsPort) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	if err := p.conn.WriteMessage(websocket.BinaryMessage, b); err != nil {
		return 0, err
	}
	return len(b), nil
}

func (p *wsPort) Close() error {
	var err error
	p.once.Do(func() {
		close(p.done)
		p.mu.Lock()
		_ = p.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		p.mu.Unlock()
		err = p.conn.Close()
	})
	return err
}

// readLoop drains control frames. The emulator never sends data.
func (p *wsPort) readLoop() {
	for {
		if _, _, err := p.conn.NextReader(); err != nil {
			return
		}
	}
}

func (p *wsPort) pingLoop() {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-p.done:
			return
		case <-ticker.C:
			p.mu.Lock()
			_ = p.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteTimeout))
			p.mu.Unlock()
		}
	}
}
