package transport

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/eedd/esp32-extra-display/internal/protocol"
)

type memPort struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	failOn int
	writes int
	closed int
}

func (p *memPort) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.writes++
	if p.failOn > 0 && p.writes >= p.failOn {
		return 0, errors.New("device unplugged")
	}
	return p.buf.Write(b)
}

func (p *memPort) Close() error {
	p.closed++
	return nil
}

func TestLinkSendFraming(t *testing.T) {
	port := &memPort{}
	link := NewLink("mem", port, nil)

	frame := append([]byte{0xFF, 0xD8}, bytes.Repeat([]byte{7}, 998)...)
	if err := link.Send(frame); err != nil {
		t.Fatal(err)
	}
	want := append([]byte("1000"), frame...)
	if !bytes.Equal(port.buf.Bytes(), want) {
		t.Fatalf("wire bytes differ: got %d bytes, want %d", port.buf.Len(), len(want))
	}
}

func TestLinkConcurrentSendsDoNotInterleave(t *testing.T) {
	port := &memPort{}
	link := NewLink("mem", port, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(b byte) {
			defer wg.Done()
			_ = link.Send(append([]byte{0xFF}, bytes.Repeat([]byte{b}, 300)...))
		}(byte('a' + i))
	}
	wg.Wait()

	r := protocol.NewReader(&port.buf)
	for i := 0; i < 8; i++ {
		p, err := r.ReadFrame()
		if err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
		for _, b := range p[1:] {
			if b != p[1] {
				t.Fatalf("frame %d interleaved", i)
			}
		}
	}
}

func TestLinkWriteErrorAndClose(t *testing.T) {
	port := &memPort{failOn: 1}
	link := NewLink("mem", port, nil)
	if err := link.Send([]byte("\xff")); err == nil || !strings.Contains(err.Error(), "device unplugged") {
		t.Fatalf("err = %v", err)
	}

	if err := link.Close(); err != nil {
		t.Fatal(err)
	}
	if err := link.Close(); err != nil {
		t.Fatal(err)
	}
	if port.closed != 1 {
		t.Fatalf("port closed %d times", port.closed)
	}
	if err := link.Send([]byte("\xff")); !errors.Is(err, ErrClosed) {
		t.Fatalf("err = %v, want ErrClosed", err)
	}
}

func TestWebSocketLink(t *testing.T) {
	got := make(chan []byte, 2)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			typ, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if typ == websocket.BinaryMessage {
				got <- data
			}
		}
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	link, err := Open(url, DefaultBaudRate, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer link.Close()

	if err := link.Send([]byte("\xff\xd8abc")); err != nil {
		t.Fatal(err)
	}
	select {
	case msg := <-got:
		if string(msg) != "5\xff\xd8abc" {
			t.Fatalf("message = %q", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
	}
}

func TestOpenSerialMissingDevice(t *testing.T) {
	if _, err := Open("/dev/eedd-does-not-exist", DefaultBaudRate, nil); err == nil {
		t.Fatal("expected error opening a missing device")
	}
}
