package viewer

import (
	"errors"
	"image"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/gorilla/websocket"

	"github.com/eedd/esp32-extra-display/internal/decoder"
	"github.com/eedd/esp32-extra-display/internal/logging"
	"github.com/eedd/esp32-extra-display/internal/protocol"
)

// FrameSink accepts decoded frames for rendering.
type FrameSink interface {
	SetFrame(img *image.RGBA)
}

// Receive reads frames from r until it ends, decoding each into sink.
// Frames that fail to decode are skipped, as the panel firmware does.
// A clean end of stream returns nil.
func Receive(r io.Reader, sink FrameSink, log *slog.Logger) error {
	log = logging.Component(log, "viewer")
	fr := protocol.NewReader(r)
	for {
		payload, err := fr.ReadFrame()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		img, err := decoder.Decode(payload)
		if err != nil {
			log.Warn("dropping undecodable frame", "bytes", len(payload), "err", err)
			continue
		}
		log.Debug("frame received", "bytes", len(payload), "size", img.Bounds().Size())
		sink.SetFrame(img)
	}
}

// Handler accepts one websocket stream at a time and feeds it to sink.
type Handler struct {
	sink     FrameSink
	log      *slog.Logger
	upgrader websocket.Upgrader
	busy     atomic.Bool
}

// NewHandler creates a websocket handler that plays the device role.
func NewHandler(sink FrameSink, log *slog.Logger) *Handler {
	return &Handler{sink: sink, log: logging.Component(log, "viewer")}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.busy.CompareAndSwap(false, true) {
		http.Error(w, "display already connected", http.StatusConflict)
		return
	}
	defer h.busy.Store(false)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade", "err", err)
		return
	}
	defer conn.Close()

	h.log.Info("daemon connected", "remote", r.RemoteAddr)
	if err := Receive(&messageReader{conn: conn}, h.sink, h.log); err != nil {
		h.log.Warn("stream ended", "remote", r.RemoteAddr, "err", err)
		return
	}
	h.log.Info("daemon disconnected", "remote", r.RemoteAddr)
}

// messageReader joins binary websocket messages back into one byte stream.
type messageReader struct {
	conn *websocket.Conn
	cur  io.Reader
}

func (m *messageReader) Read(p []byte) (int, error) {
	for {
		if m.cur == nil {
			typ, r, err := m.conn.NextReader()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					return 0, io.EOF
				}
				return 0, err
			}
			if typ != websocket.BinaryMessage {
				continue
			}
			m.cur = r
		}
		n, err := m.cur.Read(p)
		if err == io.EOF {
			m.cur = nil
			if n > 0 {
				return n, nil
			}
			continue
		}
		return n, err
	}
}
