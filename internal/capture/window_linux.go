//go:build linux

package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/composite"
	"github.com/jezek/xgb/xproto"
)

// x11WindowCapturer implements WindowCapturer over X11. When the Composite
// extension is present the window is redirected once and stays redirected
// until Close, so its offscreen pixmap stays complete while the window is
// covered. Without a compositor the covered parts are filled in only after
// the client repaints, so the first frame after redirection may be partial.
// All requests are checked so no error lands in the unread event queue.
type x11WindowCapturer struct {
	mu           sync.Mutex
	conn         *xgb.Conn
	hasComposite bool
	redirected   map[xproto.Window]bool
}

// NewWindowCapturer returns the X11 window backend. The display connection
// is opened on first use.
func NewWindowCapturer() WindowCapturer {
	return &x11WindowCapturer{redirected: make(map[xproto.Window]bool)}
}

func (c *x11WindowCapturer) connect() (*xgb.Conn, error) {
	if c.conn != nil {
		return c.conn, nil
	}
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("connect to X server: %w", err)
	}
	if composite.Init(conn) == nil {
		_, err := composite.QueryVersion(conn, 0, 4).Reply()
		c.hasComposite = err == nil
	}
	c.conn = conn
	return conn, nil
}

func (c *x11WindowCapturer) CaptureWindow(ctx context.Context, handle uint64) (*image.RGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	conn, err := c.connect()
	if err != nil {
		return nil, err
	}
	win := xproto.Window(handle)

	img, err := c.capture(conn, win)
	if errors.Is(err, ErrWindowGone) {
		// The server drops the redirection with the window.
		delete(c.redirected, win)
	}
	return img, err
}

func (c *x11WindowCapturer) capture(conn *xgb.Conn, win xproto.Window) (*image.RGBA, error) {
	handle := uint64(win)
	geom, err := xproto.GetGeometry(conn, xproto.Drawable(win)).Reply()
	if err != nil {
		return nil, classifyX11(handle, "GetGeometry", err)
	}
	w, h := geom.Width, geom.Height
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("window %d has empty bounds", handle)
	}

	drawable := xproto.Drawable(win)
	if c.hasComposite {
		if !c.redirected[win] {
			if err := composite.RedirectWindowChecked(conn, win, composite.RedirectAutomatic).Check(); err != nil {
				return nil, classifyX11(handle, "RedirectWindow", err)
			}
			c.redirected[win] = true
		}

		// Named per frame: a resize allocates a new backing pixmap.
		pix, err := xproto.NewPixmapId(conn)
		if err != nil {
			return nil, fmt.Errorf("allocate pixmap id: %w", err)
		}
		if err := composite.NameWindowPixmapChecked(conn, win, pix).Check(); err != nil {
			return nil, classifyX11(handle, "NameWindowPixmap", err)
		}
		defer func() {
			_ = xproto.FreePixmapChecked(conn, pix).Check()
		}()
		drawable = xproto.Drawable(pix)
	}

	reply, err := xproto.GetImage(conn, xproto.ImageFormatZPixmap, drawable, 0, 0, w, h, ^uint32(0)).Reply()
	if err != nil {
		return nil, classifyX11(handle, "GetImage", err)
	}
	if want := int(w) * int(h) * 4; len(reply.Data) < want {
		return nil, fmt.Errorf("window %d: GetImage returned %d bytes, want %d (depth %d)", handle, len(reply.Data), want, reply.Depth)
	}

	img := image.NewRGBA(image.Rect(0, 0, int(w), int(h)))
	bgrxToRGBA(img.Pix, reply.Data)
	return img, nil
}

// Close undoes the redirections and drops the display connection.
func (c *x11WindowCapturer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	for win := range c.redirected {
		_ = composite.UnredirectWindowChecked(c.conn, win, composite.RedirectAutomatic).Check()
		delete(c.redirected, win)
	}
	c.conn.Close()
	c.conn = nil
	return nil
}

// classifyX11 maps BadWindow/BadDrawable to ErrWindowGone.
func classifyX11(handle uint64, op string, err error) error {
	var (
		badWindow   xproto.WindowError
		badDrawable xproto.DrawableError
	)
	if errors.As(err, &badWindow) || errors.As(err, &badDrawable) {
		return fmt.Errorf("window %d: %s: %w", handle, op, ErrWindowGone)
	}
	return fmt.Errorf("window %d: %s: %w", handle, op, err)
}

// ListWindows returns the windows managed by the window manager
// (_NET_CLIENT_LIST) that have a title.
func ListWindows() ([]WindowInfo, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("connect to X server: %w", err)
	}
	defer conn.Close()

	root := xproto.Setup(conn).DefaultScreen(conn).Root
	clientList, err := atom(conn, "_NET_CLIENT_LIST")
	if err != nil {
		return nil, err
	}
	prop, err := xproto.GetProperty(conn, false, root, clientList, xproto.AtomWindow, 0, 1<<16).Reply()
	if err != nil {
		return nil, fmt.Errorf("read _NET_CLIENT_LIST: %w", err)
	}

	netName, err := atom(conn, "_NET_WM_NAME")
	if err != nil {
		return nil, err
	}

	var out []WindowInfo
	for i := 0; i+4 <= len(prop.Value); i += 4 {
		win := xproto.Window(xgb.Get32(prop.Value[i:]))
		title := windowTitle(conn, win, netName)
		if title == "" {
			continue
		}
		out = append(out, WindowInfo{Handle: uint64(win), Title: title})
	}
	return out, nil
}

func atom(conn *xgb.Conn, name string) (xproto.Atom, error) {
	reply, err := xproto.InternAtom(conn, true, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, fmt.Errorf("intern atom %s: %w", name, err)
	}
	return reply.Atom, nil
}

func windowTitle(conn *xgb.Conn, win xproto.Window, netName xproto.Atom) string {
	for _, a := range []xproto.Atom{netName, xproto.AtomWmName} {
		if a == 0 {
			continue
		}
		prop, err := xproto.GetProperty(conn, false, win, a, xproto.GetPropertyTypeAny, 0, 1024).Reply()
		if err == nil && len(prop.Value) > 0 {
			return string(prop.Value)
		}
	}
	return ""
}
