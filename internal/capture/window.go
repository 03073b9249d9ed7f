package capture

import (
	"context"
	"errors"
	"image"
)

// ErrWindowGone reports that a window handle no longer refers to a live window.
var ErrWindowGone = errors.New("capture: window no longer exists")

// WindowInfo describes an on-screen top-level window.
type WindowInfo struct {
	Handle uint64
	Title  string
}

// WindowCapturer renders a window, including occluded parts, into an image.
// Implementations return an error wrapping ErrWindowGone when the handle is
// dead.
type WindowCapturer interface {
	CaptureWindow(ctx context.Context, handle uint64) (*image.RGBA, error)
}
