//go:build !windows && !linux && !(darwin && cgo)

package capture

import (
	"context"
	"fmt"
	"image"
	"runtime"
)

type unsupportedWindowCapturer struct{}

// NewWindowCapturer returns a backend that reports every window as gone, so
// a window target falls back to the full screen.
func NewWindowCapturer() WindowCapturer {
	return unsupportedWindowCapturer{}
}

func (unsupportedWindowCapturer) CaptureWindow(_ context.Context, handle uint64) (*image.RGBA, error) {
	return nil, fmt.Errorf("window %d: capture not supported on %s: %w", handle, runtime.GOOS, ErrWindowGone)
}

// ListWindows returns no windows on this platform.
func ListWindows() ([]WindowInfo, error) {
	return nil, nil
}
