package capture

import (
	"context"
	"fmt"
	"image"

	"github.com/kbinani/screenshot"
)

// ScreenCapturer grabs the full visible desktop.
type ScreenCapturer interface {
	CaptureScreen(ctx context.Context) (*image.RGBA, error)
}

// DisplayCapturer captures one display using the platform screenshot API.
type DisplayCapturer struct {
	index int
}

// NewDisplayCapturer creates a screen capturer for the given display
// (0 = primary).
func NewDisplayCapturer(displayIndex int) (*DisplayCapturer, error) {
	n := screenshot.NumActiveDisplays()
	if n <= 0 {
		return nil, fmt.Errorf("capture: no active display found")
	}
	if displayIndex < 0 || displayIndex >= n {
		return nil, fmt.Errorf("capture: display index %d out of range (have %d displays)", displayIndex, n)
	}
	return &DisplayCapturer{index: displayIndex}, nil
}

func (d *DisplayCapturer) CaptureScreen(ctx context.Context) (*image.RGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	bounds := screenshot.GetDisplayBounds(d.index)
	img, err := screenshot.CaptureRect(bounds)
	if err != nil {
		return nil, fmt.Errorf("capture screen: %w", err)
	}
	return img, nil
}
