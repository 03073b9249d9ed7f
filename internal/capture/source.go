package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"

	"github.com/eedd/esp32-extra-display/internal/logging"
)

// Source produces a fresh image per call from its Target. A window target
// that disappears is replaced by the full screen for the rest of the
// Source's life.
type Source struct {
	target Target
	screen ScreenCapturer
	window WindowCapturer
	log    *slog.Logger
}

// NewSource creates a Source. window may be nil, in which case the platform
// backend is used.
func NewSource(target Target, screen ScreenCapturer, window WindowCapturer, log *slog.Logger) *Source {
	if window == nil {
		window = NewWindowCapturer()
	}
	s := &Source{
		target: target,
		screen: screen,
		window: window,
		log:    logging.Component(log, "capture"),
	}
	s.log.Debug("capture source created", "target", target.String())
	return s
}

// Target returns the current target.
func (s *Source) Target() Target {
	return s.target
}

// Capture returns an image of the current target.
func (s *Source) Capture(ctx context.Context) (image.Image, error) {
	handle, ok := s.target.Handle()
	if !ok {
		return s.captureScreen(ctx)
	}

	img, err := s.window.CaptureWindow(ctx, handle)
	if err == nil {
		return img, nil
	}
	if !errors.Is(err, ErrWindowGone) {
		return nil, fmt.Errorf("capture window %d: %w", handle, err)
	}

	s.target.degrade()
	s.log.Error("window destroyed, resorting to full screen", "window", handle, "err", err)
	s.releaseWindow()
	return s.captureScreen(ctx)
}

// Close releases resources held by the window backend.
func (s *Source) Close() error {
	return s.releaseWindow()
}

// releaseWindow closes the window backend if it holds resources. The
// backend is not used again once the target is the full screen.
func (s *Source) releaseWindow() error {
	closer, ok := s.window.(io.Closer)
	if !ok {
		return nil
	}
	if err := closer.Close(); err != nil {
		s.log.Warn("release window backend", "err", err)
		return err
	}
	return nil
}

func (s *Source) captureScreen(ctx context.Context) (image.Image, error) {
	img, err := s.screen.CaptureScreen(ctx)
	if err != nil {
		return nil, err
	}
	return img, nil
}
