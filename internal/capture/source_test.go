package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"testing"

	"github.com/eedd/esp32-extra-display/internal/logging"
)

type fakeScreen struct {
	calls int
	err   error
}

func (f *fakeScreen) CaptureScreen(context.Context) (*image.RGBA, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return image.NewRGBA(image.Rect(0, 0, 1920, 1080)), nil
}

// fakeWindows serves handles in live and reports the rest as gone.
type fakeWindows struct {
	live   map[uint64]bool
	err    error
	calls  []uint64
	closed int
}

func (f *fakeWindows) Close() error {
	f.closed++
	return nil
}

func (f *fakeWindows) CaptureWindow(_ context.Context, handle uint64) (*image.RGBA, error) {
	f.calls = append(f.calls, handle)
	if f.err != nil {
		return nil, f.err
	}
	if !f.live[handle] {
		return nil, fmt.Errorf("window %d: %w", handle, ErrWindowGone)
	}
	return image.NewRGBA(image.Rect(0, 0, 640, 480)), nil
}

func newTestSource(target Target, screen *fakeScreen, windows *fakeWindows) (*Source, *bytes.Buffer) {
	var buf bytes.Buffer
	lv := logging.Level(true)
	return NewSource(target, screen, windows, logging.New(&buf, lv)), &buf
}

func TestCaptureFullScreen(t *testing.T) {
	screen := &fakeScreen{}
	windows := &fakeWindows{}
	src, _ := newTestSource(FullScreen(), screen, windows)

	img, err := src.Capture(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 1920 {
		t.Fatalf("bounds = %v", img.Bounds())
	}
	if len(windows.calls) != 0 {
		t.Fatalf("window backend called for full screen target")
	}
}

func TestCaptureLiveWindow(t *testing.T) {
	screen := &fakeScreen{}
	windows := &fakeWindows{live: map[uint64]bool{7: true}}
	src, _ := newTestSource(Window(7), screen, windows)

	img, err := src.Capture(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 640 || screen.calls != 0 {
		t.Fatalf("expected window image, got %v with %d screen calls", img.Bounds(), screen.calls)
	}
	if h, ok := src.Target().Handle(); !ok || h != 7 {
		t.Fatalf("target changed to %v", src.Target())
	}
}

func TestCaptureGoneWindowFallsBack(t *testing.T) {
	screen := &fakeScreen{}
	windows := &fakeWindows{}
	src, logs := newTestSource(Window(12345), screen, windows)

	img, err := src.Capture(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 1920 || screen.calls != 1 {
		t.Fatalf("expected full screen image in the same call, got %v", img.Bounds())
	}
	if !src.Target().IsFullScreen() {
		t.Fatalf("target = %v, want full screen", src.Target())
	}
	out := logs.String()
	if !strings.Contains(out, "level=ERROR") || !strings.Contains(out, "window=12345") {
		t.Fatalf("missing error log: %q", out)
	}
}

func TestDowngradeIsPermanent(t *testing.T) {
	screen := &fakeScreen{}
	windows := &fakeWindows{}
	src, _ := newTestSource(Window(12345), screen, windows)

	if _, err := src.Capture(context.Background()); err != nil {
		t.Fatal(err)
	}
	// The same handle value comes back to life.
	windows.live = map[uint64]bool{12345: true}
	for i := 0; i < 5; i++ {
		if _, err := src.Capture(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	if len(windows.calls) != 1 {
		t.Fatalf("window backend called %d times, want 1", len(windows.calls))
	}
	if windows.closed != 1 {
		t.Fatalf("window backend closed %d times, want 1 on downgrade", windows.closed)
	}
	if screen.calls != 6 {
		t.Fatalf("screen captures = %d, want 6", screen.calls)
	}
}

func TestCaptureOtherWindowErrorPropagates(t *testing.T) {
	boom := errors.New("access denied")
	screen := &fakeScreen{}
	src, _ := newTestSource(Window(9), screen, &fakeWindows{err: boom})

	if _, err := src.Capture(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if src.Target().IsFullScreen() || screen.calls != 0 {
		t.Fatal("non-gone error must not degrade the target")
	}
}

func TestCaptureScreenErrorPropagates(t *testing.T) {
	boom := errors.New("no display")
	src, _ := newTestSource(Window(1), &fakeScreen{err: boom}, &fakeWindows{})
	if _, err := src.Capture(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}

func TestTargetString(t *testing.T) {
	if s := FullScreen().String(); s != "full screen" {
		t.Fatal(s)
	}
	if s := Window(42).String(); s != "window 42" {
		t.Fatal(s)
	}
	var zero Target
	if !zero.IsFullScreen() {
		t.Fatal("zero target must be full screen")
	}
}

func TestCloseReleasesWindowBackend(t *testing.T) {
	windows := &fakeWindows{live: map[uint64]bool{7: true}}
	src, _ := newTestSource(Window(7), &fakeScreen{}, windows)

	if _, err := src.Capture(context.Background()); err != nil {
		t.Fatal(err)
	}
	if windows.closed != 0 {
		t.Fatal("live window backend released early")
	}
	if err := src.Close(); err != nil {
		t.Fatal(err)
	}
	if windows.closed != 1 {
		t.Fatalf("window backend closed %d times, want 1", windows.closed)
	}
}
