//go:build windows

package capture

import (
	"context"
	"fmt"
	"image"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32 = windows.NewLazySystemDLL("user32.dll")
	gdi32  = windows.NewLazySystemDLL("gdi32.dll")

	procGetWindowRect          = user32.NewProc("GetWindowRect")
	procGetWindowDC            = user32.NewProc("GetWindowDC")
	procReleaseDC              = user32.NewProc("ReleaseDC")
	procPrintWindow            = user32.NewProc("PrintWindow")
	procGetWindowTextW         = user32.NewProc("GetWindowTextW")
	procCreateCompatibleDC     = gdi32.NewProc("CreateCompatibleDC")
	procCreateCompatibleBitmap = gdi32.NewProc("CreateCompatibleBitmap")
	procSelectObject           = gdi32.NewProc("SelectObject")
	procDeleteObject           = gdi32.NewProc("DeleteObject")
	procDeleteDC               = gdi32.NewProc("DeleteDC")
	procGetDIBits              = gdi32.NewProc("GetDIBits")
)

const (
	// Renders DirectComposition and hardware-accelerated content too, so
	// occluded and background windows come out complete.
	pwRenderFullContent = 0x00000002

	biRGB        = 0
	dibRGBColors = 0
)

type rect struct {
	Left, Top, Right, Bottom int32
}

type bitmapInfoHeader struct {
	Size          uint32
	Width         int32
	Height        int32
	Planes        uint16
	BitCount      uint16
	Compression   uint32
	SizeImage     uint32
	XPelsPerMeter int32
	YPelsPerMeter int32
	ClrUsed       uint32
	ClrImportant  uint32
}

// gdiWindowCapturer implements WindowCapturer with PrintWindow.
type gdiWindowCapturer struct{}

// NewWindowCapturer returns the GDI window backend.
func NewWindowCapturer() WindowCapturer {
	return gdiWindowCapturer{}
}

func (gdiWindowCapturer) CaptureWindow(ctx context.Context, handle uint64) (*image.RGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	hwnd := windows.HWND(handle)
	img, err := printWindow(hwnd)
	if err != nil && !windows.IsWindow(hwnd) {
		return nil, fmt.Errorf("window %d: %w", handle, ErrWindowGone)
	}
	return img, err
}

func printWindow(hwnd windows.HWND) (*image.RGBA, error) {
	var r rect
	if ok, _, e := procGetWindowRect.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&r))); ok == 0 {
		return nil, fmt.Errorf("GetWindowRect: %w", callErr(e))
	}
	w := int(r.Right - r.Left)
	h := int(r.Bottom - r.Top)
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("window has empty bounds %dx%d", w, h)
	}

	hdc, _, e := procGetWindowDC.Call(uintptr(hwnd))
	if hdc == 0 {
		return nil, fmt.Errorf("GetWindowDC: %w", callErr(e))
	}
	defer procReleaseDC.Call(uintptr(hwnd), hdc)

	memDC, _, e := procCreateCompatibleDC.Call(hdc)
	if memDC == 0 {
		return nil, fmt.Errorf("CreateCompatibleDC: %w", callErr(e))
	}
	defer procDeleteDC.Call(memDC)

	bmp, _, e := procCreateCompatibleBitmap.Call(hdc, uintptr(w), uintptr(h))
	if bmp == 0 {
		return nil, fmt.Errorf("CreateCompatibleBitmap: %w", callErr(e))
	}
	defer procDeleteObject.Call(bmp)

	old, _, _ := procSelectObject.Call(memDC, bmp)
	defer procSelectObject.Call(memDC, old)

	if ok, _, e := procPrintWindow.Call(uintptr(hwnd), memDC, pwRenderFullContent); ok == 0 {
		return nil, fmt.Errorf("PrintWindow: %w", callErr(e))
	}

	hdr := bitmapInfoHeader{
		Width:       int32(w),
		Height:      -int32(h), // top-down rows
		Planes:      1,
		BitCount:    32,
		Compression: biRGB,
	}
	hdr.Size = uint32(unsafe.Sizeof(hdr))

	bgrx := make([]byte, w*h*4)
	lines, _, e := procGetDIBits.Call(
		memDC, bmp, 0, uintptr(h),
		uintptr(unsafe.Pointer(&bgrx[0])),
		uintptr(unsafe.Pointer(&hdr)),
		dibRGBColors,
	)
	if int(lines) != h {
		return nil, fmt.Errorf("GetDIBits copied %d of %d lines: %w", lines, h, callErr(e))
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	bgrxToRGBA(img.Pix, bgrx)
	return img, nil
}

func callErr(e error) error {
	if errno, ok := e.(syscall.Errno); ok && errno == 0 {
		return fmt.Errorf("call failed")
	}
	return e
}

// ListWindows returns visible top-level windows that have a title.
func ListWindows() ([]WindowInfo, error) {
	var out []WindowInfo
	cb := windows.NewCallback(func(hwnd windows.HWND, _ uintptr) uintptr {
		if !windows.IsWindowVisible(hwnd) {
			return 1
		}
		title := windowText(hwnd)
		if title == "" {
			return 1
		}
		out = append(out, WindowInfo{Handle: uint64(hwnd), Title: title})
		return 1
	})
	if err := windows.EnumWindows(cb, nil); err != nil {
		return nil, fmt.Errorf("EnumWindows: %w", err)
	}
	return out, nil
}

func windowText(hwnd windows.HWND) string {
	buf := make([]uint16, 256)
	n, _, _ := procGetWindowTextW.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	if n == 0 {
		return ""
	}
	return windows.UTF16ToString(buf[:n])
}
