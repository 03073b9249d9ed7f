//go:build darwin && cgo

package capture

/*
#cgo LDFLAGS: -framework CoreGraphics -framework CoreFoundation
#include <CoreGraphics/CoreGraphics.h>
#include <CoreFoundation/CoreFoundation.h>
#include <dlfcn.h>
#include <stdlib.h>
#include <string.h>

typedef struct {
    void*  data;
    size_t size;
    int    width;
    int    height;
    size_t bytesPerRow;
    int    gone;
} WindowData;

typedef struct {
    uint32_t id;
    char     title[256];
} WindowEntry;

// CGWindowListCreateImage is unavailable in the macOS 15 SDK headers but still
// present in the CoreGraphics dylib. Load it dynamically.
typedef CGImageRef (*CGWindowListCreateImageFunc)(
    CGRect screenBounds,
    uint32_t listOption,
    uint32_t windowID,
    uint32_t imageOption
);

static CGWindowListCreateImageFunc getCGWindowListCreateImage(void) {
    static CGWindowListCreateImageFunc fn = NULL;
    if (!fn) {
        fn = (CGWindowListCreateImageFunc)dlsym(RTLD_DEFAULT, "CGWindowListCreateImage");
    }
    return fn;
}

static int windowExists(uint32_t windowID) {
    CFArrayRef list = CGWindowListCopyWindowInfo(kCGWindowListOptionIncludingWindow, windowID);
    if (!list) {
        return 0;
    }
    CFIndex n = CFArrayGetCount(list);
    CFRelease(list);
    return n > 0;
}

WindowData captureWindow(uint32_t windowID) {
    WindowData result = {0};

    if (!windowExists(windowID)) {
        result.gone = 1;
        return result;
    }

    CGWindowListCreateImageFunc fn = getCGWindowListCreateImage();
    if (!fn) {
        return result;
    }

    // kCGWindowListOptionIncludingWindow = 8 renders the window even when it
    // is covered. kCGWindowImageBoundsIgnoreFraming = 1.
    CGImageRef image = fn(CGRectNull, 8, windowID, 1);
    if (!image) {
        result.gone = !windowExists(windowID);
        return result;
    }

    result.width  = (int)CGImageGetWidth(image);
    result.height = (int)CGImageGetHeight(image);

    result.bytesPerRow = result.width * 4;
    result.size        = result.bytesPerRow * result.height;
    result.data        = malloc(result.size);
    if (!result.data) {
        CGImageRelease(image);
        result.size = 0;
        return result;
    }

    CGColorSpaceRef cs = CGColorSpaceCreateDeviceRGB();
    CGContextRef ctx = CGBitmapContextCreate(
        result.data,
        result.width,
        result.height,
        8,
        result.bytesPerRow,
        cs,
        kCGImageAlphaNoneSkipLast
    );
    CGContextDrawImage(ctx, CGRectMake(0, 0, result.width, result.height), image);
    CGContextRelease(ctx);
    CGColorSpaceRelease(cs);
    CGImageRelease(image);

    return result;
}

int listWindows(WindowEntry* out, int max) {
    CFArrayRef list = CGWindowListCopyWindowInfo(
        kCGWindowListOptionOnScreenOnly | kCGWindowListExcludeDesktopElements,
        kCGNullWindowID);
    if (!list) {
        return 0;
    }
    int count = 0;
    CFIndex n = CFArrayGetCount(list);
    for (CFIndex i = 0; i < n && count < max; i++) {
        CFDictionaryRef info = (CFDictionaryRef)CFArrayGetValueAtIndex(list, i);

        int layer = 0;
        CFNumberRef layerRef = (CFNumberRef)CFDictionaryGetValue(info, kCGWindowLayer);
        if (layerRef) {
            CFNumberGetValue(layerRef, kCFNumberIntType, &layer);
        }
        if (layer != 0) {
            continue;
        }

        CFStringRef name = (CFStringRef)CFDictionaryGetValue(info, kCGWindowName);
        if (!name || CFStringGetLength(name) == 0) {
            name = (CFStringRef)CFDictionaryGetValue(info, kCGWindowOwnerName);
        }
        if (!name || !CFStringGetCString(name, out[count].title, sizeof(out[count].title), kCFStringEncodingUTF8)) {
            continue;
        }
        if (strlen(out[count].title) == 0) {
            continue;
        }

        uint32_t id = 0;
        CFNumberRef idRef = (CFNumberRef)CFDictionaryGetValue(info, kCGWindowNumber);
        if (!idRef || !CFNumberGetValue(idRef, kCFNumberSInt32Type, &id)) {
            continue;
        }
        out[count].id = id;
        count++;
    }
    CFRelease(list);
    return count;
}

void freeWindowData(void* data) {
    free(data);
}
*/
import "C"

import (
	"context"
	"fmt"
	"image"
	"unsafe"
)

const maxListedWindows = 512

// cgWindowCapturer implements WindowCapturer using CoreGraphics.
type cgWindowCapturer struct{}

// NewWindowCapturer returns the CoreGraphics window backend.
func NewWindowCapturer() WindowCapturer {
	return cgWindowCapturer{}
}

func (cgWindowCapturer) CaptureWindow(ctx context.Context, handle uint64) (*image.RGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	wd := C.captureWindow(C.uint32_t(handle))
	if wd.gone != 0 {
		return nil, fmt.Errorf("window %d: %w", handle, ErrWindowGone)
	}
	if wd.data == nil {
		return nil, fmt.Errorf("window %d: CGWindowListCreateImage failed", handle)
	}
	defer C.freeWindowData(wd.data)

	w := int(wd.width)
	h := int(wd.height)
	byteLen := int(wd.size)

	pix := make([]byte, byteLen)
	copy(pix, unsafe.Slice((*byte)(wd.data), byteLen))

	// RGBX: the skipped byte is undefined, force it opaque.
	for i := 3; i < len(pix); i += 4 {
		pix[i] = 0xFF
	}

	return &image.RGBA{
		Pix:    pix,
		Stride: w * 4,
		Rect:   image.Rect(0, 0, w, h),
	}, nil
}

// ListWindows returns on-screen application windows in front-to-back order.
func ListWindows() ([]WindowInfo, error) {
	entries := make([]C.WindowEntry, maxListedWindows)
	n := int(C.listWindows(&entries[0], C.int(len(entries))))
	out := make([]WindowInfo, 0, n)
	for _, e := range entries[:n] {
		out = append(out, WindowInfo{
			Handle: uint64(e.id),
			Title:  C.GoString(&e.title[0]),
		})
	}
	return out, nil
}
