package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/eedd/esp32-extra-display/internal/capture"
)

var (
	// ErrOutOfRange is returned for a 1-based index outside the list.
	ErrOutOfRange = errors.New("index out of range")
	// ErrNoMatch is returned when no window title matches.
	ErrNoMatch = errors.New("no match")
)

// ResolvePort turns a -connect argument into a device path. A number is a
// 1-based index into devices, which must be sorted as they were listed.
func ResolvePort(arg string, devices []string) (string, error) {
	if !IsIndex(arg) {
		return arg, nil
	}
	i, err := strconv.Atoi(arg)
	if err != nil {
		return "", fmt.Errorf("port index %q: %w", arg, err)
	}
	if i < 1 || i > len(devices) {
		return "", fmt.Errorf("no port at index %d (out of %d ports): %w", i, len(devices), ErrOutOfRange)
	}
	return devices[i-1], nil
}

// ResolveWindow turns a -window argument into a capture target.
//
//	"12345"   window handle
//	"#3"      third entry of windows
//	"editor"  title: exact (case-insensitive) match first, then substring
func ResolveWindow(arg string, windows []capture.WindowInfo) (capture.Target, error) {
	if arg == "" {
		return capture.FullScreen(), nil
	}
	if rest, ok := strings.CutPrefix(arg, "#"); ok && IsIndex(rest) {
		i, err := strconv.Atoi(rest)
		if err != nil {
			return capture.Target{}, fmt.Errorf("window index %q: %w", arg, err)
		}
		if i < 1 || i > len(windows) {
			return capture.Target{}, fmt.Errorf("no window at index %d (out of %d windows): %w", i, len(windows), ErrOutOfRange)
		}
		return capture.Window(windows[i-1].Handle), nil
	}
	if h, err := strconv.ParseUint(arg, 0, 64); err == nil {
		return capture.Window(h), nil
	}

	needle := strings.ToLower(arg)
	for _, w := range windows {
		if strings.ToLower(w.Title) == needle {
			return capture.Window(w.Handle), nil
		}
	}
	for _, w := range windows {
		if strings.Contains(strings.ToLower(w.Title), needle) {
			return capture.Window(w.Handle), nil
		}
	}
	return capture.Target{}, fmt.Errorf("no window titled %q: %w", arg, ErrNoMatch)
}

// IsIndex reports whether s is an optionally negative run of digits, the
// form ResolvePort treats as a list index.
func IsIndex(s string) bool {
	s = strings.TrimPrefix(s, "-")
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
