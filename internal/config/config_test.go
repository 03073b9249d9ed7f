package config

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/eedd/esp32-extra-display/internal/capture"
)

func TestParseDaemonFlagsDefaults(t *testing.T) {
	cfg, err := ParseDaemonFlags(nil, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Interval != 100*time.Millisecond || cfg.Quality != 75 || cfg.Baud != 115200 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Connect != "" || cfg.ListPorts || cfg.Debug {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestParseDaemonFlagsShorthands(t *testing.T) {
	cfg, err := ParseDaemonFlags([]string{"-c", "2", "-w", "#1", "-d", "-interval", "250ms"}, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Connect != "2" || cfg.Window != "#1" || !cfg.Debug || cfg.Interval != 250*time.Millisecond {
		t.Fatalf("got %+v", cfg)
	}
}

func TestParseDaemonFlagsRejectsUnknown(t *testing.T) {
	if _, err := ParseDaemonFlags([]string{"-bogus"}, io.Discard); err == nil {
		t.Fatal("expected error")
	}
}

func TestParseViewerFlags(t *testing.T) {
	cfg, err := ParseViewerFlags([]string{"-listen", ":9000", "-scale", "0"}, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Listen != ":9000" || cfg.Scale != 1 {
		t.Fatalf("got %+v", cfg)
	}
}

func TestResolvePort(t *testing.T) {
	devices := []string{"/dev/ttyACM0", "/dev/ttyUSB0", "COM3"}
	tests := []struct {
		arg     string
		want    string
		wantErr error
	}{
		{"/dev/ttyS9", "/dev/ttyS9", nil},
		{"COM7", "COM7", nil},
		{"1", "/dev/ttyACM0", nil},
		{"3", "COM3", nil},
		{"4", "", ErrOutOfRange},
		{"0", "", ErrOutOfRange},
		{"-1", "", ErrOutOfRange},
	}
	for _, tt := range tests {
		got, err := ResolvePort(tt.arg, devices)
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("ResolvePort(%q) err = %v, want %v", tt.arg, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ResolvePort(%q) = %q, want %q", tt.arg, got, tt.want)
		}
	}
}

func TestResolveWindow(t *testing.T) {
	windows := []capture.WindowInfo{
		{Handle: 100, Title: "Terminal - bash"},
		{Handle: 200, Title: "Music"},
		{Handle: 300, Title: "Music Library"},
	}
	tests := []struct {
		arg     string
		want    capture.Target
		wantErr error
	}{
		{"", capture.FullScreen(), nil},
		{"12345", capture.Window(12345), nil},
		{"0x10", capture.Window(16), nil},
		{"#1", capture.Window(100), nil},
		{"#3", capture.Window(300), nil},
		{"#4", capture.Target{}, ErrOutOfRange},
		{"#0", capture.Target{}, ErrOutOfRange},
		{"music", capture.Window(200), nil},
		{"LIBRARY", capture.Window(300), nil},
		{"terminal", capture.Window(100), nil},
		{"browser", capture.Target{}, ErrNoMatch},
	}
	for _, tt := range tests {
		got, err := ResolveWindow(tt.arg, windows)
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("ResolveWindow(%q) err = %v, want %v", tt.arg, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ResolveWindow(%q) = %v, want %v", tt.arg, got, tt.want)
		}
	}
}
