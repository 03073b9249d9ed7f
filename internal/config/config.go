package config

import (
	"flag"
	"io"
	"time"

	"github.com/eedd/esp32-extra-display/internal/daemon"
	"github.com/eedd/esp32-extra-display/internal/encoder"
	"github.com/eedd/esp32-extra-display/internal/transport"
)

// Config holds all runtime configuration of the daemon.
type Config struct {
	ListPorts    bool
	ListWindows  bool
	Connect      string
	Window       string
	DisplayIndex int
	Interval     time.Duration
	Quality      int
	Baud         int
	Debug        bool
}

// ParseDaemonFlags parses flags for the daemon binary.
func ParseDaemonFlags(args []string, output io.Writer) (*Config, error) {
	cfg := &Config{}
	fs := flag.NewFlagSet("eedd", flag.ContinueOnError)
	fs.SetOutput(output)

	fs.BoolVar(&cfg.ListPorts, "list-ports", false, "List serial ports and exit")
	fs.BoolVar(&cfg.ListPorts, "l", false, "Shorthand for -list-ports")
	fs.BoolVar(&cfg.ListWindows, "list-windows", false, "List windows and exit")
	fs.StringVar(&cfg.Connect, "connect", "", "Connect to an ESP32 Extra Display (device path, 1-based index, or ws:// URL)")
	fs.StringVar(&cfg.Connect, "c", "", "Shorthand for -connect")
	fs.StringVar(&cfg.Window, "window", "", "Stream a window instead of the screen (handle, #index, or title)")
	fs.StringVar(&cfg.Window, "w", "", "Shorthand for -window")
	fs.IntVar(&cfg.DisplayIndex, "display", 0, "Display index to capture (0 = primary)")
	fs.DurationVar(&cfg.Interval, "interval", daemon.DefaultInterval, "Pause between frames")
	fs.IntVar(&cfg.Quality, "quality", encoder.DefaultQuality, "JPEG quality (1-100)")
	fs.IntVar(&cfg.Baud, "baud", transport.DefaultBaudRate, "Serial baud rate")
	fs.BoolVar(&cfg.Debug, "debug", false, "Whether to show debug output or not")
	fs.BoolVar(&cfg.Debug, "d", false, "Shorthand for -debug")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ViewerConfig holds configuration for the display emulator.
type ViewerConfig struct {
	Port   string
	Listen string
	Baud   int
	Scale  int
	Debug  bool
}

// ParseViewerFlags parses flags for the emulator binary.
func ParseViewerFlags(args []string, output io.Writer) (*ViewerConfig, error) {
	cfg := &ViewerConfig{}
	fs := flag.NewFlagSet("eedd-viewer", flag.ContinueOnError)
	fs.SetOutput(output)

	fs.StringVar(&cfg.Port, "port", "", "Serial device to read frames from")
	fs.StringVar(&cfg.Listen, "listen", "", "Accept a websocket stream on this address (e.g. :8080)")
	fs.IntVar(&cfg.Baud, "baud", transport.DefaultBaudRate, "Serial baud rate")
	fs.IntVar(&cfg.Scale, "scale", 2, "Initial window scale")
	fs.BoolVar(&cfg.Debug, "debug", false, "Whether to show debug output or not")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if cfg.Scale < 1 {
		cfg.Scale = 1
	}
	return cfg, nil
}
