package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/eedd/esp32-extra-display/internal/capture"
	"github.com/eedd/esp32-extra-display/internal/config"
	"github.com/eedd/esp32-extra-display/internal/daemon"
	"github.com/eedd/esp32-extra-display/internal/encoder"
	"github.com/eedd/esp32-extra-display/internal/logging"
	"github.com/eedd/esp32-extra-display/internal/transport"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.ParseDaemonFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	log := logging.New(os.Stderr, logging.Level(cfg.Debug))
	log.Debug("arguments received", "config", fmt.Sprintf("%+v", *cfg))

	switch {
	case cfg.ListPorts:
		return listPorts(log)
	case cfg.ListWindows:
		return listWindows(log)
	case cfg.Connect != "":
		return connect(cfg, log)
	default:
		log.Warn("nothing to do!")
		return 0
	}
}

func listPorts(log *slog.Logger) int {
	log.Info("listing connected serial ports")
	ports, err := transport.ListPorts()
	if err != nil {
		log.Error("list ports", "err", err)
		return 1
	}
	for i, p := range ports {
		log.Info(fmt.Sprintf("%d/%d: %s - %s", i+1, len(ports), p.Device, p.Description))
		if p.IsUSB {
			log.Debug("port details", "device", p.Device, "vid", p.VID, "pid", p.PID, "serial_number", p.SerialNumber)
		}
	}
	return 0
}

func listWindows(log *slog.Logger) int {
	log.Info("listing windows")
	windows, err := capture.ListWindows()
	if err != nil {
		log.Error("list windows", "err", err)
		return 1
	}
	for i, w := range windows {
		log.Info(fmt.Sprintf("%d/%d: %d - %s", i+1, len(windows), w.Handle, w.Title))
	}
	return 0
}

func connect(cfg *config.Config, log *slog.Logger) int {
	portPath, err := resolvePort(cfg.Connect)
	if err != nil {
		log.Error("resolve port", "err", err)
		return 1
	}

	target, err := resolveWindow(cfg.Window, log)
	if err != nil {
		log.Error("resolve window", "err", err)
		return 1
	}

	screen, err := capture.NewDisplayCapturer(cfg.DisplayIndex)
	if err != nil {
		log.Error("capture init", "err", err)
		return 1
	}

	log.Info("connecting", "port", portPath, "target", target.String())
	log.Debug("settings", "display", cfg.DisplayIndex, "interval", cfg.Interval, "quality", cfg.Quality, "baud", cfg.Baud)

	source := capture.NewSource(target, screen, nil, log)
	defer source.Close()
	enc := encoder.NewJPEGEncoder(cfg.Quality)
	open := func(port string, baud int) (daemon.Link, error) {
		link, err := transport.Open(port, baud, log)
		if err != nil {
			return nil, err
		}
		return link, nil
	}

	d := daemon.New(daemon.Config{
		Port:     portPath,
		Baud:     cfg.Baud,
		Interval: cfg.Interval,
	}, source, enc, open, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := d.Run(ctx); err != nil {
		log.Error("daemon stopped", "err", err)
		return 1
	}
	log.Info("shutting down")
	return 0
}

func resolvePort(arg string) (string, error) {
	if !config.IsIndex(arg) {
		return arg, nil
	}
	ports, err := transport.ListPorts()
	if err != nil {
		return "", err
	}
	devices := make([]string, len(ports))
	for i, p := range ports {
		devices[i] = p.Device
	}
	return config.ResolvePort(arg, devices)
}

func resolveWindow(arg string, log *slog.Logger) (capture.Target, error) {
	if arg == "" {
		return capture.FullScreen(), nil
	}
	windows, err := capture.ListWindows()
	if err != nil {
		// A raw handle still resolves without the list.
		log.Warn("list windows", "err", err)
	}
	return config.ResolveWindow(arg, windows)
}
