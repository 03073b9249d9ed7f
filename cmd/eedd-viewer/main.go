package main

import (
	"errors"
	"flag"
	"net/http"
	"os"

	"github.com/eedd/esp32-extra-display/internal/config"
	"github.com/eedd/esp32-extra-display/internal/display"
	"github.com/eedd/esp32-extra-display/internal/logging"
	"github.com/eedd/esp32-extra-display/internal/transport"
	"github.com/eedd/esp32-extra-display/internal/viewer"
)

func main() {
	cfg, err := config.ParseViewerFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	log := logging.New(os.Stderr, logging.Level(cfg.Debug))
	if (cfg.Port == "") == (cfg.Listen == "") {
		log.Error("usage: eedd-viewer -port <device> | -listen <addr>")
		os.Exit(2)
	}

	disp := display.NewEbitenDisplay("ESP32 Extra Display", cfg.Scale)

	if cfg.Port != "" {
		port, err := transport.OpenSerialPort(cfg.Port, cfg.Baud)
		if err != nil {
			log.Error("open port", "err", err)
			os.Exit(1)
		}
		defer port.Close()
		log.Info("reading frames", "port", cfg.Port, "baud", cfg.Baud)

		go func() {
			if err := viewer.Receive(port, disp, log); err != nil {
				log.Error("receive", "err", err)
				return
			}
			log.Info("port closed")
		}()
	} else {
		srv := &http.Server{Addr: cfg.Listen, Handler: viewer.NewHandler(disp, log)}
		go func() {
			log.Info("waiting for daemon", "listen", cfg.Listen)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("listen", "err", err)
				os.Exit(1)
			}
		}()
		defer srv.Close()
	}

	// Ebitengine RunGame must be on the main goroutine (macOS requirement).
	if err := disp.Run(); err != nil {
		log.Error("display", "err", err)
		os.Exit(1)
	}
}
