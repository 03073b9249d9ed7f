package daemon

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/eedd/esp32-extra-display/internal/encoder"
	"github.com/eedd/esp32-extra-display/internal/logging"
	"github.com/eedd/esp32-extra-display/internal/transport"
)

// DefaultInterval is the pause between the end of one frame and the start of
// the next capture.
const DefaultInterval = 100 * time.Millisecond

// ErrOpen wraps a failure to open the display link at startup.
var ErrOpen = errors.New("daemon: open display link")

// State is the daemon lifecycle state.
type State int32

const (
	Connecting State = iota
	Streaming
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Streaming:
		return "streaming"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Source yields a fresh image per call.
type Source interface {
	Capture(ctx context.Context) (image.Image, error)
}

// Link is an open connection to the display.
type Link interface {
	transport.FrameSender
	Close() error
}

// Opener opens the display link.
type Opener func(port string, baud int) (Link, error)

// Config holds daemon settings.
type Config struct {
	Port     string
	Baud     int
	Interval time.Duration
}

// Stats counts what has been sent.
type Stats struct {
	Frames uint64
	Bytes  uint64
}

// Daemon streams captured frames to the display one at a time.
type Daemon struct {
	cfg    Config
	source Source
	enc    encoder.Encoder
	open   Opener
	log    *slog.Logger

	state  atomic.Int32
	frames atomic.Uint64
	bytes  atomic.Uint64
}

// New creates a daemon. Zero Baud and Interval take the defaults.
func New(cfg Config, source Source, enc encoder.Encoder, open Opener, log *slog.Logger) *Daemon {
	if cfg.Baud <= 0 {
		cfg.Baud = transport.DefaultBaudRate
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	return &Daemon{
		cfg:    cfg,
		source: source,
		enc:    enc,
		open:   open,
		log:    logging.Component(log, "daemon"),
	}
}

// State returns the current lifecycle state.
func (d *Daemon) State() State {
	return State(d.state.Load())
}

// Stats returns totals since the latest Run started.
func (d *Daemon) Stats() Stats {
	return Stats{Frames: d.frames.Load(), Bytes: d.bytes.Load()}
}

// Run opens the link and streams until ctx is done or a stage fails.
// Cancellation returns nil; every other error is fatal for this run.
func (d *Daemon) Run(ctx context.Context) error {
	d.state.Store(int32(Connecting))
	d.frames.Store(0)
	d.bytes.Store(0)
	d.log.Info("opening port", "port", d.cfg.Port, "baud", d.cfg.Baud)

	link, err := d.open(d.cfg.Port, d.cfg.Baud)
	if err != nil {
		return fmt.Errorf("%w %s: %w", ErrOpen, d.cfg.Port, err)
	}
	defer func() {
		if err := link.Close(); err != nil {
			d.log.Warn("close link", "err", err)
		}
	}()

	d.state.Store(int32(Streaming))
	d.log.Info("successfully opened port", "port", d.cfg.Port, "interval", d.cfg.Interval)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for cycle := uint64(1); ; cycle++ {
		if err := d.cycle(ctx, link, cycle); err != nil {
			if ctx.Err() != nil {
				return d.stopped()
			}
			return err
		}

		timer.Reset(d.cfg.Interval)
		select {
		case <-ctx.Done():
			return d.stopped()
		case <-timer.C:
		}
	}
}

func (d *Daemon) cycle(ctx context.Context, link Link, n uint64) error {
	img, err := d.source.Capture(ctx)
	if err != nil {
		return fmt.Errorf("cycle %d: capture: %w", n, err)
	}
	frame, err := d.enc.Encode(img)
	if err != nil {
		return fmt.Errorf("cycle %d: encode: %w", n, err)
	}
	if err := link.Send(frame); err != nil {
		return fmt.Errorf("cycle %d: send: %w", n, err)
	}
	d.frames.Add(1)
	d.bytes.Add(uint64(len(frame)))
	d.log.Debug("frame streamed", "cycle", n, "bytes", len(frame))
	return nil
}

func (d *Daemon) stopped() error {
	st := d.Stats()
	d.log.Info("streaming stopped", "frames", st.Frames, "bytes", st.Bytes)
	return nil
}
