package logging

import (
	"io"
	"log/slog"
)

// New builds the process logger. The level is read from lv on every record,
// so verbosity can be changed after construction.
func New(w io.Writer, lv *slog.LevelVar) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lv}))
}

// Level returns a LevelVar set to Debug when debug is true and Info otherwise.
func Level(debug bool) *slog.LevelVar {
	lv := new(slog.LevelVar)
	if debug {
		lv.Set(slog.LevelDebug)
	} else {
		lv.Set(slog.LevelInfo)
	}
	return lv
}

// Component returns a child logger tagged with the component name.
// A nil parent yields a logger that discards everything.
func Component(parent *slog.Logger, name string) *slog.Logger {
	if parent == nil {
		return Discard()
	}
	return parent.With("component", name)
}

// Discard returns a logger that drops all records.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
