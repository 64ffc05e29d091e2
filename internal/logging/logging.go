// Package logging sets up the structured log file
package logging

import (
	"io"
	"log/slog"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls the log file.
type Options struct {
	Path       string
	Level      string
	MaxSizeMB  int
	MaxBackups int
}

// New returns a JSON logger that writes to a size-rotated file at
// opts.Path. The returned closer releases the file.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
		return nil, nil, errLogLevel.Fmt(opts.Level).Wrap(err)
	}

	w := &lumberjack.Logger{
		Filename:   opts.Path,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
	}

	return NewWithWriter(w, level), w, nil
}

// NewWithWriter returns a JSON logger writing records at or above level to w.
func NewWithWriter(w io.Writer, level slog.Level) *slog.Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})

	return slog.New(h).With(slog.String("app", "somnia"))
}
