// Package logging builds the process logger once, at startup.
package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// FileName is the log file created under the log directory.
const FileName = "app.log"

// Setup creates dir, opens dir/app.log for appending and returns a logger
// writing to both stdout and the file. The returned closer releases the
// file.
func Setup(dir string, verbose bool) (*slog.Logger, io.Closer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log directory %q: %w", dir, err)
	}
	f, err := os.OpenFile(filepath.Join(dir, FileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return New(os.Stdout, f, verbose), f, nil
}

// New returns a logger that writes to console and file. The console uses
// text on terminals and JSON otherwise; the file is always JSON.
func New(console io.Writer, file io.Writer, verbose bool) *slog.Logger {
	level := &slog.LevelVar{}
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}
	opts := &slog.HandlerOptions{Level: level}

	var consoleHandler slog.Handler
	if f, ok := console.(*os.File); ok && isTerminal(f) {
		consoleHandler = slog.NewTextHandler(console, opts)
	} else {
		consoleHandler = slog.NewJSONHandler(console, opts)
	}
	if file == nil {
		return slog.New(consoleHandler)
	}
	return slog.New(fanout{consoleHandler, slog.NewJSONHandler(file, opts)})
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fanout []slog.Handler

func (h fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, handler := range h {
		if handler.Enabled(ctx, r.Level) {
			errs = append(errs, handler.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (h fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(h))
	for i, handler := range h {
		out[i] = handler.WithAttrs(attrs)
	}
	return out
}

func (h fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(h))
	for i, handler := range h {
		out[i] = handler.WithGroup(name)
	}
	return out
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
