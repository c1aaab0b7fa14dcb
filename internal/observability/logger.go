package observability

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// NewLogger builds a slog logger writing timestamped lines to w. Format is
// "text" or "json"; level is "debug", "info", "warn", or "error". The
// returned handle is meant to be injected into pipelines: configure once
// at process start, no global registry.
func NewLogger(level, format string, w io.Writer) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// JobLogger builds the logger a job file asks for: stderr always, plus an
// append-mode log file when logFile is set. The returned closer flushes
// the file handle and is safe to call more than once.
func JobLogger(level, format, logFile string) (*slog.Logger, func(), error) {
	var out io.Writer = os.Stderr
	closeLog := func() {}
	if logFile != "" {
		f, err := OpenLogFile(logFile)
		if err != nil {
			return nil, nil, err
		}
		out = io.MultiWriter(os.Stderr, f)
		closeLog = func() { _ = f.Close() }
	}
	return NewLogger(level, format, out), closeLog, nil
}

// OpenLogFile opens (creating directories as needed) an append-mode log
// file, so repeated runs extend one log rather than truncating it.
func OpenLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}
