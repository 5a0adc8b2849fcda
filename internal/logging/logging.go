// Package logging builds the process logger.
package logging

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"cdr.dev/slog/v3"
	"cdr.dev/slog/v3/sloggers/sloghuman"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	// Level is one of debug, info, warn, error.
	Level string
	// File, when set, also receives logs with size based rotation.
	File string
}

// New returns a human readable logger on w plus a closer for any file sink.
func New(w io.Writer, opts Options) (slog.Logger, func(), error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return slog.Logger{}, func() {}, err
	}

	sinks := []slog.Sink{sloghuman.Sink(w)}
	closeLog := func() {}
	if opts.File != "" {
		fileWriter := &rotatingWriter{w: &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    20, // MB
			MaxBackups: 3,
		}}
		sinks = append(sinks, sloghuman.Sink(fileWriter))
		closeLog = func() { _ = fileWriter.Close() }
	}

	return slog.Make(sinks...).Leveled(level), closeLog, nil
}

func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// rotatingWriter stops lumberjack from reopening its file on writes that
// race with Close.
type rotatingWriter struct {
	w io.WriteCloser

	mu     sync.Mutex // Protects following.
	closed bool
}

func (r *rotatingWriter) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return 0, io.ErrClosedPipe
	}
	return r.w.Write(p)
}

func (r *rotatingWriter) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return r.w.Close()
}
