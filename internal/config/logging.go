package config

import (
	"io"
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
	"gopkg.in/natefinch/lumberjack.v2"
)

// SetupLogger creates the process logger: text to stderr for humans,
// JSON to a rotating file for later inspection, and a bounded in-memory
// ring so recent log lines can be surfaced over the message channel.
// Returns the logger, the ring handler, and a cleanup function.
func SetupLogger(cfg Config) (*slog.Logger, *RingHandler, func() error) {
	stderrHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	})

	ring := NewRingHandler(cfg.LogBufferSize, cfg.LogLevel)

	if cfg.LogFile == "" {
		return slog.New(slogmulti.Fanout(stderrHandler, ring)), ring, func() error { return nil }
	}

	// Rotating file keeps the log bounded on disk the same way the ring
	// bounds it in memory.
	file := &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
	}
	fileHandler := slog.NewJSONHandler(file, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	})

	logger := slog.New(slogmulti.Fanout(stderrHandler, fileHandler, ring))
	return logger, ring, file.Close
}

// SetupLoggerWithWriters creates a logger with custom writers plus the
// ring handler (for testing).
func SetupLoggerWithWriters(stderr, file io.Writer, level slog.Level, bufferSize int) (*slog.Logger, *RingHandler) {
	stderrHandler := slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})
	fileHandler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level})
	ring := NewRingHandler(bufferSize, level)
	return slog.New(slogmulti.Fanout(stderrHandler, fileHandler, ring)), ring
}
