// Package logging builds the zap logger shared by all components.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options controls where log lines go.
type Options struct {
	Level    string // DEBUG, INFO, WARNING, ERROR, CRITICAL (case-insensitive)
	FilePath string // Append-only log file, empty to disable
	Console  bool   // Mirror to stdout
}

// ParseLevel maps a config log level onto a zap level.
// Unknown values fall back to info and report an error.
func ParseLevel(level string) (zapcore.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return zapcore.DebugLevel, nil
	case "", "INFO":
		return zapcore.InfoLevel, nil
	case "WARN", "WARNING":
		return zapcore.WarnLevel, nil
	case "ERROR":
		return zapcore.ErrorLevel, nil
	case "CRITICAL", "FATAL":
		// Never exit the process on a log call.
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", level)
	}
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "time"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.CallerKey = zapcore.OmitKey
	cfg.StacktraceKey = zapcore.OmitKey
	return cfg
}

// New builds a logger writing plain-text lines (time, level, message, fields).
// If the log file cannot be opened the logger keeps the console core, or
// falls back to stderr, and returns the open error alongside it.
func New(opts Options) (*zap.Logger, error) {
	level, levelErr := ParseLevel(opts.Level)
	enabler := zap.NewAtomicLevelAt(level)
	encoder := zapcore.NewConsoleEncoder(encoderConfig())

	var cores []zapcore.Core
	var openErr error

	if opts.FilePath != "" {
		f, err := openLogFile(opts.FilePath)
		if err != nil {
			openErr = err
		} else {
			cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(f), enabler))
		}
	}

	if opts.Console {
		cores = append(cores, zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), enabler))
	}

	if len(cores) == 0 {
		cores = append(cores, zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), enabler))
	}

	logger := zap.New(zapcore.NewTee(cores...))

	if levelErr != nil {
		logger.Warn("invalid log_level, using INFO", zap.String("log_level", opts.Level))
	}
	return logger, openErr
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}
