package config

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Logging bundles the application logger with the writer it logs to, so the
// HTTP access log can share the same destination.
type Logging struct {
	Logger *slog.Logger
	Writer io.Writer

	rotating *lumberjack.Logger
}

// Close releases the rotating log file, if any.
func (l *Logging) Close() error {
	if l.rotating == nil {
		return nil
	}
	return l.rotating.Close()
}

// NewLogging builds the application logger from the logging configuration and
// redirects the standard log package to the same writer.
func NewLogging(cfg LoggingConfig) (*Logging, error) {
	l := &Logging{Writer: os.Stdout}

	if cfg.Output == "file" || cfg.Output == "both" {
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		l.rotating = &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSize, // MB
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge, // days
			Compress:   cfg.Compress,
		}
		l.Writer = l.rotating
		if cfg.Output == "both" {
			l.Writer = io.MultiWriter(os.Stdout, l.rotating)
		}
	}

	opts := &slog.HandlerOptions{
		Level:     parseLevel(cfg.Level),
		AddSource: cfg.EnableCaller,
	}
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(l.Writer, opts)
	} else {
		handler = slog.NewJSONHandler(l.Writer, opts)
	}
	l.Logger = slog.New(handler)

	log.SetOutput(l.Writer)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	return l, nil
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
