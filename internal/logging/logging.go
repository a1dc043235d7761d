// Package logging configures the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Config is the logging section of the service configuration.
type Config struct {
	LogLevel        string `json:"log_level" yaml:"log_level"` // debug, info, warn, error
	Format          string `json:"format" yaml:"format"`       // json, text
	IncludeSrc      bool   `json:"include_src" yaml:"include_src"`
	LogToFile       bool   `json:"log_to_file" yaml:"log_to_file"`
	Filename        string `json:"filename" yaml:"filename"`
	MaxSize         int    `json:"max_size" yaml:"max_size"`
	MaxAge          int    `json:"max_age" yaml:"max_age"`
	MaxBackups      int    `json:"max_backups" yaml:"max_backups"`
	CompressOldLogs bool   `json:"compress_old_logs" yaml:"compress_old_logs"`
}

// Init builds a logger writing to stdout (and the rotated log file when
// enabled) and installs it as the slog default.
func Init(cfg Config) *slog.Logger {
	logger := New(cfg, os.Stdout)
	slog.SetDefault(logger)
	return logger
}

// New builds a logger writing to w, plus the rotated log file when enabled.
func New(cfg Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     LevelFromString(cfg.LogLevel),
		AddSource: cfg.IncludeSrc,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.SourceKey {
				source, _ := a.Value.Any().(*slog.Source)
				if source != nil {
					source.File = filepath.Base(source.File)
					source.Function = strings.TrimPrefix(source.Function, "github.com/njchilds90/symdiff")
				}
			}
			return a
		},
	}

	if cfg.LogToFile && cfg.Filename != "" {
		logTarget := &lumberjack.Logger{
			Filename:   cfg.Filename,
			MaxSize:    cfg.MaxSize,         // megabytes
			MaxAge:     cfg.MaxAge,          // days
			Compress:   cfg.CompressOldLogs, // compress old files
			MaxBackups: cfg.MaxBackups,
		}
		w = io.MultiWriter(w, logTarget)
	}

	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// LevelFromString maps debug, info, warn and error to slog levels. Anything
// else is info.
func LevelFromString(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
