// Package logger builds the zap loggers used by the timeline tools.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config describes where and how much to log.
type Config struct {
	Level  string `yaml:"level"`            // debug, info, warn or error
	Format string `yaml:"format,omitempty"` // console (default) or json
	// File, if set, receives a JSON copy of the log, rotated by lumberjack.
	File       string `yaml:"file,omitempty"`
	MaxSize    int    `yaml:"maxSize,omitempty"` // megabytes
	MaxBackups int    `yaml:"maxBackups,omitempty"`
	MaxAge     int    `yaml:"maxAge,omitempty"` // days
	Compress   bool   `yaml:"compress,omitempty"`
}

// New builds a logger writing to stderr and, if configured, to a rotated
// file.
func New(c Config) (*zap.Logger, error) {
	return newLogger(c, os.Stderr)
}

func newLogger(c Config, console io.Writer) (*zap.Logger, error) {
	level, err := ParseLevel(c.Level)
	if err != nil {
		return nil, err
	}
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.RFC3339TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	var consoleEncoder zapcore.Encoder
	switch c.Format {
	case "", "console":
		consoleEncoder = zapcore.NewConsoleEncoder(encoderConfig)
	case "json":
		consoleEncoder = zapcore.NewJSONEncoder(encoderConfig)
	default:
		return nil, fmt.Errorf("unknown log format %q", c.Format)
	}
	core := zapcore.NewCore(consoleEncoder, zapcore.AddSync(console), level)
	if c.File != "" {
		if err := os.MkdirAll(filepath.Dir(c.File), 0755); err != nil {
			return nil, fmt.Errorf("could not create log directory: %w", err)
		}
		fileWriter := zapcore.AddSync(&lumberjack.Logger{
			Filename:   c.File,
			MaxSize:    c.MaxSize,
			MaxBackups: c.MaxBackups,
			MaxAge:     c.MaxAge,
			Compress:   c.Compress,
		})
		core = zapcore.NewTee(core, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), fileWriter, level))
	}
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

// ParseLevel parses a level name; "" means info.
func ParseLevel(s string) (zapcore.Level, error) {
	switch s {
	case "debug":
		return zapcore.DebugLevel, nil
	case "", "info":
		return zapcore.InfoLevel, nil
	case "warn":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}
