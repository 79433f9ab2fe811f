// Package logger builds the zap logger used by every fin command. Logs go to
// a rotating file so they never interleave with terminal output.
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

// Rotation limits for the log file.
const (
	MaxSizeMB  = 10
	MaxBackups = 5
	MaxAgeDays = 14
)

// Config selects the log level and destination.
type Config struct {
	Level string
	File  string
}

// Logger wraps a zap logger with the writer it owns.
type Logger struct {
	*zap.Logger
	closer io.Closer
}

// ParseLevel converts a level name to a zap level. Unknown names map to info.
func ParseLevel(name string) zapcore.Level {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(name)); err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

// New creates a JSON logger writing to a lumberjack-rotated file. An empty
// file name discards all output.
func New(cfg Config) (*Logger, error) {
	if cfg.File == "" {
		return &Logger{Logger: zap.NewNop()}, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	sink := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    MaxSizeMB,
		MaxBackups: MaxBackups,
		MaxAge:     MaxAgeDays,
		Compress:   true,
	}
	return &Logger{Logger: NewWithWriter(zapcore.AddSync(sink), ParseLevel(cfg.Level)), closer: sink}, nil
}

// NewWithWriter creates a JSON logger writing to w.
func NewWithWriter(w zapcore.WriteSyncer, level zapcore.Level) *zap.Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), w, zap.NewAtomicLevelAt(level))
	return zap.New(core, zap.AddCaller())
}

// Close flushes buffered entries and closes the log file.
func (l *Logger) Close() error {
	_ = l.Logger.Sync()
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}
