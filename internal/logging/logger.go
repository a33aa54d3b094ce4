// Package logging is a thin structured logger over zap.
//
// Secret material is never passed to the logger; callers log fingerprints,
// handles and error kinds only.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a wrapper for zap.SugaredLogger.
type Logger struct {
	z *zap.SugaredLogger
}

// Config holds the running environment, which is either "development" or
// "production", an optional file to write logs to in addition to stderr,
// and an option to explicitly enable stacktrace output.
type Config struct {
	Environment      string `toml:"env" yaml:"env"`
	Path             string `toml:"path,omitempty" yaml:"path,omitempty"`
	EnableStacktrace bool   `toml:"enable_stacktrace,omitempty" yaml:"enable_stacktrace,omitempty"`
}

// New builds a Logger. Development writes Debug and above, production Info
// and above, both in a human-friendly console format.
func New(conf Config) (*Logger, error) {
	level := zap.NewAtomicLevel()
	switch {
	case strings.EqualFold("development", conf.Environment):
		level.SetLevel(zap.DebugLevel)
	case conf.Environment == "", strings.EqualFold("production", conf.Environment):
		level.SetLevel(zap.InfoLevel)
	default:
		return nil, fmt.Errorf("logging: environment must be development or production, got %q", conf.Environment)
	}

	outputs := []string{"stderr"}
	if conf.Path != "" {
		outputs = append(outputs, conf.Path)
	}

	zc := &zap.Config{
		Level:             level,
		Encoding:          "console",
		DisableStacktrace: !conf.EnableStacktrace,
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "timestamp",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "path",
			MessageKey:     "msg",
			StacktraceKey:  "stack",
			EncodeLevel:    zapcore.CapitalLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
		},
		OutputPaths:      outputs,
		ErrorOutputPaths: []string{"stderr"},
	}
	z, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("logging: build: %w", err)
	}
	return &Logger{z.Sugar()}, nil
}

// Nop returns a Logger that discards everything.
func Nop() *Logger { return &Logger{zap.NewNop().Sugar()} }

// FromZap wraps an existing zap logger, e.g. zaptest's.
func FromZap(z *zap.Logger) *Logger { return &Logger{z.Sugar()} }

// Named returns a child logger with name appended to the logger name.
func (l *Logger) Named(name string) *Logger { return &Logger{l.z.Named(name)} }

// With returns a child logger carrying the given key/value pairs.
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{l.z.With(keysAndValues...)}
}

// Debug logs a message useful when debugging, with key/value context.
func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.z.Debugw(msg, keysAndValues...)
}

// Info logs normal progress, with key/value context.
func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.z.Infow(msg, keysAndValues...)
}

// Warn logs a potentially harmful situation, with key/value context.
func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.z.Warnw(msg, keysAndValues...)
}

// Error logs a failed operation that does not stop the process.
func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.z.Errorw(msg, keysAndValues...)
}

// Sync flushes buffered log entries.
func (l *Logger) Sync() error { return l.z.Sync() }
