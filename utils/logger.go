// Package utils provides logging shared by the client packages.
package utils

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel represents the verbosity of a Logger.
type LogLevel int

const (
	LogLevelOff LogLevel = iota
	LogLevelError
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

// String returns the lower-case level name.
func (l LogLevel) String() string {
	switch l {
	case LogLevelOff:
		return "off"
	case LogLevelError:
		return "error"
	case LogLevelWarn:
		return "warn"
	case LogLevelInfo:
		return "info"
	case LogLevelDebug:
		return "debug"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// ParseLogLevel converts a level name to a LogLevel.
func ParseLogLevel(name string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "off", "none":
		return LogLevelOff, nil
	case "error":
		return LogLevelError, nil
	case "warn", "warning":
		return LogLevelWarn, nil
	case "info", "":
		return LogLevelInfo, nil
	case "debug":
		return LogLevelDebug, nil
	default:
		return LogLevelInfo, fmt.Errorf("invalid log level %q", name)
	}
}

// Logger is the structured logger used throughout the client.
// Arguments after msg are alternating keys and values.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	SetLevel(level LogLevel)
}

type zapLogger struct {
	sugar *zap.SugaredLogger
	level zap.AtomicLevel
}

// NewLogger creates a Zap-backed logger writing to stderr.
// format is "json" (default) or "console".
func NewLogger(level LogLevel, format string) (Logger, error) {
	var encCfg zapcore.EncoderConfig
	var encoder zapcore.Encoder
	switch format {
	case "console":
		encCfg = zap.NewDevelopmentEncoderConfig()
		encoder = zapcore.NewConsoleEncoder(encCfg)
	case "json", "":
		encCfg = zap.NewProductionEncoderConfig()
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(encCfg)
	default:
		return nil, fmt.Errorf("invalid log format %q: must be \"json\" or \"console\"", format)
	}

	atom := zap.NewAtomicLevel()
	core := zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), atom)
	l := &zapLogger{sugar: zap.New(core).Sugar(), level: atom}
	l.SetLevel(level)
	return l, nil
}

// NewZapLogger wraps an existing Zap logger.
func NewZapLogger(base *zap.Logger, level LogLevel) Logger {
	atom := zap.NewAtomicLevel()
	core := base.Core()
	l := &zapLogger{
		sugar: zap.New(&levelFilter{Core: core, level: atom}).Sugar(),
		level: atom,
	}
	l.SetLevel(level)
	return l
}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() Logger {
	return &zapLogger{sugar: zap.NewNop().Sugar(), level: zap.NewAtomicLevel()}
}

func (l *zapLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l *zapLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Infow(msg, keysAndValues...)
}

func (l *zapLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.sugar.Warnw(msg, keysAndValues...)
}

func (l *zapLogger) Error(msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, keysAndValues...)
}

// SetLevel adjusts verbosity. LogLevelOff silences the logger.
func (l *zapLogger) SetLevel(level LogLevel) {
	switch level {
	case LogLevelOff:
		l.level.SetLevel(zapcore.FatalLevel + 1)
	case LogLevelDebug:
		l.level.SetLevel(zapcore.DebugLevel)
	case LogLevelInfo:
		l.level.SetLevel(zapcore.InfoLevel)
	case LogLevelWarn:
		l.level.SetLevel(zapcore.WarnLevel)
	default:
		l.level.SetLevel(zapcore.ErrorLevel)
	}
}

// levelFilter gates an existing core behind an adjustable level.
type levelFilter struct {
	zapcore.Core
	level zap.AtomicLevel
}

func (f *levelFilter) Enabled(lvl zapcore.Level) bool {
	return f.level.Enabled(lvl) && f.Core.Enabled(lvl)
}

func (f *levelFilter) With(fields []zapcore.Field) zapcore.Core {
	return &levelFilter{Core: f.Core.With(fields), level: f.level}
}

func (f *levelFilter) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !f.Enabled(ent.Level) {
		return ce
	}
	return f.Core.Check(ent, ce)
}
