/*
NAME
  logging.go

DESCRIPTION
  logging.go provides a leveled Logger backed by zap, with file rotation
  via lumberjack, in the style used throughout the codec pipeline.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package logging provides the leveled Logger implementation shared by
// every component of the codec pipeline.
package logging

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Log levels, matching the int8 level scale used by components that
// accept a Logger.
const (
	Debug   int8 = -1
	Info    int8 = 0
	Warning int8 = 1
	Error   int8 = 2
	Fatal   int8 = 3
)

// Logger is the interface every pipeline component logs through. It is
// satisfied by *Logger but components should depend on the interface so
// that a no-op logger can be substituted in tests.
type Logger interface {
	SetLevel(int8)
	Log(level int8, message string, params ...interface{})
}

// Logger wraps a zap.SugaredLogger with a run-time adjustable level.
type Logger struct {
	level atomicLevel
	sl    *zap.SugaredLogger
}

// atomicLevel is a tiny int8 holder; zap's AtomicLevel works in zapcore
// levels which don't line up with our int8 scale, so we keep our own.
type atomicLevel struct {
	v int8
}

// New returns a Logger that writes JSON lines to w, and additionally to
// a rotated file at logPath if logPath is non-empty.
func New(level int8, w io.Writer, logPath string) *Logger {
	var writers []zapcore.WriteSyncer
	if w != nil {
		writers = append(writers, zapcore.AddSync(w))
	}
	if logPath != "" {
		writers = append(writers, zapcore.AddSync(&lumberjack.Logger{
			Filename:   logPath,
			MaxSize:    100, // MB
			MaxBackups: 5,
			MaxAge:     28, // days
			Compress:   true,
		}))
	}
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.NewMultiWriteSyncer(writers...),
		zapcore.DebugLevel,
	)
	l := &Logger{sl: zap.New(core).Sugar()}
	l.SetLevel(level)
	return l
}

// NewNop returns a Logger that discards everything, for tests and
// components constructed without explicit logging configuration.
func NewNop() *Logger {
	return &Logger{sl: zap.NewNop().Sugar()}
}

// SetLevel adjusts the minimum level that will be emitted.
func (l *Logger) SetLevel(level int8) { l.level.v = level }

// Log emits message at level, formatted with params the way fmt.Sprintf
// would, if level is at or above the configured minimum.
func (l *Logger) Log(level int8, message string, params ...interface{}) {
	if level < l.level.v {
		return
	}
	args := make([]interface{}, 0, len(params)+2)
	args = append(args, "level", level)
	args = append(args, params...)
	switch {
	case level >= Fatal:
		l.sl.Fatalw(message, args...)
	case level >= Error:
		l.sl.Errorw(message, args...)
	case level >= Warning:
		l.sl.Warnw(message, args...)
	default:
		l.sl.Infow(message, args...)
	}
}

// Sync flushes any buffered log entries.
func (l *Logger) Sync() error { return l.sl.Sync() }
