package logger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"
)

// GormLogger sends GORM output to zap. Statements log at debug, slow ones
// at warn and failed ones at error, tagged with the ids on the query
// context.
type GormLogger struct {
	log      *zap.Logger
	level    gormlogger.LogLevel
	slow     time.Duration
	notFound bool
}

// GormOption tunes a GormLogger
type GormOption func(*GormLogger)

// SlowQueries sets the duration above which a statement logs at warn.
// Zero disables slow query reporting.
func SlowQueries(d time.Duration) GormOption {
	return func(l *GormLogger) { l.slow = d }
}

// LogRecordNotFound reports gorm.ErrRecordNotFound as a failed statement.
// The key-value store treats a missing row as a normal miss, so it is
// quiet by default.
func LogRecordNotFound() GormOption {
	return func(l *GormLogger) { l.notFound = true }
}

// NewGormLogger returns a GORM logger writing to log at level
func NewGormLogger(log *zap.Logger, level gormlogger.LogLevel, opts ...GormOption) *GormLogger {
	l := &GormLogger{
		log:   log.Named("gorm"),
		level: level,
		slow:  200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// ParseGormLevel maps a level name onto GORM's levels, defaulting to warn
func ParseGormLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info", "debug":
		return gormlogger.Info
	}
	return gormlogger.Warn
}

// LogMode implements gormlogger.Interface
func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cp := *l
	cp.level = level
	return &cp
}

// Info implements gormlogger.Interface
func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Info, zapcore.InfoLevel, msg, data)
}

// Warn implements gormlogger.Interface
func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Warn, zapcore.WarnLevel, msg, data)
}

// Error implements gormlogger.Interface
func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Error, zapcore.ErrorLevel, msg, data)
}

// Trace implements gormlogger.Interface
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	lvl, msg, ok := l.classify(elapsed, err)
	if !ok {
		return
	}

	sql, rows := fc()
	fields := []zap.Field{
		zap.String("sql", sql),
		zap.Int64("rows", rows),
		zap.Duration("elapsed", elapsed),
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	if lvl == zapcore.WarnLevel {
		fields = append(fields, zap.Duration("threshold", l.slow))
	}
	WithLogger(ctx, l.log).Log(lvl, msg, fields...)
}

func (l *GormLogger) classify(elapsed time.Duration, err error) (zapcore.Level, string, bool) {
	switch {
	case err != nil:
		if errors.Is(err, gormlogger.ErrRecordNotFound) && !l.notFound {
			return 0, "", false
		}
		return zapcore.ErrorLevel, "sql failed", l.level >= gormlogger.Error
	case l.slow > 0 && elapsed > l.slow:
		return zapcore.WarnLevel, "slow sql", l.level >= gormlogger.Warn
	default:
		return zapcore.DebugLevel, "sql", l.level >= gormlogger.Info
	}
}

func (l *GormLogger) printf(ctx context.Context, floor gormlogger.LogLevel, lvl zapcore.Level, msg string, data []any) {
	if l.level < floor {
		return
	}
	WithLogger(ctx, l.log).Log(lvl, fmt.Sprintf(msg, data...))
}
