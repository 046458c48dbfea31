package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"
)

func sqlFn(sql string, rows int64) func() (string, int64) {
	return func() (string, int64) { return sql, rows }
}

func TestGormLogger_Options(t *testing.T) {
	l, _ := newObservedLogger()
	var _ gormlogger.Interface = NewGormLogger(l, gormlogger.Info)

	gl := NewGormLogger(l, gormlogger.Info, SlowQueries(500*time.Millisecond), LogRecordNotFound())
	assert.Equal(t, 500*time.Millisecond, gl.slow)
	assert.True(t, gl.notFound)

	changed, ok := gl.LogMode(gormlogger.Warn).(*GormLogger)
	require.True(t, ok)
	assert.Equal(t, gormlogger.Warn, changed.level)
	assert.Equal(t, gormlogger.Info, gl.level)
}

func TestGormLogger_Messages(t *testing.T) {
	l, recorded := newObservedLogger()
	gl := NewGormLogger(l, gormlogger.Warn)

	gl.Info(context.Background(), "suppressed %d", 1)
	gl.Warn(context.Background(), "warned %s", "here")
	gl.Error(context.Background(), "failed %s", "there")

	logs := recorded.All()
	require.Len(t, logs, 2)
	assert.Equal(t, "warned here", logs[0].Message)
	assert.Equal(t, zapcore.WarnLevel, logs[0].Level)
	assert.Equal(t, "failed there", logs[1].Message)
	assert.Equal(t, "gorm", logs[0].LoggerName)
}

func TestGormLogger_Trace(t *testing.T) {
	tests := []struct {
		name    string
		level   gormlogger.LogLevel
		opts    []GormOption
		elapsed time.Duration
		err     error
		message string
		want    zapcore.Level
	}{
		{name: "failed", level: gormlogger.Error, err: errors.New("boom"), message: "sql failed", want: zapcore.ErrorLevel},
		{name: "missing row is quiet", level: gormlogger.Info, err: gormlogger.ErrRecordNotFound},
		{name: "missing row when asked", level: gormlogger.Error, opts: []GormOption{LogRecordNotFound()},
			err: gormlogger.ErrRecordNotFound, message: "sql failed", want: zapcore.ErrorLevel},
		{name: "slow", level: gormlogger.Warn, opts: []GormOption{SlowQueries(time.Millisecond)},
			elapsed: time.Second, message: "slow sql", want: zapcore.WarnLevel},
		{name: "slow reporting off", level: gormlogger.Warn, opts: []GormOption{SlowQueries(0)}, elapsed: time.Second},
		{name: "statement below level", level: gormlogger.Warn},
		{name: "statement", level: gormlogger.Info, message: "sql", want: zapcore.DebugLevel},
		{name: "silent", level: gormlogger.Silent, err: errors.New("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, recorded := newObservedLogger()
			gl := NewGormLogger(l, tt.level, tt.opts...)

			gl.Trace(context.Background(), time.Now().Add(-tt.elapsed), sqlFn("SELECT 1", 0), tt.err)

			if tt.message == "" {
				assert.Empty(t, recorded.All())
				return
			}
			require.Len(t, recorded.All(), 1)
			assert.Equal(t, tt.message, recorded.All()[0].Message)
			assert.Equal(t, tt.want, recorded.All()[0].Level)
		})
	}
}

func TestGormLogger_TraceTagsSession(t *testing.T) {
	l, recorded := newObservedLogger()
	gl := NewGormLogger(l, gormlogger.Info)

	ctx := WithIDs(context.Background(), IDs{Session: "sess-3"})
	gl.Trace(ctx, time.Now(), sqlFn("SELECT * FROM storefront_kv", 2), nil)

	require.Len(t, recorded.All(), 1)
	fields := recorded.All()[0].ContextMap()
	assert.Equal(t, "sess-3", fields["session_id"])
	assert.Equal(t, int64(2), fields["rows"])
	assert.Equal(t, "SELECT * FROM storefront_kv", fields["sql"])
}

func TestParseGormLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected gormlogger.LogLevel
	}{
		{"silent", gormlogger.Silent},
		{"error", gormlogger.Error},
		{"warn", gormlogger.Warn},
		{"info", gormlogger.Info},
		{"debug", gormlogger.Info},
		{"unknown", gormlogger.Warn},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseGormLevel(tt.level))
		})
	}
}
