package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func sqlFunc(sql string) func() (string, int64) {
	return func() (string, int64) { return sql, 1 }
}

func TestGormLogger_LevelGating(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), gormlogger.Warn)

	gl.Info(context.Background(), "info %s", "x")
	assert.Empty(t, recorded.All())

	gl.Warn(context.Background(), "warn %d", 1)
	gl.Error(context.Background(), "error")
	require.Len(t, recorded.All(), 2)

	silent := gl.LogMode(gormlogger.Silent)
	silent.Error(context.Background(), "ignored")
	assert.Len(t, recorded.All(), 2)
}

func TestGormLogger_Trace(t *testing.T) {
	t.Run("errors are logged with the verb only", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		gl := NewGormLogger(zap.New(core), gormlogger.Error)

		gl.Trace(context.Background(), time.Now(), sqlFunc("SELECT * FROM orders WHERE payment_id = 'CHK-1'"), errors.New("boom"))

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Equal(t, "SQL Error", logs[0].Message)
		assert.Equal(t, "SELECT", logs[0].ContextMap()["op"])
		assert.NotContains(t, logs[0].ContextMap(), "sql")
	})

	t.Run("full sql when enabled", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		gl := NewGormLogger(zap.New(core), gormlogger.Info, WithFullSQL(true))

		gl.Trace(context.Background(), time.Now(), sqlFunc("UPDATE wallets SET balance = 1"), nil)

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Equal(t, "SQL Query", logs[0].Message)
		assert.Equal(t, "UPDATE wallets SET balance = 1", logs[0].ContextMap()["sql"])
	})

	t.Run("record not found ignored", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		gl := NewGormLogger(zap.New(core), gormlogger.Error)

		gl.Trace(context.Background(), time.Now(), sqlFunc("SELECT 1"), gormlogger.ErrRecordNotFound)
		assert.Empty(t, recorded.All())
	})

	t.Run("slow queries warn", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		gl := NewGormLogger(zap.New(core), gormlogger.Warn, WithSlowThreshold(time.Millisecond))

		gl.Trace(context.Background(), time.Now().Add(-time.Second), sqlFunc("INSERT INTO transactions"), nil)

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Equal(t, "Slow SQL", logs[0].Message)
		assert.Equal(t, zapcore.WarnLevel, logs[0].Level)
	})

	t.Run("request id carried from context", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		gl := NewGormLogger(zap.New(core), gormlogger.Error)

		ctx := WithRequestID(context.Background(), "req-7")
		gl.Trace(ctx, time.Now(), sqlFunc("DELETE FROM cart_items"), errors.New("boom"))

		require.Len(t, recorded.All(), 1)
		assert.Equal(t, "req-7", recorded.All()[0].ContextMap()["request_id"])
	})
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("error"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("other"))
}
