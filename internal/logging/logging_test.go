package logging_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/theplant/admintools/internal/logging"
)

func TestNew(t *testing.T) {
	logger, err := logging.New("debug", true)
	require.NoError(t, err)
	require.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	logger, err = logging.New("warn", false)
	require.NoError(t, err)
	require.False(t, logger.Core().Enabled(zapcore.InfoLevel))

	_, err = logging.New("loud", false)
	require.ErrorContains(t, err, `parse log level "loud"`)
}

func TestGormLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	ctx := context.Background()
	sql := func() (string, int64) { return `SELECT * FROM "employee"`, 4 }

	l := logging.NewGormLogger(zap.New(core))
	l.Trace(ctx, time.Now(), sql, nil)
	l.Trace(ctx, time.Now(), sql, gorm.ErrRecordNotFound)
	l.Trace(ctx, time.Now(), sql, errors.New("connection reset"))
	l.Trace(ctx, time.Now().Add(-time.Second), sql, nil)
	l.Info(ctx, "hidden %d", 1)

	entries := logs.TakeAll()
	require.Len(t, entries, 2)
	require.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	require.Equal(t, `SELECT * FROM "employee"`, entries[0].ContextMap()["sql"])
	require.Equal(t, "slow query", entries[1].Message)

	verbose := l.LogMode(gormlogger.Info)
	verbose.Trace(ctx, time.Now(), sql, nil)
	verbose.Info(ctx, "migrated %d tables", 2)
	entries = logs.TakeAll()
	require.Len(t, entries, 2)
	require.Equal(t, "query", entries[0].Message)
	require.Equal(t, int64(4), entries[0].ContextMap()["rows"])
	require.Equal(t, "migrated 2 tables", entries[1].Message)

	l.LogMode(gormlogger.Silent).Trace(ctx, time.Now(), sql, errors.New("ignored"))
	require.Empty(t, logs.TakeAll())
}
