package db

import (
	"context"
	"errors"
	"time"

	pkgLogger "github.com/wyfcoding/ecommerce/pkg/logger"
	"github.com/wyfcoding/ecommerce/pkg/metrics"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// gormLogger 将 GORM 日志桥接到 pkg/logger，并上报查询指标
type gormLogger struct {
	enabled       bool
	slowThreshold time.Duration
	metrics       *metrics.Metrics
}

// NewGormLogger 创建 GORM 日志记录器
func NewGormLogger(enabled bool, slowThreshold time.Duration, m *metrics.Metrics) logger.Interface {
	if slowThreshold <= 0 {
		slowThreshold = time.Second
	}
	return &gormLogger{enabled: enabled, slowThreshold: slowThreshold, metrics: m}
}

func (l *gormLogger) LogMode(logger.LogLevel) logger.Interface { return l }

func (l *gormLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	if l.enabled {
		pkgLogger.Info(ctx, msg, "args", args)
	}
}

func (l *gormLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	if l.enabled {
		pkgLogger.Warn(ctx, msg, "args", args)
	}
}

func (l *gormLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	if l.enabled {
		pkgLogger.Error(ctx, msg, "args", args)
	}
}

func (l *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)

	if l.metrics != nil {
		l.metrics.DBQueriesTotal.Inc()
		l.metrics.DBQueryDuration.Observe(elapsed.Seconds())
	}

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		pkgLogger.Error(ctx, "SQL error", "sql", sql, "rows", rows, "elapsed", elapsed, "error", err)
	case elapsed > l.slowThreshold:
		sql, rows := fc()
		pkgLogger.Warn(ctx, "Slow SQL", "sql", sql, "rows", rows, "elapsed", elapsed)
	case l.enabled:
		sql, rows := fc()
		pkgLogger.Debug(ctx, "SQL", "sql", sql, "rows", rows, "elapsed", elapsed)
	}
}
