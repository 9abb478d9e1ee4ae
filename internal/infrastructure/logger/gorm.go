package logger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

const defaultSlowQueryThreshold = 200 * time.Millisecond

// GormLogger adapts zap to GORM's logger interface. Record-not-found is
// not logged as an error by default, repositories translate it into a
// domain error instead.
type GormLogger struct {
	logger        *zap.Logger
	logLevel      gormlogger.LogLevel
	slowThreshold time.Duration
	skipNotFound  bool
}

// GormLoggerOption configures a GormLogger
type GormLoggerOption func(*GormLogger)

// WithSlowThreshold overrides the default 200ms slow-query threshold
func WithSlowThreshold(threshold time.Duration) GormLoggerOption {
	return func(g *GormLogger) { g.slowThreshold = threshold }
}

// WithIgnoreRecordNotFoundError controls whether gorm.ErrRecordNotFound
// traces are suppressed
func WithIgnoreRecordNotFoundError(ignore bool) GormLoggerOption {
	return func(g *GormLogger) { g.skipNotFound = ignore }
}

// NewGormLogger wraps a zap logger for use as GORM's logger
func NewGormLogger(zapLogger *zap.Logger, level gormlogger.LogLevel, opts ...GormLoggerOption) *GormLogger {
	g := &GormLogger{
		logger:        zapLogger.Named("gorm"),
		logLevel:      level,
		slowThreshold: defaultSlowQueryThreshold,
		skipNotFound:  true,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// LogMode implements gormlogger.Interface
func (g *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *g
	clone.logLevel = level
	return &clone
}

func (g *GormLogger) Info(_ context.Context, msg string, data ...any) {
	g.printf(gormlogger.Info, g.logger.Sugar().Infof, msg, data...)
}

func (g *GormLogger) Warn(_ context.Context, msg string, data ...any) {
	g.printf(gormlogger.Warn, g.logger.Sugar().Warnf, msg, data...)
}

func (g *GormLogger) Error(_ context.Context, msg string, data ...any) {
	g.printf(gormlogger.Error, g.logger.Sugar().Errorf, msg, data...)
}

func (g *GormLogger) printf(min gormlogger.LogLevel, logf func(string, ...any), msg string, data ...any) {
	if g.logLevel >= min {
		logf(msg, data...)
	}
}

// Trace logs each SQL statement with its latency, tagged with the request
// ID when the query ran under an HTTP request.
func (g *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if g.logLevel <= gormlogger.Silent {
		return
	}

	sql, rows := fc()
	elapsed := time.Since(begin)

	fields := []zap.Field{
		zap.String("sql", sql),
		zap.Int64("rows", rows),
		zap.Duration("elapsed", elapsed),
	}
	if requestID := GetRequestID(ctx); requestID != "" {
		fields = append(fields, zap.String("request_id", requestID))
	}

	switch {
	case err != nil && g.logLevel >= gormlogger.Error:
		if g.skipNotFound && errors.Is(err, gormlogger.ErrRecordNotFound) {
			return
		}
		g.logger.Error("SQL Error", append(fields, zap.Error(err))...)

	case g.slowThreshold != 0 && elapsed > g.slowThreshold && g.logLevel >= gormlogger.Warn:
		g.logger.Warn(fmt.Sprintf("SLOW SQL >= %v", g.slowThreshold), fields...)

	case g.logLevel >= gormlogger.Info:
		g.logger.Debug("SQL Query", fields...)
	}
}

// MapGormLogLevel translates the process log level into GORM's scale
func MapGormLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "warn":
		return gormlogger.Warn
	case "info", "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
