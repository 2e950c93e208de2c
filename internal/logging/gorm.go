package logging

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// GormLogger routes GORM output through the zap global logger.
type GormLogger struct {
	level              logger.LogLevel
	slowQueryThreshold time.Duration
}

// NewGormLogger creates a GORM logger at the named level (silent, error, warn, info).
func NewGormLogger(level string, slowQueryThreshold time.Duration) *GormLogger {
	return &GormLogger{
		level:              ParseGormLevel(level),
		slowQueryThreshold: slowQueryThreshold,
	}
}

// ParseGormLevel maps a level name onto the GORM log level, defaulting to warn.
func ParseGormLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

// LogMode returns a copy at the given level, so sessions can silence themselves.
func (l *GormLogger) LogMode(level logger.LogLevel) logger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= logger.Info {
		zap.S().Infof(msg, data...)
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= logger.Warn {
		zap.S().Warnf(msg, data...)
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= logger.Error {
		zap.S().Errorf(msg, data...)
	}
}

// Trace logs each statement: failures at error, slow queries at warn, the rest at debug.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sqlStr, rows := fc()
	fields := []zap.Field{
		zap.Duration("duration", elapsed),
		zap.Int64("rows", rows),
		zap.String("sql", sqlStr),
	}

	switch {
	case err != nil && l.level >= logger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		zap.L().Error("SQL execution failed", append(fields, zap.Error(err))...)
	case l.slowQueryThreshold > 0 && elapsed > l.slowQueryThreshold && l.level >= logger.Warn:
		zap.L().Warn(fmt.Sprintf("Slow query over %s", l.slowQueryThreshold), fields...)
	case l.level >= logger.Info:
		zap.L().Debug("SQL executed", fields...)
	}
}
