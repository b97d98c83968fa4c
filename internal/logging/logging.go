package logging

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// New builds the root logger from a level name and an output format
// ("text" or "json").
func New(level, format string) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("unknown log level %s: %w", level, err)
	}

	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetLevel(lvl)

	switch format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	case "text", "":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("unknown log format %s", format)
	}

	return logger, nil
}

type gormLogrus struct {
	entry *logrus.Entry
	level gormlogger.LogLevel
}

// NewGormLogger adapts a logrus entry to gorm's logger interface.
func NewGormLogger(entry *logrus.Entry) gormlogger.Interface {
	return &gormLogrus{
		entry: entry,
		level: gormlogger.Warn,
	}
}

func (l *gormLogrus) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *gormLogrus) Info(ctx context.Context, format string, args ...interface{}) {
	if l.level >= gormlogger.Info {
		l.entry.WithContext(ctx).Infof(format, args...)
	}
}

func (l *gormLogrus) Warn(ctx context.Context, format string, args ...interface{}) {
	if l.level >= gormlogger.Warn {
		l.entry.WithContext(ctx).Warnf(format, args...)
	}
}

func (l *gormLogrus) Error(ctx context.Context, format string, args ...interface{}) {
	if l.level >= gormlogger.Error {
		l.entry.WithContext(ctx).Errorf(format, args...)
	}
}

func (l *gormLogrus) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	// ignore any record not found errors
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return
	}

	sql, rows := fc()
	fields := logrus.Fields{
		"sql":     sql,
		"rows":    rows,
		"elapsed": time.Since(begin).String(),
	}

	if err != nil {
		l.entry.WithContext(ctx).WithFields(fields).WithError(err).Debug("gorm trace")
		return
	}

	if l.level >= gormlogger.Info {
		l.entry.WithContext(ctx).WithFields(fields).Trace("gorm trace")
	}
}
