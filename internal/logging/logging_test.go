package logging

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestNew(t *testing.T) {
	tt := []struct {
		name    string
		level   string
		format  string
		wantErr bool
	}{
		{name: "text info", level: "info", format: "text"},
		{name: "json debug", level: "debug", format: "json"},
		{name: "default format", level: "warn", format: ""},
		{name: "bad level", level: "chatty", format: "text", wantErr: true},
		{name: "bad format", level: "info", format: "xml", wantErr: true},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			logger, err := New(tc.level, tc.format)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}
			expected, _ := logrus.ParseLevel(tc.level)
			if logger.GetLevel() != expected {
				t.Errorf("expected level %s, got %s", expected, logger.GetLevel())
			}
		})
	}
}

func TestGormLoggerTrace(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetLevel(logrus.DebugLevel)

	l := NewGormLogger(logrus.NewEntry(logger))
	fc := func() (string, int64) { return "SELECT 1", 1 }

	l.Trace(context.Background(), time.Now(), fc, gorm.ErrRecordNotFound)
	if buf.Len() != 0 {
		t.Errorf("record not found should not be logged, got %q", buf.String())
	}

	l.Trace(context.Background(), time.Now(), fc, errors.New("boom"))
	if !strings.Contains(buf.String(), "SELECT 1") {
		t.Errorf("expected sql in log output, got %q", buf.String())
	}

	buf.Reset()
	l.LogMode(gormlogger.Silent).Trace(context.Background(), time.Now(), fc, errors.New("boom"))
	if buf.Len() != 0 {
		t.Errorf("silent logger should not write, got %q", buf.String())
	}
}
