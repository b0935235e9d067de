// Package logger builds logrus-backed loggers satisfying
// utils.ExtendedLogger. Loggers are plain values with no global state; every
// component receives its own.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Logger wraps a logrus instance and its backing file.
type Logger struct {
	logger *logrus.Logger
	file   *os.File
}

// CreateLogger builds a logger writing to logFile (a dated file under logs/
// when empty), optionally mirroring to stdout.
func CreateLogger(logFile string, level string, format string, enableStdout bool) (Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return Logger{}, fmt.Errorf("invalid log level: %w", err)
	}

	formatter, err := newFormatter(format)
	if err != nil {
		return Logger{}, err
	}

	if logFile == "" {
		logFile = fmt.Sprintf("logs/planpilot-%s.log", time.Now().Format("2006-01-02"))
	}
	if err := os.MkdirAll(filepath.Dir(logFile), 0755); err != nil {
		return Logger{}, fmt.Errorf("failed to create log directory: %w", err)
	}
	//nolint:gosec // G304: logFile comes from configuration, not user input
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return Logger{}, fmt.Errorf("failed to open log file: %w", err)
	}

	l := logrus.New()
	l.SetLevel(lvl)
	l.SetFormatter(formatter)
	l.SetReportCaller(true)
	if enableStdout {
		l.SetOutput(io.MultiWriter(file, os.Stdout))
	} else {
		l.SetOutput(file)
	}

	return Logger{logger: l, file: file}, nil
}

func newFormatter(format string) (logrus.Formatter, error) {
	prettyCaller := func(f *runtime.Frame) (string, string) {
		return "", fmt.Sprintf("%s:%d", filepath.Base(f.File), f.Line)
	}
	switch strings.ToLower(format) {
	case "json":
		return &logrus.JSONFormatter{
			TimestampFormat:  time.RFC3339,
			CallerPrettyfier: prettyCaller,
		}, nil
	case "text":
		return &logrus.TextFormatter{
			FullTimestamp:    true,
			TimestampFormat:  time.RFC3339,
			CallerPrettyfier: prettyCaller,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported log format: %s", format)
	}
}

// CreateTestLogger builds a text logger for tests, swallowing setup errors.
func CreateTestLogger(logFile string, level string) Logger {
	l, err := CreateLogger(logFile, level, "text", false)
	if err != nil {
		l, _ = CreateLogger("", "info", "text", false)
	}
	return l
}

// CreateDefaultLogger builds a logger with sensible defaults.
func CreateDefaultLogger() Logger {
	return CreateTestLogger("", "info")
}

// utils.ExtendedLogger implementation.

func (l Logger) Infof(format string, v ...any)  { l.logger.Infof(format, v...) }
func (l Logger) Errorf(format string, v ...any) { l.logger.Errorf(format, v...) }

func (l Logger) Info(args ...interface{})                  { l.logger.Info(args...) }
func (l Logger) Error(args ...interface{})                 { l.logger.Error(args...) }
func (l Logger) Debug(args ...interface{})                 { l.logger.Debug(args...) }
func (l Logger) Debugf(format string, args ...interface{}) { l.logger.Debugf(format, args...) }
func (l Logger) Warn(args ...interface{})                  { l.logger.Warn(args...) }
func (l Logger) Warnf(format string, args ...interface{})  { l.logger.Warnf(format, args...) }
func (l Logger) Fatal(args ...interface{})                 { l.logger.Fatal(args...) }
func (l Logger) Fatalf(format string, args ...interface{}) { l.logger.Fatalf(format, args...) }

func (l Logger) WithField(key string, value interface{}) *logrus.Entry {
	return l.logger.WithField(key, value)
}

func (l Logger) WithFields(fields logrus.Fields) *logrus.Entry {
	return l.logger.WithFields(fields)
}

func (l Logger) WithError(err error) *logrus.Entry {
	return l.logger.WithError(err)
}

// Close closes the backing log file.
func (l Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}
