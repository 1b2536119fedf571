package server

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var (
	logLevels  = []string{"panic", "fatal", "error", "warn", "info", "debug", "trace"}
	logFormats = []string{"json", "text"}
)

type utcFormatter struct {
	f logrus.Formatter
}

// Format log entries to UTC location.
func (f *utcFormatter) Format(e *logrus.Entry) ([]byte, error) {
	e.Time = e.Time.UTC()
	return f.f.Format(e)
}

// NewLogger creates a new Logger writing to stderr. Level is one of panic, fatal, error, warn,
// info, debug, trace and format is one of text, json. Unsupported values panic.
func NewLogger(level string, format string) logrus.FieldLogger {
	logger, err := NewLoggerTo(os.Stderr, level, format)
	if err != nil {
		panic(err)
	}

	return logger
}

// NewLoggerTo creates a new Logger writing to out.
func NewLoggerTo(out io.Writer, level string, format string) (*logrus.Logger, error) {
	logLevel, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, fmt.Errorf("log level is not one of the supported values (%s): %s", strings.Join(logLevels, ", "), level)
	}

	var formatter utcFormatter
	switch strings.ToLower(format) {
	case "text":
		formatter.f = &logrus.TextFormatter{DisableColors: true}
	case "json":
		formatter.f = &logrus.JSONFormatter{}
	default:
		return nil, fmt.Errorf("log format is not one of the supported values (%s): %s", strings.Join(logFormats, ", "), format)
	}

	return &logrus.Logger{
		Out:       out,
		Formatter: &formatter,
		Hooks:     make(logrus.LevelHooks),
		Level:     logLevel,
	}, nil
}
