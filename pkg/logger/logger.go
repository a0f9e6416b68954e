// Package logger configures the process-wide logrus logger.
package logger

import (
	"io"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// New returns a logger writing JSON (or text) at the given level. Unknown
// levels fall back to info.
func New(level, format string) *logrus.Logger {
	log := logrus.New()
	log.SetReportCaller(true)

	callerPrettyfier := func(f *runtime.Frame) (string, string) {
		return "", filepath.Base(f.File) + ":" + strconv.Itoa(f.Line)
	}

	switch strings.ToLower(format) {
	case "text":
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:    true,
			CallerPrettyfier: callerPrettyfier,
		})
	default:
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat:  "2006-01-02T15:04:05Z07:00",
			CallerPrettyfier: callerPrettyfier,
		})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	return log
}

// Discard returns a logger that drops everything, for tests.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
