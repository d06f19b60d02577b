// Package logging provides the shared logrus logger.
//
// Usage:
//
//	log := logging.NewLogger("catalog")
//	log.WithField("content_id", id).Info("content updated")
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var base = newBase()

func newBase() *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	log.SetOutput(os.Stdout)
	log.SetLevel(logrus.InfoLevel)
	return log
}

// Configure sets the log level and, when file is non-empty, duplicates
// output to a size-rotated log file.
func Configure(level, file string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil || level == "" {
		lvl = logrus.InfoLevel
	}
	base.SetLevel(lvl)

	if file == "" {
		base.SetOutput(os.Stdout)
		return
	}
	base.SetOutput(io.MultiWriter(os.Stdout, &lumberjack.Logger{
		Filename:   file,
		MaxSize:    50, // megabytes
		MaxBackups: 5,
		MaxAge:     28, // days
		Compress:   true,
	}))
}

// NewLogger returns a logger tagged with the component name
func NewLogger(component string) *logrus.Entry {
	return base.WithField("component", component)
}

// Discard returns a logger that drops everything. Used in tests.
func Discard() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrus.NewEntry(log)
}
