package game

import (
	"io"

	"github.com/sirupsen/logrus"
)

var log = newLogger()

// The TUI owns the terminal, so logging is off until main points it at a file.
func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.DebugLevel)
	l.SetFormatter(&logrus.TextFormatter{
		DisableColors: true,
		FullTimestamp: true,
	})
	return l
}

// Logger returns the package logger.
func Logger() *logrus.Logger {
	return log
}
