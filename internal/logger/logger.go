package logger

import (
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// New builds the JSON logger shared by every component. An unknown level
// falls back to info.
func New(level string) *logrus.Logger {
	return newWithOutput(level, os.Stdout)
}

func newWithOutput(level string, out io.Writer) *logrus.Logger {
	log := logrus.New()
	log.Formatter = &logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "severity",
			logrus.FieldKeyMsg:   "message",
		},
		TimestampFormat: time.RFC3339Nano,
	}
	log.Out = out

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.Level = lvl
	return log
}

func Component(log *logrus.Logger, name string) *logrus.Entry {
	return log.WithField("component", name)
}
