package ivasins

import (
	"io"

	"github.com/sirupsen/logrus"
)

// NewLogger returns a logrus logger writing to out with the given level and
// format ("json" or text). Unknown levels fall back to warn.
func NewLogger(level, format string, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	if format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.WarnLevel
	}
	logger.SetLevel(lvl)
	return logger
}

func logError(logger logrus.FieldLogger, funcName, context string, data any, err error) {
	fields := logrus.Fields{
		"module":   "ivasins",
		"funcName": funcName,
		"context":  context,
	}
	if data != nil {
		fields["data"] = data
	}
	logger.WithFields(fields).Error(err.Error())
}
