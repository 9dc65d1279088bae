package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// New returns the service logger: JSON on stdout, level from LOG_LEVEL.
func New() *logrus.Logger {
	return NewTo(os.Stdout, os.Getenv("LOG_LEVEL"))
}

// NewTo builds a JSON logger writing to w. Unknown levels fall back to info.
func NewTo(w io.Writer, level string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetLevel(parseLevel(level))
	return l
}

func parseLevel(v string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "trace":
		return logrus.TraceLevel
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}
