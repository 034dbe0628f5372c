package utils

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Log is the process-wide logger. Search progress goes to Debug, request
// summaries to Info.
var Log = logrus.New()

// SetLogLevel sets the level of Log from a flag or config value.
func SetLogLevel(level string) error {
	switch strings.ToLower(level) {
	case "debug":
		Log.SetLevel(logrus.DebugLevel)
	case "info", "":
		Log.SetLevel(logrus.InfoLevel)
	case "warning", "warn":
		Log.SetLevel(logrus.WarnLevel)
	case "error":
		Log.SetLevel(logrus.ErrorLevel)
	case "fatal":
		Log.SetLevel(logrus.FatalLevel)
	default:
		return errors.Errorf("bad log level %q", level)
	}
	return nil
}

// Phase returns an entry tagged with a search phase, the structured form of
// the "[phase] ..." progress lines.
func Phase(name string) *logrus.Entry {
	return Log.WithField("phase", name)
}
