// Package logging configures the Logrus logging library.
package logging

import (
	"github.com/sirupsen/logrus"
)

// Configure sets up the tuneloop logrus instance.
//   - log line format (text[default] or json)
//   - min log level to include (trace, debug, info [default], warn, error, fatal, panic)
func Configure(level, format string) {
	switch format {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	case "text":
		fallthrough
	default:
		logrus.SetFormatter(&logrus.TextFormatter{})
	}

	switch level {
	case "trace":
		logrus.SetLevel(logrus.TraceLevel)
	case "debug":
		logrus.SetLevel(logrus.DebugLevel)
	case "warn":
		logrus.SetLevel(logrus.WarnLevel)
	case "error":
		logrus.SetLevel(logrus.ErrorLevel)
	case "fatal":
		logrus.SetLevel(logrus.FatalLevel)
	case "panic":
		logrus.SetLevel(logrus.PanicLevel)
	case "info":
		fallthrough
	default:
		logrus.SetLevel(logrus.InfoLevel)
	}
}
