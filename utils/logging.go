package utils

import (
	"os"

	"github.com/sirupsen/logrus"
)

// ConfigureLogging sets up the standard logrus logger. Unknown levels fall
// back to info.
func ConfigureLogging(logLevel string) {
	logrus.SetOutput(os.Stdout)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.WithField("level", logLevel).Warn("Unknown log level, using info")
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}
