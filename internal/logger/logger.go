package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

var log = logrus.New()

func init() {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	if os.Getenv("DRAFTDECK_DEBUG") == "1" {
		log.SetLevel(logrus.DebugLevel)
	}
}

// ParseLevel converts a level name into a logrus level.
func ParseLevel(level string) (logrus.Level, error) {
	return logrus.ParseLevel(level)
}

// SetLevel sets the global log level.
func SetLevel(level logrus.Level) {
	log.SetLevel(level)
}

// WithField returns an entry with a single structured field attached.
func WithField(key string, value any) *logrus.Entry {
	return log.WithField(key, value)
}

// WithError returns an entry carrying an error field.
func WithError(err error) *logrus.Entry {
	return log.WithError(err)
}

func Debug(format string, args ...any) {
	log.Debugf(format, args...)
}

func Info(format string, args ...any) {
	log.Infof(format, args...)
}

func Warn(format string, args ...any) {
	log.Warnf(format, args...)
}

func Error(format string, args ...any) {
	log.Errorf(format, args...)
}
