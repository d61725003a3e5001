// Package logging configures the process-wide logrus logger.
package logging

import (
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/sirupsen/logrus"
)

// Setup configures the standard logrus logger with the given level and
// format ("text" or "json") and routes the stdlib log package through it.
func Setup(level, format string) error {
	return configure(logrus.StandardLogger(), level, format)
}

// New returns a logger configured like Setup that writes to w.
func New(w io.Writer, level, format string) (*logrus.Logger, error) {
	l := logrus.New()
	l.SetOutput(w)
	if err := configure(l, level, format); err != nil {
		return nil, err
	}
	return l, nil
}

func configure(l *logrus.Logger, level, format string) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}
	l.SetLevel(lvl)

	switch strings.ToLower(format) {
	case "", "text":
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		return fmt.Errorf("unknown log format %q (want text or json)", format)
	}

	if l == logrus.StandardLogger() {
		log.SetFlags(0)
		log.SetOutput(l.Writer())
	}
	return nil
}

// ParseLevel parses a level name. An empty name means info.
func ParseLevel(level string) (logrus.Level, error) {
	if level == "" {
		return logrus.InfoLevel, nil
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return lvl, nil
}
