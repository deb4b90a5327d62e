package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
)

var levels = map[string]log.Level{
	"CRITICAL": log.FatalLevel,
	"FATAL":    log.FatalLevel,
	"ERROR":    log.ErrorLevel,
	"WARNING":  log.WarnLevel,
	"INFO":     log.InfoLevel,
	"DEBUG":    log.DebugLevel,
	"NOTSET":   log.TraceLevel,
}

// New returns a logger writing to out at the given normalized level name.
// A nil out writes to stdout.
func New(level, format string, out io.Writer) (*log.Logger, error) {
	lvl, ok := levels[level]
	if !ok {
		return nil, fmt.Errorf("unsupported log level %q", level)
	}
	if out == nil {
		out = os.Stdout
	}

	logger := log.New()
	logger.SetOutput(out)
	logger.SetLevel(lvl)

	switch format {
	case "", "text":
		logger.SetFormatter(&log.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
			DisableColors:   true,
		})
	case "json":
		logger.SetFormatter(&log.JSONFormatter{TimestampFormat: time.RFC3339})
	default:
		return nil, fmt.Errorf("unsupported log format %q", format)
	}
	return logger, nil
}

// Component tags every entry with the name of the emitting component.
func Component(logger log.FieldLogger, name string) *log.Entry {
	return logger.WithField("component", name)
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	logger := log.New()
	logger.SetOutput(io.Discard)
	return logger
}
