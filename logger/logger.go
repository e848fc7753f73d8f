package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"krist-explorer/utils"
)

// Config defines the configuration options for the logger
type Config struct {
	// LogLevel sets the minimum enabled logging level. Valid levels are
	// "debug", "info", "warn", and "error".
	LogLevel string

	// LogFile is the path of the rotated log file. Empty disables file output.
	LogFile string

	// LogFileSize is the maximum size in megabytes before the file is rotated.
	LogFileSize int

	// LogFileCount is the maximum number of old log files to retain.
	LogFileCount int

	// LogCompress gzips rotated files.
	LogCompress bool

	// Stderr mirrors log output to stderr. Only safe outside the TUI.
	Stderr bool
}

// New builds a logrus logger writing to a lumberjack-rotated file.
// The terminal belongs to the TUI, so nothing is written to stdout.
func New(cfg Config) *logrus.Logger {
	log := logrus.New()
	log.SetLevel(parseLevel(cfg.LogLevel))
	log.SetFormatter(&logrus.TextFormatter{
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})

	var writers []io.Writer
	if cfg.LogFile != "" {
		_ = utils.EnsureDirectory(filepath.Dir(cfg.LogFile))
		writers = append(writers, &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    cfg.LogFileSize,
			MaxBackups: cfg.LogFileCount,
			Compress:   cfg.LogCompress,
		})
	}
	if cfg.Stderr {
		writers = append(writers, os.Stderr)
	}

	switch len(writers) {
	case 0:
		log.SetOutput(io.Discard)
	case 1:
		log.SetOutput(writers[0])
	default:
		log.SetOutput(io.MultiWriter(writers...))
	}

	return log
}

// For returns an entry tagged with the component name, e.g. "names-table"
func For(log logrus.FieldLogger, component string) *logrus.Entry {
	return log.WithField("component", component)
}

// Discard returns a logger that drops everything, for tests
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// parseLevel falls back to info for empty or unknown levels
func parseLevel(level string) logrus.Level {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}
