// Package obslog wires the gateway's structured logging: logrus fields for
// every provider call, with an optional rotating file sink for long-running
// host processes.
package obslog

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	mu  sync.RWMutex
	log = newDefault()
)

func newDefault() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// FileSinkConfig configures the optional rotating-file output.
type FileSinkConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// UseFileSink redirects the package logger's output to a lumberjack rotating
// writer in addition to stderr. Safe to call once at process startup.
func UseFileSink(cfg FileSinkConfig) {
	mu.Lock()
	defer mu.Unlock()
	if cfg.Path == "" {
		return
	}
	roller := &lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
	log.SetOutput(io.MultiWriter(os.Stderr, roller))
}

// SetLevel adjusts the package logger's verbosity.
func SetLevel(level logrus.Level) {
	mu.Lock()
	defer mu.Unlock()
	log.SetLevel(level)
}

// For returns a field-scoped entry for a provider's service_id, the
// convention every provider call logs through.
func For(serviceID string) *logrus.Entry {
	mu.RLock()
	defer mu.RUnlock()
	return log.WithField("service_id", serviceID)
}

// Logger returns the underlying logrus.Logger for advanced configuration.
func Logger() *logrus.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}
