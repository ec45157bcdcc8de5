// Package logger holds the process-wide structured logger. Output goes to a
// log file, never to stdout, which belongs to command output.
package logger

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileName is the log file created inside Config.Dir.
const FileName = "toolbox.log"

// Config selects where logs go and how verbose they are.
type Config struct {
	Dir   string
	Debug bool
}

var (
	mu      sync.RWMutex
	global  = discard()
	logFile *os.File
	logPath string
)

// Setup opens Dir/toolbox.log for appending and installs a JSON logger over it.
// The returned cleanup closes the file and restores the discarding logger.
func Setup(cfg Config) (func() error, error) {
	if cfg.Dir == "" {
		return nil, errors.New("logger: dir cannot be empty")
	}
	dir := filepath.Clean(cfg.Dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		reset()
		return nil, err
	}

	path := filepath.Join(dir, FileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		reset()
		return nil, err
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	h := slog.NewJSONHandler(f, &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.Debug,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && a.Value.Kind() == slog.KindTime {
				a.Value = slog.StringValue(a.Value.Time().UTC().Format(time.RFC3339Nano))
			}
			return a
		},
	})

	mu.Lock()
	global = slog.New(h)
	logFile = f
	logPath = path
	mu.Unlock()

	L().Info("logger.initialized", "path", path, "debug", cfg.Debug)

	cleanup := func() error {
		mu.Lock()
		defer mu.Unlock()
		var cerr error
		if logFile != nil {
			cerr = logFile.Close()
		}
		logFile = nil
		logPath = ""
		global = discard()
		return cerr
	}
	return cleanup, nil
}

// L returns the current logger. Before Setup it discards everything.
func L() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}

// Path returns the active log file path, or "" when logging is off.
func Path() string {
	mu.RLock()
	defer mu.RUnlock()
	return logPath
}

func discard() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func reset() {
	mu.Lock()
	defer mu.Unlock()
	global = discard()
	logFile = nil
	logPath = ""
}
