package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

var (
	file    *os.File
	mu      sync.RWMutex
	logger  = zerolog.Nop()
	enabled bool
)

// DefaultLevel is used when the configured level does not parse
const DefaultLevel = zerolog.InfoLevel

// ParseLevel maps a config string to a zerolog level ("" and junk -> info)
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		return DefaultLevel
	}
	return lvl
}

// Enable starts logging to dir/debug.log (truncated on start). The TUI owns
// the terminal, so this is where everything goes while it runs.
func Enable(dir, level string) error {
	mu.Lock()
	defer mu.Unlock()

	if enabled {
		return nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	f, err := os.OpenFile(filepath.Join(dir, "debug.log"), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	file = f
	enabled = true
	logger = zerolog.New(f).Level(ParseLevel(level)).With().Timestamp().Logger()
	logger.Info().Str("category", "debug").Msg("=== Debug logging started ===")
	return nil
}

// EnableWriter logs to w instead of a file (console subcommands, tests)
func EnableWriter(w io.Writer, level string) {
	mu.Lock()
	defer mu.Unlock()
	logger = zerolog.New(w).Level(ParseLevel(level)).With().Timestamp().Logger()
	enabled = true
}

// Disable stops debug logging
func Disable() {
	mu.Lock()
	defer mu.Unlock()

	if file != nil {
		file.Close()
		file = nil
	}
	logger = zerolog.Nop()
	enabled = false
}

// Log writes a debug-level message tagged with a category
func Log(category, format string, args ...any) {
	mu.RLock()
	l := logger
	mu.RUnlock()
	l.Debug().Str("category", category).Msg(fmt.Sprintf(format, args...))
}

// With returns a structured logger for a component
func With(category string) zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger.With().Str("category", category).Logger()
}

// LogEvery logs only every N calls (use for high-frequency events)
var (
	countersMu sync.Mutex
	counters   = make(map[string]int)
)

func LogEvery(n int, category, format string, args ...any) {
	countersMu.Lock()
	key := category + format
	counters[key]++
	count := counters[key]
	countersMu.Unlock()

	if count%n == 0 {
		Log(category, format+" (every %d, count=%d)", append(args, n, count)...)
	}
}
