// Package logger wraps zerolog with the CLI's defaults. Logs go to stderr
// so command output on stdout stays pipeable.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Options configures the logger
type Options struct {
	Level  string
	Format string // console or json
	Writer io.Writer
}

// FromEnv reads FOLIO_LOG_LEVEL and FOLIO_LOG_FORMAT, falling back to the given values
func FromEnv(level, format string) Options {
	if v := os.Getenv("FOLIO_LOG_LEVEL"); v != "" {
		level = v
	}
	if v := os.Getenv("FOLIO_LOG_FORMAT"); v != "" {
		format = v
	}
	return Options{Level: level, Format: format}
}

// Logger is the project-wide logging type
type Logger = zerolog.Logger

var (
	mu   sync.Mutex
	root atomic.Pointer[zerolog.Logger]
)

// Get returns the process-wide logger, building a default one on first use
func Get() *Logger {
	if l := root.Load(); l != nil {
		return l
	}
	Init(FromEnv("info", "console"))
	return root.Load()
}

// Init builds the root logger. Later calls replace it.
func Init(opt Options) {
	mu.Lock()
	defer mu.Unlock()

	zerolog.TimeFieldFormat = time.RFC3339

	var w io.Writer = os.Stderr
	if opt.Writer != nil {
		w = opt.Writer
	}
	if !strings.EqualFold(opt.Format, "json") {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}

	l := zerolog.New(w).Level(parseLevel(opt.Level)).With().Timestamp().Logger()
	root.Store(&l)
}

// With returns a child logger tagged with a component name
func With(component string) *Logger {
	l := Get().With().Str("component", component).Logger()
	return &l
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "off", "disabled":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}
