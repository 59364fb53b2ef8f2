package log

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the process-wide root logger. Setup replaces it; until then it
// writes JSON to stdout at info level so early failures are not lost.
var Logger = zerolog.New(os.Stdout).Level(zerolog.InfoLevel).With().Timestamp().Logger()

// Options configures the root logger
type Options struct {
	// Level is one of debug, info, warn, error. Unknown or empty values
	// fall back to info.
	Level string

	// Console switches from JSON lines to human-readable console output
	Console bool

	// Output defaults to stdout
	Output io.Writer
}

// Setup builds the root logger. Call once at startup, before components
// derive their child loggers.
func Setup(opts Options) {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	var w io.Writer = out
	if opts.Console {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	level, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	Logger = zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// WithComponent derives a logger scoped to one runtime component
// (executor, events, registry, ...)
func WithComponent(component string) zerolog.Logger {
	return Logger.With().Str("component", component).Logger()
}

// WithFlow derives a logger carrying the correlation fields of one logical
// flow through the runtime: the tenant, the trace linking its events, and
// the request that started it. Dispatch-path call sites use this so every
// line of a flow can be joined in log queries.
func WithFlow(base zerolog.Logger, tenantID, traceID, requestID string) zerolog.Logger {
	return base.With().
		Str("tenant_id", tenantID).
		Str("trace_id", traceID).
		Str("request_id", requestID).
		Logger()
}
