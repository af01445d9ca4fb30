package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type loggerKey struct{}

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
}

// Options controls the root logger
type Options struct {
	Level  string
	Pretty bool
	Output io.Writer
}

// New builds the root logger. Unknown levels fall back to info.
func New(opts Options) zerolog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	if opts.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}

	level, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
	if err != nil || opts.Level == "" {
		level = zerolog.InfoLevel
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// Component returns a child logger tagged with the component name
func Component(lg zerolog.Logger, name string) zerolog.Logger {
	return lg.With().Str("component", name).Logger()
}

// With stores the logger in the context
func With(ctx context.Context, lg zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, lg)
}

// Get returns the logger carried by ctx, or a disabled logger
func Get(ctx context.Context) zerolog.Logger {
	if lg, ok := ctx.Value(loggerKey{}).(zerolog.Logger); ok {
		return lg
	}
	return zerolog.Nop()
}
