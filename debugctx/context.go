package debugctx

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
)

type enabledKey struct{}
type writerKey struct{}

func WithEnabled(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, enabledKey{}, enabled)
}

func Enabled(ctx context.Context) bool {
	if ctx == nil {
		return false
	}

	enabled, _ := ctx.Value(enabledKey{}).(bool)
	return enabled
}

func WithWriter(ctx context.Context, writer io.Writer) context.Context {
	if writer == nil {
		return ctx
	}

	return context.WithValue(ctx, writerKey{}, writer)
}

func Writer(ctx context.Context) io.Writer {
	if ctx == nil {
		return nil
	}

	writer, _ := ctx.Value(writerKey{}).(io.Writer)
	return writer
}

// WithLogger stores an explicit logger; it takes precedence over the
// writer-backed logger built from the debug switch.
func WithLogger(ctx context.Context, logger logr.Logger) context.Context {
	return logr.NewContext(ctx, logger)
}

// Logger returns the structured logger for ctx. Without an explicit logger,
// debug output is rendered through funcr onto the debug writer, and discarded
// when debugging is off.
func Logger(ctx context.Context) logr.Logger {
	if ctx == nil {
		return logr.Discard()
	}
	if logger, err := logr.FromContext(ctx); err == nil {
		return logger
	}
	if !Enabled(ctx) {
		return logr.Discard()
	}

	writer := Writer(ctx)
	if writer == nil {
		return logr.Discard()
	}

	return funcr.New(func(prefix, args string) {
		line := strings.TrimSpace(strings.TrimSpace(prefix) + " " + args)
		if line == "" {
			return
		}
		_, _ = fmt.Fprintf(writer, "debug: %s\n", line)
	}, funcr.Options{Verbosity: 1})
}

func Printf(ctx context.Context, format string, args ...any) {
	if !Enabled(ctx) {
		return
	}

	writer := Writer(ctx)
	if writer == nil {
		return
	}

	message := strings.TrimSpace(fmt.Sprintf(format, args...))
	if message == "" {
		return
	}

	_, _ = fmt.Fprintf(writer, "debug: %s\n", message)
}
