package logger

import (
	"context"
	"io"
	"net/http"
	"os"
	"strings"

	charmlog "github.com/charmbracelet/log"
)

type ctxKey string

const loggerKey ctxKey = "logger"

type Config struct {
	Level      string
	JSON       bool
	Output     io.Writer
	TimeFormat string
}

func ParseLevel(s string) charmlog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return charmlog.DebugLevel
	case "info":
		return charmlog.InfoLevel
	case "warn", "warning":
		return charmlog.WarnLevel
	case "error":
		return charmlog.ErrorLevel
	default:
		return charmlog.InfoLevel
	}
}

// New builds a charm logger. JSON output is meant for deployed instances.
func New(cfg Config) *charmlog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	timeFormat := cfg.TimeFormat
	if timeFormat == "" {
		timeFormat = "15:04:05"
	}

	l := charmlog.NewWithOptions(out, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      timeFormat,
		Level:           ParseLevel(cfg.Level),
	})
	if cfg.JSON {
		l.SetFormatter(charmlog.JSONFormatter)
	}
	return l
}

func ContextWithLogger(ctx context.Context, l *charmlog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext falls back to the charm default logger.
func FromContext(ctx context.Context) *charmlog.Logger {
	if l, ok := ctx.Value(loggerKey).(*charmlog.Logger); ok && l != nil {
		return l
	}
	return charmlog.Default()
}

// Middleware puts a request-scoped child of l into every request context.
func Middleware(l *charmlog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			child := l.With("method", r.Method, "path", r.URL.Path)
			next.ServeHTTP(w, r.WithContext(ContextWithLogger(r.Context(), child)))
		})
	}
}
