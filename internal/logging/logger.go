// Package logging builds the service's slog logger. Logs go to stdout as
// JSON, or to Loki when a URL is configured.
package logging

import (
	"context"
	"log/slog"
	"os"

	"github.com/grafana/loki-client-go/loki"
	slogloki "github.com/samber/slog-loki/v3"

	"github.com/fitstack/reepay-payments/config"
)

const serviceName = "reepay-payments"

type ctxKey string

const slogFields ctxKey = "slog_fields"

// ContextHandler adds attributes stored with AppendCtx to every record.
type ContextHandler struct {
	slog.Handler
}

// Handle adds the context attributes to the record.
func (h ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if attrs, ok := ctx.Value(slogFields).([]slog.Attr); ok {
		r.AddAttrs(attrs...)
	}
	return h.Handler.Handle(ctx, r)
}

// AppendCtx returns a context carrying attr for all later log calls.
func AppendCtx(parent context.Context, attr slog.Attr) context.Context {
	if parent == nil {
		parent = context.Background()
	}
	var attrs []slog.Attr
	if v, ok := parent.Value(slogFields).([]slog.Attr); ok {
		attrs = append(attrs, v...)
	}
	attrs = append(attrs, attr)
	return context.WithValue(parent, slogFields, attrs)
}

// New returns the logger described by cfg.
func New(cfg config.LogsConfig) *slog.Logger {
	level := parseLevel(cfg.Level)
	if cfg.URL == "" {
		return localLogger(level)
	}
	logger, err := remoteLogger(cfg.URL, level)
	if err != nil {
		l := localLogger(level)
		l.Error("Loki client setup failed, logging to stdout", "error", err)
		return l
	}
	return logger
}

func localLogger(level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(ContextHandler{Handler: handler}).With("service", serviceName)
}

func remoteLogger(url string, level slog.Level) (*slog.Logger, error) {
	lokiConfig, err := loki.NewDefaultConfig(url)
	if err != nil {
		return nil, err
	}
	client, err := loki.New(lokiConfig)
	if err != nil {
		return nil, err
	}

	return slog.New(slogloki.Option{
		Level:  level,
		Client: client,
		AttrFromContext: []func(ctx context.Context) []slog.Attr{
			func(ctx context.Context) []slog.Attr {
				if v, ok := ctx.Value(slogFields).([]slog.Attr); ok {
					return v
				}
				return nil
			},
		},
	}.NewLokiHandler()).With("service", serviceName), nil
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
