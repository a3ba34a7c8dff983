// Package logging carries run correlation ids on contexts and injects them
// into slog records.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

type ctxKey int

const (
	runIDKey ctxKey = iota
	stepKey
	agentKey
)

// WithRunID returns a context with the run ID set.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey, id)
}

// WithStep returns a context with the 1-based step index set.
func WithStep(ctx context.Context, step int) context.Context {
	return context.WithValue(ctx, stepKey, step)
}

// WithAgent returns a context with the agent node ID set.
func WithAgent(ctx context.Context, nodeID string) context.Context {
	return context.WithValue(ctx, agentKey, nodeID)
}

// RunID extracts the run ID from the context, or "" if absent.
func RunID(ctx context.Context) string {
	v, _ := ctx.Value(runIDKey).(string)
	return v
}

// Step extracts the step index from the context, or 0 if absent.
func Step(ctx context.Context) int {
	v, _ := ctx.Value(stepKey).(int)
	return v
}

// Agent extracts the agent node ID from the context, or "" if absent.
func Agent(ctx context.Context) string {
	v, _ := ctx.Value(agentKey).(string)
	return v
}

// LogWith returns a logger enriched with correlation IDs from the context.
// Only set values are added as attributes.
func LogWith(ctx context.Context, logger *slog.Logger) *slog.Logger {
	for _, a := range attrs(ctx) {
		logger = logger.With(a)
	}
	return logger
}

func attrs(ctx context.Context) []slog.Attr {
	var out []slog.Attr
	if v := RunID(ctx); v != "" {
		out = append(out, slog.String("run_id", v))
	}
	if v := Step(ctx); v != 0 {
		out = append(out, slog.Int("step", v))
	}
	if v := Agent(ctx); v != "" {
		out = append(out, slog.String("agent", v))
	}
	return out
}

// CorrelationHandler wraps an slog.Handler, injecting correlation IDs from
// the context into every record. Callers use logger.InfoContext(ctx, ...).
type CorrelationHandler struct {
	inner slog.Handler
}

// NewCorrelationHandler wraps the given handler with automatic correlation ID injection.
func NewCorrelationHandler(inner slog.Handler) *CorrelationHandler {
	return &CorrelationHandler{inner: inner}
}

func (h *CorrelationHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *CorrelationHandler) Handle(ctx context.Context, r slog.Record) error {
	r.AddAttrs(attrs(ctx)...)
	return h.inner.Handle(ctx, r)
}

func (h *CorrelationHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &CorrelationHandler{inner: h.inner.WithAttrs(attrs)}
}

func (h *CorrelationHandler) WithGroup(name string) slog.Handler {
	return &CorrelationHandler{inner: h.inner.WithGroup(name)}
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// New builds a correlation-aware logger writing text or JSON to w.
func New(w io.Writer, level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	var inner slog.Handler
	if format == "json" {
		inner = slog.NewJSONHandler(w, opts)
	} else {
		inner = slog.NewTextHandler(w, opts)
	}
	return slog.New(NewCorrelationHandler(inner))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
