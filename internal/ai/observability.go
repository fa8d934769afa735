package ai

import (
	"context"
	"io"
	"log/slog"
)

// CallEvent records metadata about a single generation call.
type CallEvent struct {
	Task      Task
	Model     string
	LatencyMs int64
	Success   bool
	ErrorKind string
}

// Observer receives events about generation calls for logging and metrics.
type Observer interface {
	OnCallComplete(ctx context.Context, event CallEvent)
}

// LogObserver writes call events through slog.
type LogObserver struct {
	logger *slog.Logger
}

// NewLogObserver creates an Observer that logs events to w.
func NewLogObserver(w io.Writer) *LogObserver {
	return &LogObserver{
		logger: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})),
	}
}

func (o *LogObserver) OnCallComplete(ctx context.Context, event CallEvent) {
	attrs := []any{
		"task", event.Task,
		"model", event.Model,
		"latency_ms", event.LatencyMs,
	}
	if !event.Success {
		o.logger.WarnContext(ctx, "ai_call", append(attrs, "status", "err:"+event.ErrorKind)...)
		return
	}
	o.logger.InfoContext(ctx, "ai_call", append(attrs, "status", "ok")...)
}

// NoopObserver discards all events. Useful for tests.
type NoopObserver struct{}

func (NoopObserver) OnCallComplete(context.Context, CallEvent) {}
