package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/m3rciful/convocore/core/logger"
)

// Janitor periodically expires idle sessions and sweeps abandoned callback
// tokens. It runs until its context is cancelled.
type Janitor struct {
	Bridge    *Bridge
	Callbacks *CallbackRegistry
	// Interval between maintenance passes.
	Interval time.Duration
}

// Run blocks, performing one maintenance pass per interval. A non-positive
// interval disables the janitor entirely.
func (j *Janitor) Run(ctx context.Context) {
	if j.Interval <= 0 {
		return
	}
	ticker := time.NewTicker(j.Interval)
	defer ticker.Stop()

	logger.Info(ctx, "engine.session", "janitor.start",
		slog.Duration("interval", j.Interval),
	)
	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "engine.session", "janitor.stop")
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *Janitor) sweep(ctx context.Context) {
	if j.Bridge != nil {
		if _, err := j.Bridge.Expire(ctx); err != nil {
			logger.Warn(ctx, "engine.session", "janitor.expire.fail",
				slog.String("error", err.Error()),
			)
		}
	}
	if j.Callbacks != nil {
		j.Callbacks.Sweep(ctx)
	}
}
