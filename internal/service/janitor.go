package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/Skotchmaster/auth_service/internal/metrics"
)

// Janitor periodically drops expired revocation entries. It runs as a system
// job and is not subject to the role check of the admin endpoint.
type Janitor struct {
	Revocations RevocationStore
	Interval    time.Duration
	Metrics     *metrics.Metrics
	Logger      *slog.Logger
}

// Run blocks until ctx is done. A non-positive Interval returns immediately.
func (j *Janitor) Run(ctx context.Context) {
	if j.Interval <= 0 {
		return
	}
	l := j.Logger
	if l == nil {
		l = slog.Default()
	}
	l = l.With("svc", "janitor")

	ticker := time.NewTicker(j.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.runOnce(ctx, l)
		}
	}
}

func (j *Janitor) runOnce(ctx context.Context, l *slog.Logger) {
	n, err := j.Revocations.PurgeExpired(ctx)
	if err != nil {
		l.Error("purge_failed", "error", err)
		return
	}
	j.Metrics.Purged(n)
	if n > 0 {
		l.Info("purge_done", "deleted", n)
	}
}
