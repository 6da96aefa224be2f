package store

import (
	"context"
	"log/slog"
	"time"
)

const sweepInterval = 10 * time.Minute

// StartSweeper runs a background goroutine that periodically removes
// sessions past their retention window. Retention is a store-level
// policy; the intake engine never deletes sessions itself.
func StartSweeper(ctx context.Context, s Store) {
	ticker := time.NewTicker(sweepInterval)
	go func() {
		defer ticker.Stop()
		slog.Info("session sweeper started", "interval", sweepInterval)

		for {
			select {
			case <-ticker.C:
				deleted, err := s.CleanupExpired(ctx)
				if err != nil {
					slog.Error("session sweeper failed", "error", err)
					continue
				}
				if deleted > 0 {
					slog.Info("session sweeper removed expired sessions", "count", deleted)
				}
			case <-ctx.Done():
				slog.Info("session sweeper shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}
