package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/rss-canon/app/cache"
)

type ExpireCacheTask struct {
	Task
	store     cache.Store
	retention time.Duration
	now       func() time.Time
}

func NewExpireCacheTask(store cache.Store, retention time.Duration) *ExpireCacheTask {
	return &ExpireCacheTask{
		Task:      NewTask(TaskTypeExpireCache, ""),
		store:     store,
		retention: retention,
		now:       time.Now,
	}
}

func (t *ExpireCacheTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	cutoff := t.now().UTC().Add(-t.retention)

	purged, err := t.store.Purge(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to purge cache: %w", err)
	}

	slog.Info("Task completed",
		"type", string(t.Type),
		"purged", purged,
		"cutoff", cutoff,
		"duration", t.GetDuration())

	return nil
}
