package tasks

import (
	"context"

	"github.com/lysyi3m/rss-canon/app/feed"
)

// TaskSchedulerInterface defines the interface for task scheduling operations.
// Example usage:
//
//	scheduler := NewScheduler(store, collector, workerCount, expiryInterval, retention)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueTask(NewIngestFeedTask(engine, href, data, headers))
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}

// FeedParser turns raw feed bytes into a cached Feed.
type FeedParser interface {
	Parse(ctx context.Context, href string, data []byte, headers map[string]string) (*feed.Feed, error)
}

var _ FeedParser = (*feed.Engine)(nil)

// Recorder counts task outcomes.
type Recorder interface {
	RecordTask(taskType, outcome string)
}
