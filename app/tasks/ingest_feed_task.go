package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/rss-canon/app/feed"
)

// IngestFeedTask parses a submitted document and resolves every field,
// so the cache holds a complete record once it finishes.
type IngestFeedTask struct {
	Task
	parser  FeedParser
	data    []byte
	headers map[string]string
}

func NewIngestFeedTask(parser FeedParser, href string, data []byte, headers map[string]string) *IngestFeedTask {
	return &IngestFeedTask{
		Task:    NewTask(TaskTypeIngestFeed, href),
		parser:  parser,
		data:    data,
		headers: headers,
	}
}

func (t *IngestFeedTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	f, err := t.parser.Parse(ctx, t.Href, t.data, t.headers)
	if err != nil {
		if errors.Is(err, feed.ErrNoDocument) || errors.Is(err, feed.ErrUnsupportedFormat) {
			return fmt.Errorf("%w: %w", ErrPermanent, err)
		}
		return fmt.Errorf("failed to parse feed: %w", err)
	}

	snapshot := f.Snapshot()

	slog.Info("Task completed",
		"type", string(t.Type),
		"href", snapshot.Href,
		"feed_type", snapshot.FeedType,
		"entries", len(snapshot.Entries),
		"duration", t.GetDuration())

	return nil
}
