package api

import (
	"context"

	"github.com/lysyi3m/rss-canon/app/feed"
	"github.com/lysyi3m/rss-canon/app/tasks"
)

// FeedEngine is the part of feed.Engine the handlers need.
type FeedEngine interface {
	tasks.FeedParser
	Load(ctx context.Context, href string) (*feed.Feed, error)
	Forget(ctx context.Context, href string) error
}

var _ FeedEngine = (*feed.Engine)(nil)

// GeneratorInterface renders a snapshot as an RSS document.
type GeneratorInterface interface {
	Run(snapshot *feed.Snapshot) (string, error)
}

var _ GeneratorInterface = (*feed.Generator)(nil)

type Handler struct {
	engine       FeedEngine
	generator    GeneratorInterface
	scheduler    tasks.TaskSchedulerInterface
	pinger       Pinger
	cacheBackend string
	version      string
}

// Pinger reports whether the cache store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}
