package feed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lysyi3m/rss-canon/app/cache"
	"github.com/lysyi3m/rss-canon/app/detect"
	"github.com/lysyi3m/rss-canon/app/resolve"
	"github.com/lysyi3m/rss-canon/app/urls"
	"github.com/lysyi3m/rss-canon/app/xmlns"
	"github.com/lysyi3m/rss-canon/app/xmltree"
)

var (
	ErrNotCached         = errors.New("feed not cached")
	ErrNoDocument        = errors.New("no feed document")
	ErrUnsupportedFormat = errors.New("unsupported feed data type")
)

// Recorder receives engine outcomes. It is satisfied by the metrics
// collector, and by the cache observer for store lookups.
type Recorder interface {
	cache.Observer
	RecordParse(feedType string)
	RecordParseFailure()
}

// Engine builds Feeds. It is safe for concurrent use; the Feeds it
// returns are not.
type Engine struct {
	settings *Settings
	resolver *resolve.Resolver
	store    cache.Store
	bridge   *cache.Bridge
	recorder Recorder
}

// NewEngine merges the settings' namespaces into registry. store and
// recorder may be nil.
func NewEngine(settings *Settings, registry *xmlns.Registry, store cache.Store, recorder Recorder) (*Engine, error) {
	if settings == nil {
		settings = DefaultSettings()
	}
	if registry == nil {
		registry = xmlns.Default()
	}

	merged, err := registry.Extend(settings.Namespaces)
	if err != nil {
		return nil, fmt.Errorf("failed to extend namespaces: %w", err)
	}

	engine := &Engine{
		settings: settings,
		resolver: resolve.NewResolver(merged),
		store:    store,
		recorder: recorder,
	}
	if store != nil {
		engine.bridge = cache.NewBridge(store, settings.CacheTimeoutDuration(), recorder)
	}

	return engine, nil
}

func (e *Engine) Settings() *Settings {
	return e.settings
}

// Parse binds raw feed bytes to a fresh cache record for href and writes
// it through. An empty href is taken from the document's self link.
func (e *Engine) Parse(ctx context.Context, href string, data []byte, headers map[string]string) (*Feed, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrNoDocument
	}

	dataType := detect.DataType(data)
	if dataType != detect.DataTypeXML {
		e.recordParseFailure()
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, dataType)
	}

	document, err := xmltree.Parse(data)
	if err != nil {
		e.recordParseFailure()
		if errors.Is(err, xmltree.ErrEmptyDocument) {
			return nil, ErrNoDocument
		}
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	retrieved := time.Now().UTC()
	record := &cache.Record{
		Href:          urls.Normalize(href),
		FeedData:      string(data),
		FeedDataType:  dataType,
		HTTPHeaders:   lowerKeys(headers),
		LastRetrieved: &retrieved,
	}

	f := newFeed(e, document, record)
	// Href falls back to the self link, which becomes the cache key
	e.bridge.Save(f.Href(), record)

	if e.recorder != nil {
		e.recorder.RecordParse(f.FeedType())
	}
	slog.Debug("Feed parsed", "href", record.Href, "type", f.FeedType(), "version", f.FeedVersion())

	return f, nil
}

// Load rebuilds a Feed from its stored record. Stored fields are used
// as-is; everything else is derived from the stored document.
func (e *Engine) Load(ctx context.Context, href string) (*Feed, error) {
	if e.store == nil {
		return nil, ErrNotCached
	}

	key := urls.Normalize(href)
	if key == "" {
		key = strings.TrimSpace(href)
	}

	record, err := e.store.Get(ctx, key)
	if err != nil {
		if e.recorder != nil {
			e.recorder.RecordCacheError("get")
		}
		return nil, fmt.Errorf("failed to load feed %s: %w", key, err)
	}
	if record == nil {
		if e.recorder != nil {
			e.recorder.RecordCacheMiss()
		}
		return nil, ErrNotCached
	}
	if e.recorder != nil {
		e.recorder.RecordCacheHit()
	}
	if record.Href == "" {
		record.Href = key
	}

	var document *xmltree.Document
	if record.FeedData != "" {
		document, err = xmltree.Parse([]byte(record.FeedData))
		if err != nil {
			slog.Warn("Cached feed data unreadable", "href", key, "error", err)
			document = nil
		}
	}

	return newFeed(e, document, record), nil
}

// Forget removes the stored record for href.
func (e *Engine) Forget(ctx context.Context, href string) error {
	if e.store == nil {
		return ErrNotCached
	}
	key := urls.Normalize(href)
	if key == "" {
		key = strings.TrimSpace(href)
	}
	if err := e.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to delete feed %s: %w", key, err)
	}
	return nil
}

func (e *Engine) recordParseFailure() {
	if e.recorder != nil {
		e.recorder.RecordParseFailure()
	}
}

func lowerKeys(headers map[string]string) map[string]string {
	if len(headers) == 0 {
		return nil
	}
	lowered := make(map[string]string, len(headers))
	for key, value := range headers {
		lowered[strings.ToLower(key)] = value
	}
	return lowered
}
