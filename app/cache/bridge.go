package cache

import (
	"context"
	"log/slog"
	"time"
)

type Observer interface {
	RecordCacheHit()
	RecordCacheMiss()
	RecordCacheError(operation string)
}

// Bridge wraps a Store for field accessors, which must never fail. Store
// errors are logged and counted, then treated as a missing cache.
type Bridge struct {
	store    Store
	timeout  time.Duration
	observer Observer
}

func NewBridge(store Store, timeout time.Duration, observer Observer) *Bridge {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Bridge{
		store:    store,
		timeout:  timeout,
		observer: observer,
	}
}

func (b *Bridge) Enabled() bool {
	return b != nil && b.store != nil
}

// Load returns the stored record for href or nil.
func (b *Bridge) Load(href string) *Record {
	if !b.Enabled() || href == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()

	record, err := b.store.Get(ctx, href)
	if err != nil {
		b.fail("get", href, err)
		return nil
	}
	if record == nil {
		if b.observer != nil {
			b.observer.RecordCacheMiss()
		}
		return nil
	}

	if b.observer != nil {
		b.observer.RecordCacheHit()
	}
	return record
}

// Save writes record under href. It reports whether the write landed.
func (b *Bridge) Save(href string, record *Record) bool {
	if !b.Enabled() || href == "" || record == nil {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()

	if err := b.store.Put(ctx, href, record); err != nil {
		b.fail("put", href, err)
		return false
	}
	return true
}

func (b *Bridge) fail(operation, href string, err error) {
	slog.Warn("Feed cache unavailable", "operation", operation, "href", href, "error", err)
	if b.observer != nil {
		b.observer.RecordCacheError(operation)
	}
}
