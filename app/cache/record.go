package cache

import (
	"context"
	"maps"
	"time"
)

// Record is what a store keeps per feed href.
type Record struct {
	Href          string            `json:"href"`
	Title         string            `json:"title,omitempty"`
	Link          string            `json:"link,omitempty"`
	FeedData      string            `json:"feed_data,omitempty"`
	FeedDataType  string            `json:"feed_data_type,omitempty"`
	HTTPHeaders   map[string]string `json:"http_headers,omitempty"`
	LastRetrieved *time.Time        `json:"last_retrieved,omitempty"`
	TimeToLive    *int              `json:"time_to_live,omitempty"`
}

func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	clone := *r
	clone.HTTPHeaders = maps.Clone(r.HTTPHeaders)
	if r.LastRetrieved != nil {
		t := *r.LastRetrieved
		clone.LastRetrieved = &t
	}
	if r.TimeToLive != nil {
		ttl := *r.TimeToLive
		clone.TimeToLive = &ttl
	}
	return &clone
}

// Store persists records keyed by href. Get returns nil, nil when the
// href is unknown.
type Store interface {
	Get(ctx context.Context, href string) (*Record, error)
	Put(ctx context.Context, href string, record *Record) error
	Delete(ctx context.Context, href string) error
	Purge(ctx context.Context, before time.Time) (int, error)
}

// Pinger is implemented by stores backed by a remote service or a file.
type Pinger interface {
	Ping(ctx context.Context) error
}
