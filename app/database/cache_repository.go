package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lysyi3m/rss-canon/app/cache"
)

// Fixed width, so stored timestamps compare correctly as text.
const timeLayout = "2006-01-02 15:04:05.000000000"

var _ cache.Store = (*CacheRepository)(nil)

// CacheRepository persists cache records in the cached_feeds table.
type CacheRepository struct {
	db *DB
}

func NewCacheRepository(db *DB) *CacheRepository {
	return &CacheRepository{db: db}
}

func (r *CacheRepository) Get(ctx context.Context, href string) (*cache.Record, error) {
	var (
		title, link, feedData, feedDataType, headers, lastRetrieved sql.NullString
		timeToLive                                                  sql.NullInt64
	)

	err := r.db.QueryRowContext(ctx, `
		SELECT title, link, feed_data, feed_data_type, http_headers, last_retrieved, time_to_live
		FROM cached_feeds
		WHERE href = ?
	`, href).Scan(&title, &link, &feedData, &feedDataType, &headers, &lastRetrieved, &timeToLive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cached feed: %w", err)
	}

	record := cache.Record{
		Href:         href,
		Title:        title.String,
		Link:         link.String,
		FeedData:     feedData.String,
		FeedDataType: feedDataType.String,
	}

	if headers.Valid && headers.String != "" {
		if err := json.Unmarshal([]byte(headers.String), &record.HTTPHeaders); err != nil {
			return nil, fmt.Errorf("failed to decode http headers: %w", err)
		}
	}

	if lastRetrieved.Valid && lastRetrieved.String != "" {
		t, err := time.ParseInLocation(timeLayout, lastRetrieved.String, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("failed to parse last retrieved time: %w", err)
		}
		record.LastRetrieved = &t
	}

	if timeToLive.Valid {
		ttl := int(timeToLive.Int64)
		record.TimeToLive = &ttl
	}

	return &record, nil
}

func (r *CacheRepository) Put(ctx context.Context, href string, record *cache.Record) error {
	if record == nil {
		return fmt.Errorf("nil record for %s", href)
	}

	var headers sql.NullString
	if record.HTTPHeaders != nil {
		data, err := json.Marshal(record.HTTPHeaders)
		if err != nil {
			return fmt.Errorf("failed to encode http headers: %w", err)
		}
		headers = sql.NullString{String: string(data), Valid: true}
	}

	var lastRetrieved sql.NullString
	if record.LastRetrieved != nil {
		lastRetrieved = sql.NullString{String: record.LastRetrieved.UTC().Format(timeLayout), Valid: true}
	}

	var timeToLive sql.NullInt64
	if record.TimeToLive != nil {
		timeToLive = sql.NullInt64{Int64: int64(*record.TimeToLive), Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cached_feeds (href, title, link, feed_data, feed_data_type, http_headers, last_retrieved, time_to_live)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(href) DO UPDATE SET
			title = excluded.title,
			link = excluded.link,
			feed_data = excluded.feed_data,
			feed_data_type = excluded.feed_data_type,
			http_headers = excluded.http_headers,
			last_retrieved = excluded.last_retrieved,
			time_to_live = excluded.time_to_live
	`, href, record.Title, record.Link, record.FeedData, record.FeedDataType, headers, lastRetrieved, timeToLive)
	if err != nil {
		return fmt.Errorf("failed to upsert cached feed: %w", err)
	}

	return nil
}

func (r *CacheRepository) Delete(ctx context.Context, href string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cached_feeds WHERE href = ?`, href); err != nil {
		return fmt.Errorf("failed to delete cached feed: %w", err)
	}
	return nil
}

// Purge removes records last retrieved before the cutoff. Records that
// were never retrieved are kept.
func (r *CacheRepository) Purge(ctx context.Context, before time.Time) (int, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM cached_feeds
		WHERE last_retrieved IS NOT NULL AND last_retrieved < ?
	`, before.UTC().Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("failed to purge cached feeds: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count purged feeds: %w", err)
	}

	return int(affected), nil
}

func (r *CacheRepository) GetCount(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cached_feeds`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count cached feeds: %w", err)
	}
	return count, nil
}

func (r *CacheRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}
