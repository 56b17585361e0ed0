package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/rss-canon/app/feed"
	"github.com/lysyi3m/rss-canon/app/tasks"
)

const (
	maxBodySize        = 10 << 20
	feedHeaderPrefix   = "X-Feed-Header-"
	healthPingDeadline = 2 * time.Second
)

// NewHandler wires the handlers. scheduler and pinger may be nil.
func NewHandler(engine FeedEngine, scheduler tasks.TaskSchedulerInterface, pinger Pinger, cacheBackend, version string) *Handler {
	return &Handler{
		engine:       engine,
		generator:    feed.NewGenerator(version),
		scheduler:    scheduler,
		pinger:       pinger,
		cacheBackend: cacheBackend,
		version:      version,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := gin.H{
		"status":        "ok",
		"timestamp":     time.Now().In(time.Local).Format(time.RFC3339),
		"cache_backend": h.cacheBackend,
		"version":       h.version,
	}

	if h.pinger != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthPingDeadline)
		defer cancel()

		if err := h.pinger.Ping(ctx); err != nil {
			slog.Error("Cache store unreachable", "backend", h.cacheBackend, "error", err)
			health["status"] = "unavailable"
			health["error"] = err.Error()
			c.JSON(http.StatusServiceUnavailable, health)
			return
		}
	}

	c.JSON(http.StatusOK, health)
}

// Normalize parses the request body and returns the canonical feed.
func (h *Handler) Normalize(c *gin.Context) {
	data, ok := readBody(c)
	if !ok {
		return
	}

	href := c.Query("href")
	f, err := h.engine.Parse(c.Request.Context(), href, data, feedHeaders(c.Request.Header))
	if err != nil {
		writeParseError(c, href, err)
		return
	}

	c.JSON(http.StatusOK, f.Snapshot())
}

// IngestFeed queues the request body for background normalization.
func (h *Handler) IngestFeed(c *gin.Context) {
	href, ok := requireHref(c)
	if !ok {
		return
	}

	if h.scheduler == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "Scheduler unavailable",
			"message": "Background ingestion is not running",
		})
		return
	}

	data, ok := readBody(c)
	if !ok {
		return
	}

	task := tasks.NewIngestFeedTask(h.engine, href, data, feedHeaders(c.Request.Header))
	if err := h.scheduler.EnqueueTask(task); err != nil {
		slog.Warn("Failed to enqueue IngestFeedTask", "href", href, "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "Failed to queue feed",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"task_id": task.GetID(),
		"href":    href,
		"status":  "queued",
	})
}

// GetFeed rebuilds a cached feed. With a field parameter only that
// field is returned; synonyms such as ttl or description are accepted.
// format=rss renders the canonical feed as RSS 2.0 instead of JSON.
func (h *Handler) GetFeed(c *gin.Context) {
	href, ok := requireHref(c)
	if !ok {
		return
	}

	f, err := h.engine.Load(c.Request.Context(), href)
	if errors.Is(err, feed.ErrNotCached) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Feed not cached",
			"message": "No cached feed for " + href,
		})
		return
	}
	if err != nil {
		slog.Error("Cache error", "operation", "load_feed", "href", href, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Cache error",
			"message": "Failed to load cached feed",
		})
		return
	}

	snapshot := f.Snapshot()

	if c.Query("format") == "rss" {
		rss, err := h.generator.Run(snapshot)
		if err != nil {
			slog.Error("RSS generation error", "href", href, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "RSS generation error",
				"message": err.Error(),
			})
			return
		}
		c.Header("X-Feed-Items", strconv.Itoa(len(snapshot.Entries)))
		c.Data(http.StatusOK, "application/rss+xml; charset=utf-8", []byte(rss))
		return
	}

	field := c.Query("field")
	if field == "" {
		c.JSON(http.StatusOK, snapshot)
		return
	}

	value, ok := snapshot.Field(field)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Unknown field",
			"message": "Field '" + field + "' is not a feed field",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"href":  snapshot.Href,
		"field": feed.CanonicalField(field),
		"value": value,
	})
}

func (h *Handler) DeleteFeed(c *gin.Context) {
	href, ok := requireHref(c)
	if !ok {
		return
	}

	err := h.engine.Forget(c.Request.Context(), href)
	if errors.Is(err, feed.ErrNotCached) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Cache disabled",
			"message": "No cache store is configured",
		})
		return
	}
	if err != nil {
		slog.Error("Cache error", "operation", "delete_feed", "href", href, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Cache error",
			"message": "Failed to delete cached feed",
		})
		return
	}

	c.Status(http.StatusNoContent)
}

func requireHref(c *gin.Context) (string, bool) {
	href := strings.TrimSpace(c.Query("href"))
	if href == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Missing href parameter",
			"message": "Provide the feed URL in the href query parameter",
		})
		return "", false
	}
	return href, true
}

func readBody(c *gin.Context) ([]byte, bool) {
	data, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodySize))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"error":   "Feed too large",
				"message": "Request body exceeds the size limit",
			})
			return nil, false
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Unreadable body",
			"message": err.Error(),
		})
		return nil, false
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Empty body",
			"message": "Send the raw feed document as the request body",
		})
		return nil, false
	}

	return data, true
}

func writeParseError(c *gin.Context, href string, err error) {
	switch {
	case errors.Is(err, feed.ErrNoDocument):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "No feed document",
			"message": err.Error(),
		})
	case errors.Is(err, feed.ErrUnsupportedFormat):
		c.JSON(http.StatusUnsupportedMediaType, gin.H{
			"error":   "Unsupported feed format",
			"message": err.Error(),
		})
	default:
		slog.Warn("Feed parse failed", "href", href, "error", err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "Feed parse failed",
			"message": err.Error(),
		})
	}
}

// feedHeaders collects X-Feed-Header-* request headers as the feed's
// original HTTP headers, keyed by lowercased name.
func feedHeaders(header http.Header) map[string]string {
	headers := make(map[string]string)
	for name, values := range header {
		canonical := http.CanonicalHeaderKey(name)
		if !strings.HasPrefix(canonical, feedHeaderPrefix) || len(values) == 0 {
			continue
		}
		key := strings.ToLower(strings.TrimPrefix(canonical, feedHeaderPrefix))
		if key == "" {
			continue
		}
		headers[key] = values[0]
	}
	if len(headers) == 0 {
		return nil
	}
	return headers
}
