package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector counts parse, cache and task outcomes. It satisfies
// feed.Recorder and tasks.Recorder.
type Collector struct {
	parsed        *prometheus.CounterVec
	parseFailures prometheus.Counter
	cacheHits     prometheus.Counter
	cacheMisses   prometheus.Counter
	cacheErrors   *prometheus.CounterVec
	tasks         *prometheus.CounterVec
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		parsed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rss_canon_documents_parsed_total",
			Help: "Feed documents parsed, by feed type",
		}, []string{"feed_type"}),
		parseFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rss_canon_parse_failures_total",
			Help: "Feed documents that could not be parsed",
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rss_canon_cache_hits_total",
			Help: "Cache lookups that found a record",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rss_canon_cache_misses_total",
			Help: "Cache lookups that found nothing",
		}),
		cacheErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rss_canon_cache_errors_total",
			Help: "Cache store failures, by operation",
		}, []string{"operation"}),
		tasks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rss_canon_tasks_total",
			Help: "Background tasks executed, by type and outcome",
		}, []string{"type", "outcome"}),
	}

	reg.MustRegister(
		c.parsed,
		c.parseFailures,
		c.cacheHits,
		c.cacheMisses,
		c.cacheErrors,
		c.tasks,
	)

	return c
}

func (c *Collector) RecordParse(feedType string) {
	if feedType == "" {
		feedType = "unknown"
	}
	c.parsed.WithLabelValues(feedType).Inc()
}

func (c *Collector) RecordParseFailure() {
	c.parseFailures.Inc()
}

func (c *Collector) RecordCacheHit() {
	c.cacheHits.Inc()
}

func (c *Collector) RecordCacheMiss() {
	c.cacheMisses.Inc()
}

func (c *Collector) RecordCacheError(operation string) {
	c.cacheErrors.WithLabelValues(operation).Inc()
}

// RecordTask counts one task execution; outcome is "success", "retry" or
// "failed".
func (c *Collector) RecordTask(taskType, outcome string) {
	c.tasks.WithLabelValues(taskType, outcome).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
