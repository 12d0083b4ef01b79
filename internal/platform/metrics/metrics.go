package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "kpidash"

// Collector owns a private registry. All methods are safe on a nil receiver
// so callers can run without metrics.
type Collector struct {
	registry        *prometheus.Registry
	requests        *prometheus.CounterVec
	requestDuration prometheus.Histogram
	dashboards      *prometheus.HistogramVec
	weeklyFetches   *prometheus.CounterVec
	exports         prometheus.Counter
}

func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by status code.",
		}, []string{"code"}),
		requestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}),
		dashboards: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scoring",
			Name:      "dashboard_build_seconds",
			Help:      "Time to load a snapshot and score a dashboard, by period kind.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"period"}),
		weeklyFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scoring",
			Name:      "weekly_fetches_total",
			Help:      "Per-subject weekly review fetches by result.",
		}, []string{"result"}),
		exports: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reports",
			Name:      "scorecards_exported_total",
			Help:      "Scorecard PDFs rendered.",
		}),
	}
	c.registry.MustRegister(
		c.requests,
		c.requestDuration,
		c.dashboards,
		c.weeklyFetches,
		c.exports,
		collectors.NewGoCollector(),
	)
	return c
}

func (c *Collector) Record(status int, duration time.Duration) {
	if c == nil {
		return
	}
	c.requests.WithLabelValues(strconv.Itoa(status)).Inc()
	c.requestDuration.Observe(duration.Seconds())
}

func (c *Collector) ObserveDashboard(period string, duration time.Duration) {
	if c == nil {
		return
	}
	c.dashboards.WithLabelValues(period).Observe(duration.Seconds())
}

func (c *Collector) WeeklyFetch(err error) {
	if c == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.weeklyFetches.WithLabelValues(result).Inc()
}

func (c *Collector) Exported() {
	if c == nil {
		return
	}
	c.exports.Inc()
}

func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
