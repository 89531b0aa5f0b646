package metrics

import (
	stderrors "errors"
	"net/http"
	"strconv"
	"time"

	"codeberg.org/boomline/server/internal/errors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "boomline"

// generation outcomes
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeQuota    = "quota_exceeded"
	OutcomeUpstream = "upstream_error"
	OutcomeFailed   = "failed"
)

type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	generations  *prometheus.CounterVec
	translations *prometheus.CounterVec
	uploads      *prometheus.CounterVec
	warnings     *prometheus.CounterVec
}

// registers every collector on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),

		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"method", "path"}),

		generations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "content",
			Name:      "generations_total",
			Help:      "Generation requests by content family and outcome",
		}, []string{"family", "outcome"}),

		translations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "content",
			Name:      "translations_total",
			Help:      "Translation requests by outcome",
		}, []string{"outcome"}),

		uploads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "media",
			Name:      "uploads_total",
			Help:      "Image uploads by outcome",
		}, []string{"outcome"}),

		warnings: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "persistence_warnings_total",
			Help:      "Results returned without being stored",
		}, []string{"op"}),
	}
}

// records every request by route template
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		m.httpRequests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// domain counters are no-ops on a nil *Metrics
func (m *Metrics) Generation(family, outcome string) {
	if m == nil {
		return
	}

	m.generations.WithLabelValues(family, outcome).Inc()
}

func (m *Metrics) Translation(outcome string) {
	if m == nil {
		return
	}

	m.translations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Upload(outcome string) {
	if m == nil {
		return
	}

	m.uploads.WithLabelValues(outcome).Inc()
}

func (m *Metrics) PersistenceWarning(op string) {
	if m == nil {
		return
	}

	m.warnings.WithLabelValues(op).Inc()
}

// maps a handler error to its outcome label
func Outcome(err error) string {
	var (
		validation *errors.ValidationError
		upstream   *errors.UpstreamError
	)

	switch {
	case err == nil:
		return OutcomeSuccess
	case stderrors.Is(err, errors.ErrQuotaExceeded):
		return OutcomeQuota
	case stderrors.As(err, &validation):
		return OutcomeRejected
	case stderrors.As(err, &upstream):
		return OutcomeUpstream
	default:
		return OutcomeFailed
	}
}
