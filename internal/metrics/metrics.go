package metrics

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of the scheduler. A nil *Metrics is a valid no-op recorder
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	solveDuration   *prometheus.HistogramVec
	runs            *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
	modelVariables  prometheus.Gauge
	sri             prometheus.Gauge
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	solveDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tala_solve_duration_seconds",
		Help:    "Duration of model construction and solving",
		Buckets: prometheus.ExponentialBuckets(0.01, 4, 10),
	}, []string{"solver", "status"})

	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tala_runs_total",
		Help: "Completed scheduling runs by outcome",
	}, []string{"status"})

	cacheLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tala_cache_lookups_total",
		Help: "Memoized run lookups by result",
	}, []string{"result"})

	modelVariables := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tala_model_variables",
		Help: "Decision variables of the latest solved model",
	})

	sri := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tala_school_readiness_index",
		Help: "School Readiness Index of the latest run",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, solveDuration, runs, cacheLookups, modelVariables, sri, goroutines)

	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		solveDuration:   solveDuration,
		runs:            runs,
		cacheLookups:    cacheLookups,
		modelVariables:  modelVariables,
		sri:             sri,
	}
}

// Handler exposes the Prometheus HTTP handler
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

func (m *Metrics) ObserveSolve(solver, status string, duration time.Duration, variables uint64) {
	if m == nil {
		return
	}
	m.solveDuration.WithLabelValues(solver, status).Observe(duration.Seconds())
	m.runs.WithLabelValues(status).Inc()
	m.modelVariables.Set(float64(variables))
}

func (m *Metrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) SetSRI(sri float64) {
	if m == nil {
		return
	}
	m.sri.Set(sri)
}

// Middleware records request durations under the route template
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		m.requestDuration.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Observe(time.Since(start).Seconds())
	}
}
