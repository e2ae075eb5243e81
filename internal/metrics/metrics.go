// Package metrics exposes prometheus collectors for the API transport and the query cache.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the client's collectors on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	requests      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	cacheLookups  *prometheus.CounterVec
	deduplicated  prometheus.Counter
	invalidations *prometheus.CounterVec
}

// New creates and registers the collectors.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "booknstay",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "API requests by method and status class.",
		}, []string{"method", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "booknstay",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "API request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "booknstay",
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Query cache lookups by endpoint and result (hit, miss).",
		}, []string{"endpoint", "result"}),
		deduplicated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "booknstay",
			Subsystem: "cache",
			Name:      "deduplicated_total",
			Help:      "Reads that joined an in-flight request instead of issuing their own.",
		}),
		invalidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "booknstay",
			Subsystem: "cache",
			Name:      "invalidations_total",
			Help:      "Cache entries invalidated by tag.",
		}, []string{"tag"}),
	}
	m.Registry.MustRegister(m.requests, m.duration, m.cacheLookups, m.deduplicated, m.invalidations)
	return m
}

// ObserveRequest records one finished API request. Status 0 is reported as "network".
func (m *Metrics) ObserveRequest(method string, status int, elapsed time.Duration) {
	m.requests.WithLabelValues(method, statusClass(status)).Inc()
	m.duration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// CacheHit records a read served from the cache.
func (m *Metrics) CacheHit(endpoint string) {
	m.cacheLookups.WithLabelValues(endpoint, "hit").Inc()
}

// CacheMiss records a read that needed the network.
func (m *Metrics) CacheMiss(endpoint string) {
	m.cacheLookups.WithLabelValues(endpoint, "miss").Inc()
}

// Deduplicated records a read that shared another caller's request.
func (m *Metrics) Deduplicated() {
	m.deduplicated.Inc()
}

// Invalidated records n entries invalidated under tag.
func (m *Metrics) Invalidated(tag string, n int) {
	if n > 0 {
		m.invalidations.WithLabelValues(tag).Add(float64(n))
	}
}

// Serve exposes /metrics on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutCtx) //nolint:errcheck
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func statusClass(status int) string {
	if status == 0 {
		return "network"
	}
	return strconv.Itoa(status/100) + "xx"
}
