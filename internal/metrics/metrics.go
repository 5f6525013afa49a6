package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	// Namespace for all metrics.
	namespace = "modulesync"

	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "requests_total",
			Help:      "Gateway HTTP requests by operation and outcome",
		},
		[]string{"op", "outcome"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "request_duration_seconds",
			Help:      "Gateway HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"op"},
	)

	cacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "cache_lookups_total",
			Help:      "Response cache lookups by result",
		},
		[]string{"result"},
	)

	effectsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "controller",
			Name:      "effects_total",
			Help:      "Effects executed by kind",
		},
		[]string{"kind"},
	)

	staleResults = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "controller",
			Name:      "stale_page_results_total",
			Help:      "Page results discarded because a refresh superseded them",
		},
	)

	notificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "editsource",
			Name:      "notifications_total",
			Help:      "Edit notifications published by action",
		},
		[]string{"action"},
	)
)

// ObserveRequest records one gateway request.
func ObserveRequest(op string, started time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	requestsTotal.WithLabelValues(op, outcome).Inc()
	requestDuration.WithLabelValues(op).Observe(time.Since(started).Seconds())
}

// CacheHit records a response served from the cache.
func CacheHit() {
	cacheLookups.WithLabelValues("hit").Inc()
}

// CacheMiss records a response that had to be fetched.
func CacheMiss() {
	cacheLookups.WithLabelValues("miss").Inc()
}

// EffectRun records one executed effect.
func EffectRun(kind string) {
	effectsTotal.WithLabelValues(kind).Inc()
}

// StalePageResult records a discarded page result.
func StalePageResult() {
	staleResults.Inc()
}

// NotificationPublished records one edit notification.
func NotificationPublished(action string) {
	notificationsTotal.WithLabelValues(action).Inc()
}

// Serve exposes /metrics on addr until ctx is cancelled. An empty addr
// disables the endpoint.
func Serve(ctx context.Context, addr string, log *zap.SugaredLogger) {
	if addr == "" {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	go func() {
		log.Infow("serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warnw("metrics server stopped", "error", err)
		}
	}()
}
