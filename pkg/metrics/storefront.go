package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StorefrontMetrics records upstream catalog API traffic and cache behavior.
type StorefrontMetrics struct {
	upstreamDuration *prometheus.HistogramVec
	upstreamFailures *prometheus.CounterVec
	cacheHits        *prometheus.CounterVec
	cacheMisses      *prometheus.CounterVec
	viewTrackDrops   prometheus.Counter
}

// NewStorefrontMetrics registers the storefront metrics on the provided registerer.
func NewStorefrontMetrics(reg prometheus.Registerer) *StorefrontMetrics {
	if reg == nil {
		return &StorefrontMetrics{}
	}
	upstreamDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "upstream_request_duration_seconds",
		Help:    "Duration of catalog API requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})
	upstreamFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "upstream_request_failures",
		Help: "Failed catalog API requests.",
	}, []string{"endpoint"})
	cacheHits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "listing_cache_hits",
		Help: "Listing cache hits.",
	}, []string{"family"})
	cacheMisses := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "listing_cache_misses",
		Help: "Listing cache misses.",
	}, []string{"family"})
	viewTrackDrops := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "view_track_drops",
		Help: "View-tracking posts that failed and were dropped.",
	})
	reg.MustRegister(upstreamDuration, upstreamFailures, cacheHits, cacheMisses, viewTrackDrops)
	return &StorefrontMetrics{
		upstreamDuration: upstreamDuration,
		upstreamFailures: upstreamFailures,
		cacheHits:        cacheHits,
		cacheMisses:      cacheMisses,
		viewTrackDrops:   viewTrackDrops,
	}
}

// ObserveUpstream records the duration of an upstream call.
func (m *StorefrontMetrics) ObserveUpstream(endpoint string, duration time.Duration) {
	if m == nil || m.upstreamDuration == nil {
		return
	}
	m.upstreamDuration.WithLabelValues(normalizeLabel(endpoint)).Observe(duration.Seconds())
}

// IncUpstreamFailure increments the failure counter for an upstream endpoint.
func (m *StorefrontMetrics) IncUpstreamFailure(endpoint string) {
	if m == nil || m.upstreamFailures == nil {
		return
	}
	m.upstreamFailures.WithLabelValues(normalizeLabel(endpoint)).Inc()
}

// IncCacheHit increments the listing cache hit counter for a family.
func (m *StorefrontMetrics) IncCacheHit(family string) {
	if m == nil || m.cacheHits == nil {
		return
	}
	m.cacheHits.WithLabelValues(normalizeLabel(family)).Inc()
}

// IncCacheMiss increments the listing cache miss counter for a family.
func (m *StorefrontMetrics) IncCacheMiss(family string) {
	if m == nil || m.cacheMisses == nil {
		return
	}
	m.cacheMisses.WithLabelValues(normalizeLabel(family)).Inc()
}

// IncViewTrackDrop counts a dropped view-tracking post.
func (m *StorefrontMetrics) IncViewTrackDrop() {
	if m == nil || m.viewTrackDrops == nil {
		return
	}
	m.viewTrackDrops.Inc()
}

func normalizeLabel(value string) string {
	trimmed := strings.TrimSpace(strings.ToLower(value))
	if trimmed == "" {
		return "unknown"
	}
	return strings.ReplaceAll(trimmed, " ", "_")
}
