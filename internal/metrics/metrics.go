// Package metrics holds Prometheus instruments that are used across the
// render stack.  All collectors are registered with the global registry, so
// importing this package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	CacheEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "stencil_cache_entries",
			Help: "Number of rendered pages currently held by the render cache.",
		})

	CacheHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "stencil_cache_hits_total",
			Help: "Cumulative number of render cache hits.",
		})

	CacheMissesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "stencil_cache_misses_total",
			Help: "Cumulative number of render cache misses.",
		})

	CacheInsertsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "stencil_cache_inserts_total",
			Help: "Cumulative number of entries written to the render cache.",
		})

	CacheEvictTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "stencil_cache_evict_total",
			Help: "Cumulative number of entries evicted under LRU pressure.",
		})

	RenderTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "stencil_render_total",
			Help: "Cumulative number of template renders.",
		})

	RenderErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "stencil_render_errors_total",
			Help: "Cumulative number of failed renders, minification included.",
		})

	NotModifiedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "stencil_not_modified_total",
			Help: "Cumulative number of responses answered with 304 Not Modified.",
		})

	ReloadTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "stencil_template_reload_total",
			Help: "Cumulative number of templates recompiled after a file change.",
		})

	ReloadErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "stencil_template_reload_errors_total",
			Help: "Cumulative number of template reload failures.",
		})
)

func init() {
	prometheus.MustRegister(
		CacheEntries,
		CacheHitsTotal,
		CacheMissesTotal,
		CacheInsertsTotal,
		CacheEvictTotal,
		RenderTotal,
		RenderErrorsTotal,
		NotModifiedTotal,
		ReloadTotal,
		ReloadErrorsTotal,
	)
}
