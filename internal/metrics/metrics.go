// Package metrics holds the Prometheus instrumentation the build pipeline
// exposes, grouped the way claircore's datastore/postgres package groups
// its query timers and counters: promauto-registered vectors declared
// package-level, labeled per call site.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	stageLabels = []string{"stage"}

	// StageDuration records wall-clock time spent in each build stage
	// (resolve, precompile, index, assemble, compress).
	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "invader",
		Subsystem: "build",
		Name:      "stage_duration_seconds",
		Help:      "Time spent in each map build stage.",
	}, stageLabels)

	// TagsLoaded counts tags successfully loaded from the tag directory.
	TagsLoaded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "invader",
		Subsystem: "build",
		Name:      "tags_loaded_total",
		Help:      "Number of tags loaded from the tag directory during a build.",
	})

	// TagsIndexed counts tags externalised against a resource map,
	// labeled by outcome (full, partial, potential).
	TagsIndexed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "invader",
		Subsystem: "build",
		Name:      "tags_indexed_total",
		Help:      "Number of tags externalised against a resource map, by outcome.",
	}, []string{"outcome"})

	// CacheFileBytes records the assembled cache file size before
	// compression.
	CacheFileBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "invader",
		Subsystem: "build",
		Name:      "cache_file_bytes",
		Help:      "Size in bytes of the assembled cache file before compression.",
		Buckets:   prometheus.ExponentialBuckets(1<<20, 2, 10),
	})
)

// ObserveStage times fn and records it under StageDuration for stage.
func ObserveStage(stage string, fn func() error) error {
	timer := prometheus.NewTimer(StageDuration.WithLabelValues(stage))
	defer timer.ObserveDuration()
	return fn()
}
