// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics defines the Prometheus collectors of the analysis
// pipeline and writes them to a node-exporter textfile after a run.
package metrics

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "research_analytics"

var (
	EmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "embedding_requests_total",
			Help:      "Total number of embedding provider calls",
		},
		[]string{"provider", "model", "status"},
	)

	EmbeddingRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "embedding_request_duration_seconds",
			Help:      "Embedding provider call duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"provider", "model"},
	)

	EmbeddingRetriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "embedding_retries_total",
			Help:      "Embedding calls retried after a provider error",
		},
		[]string{"provider"},
	)

	EmbeddingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "embedding_cache_total",
			Help:      "Embedding cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	RecordsSkippedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_skipped_total",
			Help:      "Input records or texts skipped as malformed, empty, or undated",
		},
		[]string{"stage"},
	)

	StageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Pipeline stage duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		},
		[]string{"stage", "status"},
	)

	KeywordsExtracted = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "keywords_extracted",
			Help:      "Keywords kept per extraction method in the last run",
		},
		[]string{"method"},
	)
)

// Collectors returns every collector of the package.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		EmbeddingRequestsTotal,
		EmbeddingRequestDuration,
		EmbeddingRetriesTotal,
		EmbeddingCacheTotal,
		RecordsSkippedTotal,
		StageDuration,
		KeywordsExtracted,
	}
}

var (
	registry     *prometheus.Registry
	registryOnce sync.Once
)

// Registry returns the process registry holding the pipeline collectors.
func Registry() *prometheus.Registry {
	registryOnce.Do(func() {
		registry = prometheus.NewRegistry()
		registry.MustRegister(Collectors()...)
	})
	return registry
}

// WriteTextfile writes the current metric values to path in the
// Prometheus text exposition format.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, Registry()); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
