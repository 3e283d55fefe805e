// Package metrics provides Prometheus metrics collection for the
// schema composition core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds all Prometheus metrics for the composition core.
// A nil *Collector is valid and records nothing, so instrumentation
// stays optional.
type Collector struct {
	// Composition metrics
	Compositions      *prometheus.CounterVec
	CompositionErrors *prometheus.CounterVec
	CacheHits         prometheus.Counter
	CacheMisses       prometheus.Counter

	// Storage metrics
	StorageQueries   *prometheus.CounterVec
	EditionConflicts prometheus.Counter
}

// New creates a collector registered on the default Prometheus registry.
func New() *Collector {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a collector registered on the given registry.
func NewWithRegistry(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		Compositions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "declmodel",
				Name:      "compositions_total",
				Help:      "Total number of schema compositions performed",
			},
			[]string{"entity"},
		),
		CompositionErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "declmodel",
				Name:      "composition_errors_total",
				Help:      "Total number of failed schema compositions",
			},
			[]string{"entity", "reason"},
		),
		CacheHits: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "declmodel",
				Name:      "schema_cache_hits_total",
				Help:      "Total number of schema cache hits",
			},
		),
		CacheMisses: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "declmodel",
				Name:      "schema_cache_misses_total",
				Help:      "Total number of schema cache misses",
			},
		),
		StorageQueries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "declmodel",
				Name:      "storage_queries_total",
				Help:      "Total number of storage operations by kind",
			},
			[]string{"kind"},
		),
		EditionConflicts: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "declmodel",
				Name:      "edition_conflicts_total",
				Help:      "Total number of optimistic-concurrency conflicts on update",
			},
		),
	}
}

// ObserveComposition records one schema composition for an entity.
func (c *Collector) ObserveComposition(entity string) {
	if c == nil {
		return
	}
	c.Compositions.WithLabelValues(entity).Inc()
}

// ObserveCompositionError records one failed composition.
func (c *Collector) ObserveCompositionError(entity, reason string) {
	if c == nil {
		return
	}
	c.CompositionErrors.WithLabelValues(entity, reason).Inc()
}

// ObserveCacheHit records one schema cache hit.
func (c *Collector) ObserveCacheHit() {
	if c == nil {
		return
	}
	c.CacheHits.Inc()
}

// ObserveCacheMiss records one schema cache miss.
func (c *Collector) ObserveCacheMiss() {
	if c == nil {
		return
	}
	c.CacheMisses.Inc()
}

// ObserveStorageQuery records one storage operation.
func (c *Collector) ObserveStorageQuery(kind string) {
	if c == nil {
		return
	}
	c.StorageQueries.WithLabelValues(kind).Inc()
}

// ObserveEditionConflict records one optimistic-concurrency conflict.
func (c *Collector) ObserveEditionConflict() {
	if c == nil {
		return
	}
	c.EditionConflicts.Inc()
}
