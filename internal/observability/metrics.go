// Package observability holds the Prometheus collectors and OpenTelemetry setup shared across the service.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dishswap_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})

	// CacheLookups counts cache-aside reads by keyspace and result (hit or miss).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dishswap_cache_lookups_total",
		Help: "Total number of cache lookups by keyspace and result",
	}, []string{"keyspace", "result"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dishswap_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// RecipesCreated counts successfully created recipes.
	RecipesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dishswap_recipes_created_total",
		Help: "Total number of recipes created",
	})

	// Reactions counts reaction increments by reaction type.
	Reactions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dishswap_reactions_total",
		Help: "Total number of reactions by type",
	}, []string{"type"})

	// UploadsRejected counts rejected image uploads by reason.
	UploadsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dishswap_uploads_rejected_total",
		Help: "Total number of rejected image uploads by reason",
	}, []string{"reason"})

	// FavoritesChanged counts favorite additions and removals.
	FavoritesChanged = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dishswap_favorites_changed_total",
		Help: "Total number of favorite changes by action",
	}, []string{"action"})

	// EventsPublished counts domain event publish attempts by type and outcome.
	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dishswap_events_published_total",
		Help: "Total number of domain events published by type and status",
	}, []string{"type", "status"})
)
