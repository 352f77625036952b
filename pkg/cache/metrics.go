package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Counters are process-wide: every TTLMap in the process feeds the same
// series, mirroring how the invariant counter is shared.
var (
	hitsMetric = promauto.NewCounter(prometheus.CounterOpts{
		Name: "loquat_cache_hits_total",
		Help: "The total number of reads that returned a live entry.",
	})
	missesMetric = promauto.NewCounter(prometheus.CounterOpts{
		Name: "loquat_cache_misses_total",
		Help: "The total number of reads that found no live entry.",
	})
	evictionsMetric = promauto.NewCounter(prometheus.CounterOpts{
		Name: "loquat_cache_evictions_total",
		Help: "The total number of entries removed under capacity pressure.",
	})
	expirationsMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "loquat_cache_expirations_total",
		Help: "The total number of expired entries dropped, by what observed them.",
	}, []string{
		"trigger", // The operation that dropped the entry: get, put, probe, remove, scan, clear, sweep.
	})
	sweepsMetric = promauto.NewCounter(prometheus.CounterOpts{
		Name: "loquat_cache_reaper_sweeps_total",
		Help: "The total number of reaper sweeps over the entry set.",
	})
	reaperFailuresMetric = promauto.NewCounter(prometheus.CounterOpts{
		Name: "loquat_cache_reaper_failures_total",
		Help: "The total number of reapers terminated by a panic.",
	})
)
