package cache

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	cacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "catalog_cache_hits_total",
		Help: "Reads served from a valid products snapshot",
	})

	cacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "catalog_cache_misses_total",
		Help: "Reads that found the snapshot missing or expired",
	})

	cacheRefreshes = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "catalog_cache_refreshes_total",
		Help: "Successful snapshot repopulations from the backing store",
	})
)

func init() {
	prometheus.MustRegister(cacheHits)
	prometheus.MustRegister(cacheMisses)
	prometheus.MustRegister(cacheRefreshes)
}
