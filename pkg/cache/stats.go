package cache

import "sync/atomic"

type stats struct {
	hits    atomic.Int64
	misses  atomic.Int64
	errors  atomic.Int64
	sets    atomic.Int64
	deletes atomic.Int64
}

// Stats is a point-in-time read of the cache counters.
type Stats struct {
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	Errors  int64   `json:"errors"`
	Sets    int64   `json:"sets"`
	Deletes int64   `json:"deletes"`
	HitRate float64 `json:"hit_rate"`
	Enabled bool    `json:"enabled"`
}

// Stats returns the current counters. The hit rate denominator is floored
// at one so a fresh cache reads as 0.0, not NaN.
func (c *Cache) Stats() Stats {
	hits := c.stats.hits.Load()
	misses := c.stats.misses.Load()

	total := hits + misses
	if total < 1 {
		total = 1
	}

	return Stats{
		Hits:    hits,
		Misses:  misses,
		Errors:  c.stats.errors.Load(),
		Sets:    c.stats.sets.Load(),
		Deletes: c.stats.deletes.Load(),
		HitRate: float64(hits) / float64(total),
		Enabled: c.client != nil,
	}
}
