package cache

import "sync/atomic"

// Stats is a point-in-time snapshot of cache activity counters.
//
// For a Cache all fields are maintained; a ThreadSafeAccessor does not
// track Reads/Writes/Deletes separately (they are implied by the other
// counters) and additionally fills Loads and LoadErrors.
type Stats struct {
	// Reads is the number of Get/Peek calls.
	Reads int64
	// Writes is the number of Set calls and loader-populated inserts.
	Writes int64
	// Hits is the number of reads that found a live entry.
	Hits int64
	// Misses is the number of reads that found nothing.
	Misses int64
	// Evictions is the number of entries removed for capacity.
	Evictions int64
	// Deletes is the number of explicit removals.
	Deletes int64
	// Loads is the number of loader invocations.
	Loads int64
	// LoadErrors is the number of loader invocations that failed.
	LoadErrors int64
}

// HitRate returns Hits / (Hits + Misses), or 0 when no reads happened.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// atomicStats is the concurrent counter set behind an accessor's Stats.
type atomicStats struct {
	hits       atomic.Int64
	misses     atomic.Int64
	writes     atomic.Int64
	evictions  atomic.Int64
	deletes    atomic.Int64
	loads      atomic.Int64
	loadErrors atomic.Int64
}

// snapshot copies the counters into an exported Stats value.
func (s *atomicStats) snapshot() Stats {
	return Stats{
		Reads:      s.hits.Load() + s.misses.Load(),
		Writes:     s.writes.Load(),
		Hits:       s.hits.Load(),
		Misses:     s.misses.Load(),
		Evictions:  s.evictions.Load(),
		Deletes:    s.deletes.Load(),
		Loads:      s.loads.Load(),
		LoadErrors: s.loadErrors.Load(),
	}
}

// reset zeroes every counter.
func (s *atomicStats) reset() {
	s.hits.Store(0)
	s.misses.Store(0)
	s.writes.Store(0)
	s.evictions.Store(0)
	s.deletes.Store(0)
	s.loads.Store(0)
	s.loadErrors.Store(0)
}
