package alog

import "sync/atomic"

// Stats holds relaxed atomic counters: at any
// quiescent moment, total = drop + err + delivered + in_flight.
type Stats struct {
	Total atomic.Uint64
	Drop  atomic.Uint64
	Err   atomic.Uint64
	Trunc atomic.Uint64

	delivered atomic.Uint64
}

// Snapshot is a point-in-time copy of Stats, safe to read and compare
// without further synchronization.
type Snapshot struct {
	Total     uint64
	Drop      uint64
	Err       uint64
	Trunc     uint64
	Delivered uint64
}

// Snapshot reads all counters. Each field load is independently atomic;
// the whole snapshot is not a single atomic operation, since relaxed
// consistency across fields is sufficient for monitoring purposes.
func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		Total:     s.Total.Load(),
		Drop:      s.Drop.Load(),
		Err:       s.Err.Load(),
		Trunc:     s.Trunc.Load(),
		Delivered: s.delivered.Load(),
	}
}
