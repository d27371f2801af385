package store

import (
	"sync"
	"time"

	"site-analytics-service/internal/model"
)

// DefaultCapacity bounds the retained visit log when no explicit
// capacity is configured.
const DefaultCapacity = 1000

// VisitStore is a bounded, insertion-ordered in-memory log of visit
// events. Once the capacity is exceeded the oldest records are dropped;
// long-term retention is the durable sink's job. The visitor and
// session identity sets are process-lifetime and deliberately not
// subject to the eviction bound.
type VisitStore struct {
	mu       sync.RWMutex
	capacity int
	nextID   int64
	visits   []model.VisitEvent
	visitors map[string]struct{}
	sessions map[string]struct{}
	now      func() time.Time
}

// New creates an empty store retaining at most capacity events.
func New(capacity int) *VisitStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &VisitStore{
		capacity: capacity,
		visits:   make([]model.VisitEvent, 0, capacity),
		visitors: make(map[string]struct{}),
		sessions: make(map[string]struct{}),
		now:      time.Now,
	}
}

// Append stores a visit, assigning its ID and, when absent, a server
// timestamp. It never fails; malformed input is rejected upstream.
func (s *VisitStore) Append(visit model.VisitEvent) model.VisitEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	visit.ID = s.nextID
	if visit.Timestamp.IsZero() {
		visit.Timestamp = s.now().UTC()
	}

	s.visits = append(s.visits, visit)
	if len(s.visits) > s.capacity {
		evicted := len(s.visits) - s.capacity
		s.visits = append(s.visits[:0:0], s.visits[evicted:]...)
	}

	s.visitors[visit.VisitorID] = struct{}{}
	s.sessions[visit.SessionID] = struct{}{}

	return visit
}

// Snapshot returns a copy of all retained visits in append order. The
// copy is consistent: concurrent appends never show through it.
func (s *VisitStore) Snapshot() []model.VisitEvent {
	return s.Query(nil)
}

// Query returns retained visits matching keep, in append order. A nil
// predicate matches everything.
func (s *VisitStore) Query(keep func(model.VisitEvent) bool) []model.VisitEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.VisitEvent, 0, len(s.visits))
	for _, v := range s.visits {
		if keep == nil || keep(v) {
			out = append(out, v)
		}
	}
	return out
}

// Len reports the number of retained visits.
func (s *VisitStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.visits)
}

// Stats returns process-lifetime totals. TotalVisits counts only
// retained records; the identity sets count everything ever seen.
func (s *VisitStore) Stats() model.StoreStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.StoreStats{
		TotalVisits:   len(s.visits),
		TotalVisitors: len(s.visitors),
		TotalSessions: len(s.sessions),
	}
}
