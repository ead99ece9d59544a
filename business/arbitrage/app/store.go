package app

import (
	"sort"
	"sync"
	"time"

	"github.com/quantfi/flasharb/business/arbitrage/domain"
)

// Store tracks live opportunities by route identity. Rediscovered routes
// update in place, keeping their original detection time; routes that go
// unseen past the TTL are swept.
type Store struct {
	mu   sync.RWMutex
	opps map[string]*domain.Opportunity
	ttl  time.Duration
}

// NewStore creates an opportunity store with the given TTL.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		opps: make(map[string]*domain.Opportunity),
		ttl:  ttl,
	}
}

// Upsert inserts or refreshes an opportunity. Returns true when the route
// was already tracked.
func (s *Store) Upsert(opp *domain.Opportunity) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed := s.opps[opp.ID]
	if existed {
		opp.Refresh(prev)
	}
	s.opps[opp.ID] = opp
	return existed
}

// Get returns the tracked opportunity for a route, or nil.
func (s *Store) Get(id string) *domain.Opportunity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.opps[id]
}

// Remove drops a route from tracking.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.opps, id)
}

// SweepExpired removes opportunities not re-observed within the TTL and
// returns how many were dropped.
func (s *Store) SweepExpired(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	swept := 0
	for id, opp := range s.opps {
		if opp.IsExpired(now, s.ttl) {
			delete(s.opps, id)
			swept++
		}
	}
	return swept
}

// List returns all tracked opportunities sorted by USD profit, best first.
func (s *Store) List() []*domain.Opportunity {
	s.mu.RLock()
	defer s.mu.RUnlock()

	opps := make([]*domain.Opportunity, 0, len(s.opps))
	for _, opp := range s.opps {
		opps = append(opps, opp)
	}

	sort.Slice(opps, func(i, j int) bool {
		return opps[i].ProfitUSD.GreaterThan(opps[j].ProfitUSD)
	})
	return opps
}

// Size returns the number of tracked opportunities.
func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.opps)
}
