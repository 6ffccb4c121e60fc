package testutil

import (
	"context"
	"sync"

	"github.com/classward/classward/internal/domain/plan"
	ierr "github.com/classward/classward/internal/errors"
)

// InMemoryPlanStore implements plan.Repository
type InMemoryPlanStore struct {
	mu    sync.RWMutex
	plans map[string]*plan.Plan
}

func NewInMemoryPlanStore() *InMemoryPlanStore {
	return &InMemoryPlanStore{
		plans: make(map[string]*plan.Plan),
	}
}

// Add registers a plan keyed by its external price id
func (s *InMemoryPlanStore) Add(p *plan.Plan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.plans[p.StripePriceID] = &cp
}

func (s *InMemoryPlanStore) GetByStripePriceID(ctx context.Context, stripePriceID string) (*plan.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.plans[stripePriceID]
	if !ok {
		return nil, ierr.NewError("plan not found").
			WithReportableDetails(map[string]any{
				"stripe_price_id": stripePriceID,
			}).
			Mark(ierr.ErrNotFound)
	}

	cp := *p
	return &cp, nil
}

func (s *InMemoryPlanStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plans = make(map[string]*plan.Plan)
}
