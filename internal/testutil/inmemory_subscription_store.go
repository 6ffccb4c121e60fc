package testutil

import (
	"context"
	"sync"

	"github.com/classward/classward/internal/domain/subscription"
	ierr "github.com/classward/classward/internal/errors"
)

// InMemorySubscriptionStore implements subscription.Repository. Getters
// return copies so a caller mutating a loaded link cannot change stored
// state without going through Update; that keeps failure-path tests
// honest about what was actually persisted.
type InMemorySubscriptionStore struct {
	mu          sync.RWMutex
	links       map[string]*subscription.Link
	updateCount int
}

func NewInMemorySubscriptionStore() *InMemorySubscriptionStore {
	return &InMemorySubscriptionStore{
		links: make(map[string]*subscription.Link),
	}
}

func (s *InMemorySubscriptionStore) Create(ctx context.Context, link *subscription.Link) error {
	if link == nil {
		return ierr.NewError("link cannot be nil").Mark(ierr.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *link
	s.links[link.ID] = &cp
	return nil
}

func (s *InMemorySubscriptionStore) GetByStudent(ctx context.Context, studentID, parentID string) (*subscription.Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, link := range s.links {
		if link.StudentID == studentID && link.ParentID == parentID {
			cp := *link
			return &cp, nil
		}
	}

	return nil, ierr.NewError("subscription not found").
		WithHint("No active subscription found for this student").
		WithReportableDetails(map[string]any{
			"student_id": studentID,
		}).
		Mark(ierr.ErrNotFound)
}

func (s *InMemorySubscriptionStore) GetByStripeSubscriptionID(ctx context.Context, stripeSubscriptionID string) (*subscription.Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, link := range s.links {
		if link.StripeSubscriptionID == stripeSubscriptionID {
			cp := *link
			return &cp, nil
		}
	}

	return nil, ierr.NewError("subscription not found").
		WithReportableDetails(map[string]any{
			"stripe_subscription_id": stripeSubscriptionID,
		}).
		Mark(ierr.ErrNotFound)
}

func (s *InMemorySubscriptionStore) Update(ctx context.Context, link *subscription.Link) error {
	if link == nil {
		return ierr.NewError("link cannot be nil").Mark(ierr.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, existing := range s.links {
		if existing.StripeSubscriptionID == link.StripeSubscriptionID {
			cp := *link
			s.links[id] = &cp
			s.updateCount++
			return nil
		}
	}

	return ierr.NewError("subscription not found").
		WithReportableDetails(map[string]any{
			"stripe_subscription_id": link.StripeSubscriptionID,
		}).
		Mark(ierr.ErrNotFound)
}

// UpdateCount returns how many Update calls reached the store
func (s *InMemorySubscriptionStore) UpdateCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updateCount
}

func (s *InMemorySubscriptionStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.links = make(map[string]*subscription.Link)
	s.updateCount = 0
}
