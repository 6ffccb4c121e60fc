package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	ierr "github.com/classward/classward/internal/errors"
	stripeinteg "github.com/classward/classward/internal/integration/stripe"
	"github.com/stripe/stripe-go/v82"
)

// FakeBillingProvider implements stripeinteg.Provider against in-memory
// fixtures. It records every call in order, supports per-operation
// failure injection, and mutates its fixtures the way the real provider
// would: an item swap resets the billing anchor to Now, a schedule
// create attaches the schedule to the subscription, a release detaches
// it.
type FakeBillingProvider struct {
	mu            sync.Mutex
	subscriptions map[string]*stripe.Subscription
	prices        map[string]*stripe.Price
	schedules     map[string]*stripe.SubscriptionSchedule
	failures      map[string]error
	calls         []string
	scheduleSeq   int
	lastPhases    stripeinteg.SchedulePhases

	// Now anchors the period reset applied by UpdateSubscriptionPrice
	Now time.Time

	// PeriodLength is the billing period applied on anchor reset
	PeriodLength time.Duration
}

func NewFakeBillingProvider() *FakeBillingProvider {
	return &FakeBillingProvider{
		subscriptions: make(map[string]*stripe.Subscription),
		prices:        make(map[string]*stripe.Price),
		schedules:     make(map[string]*stripe.SubscriptionSchedule),
		failures:      make(map[string]error),
		Now:           time.Now().UTC(),
		PeriodLength:  30 * 24 * time.Hour,
	}
}

// SetSubscription registers a subscription fixture
func (f *FakeBillingProvider) SetSubscription(sub *stripe.Subscription) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscriptions[sub.ID] = sub
}

// SetPrice registers a price fixture
func (f *FakeBillingProvider) SetPrice(price *stripe.Price) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prices[price.ID] = price
}

// AttachSchedule attaches an existing schedule fixture to a subscription
func (f *FakeBillingProvider) AttachSchedule(subscriptionID, scheduleID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	schedule := &stripe.SubscriptionSchedule{ID: scheduleID}
	f.schedules[scheduleID] = schedule
	if sub, ok := f.subscriptions[subscriptionID]; ok {
		sub.Schedule = schedule
	}
}

// FailWith makes the named operation return err on its next calls
func (f *FakeBillingProvider) FailWith(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		err = ierr.NewError("billing provider unavailable").
			WithHint("Could not reach the billing provider").
			Mark(ierr.ErrIntegration)
	}
	f.failures[op] = err
}

// Calls returns the operations invoked so far, in order
func (f *FakeBillingProvider) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallCount returns how many times the named operation was invoked
func (f *FakeBillingProvider) CallCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, c := range f.calls {
		if c == op {
			count++
		}
	}
	return count
}

// TotalCalls returns how many provider operations were invoked
func (f *FakeBillingProvider) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// LastPhases returns the phase layout from the most recent
// UpdateSchedulePhases call
func (f *FakeBillingProvider) LastPhases() stripeinteg.SchedulePhases {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastPhases
}

func (f *FakeBillingProvider) record(op string) error {
	f.calls = append(f.calls, op)
	if err, ok := f.failures[op]; ok {
		return err
	}
	return nil
}

func (f *FakeBillingProvider) GetSubscription(ctx context.Context, subscriptionID string) (*stripe.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record("GetSubscription"); err != nil {
		return nil, err
	}

	sub, ok := f.subscriptions[subscriptionID]
	if !ok {
		return nil, ierr.NewError("no such subscription").
			WithReportableDetails(map[string]any{
				"subscription_id": subscriptionID,
			}).
			Mark(ierr.ErrIntegration)
	}
	return sub, nil
}

func (f *FakeBillingProvider) GetPrice(ctx context.Context, priceID string) (*stripe.Price, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record("GetPrice"); err != nil {
		return nil, err
	}

	price, ok := f.prices[priceID]
	if !ok {
		return nil, ierr.NewError("no such price").
			WithReportableDetails(map[string]any{
				"price_id": priceID,
			}).
			Mark(ierr.ErrIntegration)
	}
	return price, nil
}

func (f *FakeBillingProvider) UpdateSubscriptionPrice(ctx context.Context, subscriptionID, itemID, priceID string) (*stripe.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record("UpdateSubscriptionPrice"); err != nil {
		return nil, err
	}

	sub, ok := f.subscriptions[subscriptionID]
	if !ok {
		return nil, ierr.NewError("no such subscription").Mark(ierr.ErrIntegration)
	}
	price, ok := f.prices[priceID]
	if !ok {
		return nil, ierr.NewError("no such price").Mark(ierr.ErrIntegration)
	}

	for _, item := range sub.Items.Data {
		if item.ID == itemID {
			item.Price = price
			item.CurrentPeriodStart = f.Now.Unix()
			item.CurrentPeriodEnd = f.Now.Add(f.PeriodLength).Unix()
		}
	}
	sub.Status = stripe.SubscriptionStatusActive
	return sub, nil
}

func (f *FakeBillingProvider) CreateScheduleFromSubscription(ctx context.Context, subscriptionID string) (*stripe.SubscriptionSchedule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record("CreateScheduleFromSubscription"); err != nil {
		return nil, err
	}

	sub, ok := f.subscriptions[subscriptionID]
	if !ok {
		return nil, ierr.NewError("no such subscription").Mark(ierr.ErrIntegration)
	}

	f.scheduleSeq++
	schedule := &stripe.SubscriptionSchedule{
		ID: fmt.Sprintf("sub_sched_%03d", f.scheduleSeq),
	}
	f.schedules[schedule.ID] = schedule
	sub.Schedule = schedule
	return schedule, nil
}

func (f *FakeBillingProvider) UpdateSchedulePhases(ctx context.Context, scheduleID string, phases stripeinteg.SchedulePhases) (*stripe.SubscriptionSchedule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record("UpdateSchedulePhases"); err != nil {
		return nil, err
	}

	schedule, ok := f.schedules[scheduleID]
	if !ok {
		return nil, ierr.NewError("no such schedule").
			WithReportableDetails(map[string]any{
				"schedule_id": scheduleID,
			}).
			Mark(ierr.ErrIntegration)
	}

	f.lastPhases = phases
	return schedule, nil
}

func (f *FakeBillingProvider) ReleaseSchedule(ctx context.Context, scheduleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record("ReleaseSchedule"); err != nil {
		return err
	}

	if _, ok := f.schedules[scheduleID]; !ok {
		return ierr.NewError("no such schedule").Mark(ierr.ErrIntegration)
	}

	delete(f.schedules, scheduleID)
	for _, sub := range f.subscriptions {
		if sub.Schedule != nil && sub.Schedule.ID == scheduleID {
			sub.Schedule = nil
		}
	}
	return nil
}
