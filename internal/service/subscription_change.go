package service

import (
	"context"
	"fmt"
	"time"

	"github.com/classward/classward/internal/api/dto"
	"github.com/classward/classward/internal/domain/subscription"
	ierr "github.com/classward/classward/internal/errors"
	stripeinteg "github.com/classward/classward/internal/integration/stripe"
	"github.com/classward/classward/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
)

// SubscriptionChangeService decides between an immediate prorated
// upgrade and a scheduled downgrade for a student's subscription, and
// keeps the local subscription record in sync with the billing
// provider's state.
type SubscriptionChangeService interface {
	ModifySubscription(ctx context.Context, req *dto.ModifySubscriptionRequest) (*dto.ModifySubscriptionResponse, error)
}

type subscriptionChangeService struct {
	ServiceParams
}

func NewSubscriptionChangeService(params ServiceParams) SubscriptionChangeService {
	return &subscriptionChangeService{
		ServiceParams: params,
	}
}

// planChangeDecision is the classifier's verdict, consumed by a single
// dispatch point so the two executors stay independently testable.
type planChangeDecision struct {
	Kind         types.PlanChangeKind
	CurrentPrice *stripe.Price
	NewPrice     *stripe.Price
}

func (s *subscriptionChangeService) ModifySubscription(ctx context.Context, req *dto.ModifySubscriptionRequest) (*dto.ModifySubscriptionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	parentID := types.GetUserID(ctx)
	if parentID == "" {
		return nil, ierr.NewError("missing caller identity").
			WithHint("You are not allowed to modify this subscription").
			Mark(ierr.ErrPermissionDenied)
	}

	linked, err := s.StudentRepo.ParentLinked(ctx, parentID, req.StudentID)
	if err != nil {
		return nil, err
	}
	if !linked {
		return nil, ierr.NewError("student not linked to caller").
			WithHint("You are not allowed to modify this student's subscription").
			WithReportableDetails(map[string]any{
				"student_id": req.StudentID,
			}).
			Mark(ierr.ErrPermissionDenied)
	}

	link, err := s.SubscriptionRepo.GetByStudent(ctx, req.StudentID, parentID)
	if err != nil {
		return nil, err
	}
	if link.StripeSubscriptionID == "" {
		return nil, ierr.NewError("no billing subscription attached").
			WithHint("No active subscription found for this student").
			WithReportableDetails(map[string]any{
				"student_id": req.StudentID,
			}).
			Mark(ierr.ErrNotFound)
	}

	// Concurrent requests for the same billing subscription race on the
	// current-period values and on schedule create/update calls, so the
	// whole load-classify-execute sequence holds a per-subscription lock.
	release := s.Locker.Lock(link.StripeSubscriptionID)
	defer release()

	stripeSub, err := s.Billing.GetSubscription(ctx, link.StripeSubscriptionID)
	if err != nil {
		return nil, err
	}

	item, err := singleSubscriptionItem(stripeSub)
	if err != nil {
		return nil, err
	}

	if item.Price.ID == req.NewPriceID {
		return nil, ierr.NewError("subscription already on requested price").
			WithHint("You are already on this plan").
			Mark(ierr.ErrInvalidOperation)
	}

	newPrice, err := s.Billing.GetPrice(ctx, req.NewPriceID)
	if err != nil {
		return nil, err
	}

	decision := classifyPlanChange(item.Price, newPrice)

	s.Logger.Infow("classified plan change",
		"student_id", req.StudentID,
		"stripe_subscription_id", stripeSub.ID,
		"current_price_id", item.Price.ID,
		"new_price_id", newPrice.ID,
		"kind", decision.Kind,
	)

	switch decision.Kind {
	case types.PlanChangeUpgrade:
		return s.executeUpgrade(ctx, link, stripeSub, item, decision)
	case types.PlanChangeDowngrade:
		return s.executeDowngrade(ctx, link, stripeSub, item, decision)
	default:
		return nil, ierr.NewError("subscription already on requested price").
			WithHint("You are already on this plan").
			Mark(ierr.ErrInvalidOperation)
	}
}

// classifyPlanChange compares price amounts with a strict greater-than:
// only a strictly higher amount is an upgrade, so an equal amount under
// a different price id falls through to the downgrade path.
func classifyPlanChange(current, requested *stripe.Price) planChangeDecision {
	decision := planChangeDecision{
		CurrentPrice: current,
		NewPrice:     requested,
	}

	if current.ID == requested.ID {
		decision.Kind = types.PlanChangeNoop
		return decision
	}

	if priceAmount(requested).GreaterThan(priceAmount(current)) {
		decision.Kind = types.PlanChangeUpgrade
	} else {
		decision.Kind = types.PlanChangeDowngrade
	}
	return decision
}

func priceAmount(p *stripe.Price) decimal.Decimal {
	if p.UnitAmountDecimal != 0 {
		return decimal.NewFromFloat(p.UnitAmountDecimal)
	}
	return decimal.NewFromInt(p.UnitAmount)
}

// executeUpgrade applies the new price immediately: any pending
// schedule is released first so it cannot reassert a stale downgrade
// after the billing cycle resets, then the item is swapped with
// immediate proration and a fresh billing anchor.
func (s *subscriptionChangeService) executeUpgrade(
	ctx context.Context,
	link *subscription.Link,
	stripeSub *stripe.Subscription,
	item *stripe.SubscriptionItem,
	decision planChangeDecision,
) (*dto.ModifySubscriptionResponse, error) {
	if stripeSub.Schedule != nil {
		s.Logger.Infow("releasing pending schedule before upgrade",
			"stripe_subscription_id", stripeSub.ID,
			"schedule_id", stripeSub.Schedule.ID,
		)
		if err := s.Billing.ReleaseSchedule(ctx, stripeSub.Schedule.ID); err != nil {
			return nil, err
		}
	}

	updated, err := s.Billing.UpdateSubscriptionPrice(ctx, stripeSub.ID, item.ID, decision.NewPrice.ID)
	if err != nil {
		return nil, err
	}

	// An upgrade always supersedes a pending downgrade.
	link.ClearScheduledChange()
	if err := s.syncBillingState(ctx, link, updated); err != nil {
		return nil, err
	}

	updatedItem, err := singleSubscriptionItem(updated)
	if err != nil {
		return nil, err
	}

	planName := s.resolvePlanName(ctx, decision.NewPrice)

	s.Logger.Infow("subscription upgraded",
		"stripe_subscription_id", updated.ID,
		"new_price_id", decision.NewPrice.ID,
		"plan_id", link.PlanID,
	)

	return &dto.ModifySubscriptionResponse{
		Success: true,
		Type:    types.ChangeTypeImmediate,
		Message: fmt.Sprintf("Your subscription has been upgraded to %s, effective immediately.", planName),
		Subscription: dto.SubscriptionInfo{
			ID:                 updated.ID,
			Status:             string(updated.Status),
			CurrentPeriodStart: unixToISO(updatedItem.CurrentPeriodStart),
			CurrentPeriodEnd:   unixToISO(updatedItem.CurrentPeriodEnd),
		},
	}, nil
}

// executeDowngrade defers the cheaper price to the end of the current
// period via a two-phase schedule; the live plan and period are left
// untouched until then.
func (s *subscriptionChangeService) executeDowngrade(
	ctx context.Context,
	link *subscription.Link,
	stripeSub *stripe.Subscription,
	item *stripe.SubscriptionItem,
	decision planChangeDecision,
) (*dto.ModifySubscriptionResponse, error) {
	phases := stripeinteg.SchedulePhases{
		CurrentPriceID: item.Price.ID,
		NewPriceID:     decision.NewPrice.ID,
		PeriodStart:    item.CurrentPeriodStart,
		PeriodEnd:      item.CurrentPeriodEnd,
	}

	var scheduleID string
	if stripeSub.Schedule != nil {
		scheduleID = stripeSub.Schedule.ID
		if _, err := s.Billing.UpdateSchedulePhases(ctx, scheduleID, phases); err != nil {
			return nil, err
		}
	} else {
		schedule, err := s.Billing.CreateScheduleFromSubscription(ctx, stripeSub.ID)
		if err != nil {
			return nil, err
		}
		scheduleID = schedule.ID
		if _, err := s.Billing.UpdateSchedulePhases(ctx, scheduleID, phases); err != nil {
			return nil, err
		}
	}

	// Re-fetch so the synced state carries the schedule reference.
	refreshed, err := s.Billing.GetSubscription(ctx, stripeSub.ID)
	if err != nil {
		return nil, err
	}

	var scheduledPlanID *string
	planName := decision.NewPrice.ID
	if newPlan, lookupErr := s.PlanRepo.GetByStripePriceID(ctx, decision.NewPrice.ID); lookupErr == nil {
		scheduledPlanID = &newPlan.ID
		planName = newPlan.Name
	} else {
		// The schedule is already in place at the provider, so a missing
		// local mapping is recorded as a null scheduled tier rather than
		// aborting the change.
		s.Logger.Warnw("no local plan mapped to scheduled price",
			"stripe_price_id", decision.NewPrice.ID,
			"error", lookupErr,
		)
		if decision.NewPrice.Nickname != "" {
			planName = decision.NewPrice.Nickname
		}
	}

	changeDate := time.Unix(item.CurrentPeriodEnd, 0).UTC()
	link.SetScheduledChange(scheduledPlanID, changeDate, scheduleID)
	if err := s.syncBillingState(ctx, link, refreshed); err != nil {
		return nil, err
	}

	s.Logger.Infow("subscription downgrade scheduled",
		"stripe_subscription_id", stripeSub.ID,
		"schedule_id", scheduleID,
		"scheduled_change_date", changeDate,
	)

	return &dto.ModifySubscriptionResponse{
		Success:       true,
		Type:          types.ChangeTypeScheduled,
		Message:       fmt.Sprintf("Your subscription will change to %s on %s.", planName, changeDate.Format("January 2, 2006")),
		ScheduledDate: &changeDate,
		ScheduleID:    scheduleID,
		ScheduledTier: scheduledPlanID,
		Subscription: dto.SubscriptionInfo{
			ID:               refreshed.ID,
			Status:           string(refreshed.Status),
			CurrentPeriodEnd: unixToISO(item.CurrentPeriodEnd),
		},
	}, nil
}

// syncBillingState mirrors the provider subscription's status, period
// boundaries and resolved plan into the local link and persists the row
// in a single write. Scheduled-* fields are whatever the caller already
// set on the link; this routine never modifies them.
func (s *subscriptionChangeService) syncBillingState(ctx context.Context, link *subscription.Link, stripeSub *stripe.Subscription) error {
	item, err := singleSubscriptionItem(stripeSub)
	if err != nil {
		return err
	}

	var planID string
	if p, lookupErr := s.PlanRepo.GetByStripePriceID(ctx, item.Price.ID); lookupErr == nil {
		planID = p.ID
	} else {
		s.Logger.Warnw("no local plan mapped to live price",
			"stripe_price_id", item.Price.ID,
			"error", lookupErr,
		)
	}

	link.ApplyBillingState(
		types.SubscriptionStatus(stripeSub.Status),
		time.Unix(item.CurrentPeriodStart, 0).UTC(),
		time.Unix(item.CurrentPeriodEnd, 0).UTC(),
		planID,
	)

	return s.SubscriptionRepo.Update(ctx, link)
}

func (s *subscriptionChangeService) resolvePlanName(ctx context.Context, price *stripe.Price) string {
	if p, err := s.PlanRepo.GetByStripePriceID(ctx, price.ID); err == nil {
		return p.Name
	}
	if price.Nickname != "" {
		return price.Nickname
	}
	return price.ID
}

// singleSubscriptionItem enforces the one-item-per-subscription
// precondition instead of silently taking the first item.
func singleSubscriptionItem(sub *stripe.Subscription) (*stripe.SubscriptionItem, error) {
	if sub.Items == nil || len(sub.Items.Data) != 1 {
		count := 0
		if sub.Items != nil {
			count = len(sub.Items.Data)
		}
		return nil, ierr.NewError("unexpected subscription item count").
			WithHint("Subscription is not in a supported state").
			WithReportableDetails(map[string]any{
				"subscription_id": sub.ID,
				"item_count":      count,
			}).
			Mark(ierr.ErrSystem)
	}

	item := sub.Items.Data[0]
	if item.Price == nil {
		return nil, ierr.NewError("subscription item has no price").
			WithHint("Subscription is not in a supported state").
			WithReportableDetails(map[string]any{
				"subscription_id": sub.ID,
			}).
			Mark(ierr.ErrSystem)
	}

	return item, nil
}

func unixToISO(ts int64) string {
	return time.Unix(ts, 0).UTC().Format(time.RFC3339)
}
