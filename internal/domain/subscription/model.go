package subscription

import (
	"time"

	ierr "github.com/classward/classward/internal/errors"
	"github.com/classward/classward/internal/types"
)

// Link is the local mirror of one student's billing relationship. The
// billing provider owns the authoritative subscription object; this row
// tracks which plan the student is on, the current period boundaries,
// and any pending scheduled plan change.
type Link struct {
	// ID is the unique identifier for the link row
	ID string `db:"id" json:"id"`

	// StudentID is the student this subscription belongs to
	StudentID string `db:"student_id" json:"student_id"`

	// ParentID is the parent entitled to act on this subscription
	ParentID string `db:"parent_id" json:"parent_id"`

	// StripeSubscriptionID references the provider's subscription object
	StripeSubscriptionID string `db:"stripe_subscription_id" json:"stripe_subscription_id"`

	// PlanID is the local identifier of the plan currently in effect
	PlanID string `db:"plan_id" json:"plan_id"`

	// Status mirrors the provider's subscription status
	Status types.SubscriptionStatus `db:"status" json:"status"`

	// CurrentPeriodStart is the start of the current billing period
	CurrentPeriodStart time.Time `db:"current_period_start" json:"current_period_start"`

	// CurrentPeriodEnd is the end of the current billing period
	CurrentPeriodEnd time.Time `db:"current_period_end" json:"current_period_end"`

	// ScheduledPlanID is the local plan id a pending downgrade resolves
	// to, when the price-to-plan lookup succeeded
	ScheduledPlanID *string `db:"scheduled_plan_id" json:"scheduled_plan_id"`

	// ScheduledChangeDate is when a pending downgrade takes effect
	ScheduledChangeDate *time.Time `db:"scheduled_change_date" json:"scheduled_change_date"`

	// StripeScheduleID references the provider schedule object backing a
	// pending downgrade
	StripeScheduleID *string `db:"stripe_schedule_id" json:"stripe_schedule_id"`

	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// HasScheduledChange reports whether a downgrade is pending on this link
func (l *Link) HasScheduledChange() bool {
	return l.StripeScheduleID != nil
}

// Validate enforces the scheduled-state invariant: the schedule id and
// change date are set together or not at all, and a scheduled plan id
// can only exist alongside them. A partial scheduled state is invalid.
func (l *Link) Validate() error {
	if (l.StripeScheduleID == nil) != (l.ScheduledChangeDate == nil) {
		return ierr.NewError("partial scheduled change state").
			WithHint("Subscription record is in an inconsistent state").
			WithReportableDetails(map[string]any{
				"stripe_subscription_id": l.StripeSubscriptionID,
			}).
			Mark(ierr.ErrSystem)
	}
	if l.ScheduledPlanID != nil && l.StripeScheduleID == nil {
		return ierr.NewError("scheduled plan without schedule").
			WithHint("Subscription record is in an inconsistent state").
			WithReportableDetails(map[string]any{
				"stripe_subscription_id": l.StripeSubscriptionID,
			}).
			Mark(ierr.ErrSystem)
	}
	return nil
}

// ApplyBillingState mirrors the given provider-side fields into the
// link. It never touches the scheduled-* fields; those are owned by the
// plan-change executors. Applying the same state twice is a no-op.
func (l *Link) ApplyBillingState(status types.SubscriptionStatus, periodStart, periodEnd time.Time, planID string) {
	l.Status = status
	l.CurrentPeriodStart = periodStart
	l.CurrentPeriodEnd = periodEnd
	if planID != "" {
		l.PlanID = planID
	}
}

// SetScheduledChange records a pending downgrade. planID may be nil when
// the requested price has no local plan mapping.
func (l *Link) SetScheduledChange(planID *string, changeDate time.Time, scheduleID string) {
	l.ScheduledPlanID = planID
	l.ScheduledChangeDate = &changeDate
	l.StripeScheduleID = &scheduleID
}

// ClearScheduledChange drops any pending downgrade from the link
func (l *Link) ClearScheduledChange() {
	l.ScheduledPlanID = nil
	l.ScheduledChangeDate = nil
	l.StripeScheduleID = nil
}
