package types

// SubscriptionStatus mirrors the billing provider's subscription status
type SubscriptionStatus string

const (
	SubscriptionStatusActive            SubscriptionStatus = "active"
	SubscriptionStatusTrialing          SubscriptionStatus = "trialing"
	SubscriptionStatusPastDue           SubscriptionStatus = "past_due"
	SubscriptionStatusCanceled          SubscriptionStatus = "canceled"
	SubscriptionStatusUnpaid            SubscriptionStatus = "unpaid"
	SubscriptionStatusIncomplete        SubscriptionStatus = "incomplete"
	SubscriptionStatusIncompleteExpired SubscriptionStatus = "incomplete_expired"
)

// PlanChangeKind classifies a requested plan change relative to the
// plan the subscription is currently on.
type PlanChangeKind string

const (
	// PlanChangeUpgrade applies immediately with prorated billing
	PlanChangeUpgrade PlanChangeKind = "upgrade"
	// PlanChangeDowngrade is deferred to the end of the current period
	PlanChangeDowngrade PlanChangeKind = "downgrade"
	// PlanChangeNoop means the subscription is already on the requested price
	PlanChangeNoop PlanChangeKind = "noop"
)

// ChangeType is the change kind reported to the caller in responses
type ChangeType string

const (
	ChangeTypeImmediate ChangeType = "immediate"
	ChangeTypeScheduled ChangeType = "scheduled"
)
