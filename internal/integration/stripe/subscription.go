package stripe

import (
	"context"

	ierr "github.com/classward/classward/internal/errors"
	"github.com/samber/lo"
	"github.com/stripe/stripe-go/v82"
)

// Provider is the billing-provider surface the plan-change workflow
// depends on. Implemented by Client against the live Stripe API and by
// a recording fake in tests.
type Provider interface {
	// GetSubscription retrieves a subscription with its item prices and
	// any attached schedule expanded
	GetSubscription(ctx context.Context, subscriptionID string) (*stripe.Subscription, error)

	// GetPrice retrieves a price object
	GetPrice(ctx context.Context, priceID string) (*stripe.Price, error)

	// UpdateSubscriptionPrice swaps the subscription's item to the given
	// price, resetting the billing cycle anchor to now, invoicing the
	// prorated difference immediately, and failing the call if the
	// resulting invoice cannot be paid
	UpdateSubscriptionPrice(ctx context.Context, subscriptionID, itemID, priceID string) (*stripe.Subscription, error)

	// CreateScheduleFromSubscription attaches a new schedule derived from
	// the subscription's current state
	CreateScheduleFromSubscription(ctx context.Context, subscriptionID string) (*stripe.SubscriptionSchedule, error)

	// UpdateSchedulePhases rewrites the schedule as two phases: the
	// current price through the period end, then the new price open-ended.
	// End behavior is release so the schedule detaches once done instead
	// of cancelling the subscription.
	UpdateSchedulePhases(ctx context.Context, scheduleID string, phases SchedulePhases) (*stripe.SubscriptionSchedule, error)

	// ReleaseSchedule detaches the schedule from its subscription
	ReleaseSchedule(ctx context.Context, scheduleID string) error
}

// SchedulePhases describes the two-phase downgrade layout
type SchedulePhases struct {
	CurrentPriceID string
	NewPriceID     string
	PeriodStart    int64
	PeriodEnd      int64
}

func (c *Client) GetSubscription(ctx context.Context, subscriptionID string) (*stripe.Subscription, error) {
	params := &stripe.SubscriptionRetrieveParams{
		Expand: lo.ToSlicePtr([]string{
			"items.data.price",
			"schedule",
		}),
	}

	sub, err := c.sc.V1Subscriptions.Retrieve(ctx, subscriptionID, params)
	if err != nil {
		c.logger.Errorw("failed to retrieve subscription from Stripe",
			"error", err,
			"subscription_id", subscriptionID,
		)
		return nil, ierr.WithError(err).
			WithHint("Could not fetch subscription information from the billing provider").
			WithReportableDetails(map[string]any{
				"subscription_id": subscriptionID,
			}).
			Mark(ierr.ErrIntegration)
	}

	return sub, nil
}

func (c *Client) GetPrice(ctx context.Context, priceID string) (*stripe.Price, error) {
	price, err := c.sc.V1Prices.Retrieve(ctx, priceID, &stripe.PriceRetrieveParams{})
	if err != nil {
		c.logger.Errorw("failed to retrieve price from Stripe",
			"error", err,
			"price_id", priceID,
		)
		return nil, ierr.WithError(err).
			WithHint("Could not fetch price information from the billing provider").
			WithReportableDetails(map[string]any{
				"price_id": priceID,
			}).
			Mark(ierr.ErrIntegration)
	}

	return price, nil
}

func (c *Client) UpdateSubscriptionPrice(ctx context.Context, subscriptionID, itemID, priceID string) (*stripe.Subscription, error) {
	params := &stripe.SubscriptionUpdateParams{
		Items: []*stripe.SubscriptionUpdateItemParams{
			{
				ID:    stripe.String(itemID),
				Price: stripe.String(priceID),
			},
		},
		BillingCycleAnchorNow: stripe.Bool(true),
		ProrationBehavior:     stripe.String("always_invoice"),
		PaymentBehavior:       stripe.String("error_if_incomplete"),
		Expand: lo.ToSlicePtr([]string{
			"items.data.price",
		}),
	}

	sub, err := c.sc.V1Subscriptions.Update(ctx, subscriptionID, params)
	if err != nil {
		c.logger.Errorw("failed to update subscription price on Stripe",
			"error", err,
			"subscription_id", subscriptionID,
			"price_id", priceID,
		)
		return nil, ierr.WithError(err).
			WithHint("The billing provider rejected the plan change").
			WithReportableDetails(map[string]any{
				"subscription_id": subscriptionID,
				"price_id":        priceID,
			}).
			Mark(ierr.ErrIntegration)
	}

	return sub, nil
}

func (c *Client) CreateScheduleFromSubscription(ctx context.Context, subscriptionID string) (*stripe.SubscriptionSchedule, error) {
	params := &stripe.SubscriptionScheduleCreateParams{
		FromSubscription: stripe.String(subscriptionID),
	}

	schedule, err := c.sc.V1SubscriptionSchedules.Create(ctx, params)
	if err != nil {
		c.logger.Errorw("failed to create subscription schedule on Stripe",
			"error", err,
			"subscription_id", subscriptionID,
		)
		return nil, ierr.WithError(err).
			WithHint("Could not schedule the plan change with the billing provider").
			WithReportableDetails(map[string]any{
				"subscription_id": subscriptionID,
			}).
			Mark(ierr.ErrIntegration)
	}

	return schedule, nil
}

func (c *Client) UpdateSchedulePhases(ctx context.Context, scheduleID string, phases SchedulePhases) (*stripe.SubscriptionSchedule, error) {
	params := &stripe.SubscriptionScheduleUpdateParams{
		EndBehavior: stripe.String("release"),
		Phases: []*stripe.SubscriptionScheduleUpdatePhaseParams{
			{
				Items: []*stripe.SubscriptionScheduleUpdatePhaseItemParams{
					{Price: stripe.String(phases.CurrentPriceID)},
				},
				StartDate: stripe.Int64(phases.PeriodStart),
				EndDate:   stripe.Int64(phases.PeriodEnd),
			},
			{
				Items: []*stripe.SubscriptionScheduleUpdatePhaseItemParams{
					{Price: stripe.String(phases.NewPriceID)},
				},
				StartDate: stripe.Int64(phases.PeriodEnd),
			},
		},
	}

	schedule, err := c.sc.V1SubscriptionSchedules.Update(ctx, scheduleID, params)
	if err != nil {
		c.logger.Errorw("failed to update subscription schedule on Stripe",
			"error", err,
			"schedule_id", scheduleID,
		)
		return nil, ierr.WithError(err).
			WithHint("Could not schedule the plan change with the billing provider").
			WithReportableDetails(map[string]any{
				"schedule_id": scheduleID,
			}).
			Mark(ierr.ErrIntegration)
	}

	return schedule, nil
}

func (c *Client) ReleaseSchedule(ctx context.Context, scheduleID string) error {
	_, err := c.sc.V1SubscriptionSchedules.Release(ctx, scheduleID, &stripe.SubscriptionScheduleReleaseParams{})
	if err != nil {
		c.logger.Errorw("failed to release subscription schedule on Stripe",
			"error", err,
			"schedule_id", scheduleID,
		)
		return ierr.WithError(err).
			WithHint("Could not release the pending plan change with the billing provider").
			WithReportableDetails(map[string]any{
				"schedule_id": scheduleID,
			}).
			Mark(ierr.ErrIntegration)
	}

	return nil
}
