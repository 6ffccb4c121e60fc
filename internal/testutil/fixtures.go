package testutil

import (
	"time"

	"github.com/stripe/stripe-go/v82"
)

// NewBillingPrice builds a price fixture with an amount in the smallest
// currency unit
func NewBillingPrice(id string, unitAmount int64) *stripe.Price {
	return &stripe.Price{
		ID:         id,
		UnitAmount: unitAmount,
		Currency:   stripe.CurrencyUSD,
	}
}

// NewBillingSubscription builds an active single-item subscription
// fixture with the given price and period boundaries
func NewBillingSubscription(id, itemID string, price *stripe.Price, periodStart, periodEnd time.Time) *stripe.Subscription {
	return &stripe.Subscription{
		ID:     id,
		Status: stripe.SubscriptionStatusActive,
		Items: &stripe.SubscriptionItemList{
			Data: []*stripe.SubscriptionItem{
				{
					ID:                 itemID,
					Price:              price,
					CurrentPeriodStart: periodStart.Unix(),
					CurrentPeriodEnd:   periodEnd.Unix(),
				},
			},
		},
	}
}
