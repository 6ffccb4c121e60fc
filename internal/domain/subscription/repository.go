package subscription

import (
	"context"
)

type Repository interface {
	Create(ctx context.Context, link *Link) error

	// GetByStudent resolves the link for a student owned by the given parent
	GetByStudent(ctx context.Context, studentID, parentID string) (*Link, error)

	// GetByStripeSubscriptionID resolves the link mirroring the given
	// provider subscription
	GetByStripeSubscriptionID(ctx context.Context, stripeSubscriptionID string) (*Link, error)

	// Update writes the full link row, keyed by stripe_subscription_id,
	// as a single statement so synced and scheduled fields change together
	Update(ctx context.Context, link *Link) error
}
