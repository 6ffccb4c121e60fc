package plan

import (
	"context"
)

type Repository interface {
	// GetByStripePriceID resolves the local plan mapped to an external
	// price identifier. Returns a not-found error when no mapping exists.
	GetByStripePriceID(ctx context.Context, stripePriceID string) (*Plan, error)
}
