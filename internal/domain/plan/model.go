package plan

import (
	"time"
)

// Plan is a named subscription tier mapped to an external price
// identifier. Read-only reference data to the plan-change workflow.
type Plan struct {
	ID            string    `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	StripePriceID string    `db:"stripe_price_id" json:"stripe_price_id"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
