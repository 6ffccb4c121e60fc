package postgres

import (
	"context"

	"github.com/classward/classward/internal/cache"
	"github.com/classward/classward/internal/domain/plan"
	ierr "github.com/classward/classward/internal/errors"
	"github.com/classward/classward/internal/logger"
	"github.com/classward/classward/internal/postgres"
)

type planRepository struct {
	db     *postgres.DB
	logger *logger.Logger
	cache  cache.Cache
}

func NewPlanRepository(db *postgres.DB, logger *logger.Logger, cache cache.Cache) plan.Repository {
	return &planRepository{db: db, logger: logger, cache: cache}
}

func (r *planRepository) GetByStripePriceID(ctx context.Context, stripePriceID string) (*plan.Plan, error) {
	cacheKey := cache.GenerateKey(cache.PrefixPlan, stripePriceID)
	if cached, found := r.cache.Get(ctx, cacheKey); found {
		if p, ok := cached.(*plan.Plan); ok {
			return p, nil
		}
	}

	query := `
		SELECT * FROM plans
		WHERE stripe_price_id = :stripe_price_id
	`

	rows, err := r.db.NamedQueryContext(ctx, query, map[string]interface{}{
		"stripe_price_id": stripePriceID,
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to look up plan").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ierr.NewError("plan not found").
			WithHint("No plan is mapped to this price").
			WithReportableDetails(map[string]any{
				"stripe_price_id": stripePriceID,
			}).
			Mark(ierr.ErrNotFound)
	}

	var p plan.Plan
	if err := rows.StructScan(&p); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to read plan record").
			Mark(ierr.ErrDatabase)
	}

	r.cache.Set(ctx, cacheKey, &p, cache.DefaultExpiration)
	return &p, nil
}
