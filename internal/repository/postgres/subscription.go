package postgres

import (
	"context"
	"time"

	"github.com/classward/classward/internal/domain/subscription"
	ierr "github.com/classward/classward/internal/errors"
	"github.com/classward/classward/internal/logger"
	"github.com/classward/classward/internal/postgres"
)

type subscriptionRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewSubscriptionRepository(db *postgres.DB, logger *logger.Logger) subscription.Repository {
	return &subscriptionRepository{db: db, logger: logger}
}

func (r *subscriptionRepository) Create(ctx context.Context, link *subscription.Link) error {
	query := `
		INSERT INTO subscription_links (
			id,
			student_id,
			parent_id,
			stripe_subscription_id,
			plan_id,
			status,
			current_period_start,
			current_period_end,
			scheduled_plan_id,
			scheduled_change_date,
			stripe_schedule_id,
			updated_at
		) VALUES (
			:id,
			:student_id,
			:parent_id,
			:stripe_subscription_id,
			:plan_id,
			:status,
			:current_period_start,
			:current_period_end,
			:scheduled_plan_id,
			:scheduled_change_date,
			:stripe_schedule_id,
			:updated_at
		)
	`

	link.UpdatedAt = time.Now().UTC()
	_, err := r.db.NamedExecContext(ctx, query, link)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create subscription record").
			Mark(ierr.ErrDatabase)
	}

	return nil
}

func (r *subscriptionRepository) GetByStudent(ctx context.Context, studentID, parentID string) (*subscription.Link, error) {
	query := `
		SELECT * FROM subscription_links
		WHERE
			student_id = :student_id AND
			parent_id = :parent_id
	`

	rows, err := r.db.NamedQueryContext(ctx, query, map[string]interface{}{
		"student_id": studentID,
		"parent_id":  parentID,
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to look up subscription").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ierr.NewError("subscription link not found").
			WithHint("No active subscription found for this student").
			WithReportableDetails(map[string]any{
				"student_id": studentID,
			}).
			Mark(ierr.ErrNotFound)
	}

	var link subscription.Link
	if err := rows.StructScan(&link); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to read subscription record").
			Mark(ierr.ErrDatabase)
	}

	return &link, nil
}

func (r *subscriptionRepository) GetByStripeSubscriptionID(ctx context.Context, stripeSubscriptionID string) (*subscription.Link, error) {
	query := `
		SELECT * FROM subscription_links
		WHERE stripe_subscription_id = :stripe_subscription_id
	`

	rows, err := r.db.NamedQueryContext(ctx, query, map[string]interface{}{
		"stripe_subscription_id": stripeSubscriptionID,
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to look up subscription").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ierr.NewError("subscription link not found").
			WithHint("No active subscription found").
			WithReportableDetails(map[string]any{
				"stripe_subscription_id": stripeSubscriptionID,
			}).
			Mark(ierr.ErrNotFound)
	}

	var link subscription.Link
	if err := rows.StructScan(&link); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to read subscription record").
			Mark(ierr.ErrDatabase)
	}

	return &link, nil
}

// Update writes every mutable column in one statement. Synced billing
// fields and scheduled-change fields land together or not at all.
func (r *subscriptionRepository) Update(ctx context.Context, link *subscription.Link) error {
	query := `
		UPDATE subscription_links SET
			plan_id = :plan_id,
			status = :status,
			current_period_start = :current_period_start,
			current_period_end = :current_period_end,
			scheduled_plan_id = :scheduled_plan_id,
			scheduled_change_date = :scheduled_change_date,
			stripe_schedule_id = :stripe_schedule_id,
			updated_at = :updated_at
		WHERE stripe_subscription_id = :stripe_subscription_id
	`

	link.UpdatedAt = time.Now().UTC()
	result, err := r.db.NamedExecContext(ctx, query, link)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update subscription record").
			Mark(ierr.ErrDatabase)
	}

	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return ierr.NewError("subscription link not found").
			WithHint("No subscription record to update").
			WithReportableDetails(map[string]any{
				"stripe_subscription_id": link.StripeSubscriptionID,
			}).
			Mark(ierr.ErrNotFound)
	}

	return nil
}
