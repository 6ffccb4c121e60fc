package dto

import (
	"encoding/json"
	"time"

	ierr "github.com/classward/classward/internal/errors"
	"github.com/classward/classward/internal/types"
)

// ModifySubscriptionRequest asks to move a student's subscription to a
// new price. The caller is the parent resolved from the bearer token.
type ModifySubscriptionRequest struct {
	StudentID  string `json:"studentId"`
	NewPriceID string `json:"newPriceId"`
}

func (r *ModifySubscriptionRequest) Validate() error {
	if r.StudentID == "" {
		return ierr.NewError("studentId is required").
			WithHint("Please provide a valid student ID").
			Mark(ierr.ErrValidation)
	}
	if r.NewPriceID == "" {
		return ierr.NewError("newPriceId is required").
			WithHint("Please provide a valid price ID").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// SubscriptionInfo carries the provider subscription fields echoed in
// responses. Timestamps are ISO-8601.
type SubscriptionInfo struct {
	ID                 string `json:"id"`
	Status             string `json:"status"`
	CurrentPeriodStart string `json:"currentPeriodStart,omitempty"`
	CurrentPeriodEnd   string `json:"currentPeriodEnd"`
}

// ModifySubscriptionResponse is the success body for both change paths.
// The immediate shape omits the scheduled-* fields entirely; the
// scheduled shape always carries them, with scheduledTier null when the
// new price has no local plan mapping.
type ModifySubscriptionResponse struct {
	Success       bool
	Type          types.ChangeType
	Message       string
	ScheduledDate *time.Time
	ScheduleID    string
	ScheduledTier *string
	Subscription  SubscriptionInfo
}

func (r *ModifySubscriptionResponse) MarshalJSON() ([]byte, error) {
	type immediateBody struct {
		Success      bool             `json:"success"`
		Type         types.ChangeType `json:"type"`
		Message      string           `json:"message"`
		Subscription SubscriptionInfo `json:"subscription"`
	}

	if r.Type == types.ChangeTypeScheduled {
		type scheduledBody struct {
			Success       bool             `json:"success"`
			Type          types.ChangeType `json:"type"`
			Message       string           `json:"message"`
			ScheduledDate string           `json:"scheduledDate"`
			ScheduleID    string           `json:"scheduleId"`
			ScheduledTier *string          `json:"scheduledTier"`
			Subscription  SubscriptionInfo `json:"subscription"`
		}

		var scheduledDate string
		if r.ScheduledDate != nil {
			scheduledDate = r.ScheduledDate.UTC().Format(time.RFC3339)
		}

		return json.Marshal(scheduledBody{
			Success:       r.Success,
			Type:          r.Type,
			Message:       r.Message,
			ScheduledDate: scheduledDate,
			ScheduleID:    r.ScheduleID,
			ScheduledTier: r.ScheduledTier,
			Subscription:  r.Subscription,
		})
	}

	return json.Marshal(immediateBody{
		Success:      r.Success,
		Type:         r.Type,
		Message:      r.Message,
		Subscription: r.Subscription,
	})
}
