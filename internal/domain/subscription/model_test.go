package subscription

import (
	"testing"
	"time"

	ierr "github.com/classward/classward/internal/errors"
	"github.com/classward/classward/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestLinkValidate(t *testing.T) {
	planID := "plan_core"
	changeDate := time.Now().UTC()
	scheduleID := "sub_sched_1"

	tests := []struct {
		name    string
		link    Link
		wantErr bool
	}{
		{
			name: "no scheduled change",
			link: Link{StripeSubscriptionID: "sub_1"},
		},
		{
			name: "full scheduled change",
			link: Link{
				StripeSubscriptionID: "sub_1",
				ScheduledPlanID:      &planID,
				ScheduledChangeDate:  &changeDate,
				StripeScheduleID:     &scheduleID,
			},
		},
		{
			name: "scheduled change with unresolved plan",
			link: Link{
				StripeSubscriptionID: "sub_1",
				ScheduledChangeDate:  &changeDate,
				StripeScheduleID:     &scheduleID,
			},
		},
		{
			name: "schedule id without change date",
			link: Link{
				StripeSubscriptionID: "sub_1",
				StripeScheduleID:     &scheduleID,
			},
			wantErr: true,
		},
		{
			name: "change date without schedule id",
			link: Link{
				StripeSubscriptionID: "sub_1",
				ScheduledChangeDate:  &changeDate,
			},
			wantErr: true,
		},
		{
			name: "scheduled plan without schedule",
			link: Link{
				StripeSubscriptionID: "sub_1",
				ScheduledPlanID:      &planID,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.link.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, ierr.IsSystem(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestApplyBillingStateIsIdempotent(t *testing.T) {
	periodStart := time.Now().UTC().Truncate(time.Second)
	periodEnd := periodStart.Add(30 * 24 * time.Hour)

	link := Link{
		StripeSubscriptionID: "sub_1",
		PlanID:               "plan_core",
	}

	link.ApplyBillingState(types.SubscriptionStatusActive, periodStart, periodEnd, "plan_pro")
	first := link

	link.ApplyBillingState(types.SubscriptionStatusActive, periodStart, periodEnd, "plan_pro")
	assert.Equal(t, first, link)
}

func TestApplyBillingStateKeepsPlanWhenUnresolved(t *testing.T) {
	link := Link{PlanID: "plan_core"}

	link.ApplyBillingState(types.SubscriptionStatusActive, time.Now(), time.Now(), "")
	assert.Equal(t, "plan_core", link.PlanID)
}

func TestApplyBillingStatePreservesScheduledFields(t *testing.T) {
	planID := "plan_core"
	changeDate := time.Now().UTC()
	scheduleID := "sub_sched_1"

	link := Link{StripeSubscriptionID: "sub_1"}
	link.SetScheduledChange(&planID, changeDate, scheduleID)

	link.ApplyBillingState(types.SubscriptionStatusPastDue, time.Now(), time.Now(), "plan_pro")

	assert.Equal(t, &planID, link.ScheduledPlanID)
	assert.Equal(t, &changeDate, link.ScheduledChangeDate)
	assert.Equal(t, &scheduleID, link.StripeScheduleID)
}

func TestScheduledChangeLifecycle(t *testing.T) {
	planID := "plan_core"
	changeDate := time.Now().UTC()

	link := Link{StripeSubscriptionID: "sub_1"}
	assert.False(t, link.HasScheduledChange())

	link.SetScheduledChange(&planID, changeDate, "sub_sched_1")
	assert.True(t, link.HasScheduledChange())
	assert.NoError(t, link.Validate())

	link.ClearScheduledChange()
	assert.False(t, link.HasScheduledChange())
	assert.Nil(t, link.ScheduledPlanID)
	assert.Nil(t, link.ScheduledChangeDate)
	assert.Nil(t, link.StripeScheduleID)
	assert.NoError(t, link.Validate())
}
