package service

import (
	"github.com/classward/classward/internal/config"
	"github.com/classward/classward/internal/domain/plan"
	"github.com/classward/classward/internal/domain/student"
	"github.com/classward/classward/internal/domain/subscription"
	stripeinteg "github.com/classward/classward/internal/integration/stripe"
	"github.com/classward/classward/internal/locker"
	"github.com/classward/classward/internal/logger"
)

// ServiceParams bundles the dependencies shared by services. Built once
// at startup and passed by reference; services never reach for global
// client handles.
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration

	SubscriptionRepo subscription.Repository
	StudentRepo      student.Repository
	PlanRepo         plan.Repository

	Billing stripeinteg.Provider
	Locker  *locker.KeyedLocker
}

func NewServiceParams(
	logger *logger.Logger,
	cfg *config.Configuration,
	subscriptionRepo subscription.Repository,
	studentRepo student.Repository,
	planRepo plan.Repository,
	billing stripeinteg.Provider,
	keyedLocker *locker.KeyedLocker,
) ServiceParams {
	return ServiceParams{
		Logger:           logger,
		Config:           cfg,
		SubscriptionRepo: subscriptionRepo,
		StudentRepo:      studentRepo,
		PlanRepo:         planRepo,
		Billing:          billing,
		Locker:           keyedLocker,
	}
}
