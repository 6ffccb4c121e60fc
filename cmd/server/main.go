package main

import (
	"context"
	"time"

	"github.com/classward/classward/internal/api"
	v1 "github.com/classward/classward/internal/api/v1"
	"github.com/classward/classward/internal/auth"
	"github.com/classward/classward/internal/cache"
	"github.com/classward/classward/internal/config"
	stripeinteg "github.com/classward/classward/internal/integration/stripe"
	"github.com/classward/classward/internal/locker"
	"github.com/classward/classward/internal/logger"
	"github.com/classward/classward/internal/postgres"
	repository "github.com/classward/classward/internal/repository/postgres"
	"github.com/classward/classward/internal/sentry"
	"github.com/classward/classward/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC

	// Load .env if present; real environments configure via env vars
	_ = godotenv.Load()
}

func main() {
	app := fx.New(
		fx.Provide(
			config.NewConfig,
			logger.NewLogger,
			sentry.NewSentryService,

			cache.NewInMemoryCache,
			locker.NewKeyedLocker,

			postgres.NewDB,
			repository.NewSubscriptionRepository,
			repository.NewStudentRepository,
			repository.NewPlanRepository,

			auth.NewProvider,
			provideBillingProvider,

			service.NewServiceParams,
			service.NewSubscriptionChangeService,

			provideHandlers,
			provideRouter,
		),
		fx.Invoke(
			sentry.RegisterHooks,
			startServer,
		),
	)
	app.Run()
}

func provideBillingProvider(cfg *config.Configuration, log *logger.Logger) stripeinteg.Provider {
	return stripeinteg.NewClient(cfg, log)
}

func provideHandlers(
	log *logger.Logger,
	subscriptionChangeService service.SubscriptionChangeService,
) api.Handlers {
	return api.Handlers{
		Health:             v1.NewHealthHandler(log),
		SubscriptionChange: v1.NewSubscriptionChangeHandler(subscriptionChangeService, log),
	}
}

func provideRouter(handlers api.Handlers, authProvider auth.Provider, log *logger.Logger) *gin.Engine {
	return api.NewRouter(handlers, authProvider, log)
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	db *postgres.DB,
	log *logger.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting API server", "address", cfg.Server.Address)
			go func() {
				if err := r.Run(cfg.Server.Address); err != nil {
					log.Fatalf("failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down server")
			db.Close()
			return nil
		},
	})
}
