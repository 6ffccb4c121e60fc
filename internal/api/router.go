package api

import (
	v1 "github.com/classward/classward/internal/api/v1"
	"github.com/classward/classward/internal/auth"
	"github.com/classward/classward/internal/logger"
	"github.com/classward/classward/internal/rest/middleware"
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Health             *v1.HealthHandler
	SubscriptionChange *v1.SubscriptionChangeHandler
}

func NewRouter(handlers Handlers, authProvider auth.Provider, log *logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware)
	router.Use(middleware.CORSMiddleware)
	router.Use(middleware.ErrorHandler())

	router.GET("/health", handlers.Health.Health)

	v1Group := router.Group("/v1")
	v1Group.Use(middleware.AuthenticateMiddleware(authProvider, log))
	registerV1Routes(v1Group, handlers)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	subscriptions := router.Group("/subscriptions")
	{
		subscriptions.POST("/change", handlers.SubscriptionChange.ModifySubscription)
	}
}
