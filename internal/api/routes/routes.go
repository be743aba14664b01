package routes

import (
	"gigmatch/internal/api/handlers"
	"gigmatch/internal/api/middleware"
	"gigmatch/internal/app"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes sets up the API routes by calling resource-specific registration functions
func RegisterRoutes(router *gin.Engine, app *app.Application) {
	apiV1 := router.Group("/api/v1")

	userHandler := handlers.NewUserHandler(app.Users, app.Validator)
	jobHandler := handlers.NewJobHandler(app.Jobs, app.Validator)
	applicationHandler := handlers.NewApplicationHandler(app.Applications, app.Validator)
	ledgerHandler := handlers.NewLedgerHandler(app.Ledger, app.Validator)
	reviewHandler := handlers.NewReviewHandler(app.Reviews, app.Validator)
	matchingHandler := handlers.NewMatchingHandler(app.Matching, app.Validator)

	authMiddleware := middleware.JWTAuthMiddleware(app.Config.JWT.Secret)

	RegisterUserRoutes(apiV1, userHandler, authMiddleware)
	RegisterJobRoutes(apiV1, jobHandler, authMiddleware)
	RegisterApplicationRoutes(apiV1, applicationHandler, authMiddleware)
	RegisterLedgerRoutes(apiV1, ledgerHandler, authMiddleware)
	RegisterReviewRoutes(apiV1, reviewHandler, authMiddleware)
	RegisterMatchingRoutes(apiV1, matchingHandler, authMiddleware)

	router.GET("/health", handlers.NewHealthHandler(app.Store).HealthCheck)
}
