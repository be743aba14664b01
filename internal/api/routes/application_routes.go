package routes

import (
	"gigmatch/internal/api/handlers"

	"github.com/gin-gonic/gin"
)

// RegisterApplicationRoutes registers the application routes nested under a job.
func RegisterApplicationRoutes(rg *gin.RouterGroup, appHandler handlers.ApplicationHandlerInterface, authMiddleware gin.HandlerFunc) {
	apps := rg.Group("/jobs/:id/applications")
	apps.Use(authMiddleware)
	{
		apps.POST("", appHandler.ApplyToJob)
		apps.GET("", appHandler.ListApplications)
		apps.POST("/:providerId/accept", appHandler.AcceptApplication)
		apps.POST("/:providerId/reject", appHandler.RejectApplication)
	}
}
