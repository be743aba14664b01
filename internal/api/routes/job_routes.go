package routes

import (
	"gigmatch/internal/api/handlers"

	"github.com/gin-gonic/gin"
)

// RegisterJobRoutes registers the job lifecycle routes.
// It applies the provided authentication middleware to all job routes.
func RegisterJobRoutes(
	rg *gin.RouterGroup,
	jobHandler handlers.JobHandlerInterface,
	authMiddleware gin.HandlerFunc,
) {
	jobs := rg.Group("/jobs")
	jobs.Use(authMiddleware)
	{
		jobs.POST("", jobHandler.CreateJob)
		jobs.GET("", jobHandler.ListJobs)
		jobs.GET("/:id", jobHandler.GetJobByID)
		jobs.POST("/:id/start", jobHandler.StartJob)
		jobs.POST("/:id/complete", jobHandler.CompleteJob) // body: {pin}
		jobs.POST("/:id/cancel", jobHandler.CancelJob)
	}
}
