package routes

import (
	"gigmatch/internal/api/handlers"

	"github.com/gin-gonic/gin"
)

// RegisterReviewRoutes registers review submission on jobs and review reads on users.
func RegisterReviewRoutes(rg *gin.RouterGroup, reviewHandler handlers.ReviewHandlerInterface, authMiddleware gin.HandlerFunc) {
	rg.POST("/jobs/:id/reviews", authMiddleware, reviewHandler.SubmitReview)
	rg.GET("/users/:id/reviews", authMiddleware, reviewHandler.ListUserReviews)
	rg.GET("/users/:id/review-stats", authMiddleware, reviewHandler.GetUserReviewStats)
}
