package routes

import (
	"gigmatch/internal/api/handlers"

	"github.com/gin-gonic/gin"
)

// RegisterMatchingRoutes registers the proximity searches.
func RegisterMatchingRoutes(rg *gin.RouterGroup, matchingHandler handlers.MatchingHandlerInterface, authMiddleware gin.HandlerFunc) {
	rg.GET("/jobs/nearby", authMiddleware, matchingHandler.NearbyJobs)
	rg.GET("/providers/nearby", authMiddleware, matchingHandler.NearbyProviders)
}
