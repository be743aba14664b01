package routes

import (
	"gigmatch/internal/api/handlers"

	"github.com/gin-gonic/gin"
)

// RegisterLedgerRoutes registers the caller's earnings routes.
func RegisterLedgerRoutes(rg *gin.RouterGroup, ledgerHandler handlers.LedgerHandlerInterface, authMiddleware gin.HandlerFunc) {
	ledger := rg.Group("/ledger")
	ledger.Use(authMiddleware)
	{
		ledger.GET("/summary", ledgerHandler.GetSummary)
		ledger.GET("/entries", ledgerHandler.ListEntries)
		ledger.GET("/withdrawals", ledgerHandler.ListWithdrawals)
		ledger.POST("/withdrawals", ledgerHandler.Withdraw)
	}
}
