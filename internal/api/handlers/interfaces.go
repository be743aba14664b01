package handlers

import "github.com/gin-gonic/gin"

// UserHandlerInterface defines the methods needed by the user routes.
type UserHandlerInterface interface {
	GetUserByID(c *gin.Context)
	GetUsers(c *gin.Context)
	CreateUser(c *gin.Context)
	UpdateUser(c *gin.Context)
	DeleteUser(c *gin.Context)
}

// JobHandlerInterface defines the methods needed by the job routes.
type JobHandlerInterface interface {
	CreateJob(c *gin.Context)
	ListJobs(c *gin.Context)
	GetJobByID(c *gin.Context)
	StartJob(c *gin.Context)
	CompleteJob(c *gin.Context)
	CancelJob(c *gin.Context)
}

// ApplicationHandlerInterface defines the methods needed by the application routes.
type ApplicationHandlerInterface interface {
	ApplyToJob(c *gin.Context)
	ListApplications(c *gin.Context)
	AcceptApplication(c *gin.Context)
	RejectApplication(c *gin.Context)
}

// LedgerHandlerInterface defines the methods needed by the ledger routes.
type LedgerHandlerInterface interface {
	GetSummary(c *gin.Context)
	ListEntries(c *gin.Context)
	ListWithdrawals(c *gin.Context)
	Withdraw(c *gin.Context)
}

// ReviewHandlerInterface defines the methods needed by the review routes.
type ReviewHandlerInterface interface {
	SubmitReview(c *gin.Context)
	ListUserReviews(c *gin.Context)
	GetUserReviewStats(c *gin.Context)
}

// MatchingHandlerInterface defines the methods needed by the proximity routes.
type MatchingHandlerInterface interface {
	NearbyJobs(c *gin.Context)
	NearbyProviders(c *gin.Context)
}

// Ensure handlers implements the interface (compile-time check)
var (
	_ UserHandlerInterface        = (*UserHandler)(nil)
	_ JobHandlerInterface         = (*JobHandler)(nil)
	_ ApplicationHandlerInterface = (*ApplicationHandler)(nil)
	_ LedgerHandlerInterface      = (*LedgerHandler)(nil)
	_ ReviewHandlerInterface      = (*ReviewHandler)(nil)
	_ MatchingHandlerInterface    = (*MatchingHandler)(nil)
)
