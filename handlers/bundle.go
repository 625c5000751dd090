package handlers

import (
	userRepoPkg "campusrun/database/repository/user"

	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	UserRepo userRepoPkg.UserRepository

	// Auth endpoints
	RegisterHandler gin.HandlerFunc
	LoginHandler    gin.HandlerFunc
	ProfileHandler  gin.HandlerFunc
	LogoutHandler   gin.HandlerFunc

	// Task endpoints
	CreateTaskHandler  gin.HandlerFunc
	AssignTaskHandler  gin.HandlerFunc
	SubmitProofHandler gin.HandlerFunc
	ReviewProofHandler gin.HandlerFunc
	CancelTaskHandler  gin.HandlerFunc
	GetTaskHandler     gin.HandlerFunc
	ListTasksHandler   gin.HandlerFunc
	MyTasksHandler     gin.HandlerFunc

	// Wallet endpoints
	BalanceHandler      gin.HandlerFunc
	DepositHandler      gin.HandlerFunc
	WithdrawHandler     gin.HandlerFunc
	TransactionsHandler gin.HandlerFunc

	// Rating endpoints
	SubmitRatingHandler gin.HandlerFunc
	UserRatingsHandler  gin.HandlerFunc
}
