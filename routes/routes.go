package routes

import (
	"net/http"
	"time"

	"campusrun/handlers"
	"campusrun/middleware"
	"campusrun/models"
	"campusrun/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes registers registration, login and profile endpoints.
func RegisterAuthRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/auth")
	{
		api.POST("/register", hb.RegisterHandler)
		api.POST("/login", hb.LoginHandler)

		// Protected routes (require authentication)
		api.Use(middleware.JWTAuthMiddleware(hb.UserRepo))
		api.GET("/profile", hb.ProfileHandler)
		api.POST("/logout", hb.LogoutHandler)
	}
}

// RegisterTaskRoutes registers the task lifecycle endpoints.
func RegisterTaskRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/tasks")
	{
		api.Use(middleware.JWTAuthMiddleware(hb.UserRepo))
		api.GET("", hb.ListTasksHandler)
		api.GET("/my-tasks", hb.MyTasksHandler)
		api.GET("/:id", hb.GetTaskHandler)
		api.POST("", middleware.RequireRole(models.RoleVendor), hb.CreateTaskHandler)
		api.POST("/:id/assign", middleware.RequireRole(models.RoleStudent), hb.AssignTaskHandler)
		api.POST("/:id/submit-proof", middleware.RequireRole(models.RoleStudent), hb.SubmitProofHandler)
		api.POST("/:id/review", middleware.RequireRole(models.RoleVendor), hb.ReviewProofHandler)
		api.POST("/:id/cancel", middleware.RequireRole(models.RoleVendor), hb.CancelTaskHandler)
	}
}

// RegisterWalletRoutes registers balance, deposit, withdrawal and history endpoints.
func RegisterWalletRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/wallet")
	{
		api.Use(middleware.JWTAuthMiddleware(hb.UserRepo))
		api.GET("/balance", hb.BalanceHandler)
		api.POST("/deposit", hb.DepositHandler)
		api.POST("/withdraw", hb.WithdrawHandler)
		api.GET("/transactions", hb.TransactionsHandler)
	}
}

// RegisterRatingRoutes registers rating submission and lookup endpoints.
func RegisterRatingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/ratings")
	{
		api.Use(middleware.JWTAuthMiddleware(hb.UserRepo))
		api.POST("", hb.SubmitRatingHandler)
		api.GET("/user/:userId", hb.UserRatingsHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "details": utils.GetHealthStatus()})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterAuthRoutes(r, hb)
	RegisterTaskRoutes(r, hb)
	RegisterWalletRoutes(r, hb)
	RegisterRatingRoutes(r, hb)
	RegisterHealthRoute(r)
}
