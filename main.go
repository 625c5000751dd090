package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campusrun/config"
	"campusrun/database"
	ledgerRepoPkg "campusrun/database/repository/ledger"
	ratingRepoPkg "campusrun/database/repository/rating"
	taskRepoPkg "campusrun/database/repository/task"
	userRepoPkg "campusrun/database/repository/user"
	"campusrun/handlers"
	"campusrun/middleware"
	"campusrun/routes"
	"campusrun/services/rating"
	"campusrun/services/task"
	"campusrun/services/user"
	"campusrun/services/wallet"
	"campusrun/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitRedis()
	utils.StartHealthMonitor(
		[]*redis.Client{utils.GetCacheClient(), utils.GetAuthCacheClient()},
		database.MongoClient,
	)

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	userRepo := userRepoPkg.NewMongoUserRepo()
	taskRepo := taskRepoPkg.NewMongoTaskRepo()
	ledgerRepo := ledgerRepoPkg.NewMongoLedgerRepo()
	ratingRepo := ratingRepoPkg.NewMongoRatingRepo()

	// services.
	userService := &user.DefaultUserService{
		Repo: userRepo,
	}
	walletService := &wallet.DefaultWalletService{
		UserRepo: userRepo,
		Ledger:   ledgerRepo,
	}
	taskService := &task.DefaultTaskService{
		Repo:     taskRepo,
		UserRepo: userRepo,
		Wallet:   walletService,
	}
	ratingService := &rating.DefaultRatingService{
		Repo:     ratingRepo,
		TaskRepo: taskRepo,
		UserRepo: userRepo,
	}

	userHandler := handlers.NewUserHandler(userService)
	taskHandler := handlers.NewTaskHandler(taskService)
	walletHandler := handlers.NewWalletHandler(walletService)
	ratingHandler := handlers.NewRatingHandler(ratingService)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		UserRepo: userRepo,

		// Auth endpoints.
		RegisterHandler: userHandler.Register,
		LoginHandler:    userHandler.Login,
		ProfileHandler:  userHandler.Profile,
		LogoutHandler:   userHandler.Logout,

		// Task endpoints.
		CreateTaskHandler:  taskHandler.Create,
		AssignTaskHandler:  taskHandler.Assign,
		SubmitProofHandler: taskHandler.SubmitProof,
		ReviewProofHandler: taskHandler.Review,
		CancelTaskHandler:  taskHandler.Cancel,
		GetTaskHandler:     taskHandler.Get,
		ListTasksHandler:   taskHandler.List,
		MyTasksHandler:     taskHandler.MyTasks,

		// Wallet endpoints.
		BalanceHandler:      walletHandler.Balance,
		DepositHandler:      walletHandler.Deposit,
		WithdrawHandler:     walletHandler.Withdraw,
		TransactionsHandler: walletHandler.Transactions,

		// Rating endpoints.
		SubmitRatingHandler: ratingHandler.Submit,
		UserRatingsHandler:  ratingHandler.UserRatings,
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
