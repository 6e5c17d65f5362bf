package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"juicybets/internal/auth"
	"juicybets/internal/config"
	"juicybets/internal/database"
	"juicybets/internal/engine"
	"juicybets/internal/handlers"
	"juicybets/internal/jobs"
	"juicybets/internal/prices"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize JWT
	auth.InitJWT(cfg.App.JWTSecret)

	// Connect to database
	if err := database.Connect(cfg.GetDSN()); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize engine and supporting services
	betEngine := engine.NewEngine(database.GetDB(), cfg.App.TakerFeeBps)
	priceService := prices.NewService(cfg.App.PriceCacheTTL)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(betEngine)
	accountHandler := handlers.NewAccountHandler(betEngine)
	betHandler := handlers.NewBetHandler(betEngine, priceService)
	wagerHandler := handlers.NewWagerHandler(betEngine)

	// Start bet closer job
	closerJob := jobs.NewBetCloser(betEngine, cfg.App.BetCloserInterval)
	go closerJob.Start()

	// Set up Gin router
	router := gin.Default()

	// CORS middleware
	allowedOrigins := []string{
		"http://localhost:3000", // Local development
		"http://localhost:5173", // Vite dev server
		"http://127.0.0.1:3000",
		"http://127.0.0.1:5173",
	}
	if cfg.App.FrontendOrigin != "" {
		allowedOrigins = append(allowedOrigins, cfg.App.FrontendOrigin)
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Authentication routes (public)
	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/wallet", authHandler.WalletLogin)
		authRoutes.POST("/logout", authHandler.Logout)
	}

	// Public bet routes
	router.GET("/api/bets", betHandler.ListOpenBets)
	router.GET("/api/bets/:id", betHandler.GetBet)

	// API routes (protected)
	api := router.Group("/api")
	api.Use(auth.AuthMiddleware())
	{
		// Account endpoints
		api.GET("/account", accountHandler.GetAccount)
		api.POST("/account/deposit", accountHandler.Deposit)
		api.POST("/account/withdraw", accountHandler.Withdraw)
		api.DELETE("/account", accountHandler.CloseAccount)

		// Bet endpoints
		api.POST("/bets", betHandler.CreateBet)
		api.POST("/bets/:id/close", betHandler.CloseBet)
		api.POST("/bets/:id/decide", betHandler.DecideBet)
		api.POST("/bets/:id/settle", betHandler.SettleBet)

		// Wager endpoints
		api.GET("/wagers", wagerHandler.ListWagers)
		api.POST("/wagers", wagerHandler.PlaceWager)
		api.DELETE("/wagers/:id", wagerHandler.CancelWager)
		api.POST("/wagers/:id/claim", wagerHandler.ClaimWinnings)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Server.Port)
		log.Printf("Health check: http://localhost:%s/health", cfg.Server.Port)
		log.Printf("Wallet auth: POST http://localhost:%s/auth/wallet", cfg.Server.Port)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	closerJob.Stop()

	// Graceful shutdown with 5 second timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
