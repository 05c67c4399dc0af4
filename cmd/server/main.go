package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/crypto-journal/internal/cache"
	"github.com/crypto-journal/internal/config"
	"github.com/crypto-journal/internal/database"
	"github.com/crypto-journal/internal/handler"
	"github.com/crypto-journal/internal/middleware"
	"github.com/crypto-journal/internal/models"
	"github.com/crypto-journal/internal/repository"
	"github.com/crypto-journal/internal/service"
	"github.com/crypto-journal/internal/stream"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Build info (injected at build time via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	// Load .env if present; environment always wins over config.yaml.
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logging
	logDir := cfg.Log.Dir
	if logDir == "" {
		logDir = "logs"
	}
	if err := middleware.InitLogger(logDir); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// Set Gin mode
	gin.SetMode(cfg.Server.Mode)

	// Initialize database
	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Auto migrate database
	if err := autoMigrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Initialize Redis
	rdb := initRedis(cfg)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	tradeRepo := repository.NewTradeRepository(db)
	portfolioRepo := repository.NewPortfolioRepository(db)

	// Stats cache and live-update hub
	statsCache := cache.NewStatsCache(rdb, time.Duration(cfg.Stats.CacheTTLSeconds)*time.Second)
	hub := stream.NewHub()

	// Initialize services
	authService := service.NewAuthService(userRepo, cfg.JWT)
	tradeService := service.NewTradeService(tradeRepo, userRepo, statsCache, hub)
	portfolioService := service.NewPortfolioService(db, userRepo, tradeRepo, portfolioRepo, tradeService)

	// Initialize handlers
	userHandler := handler.NewUserHandler(authService, portfolioService)
	tradeHandler := handler.NewTradeHandler(tradeService)
	portfolioHandler := handler.NewPortfolioHandler(portfolioService)
	streamHandler := handler.NewStreamHandler(authService, tradeService, hub)

	// Create Gin router
	router := gin.Default()

	// Add request logging middleware
	router.Use(middleware.RequestLoggerMiddleware())

	// Add CORS middleware
	router.Use(corsMiddleware(cfg.Server.FrontendURL))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "ok",
			"version":    Version,
			"commit":     Commit,
			"build_time": BuildTime,
			"time":       time.Now().Unix(),
		})
	})

	// API routes
	api := router.Group("/api")
	{
		authMiddleware := middleware.AuthMiddleware(authService)

		userHandler.RegisterRoutes(api, authMiddleware)
		tradeHandler.RegisterRoutes(api, authMiddleware)
		portfolioHandler.RegisterRoutes(api, authMiddleware)
		streamHandler.RegisterRoutes(api)
	}

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with 10 second timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	// Close Redis connection
	if err := rdb.Close(); err != nil {
		log.Printf("Error closing Redis connection: %v", err)
	}

	log.Println("Server exited properly")
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Trade{},
		&models.PortfolioPeriod{},
	)
}

func corsMiddleware(frontendURL string) gin.HandlerFunc {
	if frontendURL == "" {
		frontendURL = "*"
	}
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", frontendURL)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
