package main

import (
	"context"                        // context package is needed for Redis operations
	"log"                            // log package is needed for logging
	"tradecraft/internal/api"        // Custom package for API handlers
	"tradecraft/internal/config"     // Custom package for configuration
	"tradecraft/internal/middleware" // Custom package for middleware

	// For loading .env files
	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
	"gorm.io/driver/mysql"         // MySQL driver for GORM
	"gorm.io/gorm"                 // GORM ORM library
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Connect to the database
	db, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	_, err = redisClient.Ping(context.Background()).Result()
	if err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	// The browser/terminal clients expect everything under /api
	root := r.Group("/api")

	// Health check
	root.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy", "message": "TradeCraft API is running"})
	})

	// Auth routes
	root.POST("/auth/register", api.RegisterHandler(db, cfg.JWTSecret)) // Registration endpoint
	root.POST("/auth/login", api.LoginHandler(db, cfg.JWTSecret))       // Login endpoint

	// Public skill routes
	root.GET("/skills", api.ListSkillsHandler(db))              // List/filter listings
	root.POST("/skills/search", api.SearchSkillsHandler(db))    // Advanced search
	root.GET("/skills/:id", api.GetSkillHandler(db))            // Single listing
	root.GET("/categories/popular", api.PopularCategoriesHandler(db)) // Popular categories
	root.GET("/users/:id/reviews", api.GetUserReviewsHandler(db))     // Reviews received by a user

	// Authenticated routes (protected by JWT)
	authed := root.Group("")
	authed.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	authed.POST("/skills", api.CreateSkillHandler(db))               // Create listing
	authed.DELETE("/skills/:id", api.DeleteSkillHandler(db))         // Delete own listing
	authed.GET("/skills/suggestions", api.SuggestionsHandler(db))    // Personalized suggestions
	authed.GET("/user/skills", api.GetUserSkillsHandler(db))         // Own listings
	authed.GET("/user/profile", api.GetProfileHandler(db))           // Own profile
	authed.PUT("/user/profile", api.UpdateProfileHandler(db, redisClient)) // Update own profile
	authed.GET("/user/stats", api.GetUserStatsHandler(db))           // Aggregate stats
	authed.POST("/skills/:id/exchange", api.ExchangeSkillHandler(db, redisClient)) // Settle a skill exchange
	authed.GET("/wallet", api.GetWalletHandler(db, redisClient))     // Wallet snapshot
	authed.POST("/wallet/recharge", api.RechargeWalletHandler(db, redisClient)) // Fund own wallet
	authed.GET("/transactions", api.GetTransactionsHandler(db, redisClient)) // Transaction history
	authed.GET("/chats", api.ListChatsHandler(db))                   // Chats endpoint
	authed.POST("/chats", api.CreateChatHandler(db))                 // Open chat endpoint
	authed.GET("/chats/:id/messages", api.GetMessagesHandler(db))    // Messages endpoint
	authed.POST("/chats/:id/messages", api.SendMessageHandler(db))   // Send message endpoint

	// Admin routes (role-gated on top of JWT auth)
	admin := authed.Group("/admin")
	admin.Use(middleware.AdminOnlyMiddleware(db))
	admin.GET("/users", api.AdminListUsersHandler(db, redisClient))               // All members with wallets
	admin.GET("/transactions", api.AdminListTransactionsHandler(db, redisClient)) // All transactions, filterable

	log.Println("Server running on " + cfg.AppPort) // Log server start
	r.Run(":" + cfg.AppPort)                        // Start the server on port cfg.AppPort
}
