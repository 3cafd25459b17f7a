package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"time"     // Time durations

	"tradecraft/internal/domain"     // Importing domain models
	"tradecraft/internal/middleware" // Authenticated user lookup
	"tradecraft/internal/utils"      // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// RechargeRequest funds the authenticated user's wallet
type RechargeRequest struct {
	Amount      float64 `json:"amount"`       // Monetary top-up, optional
	TimeCredits int     `json:"time_credits"` // Time-credit top-up, optional
}

// TransactionResponse is a transaction with the counterparties embedded
type TransactionResponse struct {
	domain.Transaction                   // Transaction fields
	Sender             domain.UserBasic  `json:"sender"`   // Paying user
	Receiver           domain.UserBasic  `json:"receiver"` // Receiving user
}

// GetWalletHandler returns wallet info for the authenticated user
func GetWalletHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUserID(c) // Get userID from context
		if !ok {
			// If not authenticated, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}
		ctx := context.Background()                              // Context for Redis operations
		cacheKey := utils.WalletCacheKey(userID)                 // Cache key for wallet
		var wallet domain.Wallet                                 // Wallet struct to hold data
		found, err := utils.GetCache(ctx, rdb, cacheKey, &wallet) // Try to get from cache
		// If found in cache, return it
		if err == nil && found {
			// Return cached wallet
			c.JSON(http.StatusOK, gin.H{"wallet": wallet, "cached": true})
			return
		}
		// If not in cache, fetch from DB
		if err := db.Where("user_id = ?", userID).First(&wallet).Error; err != nil {
			// Return not found if wallet doesn't exist
			c.JSON(http.StatusNotFound, gin.H{"message": "Wallet not found"})
			return
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, wallet, 60*time.Second)  // Cache the wallet for 60 seconds
		c.JSON(http.StatusOK, gin.H{"wallet": wallet, "cached": false}) // Return wallet info
	}
}

// GetTransactionsHandler returns all transactions involving the authenticated user
func GetTransactionsHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUserID(c) // Get userID from context
		if !ok {
			// If not authenticated, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}
		ctx := context.Background()                               // Context for Redis operations
		cacheKey := utils.TxHistoryCacheKey(userID)               // Cache key for transaction history
		var cached struct {
			Transactions []TransactionResponse `json:"transactions"` // List of transactions
			Total        int64                 `json:"total"`        // Total transactions
		}
		// Try to get from cache
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		// If found in cache, return it
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"transactions": cached.Transactions, // Cached transactions
				"total":        cached.Total,        // Total transactions
				"cached":       true,                // Indicate response is from cache
			})
			return
		}
		var transactions []domain.Transaction // Slice to hold transactions
		// Fetch transactions where the user is either side, newest first
		if err := db.Where("from_user_id = ? OR to_user_id = ?", userID, userID).
			Order("created_at desc").
			Find(&transactions).Error; err != nil {
			// If fetching fails, return error
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch transactions"})
			return
		}
		// Collect the counterparty user ids to embed
		userIDs := make([]uint, 0, len(transactions)*2)
		for _, t := range transactions {
			userIDs = append(userIDs, t.FromUserID, t.ToUserID)
		}
		users := map[uint]domain.UserBasic{} // Lookup of embedded users by id
		if len(userIDs) > 0 {
			var rows []domain.User // Slice to hold users
			// Fetch all referenced users in one query
			if err := db.Where("id IN ?", userIDs).Find(&rows).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch transactions"})
				return
			}
			// Index users by id
			for i := range rows {
				users[rows[i].ID] = rows[i].Basic()
			}
		}
		// Attach counterparties to each transaction
		resp := make([]TransactionResponse, len(transactions))
		for i, t := range transactions {
			resp[i] = TransactionResponse{
				Transaction: t,                 // Transaction fields
				Sender:      users[t.FromUserID], // Paying user
				Receiver:    users[t.ToUserID],   // Receiving user
			}
		}
		cached.Transactions = resp              // Store for caching
		cached.Total = int64(len(resp))         // Total transactions
		// Cache the result for 60 seconds
		_ = utils.SetCache(ctx, rdb, cacheKey, cached, 60*time.Second)
		c.JSON(http.StatusOK, gin.H{
			"transactions": resp,            // List of transactions
			"total":        int64(len(resp)), // Total transactions
			"cached":       false,           // Not from cache
		})
	}
}

// ExchangeSkillHandler settles a skill exchange: the requester pays the
// listing's monetary price and time credits to its provider in one atomic
// database transaction, which also records the completed Transaction row
func ExchangeSkillHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUserID(c) // Get userID from context
		if !ok {
			// If not authenticated, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}
		skillID, err := strconv.ParseUint(c.Param("id"), 10, 32) // Parse listing id from path
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid skill id"})
			return
		}
		var skill domain.SkillListing // The listing being exchanged
		if err := db.Where("id = ? AND is_active = ?", uint(skillID), true).First(&skill).Error; err != nil {
			// Inactive listings cannot be booked
			c.JSON(http.StatusNotFound, gin.H{"message": "Skill not found"})
			return
		}
		// Prevent booking one's own listing
		if skill.ProviderID == userID {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Cannot exchange your own skill"})
			return
		}
		var fromWallet, toWallet domain.Wallet // Requester's and provider's wallets
		if err := db.Where("user_id = ?", userID).First(&fromWallet).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Wallet not found"})
			return
		}
		if err := db.Where("user_id = ?", skill.ProviderID).First(&toWallet).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Provider wallet not found"})
			return
		}
		// Check sufficient funds on both balances
		if fromWallet.Balance < skill.MonetaryPrice {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Insufficient funds"})
			return
		}
		if fromWallet.TimeCredits < skill.TimeCredits {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Insufficient time credits"})
			return
		}
		now := time.Now() // Settlement timestamp
		tx := domain.Transaction{
			Amount:      skill.MonetaryPrice,      // Monetary amount
			TimeCredits: skill.TimeCredits,        // Time-credit amount
			Status:      domain.TxStatusCompleted, // Settles immediately
			Type:        "skill_exchange",         // Transaction type
			CompletedAt: &now,                     // Completion timestamp
			FromUserID:  userID,                   // Paying user
			ToUserID:    skill.ProviderID,         // Receiving user
			SkillID:     &skill.ID,                // Exchanged listing
		}
		// Atomic settlement
		err = db.Transaction(func(dbtx *gorm.DB) error {
			// Deduct from the requester
			if err := dbtx.Model(&fromWallet).Updates(map[string]any{
				"balance":      gorm.Expr("balance - ?", skill.MonetaryPrice),
				"time_credits": gorm.Expr("time_credits - ?", skill.TimeCredits),
			}).Error; err != nil {
				return err // Return error to rollback
			}
			// Credit the provider
			if err := dbtx.Model(&toWallet).Updates(map[string]any{
				"balance":      gorm.Expr("balance + ?", skill.MonetaryPrice),
				"time_credits": gorm.Expr("time_credits + ?", skill.TimeCredits),
			}).Error; err != nil {
				return err // Return error to rollback
			}
			// Record the settled exchange
			if err := dbtx.Create(&tx).Error; err != nil {
				return err // Return error to rollback
			}
			return nil // Commit transaction
		})
		// Handle transaction result
		if err != nil {
			// Log the error with context
			logrus.WithFields(logrus.Fields{
				"from_user_id": userID,           // Paying user ID
				"to_user_id":   skill.ProviderID, // Receiving user ID
				"skill_id":     skill.ID,         // Exchanged listing ID
				"error":        err.Error(),      // Error message
			}).Error("Skill exchange failed") // Log settlement failure
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Exchange failed"})
			return
		}
		// Log successful settlement
		logrus.WithFields(logrus.Fields{
			"from_user_id": userID,              // Paying user ID
			"to_user_id":   skill.ProviderID,    // Receiving user ID
			"skill_id":     skill.ID,            // Exchanged listing ID
			"amount":       skill.MonetaryPrice, // Monetary amount
			"time_credits": skill.TimeCredits,   // Time-credit amount
		}).Info("Skill exchange settled")
		// Both users' cached wallet and history views are stale now
		ctx := context.Background()
		utils.InvalidateWalletCaches(ctx, rdb, userID)
		utils.InvalidateWalletCaches(ctx, rdb, skill.ProviderID)
		c.JSON(http.StatusCreated, gin.H{
			"message":     "Exchange completed successfully", // Human-readable outcome
			"transaction": tx,                                // The settled exchange
		})
	}
}

// RechargeWalletHandler funds the authenticated user's wallet and records the
// top-up as a completed transaction against the user's own account
func RechargeWalletHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUserID(c) // Get userID from context
		if !ok {
			// If not authenticated, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}
		var req RechargeRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
			return
		}
		// At least one side must be topped up, neither may be negative
		if req.Amount < 0 || req.TimeCredits < 0 || (req.Amount == 0 && req.TimeCredits == 0) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid recharge amount"})
			return
		}
		var wallet domain.Wallet // The user's wallet
		if err := db.Where("user_id = ?", userID).First(&wallet).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Wallet not found"})
			return
		}
		now := time.Now() // Settlement timestamp
		tx := domain.Transaction{
			Amount:      req.Amount,               // Monetary amount
			TimeCredits: req.TimeCredits,          // Time-credit amount
			Status:      domain.TxStatusCompleted, // Settles immediately
			Type:        "recharge",               // Transaction type
			CompletedAt: &now,                     // Completion timestamp
			FromUserID:  userID,                   // Top-ups are self-to-self
			ToUserID:    userID,                   // Top-ups are self-to-self
		}
		// Atomic top-up
		err := db.Transaction(func(dbtx *gorm.DB) error {
			if err := dbtx.Model(&wallet).Updates(map[string]any{
				"balance":      gorm.Expr("balance + ?", req.Amount),
				"time_credits": gorm.Expr("time_credits + ?", req.TimeCredits),
			}).Error; err != nil {
				return err // Return error to rollback
			}
			if err := dbtx.Create(&tx).Error; err != nil {
				return err // Return error to rollback
			}
			return nil // Commit transaction
		})
		if err != nil {
			// Log the error with context
			logrus.WithFields(logrus.Fields{
				"user_id": userID,      // User ID
				"error":   err.Error(), // Error message
			}).Error("Recharge failed") // Log top-up failure
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Recharge failed"})
			return
		}
		// The cached wallet and history views are stale now
		utils.InvalidateWalletCaches(context.Background(), rdb, userID)
		c.JSON(http.StatusCreated, gin.H{
			"message":     "Wallet recharged successfully", // Human-readable outcome
			"transaction": tx,                              // The recorded top-up
		})
	}
}
