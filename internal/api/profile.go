package api

import (
	"net/http" // HTTP status codes
	"strconv"  // String conversion

	"tradecraft/internal/domain"     // Importing domain models
	"tradecraft/internal/middleware" // Authenticated user lookup
	"tradecraft/internal/utils"      // Cache helpers

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// Request struct for profile updates
type UpdateProfileRequest struct {
	Username *string `json:"username"` // New username, nil leaves it unchanged
	Phone    *string `json:"phone"`    // New phone number, nil leaves it unchanged
}

// ReviewResponse is a review with the reviewer embedded
type ReviewResponse struct {
	domain.Review                  // Review fields
	Reviewer      domain.UserBasic `json:"reviewer"` // Reviewing user
}

// GetProfileHandler returns the authenticated user's profile
func GetProfileHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUserID(c) // Get userID from context
		if !ok {
			// If not authenticated, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}
		var user domain.User // Fetch user from database
		if err := db.First(&user, userID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user}) // Return the profile
	}
}

// UpdateProfileHandler updates the authenticated user's username and phone
func UpdateProfileHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUserID(c) // Get userID from context
		if !ok {
			// If not authenticated, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}
		var user domain.User // Fetch user from database
		if err := db.First(&user, userID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}
		var req UpdateProfileRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
			return
		}
		// Apply only the fields present in the request
		if req.Username != nil {
			user.Username = *req.Username // New username
		}
		if req.Phone != nil {
			user.Phone = *req.Phone // New phone number
		}
		// Save the updated profile
		if err := db.Save(&user).Error; err != nil {
			// Log the error with context
			logrus.WithFields(logrus.Fields{
				"user_id": userID,      // User ID
				"error":   err.Error(), // Error message
			}).Error("Failed to update profile") // Log update failure
			c.JSON(http.StatusBadRequest, gin.H{"message": "Failed to update profile"})
			return
		}
		// The cached transaction history embeds the old username
		if err := utils.DeleteCache(c.Request.Context(), rdb, utils.TxHistoryCacheKey(userID)); err != nil {
			logrus.WithError(err).Warn("Failed to invalidate transaction cache") // Stale cache expires on its own TTL
		}
		c.JSON(http.StatusOK, gin.H{
			"message": "Profile updated successfully", // Human-readable outcome
			"user":    user,                           // Updated profile
		})
	}
}

// GetUserSkillsHandler returns all listings owned by the authenticated user
func GetUserSkillsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUserID(c) // Get userID from context
		if !ok {
			// If not authenticated, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}
		var skills []domain.SkillListing // Slice to hold listings
		// Owners see their active listings, newest first
		if err := db.Where("provider_id = ? AND is_active = ?", userID, true).
			Order("created_at desc").
			Find(&skills).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load your skills"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"skills": skills}) // Return owned listings
	}
}

// GetUserStatsHandler returns aggregate counts for the authenticated user
func GetUserStatsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUserID(c) // Get userID from context
		if !ok {
			// If not authenticated, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}
		var skillsCount int64 // Active listings owned by the user
		if err := db.Model(&domain.SkillListing{}).
			Where("provider_id = ? AND is_active = ?", userID, true).
			Count(&skillsCount).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load stats"})
			return
		}
		var txCount int64 // Transactions involving the user
		if err := db.Model(&domain.Transaction{}).
			Where("from_user_id = ? OR to_user_id = ?", userID, userID).
			Count(&txCount).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load stats"})
			return
		}
		var reviewsCount int64 // Reviews received by the user
		if err := db.Model(&domain.Review{}).
			Where("reviewed_id = ?", userID).
			Count(&reviewsCount).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load stats"})
			return
		}
		var avgRating float64 // Average received rating, 0 with no reviews
		if reviewsCount > 0 {
			// COALESCE keeps the scan well-defined if reviews disappear between queries
			if err := db.Model(&domain.Review{}).
				Select("COALESCE(AVG(rating), 0)").
				Where("reviewed_id = ?", userID).
				Scan(&avgRating).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load stats"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"skills_count":       skillsCount,  // Active listings owned
			"transactions_count": txCount,      // Transactions involving the user
			"reviews_received":   reviewsCount, // Reviews received
			"average_rating":     avgRating,    // Average received rating
		})
	}
}

// GetUserReviewsHandler returns reviews received by any user
func GetUserReviewsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id")) // Parse user id from path
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid user id"})
			return
		}
		var reviews []domain.Review // Slice to hold reviews
		// Newest reviews first
		if err := db.Where("reviewed_id = ?", id).
			Order("created_at desc").
			Find(&reviews).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load reviews"})
			return
		}
		// Collect reviewer ids to embed
		reviewerIDs := make([]uint, 0, len(reviews))
		for _, r := range reviews {
			reviewerIDs = append(reviewerIDs, r.ReviewerID)
		}
		reviewers := map[uint]domain.UserBasic{} // Lookup of reviewers by id
		if len(reviewerIDs) > 0 {
			var rows []domain.User // Slice to hold users
			// Fetch all reviewers in one query
			if err := db.Where("id IN ?", reviewerIDs).Find(&rows).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load reviews"})
				return
			}
			// Index reviewers by id
			for i := range rows {
				reviewers[rows[i].ID] = rows[i].Basic()
			}
		}
		// Attach reviewers to each review
		resp := make([]ReviewResponse, len(reviews))
		for i, r := range reviews {
			resp[i] = ReviewResponse{
				Review:   r,                       // Review fields
				Reviewer: reviewers[r.ReviewerID], // Reviewing user
			}
		}
		c.JSON(http.StatusOK, gin.H{"reviews": resp}) // Return reviews
	}
}
