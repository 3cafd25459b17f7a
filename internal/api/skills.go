package api

import (
	"net/http" // HTTP status codes
	"strconv"  // String conversion

	"tradecraft/internal/domain"     // Importing domain models
	"tradecraft/internal/middleware" // Authenticated user lookup

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// Request struct for creating a listing
type CreateSkillRequest struct {
	Title         string  `json:"title" binding:"required"`       // Title must be provided
	Description   string  `json:"description" binding:"required"` // Description must be provided
	Category      string  `json:"category" binding:"required"`    // Category must be provided
	Location      string  `json:"location"`                       // Location is optional
	TimeCredits   int     `json:"time_credits"`                   // Asking time credits, defaults to 0
	MonetaryPrice float64 `json:"monetary_price"`                 // Asking price, defaults to 0
}

// Request struct for advanced search
type SearchSkillsRequest struct {
	Query   string       `json:"query"`   // Free-text query over title and description
	Filters SearchFilter `json:"filters"` // Structured filters
}

// SearchFilter narrows an advanced search
type SearchFilter struct {
	Category   string   `json:"category"`    // Exact category match
	Location   string   `json:"location"`    // Exact location match
	MinCredits *int     `json:"min_credits"` // Lower bound on time credits
	MaxCredits *int     `json:"max_credits"` // Upper bound on time credits
	MaxPrice   *float64 `json:"max_price"`   // Upper bound on monetary price
}

// ListSkillsHandler returns active listings with optional filters and pagination
func ListSkillsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page := 1     // Default page
		perPage := 10 // Default page size
		// If page exists in query
		if p := c.Query("page"); p != "" {
			// Convert page to integer
			if v, err := strconv.Atoi(p); err == nil && v > 0 {
				page = v // Set page if valid
			}
		}
		// If per_page exists in query
		if pp := c.Query("per_page"); pp != "" {
			// Convert per_page to integer
			if v, err := strconv.Atoi(pp); err == nil && v > 0 && v <= 100 {
				perPage = v // Set page size if valid
			}
		}
		query := db.Model(&domain.SkillListing{}).Where("is_active = ?", true) // Only active listings
		// Apply optional filters from the query string
		if category := c.Query("category"); category != "" {
			query = query.Where("category = ?", category) // Filter by category
		}
		if location := c.Query("location"); location != "" {
			query = query.Where("location = ?", location) // Filter by location
		}
		if search := c.Query("search"); search != "" {
			like := "%" + search + "%" // Substring match over title and description
			query = query.Where("title LIKE ? OR description LIKE ?", like, like)
		}
		var total int64 // Total matching listings
		// Count total for pagination
		if err := query.Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to get skills"})
			return
		}
		var skills []domain.SkillListing // Slice to hold listings
		// Fetch the requested page
		if err := query.Offset((page - 1) * perPage).Limit(perPage).Find(&skills).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to get skills"})
			return
		}
		// Calculate total pages
		pages := (int(total) + perPage - 1) / perPage
		c.JSON(http.StatusOK, gin.H{
			"skills":       skills, // Matching listings
			"total":        total,  // Total matching listings
			"pages":        pages,  // Total pages
			"current_page": page,   // Current page
		})
	}
}

// SearchSkillsHandler runs an advanced search with structured filters
func SearchSkillsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SearchSkillsRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// An empty body searches everything, mirror that for malformed bodies too
			req = SearchSkillsRequest{}
		}
		query := db.Where("is_active = ?", true) // Only active listings
		// Apply structured filters
		if req.Filters.Category != "" {
			query = query.Where("category = ?", req.Filters.Category) // Filter by category
		}
		if req.Filters.Location != "" {
			query = query.Where("location = ?", req.Filters.Location) // Filter by location
		}
		if req.Filters.MinCredits != nil {
			query = query.Where("time_credits >= ?", *req.Filters.MinCredits) // Lower credit bound
		}
		if req.Filters.MaxCredits != nil {
			query = query.Where("time_credits <= ?", *req.Filters.MaxCredits) // Upper credit bound
		}
		if req.Filters.MaxPrice != nil {
			query = query.Where("monetary_price <= ?", *req.Filters.MaxPrice) // Upper price bound
		}
		// Apply free-text query over title and description
		if req.Query != "" {
			like := "%" + req.Query + "%"
			query = query.Where("title LIKE ? OR description LIKE ?", like, like)
		}
		var skills []domain.SkillListing // Slice to hold listings
		// Newest listings first
		if err := query.Order("created_at desc").Find(&skills).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Search failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"skills": skills,      // Matching listings
			"total":  len(skills), // Total matching listings
		})
	}
}

// GetSkillHandler returns a single active listing by id
func GetSkillHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id")) // Parse listing id from path
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid skill id"})
			return
		}
		var skill domain.SkillListing // Fetch listing from database
		if err := db.First(&skill, id).Error; err != nil || !skill.IsActive {
			// Missing and soft-deleted listings look the same to callers
			c.JSON(http.StatusNotFound, gin.H{"message": "Skill not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"skill": skill}) // Return the listing
	}
}

// CreateSkillHandler creates a listing owned by the authenticated user
func CreateSkillHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUserID(c) // Get userID from context
		if !ok {
			// If not authenticated, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}
		var req CreateSkillRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
			return
		}
		// Asking prices cannot be negative
		if req.TimeCredits < 0 || req.MonetaryPrice < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Prices must be non-negative"})
			return
		}
		skill := domain.SkillListing{
			Title:         req.Title,         // Listing title
			Description:   req.Description,   // Full description
			Category:      req.Category,      // Category name
			Location:      req.Location,      // Optional location
			TimeCredits:   req.TimeCredits,   // Asking time credits
			MonetaryPrice: req.MonetaryPrice, // Asking price
			Availability:  "available",       // New listings start available
			IsActive:      true,              // New listings start active
			ProviderID:    userID,            // Owned by the authenticated user
		}
		// Attempt to create the listing in the database
		if err := db.Create(&skill).Error; err != nil {
			// Log the error with context
			logrus.WithFields(logrus.Fields{
				"provider_id": userID,      // Owner user ID
				"title":       req.Title,   // Listing title
				"error":       err.Error(), // Error message
			}).Error("Failed to create skill") // Log creation failure
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create skill"})
			return
		}
		// Log successful creation
		logrus.WithFields(logrus.Fields{
			"provider_id": userID,   // Owner user ID
			"skill_id":    skill.ID, // New listing ID
		}).Info("Skill created") // Log creation success
		c.JSON(http.StatusCreated, gin.H{
			"message": "Skill created successfully", // Human-readable outcome
			"skill":   skill,                        // Created listing
		})
	}
}

// DeleteSkillHandler soft-deletes a listing owned by the authenticated user
func DeleteSkillHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUserID(c) // Get userID from context
		if !ok {
			// If not authenticated, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}
		id, err := strconv.Atoi(c.Param("id")) // Parse listing id from path
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid skill id"})
			return
		}
		var skill domain.SkillListing // Fetch listing from database
		if err := db.First(&skill, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Skill not found"})
			return
		}
		// Only the owner may delete a listing
		if skill.ProviderID != userID {
			c.JSON(http.StatusForbidden, gin.H{"message": "Not your skill"})
			return
		}
		// Soft delete keeps history referenced by transactions and reviews intact
		if err := db.Model(&skill).Update("is_active", false).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete skill"})
			return
		}
		// Log successful deletion
		logrus.WithFields(logrus.Fields{
			"provider_id": userID,   // Owner user ID
			"skill_id":    skill.ID, // Deleted listing ID
		}).Info("Skill deleted") // Log deletion success
		c.JSON(http.StatusOK, gin.H{"message": "Skill deleted successfully"})
	}
}

// SuggestionsHandler returns recent listings from other providers
func SuggestionsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUserID(c) // Get userID from context
		if !ok {
			// If not authenticated, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}
		var skills []domain.SkillListing // Slice to hold suggestions
		// Newest active listings not owned by the requesting user
		if err := db.Where("is_active = ? AND provider_id <> ?", true, userID).
			Order("created_at desc").
			Limit(6).
			Find(&skills).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load suggestions"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"suggestions": skills}) // Return suggestions
	}
}

// CategoryCount pairs a category name with its listing count
type CategoryCount struct {
	Name  string `json:"name"`  // Category name
	Count int64  `json:"count"` // Number of active listings
}

// PopularCategoriesHandler returns categories ranked by active listing count
func PopularCategoriesHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var categories []CategoryCount // Slice to hold category counts
		// Group active listings by category, most popular first
		if err := db.Model(&domain.SkillListing{}).
			Select("category AS name, COUNT(*) AS count").
			Where("is_active = ?", true).
			Group("category").
			Order("count desc").
			Limit(10).
			Scan(&categories).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load categories"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"categories": categories}) // Return category counts
	}
}
