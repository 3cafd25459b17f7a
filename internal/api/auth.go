package api

import (
	"net/http"                   // HTTP status codes
	"regexp"                     // Regular expressions
	"strings"                    // String manipulation
	"tradecraft/internal/domain" // Importing domain models
	"tradecraft/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"golang.org/x/crypto/bcrypt" // Password hashing
	"gorm.io/gorm"               // GORM ORM library
)

// Request struct for registration
type RegisterRequest struct {
	Username string `json:"username" binding:"required"` // Username must be provided
	Email    string `json:"email" binding:"required"`    // Email must be provided
	Phone    string `json:"phone"`                       // Phone is optional
	Password string `json:"password" binding:"required"` // Password must be provided
}

// Request struct for login
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`    // Email must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// emailPattern is a loose shape check, real validation is the backend's concern
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// isValidEmail checks that the email has a plausible shape
func isValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// RegisterHandler creates a new user with a wallet and returns an access token
func RegisterHandler(db *gorm.DB, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
			return
		}
		// Validate email shape
		if !isValidEmail(req.Email) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid email address"})
			return
		}
		// Reject duplicate email
		var existing domain.User
		if err := db.Where("email = ?", strings.ToLower(req.Email)).First(&existing).Error; err == nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Email already exists"})
			return
		}
		// Reject duplicate username
		if err := db.Where("username = ?", req.Username).First(&existing).Error; err == nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Username already exists"})
			return
		}
		// Hash the password and create the user
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			// If hashing fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Registration failed"})
			return
		}
		user := domain.User{
			Username:     req.Username,               // Username as provided
			Email:        strings.ToLower(req.Email), // Lowercase email to ensure uniqueness
			Phone:        req.Phone,                  // Optional phone number
			PasswordHash: string(hash),               // Hashed password
			IsActive:     true,                       // New accounts start active
		}
		// Create user and wallet atomically
		err = db.Transaction(func(tx *gorm.DB) error {
			// Attempt to create the user in the database
			if err := tx.Create(&user).Error; err != nil {
				return err // Return error to rollback
			}
			// Every user gets an empty wallet on registration
			if err := tx.Create(&domain.Wallet{UserID: user.ID}).Error; err != nil {
				return err // Return error to rollback
			}
			return nil // Commit transaction
		})
		// Handle transaction result
		if err != nil {
			// Log the error with context
			logrus.WithFields(logrus.Fields{
				"username": req.Username, // Attempted username
				"error":    err.Error(),  // Error message
			}).Error("Registration failed") // Log registration failure
			c.JSON(http.StatusBadRequest, gin.H{"message": "Registration failed"})
			return
		}
		// Generate JWT token for the new user
		token, err := utils.GenerateJWT(user.ID, jwtSecret)
		if err != nil {
			// If token generation fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to generate token"})
			return
		}
		// Log successful registration
		logrus.WithFields(logrus.Fields{
			"user_id":  user.ID,       // New user ID
			"username": user.Username, // Username
		}).Info("User registered") // Log registration success
		// Return token and user in the response
		c.JSON(http.StatusCreated, gin.H{
			"message":      "User registered successfully", // Human-readable outcome
			"access_token": token,                          // Bearer token
			"user":         user,                           // Registered user
		})
	}
}

// LoginHandler authenticates a user by email and returns a JWT token
func LoginHandler(db *gorm.DB, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
			return
		}
		var user domain.User // Fetch user from database
		if err := db.Where("email = ?", strings.ToLower(req.Email)).First(&user).Error; err != nil {
			// If user not found, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
			return
		}
		// Compare provided password with stored hash
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
			return
		}
		// Generate JWT token
		token, err := utils.GenerateJWT(user.ID, jwtSecret)
		if err != nil {
			// If token generation fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to generate token"})
			return
		}
		// Return the token and user in the response
		c.JSON(http.StatusOK, gin.H{
			"message":      "Login successful", // Human-readable outcome
			"access_token": token,              // Bearer token
			"user":         user,               // Authenticated user
		})
	}
}
