package api

import (
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"strings"  // String manipulation

	"tradecraft/internal/domain"     // Importing domain models
	"tradecraft/internal/middleware" // Authenticated user lookup

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// Request struct for opening a chat
type CreateChatRequest struct {
	SkillID     *uint `json:"skill_id"`      // Chat about a listing, peer is its provider
	OtherUserID *uint `json:"other_user_id"` // Direct chat with a specific user
}

// Request struct for sending a message
type SendMessageRequest struct {
	Content string `json:"content"` // Message text
}

// ChatResponse is a chat with the participants and listing embedded
type ChatResponse struct {
	domain.Chat                    // Chat fields
	User1       *domain.UserBasic  `json:"user1"` // First participant
	User2       *domain.UserBasic  `json:"user2"` // Second participant
	Skill       *domain.SkillBasic `json:"skill"` // Discussed listing, nil for general chats
}

// ListChatsHandler returns all chats the authenticated user takes part in
func ListChatsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUserID(c) // Get userID from context
		if !ok {
			// If not authenticated, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}
		var chats []domain.Chat // Slice to hold chats
		// Newest chats first
		if err := db.Where("(user1_id = ? OR user2_id = ?) AND is_active = ?", userID, userID, true).
			Order("created_at desc").
			Find(&chats).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load chats"})
			return
		}
		// Embed each chat's participants and listing
		resp := make([]ChatResponse, len(chats))
		for i, chat := range chats {
			resp[i] = ChatResponse{Chat: chat} // Chat fields
			var u1, u2 domain.User             // Participant rows
			if err := db.First(&u1, chat.User1ID).Error; err == nil {
				b := u1.Basic()
				resp[i].User1 = &b // First participant
			}
			if err := db.First(&u2, chat.User2ID).Error; err == nil {
				b := u2.Basic()
				resp[i].User2 = &b // Second participant
			}
			// Discussed listing, if any
			if chat.SkillID != nil {
				var skill domain.SkillListing
				if err := db.First(&skill, *chat.SkillID).Error; err == nil {
					b := skill.Basic()
					resp[i].Skill = &b // Discussed listing
				}
			}
		}
		c.JSON(http.StatusOK, gin.H{"chats": resp}) // Return chats
	}
}

// CreateChatHandler opens (or finds) a chat between the user and a peer
func CreateChatHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUserID(c) // Get userID from context
		if !ok {
			// If not authenticated, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}
		var req CreateChatRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
			return
		}
		// A chat needs either a listing or an explicit peer
		if req.SkillID == nil && req.OtherUserID == nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "skill_id or other_user_id is required"})
			return
		}
		var peerID uint // The other participant
		// Resolve peer from the listing's provider when a listing is given
		if req.SkillID != nil {
			var skill domain.SkillListing
			if err := db.First(&skill, *req.SkillID).Error; err != nil {
				c.JSON(http.StatusNotFound, gin.H{"message": "Skill not found"})
				return
			}
			peerID = skill.ProviderID // Peer is the listing's provider
		} else {
			peerID = *req.OtherUserID // Peer given directly
		}
		// Prevent chats with oneself
		if peerID == userID {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Cannot create chat with yourself"})
			return
		}
		// Normalize participant order (user1_id < user2_id) to avoid duplicates
		a, b := userID, peerID
		if a > b {
			a, b = b, a
		}
		var chat domain.Chat // Existing or new chat
		// Reuse an existing chat for the same pair and listing
		query := db.Where("user1_id = ? AND user2_id = ?", a, b)
		if req.SkillID != nil {
			query = query.Where("skill_id = ?", *req.SkillID)
		} else {
			query = query.Where("skill_id IS NULL")
		}
		if err := query.First(&chat).Error; err != nil {
			// No existing chat, create one
			chat = domain.Chat{
				User1ID:  a,           // Lower participant id
				User2ID:  b,           // Higher participant id
				SkillID:  req.SkillID, // Optional discussed listing
				IsActive: true,        // New chats start active
			}
			if err := db.Create(&chat).Error; err != nil {
				// Log the error with context
				logrus.WithFields(logrus.Fields{
					"user_id": userID,      // Requesting user ID
					"peer_id": peerID,      // Peer user ID
					"error":   err.Error(), // Error message
				}).Error("Failed to create chat") // Log creation failure
				c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create chat"})
				return
			}
		}
		c.JSON(http.StatusCreated, gin.H{
			"message": "Chat ready", // Human-readable outcome
			"chat":    chat,         // Existing or created chat
		})
	}
}

// GetMessagesHandler returns a chat's messages, oldest first
func GetMessagesHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUserID(c) // Get userID from context
		if !ok {
			// If not authenticated, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}
		chatID, err := strconv.Atoi(c.Param("id")) // Parse chat id from path
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid chat id"})
			return
		}
		var chat domain.Chat // Fetch chat from database
		if err := db.First(&chat, chatID).Error; err != nil || !chat.IsActive {
			c.JSON(http.StatusNotFound, gin.H{"message": "Chat not found"})
			return
		}
		// Only participants may read a chat
		if !chat.Involves(userID) {
			c.JSON(http.StatusForbidden, gin.H{"message": "Not authorized for this chat"})
			return
		}
		var messages []domain.Message // Slice to hold messages
		// Messages order by creation time ascending
		if err := db.Where("chat_id = ?", chat.ID).
			Order("created_at asc").
			Find(&messages).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load messages"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"messages": messages}) // Return messages
	}
}

// SendMessageHandler appends a message to a chat the user takes part in
func SendMessageHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUserID(c) // Get userID from context
		if !ok {
			// If not authenticated, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}
		chatID, err := strconv.Atoi(c.Param("id")) // Parse chat id from path
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid chat id"})
			return
		}
		var chat domain.Chat // Fetch chat from database
		if err := db.First(&chat, chatID).Error; err != nil || !chat.IsActive {
			c.JSON(http.StatusNotFound, gin.H{"message": "Chat not found"})
			return
		}
		// Only participants may write to a chat
		if !chat.Involves(userID) {
			c.JSON(http.StatusForbidden, gin.H{"message": "Not authorized for this chat"})
			return
		}
		var req SendMessageRequest // Bind JSON request to struct
		_ = c.ShouldBindJSON(&req) // Empty body handled by the content check below
		content := strings.TrimSpace(req.Content)
		// Reject empty messages
		if content == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Message content is required"})
			return
		}
		msg := domain.Message{
			ChatID:     chat.ID,              // Parent chat
			SenderID:   userID,               // Authenticated sender
			ReceiverID: chat.PeerOf(userID),  // The other participant
			Content:    content,              // Trimmed message text
		}
		// Attempt to create the message in the database
		if err := db.Create(&msg).Error; err != nil {
			// Log the error with context
			logrus.WithFields(logrus.Fields{
				"chat_id":   chat.ID,     // Parent chat ID
				"sender_id": userID,      // Sender user ID
				"error":     err.Error(), // Error message
			}).Error("Failed to send message") // Log send failure
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to send message"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"message": "Message sent", // Human-readable outcome
			"data":    msg,            // Created message
		})
	}
}
