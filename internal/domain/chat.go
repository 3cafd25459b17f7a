package domain

import "time"

// Chat Model
type Chat struct {
	ID        uint      `gorm:"primaryKey" json:"id"`          // Primary key
	IsActive  bool      `gorm:"default:true" json:"is_active"` // Soft-delete flag
	CreatedAt time.Time `json:"created_at"`                    // Timestamp of creation

	User1ID uint  `gorm:"not null;index" json:"user1_id"` // First participant, always the lower user id
	User2ID uint  `gorm:"not null;index" json:"user2_id"` // Second participant
	SkillID *uint `json:"skill_id"`                       // Optional foreign key to the discussed SkillListing
}

// Involves reports whether the given user takes part in the chat
func (c *Chat) Involves(userID uint) bool {
	return c.User1ID == userID || c.User2ID == userID
}

// PeerOf returns the other participant's user id
func (c *Chat) PeerOf(userID uint) uint {
	if c.User1ID == userID {
		return c.User2ID
	}
	return c.User1ID
}
