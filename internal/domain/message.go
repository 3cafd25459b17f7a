package domain

import "time"

// Message Model
type Message struct {
	ID        uint       `gorm:"primaryKey" json:"id"`                 // Primary key
	Content   string     `gorm:"type:text;not null" json:"content"`    // Message text
	IsEdited  bool       `gorm:"default:false" json:"is_edited"`       // Whether the message was edited
	EditedAt  *time.Time `json:"edited_at"`                            // Timestamp of last edit, nil if never edited
	CreatedAt time.Time  `json:"created_at"`                           // Timestamp of creation, messages order by this ascending

	ChatID     uint `gorm:"not null;index" json:"chat_id"`   // Foreign key to Chat
	SenderID   uint `gorm:"not null" json:"sender_id"`       // Foreign key to the sending User
	ReceiverID uint `gorm:"not null" json:"receiver_id"`     // Foreign key to the receiving User
}
