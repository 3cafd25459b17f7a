package domain

import "time"

// Review Model
type Review struct {
	ID        uint      `gorm:"primaryKey" json:"id"`           // Primary key
	Rating    int       `gorm:"not null" json:"rating"`         // 1-5 stars
	Comment   string    `gorm:"type:text" json:"comment"`       // Free-text comment
	CreatedAt time.Time `json:"created_at"`                     // Timestamp of creation

	ReviewerID    uint  `gorm:"not null" json:"reviewer_id"`       // Foreign key to the reviewing User
	ReviewedID    uint  `gorm:"not null;index" json:"reviewed_id"` // Foreign key to the reviewed User
	SkillID       *uint `json:"skill_id"`                          // Optional foreign key to the reviewed SkillListing
	TransactionID *uint `json:"transaction_id"`                    // Optional foreign key to the settling Transaction
}
