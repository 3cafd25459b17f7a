package domain

import "time"

// Wallet Model
type Wallet struct {
	ID          uint      `gorm:"primaryKey" json:"id"`               // Primary key
	UserID      uint      `gorm:"uniqueIndex" json:"user_id"`         // Foreign key to User
	Balance     float64   `gorm:"not null;default:0" json:"balance"`  // Monetary balance
	TimeCredits int       `gorm:"default:0" json:"time_credits"`      // Time-credit balance
	CreatedAt   time.Time `json:"created_at"`                         // Timestamp of creation
	UpdatedAt   time.Time `json:"updated_at"`                         // Timestamp of last update
}
