package domain

import "time"

// Transaction status values
const (
	TxStatusPending   = "pending"   // Awaiting completion
	TxStatusCompleted = "completed" // Settled
	TxStatusFailed    = "failed"    // Did not settle
	TxStatusCancelled = "cancelled" // Withdrawn before settling
)

// Transaction Model
type Transaction struct {
	ID          uint       `gorm:"primaryKey" json:"id"`                                  // Primary key
	Amount      float64    `gorm:"default:0" json:"amount"`                               // Monetary amount
	TimeCredits int        `gorm:"default:0" json:"time_credits"`                         // Time-credit amount
	Status      string     `gorm:"size:20;default:pending" json:"status"`                 // pending, completed, failed, cancelled
	Type        string     `gorm:"size:20;default:skill_exchange" json:"transaction_type"` // skill_exchange, recharge, withdrawal
	CreatedAt   time.Time  `json:"created_at"`                                            // Timestamp of creation
	CompletedAt *time.Time `json:"completed_at"`                                          // Timestamp of completion, nil while pending

	FromUserID uint  `gorm:"not null;index" json:"from_user_id"` // Foreign key to the paying User
	ToUserID   uint  `gorm:"not null;index" json:"to_user_id"`   // Foreign key to the receiving User
	SkillID    *uint `json:"skill_id"`                           // Optional foreign key to the exchanged SkillListing
}
