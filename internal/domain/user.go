package domain

import "time"

// User roles
const (
	RoleUser  = "user"  // Default marketplace member
	RoleAdmin = "admin" // May inspect all users and transactions
)

// User Model
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`                    // Primary key
	Username     string    `gorm:"size:80;unique;not null" json:"username"` // Unique username
	Email        string    `gorm:"size:120;unique;not null" json:"email"`   // Unique email address
	PasswordHash string    `gorm:"size:255;not null" json:"-"`              // Hashed password, never serialized
	Phone        string    `gorm:"size:20" json:"phone"`                    // Optional phone number
	Role         string    `gorm:"size:20;default:user" json:"role"`       // Role: user or admin
	IsActive     bool      `gorm:"default:true" json:"is_active"`           // Soft-delete flag
	CreatedAt    time.Time `json:"created_at"`                              // Timestamp of creation

	Wallet Wallet `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"` // One-to-one relationship with Wallet
}

// UserBasic is the minimal projection embedded in chats, transactions and reviews
type UserBasic struct {
	ID       uint   `json:"id"`       // User ID
	Username string `json:"username"` // Username
	Email    string `json:"email"`    // Email address
}

// Basic returns the minimal projection of the user
func (u *User) Basic() UserBasic {
	return UserBasic{ID: u.ID, Username: u.Username, Email: u.Email}
}
