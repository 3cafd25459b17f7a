package domain

import "time"

// SkillListing Model
type SkillListing struct {
	ID            uint      `gorm:"primaryKey" json:"id"`                          // Primary key
	Title         string    `gorm:"size:200;not null" json:"title"`                // Listing title
	Description   string    `gorm:"type:text;not null" json:"description"`         // Full description
	Category      string    `gorm:"size:100;not null" json:"category"`             // Category name
	Location      string    `gorm:"size:200" json:"location"`                      // Optional location, empty means remote
	TimeCredits   int       `gorm:"default:0" json:"time_credits"`                 // Asking price in time credits
	MonetaryPrice float64   `gorm:"default:0" json:"monetary_price"`               // Asking price in money, 0 means free
	Availability  string    `gorm:"size:50;default:available" json:"availability"` // available or unavailable
	IsActive      bool      `gorm:"default:true" json:"is_active"`                 // Soft-delete flag
	CreatedAt     time.Time `json:"created_at"`                                    // Timestamp of creation
	UpdatedAt     time.Time `json:"updated_at"`                                    // Timestamp of last update

	ProviderID uint `gorm:"not null;index" json:"provider_id"` // Foreign key to the providing User
}

// SkillBasic is the minimal projection embedded in chat listings
type SkillBasic struct {
	ID    uint   `json:"id"`    // Skill ID
	Title string `json:"title"` // Listing title
}

// Basic returns the minimal projection of the listing
func (s *SkillListing) Basic() SkillBasic {
	return SkillBasic{ID: s.ID, Title: s.Title}
}
