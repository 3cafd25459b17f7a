package api

import "time"

// Transient projections of backend data. Nothing here is owned by the client
// beyond the lifetime of the view that fetched it.

// User is the profile slice the client keeps around for perspective checks
type User struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

// Skill is a service listing as returned by the backend
type Skill struct {
	ID            uint      `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Category      string    `json:"category"`
	Location      string    `json:"location"`
	TimeCredits   int       `json:"time_credits"`
	MonetaryPrice float64   `json:"monetary_price"`
	Availability  string    `json:"availability"`
	ProviderID    uint      `json:"provider_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// SkillRef is the minimal listing reference embedded in chats
type SkillRef struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

// Wallet is a single balance snapshot, never diffed locally
type Wallet struct {
	TimeCredits int     `json:"time_credits"`
	Balance     float64 `json:"balance"`
}

// Transaction is one wallet movement with both counterparties embedded
type Transaction struct {
	ID          uint      `json:"id"`
	Amount      float64   `json:"amount"`
	TimeCredits int       `json:"time_credits"`
	Status      string    `json:"status"`
	Type        string    `json:"transaction_type"`
	FromUserID  uint      `json:"from_user_id"`
	ToUserID    uint      `json:"to_user_id"`
	Sender      User      `json:"sender"`
	Receiver    User      `json:"receiver"`
	CreatedAt   time.Time `json:"created_at"`
}

// Chat is a two-party conversation, optionally tied to a listing
type Chat struct {
	ID        uint      `json:"id"`
	User1ID   uint      `json:"user1_id"`
	User2ID   uint      `json:"user2_id"`
	User1     *User     `json:"user1"`
	User2     *User     `json:"user2"`
	Skill     *SkillRef `json:"skill"`
	CreatedAt time.Time `json:"created_at"`
}

// Peer returns the other participant from the given user's perspective
func (c Chat) Peer(userID uint) *User {
	if c.User1ID == userID {
		return c.User2
	}
	return c.User1
}

// Message is one chat message, ordered by CreatedAt ascending within a chat
type Message struct {
	ID         uint      `json:"id"`
	ChatID     uint      `json:"chat_id"`
	SenderID   uint      `json:"sender_id"`
	ReceiverID uint      `json:"receiver_id"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

// Review is a received rating with the reviewer embedded
type Review struct {
	ID        uint      `json:"id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	Reviewer  User      `json:"reviewer"`
	CreatedAt time.Time `json:"created_at"`
}

// Category pairs a category name with its listing count
type Category struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// Stats are the aggregate counts shown alongside the wallet
type Stats struct {
	SkillsCount       int64   `json:"skills_count"`
	TransactionsCount int64   `json:"transactions_count"`
	ReviewsReceived   int64   `json:"reviews_received"`
	AverageRating     float64 `json:"average_rating"`
}

// AuthResult is the payload of a successful login or registration
type AuthResult struct {
	AccessToken string `json:"access_token"`
	User        User   `json:"user"`
}

// SkillQuery are the simple search parameters of GET /skills
type SkillQuery struct {
	Search   string
	Category string
	Location string
}

// SearchFilters narrow an advanced POST /skills/search
type SearchFilters struct {
	Category   string   `json:"category,omitempty"`
	Location   string   `json:"location,omitempty"`
	MinCredits *int     `json:"min_credits,omitempty"`
	MaxCredits *int     `json:"max_credits,omitempty"`
	MaxPrice   *float64 `json:"max_price,omitempty"`
}

// NewSkill carries the post-skill form fields
type NewSkill struct {
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	Category      string  `json:"category"`
	Location      string  `json:"location,omitempty"`
	TimeCredits   int     `json:"time_credits"`
	MonetaryPrice float64 `json:"monetary_price"`
}

// RegisterParams carries the registration form fields
type RegisterParams struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password"`
}

// SkillPage is one page of listings
type SkillPage struct {
	Skills      []Skill `json:"skills"`
	Total       int64   `json:"total"`
	Pages       int     `json:"pages"`
	CurrentPage int     `json:"current_page"`
}
