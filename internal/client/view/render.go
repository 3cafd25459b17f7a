package view

import (
	"fmt"
	"strings"

	"tradecraft/internal/client/api"
)

// ANSI styling for terminal fragments
const (
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiDim    = "\x1b[2m"
	ansiBold   = "\x1b[1m"
	ansiReset  = "\x1b[0m"
)

// suggestionBudget is the description cutoff in the suggestions rendering;
// full listings show the whole description.
const suggestionBudget = 80

const dateLayout = "Jan 2, 2006"

// Sanitize is the single escaping point for user-supplied text. Every
// rendering path routes free-text fields through here, so a crafted title or
// message cannot smuggle control sequences into the terminal.
func Sanitize(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '\n' || r == '\t':
			b.WriteRune(' ')
		case r < 0x20 || r == 0x7f:
			// Drops ESC and the rest of the control range
		default:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// truncate cuts s to max runes, marking the cut with an ellipsis
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

// PriceLabel renders a monetary price; zero means the listing is free
func PriceLabel(price float64) string {
	if price > 0 {
		return fmt.Sprintf("$%.2f", price)
	}
	return "Free"
}

// CreditsLabel renders a time-credit price; zero means none are asked
func CreditsLabel(credits int) string {
	if credits > 0 {
		return fmt.Sprintf("%d credits", credits)
	}
	return "No credits"
}

// Stars renders a rating as a fixed-width five-glyph scale
func Stars(rating int) string {
	if rating < 0 {
		rating = 0
	}
	if rating > 5 {
		rating = 5
	}
	return strings.Repeat("★", rating) + strings.Repeat("☆", 5-rating)
}

// locationLabel falls back to Remote for listings without a location
func locationLabel(location string) string {
	if location == "" {
		return "Remote"
	}
	return Sanitize(location)
}

// SkillCard renders one listing with its full description
func SkillCard(s api.Skill) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s#%d %s%s [%s]\n", ansiBold, s.ID, Sanitize(s.Title), ansiReset, Sanitize(s.Category))
	fmt.Fprintf(&b, "  %s\n", Sanitize(s.Description))
	fmt.Fprintf(&b, "  %s | %s | %s\n", locationLabel(s.Location), PriceLabel(s.MonetaryPrice), CreditsLabel(s.TimeCredits))
	fmt.Fprintf(&b, "  %sPosted on %s%s\n", ansiDim, s.CreatedAt.Format(dateLayout), ansiReset)
	return b.String()
}

// SuggestionCard renders one suggested listing with a shortened description
func SuggestionCard(s api.Skill) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s#%d %s%s [%s]\n", ansiBold, s.ID, Sanitize(s.Title), ansiReset, Sanitize(s.Category))
	fmt.Fprintf(&b, "  %s\n", truncate(Sanitize(s.Description), suggestionBudget))
	fmt.Fprintf(&b, "  %s | %s\n", PriceLabel(s.MonetaryPrice), CreditsLabel(s.TimeCredits))
	return b.String()
}

// SkillList renders the browse view; an empty result gets a single placeholder
func SkillList(skills []api.Skill) string {
	if len(skills) == 0 {
		return "No skills found.\n"
	}
	var b strings.Builder
	for _, s := range skills {
		b.WriteString(SkillCard(s))
	}
	return b.String()
}

// SuggestionList renders the suggested-for-you block
func SuggestionList(skills []api.Skill) string {
	var b strings.Builder
	b.WriteString("Suggested for you:\n")
	for _, s := range skills {
		b.WriteString(SuggestionCard(s))
	}
	return b.String()
}

// CategoryList renders popular categories with their listing counts
func CategoryList(categories []api.Category) string {
	var b strings.Builder
	b.WriteString("Popular categories: ")
	for i, c := range categories {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s (%d)", Sanitize(c.Name), c.Count)
	}
	b.WriteString("\n")
	return b.String()
}

// StatsLine renders the aggregate counts shown to logged-in users
func StatsLine(s api.Stats) string {
	return fmt.Sprintf("Your activity: %d skills, %d transactions, %d reviews (avg %.1f)\n",
		s.SkillsCount, s.TransactionsCount, s.ReviewsReceived, s.AverageRating)
}

// availabilityBadge marks own listings as available or paused
func availabilityBadge(availability string) string {
	if availability == "available" {
		return ansiGreen + "[available]" + ansiReset
	}
	return ansiDim + "[unavailable]" + ansiReset
}

// MySkillCard renders one of the user's own listings
func MySkillCard(s api.Skill) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s#%d %s%s [%s] %s\n", ansiBold, s.ID, Sanitize(s.Title), ansiReset, Sanitize(s.Category), availabilityBadge(s.Availability))
	fmt.Fprintf(&b, "  %s\n", Sanitize(s.Description))
	fmt.Fprintf(&b, "  %s | %s | %s\n", locationLabel(s.Location), PriceLabel(s.MonetaryPrice), CreditsLabel(s.TimeCredits))
	fmt.Fprintf(&b, "  %sPosted on %s%s\n", ansiDim, s.CreatedAt.Format(dateLayout), ansiReset)
	return b.String()
}

// MySkillList renders the my-skills view with its own empty state
func MySkillList(skills []api.Skill) string {
	if len(skills) == 0 {
		return "No skills posted yet. Share your expertise with the community!\n"
	}
	var b strings.Builder
	for _, s := range skills {
		b.WriteString(MySkillCard(s))
	}
	return b.String()
}

// WalletView renders the balance snapshot
func WalletView(w api.Wallet) string {
	return fmt.Sprintf("Time credits: %d\nBalance: $%.2f\n", w.TimeCredits, w.Balance)
}

// statusColor maps a transaction status to its display color
func statusColor(status string) string {
	switch status {
	case "completed":
		return ansiGreen
	case "pending":
		return ansiYellow
	case "failed":
		return ansiRed
	default:
		return ansiDim
	}
}

// TransactionRow renders one transaction from the current user's perspective:
// a debit (user is the sender) shows negative in red, a credit positive in
// green.
func TransactionRow(t api.Transaction, currentUserID uint) string {
	isSender := t.FromUserID == currentUserID
	color, sign := ansiGreen, "+"
	other := t.Sender
	if isSender {
		color, sign = ansiRed, "-"
		other = t.Receiver
	}
	return fmt.Sprintf("%s  %-14s  %s%s$%.2f / %s%d credits%s  %s%s%s  with %s\n",
		t.CreatedAt.Format(dateLayout),
		Sanitize(t.Type),
		color, sign, t.Amount, sign, t.TimeCredits, ansiReset,
		statusColor(t.Status), Sanitize(t.Status), ansiReset,
		Sanitize(other.Username))
}

// TransactionList renders the transaction history
func TransactionList(transactions []api.Transaction, currentUserID uint) string {
	if len(transactions) == 0 {
		return "No transactions found.\n"
	}
	var b strings.Builder
	for _, t := range transactions {
		b.WriteString(TransactionRow(t, currentUserID))
	}
	return b.String()
}

// ChatList renders the conversations view from the current user's perspective
func ChatList(chats []api.Chat, currentUserID uint) string {
	if len(chats) == 0 {
		return "No conversations yet.\n"
	}
	var b strings.Builder
	for _, c := range chats {
		peerName := "Unknown"
		if peer := c.Peer(currentUserID); peer != nil {
			peerName = Sanitize(peer.Username)
		}
		subject := "General chat"
		if c.Skill != nil {
			subject = Sanitize(c.Skill.Title)
		}
		fmt.Fprintf(&b, "#%d %s%s%s — %s %s(%s)%s\n",
			c.ID, ansiBold, peerName, ansiReset, subject,
			ansiDim, c.CreatedAt.Format(dateLayout), ansiReset)
	}
	return b.String()
}

// MessageList renders a conversation oldest-first, so the newest message ends
// up at the bottom of the terminal, which is where the eye lands.
func MessageList(messages []api.Message, currentUserID uint) string {
	if len(messages) == 0 {
		return "No messages yet. Start the conversation!\n"
	}
	var b strings.Builder
	for _, m := range messages {
		marker := "them"
		if m.SenderID == currentUserID {
			marker = " you"
		}
		fmt.Fprintf(&b, "%s[%s]%s %s  %s%s%s\n",
			ansiDim, m.CreatedAt.Format("15:04"), ansiReset,
			marker, ansiBold, Sanitize(m.Content), ansiReset)
	}
	return b.String()
}

// ProfileView renders the profile form values
func ProfileView(u api.User) string {
	return fmt.Sprintf("Username: %s\nEmail: %s\nPhone: %s\n",
		Sanitize(u.Username), Sanitize(u.Email), Sanitize(u.Phone))
}

// ReviewList renders received reviews with their star scale
func ReviewList(reviews []api.Review) string {
	if len(reviews) == 0 {
		return "No reviews yet.\n"
	}
	var b strings.Builder
	for _, r := range reviews {
		reviewer := r.Reviewer.Username
		if reviewer == "" {
			reviewer = "Anonymous"
		}
		fmt.Fprintf(&b, "%s %s\n", Stars(r.Rating), Sanitize(r.Comment))
		fmt.Fprintf(&b, "  %sBy %s on %s%s\n", ansiDim, Sanitize(reviewer), r.CreatedAt.Format(dateLayout), ansiReset)
	}
	return b.String()
}

// SkillDetails renders the full single-listing view
func SkillDetails(s api.Skill) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s%s%s [%s]\n", ansiBold, Sanitize(s.Title), ansiReset, Sanitize(s.Category))
	fmt.Fprintf(&b, "%s\n", Sanitize(s.Description))
	fmt.Fprintf(&b, "Location: %s\nPrice: %s\nTime credits: %s\n",
		locationLabel(s.Location), PriceLabel(s.MonetaryPrice), CreditsLabel(s.TimeCredits))
	fmt.Fprintf(&b, "%sPosted on %s%s\n", ansiDim, s.CreatedAt.Format(dateLayout), ansiReset)
	return b.String()
}
