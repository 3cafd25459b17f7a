package view

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"tradecraft/internal/client/api"
)

func TestPriceLabel(t *testing.T) {
	assert.Equal(t, "Free", PriceLabel(0))
	assert.Equal(t, "Free", PriceLabel(-1))
	assert.Equal(t, "$25.00", PriceLabel(25))
	assert.Equal(t, "$9.99", PriceLabel(9.99))
}

func TestCreditsLabel(t *testing.T) {
	assert.Equal(t, "No credits", CreditsLabel(0))
	assert.Equal(t, "3 credits", CreditsLabel(3))
}

func TestStars(t *testing.T) {
	assert.Equal(t, "★★★☆☆", Stars(3))
	assert.Equal(t, "☆☆☆☆☆", Stars(0))
	assert.Equal(t, "★★★★★", Stars(5))
	// Out-of-range ratings clamp instead of panicking
	assert.Equal(t, "☆☆☆☆☆", Stars(-2))
	assert.Equal(t, "★★★★★", Stars(9))
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "hello world", Sanitize("hello\nworld"))
	assert.Equal(t, "a b", Sanitize("a\tb"))
	assert.Equal(t, "clean", Sanitize("\x1b[31mclean\x07"))
	assert.Equal(t, "trimmed", Sanitize("  trimmed  "))
	assert.Equal(t, "héllo ★", Sanitize("héllo ★"))
}

func TestSuggestionDescriptionTruncation(t *testing.T) {
	long := strings.Repeat("x", 200)
	card := SuggestionCard(api.Skill{ID: 1, Title: "T", Category: "c", Description: long})
	assert.Contains(t, card, strings.Repeat("x", 80)+"...")
	assert.NotContains(t, card, strings.Repeat("x", 81))

	short := strings.Repeat("y", 80)
	card = SuggestionCard(api.Skill{ID: 2, Title: "T", Category: "c", Description: short})
	assert.Contains(t, card, short)
	assert.NotContains(t, card, "...")
}

func TestSkillCardKeepsFullDescription(t *testing.T) {
	long := strings.Repeat("z", 200)
	card := SkillCard(api.Skill{ID: 1, Title: "T", Category: "c", Description: long})
	assert.Contains(t, card, long)
	assert.NotContains(t, card, "...")
}

func TestSkillListEmptyState(t *testing.T) {
	assert.Equal(t, "No skills found.\n", SkillList(nil))
	assert.Equal(t, "No skills found.\n", SkillList([]api.Skill{}))
}

func TestSkillListRendersEachListing(t *testing.T) {
	out := SkillList([]api.Skill{
		{ID: 1, Title: "Guitar lessons", Category: "music", MonetaryPrice: 20},
		{ID: 2, Title: "Bike repair", Category: "repair"},
	})
	assert.Contains(t, out, "Guitar lessons")
	assert.Contains(t, out, "$20.00")
	assert.Contains(t, out, "Bike repair")
	assert.Contains(t, out, "Free")
}

func TestLocationFallsBackToRemote(t *testing.T) {
	out := SkillCard(api.Skill{ID: 1, Title: "T", Category: "c"})
	assert.Contains(t, out, "Remote")
}

func TestTransactionRowPerspective(t *testing.T) {
	tx := api.Transaction{
		Amount:      10,
		TimeCredits: 2,
		Status:      "completed",
		Type:        "skill_payment",
		FromUserID:  1,
		ToUserID:    2,
		Sender:      api.User{ID: 1, Username: "alice"},
		Receiver:    api.User{ID: 2, Username: "bob"},
	}

	debit := TransactionRow(tx, 1)
	assert.Contains(t, debit, ansiRed+"-")
	assert.Contains(t, debit, "-$10.00")
	assert.Contains(t, debit, "with bob")

	credit := TransactionRow(tx, 2)
	assert.Contains(t, credit, ansiGreen+"+")
	assert.Contains(t, credit, "+$10.00")
	assert.Contains(t, credit, "with alice")
}

func TestTransactionListEmptyState(t *testing.T) {
	assert.Equal(t, "No transactions found.\n", TransactionList(nil, 1))
}

func TestChatListPeerAndSubject(t *testing.T) {
	chats := []api.Chat{
		{
			ID: 1, User1ID: 1, User2ID: 2,
			User1: &api.User{ID: 1, Username: "me"},
			User2: &api.User{ID: 2, Username: "peer"},
			Skill: &api.SkillRef{ID: 3, Title: "Cooking class"},
		},
		{
			ID: 2, User1ID: 1, User2ID: 3,
			User1: &api.User{ID: 1, Username: "me"},
			User2: &api.User{ID: 3, Username: "other"},
		},
	}
	out := ChatList(chats, 1)
	assert.Contains(t, out, "peer")
	assert.Contains(t, out, "Cooking class")
	assert.Contains(t, out, "other")
	assert.Contains(t, out, "General chat") // chat without a listing
	assert.NotContains(t, out, "me —")
}

func TestMessageListEmptyState(t *testing.T) {
	assert.Equal(t, "No messages yet. Start the conversation!\n", MessageList(nil, 1))
}

func TestMessageListMarksOwnMessages(t *testing.T) {
	out := MessageList([]api.Message{
		{SenderID: 1, Content: "hi"},
		{SenderID: 2, Content: "hello"},
	}, 1)
	assert.Contains(t, out, " you")
	assert.Contains(t, out, "them")
	assert.Contains(t, out, "hi")
	assert.Contains(t, out, "hello")
}

func TestReviewListAnonymousFallback(t *testing.T) {
	out := ReviewList([]api.Review{{Rating: 4, Comment: "great"}})
	assert.Contains(t, out, "★★★★☆")
	assert.Contains(t, out, "Anonymous")

	assert.Equal(t, "No reviews yet.\n", ReviewList(nil))
}

func TestMySkillListEmptyState(t *testing.T) {
	assert.Equal(t, "No skills posted yet. Share your expertise with the community!\n", MySkillList(nil))
}

func TestRenderedTextIsSanitized(t *testing.T) {
	out := SkillCard(api.Skill{ID: 1, Title: "bad\x1b[2Jtitle", Category: "c", Description: "line1\nline2"})
	assert.Contains(t, out, "bad[2Jtitle") // ESC stripped, remainder kept
	assert.Contains(t, out, "line1 line2")
}
