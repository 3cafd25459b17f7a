package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Client issues requests against the TradeCraft backend. Every call is a
// single attempt: no retry, no backoff, no timeout beyond the caller's
// context. A bearer token, once set, rides along on authenticated calls.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

// NewClient builds a client for the given base URL (no trailing slash)
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
	}
}

// SetToken installs the bearer token used by authenticated calls
func (c *Client) SetToken(token string) { c.token = token }

// ClearToken drops the bearer token
func (c *Client) ClearToken() { c.token = "" }

// Token returns the currently installed bearer token, empty when logged out
func (c *Client) Token() string { return c.token }

// do performs one request. authed attaches the bearer header when a token is
// present; the header is simply omitted otherwise and the backend answers 401
// where it cares. Transport failures come back as *NetworkError, non-2xx
// responses as *HTTPError, and out (when non-nil) receives the decoded body.
func (c *Client) do(ctx context.Context, method, path string, body any, authed bool, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed && c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &HTTPError{Status: resp.StatusCode, Message: extractMessage(raw), Body: raw}
	}
	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// ----- Auth -----

// Login authenticates by email and password
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var res AuthResult
	payload := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", payload, false, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Register creates an account and logs it in
func (c *Client) Register(ctx context.Context, params RegisterParams) (*AuthResult, error) {
	var res AuthResult
	if err := c.do(ctx, http.MethodPost, "/auth/register", params, false, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ----- Skills -----

// Skills lists active listings, optionally narrowed by the query
func (c *Client) Skills(ctx context.Context, q SkillQuery) (*SkillPage, error) {
	values := url.Values{}
	if q.Search != "" {
		values.Set("search", q.Search)
	}
	if q.Category != "" {
		values.Set("category", q.Category)
	}
	if q.Location != "" {
		values.Set("location", q.Location)
	}
	path := "/skills"
	if encoded := values.Encode(); encoded != "" {
		path += "?" + encoded
	}
	var res SkillPage
	if err := c.do(ctx, http.MethodGet, path, nil, false, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// SearchSkills runs an advanced search with structured filters
func (c *Client) SearchSkills(ctx context.Context, query string, filters SearchFilters) ([]Skill, int64, error) {
	payload := struct {
		Query   string        `json:"query"`
		Filters SearchFilters `json:"filters"`
	}{Query: query, Filters: filters}
	var res struct {
		Skills []Skill `json:"skills"`
		Total  int64   `json:"total"`
	}
	if err := c.do(ctx, http.MethodPost, "/skills/search", payload, false, &res); err != nil {
		return nil, 0, err
	}
	return res.Skills, res.Total, nil
}

// Skill fetches a single listing
func (c *Client) Skill(ctx context.Context, id uint) (*Skill, error) {
	var res struct {
		Skill Skill `json:"skill"`
	}
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/skills/%d", id), nil, false, &res); err != nil {
		return nil, err
	}
	return &res.Skill, nil
}

// CreateSkill posts a new listing owned by the logged-in user
func (c *Client) CreateSkill(ctx context.Context, skill NewSkill) (*Skill, error) {
	var res struct {
		Skill Skill `json:"skill"`
	}
	if err := c.do(ctx, http.MethodPost, "/skills", skill, true, &res); err != nil {
		return nil, err
	}
	return &res.Skill, nil
}

// DeleteSkill removes one of the logged-in user's listings
func (c *Client) DeleteSkill(ctx context.Context, id uint) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/skills/%d", id), nil, true, nil)
}

// Suggestions fetches personalized listing suggestions
func (c *Client) Suggestions(ctx context.Context) ([]Skill, error) {
	var res struct {
		Suggestions []Skill `json:"suggestions"`
	}
	if err := c.do(ctx, http.MethodGet, "/skills/suggestions", nil, true, &res); err != nil {
		return nil, err
	}
	return res.Suggestions, nil
}

// PopularCategories fetches categories ranked by listing count
func (c *Client) PopularCategories(ctx context.Context) ([]Category, error) {
	var res struct {
		Categories []Category `json:"categories"`
	}
	if err := c.do(ctx, http.MethodGet, "/categories/popular", nil, false, &res); err != nil {
		return nil, err
	}
	return res.Categories, nil
}

// ----- Profile -----

// UserStats fetches the logged-in user's aggregate counts
func (c *Client) UserStats(ctx context.Context) (*Stats, error) {
	var res Stats
	if err := c.do(ctx, http.MethodGet, "/user/stats", nil, true, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// UserSkills lists the logged-in user's own listings
func (c *Client) UserSkills(ctx context.Context) ([]Skill, error) {
	var res struct {
		Skills []Skill `json:"skills"`
	}
	if err := c.do(ctx, http.MethodGet, "/user/skills", nil, true, &res); err != nil {
		return nil, err
	}
	return res.Skills, nil
}

// Profile fetches the logged-in user's profile
func (c *Client) Profile(ctx context.Context) (*User, error) {
	var res struct {
		User User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/user/profile", nil, true, &res); err != nil {
		return nil, err
	}
	return &res.User, nil
}

// UpdateProfile changes the logged-in user's username and phone. Empty
// fields are omitted from the request and stay unchanged server-side.
func (c *Client) UpdateProfile(ctx context.Context, username, phone string) (*User, error) {
	payload := map[string]string{}
	if username != "" {
		payload["username"] = username
	}
	if phone != "" {
		payload["phone"] = phone
	}
	var res struct {
		User User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPut, "/user/profile", payload, true, &res); err != nil {
		return nil, err
	}
	return &res.User, nil
}

// UserReviews fetches reviews received by any user
func (c *Client) UserReviews(ctx context.Context, userID uint) ([]Review, error) {
	var res struct {
		Reviews []Review `json:"reviews"`
	}
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/users/%d/reviews", userID), nil, false, &res); err != nil {
		return nil, err
	}
	return res.Reviews, nil
}

// ----- Wallet -----

// ExchangeSkill settles an exchange: pays the listing's price and time
// credits to its provider and returns the recorded transaction
func (c *Client) ExchangeSkill(ctx context.Context, skillID uint) (*Transaction, error) {
	var res struct {
		Transaction Transaction `json:"transaction"`
	}
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/skills/%d/exchange", skillID), nil, true, &res); err != nil {
		return nil, err
	}
	return &res.Transaction, nil
}

// RechargeWallet tops up the logged-in user's wallet
func (c *Client) RechargeWallet(ctx context.Context, amount float64, timeCredits int) (*Transaction, error) {
	payload := map[string]any{"amount": amount, "time_credits": timeCredits}
	var res struct {
		Transaction Transaction `json:"transaction"`
	}
	if err := c.do(ctx, http.MethodPost, "/wallet/recharge", payload, true, &res); err != nil {
		return nil, err
	}
	return &res.Transaction, nil
}

// Wallet fetches the logged-in user's balance snapshot
func (c *Client) Wallet(ctx context.Context) (*Wallet, error) {
	var res struct {
		Wallet Wallet `json:"wallet"`
	}
	if err := c.do(ctx, http.MethodGet, "/wallet", nil, true, &res); err != nil {
		return nil, err
	}
	return &res.Wallet, nil
}

// Transactions fetches the logged-in user's transaction history
func (c *Client) Transactions(ctx context.Context) ([]Transaction, int64, error) {
	var res struct {
		Transactions []Transaction `json:"transactions"`
		Total        int64         `json:"total"`
	}
	if err := c.do(ctx, http.MethodGet, "/transactions", nil, true, &res); err != nil {
		return nil, 0, err
	}
	return res.Transactions, res.Total, nil
}

// ----- Chats -----

// Chats lists the logged-in user's conversations
func (c *Client) Chats(ctx context.Context) ([]Chat, error) {
	var res struct {
		Chats []Chat `json:"chats"`
	}
	if err := c.do(ctx, http.MethodGet, "/chats", nil, true, &res); err != nil {
		return nil, err
	}
	return res.Chats, nil
}

// CreateChat opens (or finds) a conversation about a listing
func (c *Client) CreateChat(ctx context.Context, skillID uint) (*Chat, error) {
	payload := map[string]uint{"skill_id": skillID}
	var res struct {
		Chat Chat `json:"chat"`
	}
	if err := c.do(ctx, http.MethodPost, "/chats", payload, true, &res); err != nil {
		return nil, err
	}
	return &res.Chat, nil
}

// Messages fetches a chat's messages, oldest first
func (c *Client) Messages(ctx context.Context, chatID uint) ([]Message, error) {
	var res struct {
		Messages []Message `json:"messages"`
	}
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/chats/%d/messages", chatID), nil, true, &res); err != nil {
		return nil, err
	}
	return res.Messages, nil
}

// SendMessage appends a message to a chat
func (c *Client) SendMessage(ctx context.Context, chatID uint, content string) (*Message, error) {
	payload := map[string]string{"content": content}
	var res struct {
		Data Message `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/chats/%d/messages", chatID), payload, true, &res); err != nil {
		return nil, err
	}
	return &res.Data, nil
}
