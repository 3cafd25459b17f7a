package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"tradecraft/internal/config"
	"tradecraft/internal/db"
	"tradecraft/internal/middleware"
)

// TestMarketplaceIntegration exercises the register/login/skill flow against
// a live MySQL instance.
func TestMarketplaceIntegration(t *testing.T) {
	if os.Getenv("RUN_API_INTEGRATION") != "true" {
		t.Skip("set RUN_API_INTEGRATION=true to run this integration test")
	}

	for _, path := range []string{".env", "../.env", "../../.env"} {
		_ = godotenv.Overload(path)
	}
	cfg := config.LoadConfig()

	db.Migrate(cfg.DSN())
	conn, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Fatalf("connect redis: %v", err)
	}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	root := r.Group("/api")
	root.POST("/auth/register", RegisterHandler(conn, cfg.JWTSecret))
	root.POST("/auth/login", LoginHandler(conn, cfg.JWTSecret))
	root.GET("/skills", ListSkillsHandler(conn))
	root.GET("/skills/:id", GetSkillHandler(conn))
	authed := root.Group("")
	authed.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	authed.POST("/skills", CreateSkillHandler(conn))
	authed.GET("/user/skills", GetUserSkillsHandler(conn))
	authed.POST("/skills/:id/exchange", ExchangeSkillHandler(conn, rdb))
	authed.POST("/wallet/recharge", RechargeWalletHandler(conn, rdb))
	authed.GET("/transactions", GetTransactionsHandler(conn, rdb))
	admin := authed.Group("/admin")
	admin.Use(middleware.AdminOnlyMiddleware(conn))
	admin.GET("/users", AdminListUsersHandler(conn, rdb))

	ts := httptest.NewServer(r)
	defer ts.Close()

	username := fmt.Sprintf("apitest_%d", time.Now().UnixNano())
	email := username + "@example.com"
	password := fmt.Sprintf("Pass!%d", time.Now().UnixNano())

	token := register(t, ts.URL, username, email, password)
	if token == "" {
		t.Fatal("register returned no access token")
	}

	loginToken := login(t, ts.URL, email, password)
	if loginToken == "" {
		t.Fatal("login returned no access token")
	}

	skillID := createSkill(t, ts.URL, loginToken, map[string]any{
		"title":        "Integration test listing " + username,
		"description":  "A listing created by the integration test",
		"category":     "testing",
		"time_credits": 1,
	})
	if skillID == 0 {
		t.Fatal("create skill returned no id")
	}

	// The new listing is visible both in the public browse view and in the
	// owner's own listings
	if !skillVisible(t, ts.URL, "/api/skills?search="+username, "", skillID) {
		t.Fatalf("skill %d not visible in public listing", skillID)
	}
	if !skillVisible(t, ts.URL, "/api/user/skills", loginToken, skillID) {
		t.Fatalf("skill %d not visible in own listings", skillID)
	}

	// A second user books the listing: first attempt fails for lack of time
	// credits, then a recharge makes the settlement go through
	buyer := fmt.Sprintf("apibuyer_%d", time.Now().UnixNano())
	buyerToken := register(t, ts.URL, buyer, buyer+"@example.com", password)

	var denied struct {
		Message string `json:"message"`
	}
	doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/skills/%d/exchange", ts.URL, skillID),
		buyerToken, nil, http.StatusBadRequest, &denied)
	if denied.Message != "Insufficient time credits" {
		t.Fatalf("exchange without credits: message = %q", denied.Message)
	}

	var recharged struct {
		Transaction struct {
			ID uint `json:"id"`
		} `json:"transaction"`
	}
	doJSON(t, http.MethodPost, ts.URL+"/api/wallet/recharge", buyerToken,
		map[string]any{"time_credits": 1}, http.StatusCreated, &recharged)

	var settled struct {
		Transaction struct {
			ID     uint   `json:"id"`
			Status string `json:"status"`
		} `json:"transaction"`
	}
	doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/skills/%d/exchange", ts.URL, skillID),
		buyerToken, nil, http.StatusCreated, &settled)
	if settled.Transaction.Status != "completed" {
		t.Fatalf("exchange status = %q", settled.Transaction.Status)
	}

	// The settlement shows up in the buyer's history
	var history struct {
		Transactions []struct {
			ID uint `json:"id"`
		} `json:"transactions"`
	}
	doJSON(t, http.MethodGet, ts.URL+"/api/transactions", buyerToken, nil, http.StatusOK, &history)
	seen := false
	for _, tx := range history.Transactions {
		if tx.ID == settled.Transaction.ID {
			seen = true
		}
	}
	if !seen {
		t.Fatalf("settled transaction %d missing from history", settled.Transaction.ID)
	}

	// Regular members are kept out of the admin surface
	var forbidden struct {
		Message string `json:"message"`
	}
	doJSON(t, http.MethodGet, ts.URL+"/api/admin/users", buyerToken, nil, http.StatusForbidden, &forbidden)
	if forbidden.Message != "Admin access required" {
		t.Fatalf("admin gate message = %q", forbidden.Message)
	}

	t.Logf("created %s and %s, posted skill %d, settled exchange %d", username, buyer, skillID, settled.Transaction.ID)
}

func register(t *testing.T, baseURL, username, email, password string) string {
	t.Helper()
	var out struct {
		AccessToken string `json:"access_token"`
	}
	doJSON(t, http.MethodPost, baseURL+"/api/auth/register", "", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}, http.StatusCreated, &out)
	return out.AccessToken
}

func login(t *testing.T, baseURL, email, password string) string {
	t.Helper()
	var out struct {
		AccessToken string `json:"access_token"`
	}
	doJSON(t, http.MethodPost, baseURL+"/api/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	}, http.StatusOK, &out)
	return out.AccessToken
}

func createSkill(t *testing.T, baseURL, token string, payload map[string]any) uint {
	t.Helper()
	var out struct {
		Skill struct {
			ID uint `json:"id"`
		} `json:"skill"`
	}
	doJSON(t, http.MethodPost, baseURL+"/api/skills", token, payload, http.StatusCreated, &out)
	return out.Skill.ID
}

func skillVisible(t *testing.T, baseURL, path, token string, skillID uint) bool {
	t.Helper()
	var out struct {
		Skills []struct {
			ID uint `json:"id"`
		} `json:"skills"`
	}
	doJSON(t, http.MethodGet, baseURL+path, token, nil, http.StatusOK, &out)
	for _, s := range out.Skills {
		if s.ID == skillID {
			return true
		}
	}
	return false
}

func doJSON(t *testing.T, method, url, token string, payload any, wantStatus int, out any) {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		t.Fatalf("%s %s status = %d, want %d", method, url, resp.StatusCode, wantStatus)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode %s %s response: %v", method, url, err)
	}
}
