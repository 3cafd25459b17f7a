package view

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradecraft/internal/client/api"
	"tradecraft/internal/client/notify"
	"tradecraft/internal/client/session"
)

// fixture wires an App against a stub backend and captures its terminal output
type fixture struct {
	app      *App
	store    *session.Store
	out      *bytes.Buffer
	requests *int64
	server   *httptest.Server
}

func newFixture(t *testing.T, handler http.Handler) *fixture {
	t.Helper()
	var requests int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&requests, 1)
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(server.Close)

	out := &bytes.Buffer{}
	store := session.NewStore(t.TempDir())
	app := NewApp(api.NewClient(server.URL), store, notify.New(out), out)
	return &fixture{app: app, store: store, out: out, requests: &requests, server: server}
}

func (f *fixture) requestCount() int64 { return atomic.LoadInt64(f.requests) }

func jsonHandler(routes map[string]string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if body, ok := routes[r.Method+" "+r.URL.Path]; ok {
			w.Write([]byte(body))
			return
		}
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"not found"}`))
	})
}

func TestStartWithoutSessionShowsGuestHome(t *testing.T) {
	f := newFixture(t, jsonHandler(nil))
	f.app.Start()
	assert.Equal(t, ViewHome, f.app.Current())
	assert.Nil(t, f.app.CurrentUser())
	assert.Contains(t, f.out.String(), "Welcome to TradeCraft")
	assert.Zero(t, f.requestCount()) // home makes no calls when logged out
}

func TestLoginPersistsSessionAndGreetsUser(t *testing.T) {
	f := newFixture(t, jsonHandler(map[string]string{
		"POST /auth/login": `{"access_token":"t1","user":{"id":1,"username":"alice"}}`,
	}))
	f.app.Login("alice@example.com", "pw")

	assert.Equal(t, ViewHome, f.app.Current())
	require.NotNil(t, f.app.CurrentUser())
	assert.Equal(t, "alice", f.app.CurrentUser().Username)
	assert.Contains(t, f.out.String(), "Welcome back, alice!")

	// The session survives this run
	sess, err := f.store.Restore()
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, "t1", sess.Token)
	assert.Equal(t, uint(1), sess.User.ID)
}

func TestStartRestoresPersistedSession(t *testing.T) {
	f := newFixture(t, jsonHandler(nil))
	require.NoError(t, f.store.Save(&session.Session{
		Token: "t1",
		User:  api.User{ID: 1, Username: "alice"},
	}))
	f.app.Start()
	assert.Contains(t, f.out.String(), "Welcome back, alice!")
}

func TestLoginFailureShowsBackendMessage(t *testing.T) {
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Invalid email or password"}`))
	}))
	f.app.Login("alice@example.com", "wrong")

	assert.Nil(t, f.app.CurrentUser())
	assert.Contains(t, f.out.String(), "Invalid email or password")
}

func TestLogoutClearsSessionAndState(t *testing.T) {
	f := newFixture(t, jsonHandler(map[string]string{
		"POST /auth/login": `{"access_token":"t1","user":{"id":1,"username":"alice"}}`,
	}))
	f.app.Login("alice@example.com", "pw")
	f.app.Logout()

	assert.Nil(t, f.app.CurrentUser())
	assert.Zero(t, f.app.ActiveChat())
	sess, err := f.store.Restore()
	require.NoError(t, err)
	assert.Nil(t, sess)
	assert.Contains(t, f.out.String(), "Logged out successfully")
}

func TestRegisterPasswordMismatchMakesNoRequest(t *testing.T) {
	f := newFixture(t, jsonHandler(nil))
	f.app.Register(api.RegisterParams{Username: "a", Email: "a@b.c", Password: "one"}, "two")
	assert.Zero(t, f.requestCount())
	assert.Contains(t, f.out.String(), "Passwords do not match")
}

func TestSendMessageWithoutContentOrChatIsSilent(t *testing.T) {
	f := newFixture(t, jsonHandler(nil))

	f.app.SendMessage("")
	f.app.SendMessage("   \t ")
	assert.Zero(t, f.requestCount()) // nothing to say, nothing sent

	f.app.SendMessage("hello") // no active conversation
	assert.Zero(t, f.requestCount())
}

func TestSendMessageReloadsConversation(t *testing.T) {
	f := newFixture(t, jsonHandler(map[string]string{
		"POST /chats/3/messages": `{"data":{"id":9,"chat_id":3,"sender_id":1,"content":"hello"}}`,
		"GET /chats/3/messages":  `{"messages":[{"id":9,"chat_id":3,"sender_id":1,"content":"hello"}]}`,
	}))
	f.app.OpenChat(3, api.User{ID: 2, Username: "bob"})
	before := f.requestCount()
	f.app.SendMessage("hello")

	assert.Equal(t, before+2, f.requestCount()) // one send, one reload
	assert.Contains(t, f.out.String(), "hello")
}

func TestPostSkillKeepsDraftOnFailure(t *testing.T) {
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Token is missing"}`))
	}))
	f.app.PostSkill(api.NewSkill{Title: "Guitar lessons", Category: "music"})

	require.NotNil(t, f.app.Draft()) // the form is not reset on failure
	assert.Equal(t, "Guitar lessons", f.app.Draft().Title)
	assert.Contains(t, f.out.String(), "Token is missing")
}

func TestPostSkillSuccessClearsDraft(t *testing.T) {
	f := newFixture(t, jsonHandler(map[string]string{
		"POST /auth/login": `{"access_token":"t1","user":{"id":1,"username":"alice"}}`,
		"POST /skills":     `{"skill":{"id":5,"title":"Guitar lessons"}}`,
		"GET /user/skills": `{"skills":[{"id":5,"title":"Guitar lessons","category":"music","availability":"available"}]}`,
	}))
	f.app.Login("alice@example.com", "pw")
	f.app.PostSkill(api.NewSkill{Title: "Guitar lessons", Category: "music"})

	assert.Nil(t, f.app.Draft())
	assert.Equal(t, ViewMySkills, f.app.Current())
	assert.Contains(t, f.out.String(), "Skill posted successfully!")
	assert.Contains(t, f.out.String(), "Guitar lessons")
}

func TestMySkillsRequiresLogin(t *testing.T) {
	f := newFixture(t, jsonHandler(nil))
	f.app.Activate(ViewMySkills)

	assert.Equal(t, ViewLogin, f.app.Current())
	assert.Zero(t, f.requestCount())
	assert.Contains(t, f.out.String(), "Please login to view your skills")
}

func TestContactProviderRequiresLogin(t *testing.T) {
	f := newFixture(t, jsonHandler(nil))
	f.app.ContactProvider(7)

	assert.Equal(t, ViewLogin, f.app.Current())
	assert.Zero(t, f.requestCount())
	assert.Contains(t, f.out.String(), "Please login to contact skill providers")
}

func TestContactProviderOpensChats(t *testing.T) {
	f := newFixture(t, jsonHandler(map[string]string{
		"POST /auth/login": `{"access_token":"t1","user":{"id":1,"username":"alice"}}`,
		"POST /chats":      `{"chat":{"id":3,"user1_id":1,"user2_id":2}}`,
		"GET /chats":       `{"chats":[{"id":3,"user1_id":1,"user2_id":2,"user2":{"id":2,"username":"bob"}}]}`,
	}))
	f.app.Login("alice@example.com", "pw")
	f.app.ContactProvider(7)

	assert.Equal(t, ViewChats, f.app.Current())
	assert.Contains(t, f.out.String(), "Chat ready. Opening conversations...")
	assert.Contains(t, f.out.String(), "bob")
}

func TestNetworkFailureShowsGenericToast(t *testing.T) {
	f := newFixture(t, jsonHandler(nil))
	f.server.Close() // backend gone
	f.app.Activate(ViewSkills)
	assert.Contains(t, f.out.String(), "Network error. Please try again.")
}

func TestWalletViewShowsPerspective(t *testing.T) {
	f := newFixture(t, jsonHandler(map[string]string{
		"POST /auth/login":  `{"access_token":"t1","user":{"id":1,"username":"alice"}}`,
		"GET /wallet":       `{"wallet":{"time_credits":4,"balance":30}}`,
		"GET /transactions": `{"transactions":[{"id":1,"amount":10,"time_credits":1,"status":"completed","transaction_type":"skill_payment","from_user_id":1,"to_user_id":2,"sender":{"id":1,"username":"alice"},"receiver":{"id":2,"username":"bob"}}],"total":1}`,
	}))
	f.app.Login("alice@example.com", "pw")
	f.app.Activate(ViewWallet)

	out := f.out.String()
	assert.Contains(t, out, "Time credits: 4")
	assert.Contains(t, out, "Balance: $30.00")
	assert.Contains(t, out, "-$10.00") // alice is the sender, so it is a debit
	assert.Contains(t, out, "with bob")
}

func TestBookSkillRequiresLogin(t *testing.T) {
	f := newFixture(t, jsonHandler(nil))
	f.app.BookSkill(7)

	assert.Equal(t, ViewLogin, f.app.Current())
	assert.Zero(t, f.requestCount())
	assert.Contains(t, f.out.String(), "Please login to book a skill")
}

func TestBookSkillSettlesAndShowsWallet(t *testing.T) {
	f := newFixture(t, jsonHandler(map[string]string{
		"POST /auth/login":        `{"access_token":"t1","user":{"id":1,"username":"alice"}}`,
		"POST /skills/7/exchange": `{"transaction":{"id":4,"amount":20,"time_credits":2,"status":"completed","from_user_id":1,"to_user_id":2}}`,
		"GET /wallet":             `{"wallet":{"time_credits":3,"balance":10}}`,
		"GET /transactions":       `{"transactions":[{"id":4,"amount":20,"time_credits":2,"status":"completed","transaction_type":"skill_exchange","from_user_id":1,"to_user_id":2,"sender":{"id":1,"username":"alice"},"receiver":{"id":2,"username":"bob"}}],"total":1}`,
	}))
	f.app.Login("alice@example.com", "pw")
	f.app.BookSkill(7)

	out := f.out.String()
	assert.Equal(t, ViewWallet, f.app.Current())
	assert.Contains(t, out, "Exchange completed!")
	assert.Contains(t, out, "Balance: $10.00")
	assert.Contains(t, out, "-$20.00") // alice paid, so the exchange is a debit
}

func TestBookSkillSurfacesInsufficientFunds(t *testing.T) {
	f := newFixture(t, jsonHandler(map[string]string{
		"POST /auth/login": `{"access_token":"t1","user":{"id":1,"username":"alice"}}`,
	}))
	f.app.Login("alice@example.com", "pw")
	f.out.Reset()
	f.app.BookSkill(7) // stub answers 404 {"message":"not found"} for the exchange

	assert.Contains(t, f.out.String(), "not found")
	assert.NotContains(t, f.out.String(), "Exchange completed!")
}

func TestRechargeShowsUpdatedWallet(t *testing.T) {
	f := newFixture(t, jsonHandler(map[string]string{
		"POST /auth/login":      `{"access_token":"t1","user":{"id":1,"username":"alice"}}`,
		"POST /wallet/recharge": `{"transaction":{"id":5,"amount":50,"status":"completed","transaction_type":"recharge","from_user_id":1,"to_user_id":1}}`,
		"GET /wallet":           `{"wallet":{"time_credits":0,"balance":50}}`,
		"GET /transactions":     `{"transactions":[],"total":0}`,
	}))
	f.app.Login("alice@example.com", "pw")
	f.app.Recharge(50, 0)

	out := f.out.String()
	assert.Contains(t, out, "Wallet recharged!")
	assert.Contains(t, out, "Balance: $50.00")
}

func TestOpenChatByIDResolvesPeer(t *testing.T) {
	f := newFixture(t, jsonHandler(map[string]string{
		"POST /auth/login":      `{"access_token":"t1","user":{"id":1,"username":"alice"}}`,
		"GET /chats":            `{"chats":[{"id":3,"user1_id":1,"user2_id":2,"user1":{"id":1,"username":"alice"},"user2":{"id":2,"username":"bob"}}]}`,
		"GET /chats/3/messages": `{"messages":[]}`,
	}))
	f.app.Login("alice@example.com", "pw")
	f.app.OpenChatByID(3)

	assert.Equal(t, uint(3), f.app.ActiveChat())
	assert.Contains(t, f.out.String(), "Chat with bob")
}

func TestOpenChatByIDUnknownConversation(t *testing.T) {
	f := newFixture(t, jsonHandler(map[string]string{
		"POST /auth/login": `{"access_token":"t1","user":{"id":1,"username":"alice"}}`,
		"GET /chats":       `{"chats":[]}`,
	}))
	f.app.Login("alice@example.com", "pw")
	f.app.OpenChatByID(9)

	assert.Zero(t, f.app.ActiveChat())
	assert.Contains(t, f.out.String(), "Conversation not found")
}

func TestLoadGuardSupersedesOlderLoad(t *testing.T) {
	g := newLoadGuard()

	ctx1, fresh1 := g.begin(ViewSkills)
	ctx2, fresh2 := g.begin(ViewSkills)

	assert.Error(t, ctx1.Err()) // the first load's context is cancelled
	assert.NoError(t, ctx2.Err())
	assert.False(t, fresh1()) // a late first response must be discarded
	assert.True(t, fresh2())
}

func TestLoadGuardTracksViewsIndependently(t *testing.T) {
	g := newLoadGuard()

	ctxSkills, freshSkills := g.begin(ViewSkills)
	ctxWallet, freshWallet := g.begin(ViewWallet)

	assert.NoError(t, ctxSkills.Err()) // a wallet load does not cancel skills
	assert.NoError(t, ctxWallet.Err())
	assert.True(t, freshSkills())
	assert.True(t, freshWallet())
}
