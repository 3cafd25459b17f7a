package view

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"tradecraft/internal/client/api"
	"tradecraft/internal/client/notify"
	"tradecraft/internal/client/session"
)

// View names a logical screen. Exactly one view is current at a time; there
// is no history stack.
type View string

const (
	ViewHome      View = "home"
	ViewSkills    View = "skills"
	ViewLogin     View = "login"
	ViewRegister  View = "register"
	ViewPostSkill View = "post-skill"
	ViewWallet    View = "wallet"
	ViewChats     View = "chats"
	ViewProfile   View = "profile"
	ViewMySkills  View = "my-skills"
)

// viewMessages keys the message loader in the load guard; it is not a
// navigable view of its own, messages render inside the chats screen.
const viewMessages View = "messages"

// loadGuard serializes view loads: beginning a load for a view cancels the
// previous in-flight load for the same view and marks it stale, so a
// superseded request's late response is discarded instead of racing the
// newest one.
type loadGuard struct {
	mu     sync.Mutex
	seq    map[View]uint64
	cancel map[View]context.CancelFunc
}

func newLoadGuard() *loadGuard {
	return &loadGuard{
		seq:    make(map[View]uint64),
		cancel: make(map[View]context.CancelFunc),
	}
}

// begin starts a load for v. The returned fresh func reports whether this
// load is still the current one for its view.
func (g *loadGuard) begin(v View) (context.Context, func() bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if cancel := g.cancel[v]; cancel != nil {
		cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	g.cancel[v] = cancel
	g.seq[v]++
	mine := g.seq[v]
	fresh := func() bool {
		g.mu.Lock()
		defer g.mu.Unlock()
		return g.seq[v] == mine
	}
	return ctx, fresh
}

// App owns all client-side state: the session, the current view and the
// active conversation. Handlers receive it explicitly; nothing lives in
// package-level variables.
type App struct {
	api    *api.Client
	store  *session.Store
	toasts *notify.Notifier
	out    io.Writer
	loads  *loadGuard

	mu       sync.Mutex
	sess     *session.Session
	current  View
	chatID   uint
	chatPeer api.User
	draft    *api.NewSkill
}

// NewApp wires the client layers together
func NewApp(client *api.Client, store *session.Store, toasts *notify.Notifier, out io.Writer) *App {
	return &App{
		api:    client,
		store:  store,
		toasts: toasts,
		out:    out,
		loads:  newLoadGuard(),
	}
}

// Start restores any persisted session and lands on the home view
func (a *App) Start() {
	sess, err := a.store.Restore()
	if err != nil {
		a.toasts.Warning("Could not restore saved session")
		logrus.WithError(err).Debug("session restore")
	}
	if sess != nil {
		a.mu.Lock()
		a.sess = sess
		a.mu.Unlock()
		a.api.SetToken(sess.Token)
	}
	a.Activate(ViewHome)
}

// Activate makes v the current view and runs its loader unconditionally.
// Views without associated data (login, register, post-skill) just switch.
func (a *App) Activate(v View) {
	a.mu.Lock()
	a.current = v
	a.mu.Unlock()
	fmt.Fprintf(a.out, "\n%s== %s ==%s\n", ansiBold, v, ansiReset)
	switch v {
	case ViewHome:
		a.renderHome()
	case ViewSkills:
		a.loadSkills(api.SkillQuery{})
	case ViewWallet:
		a.loadWallet()
	case ViewChats:
		a.loadChats()
	case ViewProfile:
		a.loadProfile()
	case ViewMySkills:
		a.loadMySkills()
	case ViewLogin:
		fmt.Fprintln(a.out, "Use the login command to sign in.")
	case ViewRegister:
		fmt.Fprintln(a.out, "Use the register command to create an account.")
	case ViewPostSkill:
		fmt.Fprintln(a.out, "Use the post command to list a skill.")
	}
}

// Current returns the current view
func (a *App) Current() View {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

// CurrentUser returns the logged-in user, nil when logged out
func (a *App) CurrentUser() *api.User {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.sess == nil {
		return nil
	}
	u := a.sess.User
	return &u
}

// ActiveChat returns the active conversation id, zero when none is open
func (a *App) ActiveChat() uint {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.chatID
}

// Draft returns the unsent post-skill form, nil once a post succeeds
func (a *App) Draft() *api.NewSkill {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.draft
}

// toastMessage picks the user-facing text for a failed call: the backend's
// own words when it sent any, a generic network line otherwise.
func toastMessage(err error, fallback string) string {
	var httpErr *api.HTTPError
	if errors.As(err, &httpErr) && httpErr.Message != "" {
		return httpErr.Message
	}
	var netErr *api.NetworkError
	if errors.As(err, &netErr) {
		return "Network error. Please try again."
	}
	return fallback
}

// ----- Auth -----

// Login authenticates and, on success, persists the session and goes home
func (a *App) Login(email, password string) {
	ctx, fresh := a.loads.begin(ViewLogin)
	res, err := a.api.Login(ctx, email, password)
	if !fresh() {
		return
	}
	if err != nil {
		a.toasts.Error(toastMessage(err, "Login failed"), err)
		return
	}
	a.establishSession(res)
	a.toasts.Success("Login successful!")
	a.Activate(ViewHome)
}

// Register creates an account and, on success, behaves like a login
func (a *App) Register(params api.RegisterParams, confirmPassword string) {
	if params.Password != confirmPassword {
		a.toasts.Error("Passwords do not match", nil)
		return
	}
	ctx, fresh := a.loads.begin(ViewRegister)
	res, err := a.api.Register(ctx, params)
	if !fresh() {
		return
	}
	if err != nil {
		a.toasts.Error(toastMessage(err, "Registration failed"), err)
		return
	}
	a.establishSession(res)
	a.toasts.Success("Registration successful!")
	a.Activate(ViewHome)
}

// establishSession installs and persists a fresh token/user pair
func (a *App) establishSession(res *api.AuthResult) {
	sess := &session.Session{Token: res.AccessToken, User: res.User}
	a.mu.Lock()
	a.sess = sess
	a.mu.Unlock()
	a.api.SetToken(res.AccessToken)
	if err := a.store.Save(sess); err != nil {
		// The login still holds for this run; only persistence failed
		a.toasts.Warning("Could not save session")
		logrus.WithError(err).Debug("session save")
	}
}

// Logout clears the persisted session and returns home
func (a *App) Logout() {
	if err := a.store.Clear(); err != nil {
		logrus.WithError(err).Debug("session clear")
	}
	a.api.ClearToken()
	a.mu.Lock()
	a.sess = nil
	a.chatID = 0
	a.chatPeer = api.User{}
	a.mu.Unlock()
	a.toasts.Success("Logged out successfully")
	a.Activate(ViewHome)
}

// ----- Home -----

func (a *App) renderHome() {
	if user := a.CurrentUser(); user != nil {
		fmt.Fprintf(a.out, "Welcome back, %s!\n", Sanitize(user.Username))
		return
	}
	fmt.Fprintln(a.out, "Welcome to TradeCraft. Browse skills, or login to trade.")
}

// ----- Skills -----

// loadSkills fetches listings and, for logged-in users, the extras shown on
// the browse screen. Failures of the extras stay quiet beyond a diagnostic
// entry, matching how little the user can do about them.
func (a *App) loadSkills(q api.SkillQuery) {
	ctx, fresh := a.loads.begin(ViewSkills)
	page, err := a.api.Skills(ctx, q)
	if !fresh() {
		return
	}
	if err != nil {
		a.toasts.Error(toastMessage(err, "Failed to load skills"), err)
		return
	}
	fmt.Fprint(a.out, SkillList(page.Skills))
	if a.CurrentUser() == nil {
		return
	}
	if suggestions, err := a.api.Suggestions(ctx); err == nil && len(suggestions) > 0 && fresh() {
		fmt.Fprint(a.out, SuggestionList(suggestions))
	} else if err != nil {
		logrus.WithError(err).Debug("load suggestions")
	}
	if categories, err := a.api.PopularCategories(ctx); err == nil && len(categories) > 0 && fresh() {
		fmt.Fprint(a.out, CategoryList(categories))
	} else if err != nil {
		logrus.WithError(err).Debug("load popular categories")
	}
	if stats, err := a.api.UserStats(ctx); err == nil && fresh() {
		fmt.Fprint(a.out, StatsLine(*stats))
	} else if err != nil {
		logrus.WithError(err).Debug("load user stats")
	}
}

// Search narrows the skills view by free text and simple filters
func (a *App) Search(q api.SkillQuery) {
	a.mu.Lock()
	a.current = ViewSkills
	a.mu.Unlock()
	a.loadSkills(q)
}

// AdvancedSearch runs the structured search endpoint
func (a *App) AdvancedSearch(query string, filters api.SearchFilters) {
	a.mu.Lock()
	a.current = ViewSkills
	a.mu.Unlock()
	ctx, fresh := a.loads.begin(ViewSkills)
	skills, total, err := a.api.SearchSkills(ctx, query, filters)
	if !fresh() {
		return
	}
	if err != nil {
		a.toasts.Error(toastMessage(err, "Search failed"), err)
		return
	}
	fmt.Fprint(a.out, SkillList(skills))
	a.toasts.Success(fmt.Sprintf("Found %d skills matching your criteria", total))
}

// ShowSkill renders the full details of one listing
func (a *App) ShowSkill(id uint) {
	ctx, fresh := a.loads.begin(ViewSkills)
	skill, err := a.api.Skill(ctx, id)
	if !fresh() {
		return
	}
	if err != nil {
		a.toasts.Error(toastMessage(err, "Failed to load skill details"), err)
		return
	}
	fmt.Fprint(a.out, SkillDetails(*skill))
}

// PostSkill submits the post-skill form. The draft survives a failed post,
// the caller can resubmit without retyping; success clears it.
func (a *App) PostSkill(skill api.NewSkill) {
	a.mu.Lock()
	a.draft = &skill
	a.mu.Unlock()
	ctx, fresh := a.loads.begin(ViewPostSkill)
	_, err := a.api.CreateSkill(ctx, skill)
	if !fresh() {
		return
	}
	if err != nil {
		a.toasts.Error("Failed to post skill: "+toastMessage(err, "please try again"), err)
		return
	}
	a.mu.Lock()
	a.draft = nil
	a.mu.Unlock()
	a.toasts.Success("Skill posted successfully!")
	a.Activate(ViewMySkills)
}

// DeleteSkill removes one of the user's own listings and refreshes the view
func (a *App) DeleteSkill(id uint) {
	ctx, fresh := a.loads.begin(ViewMySkills)
	if err := a.api.DeleteSkill(ctx, id); err != nil {
		if fresh() {
			a.toasts.Error(toastMessage(err, "Failed to delete skill"), err)
		}
		return
	}
	if !fresh() {
		return
	}
	a.toasts.Success("Skill deleted successfully")
	a.loadMySkills()
}

func (a *App) loadMySkills() {
	if a.CurrentUser() == nil || a.api.Token() == "" {
		a.toasts.Warning("Please login to view your skills")
		a.Activate(ViewLogin)
		return
	}
	ctx, fresh := a.loads.begin(ViewMySkills)
	skills, err := a.api.UserSkills(ctx)
	if !fresh() {
		return
	}
	if err != nil {
		a.toasts.Error(toastMessage(err, "Failed to load your skills"), err)
		return
	}
	fmt.Fprint(a.out, MySkillList(skills))
}

// BookSkill settles an exchange for the listing and shows the updated wallet
func (a *App) BookSkill(skillID uint) {
	if a.CurrentUser() == nil {
		a.toasts.Warning("Please login to book a skill")
		a.Activate(ViewLogin)
		return
	}
	ctx, fresh := a.loads.begin(ViewWallet)
	if _, err := a.api.ExchangeSkill(ctx, skillID); err != nil {
		if fresh() {
			a.toasts.Error(toastMessage(err, "Failed to book skill"), err)
		}
		return
	}
	if !fresh() {
		return
	}
	a.toasts.Success("Exchange completed!")
	a.Activate(ViewWallet)
}

// Recharge funds the wallet and shows the updated balance
func (a *App) Recharge(amount float64, timeCredits int) {
	if a.CurrentUser() == nil {
		a.toasts.Warning("Please login to recharge your wallet")
		a.Activate(ViewLogin)
		return
	}
	ctx, fresh := a.loads.begin(ViewWallet)
	if _, err := a.api.RechargeWallet(ctx, amount, timeCredits); err != nil {
		if fresh() {
			a.toasts.Error(toastMessage(err, "Failed to recharge wallet"), err)
		}
		return
	}
	if !fresh() {
		return
	}
	a.toasts.Success("Wallet recharged!")
	a.Activate(ViewWallet)
}

// ----- Wallet -----

func (a *App) loadWallet() {
	ctx, fresh := a.loads.begin(ViewWallet)
	wallet, err := a.api.Wallet(ctx)
	if !fresh() {
		return
	}
	if err != nil {
		a.toasts.Error(toastMessage(err, "Failed to load wallet"), err)
		return
	}
	fmt.Fprint(a.out, WalletView(*wallet))
	transactions, total, err := a.api.Transactions(ctx)
	if !fresh() {
		return
	}
	if err != nil {
		a.toasts.Error(toastMessage(err, "Failed to load transactions"), err)
		return
	}
	var userID uint
	if user := a.CurrentUser(); user != nil {
		userID = user.ID
	}
	fmt.Fprintf(a.out, "Transactions (%d):\n", total)
	fmt.Fprint(a.out, TransactionList(transactions, userID))
}

// ----- Chats -----

func (a *App) loadChats() {
	ctx, fresh := a.loads.begin(ViewChats)
	chats, err := a.api.Chats(ctx)
	if !fresh() {
		return
	}
	if err != nil {
		a.toasts.Error(toastMessage(err, "Failed to load chats"), err)
		return
	}
	var userID uint
	if user := a.CurrentUser(); user != nil {
		userID = user.ID
	}
	fmt.Fprint(a.out, ChatList(chats, userID))
}

// ContactProvider opens (or finds) a conversation about a listing
func (a *App) ContactProvider(skillID uint) {
	if a.CurrentUser() == nil {
		a.toasts.Warning("Please login to contact skill providers")
		a.Activate(ViewLogin)
		return
	}
	ctx, fresh := a.loads.begin(ViewChats)
	if _, err := a.api.CreateChat(ctx, skillID); err != nil {
		if fresh() {
			a.toasts.Error(toastMessage(err, "Failed to start chat"), err)
		}
		return
	}
	if !fresh() {
		return
	}
	a.toasts.Success("Chat ready. Opening conversations...")
	a.Activate(ViewChats)
}

// OpenChatByID resolves the conversation's peer from the chat list and opens
// it, so a chat opened by bare id still shows who it is with
func (a *App) OpenChatByID(chatID uint) {
	ctx, fresh := a.loads.begin(ViewChats)
	chats, err := a.api.Chats(ctx)
	if !fresh() {
		return
	}
	if err != nil {
		a.toasts.Error(toastMessage(err, "Failed to load chats"), err)
		return
	}
	var userID uint
	if user := a.CurrentUser(); user != nil {
		userID = user.ID
	}
	for _, chat := range chats {
		if chat.ID != chatID {
			continue
		}
		peer := api.User{}
		if p := chat.Peer(userID); p != nil {
			peer = *p
		}
		a.OpenChat(chatID, peer)
		return
	}
	a.toasts.Warning("Conversation not found")
}

// OpenChat makes the conversation the active one and loads its messages
func (a *App) OpenChat(chatID uint, peer api.User) {
	a.mu.Lock()
	a.chatID = chatID
	a.chatPeer = peer
	a.mu.Unlock()
	if peer.Username != "" {
		fmt.Fprintf(a.out, "Chat with %s\n", Sanitize(peer.Username))
	} else {
		fmt.Fprintf(a.out, "Chat #%d\n", chatID)
	}
	a.loadMessages(chatID)
}

func (a *App) loadMessages(chatID uint) {
	ctx, fresh := a.loads.begin(viewMessages)
	messages, err := a.api.Messages(ctx, chatID)
	if !fresh() {
		return
	}
	if err != nil {
		a.toasts.Error(toastMessage(err, "Failed to load messages"), err)
		return
	}
	var userID uint
	if user := a.CurrentUser(); user != nil {
		userID = user.ID
	}
	fmt.Fprint(a.out, MessageList(messages, userID))
}

// SendMessage posts to the active conversation and reloads its messages.
// With no active conversation, or nothing to say, it does nothing at all:
// no request leaves the client.
func (a *App) SendMessage(content string) {
	content = strings.TrimSpace(content)
	a.mu.Lock()
	chatID := a.chatID
	a.mu.Unlock()
	if content == "" || chatID == 0 {
		return
	}
	ctx, fresh := a.loads.begin(viewMessages)
	if _, err := a.api.SendMessage(ctx, chatID, content); err != nil {
		if fresh() {
			a.toasts.Error(toastMessage(err, "Failed to send message"), err)
		}
		return
	}
	if !fresh() {
		return
	}
	a.loadMessages(chatID)
}

// ----- Profile -----

func (a *App) loadProfile() {
	ctx, fresh := a.loads.begin(ViewProfile)
	user, err := a.api.Profile(ctx)
	if !fresh() {
		return
	}
	if err != nil {
		a.toasts.Error(toastMessage(err, "Failed to load profile"), err)
		return
	}
	fmt.Fprint(a.out, ProfileView(*user))
	reviews, err := a.api.UserReviews(ctx, user.ID)
	if !fresh() {
		return
	}
	if err != nil {
		a.toasts.Error(toastMessage(err, "Failed to load reviews"), err)
		return
	}
	fmt.Fprint(a.out, ReviewList(reviews))
}

// UpdateProfile changes username/phone and refreshes the cached session user
func (a *App) UpdateProfile(username, phone string) {
	ctx, fresh := a.loads.begin(ViewProfile)
	user, err := a.api.UpdateProfile(ctx, username, phone)
	if !fresh() {
		return
	}
	if err != nil {
		a.toasts.Error(toastMessage(err, "Failed to update profile"), err)
		return
	}
	a.mu.Lock()
	if a.sess != nil {
		a.sess.User = *user
		if err := a.store.Save(a.sess); err != nil {
			logrus.WithError(err).Debug("session save")
		}
	}
	a.mu.Unlock()
	a.toasts.Success("Profile updated successfully!")
}
