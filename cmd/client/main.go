package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"tradecraft/internal/client/api"
	"tradecraft/internal/client/config"
	"tradecraft/internal/client/notify"
	"tradecraft/internal/client/session"
	"tradecraft/internal/client/view"
)

const usage = `Commands:
  home                 front page
  skills               browse active skill listings
  search <text>        search listings by text
  filter               advanced search with prompts
  details <id>         show one listing in full
  contact <id>         start a chat about a listing
  book <id>            pay for a listing and settle the exchange
  post                 list one of your skills
  my-skills            your own listings
  delete <id>          remove one of your listings
  wallet               balance and transaction history
  recharge             add funds or time credits to your wallet
  chats                your conversations
  open <id>            open a conversation
  msg <text>           send a message in the open conversation
  profile              your profile and reviews
  update-profile       change username or phone
  login                sign in
  register             create an account
  logout               sign out
  help                 this text
  quit                 exit`

func main() {
	server := flag.String("server", "", "API base URL (overrides TRADECRAFT_API_BASE)")
	flag.Parse()

	logrus.SetLevel(logrus.WarnLevel)
	if os.Getenv("TRADECRAFT_DEBUG") != "" {
		logrus.SetLevel(logrus.DebugLevel)
	}

	cfg := config.LoadConfig()
	if *server != "" {
		cfg.BaseURL = strings.TrimRight(*server, "/")
	}

	client := api.NewClient(cfg.BaseURL)
	store := session.NewStore(cfg.StateDir)
	toasts := notify.New(os.Stdout)
	app := view.NewApp(client, store, toasts, os.Stdout)

	fmt.Println("TradeCraft — trade skills, not just money. Type 'help' for commands.")
	app.Start()

	in := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !in.Scan() {
			break
		}
		line := strings.TrimSpace(in.Text())
		if line == "" {
			continue
		}
		cmd, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)

		switch cmd {
		case "home":
			app.Activate(view.ViewHome)
		case "skills":
			app.Activate(view.ViewSkills)
		case "search":
			app.Search(api.SkillQuery{Search: rest})
		case "filter":
			runFilter(app, in)
		case "details":
			if id, ok := parseID(rest, toasts); ok {
				app.ShowSkill(id)
			}
		case "contact":
			if id, ok := parseID(rest, toasts); ok {
				app.ContactProvider(id)
			}
		case "post":
			runPost(app, in)
		case "my-skills":
			app.Activate(view.ViewMySkills)
		case "delete":
			if id, ok := parseID(rest, toasts); ok {
				app.DeleteSkill(id)
			}
		case "book":
			if id, ok := parseID(rest, toasts); ok {
				app.BookSkill(id)
			}
		case "wallet":
			app.Activate(view.ViewWallet)
		case "recharge":
			runRecharge(app, in)
		case "chats":
			app.Activate(view.ViewChats)
		case "open":
			runOpen(app, toasts, rest)
		case "msg":
			app.SendMessage(rest)
		case "profile":
			app.Activate(view.ViewProfile)
		case "update-profile":
			username := prompt(in, "New username (blank to keep): ")
			phone := prompt(in, "New phone (blank to keep): ")
			app.UpdateProfile(username, phone)
		case "login":
			email := prompt(in, "Email: ")
			password := prompt(in, "Password: ")
			app.Login(email, password)
		case "register":
			runRegister(app, in)
		case "logout":
			app.Logout()
		case "help":
			fmt.Println(usage)
		case "quit", "exit":
			return
		default:
			toasts.Warning("Unknown command: " + cmd + " (try 'help')")
		}
	}
}

func prompt(in *bufio.Scanner, label string) string {
	fmt.Print(label)
	if !in.Scan() {
		return ""
	}
	return strings.TrimSpace(in.Text())
}

func parseID(s string, toasts *notify.Notifier) (uint, bool) {
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil || id == 0 {
		toasts.Warning("Expected a numeric id")
		return 0, false
	}
	return uint(id), true
}

func runOpen(app *view.App, toasts *notify.Notifier, rest string) {
	id, ok := parseID(rest, toasts)
	if !ok {
		return
	}
	app.OpenChatByID(id)
}

func runFilter(app *view.App, in *bufio.Scanner) {
	query := prompt(in, "Search text (blank for all): ")
	filters := api.SearchFilters{
		Category: prompt(in, "Category (blank for any): "),
		Location: prompt(in, "Location (blank for any): "),
	}
	if v := prompt(in, "Min time credits (blank for none): "); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filters.MinCredits = &n
		}
	}
	if v := prompt(in, "Max time credits (blank for none): "); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filters.MaxCredits = &n
		}
	}
	if v := prompt(in, "Max price (blank for none): "); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			filters.MaxPrice = &f
		}
	}
	app.AdvancedSearch(query, filters)
}

func runPost(app *view.App, in *bufio.Scanner) {
	skill := api.NewSkill{}
	if draft := app.Draft(); draft != nil {
		fmt.Println("Resuming your unsent listing. Press enter to keep a field.")
		skill = *draft
	}
	skill.Title = orKeep(prompt(in, "Title: "), skill.Title)
	skill.Description = orKeep(prompt(in, "Description: "), skill.Description)
	skill.Category = orKeep(prompt(in, "Category: "), skill.Category)
	skill.Location = orKeep(prompt(in, "Location (optional): "), skill.Location)
	if v := prompt(in, "Time credits: "); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			skill.TimeCredits = n
		}
	}
	if v := prompt(in, "Price in dollars (0 for free): "); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			skill.MonetaryPrice = f
		}
	}
	app.PostSkill(skill)
}

func runRecharge(app *view.App, in *bufio.Scanner) {
	var amount float64
	var credits int
	if v := prompt(in, "Amount in dollars (0 for none): "); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			amount = f
		}
	}
	if v := prompt(in, "Time credits (0 for none): "); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			credits = n
		}
	}
	app.Recharge(amount, credits)
}

func runRegister(app *view.App, in *bufio.Scanner) {
	params := api.RegisterParams{
		Username: prompt(in, "Username: "),
		Email:    prompt(in, "Email: "),
		Phone:    prompt(in, "Phone (optional): "),
		Password: prompt(in, "Password: "),
	}
	confirm := prompt(in, "Confirm password: ")
	app.Register(params, confirm)
}

func orKeep(entered, previous string) string {
	if entered != "" {
		return entered
	}
	return previous
}
