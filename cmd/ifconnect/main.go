package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/prometheus/common/expfmt"
	"go.uber.org/zap"

	authapp "github.com/ifconnect/client/internal/application/auth"
	eventapp "github.com/ifconnect/client/internal/application/event"
	followapp "github.com/ifconnect/client/internal/application/follow"
	notificationapp "github.com/ifconnect/client/internal/application/notification"
	"github.com/ifconnect/client/internal/application/optimistic"
	postapp "github.com/ifconnect/client/internal/application/post"
	"github.com/ifconnect/client/internal/application/session"
	"github.com/ifconnect/client/internal/domain/social"
	"github.com/ifconnect/client/internal/infrastructure/api"
	"github.com/ifconnect/client/internal/infrastructure/config"
	"github.com/ifconnect/client/internal/infrastructure/demo"
	"github.com/ifconnect/client/internal/infrastructure/logger"
	"github.com/ifconnect/client/internal/infrastructure/metrics"
	"github.com/ifconnect/client/internal/infrastructure/oauth"
	"github.com/ifconnect/client/internal/infrastructure/persistence"
	"github.com/ifconnect/client/internal/interfaces/cli"
)

const usage = `ifconnect - campus social network client

Usage:
  ifconnect login <email> <password>   sign in with credentials
  ifconnect login --browser            sign in through the browser
  ifconnect register <username> <email> <password> [campusId]
  ifconnect logout
  ifconnect whoami
  ifconnect feed [global|following|regional]
  ifconnect post <content> [imagePath]
  ifconnect like <postId>
  ifconnect comment <postId> <text>
  ifconnect profile [userId]
  ifconnect follow <userId>
  ifconnect unfollow <userId>
  ifconnect suggestions
  ifconnect notifications
  ifconnect watch                      stream the unread badge until interrupted
  ifconnect events
  ifconnect event-create <title> <date> [location]
  ifconnect event-toggle <eventId>
  ifconnect metrics
`

// commandRoutes maps subcommands to the view the route guard inspects.
var commandRoutes = map[string]cli.Route{
	"login":         cli.RouteLogin,
	"register":      cli.RouteRegister,
	"feed":          cli.RouteFeed,
	"post":          cli.RouteFeed,
	"like":          cli.RouteFeed,
	"comment":       cli.RouteFeed,
	"profile":       cli.RouteProfile,
	"follow":        cli.RouteProfile,
	"unfollow":      cli.RouteProfile,
	"suggestions":   cli.RouteProfile,
	"notifications": cli.RouteNotifications,
	"watch":         cli.RouteNotifications,
	"events":        cli.RouteEvents,
	"event-create":  cli.RouteEvents,
	"event-toggle":  cli.RouteEvents,
}

type app struct {
	cfg      *config.Config
	log      *zap.Logger
	sessions *session.Store
	requests *metrics.Requests

	auth          *authapp.Service
	posts         *postapp.Service
	follows       *followapp.Service
	notifications *notificationapp.Service
	events        *eventapp.Service
	toggles       *optimistic.Engine

	feedView          *cli.FeedView
	profileView       *cli.ProfileView
	notificationsView *cli.NotificationsView
	eventsView        *cli.EventsView
	router            *cli.Router
}

func main() {
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration error:", err)
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger error:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(cfg, log)
	if err != nil {
		log.Error("startup failed", zap.Error(err))
		os.Exit(1)
	}
	defer a.close()

	if err := a.run(ctx, args); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newApp(cfg *config.Config, log *zap.Logger) (*app, error) {
	db, err := persistence.Open(cfg.Store.Path, log)
	if err != nil {
		return nil, err
	}
	sessions := session.NewStore(persistence.NewLocalStore(db), log)

	var requests *metrics.Requests
	if cfg.Metrics.Enabled {
		requests = metrics.NewRequests()
	}

	client, err := api.New(api.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
		Tokens:  sessions,
		Metrics: requests,
		Logger:  log,
	})
	if err != nil {
		return nil, err
	}

	toggles := optimistic.NewEngine(log)

	a := &app{
		cfg:      cfg,
		log:      log,
		sessions: sessions,
		requests: requests,
		toggles:  toggles,

		auth:          authapp.NewService(client, sessions, log),
		follows:       followapp.NewService(client, sessions, log),
		notifications: notificationapp.NewService(client, sessions, log),
	}
	a.posts = postapp.NewService(client, sessions, toggles, log)
	a.events = eventapp.NewService(client, sessions, toggles, log)

	var demoData *demo.Dataset
	if cfg.App.DemoMode {
		demoData = demo.Generate()
	}
	radius := float64(cfg.App.RadiusKm)

	a.feedView = cli.NewFeedView(a.posts, a.auth, demoData, radius, os.Stdout, log)
	a.profileView = cli.NewProfileView(a.auth, a.posts, a.follows, sessions, os.Stdout, log)
	a.notificationsView = cli.NewNotificationsView(a.notifications, os.Stdout, log)
	a.eventsView = cli.NewEventsView(a.events, sessions, os.Stdout, log)
	a.router = cli.NewRouter(sessions, log)
	return a, nil
}

func (a *app) close() {
	a.toggles.Close()
	a.sessions.Close()
}

func (a *app) run(ctx context.Context, args []string) error {
	command, rest := args[0], args[1:]

	// Rehydrate before any route decision.
	if err := a.sessions.Load(ctx); err != nil {
		return err
	}

	if requested, guarded := commandRoutes[command]; guarded {
		switch resolved := a.router.Resolve(requested); {
		case resolved == cli.RouteLogin && requested != cli.RouteLogin:
			return fmt.Errorf("sign in first: ifconnect login <email> <password>")
		case resolved == cli.RouteFeed && requested == cli.RouteLogin && command == "login" && len(rest) > 0 && rest[0] != "--browser":
			user := a.sessions.Current().User
			fmt.Printf("Already signed in as %s.\n", user.DisplayName())
			return a.feedView.Render(ctx, postapp.FeedGlobal)
		case resolved == cli.RouteFeed && requested == cli.RouteRegister:
			fmt.Println("Already signed in.")
			return a.feedView.Render(ctx, postapp.FeedGlobal)
		}
	}

	switch command {
	case "login":
		return a.cmdLogin(ctx, rest)
	case "register":
		return a.cmdRegister(ctx, rest)
	case "logout":
		return a.auth.Logout(ctx)
	case "whoami":
		return a.cmdWhoami()
	case "feed":
		return a.cmdFeed(ctx, rest)
	case "post":
		return a.cmdPost(ctx, rest)
	case "like":
		return a.cmdLike(ctx, rest)
	case "comment":
		return a.cmdComment(ctx, rest)
	case "profile":
		return a.cmdProfile(ctx, rest)
	case "follow", "unfollow":
		return a.cmdFollowEdge(ctx, command, rest)
	case "suggestions":
		return a.cmdSuggestions(ctx)
	case "notifications":
		if err := a.notificationsView.Badge(ctx); err != nil {
			a.log.Debug("badge unavailable", zap.Error(err))
		}
		return a.notificationsView.Render(ctx)
	case "watch":
		return a.cmdWatch(ctx)
	case "events":
		return a.eventsView.Render(ctx)
	case "event-create":
		return a.cmdEventCreate(ctx, rest)
	case "event-toggle":
		return a.cmdEventToggle(ctx, rest)
	case "metrics":
		return a.cmdMetrics()
	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func (a *app) cmdLogin(ctx context.Context, args []string) error {
	if len(args) == 1 && args[0] == "--browser" {
		return a.browserLogin(ctx)
	}
	if len(args) != 2 {
		return fmt.Errorf("usage: ifconnect login <email> <password>")
	}
	user, err := a.auth.Login(ctx, authapp.LoginInput{Email: args[0], Password: args[1]})
	if err != nil {
		return err
	}
	fmt.Printf("Signed in as %s.\n", user.DisplayName())
	return nil
}

func (a *app) browserLogin(ctx context.Context) error {
	listener := oauth.NewListener(a.cfg.OAuth.ListenAddr, a.log)
	if err := listener.Listen(); err != nil {
		return err
	}
	fmt.Printf("Open %s/oauth/authorize?redirect=http://%s/callback in your browser.\n",
		a.cfg.API.BaseURL, listener.Addr())

	cb, err := listener.Wait(ctx)
	if err != nil {
		return err
	}

	// Establish the token first so the user lookup is authenticated.
	if err := a.sessions.Login(ctx, social.User{ID: cb.UserID}, cb.Token); err != nil {
		return err
	}
	user, err := a.auth.GetUser(ctx, cb.UserID)
	if err != nil {
		_ = a.sessions.Logout(ctx)
		return err
	}
	if err := a.sessions.UpdateUser(ctx, *user); err != nil {
		return err
	}
	fmt.Printf("Signed in as %s.\n", user.DisplayName())
	return nil
}

func (a *app) cmdRegister(ctx context.Context, args []string) error {
	if len(args) < 3 || len(args) > 4 {
		return fmt.Errorf("usage: ifconnect register <username> <email> <password> [campusId]")
	}
	input := authapp.RegisterInput{Username: args[0], Email: args[1], Password: args[2]}
	if len(args) == 4 {
		campusID, err := strconv.ParseInt(args[3], 10, 64)
		if err != nil {
			return fmt.Errorf("campusId must be a number")
		}
		input.CampusID = campusID
	}
	user, err := a.auth.Register(ctx, input)
	if err != nil {
		return err
	}
	fmt.Printf("Account %s created. Sign in with: ifconnect login %s <password>\n",
		user.DisplayName(), user.Email)
	return nil
}

func (a *app) cmdWhoami() error {
	snapshot := a.sessions.Current()
	if snapshot.State != session.StateAuthenticated || snapshot.User == nil {
		fmt.Println("Not signed in.")
		return nil
	}
	fmt.Printf("%s <%s>", snapshot.User.DisplayName(), snapshot.User.Email)
	if snapshot.User.HasCampus() {
		fmt.Printf(" (campus %d)", snapshot.User.CampusID)
	}
	fmt.Println()
	return nil
}

func (a *app) cmdFeed(ctx context.Context, args []string) error {
	mode := postapp.FeedGlobal
	if len(args) > 0 {
		switch args[0] {
		case "global":
		case "following":
			mode = postapp.FeedFollowing
		case "regional":
			mode = postapp.FeedRegional
		default:
			return fmt.Errorf("feed mode must be global, following or regional")
		}
	}
	return a.feedView.Render(ctx, mode)
}

func (a *app) cmdPost(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("usage: ifconnect post <content> [imagePath]")
	}
	input := postapp.CreateInput{Content: args[0]}
	if len(args) == 2 {
		image, err := os.ReadFile(args[1])
		if err != nil {
			return fmt.Errorf("reading image: %w", err)
		}
		input.Image = image
		input.ImageFilename = filepath.Base(args[1])
	}
	return a.feedView.Publish(ctx, input)
}

func (a *app) cmdLike(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: ifconnect like <postId>")
	}
	index, err := a.loadFeedAndFind(ctx, social.PostID(args[0]))
	if err != nil {
		return err
	}
	done, err := a.feedView.Like(ctx, index)
	if err != nil {
		return err
	}
	result := <-done
	if result.Err != nil {
		return fmt.Errorf("like was rolled back: %w", result.Err)
	}
	p := a.feedView.Posts()[index]
	fmt.Printf("%d likes on %q\n", p.LikeCount(), p.Content)
	return nil
}

func (a *app) cmdComment(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: ifconnect comment <postId> <text>")
	}
	index, err := a.loadFeedAndFind(ctx, social.PostID(args[0]))
	if err != nil {
		return err
	}
	return a.feedView.Comment(ctx, index, args[1])
}

// loadFeedAndFind renders the global feed quietly enough to address a post
// by its identifier and returns its on-screen index.
func (a *app) loadFeedAndFind(ctx context.Context, id social.PostID) (int, error) {
	if err := a.feedView.Render(ctx, postapp.FeedGlobal); err != nil {
		return 0, err
	}
	for i, p := range a.feedView.Posts() {
		if p.ID == id {
			return i, nil
		}
	}
	return 0, fmt.Errorf("post %s not found in the feed", id)
}

func (a *app) cmdProfile(ctx context.Context, args []string) error {
	snapshot := a.sessions.Current()
	target := snapshot.User.ID
	if len(args) == 1 {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("userId must be a number")
		}
		target = social.UserID(id)
	}
	return a.profileView.Render(ctx, target)
}

func (a *app) cmdFollowEdge(ctx context.Context, command string, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: ifconnect %s <userId>", command)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("userId must be a number")
	}
	target := social.UserID(id)
	if command == "follow" {
		if err := a.follows.Follow(ctx, target); err != nil {
			return err
		}
		fmt.Printf("Following user %d.\n", target)
		return nil
	}
	if err := a.follows.Unfollow(ctx, target); err != nil {
		return err
	}
	fmt.Printf("Unfollowed user %d.\n", target)
	return nil
}

func (a *app) cmdSuggestions(ctx context.Context) error {
	snapshot := a.sessions.Current()
	users, err := a.auth.Suggestions(ctx, snapshot.User.ID, float64(a.cfg.App.RadiusKm))
	if err != nil {
		return err
	}
	if len(users) == 0 {
		fmt.Println("Nobody new nearby.")
		return nil
	}
	fmt.Println("People near you:")
	for _, u := range users {
		fmt.Printf("  [%d] %s\n", u.ID, u.DisplayName())
	}
	return nil
}

func (a *app) cmdWatch(ctx context.Context) error {
	poller := notificationapp.NewPoller(a.notifications, a.cfg.Notification.PollInterval, a.log)
	fmt.Println("Watching notifications. Ctrl-C to stop.")
	for count := range poller.Start(ctx) {
		if count == 0 {
			fmt.Println("no unread notifications")
			continue
		}
		fmt.Printf("%d unread notification(s)\n", count)
	}
	return ctx.Err()
}

func (a *app) cmdEventCreate(ctx context.Context, args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return fmt.Errorf("usage: ifconnect event-create <title> <date> [location]")
	}
	location := ""
	if len(args) == 3 {
		location = args[2]
	}
	return a.eventsView.Create(ctx, args[0], "", location, args[1])
}

func (a *app) cmdEventToggle(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: ifconnect event-toggle <eventId>")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("eventId must be a number")
	}
	if err := a.eventsView.Render(ctx); err != nil {
		return err
	}
	for i, e := range a.eventsView.Events() {
		if e.ID == id {
			done, err := a.eventsView.Toggle(ctx, i)
			if err != nil {
				return err
			}
			result := <-done
			if result.Err != nil {
				return fmt.Errorf("change was rolled back: %w", result.Err)
			}
			return nil
		}
	}
	return fmt.Errorf("event %d not found on your campus", id)
}

func (a *app) cmdMetrics() error {
	if a.requests == nil {
		fmt.Println("Metrics are disabled; set IFC_METRICS_ENABLED=true.")
		return nil
	}
	families, err := a.requests.Registry().Gather()
	if err != nil {
		return err
	}
	encoder := expfmt.NewEncoder(os.Stdout, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, family := range families {
		if err := encoder.Encode(family); err != nil {
			return err
		}
	}
	return nil
}
