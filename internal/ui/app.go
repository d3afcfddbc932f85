// Copyright (c) 2024-2025 Maner Fan / Modu
// SPDX-License-Identifier: Apache-2.0

package ui

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"golang.org/x/time/rate"

	"github.com/manerfan/modu-tui/internal/api"
	"github.com/manerfan/modu-tui/internal/config"
	"github.com/manerfan/modu-tui/internal/model"
	"github.com/manerfan/modu-tui/internal/services"
	"github.com/manerfan/modu-tui/internal/storage"
	"github.com/manerfan/modu-tui/internal/ui/components"
	"github.com/manerfan/modu-tui/internal/ui/styles"
)

// =============================================================================
// VIEWS
// =============================================================================

// view selects which screen the shell renders. Views map 1:1 onto
// router paths; the router is authoritative and the view follows it.
type view int

const (
	viewLogin view = iota
	viewSetup
	viewChat
)

// pathView maps a route (with or without a query string) onto a view.
func pathView(path string) view {
	switch {
	case strings.HasPrefix(path, "/login"):
		return viewLogin
	case strings.HasPrefix(path, "/setup"):
		return viewSetup
	default:
		return viewChat
	}
}

// =============================================================================
// SERVICES BUNDLE
// =============================================================================

// Services bundles the server-facing services the shell drives.
type Services struct {
	Auth    *services.AuthService
	System  *services.SystemService
	LLM     *services.LLMService
	Message *services.MessageService
}

// =============================================================================
// APP MODEL
// =============================================================================

// Form field indices for the login and setup forms.
const (
	loginFieldUsername = 0
	loginFieldPassword = 1

	setupFieldName     = 0
	setupFieldEmail    = 1
	setupFieldPassword = 2
)

// App is the root Bubble Tea model.
type App struct {
	cfg   *config.Config
	theme *styles.Theme

	router    *Router
	presenter *ToastPresenter
	creds     api.CredentialStore

	svc     Services
	history *storage.HistoryStore // nil when history is disabled

	view view

	// Header data fetched from the server.
	profile *model.Profile

	// Login form.
	loginInputs [2]textinput.Model
	loginFocus  int
	loginBusy   bool

	// Setup form.
	setupInputs [3]textinput.Model
	setupFocus  int
	setupBusy   bool

	// Chat view.
	chatViewport viewport.Model
	chatInput    textinput.Model
	spin         spinner.Model
	renderer     *glamour.TermRenderer

	conversation *model.Conversation
	transcript   []model.Message

	// Active generation.
	session   *streamSession
	partial   strings.Builder
	streaming bool

	// renderLimit caps transcript re-renders while deltas arrive; the
	// text still accumulates, only the redraw is skipped.
	renderLimit *rate.Limiter

	// Providers / model picker.
	providers     []model.ProviderWithModels
	picker        *components.ModelPicker
	pickerVisible bool
	selected      *components.PickerEntry

	// Overlays.
	toasts       *components.ToastManager
	panel        *components.NotificationPanel
	panelVisible bool

	width  int
	height int
	ready  bool
}

// NewApp assembles the shell. The router decides the first view: start
// it at "/login" (or "/") before calling.
func NewApp(cfg *config.Config, theme *styles.Theme, router *Router, presenter *ToastPresenter,
	creds api.CredentialStore, svc Services, history *storage.HistoryStore,
	toasts *components.ToastManager, panel *components.NotificationPanel) *App {

	app := &App{
		cfg:         cfg,
		theme:       theme,
		router:      router,
		presenter:   presenter,
		creds:       creds,
		svc:         svc,
		history:     history,
		toasts:      toasts,
		panel:       panel,
		picker:      components.NewModelPicker(nil),
		renderLimit: rate.NewLimiter(rate.Every(50*time.Millisecond), 1),
		view:        pathView(router.CurrentPath()),
	}

	app.loginInputs[loginFieldUsername] = newFormInput("username", false)
	app.loginInputs[loginFieldPassword] = newFormInput("password", true)
	app.loginInputs[loginFieldUsername].Focus()

	app.setupInputs[setupFieldName] = newFormInput("admin name", false)
	app.setupInputs[setupFieldEmail] = newFormInput("email", false)
	app.setupInputs[setupFieldPassword] = newFormInput("password", true)
	app.setupInputs[setupFieldName].Focus()

	app.chatInput = textinput.New()
	app.chatInput.Placeholder = "Ask anything..."
	app.chatInput.Prompt = "> "
	app.chatInput.CharLimit = 4000

	app.spin = spinner.New()
	app.spin.Spinner = spinner.Dot
	app.spin.Style = theme.Spinner

	return app
}

func newFormInput(placeholder string, password bool) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.Prompt = ""
	in.CharLimit = 256
	if password {
		in.EchoMode = textinput.EchoPassword
		in.EchoCharacter = '•'
	}
	return in
}

// Init kicks off the toast ticker, the initial server probes, and the
// local history load.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		a.spin.Tick,
		components.ToastTickCmd(),
		a.checkSetupCmd(),
		a.fetchProfileCmd(),
		a.fetchProvidersCmd(),
		a.loadHistoryCmd(),
	)
}

// =============================================================================
// SERVER PROBE COMMANDS
// =============================================================================

type setupStateMsg struct {
	done bool
	err  error
}

type profileMsg struct {
	profile *model.Profile
}

type providersMsg struct {
	providers []model.ProviderWithModels
	err       error
}

type loginResultMsg struct {
	entity *model.AuthEntity
	err    error
}

type setupResultMsg struct {
	ok  bool
	err error
}

type clearMemoryMsg struct {
	cleared int
	err     error
}

type historyLoadedMsg struct {
	conversation *model.Conversation
	messages     []model.Message
}

// ConfigReloadedMsg carries a freshly reloaded configuration into the
// UI. The config watcher sends it after retuning the transport.
type ConfigReloadedMsg struct {
	Config *config.Config
}

// Probes run before the user is signed in, so they must not spray
// toasts or bounce the route: mark them skip and decide from the result.
func probeOpts() *api.RequestOptions {
	return &api.RequestOptions{SkipErrorHandler: true}
}

func (a *App) checkSetupCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), api.DefaultTimeout)
		defer cancel()
		done, err := a.svc.System.IsSetup(ctx, probeOpts())
		return setupStateMsg{done: done, err: err}
	}
}

func (a *App) fetchProfileCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), api.DefaultTimeout)
		defer cancel()
		profile, err := a.svc.System.Profile(ctx, probeOpts())
		if err != nil {
			return profileMsg{}
		}
		return profileMsg{profile: profile}
	}
}

func (a *App) fetchProvidersCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), api.DefaultTimeout)
		defer cancel()
		providers, err := a.svc.LLM.Providers(ctx, probeOpts())
		return providersMsg{providers: providers, err: err}
	}
}

func (a *App) loginCmd(username, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), api.DefaultTimeout)
		defer cancel()
		entity, err := a.svc.Auth.Login(ctx, model.LoginCmd{Username: username, Password: password}, nil)
		return loginResultMsg{entity: entity, err: err}
	}
}

func (a *App) setupCmd(name, email, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), api.DefaultTimeout)
		defer cancel()
		ok, err := a.svc.System.Setup(ctx, model.SetupCmd{Name: name, Email: email, Password: password}, nil)
		return setupResultMsg{ok: ok, err: err}
	}
}

// loadHistoryCmd resumes the workspace's most recent conversation from
// the local store, so a restart does not open on an empty transcript.
func (a *App) loadHistoryCmd() tea.Cmd {
	if a.history == nil {
		return nil
	}
	history := a.history
	workspace := a.cfg.Workspace.UID
	return func() tea.Msg {
		convs, err := history.Conversations(workspace)
		if err != nil || len(convs) == 0 {
			return historyLoadedMsg{}
		}
		latest := convs[0]
		msgs, err := history.Messages(latest.UID)
		if err != nil {
			return historyLoadedMsg{}
		}
		return historyLoadedMsg{conversation: &latest, messages: msgs}
	}
}

func (a *App) clearMemoryCmd(conversationUID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), api.DefaultTimeout)
		defer cancel()
		cleared, err := a.svc.Message.ClearMemory(ctx, conversationUID, nil)
		return clearMemoryMsg{cleared: len(cleared), err: err}
	}
}

// =============================================================================
// ROUTE HELPERS
// =============================================================================

// loggedIn reports whether a credential is on file.
func (a *App) loggedIn() bool {
	if a.creds == nil {
		return false
	}
	_, ok := a.creds.Get()
	return ok
}

// postLoginTarget reads the return route carried by the login page's
// query string, defaulting to the root.
func (a *App) postLoginTarget() string {
	current := a.router.CurrentPath()
	if i := strings.IndexByte(current, '?'); i >= 0 {
		if values, err := url.ParseQuery(current[i+1:]); err == nil {
			if target := values.Get(api.RedirectURIParam); target != "" {
				return target
			}
		}
	}
	return api.RootPath
}
