// Copyright (c) 2024-2025 Maner Fan / Modu
// SPDX-License-Identifier: Apache-2.0

package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/manerfan/modu-tui/internal/api"
	"github.com/manerfan/modu-tui/internal/model"
	"github.com/manerfan/modu-tui/internal/ui/components"
)

// Update is the single message dispatcher.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return a.handleResize(msg)

	case tea.KeyMsg:
		return a.handleKey(msg)

	case RouteChangedMsg:
		a.view = pathView(msg.Path)
		a.syncFocus()
		return a, nil

	case PresentedMsg:
		// A toast or notification arrived off-loop; rendering picks it
		// up, nothing to change here.
		return a, nil

	case components.ToastTickMsg:
		a.toasts.Tick()
		return a, components.ToastTickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spin, cmd = a.spin.Update(msg)
		return a, cmd

	case setupStateMsg:
		return a.handleSetupState(msg)

	case profileMsg:
		a.profile = msg.profile
		return a, nil

	case providersMsg:
		if msg.err == nil {
			a.providers = msg.providers
			a.picker.SetProviders(msg.providers)
		}
		return a, nil

	case loginResultMsg:
		return a.handleLoginResult(msg)

	case setupResultMsg:
		return a.handleSetupResult(msg)

	case clearMemoryMsg:
		return a.handleClearMemory(msg)

	case historyLoadedMsg:
		return a.handleHistoryLoaded(msg)

	case ConfigReloadedMsg:
		return a.handleConfigReloaded(msg)

	case streamOpenedMsg:
		if !a.streaming {
			// Logout won the race against the open; close it back down.
			msg.session.cancel()
			return a, nil
		}
		a.session = msg.session
		return a, waitForStreamEvent(a.session)

	case streamEventMsg:
		return a.handleStreamEvent(msg)

	case streamDoneMsg:
		return a.handleStreamDone(msg)
	}

	return a.updateActiveInput(msg)
}

// =============================================================================
// LAYOUT
// =============================================================================

func (a *App) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	a.width = msg.Width
	a.height = msg.Height
	a.theme.SetSize(msg.Width, msg.Height)

	chromeHeight := 4 // header, input box, status bar
	viewportHeight := msg.Height - chromeHeight
	if viewportHeight < 3 {
		viewportHeight = 3
	}

	if !a.ready {
		a.chatViewport = viewport.New(msg.Width, viewportHeight)
		a.ready = true
	} else {
		a.chatViewport.Width = msg.Width
		a.chatViewport.Height = viewportHeight
	}
	a.chatInput.Width = msg.Width - 6

	a.rebuildRenderer()
	a.renderTranscript()
	return a, nil
}

// rebuildRenderer recreates the markdown renderer at the current width.
// Failure falls back to plain text rendering.
func (a *App) rebuildRenderer() {
	if !a.cfg.UI.Markdown {
		a.renderer = nil
		return
	}

	style := glamour.WithStandardStyle("dark")
	if a.cfg.UI.Theme == "light" {
		style = glamour.WithStandardStyle("light")
	}
	wrap := a.width - 10
	if wrap < 20 {
		wrap = 20
	}
	renderer, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(wrap))
	if err != nil {
		a.renderer = nil
		return
	}
	a.renderer = renderer
}

// =============================================================================
// KEY DISPATCH
// =============================================================================

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global shortcuts first.
	switch msg.String() {
	case "ctrl+c":
		a.session.cancel()
		if a.history != nil {
			a.history.Close()
		}
		return a, tea.Quit
	}

	if a.pickerVisible {
		return a.handlePickerKey(msg)
	}
	if a.panelVisible {
		return a.handlePanelKey(msg)
	}

	switch a.view {
	case viewLogin:
		return a.handleLoginKey(msg)
	case viewSetup:
		return a.handleSetupKey(msg)
	default:
		return a.handleChatKey(msg)
	}
}

// =============================================================================
// LOGIN FORM
// =============================================================================

func (a *App) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "down":
		a.loginFocus = (a.loginFocus + 1) % len(a.loginInputs)
		a.syncFocus()
		return a, nil
	case "shift+tab", "up":
		a.loginFocus = (a.loginFocus + len(a.loginInputs) - 1) % len(a.loginInputs)
		a.syncFocus()
		return a, nil
	case "enter":
		if a.loginFocus < len(a.loginInputs)-1 {
			a.loginFocus++
			a.syncFocus()
			return a, nil
		}
		return a.submitLogin()
	}

	var cmd tea.Cmd
	a.loginInputs[a.loginFocus], cmd = a.loginInputs[a.loginFocus].Update(msg)
	return a, cmd
}

func (a *App) submitLogin() (tea.Model, tea.Cmd) {
	if a.loginBusy {
		return a, nil
	}
	username := strings.TrimSpace(a.loginInputs[loginFieldUsername].Value())
	password := a.loginInputs[loginFieldPassword].Value()
	if username == "" || password == "" {
		a.presenter.Warn("Username and password are required")
		return a, nil
	}
	a.loginBusy = true
	return a, a.loginCmd(username, password)
}

func (a *App) handleLoginResult(msg loginResultMsg) (tea.Model, tea.Cmd) {
	a.loginBusy = false
	if msg.err != nil {
		// Already presented by the transport pipeline; just clear the
		// password for another try.
		a.loginInputs[loginFieldPassword].SetValue("")
		return a, nil
	}

	a.loginInputs[loginFieldPassword].SetValue("")
	target := a.postLoginTarget()
	a.router.Navigate(target)
	a.view = pathView(target)
	a.syncFocus()
	// The session changed: refresh everything fetched anonymously.
	return a, tea.Batch(a.fetchProfileCmd(), a.fetchProvidersCmd())
}

// =============================================================================
// SETUP FORM
// =============================================================================

func (a *App) handleSetupState(msg setupStateMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		// Server unreachable; stay put and let the user retry by
		// restarting. The login flow will surface the same failure.
		return a, nil
	}
	switch {
	case !msg.done:
		a.router.Navigate("/setup")
	case !a.loggedIn() && a.view == viewChat:
		a.router.Navigate("/login")
	}
	a.view = pathView(a.router.CurrentPath())
	a.syncFocus()
	return a, nil
}

func (a *App) handleSetupKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "down":
		a.setupFocus = (a.setupFocus + 1) % len(a.setupInputs)
		a.syncFocus()
		return a, nil
	case "shift+tab", "up":
		a.setupFocus = (a.setupFocus + len(a.setupInputs) - 1) % len(a.setupInputs)
		a.syncFocus()
		return a, nil
	case "enter":
		if a.setupFocus < len(a.setupInputs)-1 {
			a.setupFocus++
			a.syncFocus()
			return a, nil
		}
		return a.submitSetup()
	}

	var cmd tea.Cmd
	a.setupInputs[a.setupFocus], cmd = a.setupInputs[a.setupFocus].Update(msg)
	return a, cmd
}

func (a *App) submitSetup() (tea.Model, tea.Cmd) {
	if a.setupBusy {
		return a, nil
	}
	name := strings.TrimSpace(a.setupInputs[setupFieldName].Value())
	email := strings.TrimSpace(a.setupInputs[setupFieldEmail].Value())
	password := a.setupInputs[setupFieldPassword].Value()
	if name == "" || email == "" || password == "" {
		a.presenter.Warn("All fields are required")
		return a, nil
	}
	a.setupBusy = true
	return a, a.setupCmd(name, email, password)
}

func (a *App) handleSetupResult(msg setupResultMsg) (tea.Model, tea.Cmd) {
	a.setupBusy = false
	if msg.err != nil {
		return a, nil
	}
	if !msg.ok {
		a.presenter.Error("Setup failed, please retry.")
		return a, nil
	}
	a.presenter.Info("Setup complete")
	a.router.Navigate("/login")
	a.view = viewLogin
	a.syncFocus()
	return a, nil
}

// =============================================================================
// CHAT VIEW
// =============================================================================

func (a *App) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if a.streaming {
			a.session.cancel()
			return a, nil
		}
	case "enter":
		return a.submitQuery()
	case "ctrl+p":
		a.pickerVisible = true
		a.picker.SetQuery("")
		return a, a.fetchProvidersCmd()
	case "ctrl+n":
		if a.cfg.UI.Notifications {
			a.panelVisible = true
			a.panel.MarkAllRead()
		}
		return a, nil
	case "ctrl+r":
		if a.conversation != nil && !a.streaming {
			return a, a.clearMemoryCmd(a.conversation.UID)
		}
		return a, nil
	case "ctrl+d":
		return a.logout()
	case "up", "down", "pgup", "pgdown":
		var cmd tea.Cmd
		a.chatViewport, cmd = a.chatViewport.Update(msg)
		return a, cmd
	}

	var cmd tea.Cmd
	a.chatInput, cmd = a.chatInput.Update(msg)
	return a, cmd
}

func (a *App) submitQuery() (tea.Model, tea.Cmd) {
	if a.streaming {
		return a, nil
	}
	query := strings.TrimSpace(a.chatInput.Value())
	if query == "" {
		return a, nil
	}
	a.chatInput.SetValue("")

	if a.conversation == nil {
		a.conversation = model.NewConversation(a.cfg.Workspace.UID)
		if a.history != nil {
			a.history.SaveConversation(a.conversation)
		}
	}

	userMsg := model.NewMessage(a.conversation.UID, model.RoleUser, query)
	a.transcript = append(a.transcript, *userMsg)
	if a.history != nil {
		a.history.SaveMessage(userMsg)
	}

	cmd := model.GenerateCmd{
		ConversationUID: a.conversation.UID,
		Query:           query,
	}
	if a.selected != nil {
		cmd.Mentions = []string{a.selected.Model.Model}
	}

	a.streaming = true
	a.partial.Reset()
	a.renderTranscript()
	return a, a.startStreamCmd(cmd)
}

func (a *App) handleStreamEvent(msg streamEventMsg) (tea.Model, tea.Cmd) {
	if a.session == nil {
		// Logout tore the stream down; drop the straggler instead of
		// re-arming the wait on a dead session.
		return a, nil
	}
	a.partial.WriteString(deltaText(msg.event))

	// Deltas arrive faster than the terminal deserves repaints; the
	// limiter drops redraws, never text.
	if a.renderLimit.Allow() {
		a.renderTranscript()
	}
	return a, waitForStreamEvent(a.session)
}

func (a *App) handleStreamDone(msg streamDoneMsg) (tea.Model, tea.Cmd) {
	// A done message with no session and no generation in flight is a
	// straggler from a stream logout already tore down. Open failures
	// arrive with streaming still set and must unwind it.
	if a.session == nil && !a.streaming {
		return a, nil
	}
	a.streaming = false
	a.session = nil

	reply := a.partial.String()
	a.partial.Reset()

	if reply != "" {
		assistantMsg := model.NewMessage(a.conversation.UID, model.RoleAssistant, reply)
		a.transcript = append(a.transcript, *assistantMsg)
		if a.history != nil {
			a.history.SaveMessage(assistantMsg)
		}
	}
	if msg.err != nil {
		a.presenter.Error("Response interrupted, please retry.")
	}
	a.renderTranscript()
	return a, nil
}

func (a *App) handleHistoryLoaded(msg historyLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.conversation == nil {
		return a, nil
	}
	// Don't clobber a conversation the user already started.
	if a.conversation != nil {
		return a, nil
	}
	a.conversation = msg.conversation
	a.transcript = msg.messages
	a.renderTranscript()
	return a, nil
}

func (a *App) handleConfigReloaded(msg ConfigReloadedMsg) (tea.Model, tea.Cmd) {
	if msg.Config == nil {
		return a, nil
	}
	a.cfg = msg.Config
	a.rebuildRenderer()
	a.renderTranscript()
	return a, nil
}

func (a *App) handleClearMemory(msg clearMemoryMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		return a, nil
	}
	if a.history != nil && a.conversation != nil {
		a.history.ClearMessages(a.conversation.UID)
	}
	a.transcript = nil
	a.renderTranscript()
	a.presenter.Info(fmt.Sprintf("Cleared %d messages", msg.cleared))
	return a, nil
}

func (a *App) logout() (tea.Model, tea.Cmd) {
	if err := a.svc.Auth.Logout(); err != nil {
		a.presenter.Error("Failed to clear credential")
		return a, nil
	}
	a.session.cancel()
	a.session = nil
	a.streaming = false
	a.partial.Reset()
	a.router.Navigate(api.DefaultLoginPath)
	a.view = viewLogin
	a.syncFocus()
	return a, nil
}

// =============================================================================
// OVERLAYS
// =============================================================================

func (a *App) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.pickerVisible = false
		return a, nil
	case "up":
		a.picker.Move(-1)
		return a, nil
	case "down":
		a.picker.Move(1)
		return a, nil
	case "enter":
		if entry, ok := a.picker.Selected(); ok {
			a.selected = &entry
			a.pickerVisible = false
		}
		return a, nil
	case "backspace":
		if query := []rune(a.picker.Query()); len(query) > 0 {
			a.picker.SetQuery(string(query[:len(query)-1]))
		}
		return a, nil
	}

	if msg.Type == tea.KeyRunes {
		a.picker.SetQuery(a.picker.Query() + string(msg.Runes))
	}
	return a, nil
}

func (a *App) handlePanelKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+n":
		a.panelVisible = false
	case "ctrl+x":
		a.panel.Clear()
		a.panelVisible = false
	}
	return a, nil
}

// =============================================================================
// FOCUS
// =============================================================================

// syncFocus gives exactly one input focus, matching the current view.
func (a *App) syncFocus() {
	for i := range a.loginInputs {
		a.loginInputs[i].Blur()
	}
	for i := range a.setupInputs {
		a.setupInputs[i].Blur()
	}
	a.chatInput.Blur()

	switch a.view {
	case viewLogin:
		a.loginInputs[a.loginFocus].Focus()
	case viewSetup:
		a.setupInputs[a.setupFocus].Focus()
	default:
		a.chatInput.Focus()
	}
}

// updateActiveInput forwards unrecognized messages (blink ticks mostly)
// to whichever input is focused.
func (a *App) updateActiveInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.view {
	case viewLogin:
		a.loginInputs[a.loginFocus], cmd = a.loginInputs[a.loginFocus].Update(msg)
	case viewSetup:
		a.setupInputs[a.setupFocus], cmd = a.setupInputs[a.setupFocus].Update(msg)
	default:
		a.chatInput, cmd = a.chatInput.Update(msg)
	}
	return a, cmd
}
