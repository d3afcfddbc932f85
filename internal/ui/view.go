// Copyright (c) 2024-2025 Maner Fan / Modu
// SPDX-License-Identifier: Apache-2.0

package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/manerfan/modu-tui/internal/model"
	"github.com/manerfan/modu-tui/internal/ui/components"
	"github.com/manerfan/modu-tui/internal/util"
)

// View renders the active screen plus any overlay.
func (a *App) View() string {
	if !a.ready {
		return "Starting..."
	}

	var screen string
	switch a.view {
	case viewLogin:
		screen = a.viewLoginForm()
	case viewSetup:
		screen = a.viewSetupForm()
	default:
		screen = a.viewChat()
	}

	switch {
	case a.pickerVisible:
		overlay := a.picker.View(a.theme, a.width)
		screen = lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, overlay)
	case a.panelVisible:
		overlay := components.RenderNotificationPanel(a.theme, a.panel.All(), a.width)
		screen = lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, overlay)
	}

	if a.toasts.HasToasts() {
		stack := components.RenderToastStack(a.theme, a.toasts.Toasts(), a.width, 0)
		return a.overlayToasts(screen, stack)
	}
	return screen
}

// overlayToasts paints the toast stack over the bottom-right corner of
// the base view, leaving the status bar row free.
func (a *App) overlayToasts(base, stack string) string {
	baseLines := strings.Split(base, "\n")
	stackLines := strings.Split(stack, "\n")

	startRow := len(baseLines) - len(stackLines) - 2
	if startRow < 0 {
		startRow = 0
	}

	for i := range baseLines {
		j := i - startRow
		if j < 0 || j >= len(stackLines) {
			continue
		}
		line := stackLines[j]
		lineWidth := lipgloss.Width(line)
		if lineWidth == 0 {
			continue
		}

		room := a.width - lineWidth - 1
		if room < 0 {
			room = 0
		}
		baseLine := baseLines[i]
		if lipgloss.Width(baseLine) > room {
			baseLine = util.TruncateWidth(baseLine, room)
		}
		if pad := room - lipgloss.Width(baseLine); pad > 0 {
			baseLine += strings.Repeat(" ", pad)
		}
		baseLines[i] = baseLine + line
	}

	return strings.Join(baseLines, "\n")
}

// =============================================================================
// HEADER / STATUS BAR
// =============================================================================

func (a *App) viewHeader() string {
	title := "modu"
	if a.profile != nil && a.profile.AppInfo.Name != "" {
		title = a.profile.AppInfo.Name
		if a.profile.AppInfo.Version != "" {
			title += " " + a.theme.HeaderSubtitle.Render("v"+a.profile.AppInfo.Version)
		}
	}
	return a.theme.Header.Width(a.width).Render(a.theme.HeaderTitle.Render(title))
}

func (a *App) viewStatusBar() string {
	var parts []string

	if a.selected != nil {
		name := a.selected.Model.Name
		if name == "" {
			name = a.selected.Model.Model
		}
		parts = append(parts, a.theme.ShortcutDesc.Render(name))
	}
	if a.streaming {
		parts = append(parts, a.spin.View()+a.theme.ShortcutDesc.Render("generating"))
	}
	if unread := a.panel.UnreadCount(); unread > 0 && a.cfg.UI.Notifications {
		parts = append(parts, a.theme.ShortcutDesc.Render(fmt.Sprintf("🔔 %d", unread)))
	}

	parts = append(parts,
		a.shortcut("^P", "model"),
		a.shortcut("^N", "notices"),
		a.shortcut("^R", "clear"),
		a.shortcut("^D", "logout"),
		a.shortcut("^C", "quit"),
	)
	return a.theme.StatusBar.Width(a.width).Render(strings.Join(parts, "  "))
}

func (a *App) shortcut(key, desc string) string {
	return a.theme.ShortcutKey.Render(key) + a.theme.ShortcutDesc.Render(" "+desc)
}

// =============================================================================
// FORMS
// =============================================================================

func (a *App) viewLoginForm() string {
	var b strings.Builder
	b.WriteString(a.theme.HeaderTitle.Render("Sign in"))
	b.WriteString("\n\n")
	b.WriteString(a.theme.FormLabel.Render("Username"))
	b.WriteString("\n")
	b.WriteString(a.loginInputs[loginFieldUsername].View())
	b.WriteString("\n\n")
	b.WriteString(a.theme.FormLabel.Render("Password"))
	b.WriteString("\n")
	b.WriteString(a.loginInputs[loginFieldPassword].View())
	b.WriteString("\n\n")
	if a.loginBusy {
		b.WriteString(a.spin.View() + a.theme.FormHint.Render(" signing in"))
	} else {
		b.WriteString(a.theme.FormHint.Render("enter to submit, tab to switch fields"))
	}

	box := a.theme.FormBox.Render(b.String())
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, box)
}

func (a *App) viewSetupForm() string {
	var b strings.Builder
	b.WriteString(a.theme.HeaderTitle.Render("First-run setup"))
	b.WriteString("\n")
	b.WriteString(a.theme.FormHint.Render("Create the admin account"))
	b.WriteString("\n\n")

	labels := [3]string{"Name", "Email", "Password"}
	for i := range a.setupInputs {
		b.WriteString(a.theme.FormLabel.Render(labels[i]))
		b.WriteString("\n")
		b.WriteString(a.setupInputs[i].View())
		b.WriteString("\n\n")
	}
	if a.setupBusy {
		b.WriteString(a.spin.View() + a.theme.FormHint.Render(" setting up"))
	} else {
		b.WriteString(a.theme.FormHint.Render("enter to submit, tab to switch fields"))
	}

	box := a.theme.FormBox.Render(b.String())
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, box)
}

// =============================================================================
// CHAT
// =============================================================================

func (a *App) viewChat() string {
	input := a.theme.InputContainer.Width(a.width - 2).Render(a.chatInput.View())
	return lipgloss.JoinVertical(lipgloss.Left,
		a.viewHeader(),
		a.chatViewport.View(),
		input,
		a.viewStatusBar(),
	)
}

// renderTranscript repaints the viewport from the transcript plus any
// in-flight partial reply. The delta path rate-limits calls to it; the
// resize and stream-end paths call it unconditionally.
func (a *App) renderTranscript() {
	if !a.ready {
		return
	}

	var blocks []string
	for i := range a.transcript {
		blocks = append(blocks, a.renderMessage(&a.transcript[i]))
	}
	if a.streaming {
		partial := a.partial.String()
		if partial == "" {
			partial = a.spin.View()
		}
		blocks = append(blocks, a.renderBubble(model.RoleAssistant, partial, ""))
	}

	a.chatViewport.SetContent(strings.Join(blocks, "\n"))
	a.chatViewport.GotoBottom()
}

func (a *App) renderMessage(msg *model.Message) string {
	return a.renderBubble(msg.Role, msg.Content, msg.CreatedAt.Format("15:04"))
}

func (a *App) renderBubble(role, content, stamp string) string {
	label := "You"
	bubble := a.theme.UserBubble
	if role == model.RoleAssistant {
		label = "Assistant"
		bubble = a.theme.AssistantBubble
		content = a.renderMarkdown(content)
	}

	header := a.theme.RoleLabel.Render(label)
	if stamp != "" {
		header += " " + a.theme.Timestamp.Render(stamp)
	}

	width := a.width - 4
	if width < 20 {
		width = 20
	}
	return header + "\n" + bubble.MaxWidth(width).Render(content)
}

// renderMarkdown renders assistant content through glamour when enabled,
// falling back to the raw text on any failure.
func (a *App) renderMarkdown(content string) string {
	if a.renderer == nil {
		return content
	}
	rendered, err := a.renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(rendered, "\n")
}
