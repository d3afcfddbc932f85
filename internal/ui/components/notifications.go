// Copyright (c) 2024-2025 Maner Fan / Modu
// SPDX-License-Identifier: Apache-2.0

package components

import (
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/manerfan/modu-tui/internal/ui/styles"
)

// =============================================================================
// NOTIFICATION PANEL
// =============================================================================

// Notification is one persistent panel entry. Unlike a toast it stays
// until the user opens the panel and clears it.
type Notification struct {
	Title     string
	Body      string
	CreatedAt time.Time
	Read      bool
}

// NotificationPanel collects persistent notifications. Safe for
// concurrent use.
type NotificationPanel struct {
	mu      sync.Mutex
	entries []Notification
	max     int
}

// NewNotificationPanel creates a panel keeping at most 50 entries.
func NewNotificationPanel() *NotificationPanel {
	return &NotificationPanel{max: 50}
}

// Add appends a notification, newest first.
func (p *NotificationPanel) Add(title, body string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry := Notification{Title: title, Body: body, CreatedAt: time.Now()}
	p.entries = append([]Notification{entry}, p.entries...)
	if len(p.entries) > p.max {
		p.entries = p.entries[:p.max]
	}
}

// All returns a copy of the entries.
func (p *NotificationPanel) All() []Notification {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Notification(nil), p.entries...)
}

// UnreadCount returns how many entries have not been seen yet.
func (p *NotificationPanel) UnreadCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	count := 0
	for _, entry := range p.entries {
		if !entry.Read {
			count++
		}
	}
	return count
}

// MarkAllRead marks every entry as seen.
func (p *NotificationPanel) MarkAllRead() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.entries {
		p.entries[i].Read = true
	}
}

// Clear drops all entries.
func (p *NotificationPanel) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries = nil
}

// =============================================================================
// RENDERING
// =============================================================================

// RenderNotificationPanel renders the panel as an overlay box.
func RenderNotificationPanel(theme *styles.Theme, entries []Notification, width int) string {
	maxWidth := 70
	if width > 0 && width-6 < maxWidth {
		maxWidth = width - 6
	}
	if maxWidth < 30 {
		maxWidth = 30
	}

	if len(entries) == 0 {
		return theme.PanelBox.Render(theme.PanelBody.Render("No notifications"))
	}

	blocks := make([]string, 0, len(entries))
	for _, entry := range entries {
		title := theme.PanelTitle.Render(entry.Title)
		stamp := theme.Timestamp.Render(entry.CreatedAt.Format("15:04"))
		body := theme.PanelBody.Render(wrapText(entry.Body, maxWidth-4))
		blocks = append(blocks, lipgloss.JoinVertical(lipgloss.Left, title+" "+stamp, body))
	}

	return theme.PanelBox.MaxWidth(maxWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, blocks...),
	)
}
