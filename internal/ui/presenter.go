// Copyright (c) 2024-2025 Maner Fan / Modu
// SPDX-License-Identifier: Apache-2.0

package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/manerfan/modu-tui/internal/ui/components"
)

// =============================================================================
// PRESENTER
// =============================================================================

// PresentedMsg wakes the program after something was presented from off
// the UI loop, so overlays render without waiting for the next keypress.
type PresentedMsg struct{}

// ToastPresenter renders transport-layer notices as toasts and
// notification panel entries. It implements the transport Presenter and
// is called from request goroutines, so everything it touches is
// concurrency-safe.
type ToastPresenter struct {
	toasts *components.ToastManager
	panel  *components.NotificationPanel
	send   func(tea.Msg)
}

// NewToastPresenter creates a presenter over the shared toast stack and
// notification panel.
func NewToastPresenter(toasts *components.ToastManager, panel *components.NotificationPanel) *ToastPresenter {
	return &ToastPresenter{toasts: toasts, panel: panel}
}

// SetProgramSend wires the running program's Send. Until it is set,
// notices still accumulate and show on the next UI refresh.
func (p *ToastPresenter) SetProgramSend(send func(tea.Msg)) {
	p.send = send
}

// Info shows a transient informational toast.
func (p *ToastPresenter) Info(msg string) {
	p.toasts.Add(components.ToastKindInfo, msg)
	p.wake()
}

// Warn shows a transient warning toast.
func (p *ToastPresenter) Warn(msg string) {
	p.toasts.Add(components.ToastKindWarning, msg)
	p.wake()
}

// Error shows a transient error toast.
func (p *ToastPresenter) Error(msg string) {
	p.toasts.Add(components.ToastKindError, msg)
	p.wake()
}

// Notify adds a persistent notification panel entry and a toast pointing
// at it.
func (p *ToastPresenter) Notify(title, body string) {
	p.panel.Add(title, body)
	p.toasts.Add(components.ToastKindWarning, title+": "+body)
	p.wake()
}

func (p *ToastPresenter) wake() {
	if p.send != nil {
		p.send(PresentedMsg{})
	}
}
