// Copyright (c) 2024-2025 Maner Fan / Modu
// SPDX-License-Identifier: Apache-2.0

package ui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// ROUTER
// =============================================================================

// RouteChangedMsg is delivered to the program whenever the route changes,
// including changes initiated off the UI loop (the session guard calls
// Navigate from a request goroutine).
type RouteChangedMsg struct {
	Path string
}

// Router is the route stack behind the TUI's views. It implements the
// transport layer's Navigator so session expiry and server-directed
// redirects land in the same place a keypress-driven navigation does.
// Safe for concurrent use.
type Router struct {
	mu    sync.Mutex
	stack []string
	send  func(tea.Msg)
}

// NewRouter creates a router positioned at the initial path.
func NewRouter(initial string) *Router {
	if initial == "" {
		initial = "/"
	}
	return &Router{stack: []string{initial}}
}

// SetProgramSend wires the running program's Send so off-loop navigation
// wakes the UI. Must be called before the program starts processing.
func (r *Router) SetProgramSend(send func(tea.Msg)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.send = send
}

// CurrentPath returns the current route including any query string.
func (r *Router) CurrentPath() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stack[len(r.stack)-1]
}

// Navigate pushes a new route and notifies the program.
func (r *Router) Navigate(path string) {
	r.mu.Lock()
	if path == r.stack[len(r.stack)-1] {
		r.mu.Unlock()
		return
	}
	r.stack = append(r.stack, path)
	send := r.send
	r.mu.Unlock()

	if send != nil {
		send(RouteChangedMsg{Path: path})
	}
}

// Back pops the current route and returns the one beneath it. At the
// bottom of the stack it stays put.
func (r *Router) Back() string {
	r.mu.Lock()
	if len(r.stack) > 1 {
		r.stack = r.stack[:len(r.stack)-1]
	}
	path := r.stack[len(r.stack)-1]
	send := r.send
	r.mu.Unlock()

	if send != nil {
		send(RouteChangedMsg{Path: path})
	}
	return path
}
