// Copyright (c) 2024-2025 Maner Fan / Modu
// SPDX-License-Identifier: Apache-2.0

package ui

import (
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestRouter_NavigateAndBack(t *testing.T) {
	r := NewRouter("/login")

	if got := r.CurrentPath(); got != "/login" {
		t.Errorf("CurrentPath() = %q, want /login", got)
	}

	r.Navigate("/")
	r.Navigate("/login?redirectUri=/")
	if got := r.CurrentPath(); got != "/login?redirectUri=/" {
		t.Errorf("CurrentPath() = %q", got)
	}

	if got := r.Back(); got != "/" {
		t.Errorf("Back() = %q, want /", got)
	}

	// Bottom of the stack stays put.
	r.Back()
	if got := r.Back(); got != "/login" {
		t.Errorf("Back() at bottom = %q, want /login", got)
	}
}

func TestRouter_NavigateSamePathIsNoop(t *testing.T) {
	r := NewRouter("/")
	var sent []tea.Msg
	r.SetProgramSend(func(msg tea.Msg) { sent = append(sent, msg) })

	r.Navigate("/")
	if len(sent) != 0 {
		t.Errorf("navigating to the current path sent %d messages", len(sent))
	}

	r.Navigate("/login")
	if len(sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sent))
	}
	if msg, ok := sent[0].(RouteChangedMsg); !ok || msg.Path != "/login" {
		t.Errorf("sent %v, want RouteChangedMsg{/login}", sent[0])
	}
}

// The session guard navigates from request goroutines. Run with -race.
func TestRouter_Concurrent(t *testing.T) {
	r := NewRouter("/")
	r.SetProgramSend(func(tea.Msg) {})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			r.Navigate("/login?redirectUri=/")
		}()
		go func() {
			defer wg.Done()
			_ = r.CurrentPath()
		}()
	}
	wg.Wait()
}

func TestPathView(t *testing.T) {
	tests := []struct {
		path string
		want view
	}{
		{"/login", viewLogin},
		{"/login?redirectUri=/cube/chat", viewLogin},
		{"/setup", viewSetup},
		{"/setup/step2", viewSetup},
		{"/", viewChat},
		{"/cube/chat", viewChat},
	}
	for _, tt := range tests {
		if got := pathView(tt.path); got != tt.want {
			t.Errorf("pathView(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
