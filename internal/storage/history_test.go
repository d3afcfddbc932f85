// Copyright (c) 2024-2025 Maner Fan / Modu
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/manerfan/modu-tui/internal/model"
)

func newTestStore(t *testing.T) *HistoryStore {
	t.Helper()
	store, err := NewHistoryStore(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("NewHistoryStore() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestHistoryStore_SaveAndLoadConversation(t *testing.T) {
	store := newTestStore(t)

	conv := model.NewConversation("ws-1")
	conv.Title = "hello"
	if err := store.SaveConversation(conv); err != nil {
		t.Fatalf("SaveConversation() error = %v", err)
	}

	loaded, err := store.Conversation(conv.UID)
	if err != nil {
		t.Fatalf("Conversation() error = %v", err)
	}
	if loaded.WorkspaceUID != "ws-1" {
		t.Errorf("WorkspaceUID = %q, want 'ws-1'", loaded.WorkspaceUID)
	}
	if loaded.Title != "hello" {
		t.Errorf("Title = %q, want 'hello'", loaded.Title)
	}
}

func TestHistoryStore_ConversationNotFound(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Conversation("missing"); !errors.Is(err, ErrConversationNotFound) {
		t.Errorf("Conversation() error = %v, want ErrConversationNotFound", err)
	}
	if err := store.DeleteConversation("missing"); !errors.Is(err, ErrConversationNotFound) {
		t.Errorf("DeleteConversation() error = %v, want ErrConversationNotFound", err)
	}
}

func TestHistoryStore_SaveConversation_Upsert(t *testing.T) {
	store := newTestStore(t)

	conv := model.NewConversation("ws-1")
	if err := store.SaveConversation(conv); err != nil {
		t.Fatalf("SaveConversation() error = %v", err)
	}

	conv.Title = "renamed"
	if err := store.SaveConversation(conv); err != nil {
		t.Fatalf("SaveConversation() upsert error = %v", err)
	}

	loaded, err := store.Conversation(conv.UID)
	if err != nil {
		t.Fatalf("Conversation() error = %v", err)
	}
	if loaded.Title != "renamed" {
		t.Errorf("Title = %q, want 'renamed'", loaded.Title)
	}

	convs, err := store.Conversations("ws-1")
	if err != nil {
		t.Fatalf("Conversations() error = %v", err)
	}
	if len(convs) != 1 {
		t.Errorf("Conversations() count = %d, want 1 (upsert, not insert)", len(convs))
	}
}

func TestHistoryStore_Conversations_ScopedToWorkspace(t *testing.T) {
	store := newTestStore(t)

	for _, ws := range []string{"ws-a", "ws-a", "ws-b"} {
		if err := store.SaveConversation(model.NewConversation(ws)); err != nil {
			t.Fatalf("SaveConversation() error = %v", err)
		}
	}

	convs, err := store.Conversations("ws-a")
	if err != nil {
		t.Fatalf("Conversations() error = %v", err)
	}
	if len(convs) != 2 {
		t.Errorf("Conversations('ws-a') count = %d, want 2", len(convs))
	}
	for _, c := range convs {
		if c.WorkspaceUID != "ws-a" {
			t.Errorf("got conversation from workspace %q", c.WorkspaceUID)
		}
	}
}

func TestHistoryStore_MessagesRoundTrip(t *testing.T) {
	store := newTestStore(t)

	conv := model.NewConversation("ws-1")
	if err := store.SaveConversation(conv); err != nil {
		t.Fatalf("SaveConversation() error = %v", err)
	}

	first := model.NewMessage(conv.UID, model.RoleUser, "what is modu?")
	second := model.NewMessage(conv.UID, model.RoleAssistant, "a chat workspace")
	for _, msg := range []*model.Message{first, second} {
		if err := store.SaveMessage(msg); err != nil {
			t.Fatalf("SaveMessage() error = %v", err)
		}
	}

	msgs, err := store.Messages(conv.UID)
	if err != nil {
		t.Fatalf("Messages() error = %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("Messages() count = %d, want 2", len(msgs))
	}
	if msgs[0].Role != model.RoleUser || msgs[1].Role != model.RoleAssistant {
		t.Errorf("messages out of order: %q then %q", msgs[0].Role, msgs[1].Role)
	}
}

func TestHistoryStore_TitleFromFirstUserMessage(t *testing.T) {
	store := newTestStore(t)

	conv := model.NewConversation("ws-1")
	if err := store.SaveConversation(conv); err != nil {
		t.Fatalf("SaveConversation() error = %v", err)
	}

	if err := store.SaveMessage(model.NewMessage(conv.UID, model.RoleUser, "first question")); err != nil {
		t.Fatalf("SaveMessage() error = %v", err)
	}
	if err := store.SaveMessage(model.NewMessage(conv.UID, model.RoleUser, "second question")); err != nil {
		t.Fatalf("SaveMessage() error = %v", err)
	}

	loaded, err := store.Conversation(conv.UID)
	if err != nil {
		t.Fatalf("Conversation() error = %v", err)
	}
	if loaded.Title != "first question" {
		t.Errorf("Title = %q, want 'first question'", loaded.Title)
	}
}

func TestHistoryStore_ClearMessages(t *testing.T) {
	store := newTestStore(t)

	conv := model.NewConversation("ws-1")
	if err := store.SaveConversation(conv); err != nil {
		t.Fatalf("SaveConversation() error = %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := store.SaveMessage(model.NewMessage(conv.UID, model.RoleUser, "msg")); err != nil {
			t.Fatalf("SaveMessage() error = %v", err)
		}
	}

	n, err := store.ClearMessages(conv.UID)
	if err != nil {
		t.Fatalf("ClearMessages() error = %v", err)
	}
	if n != 3 {
		t.Errorf("ClearMessages() = %d, want 3", n)
	}

	msgs, err := store.Messages(conv.UID)
	if err != nil {
		t.Fatalf("Messages() error = %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("Messages() count = %d after clear, want 0", len(msgs))
	}

	// Conversation survives the clear.
	if _, err := store.Conversation(conv.UID); err != nil {
		t.Errorf("Conversation() after clear error = %v", err)
	}
}

func TestHistoryStore_DeleteCascadesMessages(t *testing.T) {
	store := newTestStore(t)

	conv := model.NewConversation("ws-1")
	if err := store.SaveConversation(conv); err != nil {
		t.Fatalf("SaveConversation() error = %v", err)
	}
	if err := store.SaveMessage(model.NewMessage(conv.UID, model.RoleUser, "msg")); err != nil {
		t.Fatalf("SaveMessage() error = %v", err)
	}

	if err := store.DeleteConversation(conv.UID); err != nil {
		t.Fatalf("DeleteConversation() error = %v", err)
	}

	msgs, err := store.Messages(conv.UID)
	if err != nil {
		t.Fatalf("Messages() error = %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("Messages() count = %d after delete, want 0", len(msgs))
	}
}

func TestTitleFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"plain", "hello world", "hello world"},
		{"newlines flattened", "line one\nline two", "line one line two"},
		{"empty", "   ", "New conversation"},
		{"long truncated", strings.Repeat("a", 60), strings.Repeat("a", 47) + "..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := titleFromContent(tt.content); got != tt.want {
				t.Errorf("titleFromContent(%q) = %q, want %q", tt.content, got, tt.want)
			}
		})
	}
}
