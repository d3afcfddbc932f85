// Copyright (c) 2024-2025 Maner Fan / Modu
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// GENERATION COMMAND
// =============================================================================

// GenerateCmd is the body of a chat generation request. Sent verbatim
// to the server (snake_case, its native casing).
type GenerateCmd struct {
	ConversationUID string   `json:"conversation_uid,omitempty"`
	Query           string   `json:"query"`
	Mentions        []string `json:"mentions,omitempty"`
}

// MessageContent is one message as the server returns it (for example
// from the clear-memory call).
type MessageContent struct {
	UID        string `json:"uid"`
	SenderRole string `json:"senderRole"`
	Content    string `json:"content"`
}

// =============================================================================
// LOCAL CONVERSATION HISTORY
// =============================================================================

// Message roles as stored locally.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Conversation is one locally tracked chat thread, scoped to a
// workspace.
type Conversation struct {
	UID          string    `json:"uid"`
	WorkspaceUID string    `json:"workspaceUid"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// NewConversation creates a conversation with a fresh UID.
func NewConversation(workspaceUID string) *Conversation {
	now := time.Now()
	return &Conversation{
		UID:          uuid.NewString(),
		WorkspaceUID: workspaceUID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Message is one locally stored chat message.
type Message struct {
	UID             string    `json:"uid"`
	ConversationUID string    `json:"conversationUid"`
	Role            string    `json:"role"`
	Content         string    `json:"content"`
	CreatedAt       time.Time `json:"createdAt"`
}

// NewMessage creates a message with a fresh UID.
func NewMessage(conversationUID, role, content string) *Message {
	return &Message{
		UID:             uuid.NewString(),
		ConversationUID: conversationUID,
		Role:            role,
		Content:         content,
		CreatedAt:       time.Now(),
	}
}
