// Copyright (c) 2024-2025 Maner Fan / Modu
// SPDX-License-Identifier: Apache-2.0

// Package storage provides local conversation history for the modu TUI.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/manerfan/modu-tui/internal/model"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrConversationNotFound is returned when a conversation doesn't
	// exist. Use errors.Is to check for it.
	ErrConversationNotFound = errors.New("conversation not found")
)

// =============================================================================
// SCHEMA
// =============================================================================

const schema = `
CREATE TABLE IF NOT EXISTS conversations (
	uid           TEXT PRIMARY KEY,
	workspace_uid TEXT NOT NULL,
	title         TEXT NOT NULL DEFAULT '',
	created_at    INTEGER NOT NULL,
	updated_at    INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	uid              TEXT PRIMARY KEY,
	conversation_uid TEXT NOT NULL REFERENCES conversations(uid) ON DELETE CASCADE,
	role             TEXT NOT NULL,
	content          TEXT NOT NULL,
	created_at       INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_conversations_workspace ON conversations(workspace_uid, updated_at);
CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_uid, created_at);
`

// =============================================================================
// HISTORY STORE
// =============================================================================

// HistoryStore persists conversations and messages in a local SQLite
// database.
type HistoryStore struct {
	db *sql.DB
}

// NewHistoryStore opens (creating if needed) the history database at
// path.
func NewHistoryStore(path string) (*HistoryStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &HistoryStore{db: db}, nil
}

// Close closes the database.
func (s *HistoryStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// =============================================================================
// CONVERSATIONS
// =============================================================================

// SaveConversation inserts or updates a conversation.
func (s *HistoryStore) SaveConversation(conv *model.Conversation) error {
	now := time.Now()
	if conv.CreatedAt.IsZero() {
		conv.CreatedAt = now
	}
	conv.UpdatedAt = now

	_, err := s.db.Exec(`
		INSERT INTO conversations (uid, workspace_uid, title, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(uid) DO UPDATE SET
			title = excluded.title,
			updated_at = excluded.updated_at
	`, conv.UID, conv.WorkspaceUID, conv.Title, conv.CreatedAt.Unix(), conv.UpdatedAt.Unix())
	return err
}

// Conversation loads a single conversation by UID.
func (s *HistoryStore) Conversation(uid string) (*model.Conversation, error) {
	row := s.db.QueryRow(`
		SELECT uid, workspace_uid, title, created_at, updated_at
		FROM conversations WHERE uid = ?
	`, uid)

	conv, err := scanConversation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrConversationNotFound
	}
	return conv, err
}

// Conversations lists a workspace's conversations, most recent first.
func (s *HistoryStore) Conversations(workspaceUID string) ([]model.Conversation, error) {
	rows, err := s.db.Query(`
		SELECT uid, workspace_uid, title, created_at, updated_at
		FROM conversations
		WHERE workspace_uid = ?
		ORDER BY updated_at DESC
	`, workspaceUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var convs []model.Conversation
	for rows.Next() {
		conv, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		convs = append(convs, *conv)
	}
	return convs, rows.Err()
}

// DeleteConversation removes a conversation and, via cascade, its
// messages.
func (s *HistoryStore) DeleteConversation(uid string) error {
	res, err := s.db.Exec("DELETE FROM conversations WHERE uid = ?", uid)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrConversationNotFound
	}
	return nil
}

// =============================================================================
// MESSAGES
// =============================================================================

// SaveMessage stores one message and bumps its conversation's updated
// time. The conversation title defaults to the first user message.
func (s *HistoryStore) SaveMessage(msg *model.Message) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}

	if _, err := tx.Exec(`
		INSERT INTO messages (uid, conversation_uid, role, content, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, msg.UID, msg.ConversationUID, msg.Role, msg.Content, msg.CreatedAt.Unix()); err != nil {
		return err
	}

	if _, err := tx.Exec(`
		UPDATE conversations SET updated_at = ? WHERE uid = ?
	`, time.Now().Unix(), msg.ConversationUID); err != nil {
		return err
	}

	if msg.Role == model.RoleUser {
		if _, err := tx.Exec(`
			UPDATE conversations SET title = ? WHERE uid = ? AND title = ''
		`, titleFromContent(msg.Content), msg.ConversationUID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Messages lists a conversation's messages in chronological order.
func (s *HistoryStore) Messages(conversationUID string) ([]model.Message, error) {
	rows, err := s.db.Query(`
		SELECT uid, conversation_uid, role, content, created_at
		FROM messages
		WHERE conversation_uid = ?
		ORDER BY rowid ASC
	`, conversationUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []model.Message
	for rows.Next() {
		var msg model.Message
		var createdAt int64
		if err := rows.Scan(&msg.UID, &msg.ConversationUID, &msg.Role, &msg.Content, &createdAt); err != nil {
			return nil, err
		}
		msg.CreatedAt = time.Unix(createdAt, 0)
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}

// ClearMessages removes all messages of a conversation and returns how
// many were deleted. The conversation itself is kept.
func (s *HistoryStore) ClearMessages(conversationUID string) (int64, error) {
	res, err := s.db.Exec("DELETE FROM messages WHERE conversation_uid = ?", conversationUID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// =============================================================================
// HELPERS
// =============================================================================

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConversation(row rowScanner) (*model.Conversation, error) {
	var conv model.Conversation
	var createdAt, updatedAt int64
	if err := row.Scan(&conv.UID, &conv.WorkspaceUID, &conv.Title, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	conv.CreatedAt = time.Unix(createdAt, 0)
	conv.UpdatedAt = time.Unix(updatedAt, 0)
	return &conv, nil
}

// titleFromContent derives a short conversation title from a message.
func titleFromContent(content string) string {
	content = strings.ReplaceAll(content, "\n", " ")
	content = strings.ReplaceAll(content, "\r", "")
	content = strings.TrimSpace(content)

	runes := []rune(content)
	if len(runes) > 50 {
		return string(runes[:47]) + "..."
	}
	if content == "" {
		return "New conversation"
	}
	return content
}
