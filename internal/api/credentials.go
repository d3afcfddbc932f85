// Copyright (c) 2024-2025 Maner Fan / Modu
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/manerfan/modu-tui/internal/util"
)

// =============================================================================
// CREDENTIAL TYPES
// =============================================================================

// Storage key names. The credential is persisted under exactly these two
// keys; absence of either means "logged out".
const (
	AccessTokenKey = "access_token"
	TokenTypeKey   = "token_type"
)

// DefaultTokenType is used when the server did not specify a token type.
const DefaultTokenType = "bearer"

// Credential is the current session token pair. Its lifetime spans login
// to logout.
type Credential struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
}

// AuthorizationValue renders the credential as an Authorization header
// value: "{tokenType or 'bearer'} {accessToken}".
func (c Credential) AuthorizationValue() string {
	tokenType := c.TokenType
	if tokenType == "" {
		tokenType = DefaultTokenType
	}
	return tokenType + " " + c.AccessToken
}

// CredentialStore holds the process-wide session credential. Get must be
// synchronous and cheap: the injector reads it on every outbound request.
// It is mutated only by the login/logout flows, and a write must be
// visible to the very next request issued after it returns.
type CredentialStore interface {
	// Get returns the current credential, or ok=false when logged out.
	Get() (cred Credential, ok bool)

	// Set replaces the current credential.
	Set(cred Credential) error

	// Clear forgets the credential (logout).
	Clear() error
}

// =============================================================================
// FILE-BACKED STORE
// =============================================================================

// FileCredentialStore persists the credential as two 0600 files in a
// state directory and serves reads from memory. The files are written
// atomically so a crash mid-login leaves either the old session or the
// new one, never a torn token.
type FileCredentialStore struct {
	dir string

	mu   sync.RWMutex
	cred Credential
	ok   bool
}

// NewFileCredentialStore opens (and creates if needed) a store rooted at
// dir, loading any previously persisted credential.
func NewFileCredentialStore(dir string) (*FileCredentialStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create credential dir: %w", err)
	}

	s := &FileCredentialStore{dir: dir}
	s.load()
	return s, nil
}

// load reads both key files. Either one missing means logged out.
func (s *FileCredentialStore) load() {
	token, err := os.ReadFile(filepath.Join(s.dir, AccessTokenKey))
	if err != nil {
		return
	}
	tokenType, err := os.ReadFile(filepath.Join(s.dir, TokenTypeKey))
	if err != nil {
		return
	}

	access := strings.TrimSpace(string(token))
	if access == "" {
		return
	}

	s.cred = Credential{
		AccessToken: access,
		TokenType:   strings.TrimSpace(string(tokenType)),
	}
	s.ok = true
}

// Get implements CredentialStore. It never touches the filesystem.
func (s *FileCredentialStore) Get() (Credential, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cred, s.ok
}

// Set implements CredentialStore, persisting both keys before the new
// credential becomes visible to readers.
func (s *FileCredentialStore) Set(cred Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := util.AtomicWriteFile(filepath.Join(s.dir, AccessTokenKey), []byte(cred.AccessToken), 0600); err != nil {
		return fmt.Errorf("failed to persist access token: %w", err)
	}
	if err := util.AtomicWriteFile(filepath.Join(s.dir, TokenTypeKey), []byte(cred.TokenType), 0600); err != nil {
		return fmt.Errorf("failed to persist token type: %w", err)
	}

	s.cred = cred
	s.ok = true
	return nil
}

// Clear implements CredentialStore.
func (s *FileCredentialStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, name := range []string{AccessTokenKey, TokenTypeKey} {
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove %s: %w", name, err)
		}
	}

	s.cred = Credential{}
	s.ok = false
	return nil
}

// =============================================================================
// IN-MEMORY STORE
// =============================================================================

// MemCredentialStore is a CredentialStore without persistence, used in
// tests and as a fallback when no state directory is writable.
type MemCredentialStore struct {
	mu   sync.RWMutex
	cred Credential
	ok   bool
}

// Get implements CredentialStore.
func (s *MemCredentialStore) Get() (Credential, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cred, s.ok
}

// Set implements CredentialStore.
func (s *MemCredentialStore) Set(cred Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = cred
	s.ok = true
	return nil
}

// Clear implements CredentialStore.
func (s *MemCredentialStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = Credential{}
	s.ok = false
	return nil
}
