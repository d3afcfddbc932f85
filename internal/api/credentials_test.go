// Copyright (c) 2024-2025 Maner Fan / Modu
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCredential_AuthorizationValue(t *testing.T) {
	tests := []struct {
		name string
		cred Credential
		want string
	}{
		{
			name: "explicit token type",
			cred: Credential{AccessToken: "abc123", TokenType: "Bearer"},
			want: "Bearer abc123",
		},
		{
			name: "missing token type defaults to bearer",
			cred: Credential{AccessToken: "abc123"},
			want: "bearer abc123",
		},
		{
			name: "custom scheme is preserved",
			cred: Credential{AccessToken: "xyz", TokenType: "MAC"},
			want: "MAC xyz",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cred.AuthorizationValue(); got != tt.want {
				t.Errorf("AuthorizationValue() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFileCredentialStore_RoundTrip(t *testing.T) {
	dir := t.TempDir()

	store, err := NewFileCredentialStore(dir)
	if err != nil {
		t.Fatalf("NewFileCredentialStore() error = %v", err)
	}

	if _, ok := store.Get(); ok {
		t.Fatal("fresh store should be logged out")
	}

	cred := Credential{AccessToken: "tok-1", TokenType: "Bearer"}
	if err := store.Set(cred); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, ok := store.Get()
	if !ok || got != cred {
		t.Errorf("Get() = %+v, %v; want %+v, true", got, ok, cred)
	}

	// A second store over the same directory sees the credential.
	reopened, err := NewFileCredentialStore(dir)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	got, ok = reopened.Get()
	if !ok || got != cred {
		t.Errorf("reopened Get() = %+v, %v; want persisted credential", got, ok)
	}
}

func TestFileCredentialStore_Clear(t *testing.T) {
	dir := t.TempDir()

	store, err := NewFileCredentialStore(dir)
	if err != nil {
		t.Fatalf("NewFileCredentialStore() error = %v", err)
	}
	if err := store.Set(Credential{AccessToken: "tok"}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if _, ok := store.Get(); ok {
		t.Error("Get() after Clear should report logged out")
	}

	// Clear is idempotent.
	if err := store.Clear(); err != nil {
		t.Errorf("second Clear() error = %v", err)
	}

	// The files are gone, so a reopen is logged out too.
	reopened, err := NewFileCredentialStore(dir)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	if _, ok := reopened.Get(); ok {
		t.Error("reopened store should be logged out after Clear")
	}
}

func TestFileCredentialStore_Permissions(t *testing.T) {
	dir := t.TempDir()

	store, err := NewFileCredentialStore(dir)
	if err != nil {
		t.Fatalf("NewFileCredentialStore() error = %v", err)
	}
	if err := store.Set(Credential{AccessToken: "tok", TokenType: "bearer"}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	info, err := os.Stat(filepath.Join(dir, AccessTokenKey))
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("token file permissions = %o, want 0600", perm)
	}
}

func TestMemCredentialStore(t *testing.T) {
	store := &MemCredentialStore{}

	if _, ok := store.Get(); ok {
		t.Fatal("fresh store should be logged out")
	}

	cred := Credential{AccessToken: "tok", TokenType: "bearer"}
	if err := store.Set(cred); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if got, ok := store.Get(); !ok || got != cred {
		t.Errorf("Get() = %+v, %v", got, ok)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if _, ok := store.Get(); ok {
		t.Error("Get() after Clear should report logged out")
	}
}
