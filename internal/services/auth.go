// Copyright (c) 2024-2025 Maner Fan / Modu
// SPDX-License-Identifier: Apache-2.0

package services

import (
	"context"
	"net/url"

	"github.com/manerfan/modu-tui/internal/api"
	"github.com/manerfan/modu-tui/internal/model"
)

// AuthService handles login and logout. It is the only writer of the
// credential store.
type AuthService struct {
	client *api.Client
	creds  api.CredentialStore
}

// NewAuthService creates the auth service.
func NewAuthService(client *api.Client, creds api.CredentialStore) *AuthService {
	return &AuthService{client: client, creds: creds}
}

// Login authenticates with a form-encoded POST and, on success, stores
// the returned credential so the very next request carries it.
func (s *AuthService) Login(ctx context.Context, cmd model.LoginCmd, opts *api.RequestOptions) (*model.AuthEntity, error) {
	form := url.Values{}
	form.Set("username", cmd.Username)
	form.Set("password", cmd.Password)

	var entity model.AuthEntity
	if err := s.client.PostForm(ctx, "/api/login", form, &entity, opts); err != nil {
		return nil, err
	}

	cred := api.Credential{AccessToken: entity.AccessToken, TokenType: entity.TokenType}
	if err := s.creds.Set(cred); err != nil {
		return nil, err
	}
	return &entity, nil
}

// Logout clears the stored credential. Purely local; the token simply
// stops being sent.
func (s *AuthService) Logout() error {
	return s.creds.Clear()
}
