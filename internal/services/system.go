// Copyright (c) 2024-2025 Maner Fan / Modu
// SPDX-License-Identifier: Apache-2.0

package services

import (
	"context"

	"github.com/manerfan/modu-tui/internal/api"
	"github.com/manerfan/modu-tui/internal/model"
)

// SystemService covers first-run setup and the app profile.
type SystemService struct {
	client *api.Client
}

// NewSystemService creates the system service.
func NewSystemService(client *api.Client) *SystemService {
	return &SystemService{client: client}
}

// IsSetup reports whether the server has completed first-run setup.
func (s *SystemService) IsSetup(ctx context.Context, opts *api.RequestOptions) (bool, error) {
	var done bool
	if err := s.client.GetJSON(ctx, "/api/setup", &done, opts); err != nil {
		return false, err
	}
	return done, nil
}

// Setup performs first-run setup, creating the admin account.
func (s *SystemService) Setup(ctx context.Context, cmd model.SetupCmd, opts *api.RequestOptions) (bool, error) {
	var done bool
	if err := s.client.PostJSON(ctx, "/api/setup", cmd, &done, opts); err != nil {
		return false, err
	}
	return done, nil
}

// Profile fetches the app profile shown in the shell header.
func (s *SystemService) Profile(ctx context.Context, opts *api.RequestOptions) (*model.Profile, error) {
	var profile model.Profile
	if err := s.client.GetJSON(ctx, "/api/system/profile", &profile, opts); err != nil {
		return nil, err
	}
	return &profile, nil
}
