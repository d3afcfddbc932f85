// Copyright (c) 2024-2025 Maner Fan / Modu
// SPDX-License-Identifier: Apache-2.0

package services

import (
	"context"
	"net/url"

	"github.com/manerfan/modu-tui/internal/api"
	"github.com/manerfan/modu-tui/internal/model"
)

// LLMService manages provider catalogs and workspace-scoped provider
// configuration.
type LLMService struct {
	client *api.Client
}

// NewLLMService creates the LLM service.
func NewLLMService(client *api.Client) *LLMService {
	return &LLMService{client: client}
}

// Providers lists every provider the server knows about, with the
// models each one offers.
func (s *LLMService) Providers(ctx context.Context, opts *api.RequestOptions) ([]model.ProviderWithModels, error) {
	var providers []model.ProviderWithModels
	if err := s.client.GetJSON(ctx, "/api/system/llm/providers", &providers, opts); err != nil {
		return nil, err
	}
	return providers, nil
}

// ProviderConfigDetail fetches the stored configuration for one
// provider in a workspace.
func (s *LLMService) ProviderConfigDetail(ctx context.Context, workspaceUID, providerKey string, opts *api.RequestOptions) (*model.ProviderConfig, error) {
	var config model.ProviderConfig
	if err := s.client.GetJSON(ctx, providerConfigPath(workspaceUID, providerKey), &config, opts); err != nil {
		return nil, err
	}
	return &config, nil
}

// ProviderConfigAdd creates or replaces a provider configuration in a
// workspace.
func (s *LLMService) ProviderConfigAdd(ctx context.Context, workspaceUID, providerKey string, credential map[string]any, opts *api.RequestOptions) (bool, error) {
	var ok bool
	if err := s.client.PostJSON(ctx, providerConfigPath(workspaceUID, providerKey), credential, &ok, opts); err != nil {
		return false, err
	}
	return ok, nil
}

// ProviderConfigRemove deletes a provider configuration from a
// workspace.
func (s *LLMService) ProviderConfigRemove(ctx context.Context, workspaceUID, providerKey string, opts *api.RequestOptions) (bool, error) {
	var ok bool
	if err := s.client.Delete(ctx, providerConfigPath(workspaceUID, providerKey), &ok, opts); err != nil {
		return false, err
	}
	return ok, nil
}

// AllProviderConfigs lists every provider configuration in a workspace.
func (s *LLMService) AllProviderConfigs(ctx context.Context, workspaceUID string, opts *api.RequestOptions) ([]model.ProviderConfig, error) {
	path := "/api/workspace/" + url.PathEscape(workspaceUID) + "/provider/all/config"
	var configs []model.ProviderConfig
	if err := s.client.GetJSON(ctx, path, &configs, opts); err != nil {
		return nil, err
	}
	return configs, nil
}

func providerConfigPath(workspaceUID, providerKey string) string {
	return "/api/workspace/" + url.PathEscape(workspaceUID) + "/provider/" + url.PathEscape(providerKey) + "/config"
}
