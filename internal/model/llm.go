// Copyright (c) 2024-2025 Maner Fan / Modu
// SPDX-License-Identifier: Apache-2.0

package model

// =============================================================================
// PROVIDERS
// =============================================================================

// ProviderStatus reports whether a provider has been configured in the
// current workspace.
type ProviderStatus string

const (
	// ProviderActive means the provider is configured and usable.
	ProviderActive ProviderStatus = "ACTIVE"
	// ProviderUnAdded means the provider is known but not configured.
	ProviderUnAdded ProviderStatus = "UN_ADDED"
)

// ModelType classifies what a model can do.
type ModelType string

const (
	ModelTypeTextGeneration  ModelType = "TEXT_GENERATION"
	ModelTypeImageGeneration ModelType = "IMAGE_GENERATION"
	ModelTypeVision          ModelType = "VISION"
	ModelTypeEmbedding       ModelType = "EMBEDDING"
	ModelTypeTextToSpeech    ModelType = "TEXT_TO_SPEECH"
	ModelTypeSpeechToText    ModelType = "SPEECH_TO_TEXT"
)

// ProviderSchema describes one LLM provider.
type ProviderSchema struct {
	Provider    string `json:"provider"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
}

// ModelSchema describes one model offered by a provider.
type ModelSchema struct {
	Model      string    `json:"model"`
	Name       string    `json:"name"`
	Type       ModelType `json:"type,omitempty"`
	Deprecated bool      `json:"deprecated,omitempty"`
}

// ProviderWithModels bundles a provider, its models and its
// configuration status for the picker.
type ProviderWithModels struct {
	Provider ProviderSchema `json:"provider"`
	Models   []ModelSchema  `json:"models"`
	Status   ProviderStatus `json:"status"`
}

// Selectable reports whether a model can currently be chosen: its
// provider must be active and the model not deprecated.
func (p *ProviderWithModels) Selectable(m ModelSchema) bool {
	return p.Status == ProviderActive && !m.Deprecated
}

// ProviderConfig is one workspace-scoped provider configuration.
type ProviderConfig struct {
	UID          string         `json:"uid,omitempty"`
	WorkspaceUID string         `json:"workspaceUid,omitempty"`
	ProviderKey  string         `json:"providerName,omitempty"`
	Config       map[string]any `json:"providerCredential,omitempty"`
}
