// Copyright (c) 2024-2025 Maner Fan / Modu
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"path/filepath"
	"sync"
	"testing"
)

// TestConfig_ConcurrentAccess tests that Global(), SetGlobal(), and
// ReloadGlobal() can be safely called concurrently without race
// conditions. Run with: go test -race -v ./internal/config/
func TestConfig_ConcurrentAccess(t *testing.T) {
	ResetGlobalForTesting()

	var wg sync.WaitGroup

	// 50 writers using SetGlobal, 50 readers using Global
	for i := 0; i < 50; i++ {
		wg.Add(2)

		go func() {
			defer wg.Done()
			c := Default()
			c.Version = "test"
			SetGlobal(c)
		}()

		go func() {
			defer wg.Done()
			if Global() == nil {
				t.Error("Global() returned nil")
			}
		}()
	}

	wg.Wait()
}

// TestConfig_ConcurrentReload tests concurrent ReloadGlobal and Global
// calls.
func TestConfig_ConcurrentReload(t *testing.T) {
	ResetGlobalForTesting()
	_ = Global()

	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// ReloadGlobal may fail if no config file exists, that's ok
			_ = ReloadGlobal()
		}()
	}

	for i := 0; i < 80; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if Global() == nil {
				t.Error("Global() returned nil")
			}
		}()
	}

	wg.Wait()
}

// TestConfig_SetGlobalOverwrites tests that SetGlobal properly
// overwrites the existing global config.
func TestConfig_SetGlobalOverwrites(t *testing.T) {
	ResetGlobalForTesting()
	_ = Global()

	custom := Default()
	custom.Version = "custom-version"
	custom.Workspace.UID = "ws-42"
	SetGlobal(custom)

	result := Global()
	if result.Version != "custom-version" {
		t.Errorf("Expected version 'custom-version', got '%s'", result.Version)
	}
	if result.Workspace.UID != "ws-42" {
		t.Errorf("Expected workspace 'ws-42', got '%s'", result.Workspace.UID)
	}
}

// TestConfig_Default tests that Default() returns a valid config.
func TestConfig_Default(t *testing.T) {
	cfg := Default()

	if cfg == nil {
		t.Fatal("Default() returned nil")
	}
	if cfg.Version == "" {
		t.Error("Default config should have a version")
	}
	if cfg.Server.TimeoutSecs != 10 {
		t.Errorf("Expected default timeout 10s, got %d", cfg.Server.TimeoutSecs)
	}
	if cfg.Server.LoginPath != "/login" {
		t.Errorf("Expected default login path '/login', got '%s'", cfg.Server.LoginPath)
	}
	if len(cfg.Server.PublicPaths) == 0 {
		t.Error("Default config should have public paths")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should validate, got %v", err)
	}
}

// TestConfig_Validate tests configuration validation.
func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "invalid server URL scheme",
			mutate:  func(c *Config) { c.Server.URL = "ftp://example.com" },
			wantErr: true,
		},
		{
			name:    "timeout zero",
			mutate:  func(c *Config) { c.Server.TimeoutSecs = 0 },
			wantErr: true,
		},
		{
			name:    "timeout too large",
			mutate:  func(c *Config) { c.Server.TimeoutSecs = 301 },
			wantErr: true,
		},
		{
			name:    "login path without leading slash",
			mutate:  func(c *Config) { c.Server.LoginPath = "login" },
			wantErr: true,
		},
		{
			name:    "public path without leading slash",
			mutate:  func(c *Config) { c.Server.PublicPaths = []string{"setup"} },
			wantErr: true,
		},
		{
			name:    "invalid theme",
			mutate:  func(c *Config) { c.UI.Theme = "solarized" },
			wantErr: true,
		},
		{
			name:    "https URL accepted",
			mutate:  func(c *Config) { c.Server.URL = "https://modu.example.com" },
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestConfig_TOMLRoundTrip saves and reloads a config from a temp path.
func TestConfig_TOMLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.Server.URL = "https://modu.example.com"
	cfg.Workspace.UID = "ws-roundtrip"
	cfg.UI.Markdown = false

	if err := SaveTOML(cfg, path); err != nil {
		t.Fatalf("SaveTOML() error = %v", err)
	}

	loaded := &Config{}
	if err := LoadTOML(loaded, path); err != nil {
		t.Fatalf("LoadTOML() error = %v", err)
	}

	if loaded.Server.URL != "https://modu.example.com" {
		t.Errorf("Server URL = '%s', want 'https://modu.example.com'", loaded.Server.URL)
	}
	if loaded.Workspace.UID != "ws-roundtrip" {
		t.Errorf("Workspace UID = '%s', want 'ws-roundtrip'", loaded.Workspace.UID)
	}
	if loaded.UI.Markdown {
		t.Error("Markdown should survive round trip as false")
	}
	// Unset values are filled from defaults on load.
	if loaded.Server.TimeoutSecs != 10 {
		t.Errorf("TimeoutSecs = %d, want default 10", loaded.Server.TimeoutSecs)
	}
}

// TestConfig_FillDefaults tests that partial configs get defaults for
// missing fields.
func TestConfig_FillDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.Server.URL = "http://custom:9000"

	if err := fillDefaults(cfg); err != nil {
		t.Fatalf("fillDefaults() error = %v", err)
	}

	if cfg.Server.URL != "http://custom:9000" {
		t.Error("fillDefaults should not overwrite set values")
	}
	if cfg.Server.TimeoutSecs != 10 {
		t.Errorf("TimeoutSecs = %d, want 10", cfg.Server.TimeoutSecs)
	}
	if cfg.Server.LoginPath != "/login" {
		t.Errorf("LoginPath = '%s', want '/login'", cfg.Server.LoginPath)
	}
	if cfg.UI.Theme != "dark" {
		t.Errorf("Theme = '%s', want 'dark'", cfg.UI.Theme)
	}
}

// TestConfig_ApplyEnvOverrides tests MODU_* environment overrides.
func TestConfig_ApplyEnvOverrides(t *testing.T) {
	t.Setenv("MODU_SERVER_URL", "https://env.example.com")
	t.Setenv("MODU_TIMEOUT_SECS", "25")
	t.Setenv("MODU_WORKSPACE", "ws-env")
	t.Setenv("MODU_NO_HISTORY", "1")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Server.URL != "https://env.example.com" {
		t.Errorf("Server URL = '%s', want env value", cfg.Server.URL)
	}
	if cfg.Server.TimeoutSecs != 25 {
		t.Errorf("TimeoutSecs = %d, want 25", cfg.Server.TimeoutSecs)
	}
	if cfg.Workspace.UID != "ws-env" {
		t.Errorf("Workspace UID = '%s', want 'ws-env'", cfg.Workspace.UID)
	}
	if cfg.History.Enabled {
		t.Error("MODU_NO_HISTORY=1 should disable history")
	}
}

// TestConfig_ApplyEnvOverrides_BadTimeout tests that an unparseable
// timeout override is ignored.
func TestConfig_ApplyEnvOverrides_BadTimeout(t *testing.T) {
	t.Setenv("MODU_TIMEOUT_SECS", "not-a-number")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Server.TimeoutSecs != 10 {
		t.Errorf("TimeoutSecs = %d, want default 10", cfg.Server.TimeoutSecs)
	}
}
