// Copyright (c) 2024-2025 Maner Fan / Modu
// SPDX-License-Identifier: Apache-2.0

// Package config provides unified configuration loading and management
// for the modu TUI client.
//
// Supports both TOML and JSON configuration formats, with sensible
// defaults, environment variable overrides, and validation.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - ServerConfig: Server URL, timeout and session routes
//   - UIConfig: Terminal UI behavior
//   - HistoryConfig: Local conversation history store
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (MODU_*)
//   - ~/.modu/config.toml
//   - ~/.modu/config.json
//   - Built-in defaults
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Access settings:
//
//	server := cfg.Server.URL
//	timeout := cfg.Server.TimeoutSecs
package config
