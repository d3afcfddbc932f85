// Copyright (c) 2024-2025 Maner Fan / Modu
// SPDX-License-Identifier: Apache-2.0

// Package services holds the thin typed wrappers over the modu server
// API. Each call builds a URL and a payload and forwards to the
// transport pipeline in internal/api; no error presentation or session
// logic lives here.
package services
