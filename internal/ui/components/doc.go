// Copyright (c) 2024-2025 Maner Fan / Modu
// SPDX-License-Identifier: Apache-2.0

// Package components provides reusable UI pieces for the modu TUI:
// toasts, the persistent notification panel, and the model picker.
package components
