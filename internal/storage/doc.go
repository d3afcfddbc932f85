// Copyright (c) 2024-2025 Maner Fan / Modu
// SPDX-License-Identifier: Apache-2.0

// Package storage provides local conversation history for the modu TUI.
//
// History lives in a SQLite database under ~/.modu/history.db. It is a
// client-side convenience only: the server keeps its own conversation
// memory, and clearing one does not clear the other.
package storage
