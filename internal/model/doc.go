// Copyright (c) 2024-2025 Maner Fan / Modu
// SPDX-License-Identifier: Apache-2.0

// Package model contains the domain types shared between the services,
// the local history store and the UI.
//
// Response entities carry camelCase JSON tags because every payload is
// key-normalized once at the transport boundary; command types sent to
// the server carry snake_case tags, the server's native casing.
package model
