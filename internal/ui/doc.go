// Copyright (c) 2024-2025 Maner Fan / Modu
// SPDX-License-Identifier: Apache-2.0

// Package ui implements the modu terminal client shell: the route
// stack, the login and setup forms, the chat view with streaming
// replies, and the toast/notification presentation of transport errors.
package ui
