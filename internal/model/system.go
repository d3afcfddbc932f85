// Copyright (c) 2024-2025 Maner Fan / Modu
// SPDX-License-Identifier: Apache-2.0

package model

// AuthEntity is the server's reply to a successful login.
type AuthEntity struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
}

// LoginCmd is the form-encoded login request.
type LoginCmd struct {
	Username string
	Password string
}

// SetupCmd finishes first-run system setup by creating the admin
// account.
type SetupCmd struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AppInfo describes the server application, shown in the shell header.
type AppInfo struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// Profile is the app profile payload.
type Profile struct {
	AppInfo AppInfo `json:"appInfo"`
}
