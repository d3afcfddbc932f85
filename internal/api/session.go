// Copyright (c) 2024-2025 Maner Fan / Modu
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"net/http"
	"net/url"
	"strings"
)

// =============================================================================
// NAVIGATOR
// =============================================================================

// Navigator is the navigation capability injected into the session guard
// and the redirect presentation. The TUI implements it with its route
// stack; tests implement it with a recorder.
//
// CurrentPath returns the current route including any query string
// ("/login?redirectUri=/cube/chat"). Navigate switches routes.
type Navigator interface {
	CurrentPath() string
	Navigate(path string)
}

// =============================================================================
// SESSION GUARD
// =============================================================================

// Default route configuration, mirroring the server's public surface.
const (
	// RootPath never triggers a login redirect.
	RootPath = "/"

	// DefaultLoginPath is where expired sessions are sent.
	DefaultLoginPath = "/login"

	// RedirectURIParam carries the post-login return route.
	RedirectURIParam = "redirectUri"
)

// DefaultPublicPaths are route prefixes that do not require a session;
// a 401 while on one of them must not bounce the user around.
var DefaultPublicPaths = []string{"/login", "/setup"}

// SessionGuard detects session expiry on inbound responses and routes
// the user back through login. It is the single place 401 is
// interpreted; it runs before error classification on every failure
// path and on success responses too (where only payload normalization
// applies, handled by the client).
type SessionGuard struct {
	Navigator Navigator
	Presenter Presenter

	// LoginPath defaults to DefaultLoginPath when empty.
	LoginPath string

	// PublicPaths defaults to DefaultPublicPaths when nil.
	PublicPaths []string
}

// Intercept inspects an inbound status code. On 401 it computes and
// performs the redirect-to-login dance, and marks the call as
// skip-error-handling so the classifier does not present the failure a
// second time. Other statuses pass through untouched.
func (g *SessionGuard) Intercept(status int, opts *RequestOptions) {
	if status != http.StatusUnauthorized {
		return
	}

	loginPath := g.LoginPath
	if loginPath == "" {
		loginPath = DefaultLoginPath
	}
	publicPaths := g.PublicPaths
	if publicPaths == nil {
		publicPaths = DefaultPublicPaths
	}

	current := g.Navigator.CurrentPath()
	pathOnly, query := splitPathQuery(current)

	// Root and public pages handle their own auth state; redirecting
	// from them would loop.
	if pathOnly != RootPath && !hasAnyPrefix(pathOnly, publicPaths) {
		if g.Presenter != nil {
			g.Presenter.Info("Signing in, please wait...")
		}

		target := pathOnly
		if strings.HasPrefix(target, "/api") {
			target = RootPath
		}
		if strings.HasPrefix(target, loginPath) {
			// Already heading to login: keep the original return route.
			target = redirectURIFromQuery(query)
		}

		g.Navigator.Navigate(loginPath + "?" + RedirectURIParam + "=" + target)
	}

	// The session expiry itself is the presentation; suppress the
	// classifier for this call either way.
	if opts != nil {
		opts.SkipErrorHandler = true
	}
}

// splitPathQuery splits "/login?redirectUri=/x" into path and raw query.
func splitPathQuery(p string) (path, query string) {
	if i := strings.IndexByte(p, '?'); i >= 0 {
		return p[:i], p[i+1:]
	}
	return p, ""
}

// hasAnyPrefix reports whether path starts with any of the prefixes.
func hasAnyPrefix(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// redirectURIFromQuery pulls the return route out of a login-page query
// string, defaulting to the root path.
func redirectURIFromQuery(query string) string {
	values, err := url.ParseQuery(query)
	if err != nil {
		return RootPath
	}
	if target := values.Get(RedirectURIParam); target != "" {
		return target
	}
	return RootPath
}
