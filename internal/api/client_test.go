// Copyright (c) 2024-2025 Maner Fan / Modu
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(serverURL, currentPath string) (*Client, *recordingPresenter, *recordingNavigator, *MemCredentialStore) {
	presenter := &recordingPresenter{}
	nav := &recordingNavigator{current: currentPath}
	store := &MemCredentialStore{}
	client := NewClient(serverURL, store, nav, presenter)
	return client, presenter, nav, store
}

func TestClient_InjectsAuthorizationHeader(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"success":true,"code":"0","content":true}`))
	}))
	defer server.Close()

	client, _, _, store := newTestClient(server.URL, "/")
	store.Set(Credential{AccessToken: "tok-1", TokenType: "Bearer"})

	var out bool
	if err := client.GetJSON(context.Background(), "/api/setup", &out, nil); err != nil {
		t.Fatalf("GetJSON() error = %v", err)
	}
	if gotAuth != "Bearer tok-1" {
		t.Errorf("Authorization = %q, want 'Bearer tok-1'", gotAuth)
	}
}

func TestClient_DefaultBearerTokenType(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"success":true,"code":"0","content":true}`))
	}))
	defer server.Close()

	client, _, _, store := newTestClient(server.URL, "/")
	store.Set(Credential{AccessToken: "tok-2"})

	var out bool
	if err := client.GetJSON(context.Background(), "/api/setup", &out, nil); err != nil {
		t.Fatalf("GetJSON() error = %v", err)
	}
	if gotAuth != "bearer tok-2" {
		t.Errorf("Authorization = %q, want 'bearer tok-2'", gotAuth)
	}
}

func TestClient_NoCredentialNoHeader(t *testing.T) {
	var hadAuth bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hadAuth = r.Header["Authorization"]
		w.Write([]byte(`{"success":true,"code":"0","content":true}`))
	}))
	defer server.Close()

	client, _, _, _ := newTestClient(server.URL, "/")

	var out bool
	if err := client.GetJSON(context.Background(), "/api/setup", &out, nil); err != nil {
		t.Fatalf("GetJSON() error = %v", err)
	}
	if hadAuth {
		t.Error("Authorization header sent while logged out")
	}
}

// Snake_case payloads decode into camel-tagged structs after boundary
// normalization.
func TestClient_CamelizesResponseContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"code":"0","content":{"app_info":{"name":"modu","version":"1.0"}}}`))
	}))
	defer server.Close()

	client, _, _, _ := newTestClient(server.URL, "/")

	var out struct {
		AppInfo struct {
			Name    string `json:"name"`
			Version string `json:"version"`
		} `json:"appInfo"`
	}
	if err := client.GetJSON(context.Background(), "/api/system/profile", &out, nil); err != nil {
		t.Fatalf("GetJSON() error = %v", err)
	}
	if out.AppInfo.Name != "modu" || out.AppInfo.Version != "1.0" {
		t.Errorf("decoded %+v, want camelized content", out)
	}
}

func TestClient_FailedEnvelope_PresentsBizError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"code":"E1","content":{"code":"E1","message":"quota exceeded","show_type":1}}`))
	}))
	defer server.Close()

	client, presenter, _, _ := newTestClient(server.URL, "/")

	var out any
	err := client.GetJSON(context.Background(), "/api/x", &out, nil)

	var biz *BizError
	if !errors.As(err, &biz) {
		t.Fatalf("error = %v, want *BizError", err)
	}
	if biz.Content.ShowType != ShowWarnMessage {
		t.Errorf("ShowType = %v, want WARN_MESSAGE (snake show_type camelized)", biz.Content.ShowType)
	}

	calls := presenter.all()
	if len(calls) != 1 || calls[0] != "warn:quota exceeded" {
		t.Errorf("presentations = %v", calls)
	}
}

func TestClient_FailedEnvelope_ValidationArray(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"code":"E2","content":[{"msg":"name required"},{"msg":"email invalid"}]}`))
	}))
	defer server.Close()

	client, presenter, _, _ := newTestClient(server.URL, "/")

	err := client.GetJSON(context.Background(), "/api/x", nil, nil)

	var list *BizErrorList
	if !errors.As(err, &list) {
		t.Fatalf("error = %v, want *BizErrorList", err)
	}
	if list.First() != "name required" {
		t.Errorf("First() = %q", list.First())
	}

	calls := presenter.all()
	if len(calls) != 1 || calls[0] != "warn:name required" {
		t.Errorf("presentations = %v", calls)
	}
}

func TestClient_Unauthorized_RedirectsAndSuppresses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client, presenter, nav, _ := newTestClient(server.URL, "/cube/chat")

	err := client.GetJSON(context.Background(), "/api/x", nil, nil)

	var transport *TransportError
	if !errors.As(err, &transport) || transport.Status != http.StatusUnauthorized {
		t.Fatalf("error = %v, want 401 TransportError", err)
	}
	if got := nav.lastVisited(); got != "/login?redirectUri=/cube/chat" {
		t.Errorf("navigated to %q", got)
	}

	// The guard's notice is the only presentation; the classifier stays
	// quiet.
	calls := presenter.all()
	if len(calls) != 1 || calls[0] != "info:Signing in, please wait..." {
		t.Errorf("presentations = %v", calls)
	}
}

func TestClient_Unauthorized_OnLoginPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client, presenter, nav, _ := newTestClient(server.URL, "/login")

	err := client.GetJSON(context.Background(), "/api/x", nil, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if nav.lastVisited() != "" {
		t.Errorf("navigated to %q from login page", nav.lastVisited())
	}
	if len(presenter.all()) != 0 {
		t.Errorf("presentations = %v, want none", presenter.all())
	}
}

func TestClient_Reconfigure_AppliesNewRoutes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client, _, nav, _ := newTestClient(server.URL, "/cube/chat")
	client.Reconfigure(time.Second, "/signin", []string{"/signin", "/setup"})

	client.GetJSON(context.Background(), "/api/x", nil, nil)
	if got := nav.lastVisited(); got != "/signin?redirectUri=/cube/chat" {
		t.Errorf("navigated to %q, want the reloaded login path", got)
	}

	// The reloaded public paths exempt the new login route too.
	nav.current = "/signin"
	client.GetJSON(context.Background(), "/api/x", nil, nil)
	if got := nav.lastVisited(); got != "/signin?redirectUri=/cube/chat" {
		t.Errorf("navigated to %q from the reloaded login page", got)
	}
}

func TestClient_ServerError_PresentsStatusLine(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client, presenter, _, _ := newTestClient(server.URL, "/")

	err := client.GetJSON(context.Background(), "/api/x", nil, nil)

	var transport *TransportError
	if !errors.As(err, &transport) || transport.Status != http.StatusBadGateway {
		t.Fatalf("error = %v", err)
	}

	calls := presenter.all()
	if len(calls) != 1 || calls[0] != "error:Response status:502" {
		t.Errorf("presentations = %v", calls)
	}
}

func TestClient_NoResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // Refuse all connections.

	client, presenter, _, _ := newTestClient(server.URL, "/")

	err := client.GetJSON(context.Background(), "/api/x", nil, nil)
	if !errors.Is(err, ErrNoResponse) {
		t.Fatalf("error = %v, want ErrNoResponse", err)
	}

	calls := presenter.all()
	if len(calls) != 1 || calls[0] != "error:None response! Please retry." {
		t.Errorf("presentations = %v", calls)
	}
}

func TestClient_Timeout_IsNoResponse(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	client, _, _, _ := newTestClient(server.URL, "/")
	client.WithTimeout(50 * time.Millisecond)

	err := client.GetJSON(context.Background(), "/api/x", nil, nil)
	if !errors.Is(err, ErrNoResponse) {
		t.Fatalf("error = %v, want ErrNoResponse", err)
	}
}

func TestClient_SkipErrorHandler_SuppressesPresentation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"code":"E1","content":{"message":"boom","show_type":2}}`))
	}))
	defer server.Close()

	client, presenter, _, _ := newTestClient(server.URL, "/")

	err := client.GetJSON(context.Background(), "/api/x", nil, &RequestOptions{SkipErrorHandler: true})
	if err == nil {
		t.Fatal("expected error to still be returned")
	}
	if len(presenter.all()) != 0 {
		t.Errorf("presentations = %v, want none with skip", presenter.all())
	}
}

func TestClient_PostForm_ContentType(t *testing.T) {
	var gotContentType, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		if err := r.ParseForm(); err == nil {
			gotBody = r.PostForm.Get("username")
		}
		w.Write([]byte(`{"success":true,"code":"0","content":{"access_token":"t","token_type":"bearer"}}`))
	}))
	defer server.Close()

	client, _, _, _ := newTestClient(server.URL, "/")

	form := map[string][]string{"username": {"alice"}, "password": {"secret"}}
	var out struct {
		AccessToken string `json:"accessToken"`
		TokenType   string `json:"tokenType"`
	}
	if err := client.PostForm(context.Background(), "/api/login", form, &out, nil); err != nil {
		t.Fatalf("PostForm() error = %v", err)
	}

	if gotContentType != "application/x-www-form-urlencoded;charset=UTF-8" {
		t.Errorf("Content-Type = %q", gotContentType)
	}
	if gotBody != "alice" {
		t.Errorf("form username = %q", gotBody)
	}
	if out.AccessToken != "t" || out.TokenType != "bearer" {
		t.Errorf("decoded %+v, want camelized credential", out)
	}
}

func TestClient_NonEnvelopeBody_IsTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	client, _, _, _ := newTestClient(server.URL, "/")

	err := client.GetJSON(context.Background(), "/api/x", nil, nil)

	var transport *TransportError
	if !errors.As(err, &transport) {
		t.Fatalf("error = %v, want *TransportError", err)
	}
	if transport.Status != http.StatusOK {
		t.Errorf("Status = %d", transport.Status)
	}
}
