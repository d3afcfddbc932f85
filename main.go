// modu TUI - a terminal client for the modu chat server.
//
// Copyright (c) 2024-2025 Maner Fan / Modu
// SPDX-License-Identifier: Apache-2.0
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/manerfan/modu-tui/internal/api"
	"github.com/manerfan/modu-tui/internal/config"
	"github.com/manerfan/modu-tui/internal/services"
	"github.com/manerfan/modu-tui/internal/storage"
	"github.com/manerfan/modu-tui/internal/ui"
	"github.com/manerfan/modu-tui/internal/ui/components"
	"github.com/manerfan/modu-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	var (
		serverURL    = flag.String("server", "", "server base URL (overrides config)")
		workspaceUID = flag.String("workspace", "", "workspace UID (overrides config)")
		logPath      = flag.String("log", "", "write request logs to this file")
		showVersion  = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("modu %s (%s, %s)\n", Version, GitCommit, BuildDate)
		return
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: modu needs an interactive terminal")
		os.Exit(1)
	}

	// The transport logs every request; without -log that would corrupt
	// the alternate screen, so it goes to a file or nowhere.
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		log.SetOutput(f)
	} else {
		log.SetOutput(io.Discard)
	}

	cfg := config.Global()
	if *serverURL != "" {
		cfg.Server.URL = *serverURL
	}
	if *workspaceUID != "" {
		cfg.Workspace.UID = *workspaceUID
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid configuration: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error running modu: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	theme := styles.NewTheme()

	configDir, err := config.ConfigDir()
	if err != nil {
		return fmt.Errorf("failed to locate config directory: %w", err)
	}
	creds, err := api.NewFileCredentialStore(filepath.Join(configDir, "credentials"))
	if err != nil {
		return fmt.Errorf("failed to open credential store: %w", err)
	}

	// Start at the chat route when a credential is on file; the first
	// 401 bounces us to login either way.
	initialRoute := api.DefaultLoginPath
	if _, ok := creds.Get(); ok {
		initialRoute = api.RootPath
	}
	router := ui.NewRouter(initialRoute)

	toasts := components.NewToastManager()
	panel := components.NewNotificationPanel()
	presenter := ui.NewToastPresenter(toasts, panel)

	client := api.NewClient(cfg.Server.URL, creds, router, presenter).
		WithTimeout(time.Duration(cfg.Server.TimeoutSecs) * time.Second).
		WithLoginPath(cfg.Server.LoginPath).
		WithPublicPaths(cfg.Server.PublicPaths)

	svc := ui.Services{
		Auth:    services.NewAuthService(client, creds),
		System:  services.NewSystemService(client),
		LLM:     services.NewLLMService(client),
		Message: services.NewMessageService(client),
	}

	var history *storage.HistoryStore
	if cfg.History.Enabled {
		path, err := cfg.HistoryPath()
		if err == nil {
			history, err = storage.NewHistoryStore(path)
		}
		if err != nil {
			// History is a convenience; the client works without it.
			fmt.Fprintf(os.Stderr, "Warning: history disabled: %v\n", err)
			history = nil
		}
	}

	app := ui.NewApp(cfg, theme, router, presenter, creds, svc, history, toasts, panel)
	program := tea.NewProgram(app, tea.WithAltScreen())

	// Off-loop collaborators (session guard, classifier) need Send to
	// wake the UI.
	router.SetProgramSend(program.Send)
	presenter.SetProgramSend(program.Send)

	// Config edits apply while running: the watcher reloads the global,
	// retunes the transport, and wakes the UI with the new settings.
	reload := func(next *config.Config) {
		client.Reconfigure(time.Duration(next.Server.TimeoutSecs)*time.Second,
			next.Server.LoginPath, next.Server.PublicPaths)
		program.Send(ui.ConfigReloadedMsg{Config: next})
	}
	if watcher, err := config.NewWatcher(reload); err == nil {
		if err := watcher.Watch(); err != nil {
			watcher.Close()
		} else {
			defer watcher.Close()
		}
	}

	if _, err := program.Run(); err != nil {
		return err
	}
	return nil
}
