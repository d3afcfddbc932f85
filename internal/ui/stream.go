// Copyright (c) 2024-2025 Maner Fan / Modu
// SPDX-License-Identifier: Apache-2.0

package ui

import (
	"context"
	"encoding/json"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/manerfan/modu-tui/internal/api"
	"github.com/manerfan/modu-tui/internal/model"
)

// =============================================================================
// STREAM SESSION
// =============================================================================

// streamSession carries one generation stream across the Bubble Tea
// loop. A goroutine pumps events into the channel; the loop drains it
// one waitForStreamEvent command at a time, so events stay ordered.
type streamSession struct {
	stream *api.Stream
	events chan api.Event
	done   chan error
}

type streamOpenedMsg struct {
	session *streamSession
}

type streamEventMsg struct {
	event api.Event
}

type streamDoneMsg struct {
	err error
}

// startStreamCmd opens the generation stream and starts the pump. Open
// failures have already been presented by the transport pipeline; the
// done message only needs to unwind the UI state.
func (a *App) startStreamCmd(cmd model.GenerateCmd) tea.Cmd {
	workspace := a.cfg.Workspace.UID
	return func() tea.Msg {
		stream, err := a.svc.Message.Chat(context.Background(), workspace, cmd, nil)
		if err != nil {
			return streamDoneMsg{err: err}
		}

		session := &streamSession{
			stream: stream,
			events: make(chan api.Event, 64),
			done:   make(chan error, 1),
		}
		go func() {
			err := stream.Receive(func(event api.Event) {
				session.events <- event
			})
			close(session.events)
			session.done <- err
		}()
		return streamOpenedMsg{session: session}
	}
}

// waitForStreamEvent yields the next event, or the terminal result once
// the pump goroutine finishes.
func waitForStreamEvent(session *streamSession) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-session.events
		if !ok {
			return streamDoneMsg{err: <-session.done}
		}
		return streamEventMsg{event: event}
	}
}

// cancel tears the stream down. The pump goroutine unwinds on its own
// and the pending waitForStreamEvent command delivers the done message.
func (s *streamSession) cancel() {
	if s != nil && s.stream != nil {
		s.stream.Close()
	}
}

// =============================================================================
// EVENT PAYLOADS
// =============================================================================

// deltaText extracts the text carried by one stream event. The server
// sends JSON payloads; older builds sent bare strings. Anything
// unrecognized is passed through raw so nothing silently disappears.
func deltaText(event api.Event) string {
	if len(event.Data) == 0 {
		return ""
	}

	var obj struct {
		Content string `json:"content"`
		Text    string `json:"text"`
	}
	if err := json.Unmarshal(event.Data, &obj); err == nil {
		if obj.Content != "" {
			return obj.Content
		}
		if obj.Text != "" {
			return obj.Text
		}
		if event.Data[0] == '{' {
			// A structured frame with no text payload (usage, done
			// markers): nothing to append.
			return ""
		}
	}

	var plain string
	if err := json.Unmarshal(event.Data, &plain); err == nil {
		return plain
	}
	return string(event.Data)
}
