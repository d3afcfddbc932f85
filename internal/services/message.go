// Copyright (c) 2024-2025 Maner Fan / Modu
// SPDX-License-Identifier: Apache-2.0

package services

import (
	"context"
	"net/url"

	"github.com/manerfan/modu-tui/internal/api"
	"github.com/manerfan/modu-tui/internal/model"
)

// MessageService drives chat generation and conversation memory.
type MessageService struct {
	client *api.Client
}

// NewMessageService creates the message service.
func NewMessageService(client *api.Client) *MessageService {
	return &MessageService{client: client}
}

// Chat opens a generation stream for the workspace. The caller owns the
// returned stream: call Receive to pump events and Close when done.
func (s *MessageService) Chat(ctx context.Context, workspaceUID string, cmd model.GenerateCmd, opts *api.RequestOptions) (*api.Stream, error) {
	path := "/api/chat?workspace_uid=" + url.QueryEscape(workspaceUID)
	return s.client.OpenStream(ctx, path, cmd, opts)
}

// ClearMemory truncates a conversation's memory on the server and
// returns the messages that were cleared.
func (s *MessageService) ClearMemory(ctx context.Context, conversationUID string, opts *api.RequestOptions) ([]model.MessageContent, error) {
	path := "/api/chat/" + url.PathEscape(conversationUID) + "/message/clear"
	var cleared []model.MessageContent
	if err := s.client.PostJSON(ctx, path, nil, &cleared, opts); err != nil {
		return nil, err
	}
	return cleared, nil
}
