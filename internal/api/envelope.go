// Copyright (c) 2024-2025 Maner Fan / Modu
// SPDX-License-Identifier: Apache-2.0

package api

import "encoding/json"

// =============================================================================
// RESPONSE ENVELOPE
// =============================================================================

// Envelope is the fixed wrapper around every unary modu API reply.
//
// When Success is true, Content holds the domain payload; when false it
// holds an ErrorContent (or, for bulk validation failures, an array of
// validation items). The shape is the compatibility contract between
// this client and the server: a reply that deviates from it degrades to
// the generic transport error path, it never crashes the pipeline.
type Envelope struct {
	Success bool            `json:"success"`
	Code    string          `json:"code"`
	Content json.RawMessage `json:"content"`
}

// =============================================================================
// ERROR SHOW TYPE
// =============================================================================

// ErrorShowType selects how a business error is presented to the user.
// The numeric values are part of the wire contract.
type ErrorShowType int

const (
	// ShowSilent suppresses presentation entirely.
	ShowSilent ErrorShowType = 0
	// ShowWarnMessage presents a transient warning toast.
	ShowWarnMessage ErrorShowType = 1
	// ShowErrorMessage presents a transient error toast. This is the
	// default when the server omits or mangles the show type.
	ShowErrorMessage ErrorShowType = 2
	// ShowNotification presents a persistent notification panel entry
	// with title = code and body = message.
	ShowNotification ErrorShowType = 3
	// ShowRedirect presents an error toast, then navigates to the
	// error's target path.
	ShowRedirect ErrorShowType = 9
)

// String returns the show type name for logs and tests.
func (t ErrorShowType) String() string {
	switch t {
	case ShowSilent:
		return "SILENT"
	case ShowWarnMessage:
		return "WARN_MESSAGE"
	case ShowErrorMessage:
		return "ERROR_MESSAGE"
	case ShowNotification:
		return "NOTIFICATION"
	case ShowRedirect:
		return "REDIRECT"
	default:
		return "UNKNOWN"
	}
}

// =============================================================================
// ERROR CONTENT
// =============================================================================

// ErrorContent is the presentable error description carried by a failed
// envelope. Target is a navigable path, meaningful only for
// ShowRedirect.
type ErrorContent struct {
	Code     string        `json:"code"`
	Message  string        `json:"message"`
	ShowType ErrorShowType `json:"showType"`
	Target   string        `json:"target,omitempty"`
}

// UnmarshalJSON decodes an ErrorContent, defaulting an absent show type
// to ShowErrorMessage. An explicit 0 still means ShowSilent; only a
// missing field takes the default.
func (c *ErrorContent) UnmarshalJSON(data []byte) error {
	type alias struct {
		Code     string         `json:"code"`
		Message  string         `json:"message"`
		ShowType *ErrorShowType `json:"showType"`
		Target   string         `json:"target"`
	}

	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}

	c.Code = a.Code
	c.Message = a.Message
	c.Target = a.Target
	if a.ShowType != nil {
		c.ShowType = *a.ShowType
	} else {
		c.ShowType = ShowErrorMessage
	}
	return nil
}

// ValidationItem is one entry of the legacy bulk-validation error shape,
// where the envelope content is an array instead of a single
// ErrorContent.
type ValidationItem struct {
	Msg string `json:"msg"`
}
