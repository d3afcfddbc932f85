// Copyright (c) 2024-2025 Maner Fan / Modu
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"encoding/json"
	"errors"
	"fmt"
)

// =============================================================================
// ERROR TAXONOMY
// =============================================================================

// ErrNoResponse indicates the request was sent but no reply arrived
// (connection refused, reset, timeout). The caller sees a generic retry
// message; no retry happens at this layer.
var ErrNoResponse = errors.New("no response received")

// BizError is a business failure the server reported explicitly via a
// success=false envelope. It is always presentable through the show-type
// dispatch table.
type BizError struct {
	Content ErrorContent
}

// Error implements the error interface.
func (e *BizError) Error() string {
	if e.Content.Code != "" {
		return fmt.Sprintf("biz error [%s]: %s", e.Content.Code, e.Content.Message)
	}
	return "biz error: " + e.Content.Message
}

// BizErrorList is the legacy bulk-validation failure shape: the server
// returned an array of validation items instead of a single
// ErrorContent. Only the first item is presented.
type BizErrorList struct {
	Items []ValidationItem
}

// Error implements the error interface.
func (e *BizErrorList) Error() string {
	if len(e.Items) > 0 {
		return "validation error: " + e.Items[0].Msg
	}
	return "validation error"
}

// First returns the message of the first item, or "".
func (e *BizErrorList) First() string {
	if len(e.Items) == 0 {
		return ""
	}
	return e.Items[0].Msg
}

// TransportError is a non-2xx reply without a recognizable success=false
// envelope. Body holds the camelized response body and may be empty.
type TransportError struct {
	Status int
	Body   []byte
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("response status: %d", e.Status)
}

// =============================================================================
// PRESENTER
// =============================================================================

// Presenter renders classified errors (and the session guard's notices)
// to the user. The TUI implements it with toasts and a notification
// panel; tests implement it with a recorder.
type Presenter interface {
	// Info shows a transient informational notice.
	Info(msg string)

	// Warn shows a transient warning toast.
	Warn(msg string)

	// Error shows a transient error toast.
	Error(msg string)

	// Notify adds a persistent notification panel entry.
	Notify(title, body string)
}

// =============================================================================
// CLASSIFIER
// =============================================================================

// Classifier turns a failed pipeline error into exactly one presentation
// (or none, for silent errors). It is the single outermost error hook:
// call sites never re-present, they only decide whether to suppress
// presentation via RequestOptions.SkipErrorHandler and handle the
// returned error themselves.
type Classifier struct {
	Presenter Presenter
	Navigator Navigator
}

// Handle classifies err and presents it, unless opts marks the call as
// skip-error-handling (the session guard may have set that after a 401).
// The error is classified once; Handle never wraps or replaces it.
func (c *Classifier) Handle(err error, opts *RequestOptions) {
	if err == nil {
		return
	}
	if opts != nil && opts.SkipErrorHandler {
		return
	}

	// 1. Bulk-validation array shape: warn with the first message.
	var list *BizErrorList
	if errors.As(err, &list) {
		c.Presenter.Warn(list.First())
		return
	}

	// 2. Structured business error: dispatch on show type.
	var biz *BizError
	if errors.As(err, &biz) {
		c.present(biz.Content)
		return
	}

	// 3. Transport failure with a response: present the embedded error
	// content when the body is non-empty, else a generic status line.
	var transport *TransportError
	if errors.As(err, &transport) {
		if content, ok := errorContentFromBody(transport.Body); ok {
			c.present(content)
			return
		}
		if items, ok := validationItemsFromBody(transport.Body); ok && len(items) > 0 {
			c.Presenter.Warn(items[0].Msg)
			return
		}
		c.Presenter.Error(fmt.Sprintf("Response status:%d", transport.Status))
		return
	}

	// 4. Request sent, no reply.
	if errors.Is(err, ErrNoResponse) {
		c.Presenter.Error("None response! Please retry.")
		return
	}

	// 5. Failure below the transport layer (request never sent).
	c.Presenter.Error("Request error, please retry.")
}

// present dispatches one ErrorContent to its presentation. Unrecognized
// show types degrade to the error toast; they must never crash.
func (c *Classifier) present(content ErrorContent) {
	switch content.ShowType {
	case ShowSilent:
		// Nothing.
	case ShowWarnMessage:
		c.Presenter.Warn(content.Message)
	case ShowErrorMessage:
		c.Presenter.Error(content.Message)
	case ShowNotification:
		c.Presenter.Notify(content.Code, content.Message)
	case ShowRedirect:
		c.Presenter.Error(content.Message)
		if c.Navigator != nil && content.Target != "" {
			c.Navigator.Navigate(content.Target)
		}
	default:
		c.Presenter.Error(content.Message)
	}
}

// errorContentFromBody tries to read a JSON object body as an
// ErrorContent. A body that is not a JSON object, or decodes to an
// empty message and code, does not count.
func errorContentFromBody(body []byte) (ErrorContent, bool) {
	if len(body) == 0 || body[0] != '{' {
		return ErrorContent{}, false
	}
	var content ErrorContent
	if err := json.Unmarshal(body, &content); err != nil {
		return ErrorContent{}, false
	}
	if content.Message == "" && content.Code == "" {
		return ErrorContent{}, false
	}
	return content, true
}

// validationItemsFromBody tries to read a JSON array body as the bulk
// validation shape.
func validationItemsFromBody(body []byte) ([]ValidationItem, bool) {
	if len(body) == 0 || body[0] != '[' {
		return nil, false
	}
	var items []ValidationItem
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, false
	}
	return items, true
}
