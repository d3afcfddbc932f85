// Copyright (c) 2024-2025 Maner Fan / Modu
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
)

// =============================================================================
// STREAM STATES
// =============================================================================

// StreamState tracks one chat-generation connection:
//
//	Connecting -> Open -> (Receiving)* -> Closed
//	Connecting -> Failed
//	Open       -> Failed
//
// There is no reconnect: a dropped connection is terminal and the
// caller decides whether to issue a fresh request.
type StreamState int32

const (
	// StreamConnecting means the POST has not been accepted yet.
	StreamConnecting StreamState = iota
	// StreamOpen means the transport accepted the connection and events
	// may arrive.
	StreamOpen
	// StreamClosed means the server ended the stream, or the caller
	// tore it down.
	StreamClosed
	// StreamFailed means the connection was refused or dropped.
	StreamFailed
)

// String returns the state name for logs and tests.
func (s StreamState) String() string {
	switch s {
	case StreamConnecting:
		return "connecting"
	case StreamOpen:
		return "open"
	case StreamClosed:
		return "closed"
	case StreamFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// =============================================================================
// EVENTS
// =============================================================================

// Event is one server-pushed unit on a generation stream. Name is the
// event channel ("message" when the server sent none); Data is the raw
// payload, uninterpreted — domain semantics belong to the caller.
type Event struct {
	Name string
	Data []byte
}

// EventHandler receives events in arrival order.
type EventHandler func(Event)

// =============================================================================
// STREAM
// =============================================================================

// Stream is one open generation connection. Exactly one stream exists
// per active generation; opening a second one for the same conversation
// is a caller error the transport does not arbitrate.
type Stream struct {
	state          atomic.Int32
	body           io.ReadCloser
	cancel         context.CancelFunc
	closedByCaller atomic.Bool
}

// State returns the current connection state.
func (s *Stream) State() StreamState {
	return StreamState(s.state.Load())
}

// Close tears the connection down. It is the only cancellation
// primitive: any partially received event is discarded, not delivered.
// Safe to call more than once and concurrently with Receive.
func (s *Stream) Close() error {
	s.closedByCaller.Store(true)
	s.cancel()
	return s.body.Close()
}

// Receive reads events until the stream ends, invoking handler for each
// complete event in the server's send order. It returns nil when the
// server ends the stream or the caller closed it, and the terminal
// error when the connection drops mid-stream.
func (s *Stream) Receive(handler EventHandler) error {
	reader := newEventReader(s.body)

	for {
		event, err := reader.next()
		if err != nil {
			if err == io.EOF || s.closedByCaller.Load() {
				s.state.Store(int32(StreamClosed))
				return nil
			}
			s.state.Store(int32(StreamFailed))
			return fmt.Errorf("stream dropped: %w", err)
		}
		handler(event)
	}
}

// =============================================================================
// OPENING A STREAM
// =============================================================================

// OpenStream issues a streaming POST carrying the serialized command as
// the body and transitions to Open once the transport accepts it. The
// credential header is attached exactly as on unary requests; a refused
// connection goes through the same session guard and classifier as a
// unary failure.
func (c *Client) OpenStream(ctx context.Context, path string, payload any, opts *RequestOptions) (*Stream, error) {
	if opts == nil {
		opts = &RequestOptions{}
	}

	stream, err := c.openStream(ctx, path, payload, opts)
	if err != nil {
		c.classify(err, opts)
		return nil, err
	}
	return stream, nil
}

func (c *Client) openStream(ctx context.Context, path string, payload any, opts *RequestOptions) (*Stream, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal generation command: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	c.injectCredential(req)
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	// No timeout here: a generation stream lives until the server ends
	// it or the caller cancels.
	_, streamClient, guard := c.snapshot()
	resp, err := streamClient.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%w: %v", ErrNoResponse, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := readLimited(resp.Body)
		resp.Body.Close()
		cancel()
		guard.Intercept(resp.StatusCode, opts)
		return nil, &TransportError{Status: resp.StatusCode, Body: camelizeJSON(raw)}
	}

	stream := &Stream{body: resp.Body, cancel: cancel}
	stream.state.Store(int32(StreamOpen))
	return stream, nil
}

// Stream is the blocking convenience form: open, receive until the
// stream ends, then return. Most callers want this.
func (c *Client) Stream(ctx context.Context, path string, payload any, handler EventHandler, opts *RequestOptions) error {
	stream, err := c.OpenStream(ctx, path, payload, opts)
	if err != nil {
		return err
	}
	defer stream.Close()
	return stream.Receive(handler)
}

// =============================================================================
// EVENT WIRE FORMAT
// =============================================================================

// eventReader assembles text/event-stream frames: "event:" names the
// channel, "data:" lines accumulate (joined with newlines), a blank
// line dispatches, ":" comments and "id:"/"retry:" hints are ignored.
// No buffering happens beyond assembling one event.
type eventReader struct {
	r *bufio.Reader
}

func newEventReader(r io.Reader) *eventReader {
	return &eventReader{r: bufio.NewReader(r)}
}

// next returns the next complete event. A partial event interrupted by
// EOF or a read error is discarded.
func (er *eventReader) next() (Event, error) {
	var name string
	var data [][]byte

	for {
		line, err := er.r.ReadBytes('\n')
		if err != nil {
			return Event{}, err
		}
		line = bytes.TrimRight(line, "\r\n")

		if len(line) == 0 {
			if len(data) > 0 {
				return Event{Name: eventName(name), Data: bytes.Join(data, []byte("\n"))}, nil
			}
			continue
		}

		switch {
		case line[0] == ':':
			// Comment / heartbeat frame.
		case bytes.HasPrefix(line, []byte("event:")):
			name = string(bytes.TrimSpace(line[len("event:"):]))
		case bytes.HasPrefix(line, []byte("data:")):
			data = append(data, bytes.TrimSpace(line[len("data:"):]))
		}
		// id: and retry: are ignored; there is no resume or reconnect.
	}
}

func eventName(name string) string {
	if name == "" {
		return "message"
	}
	return name
}
