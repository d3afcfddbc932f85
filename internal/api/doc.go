// Copyright (c) 2024-2025 Maner Fan / Modu
// SPDX-License-Identifier: Apache-2.0

// Package api implements the network transport core of the modu client.
//
// Every call to the modu server funnels through one pipeline:
//
//	build request -> inject credential -> send -> session guard ->
//	camelize payload -> envelope check -> classify & present errors
//
// The pipeline owns all cross-cutting transport state: the current
// credential, the 401-to-login redirect policy, the error presentation
// policy, and the long-lived event stream used for chat generation.
// Domain packages (services) only build URLs and typed payloads; they
// never present errors themselves.
//
// Collaborators are injected as small interfaces (CredentialStore,
// Navigator, Presenter) so the pipeline can be exercised in tests with
// fakes and an httptest server.
package api
