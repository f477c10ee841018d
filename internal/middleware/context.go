// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// authorization, rate limiting and request context handling.
package middleware

import (
	"net"
	"net/http"
	"strings"
)

// ContextKey is the type for request context keys set by this package.
type ContextKey string

const (
	// ContextKeyAPIKey is the context key for the authenticated API key.
	ContextKeyAPIKey ContextKey = "api_key"

	// ContextKeyLang is the context key for the negotiated content language.
	ContextKeyLang ContextKey = "lang"
)

// getClientIP extracts the client IP, preferring X-Forwarded-For when a
// reverse proxy sets it.
func getClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
