// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package translate implements the multilingual content pipeline: key/value
// translation entries, AI-assisted translation with an audit trail, human
// review with versioned history, and aggregate completion statistics.
package translate

import (
	"context"
	"errors"
	"fmt"
)

// ProviderID constants for supported translation providers.
const (
	ProviderOpenAI = "openai"
	ProviderCompat = "openai_compat"
	ProviderStub   = "stub"
)

// Result is the outcome of one successful provider invocation.
type Result struct {
	Translation string
	Confidence  float64 // in [0,1]
	Provider    string
}

// Provider is the interface to an external machine-translation backend.
// Implementations must be safe for concurrent use.
type Provider interface {
	ID() string
	Translate(ctx context.Context, text, sourceLang, targetLang, note string) (*Result, error)
}

// disabledProvider rejects every call. It stands in when no AI backend is
// configured so that key management and review keep working.
type disabledProvider struct{}

// NewDisabledProvider returns a Provider that fails every translation with an
// upstream error.
func NewDisabledProvider() Provider { return disabledProvider{} }

func (disabledProvider) ID() string { return "disabled" }

func (disabledProvider) Translate(context.Context, string, string, string, string) (*Result, error) {
	return nil, upstreamErr("disabled", errors.New("no translation provider configured"))
}

// ErrValidation marks malformed caller input.
var ErrValidation = errors.New("validation failed")

// ErrUpstream marks a failure of the external translation provider.
var ErrUpstream = errors.New("translation provider failed")

func validationErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func upstreamErr(provider string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrUpstream, provider, err)
}

// langName maps a supported language code to the name used in prompts.
func langName(code string) string {
	switch code {
	case "vi":
		return "Vietnamese"
	case "zh":
		return "Simplified Chinese"
	default:
		return code
	}
}
