// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// TranslationRequest lifecycle statuses.
const (
	RequestStatusPending    = "pending"
	RequestStatusProcessing = "processing"
	RequestStatusCompleted  = "completed"
	RequestStatusFailed     = "failed"
	RequestStatusReviewed   = "reviewed"
)

// TranslationRequest is the audit record of one AI-translation invocation.
// Exactly one row persists per invocation, success or failure. Rows reaching a
// terminal status are only ever touched again by an explicit human review.
// RetryCount is persisted for future retry logic but no code path increments it.
type TranslationRequest struct {
	ID            int64           `json:"id"`
	TranslationID int64           `json:"translation_id"`
	SourceLang    string          `json:"source_lang"`
	TargetLang    string          `json:"target_lang"`
	SourceText    string          `json:"source_text"`
	AIResult      sql.NullString  `json:"ai_result,omitempty"`
	AIProvider    sql.NullString  `json:"ai_provider,omitempty"`
	AIConfidence  sql.NullFloat64 `json:"ai_confidence,omitempty"`
	Status        string          `json:"status"`
	HumanText     sql.NullString  `json:"human_translation,omitempty"`
	ReviewNote    sql.NullString  `json:"review_note,omitempty"`
	ReviewedBy    sql.NullInt64   `json:"reviewed_by,omitempty"`
	ReviewedAt    sql.NullTime    `json:"reviewed_at,omitempty"`
	Error         sql.NullString  `json:"error,omitempty"`
	RetryCount    int64           `json:"retry_count"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// IsTerminal reports whether the request reached a terminal status.
func (r *TranslationRequest) IsTerminal() bool {
	switch r.Status {
	case RequestStatusCompleted, RequestStatusFailed, RequestStatusReviewed:
		return true
	}
	return false
}
