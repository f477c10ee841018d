// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"

	"github.com/mocnha/mocnha-go/internal/model"
)

const requestColumns = `id, translation_id, source_lang, target_lang, source_text, ai_result, ai_provider, ai_confidence, status, human_translation, review_note, reviewed_by, reviewed_at, error, retry_count, created_at, updated_at`

func scanRequest(row interface{ Scan(...any) error }) (model.TranslationRequest, error) {
	var r model.TranslationRequest
	err := row.Scan(&r.ID, &r.TranslationID, &r.SourceLang, &r.TargetLang,
		&r.SourceText, &r.AIResult, &r.AIProvider, &r.AIConfidence, &r.Status,
		&r.HumanText, &r.ReviewNote, &r.ReviewedBy, &r.ReviewedAt, &r.Error,
		&r.RetryCount, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

// CreateRequestParams holds the fields of a new translation request row.
type CreateRequestParams struct {
	TranslationID int64
	SourceLang    string
	TargetLang    string
	SourceText    string
	Status        string
}

// CreateTranslationRequest inserts the audit row for one AI invocation.
func (q *Queries) CreateTranslationRequest(ctx context.Context, arg CreateRequestParams) (model.TranslationRequest, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO translation_requests (translation_id, source_lang, target_lang, source_text, status)
		VALUES (?, ?, ?, ?, ?)
		RETURNING `+requestColumns,
		arg.TranslationID, arg.SourceLang, arg.TargetLang, arg.SourceText, arg.Status)
	return scanRequest(row)
}

// GetTranslationRequest returns one request row or ErrNotFound.
func (q *Queries) GetTranslationRequest(ctx context.Context, id int64) (model.TranslationRequest, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM translation_requests WHERE id = ?`, id)
	r, err := scanRequest(row)
	return r, wrapNotFound(err)
}

// MarkRequestProcessing moves a request from pending to processing.
func (q *Queries) MarkRequestProcessing(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE translation_requests SET status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, model.RequestStatusProcessing, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// CompleteRequestParams carries the AI result recorded on success.
type CompleteRequestParams struct {
	ID         int64
	AIResult   string
	AIProvider string
	Confidence float64
}

// CompleteTranslationRequest records a successful AI result.
func (q *Queries) CompleteTranslationRequest(ctx context.Context, arg CompleteRequestParams) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE translation_requests
		SET status = ?, ai_result = ?, ai_provider = ?, ai_confidence = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		model.RequestStatusCompleted, arg.AIResult, arg.AIProvider, arg.Confidence, arg.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// FailTranslationRequest records an upstream failure.
func (q *Queries) FailTranslationRequest(ctx context.Context, id int64, message string) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE translation_requests SET status = ?, error = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, model.RequestStatusFailed, message, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ReviewRequestParams carries the human review columns.
type ReviewRequestParams struct {
	ID         int64
	HumanText  string
	ReviewNote string
	ReviewedBy int64
}

// MarkRequestReviewed records a human review on the latest request row.
func (q *Queries) MarkRequestReviewed(ctx context.Context, arg ReviewRequestParams) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE translation_requests
		SET status = ?, human_translation = ?, review_note = ?, reviewed_by = ?,
		    reviewed_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		model.RequestStatusReviewed, arg.HumanText, arg.ReviewNote, arg.ReviewedBy, arg.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListRequestsForTranslation returns the audit trail for one entry, newest first.
func (q *Queries) ListRequestsForTranslation(ctx context.Context, translationID int64) ([]model.TranslationRequest, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+requestColumns+` FROM translation_requests
		WHERE translation_id = ? ORDER BY created_at DESC, id DESC`, translationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.TranslationRequest
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetLatestCompletedRequest returns the newest completed request for an entry,
// the row a review attaches to. ErrNotFound when no completed request exists.
func (q *Queries) GetLatestCompletedRequest(ctx context.Context, translationID int64) (model.TranslationRequest, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT `+requestColumns+` FROM translation_requests
		WHERE translation_id = ? AND status = ?
		ORDER BY created_at DESC, id DESC LIMIT 1`,
		translationID, model.RequestStatusCompleted)
	r, err := scanRequest(row)
	return r, wrapNotFound(err)
}

// ExpireStaleProcessingRequests fails any request stuck in processing longer
// than maxAge. The scheduler runs this to clean up after crashes.
func (q *Queries) ExpireStaleProcessingRequests(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-maxAge)
	res, err := q.db.ExecContext(ctx, `
		UPDATE translation_requests
		SET status = ?, error = 'expired: stuck in processing', updated_at = CURRENT_TIMESTAMP
		WHERE status = ? AND updated_at < ?`,
		model.RequestStatusFailed, model.RequestStatusProcessing, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CountRequestsByStatus aggregates request counts per lifecycle status.
func (q *Queries) CountRequestsByStatus(ctx context.Context) (map[string]int64, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM translation_requests GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]int64)
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[status] = n
	}
	return out, rows.Err()
}
