// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"strconv"

	"github.com/mocnha/mocnha-go/internal/model"
)

// CreateEventParams holds the fields of a new event log entry.
type CreateEventParams struct {
	Level    string
	Category string
	Message  string
	UserID   int64 // 0 means no user
	Metadata string
}

// CreateEvent appends an event log entry.
func (q *Queries) CreateEvent(ctx context.Context, arg CreateEventParams) error {
	metadata := arg.Metadata
	if metadata == "" {
		metadata = "{}"
	}
	var userID any
	if arg.UserID > 0 {
		userID = arg.UserID
	}
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO events (level, category, message, user_id, metadata)
		VALUES (?, ?, ?, ?, ?)`,
		arg.Level, arg.Category, arg.Message, userID, metadata)
	return err
}

// ListRecentEvents returns the newest limit events.
func (q *Queries) ListRecentEvents(ctx context.Context, limit int64) ([]model.Event, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, level, category, message, user_id, metadata, created_at
		FROM events ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Event
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(&e.ID, &e.Level, &e.Category, &e.Message, &e.UserID,
			&e.Metadata, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// PruneEvents deletes events older than the cutoff, keeping the log bounded.
func (q *Queries) PruneEvents(ctx context.Context, keepDays int64) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`DELETE FROM events WHERE created_at < datetime('now', ?)`,
		"-"+strconv.FormatInt(keepDays, 10)+" days")
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
