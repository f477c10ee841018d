// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"

	"github.com/mocnha/mocnha-go/internal/model"
)

const translationColumns = `id, key, namespace, translations, context, category, is_plural, tags, version, history, created_at, updated_at`

func scanTranslation(row interface{ Scan(...any) error }) (model.TranslationEntry, error) {
	var e model.TranslationEntry
	err := row.Scan(&e.ID, &e.Key, &e.Namespace, &e.Translations, &e.Context,
		&e.Category, &e.IsPlural, &e.Tags, &e.Version, &e.History,
		&e.CreatedAt, &e.UpdatedAt)
	return e, err
}

func (q *Queries) collectTranslations(rows *sql.Rows) ([]model.TranslationEntry, error) {
	defer rows.Close()
	var out []model.TranslationEntry
	for rows.Next() {
		e, err := scanTranslation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// CreateTranslationParams holds the fields of a new translation entry.
// Translations, Tags and History are pre-serialized JSON columns.
type CreateTranslationParams struct {
	Key          string
	Namespace    string
	Translations string
	Context      string
	Category     string
	IsPlural     bool
	Tags         string
}

// CreateTranslationEntry inserts a new entry at version 1 with empty history.
// Returns ErrDuplicate when the key already exists.
func (q *Queries) CreateTranslationEntry(ctx context.Context, arg CreateTranslationParams) (model.TranslationEntry, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO translations (key, namespace, translations, context, category, is_plural, tags)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING `+translationColumns,
		arg.Key, arg.Namespace, arg.Translations, arg.Context, arg.Category,
		arg.IsPlural, arg.Tags)
	e, err := scanTranslation(row)
	return e, wrapDuplicate(err)
}

// GetTranslationByID returns one entry or ErrNotFound.
func (q *Queries) GetTranslationByID(ctx context.Context, id int64) (model.TranslationEntry, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+translationColumns+` FROM translations WHERE id = ?`, id)
	e, err := scanTranslation(row)
	return e, wrapNotFound(err)
}

// GetTranslationByKey returns one entry or ErrNotFound.
func (q *Queries) GetTranslationByKey(ctx context.Context, key string) (model.TranslationEntry, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+translationColumns+` FROM translations WHERE key = ?`, key)
	e, err := scanTranslation(row)
	return e, wrapNotFound(err)
}

// ListTranslations returns entries ordered by key, optionally restricted to a
// namespace.
func (q *Queries) ListTranslations(ctx context.Context, namespace string) ([]model.TranslationEntry, error) {
	if namespace == "" {
		rows, err := q.db.QueryContext(ctx,
			`SELECT `+translationColumns+` FROM translations ORDER BY key`)
		if err != nil {
			return nil, err
		}
		return q.collectTranslations(rows)
	}
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+translationColumns+` FROM translations WHERE namespace = ? ORDER BY key`,
		namespace)
	if err != nil {
		return nil, err
	}
	return q.collectTranslations(rows)
}

// ListTranslationsByIDs returns the entries with the given IDs.
func (q *Queries) ListTranslationsByIDs(ctx context.Context, ids []int64) ([]model.TranslationEntry, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT ` + translationColumns + ` FROM translations WHERE id IN (`
	args := make([]any, len(ids))
	for i, id := range ids {
		if i > 0 {
			query += ","
		}
		query += "?"
		args[i] = id
	}
	query += `) ORDER BY id`
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return q.collectTranslations(rows)
}

// UpdateTranslationValues rewrites the translations JSON column without
// touching the version counter. This is the write path for AI results.
func (q *Queries) UpdateTranslationValues(ctx context.Context, id int64, translations string) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE translations SET translations = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, translations, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ReviewTranslationParams carries the columns a human review rewrites in one
// statement: new values, appended history and the incremented version.
type ReviewTranslationParams struct {
	ID           int64
	Translations string
	History      string
	Version      int64
}

// ApplyTranslationReview persists a human review. The caller computes the new
// version; this is the only statement that writes the version column.
func (q *Queries) ApplyTranslationReview(ctx context.Context, arg ReviewTranslationParams) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE translations
		SET translations = ?, history = ?, version = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, arg.Translations, arg.History, arg.Version, arg.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteTranslationEntry removes an entry and cascades to its requests.
func (q *Queries) DeleteTranslationEntry(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM translations WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// TranslationKeyExists reports whether key is already taken.
func (q *Queries) TranslationKeyExists(ctx context.Context, key string) (bool, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM translations WHERE key = ?`, key).Scan(&n)
	return n > 0, err
}

// NamespaceCount pairs a namespace with its entry count.
type NamespaceCount struct {
	Namespace string
	Count     int64
}

// CountTranslationsByNamespace aggregates entry counts per namespace.
func (q *Queries) CountTranslationsByNamespace(ctx context.Context) ([]NamespaceCount, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT namespace, COUNT(*) FROM translations GROUP BY namespace ORDER BY namespace`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []NamespaceCount
	for rows.Next() {
		var nc NamespaceCount
		if err := rows.Scan(&nc.Namespace, &nc.Count); err != nil {
			return nil, err
		}
		out = append(out, nc)
	}
	return out, rows.Err()
}
