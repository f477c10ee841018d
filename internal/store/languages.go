// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"

	"github.com/mocnha/mocnha-go/internal/model"
)

const languageColumns = `id, code, name, native_name, is_default, is_active, position, created_at, updated_at`

func scanLanguage(row interface{ Scan(...any) error }) (model.Language, error) {
	var l model.Language
	err := row.Scan(&l.ID, &l.Code, &l.Name, &l.NativeName, &l.IsDefault,
		&l.IsActive, &l.Position, &l.CreatedAt, &l.UpdatedAt)
	return l, err
}

// ListLanguages returns all languages ordered by position.
func (q *Queries) ListLanguages(ctx context.Context) ([]model.Language, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+languageColumns+` FROM languages ORDER BY position, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Language
	for rows.Next() {
		l, err := scanLanguage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// GetLanguageByCode returns one language or ErrNotFound.
func (q *Queries) GetLanguageByCode(ctx context.Context, code string) (model.Language, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+languageColumns+` FROM languages WHERE code = ?`, code)
	l, err := scanLanguage(row)
	return l, wrapNotFound(err)
}

// CreateLanguageParams holds the writable language fields.
type CreateLanguageParams struct {
	Code       string
	Name       string
	NativeName string
	IsDefault  bool
	IsActive   bool
	Position   int64
}

// CreateLanguage inserts a language.
func (q *Queries) CreateLanguage(ctx context.Context, arg CreateLanguageParams) (model.Language, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO languages (code, name, native_name, is_default, is_active, position)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING `+languageColumns,
		arg.Code, arg.Name, arg.NativeName, arg.IsDefault, arg.IsActive, arg.Position)
	l, err := scanLanguage(row)
	return l, wrapDuplicate(err)
}
