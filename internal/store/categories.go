// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"

	"github.com/mocnha/mocnha-go/internal/model"
)

const categoryColumns = `id, slug, name, name_zh, description, parent_id, image, sort_order, is_active, created_at, updated_at`

func scanCategory(row interface{ Scan(...any) error }) (model.Category, error) {
	var c model.Category
	err := row.Scan(&c.ID, &c.Slug, &c.Name, &c.NameZh, &c.Description, &c.ParentID,
		&c.Image, &c.SortOrder, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (q *Queries) collectCategories(rows *sql.Rows) ([]model.Category, error) {
	defer rows.Close()
	var out []model.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListCategories returns every category ordered by ID. Tree building sorts
// in memory, so storage order only matters for admin root ordering.
func (q *Queries) ListCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return q.collectCategories(rows)
}

// ListActiveCategories returns active categories ordered by ID.
func (q *Queries) ListActiveCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE is_active = 1 ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return q.collectCategories(rows)
}

// GetCategoryByID returns a single category or ErrNotFound.
func (q *Queries) GetCategoryByID(ctx context.Context, id int64) (model.Category, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id)
	c, err := scanCategory(row)
	return c, wrapNotFound(err)
}

// GetCategoryBySlug returns a single category or ErrNotFound.
func (q *Queries) GetCategoryBySlug(ctx context.Context, slug string) (model.Category, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE slug = ?`, slug)
	c, err := scanCategory(row)
	return c, wrapNotFound(err)
}

// CreateCategoryParams holds the writable category fields.
type CreateCategoryParams struct {
	Slug        string
	Name        string
	NameZh      string
	Description sql.NullString
	ParentID    sql.NullInt64
	Image       sql.NullString
	SortOrder   int64
	IsActive    bool
}

// CreateCategory inserts a category and returns it.
func (q *Queries) CreateCategory(ctx context.Context, arg CreateCategoryParams) (model.Category, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO categories (slug, name, name_zh, description, parent_id, image, sort_order, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+categoryColumns,
		arg.Slug, arg.Name, arg.NameZh, arg.Description, arg.ParentID,
		arg.Image, arg.SortOrder, arg.IsActive)
	c, err := scanCategory(row)
	return c, wrapDuplicate(err)
}

// UpdateCategoryParams holds the updatable category fields.
type UpdateCategoryParams struct {
	ID          int64
	Slug        string
	Name        string
	NameZh      string
	Description sql.NullString
	ParentID    sql.NullInt64
	Image       sql.NullString
	SortOrder   int64
	IsActive    bool
}

// UpdateCategory updates all mutable fields of a category.
func (q *Queries) UpdateCategory(ctx context.Context, arg UpdateCategoryParams) (model.Category, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE categories
		SET slug = ?, name = ?, name_zh = ?, description = ?, parent_id = ?,
		    image = ?, sort_order = ?, is_active = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
		RETURNING `+categoryColumns,
		arg.Slug, arg.Name, arg.NameZh, arg.Description, arg.ParentID,
		arg.Image, arg.SortOrder, arg.IsActive, arg.ID)
	c, err := scanCategory(row)
	if err != nil {
		if dup := wrapDuplicate(err); dup == ErrDuplicate {
			return c, dup
		}
		return c, wrapNotFound(err)
	}
	return c, nil
}

// UpdateCategoryTranslation sets the Chinese name produced by the pipeline.
func (q *Queries) UpdateCategoryTranslation(ctx context.Context, id int64, nameZh string) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE categories SET name_zh = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		nameZh, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteCategory removes a category. Children are re-parented to root by the
// ON DELETE SET NULL constraint.
func (q *Queries) DeleteCategory(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// CategorySlugExists reports whether slug is taken.
func (q *Queries) CategorySlugExists(ctx context.Context, slug string) (bool, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM categories WHERE slug = ?`, slug).Scan(&n)
	return n > 0, err
}

// CategorySlugExistsExcluding reports whether slug is taken by any row other than id.
func (q *Queries) CategorySlugExistsExcluding(ctx context.Context, slug string, id int64) (bool, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM categories WHERE slug = ? AND id != ?`, slug, id).Scan(&n)
	return n > 0, err
}

// GetDescendantCategoryIDs returns the IDs of every category below id,
// used to reject re-parenting moves that would create a cycle.
func (q *Queries) GetDescendantCategoryIDs(ctx context.Context, id int64) ([]int64, error) {
	rows, err := q.db.QueryContext(ctx, `
		WITH RECURSIVE descendants(id) AS (
			SELECT id FROM categories WHERE parent_id = ?
			UNION ALL
			SELECT c.id FROM categories c JOIN descendants d ON c.parent_id = d.id
		)
		SELECT id FROM descendants`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var v int64
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		ids = append(ids, v)
	}
	return ids, rows.Err()
}

// CountCategories returns the total number of categories.
func (q *Queries) CountCategories(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&n)
	return n, err
}
