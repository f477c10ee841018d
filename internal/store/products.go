// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"

	"github.com/mocnha/mocnha-go/internal/model"
)

const productColumns = `id, sku, slug, name, name_zh, description, description_zh, price_vnd, category_id, image, is_active, created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }) (model.Product, error) {
	var p model.Product
	err := row.Scan(&p.ID, &p.SKU, &p.Slug, &p.Name, &p.NameZh, &p.Description,
		&p.DescriptionZh, &p.PriceVND, &p.CategoryID, &p.Image, &p.IsActive,
		&p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (q *Queries) collectProducts(rows *sql.Rows) ([]model.Product, error) {
	defer rows.Close()
	var out []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListProductsParams filters and paginates product listings.
type ListProductsParams struct {
	CategoryID sql.NullInt64
	ActiveOnly bool
	Limit      int64
	Offset     int64
}

// ListProducts returns products newest first, optionally filtered by category
// and activity.
func (q *Queries) ListProducts(ctx context.Context, arg ListProductsParams) ([]model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE 1=1`
	var args []any
	if arg.ActiveOnly {
		query += ` AND is_active = 1`
	}
	if arg.CategoryID.Valid {
		query += ` AND category_id = ?`
		args = append(args, arg.CategoryID.Int64)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, arg.Limit, arg.Offset)

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return q.collectProducts(rows)
}

// CountProducts returns the total count matching the same filters as ListProducts.
func (q *Queries) CountProducts(ctx context.Context, arg ListProductsParams) (int64, error) {
	query := `SELECT COUNT(*) FROM products WHERE 1=1`
	var args []any
	if arg.ActiveOnly {
		query += ` AND is_active = 1`
	}
	if arg.CategoryID.Valid {
		query += ` AND category_id = ?`
		args = append(args, arg.CategoryID.Int64)
	}
	var n int64
	err := q.db.QueryRowContext(ctx, query, args...).Scan(&n)
	return n, err
}

// GetProductByID returns a single product or ErrNotFound.
func (q *Queries) GetProductByID(ctx context.Context, id int64) (model.Product, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = ?`, id)
	p, err := scanProduct(row)
	return p, wrapNotFound(err)
}

// GetProductBySlug returns a single product or ErrNotFound.
func (q *Queries) GetProductBySlug(ctx context.Context, slug string) (model.Product, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE slug = ?`, slug)
	p, err := scanProduct(row)
	return p, wrapNotFound(err)
}

// CreateProductParams holds the writable product fields.
type CreateProductParams struct {
	SKU           string
	Slug          string
	Name          string
	NameZh        string
	Description   string
	DescriptionZh string
	PriceVND      int64
	CategoryID    sql.NullInt64
	Image         sql.NullString
	IsActive      bool
}

// CreateProduct inserts a product and returns it.
func (q *Queries) CreateProduct(ctx context.Context, arg CreateProductParams) (model.Product, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO products (sku, slug, name, name_zh, description, description_zh, price_vnd, category_id, image, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+productColumns,
		arg.SKU, arg.Slug, arg.Name, arg.NameZh, arg.Description, arg.DescriptionZh,
		arg.PriceVND, arg.CategoryID, arg.Image, arg.IsActive)
	p, err := scanProduct(row)
	return p, wrapDuplicate(err)
}

// UpdateProductParams holds the updatable product fields.
type UpdateProductParams struct {
	ID            int64
	SKU           string
	Slug          string
	Name          string
	NameZh        string
	Description   string
	DescriptionZh string
	PriceVND      int64
	CategoryID    sql.NullInt64
	Image         sql.NullString
	IsActive      bool
}

// UpdateProduct updates all mutable fields of a product.
func (q *Queries) UpdateProduct(ctx context.Context, arg UpdateProductParams) (model.Product, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE products
		SET sku = ?, slug = ?, name = ?, name_zh = ?, description = ?, description_zh = ?,
		    price_vnd = ?, category_id = ?, image = ?, is_active = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
		RETURNING `+productColumns,
		arg.SKU, arg.Slug, arg.Name, arg.NameZh, arg.Description, arg.DescriptionZh,
		arg.PriceVND, arg.CategoryID, arg.Image, arg.IsActive, arg.ID)
	p, err := scanProduct(row)
	if err != nil {
		if dup := wrapDuplicate(err); dup == ErrDuplicate {
			return p, dup
		}
		return p, wrapNotFound(err)
	}
	return p, nil
}

// UpdateProductTranslation writes the Chinese name and description produced by
// the pipeline.
func (q *Queries) UpdateProductTranslation(ctx context.Context, id int64, nameZh, descriptionZh string) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE products SET name_zh = ?, description_zh = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, nameZh, descriptionZh, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteProduct removes a product.
func (q *Queries) DeleteProduct(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListActiveProducts returns every active product ordered by ID. Bulk
// translation walks this list and filters in memory.
func (q *Queries) ListActiveProducts(ctx context.Context) ([]model.Product, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE is_active = 1 ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return q.collectProducts(rows)
}
