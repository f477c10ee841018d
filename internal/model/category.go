// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain models and types used throughout the application
// including Category, Product, TranslationEntry and audit structures.
package model

import (
	"database/sql"
	"time"
)

// Category represents one node of the storefront catalog taxonomy as stored.
// NameZh carries the Chinese translation of the display name; an empty value
// means the category has not been translated yet.
type Category struct {
	ID          int64          `json:"id"`
	Slug        string         `json:"slug"`
	Name        string         `json:"name"`
	NameZh      string         `json:"name_zh,omitempty"`
	Description sql.NullString `json:"description,omitempty"`
	ParentID    sql.NullInt64  `json:"parent_id,omitempty"`
	Image       sql.NullString `json:"image,omitempty"`
	SortOrder   int64          `json:"sort_order"`
	IsActive    bool           `json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// CategoryNode is the presentation shape of a category: built fresh from the
// flat record set on every read, never persisted.
type CategoryNode struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Slug     string          `json:"slug"`
	Image    string          `json:"image,omitempty"`
	Children []*CategoryNode `json:"children"`
}

// AdminCategoryNode is the tree shape for admin bulk-edit contexts. It carries
// the raw record alongside the child list so the back office can edit in place.
type AdminCategoryNode struct {
	Category
	Children []*AdminCategoryNode `json:"children"`
}
