// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// Product represents one catalog item. Name/Description hold the Vietnamese
// source text; the Zh columns hold the Chinese translations produced by the
// pipeline. Description is authored in Markdown and rendered for the public API.
type Product struct {
	ID            int64          `json:"id"`
	SKU           string         `json:"sku"`
	Slug          string         `json:"slug"`
	Name          string         `json:"name"`
	NameZh        string         `json:"name_zh,omitempty"`
	Description   string         `json:"description,omitempty"`
	DescriptionZh string         `json:"description_zh,omitempty"`
	PriceVND      int64          `json:"price_vnd"`
	CategoryID    sql.NullInt64  `json:"category_id,omitempty"`
	Image         sql.NullString `json:"image,omitempty"`
	IsActive      bool           `json:"is_active"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// NeedsTranslation reports whether the product still lacks a Chinese name.
// Bulk translation uses this filter, which is what makes re-runs idempotent.
func (p *Product) NeedsTranslation() bool {
	return p.NameZh == "" || (p.Description != "" && p.DescriptionZh == "")
}
