// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"slices"

	"github.com/mocnha/mocnha-go/internal/catalog"
	"github.com/mocnha/mocnha-go/internal/model"
	"github.com/mocnha/mocnha-go/internal/store"
	"github.com/mocnha/mocnha-go/internal/util"
)

// CategoryAPIResponse represents a category in API responses.
type CategoryAPIResponse struct {
	ID          int64  `json:"id"`
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	NameZh      string `json:"name_zh,omitempty"`
	Description string `json:"description,omitempty"`
	ParentID    *int64 `json:"parent_id,omitempty"`
	Image       string `json:"image,omitempty"`
	SortOrder   int64  `json:"sort_order"`
	IsActive    bool   `json:"is_active"`
}

func categoryResponse(c model.Category) CategoryAPIResponse {
	resp := CategoryAPIResponse{
		ID:        c.ID,
		Slug:      c.Slug,
		Name:      c.Name,
		NameZh:    c.NameZh,
		SortOrder: c.SortOrder,
		IsActive:  c.IsActive,
	}
	if c.Description.Valid {
		resp.Description = c.Description.String
	}
	if c.ParentID.Valid {
		resp.ParentID = &c.ParentID.Int64
	}
	if c.Image.Valid {
		resp.Image = c.Image.String
	}
	return resp
}

// CategoryTree handles GET /api/v1/categories/tree
// Public: returns the active category tree, cached.
func (h *Handler) CategoryTree(w http.ResponseWriter, r *http.Request) {
	tree, err := h.storefront.Tree(r.Context(), func(ctx context.Context) ([]*model.CategoryNode, error) {
		records, err := h.queries.ListActiveCategories(ctx)
		if err != nil {
			return nil, err
		}
		return catalog.BuildTree(records, h.log), nil
	})
	if err != nil {
		h.log.Error("failed to build category tree", "error", err)
		WriteInternalError(w, "Failed to load category tree")
		return
	}
	WriteSuccess(w, tree, nil)
}

// GetCategory handles GET /api/v1/categories/{id}
// Public: returns a single active category.
func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid category ID", nil)
		return
	}

	category, err := h.queries.GetCategoryByID(r.Context(), id)
	if err != nil || !category.IsActive {
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			h.log.Error("failed to get category", "id", id, "error", err)
			WriteInternalError(w, "Failed to load category")
			return
		}
		WriteNotFound(w, "Category not found")
		return
	}
	WriteSuccess(w, categoryResponse(category), nil)
}

// AdminCategoryTree handles GET /api/v1/admin/categories/tree
// Requires catalog:read. Returns the unfiltered tree with raw records.
func (h *Handler) AdminCategoryTree(w http.ResponseWriter, r *http.Request) {
	records, err := h.queries.ListCategories(r.Context())
	if err != nil {
		h.log.Error("failed to list categories", "error", err)
		WriteInternalError(w, "Failed to load categories")
		return
	}
	WriteSuccess(w, catalog.BuildAdminTree(records, h.log), nil)
}

// CreateCategoryRequest represents the request body for creating a category.
type CreateCategoryRequest struct {
	Name        string `json:"name"`
	NameZh      string `json:"name_zh,omitempty"`
	Slug        string `json:"slug,omitempty"`
	Description string `json:"description,omitempty"`
	ParentID    *int64 `json:"parent_id,omitempty"`
	Image       string `json:"image,omitempty"`
	SortOrder   int64  `json:"sort_order,omitempty"`
	IsActive    *bool  `json:"is_active,omitempty"`
}

// validateCategoryParent checks that the requested parent exists. A nil
// parentID is always fine.
func (h *Handler) validateCategoryParent(ctx context.Context, parentID *int64) (string, error) {
	if parentID == nil {
		return "", nil
	}
	if _, err := h.queries.GetCategoryByID(ctx, *parentID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "Parent category does not exist", nil
		}
		return "", err
	}
	return "", nil
}

// CreateCategory handles POST /api/v1/admin/categories
// Requires catalog:write permission.
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	validationErrors := make(map[string]string)
	if req.Name == "" {
		validationErrors["name"] = "Name is required"
	}
	if req.Slug == "" {
		req.Slug = util.Slugify(req.Name)
	}
	if !util.IsValidSlug(req.Slug) {
		validationErrors["slug"] = "Invalid slug"
	}
	if msg, err := h.validateCategoryParent(ctx, req.ParentID); err != nil {
		WriteInternalError(w, "Failed to check parent category")
		return
	} else if msg != "" {
		validationErrors["parent_id"] = msg
	}
	if len(validationErrors) > 0 {
		WriteValidationError(w, validationErrors)
		return
	}

	exists, err := h.queries.CategorySlugExists(ctx, req.Slug)
	if err != nil {
		WriteInternalError(w, "Failed to check slug")
		return
	}
	if exists {
		WriteValidationError(w, map[string]string{"slug": "Slug already exists"})
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	category, err := h.queries.CreateCategory(ctx, store.CreateCategoryParams{
		Slug:        req.Slug,
		Name:        req.Name,
		NameZh:      req.NameZh,
		Description: nullString(req.Description),
		ParentID:    nullInt64(req.ParentID),
		Image:       nullString(req.Image),
		SortOrder:   req.SortOrder,
		IsActive:    isActive,
	})
	if err != nil {
		h.writePipelineError(w, err, "Failed to create category")
		return
	}

	h.invalidateCatalog(ctx)
	h.log.Info("category created", "id", category.ID, "slug", category.Slug, "category", "catalog")
	WriteCreated(w, categoryResponse(category))
}

// UpdateCategoryRequest represents the request body for updating a category.
// Omitted fields keep their current value.
type UpdateCategoryRequest struct {
	Name        *string `json:"name,omitempty"`
	NameZh      *string `json:"name_zh,omitempty"`
	Slug        *string `json:"slug,omitempty"`
	Description *string `json:"description,omitempty"`
	ParentID    *int64  `json:"parent_id,omitempty"`
	ClearParent bool    `json:"clear_parent,omitempty"`
	Image       *string `json:"image,omitempty"`
	SortOrder   *int64  `json:"sort_order,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

// UpdateCategory handles PUT /api/v1/admin/categories/{id}
// Requires catalog:write permission. Re-parenting onto the category itself or
// one of its descendants is rejected.
func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid category ID", nil)
		return
	}

	var req UpdateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	category, err := h.queries.GetCategoryByID(ctx, id)
	if err != nil {
		h.writePipelineError(w, err, "Failed to load category")
		return
	}

	if req.Name != nil {
		category.Name = *req.Name
	}
	if req.NameZh != nil {
		category.NameZh = *req.NameZh
	}
	if req.Slug != nil {
		category.Slug = *req.Slug
	}
	if req.Description != nil {
		category.Description = nullString(*req.Description)
	}
	if req.ClearParent {
		category.ParentID = sql.NullInt64{}
	} else if req.ParentID != nil {
		category.ParentID = sql.NullInt64{Int64: *req.ParentID, Valid: true}
	}
	if req.Image != nil {
		category.Image = nullString(*req.Image)
	}
	if req.SortOrder != nil {
		category.SortOrder = *req.SortOrder
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}

	validationErrors := make(map[string]string)
	if category.Name == "" {
		validationErrors["name"] = "Name is required"
	}
	if !util.IsValidSlug(category.Slug) {
		validationErrors["slug"] = "Invalid slug"
	}
	if category.ParentID.Valid {
		if category.ParentID.Int64 == id {
			validationErrors["parent_id"] = "Category cannot be its own parent"
		} else {
			if msg, perr := h.validateCategoryParent(ctx, &category.ParentID.Int64); perr != nil {
				WriteInternalError(w, "Failed to check parent category")
				return
			} else if msg != "" {
				validationErrors["parent_id"] = msg
			} else {
				descendants, derr := h.queries.GetDescendantCategoryIDs(ctx, id)
				if derr != nil {
					WriteInternalError(w, "Failed to check category hierarchy")
					return
				}
				if slices.Contains(descendants, category.ParentID.Int64) {
					validationErrors["parent_id"] = "Cannot move a category under its own descendant"
				}
			}
		}
	}
	if len(validationErrors) > 0 {
		WriteValidationError(w, validationErrors)
		return
	}

	exists, err := h.queries.CategorySlugExistsExcluding(ctx, category.Slug, id)
	if err != nil {
		WriteInternalError(w, "Failed to check slug")
		return
	}
	if exists {
		WriteValidationError(w, map[string]string{"slug": "Slug already exists"})
		return
	}

	updated, err := h.queries.UpdateCategory(ctx, store.UpdateCategoryParams{
		ID:          id,
		Slug:        category.Slug,
		Name:        category.Name,
		NameZh:      category.NameZh,
		Description: category.Description,
		ParentID:    category.ParentID,
		Image:       category.Image,
		SortOrder:   category.SortOrder,
		IsActive:    category.IsActive,
	})
	if err != nil {
		h.writePipelineError(w, err, "Failed to update category")
		return
	}

	h.invalidateCatalog(ctx)
	h.log.Info("category updated", "id", id, "category", "catalog")
	WriteSuccess(w, categoryResponse(updated), nil)
}

// DeleteCategory handles DELETE /api/v1/admin/categories/{id}
// Requires catalog:write permission. Children are re-rooted by the schema's
// ON DELETE SET NULL.
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid category ID", nil)
		return
	}

	if err := h.queries.DeleteCategory(r.Context(), id); err != nil {
		h.writePipelineError(w, err, "Failed to delete category")
		return
	}

	h.invalidateCatalog(r.Context())
	h.log.Info("category deleted", "id", id, "category", "catalog")
	w.WriteHeader(http.StatusNoContent)
}

// invalidateCatalog drops the cached storefront tree after a catalog change.
func (h *Handler) invalidateCatalog(ctx context.Context) {
	if err := h.storefront.InvalidateTree(ctx); err != nil {
		h.log.Warn("failed to invalidate category tree cache", "error", err, "category", "cache")
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
