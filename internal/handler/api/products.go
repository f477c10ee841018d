// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/mocnha/mocnha-go/internal/markdown"
	"github.com/mocnha/mocnha-go/internal/middleware"
	"github.com/mocnha/mocnha-go/internal/model"
	"github.com/mocnha/mocnha-go/internal/store"
	"github.com/mocnha/mocnha-go/internal/util"
)

// PublicProductResponse is the storefront shape of a product. Name and
// description are localized to the negotiated language, falling back to the
// Vietnamese source when no translation exists yet. DescriptionHTML carries
// the rendered Markdown.
type PublicProductResponse struct {
	ID              int64  `json:"id"`
	SKU             string `json:"sku"`
	Slug            string `json:"slug"`
	Name            string `json:"name"`
	DescriptionHTML string `json:"description_html,omitempty"`
	PriceVND        int64  `json:"price_vnd"`
	CategoryID      *int64 `json:"category_id,omitempty"`
	Image           string `json:"image,omitempty"`
	Lang            string `json:"lang"`
}

// localizeProduct picks the product texts for lang and renders the Markdown
// description.
func (h *Handler) localizeProduct(p model.Product, lang string) PublicProductResponse {
	name := p.Name
	description := p.Description
	if lang == model.TargetLang {
		if p.NameZh != "" {
			name = p.NameZh
		}
		if p.DescriptionZh != "" {
			description = p.DescriptionZh
		}
	}

	html, err := markdown.Render(description)
	if err != nil {
		h.log.Warn("failed to render product description", "sku", p.SKU, "error", err, "category", "product")
		html = ""
	}

	resp := PublicProductResponse{
		ID:              p.ID,
		SKU:             p.SKU,
		Slug:            p.Slug,
		Name:            name,
		DescriptionHTML: html,
		PriceVND:        p.PriceVND,
		Lang:            lang,
	}
	if p.CategoryID.Valid {
		resp.CategoryID = &p.CategoryID.Int64
	}
	if p.Image.Valid {
		resp.Image = p.Image.String
	}
	return resp
}

// AdminProductResponse represents a product in admin API responses, with both
// language variants side by side.
type AdminProductResponse struct {
	ID            int64  `json:"id"`
	SKU           string `json:"sku"`
	Slug          string `json:"slug"`
	Name          string `json:"name"`
	NameZh        string `json:"name_zh,omitempty"`
	Description   string `json:"description,omitempty"`
	DescriptionZh string `json:"description_zh,omitempty"`
	PriceVND      int64  `json:"price_vnd"`
	CategoryID    *int64 `json:"category_id,omitempty"`
	Image         string `json:"image,omitempty"`
	IsActive      bool   `json:"is_active"`
}

func adminProductResponse(p model.Product) AdminProductResponse {
	resp := AdminProductResponse{
		ID:            p.ID,
		SKU:           p.SKU,
		Slug:          p.Slug,
		Name:          p.Name,
		NameZh:        p.NameZh,
		Description:   p.Description,
		DescriptionZh: p.DescriptionZh,
		PriceVND:      p.PriceVND,
		IsActive:      p.IsActive,
	}
	if p.CategoryID.Valid {
		resp.CategoryID = &p.CategoryID.Int64
	}
	if p.Image.Valid {
		resp.Image = p.Image.String
	}
	return resp
}

// parseProductFilter builds the list filter from query parameters.
func parseProductFilter(r *http.Request, activeOnly bool) (store.ListProductsParams, int, int) {
	page := parsePageParam(r)
	perPage := parsePerPageParam(r, 20, 100)

	params := store.ListProductsParams{
		ActiveOnly: activeOnly,
		Limit:      int64(perPage),
		Offset:     int64((page - 1) * perPage),
	}
	if raw := r.URL.Query().Get("category_id"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			params.CategoryID = sql.NullInt64{Int64: id, Valid: true}
		}
	}
	return params, page, perPage
}

// ListProducts handles GET /api/v1/products
// Public: returns active products localized to the negotiated language.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lang := middleware.GetLang(r)
	params, page, perPage := parseProductFilter(r, true)

	products, err := h.queries.ListProducts(ctx, params)
	if err != nil {
		h.log.Error("failed to list products", "error", err)
		WriteInternalError(w, "Failed to list products")
		return
	}
	total, err := h.queries.CountProducts(ctx, params)
	if err != nil {
		h.log.Error("failed to count products", "error", err)
		WriteInternalError(w, "Failed to count products")
		return
	}

	responses := make([]PublicProductResponse, 0, len(products))
	for _, p := range products {
		responses = append(responses, h.localizeProduct(p, lang))
	}
	WriteSuccess(w, responses, pageMeta(total, page, perPage))
}

// GetProduct handles GET /api/v1/products/{id}
// Public: returns a single active product localized to the negotiated language.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid product ID", nil)
		return
	}

	product, err := h.queries.GetProductByID(r.Context(), id)
	if err != nil || !product.IsActive {
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			h.log.Error("failed to get product", "id", id, "error", err)
			WriteInternalError(w, "Failed to load product")
			return
		}
		WriteNotFound(w, "Product not found")
		return
	}
	WriteSuccess(w, h.localizeProduct(product, middleware.GetLang(r)), nil)
}

// AdminListProducts handles GET /api/v1/admin/products
// Requires products:read permission. Returns all products, inactive included.
func (h *Handler) AdminListProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	params, page, perPage := parseProductFilter(r, false)

	products, err := h.queries.ListProducts(ctx, params)
	if err != nil {
		h.log.Error("failed to list products", "error", err)
		WriteInternalError(w, "Failed to list products")
		return
	}
	total, err := h.queries.CountProducts(ctx, params)
	if err != nil {
		h.log.Error("failed to count products", "error", err)
		WriteInternalError(w, "Failed to count products")
		return
	}

	responses := make([]AdminProductResponse, 0, len(products))
	for _, p := range products {
		responses = append(responses, adminProductResponse(p))
	}
	WriteSuccess(w, responses, pageMeta(total, page, perPage))
}

// CreateProductRequest represents the request body for creating a product.
type CreateProductRequest struct {
	SKU         string `json:"sku"`
	Name        string `json:"name"`
	Slug        string `json:"slug,omitempty"`
	Description string `json:"description,omitempty"`
	PriceVND    int64  `json:"price_vnd"`
	CategoryID  *int64 `json:"category_id,omitempty"`
	Image       string `json:"image,omitempty"`
	IsActive    *bool  `json:"is_active,omitempty"`
}

// CreateProduct handles POST /api/v1/admin/products
// Requires products:write permission.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	validationErrors := make(map[string]string)
	if req.SKU == "" {
		validationErrors["sku"] = "SKU is required"
	}
	if req.Name == "" {
		validationErrors["name"] = "Name is required"
	}
	if req.PriceVND < 0 {
		validationErrors["price_vnd"] = "Price must not be negative"
	}
	if req.Slug == "" {
		req.Slug = util.Slugify(req.Name)
	}
	if !util.IsValidSlug(req.Slug) {
		validationErrors["slug"] = "Invalid slug"
	}
	if req.CategoryID != nil {
		if msg, err := h.validateCategoryParent(ctx, req.CategoryID); err != nil {
			WriteInternalError(w, "Failed to check category")
			return
		} else if msg != "" {
			validationErrors["category_id"] = "Category does not exist"
		}
	}
	if len(validationErrors) > 0 {
		WriteValidationError(w, validationErrors)
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	product, err := h.queries.CreateProduct(ctx, store.CreateProductParams{
		SKU:         req.SKU,
		Slug:        req.Slug,
		Name:        req.Name,
		Description: req.Description,
		PriceVND:    req.PriceVND,
		CategoryID:  nullInt64(req.CategoryID),
		Image:       nullString(req.Image),
		IsActive:    isActive,
	})
	if err != nil {
		h.writePipelineError(w, err, "Failed to create product")
		return
	}

	h.log.Info("product created", "id", product.ID, "sku", product.SKU, "category", "product")
	WriteCreated(w, adminProductResponse(product))
}

// UpdateProductRequest represents the request body for updating a product.
// Omitted fields keep their current value.
type UpdateProductRequest struct {
	SKU           *string `json:"sku,omitempty"`
	Name          *string `json:"name,omitempty"`
	NameZh        *string `json:"name_zh,omitempty"`
	Slug          *string `json:"slug,omitempty"`
	Description   *string `json:"description,omitempty"`
	DescriptionZh *string `json:"description_zh,omitempty"`
	PriceVND      *int64  `json:"price_vnd,omitempty"`
	CategoryID    *int64  `json:"category_id,omitempty"`
	ClearCategory bool    `json:"clear_category,omitempty"`
	Image         *string `json:"image,omitempty"`
	IsActive      *bool   `json:"is_active,omitempty"`
}

// UpdateProduct handles PUT /api/v1/admin/products/{id}
// Requires products:write permission.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid product ID", nil)
		return
	}

	var req UpdateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	product, err := h.queries.GetProductByID(ctx, id)
	if err != nil {
		h.writePipelineError(w, err, "Failed to load product")
		return
	}

	if req.SKU != nil {
		product.SKU = *req.SKU
	}
	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.NameZh != nil {
		product.NameZh = *req.NameZh
	}
	if req.Slug != nil {
		product.Slug = *req.Slug
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.DescriptionZh != nil {
		product.DescriptionZh = *req.DescriptionZh
	}
	if req.PriceVND != nil {
		product.PriceVND = *req.PriceVND
	}
	if req.ClearCategory {
		product.CategoryID = sql.NullInt64{}
	} else if req.CategoryID != nil {
		product.CategoryID = sql.NullInt64{Int64: *req.CategoryID, Valid: true}
	}
	if req.Image != nil {
		product.Image = nullString(*req.Image)
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	validationErrors := make(map[string]string)
	if product.SKU == "" {
		validationErrors["sku"] = "SKU is required"
	}
	if product.Name == "" {
		validationErrors["name"] = "Name is required"
	}
	if product.PriceVND < 0 {
		validationErrors["price_vnd"] = "Price must not be negative"
	}
	if !util.IsValidSlug(product.Slug) {
		validationErrors["slug"] = "Invalid slug"
	}
	if product.CategoryID.Valid {
		if msg, cerr := h.validateCategoryParent(ctx, &product.CategoryID.Int64); cerr != nil {
			WriteInternalError(w, "Failed to check category")
			return
		} else if msg != "" {
			validationErrors["category_id"] = "Category does not exist"
		}
	}
	if len(validationErrors) > 0 {
		WriteValidationError(w, validationErrors)
		return
	}

	updated, err := h.queries.UpdateProduct(ctx, store.UpdateProductParams{
		ID:            id,
		SKU:           product.SKU,
		Slug:          product.Slug,
		Name:          product.Name,
		NameZh:        product.NameZh,
		Description:   product.Description,
		DescriptionZh: product.DescriptionZh,
		PriceVND:      product.PriceVND,
		CategoryID:    product.CategoryID,
		Image:         product.Image,
		IsActive:      product.IsActive,
	})
	if err != nil {
		h.writePipelineError(w, err, "Failed to update product")
		return
	}

	h.log.Info("product updated", "id", id, "category", "product")
	WriteSuccess(w, adminProductResponse(updated), nil)
}

// DeleteProduct handles DELETE /api/v1/admin/products/{id}
// Requires products:write permission.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid product ID", nil)
		return
	}

	if err := h.queries.DeleteProduct(r.Context(), id); err != nil {
		h.writePipelineError(w, err, "Failed to delete product")
		return
	}

	h.log.Info("product deleted", "id", id, "category", "product")
	w.WriteHeader(http.StatusNoContent)
}

// BulkTranslateRequest represents the request body for bulk translation runs.
type BulkTranslateRequest struct {
	Force bool `json:"force,omitempty"`
}

// TranslateAllProducts handles POST /api/v1/admin/products/translate-all
// Requires translations:write permission. Walks the active products and fills
// in missing Chinese texts via the AI provider.
func (h *Handler) TranslateAllProducts(w http.ResponseWriter, r *http.Request) {
	var req BulkTranslateRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteBadRequest(w, "Invalid JSON body", nil)
			return
		}
	}

	summary, err := h.pipeline.TranslateAllProducts(r.Context(), req.Force)
	if err != nil {
		h.writePipelineError(w, err, "Bulk product translation failed")
		return
	}
	WriteSuccess(w, summary, nil)
}

// TranslateAllCategories handles POST /api/v1/admin/categories/translate-all
// Requires translations:write permission.
func (h *Handler) TranslateAllCategories(w http.ResponseWriter, r *http.Request) {
	var req BulkTranslateRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteBadRequest(w, "Invalid JSON body", nil)
			return
		}
	}

	summary, err := h.pipeline.TranslateAllCategories(r.Context(), req.Force)
	if err != nil {
		h.writePipelineError(w, err, "Bulk category translation failed")
		return
	}

	h.invalidateCatalog(r.Context())
	WriteSuccess(w, summary, nil)
}
