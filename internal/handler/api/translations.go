// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/mocnha/mocnha-go/internal/middleware"
	"github.com/mocnha/mocnha-go/internal/model"
	"github.com/mocnha/mocnha-go/internal/store"
	"github.com/mocnha/mocnha-go/internal/translate"
)

// TranslationBundle handles GET /api/v1/translations
// Public: returns the nested UI string bundle for the negotiated language and
// the requested namespace, cached.
func (h *Handler) TranslationBundle(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLang(r)
	namespace := r.URL.Query().Get("namespace")
	if namespace == "" {
		namespace = model.DefaultNamespace
	}

	bundle, err := h.storefront.Bundle(r.Context(), lang, namespace, func(ctx context.Context) (map[string]any, error) {
		return h.pipeline.GetByLanguage(ctx, lang, namespace)
	})
	if err != nil {
		h.writePipelineError(w, err, "Failed to build translation bundle")
		return
	}
	WriteSuccess(w, bundle, nil)
}

// TranslationKeyResponse represents a translation entry in admin responses.
type TranslationKeyResponse struct {
	ID           int64                      `json:"id"`
	Key          string                     `json:"key"`
	Namespace    string                     `json:"namespace"`
	Translations map[string]model.LangValue `json:"translations"`
	Context      string                     `json:"context,omitempty"`
	Category     string                     `json:"category"`
	IsPlural     bool                       `json:"is_plural"`
	Tags         []string                   `json:"tags"`
	Version      int64                      `json:"version"`
	History      []model.HistoryEntry       `json:"history,omitempty"`
	CreatedAt    time.Time                  `json:"created_at"`
	UpdatedAt    time.Time                  `json:"updated_at"`
}

func translationKeyResponse(e model.TranslationEntry, withHistory bool) TranslationKeyResponse {
	resp := TranslationKeyResponse{
		ID:           e.ID,
		Key:          e.Key,
		Namespace:    e.Namespace,
		Translations: e.GetTranslations(),
		Context:      e.Context,
		Category:     e.Category,
		IsPlural:     e.IsPlural,
		Tags:         e.GetTags(),
		Version:      e.Version,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
	if withHistory {
		resp.History = e.GetHistory()
	}
	return resp
}

// TranslationRequestResponse represents an AI translation request record.
type TranslationRequestResponse struct {
	ID            int64     `json:"id"`
	TranslationID int64     `json:"translation_id"`
	SourceLang    string    `json:"source_lang"`
	TargetLang    string    `json:"target_lang"`
	SourceText    string    `json:"source_text"`
	AIResult      string    `json:"ai_result,omitempty"`
	AIProvider    string    `json:"ai_provider,omitempty"`
	AIConfidence  *float64  `json:"ai_confidence,omitempty"`
	Status        string    `json:"status"`
	HumanText     string    `json:"human_translation,omitempty"`
	ReviewNote    string    `json:"review_note,omitempty"`
	Error         string    `json:"error,omitempty"`
	RetryCount    int64     `json:"retry_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func requestResponse(req model.TranslationRequest) TranslationRequestResponse {
	resp := TranslationRequestResponse{
		ID:            req.ID,
		TranslationID: req.TranslationID,
		SourceLang:    req.SourceLang,
		TargetLang:    req.TargetLang,
		SourceText:    req.SourceText,
		AIResult:      req.AIResult.String,
		AIProvider:    req.AIProvider.String,
		Status:        req.Status,
		HumanText:     req.HumanText.String,
		ReviewNote:    req.ReviewNote.String,
		Error:         req.Error.String,
		RetryCount:    req.RetryCount,
		CreatedAt:     req.CreatedAt,
		UpdatedAt:     req.UpdatedAt,
	}
	if req.AIConfidence.Valid {
		resp.AIConfidence = &req.AIConfidence.Float64
	}
	return resp
}

// ListTranslationKeys handles GET /api/v1/admin/translations
// Requires translations:read permission. Optional namespace query filter, or
// an exact key lookup via ?key=.
func (h *Handler) ListTranslationKeys(w http.ResponseWriter, r *http.Request) {
	if key := r.URL.Query().Get("key"); key != "" {
		entry, err := h.pipeline.GetKey(r.Context(), key)
		if err != nil {
			h.writePipelineError(w, err, "Failed to load translation key")
			return
		}
		WriteSuccess(w, []TranslationKeyResponse{translationKeyResponse(entry, false)}, &Meta{Total: 1})
		return
	}

	entries, err := h.pipeline.ListKeys(r.Context(), r.URL.Query().Get("namespace"))
	if err != nil {
		h.writePipelineError(w, err, "Failed to list translation keys")
		return
	}

	responses := make([]TranslationKeyResponse, 0, len(entries))
	for _, e := range entries {
		responses = append(responses, translationKeyResponse(e, false))
	}
	WriteSuccess(w, responses, &Meta{Total: int64(len(responses))})
}

// GetTranslationKey handles GET /api/v1/admin/translations/{id}
// Requires translations:read permission. Includes edit history and the AI
// request audit trail.
func (h *Handler) GetTranslationKey(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid translation ID", nil)
		return
	}

	entry, err := h.queries.GetTranslationByID(r.Context(), id)
	if err != nil {
		h.writePipelineError(w, err, "Failed to load translation")
		return
	}

	requests, err := h.queries.ListRequestsForTranslation(r.Context(), id)
	if err != nil {
		h.log.Error("failed to list translation requests", "id", id, "error", err)
		WriteInternalError(w, "Failed to load translation requests")
		return
	}

	requestResponses := make([]TranslationRequestResponse, 0, len(requests))
	for _, req := range requests {
		requestResponses = append(requestResponses, requestResponse(req))
	}

	WriteSuccess(w, struct {
		TranslationKeyResponse
		Requests []TranslationRequestResponse `json:"requests"`
	}{translationKeyResponse(entry, true), requestResponses}, nil)
}

// CreateTranslationKeyRequest represents the request body for registering a
// translation key.
type CreateTranslationKeyRequest struct {
	Key         string   `json:"key"`
	Namespace   string   `json:"namespace,omitempty"`
	SourceValue string   `json:"source_value,omitempty"`
	Context     string   `json:"context,omitempty"`
	Category    string   `json:"category,omitempty"`
	IsPlural    bool     `json:"is_plural,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	CreatedBy   string   `json:"created_by,omitempty"`
}

// CreateTranslationKey handles POST /api/v1/admin/translations
// Requires translations:write permission. Returns 409 when the key is taken.
func (h *Handler) CreateTranslationKey(w http.ResponseWriter, r *http.Request) {
	var req CreateTranslationKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	entry, err := h.pipeline.CreateKey(r.Context(), translate.CreateKeyParams{
		Key:         req.Key,
		Namespace:   req.Namespace,
		SourceValue: req.SourceValue,
		Context:     req.Context,
		Category:    req.Category,
		IsPlural:    req.IsPlural,
		Tags:        req.Tags,
		CreatedBy:   req.CreatedBy,
	})
	if err != nil {
		h.writePipelineError(w, err, "Failed to create translation key")
		return
	}

	h.invalidateBundles(r.Context())
	WriteCreated(w, translationKeyResponse(entry, false))
}

// DeleteTranslationKey handles DELETE /api/v1/admin/translations/{id}
// Requires translations:write permission. Request audit rows go with the key.
func (h *Handler) DeleteTranslationKey(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid translation ID", nil)
		return
	}

	if err := h.pipeline.DeleteKey(r.Context(), id); err != nil {
		h.writePipelineError(w, err, "Failed to delete translation key")
		return
	}

	h.invalidateBundles(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// RequestAITranslation handles POST /api/v1/admin/translations/{id}/ai-translate
// Requires translations:write permission. One audit record persists per
// attempt, success or failure.
func (h *Handler) RequestAITranslation(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid translation ID", nil)
		return
	}

	req, err := h.pipeline.RequestAITranslation(r.Context(), id)
	if err != nil {
		h.writePipelineError(w, err, "AI translation failed")
		return
	}

	h.invalidateBundles(r.Context())
	WriteSuccess(w, requestResponse(req), nil)
}

// BatchAITranslationRequest represents the request body for batch AI
// translation.
type BatchAITranslationRequest struct {
	IDs []int64 `json:"ids"`
}

// BatchAITranslation handles POST /api/v1/admin/translations/ai-translate
// Requires translations:write permission. Items run sequentially; one item's
// failure is reported in its result and does not abort the rest.
func (h *Handler) BatchAITranslation(w http.ResponseWriter, r *http.Request) {
	var req BatchAITranslationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	results, err := h.pipeline.BatchAITranslation(r.Context(), req.IDs)
	if err != nil {
		h.writePipelineError(w, err, "Batch AI translation failed")
		return
	}

	h.invalidateBundles(r.Context())
	WriteSuccess(w, results, &Meta{Total: int64(len(results))})
}

// ReviewTranslationRequest represents the request body for a human review.
type ReviewTranslationRequest struct {
	Lang       string `json:"lang"`
	Value      string `json:"value"`
	Status     string `json:"status,omitempty"`
	ReviewerID int64  `json:"reviewer_id"`
	Reason     string `json:"reason,omitempty"`
}

// ReviewTranslation handles POST /api/v1/admin/translations/{id}/review
// Requires translations:write permission. The edit is attributed to the given
// back-office user, who must hold a reviewing role.
func (h *Handler) ReviewTranslation(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid translation ID", nil)
		return
	}

	var req ReviewTranslationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	reviewer, err := h.queries.GetUserByID(r.Context(), req.ReviewerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteValidationError(w, map[string]string{"reviewer_id": "Reviewer does not exist"})
			return
		}
		WriteInternalError(w, "Failed to load reviewer")
		return
	}

	entry, err := h.pipeline.ReviewTranslation(r.Context(), translate.ReviewParams{
		TranslationID: id,
		Lang:          req.Lang,
		Value:         req.Value,
		Status:        req.Status,
		Reviewer:      reviewer,
		Reason:        req.Reason,
	})
	if err != nil {
		h.writePipelineError(w, err, "Failed to review translation")
		return
	}

	h.invalidateBundles(r.Context())
	WriteSuccess(w, translationKeyResponse(entry, true), nil)
}

// TranslationStats handles GET /api/v1/admin/translations/stats
// Requires translations:read permission.
func (h *Handler) TranslationStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.pipeline.Statistics(r.Context())
	if err != nil {
		h.writePipelineError(w, err, "Failed to compute translation statistics")
		return
	}
	WriteSuccess(w, stats, nil)
}

// invalidateBundles drops the cached UI string bundles after a translation
// change.
func (h *Handler) invalidateBundles(ctx context.Context) {
	if err := h.storefront.InvalidateBundles(ctx); err != nil {
		h.log.Warn("failed to invalidate translation bundle cache", "error", err, "category", "cache")
	}
}
