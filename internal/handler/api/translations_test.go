// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/mocnha/mocnha-go/internal/middleware"
	"github.com/mocnha/mocnha-go/internal/model"
	"github.com/mocnha/mocnha-go/internal/translate"
)

func createTestKey(t *testing.T, env *testEnv, key, sourceValue string) model.TranslationEntry {
	t.Helper()

	entry, err := env.handler.pipeline.CreateKey(context.Background(), translate.CreateKeyParams{
		Key:         key,
		SourceValue: sourceValue,
		CreatedBy:   "an@mocnha.vn",
	})
	if err != nil {
		t.Fatalf("creating test key %q: %v", key, err)
	}
	return entry
}

func TestTranslationBundle(t *testing.T) {
	env := newTestEnv(t)
	createTestKey(t, env, "common.nav.home", "Trang chủ")
	createTestKey(t, env, "common.nav.cart", "Giỏ hàng")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/translations", nil)
	req = req.WithContext(context.WithValue(req.Context(), middleware.ContextKeyLang, "vi"))
	rec := httptest.NewRecorder()
	env.handler.TranslationBundle(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var bundle map[string]any
	decodeData(t, rec, &bundle)
	nav, ok := bundle["common"].(map[string]any)["nav"].(map[string]any)
	if !ok {
		t.Fatalf("bundle not nested: %v", bundle)
	}
	if nav["home"] != "Trang chủ" || nav["cart"] != "Giỏ hàng" {
		t.Errorf("nav = %v", nav)
	}
}

func TestCreateTranslationKey(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.handler.CreateTranslationKey(rec, newJSONRequest(t, http.MethodPost, "/api/v1/admin/translations",
		`{"key":"common.welcome","source_value":"Chào mừng","created_by":"an@mocnha.vn"}`, nil))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var created TranslationKeyResponse
	decodeData(t, rec, &created)
	if created.Namespace != model.DefaultNamespace || created.Version != 1 {
		t.Errorf("namespace = %q version = %d", created.Namespace, created.Version)
	}
	if created.Translations[model.SourceLang].Value != "Chào mừng" {
		t.Errorf("source value = %q", created.Translations[model.SourceLang].Value)
	}

	// Duplicate key conflicts.
	rec = httptest.NewRecorder()
	env.handler.CreateTranslationKey(rec, newJSONRequest(t, http.MethodPost, "/api/v1/admin/translations",
		`{"key":"common.welcome"}`, nil))
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate key status = %d, want 409", rec.Code)
	}

	// Malformed key fails validation.
	rec = httptest.NewRecorder()
	env.handler.CreateTranslationKey(rec, newJSONRequest(t, http.MethodPost, "/api/v1/admin/translations",
		`{"key":"Common..Bad"}`, nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad key status = %d, want 400", rec.Code)
	}
}

func TestRequestAITranslation_Endpoint(t *testing.T) {
	env := newTestEnv(t)
	entry := createTestKey(t, env, "common.hi", "Xin chào")

	rec := httptest.NewRecorder()
	env.handler.RequestAITranslation(rec, requestWithURLParams(
		httptest.NewRequest(http.MethodPost, "/api/v1/admin/translations/1/ai-translate", nil),
		map[string]string{"id": "1"}))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var req TranslationRequestResponse
	decodeData(t, rec, &req)
	if req.Status != model.RequestStatusCompleted || req.AIResult != "你好" {
		t.Errorf("request = %+v", req)
	}
	if req.TranslationID != entry.ID {
		t.Errorf("translation_id = %d, want %d", req.TranslationID, entry.ID)
	}

	// Unknown entry maps to 404.
	rec = httptest.NewRecorder()
	env.handler.RequestAITranslation(rec, requestWithURLParams(
		httptest.NewRequest(http.MethodPost, "/api/v1/admin/translations/99/ai-translate", nil),
		map[string]string{"id": "99"}))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown entry status = %d, want 404", rec.Code)
	}
}

func TestRequestAITranslation_UpstreamFailure(t *testing.T) {
	env := newTestEnv(t)
	createTestKey(t, env, "common.hi", "Xin chào")
	env.provider.failOn = map[string]bool{"Xin chào": true}

	rec := httptest.NewRecorder()
	env.handler.RequestAITranslation(rec, requestWithURLParams(
		httptest.NewRequest(http.MethodPost, "/api/v1/admin/translations/1/ai-translate", nil),
		map[string]string{"id": "1"}))
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}

func TestBatchAITranslation_Endpoint(t *testing.T) {
	env := newTestEnv(t)
	createTestKey(t, env, "common.hi", "Xin chào")

	rec := httptest.NewRecorder()
	env.handler.BatchAITranslation(rec, newJSONRequest(t, http.MethodPost,
		"/api/v1/admin/translations/ai-translate", `{"ids":[1]}`, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var results []translate.BatchResult
	decodeData(t, rec, &results)
	if len(results) != 1 || !results[0].Success || results[0].Translation != "你好" {
		t.Errorf("results = %+v", results)
	}

	rec = httptest.NewRecorder()
	env.handler.BatchAITranslation(rec, newJSONRequest(t, http.MethodPost,
		"/api/v1/admin/translations/ai-translate", `{"ids":[]}`, nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty batch status = %d, want 400", rec.Code)
	}
}

func TestReviewTranslation_Endpoint(t *testing.T) {
	env := newTestEnv(t)
	createTestKey(t, env, "common.hi", "Xin chào")
	reviewer := createTestUser(t, env.db, "linh@mocnha.vn", model.RoleTranslator)

	rec := httptest.NewRecorder()
	env.handler.ReviewTranslation(rec, newJSONRequest(t, http.MethodPost,
		"/api/v1/admin/translations/1/review",
		`{"lang":"zh","value":"您好","reviewer_id":`+strconv.FormatInt(reviewer.ID, 10)+`,"reason":"tone"}`,
		map[string]string{"id": "1"}))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var entry TranslationKeyResponse
	decodeData(t, rec, &entry)
	if entry.Version != 2 {
		t.Errorf("version = %d, want 2", entry.Version)
	}
	if entry.Translations["zh"].Value != "您好" {
		t.Errorf("zh value = %q", entry.Translations["zh"].Value)
	}
	if len(entry.History) != 1 || entry.History[0].Version != 1 {
		t.Errorf("history = %+v", entry.History)
	}

	// Unknown reviewer fails validation.
	rec = httptest.NewRecorder()
	env.handler.ReviewTranslation(rec, newJSONRequest(t, http.MethodPost,
		"/api/v1/admin/translations/1/review",
		`{"lang":"zh","value":"您好","reviewer_id":99}`,
		map[string]string{"id": "1"}))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("unknown reviewer status = %d, want 422", rec.Code)
	}

	// Unsupported language is rejected by the pipeline.
	rec = httptest.NewRecorder()
	env.handler.ReviewTranslation(rec, newJSONRequest(t, http.MethodPost,
		"/api/v1/admin/translations/1/review",
		`{"lang":"ja","value":"x","reviewer_id":`+strconv.FormatInt(reviewer.ID, 10)+`}`,
		map[string]string{"id": "1"}))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad lang status = %d, want 400", rec.Code)
	}
}

func TestGetTranslationKey_IncludesRequests(t *testing.T) {
	env := newTestEnv(t)
	createTestKey(t, env, "common.hi", "Xin chào")

	rec := httptest.NewRecorder()
	env.handler.RequestAITranslation(rec, requestWithURLParams(
		httptest.NewRequest(http.MethodPost, "/api/v1/admin/translations/1/ai-translate", nil),
		map[string]string{"id": "1"}))
	if rec.Code != http.StatusOK {
		t.Fatalf("ai-translate status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	env.handler.GetTranslationKey(rec, requestWithURLParams(
		httptest.NewRequest(http.MethodGet, "/api/v1/admin/translations/1", nil),
		map[string]string{"id": "1"}))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var detail struct {
		TranslationKeyResponse
		Requests []TranslationRequestResponse `json:"requests"`
	}
	decodeData(t, rec, &detail)
	if detail.Key != "common.hi" {
		t.Errorf("key = %q", detail.Key)
	}
	if len(detail.Requests) != 1 || detail.Requests[0].Status != model.RequestStatusCompleted {
		t.Errorf("requests = %+v", detail.Requests)
	}
}

func TestTranslationStats_Endpoint(t *testing.T) {
	env := newTestEnv(t)
	createTestKey(t, env, "common.hi", "Xin chào")
	createTestKey(t, env, "product.cart", "Giỏ hàng")

	rec := httptest.NewRecorder()
	env.handler.RequestAITranslation(rec, requestWithURLParams(
		httptest.NewRequest(http.MethodPost, "/api/v1/admin/translations/1/ai-translate", nil),
		map[string]string{"id": "1"}))
	if rec.Code != http.StatusOK {
		t.Fatalf("ai-translate status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	env.handler.TranslationStats(rec, httptest.NewRequest(http.MethodGet, "/api/v1/admin/translations/stats", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var stats translate.Stats
	decodeData(t, rec, &stats)
	if stats.Total != 2 {
		t.Errorf("total = %d, want 2", stats.Total)
	}
	if stats.ByStatus[model.TranslationStatusAITranslated] != 1 || stats.ByStatus[model.TranslationStatusDraft] != 1 {
		t.Errorf("by_status = %v", stats.ByStatus)
	}
	if stats.ByNamespace["common"] != 2 {
		t.Errorf("by_namespace = %v", stats.ByNamespace)
	}
}

func TestDeleteTranslationKey(t *testing.T) {
	env := newTestEnv(t)
	createTestKey(t, env, "common.hi", "Xin chào")

	rec := httptest.NewRecorder()
	env.handler.RequestAITranslation(rec, requestWithURLParams(
		httptest.NewRequest(http.MethodPost, "/api/v1/admin/translations/1/ai-translate", nil),
		map[string]string{"id": "1"}))
	if rec.Code != http.StatusOK {
		t.Fatalf("ai-translate status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	env.handler.DeleteTranslationKey(rec, requestWithURLParams(
		httptest.NewRequest(http.MethodDelete, "/api/v1/admin/translations/1", nil),
		map[string]string{"id": "1"}))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204: %s", rec.Code, rec.Body.String())
	}

	// Audit rows go with the key.
	requests, err := env.handler.queries.ListRequestsForTranslation(context.Background(), 1)
	if err != nil {
		t.Fatalf("ListRequestsForTranslation() error = %v", err)
	}
	if len(requests) != 0 {
		t.Errorf("requests after delete = %d, want 0", len(requests))
	}

	rec = httptest.NewRecorder()
	env.handler.DeleteTranslationKey(rec, requestWithURLParams(
		httptest.NewRequest(http.MethodDelete, "/api/v1/admin/translations/1", nil),
		map[string]string{"id": "1"}))
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
}

func TestListTranslationKeys_KeyLookup(t *testing.T) {
	env := newTestEnv(t)
	createTestKey(t, env, "common.hi", "Xin chào")
	createTestKey(t, env, "common.bye", "Tạm biệt")

	rec := httptest.NewRecorder()
	env.handler.ListTranslationKeys(rec,
		httptest.NewRequest(http.MethodGet, "/api/v1/admin/translations?key=common.bye", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var keys []TranslationKeyResponse
	decodeData(t, rec, &keys)
	if len(keys) != 1 || keys[0].Key != "common.bye" {
		t.Errorf("lookup = %+v", keys)
	}

	rec = httptest.NewRecorder()
	env.handler.ListTranslationKeys(rec,
		httptest.NewRequest(http.MethodGet, "/api/v1/admin/translations?key=common.missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing key status = %d, want 404", rec.Code)
	}
}
