// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/mattn/go-sqlite3"

	"github.com/mocnha/mocnha-go/internal/cache"
	"github.com/mocnha/mocnha-go/internal/model"
	"github.com/mocnha/mocnha-go/internal/store"
	"github.com/mocnha/mocnha-go/internal/translate"
)

// stubProvider answers every translation with a fixed Chinese string.
type stubProvider struct {
	failOn map[string]bool
	calls  int
}

func (s *stubProvider) ID() string { return translate.ProviderStub }

func (s *stubProvider) Translate(_ context.Context, text, _, _, _ string) (*translate.Result, error) {
	s.calls++
	if s.failOn[text] {
		return nil, fmt.Errorf("stub refused %q", text)
	}
	return &translate.Result{Translation: "你好", Confidence: 0.9, Provider: translate.ProviderStub}, nil
}

// testEnv bundles the dependencies a handler test needs.
type testEnv struct {
	db       *sql.DB
	handler  *Handler
	provider *stubProvider
}

// newTestEnv creates an in-memory database, migrates it and builds a Handler
// over a stub translation provider and a memory cache.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if err := store.Migrate(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	provider := &stubProvider{}
	pipeline := translate.NewPipeline(store.New(db), provider, log)

	backend := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute})
	t.Cleanup(func() { backend.Close() })
	storefront := cache.NewStorefront(backend, time.Minute)

	return &testEnv{
		db:       db,
		handler:  NewHandler(db, pipeline, storefront, log),
		provider: provider,
	}
}

// createTestCategory inserts a category directly.
func createTestCategory(t *testing.T, db *sql.DB, name, slug string, parentID *int64, sortOrder int64, active bool) model.Category {
	t.Helper()

	c, err := store.New(db).CreateCategory(context.Background(), store.CreateCategoryParams{
		Slug:      slug,
		Name:      name,
		ParentID:  nullInt64(parentID),
		SortOrder: sortOrder,
		IsActive:  active,
	})
	if err != nil {
		t.Fatalf("creating test category %q: %v", slug, err)
	}
	return c
}

// createTestProduct inserts a product directly.
func createTestProduct(t *testing.T, db *sql.DB, sku, name, description string, active bool) model.Product {
	t.Helper()

	p, err := store.New(db).CreateProduct(context.Background(), store.CreateProductParams{
		SKU:         sku,
		Slug:        sku,
		Name:        name,
		Description: description,
		PriceVND:    1000000,
		IsActive:    active,
	})
	if err != nil {
		t.Fatalf("creating test product %q: %v", sku, err)
	}
	return p
}

// createTestUser inserts a back-office user directly.
func createTestUser(t *testing.T, db *sql.DB, email, role string) model.User {
	t.Helper()

	u, err := store.New(db).CreateUser(context.Background(), store.CreateUserParams{
		Email:        email,
		PasswordHash: "x",
		Role:         role,
		Name:         "Test User",
	})
	if err != nil {
		t.Fatalf("creating test user %q: %v", email, err)
	}
	return u
}

// requestWithURLParams adds chi URL parameters to a request.
func requestWithURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// newJSONRequest creates an HTTP request with JSON body and optional URL params.
func newJSONRequest(t *testing.T, method, path, body string, params map[string]string) *http.Request {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if len(params) > 0 {
		req = requestWithURLParams(req, params)
	}
	return req
}

// decodeData decodes the data field of a response envelope into out.
func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decoding response envelope: %v", err)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		t.Fatalf("decoding response data: %v", err)
	}
}
