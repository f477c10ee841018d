// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mocnha/mocnha-go/internal/cache"
	"github.com/mocnha/mocnha-go/internal/handler/api"
	"github.com/mocnha/mocnha-go/internal/model"
	"github.com/mocnha/mocnha-go/internal/store"
	"github.com/mocnha/mocnha-go/internal/translate"
)

// deadlineProvider records the context deadline of each call it receives.
type deadlineProvider struct {
	deadline    time.Time
	hasDeadline bool
}

func (p *deadlineProvider) ID() string { return translate.ProviderStub }

func (p *deadlineProvider) Translate(ctx context.Context, _, _, _, _ string) (*translate.Result, error) {
	p.deadline, p.hasDeadline = ctx.Deadline()
	return &translate.Result{Translation: "你好", Confidence: 0.9, Provider: translate.ProviderStub}, nil
}

// setupRouter builds the production route tree over an in-memory database and
// returns a raw API key holding all permissions.
func setupRouter(t *testing.T, provider translate.Provider) (http.Handler, *translate.Pipeline, string) {
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

	ctx := context.Background()
	queries := store.New(db)

	admin, err := queries.CreateUser(ctx, store.CreateUserParams{
		Email: "admin@mocnha.vn", PasswordHash: "x", Role: model.RoleAdmin, Name: "Admin",
	})
	if err != nil {
		t.Fatalf("creating admin user: %v", err)
	}

	rawKey, prefix, err := model.GenerateAPIKey()
	if err != nil {
		t.Fatalf("generating api key: %v", err)
	}
	perms, _ := json.Marshal(model.AllPermissions())
	if _, err := queries.CreateAPIKey(ctx, store.CreateAPIKeyParams{
		Name:        "ops",
		KeyHash:     model.HashAPIKey(rawKey),
		KeyPrefix:   prefix,
		Permissions: string(perms),
		CreatedBy:   admin.ID,
	}); err != nil {
		t.Fatalf("creating api key: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	pipeline := translate.NewPipeline(queries, provider, logger)

	backend := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute})
	t.Cleanup(func() { backend.Close() })
	storefront := cache.NewStorefront(backend, time.Minute)

	return newRouter(api.NewHandler(db, pipeline, storefront, logger), db), pipeline, rawKey
}

// Batch translation holds the response open while items are paced apart, so
// its route must carry a deadline well past the plain request timeout.
func TestBulkRoutesCarryBatchTimeout(t *testing.T) {
	provider := &deadlineProvider{}
	router, pipeline, rawKey := setupRouter(t, provider)

	entry, err := pipeline.CreateKey(context.Background(), translate.CreateKeyParams{
		Key: "common.hello", SourceValue: "Xin chào",
	})
	if err != nil {
		t.Fatalf("CreateKey() error = %v", err)
	}

	body, _ := json.Marshal(map[string][]int64{"ids": {entry.ID}})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/translations/ai-translate", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+rawKey)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if !provider.hasDeadline {
		t.Fatal("provider saw no deadline")
	}
	if remaining := time.Until(provider.deadline); remaining <= requestTimeout {
		t.Errorf("provider deadline %v away, want more than %v", remaining, requestTimeout)
	}
}

func TestRouterSurface(t *testing.T) {
	router, _, rawKey := setupRouter(t, &deadlineProvider{})

	tests := []struct {
		name     string
		method   string
		path     string
		withAuth bool
		want     int
	}{
		{"public status", http.MethodGet, "/api/v1/status", false, http.StatusOK},
		{"public tree", http.MethodGet, "/api/v1/categories/tree", false, http.StatusOK},
		{"admin unauthenticated", http.MethodGet, "/api/v1/admin/translations", false, http.StatusUnauthorized},
		{"admin authenticated", http.MethodGet, "/api/v1/admin/translations", true, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.withAuth {
				req.Header.Set("Authorization", "Bearer "+rawKey)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d, body = %s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}
