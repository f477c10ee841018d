// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mocnha/mocnha-go/internal/model"
)

func TestCategoryTree_PublicFiltersAndSorts(t *testing.T) {
	env := newTestEnv(t)

	root := createTestCategory(t, env.db, "Phòng khách", "phong-khach", nil, 2, true)
	createTestCategory(t, env.db, "Phòng ngủ", "phong-ngu", nil, 1, true)
	createTestCategory(t, env.db, "Kho", "kho", nil, 0, false)
	createTestCategory(t, env.db, "Sofa", "sofa", &root.ID, 0, true)

	rec := httptest.NewRecorder()
	env.handler.CategoryTree(rec, httptest.NewRequest(http.MethodGet, "/api/v1/categories/tree", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var tree []*model.CategoryNode
	decodeData(t, rec, &tree)

	if len(tree) != 2 {
		t.Fatalf("len(tree) = %d, want 2 (inactive category hidden)", len(tree))
	}
	if tree[0].Slug != "phong-ngu" || tree[1].Slug != "phong-khach" {
		t.Errorf("root order = [%s %s], want sort_order ascending", tree[0].Slug, tree[1].Slug)
	}
	if len(tree[1].Children) != 1 || tree[1].Children[0].Slug != "sofa" {
		t.Errorf("expected sofa under phong-khach, got %+v", tree[1].Children)
	}
}

func TestCategoryTree_Cached(t *testing.T) {
	env := newTestEnv(t)
	createTestCategory(t, env.db, "Phòng khách", "phong-khach", nil, 0, true)

	rec := httptest.NewRecorder()
	env.handler.CategoryTree(rec, httptest.NewRequest(http.MethodGet, "/api/v1/categories/tree", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("first status = %d", rec.Code)
	}

	// Second category added behind the cache's back stays invisible until
	// a mutation invalidates the tree.
	createTestCategory(t, env.db, "Phòng ngủ", "phong-ngu", nil, 1, true)

	rec = httptest.NewRecorder()
	env.handler.CategoryTree(rec, httptest.NewRequest(http.MethodGet, "/api/v1/categories/tree", nil))
	var tree []*model.CategoryNode
	decodeData(t, rec, &tree)
	if len(tree) != 1 {
		t.Fatalf("len(tree) = %d, want cached 1", len(tree))
	}

	if err := env.handler.storefront.InvalidateTree(t.Context()); err != nil {
		t.Fatalf("InvalidateTree() error = %v", err)
	}
	rec = httptest.NewRecorder()
	env.handler.CategoryTree(rec, httptest.NewRequest(http.MethodGet, "/api/v1/categories/tree", nil))
	decodeData(t, rec, &tree)
	if len(tree) != 2 {
		t.Errorf("len(tree) = %d after invalidation, want 2", len(tree))
	}
}

func TestGetCategory(t *testing.T) {
	env := newTestEnv(t)
	createTestCategory(t, env.db, "Phòng khách", "phong-khach", nil, 0, true)
	createTestCategory(t, env.db, "Kho", "kho", nil, 0, false)

	tests := []struct {
		name       string
		id         string
		wantStatus int
	}{
		{"active category", "1", http.StatusOK},
		{"inactive category", "2", http.StatusNotFound},
		{"unknown id", "99", http.StatusNotFound},
		{"bad id", "abc", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := requestWithURLParams(
				httptest.NewRequest(http.MethodGet, "/api/v1/categories/"+tt.id, nil),
				map[string]string{"id": tt.id})
			rec := httptest.NewRecorder()
			env.handler.GetCategory(rec, req)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestAdminCategoryTree_KeepsInputOrderAndInactive(t *testing.T) {
	env := newTestEnv(t)
	createTestCategory(t, env.db, "Phòng khách", "phong-khach", nil, 5, true)
	createTestCategory(t, env.db, "Kho", "kho", nil, 0, false)

	rec := httptest.NewRecorder()
	env.handler.AdminCategoryTree(rec, httptest.NewRequest(http.MethodGet, "/api/v1/admin/categories/tree", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var tree []*model.AdminCategoryNode
	decodeData(t, rec, &tree)
	if len(tree) != 2 {
		t.Fatalf("len(tree) = %d, want 2 (inactive included)", len(tree))
	}
	if tree[0].Slug != "phong-khach" || tree[1].Slug != "kho" {
		t.Errorf("admin roots = [%s %s], want insertion order", tree[0].Slug, tree[1].Slug)
	}
}

func TestCreateCategory(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.handler.CreateCategory(rec, newJSONRequest(t, http.MethodPost, "/api/v1/admin/categories",
		`{"name":"Phòng Khách"}`, nil))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var created CategoryAPIResponse
	decodeData(t, rec, &created)
	if created.Slug != "phong-khach" {
		t.Errorf("generated slug = %q, want phong-khach", created.Slug)
	}
	if !created.IsActive {
		t.Error("new category should default to active")
	}

	// Same name again collides on the generated slug.
	rec = httptest.NewRecorder()
	env.handler.CreateCategory(rec, newJSONRequest(t, http.MethodPost, "/api/v1/admin/categories",
		`{"name":"Phòng Khách"}`, nil))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("duplicate slug status = %d, want 422", rec.Code)
	}

	rec = httptest.NewRecorder()
	env.handler.CreateCategory(rec, newJSONRequest(t, http.MethodPost, "/api/v1/admin/categories",
		`{"name":"Sofa","parent_id":99}`, nil))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("missing parent status = %d, want 422", rec.Code)
	}

	rec = httptest.NewRecorder()
	env.handler.CreateCategory(rec, newJSONRequest(t, http.MethodPost, "/api/v1/admin/categories",
		`not json`, nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad body status = %d, want 400", rec.Code)
	}
}

func TestUpdateCategory_CycleGuard(t *testing.T) {
	env := newTestEnv(t)
	root := createTestCategory(t, env.db, "Phòng khách", "phong-khach", nil, 0, true)
	child := createTestCategory(t, env.db, "Sofa", "sofa", &root.ID, 0, true)
	createTestCategory(t, env.db, "Sofa góc", "sofa-goc", &child.ID, 0, true)

	// Moving the root under its own grandchild must be rejected.
	rec := httptest.NewRecorder()
	env.handler.UpdateCategory(rec, newJSONRequest(t, http.MethodPut, "/api/v1/admin/categories/1",
		`{"parent_id":3}`, map[string]string{"id": "1"}))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("cycle status = %d, want 422: %s", rec.Code, rec.Body.String())
	}

	// Self-parenting is rejected too.
	rec = httptest.NewRecorder()
	env.handler.UpdateCategory(rec, newJSONRequest(t, http.MethodPut, "/api/v1/admin/categories/2",
		`{"parent_id":2}`, map[string]string{"id": "2"}))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("self-parent status = %d, want 422", rec.Code)
	}

	// A legal re-parent of the grandchild onto the root succeeds.
	rec = httptest.NewRecorder()
	env.handler.UpdateCategory(rec, newJSONRequest(t, http.MethodPut, "/api/v1/admin/categories/3",
		`{"parent_id":1}`, map[string]string{"id": "3"}))
	if rec.Code != http.StatusOK {
		t.Fatalf("re-parent status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var updated CategoryAPIResponse
	decodeData(t, rec, &updated)
	if updated.ParentID == nil || *updated.ParentID != root.ID {
		t.Errorf("parent_id = %v, want %d", updated.ParentID, root.ID)
	}
}

func TestUpdateCategory_PartialAndClearParent(t *testing.T) {
	env := newTestEnv(t)
	root := createTestCategory(t, env.db, "Phòng khách", "phong-khach", nil, 0, true)
	createTestCategory(t, env.db, "Sofa", "sofa", &root.ID, 0, true)

	rec := httptest.NewRecorder()
	env.handler.UpdateCategory(rec, newJSONRequest(t, http.MethodPut, "/api/v1/admin/categories/2",
		`{"name_zh":"沙发","clear_parent":true}`, map[string]string{"id": "2"}))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var updated CategoryAPIResponse
	decodeData(t, rec, &updated)
	if updated.NameZh != "沙发" {
		t.Errorf("name_zh = %q, want 沙发", updated.NameZh)
	}
	if updated.ParentID != nil {
		t.Errorf("parent_id = %v, want cleared", updated.ParentID)
	}
	if updated.Name != "Sofa" {
		t.Errorf("name = %q, untouched field changed", updated.Name)
	}
}

func TestDeleteCategory(t *testing.T) {
	env := newTestEnv(t)
	createTestCategory(t, env.db, "Phòng khách", "phong-khach", nil, 0, true)

	req := requestWithURLParams(httptest.NewRequest(http.MethodDelete, "/api/v1/admin/categories/1", nil),
		map[string]string{"id": "1"})
	rec := httptest.NewRecorder()
	env.handler.DeleteCategory(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}

	rec = httptest.NewRecorder()
	env.handler.DeleteCategory(rec, requestWithURLParams(
		httptest.NewRequest(http.MethodDelete, "/api/v1/admin/categories/1", nil),
		map[string]string{"id": "1"}))
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
}
