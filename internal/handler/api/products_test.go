// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mocnha/mocnha-go/internal/middleware"
	"github.com/mocnha/mocnha-go/internal/store"
)

func langRequest(t *testing.T, path, lang string) *http.Request {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	return req.WithContext(context.WithValue(req.Context(), middleware.ContextKeyLang, lang))
}

func TestListProducts_LocalizedWithFallback(t *testing.T) {
	env := newTestEnv(t)
	p := createTestProduct(t, env.db, "sofa-01", "Sofa gỗ sồi", "Ghế **sofa** gỗ sồi.", true)
	createTestProduct(t, env.db, "ban-01", "Bàn trà", "", true)
	createTestProduct(t, env.db, "kho-01", "Hàng lỗi", "", false)

	if err := store.New(env.db).UpdateProductTranslation(context.Background(), p.ID, "橡木沙发", "橡木**沙发**。"); err != nil {
		t.Fatalf("seeding translation: %v", err)
	}

	rec := httptest.NewRecorder()
	env.handler.ListProducts(rec, langRequest(t, "/api/v1/products?lang=zh", "zh"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var products []PublicProductResponse
	decodeData(t, rec, &products)
	if len(products) != 2 {
		t.Fatalf("len(products) = %d, want 2 active", len(products))
	}

	byKey := make(map[string]PublicProductResponse, len(products))
	for _, p := range products {
		byKey[p.SKU] = p
	}
	if got := byKey["sofa-01"].Name; got != "橡木沙发" {
		t.Errorf("translated name = %q, want 橡木沙发", got)
	}
	if !strings.Contains(byKey["sofa-01"].DescriptionHTML, "<strong>沙发</strong>") {
		t.Errorf("description not rendered from Markdown: %q", byKey["sofa-01"].DescriptionHTML)
	}
	// Untranslated product falls back to the Vietnamese source.
	if got := byKey["ban-01"].Name; got != "Bàn trà" {
		t.Errorf("fallback name = %q, want Bàn trà", got)
	}
}

func TestGetProduct(t *testing.T) {
	env := newTestEnv(t)
	createTestProduct(t, env.db, "sofa-01", "Sofa gỗ sồi", "Ghế *êm*.", true)
	createTestProduct(t, env.db, "kho-01", "Hàng lỗi", "", false)

	req := requestWithURLParams(langRequest(t, "/api/v1/products/1", "vi"), map[string]string{"id": "1"})
	rec := httptest.NewRecorder()
	env.handler.GetProduct(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var product PublicProductResponse
	decodeData(t, rec, &product)
	if product.Name != "Sofa gỗ sồi" || product.Lang != "vi" {
		t.Errorf("got %q lang %q", product.Name, product.Lang)
	}
	if !strings.Contains(product.DescriptionHTML, "<em>êm</em>") {
		t.Errorf("description HTML = %q", product.DescriptionHTML)
	}

	rec = httptest.NewRecorder()
	env.handler.GetProduct(rec, requestWithURLParams(langRequest(t, "/api/v1/products/2", "vi"),
		map[string]string{"id": "2"}))
	if rec.Code != http.StatusNotFound {
		t.Errorf("inactive product status = %d, want 404", rec.Code)
	}
}

func TestCreateProduct(t *testing.T) {
	env := newTestEnv(t)
	category := createTestCategory(t, env.db, "Phòng khách", "phong-khach", nil, 0, true)

	rec := httptest.NewRecorder()
	env.handler.CreateProduct(rec, newJSONRequest(t, http.MethodPost, "/api/v1/admin/products",
		`{"sku":"sofa-01","name":"Sofa gỗ sồi","price_vnd":12500000,"category_id":1}`, nil))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var created AdminProductResponse
	decodeData(t, rec, &created)
	if created.Slug != "sofa-go-soi" {
		t.Errorf("generated slug = %q, want sofa-go-soi", created.Slug)
	}
	if created.CategoryID == nil || *created.CategoryID != category.ID {
		t.Errorf("category_id = %v, want %d", created.CategoryID, category.ID)
	}

	tests := []struct {
		name string
		body string
	}{
		{"duplicate sku", `{"sku":"sofa-01","name":"Khác","price_vnd":1}`},
		{"missing sku", `{"name":"Sofa","price_vnd":1}`},
		{"missing name", `{"sku":"x-01","price_vnd":1}`},
		{"negative price", `{"sku":"x-02","name":"X","price_vnd":-5}`},
		{"unknown category", `{"sku":"x-03","name":"X","price_vnd":1,"category_id":99}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			env.handler.CreateProduct(rec, newJSONRequest(t, http.MethodPost, "/api/v1/admin/products", tt.body, nil))
			if rec.Code != http.StatusUnprocessableEntity && rec.Code != http.StatusConflict {
				t.Errorf("status = %d, want validation or conflict", rec.Code)
			}
		})
	}
}

func TestUpdateProduct_Partial(t *testing.T) {
	env := newTestEnv(t)
	createTestProduct(t, env.db, "sofa-01", "Sofa gỗ sồi", "Mô tả.", true)

	rec := httptest.NewRecorder()
	env.handler.UpdateProduct(rec, newJSONRequest(t, http.MethodPut, "/api/v1/admin/products/1",
		`{"name_zh":"橡木沙发","price_vnd":13000000}`, map[string]string{"id": "1"}))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var updated AdminProductResponse
	decodeData(t, rec, &updated)
	if updated.NameZh != "橡木沙发" || updated.PriceVND != 13000000 {
		t.Errorf("got name_zh %q price %d", updated.NameZh, updated.PriceVND)
	}
	if updated.Name != "Sofa gỗ sồi" || updated.Description != "Mô tả." {
		t.Error("untouched fields changed")
	}
}

func TestDeleteProduct(t *testing.T) {
	env := newTestEnv(t)
	createTestProduct(t, env.db, "sofa-01", "Sofa gỗ sồi", "", true)

	rec := httptest.NewRecorder()
	env.handler.DeleteProduct(rec, requestWithURLParams(
		httptest.NewRequest(http.MethodDelete, "/api/v1/admin/products/1", nil),
		map[string]string{"id": "1"}))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}

	rec = httptest.NewRecorder()
	env.handler.DeleteProduct(rec, requestWithURLParams(
		httptest.NewRequest(http.MethodDelete, "/api/v1/admin/products/1", nil),
		map[string]string{"id": "1"}))
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
}

func TestTranslateAllProducts_Endpoint(t *testing.T) {
	env := newTestEnv(t)
	createTestProduct(t, env.db, "sofa-01", "Sofa gỗ sồi", "", true)

	rec := httptest.NewRecorder()
	env.handler.TranslateAllProducts(rec, newJSONRequest(t, http.MethodPost,
		"/api/v1/admin/products/translate-all", `{}`, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var summary struct {
		Translated int64 `json:"translated"`
		Failed     int64 `json:"failed"`
		Total      int64 `json:"total"`
	}
	decodeData(t, rec, &summary)
	if summary.Translated != 1 || summary.Failed != 0 {
		t.Errorf("summary = %+v, want 1 translated", summary)
	}

	product, err := store.New(env.db).GetProductByID(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetProductByID() error = %v", err)
	}
	if product.NameZh != "你好" {
		t.Errorf("name_zh = %q, want stub translation", product.NameZh)
	}
}
