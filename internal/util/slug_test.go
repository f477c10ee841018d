// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "Hello World", "hello-world"},
		{"vietnamese accents", "Bàn gỗ sồi", "ban-go-soi"},
		{"vietnamese d", "Đèn để bàn", "den-de-ban"},
		{"mixed case", "Sofa PHÒNG Khách", "sofa-phong-khach"},
		{"special chars", "Tủ quần áo (2 cánh)!", "tu-quan-ao-2-canh"},
		{"multiple spaces", "a  b   c", "a-b-c"},
		{"leading trailing", " -trim me- ", "trim-me"},
		{"empty", "", ""},
		{"numbers", "Kệ sách 5 tầng", "ke-sach-5-tang"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.input); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsValidSlug(t *testing.T) {
	tests := []struct {
		slug string
		want bool
	}{
		{"ban-go-soi", true},
		{"sofa", true},
		{"ke-sach-5-tang", true},
		{"", false},
		{"-leading", false},
		{"trailing-", false},
		{"UPPER", false},
		{"with space", false},
		{"unicode-sồi", false},
	}

	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			if got := IsValidSlug(tt.slug); got != tt.want {
				t.Errorf("IsValidSlug(%q) = %v, want %v", tt.slug, got, tt.want)
			}
		})
	}
}

func TestIsValidLangCode(t *testing.T) {
	valid := []string{"vi", "zh", "en"}
	invalid := []string{"", "v", "vie", "VI", "z1", "v-"}

	for _, code := range valid {
		if !IsValidLangCode(code) {
			t.Errorf("IsValidLangCode(%q) = false, want true", code)
		}
	}
	for _, code := range invalid {
		if IsValidLangCode(code) {
			t.Errorf("IsValidLangCode(%q) = true, want false", code)
		}
	}
}

func TestIsValidTranslationKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"common.welcome", true},
		{"product.detail.add_to_cart", true},
		{"nav", true},
		{"a.b.c.d", true},
		{"", false},
		{".leading", false},
		{"trailing.", false},
		{"double..dot", false},
		{"Upper.Case", false},
		{"has space.x", false},
		{"dash-key.x", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := IsValidTranslationKey(tt.key); got != tt.want {
				t.Errorf("IsValidTranslationKey(%q) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}
