// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Supported storefront language codes.
const (
	LangVietnamese = "vi"
	LangChinese    = "zh"
)

// SourceLang is the language content is authored in; TargetLang is the
// language the translation pipeline produces.
const (
	SourceLang = LangVietnamese
	TargetLang = LangChinese
)

// Language represents a storefront content language.
type Language struct {
	ID         int64     `json:"id"`
	Code       string    `json:"code"`        // ISO 639-1: vi, zh
	Name       string    `json:"name"`        // Vietnamese, Chinese
	NativeName string    `json:"native_name"` // Tiếng Việt, 中文
	IsDefault  bool      `json:"is_default"`  // only one can be default
	IsActive   bool      `json:"is_active"`
	Position   int64     `json:"position"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// SupportedLanguages lists the language codes the pipeline accepts.
var SupportedLanguages = []string{LangVietnamese, LangChinese}

// IsSupportedLang reports whether code is one of the supported storefront languages.
func IsSupportedLang(code string) bool {
	for _, c := range SupportedLanguages {
		if c == code {
			return true
		}
	}
	return false
}
