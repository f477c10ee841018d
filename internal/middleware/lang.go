// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"net/http"

	"golang.org/x/text/language"

	"github.com/mocnha/mocnha-go/internal/model"
)

var (
	supportedTags = func() []language.Tag {
		tags := make([]language.Tag, 0, len(model.SupportedLanguages))
		for _, code := range model.SupportedLanguages {
			tags = append(tags, language.MustParse(code))
		}
		return tags
	}()
	langMatcher = language.NewMatcher(supportedTags)
)

// NegotiateLang resolves the content language for a request: the lang query
// parameter wins, then the Accept-Language header, then the storefront
// default (Vietnamese).
func NegotiateLang(r *http.Request) string {
	if q := r.URL.Query().Get("lang"); q != "" && model.IsSupportedLang(q) {
		return q
	}

	acceptLang := r.Header.Get("Accept-Language")
	if acceptLang == "" {
		return model.SourceLang
	}

	tags, _, err := language.ParseAcceptLanguage(acceptLang)
	if err != nil || len(tags) == 0 {
		return model.SourceLang
	}

	_, idx, _ := langMatcher.Match(tags...)
	if idx >= 0 && idx < len(model.SupportedLanguages) {
		return model.SupportedLanguages[idx]
	}
	return model.SourceLang
}

// DetectLang stores the negotiated content language in the request context.
func DetectLang(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), ContextKeyLang, NegotiateLang(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetLang returns the negotiated content language from the request context.
func GetLang(r *http.Request) string {
	if lang, ok := r.Context().Value(ContextKeyLang).(string); ok {
		return lang
	}
	return model.SourceLang
}
