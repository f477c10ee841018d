// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"encoding/json"
	"time"
)

// Translation statuses for a single language sub-record. Transitions are not
// enforced: a review may set any status, including moving backwards.
const (
	TranslationStatusDraft         = "draft"
	TranslationStatusAITranslated  = "ai_translated"
	TranslationStatusHumanReviewed = "human_reviewed"
	TranslationStatusApproved      = "approved"
)

// TranslatedByAI is the attribution marker for machine-produced values.
const TranslatedByAI = "ai"

// Translation entry category tags.
const (
	EntryCategoryUI        = "ui"
	EntryCategoryProduct   = "product"
	EntryCategoryMarketing = "marketing"
	EntryCategoryEmail     = "email"
	EntryCategoryError     = "error"
)

// DefaultNamespace is used when a key is created without an explicit namespace.
const DefaultNamespace = "common"

// ValidTranslationStatus reports whether s is one of the four entry statuses.
func ValidTranslationStatus(s string) bool {
	switch s {
	case TranslationStatusDraft, TranslationStatusAITranslated,
		TranslationStatusHumanReviewed, TranslationStatusApproved:
		return true
	}
	return false
}

// ValidEntryCategory reports whether c is a known entry category tag.
func ValidEntryCategory(c string) bool {
	switch c {
	case EntryCategoryUI, EntryCategoryProduct, EntryCategoryMarketing,
		EntryCategoryEmail, EntryCategoryError:
		return true
	}
	return false
}

// LangValue is the per-language sub-record of a TranslationEntry.
type LangValue struct {
	Value        string    `json:"value"`
	Status       string    `json:"status"`
	TranslatedBy string    `json:"translated_by,omitempty"` // user email or TranslatedByAI
	LastModified time.Time `json:"last_modified"`
}

// HistoryEntry records one human edit of a language sub-record.
// History is append-only; AI translation writes do not appear here.
type HistoryEntry struct {
	Version   int64     `json:"version"` // version before the edit
	Lang      string    `json:"lang"`
	OldValue  string    `json:"old_value"`
	NewValue  string    `json:"new_value"`
	EditedBy  string    `json:"edited_by"`
	EditedAt  time.Time `json:"edited_at"`
	Reason    string    `json:"reason"`
}

// TranslationEntry is one translatable string identified by a unique
// dot-delimited key, with one sub-record per supported language.
// Translations, Tags and History are stored as JSON columns.
type TranslationEntry struct {
	ID           int64     `json:"id"`
	Key          string    `json:"key"`
	Namespace    string    `json:"namespace"`
	Translations string    `json:"-"` // JSON object: lang -> LangValue
	Context      string    `json:"context,omitempty"`
	Category     string    `json:"category"`
	IsPlural     bool      `json:"is_plural"`
	Tags         string    `json:"-"` // JSON array of strings
	Version      int64     `json:"version"`
	History      string    `json:"-"` // JSON array of HistoryEntry
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// GetTranslations parses the JSON translations column.
func (e *TranslationEntry) GetTranslations() map[string]LangValue {
	out := make(map[string]LangValue)
	if e.Translations == "" {
		return out
	}
	_ = json.Unmarshal([]byte(e.Translations), &out)
	return out
}

// SetTranslations serializes the per-language map back into the JSON column.
func (e *TranslationEntry) SetTranslations(m map[string]LangValue) {
	if m == nil {
		m = make(map[string]LangValue)
	}
	data, _ := json.Marshal(m)
	e.Translations = string(data)
}

// ValueFor returns the value for lang, or "" when the sub-record is absent.
func (e *TranslationEntry) ValueFor(lang string) string {
	return e.GetTranslations()[lang].Value
}

// StatusFor returns the status of the lang sub-record, defaulting to draft.
func (e *TranslationEntry) StatusFor(lang string) string {
	lv, ok := e.GetTranslations()[lang]
	if !ok || lv.Status == "" {
		return TranslationStatusDraft
	}
	return lv.Status
}

// GetTags parses the JSON tags column.
func (e *TranslationEntry) GetTags() []string {
	var tags []string
	if e.Tags == "" || e.Tags == "[]" {
		return tags
	}
	_ = json.Unmarshal([]byte(e.Tags), &tags)
	return tags
}

// SetTags serializes tags into the JSON column.
func (e *TranslationEntry) SetTags(tags []string) {
	if len(tags) == 0 {
		e.Tags = "[]"
		return
	}
	data, _ := json.Marshal(tags)
	e.Tags = string(data)
}

// GetHistory parses the JSON history column.
func (e *TranslationEntry) GetHistory() []HistoryEntry {
	var hist []HistoryEntry
	if e.History == "" || e.History == "[]" {
		return hist
	}
	_ = json.Unmarshal([]byte(e.History), &hist)
	return hist
}

// AppendHistory appends one record to the history column.
func (e *TranslationEntry) AppendHistory(h HistoryEntry) {
	hist := append(e.GetHistory(), h)
	data, _ := json.Marshal(hist)
	e.History = string(data)
}
