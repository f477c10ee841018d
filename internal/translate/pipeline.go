// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package translate

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/mocnha/mocnha-go/internal/model"
	"github.com/mocnha/mocnha-go/internal/store"
	"github.com/mocnha/mocnha-go/internal/util"
)

// interItemDelay paces sequential batch loops against the provider.
const interItemDelay = 1500 * time.Millisecond

// defaultReviewReason is recorded in history when a review carries no reason.
const defaultReviewReason = "Human review"

// Pipeline wires the translation store to a Provider and enforces the data
// rules: unique keys, version/history on human review only, one audit request
// row per AI invocation.
type Pipeline struct {
	queries  *store.Queries
	provider Provider
	limiter  *rate.Limiter
	log      *slog.Logger
}

// NewPipeline builds a Pipeline. The limiter paces provider calls in batch
// loops; single-key calls go through unthrottled.
func NewPipeline(queries *store.Queries, provider Provider, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		queries:  queries,
		provider: provider,
		limiter:  rate.NewLimiter(rate.Every(interItemDelay), 1),
		log:      log,
	}
}

// CreateKeyParams holds the fields of a new translation key.
type CreateKeyParams struct {
	Key         string
	Namespace   string
	SourceValue string // Vietnamese text, may be empty
	Context     string
	Category    string
	IsPlural    bool
	Tags        []string
	CreatedBy   string // user email for attribution
}

// CreateKey registers a new translation entry. The source language sub-record
// starts at draft with the given value; the target sub-record starts empty.
// Returns store.ErrDuplicate when the key is taken.
func (p *Pipeline) CreateKey(ctx context.Context, arg CreateKeyParams) (model.TranslationEntry, error) {
	var zero model.TranslationEntry

	if !util.IsValidTranslationKey(arg.Key) {
		return zero, validationErr("invalid translation key %q", arg.Key)
	}
	if arg.Namespace == "" {
		arg.Namespace = model.DefaultNamespace
	}
	if arg.Category == "" {
		arg.Category = model.EntryCategoryUI
	}
	if !model.ValidEntryCategory(arg.Category) {
		return zero, validationErr("invalid category %q", arg.Category)
	}

	// The unique index still backstops concurrent creates.
	exists, err := p.queries.TranslationKeyExists(ctx, arg.Key)
	if err != nil {
		return zero, err
	}
	if exists {
		return zero, store.ErrDuplicate
	}

	now := time.Now().UTC()
	entry := model.TranslationEntry{}
	entry.SetTranslations(map[string]model.LangValue{
		model.SourceLang: {
			Value:        arg.SourceValue,
			Status:       model.TranslationStatusDraft,
			TranslatedBy: arg.CreatedBy,
			LastModified: now,
		},
		model.TargetLang: {
			Status:       model.TranslationStatusDraft,
			LastModified: now,
		},
	})
	entry.SetTags(arg.Tags)

	created, err := p.queries.CreateTranslationEntry(ctx, store.CreateTranslationParams{
		Key:          arg.Key,
		Namespace:    arg.Namespace,
		Translations: entry.Translations,
		Context:      arg.Context,
		Category:     arg.Category,
		IsPlural:     arg.IsPlural,
		Tags:         entry.Tags,
	})
	if err != nil {
		return zero, err
	}

	p.log.Info("translation key created", "key", created.Key, "namespace", created.Namespace)
	return created, nil
}

// GetByLanguage returns the nested bundle for lang, optionally restricted to
// one namespace. Keys sharing a prefix produce a PrefixCollisionError.
func (p *Pipeline) GetByLanguage(ctx context.Context, lang, namespace string) (map[string]any, error) {
	if !model.IsSupportedLang(lang) {
		return nil, validationErr("unsupported language %q", lang)
	}
	entries, err := p.queries.ListTranslations(ctx, namespace)
	if err != nil {
		return nil, err
	}
	return Nest(entries, lang)
}

// ListKeys returns the raw entries, optionally restricted to one namespace.
func (p *Pipeline) ListKeys(ctx context.Context, namespace string) ([]model.TranslationEntry, error) {
	return p.queries.ListTranslations(ctx, namespace)
}

// GetKey returns one entry by its full dot key, or store.ErrNotFound.
func (p *Pipeline) GetKey(ctx context.Context, key string) (model.TranslationEntry, error) {
	return p.queries.GetTranslationByKey(ctx, key)
}

// DeleteKey removes an entry together with its request audit rows.
func (p *Pipeline) DeleteKey(ctx context.Context, id int64) error {
	if err := p.queries.DeleteTranslationEntry(ctx, id); err != nil {
		return err
	}
	p.log.Info("translation key deleted", "translation_id", id)
	return nil
}

// RequestAITranslation machine-translates one entry from the source to the
// target language. Exactly one TranslationRequest row records the attempt.
// On success the target sub-record is rewritten with ai_translated status and
// AI attribution; the entry version is not touched. On failure the request is
// marked failed, the entry stays untouched and the provider error surfaces to
// the caller.
func (p *Pipeline) RequestAITranslation(ctx context.Context, translationID int64) (model.TranslationRequest, error) {
	var zero model.TranslationRequest

	entry, err := p.queries.GetTranslationByID(ctx, translationID)
	if err != nil {
		return zero, err
	}

	sourceText := entry.ValueFor(model.SourceLang)
	if sourceText == "" {
		return zero, validationErr("entry %q has no source text to translate", entry.Key)
	}

	req, err := p.queries.CreateTranslationRequest(ctx, store.CreateRequestParams{
		TranslationID: entry.ID,
		SourceLang:    model.SourceLang,
		TargetLang:    model.TargetLang,
		SourceText:    sourceText,
		Status:        model.RequestStatusPending,
	})
	if err != nil {
		return zero, err
	}
	if err := p.queries.MarkRequestProcessing(ctx, req.ID); err != nil {
		return zero, err
	}

	result, err := p.provider.Translate(ctx, sourceText, model.SourceLang, model.TargetLang, entry.Context)
	if err != nil {
		if failErr := p.queries.FailTranslationRequest(ctx, req.ID, err.Error()); failErr != nil {
			p.log.Error("recording failed translation request", "request_id", req.ID, "error", failErr)
		}
		p.log.Warn("ai translation failed", "key", entry.Key, "provider", p.provider.ID(), "error", err)
		return zero, upstreamErr(p.provider.ID(), err)
	}

	if err := p.queries.CompleteTranslationRequest(ctx, store.CompleteRequestParams{
		ID:         req.ID,
		AIResult:   result.Translation,
		AIProvider: result.Provider,
		Confidence: result.Confidence,
	}); err != nil {
		return zero, err
	}

	translations := entry.GetTranslations()
	translations[model.TargetLang] = model.LangValue{
		Value:        result.Translation,
		Status:       model.TranslationStatusAITranslated,
		TranslatedBy: model.TranslatedByAI,
		LastModified: time.Now().UTC(),
	}
	entry.SetTranslations(translations)
	if err := p.queries.UpdateTranslationValues(ctx, entry.ID, entry.Translations); err != nil {
		return zero, err
	}

	p.log.Info("ai translation applied", "key", entry.Key, "provider", result.Provider, "confidence", result.Confidence)
	return p.queries.GetTranslationRequest(ctx, req.ID)
}

// BatchResult is the per-item outcome of a batch translation run.
type BatchResult struct {
	TranslationID int64  `json:"translation_id"`
	Key           string `json:"key"`
	Success       bool   `json:"success"`
	Translation   string `json:"translation,omitempty"`
	Error         string `json:"error,omitempty"`
}

// BatchAITranslation translates the given entries sequentially with a fixed
// inter-item delay. One item's failure is recorded in its result and does not
// abort the rest. The returned slice always has one element per requested ID,
// in request order.
func (p *Pipeline) BatchAITranslation(ctx context.Context, ids []int64) ([]BatchResult, error) {
	if len(ids) == 0 {
		return nil, validationErr("no translation ids given")
	}

	entries, err := p.queries.ListTranslationsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	keys := make(map[int64]string, len(entries))
	for _, e := range entries {
		keys[e.ID] = e.Key
	}

	results := make([]BatchResult, 0, len(ids))
	for i, id := range ids {
		if i > 0 {
			if err := p.limiter.Wait(ctx); err != nil {
				return results, err
			}
		}

		res := BatchResult{TranslationID: id, Key: keys[id]}

		req, err := p.RequestAITranslation(ctx, id)
		if err != nil {
			res.Error = err.Error()
			results = append(results, res)
			continue
		}
		res.Success = true
		res.Translation = req.AIResult.String
		results = append(results, res)
	}
	return results, nil
}

// ReviewParams holds a human review of one language sub-record.
type ReviewParams struct {
	TranslationID int64
	Lang          string
	Value         string
	Status        string // defaults to human_reviewed
	Reviewer      model.User
	Reason        string
}

// ReviewTranslation applies a human edit: the sub-record is rewritten, one
// history record is appended carrying the pre-edit version, and the version
// counter increments by exactly one. This is the only path that moves the
// version. The latest completed AI request, when one exists, is marked
// reviewed.
func (p *Pipeline) ReviewTranslation(ctx context.Context, arg ReviewParams) (model.TranslationEntry, error) {
	var zero model.TranslationEntry

	if !model.IsSupportedLang(arg.Lang) {
		return zero, validationErr("unsupported language %q", arg.Lang)
	}
	if arg.Status == "" {
		arg.Status = model.TranslationStatusHumanReviewed
	}
	if arg.Reason == "" {
		arg.Reason = defaultReviewReason
	}
	if !model.ValidTranslationStatus(arg.Status) {
		return zero, validationErr("invalid status %q", arg.Status)
	}
	if !arg.Reviewer.CanReview() {
		return zero, validationErr("user %q cannot review translations", arg.Reviewer.Email)
	}

	entry, err := p.queries.GetTranslationByID(ctx, arg.TranslationID)
	if err != nil {
		return zero, err
	}

	now := time.Now().UTC()
	translations := entry.GetTranslations()
	oldValue := translations[arg.Lang].Value
	translations[arg.Lang] = model.LangValue{
		Value:        arg.Value,
		Status:       arg.Status,
		TranslatedBy: arg.Reviewer.Email,
		LastModified: now,
	}
	entry.SetTranslations(translations)
	entry.AppendHistory(model.HistoryEntry{
		Version:  entry.Version,
		Lang:     arg.Lang,
		OldValue: oldValue,
		NewValue: arg.Value,
		EditedBy: arg.Reviewer.Email,
		EditedAt: now,
		Reason:   arg.Reason,
	})

	if err := p.queries.ApplyTranslationReview(ctx, store.ReviewTranslationParams{
		ID:           entry.ID,
		Translations: entry.Translations,
		History:      entry.History,
		Version:      entry.Version + 1,
	}); err != nil {
		return zero, err
	}

	if req, err := p.queries.GetLatestCompletedRequest(ctx, entry.ID); err == nil {
		if err := p.queries.MarkRequestReviewed(ctx, store.ReviewRequestParams{
			ID:         req.ID,
			HumanText:  arg.Value,
			ReviewNote: arg.Reason,
			ReviewedBy: arg.Reviewer.ID,
		}); err != nil {
			p.log.Error("marking request reviewed", "request_id", req.ID, "error", err)
		}
	} else if !errors.Is(err, store.ErrNotFound) {
		return zero, err
	}

	p.log.Info("translation reviewed", "key", entry.Key, "lang", arg.Lang, "reviewer", arg.Reviewer.Email)
	return p.queries.GetTranslationByID(ctx, entry.ID)
}

// Stats aggregates translation completion metrics.
type Stats struct {
	Total       int64            `json:"total"`
	ByStatus    map[string]int64 `json:"by_status"`
	ByNamespace map[string]int64 `json:"by_namespace"`
}

// Statistics computes the completion overview. Status counts reflect the
// target-language sub-record of each entry, a missing sub-record counting as
// draft.
func (p *Pipeline) Statistics(ctx context.Context) (*Stats, error) {
	entries, err := p.queries.ListTranslations(ctx, "")
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		Total:       int64(len(entries)),
		ByStatus:    make(map[string]int64),
		ByNamespace: make(map[string]int64),
	}
	for _, entry := range entries {
		stats.ByStatus[entry.StatusFor(model.TargetLang)]++
		stats.ByNamespace[entry.Namespace]++
	}
	return stats, nil
}
