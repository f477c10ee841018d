// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package translate

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mocnha/mocnha-go/internal/model"
)

// Summary is the outcome of a bulk content translation run.
type Summary struct {
	RunID      string   `json:"run_id"`
	Translated int64    `json:"translated"`
	Failed     int64    `json:"failed"`
	Total      int64    `json:"total"`
	Errors     []string `json:"errors"`
}

// TranslateAllProducts walks the active products and fills in missing Chinese
// names and descriptions. Items are processed sequentially with the pipeline's
// inter-item delay. Without force only products still needing translation are
// touched, which makes re-runs idempotent; force reprocesses everything.
// A single item's failure is collected and does not abort the run.
func (p *Pipeline) TranslateAllProducts(ctx context.Context, force bool) (*Summary, error) {
	products, err := p.queries.ListActiveProducts(ctx)
	if err != nil {
		return nil, err
	}

	summary := &Summary{RunID: uuid.NewString(), Errors: []string{}}
	p.log.Info("bulk product translation started", "run_id", summary.RunID, "candidates", len(products), "force", force)

	first := true
	for _, product := range products {
		if !force && !product.NeedsTranslation() {
			continue
		}
		summary.Total++

		if !first {
			if err := p.limiter.Wait(ctx); err != nil {
				return summary, err
			}
		}
		first = false

		if err := p.translateProduct(ctx, product, force); err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, fmt.Sprintf("product %s: %v", product.SKU, err))
			p.log.Warn("product translation failed", "run_id", summary.RunID, "sku", product.SKU, "error", err)
			continue
		}
		summary.Translated++
	}

	p.log.Info("bulk product translation finished",
		"run_id", summary.RunID, "translated", summary.Translated, "failed", summary.Failed)
	return summary, nil
}

func (p *Pipeline) translateProduct(ctx context.Context, product model.Product, force bool) error {
	nameZh := product.NameZh
	if force || nameZh == "" {
		result, err := p.provider.Translate(ctx, product.Name, model.SourceLang, model.TargetLang, "furniture product name")
		if err != nil {
			return err
		}
		nameZh = result.Translation
	}

	descriptionZh := product.DescriptionZh
	if product.Description != "" && (force || descriptionZh == "") {
		result, err := p.provider.Translate(ctx, product.Description, model.SourceLang, model.TargetLang, "furniture product description, Markdown")
		if err != nil {
			return err
		}
		descriptionZh = result.Translation
	}

	return p.queries.UpdateProductTranslation(ctx, product.ID, nameZh, descriptionZh)
}

// TranslateAllCategories fills in missing Chinese category names, with the
// same pacing, idempotency and partial-failure rules as TranslateAllProducts.
func (p *Pipeline) TranslateAllCategories(ctx context.Context, force bool) (*Summary, error) {
	categories, err := p.queries.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	summary := &Summary{RunID: uuid.NewString(), Errors: []string{}}
	p.log.Info("bulk category translation started", "run_id", summary.RunID, "candidates", len(categories), "force", force)

	first := true
	for _, category := range categories {
		if !force && category.NameZh != "" {
			continue
		}
		summary.Total++

		if !first {
			if err := p.limiter.Wait(ctx); err != nil {
				return summary, err
			}
		}
		first = false

		result, err := p.provider.Translate(ctx, category.Name, model.SourceLang, model.TargetLang, "furniture category name")
		if err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, fmt.Sprintf("category %s: %v", category.Slug, err))
			p.log.Warn("category translation failed", "run_id", summary.RunID, "slug", category.Slug, "error", err)
			continue
		}
		if err := p.queries.UpdateCategoryTranslation(ctx, category.ID, result.Translation); err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, fmt.Sprintf("category %s: %v", category.Slug, err))
			continue
		}
		summary.Translated++
	}

	p.log.Info("bulk category translation finished",
		"run_id", summary.RunID, "translated", summary.Translated, "failed", summary.Failed)
	return summary, nil
}
