// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"time"

	"github.com/mocnha/mocnha-go/internal/model"
)

// Cache keys for the storefront hot paths.
const (
	keyCategoryTree = "catalog:tree"
	keyBundlePrefix = "i18n:bundle:"
)

// Storefront caches the two reads every page load hits: the public category
// tree and the per-language translation bundles.
type Storefront struct {
	backend Cache
	trees   *TypedCache[[]*model.CategoryNode]
	bundles *TypedCache[map[string]any]
}

// NewStorefront builds the storefront cache views over backend.
func NewStorefront(backend Cache, ttl time.Duration) *Storefront {
	return &Storefront{
		backend: backend,
		trees:   NewTypedCache[[]*model.CategoryNode](backend, ttl),
		bundles: NewTypedCache[map[string]any](backend, ttl),
	}
}

// Tree returns the cached public category forest, loading it on a miss.
func (s *Storefront) Tree(ctx context.Context, load func(context.Context) ([]*model.CategoryNode, error)) ([]*model.CategoryNode, error) {
	return s.trees.GetOrLoad(ctx, keyCategoryTree, load)
}

// InvalidateTree drops the cached category forest after a catalog write.
func (s *Storefront) InvalidateTree(ctx context.Context) error {
	return s.trees.Delete(ctx, keyCategoryTree)
}

func bundleKey(lang, namespace string) string {
	return keyBundlePrefix + lang + ":" + namespace
}

// Bundle returns the cached translation bundle for lang and namespace,
// loading it on a miss. An empty namespace keys the full bundle.
func (s *Storefront) Bundle(ctx context.Context, lang, namespace string, load func(context.Context) (map[string]any, error)) (map[string]any, error) {
	return s.bundles.GetOrLoad(ctx, bundleKey(lang, namespace), load)
}

// InvalidateBundles drops every cached bundle after a translation write.
// Namespaces are not tracked, so this clears the whole backend keyspace.
func (s *Storefront) InvalidateBundles(ctx context.Context) error {
	return s.backend.Clear(ctx)
}

// Stats exposes backend counters when the backend tracks them.
func (s *Storefront) Stats() (Stats, bool) {
	if sp, ok := s.backend.(StatsProvider); ok {
		return sp.Stats(), true
	}
	return Stats{}, false
}
