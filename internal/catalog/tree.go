// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package catalog builds presentation trees from flat category record sets.
// The builders are pure over their input; callers fetch records first.
package catalog

import (
	"log/slog"
	"slices"

	"github.com/mocnha/mocnha-go/internal/model"
)

// layout resolves the parent graph of records into a forest of record indices.
// Children are attached in breadth-first visit order; sorting happens later.
//
// Records whose parent is absent from the set become roots. Records caught in
// a parent cycle are unreachable from any root; instead of dropping them, the
// first record of each cycle (in input order) is promoted to a root with a
// logged warning and the rest of the cycle hangs beneath it.
type layout struct {
	roots    []int
	children [][]int
}

func resolve(records []model.Category, log *slog.Logger) layout {
	l := layout{children: make([][]int, len(records))}

	index := make(map[int64]int, len(records))
	for i, rec := range records {
		index[rec.ID] = i
	}

	childEdges := make([][]int, len(records))
	for i, rec := range records {
		if !rec.ParentID.Valid {
			l.roots = append(l.roots, i)
			continue
		}
		parent, ok := index[rec.ParentID.Int64]
		if !ok {
			l.roots = append(l.roots, i)
			continue
		}
		childEdges[parent] = append(childEdges[parent], i)
	}

	visited := make([]bool, len(records))
	var walk func(from int)
	walk = func(from int) {
		queue := []int{from}
		visited[from] = true
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, child := range childEdges[cur] {
				if visited[child] {
					continue
				}
				visited[child] = true
				l.children[cur] = append(l.children[cur], child)
				queue = append(queue, child)
			}
		}
	}

	for _, root := range l.roots {
		walk(root)
	}

	for i := range records {
		if visited[i] {
			continue
		}
		log.Warn("category unreachable from any root, promoting to orphan root",
			"category_id", records[i].ID,
			"slug", records[i].Slug,
			"parent_id", records[i].ParentID.Int64)
		l.roots = append(l.roots, i)
		walk(i)
	}

	return l
}

// sortSiblings orders a sibling index list by sort order ascending, then name
// lexicographic ascending.
func sortSiblings(siblings []int, records []model.Category) {
	slices.SortStableFunc(siblings, func(a, b int) int {
		if records[a].SortOrder != records[b].SortOrder {
			if records[a].SortOrder < records[b].SortOrder {
				return -1
			}
			return 1
		}
		if records[a].Name < records[b].Name {
			return -1
		}
		if records[a].Name > records[b].Name {
			return 1
		}
		return 0
	})
}

// BuildTree builds the customer-facing category forest from records.
// Only active records participate. Every sibling list, roots included, is
// sorted by (sort order, name). The node count of the result always equals
// the number of active input records.
func BuildTree(records []model.Category, log *slog.Logger) []*model.CategoryNode {
	if log == nil {
		log = slog.Default()
	}

	active := make([]model.Category, 0, len(records))
	for _, rec := range records {
		if rec.IsActive {
			active = append(active, rec)
		}
	}

	l := resolve(active, log)
	sortSiblings(l.roots, active)
	for i := range l.children {
		sortSiblings(l.children[i], active)
	}

	var build func(i int) *model.CategoryNode
	build = func(i int) *model.CategoryNode {
		rec := active[i]
		node := &model.CategoryNode{
			ID:       rec.ID,
			Name:     rec.Name,
			Slug:     rec.Slug,
			Image:    rec.Image.String,
			Children: []*model.CategoryNode{},
		}
		for _, child := range l.children[i] {
			node.Children = append(node.Children, build(child))
		}
		return node
	}

	forest := make([]*model.CategoryNode, 0, len(l.roots))
	for _, root := range l.roots {
		forest = append(forest, build(root))
	}
	return forest
}

// BuildAdminTree builds the back-office forest from the unfiltered record set.
// Each node carries the raw record for in-place editing. Child lists are
// sorted like the public tree, but roots keep the input iteration order so the
// admin list is stable under edits.
func BuildAdminTree(records []model.Category, log *slog.Logger) []*model.AdminCategoryNode {
	if log == nil {
		log = slog.Default()
	}

	l := resolve(records, log)
	for i := range l.children {
		sortSiblings(l.children[i], records)
	}

	var build func(i int) *model.AdminCategoryNode
	build = func(i int) *model.AdminCategoryNode {
		node := &model.AdminCategoryNode{
			Category: records[i],
			Children: []*model.AdminCategoryNode{},
		}
		for _, child := range l.children[i] {
			node.Children = append(node.Children, build(child))
		}
		return node
	}

	forest := make([]*model.AdminCategoryNode, 0, len(l.roots))
	for _, root := range l.roots {
		forest = append(forest, build(root))
	}
	return forest
}
