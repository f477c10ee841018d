// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package catalog

import (
	"database/sql"
	"io"
	"log/slog"
	"testing"

	"github.com/mocnha/mocnha-go/internal/model"
)

func cat(id int64, parent int64, name string, sortOrder int64, active bool) model.Category {
	c := model.Category{ID: id, Name: name, Slug: name, SortOrder: sortOrder, IsActive: active}
	if parent != 0 {
		c.ParentID = sql.NullInt64{Int64: parent, Valid: true}
	}
	return c
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func countNodes(forest []*model.CategoryNode) int {
	n := 0
	for _, node := range forest {
		n += 1 + countNodes(node.Children)
	}
	return n
}

func TestBuildTreeRootSorting(t *testing.T) {
	records := []model.Category{
		cat(1, 0, "B", 0, true),
		cat(2, 0, "A", 0, true),
		cat(3, 1, "C", 0, true),
	}

	forest := BuildTree(records, discard())
	if len(forest) != 2 {
		t.Fatalf("roots = %d, want 2", len(forest))
	}
	if forest[0].ID != 2 || forest[1].ID != 1 {
		t.Errorf("root order = [%d %d], want [2 1]", forest[0].ID, forest[1].ID)
	}
	if len(forest[0].Children) != 0 {
		t.Errorf("node 2 children = %d, want 0", len(forest[0].Children))
	}
	if len(forest[1].Children) != 1 || forest[1].Children[0].ID != 3 {
		t.Errorf("node 1 children = %+v, want [3]", forest[1].Children)
	}
}

func TestBuildTreeSiblingOrdering(t *testing.T) {
	records := []model.Category{
		cat(1, 0, "Root", 0, true),
		cat(2, 1, "Ghế", 2, true),
		cat(3, 1, "Bàn", 1, true),
		cat(4, 1, "Tủ", 1, true),
	}

	forest := BuildTree(records, discard())
	children := forest[0].Children
	if len(children) != 3 {
		t.Fatalf("children = %d, want 3", len(children))
	}
	// sortOrder 1 before 2; within sortOrder 1, "Bàn" before "Tủ".
	want := []int64{3, 4, 2}
	for i, id := range want {
		if children[i].ID != id {
			t.Errorf("child[%d] = %d, want %d", i, children[i].ID, id)
		}
	}
}

func TestBuildTreeFiltersInactive(t *testing.T) {
	records := []model.Category{
		cat(1, 0, "Visible", 0, true),
		cat(2, 0, "Hidden", 0, false),
		cat(3, 2, "ChildOfHidden", 0, true),
	}

	forest := BuildTree(records, discard())
	if got := countNodes(forest); got != 2 {
		t.Fatalf("node count = %d, want 2", got)
	}
	// Child of a filtered-out parent is promoted to root.
	ids := map[int64]bool{}
	for _, root := range forest {
		ids[root.ID] = true
	}
	if !ids[1] || !ids[3] {
		t.Errorf("roots = %v, want {1, 3}", ids)
	}
}

func TestBuildTreeMissingParentBecomesRoot(t *testing.T) {
	records := []model.Category{
		cat(1, 99, "Stranded", 0, true),
	}

	forest := BuildTree(records, discard())
	if len(forest) != 1 || forest[0].ID != 1 {
		t.Fatalf("forest = %+v, want single root 1", forest)
	}
}

func TestBuildTreeCycleOrphansKept(t *testing.T) {
	// 2 and 3 reference each other; neither reaches a root.
	records := []model.Category{
		cat(1, 0, "Root", 0, true),
		cat(2, 3, "CycleA", 0, true),
		cat(3, 2, "CycleB", 0, true),
	}

	forest := BuildTree(records, discard())
	if got := countNodes(forest); got != 3 {
		t.Fatalf("node count = %d, want all 3 records kept", got)
	}
	// First cycle member in input order is promoted; the other hangs beneath it.
	var promoted *model.CategoryNode
	for _, root := range forest {
		if root.ID == 2 {
			promoted = root
		}
	}
	if promoted == nil {
		t.Fatal("cycle member 2 not promoted to root")
	}
	if len(promoted.Children) != 1 || promoted.Children[0].ID != 3 {
		t.Errorf("promoted children = %+v, want [3]", promoted.Children)
	}
}

func TestBuildTreeSelfParent(t *testing.T) {
	records := []model.Category{
		cat(1, 1, "Selfie", 0, true),
	}

	forest := BuildTree(records, discard())
	if len(forest) != 1 || forest[0].ID != 1 {
		t.Fatalf("forest = %+v, want single promoted root", forest)
	}
	if len(forest[0].Children) != 0 {
		t.Errorf("self-parent node has children %+v", forest[0].Children)
	}
}

func TestBuildTreeIdempotent(t *testing.T) {
	records := []model.Category{
		cat(1, 0, "B", 1, true),
		cat(2, 0, "A", 1, true),
		cat(3, 1, "Z", 0, true),
		cat(4, 1, "Y", 0, true),
	}

	first := BuildTree(records, discard())
	second := BuildTree(records, discard())

	var flatten func(forest []*model.CategoryNode) []int64
	flatten = func(forest []*model.CategoryNode) []int64 {
		var out []int64
		for _, n := range forest {
			out = append(out, n.ID)
			out = append(out, flatten(n.Children)...)
		}
		return out
	}

	a, b := flatten(first), flatten(second)
	if len(a) != len(b) {
		t.Fatalf("node counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("order differs at %d: %d vs %d", i, a[i], b[i])
		}
	}
}

func TestBuildAdminTreePreservesRootOrderAndInactive(t *testing.T) {
	records := []model.Category{
		cat(1, 0, "B", 0, true),
		cat(2, 0, "A", 0, false),
		cat(3, 1, "C", 0, false),
	}

	forest := BuildAdminTree(records, discard())
	if len(forest) != 2 {
		t.Fatalf("roots = %d, want 2", len(forest))
	}
	// Input order, not name order.
	if forest[0].ID != 1 || forest[1].ID != 2 {
		t.Errorf("root order = [%d %d], want [1 2]", forest[0].ID, forest[1].ID)
	}
	// Inactive records participate and the raw record is attached.
	if forest[1].IsActive {
		t.Error("admin node lost raw is_active field")
	}
	if len(forest[0].Children) != 1 || forest[0].Children[0].ID != 3 {
		t.Errorf("children of 1 = %+v, want [3]", forest[0].Children)
	}
}

func TestBuildAdminTreeSortsChildren(t *testing.T) {
	records := []model.Category{
		cat(1, 0, "Root", 0, true),
		cat(2, 1, "B", 1, true),
		cat(3, 1, "A", 1, true),
		cat(4, 1, "First", 0, true),
	}

	forest := BuildAdminTree(records, discard())
	children := forest[0].Children
	want := []int64{4, 3, 2}
	if len(children) != 3 {
		t.Fatalf("children = %d, want 3", len(children))
	}
	for i, id := range want {
		if children[i].ID != id {
			t.Errorf("child[%d] = %d, want %d", i, children[i].ID, id)
		}
	}
}

func TestBuildTreeEmptyInput(t *testing.T) {
	if forest := BuildTree(nil, discard()); len(forest) != 0 {
		t.Errorf("BuildTree(nil) = %+v, want empty", forest)
	}
	if forest := BuildAdminTree(nil, discard()); len(forest) != 0 {
		t.Errorf("BuildAdminTree(nil) = %+v, want empty", forest)
	}
}
