// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service implements the taxonomy and catalog business logic on
// top of the store layer: descendant-closure resolution, category tree
// assembly, the category delete/reparent protocol, and the combined
// catalog query.
package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/eventory/eventory/internal/apperr"
	"github.com/eventory/eventory/internal/cache"
	"github.com/eventory/eventory/internal/model"
	"github.com/eventory/eventory/internal/store"
)

const (
	closureCachePrefix = "taxonomy:closure:"
	forestCacheKey     = "taxonomy:forest"
	taxonomyCacheTTL   = 10 * time.Minute
)

// Taxonomy manages the category hierarchy: CRUD, descendant resolution,
// tree building and the deletion protocol. Closure and tree results are
// cached and invalidated on every mutation, so cached reads always agree
// with the current taxonomy.
type Taxonomy struct {
	db         *sql.DB
	categories *store.CategoryStore
	events     *store.EventStore
	closures   *cache.TypedCache[[]int64]
	forest     *cache.TypedCache[[]*model.CategoryNode]
	cache      cache.Cache
	log        *slog.Logger
}

// NewTaxonomy creates the taxonomy service. The cache must be dedicated to
// taxonomy data: mutations clear it wholesale.
func NewTaxonomy(db *sql.DB, c cache.Cache, log *slog.Logger) *Taxonomy {
	return &Taxonomy{
		db:         db,
		categories: store.NewCategoryStore(db),
		events:     store.NewEventStore(db),
		closures:   cache.NewTypedCache[[]int64](c),
		forest:     cache.NewTypedCache[[]*model.CategoryNode](c),
		cache:      c,
		log:        log,
	}
}

// EnsureSentinel verifies at startup that the sentinel root category
// exists, creating it when missing. Running this before serving requests
// turns a would-be IntegrityViolation inside the deletion path into a
// fail-fast check.
func (s *Taxonomy) EnsureSentinel(ctx context.Context) (*model.Category, error) {
	sentinel, err := s.categories.FindByName(ctx, model.SentinelCategoryName)
	if err != nil {
		return nil, fmt.Errorf("failed to look up sentinel category: %w", err)
	}
	if sentinel != nil {
		if sentinel.ParentID.Valid {
			s.log.Warn("sentinel category has a parent, treating as root anyway",
				"scope", "taxonomy", "id", sentinel.ID, "parent_id", sentinel.ParentID.Int64)
		}
		return sentinel, nil
	}

	sentinel = &model.Category{Name: model.SentinelCategoryName}
	if err := s.categories.Save(ctx, sentinel); err != nil {
		return nil, fmt.Errorf("failed to create sentinel category: %w", err)
	}
	s.log.Info("created sentinel category", "id", sentinel.ID, "name", sentinel.Name)
	return sentinel, nil
}

// Get returns a category by id.
func (s *Taxonomy) Get(ctx context.Context, id int64) (*model.Category, error) {
	cat, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, apperr.NotFound("category not found").WithDetail("id", strconv.FormatInt(id, 10))
	}
	return cat, nil
}

// List returns a page of categories plus the total count.
func (s *Taxonomy) List(ctx context.Context, page, perPage int) ([]model.Category, int64, error) {
	total, err := s.categories.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	items, err := s.categories.List(ctx, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Create adds a category with an optional parent.
func (s *Taxonomy) Create(ctx context.Context, name string, parentID *int64) (*model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("category name is required")
	}

	cat := &model.Category{Name: name}
	if parentID != nil {
		parent, err := s.categories.FindByID(ctx, *parentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, apperr.NotFound("parent category not found").
				WithDetail("parent_id", strconv.FormatInt(*parentID, 10))
		}
		cat.ParentID = sql.NullInt64{Int64: *parentID, Valid: true}
	}

	if err := s.categories.Save(ctx, cat); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	s.log.Info("category created", "id", cat.ID, "name", cat.Name)
	return cat, nil
}

// CategoryUpdate carries the optional fields of an update. Name and parent
// are independently optional: a nil Name leaves the name untouched, and
// the parent is only changed when SetParent is true (Parent == nil then
// means "make it a root").
type CategoryUpdate struct {
	Name      *string
	Parent    *int64
	SetParent bool
}

// Update renames and/or reparents a category. Self-parenting and
// reparenting under one of the category's own descendants are rejected
// with Conflict. When nothing would change, the stored category is
// returned unchanged.
func (s *Taxonomy) Update(ctx context.Context, id int64, upd CategoryUpdate) (*model.Category, error) {
	cat, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	newName := cat.Name
	if upd.Name != nil {
		newName = strings.TrimSpace(*upd.Name)
		if newName == "" {
			return nil, apperr.Validation("category name is required")
		}
	}

	newParent := cat.ParentID
	if upd.SetParent {
		if upd.Parent == nil {
			newParent = sql.NullInt64{}
		} else {
			if *upd.Parent == id {
				return nil, apperr.Conflict("a category cannot be its own parent").
					WithDetail("id", strconv.FormatInt(id, 10))
			}
			parent, err := s.categories.FindByID(ctx, *upd.Parent)
			if err != nil {
				return nil, err
			}
			if parent == nil {
				return nil, apperr.NotFound("parent category not found").
					WithDetail("parent_id", strconv.FormatInt(*upd.Parent, 10))
			}
			descendants, err := s.ResolveDescendants(ctx, []int64{id})
			if err != nil {
				return nil, err
			}
			for _, did := range descendants {
				if did == *upd.Parent {
					return nil, apperr.Conflict("a category cannot be moved under its own descendant").
						WithDetail("id", strconv.FormatInt(id, 10)).
						WithDetail("parent_id", strconv.FormatInt(*upd.Parent, 10))
				}
			}
			newParent = sql.NullInt64{Int64: *upd.Parent, Valid: true}
		}
	}

	if newName == cat.Name && newParent == cat.ParentID {
		return cat, nil
	}

	cat.Name = newName
	cat.ParentID = newParent
	if err := s.categories.Save(ctx, cat); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	s.log.Info("category updated", "id", cat.ID, "name", cat.Name)
	return cat, nil
}

// Delete removes a category after moving its dependents to the sentinel:
// direct children are reparented, events are reassigned, then the row is
// deleted. All steps run in one transaction so a failure leaves the
// taxonomy untouched.
func (s *Taxonomy) Delete(ctx context.Context, id int64) error {
	err := store.InTx(ctx, s.db, nil, func(tx *sql.Tx) error {
		categories := s.categories.WithTx(tx)
		events := s.events.WithTx(tx)

		cat, err := categories.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if cat == nil {
			return apperr.NotFound("category not found").WithDetail("id", strconv.FormatInt(id, 10))
		}
		if cat.IsSentinel() {
			return apperr.InvalidOperation("the sentinel category cannot be deleted").
				WithDetail("id", strconv.FormatInt(id, 10))
		}

		sentinel, err := categories.FindByName(ctx, model.SentinelCategoryName)
		if err != nil {
			return err
		}
		if sentinel == nil || sentinel.ID == cat.ID {
			s.log.Error("sentinel category missing during delete", "scope", "taxonomy", "id", id)
			return apperr.IntegrityViolation("sentinel category is missing")
		}

		children, err := categories.FindByParentID(ctx, cat.ID)
		if err != nil {
			return err
		}
		for i := range children {
			child := &children[i]
			if child.ID == sentinel.ID {
				s.log.Warn("sentinel listed as child of deleted category, skipping reparent",
					"scope", "taxonomy", "id", cat.ID, "child_id", child.ID)
				continue
			}
			child.ParentID = sql.NullInt64{Int64: sentinel.ID, Valid: true}
			if err := categories.Save(ctx, child); err != nil {
				return fmt.Errorf("failed to reparent child %d: %w", child.ID, err)
			}
		}

		moved, err := events.ReassignCategory(ctx, cat.ID, sentinel.ID)
		if err != nil {
			return fmt.Errorf("failed to reassign events: %w", err)
		}
		if moved > 0 {
			s.log.Info("events reassigned to sentinel", "category_id", cat.ID, "count", moved)
		}

		if err := categories.DeleteByID(ctx, cat.ID); err != nil {
			if apperr.IsKind(err, apperr.KindReferentialConflict) {
				s.log.Error("category still referenced after reassignment",
					"scope", "taxonomy", "id", cat.ID, "error", err)
				return apperr.IntegrityViolation("category still referenced after reassignment").
					WithDetail("id", strconv.FormatInt(cat.ID, 10)).WithCause(err)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx)
	s.log.Info("category deleted", "id", id)
	return nil
}

// ResolveDescendants expands a set of category ids into the full
// descendant closure: every input id plus every category transitively
// below it. Input ids that no longer exist pass through unchanged. The
// empty set resolves to the empty set; "no filter" is the caller's
// concern, not this method's.
func (s *Taxonomy) ResolveDescendants(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return []int64{}, nil
	}

	roots := dedupeIDs(ids)
	key := closureCacheKey(roots)
	if cached, err := s.closures.Get(ctx, key); err == nil {
		return cached, nil
	}

	all, err := s.categories.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	children := make(map[int64][]int64, len(all))
	for _, cat := range all {
		if cat.ParentID.Valid {
			children[cat.ParentID.Int64] = append(children[cat.ParentID.Int64], cat.ID)
		}
	}

	// Frontier expansion. The seen set guarantees termination even if the
	// stored data transiently contains a cycle.
	seen := make(map[int64]struct{}, len(roots))
	frontier := make([]int64, 0, len(roots))
	for _, id := range roots {
		seen[id] = struct{}{}
		frontier = append(frontier, id)
	}
	for len(frontier) > 0 {
		next := frontier[:0:0]
		for _, id := range frontier {
			for _, childID := range children[id] {
				if _, ok := seen[childID]; ok {
					continue
				}
				seen[childID] = struct{}{}
				next = append(next, childID)
			}
		}
		frontier = next
	}

	closure := make([]int64, 0, len(seen))
	for id := range seen {
		closure = append(closure, id)
	}
	sort.Slice(closure, func(i, j int) bool { return closure[i] < closure[j] })

	if err := s.closures.Set(ctx, key, closure, taxonomyCacheTTL); err != nil {
		s.log.Warn("failed to cache descendant closure", "error", err)
	}
	return closure, nil
}

// ResolveSelectors turns caller-supplied category selectors (ids and
// names) into a descendant-expanded id set. Names match case-insensitively
// against current category names; unknown names are dropped. A nil result
// means no category filter was requested at all, while a non-nil empty
// result means the selectors matched nothing.
func (s *Taxonomy) ResolveSelectors(ctx context.Context, ids []int64, names []string) ([]int64, error) {
	folder := cases.Fold()
	seenNames := make(map[string]struct{}, len(names))
	cleaned := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		key := folder.String(name)
		if _, ok := seenNames[key]; ok {
			continue
		}
		seenNames[key] = struct{}{}
		cleaned = append(cleaned, name)
	}

	if len(ids) == 0 && len(cleaned) == 0 {
		return nil, nil
	}

	merged := append([]int64(nil), ids...)
	if len(cleaned) > 0 {
		named, err := s.categories.FindByNames(ctx, cleaned)
		if err != nil {
			return nil, err
		}
		for _, cat := range named {
			merged = append(merged, cat.ID)
		}
	}
	if len(merged) == 0 {
		// Selectors were given but none matched: an explicit match-nothing
		// filter, distinct from "no filter".
		return []int64{}, nil
	}
	return s.ResolveDescendants(ctx, merged)
}

// BuildForest assembles the full category list into a forest of nodes for
// hierarchical presentation. Categories whose parent is absent from the
// listing are promoted to roots. Ordering follows the listing order.
func (s *Taxonomy) BuildForest(ctx context.Context) ([]*model.CategoryNode, error) {
	if cached, err := s.forest.Get(ctx, forestCacheKey); err == nil {
		return cached, nil
	}

	all, err := s.categories.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	forest := BuildForest(all)

	if err := s.forest.Set(ctx, forestCacheKey, forest, taxonomyCacheTTL); err != nil {
		s.log.Warn("failed to cache category forest", "error", err)
	}
	return forest, nil
}

// BuildForest builds a forest from a flat category list: one node per
// category, attached to its parent's children when the parent is present
// in the input, otherwise kept as a root.
func BuildForest(categories []model.Category) []*model.CategoryNode {
	nodes := make(map[int64]*model.CategoryNode, len(categories))
	for _, cat := range categories {
		nodes[cat.ID] = &model.CategoryNode{
			ID:       cat.ID,
			Name:     cat.Name,
			ParentID: cat.Parent(),
			Children: []*model.CategoryNode{},
		}
	}

	roots := make([]*model.CategoryNode, 0, len(categories))
	for _, cat := range categories {
		node := nodes[cat.ID]
		if cat.ParentID.Valid {
			if parent, ok := nodes[cat.ParentID.Int64]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots
}

// invalidate drops all cached taxonomy data after a mutation.
func (s *Taxonomy) invalidate(ctx context.Context) {
	if err := s.cache.Clear(ctx); err != nil {
		s.log.Warn("failed to invalidate taxonomy cache", "error", err)
	}
}

func dedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func closureCacheKey(ids []int64) string {
	sorted := append([]int64(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	parts := make([]string, len(sorted))
	for i, id := range sorted {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return closureCachePrefix + strings.Join(parts, ",")
}
