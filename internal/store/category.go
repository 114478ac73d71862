// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/eventory/eventory/internal/apperr"
	"github.com/eventory/eventory/internal/model"
)

// CategoryStore manages taxonomy categories in the database.
type CategoryStore struct {
	db DBTX
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db DBTX) *CategoryStore {
	return &CategoryStore{db: db}
}

// WithTx returns a copy of the store that runs all queries on tx.
func (s *CategoryStore) WithTx(tx *sql.Tx) *CategoryStore {
	return &CategoryStore{db: tx}
}

const categoryColumns = `id, name, parent_id, created_at, updated_at`

// scanCategory scans a row into a Category struct.
func scanCategory(scanner interface{ Scan(...any) error }) (*model.Category, error) {
	var c model.Category
	err := scanner.Scan(&c.ID, &c.Name, &c.ParentID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// collectCategories drains rows into a slice.
func collectCategories(rows *sql.Rows) ([]model.Category, error) {
	defer rows.Close()

	var items []model.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// placeholders returns "?, ?, ..., ?" with n slots.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// FindByID retrieves a category by ID. Returns nil if not found.
func (s *CategoryStore) FindByID(ctx context.Context, id int64) (*model.Category, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// FindByName retrieves a category by exact name, case-insensitively.
// Returns nil if not found.
func (s *CategoryStore) FindByName(ctx context.Context, name string) (*model.Category, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE name = ? COLLATE NOCASE`, name)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by name: %w", err)
	}
	return c, nil
}

// FindByParentID returns the direct children of the given category.
func (s *CategoryStore) FindByParentID(ctx context.Context, parentID int64) ([]model.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE parent_id = ? ORDER BY id`, parentID)
	if err != nil {
		return nil, fmt.Errorf("find categories by parent: %w", err)
	}
	return collectCategories(rows)
}

// FindByIDs returns the categories whose ids are in the given set. Missing
// ids are simply absent from the result.
func (s *CategoryStore) FindByIDs(ctx context.Context, ids []int64) ([]model.Category, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id IN (`+placeholders(len(ids))+`) ORDER BY id`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("find categories by ids: %w", err)
	}
	return collectCategories(rows)
}

// FindByNames returns the categories whose names case-insensitively match
// any of the given names. Unknown names are simply absent from the result.
func (s *CategoryStore) FindByNames(ctx context.Context, names []string) ([]model.Category, error) {
	if len(names) == 0 {
		return nil, nil
	}
	args := make([]any, len(names))
	for i, n := range names {
		args[i] = n
	}
	// The name column carries COLLATE NOCASE, so IN compares case-insensitively.
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE name IN (`+placeholders(len(names))+`) ORDER BY id`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("find categories by names: %w", err)
	}
	return collectCategories(rows)
}

// ListAll returns every category ordered by id.
func (s *CategoryStore) ListAll(ctx context.Context) ([]model.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return collectCategories(rows)
}

// List returns one page of categories ordered by id.
func (s *CategoryStore) List(ctx context.Context, limit, offset int) ([]model.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM categories ORDER BY id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list categories page: %w", err)
	}
	return collectCategories(rows)
}

// Count returns the total number of categories.
func (s *CategoryStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count categories: %w", err)
	}
	return n, nil
}

// Save inserts the category when its ID is unset and updates it otherwise.
// The ID and timestamps are written back into c.
func (s *CategoryStore) Save(ctx context.Context, c *model.Category) error {
	now := time.Now().UTC()
	if !c.IsPersisted() {
		res, err := s.db.ExecContext(ctx,
			`INSERT INTO categories (name, parent_id, created_at, updated_at) VALUES (?, ?, ?, ?)`,
			c.Name, c.ParentID, now, now)
		if err != nil {
			if IsUniqueViolation(err) {
				return apperr.Conflict("category name %q already exists", c.Name).WithCause(err)
			}
			return fmt.Errorf("insert category: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("insert category id: %w", err)
		}
		c.ID = id
		c.CreatedAt = now
		c.UpdatedAt = now
		return nil
	}

	_, err := s.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, parent_id = ?, updated_at = ? WHERE id = ?`,
		c.Name, c.ParentID, now, c.ID)
	if err != nil {
		if IsUniqueViolation(err) {
			return apperr.Conflict("category name %q already exists", c.Name).WithCause(err)
		}
		return fmt.Errorf("update category: %w", err)
	}
	c.UpdatedAt = now
	return nil
}

// DeleteByID removes a category. The foreign key constraints on child
// categories and events make SQLite refuse the delete while dependents still
// reference the row; that refusal surfaces as a ReferentialConflict.
func (s *CategoryStore) DeleteByID(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return apperr.ReferentialConflict("category %d is still referenced by children or events", id).WithCause(err)
		}
		return fmt.Errorf("delete category: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete category affected: %w", err)
	}
	if affected == 0 {
		return apperr.NotFound("category %d not found", id)
	}
	return nil
}
