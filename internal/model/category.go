// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain models and types used throughout the
// application including Category, Event, Venue, User and Booking.
package model

import (
	"database/sql"
	"encoding/json"
	"time"
)

// SentinelCategoryName is the name of the one category guaranteed to always
// exist. It has no parent and is the fallback target for orphaned children
// and events when a category is deleted.
const SentinelCategoryName = "General"

// Category is a node in the hierarchical event taxonomy. ParentID is null
// for top-level categories.
type Category struct {
	ID        int64         `json:"id"`
	Name      string        `json:"name"`
	ParentID  sql.NullInt64 `json:"-"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// IsPersisted reports whether the category has been saved to the store.
func (c *Category) IsPersisted() bool {
	return c.ID != 0
}

// IsSentinel reports whether the category is the sentinel.
func (c *Category) IsSentinel() bool {
	return c.Name == SentinelCategoryName
}

// Parent returns the parent id, or nil for a root category.
func (c *Category) Parent() *int64 {
	if !c.ParentID.Valid {
		return nil
	}
	id := c.ParentID.Int64
	return &id
}

// MarshalJSON renders ParentID as a nullable number.
func (c Category) MarshalJSON() ([]byte, error) {
	type alias Category
	return json.Marshal(struct {
		alias
		ParentID *int64 `json:"parent_id"`
	}{alias(c), c.Parent()})
}

// CategoryNode is a presentation-only tree node built transiently from the
// flat category list. It is never persisted.
type CategoryNode struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	ParentID *int64          `json:"parent_id,omitempty"`
	Children []*CategoryNode `json:"children,omitempty"`
}
