// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/eventory/eventory/internal/apperr"
	"github.com/eventory/eventory/internal/model"
)

// VenueStore manages venues in the database.
type VenueStore struct {
	db DBTX
}

// NewVenueStore returns a new VenueStore.
func NewVenueStore(db DBTX) *VenueStore {
	return &VenueStore{db: db}
}

const venueColumns = `id, name, address, capacity, created_at, updated_at`

func scanVenue(scanner interface{ Scan(...any) error }) (*model.Venue, error) {
	var v model.Venue
	err := scanner.Scan(&v.ID, &v.Name, &v.Address, &v.Capacity, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// FindByID retrieves a venue by ID. Returns nil if not found.
func (s *VenueStore) FindByID(ctx context.Context, id int64) (*model.Venue, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+venueColumns+` FROM venues WHERE id = ?`, id)
	v, err := scanVenue(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find venue by id: %w", err)
	}
	return v, nil
}

// List returns one page of venues ordered by id.
func (s *VenueStore) List(ctx context.Context, limit, offset int) ([]model.Venue, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+venueColumns+` FROM venues ORDER BY id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list venues: %w", err)
	}
	defer rows.Close()

	var items []model.Venue
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, fmt.Errorf("scan venue: %w", err)
		}
		items = append(items, *v)
	}
	return items, rows.Err()
}

// Count returns the total number of venues.
func (s *VenueStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM venues`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count venues: %w", err)
	}
	return n, nil
}

// Save inserts the venue when its ID is unset and updates it otherwise.
func (s *VenueStore) Save(ctx context.Context, v *model.Venue) error {
	now := time.Now().UTC()
	if v.ID == 0 {
		res, err := s.db.ExecContext(ctx,
			`INSERT INTO venues (name, address, capacity, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
			v.Name, v.Address, v.Capacity, now, now)
		if err != nil {
			return fmt.Errorf("insert venue: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("insert venue id: %w", err)
		}
		v.ID = id
		v.CreatedAt = now
		v.UpdatedAt = now
		return nil
	}

	_, err := s.db.ExecContext(ctx,
		`UPDATE venues SET name = ?, address = ?, capacity = ?, updated_at = ? WHERE id = ?`,
		v.Name, v.Address, v.Capacity, now, v.ID)
	if err != nil {
		return fmt.Errorf("update venue: %w", err)
	}
	v.UpdatedAt = now
	return nil
}

// DeleteByID removes a venue. Fails with a ReferentialConflict while events
// still reference it.
func (s *VenueStore) DeleteByID(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM venues WHERE id = ?`, id)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return apperr.ReferentialConflict("venue %d is still referenced by events", id).WithCause(err)
		}
		return fmt.Errorf("delete venue: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete venue affected: %w", err)
	}
	if affected == 0 {
		return apperr.NotFound("venue %d not found", id)
	}
	return nil
}
