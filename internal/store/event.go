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

// EventStore manages catalog events in the database.
type EventStore struct {
	db DBTX
}

// NewEventStore returns a new EventStore.
func NewEventStore(db DBTX) *EventStore {
	return &EventStore{db: db}
}

// WithTx returns a copy of the store that runs all queries on tx.
func (s *EventStore) WithTx(tx *sql.Tx) *EventStore {
	return &EventStore{db: tx}
}

const eventColumns = `id, name, description, starts_at, venue_id, category_id,
	price_amount, price_currency, photo_url, created_at, updated_at`

// scanEvent scans a row into an Event struct.
func scanEvent(scanner interface{ Scan(...any) error }) (*model.Event, error) {
	var e model.Event
	err := scanner.Scan(
		&e.ID, &e.Name, &e.Description, &e.StartsAt, &e.VenueID, &e.CategoryID,
		&e.Price.Amount, &e.Price.Currency, &e.PhotoURL, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// EventFilter narrows the catalog query. TextSearch matches name or
// description case-insensitively as a substring. CategoryIDs, when non-nil,
// must already be descendant-expanded by the caller; it is applied as a
// plain membership filter.
type EventFilter struct {
	TextSearch  string
	CategoryIDs []int64
}

// whereClause renders the filter into SQL and its arguments.
func (f EventFilter) whereClause() (string, []any) {
	where := ` WHERE 1=1`
	var args []any

	if f.TextSearch != "" {
		where += ` AND (name LIKE '%' || ? || '%' OR description LIKE '%' || ? || '%')`
		args = append(args, f.TextSearch, f.TextSearch)
	}
	if f.CategoryIDs != nil {
		if len(f.CategoryIDs) == 0 {
			// An expanded-but-empty selector matches nothing.
			where += ` AND 0`
		} else {
			where += ` AND category_id IN (` + placeholders(len(f.CategoryIDs)) + `)`
			for _, id := range f.CategoryIDs {
				args = append(args, id)
			}
		}
	}
	return where, args
}

// CountMatching returns the total number of events matching the filter.
func (s *EventStore) CountMatching(ctx context.Context, filter EventFilter) (int64, error) {
	where, args := filter.whereClause()
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}

// ListPage returns one page of events matching the filter, ordered by event
// date descending with id as a stable tiebreak.
func (s *EventStore) ListPage(ctx context.Context, filter EventFilter, limit, offset int) ([]model.Event, error) {
	where, args := filter.whereClause()
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events`+where+` ORDER BY starts_at DESC, id DESC LIMIT ? OFFSET ?`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var items []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		items = append(items, *e)
	}
	return items, rows.Err()
}

// FindByID retrieves an event by ID. Returns nil if not found.
func (s *EventStore) FindByID(ctx context.Context, id int64) (*model.Event, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
	e, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find event by id: %w", err)
	}
	return e, nil
}

// Create inserts a new event. The ID and timestamps are written back into e.
func (s *EventStore) Create(ctx context.Context, e *model.Event) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO events (name, description, starts_at, venue_id, category_id,
			price_amount, price_currency, photo_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Name, e.Description, e.StartsAt, e.VenueID, e.CategoryID,
		e.Price.Amount, e.Price.Currency, e.PhotoURL, now, now)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return apperr.Conflict("event references a missing venue or category").WithCause(err)
		}
		return fmt.Errorf("insert event: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert event id: %w", err)
	}
	e.ID = id
	e.CreatedAt = now
	e.UpdatedAt = now
	return nil
}

// CountByCategory returns the number of events directly assigned to the category.
func (s *EventStore) CountByCategory(ctx context.Context, categoryID int64) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events WHERE category_id = ?`, categoryID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count events by category: %w", err)
	}
	return n, nil
}

// ReassignCategory moves every event pointing at fromID to point at toID,
// returning the number of events moved.
func (s *EventStore) ReassignCategory(ctx context.Context, fromID, toID int64) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE events SET category_id = ?, updated_at = ? WHERE category_id = ?`,
		toID, time.Now().UTC(), fromID)
	if err != nil {
		return 0, fmt.Errorf("reassign events: %w", err)
	}
	moved, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reassign events affected: %w", err)
	}
	return moved, nil
}
