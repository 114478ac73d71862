// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/eventory/eventory/internal/model"
)

// BookingStore manages (user, event) bookings in the database.
type BookingStore struct {
	db DBTX
}

// NewBookingStore returns a new BookingStore.
func NewBookingStore(db DBTX) *BookingStore {
	return &BookingStore{db: db}
}

// WithTx returns a copy of the store that runs all queries on tx.
func (s *BookingStore) WithTx(tx *sql.Tx) *BookingStore {
	return &BookingStore{db: tx}
}

const bookingColumns = `id, user_id, event_id, reference, created_at`

func scanBooking(scanner interface{ Scan(...any) error }) (*model.Booking, error) {
	var b model.Booking
	err := scanner.Scan(&b.ID, &b.UserID, &b.EventID, &b.Reference, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Create inserts a booking. A duplicate (user, event) pair is not an error:
// the existing booking is returned instead, with a warning logged.
func (s *BookingStore) Create(ctx context.Context, userID, eventID int64, reference string) (*model.Booking, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO bookings (user_id, event_id, reference, created_at) VALUES (?, ?, ?, ?)`,
		userID, eventID, reference, now)
	if err != nil {
		if IsUniqueViolation(err) {
			slog.Warn("duplicate booking ignored", "user_id", userID, "event_id", eventID)
			return s.Find(ctx, userID, eventID)
		}
		return nil, fmt.Errorf("insert booking: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert booking id: %w", err)
	}
	return &model.Booking{ID: id, UserID: userID, EventID: eventID, Reference: reference, CreatedAt: now}, nil
}

// Find retrieves the booking for a (user, event) pair. Returns nil if absent.
func (s *BookingStore) Find(ctx context.Context, userID, eventID int64) (*model.Booking, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE user_id = ? AND event_id = ?`, userID, eventID)
	b, err := scanBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find booking: %w", err)
	}
	return b, nil
}

// BookedEventIDs returns the subset of candidate event ids the user has
// booked. An empty candidate set short-circuits without touching the store.
func (s *BookingStore) BookedEventIDs(ctx context.Context, userID int64, eventIDs []int64) (map[int64]struct{}, error) {
	booked := make(map[int64]struct{})
	if len(eventIDs) == 0 {
		return booked, nil
	}

	args := make([]any, 0, len(eventIDs)+1)
	args = append(args, userID)
	for _, id := range eventIDs {
		args = append(args, id)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT event_id FROM bookings WHERE user_id = ? AND event_id IN (`+placeholders(len(eventIDs))+`)`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("booked event ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan booked event id: %w", err)
		}
		booked[id] = struct{}{}
	}
	return booked, rows.Err()
}

// ListByUser returns the user's bookings, newest first.
func (s *BookingStore) ListByUser(ctx context.Context, userID int64) ([]model.Booking, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var items []model.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		items = append(items, *b)
	}
	return items, rows.Err()
}
