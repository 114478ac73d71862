// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"strconv"

	"github.com/google/uuid"

	"github.com/eventory/eventory/internal/apperr"
	"github.com/eventory/eventory/internal/model"
	"github.com/eventory/eventory/internal/store"
)

// Bookings manages event bookings for customers.
type Bookings struct {
	bookings *store.BookingStore
	events   *store.EventStore
}

// NewBookings creates the booking service.
func NewBookings(db *sql.DB) *Bookings {
	return &Bookings{
		bookings: store.NewBookingStore(db),
		events:   store.NewEventStore(db),
	}
}

// Book records a booking of the event by the user. Booking an event twice
// returns the existing booking instead of failing.
func (s *Bookings) Book(ctx context.Context, userID, eventID int64) (*model.Booking, error) {
	ev, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if ev == nil {
		return nil, apperr.NotFound("event not found").WithDetail("event_id", strconv.FormatInt(eventID, 10))
	}

	return s.bookings.Create(ctx, userID, eventID, uuid.NewString())
}

// ListForUser returns all bookings of one user.
func (s *Bookings) ListForUser(ctx context.Context, userID int64) ([]model.Booking, error) {
	return s.bookings.ListByUser(ctx, userID)
}
