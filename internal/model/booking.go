// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Booking records that a user booked an event. At most one booking per
// (user, event) pair; duplicate inserts are tolerated as non-fatal at the
// store boundary.
type Booking struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	EventID   int64     `json:"event_id"`
	Reference string    `json:"reference"`
	CreatedAt time.Time `json:"created_at"`
}
