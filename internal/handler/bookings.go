// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/eventory/eventory/internal/auth"
	"github.com/eventory/eventory/internal/service"
)

// BookingsHandler serves the booking endpoints. All routes require an
// authenticated customer.
type BookingsHandler struct {
	bookings *service.Bookings
	log      *slog.Logger
}

// NewBookingsHandler creates the bookings handler.
func NewBookingsHandler(bookings *service.Bookings, log *slog.Logger) *BookingsHandler {
	return &BookingsHandler{bookings: bookings, log: log}
}

type createBookingRequest struct {
	EventID int64 `json:"event_id"`
}

// Create handles POST /api/bookings.
func (h *BookingsHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.EventID < 1 {
		WriteBadRequest(w, "event_id is required")
		return
	}

	booking, err := h.bookings.Book(r.Context(), claims.UserID, req.EventID)
	if err != nil {
		WriteAppError(w, h.log, err)
		return
	}
	WriteCreated(w, booking)
}

// List handles GET /api/bookings - the caller's own bookings.
func (h *BookingsHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	bookings, err := h.bookings.ListForUser(r.Context(), claims.UserID)
	if err != nil {
		WriteAppError(w, h.log, err)
		return
	}
	WriteSuccess(w, bookings, nil)
}
