// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/eventory/eventory/internal/model"
	"github.com/eventory/eventory/internal/store"
)

// VenuesHandler serves the venue CRUD endpoints.
type VenuesHandler struct {
	venues *store.VenueStore
	log    *slog.Logger
}

// NewVenuesHandler creates the venues handler.
func NewVenuesHandler(venues *store.VenueStore, log *slog.Logger) *VenuesHandler {
	return &VenuesHandler{venues: venues, log: log}
}

// List handles GET /api/venues.
func (h *VenuesHandler) List(w http.ResponseWriter, r *http.Request) {
	page := ParsePageParam(r)
	perPage := ParsePerPageParam(r)

	total, err := h.venues.Count(r.Context())
	if err != nil {
		WriteAppError(w, h.log, err)
		return
	}
	items, err := h.venues.List(r.Context(), perPage, (page-1)*perPage)
	if err != nil {
		WriteAppError(w, h.log, err)
		return
	}
	WriteSuccess(w, items, NewMeta(total, page, perPage))
}

// Get handles GET /api/venues/{id}.
func (h *VenuesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseIDParam(r, "id")
	if !ok {
		WriteBadRequest(w, "invalid venue id")
		return
	}
	venue, err := h.venues.FindByID(r.Context(), id)
	if err != nil {
		WriteAppError(w, h.log, err)
		return
	}
	if venue == nil {
		WriteNotFound(w, "venue not found")
		return
	}
	WriteSuccess(w, venue, nil)
}

type venueRequest struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	Capacity int    `json:"capacity"`
}

func (req *venueRequest) validate() map[string]string {
	details := make(map[string]string)
	if strings.TrimSpace(req.Name) == "" {
		details["name"] = "name is required"
	}
	if req.Capacity < 0 {
		details["capacity"] = "capacity must not be negative"
	}
	if len(details) == 0 {
		return nil
	}
	return details
}

// Create handles POST /api/venues. Requires the admin role.
func (h *VenuesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req venueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "invalid JSON body")
		return
	}
	if details := req.validate(); details != nil {
		WriteErrorDetails(w, http.StatusBadRequest, "validation_failed", "invalid venue", details)
		return
	}

	venue := &model.Venue{
		Name:     strings.TrimSpace(req.Name),
		Address:  strings.TrimSpace(req.Address),
		Capacity: int64(req.Capacity),
	}
	if err := h.venues.Save(r.Context(), venue); err != nil {
		WriteAppError(w, h.log, err)
		return
	}
	WriteCreated(w, venue)
}

// Update handles PUT /api/venues/{id}. Requires the admin role.
func (h *VenuesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseIDParam(r, "id")
	if !ok {
		WriteBadRequest(w, "invalid venue id")
		return
	}

	var req venueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "invalid JSON body")
		return
	}
	if details := req.validate(); details != nil {
		WriteErrorDetails(w, http.StatusBadRequest, "validation_failed", "invalid venue", details)
		return
	}

	venue, err := h.venues.FindByID(r.Context(), id)
	if err != nil {
		WriteAppError(w, h.log, err)
		return
	}
	if venue == nil {
		WriteNotFound(w, "venue not found")
		return
	}

	venue.Name = strings.TrimSpace(req.Name)
	venue.Address = strings.TrimSpace(req.Address)
	venue.Capacity = int64(req.Capacity)
	if err := h.venues.Save(r.Context(), venue); err != nil {
		WriteAppError(w, h.log, err)
		return
	}
	WriteSuccess(w, venue, nil)
}

// Delete handles DELETE /api/venues/{id}. Venues still referenced by
// events cannot be deleted. Requires the admin role.
func (h *VenuesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseIDParam(r, "id")
	if !ok {
		WriteBadRequest(w, "invalid venue id")
		return
	}
	if err := h.venues.DeleteByID(r.Context(), id); err != nil {
		WriteAppError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
