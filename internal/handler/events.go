// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/eventory/eventory/internal/auth"
	"github.com/eventory/eventory/internal/model"
	"github.com/eventory/eventory/internal/service"
)

// EventsHandler serves the event catalog endpoints.
type EventsHandler struct {
	catalog *service.Catalog
	log     *slog.Logger
}

// NewEventsHandler creates the events handler.
func NewEventsHandler(catalog *service.Catalog, log *slog.Logger) *EventsHandler {
	return &EventsHandler{catalog: catalog, log: log}
}

// callerUserID returns the user id for the booking overlay: only customers
// see booked flags, everyone else gets all items as not-booked.
func callerUserID(r *http.Request) *int64 {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok || claims.Role != model.RoleCustomer {
		return nil
	}
	return &claims.UserID
}

// parseIDList parses a comma-separated list of ids, ignoring blanks.
func parseIDList(raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseNameList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	names := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			names = append(names, part)
		}
	}
	return names
}

// List handles GET /api/events - the catalog query. Category selectors are
// descendant-expanded, so filtering by a parent category also returns
// events of every subcategory.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	categoryIDs, err := parseIDList(query.Get("category_ids"))
	if err != nil {
		WriteBadRequest(w, "category_ids must be a comma-separated list of numbers")
		return
	}

	q := service.CatalogQuery{
		Page:          ParsePageParam(r),
		PerPage:       ParsePerPageParam(r),
		Text:          query.Get("search"),
		CategoryIDs:   categoryIDs,
		CategoryNames: parseNameList(query.Get("category_names")),
		UserID:        callerUserID(r),
	}

	items, total, err := h.catalog.Query(r.Context(), q)
	if err != nil {
		WriteAppError(w, h.log, err)
		return
	}
	WriteSuccess(w, items, NewMeta(total, q.Page, q.PerPage))
}

// Get handles GET /api/events/{id}.
func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseIDParam(r, "id")
	if !ok {
		WriteBadRequest(w, "invalid event id")
		return
	}
	item, err := h.catalog.GetEvent(r.Context(), id, callerUserID(r))
	if err != nil {
		WriteAppError(w, h.log, err)
		return
	}
	WriteSuccess(w, item, nil)
}

type createEventRequest struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	StartsAt    time.Time `json:"starts_at"`
	VenueID     int64     `json:"venue_id"`
	CategoryID  *int64    `json:"category_id"`
	Price       int64     `json:"price"`
	Currency    string    `json:"currency"`
	PhotoURL    *string   `json:"photo_url"`
}

// Create handles POST /api/events. Requires the organizer or admin role.
func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "invalid JSON body")
		return
	}

	ev, err := h.catalog.CreateEvent(r.Context(), service.EventInput{
		Name:        req.Name,
		Description: req.Description,
		StartsAt:    req.StartsAt,
		VenueID:     req.VenueID,
		CategoryID:  req.CategoryID,
		Price:       model.Price{Amount: req.Price, Currency: req.Currency},
		PhotoURL:    req.PhotoURL,
	})
	if err != nil {
		WriteAppError(w, h.log, err)
		return
	}
	WriteCreated(w, ev)
}
