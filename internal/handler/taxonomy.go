// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/eventory/eventory/internal/service"
)

// TaxonomyHandler serves the category endpoints.
type TaxonomyHandler struct {
	taxonomy *service.Taxonomy
	log      *slog.Logger
}

// NewTaxonomyHandler creates the category handler.
func NewTaxonomyHandler(taxonomy *service.Taxonomy, log *slog.Logger) *TaxonomyHandler {
	return &TaxonomyHandler{taxonomy: taxonomy, log: log}
}

// List handles GET /api/categories - flat paginated category list.
func (h *TaxonomyHandler) List(w http.ResponseWriter, r *http.Request) {
	page := ParsePageParam(r)
	perPage := ParsePerPageParam(r)

	items, total, err := h.taxonomy.List(r.Context(), page, perPage)
	if err != nil {
		WriteAppError(w, h.log, err)
		return
	}
	WriteSuccess(w, items, NewMeta(total, page, perPage))
}

// Tree handles GET /api/categories/tree - the full category forest.
func (h *TaxonomyHandler) Tree(w http.ResponseWriter, r *http.Request) {
	forest, err := h.taxonomy.BuildForest(r.Context())
	if err != nil {
		WriteAppError(w, h.log, err)
		return
	}
	WriteSuccess(w, forest, nil)
}

// Get handles GET /api/categories/{id}.
func (h *TaxonomyHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseIDParam(r, "id")
	if !ok {
		WriteBadRequest(w, "invalid category id")
		return
	}
	cat, err := h.taxonomy.Get(r.Context(), id)
	if err != nil {
		WriteAppError(w, h.log, err)
		return
	}
	WriteSuccess(w, cat, nil)
}

type createCategoryRequest struct {
	Name     string `json:"name"`
	ParentID *int64 `json:"parent_id"`
}

// Create handles POST /api/categories.
func (h *TaxonomyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "invalid JSON body")
		return
	}
	cat, err := h.taxonomy.Create(r.Context(), req.Name, req.ParentID)
	if err != nil {
		WriteAppError(w, h.log, err)
		return
	}
	WriteCreated(w, cat)
}

// updateCategoryRequest distinguishes an absent parent_id (leave
// unchanged) from an explicit null (make the category a root).
type updateCategoryRequest struct {
	Name     *string         `json:"name"`
	ParentID json.RawMessage `json:"parent_id"`
}

// Update handles PATCH /api/categories/{id}.
func (h *TaxonomyHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseIDParam(r, "id")
	if !ok {
		WriteBadRequest(w, "invalid category id")
		return
	}

	var req updateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "invalid JSON body")
		return
	}

	upd := service.CategoryUpdate{Name: req.Name}
	if len(req.ParentID) > 0 {
		upd.SetParent = true
		if string(req.ParentID) != "null" {
			var parentID int64
			if err := json.Unmarshal(req.ParentID, &parentID); err != nil {
				WriteBadRequest(w, "parent_id must be a number or null")
				return
			}
			upd.Parent = &parentID
		}
	}

	cat, err := h.taxonomy.Update(r.Context(), id, upd)
	if err != nil {
		WriteAppError(w, h.log, err)
		return
	}
	WriteSuccess(w, cat, nil)
}

// Delete handles DELETE /api/categories/{id}. Children and events of the
// deleted category are moved to the sentinel category first.
func (h *TaxonomyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseIDParam(r, "id")
	if !ok {
		WriteBadRequest(w, "invalid category id")
		return
	}
	if err := h.taxonomy.Delete(r.Context(), id); err != nil {
		WriteAppError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
