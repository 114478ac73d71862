// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

const (
	// DefaultPerPage is the page size used when the client does not ask
	// for one.
	DefaultPerPage = 20

	// MaxPerPage caps the client-requested page size.
	MaxPerPage = 100
)

// ParsePageParam reads the "page" query parameter, defaulting to 1.
// Values below 1 are clamped to 1.
func ParsePageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// ParsePerPageParam reads the "per_page" query parameter, defaulting to
// DefaultPerPage and clamping to [1, MaxPerPage].
func ParsePerPageParam(r *http.Request) int {
	perPage, err := strconv.Atoi(r.URL.Query().Get("per_page"))
	if err != nil || perPage < 1 {
		return DefaultPerPage
	}
	if perPage > MaxPerPage {
		return MaxPerPage
	}
	return perPage
}

// ParseIDParam reads a chi URL parameter as an int64 id. Returns false
// when the parameter is missing or not a positive integer.
func ParseIDParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

// CalculateTotalPages returns ceil(total / perPage), with a minimum of 0
// pages for an empty result set.
func CalculateTotalPages(total int64, perPage int) int {
	if total <= 0 || perPage <= 0 {
		return 0
	}
	pages := total / int64(perPage)
	if total%int64(perPage) != 0 {
		pages++
	}
	return int(pages)
}
