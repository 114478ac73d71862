// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler provides the REST API handlers and their shared JSON
// response helpers.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/eventory/eventory/internal/apperr"
)

// Response is the standard API response wrapper.
type Response struct {
	Data any   `json:"data,omitempty"`
	Meta *Meta `json:"meta,omitempty"`
}

// Meta contains pagination metadata.
type Meta struct {
	Total   int64 `json:"total"`
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Pages   int   `json:"pages"`
}

// NewMeta builds pagination metadata from a total count and page settings.
func NewMeta(total int64, page, perPage int) *Meta {
	return &Meta{
		Total:   total,
		Page:    page,
		PerPage: perPage,
		Pages:   CalculateTotalPages(total, perPage),
	}
}

// ErrorResponse is the standard API error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a successful JSON response.
func WriteSuccess(w http.ResponseWriter, data any, meta *Meta) {
	WriteJSON(w, http.StatusOK, Response{Data: data, Meta: meta})
}

// WriteCreated writes a 201 Created JSON response.
func WriteCreated(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, Response{Data: data})
}

// WriteError writes an error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, code, message string) {
	WriteErrorDetails(w, statusCode, code, message, nil)
}

// WriteErrorDetails writes an error JSON response with per-field details.
func WriteErrorDetails(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	WriteJSON(w, statusCode, ErrorResponse{
		Error: ErrorDetail{Code: code, Message: message, Details: details},
	})
}

// WriteBadRequest writes a 400 Bad Request response.
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, "bad_request", message)
}

// WriteNotFound writes a 404 Not Found response.
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, "not_found", message)
}

// WriteAppError maps a service error onto an HTTP response. Integrity
// violations and unclassified errors are logged and reported as opaque
// internal errors; the caller-recoverable kinds carry their message and
// details through.
func WriteAppError(w http.ResponseWriter, log *slog.Logger, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		log.Error("unhandled error", "error", err)
		WriteError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	switch appErr.Kind {
	case apperr.KindNotFound:
		WriteErrorDetails(w, http.StatusNotFound, "not_found", appErr.Message, appErr.Details)
	case apperr.KindValidation:
		WriteErrorDetails(w, http.StatusBadRequest, "validation_failed", appErr.Message, appErr.Details)
	case apperr.KindInvalidOperation:
		WriteErrorDetails(w, http.StatusUnprocessableEntity, "invalid_operation", appErr.Message, appErr.Details)
	case apperr.KindConflict:
		WriteErrorDetails(w, http.StatusConflict, "conflict", appErr.Message, appErr.Details)
	case apperr.KindReferentialConflict:
		WriteErrorDetails(w, http.StatusConflict, "referential_conflict", appErr.Message, appErr.Details)
	case apperr.KindUnauthorized:
		WriteError(w, http.StatusUnauthorized, "unauthorized", appErr.Message)
	case apperr.KindForbidden:
		WriteError(w, http.StatusForbidden, "forbidden", appErr.Message)
	case apperr.KindIntegrityViolation:
		log.Error("integrity violation", "error", err)
		WriteError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	default:
		log.Error("unhandled error", "error", err)
		WriteError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
