// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging provides a slog handler that mirrors WARN and ERROR
// records into the audit_log table so operational incidents survive
// process restarts.
package logging

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/eventory/eventory/internal/store"
)

// Audit log levels.
const (
	LevelWarning = "warning"
	LevelError   = "error"
)

// Audit log scopes. A record's scope is taken from its "scope" attribute
// when present, otherwise inferred from the message.
const (
	ScopeAuth     = "auth"
	ScopeTaxonomy = "taxonomy"
	ScopeCatalog  = "catalog"
	ScopeBooking  = "booking"
	ScopeCache    = "cache"
	ScopeSystem   = "system"
)

// AuditHandler is a slog.Handler that forwards every record to an inner
// handler and additionally persists records at or above a threshold level
// to the audit log.
type AuditHandler struct {
	inner  slog.Handler
	audits *store.AuditStore
	level  slog.Level
}

// NewAuditHandler wraps inner; records at WARN and above are written to
// the audit log.
func NewAuditHandler(inner slog.Handler, audits *store.AuditStore) *AuditHandler {
	return &AuditHandler{
		inner:  inner,
		audits: audits,
		level:  slog.LevelWarn,
	}
}

// Enabled implements slog.Handler.
func (h *AuditHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *AuditHandler) Handle(ctx context.Context, r slog.Record) error {
	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}
	if r.Level >= h.level {
		h.persist(r)
	}
	return nil
}

// WithAttrs implements slog.Handler.
func (h *AuditHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &AuditHandler{
		inner:  h.inner.WithAttrs(attrs),
		audits: h.audits,
		level:  h.level,
	}
}

// WithGroup implements slog.Handler.
func (h *AuditHandler) WithGroup(name string) slog.Handler {
	return &AuditHandler{
		inner:  h.inner.WithGroup(name),
		audits: h.audits,
		level:  h.level,
	}
}

// persist writes the record to the audit log. A background context is used
// so the entry is stored even when the request context is already cancelled.
// Persistence failures are swallowed: audit logging must never break the
// logging path itself.
func (h *AuditHandler) persist(r slog.Record) {
	entry := &store.AuditEntry{
		Level:     auditLevel(r.Level),
		Scope:     extractScope(r),
		Message:   r.Message,
		Metadata:  extractMetadata(r),
		CreatedAt: r.Time,
	}
	_ = h.audits.Insert(context.Background(), entry)
}

func auditLevel(level slog.Level) string {
	if level >= slog.LevelError {
		return LevelError
	}
	return LevelWarning
}

func extractScope(r slog.Record) string {
	var scope string
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "scope" {
			scope = a.Value.String()
			return false
		}
		return true
	})
	if scope != "" {
		return scope
	}

	msg := strings.ToLower(r.Message)
	switch {
	case strings.Contains(msg, "auth") || strings.Contains(msg, "login") || strings.Contains(msg, "token"):
		return ScopeAuth
	case strings.Contains(msg, "category") || strings.Contains(msg, "taxonomy"):
		return ScopeTaxonomy
	case strings.Contains(msg, "event") || strings.Contains(msg, "catalog"):
		return ScopeCatalog
	case strings.Contains(msg, "booking"):
		return ScopeBooking
	case strings.Contains(msg, "cache"):
		return ScopeCache
	default:
		return ScopeSystem
	}
}

// extractMetadata collects record attributes into a JSON object string.
func extractMetadata(r slog.Record) string {
	if r.NumAttrs() == 0 {
		return "{}"
	}
	attrs := make(map[string]string, r.NumAttrs())
	r.Attrs(func(a slog.Attr) bool {
		if a.Key != "scope" {
			attrs[a.Key] = a.Value.String()
		}
		return true
	})
	data, err := json.Marshal(attrs)
	if err != nil {
		return "{}"
	}
	return string(data)
}
