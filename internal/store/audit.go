// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"
	"time"
)

// AuditEntry is a persisted operational log record. WARN and ERROR level
// slog output is mirrored here for operator investigation.
type AuditEntry struct {
	ID        int64
	Level     string
	Scope     string
	Message   string
	Metadata  string // JSON string
	CreatedAt time.Time
}

// AuditStore manages the audit_log table.
type AuditStore struct {
	db DBTX
}

// NewAuditStore returns a new AuditStore.
func NewAuditStore(db DBTX) *AuditStore {
	return &AuditStore{db: db}
}

// Insert appends an audit entry.
func (s *AuditStore) Insert(ctx context.Context, e *AuditEntry) error {
	if e.Metadata == "" {
		e.Metadata = "{}"
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_log (level, scope, message, metadata, created_at) VALUES (?, ?, ?, ?, ?)`,
		e.Level, e.Scope, e.Message, e.Metadata, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	e.ID, _ = res.LastInsertId()
	return nil
}

// Recent returns the newest audit entries, most recent first.
func (s *AuditStore) Recent(ctx context.Context, limit int) ([]AuditEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, level, scope, message, metadata, created_at
		FROM audit_log ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var items []AuditEntry
	for rows.Next() {
		var e AuditEntry
		if err := rows.Scan(&e.ID, &e.Level, &e.Scope, &e.Message, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

// PruneBefore deletes audit entries older than cutoff, returning the number
// of rows removed.
func (s *AuditStore) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM audit_log WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune audit log: %w", err)
	}
	return res.RowsAffected()
}
