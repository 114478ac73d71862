// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs periodic maintenance jobs.
package scheduler

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/eventory/eventory/internal/store"
)

// Scheduler handles periodic maintenance: pruning old audit log entries.
type Scheduler struct {
	db        *sql.DB
	cron      *cron.Cron
	logger    *slog.Logger
	retention time.Duration
}

// New creates a scheduler. Audit entries older than retention are pruned.
func New(db *sql.DB, logger *slog.Logger, retention time.Duration) *Scheduler {
	return &Scheduler{
		db:        db,
		cron:      cron.New(),
		logger:    logger,
		retention: retention,
	}
}

// Start registers the jobs and begins the cron loop.
func (s *Scheduler) Start() error {
	// Prune once an hour
	_, err := s.cron.AddFunc("0 * * * *", func() {
		if err := s.pruneAuditLog(); err != nil {
			s.logger.Error("failed to prune audit log", "error", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) pruneAuditLog() error {
	ctx := context.Background()
	audits := store.NewAuditStore(s.db)

	cutoff := time.Now().Add(-s.retention)
	pruned, err := audits.PruneBefore(ctx, cutoff)
	if err != nil {
		return err
	}
	if pruned > 0 {
		s.logger.Info("pruned audit log", "count", pruned, "cutoff", cutoff)
	}
	return nil
}
