// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/eventory/eventory/internal/auth"
	"github.com/eventory/eventory/internal/model"
)

// Default admin credentials
const (
	DefaultAdminEmail    = "admin@example.com"
	DefaultAdminPassword = "changeme"
	DefaultAdminName     = "Administrator"
)

// Seed creates initial demo data: the default admin user, a demo venue and
// a small category tree with a few events. Safe to call repeatedly.
func Seed(ctx context.Context, db *sql.DB) error {
	users := NewUserStore(db)

	existing, err := users.FindByEmail(ctx, DefaultAdminEmail)
	if err != nil {
		return fmt.Errorf("checking for admin user: %w", err)
	}
	if existing != nil {
		slog.Info("admin user already exists, skipping seed")
		return nil
	}

	passwordHash, err := auth.HashPassword(DefaultAdminPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	admin := &model.User{
		Email:        DefaultAdminEmail,
		PasswordHash: passwordHash,
		Name:         DefaultAdminName,
		Role:         model.RoleAdmin,
	}
	if err := users.Create(ctx, admin); err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}
	slog.Info("created default admin user",
		"id", admin.ID,
		"email", admin.Email,
		"password", DefaultAdminPassword,
	)

	categories := NewCategoryStore(db)
	tech := &model.Category{Name: "Tech"}
	if err := categories.Save(ctx, tech); err != nil {
		return fmt.Errorf("creating demo category: %w", err)
	}
	workshops := &model.Category{
		Name:     "Workshops",
		ParentID: sql.NullInt64{Int64: tech.ID, Valid: true},
	}
	if err := categories.Save(ctx, workshops); err != nil {
		return fmt.Errorf("creating demo category: %w", err)
	}

	venues := NewVenueStore(db)
	hall := &model.Venue{Name: "City Hall", Address: "1 Main St", Capacity: 400}
	if err := venues.Save(ctx, hall); err != nil {
		return fmt.Errorf("creating demo venue: %w", err)
	}

	events := NewEventStore(db)
	demo := []model.Event{
		{
			Name:        "Tech Talk",
			Description: "An evening of lightning talks.",
			StartsAt:    time.Now().AddDate(0, 1, 0),
			VenueID:     hall.ID,
			CategoryID:  sql.NullInt64{Int64: tech.ID, Valid: true},
			Price:       model.Price{Amount: 1500, Currency: model.CurrencyUSD},
		},
		{
			Name:        "Go Workshop",
			Description: "Hands-on introduction to Go.",
			StartsAt:    time.Now().AddDate(0, 1, 7),
			VenueID:     hall.ID,
			CategoryID:  sql.NullInt64{Int64: workshops.ID, Valid: true},
			Price:       model.Price{Amount: 4900, Currency: model.CurrencyEUR},
		},
	}
	for i := range demo {
		if err := events.Create(ctx, &demo[i]); err != nil {
			return fmt.Errorf("creating demo event: %w", err)
		}
	}

	slog.Info("seeded demo data", "categories", 2, "venues", 1, "events", len(demo))
	return nil
}
