// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/eventory/eventory/internal/apperr"
	"github.com/eventory/eventory/internal/model"
	"github.com/eventory/eventory/internal/store"
)

// Catalog answers event catalog queries: text search combined with a
// descendant-expanded category filter and pagination, annotated with the
// caller's booking status.
type Catalog struct {
	db       *sql.DB
	events   *store.EventStore
	venues   *store.VenueStore
	bookings *store.BookingStore
	taxonomy *Taxonomy
}

// NewCatalog creates the catalog service.
func NewCatalog(db *sql.DB, taxonomy *Taxonomy) *Catalog {
	return &Catalog{
		db:       db,
		events:   store.NewEventStore(db),
		venues:   store.NewVenueStore(db),
		bookings: store.NewBookingStore(db),
		taxonomy: taxonomy,
	}
}

// CatalogQuery is a catalog read request. CategoryIDs and CategoryNames
// are selectors resolved and descendant-expanded before filtering. UserID,
// when set, marks items the caller has already booked; callers pass it
// only for customers.
type CatalogQuery struct {
	Page          int
	PerPage       int
	Text          string
	CategoryIDs   []int64
	CategoryNames []string
	UserID        *int64
}

// CatalogItem is one catalog result: the event plus its category name and
// whether the calling user has booked it.
type CatalogItem struct {
	model.Event
	CategoryName *string
	Booked       bool
}

// MarshalJSON flattens the event and overlay fields into one object.
func (i CatalogItem) MarshalJSON() ([]byte, error) {
	var photo *string
	if i.PhotoURL.Valid {
		photo = &i.PhotoURL.String
	}
	return json.Marshal(struct {
		ID           int64       `json:"id"`
		Name         string      `json:"name"`
		Description  string      `json:"description"`
		StartsAt     time.Time   `json:"starts_at"`
		VenueID      int64       `json:"venue_id"`
		CategoryID   *int64      `json:"category_id"`
		CategoryName *string     `json:"category_name"`
		Price        model.Price `json:"price"`
		PhotoURL     *string     `json:"photo_url"`
		Booked       bool        `json:"booked"`
		CreatedAt    time.Time   `json:"created_at"`
		UpdatedAt    time.Time   `json:"updated_at"`
	}{
		ID:           i.ID,
		Name:         i.Name,
		Description:  i.Description,
		StartsAt:     i.StartsAt,
		VenueID:      i.VenueID,
		CategoryID:   i.Category(),
		CategoryName: i.CategoryName,
		Price:        i.Price,
		PhotoURL:     photo,
		Booked:       i.Booked,
		CreatedAt:    i.CreatedAt,
		UpdatedAt:    i.UpdatedAt,
	})
}

// Query runs the catalog read. The count and the page are fetched inside
// one transaction so they observe the same snapshot.
func (s *Catalog) Query(ctx context.Context, q CatalogQuery) ([]CatalogItem, int64, error) {
	filterIDs, err := s.taxonomy.ResolveSelectors(ctx, q.CategoryIDs, q.CategoryNames)
	if err != nil {
		return nil, 0, err
	}

	filter := store.EventFilter{
		TextSearch:  strings.TrimSpace(q.Text),
		CategoryIDs: filterIDs,
	}

	var (
		events []model.Event
		total  int64
	)
	err = store.InTx(ctx, s.db, &sql.TxOptions{ReadOnly: true}, func(tx *sql.Tx) error {
		txEvents := s.events.WithTx(tx)
		total, err = txEvents.CountMatching(ctx, filter)
		if err != nil {
			return err
		}
		events, err = txEvents.ListPage(ctx, filter, q.PerPage, (q.Page-1)*q.PerPage)
		return err
	})
	if err != nil {
		return nil, 0, err
	}

	items, err := s.annotate(ctx, events, q.UserID)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// annotate joins category names onto the events and, when userID is set,
// marks the ones already booked by that user.
func (s *Catalog) annotate(ctx context.Context, events []model.Event, userID *int64) ([]CatalogItem, error) {
	categoryIDs := make([]int64, 0, len(events))
	seen := make(map[int64]struct{}, len(events))
	eventIDs := make([]int64, len(events))
	for i, ev := range events {
		eventIDs[i] = ev.ID
		if ev.CategoryID.Valid {
			if _, ok := seen[ev.CategoryID.Int64]; !ok {
				seen[ev.CategoryID.Int64] = struct{}{}
				categoryIDs = append(categoryIDs, ev.CategoryID.Int64)
			}
		}
	}

	names := make(map[int64]string, len(categoryIDs))
	if len(categoryIDs) > 0 {
		categories, err := store.NewCategoryStore(s.db).FindByIDs(ctx, categoryIDs)
		if err != nil {
			return nil, err
		}
		for _, cat := range categories {
			names[cat.ID] = cat.Name
		}
	}

	booked := map[int64]struct{}{}
	if userID != nil && len(eventIDs) > 0 {
		var err error
		booked, err = s.bookings.BookedEventIDs(ctx, *userID, eventIDs)
		if err != nil {
			return nil, err
		}
	}

	items := make([]CatalogItem, len(events))
	for i, ev := range events {
		item := CatalogItem{Event: ev}
		if ev.CategoryID.Valid {
			if name, ok := names[ev.CategoryID.Int64]; ok {
				item.CategoryName = &name
			}
		}
		_, item.Booked = booked[ev.ID]
		items[i] = item
	}
	return items, nil
}

// GetEvent returns a single event with its category name joined in.
func (s *Catalog) GetEvent(ctx context.Context, id int64, userID *int64) (*CatalogItem, error) {
	ev, err := s.events.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ev == nil {
		return nil, apperr.NotFound("event not found").WithDetail("id", strconv.FormatInt(id, 10))
	}
	items, err := s.annotate(ctx, []model.Event{*ev}, userID)
	if err != nil {
		return nil, err
	}
	return &items[0], nil
}

// EventInput is the payload for creating an event.
type EventInput struct {
	Name        string
	Description string
	StartsAt    time.Time
	VenueID     int64
	CategoryID  *int64
	Price       model.Price
	PhotoURL    *string
}

// CreateEvent validates and stores a new event.
func (s *Catalog) CreateEvent(ctx context.Context, in EventInput) (*model.Event, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, apperr.Validation("event name is required")
	}
	if in.StartsAt.Before(time.Now()) {
		return nil, apperr.Validation("event date must not be in the past")
	}
	if in.Price.Amount < 0 {
		return nil, apperr.Validation("price must not be negative")
	}
	if !model.IsAllowedCurrency(in.Price.Currency) {
		return nil, apperr.Validation("unsupported currency").WithDetail("currency", in.Price.Currency)
	}

	venue, err := s.venues.FindByID(ctx, in.VenueID)
	if err != nil {
		return nil, err
	}
	if venue == nil {
		return nil, apperr.NotFound("venue not found").WithDetail("venue_id", strconv.FormatInt(in.VenueID, 10))
	}

	ev := &model.Event{
		Name:        in.Name,
		Description: in.Description,
		StartsAt:    in.StartsAt,
		VenueID:     in.VenueID,
		Price:       in.Price,
	}
	if in.CategoryID != nil {
		if _, err := s.taxonomy.Get(ctx, *in.CategoryID); err != nil {
			return nil, err
		}
		ev.CategoryID = sql.NullInt64{Int64: *in.CategoryID, Valid: true}
	}
	if in.PhotoURL != nil && *in.PhotoURL != "" {
		ev.PhotoURL = sql.NullString{String: *in.PhotoURL, Valid: true}
	}

	if err := s.events.Create(ctx, ev); err != nil {
		return nil, err
	}
	return ev, nil
}
