// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventory/eventory/internal/model"
	"github.com/eventory/eventory/internal/store"
	"github.com/eventory/eventory/internal/testutil"
)

func testNow() time.Time {
	return time.Now().Add(24 * time.Hour)
}

func createVenue(t *testing.T, db *sql.DB) *model.Venue {
	t.Helper()
	venue := &model.Venue{Name: "Arena", Address: "3 Park Ave", Capacity: 500}
	require.NoError(t, store.NewVenueStore(db).Save(context.Background(), venue))
	return venue
}

func createEvent(t *testing.T, db *sql.DB, name, description string, venueID int64, categoryID *int64) *model.Event {
	t.Helper()
	ev := &model.Event{
		Name:        name,
		Description: description,
		StartsAt:    testNow(),
		VenueID:     venueID,
		Price:       model.Price{Amount: 2500, Currency: model.CurrencyGBP},
	}
	if categoryID != nil {
		ev.CategoryID = sql.NullInt64{Int64: *categoryID, Valid: true}
	}
	require.NoError(t, store.NewEventStore(db).Create(context.Background(), ev))
	return ev
}

func TestEventFilterTextSearch(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	s := store.NewEventStore(db)
	ctx := context.Background()

	venue := createVenue(t, db)
	byName := createEvent(t, db, "Tech Talk", "evening meetup", venue.ID, nil)
	byDescription := createEvent(t, db, "Quarterly Meetup", "all about tech trends", venue.ID, nil)
	createEvent(t, db, "Music Night", "live jazz", venue.ID, nil)

	filter := store.EventFilter{TextSearch: "TECH"}
	total, err := s.CountMatching(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	items, err := s.ListPage(ctx, filter, 10, 0)
	require.NoError(t, err)
	ids := eventIDs(items)
	assert.ElementsMatch(t, []int64{byName.ID, byDescription.ID}, ids)
}

func TestEventFilterCategorySemantics(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	s := store.NewEventStore(db)
	categories := store.NewCategoryStore(db)
	ctx := context.Background()

	cat := saveCategory(t, categories, "Filtered", nil)
	venue := createVenue(t, db)
	inCat := createEvent(t, db, "In Category", "", venue.ID, &cat.ID)
	createEvent(t, db, "No Category", "", venue.ID, nil)

	t.Run("nil ids means no category restriction", func(t *testing.T) {
		total, err := s.CountMatching(ctx, store.EventFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
	})

	t.Run("empty non-nil ids matches nothing", func(t *testing.T) {
		total, err := s.CountMatching(ctx, store.EventFilter{CategoryIDs: []int64{}})
		require.NoError(t, err)
		assert.Zero(t, total)
	})

	t.Run("membership filter", func(t *testing.T) {
		items, err := s.ListPage(ctx, store.EventFilter{CategoryIDs: []int64{cat.ID}}, 10, 0)
		require.NoError(t, err)
		assert.Equal(t, []int64{inCat.ID}, eventIDs(items))
	})
}

func TestEventListPageOrdering(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	s := store.NewEventStore(db)
	ctx := context.Background()

	venue := createVenue(t, db)
	old := createEvent(t, db, "Older", "", venue.ID, nil)
	recent := createEvent(t, db, "Newer", "", venue.ID, nil)

	// Push the first event further into the past.
	_, err := db.ExecContext(ctx, `UPDATE events SET starts_at = ? WHERE id = ?`,
		time.Now().Add(-48*time.Hour), old.ID)
	require.NoError(t, err)

	items, err := s.ListPage(ctx, store.EventFilter{}, 10, 0)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, recent.ID, items[0].ID)
	assert.Equal(t, old.ID, items[1].ID)
}

func TestEventReassignCategory(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	s := store.NewEventStore(db)
	categories := store.NewCategoryStore(db)
	ctx := context.Background()

	from := saveCategory(t, categories, "From", nil)
	to := saveCategory(t, categories, "To", nil)
	venue := createVenue(t, db)
	moved1 := createEvent(t, db, "Moved One", "", venue.ID, &from.ID)
	moved2 := createEvent(t, db, "Moved Two", "", venue.ID, &from.ID)
	stays := createEvent(t, db, "Stays", "", venue.ID, &to.ID)

	n, err := s.ReassignCategory(ctx, from.ID, to.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	for _, id := range []int64{moved1.ID, moved2.ID, stays.ID} {
		ev, err := s.FindByID(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, ev.Category())
		assert.Equal(t, to.ID, *ev.Category())
	}

	count, err := s.CountByCategory(ctx, from.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestBookingDuplicateTolerated(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	bookings := store.NewBookingStore(db)
	ctx := context.Background()

	venue := createVenue(t, db)
	ev := createEvent(t, db, "Bookable", "", venue.ID, nil)
	user := &model.User{Email: "b@example.com", PasswordHash: "x", Name: "B", Role: model.RoleCustomer}
	require.NoError(t, store.NewUserStore(db).Create(ctx, user))

	first, err := bookings.Create(ctx, user.ID, ev.ID, "ref-1")
	require.NoError(t, err)

	second, err := bookings.Create(ctx, user.ID, ev.ID, "ref-2")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "ref-1", second.Reference)
}

func TestBookedEventIDs(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	bookings := store.NewBookingStore(db)
	ctx := context.Background()

	venue := createVenue(t, db)
	booked := createEvent(t, db, "Booked", "", venue.ID, nil)
	open := createEvent(t, db, "Open", "", venue.ID, nil)
	user := &model.User{Email: "c@example.com", PasswordHash: "x", Name: "C", Role: model.RoleCustomer}
	require.NoError(t, store.NewUserStore(db).Create(ctx, user))

	_, err := bookings.Create(ctx, user.ID, booked.ID, "ref")
	require.NoError(t, err)

	got, err := bookings.BookedEventIDs(ctx, user.ID, []int64{booked.ID, open.ID})
	require.NoError(t, err)
	assert.Len(t, got, 1)
	_, ok := got[booked.ID]
	assert.True(t, ok)

	// Empty candidates short-circuit without querying.
	got, err = bookings.BookedEventIDs(ctx, user.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func eventIDs(items []model.Event) []int64 {
	ids := make([]int64, len(items))
	for i, ev := range items {
		ids[i] = ev.ID
	}
	return ids
}
