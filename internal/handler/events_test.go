// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler_test

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventory/eventory/internal/auth"
	"github.com/eventory/eventory/internal/cache"
	"github.com/eventory/eventory/internal/handler"
	"github.com/eventory/eventory/internal/middleware"
	"github.com/eventory/eventory/internal/model"
	"github.com/eventory/eventory/internal/service"
	"github.com/eventory/eventory/internal/store"
	"github.com/eventory/eventory/internal/testutil"
)

const testJWTSecret = "0123456789abcdef0123456789abcdef"

type eventsEnv struct {
	router   chi.Router
	taxonomy *service.Taxonomy
	catalog  *service.Catalog
	issuer   *auth.TokenIssuer
	db       *sql.DB
}

func newEventsEnv(t *testing.T) (*eventsEnv, func()) {
	t.Helper()
	db, cleanup := testutil.TestDB(t)
	c := cache.NewMemoryCache(cache.Config{DefaultTTL: time.Minute})
	log := testutil.TestLogger()

	taxonomy := service.NewTaxonomy(db, c, log)
	catalog := service.NewCatalog(db, taxonomy)
	bookings := service.NewBookings(db)
	issuer := auth.NewTokenIssuer(testJWTSecret, time.Hour)

	eventsHandler := handler.NewEventsHandler(catalog, log)
	bookingsHandler := handler.NewBookingsHandler(bookings, log)

	r := chi.NewRouter()
	r.Route("/api/events", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.MaybeAuthenticate(issuer))
			r.Get("/", eventsHandler.List)
			r.Get("/{id}", eventsHandler.Get)
		})
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(issuer))
			r.Use(middleware.RequireRole(model.RoleOrganizer, model.RoleAdmin))
			r.Post("/", eventsHandler.Create)
		})
	})
	r.Route("/api/bookings", func(r chi.Router) {
		r.Use(middleware.Authenticate(issuer))
		r.Use(middleware.RequireRole(model.RoleCustomer))
		r.Post("/", bookingsHandler.Create)
		r.Get("/", bookingsHandler.List)
	})

	env := &eventsEnv{router: r, taxonomy: taxonomy, catalog: catalog, issuer: issuer, db: db}
	return env, func() {
		_ = c.Close()
		cleanup()
	}
}

func (e *eventsEnv) seedEvent(t *testing.T, name string, categoryID *int64) *model.Event {
	t.Helper()
	ctx := context.Background()
	venues := store.NewVenueStore(e.db)
	venue := &model.Venue{Name: "Venue for " + name, Address: "x", Capacity: 10}
	require.NoError(t, venues.Save(ctx, venue))

	ev := &model.Event{
		Name:     name,
		StartsAt: time.Now().Add(time.Hour),
		VenueID:  venue.ID,
		Price:    model.Price{Amount: 100, Currency: model.CurrencyUSD},
	}
	if categoryID != nil {
		ev.CategoryID = sql.NullInt64{Int64: *categoryID, Valid: true}
	}
	require.NoError(t, store.NewEventStore(e.db).Create(ctx, ev))
	return ev
}

func (e *eventsEnv) token(t *testing.T, email, role string) string {
	t.Helper()
	user := &model.User{Email: email, PasswordHash: "x", Name: "T", Role: role}
	require.NoError(t, store.NewUserStore(e.db).Create(context.Background(), user))
	token, err := e.issuer.Issue(user)
	require.NoError(t, err)
	return token
}

func TestEventsListFiltersByCategoryClosure(t *testing.T) {
	env, cleanup := newEventsEnv(t)
	defer cleanup()
	ctx := context.Background()

	tech, err := env.taxonomy.Create(ctx, "Tech", nil)
	require.NoError(t, err)
	workshops, err := env.taxonomy.Create(ctx, "Workshops", &tech.ID)
	require.NoError(t, err)

	inParent := env.seedEvent(t, "Tech Talk", &tech.ID)
	inChild := env.seedEvent(t, "Go Workshop", &workshops.ID)
	env.seedEvent(t, "Music Night", nil)

	rec := doJSON(t, env.router, http.MethodGet,
		fmt.Sprintf("/api/events/?category_ids=%d", tech.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []struct {
			ID int64 `json:"id"`
		} `json:"data"`
		Meta struct {
			Total int64 `json:"total"`
		} `json:"meta"`
	}
	decodeBody(t, rec, &resp)
	assert.Equal(t, int64(2), resp.Meta.Total)

	ids := make([]int64, len(resp.Data))
	for i, d := range resp.Data {
		ids[i] = d.ID
	}
	assert.ElementsMatch(t, []int64{inParent.ID, inChild.ID}, ids)
}

func TestEventsListByCategoryName(t *testing.T) {
	env, cleanup := newEventsEnv(t)
	defer cleanup()
	ctx := context.Background()

	tech, err := env.taxonomy.Create(ctx, "Tech", nil)
	require.NoError(t, err)
	env.seedEvent(t, "Tech Talk", &tech.ID)
	env.seedEvent(t, "Music Night", nil)

	rec := doJSON(t, env.router, http.MethodGet, "/api/events/?category_names=tech", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Meta struct {
			Total int64 `json:"total"`
		} `json:"meta"`
	}
	decodeBody(t, rec, &resp)
	assert.Equal(t, int64(1), resp.Meta.Total)
}

func TestEventsListBookedFlagForCustomer(t *testing.T) {
	env, cleanup := newEventsEnv(t)
	defer cleanup()

	ev := env.seedEvent(t, "Bookable", nil)
	env.seedEvent(t, "Other", nil)
	token := env.token(t, "cust@example.com", model.RoleCustomer)

	// Book through the API.
	req := httptest.NewRequest(http.MethodPost, "/api/bookings/",
		jsonBody(t, map[string]any{"event_id": ev.ID}))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	// The catalog marks it booked for this caller.
	req = httptest.NewRequest(http.MethodGet, "/api/events/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []struct {
			ID     int64 `json:"id"`
			Booked bool  `json:"booked"`
		} `json:"data"`
	}
	decodeBody(t, rec, &resp)
	require.Len(t, resp.Data, 2)
	for _, item := range resp.Data {
		assert.Equal(t, item.ID == ev.ID, item.Booked)
	}

	// Anonymous callers never see booked flags.
	rec = doJSON(t, env.router, http.MethodGet, "/api/events/", nil)
	decodeBody(t, rec, &resp)
	for _, item := range resp.Data {
		assert.False(t, item.Booked)
	}
}

func TestEventsCreateRequiresRole(t *testing.T) {
	env, cleanup := newEventsEnv(t)
	defer cleanup()

	venue := &model.Venue{Name: "V", Address: "x", Capacity: 10}
	require.NoError(t, store.NewVenueStore(env.db).Save(context.Background(), venue))

	payload := map[string]any{
		"name":      "New Event",
		"starts_at": time.Now().Add(time.Hour).Format(time.RFC3339),
		"venue_id":  venue.ID,
		"price":     100,
		"currency":  model.CurrencyUSD,
	}

	t.Run("anonymous is unauthorized", func(t *testing.T) {
		rec := doJSON(t, env.router, http.MethodPost, "/api/events/", payload)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("customer is forbidden", func(t *testing.T) {
		token := env.token(t, "c2@example.com", model.RoleCustomer)
		req := httptest.NewRequest(http.MethodPost, "/api/events/", jsonBody(t, payload))
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("organizer succeeds", func(t *testing.T) {
		token := env.token(t, "org@example.com", model.RoleOrganizer)
		req := httptest.NewRequest(http.MethodPost, "/api/events/", jsonBody(t, payload))
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("invalid token is rejected even on public reads", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/events/", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestEventsGet(t *testing.T) {
	env, cleanup := newEventsEnv(t)
	defer cleanup()

	ev := env.seedEvent(t, "Single", nil)

	rec := doJSON(t, env.router, http.MethodGet, fmt.Sprintf("/api/events/%d", ev.ID), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, env.router, http.MethodGet, "/api/events/9999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
