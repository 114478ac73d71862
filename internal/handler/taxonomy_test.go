// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventory/eventory/internal/cache"
	"github.com/eventory/eventory/internal/handler"
	"github.com/eventory/eventory/internal/service"
	"github.com/eventory/eventory/internal/testutil"
)

func newTaxonomyRouter(t *testing.T) (chi.Router, *service.Taxonomy, *sql.DB, func()) {
	t.Helper()
	db, cleanup := testutil.TestDB(t)
	c := cache.NewMemoryCache(cache.Config{DefaultTTL: time.Minute})
	taxonomy := service.NewTaxonomy(db, c, testutil.TestLogger())
	h := handler.NewTaxonomyHandler(taxonomy, testutil.TestLogger())

	r := chi.NewRouter()
	r.Route("/api/categories", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/tree", h.Tree)
		r.Get("/{id}", h.Get)
		r.Post("/", h.Create)
		r.Patch("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
	return r, taxonomy, db, func() {
		_ = c.Close()
		cleanup()
	}
}

func jsonBody(t *testing.T, body any) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	return &buf
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCategoryCreateAndGet(t *testing.T) {
	r, _, _, cleanup := newTaxonomyRouter(t)
	defer cleanup()

	rec := doJSON(t, r, http.MethodPost, "/api/categories", map[string]any{"name": "Tech"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		Data struct {
			ID   int64  `json:"id"`
			Name string `json:"name"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "Tech", created.Data.Name)

	rec = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/categories/%d", created.Data.ID), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/api/categories/9999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCategoryCreateConflict(t *testing.T) {
	r, _, _, cleanup := newTaxonomyRouter(t)
	defer cleanup()

	rec := doJSON(t, r, http.MethodPost, "/api/categories", map[string]any{"name": "Dup"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/api/categories", map[string]any{"name": "dup"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "conflict", resp.Error.Code)
}

func TestCategoryTreeEndpoint(t *testing.T) {
	r, taxonomy, _, cleanup := newTaxonomyRouter(t)
	defer cleanup()
	ctx := context.Background()

	root, err := taxonomy.Create(ctx, "Root", nil)
	require.NoError(t, err)
	_, err = taxonomy.Create(ctx, "Leaf", &root.ID)
	require.NoError(t, err)

	rec := doJSON(t, r, http.MethodGet, "/api/categories/tree", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []struct {
			Name     string `json:"name"`
			Children []struct {
				Name string `json:"name"`
			} `json:"children"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "Root", resp.Data[0].Name)
	require.Len(t, resp.Data[0].Children, 1)
	assert.Equal(t, "Leaf", resp.Data[0].Children[0].Name)
}

func TestCategoryUpdateParentTristate(t *testing.T) {
	r, taxonomy, _, cleanup := newTaxonomyRouter(t)
	defer cleanup()
	ctx := context.Background()

	parent, err := taxonomy.Create(ctx, "Parent", nil)
	require.NoError(t, err)
	child, err := taxonomy.Create(ctx, "Child", &parent.ID)
	require.NoError(t, err)

	t.Run("omitted parent_id leaves parent unchanged", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPatch, fmt.Sprintf("/api/categories/%d", child.ID),
			map[string]any{"name": "Child Renamed"})
		require.Equal(t, http.StatusOK, rec.Code)

		got, err := taxonomy.Get(ctx, child.ID)
		require.NoError(t, err)
		assert.Equal(t, "Child Renamed", got.Name)
		require.NotNil(t, got.Parent())
		assert.Equal(t, parent.ID, *got.Parent())
	})

	t.Run("explicit null parent_id detaches", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPatch, fmt.Sprintf("/api/categories/%d", child.ID),
			map[string]any{"parent_id": nil})
		require.Equal(t, http.StatusOK, rec.Code)

		got, err := taxonomy.Get(ctx, child.ID)
		require.NoError(t, err)
		assert.Nil(t, got.Parent())
	})

	t.Run("self parent is a conflict", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPatch, fmt.Sprintf("/api/categories/%d", child.ID),
			map[string]any{"parent_id": child.ID})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestCategoryDeleteEndpoint(t *testing.T) {
	r, taxonomy, _, cleanup := newTaxonomyRouter(t)
	defer cleanup()
	ctx := context.Background()

	sentinel, err := taxonomy.EnsureSentinel(ctx)
	require.NoError(t, err)

	cat, err := taxonomy.Create(ctx, "Removable", nil)
	require.NoError(t, err)

	rec := doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/categories/%d", cat.ID), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/categories/%d", sentinel.ID), nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCategoryListPagination(t *testing.T) {
	r, taxonomy, _, cleanup := newTaxonomyRouter(t)
	defer cleanup()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := taxonomy.Create(ctx, fmt.Sprintf("Cat %d", i), nil)
		require.NoError(t, err)
	}

	rec := doJSON(t, r, http.MethodGet, "/api/categories/?page=2&per_page=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []json.RawMessage `json:"data"`
		Meta struct {
			Total   int64 `json:"total"`
			Page    int   `json:"page"`
			PerPage int   `json:"per_page"`
			Pages   int   `json:"pages"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 2)
	assert.Equal(t, int64(5), resp.Meta.Total)
	assert.Equal(t, 2, resp.Meta.Page)
	assert.Equal(t, 3, resp.Meta.Pages)
}
