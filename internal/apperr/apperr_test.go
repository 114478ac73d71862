// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(NotFound("gone")))
	assert.Equal(t, KindConflict, KindOf(Conflict("taken")))
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
	assert.Equal(t, Kind(""), KindOf(nil))
}

func TestKindOfWrapped(t *testing.T) {
	inner := InvalidOperation("nope")
	wrapped := fmt.Errorf("while deleting: %w", inner)
	assert.Equal(t, KindInvalidOperation, KindOf(wrapped))
	assert.True(t, IsKind(wrapped, KindInvalidOperation))
}

func TestWithDetailAndCause(t *testing.T) {
	cause := errors.New("db says no")
	err := ReferentialConflict("still referenced").
		WithDetail("id", "42").
		WithCause(cause)

	assert.Equal(t, "42", err.Details["id"])
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "still referenced")
	assert.Contains(t, err.Error(), "db says no")
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(NotFound("category %d not found", 7)))
	assert.False(t, IsNotFound(Conflict("x")))
}
