// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventory/eventory/internal/model"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

	ok, err := CheckPassword("correct horse battery staple", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = CheckPassword("wrong password", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCheckPasswordMalformedHash(t *testing.T) {
	_, err := CheckPassword("anything", "not-a-hash")
	assert.Error(t, err)
}

func TestTokenIssueAndVerify(t *testing.T) {
	issuer := NewTokenIssuer("0123456789abcdef0123456789abcdef", time.Hour)
	user := &model.User{ID: 7, Email: "u@example.com", Role: model.RoleOrganizer}

	token, err := issuer.Issue(user)
	require.NoError(t, err)

	claims, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "u@example.com", claims.Email)
	assert.Equal(t, model.RoleOrganizer, claims.Role)
}

func TestTokenVerifyRejectsBadInput(t *testing.T) {
	issuer := NewTokenIssuer("0123456789abcdef0123456789abcdef", time.Hour)

	t.Run("garbage token", func(t *testing.T) {
		_, err := issuer.Verify("garbage")
		assert.Error(t, err)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewTokenIssuer("ffffffffffffffffffffffffffffffff", time.Hour)
		token, err := other.Issue(&model.User{ID: 1, Email: "x@example.com", Role: model.RoleCustomer})
		require.NoError(t, err)

		_, err = issuer.Verify(token)
		assert.Error(t, err)
	})

	t.Run("expired token", func(t *testing.T) {
		expired := NewTokenIssuer("0123456789abcdef0123456789abcdef", -time.Minute)
		token, err := expired.Issue(&model.User{ID: 1, Email: "x@example.com", Role: model.RoleCustomer})
		require.NoError(t, err)

		_, err = issuer.Verify(token)
		assert.Error(t, err)
	})
}
