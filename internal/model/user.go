// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// User roles.
const (
	RoleCustomer  = "customer"
	RoleOrganizer = "organizer"
	RoleAdmin     = "admin"
)

// IsValidRole reports whether role is one of the known user roles.
func IsValidRole(role string) bool {
	switch role {
	case RoleCustomer, RoleOrganizer, RoleAdmin:
		return true
	}
	return false
}

// User represents a registered caller.
type User struct {
	ID           int64        `json:"id"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"` // Never expose in JSON
	Name         string       `json:"name"`
	Role         string       `json:"role"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
	LastLoginAt  sql.NullTime `json:"-"`
}

// IsAdmin returns true if the user has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsCustomer returns true if the user has the customer role. The booking
// overlay on catalog results is only computed for customers.
func (u *User) IsCustomer() bool {
	return u.Role == RoleCustomer
}

// CanManageEvents returns true if the user may create or edit events.
func (u *User) CanManageEvents() bool {
	return u.Role == RoleOrganizer || u.Role == RoleAdmin
}
