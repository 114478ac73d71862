// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"

	"github.com/eventory/eventory/internal/auth"
	"github.com/eventory/eventory/internal/model"
	"github.com/eventory/eventory/internal/store"
)

const minPasswordLength = 8

// AuthHandler serves registration and login.
type AuthHandler struct {
	users  *store.UserStore
	issuer *auth.TokenIssuer
	log    *slog.Logger
}

// NewAuthHandler creates the auth handler.
func NewAuthHandler(users *store.UserStore, issuer *auth.TokenIssuer, log *slog.Logger) *AuthHandler {
	return &AuthHandler{users: users, issuer: issuer, log: log}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

type tokenResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// Register handles POST /api/auth/register. Self-registration is limited
// to the customer and organizer roles; admins are created by seeding.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "invalid JSON body")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if req.Role == "" {
		req.Role = model.RoleCustomer
	}

	details := make(map[string]string)
	if _, err := mail.ParseAddress(req.Email); err != nil {
		details["email"] = "a valid email address is required"
	}
	if len(req.Password) < minPasswordLength {
		details["password"] = "password must be at least 8 characters"
	}
	if req.Name == "" {
		details["name"] = "name is required"
	}
	if req.Role != model.RoleCustomer && req.Role != model.RoleOrganizer {
		details["role"] = "role must be customer or organizer"
	}
	if len(details) > 0 {
		WriteErrorDetails(w, http.StatusBadRequest, "validation_failed", "invalid registration", details)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		WriteAppError(w, h.log, err)
		return
	}

	user := &model.User{
		Email:        req.Email,
		PasswordHash: hash,
		Name:         req.Name,
		Role:         req.Role,
	}
	if err := h.users.Create(r.Context(), user); err != nil {
		WriteAppError(w, h.log, err)
		return
	}

	token, err := h.issuer.Issue(user)
	if err != nil {
		WriteAppError(w, h.log, err)
		return
	}
	h.log.Info("user registered", "id", user.ID, "role", user.Role)
	WriteCreated(w, tokenResponse{Token: token, User: user})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "invalid JSON body")
		return
	}

	user, err := h.users.FindByEmail(r.Context(), strings.TrimSpace(req.Email))
	if err != nil {
		WriteAppError(w, h.log, err)
		return
	}
	valid := false
	if user != nil {
		valid, err = auth.CheckPassword(req.Password, user.PasswordHash)
		if err != nil {
			WriteAppError(w, h.log, err)
			return
		}
	}
	if !valid {
		h.log.Warn("failed login attempt", "scope", "auth", "email", req.Email)
		WriteError(w, http.StatusUnauthorized, "unauthorized", "invalid email or password")
		return
	}

	if err := h.users.TouchLastLogin(r.Context(), user.ID); err != nil {
		h.log.Warn("failed to update last login", "error", err, "id", user.ID)
	}

	token, err := h.issuer.Issue(user)
	if err != nil {
		WriteAppError(w, h.log, err)
		return
	}
	WriteSuccess(w, tokenResponse{Token: token, User: user}, nil)
}
