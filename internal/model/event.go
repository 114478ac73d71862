// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"encoding/json"
	"time"
)

// Allowed price currencies.
const (
	CurrencyUSD = "USD"
	CurrencyEUR = "EUR"
	CurrencyGBP = "GBP"
	CurrencyUAH = "UAH"
)

// AllowedCurrencies is the fixed set of currency codes an event price may use.
var AllowedCurrencies = []string{CurrencyUSD, CurrencyEUR, CurrencyGBP, CurrencyUAH}

// IsAllowedCurrency reports whether code is in the allowed currency set.
func IsAllowedCurrency(code string) bool {
	for _, c := range AllowedCurrencies {
		if c == code {
			return true
		}
	}
	return false
}

// Price is a monetary value in minor units plus a currency code.
type Price struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// Event is a catalog entry. CategoryID is null for uncategorized events;
// when set it must reference an existing category.
type Event struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	StartsAt    time.Time      `json:"starts_at"`
	VenueID     int64          `json:"venue_id"`
	CategoryID  sql.NullInt64  `json:"-"`
	Price       Price          `json:"price"`
	PhotoURL    sql.NullString `json:"-"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Category returns the category id, or nil for an uncategorized event.
func (e *Event) Category() *int64 {
	if !e.CategoryID.Valid {
		return nil
	}
	id := e.CategoryID.Int64
	return &id
}

// MarshalJSON renders CategoryID and PhotoURL as nullable values.
func (e Event) MarshalJSON() ([]byte, error) {
	type alias Event
	var photo *string
	if e.PhotoURL.Valid {
		photo = &e.PhotoURL.String
	}
	return json.Marshal(struct {
		alias
		CategoryID *int64  `json:"category_id"`
		PhotoURL   *string `json:"photo_url"`
	}{alias(e), e.Category(), photo})
}
