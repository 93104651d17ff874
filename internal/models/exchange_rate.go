package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate is the persistence shape of a directional conversion rate.
// Rows are append-only; deactivation flips is_active, nothing else changes.
type ExchangeRate struct {
	ExchangeRateID   string          `json:"exchangeRateID"`
	FromCurrencyCode string          `json:"fromCurrencyCode"`
	ToCurrencyCode   string          `json:"toCurrencyCode"`
	Rate             decimal.Decimal `json:"rate"`
	DateEffective    time.Time       `json:"dateEffective"`
	IsActive         bool            `json:"isActive"`
	AuditFields
}
