package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate is one directional conversion rate between two currency codes.
// Rates are append-only: a rate change is a new record plus deactivation of the
// prior active record for the same ordered pair, never an in-place mutation.
// At most one active rate exists per (from, to) pair.
type ExchangeRate struct {
	ExchangeRateID   string          `json:"exchangeRateID"`
	FromCurrencyCode string          `json:"fromCurrencyCode"` // 3-letter code, e.g. "USD"
	ToCurrencyCode   string          `json:"toCurrencyCode"`   // 3-letter code, e.g. "RWF"
	Rate             decimal.Decimal `json:"rate"`             // amount_in_to = amount_in_from * Rate
	DateEffective    time.Time       `json:"dateEffective"`
	IsActive         bool            `json:"isActive"`
	AuditFields
}

// RatesMap is the read-only active-rates view exposed to presentation layers:
// {fromCurrency: {toCurrency: rate}} over currently active rates only.
type RatesMap map[string]map[string]decimal.Decimal
