package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/idafleet/fleet-ledger/internal/core/domain"
)

// SetExchangeRateRequest defines the structure for activating a new exchange rate.
// Activating a rate deactivates the prior active rate for the same ordered pair.
type SetExchangeRateRequest struct {
	FromCurrencyCode string          `json:"fromCurrencyCode" binding:"required,len=3,uppercase"`
	ToCurrencyCode   string          `json:"toCurrencyCode" binding:"required,len=3,uppercase"`
	Rate             decimal.Decimal `json:"rate" binding:"required"`
	DateEffective    *time.Time      `json:"dateEffective,omitempty"` // defaults to now
}

// ExchangeRateResponse defines the structure for API responses containing rate details.
type ExchangeRateResponse struct {
	ExchangeRateID   string          `json:"exchangeRateID"`
	FromCurrencyCode string          `json:"fromCurrencyCode"`
	ToCurrencyCode   string          `json:"toCurrencyCode"`
	Rate             decimal.Decimal `json:"rate"`
	DateEffective    time.Time       `json:"dateEffective"`
	IsActive         bool            `json:"isActive"`
	CreatedAt        time.Time       `json:"createdAt"`
	CreatedBy        string          `json:"createdBy"`
}

// ToExchangeRateResponse converts a domain.ExchangeRate to ExchangeRateResponse.
func ToExchangeRateResponse(rate *domain.ExchangeRate) ExchangeRateResponse {
	return ExchangeRateResponse{
		ExchangeRateID:   rate.ExchangeRateID,
		FromCurrencyCode: rate.FromCurrencyCode,
		ToCurrencyCode:   rate.ToCurrencyCode,
		Rate:             rate.Rate,
		DateEffective:    rate.DateEffective,
		IsActive:         rate.IsActive,
		CreatedAt:        rate.CreatedAt,
		CreatedBy:        rate.CreatedBy,
	}
}

// ToListExchangeRateResponse converts a slice of domain rates to response DTOs.
func ToListExchangeRateResponse(rates []domain.ExchangeRate) []ExchangeRateResponse {
	responses := make([]ExchangeRateResponse, len(rates))
	for i := range rates {
		responses[i] = ToExchangeRateResponse(&rates[i])
	}
	return responses
}

// ConvertedAmountResponse is the result of a currency conversion query.
type ConvertedAmountResponse struct {
	Amount           decimal.Decimal `json:"amount"`
	FromCurrencyCode string          `json:"fromCurrencyCode"`
	ToCurrencyCode   string          `json:"toCurrencyCode"`
	Converted        decimal.Decimal `json:"converted"`
}

// ListExchangeRatesParams holds filters for the rate-history listing.
type ListExchangeRatesParams struct {
	FromCurrencyCode *string `form:"from"`
	ToCurrencyCode   *string `form:"to"`
	Limit            int     `form:"limit,default=50"`
	NextToken        *string `form:"nextToken"`
}

// ListExchangeRatesResponse wraps a page of rate history.
type ListExchangeRatesResponse struct {
	Rates     []ExchangeRateResponse `json:"rates"`
	NextToken *string                `json:"nextToken,omitempty"`
}
