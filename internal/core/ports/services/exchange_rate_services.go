package services

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/idafleet/fleet-ledger/internal/core/domain"
	"github.com/idafleet/fleet-ledger/internal/dto"
)

// RateResolverSvc answers conversion queries against the active rate graph.
type RateResolverSvc interface {
	// Resolve produces the conversion factor for an ordered currency pair:
	// amount_in_to = amount_in_from * factor. Lookup order is identity,
	// direct, inverse, then one transitive hop through the base currency.
	// Returns apperrors.ErrRateNotFound when no path exists; callers must not
	// substitute 1.0 on their own.
	Resolve(ctx context.Context, fromCurrencyCode, toCurrencyCode string) (decimal.Decimal, error)

	// Convert returns amount expressed in the target currency.
	Convert(ctx context.Context, amount decimal.Decimal, fromCurrencyCode, toCurrencyCode string) (decimal.Decimal, error)
}

// ExchangeRateReaderSvc defines read operations for exchange rate data.
type ExchangeRateReaderSvc interface {
	RateResolverSvc

	// ActiveRatesMap returns {fromCurrency: {toCurrency: rate}} over currently
	// active rates only, for presentation layers.
	ActiveRatesMap(ctx context.Context) (domain.RatesMap, error)

	// ListExchangeRates returns rate history pages, newest first.
	ListExchangeRates(ctx context.Context, params dto.ListExchangeRatesParams) (*dto.ListExchangeRatesResponse, error)
}

// ExchangeRateWriterSvc defines write operations for exchange rate data.
type ExchangeRateWriterSvc interface {
	// SetRate activates a new rate for an ordered pair, deactivating the prior
	// active rate in the same transaction.
	SetRate(ctx context.Context, req dto.SetExchangeRateRequest, creatorUserID string) (*domain.ExchangeRate, error)
}

// ExchangeRateSvcFacade combines all exchange rate service interfaces.
type ExchangeRateSvcFacade interface {
	ExchangeRateReaderSvc
	ExchangeRateWriterSvc
}
