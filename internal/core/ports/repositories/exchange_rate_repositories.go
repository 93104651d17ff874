package repositories

import (
	"context"
	"time"

	"github.com/idafleet/fleet-ledger/internal/core/domain"
)

// ExchangeRateReader defines read operations for exchange rate data.
type ExchangeRateReader interface {
	// FindActiveRate retrieves the single active rate for the exact ordered
	// pair, or apperrors.ErrNotFound when none is active.
	FindActiveRate(ctx context.Context, fromCurrencyCode, toCurrencyCode string) (*domain.ExchangeRate, error)

	// ListActiveRates retrieves every currently active rate.
	ListActiveRates(ctx context.Context) ([]domain.ExchangeRate, error)

	// ListExchangeRates retrieves rate history (active and superseded) for an
	// optional pair filter, ordered by (date_effective, created_at) newest
	// first, resuming after the token position.
	ListExchangeRates(ctx context.Context, fromCurrencyCode, toCurrencyCode *string, limit int, afterEffective, afterCreated *time.Time) ([]domain.ExchangeRate, error)
}

// ExchangeRateWriter defines write operations for exchange rate data.
type ExchangeRateWriter interface {
	// ActivateExchangeRate persists a new active rate, deactivating any prior
	// active rate for the same ordered pair in the same transaction.
	ActivateExchangeRate(ctx context.Context, rate domain.ExchangeRate) error
}

// ExchangeRateRepositoryFacade combines all exchange rate repository interfaces.
type ExchangeRateRepositoryFacade interface {
	ExchangeRateReader
	ExchangeRateWriter
}
