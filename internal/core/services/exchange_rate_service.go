package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"

	"github.com/idafleet/fleet-ledger/internal/apperrors"
	"github.com/idafleet/fleet-ledger/internal/core/domain"
	portsrepo "github.com/idafleet/fleet-ledger/internal/core/ports/repositories"
	portssvc "github.com/idafleet/fleet-ledger/internal/core/ports/services"
	"github.com/idafleet/fleet-ledger/internal/dto"
	"github.com/idafleet/fleet-ledger/internal/middleware"
	"github.com/idafleet/fleet-ledger/internal/utils/pagination"
)

const (
	factorCacheTTL     = 5 * time.Minute
	factorCacheSweep   = 10 * time.Minute
	maxRateHistoryPage = 200
)

// exchangeRateService resolves conversion factors against the active rate
// graph and owns rate activation.
type exchangeRateService struct {
	rateRepo portsrepo.ExchangeRateRepositoryFacade

	// baseCurrency is the pivot for transitive resolution. Passed in rather
	// than read from a global so tests can substitute another base.
	baseCurrency string

	// factorCache holds resolved factors keyed by "FROM->TO". A transitive
	// factor can depend on any pair, so activation flushes the whole cache
	// rather than tracking which keys a pair feeds.
	factorCache *gocache.Cache
}

// NewExchangeRateService creates a new exchange rate service with the given
// base currency for transitive lookups.
func NewExchangeRateService(rateRepo portsrepo.ExchangeRateRepositoryFacade, baseCurrency string) portssvc.ExchangeRateSvcFacade {
	return &exchangeRateService{
		rateRepo:     rateRepo,
		baseCurrency: strings.ToUpper(baseCurrency),
		factorCache:  gocache.New(factorCacheTTL, factorCacheSweep),
	}
}

var _ portssvc.ExchangeRateSvcFacade = (*exchangeRateService)(nil)

func normalizeCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return "", fmt.Errorf("%w: currency codes must be 3 letters, got %q", apperrors.ErrValidation, code)
	}
	return code, nil
}

// Resolve produces the conversion factor for an ordered currency pair.
// Lookup order: identity, direct active rate, inverse active rate, then one
// transitive hop through the base currency. Anything else is ErrRateNotFound.
func (s *exchangeRateService) Resolve(ctx context.Context, fromCurrencyCode, toCurrencyCode string) (decimal.Decimal, error) {
	from, err := normalizeCode(fromCurrencyCode)
	if err != nil {
		return decimal.Zero, err
	}
	to, err := normalizeCode(toCurrencyCode)
	if err != nil {
		return decimal.Zero, err
	}

	if from == to {
		return decimal.NewFromInt(1), nil
	}

	cacheKey := from + "->" + to
	if cached, found := s.factorCache.Get(cacheKey); found {
		return cached.(decimal.Decimal), nil
	}

	factor, err := s.resolvePair(ctx, from, to)
	if err != nil {
		return decimal.Zero, err
	}

	s.factorCache.Set(cacheKey, factor, gocache.DefaultExpiration)
	return factor, nil
}

// resolvePair does the uncached resolution work for a normalized pair.
func (s *exchangeRateService) resolvePair(ctx context.Context, from, to string) (decimal.Decimal, error) {
	factor, err := s.lookupDirectOrInverse(ctx, from, to)
	if err == nil {
		return factor, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return decimal.Zero, err
	}

	// Transitive fallback: one hop through the base currency. The rate graph
	// never needs longer chains; anything unreachable this way is a genuine
	// RateNotFound, not an excuse to invent a general graph search.
	if from != s.baseCurrency && to != s.baseCurrency {
		toBase, errA := s.lookupDirectOrInverse(ctx, from, s.baseCurrency)
		if errA == nil {
			fromBase, errB := s.lookupDirectOrInverse(ctx, s.baseCurrency, to)
			if errB == nil {
				return toBase.Mul(fromBase), nil
			}
			if !errors.Is(errB, apperrors.ErrNotFound) {
				return decimal.Zero, errB
			}
		} else if !errors.Is(errA, apperrors.ErrNotFound) {
			return decimal.Zero, errA
		}
	}

	return decimal.Zero, apperrors.NewRateNotFoundError(from, to)
}

// lookupDirectOrInverse finds the active rate for the exact ordered pair, or
// the reciprocal of the reverse pair's active rate.
func (s *exchangeRateService) lookupDirectOrInverse(ctx context.Context, from, to string) (decimal.Decimal, error) {
	direct, err := s.rateRepo.FindActiveRate(ctx, from, to)
	if err == nil {
		return direct.Rate, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return decimal.Zero, err
	}

	inverse, err := s.rateRepo.FindActiveRate(ctx, to, from)
	if err != nil {
		return decimal.Zero, err
	}
	if inverse.Rate.IsZero() {
		// A zero stored rate is bad data; treat the pair as unresolvable
		// rather than dividing by zero.
		return decimal.Zero, apperrors.ErrNotFound
	}
	return decimal.NewFromInt(1).Div(inverse.Rate), nil
}

// Convert returns amount expressed in the target currency. The amount passes
// through untouched for identity conversions; everything else multiplies by
// the resolved factor with no intermediate rounding.
func (s *exchangeRateService) Convert(ctx context.Context, amount decimal.Decimal, fromCurrencyCode, toCurrencyCode string) (decimal.Decimal, error) {
	from, err := normalizeCode(fromCurrencyCode)
	if err != nil {
		return decimal.Zero, err
	}
	to, err := normalizeCode(toCurrencyCode)
	if err != nil {
		return decimal.Zero, err
	}
	if from == to {
		return amount, nil
	}

	factor, err := s.Resolve(ctx, from, to)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Mul(factor), nil
}

// SetRate activates a new rate for an ordered pair. The repository deactivates
// the prior active rate in the same transaction, so the at-most-one-active
// invariant holds even under concurrent writers.
func (s *exchangeRateService) SetRate(ctx context.Context, req dto.SetExchangeRateRequest, creatorUserID string) (*domain.ExchangeRate, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	from, err := normalizeCode(req.FromCurrencyCode)
	if err != nil {
		return nil, err
	}
	to, err := normalizeCode(req.ToCurrencyCode)
	if err != nil {
		return nil, err
	}
	if from == to {
		return nil, fmt.Errorf("%w: from and to currency codes cannot be the same", apperrors.ErrValidation)
	}
	if req.Rate.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: exchange rate must be positive", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	effective := now
	if req.DateEffective != nil {
		effective = *req.DateEffective
	}

	rate := domain.ExchangeRate{
		ExchangeRateID:   uuid.NewString(),
		FromCurrencyCode: from,
		ToCurrencyCode:   to,
		Rate:             req.Rate,
		DateEffective:    effective,
		IsActive:         true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.rateRepo.ActivateExchangeRate(ctx, rate); err != nil {
		logger.Error("Failed to activate exchange rate", slog.String("from", from), slog.String("to", to), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to activate exchange rate: %w", err)
	}

	// Any cached factor may have depended on the replaced rate.
	s.factorCache.Flush()

	logger.Info("Exchange rate activated", slog.String("rate_id", rate.ExchangeRateID), slog.String("from", from), slog.String("to", to), slog.String("rate", req.Rate.String()))
	return &rate, nil
}

// ActiveRatesMap returns {fromCurrency: {toCurrency: rate}} over currently
// active rates only.
func (s *exchangeRateService) ActiveRatesMap(ctx context.Context) (domain.RatesMap, error) {
	rates, err := s.rateRepo.ListActiveRates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active rates: %w", err)
	}

	ratesMap := make(domain.RatesMap)
	for _, r := range rates {
		inner, ok := ratesMap[r.FromCurrencyCode]
		if !ok {
			inner = make(map[string]decimal.Decimal)
			ratesMap[r.FromCurrencyCode] = inner
		}
		inner[r.ToCurrencyCode] = r.Rate
	}
	return ratesMap, nil
}

// ListExchangeRates returns one page of rate history, newest first.
func (s *exchangeRateService) ListExchangeRates(ctx context.Context, params dto.ListExchangeRatesParams) (*dto.ListExchangeRatesResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > maxRateHistoryPage {
		limit = maxRateHistoryPage
	}

	var afterEffective, afterCreated *time.Time
	if params.NextToken != nil && *params.NextToken != "" {
		effective, created, err := pagination.DecodeToken(*params.NextToken)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
		afterEffective, afterCreated = &effective, &created
	}

	// Fetch one extra row to learn whether another page exists.
	rates, err := s.rateRepo.ListExchangeRates(ctx, params.FromCurrencyCode, params.ToCurrencyCode, limit+1, afterEffective, afterCreated)
	if err != nil {
		return nil, fmt.Errorf("failed to list exchange rates: %w", err)
	}

	var nextToken *string
	if len(rates) > limit {
		rates = rates[:limit]
		last := rates[len(rates)-1]
		token := pagination.EncodeToken(last.DateEffective, last.CreatedAt)
		nextToken = &token
	}

	return &dto.ListExchangeRatesResponse{
		Rates:     dto.ToListExchangeRateResponse(rates),
		NextToken: nextToken,
	}, nil
}
