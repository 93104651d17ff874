package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/idafleet/fleet-ledger/internal/apperrors"
	"github.com/idafleet/fleet-ledger/internal/core/domain"
	portssvc "github.com/idafleet/fleet-ledger/internal/core/ports/services"
	"github.com/idafleet/fleet-ledger/internal/core/services"
	"github.com/idafleet/fleet-ledger/internal/dto"
)

// --- Mock ExchangeRateRepository ---
type MockExchangeRateRepository struct {
	mock.Mock
}

func (m *MockExchangeRateRepository) FindActiveRate(ctx context.Context, fromCurrencyCode, toCurrencyCode string) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, fromCurrencyCode, toCurrencyCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRate), args.Error(1)
}

func (m *MockExchangeRateRepository) ListActiveRates(ctx context.Context) ([]domain.ExchangeRate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExchangeRate), args.Error(1)
}

func (m *MockExchangeRateRepository) ListExchangeRates(ctx context.Context, fromCurrencyCode, toCurrencyCode *string, limit int, afterEffective, afterCreated *time.Time) ([]domain.ExchangeRate, error) {
	args := m.Called(ctx, fromCurrencyCode, toCurrencyCode, limit, afterEffective, afterCreated)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExchangeRate), args.Error(1)
}

func (m *MockExchangeRateRepository) ActivateExchangeRate(ctx context.Context, rate domain.ExchangeRate) error {
	args := m.Called(ctx, rate)
	return args.Error(0)
}

func activeRate(from, to, rate string) *domain.ExchangeRate {
	return &domain.ExchangeRate{
		ExchangeRateID:   uuid.NewString(),
		FromCurrencyCode: from,
		ToCurrencyCode:   to,
		Rate:             decimal.RequireFromString(rate),
		DateEffective:    time.Now().UTC(),
		IsActive:         true,
	}
}

// --- Test Suite ---
type ExchangeRateServiceTestSuite struct {
	suite.Suite
	mockRateRepo *MockExchangeRateRepository
	service      portssvc.ExchangeRateSvcFacade
}

func (suite *ExchangeRateServiceTestSuite) SetupTest() {
	suite.mockRateRepo = new(MockExchangeRateRepository)
	suite.service = services.NewExchangeRateService(suite.mockRateRepo, "USD")
}

// --- Resolve ---

func (suite *ExchangeRateServiceTestSuite) TestResolve_SameCurrency() {
	ctx := context.Background()

	factor, err := suite.service.Resolve(ctx, "RWF", "RWF")

	suite.Require().NoError(err)
	suite.True(decimal.NewFromInt(1).Equal(factor))
	suite.mockRateRepo.AssertNotCalled(suite.T(), "FindActiveRate")
}

func (suite *ExchangeRateServiceTestSuite) TestResolve_DirectRate() {
	ctx := context.Background()
	suite.mockRateRepo.On("FindActiveRate", ctx, "USD", "RWF").Return(activeRate("USD", "RWF", "1300"), nil).Once()

	factor, err := suite.service.Resolve(ctx, "USD", "RWF")

	suite.Require().NoError(err)
	suite.True(decimal.RequireFromString("1300").Equal(factor))
	suite.mockRateRepo.AssertExpectations(suite.T())
}

func (suite *ExchangeRateServiceTestSuite) TestResolve_InverseRate() {
	ctx := context.Background()
	suite.mockRateRepo.On("FindActiveRate", ctx, "RWF", "USD").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRateRepo.On("FindActiveRate", ctx, "USD", "RWF").Return(activeRate("USD", "RWF", "1300"), nil).Once()

	factor, err := suite.service.Resolve(ctx, "RWF", "USD")

	suite.Require().NoError(err)
	expected := decimal.NewFromInt(1).Div(decimal.RequireFromString("1300"))
	suite.True(expected.Equal(factor), "expected %s, got %s", expected, factor)
	suite.mockRateRepo.AssertExpectations(suite.T())
}

func (suite *ExchangeRateServiceTestSuite) TestResolve_TransitiveThroughBase() {
	ctx := context.Background()
	// No direct or inverse RWF<->EUR; only legs through USD exist.
	suite.mockRateRepo.On("FindActiveRate", ctx, "RWF", "EUR").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRateRepo.On("FindActiveRate", ctx, "EUR", "RWF").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRateRepo.On("FindActiveRate", ctx, "RWF", "USD").Return(activeRate("RWF", "USD", "0.000769"), nil).Once()
	suite.mockRateRepo.On("FindActiveRate", ctx, "USD", "EUR").Return(activeRate("USD", "EUR", "0.91"), nil).Once()

	factor, err := suite.service.Resolve(ctx, "RWF", "EUR")

	suite.Require().NoError(err)
	expected := decimal.RequireFromString("0.000769").Mul(decimal.RequireFromString("0.91"))
	suite.True(expected.Equal(factor), "expected %s, got %s", expected, factor)
	suite.mockRateRepo.AssertExpectations(suite.T())
}

func (suite *ExchangeRateServiceTestSuite) TestResolve_NoPath() {
	ctx := context.Background()
	suite.mockRateRepo.On("FindActiveRate", ctx, mock.Anything, mock.Anything).Return(nil, apperrors.ErrNotFound)

	_, err := suite.service.Resolve(ctx, "GBP", "KES")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrRateNotFound)
}

func (suite *ExchangeRateServiceTestSuite) TestResolve_NormalizesCase() {
	ctx := context.Background()
	suite.mockRateRepo.On("FindActiveRate", ctx, "USD", "RWF").Return(activeRate("USD", "RWF", "1300"), nil).Once()

	factor, err := suite.service.Resolve(ctx, "usd", " rwf ")

	suite.Require().NoError(err)
	suite.True(decimal.RequireFromString("1300").Equal(factor))
}

func (suite *ExchangeRateServiceTestSuite) TestResolve_InvalidCode() {
	ctx := context.Background()

	_, err := suite.service.Resolve(ctx, "US", "RWF")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRateRepo.AssertNotCalled(suite.T(), "FindActiveRate")
}

func (suite *ExchangeRateServiceTestSuite) TestResolve_CachesFactor() {
	ctx := context.Background()
	suite.mockRateRepo.On("FindActiveRate", ctx, "USD", "RWF").Return(activeRate("USD", "RWF", "1300"), nil).Once()

	_, err := suite.service.Resolve(ctx, "USD", "RWF")
	suite.Require().NoError(err)

	// Second call must come from the cache; the mock only allows one hit.
	factor, err := suite.service.Resolve(ctx, "USD", "RWF")
	suite.Require().NoError(err)
	suite.True(decimal.RequireFromString("1300").Equal(factor))
	suite.mockRateRepo.AssertExpectations(suite.T())
}

// --- Convert ---

func (suite *ExchangeRateServiceTestSuite) TestConvert_MultipliesByFactor() {
	ctx := context.Background()
	suite.mockRateRepo.On("FindActiveRate", ctx, "USD", "RWF").Return(activeRate("USD", "RWF", "1300"), nil).Once()

	converted, err := suite.service.Convert(ctx, decimal.RequireFromString("250.50"), "USD", "RWF")

	suite.Require().NoError(err)
	suite.True(decimal.RequireFromString("325650").Equal(converted), "got %s", converted)
}

func (suite *ExchangeRateServiceTestSuite) TestConvert_IdentityPassesThrough() {
	ctx := context.Background()
	amount := decimal.RequireFromString("123.456")

	converted, err := suite.service.Convert(ctx, amount, "EUR", "EUR")

	suite.Require().NoError(err)
	suite.True(amount.Equal(converted))
	suite.mockRateRepo.AssertNotCalled(suite.T(), "FindActiveRate")
}

func (suite *ExchangeRateServiceTestSuite) TestConvert_NoPathPropagates() {
	ctx := context.Background()
	suite.mockRateRepo.On("FindActiveRate", ctx, mock.Anything, mock.Anything).Return(nil, apperrors.ErrNotFound)

	_, err := suite.service.Convert(ctx, decimal.NewFromInt(100), "GBP", "KES")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrRateNotFound)
}

// --- SetRate ---

func (suite *ExchangeRateServiceTestSuite) TestSetRate_Success() {
	ctx := context.Background()
	creatorUserID := uuid.NewString()
	req := dto.SetExchangeRateRequest{
		FromCurrencyCode: "USD",
		ToCurrencyCode:   "RWF",
		Rate:             decimal.RequireFromString("1350"),
	}

	suite.mockRateRepo.On("ActivateExchangeRate", ctx, mock.AnythingOfType("domain.ExchangeRate")).Return(nil).Once()

	rate, err := suite.service.SetRate(ctx, req, creatorUserID)

	suite.Require().NoError(err)
	suite.Require().NotNil(rate)
	suite.NotEmpty(rate.ExchangeRateID)
	suite.Equal("USD", rate.FromCurrencyCode)
	suite.Equal("RWF", rate.ToCurrencyCode)
	suite.True(req.Rate.Equal(rate.Rate))
	suite.True(rate.IsActive)
	suite.Equal(creatorUserID, rate.CreatedBy)
	suite.mockRateRepo.AssertExpectations(suite.T())
}

func (suite *ExchangeRateServiceTestSuite) TestSetRate_InvalidRate() {
	ctx := context.Background()
	req := dto.SetExchangeRateRequest{
		FromCurrencyCode: "USD",
		ToCurrencyCode:   "RWF",
		Rate:             decimal.Zero,
	}

	rate, err := suite.service.SetRate(ctx, req, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(rate)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Contains(err.Error(), "must be positive")
	suite.mockRateRepo.AssertNotCalled(suite.T(), "ActivateExchangeRate")
}

func (suite *ExchangeRateServiceTestSuite) TestSetRate_SameCurrency() {
	ctx := context.Background()
	req := dto.SetExchangeRateRequest{
		FromCurrencyCode: "USD",
		ToCurrencyCode:   "USD",
		Rate:             decimal.NewFromInt(1),
	}

	rate, err := suite.service.SetRate(ctx, req, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(rate)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Contains(err.Error(), "cannot be the same")
}

func (suite *ExchangeRateServiceTestSuite) TestSetRate_InvalidatesCachedFactor() {
	ctx := context.Background()
	suite.mockRateRepo.On("FindActiveRate", ctx, "USD", "RWF").Return(activeRate("USD", "RWF", "1300"), nil).Once()

	factor, err := suite.service.Resolve(ctx, "USD", "RWF")
	suite.Require().NoError(err)
	suite.True(decimal.RequireFromString("1300").Equal(factor))

	suite.mockRateRepo.On("ActivateExchangeRate", ctx, mock.AnythingOfType("domain.ExchangeRate")).Return(nil).Once()
	_, err = suite.service.SetRate(ctx, dto.SetExchangeRateRequest{
		FromCurrencyCode: "USD",
		ToCurrencyCode:   "RWF",
		Rate:             decimal.RequireFromString("1350"),
	}, uuid.NewString())
	suite.Require().NoError(err)

	// Conversions issued after activation must see the new rate, not the
	// previously cached factor.
	suite.mockRateRepo.On("FindActiveRate", ctx, "USD", "RWF").Return(activeRate("USD", "RWF", "1350"), nil).Once()
	factor, err = suite.service.Resolve(ctx, "USD", "RWF")
	suite.Require().NoError(err)
	suite.True(decimal.RequireFromString("1350").Equal(factor), "got %s", factor)
	suite.mockRateRepo.AssertExpectations(suite.T())
}

// --- ActiveRatesMap ---

func (suite *ExchangeRateServiceTestSuite) TestActiveRatesMap_GroupsByFromCurrency() {
	ctx := context.Background()
	suite.mockRateRepo.On("ListActiveRates", ctx).Return([]domain.ExchangeRate{
		*activeRate("USD", "RWF", "1300"),
		*activeRate("USD", "EUR", "0.91"),
		*activeRate("RWF", "USD", "0.000769"),
	}, nil).Once()

	ratesMap, err := suite.service.ActiveRatesMap(ctx)

	suite.Require().NoError(err)
	suite.Len(ratesMap, 2)
	suite.Len(ratesMap["USD"], 2)
	suite.True(decimal.RequireFromString("1300").Equal(ratesMap["USD"]["RWF"]))
	suite.True(decimal.RequireFromString("0.000769").Equal(ratesMap["RWF"]["USD"]))
}

// --- ListExchangeRates ---

func (suite *ExchangeRateServiceTestSuite) TestListExchangeRates_PagesWithToken() {
	ctx := context.Background()
	history := make([]domain.ExchangeRate, 3)
	for i := range history {
		r := activeRate("USD", "RWF", "1300")
		r.DateEffective = time.Date(2026, 8, 10-i, 0, 0, 0, 0, time.UTC)
		r.CreatedAt = r.DateEffective
		history[i] = *r
	}

	// limit 2 requests 3 rows; 3 returned means another page exists.
	suite.mockRateRepo.On("ListExchangeRates", ctx, (*string)(nil), (*string)(nil), 3, (*time.Time)(nil), (*time.Time)(nil)).
		Return(history, nil).Once()

	page, err := suite.service.ListExchangeRates(ctx, dto.ListExchangeRatesParams{Limit: 2})

	suite.Require().NoError(err)
	suite.Len(page.Rates, 2)
	suite.Require().NotNil(page.NextToken)
	suite.mockRateRepo.AssertExpectations(suite.T())
}

func (suite *ExchangeRateServiceTestSuite) TestListExchangeRates_LastPageHasNoToken() {
	ctx := context.Background()
	suite.mockRateRepo.On("ListExchangeRates", ctx, (*string)(nil), (*string)(nil), 51, (*time.Time)(nil), (*time.Time)(nil)).
		Return([]domain.ExchangeRate{*activeRate("USD", "RWF", "1300")}, nil).Once()

	page, err := suite.service.ListExchangeRates(ctx, dto.ListExchangeRatesParams{})

	suite.Require().NoError(err)
	suite.Len(page.Rates, 1)
	suite.Nil(page.NextToken)
}

func TestExchangeRateServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ExchangeRateServiceTestSuite))
}
