package pgsql

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idafleet/fleet-ledger/internal/apperrors"
	"github.com/idafleet/fleet-ledger/internal/core/domain"
)

func newTestRate(from, to, rate string) domain.ExchangeRate {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return domain.ExchangeRate{
		ExchangeRateID:   uuid.NewString(),
		FromCurrencyCode: from,
		ToCurrencyCode:   to,
		Rate:             decimal.RequireFromString(rate),
		DateEffective:    now,
		IsActive:         true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     "op-1",
			LastUpdatedAt: now,
			LastUpdatedBy: "op-1",
		},
	}
}

func exchangeRateTestColumns() []string {
	return []string{
		"exchange_rate_id", "from_currency_code", "to_currency_code", "rate", "date_effective", "is_active",
		"created_at", "created_by", "last_updated_at", "last_updated_by",
	}
}

func exchangeRateRow(r domain.ExchangeRate) *pgxmock.Rows {
	return pgxmock.NewRows(exchangeRateTestColumns()).AddRow(
		r.ExchangeRateID, r.FromCurrencyCode, r.ToCurrencyCode, r.Rate, r.DateEffective, r.IsActive,
		r.CreatedAt, r.CreatedBy, r.LastUpdatedAt, r.LastUpdatedBy,
	)
}

func TestExchangeRateRepo_ActivateExchangeRate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPgxExchangeRateRepository(mock)
	rate := newTestRate("USD", "RWF", "1350")

	mock.ExpectBegin()
	mock.ExpectExec("SELECT pg_advisory_xact_lock").
		WithArgs("USD->RWF").
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectExec("UPDATE exchange_rates").
		WithArgs(rate.LastUpdatedAt, rate.LastUpdatedBy, "USD", "RWF").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("INSERT INTO exchange_rates").
		WithArgs(rate.ExchangeRateID, "USD", "RWF", rate.Rate, rate.DateEffective, true,
			rate.CreatedAt, rate.CreatedBy, rate.LastUpdatedAt, rate.LastUpdatedBy).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err = repo.ActivateExchangeRate(context.Background(), rate)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExchangeRateRepo_ActivateExchangeRate_SamePair(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPgxExchangeRateRepository(mock)
	rate := newTestRate("USD", "USD", "1")

	err = repo.ActivateExchangeRate(context.Background(), rate)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExchangeRateRepo_ActivateExchangeRate_UniqueViolation(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPgxExchangeRateRepository(mock)
	rate := newTestRate("USD", "RWF", "1350")

	mock.ExpectBegin()
	mock.ExpectExec("SELECT pg_advisory_xact_lock").
		WithArgs("USD->RWF").
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectExec("UPDATE exchange_rates").
		WithArgs(rate.LastUpdatedAt, rate.LastUpdatedBy, "USD", "RWF").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("INSERT INTO exchange_rates").
		WithArgs(rate.ExchangeRateID, "USD", "RWF", rate.Rate, rate.DateEffective, true,
			rate.CreatedAt, rate.CreatedBy, rate.LastUpdatedAt, rate.LastUpdatedBy).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectRollback()

	err = repo.ActivateExchangeRate(context.Background(), rate)
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExchangeRateRepo_FindActiveRate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPgxExchangeRateRepository(mock)
	rate := newTestRate("USD", "RWF", "1300")

	mock.ExpectQuery("SELECT .+ FROM exchange_rates").
		WithArgs("USD", "RWF").
		WillReturnRows(exchangeRateRow(rate))

	result, err := repo.FindActiveRate(context.Background(), "usd", "rwf")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, rate.ExchangeRateID, result.ExchangeRateID)
	assert.True(t, rate.Rate.Equal(result.Rate))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExchangeRateRepo_FindActiveRate_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPgxExchangeRateRepository(mock)

	mock.ExpectQuery("SELECT .+ FROM exchange_rates").
		WithArgs("GBP", "KES").
		WillReturnRows(pgxmock.NewRows(exchangeRateTestColumns()))

	result, err := repo.FindActiveRate(context.Background(), "GBP", "KES")
	assert.Nil(t, result)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExchangeRateRepo_ListActiveRates(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPgxExchangeRateRepository(mock)
	usdRwf := newTestRate("USD", "RWF", "1300")
	usdEur := newTestRate("USD", "EUR", "0.91")

	rows := pgxmock.NewRows(exchangeRateTestColumns()).
		AddRow(usdEur.ExchangeRateID, usdEur.FromCurrencyCode, usdEur.ToCurrencyCode, usdEur.Rate, usdEur.DateEffective, usdEur.IsActive,
			usdEur.CreatedAt, usdEur.CreatedBy, usdEur.LastUpdatedAt, usdEur.LastUpdatedBy).
		AddRow(usdRwf.ExchangeRateID, usdRwf.FromCurrencyCode, usdRwf.ToCurrencyCode, usdRwf.Rate, usdRwf.DateEffective, usdRwf.IsActive,
			usdRwf.CreatedAt, usdRwf.CreatedBy, usdRwf.LastUpdatedAt, usdRwf.LastUpdatedBy)

	mock.ExpectQuery("SELECT .+ FROM exchange_rates").
		WillReturnRows(rows)

	result, err := repo.ListActiveRates(context.Background())
	require.NoError(t, err)
	assert.Len(t, result, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExchangeRateRepo_ListExchangeRates_PairFilterAndKeyset(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPgxExchangeRateRepository(mock)
	rate := newTestRate("USD", "RWF", "1300")
	from, to := "usd", "rwf"
	afterEffective := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	afterCreated := afterEffective

	mock.ExpectQuery("SELECT .+ FROM exchange_rates WHERE from_currency_code").
		WithArgs("USD", "RWF", afterEffective, afterCreated, 51).
		WillReturnRows(exchangeRateRow(rate))

	result, err := repo.ListExchangeRates(context.Background(), &from, &to, 51, &afterEffective, &afterCreated)
	require.NoError(t, err)
	assert.Len(t, result, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
