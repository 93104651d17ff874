package pgsql

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idafleet/fleet-ledger/internal/apperrors"
	"github.com/idafleet/fleet-ledger/internal/core/domain"
)

func TestInstrumentRepo_SaveInstrument(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPgxInstrumentRepository(mock)
	now := time.Now().UTC().Truncate(time.Microsecond)
	supply := now.AddDate(0, 0, -1)
	instrument := domain.Instrument{
		InstrumentID: uuid.NewString(),
		Type:         domain.FuelCredit,
		CurrencyCode: "RWF",
		Status:       domain.StatusPending,
		Counterparty: "Engen Rwanda",
		Quantity:     decPtr("500"),
		UnitPrice:    decPtr("1550"),
		SupplyDate:   &supply,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     "op-1",
			LastUpdatedAt: now,
			LastUpdatedBy: "op-1",
		},
	}

	mock.ExpectExec("INSERT INTO instruments").
		WithArgs(instrument.InstrumentID, string(domain.FuelCredit), "RWF", string(domain.StatusPending), "Engen Rwanda", "",
			(*decimal.Decimal)(nil), (*time.Time)(nil), (*int)(nil), (*time.Time)(nil), (*time.Time)(nil), (*time.Time)(nil),
			"", (*time.Time)(nil), instrument.Quantity, instrument.UnitPrice, &supply,
			now, "op-1", now, "op-1").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.SaveInstrument(context.Background(), instrument)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInstrumentRepo_FindInstrument_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPgxInstrumentRepository(mock)

	mock.ExpectQuery("SELECT .+ FROM instruments").
		WithArgs("ghost", string(domain.PersonalLoan)).
		WillReturnRows(pgxmock.NewRows(instrumentTestColumns()))

	result, err := repo.FindInstrument(context.Background(), domain.InstrumentRef{Type: domain.PersonalLoan, ID: "ghost"})
	assert.Nil(t, result)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInstrumentRepo_GetSnapshot_RecomputesFromPaymentSum(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPgxInstrumentRepository(mock)
	ref := domain.InstrumentRef{Type: domain.BankLoan, ID: "loan-1"}

	mock.ExpectQuery("SELECT .+ FROM instruments").
		WithArgs("loan-1", string(domain.BankLoan)).
		WillReturnRows(bankLoanRow("loan-1", "1000000", domain.StatusActive))
	mock.ExpectQuery("SELECT COALESCE").
		WithArgs("loan-1").
		WillReturnRows(pgxmock.NewRows([]string{"sum", "count"}).AddRow(decimal.RequireFromString("600000"), 3))

	snapshot, err := repo.GetSnapshot(context.Background(), ref)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("1000000").Equal(snapshot.Principal))
	assert.True(t, decimal.RequireFromString("400000").Equal(snapshot.Remaining))
	assert.Equal(t, 3, snapshot.PaymentCount)
	assert.Equal(t, domain.StatusActive, snapshot.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInstrumentRepo_ListInstruments(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPgxInstrumentRepository(mock)

	mock.ExpectQuery("SELECT .+ FROM instruments").
		WithArgs(string(domain.BankLoan)).
		WillReturnRows(bankLoanRow("loan-1", "1000000", domain.StatusActive))

	result, err := repo.ListInstruments(context.Background(), domain.BankLoan)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "loan-1", result[0].InstrumentID)
	assert.True(t, decimal.RequireFromString("1000000").Equal(result[0].Principal()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
