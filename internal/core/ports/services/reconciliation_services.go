package services

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/idafleet/fleet-ledger/internal/core/domain"
	"github.com/idafleet/fleet-ledger/internal/dto"
)

// ReconciliationReaderSvc defines read operations over instruments and payments.
type ReconciliationReaderSvc interface {
	// GetSnapshot returns the derived balance view for one instrument,
	// recomputed from the full payment history.
	GetSnapshot(ctx context.Context, ref domain.InstrumentRef) (*domain.InstrumentSnapshot, error)

	// GetInstrument returns the full instrument record.
	GetInstrument(ctx context.Context, ref domain.InstrumentRef) (*domain.Instrument, error)

	// ListInstruments returns instruments of one variant, newest first.
	ListInstruments(ctx context.Context, instrumentType domain.InstrumentType) ([]domain.Instrument, error)

	// ListPayments returns the payment page for one instrument.
	ListPayments(ctx context.Context, ref domain.InstrumentRef, params dto.ListPaymentsParams) (*dto.ListPaymentsResponse, error)

	// GetConvertedAmount converts an amount between currencies via the rate
	// resolver, propagating apperrors.ErrRateNotFound.
	GetConvertedAmount(ctx context.Context, amount decimal.Decimal, fromCurrencyCode, toCurrencyCode string) (decimal.Decimal, error)

	// ConvertOrOriginal is the explicit degraded-conversion decision for
	// presentation callers: on ErrRateNotFound it logs the degradation and
	// returns the original amount with degraded=true. Any other error still
	// fails.
	ConvertOrOriginal(ctx context.Context, amount decimal.Decimal, fromCurrencyCode, toCurrencyCode string) (converted decimal.Decimal, degraded bool, err error)
}

// ReconciliationWriterSvc defines the write entry points the CRUD layer calls.
type ReconciliationWriterSvc interface {
	// CreateInstrument validates variant fields, computes bank loan maturity,
	// and persists the instrument in its initial status.
	CreateInstrument(ctx context.Context, req dto.CreateInstrumentRequest, creatorUserID string) (*domain.Instrument, error)

	// RecordPayment validates the draft, then persists the payment and the
	// owning instrument's recomputed status as one atomic unit, retrying
	// bounded times on concurrent-update conflicts.
	RecordPayment(ctx context.Context, req dto.RecordPaymentRequest, creatorUserID string) (*domain.InstrumentSnapshot, error)
}

// ReconciliationSvcFacade is the only surface the excluded CRUD layer is
// permitted to call.
type ReconciliationSvcFacade interface {
	ReconciliationReaderSvc
	ReconciliationWriterSvc
}
