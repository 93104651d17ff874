package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/idafleet/fleet-ledger/internal/apperrors"
	"github.com/idafleet/fleet-ledger/internal/core/domain"
	portsrepo "github.com/idafleet/fleet-ledger/internal/core/ports/repositories"
	portssvc "github.com/idafleet/fleet-ledger/internal/core/ports/services"
	"github.com/idafleet/fleet-ledger/internal/dto"
	"github.com/idafleet/fleet-ledger/internal/middleware"
	"github.com/idafleet/fleet-ledger/internal/utils/dates"
	"github.com/idafleet/fleet-ledger/internal/utils/pagination"
)

const maxPaymentPage = 200

// reconciliationService is the public entry point of the debt ledger: create
// instruments, record payments, read snapshots and converted amounts. It owns
// no state of its own beyond delegating to the components below.
type reconciliationService struct {
	instrumentRepo portsrepo.InstrumentRepositoryFacade
	paymentRepo    portsrepo.PaymentRepositoryFacade
	rateSvc        portssvc.RateResolverSvc

	// txMaxRetries bounds transparent retries of concurrent-update conflicts
	// before one surfaces to the caller as a transient failure.
	txMaxRetries int
}

// NewReconciliationService creates the ledger orchestrator.
func NewReconciliationService(
	instrumentRepo portsrepo.InstrumentRepositoryFacade,
	paymentRepo portsrepo.PaymentRepositoryFacade,
	rateSvc portssvc.RateResolverSvc,
	txMaxRetries int,
) portssvc.ReconciliationSvcFacade {
	if txMaxRetries < 1 {
		txMaxRetries = 1
	}
	return &reconciliationService{
		instrumentRepo: instrumentRepo,
		paymentRepo:    paymentRepo,
		rateSvc:        rateSvc,
		txMaxRetries:   txMaxRetries,
	}
}

var _ portssvc.ReconciliationSvcFacade = (*reconciliationService)(nil)

// CreateInstrument validates the variant-specific fields, computes bank loan
// maturity once, and persists the instrument in its initial Pending status.
func (s *reconciliationService) CreateInstrument(ctx context.Context, req dto.CreateInstrumentRequest, creatorUserID string) (*domain.Instrument, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !req.Type.IsValid() {
		return nil, fmt.Errorf("%w: unknown instrument type %q", apperrors.ErrValidation, req.Type)
	}
	currency, err := normalizeCode(req.CurrencyCode)
	if err != nil {
		return nil, err
	}
	if req.Counterparty == "" {
		return nil, fmt.Errorf("%w: counterparty is required", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	instrument := domain.Instrument{
		InstrumentID: uuid.NewString(),
		Type:         req.Type,
		CurrencyCode: currency,
		Counterparty: req.Counterparty,
		Notes:        req.Notes,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}
	instrument.Status = instrument.InitialStatus()

	switch req.Type {
	case domain.BankLoan:
		if err := requirePositiveAmount(req.Amount, "amount"); err != nil {
			return nil, err
		}
		if req.StartDate == nil {
			return nil, fmt.Errorf("%w: startDate is required for bank loans", apperrors.ErrValidation)
		}
		if req.DurationMonths == nil || *req.DurationMonths <= 0 {
			return nil, fmt.Errorf("%w: durationMonths must be a positive number of months", apperrors.ErrValidation)
		}
		instrument.Amount = req.Amount
		instrument.StartDate = req.StartDate
		instrument.DurationMonths = req.DurationMonths
		// Maturity is fixed here, at creation, and never recomputed. Later
		// edits to start date or duration are an external concern and leave
		// the issued maturity untouched.
		maturity := dates.MaturityDate(*req.StartDate, *req.DurationMonths)
		instrument.MaturityDate = &maturity

	case domain.PersonalLoan:
		if err := requirePositiveAmount(req.Amount, "amount"); err != nil {
			return nil, err
		}
		if req.DueDate == nil {
			return nil, fmt.Errorf("%w: dueDate is required for personal loans", apperrors.ErrValidation)
		}
		instrument.Amount = req.Amount
		instrument.DueDate = req.DueDate
		instrument.DateTaken = req.DateTaken
		if instrument.DateTaken == nil {
			instrument.DateTaken = &now
		}

	case domain.AdvancePayment:
		if err := requirePositiveAmount(req.Amount, "amount"); err != nil {
			return nil, err
		}
		if req.Reason == "" {
			return nil, fmt.Errorf("%w: reason is required for advance payments", apperrors.ErrValidation)
		}
		instrument.Amount = req.Amount
		instrument.Reason = req.Reason
		instrument.DateIssued = req.DateIssued
		if instrument.DateIssued == nil {
			instrument.DateIssued = &now
		}

	case domain.FuelCredit:
		if err := requirePositiveAmount(req.Quantity, "quantity"); err != nil {
			return nil, err
		}
		if err := requirePositiveAmount(req.UnitPrice, "unitPrice"); err != nil {
			return nil, err
		}
		// Principal is quantity * unitPrice, derived on read and never stored.
		instrument.Quantity = req.Quantity
		instrument.UnitPrice = req.UnitPrice
		instrument.SupplyDate = req.SupplyDate
		if instrument.SupplyDate == nil {
			instrument.SupplyDate = &now
		}
	}

	if err := s.instrumentRepo.SaveInstrument(ctx, instrument); err != nil {
		logger.Error("Failed to save instrument", slog.String("type", string(req.Type)), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save instrument: %w", err)
	}

	logger.Info("Instrument created",
		slog.String("instrument_id", instrument.InstrumentID),
		slog.String("type", string(instrument.Type)),
		slog.String("principal", instrument.Principal().String()),
		slog.String("currency", instrument.CurrencyCode),
	)
	return &instrument, nil
}

func requirePositiveAmount(amount *decimal.Decimal, field string) error {
	if amount == nil || amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: %s must be positive", apperrors.ErrValidation, field)
	}
	return nil
}

// RecordPayment validates the draft, then persists the payment and the owning
// instrument's recomputed balance/status as one atomic unit. Conflicting
// concurrent writes to the same instrument are retried transparently up to the
// configured bound; validation errors are never retried.
func (s *reconciliationService) RecordPayment(ctx context.Context, req dto.RecordPaymentRequest, creatorUserID string) (*domain.InstrumentSnapshot, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	currency, err := normalizeCode(req.CurrencyCode)
	if err != nil {
		return nil, err
	}
	if !req.Method.IsValid() {
		return nil, fmt.Errorf("%w: unknown payment method %q", apperrors.ErrValidation, req.Method)
	}

	now := time.Now().UTC()
	date := now
	if req.Date != nil {
		date = *req.Date
	}

	payment := domain.Payment{
		PaymentID:        uuid.NewString(),
		BankLoanID:       req.BankLoanID,
		PersonalLoanID:   req.PersonalLoanID,
		AdvancePaymentID: req.AdvancePaymentID,
		FuelCreditID:     req.FuelCreditID,
		Amount:           req.Amount,
		CurrencyCode:     currency,
		Date:             date,
		Method:           req.Method,
		ReferenceNumber:  req.ReferenceNumber,
		TripID:           req.TripID,
		CreatedAt:        now,
		CreatedBy:        creatorUserID,
	}

	// All caller-input checks happen before any write.
	if err := payment.Validate(); err != nil {
		return nil, err
	}
	ref, _ := payment.InstrumentRef()

	var snapshot *domain.InstrumentSnapshot
	var lastErr error
	for attempt := 1; attempt <= s.txMaxRetries; attempt++ {
		snapshot, lastErr = s.paymentRepo.SavePaymentAndReconcile(ctx, payment)
		if lastErr == nil {
			break
		}
		if !errors.Is(lastErr, apperrors.ErrConflict) {
			return nil, lastErr
		}
		logger.Warn("Concurrent update conflict recording payment, retrying",
			slog.String("payment_id", payment.PaymentID),
			slog.String("instrument_id", ref.ID),
			slog.Int("attempt", attempt),
		)
	}
	if lastErr != nil {
		logger.Error("Payment failed after retries", slog.String("payment_id", payment.PaymentID), slog.Int("attempts", s.txMaxRetries))
		return nil, lastErr
	}

	logger.Info("Payment recorded",
		slog.String("payment_id", payment.PaymentID),
		slog.String("instrument_id", snapshot.InstrumentID),
		slog.String("amount", payment.Amount.String()),
		slog.String("remaining", snapshot.Remaining.String()),
		slog.String("status", string(snapshot.Status)),
	)
	return snapshot, nil
}

// GetSnapshot returns the derived balance view, always recomputed from the
// full payment history.
func (s *reconciliationService) GetSnapshot(ctx context.Context, ref domain.InstrumentRef) (*domain.InstrumentSnapshot, error) {
	if !ref.Type.IsValid() {
		return nil, fmt.Errorf("%w: unknown instrument type %q", apperrors.ErrValidation, ref.Type)
	}
	snapshot, err := s.instrumentRepo.GetSnapshot(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot for instrument %s: %w", ref.ID, err)
	}
	return snapshot, nil
}

// GetInstrument returns the full instrument record.
func (s *reconciliationService) GetInstrument(ctx context.Context, ref domain.InstrumentRef) (*domain.Instrument, error) {
	if !ref.Type.IsValid() {
		return nil, fmt.Errorf("%w: unknown instrument type %q", apperrors.ErrValidation, ref.Type)
	}
	instrument, err := s.instrumentRepo.FindInstrument(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to find instrument %s: %w", ref.ID, err)
	}
	return instrument, nil
}

// ListInstruments returns instruments of one variant, newest first.
func (s *reconciliationService) ListInstruments(ctx context.Context, instrumentType domain.InstrumentType) ([]domain.Instrument, error) {
	if !instrumentType.IsValid() {
		return nil, fmt.Errorf("%w: unknown instrument type %q", apperrors.ErrValidation, instrumentType)
	}
	instruments, err := s.instrumentRepo.ListInstruments(ctx, instrumentType)
	if err != nil {
		return nil, fmt.Errorf("failed to list instruments: %w", err)
	}
	if instruments == nil {
		instruments = []domain.Instrument{}
	}
	return instruments, nil
}

// ListPayments returns one page of an instrument's payments, newest first.
func (s *reconciliationService) ListPayments(ctx context.Context, ref domain.InstrumentRef, params dto.ListPaymentsParams) (*dto.ListPaymentsResponse, error) {
	if !ref.Type.IsValid() {
		return nil, fmt.Errorf("%w: unknown instrument type %q", apperrors.ErrValidation, ref.Type)
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > maxPaymentPage {
		limit = maxPaymentPage
	}

	var afterDate, afterCreated *time.Time
	if params.NextToken != nil && *params.NextToken != "" {
		date, created, err := pagination.DecodeToken(*params.NextToken)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
		afterDate, afterCreated = &date, &created
	}

	payments, err := s.paymentRepo.ListPayments(ctx, ref, limit+1, afterDate, afterCreated)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments for instrument %s: %w", ref.ID, err)
	}

	var nextToken *string
	if len(payments) > limit {
		payments = payments[:limit]
		last := payments[len(payments)-1]
		token := pagination.EncodeToken(last.Date, last.CreatedAt)
		nextToken = &token
	}

	responses := make([]dto.PaymentResponse, len(payments))
	for i := range payments {
		responses[i] = dto.ToPaymentResponse(&payments[i])
	}
	return &dto.ListPaymentsResponse{Payments: responses, NextToken: nextToken}, nil
}

// GetConvertedAmount converts an amount between currencies. ErrRateNotFound
// propagates to the caller untouched; the core never substitutes the original
// amount as if conversion had succeeded.
func (s *reconciliationService) GetConvertedAmount(ctx context.Context, amount decimal.Decimal, fromCurrencyCode, toCurrencyCode string) (decimal.Decimal, error) {
	return s.rateSvc.Convert(ctx, amount, fromCurrencyCode, toCurrencyCode)
}

// ConvertOrOriginal is the one sanctioned fallback path: a presentation caller
// that prefers showing the unconverted amount over failing opts in here, and
// the degradation is logged rather than silently swallowed.
func (s *reconciliationService) ConvertOrOriginal(ctx context.Context, amount decimal.Decimal, fromCurrencyCode, toCurrencyCode string) (decimal.Decimal, bool, error) {
	converted, err := s.rateSvc.Convert(ctx, amount, fromCurrencyCode, toCurrencyCode)
	if err == nil {
		return converted, false, nil
	}
	if errors.Is(err, apperrors.ErrRateNotFound) {
		middleware.GetLoggerFromCtx(ctx).Warn("Degraded conversion: no rate path, returning original amount",
			slog.String("from", fromCurrencyCode),
			slog.String("to", toCurrencyCode),
			slog.String("amount", amount.String()),
		)
		return amount, true, nil
	}
	return decimal.Zero, false, err
}
