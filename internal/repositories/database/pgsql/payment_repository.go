package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/idafleet/fleet-ledger/internal/apperrors"
	"github.com/idafleet/fleet-ledger/internal/core/domain"
	"github.com/idafleet/fleet-ledger/internal/middleware"
	"github.com/idafleet/fleet-ledger/internal/models"
	"github.com/idafleet/fleet-ledger/internal/utils/mapping"
)

const paymentColumns = `payment_id, bank_loan_id, personal_loan_id, advance_payment_id, fuel_credit_id,
		amount, currency_code, payment_date, payment_method, reference_number, trip_id,
		created_at, created_by`

// PgxPaymentRepository implements payment persistence using pgx.
type PgxPaymentRepository struct {
	BaseRepository
}

// NewPgxPaymentRepository creates a new PgxPaymentRepository.
func NewPgxPaymentRepository(db PgxPool) *PgxPaymentRepository {
	return &PgxPaymentRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

// SavePaymentAndReconcile inserts the payment and recalculates the owning
// instrument's balance and status inside one transaction. The instrument row
// is locked for the duration, so concurrent payments against the same
// instrument serialize and each recompute sees the full history.
func (r *PgxPaymentRepository) SavePaymentAndReconcile(ctx context.Context, payment domain.Payment) (*domain.InstrumentSnapshot, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	ref, err := payment.InstrumentRef()
	if err != nil {
		return nil, err
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	instrument, err := lockInstrument(ctx, tx, ref)
	if err != nil {
		return nil, err
	}

	m := mapping.ToModelPayment(payment)
	_, err = tx.Exec(ctx, `
		INSERT INTO payments (
			payment_id, bank_loan_id, personal_loan_id, advance_payment_id, fuel_credit_id,
			amount, currency_code, payment_date, payment_method, reference_number, trip_id,
			created_at, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		m.PaymentID, m.BankLoanID, m.PersonalLoanID, m.AdvancePaymentID, m.FuelCreditID,
		m.Amount, m.CurrencyCode, m.Date, m.Method, m.ReferenceNumber, m.TripID,
		m.CreatedAt, m.CreatedBy,
	)
	if err != nil {
		return nil, mapConcurrencyError(err, "failed to insert payment")
	}

	var totalPaid decimal.Decimal
	var paymentCount int
	err = tx.QueryRow(ctx, instrumentPaidQuery, ref.ID).Scan(&totalPaid, &paymentCount)
	if err != nil {
		return nil, mapConcurrencyError(err, "failed to aggregate payments")
	}

	remaining := instrument.RemainingFromPaid(totalPaid)
	newStatus := instrument.NextStatus(remaining)
	if newStatus != instrument.Status {
		_, err = tx.Exec(ctx, `
			UPDATE instruments
			SET status = $1, last_updated_at = $2, last_updated_by = $3
			WHERE instrument_id = $4 AND instrument_type = $5`,
			string(newStatus), time.Now(), payment.CreatedBy, ref.ID, string(ref.Type),
		)
		if err != nil {
			return nil, mapConcurrencyError(err, "failed to update instrument status")
		}
		logger.Info("Instrument status transitioned",
			"instrumentID", ref.ID,
			"from", string(instrument.Status),
			"to", string(newStatus),
		)
		instrument.Status = newStatus
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}

	return snapshotOf(instrument, totalPaid, paymentCount), nil
}

// lockInstrument fetches the instrument row under FOR UPDATE within tx.
func lockInstrument(ctx context.Context, tx pgx.Tx, ref domain.InstrumentRef) (*domain.Instrument, error) {
	query := `
		SELECT ` + instrumentColumns + `
		FROM instruments
		WHERE instrument_id = $1 AND instrument_type = $2
		FOR UPDATE;
	`

	m, err := scanInstrumentRow(tx.QueryRow(ctx, query, ref.ID, string(ref.Type)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("%s %s not found", ref.Type, ref.ID))
		}
		return nil, mapConcurrencyError(err, "failed to lock instrument")
	}

	instrument := mapping.ToDomainInstrument(*m)
	return &instrument, nil
}

// ListPayments retrieves a page of payments for an instrument, newest first.
// Keyset continuation is on (payment_date, created_at).
func (r *PgxPaymentRepository) ListPayments(ctx context.Context, ref domain.InstrumentRef, limit int, afterDate, afterCreated *time.Time) ([]domain.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE COALESCE(bank_loan_id, personal_loan_id, advance_payment_id, fuel_credit_id) = $1`
	args := []any{ref.ID}

	if afterDate != nil && afterCreated != nil {
		query += fmt.Sprintf(" AND (payment_date, created_at) < ($%d, $%d)", len(args)+1, len(args)+2)
		args = append(args, *afterDate, *afterCreated)
	}
	query += fmt.Sprintf(" ORDER BY payment_date DESC, created_at DESC LIMIT $%d;", len(args)+1)
	args = append(args, limit)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list payments", err)
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		var m models.Payment
		err := rows.Scan(
			&m.PaymentID, &m.BankLoanID, &m.PersonalLoanID, &m.AdvancePaymentID, &m.FuelCreditID,
			&m.Amount, &m.CurrencyCode, &m.Date, &m.Method, &m.ReferenceNumber, &m.TripID,
			&m.CreatedAt, &m.CreatedBy,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan payment", err)
		}
		payments = append(payments, mapping.ToDomainPayment(m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to read payments", err)
	}
	return payments, nil
}
