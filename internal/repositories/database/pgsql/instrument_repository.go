package pgsql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/idafleet/fleet-ledger/internal/apperrors"
	"github.com/idafleet/fleet-ledger/internal/core/domain"
	"github.com/idafleet/fleet-ledger/internal/models"
	"github.com/idafleet/fleet-ledger/internal/utils/mapping"
)

const instrumentColumns = `instrument_id, instrument_type, currency_code, status, counterparty, notes,
		amount, start_date, duration_months, maturity_date, date_taken, due_date,
		reason, date_issued, quantity, unit_price, supply_date,
		created_at, created_by, last_updated_at, last_updated_by`

// instrumentPaidQuery aggregates the full payment history for one instrument.
// The four reference columns collapse to the single owning instrument; summing
// here, not from a cached column, keeps the payment list the source of truth.
const instrumentPaidQuery = `
	SELECT COALESCE(SUM(amount), 0), COUNT(*)
	FROM payments
	WHERE COALESCE(bank_loan_id, personal_loan_id, advance_payment_id, fuel_credit_id) = $1;
`

// PgxInstrumentRepository implements instrument persistence using pgx.
type PgxInstrumentRepository struct {
	BaseRepository
}

// NewPgxInstrumentRepository creates a new PgxInstrumentRepository.
func NewPgxInstrumentRepository(db PgxPool) *PgxInstrumentRepository {
	return &PgxInstrumentRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

// SaveInstrument persists a newly created instrument.
func (r *PgxInstrumentRepository) SaveInstrument(ctx context.Context, instrument domain.Instrument) error {
	m := mapping.ToModelInstrument(instrument)

	_, err := r.Pool.Exec(ctx, `
		INSERT INTO instruments (
			instrument_id, instrument_type, currency_code, status, counterparty, notes,
			amount, start_date, duration_months, maturity_date, date_taken, due_date,
			reason, date_issued, quantity, unit_price, supply_date,
			created_at, created_by, last_updated_at, last_updated_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`,
		m.InstrumentID, m.Type, m.CurrencyCode, m.Status, m.Counterparty, m.Notes,
		m.Amount, m.StartDate, m.DurationMonths, m.MaturityDate, m.DateTaken, m.DueDate,
		m.Reason, m.DateIssued, m.Quantity, m.UnitPrice, m.SupplyDate,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return mapConcurrencyError(err, "failed to insert instrument")
	}
	return nil
}

// FindInstrument retrieves one instrument by variant and ID.
func (r *PgxInstrumentRepository) FindInstrument(ctx context.Context, ref domain.InstrumentRef) (*domain.Instrument, error) {
	query := `
		SELECT ` + instrumentColumns + `
		FROM instruments
		WHERE instrument_id = $1 AND instrument_type = $2;
	`

	m, err := scanInstrumentRow(r.Pool.QueryRow(ctx, query, ref.ID, string(ref.Type)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("instrument " + ref.ID + " not found")
		}
		return nil, apperrors.NewAppError(500, "failed to find instrument", err)
	}

	instrument := mapping.ToDomainInstrument(*m)
	return &instrument, nil
}

// ListInstruments retrieves instruments of one variant, newest first.
func (r *PgxInstrumentRepository) ListInstruments(ctx context.Context, instrumentType domain.InstrumentType) ([]domain.Instrument, error) {
	query := `
		SELECT ` + instrumentColumns + `
		FROM instruments
		WHERE instrument_type = $1
		ORDER BY created_at DESC;
	`

	rows, err := r.Pool.Query(ctx, query, string(instrumentType))
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list instruments", err)
	}
	defer rows.Close()

	var instruments []domain.Instrument
	for rows.Next() {
		m, err := scanInstrumentRow(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan instrument", err)
		}
		instruments = append(instruments, mapping.ToDomainInstrument(*m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to read instruments", err)
	}
	return instruments, nil
}

// GetSnapshot retrieves the instrument and recomputes its derived balance view
// from the full payment sum.
func (r *PgxInstrumentRepository) GetSnapshot(ctx context.Context, ref domain.InstrumentRef) (*domain.InstrumentSnapshot, error) {
	instrument, err := r.FindInstrument(ctx, ref)
	if err != nil {
		return nil, err
	}

	var totalPaid decimal.Decimal
	var paymentCount int
	err = r.Pool.QueryRow(ctx, instrumentPaidQuery, ref.ID).Scan(&totalPaid, &paymentCount)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to aggregate payments", err)
	}

	return snapshotOf(instrument, totalPaid, paymentCount), nil
}

// snapshotOf derives the read view from an instrument and its payment totals.
func snapshotOf(instrument *domain.Instrument, totalPaid decimal.Decimal, paymentCount int) *domain.InstrumentSnapshot {
	remaining := instrument.RemainingFromPaid(totalPaid)
	return &domain.InstrumentSnapshot{
		InstrumentID: instrument.InstrumentID,
		Type:         instrument.Type,
		CurrencyCode: instrument.CurrencyCode,
		Principal:    instrument.Principal(),
		Remaining:    remaining,
		Status:       instrument.Status,
		PaymentCount: paymentCount,
	}
}

// scanInstrumentRow scans one instrument from a QueryRow result.
func scanInstrumentRow(row pgx.Row) (*models.Instrument, error) {
	var m models.Instrument
	err := row.Scan(
		&m.InstrumentID, &m.Type, &m.CurrencyCode, &m.Status, &m.Counterparty, &m.Notes,
		&m.Amount, &m.StartDate, &m.DurationMonths, &m.MaturityDate, &m.DateTaken, &m.DueDate,
		&m.Reason, &m.DateIssued, &m.Quantity, &m.UnitPrice, &m.SupplyDate,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
