package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/idafleet/fleet-ledger/internal/apperrors"
	"github.com/idafleet/fleet-ledger/internal/core/domain"
	"github.com/idafleet/fleet-ledger/internal/models"
	"github.com/idafleet/fleet-ledger/internal/utils/mapping"
)

const exchangeRateColumns = `exchange_rate_id, from_currency_code, to_currency_code, rate, date_effective, is_active,
		created_at, created_by, last_updated_at, last_updated_by`

// PgxExchangeRateRepository implements the exchange rate store using pgx.
type PgxExchangeRateRepository struct {
	BaseRepository
}

// NewPgxExchangeRateRepository creates a new PgxExchangeRateRepository.
func NewPgxExchangeRateRepository(db PgxPool) *PgxExchangeRateRepository {
	return &PgxExchangeRateRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

// ActivateExchangeRate inserts the new rate as active and deactivates any
// prior active rate for the exact ordered pair, all in one transaction.
// Concurrent activations for the same pair serialize on a per-pair advisory
// lock; the partial unique index on active pairs is the backstop.
func (r *PgxExchangeRateRepository) ActivateExchangeRate(ctx context.Context, rate domain.ExchangeRate) error {
	fromCurrency := strings.ToUpper(rate.FromCurrencyCode)
	toCurrency := strings.ToUpper(rate.ToCurrencyCode)
	if fromCurrency == toCurrency {
		return apperrors.NewValidationError("from and to currencies cannot be the same")
	}

	modelRate := mapping.ToModelExchangeRate(rate)
	modelRate.FromCurrencyCode = fromCurrency
	modelRate.ToCurrencyCode = toCurrency
	modelRate.IsActive = true

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	// Serialize writers for this ordered pair for the rest of the transaction.
	_, err = tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, fromCurrency+"->"+toCurrency)
	if err != nil {
		return mapConcurrencyError(err, "failed to lock currency pair")
	}

	_, err = tx.Exec(ctx, `
		UPDATE exchange_rates
		SET is_active = FALSE, last_updated_at = $1, last_updated_by = $2
		WHERE from_currency_code = $3 AND to_currency_code = $4 AND is_active`,
		modelRate.LastUpdatedAt, modelRate.LastUpdatedBy, fromCurrency, toCurrency,
	)
	if err != nil {
		return mapConcurrencyError(err, "failed to deactivate prior exchange rate")
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO exchange_rates (
			exchange_rate_id, from_currency_code, to_currency_code, rate, date_effective, is_active,
			created_at, created_by, last_updated_at, last_updated_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		modelRate.ExchangeRateID, modelRate.FromCurrencyCode, modelRate.ToCurrencyCode,
		modelRate.Rate, modelRate.DateEffective, modelRate.IsActive,
		modelRate.CreatedAt, modelRate.CreatedBy, modelRate.LastUpdatedAt, modelRate.LastUpdatedBy,
	)
	if err != nil {
		return mapConcurrencyError(err, "failed to insert exchange rate")
	}

	return r.Commit(ctx, tx)
}

// FindActiveRate retrieves the single active rate for the exact ordered pair.
func (r *PgxExchangeRateRepository) FindActiveRate(ctx context.Context, fromCurrencyCode, toCurrencyCode string) (*domain.ExchangeRate, error) {
	query := `
		SELECT ` + exchangeRateColumns + `
		FROM exchange_rates
		WHERE from_currency_code = $1 AND to_currency_code = $2 AND is_active
		LIMIT 1;
	`

	var modelRate models.ExchangeRate
	err := r.Pool.QueryRow(ctx, query, strings.ToUpper(fromCurrencyCode), strings.ToUpper(toCurrencyCode)).Scan(
		&modelRate.ExchangeRateID, &modelRate.FromCurrencyCode, &modelRate.ToCurrencyCode,
		&modelRate.Rate, &modelRate.DateEffective, &modelRate.IsActive,
		&modelRate.CreatedAt, &modelRate.CreatedBy, &modelRate.LastUpdatedAt, &modelRate.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("no active exchange rate for pair " + fromCurrencyCode + " to " + toCurrencyCode)
		}
		return nil, apperrors.NewAppError(500, "failed to find exchange rate", err)
	}

	domainRate := mapping.ToDomainExchangeRate(modelRate)
	return &domainRate, nil
}

// ListActiveRates retrieves every currently active rate.
func (r *PgxExchangeRateRepository) ListActiveRates(ctx context.Context) ([]domain.ExchangeRate, error) {
	query := `
		SELECT ` + exchangeRateColumns + `
		FROM exchange_rates
		WHERE is_active
		ORDER BY from_currency_code, to_currency_code;
	`

	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list active exchange rates", err)
	}
	defer rows.Close()

	return scanExchangeRates(rows)
}

// ListExchangeRates retrieves rate history with optional pair filtering and
// keyset pagination over (date_effective, created_at) descending.
func (r *PgxExchangeRateRepository) ListExchangeRates(
	ctx context.Context,
	fromCurrencyCode, toCurrencyCode *string,
	limit int,
	afterEffective, afterCreated *time.Time,
) ([]domain.ExchangeRate, error) {
	var conditions []string
	var args []any

	addArg := func(value any) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	if fromCurrencyCode != nil {
		conditions = append(conditions, "from_currency_code = "+addArg(strings.ToUpper(*fromCurrencyCode)))
	}
	if toCurrencyCode != nil {
		conditions = append(conditions, "to_currency_code = "+addArg(strings.ToUpper(*toCurrencyCode)))
	}
	if afterEffective != nil && afterCreated != nil {
		conditions = append(conditions, fmt.Sprintf("(date_effective, created_at) < (%s, %s)", addArg(*afterEffective), addArg(*afterCreated)))
	}

	query := `SELECT ` + exchangeRateColumns + ` FROM exchange_rates`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY date_effective DESC, created_at DESC LIMIT " + addArg(limit)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list exchange rates", err)
	}
	defer rows.Close()

	return scanExchangeRates(rows)
}

func scanExchangeRates(rows pgx.Rows) ([]domain.ExchangeRate, error) {
	var domainRates []domain.ExchangeRate
	for rows.Next() {
		var m models.ExchangeRate
		err := rows.Scan(
			&m.ExchangeRateID, &m.FromCurrencyCode, &m.ToCurrencyCode,
			&m.Rate, &m.DateEffective, &m.IsActive,
			&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan exchange rate", err)
		}
		domainRates = append(domainRates, mapping.ToDomainExchangeRate(m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to read exchange rates", err)
	}
	return domainRates, nil
}
