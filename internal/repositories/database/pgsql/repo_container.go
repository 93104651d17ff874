package pgsql

import (
	portsrepo "github.com/idafleet/fleet-ledger/internal/core/ports/repositories"
)

// Compile-time checks that the pgx repositories satisfy their facades.
var _ portsrepo.TransactionManager = (*BaseRepository)(nil)
var _ portsrepo.ExchangeRateRepositoryFacade = (*PgxExchangeRateRepository)(nil)
var _ portsrepo.InstrumentRepositoryFacade = (*PgxInstrumentRepository)(nil)
var _ portsrepo.PaymentRepositoryFacade = (*PgxPaymentRepository)(nil)

// NewRepositoryProvider wires the pgx-backed repositories into the provider
// consumed by the service container.
func NewRepositoryProvider(db PgxPool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		ExchangeRateRepo: NewPgxExchangeRateRepository(db),
		InstrumentRepo:   NewPgxInstrumentRepository(db),
		PaymentRepo:      NewPgxPaymentRepository(db),
	}
}
