package services

import (
	portsrepo "github.com/idafleet/fleet-ledger/internal/core/ports/repositories"
	portssvc "github.com/idafleet/fleet-ledger/internal/core/ports/services"
	"github.com/idafleet/fleet-ledger/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized
// dependencies.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// The rate service comes first since reconciliation converts through it.
	container.ExchangeRate = NewExchangeRateService(repos.ExchangeRateRepo, cfg.BaseCurrency)

	container.Reconciliation = NewReconciliationService(
		repos.InstrumentRepo,
		repos.PaymentRepo,
		container.ExchangeRate,
		cfg.TxMaxRetries,
	)

	return container
}

// Interface implementation checks at compile time.
var (
	_ portssvc.ExchangeRateSvcFacade   = (*exchangeRateService)(nil)
	_ portssvc.ReconciliationSvcFacade = (*reconciliationService)(nil)
)
