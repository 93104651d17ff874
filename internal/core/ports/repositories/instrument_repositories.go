package repositories

import (
	"context"

	"github.com/idafleet/fleet-ledger/internal/core/domain"
)

// InstrumentReader defines read operations for debt instruments.
type InstrumentReader interface {
	// FindInstrument retrieves one instrument by variant and ID, or
	// apperrors.ErrNotFound.
	FindInstrument(ctx context.Context, ref domain.InstrumentRef) (*domain.Instrument, error)

	// ListInstruments retrieves instruments of one variant, newest first.
	ListInstruments(ctx context.Context, instrumentType domain.InstrumentType) ([]domain.Instrument, error)

	// GetSnapshot retrieves the derived balance view for one instrument,
	// recomputing remaining from the full payment sum.
	GetSnapshot(ctx context.Context, ref domain.InstrumentRef) (*domain.InstrumentSnapshot, error)
}

// InstrumentWriter defines write operations for debt instruments.
type InstrumentWriter interface {
	// SaveInstrument persists a newly created instrument.
	SaveInstrument(ctx context.Context, instrument domain.Instrument) error
}

// InstrumentRepositoryFacade combines all instrument repository interfaces.
type InstrumentRepositoryFacade interface {
	InstrumentReader
	InstrumentWriter
}
