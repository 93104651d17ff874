package repositories

import (
	"context"
	"time"

	"github.com/idafleet/fleet-ledger/internal/core/domain"
)

// PaymentReader defines read operations for payments.
type PaymentReader interface {
	// ListPayments retrieves the payments linked to one instrument, newest
	// first, resuming after the (date, createdAt) token position.
	ListPayments(ctx context.Context, ref domain.InstrumentRef, limit int, afterDate, afterCreated *time.Time) ([]domain.Payment, error)
}

// PaymentWriter defines write operations for payments.
type PaymentWriter interface {
	// SavePaymentAndReconcile persists the payment and updates the owning
	// instrument's derived status as one atomic unit, returning the
	// post-payment snapshot. Remaining is recomputed from the full payment
	// sum, not just the new payment. Serialization failures surface as
	// apperrors.ErrConflict.
	SavePaymentAndReconcile(ctx context.Context, payment domain.Payment) (*domain.InstrumentSnapshot, error)
}

// PaymentRepositoryFacade combines all payment repository interfaces.
type PaymentRepositoryFacade interface {
	PaymentReader
	PaymentWriter
}
