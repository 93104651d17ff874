package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InstrumentType identifies one of the four debt instrument variants.
type InstrumentType string

const (
	BankLoan       InstrumentType = "BANK_LOAN"
	PersonalLoan   InstrumentType = "PERSONAL_LOAN"
	AdvancePayment InstrumentType = "ADVANCE_PAYMENT"
	FuelCredit     InstrumentType = "FUEL_CREDIT"
)

// IsValid reports whether t is one of the four known variants.
func (t InstrumentType) IsValid() bool {
	switch t {
	case BankLoan, PersonalLoan, AdvancePayment, FuelCredit:
		return true
	}
	return false
}

// InstrumentStatus is the lifecycle state of an instrument. The domain is
// variant-specific: loans use Pending/Active/PaidOff (bank loans additionally
// Defaulted), advances and fuel credit use Pending/Partial/Paid.
type InstrumentStatus string

const (
	StatusPending   InstrumentStatus = "PENDING"
	StatusActive    InstrumentStatus = "ACTIVE"
	StatusPaidOff   InstrumentStatus = "PAID_OFF"
	StatusDefaulted InstrumentStatus = "DEFAULTED"
	StatusPartial   InstrumentStatus = "PARTIAL"
	StatusPaid      InstrumentStatus = "PAID"
)

// Instrument is the unified shape over the four debt variants. Variant-specific
// fields are pointers and set only for the matching Type. Principal is fixed at
// creation; only status is payment-driven, and the stored status is a
// denormalized hint that must always agree with a fresh recomputation from the
// payment history.
type Instrument struct {
	InstrumentID string           `json:"instrumentID"`
	Type         InstrumentType   `json:"type"`
	CurrencyCode string           `json:"currencyCode"`
	Status       InstrumentStatus `json:"status"`
	Counterparty string           `json:"counterparty"` // bank, creditor, recipient or supplier name
	Notes        string           `json:"notes,omitempty"`

	// Amount is the stored principal. Unset for FuelCredit, whose principal is
	// derived from Quantity * UnitPrice and never stored.
	Amount *decimal.Decimal `json:"amount,omitempty"`

	// Bank loan fields.
	StartDate      *time.Time `json:"startDate,omitempty"`
	DurationMonths *int       `json:"durationMonths,omitempty"`
	MaturityDate   *time.Time `json:"maturityDate,omitempty"` // computed once at creation, never recomputed

	// Personal loan fields.
	DateTaken *time.Time `json:"dateTaken,omitempty"`
	DueDate   *time.Time `json:"dueDate,omitempty"`

	// Advance payment fields.
	Reason     string     `json:"reason,omitempty"`
	DateIssued *time.Time `json:"dateIssued,omitempty"`

	// Fuel credit fields.
	Quantity   *decimal.Decimal `json:"quantity,omitempty"`  // liters
	UnitPrice  *decimal.Decimal `json:"unitPrice,omitempty"` // price per liter
	SupplyDate *time.Time       `json:"supplyDate,omitempty"`

	AuditFields
}

// Principal returns the instrument's principal in its own currency. For fuel
// credit this is derived as quantity * unit price; for every other variant it
// is the stored amount.
func (i *Instrument) Principal() decimal.Decimal {
	if i.Type == FuelCredit {
		if i.Quantity == nil || i.UnitPrice == nil {
			return decimal.Zero
		}
		return i.Quantity.Mul(*i.UnitPrice)
	}
	if i.Amount == nil {
		return decimal.Zero
	}
	return *i.Amount
}

// InitialStatus is the state every variant starts in at creation.
func (i *Instrument) InitialStatus() InstrumentStatus {
	return StatusPending
}

// RemainingFromPaid computes the outstanding balance given the sum of all
// payments linked to this instrument, floored at zero.
func (i *Instrument) RemainingFromPaid(totalPaid decimal.Decimal) decimal.Decimal {
	remaining := i.Principal().Sub(totalPaid)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// NextStatus applies the variant's payment-driven transition rule to the
// current status given a freshly recomputed remaining balance. Transitions
// that are not payment-driven (Pending->Active on disbursement, Defaulted) are
// owned by external collaborators and left untouched here.
func (i *Instrument) NextStatus(remaining decimal.Decimal) InstrumentStatus {
	switch i.Type {
	case BankLoan, PersonalLoan:
		if remaining.LessThanOrEqual(decimal.Zero) {
			return StatusPaidOff
		}
		return i.Status
	case AdvancePayment, FuelCredit:
		if remaining.LessThanOrEqual(decimal.Zero) {
			return StatusPaid
		}
		if remaining.LessThan(i.Principal()) {
			return StatusPartial
		}
		return i.Status
	}
	return i.Status
}

// InstrumentSnapshot is the derived view returned after payment writes and
// snapshot queries: everything the read side needs without re-aggregating.
type InstrumentSnapshot struct {
	InstrumentID string           `json:"instrumentID"`
	Type         InstrumentType   `json:"type"`
	CurrencyCode string           `json:"currencyCode"`
	Principal    decimal.Decimal  `json:"principal"`
	Remaining    decimal.Decimal  `json:"remaining"`
	Status       InstrumentStatus `json:"status"`
	PaymentCount int              `json:"paymentCount"`
}
