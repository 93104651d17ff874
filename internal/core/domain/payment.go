package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/idafleet/fleet-ledger/internal/apperrors"
)

// PaymentMethod is how a repayment was made.
type PaymentMethod string

const (
	MethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	MethodMobileMoney  PaymentMethod = "MOBILE_MONEY"
	MethodCash         PaymentMethod = "CASH"
	MethodTripRevenue  PaymentMethod = "TRIP_REVENUE"
)

// IsValid reports whether m is a known payment method.
func (m PaymentMethod) IsValid() bool {
	switch m {
	case MethodBankTransfer, MethodMobileMoney, MethodCash, MethodTripRevenue:
		return true
	}
	return false
}

// InstrumentRef names one instrument by variant and ID.
type InstrumentRef struct {
	Type InstrumentType `json:"type"`
	ID   string         `json:"id"`
}

// Payment is one repayment out of the shared payment stream. Exactly one of
// the four instrument references is non-nil; the ledger never deletes or
// reverses a payment once recorded.
type Payment struct {
	PaymentID string `json:"paymentID"`

	BankLoanID       *string `json:"bankLoanID,omitempty"`
	PersonalLoanID   *string `json:"personalLoanID,omitempty"`
	AdvancePaymentID *string `json:"advancePaymentID,omitempty"`
	FuelCreditID     *string `json:"fuelCreditID,omitempty"`

	Amount          decimal.Decimal `json:"amount"`
	CurrencyCode    string          `json:"currencyCode"`
	Date            time.Time       `json:"date"`
	Method          PaymentMethod   `json:"method"`
	ReferenceNumber string          `json:"referenceNumber,omitempty"`

	// TripID is an opaque reference into the trip subsystem. Required iff
	// Method is TRIP_REVENUE; the ledger never inspects trip contents.
	TripID *string `json:"tripID,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	CreatedBy string    `json:"createdBy"`
}

// InstrumentRef returns the single instrument this payment settles, or
// ErrInstrumentRefCardinality when zero or more than one reference is set.
func (p *Payment) InstrumentRef() (InstrumentRef, error) {
	var ref InstrumentRef
	count := 0
	if p.BankLoanID != nil {
		ref = InstrumentRef{Type: BankLoan, ID: *p.BankLoanID}
		count++
	}
	if p.PersonalLoanID != nil {
		ref = InstrumentRef{Type: PersonalLoan, ID: *p.PersonalLoanID}
		count++
	}
	if p.AdvancePaymentID != nil {
		ref = InstrumentRef{Type: AdvancePayment, ID: *p.AdvancePaymentID}
		count++
	}
	if p.FuelCreditID != nil {
		ref = InstrumentRef{Type: FuelCredit, ID: *p.FuelCreditID}
		count++
	}
	if count != 1 {
		return InstrumentRef{}, apperrors.ErrInstrumentRefCardinality
	}
	return ref, nil
}

// Validate checks the caller-input invariants of a payment draft. It is run
// before any write; a failure means nothing was persisted.
func (p *Payment) Validate() error {
	if _, err := p.InstrumentRef(); err != nil {
		return err
	}
	if p.Amount.LessThanOrEqual(decimal.Zero) {
		return apperrors.ErrInvalidAmount
	}
	if p.Method == MethodTripRevenue && (p.TripID == nil || *p.TripID == "") {
		return apperrors.ErrMissingTripReference
	}
	return nil
}
