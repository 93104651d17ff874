package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment is the persistence shape of a repayment. Exactly one of the
// instrument reference columns is non-NULL; that invariant is enforced at
// write time by the ledger, with a table CHECK as backstop.
type Payment struct {
	PaymentID string `json:"paymentID"`

	BankLoanID       *string `json:"bankLoanID,omitempty"`
	PersonalLoanID   *string `json:"personalLoanID,omitempty"`
	AdvancePaymentID *string `json:"advancePaymentID,omitempty"`
	FuelCreditID     *string `json:"fuelCreditID,omitempty"`

	Amount          decimal.Decimal `json:"amount"`
	CurrencyCode    string          `json:"currencyCode"`
	Date            time.Time       `json:"date"`
	Method          string          `json:"method"`
	ReferenceNumber string          `json:"referenceNumber,omitempty"`
	TripID          *string         `json:"tripID,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	CreatedBy string    `json:"createdBy"`
}
