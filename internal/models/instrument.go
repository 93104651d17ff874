package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Instrument is the persistence shape of a debt instrument. All four variants
// share one table; variant-specific columns are nullable.
type Instrument struct {
	InstrumentID string `json:"instrumentID"`
	Type         string `json:"type"`
	CurrencyCode string `json:"currencyCode"`
	Status       string `json:"status"`
	Counterparty string `json:"counterparty"`
	Notes        string `json:"notes,omitempty"`

	Amount *decimal.Decimal `json:"amount,omitempty"` // NULL for FUEL_CREDIT (principal is derived)

	StartDate      *time.Time `json:"startDate,omitempty"`
	DurationMonths *int       `json:"durationMonths,omitempty"`
	MaturityDate   *time.Time `json:"maturityDate,omitempty"`

	DateTaken *time.Time `json:"dateTaken,omitempty"`
	DueDate   *time.Time `json:"dueDate,omitempty"`

	Reason     string     `json:"reason,omitempty"`
	DateIssued *time.Time `json:"dateIssued,omitempty"`

	Quantity   *decimal.Decimal `json:"quantity,omitempty"`
	UnitPrice  *decimal.Decimal `json:"unitPrice,omitempty"`
	SupplyDate *time.Time       `json:"supplyDate,omitempty"`

	AuditFields
}
