package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/idafleet/fleet-ledger/internal/core/domain"
)

// CreateInstrumentRequest defines the structure for creating a debt instrument.
// Variant-specific fields are validated in the service against the Type.
type CreateInstrumentRequest struct {
	Type         domain.InstrumentType `json:"type" binding:"required,instrumenttype"`
	CurrencyCode string                `json:"currencyCode" binding:"required,len=3,uppercase"`
	Counterparty string                `json:"counterparty" binding:"required"`
	Notes        string                `json:"notes,omitempty"`

	// BANK_LOAN, PERSONAL_LOAN, ADVANCE_PAYMENT principal. Ignored for
	// FUEL_CREDIT, whose principal derives from quantity and unit price.
	Amount *decimal.Decimal `json:"amount,omitempty"`

	// BANK_LOAN
	StartDate      *time.Time `json:"startDate,omitempty"`
	DurationMonths *int       `json:"durationMonths,omitempty"`

	// PERSONAL_LOAN
	DateTaken *time.Time `json:"dateTaken,omitempty"`
	DueDate   *time.Time `json:"dueDate,omitempty"`

	// ADVANCE_PAYMENT
	Reason     string     `json:"reason,omitempty"`
	DateIssued *time.Time `json:"dateIssued,omitempty"`

	// FUEL_CREDIT
	Quantity   *decimal.Decimal `json:"quantity,omitempty"`
	UnitPrice  *decimal.Decimal `json:"unitPrice,omitempty"`
	SupplyDate *time.Time       `json:"supplyDate,omitempty"`
}

// InstrumentResponse defines the structure for instrument API responses.
type InstrumentResponse struct {
	InstrumentID string                  `json:"instrumentID"`
	Type         domain.InstrumentType   `json:"type"`
	CurrencyCode string                  `json:"currencyCode"`
	Status       domain.InstrumentStatus `json:"status"`
	Counterparty string                  `json:"counterparty"`
	Notes        string                  `json:"notes,omitempty"`
	Principal    decimal.Decimal         `json:"principal"`

	StartDate      *time.Time `json:"startDate,omitempty"`
	DurationMonths *int       `json:"durationMonths,omitempty"`
	MaturityDate   *time.Time `json:"maturityDate,omitempty"`
	DateTaken      *time.Time `json:"dateTaken,omitempty"`
	DueDate        *time.Time `json:"dueDate,omitempty"`
	Reason         string     `json:"reason,omitempty"`
	DateIssued     *time.Time `json:"dateIssued,omitempty"`

	Quantity   *decimal.Decimal `json:"quantity,omitempty"`
	UnitPrice  *decimal.Decimal `json:"unitPrice,omitempty"`
	SupplyDate *time.Time       `json:"supplyDate,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	CreatedBy string    `json:"createdBy"`
}

// ToInstrumentResponse converts a domain.Instrument to InstrumentResponse.
func ToInstrumentResponse(i *domain.Instrument) InstrumentResponse {
	return InstrumentResponse{
		InstrumentID:   i.InstrumentID,
		Type:           i.Type,
		CurrencyCode:   i.CurrencyCode,
		Status:         i.Status,
		Counterparty:   i.Counterparty,
		Notes:          i.Notes,
		Principal:      i.Principal(),
		StartDate:      i.StartDate,
		DurationMonths: i.DurationMonths,
		MaturityDate:   i.MaturityDate,
		DateTaken:      i.DateTaken,
		DueDate:        i.DueDate,
		Reason:         i.Reason,
		DateIssued:     i.DateIssued,
		Quantity:       i.Quantity,
		UnitPrice:      i.UnitPrice,
		SupplyDate:     i.SupplyDate,
		CreatedAt:      i.CreatedAt,
		CreatedBy:      i.CreatedBy,
	}
}

// ToListInstrumentResponse converts a slice of domain instruments to response DTOs.
func ToListInstrumentResponse(instruments []domain.Instrument) []InstrumentResponse {
	responses := make([]InstrumentResponse, len(instruments))
	for i := range instruments {
		responses[i] = ToInstrumentResponse(&instruments[i])
	}
	return responses
}

// SnapshotResponse defines the derived balance view returned by snapshot
// queries and by RecordPayment.
type SnapshotResponse struct {
	InstrumentID string                  `json:"instrumentID"`
	Type         domain.InstrumentType   `json:"type"`
	CurrencyCode string                  `json:"currencyCode"`
	Principal    decimal.Decimal         `json:"principal"`
	Remaining    decimal.Decimal         `json:"remaining"`
	Status       domain.InstrumentStatus `json:"status"`
	PaymentCount int                     `json:"paymentCount"`
}

// ToSnapshotResponse converts a domain.InstrumentSnapshot to SnapshotResponse.
func ToSnapshotResponse(s *domain.InstrumentSnapshot) SnapshotResponse {
	return SnapshotResponse{
		InstrumentID: s.InstrumentID,
		Type:         s.Type,
		CurrencyCode: s.CurrencyCode,
		Principal:    s.Principal,
		Remaining:    s.Remaining,
		Status:       s.Status,
		PaymentCount: s.PaymentCount,
	}
}
