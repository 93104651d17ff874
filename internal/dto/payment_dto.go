package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/idafleet/fleet-ledger/internal/core/domain"
)

// RecordPaymentRequest defines the structure for recording a repayment.
// Exactly one instrument reference must be set; that cardinality is a service
// rule, not a binding rule, so it fails with the ledger's own error.
type RecordPaymentRequest struct {
	BankLoanID       *string `json:"bankLoanID,omitempty"`
	PersonalLoanID   *string `json:"personalLoanID,omitempty"`
	AdvancePaymentID *string `json:"advancePaymentID,omitempty"`
	FuelCreditID     *string `json:"fuelCreditID,omitempty"`

	Amount          decimal.Decimal      `json:"amount" binding:"required"`
	CurrencyCode    string               `json:"currencyCode" binding:"required,len=3,uppercase"`
	Date            *time.Time           `json:"date,omitempty"` // defaults to now
	Method          domain.PaymentMethod `json:"method" binding:"required"`
	ReferenceNumber string               `json:"referenceNumber,omitempty"`
	TripID          *string              `json:"tripID,omitempty"`
}

// PaymentResponse defines the structure for payment API responses.
type PaymentResponse struct {
	PaymentID        string                `json:"paymentID"`
	BankLoanID       *string               `json:"bankLoanID,omitempty"`
	PersonalLoanID   *string               `json:"personalLoanID,omitempty"`
	AdvancePaymentID *string               `json:"advancePaymentID,omitempty"`
	FuelCreditID     *string               `json:"fuelCreditID,omitempty"`
	Amount           decimal.Decimal       `json:"amount"`
	CurrencyCode     string                `json:"currencyCode"`
	Date             time.Time             `json:"date"`
	Method           domain.PaymentMethod  `json:"method"`
	ReferenceNumber  string                `json:"referenceNumber,omitempty"`
	TripID           *string               `json:"tripID,omitempty"`
	CreatedAt        time.Time             `json:"createdAt"`
	CreatedBy        string                `json:"createdBy"`
}

// ToPaymentResponse converts a domain.Payment to PaymentResponse.
func ToPaymentResponse(p *domain.Payment) PaymentResponse {
	return PaymentResponse{
		PaymentID:        p.PaymentID,
		BankLoanID:       p.BankLoanID,
		PersonalLoanID:   p.PersonalLoanID,
		AdvancePaymentID: p.AdvancePaymentID,
		FuelCreditID:     p.FuelCreditID,
		Amount:           p.Amount,
		CurrencyCode:     p.CurrencyCode,
		Date:             p.Date,
		Method:           p.Method,
		ReferenceNumber:  p.ReferenceNumber,
		TripID:           p.TripID,
		CreatedAt:        p.CreatedAt,
		CreatedBy:        p.CreatedBy,
	}
}

// ListPaymentsParams holds pagination parameters for the payment listing.
type ListPaymentsParams struct {
	Limit     int     `form:"limit,default=50"`
	NextToken *string `form:"nextToken"`
}

// ListPaymentsResponse wraps a page of payments for one instrument.
type ListPaymentsResponse struct {
	Payments  []PaymentResponse `json:"payments"`
	NextToken *string           `json:"nextToken,omitempty"`
}
