package mapping

import (
	"github.com/idafleet/fleet-ledger/internal/core/domain"
	"github.com/idafleet/fleet-ledger/internal/models"
)

// ToModelPayment converts a domain Payment to a model Payment.
func ToModelPayment(d domain.Payment) models.Payment {
	return models.Payment{
		PaymentID:        d.PaymentID,
		BankLoanID:       d.BankLoanID,
		PersonalLoanID:   d.PersonalLoanID,
		AdvancePaymentID: d.AdvancePaymentID,
		FuelCreditID:     d.FuelCreditID,
		Amount:           d.Amount,
		CurrencyCode:     d.CurrencyCode,
		Date:             d.Date,
		Method:           string(d.Method),
		ReferenceNumber:  d.ReferenceNumber,
		TripID:           d.TripID,
		CreatedAt:        d.CreatedAt,
		CreatedBy:        d.CreatedBy,
	}
}

// ToDomainPayment converts a model Payment to a domain Payment.
func ToDomainPayment(m models.Payment) domain.Payment {
	return domain.Payment{
		PaymentID:        m.PaymentID,
		BankLoanID:       m.BankLoanID,
		PersonalLoanID:   m.PersonalLoanID,
		AdvancePaymentID: m.AdvancePaymentID,
		FuelCreditID:     m.FuelCreditID,
		Amount:           m.Amount,
		CurrencyCode:     m.CurrencyCode,
		Date:             m.Date,
		Method:           domain.PaymentMethod(m.Method),
		ReferenceNumber:  m.ReferenceNumber,
		TripID:           m.TripID,
		CreatedAt:        m.CreatedAt,
		CreatedBy:        m.CreatedBy,
	}
}
