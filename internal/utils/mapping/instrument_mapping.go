package mapping

import (
	"github.com/idafleet/fleet-ledger/internal/core/domain"
	"github.com/idafleet/fleet-ledger/internal/models"
)

// ToModelInstrument converts a domain Instrument to a model Instrument.
func ToModelInstrument(d domain.Instrument) models.Instrument {
	return models.Instrument{
		InstrumentID:   d.InstrumentID,
		Type:           string(d.Type),
		CurrencyCode:   d.CurrencyCode,
		Status:         string(d.Status),
		Counterparty:   d.Counterparty,
		Notes:          d.Notes,
		Amount:         d.Amount,
		StartDate:      d.StartDate,
		DurationMonths: d.DurationMonths,
		MaturityDate:   d.MaturityDate,
		DateTaken:      d.DateTaken,
		DueDate:        d.DueDate,
		Reason:         d.Reason,
		DateIssued:     d.DateIssued,
		Quantity:       d.Quantity,
		UnitPrice:      d.UnitPrice,
		SupplyDate:     d.SupplyDate,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainInstrument converts a model Instrument to a domain Instrument.
func ToDomainInstrument(m models.Instrument) domain.Instrument {
	return domain.Instrument{
		InstrumentID:   m.InstrumentID,
		Type:           domain.InstrumentType(m.Type),
		CurrencyCode:   m.CurrencyCode,
		Status:         domain.InstrumentStatus(m.Status),
		Counterparty:   m.Counterparty,
		Notes:          m.Notes,
		Amount:         m.Amount,
		StartDate:      m.StartDate,
		DurationMonths: m.DurationMonths,
		MaturityDate:   m.MaturityDate,
		DateTaken:      m.DateTaken,
		DueDate:        m.DueDate,
		Reason:         m.Reason,
		DateIssued:     m.DateIssued,
		Quantity:       m.Quantity,
		UnitPrice:      m.UnitPrice,
		SupplyDate:     m.SupplyDate,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}
