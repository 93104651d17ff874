package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idafleet/fleet-ledger/internal/apperrors"
	"github.com/idafleet/fleet-ledger/internal/core/domain"
)

func strPtr(s string) *string { return &s }

func TestPayment_InstrumentRef(t *testing.T) {
	t.Run("single reference resolves", func(t *testing.T) {
		p := domain.Payment{BankLoanID: strPtr("loan-1"), Amount: dec("100")}
		ref, err := p.InstrumentRef()
		require.NoError(t, err)
		assert.Equal(t, domain.BankLoan, ref.Type)
		assert.Equal(t, "loan-1", ref.ID)
	})

	t.Run("each variant maps to its type", func(t *testing.T) {
		testCases := []struct {
			payment  domain.Payment
			expected domain.InstrumentType
		}{
			{domain.Payment{PersonalLoanID: strPtr("p-1")}, domain.PersonalLoan},
			{domain.Payment{AdvancePaymentID: strPtr("a-1")}, domain.AdvancePayment},
			{domain.Payment{FuelCreditID: strPtr("f-1")}, domain.FuelCredit},
		}
		for _, tc := range testCases {
			ref, err := tc.payment.InstrumentRef()
			require.NoError(t, err)
			assert.Equal(t, tc.expected, ref.Type)
		}
	})

	t.Run("no reference fails", func(t *testing.T) {
		p := domain.Payment{Amount: dec("100")}
		_, err := p.InstrumentRef()
		assert.ErrorIs(t, err, apperrors.ErrInstrumentRefCardinality)
	})

	t.Run("two references fail", func(t *testing.T) {
		p := domain.Payment{BankLoanID: strPtr("loan-1"), FuelCreditID: strPtr("fuel-1")}
		_, err := p.InstrumentRef()
		assert.ErrorIs(t, err, apperrors.ErrInstrumentRefCardinality)
	})
}

func TestPayment_Validate(t *testing.T) {
	valid := func() domain.Payment {
		return domain.Payment{
			BankLoanID:   strPtr("loan-1"),
			Amount:       dec("250.75"),
			CurrencyCode: "RWF",
			Method:       domain.MethodCash,
		}
	}

	t.Run("valid draft passes", func(t *testing.T) {
		p := valid()
		assert.NoError(t, p.Validate())
	})

	t.Run("zero amount rejected", func(t *testing.T) {
		p := valid()
		p.Amount = decimal.Zero
		assert.ErrorIs(t, p.Validate(), apperrors.ErrInvalidAmount)
	})

	t.Run("negative amount rejected", func(t *testing.T) {
		p := valid()
		p.Amount = dec("-10")
		assert.ErrorIs(t, p.Validate(), apperrors.ErrInvalidAmount)
	})

	t.Run("trip revenue requires trip reference", func(t *testing.T) {
		p := valid()
		p.Method = domain.MethodTripRevenue
		assert.ErrorIs(t, p.Validate(), apperrors.ErrMissingTripReference)

		p.TripID = strPtr("")
		assert.ErrorIs(t, p.Validate(), apperrors.ErrMissingTripReference)

		p.TripID = strPtr("trip-42")
		assert.NoError(t, p.Validate())
	})

	t.Run("trip reference optional for other methods", func(t *testing.T) {
		p := valid()
		p.Method = domain.MethodMobileMoney
		assert.NoError(t, p.Validate())

		p.TripID = strPtr("trip-42")
		assert.NoError(t, p.Validate())
	})

	t.Run("cardinality checked before amount", func(t *testing.T) {
		p := domain.Payment{Amount: decimal.Zero}
		assert.ErrorIs(t, p.Validate(), apperrors.ErrInstrumentRefCardinality)
	})
}

func TestPaymentMethod_IsValid(t *testing.T) {
	assert.True(t, domain.MethodBankTransfer.IsValid())
	assert.True(t, domain.MethodMobileMoney.IsValid())
	assert.True(t, domain.MethodCash.IsValid())
	assert.True(t, domain.MethodTripRevenue.IsValid())
	assert.False(t, domain.PaymentMethod("CHEQUE").IsValid())
}
