package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyBankParser_Parse(t *testing.T) {
	parser := NewKeyBankParser()

	t.Run("extracts checks and withdrawals, loan rows only", func(t *testing.T) {
		text := `KeyBank
Statement Date: 4/1/2024

Paper Checks
3/05/2024 1041 450.00 MOHELA payment
3/12/2024 1042 85.00 Electric company

Other Withdrawals
3/10/2024 200.00 NAVIENT ACH PMT
3/11/2024 54.99 Streaming service

Account Summary
Ending balance 2,345.67`

		result, err := parser.Parse(text)
		require.NoError(t, err)

		assert.Equal(t, "2024-04-01", result.StatementDate)
		require.Len(t, result.Transactions, 2)

		check := result.Transactions[0]
		assert.Equal(t, "2024-03-05", check.Date)
		assert.Equal(t, "1041", check.CheckNumber)
		assert.Equal(t, 450.00, check.Amount)
		assert.Equal(t, "MOHELA payment", check.Description)

		ach := result.Transactions[1]
		assert.Equal(t, "2024-03-10", ach.Date)
		assert.Equal(t, 200.00, ach.Amount)
		assert.Equal(t, "NAVIENT ACH PMT", ach.Description)
		assert.Empty(t, ach.CheckNumber)
	})

	t.Run("check without payee gets a check-number description", func(t *testing.T) {
		text := `Paper Checks
3/05/2024 1041 450.00`

		result, err := parser.Parse(text)
		require.NoError(t, err)
		// A bare check row has no text to match loan keywords against.
		assert.Empty(t, result.Transactions)
	})

	t.Run("starred out-of-sequence check numbers", func(t *testing.T) {
		text := `Paper Checks
3/05/2024 1041* 450.00 STUDENT LN PMT`

		result, err := parser.Parse(text)
		require.NoError(t, err)
		require.Len(t, result.Transactions, 1)
		assert.Equal(t, "1041", result.Transactions[0].CheckNumber)
	})

	t.Run("month with no loan payments yields zero rows", func(t *testing.T) {
		text := `Other Withdrawals
3/10/2024 54.99 Streaming service
3/11/2024 120.00 Grocery store`

		result, err := parser.Parse(text)
		require.NoError(t, err)
		assert.Empty(t, result.Transactions)
	})

	t.Run("no recognizable sections is a parse failure", func(t *testing.T) {
		_, err := parser.Parse("KeyBank statement with no activity tables")
		require.ErrorIs(t, err, ErrNoBankSections)
	})
}

func TestTruistParser_Parse(t *testing.T) {
	parser := NewTruistParser()

	t.Run("truist section headings", func(t *testing.T) {
		text := `Truist
Statement Date: 4/1/2024

Checks
3/05/2024 2001 300.00 SALLIE MAE

Other withdrawals, debits and service charges
3/10/2024 175.00 AIDVANTAGE LOAN PMT
3/12/2024 9.99 Card fee`

		result, err := parser.Parse(text)
		require.NoError(t, err)
		require.Len(t, result.Transactions, 2)

		assert.Equal(t, "2001", result.Transactions[0].CheckNumber)
		assert.Equal(t, "SALLIE MAE", result.Transactions[0].Description)
		assert.Equal(t, "AIDVANTAGE LOAN PMT", result.Transactions[1].Description)
	})

	t.Run("description-first withdrawal layout", func(t *testing.T) {
		text := `Other Debits
3/10/2024 NELNET PAYMENT 175.00
3/12/2024 COFFEE SHOP 4.50`

		result, err := parser.Parse(text)
		require.NoError(t, err)
		require.Len(t, result.Transactions, 1)

		tx := result.Transactions[0]
		assert.Equal(t, "NELNET PAYMENT", tx.Description)
		assert.Equal(t, 175.00, tx.Amount)
	})
}

func TestIsLoanRelated(t *testing.T) {
	assert.True(t, isLoanRelated("MOHELA payment"))
	assert.True(t, isLoanRelated("", "Navient ACH"))
	assert.True(t, isLoanRelated("Great Lakes servicing"))
	assert.True(t, isLoanRelated("AUTO LOAN PMT"))
	assert.False(t, isLoanRelated("Streaming service"))
	assert.False(t, isLoanRelated(""))
	assert.False(t, isLoanRelated())
}
