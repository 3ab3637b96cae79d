package parsers

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "short slash date with 2-digit year", input: "3/1/24", want: "2024-03-01"},
		{name: "padded slash date with 4-digit year", input: "03/01/2024", want: "2024-03-01"},
		{name: "slash date with 4-digit year", input: "3/15/2024", want: "2024-03-15"},
		{name: "dash separated", input: "3-15-2024", want: "2024-03-15"},
		{name: "dash separated 2-digit year", input: "3-15-24", want: "2024-03-15"},
		{name: "iso passthrough", input: "2024-03-15", want: "2024-03-15"},
		{name: "short month name", input: "Mar 15, 2024", want: "2024-03-15"},
		{name: "long month name", input: "March 15, 2024", want: "2024-03-15"},
		{name: "surrounding whitespace", input: "  3/15/2024  ", want: "2024-03-15"},
		{name: "empty", input: "", wantErr: true},
		{name: "not a date", input: "hello", wantErr: true},
		{name: "word salad with digits", input: "page 3 of 4", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeDate(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("yearless dates default to current year", func(t *testing.T) {
		year := time.Now().Year()

		got, err := NormalizeDate("3/15")
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("%d-03-15", year), got)

		got, err = NormalizeDate("Mar 15")
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("%d-03-15", year), got)
	})
}

func TestSliceSection(t *testing.T) {
	text := `Account Summary
Balance 1,000.00

Payment History
1/15/2024 150.00 Payment
2/15/2024 150.00 Payment

Important Messages
Your next bill is due soon.`

	t.Run("returns text up to the next heading", func(t *testing.T) {
		section, ok := sliceSection(text, "Payment History")
		require.True(t, ok)
		assert.Contains(t, section, "1/15/2024")
		assert.Contains(t, section, "2/15/2024")
		assert.NotContains(t, section, "next bill")
	})

	t.Run("header match is case-insensitive", func(t *testing.T) {
		section, ok := sliceSection(text, "payment history")
		require.True(t, ok)
		assert.Contains(t, section, "1/15/2024")
	})

	t.Run("runs to end of text when no heading follows", func(t *testing.T) {
		section, ok := sliceSection(text, "Important Messages")
		require.True(t, ok)
		assert.Contains(t, section, "next bill")
	})

	t.Run("missing header", func(t *testing.T) {
		_, ok := sliceSection(text, "Deposits")
		assert.False(t, ok)
	})
}

func TestLabeledField(t *testing.T) {
	text := `Statement Date: 3/15/2024
Unpaid Principal $12,345.67
Account Number: 0012345`

	assert.Equal(t, "3/15/2024", labeledField(text, "Statement Date"))
	assert.Equal(t, "$12,345.67", labeledField(text, "Unpaid Principal"))
	assert.Equal(t, "", labeledField(text, "Due Date"))
}
