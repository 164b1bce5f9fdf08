package cas

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/fundfolio/backend/src/models"
)

func TestParseTransactionsSIPLine(t *testing.T) {
	txs := ParseTransactions("23-Sep-2024 Systematic Investment (13/24) 4,999.75 216.346 23.11 3,481.562")
	require.Len(t, txs, 1)

	tx := txs[0]
	assert.Equal(t, models.TxBuy, tx.Kind)
	assert.Equal(t, time.Date(2024, time.September, 23, 0, 0, 0, 0, time.UTC), tx.Date)
	assert.True(t, tx.Amount.Equal(dec(t, "4999.75")), "amount = %s", tx.Amount)
	requireDec(t, "216.346", tx.Units)
	requireDec(t, "23.11", tx.UnitPrice)
	// The trailing unit balance must not be mistaken for a value.
	assert.Contains(t, tx.Description, "Systematic Investment")
}

func TestParseTransactionsClassification(t *testing.T) {
	tests := []struct {
		line string
		want models.TransactionKind
	}{
		{"01-Feb-2024 Purchase - Instalment 10,000.00 85.251 117.30", models.TxBuy},
		{"05-Feb-2024 Redemption of units 7,500.00 60.110 124.77", models.TxSell},
		{"20-May-2024 IDCW Payout 500.00", models.TxDividend},
		{"11-Jun-2024 Income Distribution cum Capital Withdrawal 320.50", models.TxSell},
		{"02-Jul-2024 Bonus units allotted 0.00 12.000", models.TxBonus},
		{"03-Jul-2024 Unit Split 1:2 0.00 50.000", models.TxSplit},
		{"10-Mar-2024 Switch Out - To Liquid Plan 25,000.00 450.125 55.54", models.TxSell},
		{"10-Mar-2024 Switch In - From Equity Plan 25,000.00 450.125 55.54", models.TxBuy},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			kind, ok := classifyTransaction(strings.ToLower(tt.line))
			require.True(t, ok)
			assert.Equal(t, tt.want, kind)
		})
	}
}

func TestParseTransactionsDiscardsNoise(t *testing.T) {
	text := strings.Join([]string{
		"15-Jan-2024 *** Stamp Duty *** 5.00",
		"12-Feb-2024 Stamp Duty 2.50",
		// Unclassifiable: no transaction keyword.
		"05-Apr-2024 Closing Unit Balance 1,234.56",
		// No date.
		"Purchase without any date 1,000.00",
		// Classifiable but zero amount after extraction.
		"09-Apr-2024 Purchase 0.00",
	}, "\n")

	txs := ParseTransactions(text)
	assert.Empty(t, txs)
}

func TestParseTransactionsSchemeContext(t *testing.T) {
	text := strings.Join([]string{
		"Axis Bluechip Fund - Direct Plan - Growth Option ISIN: INF846K01EW2",
		"01-Feb-2024 Purchase - Instalment 10,000.00 85.251 117.30",
		"Folio checkpoint line",
		"05-Feb-2024 Redemption of units 7,500.00 60.110 124.77",
	}, "\n")

	txs := ParseTransactions(text)
	require.Len(t, txs, 2)
	for _, tx := range txs {
		assert.Equal(t, "Axis Bluechip Fund - Direct Plan - Growth Option", tx.SchemeNameHint)
		assert.Equal(t, "INF846K01EW2", tx.ISINHint)
	}
}

func TestParseTransactionsLabeledValues(t *testing.T) {
	txs := ParseTransactions("14-Aug-2024 Purchase Amount: 2,500.00, Units: 21.500, NAV: 116.28")
	require.Len(t, txs, 1)
	assert.True(t, txs[0].Amount.Equal(dec(t, "2500.00")), "amount = %s", txs[0].Amount)
	requireDec(t, "21.500", txs[0].Units)
	requireDec(t, "116.28", txs[0].UnitPrice)
}

func TestParseTransactionsSingleNumber(t *testing.T) {
	txs := ParseTransactions("20-May-2024 Dividend Payout 500.00")
	require.Len(t, txs, 1)
	assert.Equal(t, models.TxDividend, txs[0].Kind)
	assert.True(t, txs[0].Amount.Equal(dec(t, "500.00")), "amount = %s", txs[0].Amount)
	assert.Nil(t, txs[0].Units)
}

func TestParseTransactionsDescriptionCapped(t *testing.T) {
	long := "01-Feb-2024 Purchase " + strings.Repeat("x", 300) + " 1,000.00 8.5 117.3"
	txs := ParseTransactions(long)
	require.Len(t, txs, 1)
	assert.Len(t, txs[0].Description, 200)
}
