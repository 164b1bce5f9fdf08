package cas

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCell(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string // "" means nil expected
	}{
		{"plain", "216.4620", "216.4620"},
		{"indian grouping", "11,48,368.79", "1148368.79"},
		{"western grouping", "300,000.00", "300000.00"},
		{"negative", "-1,234.50", "-1234.50"},
		{"balance triplet takes first segment", "150.500/0.000/150.500", "150.500"},
		{"empty means absent", "", ""},
		{"dash means absent", "-", ""},
		{"garbage", "N/A", ""},
		{"whitespace padded", "  42.0  ", "42.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseCell(tt.raw)
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			requireDec(t, tt.want, got)
		})
	}
}

func TestExtractNumbersThreshold(t *testing.T) {
	// The pledged 0.000 segment falls below the threshold and is dropped.
	nums := extractNumbers("balance 150.500/0.000/150.500 nav 3,250.75", 0.001)
	require.Len(t, nums, 3)
	assert.True(t, nums[0].Equal(decimal.RequireFromString("150.500")))
	assert.True(t, nums[2].Equal(decimal.RequireFromString("3250.75")))
}

func TestMapHoldingNumbersFullLayout(t *testing.T) {
	tokens := toDecimals(t, "12154301", "5305.175", "56.55", "300000.00", "216.4620", "1148368.79", "848368.79", "11.27")
	v := mapHoldingNumbers(tokens)
	requireDec(t, "5305.175", v.units)
	requireDec(t, "300000.00", v.investedAmount)
	requireDec(t, "216.4620", v.nav)
	requireDec(t, "1148368.79", v.currentValue)
	requireDec(t, "848368.79", v.unrealisedGain)
	requireDec(t, "11.27", v.annualisedReturn)
}

func TestMapHoldingNumbersNoFolioAnchor(t *testing.T) {
	// Eight tokens but none big enough to be a folio: the fixed tail rules.
	tokens := toDecimals(t, "100.5", "1.0", "2.0", "50000", "310.25", "62050", "12050", "9.8")
	v := mapHoldingNumbers(tokens)
	requireDec(t, "100.5", v.units)
	requireDec(t, "50000", v.investedAmount)
	requireDec(t, "310.25", v.nav)
	requireDec(t, "62050", v.currentValue)
	requireDec(t, "12050", v.unrealisedGain)
	requireDec(t, "9.8", v.annualisedReturn)
}

func TestMapHoldingNumbersShortLayouts(t *testing.T) {
	t.Run("three tokens", func(t *testing.T) {
		v := mapHoldingNumbers(toDecimals(t, "10.5", "200.0", "2100.0"))
		requireDec(t, "10.5", v.units)
		requireDec(t, "200.0", v.nav)
		requireDec(t, "2100.0", v.currentValue)
		assert.Nil(t, v.investedAmount)
	})
	t.Run("two tokens", func(t *testing.T) {
		v := mapHoldingNumbers(toDecimals(t, "10.5", "2100.0"))
		requireDec(t, "10.5", v.units)
		requireDec(t, "2100.0", v.currentValue)
		assert.Nil(t, v.nav)
	})
	t.Run("one token", func(t *testing.T) {
		v := mapHoldingNumbers(toDecimals(t, "2100.0"))
		requireDec(t, "2100.0", v.currentValue)
		assert.Nil(t, v.units)
	})
	t.Run("no tokens", func(t *testing.T) {
		v := mapHoldingNumbers(nil)
		assert.Nil(t, v.units)
		assert.Nil(t, v.currentValue)
	})
}

func toDecimals(t *testing.T, vals ...string) []decimal.Decimal {
	t.Helper()
	out := make([]decimal.Decimal, len(vals))
	for i, s := range vals {
		out[i] = decimal.RequireFromString(s)
	}
	return out
}
