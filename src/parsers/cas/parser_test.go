package cas

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/fundfolio/backend/src/extractor"
)

func TestStrategyParseReconcilesTableAndText(t *testing.T) {
	// The same position arrives via both extraction paths; the result must
	// carry it once, with the table path's values.
	doc := &extractor.Document{
		Backend: extractor.BackendStructured,
		Tables: [][][]string{{
			registrarHeader,
			{"INF194K01391", "Bandhan Flexi Cap Fund-Regular Plan-Growth", "12154301",
				"5305.175", "56.55", "300,000.00", "216.4620", "11,48,368.79", "8,48,368.79", "11.27"},
		}},
		Text: strings.Join([]string{
			"Name: Ramesh Kumar Sharma",
			"PAN: ABCDE1234F",
			"Mutual Fund Folios (F)",
			"INF194K01391 Bandhan Flexi Cap Fund-Regular Plan-Growth 12154301 9999.999 56.55 300,000.00 216.4620 11,48,368.79 8,48,368.79 11.27",
			"23-Sep-2024 Systematic Investment (13/24) 4,999.75 216.346 23.11 3,481.562",
		}, "\n"),
	}

	res, err := NewStrategy().Parse(context.Background(), doc)
	require.NoError(t, err)

	require.Len(t, res.Holdings, 1)
	requireDec(t, "5305.175", res.Holdings[0].Units)
	require.Len(t, res.Transactions, 1)

	assert.Equal(t, "ABCDE1234F", res.Investor.PAN)
	assert.Equal(t, "heuristic", res.Diagnostics.Strategy)
	assert.Equal(t, extractor.BackendStructured, res.Diagnostics.ExtractionBackend)
	assert.Equal(t, 2, res.Diagnostics.HoldingsBeforeDedup)
	assert.Equal(t, 1, res.Diagnostics.HoldingsAfterDedup)
	assert.False(t, res.Diagnostics.UsedFallbackParser)
}

func TestStrategyParseEmptyDocument(t *testing.T) {
	res, err := NewStrategy().Parse(context.Background(), &extractor.Document{Backend: extractor.BackendNone})
	require.NoError(t, err)
	assert.True(t, res.Empty())
	assert.True(t, res.Diagnostics.UsedFallbackParser == false)
}

func TestStrategyParseUsesLooseScanWhenSectionsMissing(t *testing.T) {
	doc := &extractor.Document{
		Backend: extractor.BackendPlainText,
		Text: strings.Join([]string{
			"HDFC Top 100 Fund - Direct Plan - Growth",
			"Folio No: 12345678",
			"INF179K01608 1,500.250 850.75 12,76,538.44",
		}, "\n"),
	}

	res, err := NewStrategy().Parse(context.Background(), doc)
	require.NoError(t, err)
	require.Len(t, res.Holdings, 1)
	assert.True(t, res.Diagnostics.UsedFallbackParser)
	assert.Equal(t, "INF179K01608", res.Holdings[0].ISIN)
}

func TestStrategyParseIsDeterministic(t *testing.T) {
	doc := &extractor.Document{
		Backend: extractor.BackendPlainText,
		Text: strings.Join([]string{
			"Mutual Fund Folios (F)",
			"INF194K01391 Bandhan Flexi Cap Fund-Regular Plan-Growth 12154301 5305.175 56.55 300,000.00 216.4620 11,48,368.79 8,48,368.79 11.27",
			"23-Sep-2024 Systematic Investment (13/24) 4,999.75 216.346 23.11 3,481.562",
		}, "\n"),
	}

	first, err := NewStrategy().Parse(context.Background(), doc)
	require.NoError(t, err)
	second, err := NewStrategy().Parse(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, first.Holdings, second.Holdings)
	assert.Equal(t, first.Transactions, second.Transactions)
}
