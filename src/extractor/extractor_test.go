package extractor

import (
	"strings"
	"testing"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconstructRows(t *testing.T) {
	// Two visual rows; the upper row has a wide gap that splits it into two
	// cells, the lower row's pieces are close enough to merge into one.
	texts := []pdf.Text{
		{X: 10, Y: 700, W: 60, S: "INF194K01391"},
		{X: 120, Y: 700, W: 40, S: "5305.175"},
		{X: 10, Y: 680, W: 30, S: "Bandhan"},
		{X: 42, Y: 680, W: 30, S: "Flexi Cap"},
	}

	rows := reconstructRows(texts)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"INF194K01391", "5305.175"}, rows[0])
	assert.Equal(t, []string{"BandhanFlexi Cap"}, rows[1])
}

func TestReconstructRowsOrdersTopToBottom(t *testing.T) {
	texts := []pdf.Text{
		{X: 10, Y: 100, W: 20, S: "bottom"},
		{X: 10, Y: 500, W: 20, S: "top"},
	}
	rows := reconstructRows(texts)
	require.Len(t, rows, 2)
	assert.Equal(t, "top", rows[0][0])
	assert.Equal(t, "bottom", rows[1][0])
}

func TestReconstructRowsSkipsBlankPieces(t *testing.T) {
	rows := reconstructRows([]pdf.Text{{X: 10, Y: 100, W: 5, S: "   "}})
	assert.Empty(t, rows)
}

func TestGroupTables(t *testing.T) {
	rows := [][]string{
		{"Consolidated Account Statement"},
		{"ISIN", "Scheme", "Units", "Value"},
		{"INF194K01391", "Bandhan Flexi Cap", "5305.175", "11,48,368.79"},
		{"INF846K01EW2", "Axis Bluechip", "250.000", "30,125.00"},
		{"running text again"},
		{"lonely", "multi", "cell"}, // single multi-cell row, no data row
	}

	tables := groupTables(rows)
	require.Len(t, tables, 1)
	assert.Len(t, tables[0], 3)
	assert.Equal(t, "ISIN", tables[0][0][0])
}

func TestIsReadableText(t *testing.T) {
	good := strings.Repeat("Mutual Fund Folios with ISIN and units listed plainly. ", 3)
	assert.True(t, isReadableText(good))

	t.Run("too short", func(t *testing.T) {
		assert.False(t, isReadableText("folio"))
	})
	t.Run("no statement vocabulary", func(t *testing.T) {
		assert.False(t, isReadableText(strings.Repeat("the quick brown fox jumps over the lazy dog ", 3)))
	})
	t.Run("font garbage", func(t *testing.T) {
		assert.False(t, isReadableText(strings.Repeat("Ã©âÃ± folio ", 20)))
	})
}

func TestTextQuality(t *testing.T) {
	assert.Equal(t, 1.0, textQuality("Plain ASCII statement text 123."))
	assert.Less(t, textQuality("âºâºâº"), 0.5)
	assert.Equal(t, 0.0, textQuality(""))
}
