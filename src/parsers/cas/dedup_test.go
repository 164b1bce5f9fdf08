package cas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/fundfolio/backend/src/models"
)

func holding(t *testing.T, isin, folio, units string) models.HoldingCandidate {
	t.Helper()
	u := dec(t, units)
	return models.HoldingCandidate{
		SchemeName: "Some Fund",
		ISIN:       isin,
		Folio:      folio,
		Units:      &u,
		Kind:       models.HoldingFolio,
	}
}

func TestReconcileHoldingsFirstWins(t *testing.T) {
	in := []models.HoldingCandidate{
		holding(t, "INF194K01391", "12154301", "5305.175"), // table path
		holding(t, "INF194K01391", "12154301", "9999.999"), // text path duplicate
	}
	out := reconcileHoldings(in)
	require.Len(t, out, 1)
	requireDec(t, "5305.175", out[0].Units)
}

func TestReconcileHoldingsFolioDistinguishesPositions(t *testing.T) {
	in := []models.HoldingCandidate{
		holding(t, "INF194K01391", "12154301", "100"),
		holding(t, "INF194K01391", "99887766", "200"), // same scheme, second folio
		holding(t, "INF194K01391", "", "300"),         // demat position, no folio
	}
	out := reconcileHoldings(in)
	assert.Len(t, out, 3)
}

func TestReconcileHoldingsEmptyInput(t *testing.T) {
	assert.Empty(t, reconcileHoldings(nil))
}
