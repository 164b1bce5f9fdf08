package cas

import (
	"github.com/username/fundfolio/backend/src/logger"
	"github.com/username/fundfolio/backend/src/models"
)

// reconcileHoldings merges the table-path and text-path candidate lists.
// Identity is (ISIN, folio); demat holdings have no folio, so one demat
// position and one folio position in the same scheme stay distinct. The
// first candidate wins because table extraction runs first and its cell
// boundaries are more trustworthy than positional text mapping.
func reconcileHoldings(candidates []models.HoldingCandidate) []models.HoldingCandidate {
	seen := make(map[string]struct{}, len(candidates))
	unique := make([]models.HoldingCandidate, 0, len(candidates))
	for _, h := range candidates {
		key := h.DedupKey()
		if _, dup := seen[key]; dup {
			logger.L.Debug("Dropping duplicate holding", "isin", h.ISIN, "folio", h.Folio, "scheme", h.SchemeName)
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, h)
	}
	return unique
}
