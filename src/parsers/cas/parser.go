// Package cas implements the heuristic extraction pipeline for consolidated
// account statements. Tables and raw text are parsed independently, the
// candidates reconciled by (ISIN, folio), and a loose anchor scan recovers
// statements whose layout defeats both sectioned paths.
package cas

import (
	"context"
	"strings"

	"github.com/username/fundfolio/backend/src/extractor"
	"github.com/username/fundfolio/backend/src/logger"
	"github.com/username/fundfolio/backend/src/models"
)

// Strategy is the rule-based parser tier. It is always the last tier in the
// strategy chain and never returns an error: whatever it cannot parse comes
// back as an empty result with diagnostics explaining why.
type Strategy struct{}

func NewStrategy() *Strategy { return &Strategy{} }

func (s *Strategy) Name() string { return "heuristic" }

func (s *Strategy) Parse(_ context.Context, doc *extractor.Document) (*models.ParseResult, error) {
	res := &models.ParseResult{
		Diagnostics: models.ParseDiagnostics{
			Strategy:          s.Name(),
			ExtractionBackend: doc.Backend,
			TablesSeen:        len(doc.Tables),
		},
	}
	if strings.TrimSpace(doc.Text) == "" && len(doc.Tables) == 0 {
		logger.L.Warn("No extracted content to parse")
		return res, nil
	}

	res.Investor = ParseInvestorInfo(doc.Text)

	candidates := parseHoldingsFromTables(doc.Tables)
	candidates = append(candidates, parseHoldingsFromText(doc.Text)...)
	res.Diagnostics.HoldingsBeforeDedup = len(candidates)
	res.Holdings = reconcileHoldings(candidates)

	if len(res.Holdings) == 0 {
		logger.L.Warn("Sectioned parsers found no holdings, running loose anchor scan")
		res.Holdings = parseHoldingsLastResort(doc.Text)
		res.Diagnostics.UsedFallbackParser = true
	}
	res.Diagnostics.HoldingsAfterDedup = len(res.Holdings)

	res.Transactions = ParseTransactions(doc.Text)

	logger.L.Info("Statement parsed",
		"strategy", s.Name(),
		"holdings", len(res.Holdings),
		"transactions", len(res.Transactions),
		"duplicatesDropped", res.Diagnostics.HoldingsBeforeDedup-len(res.Holdings),
		"usedLooseScan", res.Diagnostics.UsedFallbackParser)
	return res, nil
}
