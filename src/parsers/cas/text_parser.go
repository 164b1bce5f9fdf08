package cas

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/username/fundfolio/backend/src/logger"
	"github.com/username/fundfolio/backend/src/models"
)

// section tracks which statement block the line scanner is inside. Statements
// interleave blocks per joint holder, so a section can be entered again after
// an unrelated block ends it.
type section int

const (
	sectionNone section = iota
	sectionFolio
	sectionDemat
	sectionOther
)

var (
	dematSectionPattern = regexp.MustCompile(`(?i)mutual\s+funds?\s*\(m\)`)
	otherAssetPattern   = regexp.MustCompile(`(?i)(specialized investment fund|national pension system|government securities|bonds|debentures)`)

	// fillerCodePattern strips registrar placeholders ("NOT AVAILABLE") and
	// UCC-style codes wedged between the ISIN and the scheme name.
	fillerCodePattern = regexp.MustCompile(`^(NOT AVAILABLE|[A-Z]{2,10}[0-9]{4,})\s+`)

	// schemeSpanPattern captures the scheme name up to the first long digit
	// run (a folio) or the first decimal pair (the numeric columns).
	schemeSpanPattern = regexp.MustCompile(`^([A-Za-z\s\-()&.]+?)(?:\s+\d{6,}|\s+\d+\.\d+\s+\d)`)
	longNumberSplit   = regexp.MustCompile(`\d{4,}`)

	folioPattern = regexp.MustCompile(`\b(\d{8,12}[A-Z]?\d*)\b`)

	// balanceTripletPattern is the demat free/pledged/total balance cell.
	balanceTripletPattern = regexp.MustCompile(`[\d,]+\.?\d*/[\d,]+\.?\d*/[\d,]+\.?\d*`)

	firstDigitSplit = regexp.MustCompile(`\d`)
)

// dematMinUnits drops residual dust balances left by partial redemptions.
const dematMinUnits = 0.001

// parseHoldingsFromText is the line-oriented extraction path. It walks the
// statement top to bottom, tracking section boundaries, and parses every
// ISIN-bearing line inside a mutual fund section. Table extraction and this
// path both run on every statement; reconciliation removes the overlap.
func parseHoldingsFromText(text string) []models.HoldingCandidate {
	var holdings []models.HoldingCandidate
	state := sectionNone

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)

		switch {
		case strings.Contains(lower, "mutual fund folios"):
			state = sectionFolio
			continue
		case dematSectionPattern.MatchString(line):
			state = sectionDemat
			continue
		case strings.Contains(line, "Equity") && strings.Contains(lower, "shares"):
			state = sectionOther
			continue
		case otherAssetPattern.MatchString(line):
			state = sectionOther
			continue
		}
		if state != sectionFolio && state != sectionDemat {
			continue
		}

		m := isinPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		isin := strings.ToUpper(m[1])

		var h *models.HoldingCandidate
		if state == sectionDemat {
			h = parseDematLine(line, isin)
		} else {
			h = parseFolioLine(line, isin)
		}
		if h == nil {
			continue
		}
		logger.L.Debug("Parsed holding from text line", "isin", h.ISIN, "scheme", h.SchemeName, "kind", h.Kind)
		holdings = append(holdings, *h)
	}
	return holdings
}

// parseFolioLine handles a registrar-section line: ISIN, optional filler
// code, scheme name, folio number, then the positional numeric columns.
func parseFolioLine(line, isin string) *models.HoldingCandidate {
	after := line
	if idx := strings.Index(strings.ToUpper(line), isin); idx >= 0 {
		after = strings.TrimSpace(line[idx+len(isin):])
	}
	after = fillerCodePattern.ReplaceAllString(after, "")

	var rawName string
	if m := schemeSpanPattern.FindStringSubmatch(after); m != nil {
		rawName = m[1]
	} else {
		rawName = longNumberSplit.Split(after, 2)[0]
	}
	parts := DecomposeSchemeName(rawName)
	if parts.CleanName == "" {
		return nil
	}

	folio := ""
	if m := folioPattern.FindStringSubmatch(after); m != nil {
		folio = m[1]
	}

	vals := mapHoldingNumbers(extractNumbers(after, 0.01))
	h := &models.HoldingCandidate{
		SchemeName:       parts.CleanName,
		PlanType:         parts.PlanType,
		OptionType:       parts.OptionType,
		ISIN:             isin,
		Folio:            folio,
		Units:            vals.units,
		NAV:              vals.nav,
		CurrentValue:     vals.currentValue,
		InvestedAmount:   vals.investedAmount,
		UnrealisedGain:   vals.unrealisedGain,
		AnnualisedReturn: vals.annualisedReturn,
		Kind:             models.HoldingFolio,
	}
	if !h.Retainable() {
		return nil
	}
	return h
}

// parseDematLine handles a depository-section line: scheme name, a balance
// triplet, market price and value. Positional mapping is cross-checked with
// units x NAV against the printed value; a mismatch beyond 10% means the
// first token was not the unit balance, and a token that reproduces the
// value within 5% is searched for instead.
func parseDematLine(line, isin string) *models.HoldingCandidate {
	after := line
	if idx := strings.Index(strings.ToUpper(line), isin); idx >= 0 {
		after = strings.TrimSpace(line[idx+len(isin):])
	}

	var rawName string
	if loc := balanceTripletPattern.FindStringIndex(after); loc != nil {
		rawName = after[:loc[0]]
	} else if loc := firstDigitSplit.FindStringIndex(after); loc != nil {
		rawName = after[:loc[0]]
	} else {
		rawName = after
	}
	parts := DecomposeSchemeName(rawName)
	if parts.CleanName == "" {
		return nil
	}

	tokens := extractNumbers(after, dematMinUnits)
	if len(tokens) < 2 {
		return nil
	}
	units := tokens[0]
	value := tokens[len(tokens)-1]
	var nav *decimal.Decimal
	if len(tokens) >= 3 {
		nav = ptr(tokens[len(tokens)-2])
	}

	if nav != nil && !value.IsZero() {
		diff := units.Mul(*nav).Sub(value).Abs()
		if diff.GreaterThan(value.Mul(decimal.NewFromFloat(0.1))) {
			tolerance := value.Mul(decimal.NewFromFloat(0.05)).Abs()
			for i := 0; i < len(tokens)-2; i++ {
				if tokens[i].Mul(*nav).Sub(value).Abs().LessThanOrEqual(tolerance) {
					units = tokens[i]
					break
				}
			}
		}
	}

	h := &models.HoldingCandidate{
		SchemeName:   parts.CleanName,
		PlanType:     parts.PlanType,
		OptionType:   parts.OptionType,
		ISIN:         isin,
		Units:        ptr(units),
		NAV:          nav,
		CurrentValue: ptr(value),
		Kind:         models.HoldingDemat,
	}
	if !h.Retainable() {
		return nil
	}
	return h
}
