package cas

import (
	"regexp"
	"strings"

	"github.com/username/fundfolio/backend/src/logger"
	"github.com/username/fundfolio/backend/src/models"
)

var (
	folioLabelPattern = regexp.MustCompile(`(?i)Folio\s*(?:No\.?)?\s*:?\s*(\d+[A-Z]?\d*)`)

	// multiDecimalPattern marks lines that are mostly numeric columns; such a
	// line cannot be the scheme-name heading for a nearby ISIN anchor.
	multiDecimalPattern = regexp.MustCompile(`[\d,]+\.\d{2,}`)
)

var schemeNameWords = []string{"fund", "scheme", "plan"}

// parseHoldingsLastResort runs only when the sectioned parsers produced
// nothing. It drops all section gating and scans the whole text for ISIN
// anchors, guessing the scheme name and folio from surrounding lines. The
// results are rougher, which is acceptable for a tier that otherwise
// returns an empty statement.
func parseHoldingsLastResort(text string) []models.HoldingCandidate {
	lines := strings.Split(text, "\n")
	var holdings []models.HoldingCandidate

	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		m := isinPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		isin := strings.ToUpper(m[1])

		after := line
		if idx := strings.Index(strings.ToUpper(line), isin); idx >= 0 {
			after = strings.TrimSpace(line[idx+len(isin):])
		}
		nums := extractNumbers(after, 0.01)
		if len(nums) < 2 && i+1 < len(lines) {
			nums = append(nums, extractNumbers(lines[i+1], 0.01)...)
		}
		if len(nums) < 2 {
			continue
		}

		rawName := nearbySchemeName(lines, i)
		if rawName == "" {
			continue
		}
		parts := DecomposeSchemeName(rawName)

		h := models.HoldingCandidate{
			SchemeName:   parts.CleanName,
			PlanType:     parts.PlanType,
			OptionType:   parts.OptionType,
			ISIN:         isin,
			Folio:        nearbyFolio(lines, i),
			Units:        ptr(nums[0]),
			NAV:          ptr(nums[1]),
			CurrentValue: ptr(nums[len(nums)-1]),
			Kind:         models.HoldingFolio,
		}
		if !h.Retainable() {
			continue
		}
		logger.L.Debug("Recovered holding in loose scan", "isin", h.ISIN, "scheme", h.SchemeName)
		holdings = append(holdings, h)
	}
	return reconcileHoldings(holdings)
}

// nearbySchemeName looks for a heading-like line in the window around the
// ISIN anchor: long enough to be a scheme name, free of numeric columns, and
// carrying fund vocabulary.
func nearbySchemeName(lines []string, anchor int) string {
	lo := max(0, anchor-5)
	hi := min(len(lines), anchor+2)
	for j := lo; j < hi; j++ {
		l := strings.TrimSpace(lines[j])
		if len(l) <= 20 || multiDecimalPattern.MatchString(l) {
			continue
		}
		if containsAny(strings.ToLower(l), schemeNameWords) {
			return collapseWhitespace(isinTrailerPattern.ReplaceAllString(l, ""))
		}
	}
	return ""
}

// nearbyFolio looks for an explicit "Folio No: ..." label near the anchor.
func nearbyFolio(lines []string, anchor int) string {
	lo := max(0, anchor-3)
	hi := min(len(lines), anchor+2)
	for j := lo; j < hi; j++ {
		if m := folioLabelPattern.FindStringSubmatch(lines[j]); m != nil {
			return m[1]
		}
	}
	return ""
}
