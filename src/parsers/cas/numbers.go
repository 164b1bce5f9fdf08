package cas

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// numberPattern matches a signed numeric token with optional thousands
// separators ("1,48,368.79" in Indian grouping, "4999.75", "-216").
var numberPattern = regexp.MustCompile(`-?[\d,]+\.?\d*`)

// folioMagnitude separates folio numbers from monetary values on registrar
// lines: folios are integers above a million, units and NAVs never are.
var folioMagnitude = decimal.NewFromInt(1_000_000)

func ptr(d decimal.Decimal) *decimal.Decimal { return &d }

// parseCell converts one raw table cell to a decimal. Empty cells and bare
// dashes mean "not reported" and come back nil. Cells holding a
// free/pledged/total balance triplet ("1234.5/0.0/1234.5") yield the first
// segment.
func parseCell(raw string) *decimal.Decimal {
	s := strings.TrimSpace(raw)
	if s == "" || s == "-" {
		return nil
	}
	if i := strings.IndexByte(s, '/'); i >= 0 {
		s = s[:i]
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSuffix(s, ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	return &d
}

// extractNumbers pulls every numeric token from a line whose absolute value
// is at least min. The threshold filters out serial numbers and stray digits
// when scanning positional layouts.
func extractNumbers(line string, min float64) []decimal.Decimal {
	matches := numberPattern.FindAllString(line, -1)
	floor := decimal.NewFromFloat(min)
	out := make([]decimal.Decimal, 0, len(matches))
	for _, m := range matches {
		m = strings.ReplaceAll(m, ",", "")
		m = strings.TrimSuffix(m, ".")
		if m == "" || m == "-" {
			continue
		}
		d, err := decimal.NewFromString(m)
		if err != nil {
			continue
		}
		if d.Abs().LessThan(floor) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// holdingValues is the named-field view of a registrar line's numeric tail.
type holdingValues struct {
	units            *decimal.Decimal
	nav              *decimal.Decimal
	currentValue     *decimal.Decimal
	investedAmount   *decimal.Decimal
	unrealisedGain   *decimal.Decimal
	annualisedReturn *decimal.Decimal
}

// mapHoldingNumbers assigns the numeric tokens of a folio-section line to
// named fields by token count. Registrar statements print a fixed column
// order, so the count of surviving tokens identifies the layout:
//
//	>= 8  full CAMS/KFintech layout anchored at the folio number
//	>= 5  partial layout without the folio column
//	>= 3  units, NAV, value
//	 = 2  units, value
//	 = 1  value only
//
// New registrar layouts get a new arm here rather than changes to callers.
func mapHoldingNumbers(tokens []decimal.Decimal) holdingValues {
	var v holdingValues
	// Short layouts carry no folio column; a leading folio-like token means
	// the real columns were blank (a closed position) or truncated.
	if len(tokens) > 0 && len(tokens) < 8 &&
		tokens[0].GreaterThan(folioMagnitude) && tokens[0].IsInteger() {
		tokens = tokens[1:]
	}
	switch {
	case len(tokens) >= 8:
		// Layout after the folio anchor: units, avg cost, total cost,
		// NAV, value, gain, annualised return. Average cost per unit is
		// not carried on the candidate.
		anchor := -1
		for i, tok := range tokens {
			if tok.GreaterThan(folioMagnitude) && tok.IsInteger() {
				anchor = i
				break
			}
		}
		if anchor >= 0 && len(tokens) > anchor+7 {
			v.units = ptr(tokens[anchor+1])
			v.investedAmount = ptr(tokens[anchor+3])
			v.nav = ptr(tokens[anchor+4])
			v.currentValue = ptr(tokens[anchor+5])
			v.unrealisedGain = ptr(tokens[anchor+6])
			v.annualisedReturn = ptr(tokens[anchor+7])
			break
		}
		// No folio anchor: trust the fixed tail instead.
		n := len(tokens)
		v.units = ptr(tokens[0])
		v.investedAmount = ptr(tokens[n-5])
		v.nav = ptr(tokens[n-4])
		v.currentValue = ptr(tokens[n-3])
		v.unrealisedGain = ptr(tokens[n-2])
		v.annualisedReturn = ptr(tokens[n-1])
	case len(tokens) >= 5:
		v.units = ptr(tokens[0])
		v.investedAmount = ptr(tokens[1])
		v.nav = ptr(tokens[2])
		v.currentValue = ptr(tokens[3])
		v.unrealisedGain = ptr(tokens[4])
		if len(tokens) > 5 {
			v.annualisedReturn = ptr(tokens[5])
		}
	case len(tokens) >= 3:
		v.units = ptr(tokens[0])
		v.nav = ptr(tokens[1])
		v.currentValue = ptr(tokens[len(tokens)-1])
	case len(tokens) == 2:
		v.units = ptr(tokens[0])
		v.currentValue = ptr(tokens[1])
	case len(tokens) == 1:
		v.currentValue = ptr(tokens[0])
	}
	return v
}
