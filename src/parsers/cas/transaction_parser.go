package cas

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/username/fundfolio/backend/src/logger"
	"github.com/username/fundfolio/backend/src/models"
)

// maxDescriptionLen caps the stored raw line of a transaction candidate.
const maxDescriptionLen = 200

var (
	isinLabelPattern    = regexp.MustCompile(`(?i)ISIN\s*:?\s*([A-Z0-9]{12})`)
	isinTrailerPattern  = regexp.MustCompile(`(?i)\s*ISIN.*$`)
	embeddedDatePattern = regexp.MustCompile(`\d{1,2}[-/][A-Za-z]{3}[-/]\d{4}`)

	// Labeled layouts: "4,999.75 Amount 216.346 Units 23.11 Price" and the
	// "Amount: x Units: y NAV: z" variant.
	labeledValuesPattern = regexp.MustCompile(`(?i)([\d,]+\.?\d*)\s+amount[,\s]+([\d,]+\.?\d*)\s+units[,\s]+([\d,]+\.?\d*)\s+(?:price|nav)`)
	altLabeledPattern    = regexp.MustCompile(`(?i)amount[:\s]+([\d,]+\.?\d*)[,\s]+units[:\s]+([\d,]+\.?\d*)[,\s]+(?:price|nav)[:\s]+([\d,]+\.?\d*)`)

	// descStripPattern consumes the transaction description between the date
	// and the numeric columns. Parenthetical groups are consumed whole so the
	// installment counter in "Systematic Investment (13/24)" does not stop
	// the strip mid-way and leak its digits into the amount.
	descStripPattern = regexp.MustCompile(`^(?:[A-Za-z\s/*.:&-]|\([^)]*\))+`)
)

var fundHeadingWords = []string{"fund", "scheme", "plan", "growth", "dividend", "mutual"}

var (
	buyWords      = []string{"purchase", "bought", "investment", "sip", "systematic", "allotment", "subscription", "buy"}
	sellWords     = []string{"redemption", "sold", "withdrawal", "repurchase", "switch out", "sell", "withdraw"}
	dividendWords = []string{"dividend", "payout", "income distribution", "idcw"}
)

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// classifyTransaction maps a lowercased line to a transaction kind by keyword
// precedence. Lines matching no keyword are unclassifiable and get discarded
// by the caller; guessing a kind would corrupt any downstream position math.
func classifyTransaction(lower string) (models.TransactionKind, bool) {
	switch {
	case containsAny(lower, buyWords):
		return models.TxBuy, true
	case containsAny(lower, sellWords):
		return models.TxSell, true
	case containsAny(lower, dividendWords):
		return models.TxDividend, true
	case strings.Contains(lower, "bonus"):
		return models.TxBonus, true
	case strings.Contains(lower, "split"):
		return models.TxSplit, true
	case strings.Contains(lower, "switch"):
		if strings.Contains(lower, "switch in") || strings.Contains(lower, "switch to") {
			return models.TxBuy, true
		}
		return models.TxSell, true
	}
	return "", false
}

// ParseTransactions scans statement text for dated transaction lines. The
// scan runs independently of holdings extraction: a statement with an empty
// holdings section can still yield its transaction history.
//
// Scheme headings and "ISIN: ..." labels between transaction blocks are
// tracked as context, so each candidate carries a hint of which scheme its
// block belongs to.
func ParseTransactions(text string) []models.TransactionCandidate {
	var txs []models.TransactionCandidate
	var schemeHint, isinHint string

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if m := isinLabelPattern.FindStringSubmatch(line); m != nil {
			isinHint = strings.ToUpper(m[1])
		}

		dateStr := leadingDatePattern.FindString(line)
		if dateStr == "" {
			if name, ok := schemeHeading(line); ok {
				schemeHint = name
			}
			continue
		}

		lower := strings.ToLower(line)
		// Stamp duty rows and masked lines are statement noise, not events.
		if strings.Contains(lower, "stamp duty") || strings.Contains(line, "***") {
			continue
		}

		date, ok := parseFlexibleDate(dateStr)
		if !ok {
			continue
		}
		kind, ok := classifyTransaction(lower)
		if !ok {
			logger.L.Debug("Discarding unclassifiable transaction line", "line", truncate(line, 80))
			continue
		}
		amount, units, price := extractTransactionValues(line, dateStr)
		if amount == nil || amount.IsZero() {
			continue
		}

		txs = append(txs, models.TransactionCandidate{
			Date:           date,
			Kind:           kind,
			Amount:         *amount,
			Units:          units,
			UnitPrice:      price,
			Description:    truncate(line, maxDescriptionLen),
			SchemeNameHint: schemeHint,
			ISINHint:       isinHint,
		})
	}
	return txs
}

// schemeHeading decides whether an undated line is a scheme heading that
// should become context for the transaction block below it.
func schemeHeading(line string) (string, bool) {
	if len(line) < 30 || embeddedDatePattern.MatchString(line) {
		return "", false
	}
	if !containsAny(strings.ToLower(line), fundHeadingWords) {
		return "", false
	}
	name := collapseWhitespace(isinTrailerPattern.ReplaceAllString(line, ""))
	if len(name) <= 10 {
		return "", false
	}
	return name, true
}

// extractTransactionValues resolves amount, units and unit price from a
// transaction line, trying three layouts in order of reliability: explicitly
// labeled values, positional values after stripping the date and description,
// then a magnitude heuristic over whatever numbers remain.
func extractTransactionValues(line, dateStr string) (amount, units, price *decimal.Decimal) {
	if m := labeledValuesPattern.FindStringSubmatch(line); m != nil {
		if a := parseCell(m[1]); a != nil {
			return a, parseCell(m[2]), parseCell(m[3])
		}
	}
	if m := altLabeledPattern.FindStringSubmatch(line); m != nil {
		if a := parseCell(m[1]); a != nil {
			return a, parseCell(m[2]), parseCell(m[3])
		}
	}

	rest := strings.TrimSpace(strings.TrimPrefix(line, dateStr))
	rest = strings.TrimSpace(descStripPattern.ReplaceAllString(rest, ""))
	nums := extractNumbers(rest, 0)
	if len(nums) >= 3 {
		// amount units price [balance]
		if nums[0].GreaterThan(decimal.NewFromInt(10)) && nums[1].IsPositive() {
			return ptr(nums[0]), ptr(nums[1]), ptr(nums[2])
		}
	}

	nums = extractNumbers(rest, 0.01)
	switch {
	case len(nums) >= 3:
		if nums[0].GreaterThan(nums[1].Mul(decimal.NewFromInt(10))) {
			return ptr(nums[0]), ptr(nums[1]), ptr(nums[2])
		}
		return ptr(nums[len(nums)-1]), ptr(nums[0]), ptr(nums[1])
	case len(nums) == 2:
		return ptr(nums[0]), ptr(nums[1]), nil
	case len(nums) == 1:
		return ptr(nums[0]), nil, nil
	}
	return nil, nil, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
