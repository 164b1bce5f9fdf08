package cas

import (
	"regexp"
	"strings"

	"github.com/username/fundfolio/backend/src/logger"
	"github.com/username/fundfolio/backend/src/models"
)

// isinPattern anchors holding rows. Indian mutual fund ISINs start with INF;
// the variable tail absorbs registrar-appended check characters.
var isinPattern = regexp.MustCompile(`(?i)\b(INF[A-Z0-9]{9,12})\b`)

// tableKind is the classification of a reconstructed table's header row.
type tableKind int

const (
	tableUnknown tableKind = iota
	tableFolio
	tableDemat
)

// classifyTable admits only headers carrying an ISIN column: every holdings
// table prints one, while transaction-history tables reuse folio/amount
// vocabulary but never do. With the gate passed, a folio column means a
// registrar table and a security column a depository table; headers with
// neither marker fall back to a vocabulary vote.
func classifyTable(header []string) tableKind {
	joined := strings.ToLower(strings.Join(header, " "))
	if !strings.Contains(joined, "isin") {
		return tableUnknown
	}
	if strings.Contains(joined, "folio") {
		return tableFolio
	}
	if strings.Contains(joined, "security") {
		return tableDemat
	}

	folioScore := 0
	for _, w := range []string{"total cost", "invested", "annualised", "annualized", "unrealised", "unrealized"} {
		if strings.Contains(joined, w) {
			folioScore++
		}
	}
	dematScore := 0
	for _, w := range []string{"current bal", "market price", "face value"} {
		if strings.Contains(joined, w) {
			dematScore++
		}
	}
	switch {
	case folioScore == 0 && dematScore == 0:
		return tableUnknown
	case dematScore > folioScore:
		return tableDemat
	default:
		return tableFolio
	}
}

// mapFolioColumns maps registrar header cells to field names. Each header
// cell assigns at most one field, and the first cell claiming a field wins;
// later duplicates (a second "value" column in a merged header) are ignored.
func mapFolioColumns(header []string) map[string]int {
	m := make(map[string]int)
	set := func(field string, idx int) {
		if _, ok := m[field]; !ok {
			m[field] = idx
		}
	}
	for i, cell := range header {
		c := strings.ToLower(strings.TrimSpace(cell))
		switch {
		case strings.Contains(c, "isin") && !strings.Contains(c, "desc"):
			set("isin", i)
		case strings.Contains(c, "description") || strings.Contains(c, "scheme"):
			set("description", i)
		case strings.Contains(c, "folio"):
			set("folio", i)
		case strings.Contains(c, "units") && !strings.Contains(c, "average") && !strings.Contains(c, "per"):
			set("units", i)
		case strings.Contains(c, "total cost") || strings.Contains(c, "invested"):
			set("invested", i)
		case strings.Contains(c, "current nav") || (strings.Contains(c, "nav") && strings.Contains(c, "per")):
			set("nav", i)
		case strings.Contains(c, "current value") || (strings.Contains(c, "value") && strings.Contains(c, "in")):
			set("value", i)
		case strings.Contains(c, "unrealised") || strings.Contains(c, "unrealized"):
			set("gain", i)
		case strings.Contains(c, "annualised") || strings.Contains(c, "annualized"):
			set("return", i)
		}
	}
	return m
}

// mapDematColumns is the depository-statement equivalent of mapFolioColumns.
// Demat tables never report cost basis, gain or return.
func mapDematColumns(header []string) map[string]int {
	m := make(map[string]int)
	set := func(field string, idx int) {
		if _, ok := m[field]; !ok {
			m[field] = idx
		}
	}
	for i, cell := range header {
		c := strings.ToLower(strings.TrimSpace(cell))
		switch {
		case strings.Contains(c, "isin"):
			set("isin", i)
		case strings.Contains(c, "security") || strings.Contains(c, "description"):
			set("description", i)
		case strings.Contains(c, "current") && strings.Contains(c, "bal"):
			set("units", i)
		case strings.Contains(c, "market") && strings.Contains(c, "price"):
			set("nav", i)
		case strings.Contains(c, "value") && strings.Contains(c, "in"):
			set("value", i)
		}
	}
	return m
}

func cellAt(row []string, colMap map[string]int, field string) string {
	idx, ok := colMap[field]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseHoldingsFromTables converts reconstructed tables into holding
// candidates. A malformed row is logged and skipped; it never aborts the
// table, much less the statement.
func parseHoldingsFromTables(tables [][][]string) []models.HoldingCandidate {
	var holdings []models.HoldingCandidate
	for ti, table := range tables {
		if len(table) < 2 {
			continue
		}
		kind := classifyTable(table[0])
		if kind == tableUnknown {
			continue
		}
		var colMap map[string]int
		if kind == tableDemat {
			colMap = mapDematColumns(table[0])
		} else {
			colMap = mapFolioColumns(table[0])
		}
		if _, ok := colMap["isin"]; !ok {
			if _, ok := colMap["description"]; !ok {
				continue
			}
		}

		for ri, row := range table[1:] {
			h := parseTableRow(row, colMap, kind)
			if h == nil {
				continue
			}
			logger.L.Debug("Parsed holding from table row",
				"table", ti, "row", ri, "isin", h.ISIN, "scheme", h.SchemeName)
			holdings = append(holdings, *h)
		}
	}
	return holdings
}

func parseTableRow(row []string, colMap map[string]int, kind tableKind) *models.HoldingCandidate {
	if len(row) < 2 {
		return nil
	}
	joined := strings.ToLower(strings.Join(row, " "))
	if strings.Contains(joined, "total") {
		return nil
	}

	isin := ""
	if m := isinPattern.FindStringSubmatch(cellAt(row, colMap, "isin")); m != nil {
		isin = strings.ToUpper(m[1])
	} else {
		// Some layouts merge the ISIN into the description cell.
		for _, cell := range row {
			if m := isinPattern.FindStringSubmatch(cell); m != nil {
				isin = strings.ToUpper(m[1])
				break
			}
		}
	}
	if isin == "" {
		return nil
	}

	rawName := cellAt(row, colMap, "description")
	rawName = strings.Replace(rawName, isin, "", 1)
	parts := DecomposeSchemeName(rawName)
	if parts.CleanName == "" {
		return nil
	}

	h := &models.HoldingCandidate{
		SchemeName:   parts.CleanName,
		PlanType:     parts.PlanType,
		OptionType:   parts.OptionType,
		ISIN:         isin,
		Units:        parseCell(cellAt(row, colMap, "units")),
		NAV:          parseCell(cellAt(row, colMap, "nav")),
		CurrentValue: parseCell(cellAt(row, colMap, "value")),
		Kind:         models.HoldingDemat,
	}
	if kind == tableFolio {
		h.Kind = models.HoldingFolio
		h.Folio = cellAt(row, colMap, "folio")
		h.InvestedAmount = parseCell(cellAt(row, colMap, "invested"))
		h.UnrealisedGain = parseCell(cellAt(row, colMap, "gain"))
		h.AnnualisedReturn = parseCell(cellAt(row, colMap, "return"))
	}
	if !h.Retainable() {
		return nil
	}
	return h
}
