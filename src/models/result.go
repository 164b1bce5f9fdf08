package models

// InvestorInfo is the account-holder identity block found near the top of a
// statement. All fields are best-effort and may be empty.
type InvestorInfo struct {
	Name  string `json:"name,omitempty"`
	PAN   string `json:"pan,omitempty"`
	Email string `json:"email,omitempty"`
}

// ParseDiagnostics carries operational counts for logging. Callers must not
// base correctness decisions on it.
type ParseDiagnostics struct {
	ImportID            string `json:"import_id,omitempty"`
	ExtractionBackend   string `json:"extraction_backend"`
	Strategy            string `json:"strategy"`
	TablesSeen          int    `json:"tables_seen"`
	HoldingsBeforeDedup int    `json:"holdings_before_dedup"`
	HoldingsAfterDedup  int    `json:"holdings_after_dedup"`
	UsedFallbackParser  bool   `json:"used_fallback_parser,omitempty"`
}

// ParseResult is the engine's output for one statement. A result with zero
// holdings and zero transactions is valid, not an error; the diagnostics say
// what happened.
type ParseResult struct {
	Investor     InvestorInfo           `json:"investor"`
	Holdings     []HoldingCandidate     `json:"holdings"`
	Transactions []TransactionCandidate `json:"transactions"`
	Diagnostics  ParseDiagnostics       `json:"diagnostics"`
}

// Empty reports whether the result carries no extracted records at all.
// The strategy dispatcher uses it to decide whether to advance to the next
// strategy in the chain.
func (r *ParseResult) Empty() bool {
	return len(r.Holdings) == 0 && len(r.Transactions) == 0
}
