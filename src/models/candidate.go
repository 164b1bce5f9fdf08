package models

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/shopspring/decimal"
)

// PlanType distinguishes distributor-sold plans from direct plans.
type PlanType string

const (
	PlanDirect  PlanType = "Direct"
	PlanRegular PlanType = "Regular"
)

// OptionType is the payout option encoded in a scheme name.
type OptionType string

const (
	OptionGrowth       OptionType = "Growth"
	OptionDividend     OptionType = "Dividend"
	OptionReinvestment OptionType = "Reinvestment"
)

// HoldingKind says how a position is held: against a registrar folio or as
// demat units in a depository account.
type HoldingKind string

const (
	HoldingFolio HoldingKind = "FOLIO"
	HoldingDemat HoldingKind = "DEMAT"
)

// TransactionKind classifies a statement transaction line.
type TransactionKind string

const (
	TxBuy      TransactionKind = "BUY"
	TxSell     TransactionKind = "SELL"
	TxDividend TransactionKind = "DIVIDEND"
	TxBonus    TransactionKind = "BONUS"
	TxSplit    TransactionKind = "SPLIT"
)

// HoldingCandidate is a provisional position extracted from a statement.
// Numeric fields are nil when the source format does not report them (demat
// sections carry no cost basis, for example).
type HoldingCandidate struct {
	SchemeName       string           `json:"scheme_name"`
	PlanType         PlanType         `json:"plan_type,omitempty"`
	OptionType       OptionType       `json:"option_type,omitempty"`
	ISIN             string           `json:"isin"`
	Folio            string           `json:"folio,omitempty"` // empty for demat holdings
	Units            *decimal.Decimal `json:"units"`
	NAV              *decimal.Decimal `json:"nav"`
	CurrentValue     *decimal.Decimal `json:"current_value"`
	InvestedAmount   *decimal.Decimal `json:"invested_amount"`
	UnrealisedGain   *decimal.Decimal `json:"unrealised_gain"`
	AnnualisedReturn *decimal.Decimal `json:"annualised_return"`
	Kind             HoldingKind      `json:"holding_kind"`
}

// Retainable reports whether the candidate carries enough data to keep.
// A candidate needs a positive unit balance or a current value; anything
// else is a header fragment or summary artifact.
func (h *HoldingCandidate) Retainable() bool {
	if h.Units != nil && !h.Units.IsZero() {
		return true
	}
	return h.CurrentValue != nil && !h.CurrentValue.IsZero()
}

// DedupKey is the identity used to reconcile the same logical holding parsed
// by more than one extraction path.
func (h *HoldingCandidate) DedupKey() string {
	return h.ISIN + "|" + h.Folio
}

// TransactionCandidate is a provisional historical event extracted from a
// statement. Candidates missing a date, a kind, or a non-zero amount are
// discarded at parse time and never reach this type.
type TransactionCandidate struct {
	Date           time.Time        `json:"date"`
	Kind           TransactionKind  `json:"kind"`
	Amount         decimal.Decimal  `json:"amount"`
	Units          *decimal.Decimal `json:"units"`
	UnitPrice      *decimal.Decimal `json:"unit_price"`
	Description    string           `json:"description"`
	SchemeNameHint string           `json:"scheme_name_hint,omitempty"`
	ISINHint       string           `json:"isin_hint,omitempty"`
}

// HashID is a stable content hash used to deduplicate the same event when
// statements with overlapping periods are imported.
func (t *TransactionCandidate) HashID() string {
	sum := sha256.Sum256([]byte(
		t.Date.Format("2006-01-02") + "|" + string(t.Kind) + "|" +
			t.Amount.String() + "|" + t.Description))
	return hex.EncodeToString(sum[:])
}
