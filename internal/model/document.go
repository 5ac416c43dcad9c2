// Package model defines the financial-statement document and the flag types
// produced by evaluating it.
package model

import (
	"encoding/json"

	"github.com/rotisserie/eris"
)

// Statement natures seen in filings.
const (
	NatureStandalone   = "STANDALONE"
	NatureConsolidated = "CONSOLIDATED"
)

// Section names within a FinancialStatement.
const (
	SectionPnL = "pnl"
	SectionBS  = "bs"
)

// Line item keys read by the underwriting rules.
const (
	ItemNetRevenue          = "net_revenue"
	ItemLongTermBorrowings  = "longTermBorrowings"
	ItemShortTermBorrowings = "shortTermBorrowings"
	ItemPBIT                = "profit_before_interest_and_tax"
	ItemDepreciation        = "depreciation"
	ItemInterest            = "interest"
)

// FinancialDocument is a company's set of reporting entries, in filing order.
// A nil Financials means the key was absent or null.
type FinancialDocument struct {
	Financials []*FinancialStatement `json:"financials"`
}

// FinancialStatement is one reporting entry. A nil section means the section
// was absent from the document.
type FinancialStatement struct {
	Nature string   `json:"nature"`
	PnL    *Section `json:"pnl"`
	BS     *Section `json:"bs"`
}

// Section returns the named section, or nil if it is absent.
func (s *FinancialStatement) Section(name string) *Section {
	switch name {
	case SectionPnL:
		return s.PnL
	case SectionBS:
		return s.BS
	default:
		return nil
	}
}

// Section holds the line items of a profit-and-loss or balance-sheet block.
type Section struct {
	LineItems LineItems `json:"lineItems"`

	// invalid holds keys that were present but not numeric, null included.
	invalid map[string]struct{}
}

// UnmarshalJSON decodes the section and remembers which line items were
// present without a numeric value.
func (s *Section) UnmarshalJSON(data []byte) error {
	var raw struct {
		LineItems map[string]any `json:"lineItems"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return eris.Wrap(err, "section: decode")
	}
	s.LineItems, s.invalid = splitLineItems(raw.LineItems)
	return nil
}

// Invalid reports whether the named line item was present but held null or a
// non-numeric value.
func (s *Section) Invalid(name string) bool {
	_, ok := s.invalid[name]
	return ok
}

// LineItems maps a field name to its numeric value.
type LineItems map[string]float64

// Get returns the named value and whether it was present.
func (li LineItems) Get(name string) (float64, bool) {
	v, ok := li[name]
	return v, ok
}

// UnmarshalJSON keeps numeric entries and drops everything else (null,
// strings, booleans, nested values).
func (li *LineItems) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return eris.Wrap(err, "line items: decode")
	}
	*li, _ = splitLineItems(raw)
	return nil
}

func splitLineItems(raw map[string]any) (LineItems, map[string]struct{}) {
	if raw == nil {
		return nil, nil
	}
	out := make(LineItems, len(raw))
	var invalid map[string]struct{}
	for k, v := range raw {
		if n, ok := v.(float64); ok {
			out[k] = n
			continue
		}
		if invalid == nil {
			invalid = make(map[string]struct{})
		}
		invalid[k] = struct{}{}
	}
	return out, invalid
}
