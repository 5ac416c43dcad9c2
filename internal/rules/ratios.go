package rules

import (
	"math"

	"github.com/sells-group/underwrite-cli/internal/model"
)

// Metric names, used as observer keys and in assessments.
const (
	MetricTotalRevenue   = "total_revenue"
	MetricBorrowingRatio = "borrowing_to_revenue"
	MetricISCR           = "iscr"
)

// TotalRevenue returns pnl.lineItems.net_revenue. It has no default: an
// absent value is missing.
func TotalRevenue(doc *model.FinancialDocument, idx int) (float64, bool, error) {
	return Field(doc, idx, model.SectionPnL, model.ItemNetRevenue)
}

// BorrowingRatio returns (longTermBorrowings + shortTermBorrowings) / revenue.
// Absent borrowings count as zero; a null borrowing makes the ratio missing.
// The ratio is also missing when revenue is missing, zero or negative. Revenue is read again here, not shared with
// TotalRevenue.
func BorrowingRatio(doc *model.FinancialDocument, idx int) (float64, bool, error) {
	revenue, ok, err := TotalRevenue(doc, idx)
	if err != nil {
		return 0, false, err
	}

	longTerm, longOK, err := FieldOr(doc, idx, model.SectionBS, model.ItemLongTermBorrowings, 0)
	if err != nil {
		return 0, false, err
	}
	shortTerm, shortOK, err := FieldOr(doc, idx, model.SectionBS, model.ItemShortTermBorrowings, 0)
	if err != nil {
		return 0, false, err
	}

	if !ok || !longOK || !shortOK || revenue <= 0 {
		return 0, false, nil
	}
	return finite((longTerm + shortTerm) / revenue)
}

// ISCR returns the interest service coverage ratio
// (pbit + depreciation + 1) / (interest + 1). Absent depreciation and
// interest default to zero. A missing PBIT, or a null depreciation or
// interest, makes the ratio missing.
func ISCR(doc *model.FinancialDocument, idx int) (float64, bool, error) {
	pbit, ok, err := Field(doc, idx, model.SectionPnL, model.ItemPBIT)
	if err != nil {
		return 0, false, err
	}
	depreciation, depOK, err := FieldOr(doc, idx, model.SectionPnL, model.ItemDepreciation, 0)
	if err != nil {
		return 0, false, err
	}
	interest, intOK, err := FieldOr(doc, idx, model.SectionPnL, model.ItemInterest, 0)
	if err != nil {
		return 0, false, err
	}

	if !ok || !depOK || !intOK {
		return 0, false, nil
	}
	return finite((pbit + depreciation + 1) / (interest + 1))
}

// finite treats Inf and NaN as missing.
func finite(v float64) (float64, bool, error) {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false, nil
	}
	return v, true, nil
}
