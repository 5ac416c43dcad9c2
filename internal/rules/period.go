package rules

import "github.com/sells-group/underwrite-cli/internal/model"

// SelectPeriod returns the index of the first STANDALONE statement, falling
// back to 0 when none is standalone. The fallback is silent: callers must not
// assume the returned statement is actually standalone.
func SelectPeriod(doc *model.FinancialDocument) (int, error) {
	if doc == nil || doc.Financials == nil {
		return 0, NewStructuralFault("financials", "missing")
	}
	if len(doc.Financials) == 0 {
		return 0, ErrNoPeriods
	}
	for i, st := range doc.Financials {
		if st != nil && st.Nature == model.NatureStandalone {
			return i, nil
		}
	}
	return 0, nil
}
