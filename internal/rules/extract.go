package rules

import "github.com/sells-group/underwrite-cli/internal/model"

// Statement resolves the statement at idx. An out-of-range index or a null
// entry is a structural fault.
func Statement(doc *model.FinancialDocument, idx int) (*model.FinancialStatement, error) {
	if doc == nil || doc.Financials == nil {
		return nil, NewStructuralFault("financials", "missing")
	}
	if idx < 0 || idx >= len(doc.Financials) {
		return nil, NewStructuralFault(statementPath(idx), "index out of range")
	}
	st := doc.Financials[idx]
	if st == nil {
		return nil, NewStructuralFault(statementPath(idx), "statement is null")
	}
	return st, nil
}

// Field reads section.lineItems.name from the statement at idx. An absent
// section fails fast; an absent, null or non-numeric leaf returns ok=false.
func Field(doc *model.FinancialDocument, idx int, section, name string) (float64, bool, error) {
	st, err := Statement(doc, idx)
	if err != nil {
		return 0, false, err
	}
	switch section {
	case model.SectionPnL, model.SectionBS:
	default:
		return 0, false, NewStructuralFault(sectionPath(idx, section), "unknown section")
	}
	sec := st.Section(section)
	if sec == nil {
		return 0, false, NewStructuralFault(sectionPath(idx, section), "section missing")
	}
	v, ok := sec.LineItems.Get(name)
	return v, ok, nil
}

// FieldOr is Field with def substituted for an absent leaf. A leaf that is
// present but null or non-numeric is not defaulted: it returns ok=false.
func FieldOr(doc *model.FinancialDocument, idx int, section, name string, def float64) (float64, bool, error) {
	v, ok, err := Field(doc, idx, section, name)
	if err != nil {
		return 0, false, err
	}
	if ok {
		return v, true, nil
	}
	if doc.Financials[idx].Section(section).Invalid(name) {
		return 0, false, nil
	}
	return def, true, nil
}
