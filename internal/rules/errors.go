package rules

import (
	"errors"
	"fmt"
)

// StructuralFault reports a document that lacks a required section or shape.
// It always aborts evaluation.
type StructuralFault struct {
	Path   string
	Reason string
}

func (e *StructuralFault) Error() string {
	return fmt.Sprintf("structural fault at %s: %s", e.Path, e.Reason)
}

// Is matches any StructuralFault with the same path and reason, so sentinel
// faults like ErrNoPeriods work with errors.Is through wrapping.
func (e *StructuralFault) Is(target error) bool {
	t, ok := target.(*StructuralFault)
	if !ok {
		return false
	}
	return e.Path == t.Path && e.Reason == t.Reason
}

// NewStructuralFault creates a StructuralFault for the given document path.
func NewStructuralFault(path, reason string) *StructuralFault {
	return &StructuralFault{Path: path, Reason: reason}
}

// ErrNoPeriods is returned when the document contains no statements at all.
var ErrNoPeriods = NewStructuralFault("financials", "no statements")

// IsStructural returns true if err (or any error in its chain) is a
// StructuralFault.
func IsStructural(err error) bool {
	if err == nil {
		return false
	}
	var sf *StructuralFault
	return errors.As(err, &sf)
}

func statementPath(idx int) string {
	return fmt.Sprintf("financials[%d]", idx)
}

func sectionPath(idx int, section string) string {
	return fmt.Sprintf("financials[%d].%s", idx, section)
}
