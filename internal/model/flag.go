package model

import (
	"encoding/json"

	"github.com/rotisserie/eris"
)

// Flag is a categorical underwriting risk indicator. The integer values are
// the wire encoding and must not change.
type Flag int

const (
	Red        Flag = 0 // fail
	Green      Flag = 1 // pass
	Amber      Flag = 2 // caution
	MediumRisk Flag = 3 // display only, no rule assigns it
	White      Flag = 4 // input data missing
)

// String returns the flag's variant name.
func (f Flag) String() string {
	switch f {
	case Red:
		return "RED"
	case Green:
		return "GREEN"
	case Amber:
		return "AMBER"
	case MediumRisk:
		return "MEDIUM_RISK"
	case White:
		return "WHITE"
	default:
		return "UNKNOWN"
	}
}

// Valid reports whether f is one of the five defined variants.
func (f Flag) Valid() bool {
	return f >= Red && f <= White
}

// ParseFlag converts a variant name like "GREEN" into a Flag.
func ParseFlag(s string) (Flag, error) {
	switch s {
	case "RED":
		return Red, nil
	case "GREEN":
		return Green, nil
	case "AMBER":
		return Amber, nil
	case "MEDIUM_RISK":
		return MediumRisk, nil
	case "WHITE":
		return White, nil
	default:
		return 0, eris.Errorf("unknown flag: %q (valid: RED, GREEN, AMBER, MEDIUM_RISK, WHITE)", s)
	}
}

// MarshalJSON encodes the flag as its integer code.
func (f Flag) MarshalJSON() ([]byte, error) {
	if !f.Valid() {
		return nil, eris.Errorf("flag: invalid value %d", int(f))
	}
	return json.Marshal(int(f))
}

// UnmarshalJSON decodes an integer code, rejecting values outside the enumeration.
func (f *Flag) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return eris.Wrap(err, "flag: decode")
	}
	v := Flag(n)
	if !v.Valid() {
		return eris.Errorf("flag: invalid value %d", n)
	}
	*f = v
	return nil
}

// MarshalYAML encodes the flag as its integer code.
func (f Flag) MarshalYAML() (any, error) {
	if !f.Valid() {
		return nil, eris.Errorf("flag: invalid value %d", int(f))
	}
	return int(f), nil
}

// FlagName identifies one underwriting flag in an EvaluationResult.
type FlagName string

const (
	TotalRevenue5CrFlag    FlagName = "TOTAL_REVENUE_5CR_FLAG"
	BorrowingToRevenueFlag FlagName = "BORROWING_TO_REVENUE_FLAG"
	ISCRFlag               FlagName = "ISCR_FLAG"
)

// FlagNames returns every flag name in evaluation order.
func FlagNames() []FlagName {
	return []FlagName{TotalRevenue5CrFlag, BorrowingToRevenueFlag, ISCRFlag}
}

// EvaluationResult maps each flag name to its assigned flag.
type EvaluationResult map[FlagName]Flag

// Output is the boundary shape of an evaluation: {"flags": {...}}.
type Output struct {
	Flags EvaluationResult `json:"flags" yaml:"flags"`
}
