package rules

import "github.com/sells-group/underwrite-cli/internal/model"

// Thresholds. All comparisons are inclusive.
const (
	RevenueThreshold        = 50_000_000 // 5 crore
	BorrowingRatioThreshold = 0.25
	ISCRThreshold           = 2
)

// RevenueFlag is GREEN at or above 5 crore, RED below, WHITE when missing.
func RevenueFlag(revenue float64, ok bool) model.Flag {
	if !ok {
		return model.White
	}
	if revenue >= RevenueThreshold {
		return model.Green
	}
	return model.Red
}

// BorrowingFlag is GREEN at or below 0.25, AMBER above, WHITE when missing.
func BorrowingFlag(ratio float64, ok bool) model.Flag {
	if !ok {
		return model.White
	}
	if ratio <= BorrowingRatioThreshold {
		return model.Green
	}
	return model.Amber
}

// ISCRFlag is GREEN at or above 2, RED below, WHITE when missing.
func ISCRFlag(ratio float64, ok bool) model.Flag {
	if !ok {
		return model.White
	}
	if ratio >= ISCRThreshold {
		return model.Green
	}
	return model.Red
}
