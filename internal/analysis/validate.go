package analysis

import "github.com/rewired-gh/countrystats/internal/models"

// Verdict reasons.
const (
	ReasonRangeOrder  = "range order"
	ReasonMissingData = "missing data"
)

// Validate decides whether state may be rendered. Rules short-circuit in order:
// an inverted range, then the first year in range where the primary series (or
// the secondary series, when one is selected) has no usable value.
func Validate(state models.Reader) (bool, string) {
	start, end := state.StartYear(), state.EndYear()
	if end < start {
		return false, ReasonRangeOrder
	}

	primary := state.Primary()
	secondary := state.Secondary()
	needSecondary := !state.Indicator().IsPrimary()

	for y := start; y <= end; y++ {
		if !primary.Has(y) {
			return false, ReasonMissingData
		}
		if needSecondary && !secondary.Has(y) {
			return false, ReasonMissingData
		}
	}
	return true, ""
}

// Message turns a verdict reason into the text shown to the user.
func Message(reason string) string {
	switch reason {
	case ReasonRangeOrder:
		return "End year must be greater than or equal to start year"
	case ReasonMissingData:
		return "There is missing data for the chosen analysis type and country in the date range"
	default:
		return reason
	}
}
