package domain

// Group labels attached to aggregate rows
const (
	GroupBRS    = "BRS"
	GroupNonBRS = "Non-BRS"
)

// GroupLabel maps the BRS flag to its display label
func GroupLabel(isBRS bool) string {
	if isBRS {
		return GroupBRS
	}
	return GroupNonBRS
}

// AggregateRecord is the Stress PnL summed over one
// (date, portfolio, scenario, BRS flag) group.
type AggregateRecord struct {
	Date      Date    `json:"date" csv:"Date"`
	Portfolio string  `json:"portfolio" csv:"Portfolio"`
	Scenario  string  `json:"scenario" csv:"Scenario"`
	IsBRS     bool    `json:"is_brs" csv:"-"`
	Group     string  `json:"group" csv:"Group"`
	StressPnL float64 `json:"stress_pnl" csv:"Stress PnL"`
	Rows      int     `json:"rows" csv:"-"`
}

// ScenarioTotal is the Stress PnL of one portfolio summed per scenario
type ScenarioTotal struct {
	Scenario  string  `json:"scenario"`
	StressPnL float64 `json:"stress_pnl"`
}
