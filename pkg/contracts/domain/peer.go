package domain

// Dispersion selects how peer spread is measured
type Dispersion string

const (
	// DispersionStd reports the sample standard deviation and a z-score
	DispersionStd Dispersion = "std"
	// DispersionQuartile reports the 25th and 75th percentiles
	DispersionQuartile Dispersion = "quartile"
)

// PeerRequest names the analysis portfolio and the peers it is compared against
type PeerRequest struct {
	Analysis   string     `json:"analysis" validate:"required"`
	Peers      []string   `json:"peers" validate:"dive,required"`
	Dispersion Dispersion `json:"dispersion" validate:"omitempty,oneof=std quartile"`
}

// PeerStatistic compares the analysis portfolio with its peers for one scenario.
// Nil pointers are undefined values (e.g. no standard deviation with one peer).
type PeerStatistic struct {
	Scenario      string   `json:"scenario"`
	AnalysisValue float64  `json:"analysis_value"`
	PeerCount     int      `json:"peer_count"`
	PeerMedian    float64  `json:"peer_median"`
	PeerStd       *float64 `json:"peer_std,omitempty"`
	ZScore        *float64 `json:"z_score"`
	PeerQ25       *float64 `json:"peer_q25,omitempty"`
	PeerQ75       *float64 `json:"peer_q75,omitempty"`
}

// PeerReport is the full peer comparison for one request
type PeerReport struct {
	Analysis   string          `json:"analysis"`
	Peers      []string        `json:"peers"`
	Dispersion Dispersion      `json:"dispersion"`
	Rows       []PeerStatistic `json:"rows"`
}
