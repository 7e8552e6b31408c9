package analytics

import (
	"errors"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/giuliam-97/Stress-Test/pkg/contracts/domain"
)

// Preconditions of a peer comparison. They describe a "nothing to show"
// state rather than a failure of the data.
var (
	ErrNoPeers                = errors.New("no peer portfolios selected")
	ErrPeerOverlap            = errors.New("analysis portfolio is also a peer")
	ErrInsufficientPortfolios = errors.New("peer analysis needs at least two portfolios")
	ErrAnalysisMissing        = errors.New("analysis portfolio has no data")
)

// PeerStats compares the analysis portfolio against its peers per scenario.
//
// Facts are first collapsed to one value per (portfolio, scenario) by summing,
// so detail tables and multi-date selections give per-scenario totals. Only
// scenarios covered by both the analysis portfolio and at least one peer are
// reported. Undefined statistics (a single peer, zero dispersion) are nil.
func PeerStats(facts []domain.FactRecord, req domain.PeerRequest) (domain.PeerReport, error) {
	dispersion := req.Dispersion
	if dispersion == "" {
		dispersion = domain.DispersionStd
	}
	report := domain.PeerReport{
		Analysis:   req.Analysis,
		Peers:      req.Peers,
		Dispersion: dispersion,
		Rows:       []domain.PeerStatistic{},
	}

	if len(req.Peers) == 0 {
		return report, ErrNoPeers
	}
	peers := toSet(req.Peers)
	if _, overlap := peers[req.Analysis]; overlap {
		return report, ErrPeerOverlap
	}
	if len(DomainOf(facts).Portfolios) < 2 {
		return report, ErrInsufficientPortfolios
	}

	values := collapse(facts)
	analysis, ok := values[req.Analysis]
	if !ok {
		return report, ErrAnalysisMissing
	}

	peerValues := make(map[string][]float64)
	for _, p := range sortedKeys(peers) {
		for scenario, v := range values[p] {
			peerValues[scenario] = append(peerValues[scenario], v)
		}
	}

	for scenario, value := range analysis {
		pv, ok := peerValues[scenario]
		if !ok {
			continue
		}
		report.Rows = append(report.Rows, peerStatistic(scenario, value, pv, dispersion))
	}
	sort.Slice(report.Rows, func(i, j int) bool { return report.Rows[i].Scenario < report.Rows[j].Scenario })
	return report, nil
}

func peerStatistic(scenario string, value float64, peers []float64, dispersion domain.Dispersion) domain.PeerStatistic {
	median, _ := Median(peers)
	stat := domain.PeerStatistic{
		Scenario:      scenario,
		AnalysisValue: value,
		PeerCount:     len(peers),
		PeerMedian:    median,
	}

	switch dispersion {
	case domain.DispersionQuartile:
		if q, ok := Quantile(peers, 0.25); ok {
			stat.PeerQ25 = &q
		}
		if q, ok := Quantile(peers, 0.75); ok {
			stat.PeerQ75 = &q
		}
	default:
		if std, ok := SampleStdDev(peers); ok {
			stat.PeerStd = &std
			if z, ok := ZScore(value, median, std); ok {
				stat.ZScore = &z
			}
		}
	}
	return stat
}

// collapse sums facts per portfolio and scenario
func collapse(facts []domain.FactRecord) map[string]map[string]float64 {
	sums := make(map[string]map[string]decimal.Decimal)
	for _, f := range facts {
		if sums[f.Portfolio] == nil {
			sums[f.Portfolio] = make(map[string]decimal.Decimal)
		}
		sums[f.Portfolio][f.Scenario] = sums[f.Portfolio][f.Scenario].Add(decimal.NewFromFloat(f.StressPnL))
	}

	out := make(map[string]map[string]float64, len(sums))
	for portfolio, scenarios := range sums {
		out[portfolio] = make(map[string]float64, len(scenarios))
		for scenario, sum := range scenarios {
			out[portfolio][scenario] = sum.InexactFloat64()
		}
	}
	return out
}

// IsNothingToShow reports whether err is one of the peer preconditions
func IsNothingToShow(err error) bool {
	return errors.Is(err, ErrNoPeers) ||
		errors.Is(err, ErrPeerOverlap) ||
		errors.Is(err, ErrInsufficientPortfolios) ||
		errors.Is(err, ErrAnalysisMissing)
}
