package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giuliam-97/Stress-Test/pkg/contracts/domain"
)

func peerFacts() []domain.FactRecord {
	return []domain.FactRecord{
		fact(jan31, "A", "S1", "Total", 120, false),
		fact(jan31, "P1", "S1", "Total", 100, false),
		fact(jan31, "P2", "S1", "Total", 110, false),
		fact(jan31, "P3", "S1", "Total", 130, false),
		fact(jan31, "A", "S2", "Total", 50, false),
		fact(jan31, "P1", "S2", "Total", 40, false),
		fact(jan31, "A", "S3", "Total", 1, false),
		fact(jan31, "P2", "S4", "Total", 9, false),
	}
}

func TestPeerStats_Std(t *testing.T) {
	report, err := PeerStats(peerFacts(), domain.PeerRequest{Analysis: "A", Peers: []string{"P1", "P2", "P3"}})
	require.NoError(t, err)

	assert.Equal(t, domain.DispersionStd, report.Dispersion)
	require.Len(t, report.Rows, 2)

	s1 := report.Rows[0]
	assert.Equal(t, "S1", s1.Scenario)
	assert.Equal(t, 120.0, s1.AnalysisValue)
	assert.Equal(t, 3, s1.PeerCount)
	assert.Equal(t, 110.0, s1.PeerMedian)
	require.NotNil(t, s1.PeerStd)
	assert.InDelta(t, 15.28, *s1.PeerStd, 0.01)
	require.NotNil(t, s1.ZScore)
	assert.InDelta(t, 0.654, *s1.ZScore, 0.001)

	// one peer value: dispersion and z-score are missing, not zero
	s2 := report.Rows[1]
	assert.Equal(t, "S2", s2.Scenario)
	assert.Equal(t, 40.0, s2.PeerMedian)
	assert.Nil(t, s2.PeerStd)
	assert.Nil(t, s2.ZScore)
}

func TestPeerStats_ZeroDispersion(t *testing.T) {
	facts := []domain.FactRecord{
		fact(jan31, "A", "S1", "Total", 10, false),
		fact(jan31, "P1", "S1", "Total", 5, false),
		fact(jan31, "P2", "S1", "Total", 5, false),
		fact(jan31, "A", "S2", "Total", 10, false),
		fact(jan31, "P1", "S2", "Total", 4, false),
		fact(jan31, "P2", "S2", "Total", 8, false),
	}

	report, err := PeerStats(facts, domain.PeerRequest{Analysis: "A", Peers: []string{"P1", "P2"}})
	require.NoError(t, err)
	require.Len(t, report.Rows, 2)

	require.NotNil(t, report.Rows[0].PeerStd)
	assert.Equal(t, 0.0, *report.Rows[0].PeerStd)
	assert.Nil(t, report.Rows[0].ZScore)
	assert.NotNil(t, report.Rows[1].ZScore)
}

func TestPeerStats_Quartile(t *testing.T) {
	report, err := PeerStats(peerFacts(), domain.PeerRequest{
		Analysis:   "A",
		Peers:      []string{"P1", "P2", "P3"},
		Dispersion: domain.DispersionQuartile,
	})
	require.NoError(t, err)
	require.Len(t, report.Rows, 2)

	s1 := report.Rows[0]
	require.NotNil(t, s1.PeerQ25)
	require.NotNil(t, s1.PeerQ75)
	assert.InDelta(t, 105, *s1.PeerQ25, 1e-9)
	assert.InDelta(t, 120, *s1.PeerQ75, 1e-9)
	assert.Nil(t, s1.PeerStd)
	assert.Nil(t, s1.ZScore)

	s2 := report.Rows[1]
	assert.Equal(t, 40.0, *s2.PeerQ25)
	assert.Equal(t, 40.0, *s2.PeerQ75)
}

func TestPeerStats_CollapsesRows(t *testing.T) {
	facts := []domain.FactRecord{
		fact(jan31, "A", "S1", "Equity", 70, true),
		fact(jan31, "A", "S1", "Rates", 50, false),
		fact(jan31, "P1", "S1", "Equity", 60, false),
		fact(feb29, "P1", "S1", "Equity", 40, false),
	}

	report, err := PeerStats(facts, domain.PeerRequest{Analysis: "A", Peers: []string{"P1"}})
	require.NoError(t, err)
	require.Len(t, report.Rows, 1)
	assert.Equal(t, 120.0, report.Rows[0].AnalysisValue)
	assert.Equal(t, 100.0, report.Rows[0].PeerMedian)
}

func TestPeerStats_Preconditions(t *testing.T) {
	tests := []struct {
		name    string
		facts   []domain.FactRecord
		req     domain.PeerRequest
		wantErr error
	}{
		{"no peers", peerFacts(), domain.PeerRequest{Analysis: "A"}, ErrNoPeers},
		{"analysis among peers", peerFacts(), domain.PeerRequest{Analysis: "A", Peers: []string{"A", "P1"}}, ErrPeerOverlap},
		{"single portfolio", peerFacts()[:1], domain.PeerRequest{Analysis: "A", Peers: []string{"P1"}}, ErrInsufficientPortfolios},
		{"analysis absent", peerFacts(), domain.PeerRequest{Analysis: "Z", Peers: []string{"P1"}}, ErrAnalysisMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := PeerStats(tt.facts, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, IsNothingToShow(err))
			assert.NotNil(t, report.Rows)
			assert.Empty(t, report.Rows)
		})
	}
}

func TestPeerStats_DisjointScenarios(t *testing.T) {
	report, err := PeerStats(peerFacts(), domain.PeerRequest{Analysis: "A", Peers: []string{"P2"}})
	require.NoError(t, err)

	// S3 has no peer value and S4 no analysis value
	require.Len(t, report.Rows, 1)
	assert.Equal(t, "S1", report.Rows[0].Scenario)
}
