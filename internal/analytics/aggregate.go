package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/giuliam-97/Stress-Test/pkg/contracts/domain"
)

type aggregateKey struct {
	date      domain.Date
	portfolio string
	scenario  string
	isBRS     bool
}

// Aggregate sums Stress PnL per (date, portfolio, scenario, BRS flag).
// Groups come out in the order they are first seen; use SortAggregates for
// presentation order. Sums are exact decimal sums of the cell values.
func Aggregate(facts []domain.FactRecord) []domain.AggregateRecord {
	sums := make(map[aggregateKey]decimal.Decimal)
	counts := make(map[aggregateKey]int)
	var order []aggregateKey

	for _, f := range facts {
		key := aggregateKey{date: f.Date, portfolio: f.Portfolio, scenario: f.Scenario, isBRS: f.IsBRS}
		if _, seen := counts[key]; !seen {
			order = append(order, key)
			sums[key] = decimal.Zero
		}
		sums[key] = sums[key].Add(decimal.NewFromFloat(f.StressPnL))
		counts[key]++
	}

	out := make([]domain.AggregateRecord, 0, len(order))
	for _, key := range order {
		out = append(out, domain.AggregateRecord{
			Date:      key.date,
			Portfolio: key.portfolio,
			Scenario:  key.scenario,
			IsBRS:     key.isBRS,
			Group:     domain.GroupLabel(key.isBRS),
			StressPnL: sums[key].InexactFloat64(),
			Rows:      counts[key],
		})
	}
	return out
}

// SortAggregates orders rows by date, portfolio, scenario and group label
func SortAggregates(rows []domain.AggregateRecord) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Date != b.Date {
			return a.Date.Before(b.Date)
		}
		if a.Portfolio != b.Portfolio {
			return a.Portfolio < b.Portfolio
		}
		if a.Scenario != b.Scenario {
			return a.Scenario < b.Scenario
		}
		return a.Group < b.Group
	})
}

// Expand turns aggregate rows back into one fact per row, which makes
// Aggregate(Expand(rows)) reproduce rows.
func Expand(rows []domain.AggregateRecord) []domain.FactRecord {
	facts := make([]domain.FactRecord, 0, len(rows))
	for _, r := range rows {
		facts = append(facts, domain.FactRecord{
			Date:      r.Date,
			Portfolio: r.Portfolio,
			Scenario:  r.Scenario,
			StressPnL: r.StressPnL,
			IsBRS:     r.IsBRS,
		})
	}
	return facts
}

// ScenarioTotals sums the Stress PnL of one portfolio per scenario,
// across every date and risk group in facts. Rows are sorted by scenario.
func ScenarioTotals(facts []domain.FactRecord, portfolio string) []domain.ScenarioTotal {
	sums := make(map[string]decimal.Decimal)
	for _, f := range facts {
		if f.Portfolio != portfolio {
			continue
		}
		sums[f.Scenario] = sums[f.Scenario].Add(decimal.NewFromFloat(f.StressPnL))
	}

	out := make([]domain.ScenarioTotal, 0, len(sums))
	for scenario, sum := range sums {
		out = append(out, domain.ScenarioTotal{Scenario: scenario, StressPnL: sum.InexactFloat64()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Scenario < out[j].Scenario })
	return out
}

// PortfolioTotals runs ScenarioTotals for every portfolio in facts
func PortfolioTotals(facts []domain.FactRecord) map[string][]domain.ScenarioTotal {
	out := make(map[string][]domain.ScenarioTotal)
	for _, p := range DomainOf(facts).Portfolios {
		out[p] = ScenarioTotals(facts, p)
	}
	return out
}
