package analytics

import "github.com/giuliam-97/Stress-Test/pkg/contracts/domain"

// Filter keeps the facts whose date, portfolio and scenario are all selected.
// An empty dimension yields an empty result. Facts without a date never
// match. facts is not modified.
func Filter(facts []domain.FactRecord, sel domain.Selection) []domain.FactRecord {
	out := []domain.FactRecord{}
	if sel.IsEmpty() {
		return out
	}

	dates := toSet(sel.Dates)
	portfolios := toSet(sel.Portfolios)
	scenarios := toSet(sel.Scenarios)

	for _, f := range facts {
		if f.Date.IsZero() {
			continue
		}
		if _, ok := dates[f.Date]; !ok {
			continue
		}
		if _, ok := portfolios[f.Portfolio]; !ok {
			continue
		}
		if _, ok := scenarios[f.Scenario]; !ok {
			continue
		}
		out = append(out, f)
	}
	return out
}

func toSet[T comparable](values []T) map[T]struct{} {
	set := make(map[T]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
