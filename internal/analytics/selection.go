package analytics

import (
	"sort"

	"github.com/giuliam-97/Stress-Test/pkg/contracts/domain"
)

// DomainOf lists the distinct dates, portfolios and scenarios of facts,
// sorted. Zero dates are left out since they can never be selected.
func DomainOf(facts []domain.FactRecord) domain.SelectionDomain {
	dates := make(map[domain.Date]struct{})
	portfolios := make(map[string]struct{})
	scenarios := make(map[string]struct{})

	for _, f := range facts {
		if !f.Date.IsZero() {
			dates[f.Date] = struct{}{}
		}
		portfolios[f.Portfolio] = struct{}{}
		scenarios[f.Scenario] = struct{}{}
	}

	d := domain.SelectionDomain{
		Dates:      make([]domain.Date, 0, len(dates)),
		Portfolios: sortedKeys(portfolios),
		Scenarios:  sortedKeys(scenarios),
	}
	for date := range dates {
		d.Dates = append(d.Dates, date)
	}
	sort.Slice(d.Dates, func(i, j int) bool { return d.Dates[i].Before(d.Dates[j]) })
	return d
}

// DefaultSelection selects every value of d
func DefaultSelection(d domain.SelectionDomain) domain.Selection {
	return domain.Selection{
		Dates:      append([]domain.Date(nil), d.Dates...),
		Portfolios: append([]string(nil), d.Portfolios...),
		Scenarios:  append([]string(nil), d.Scenarios...),
	}
}

// FillDefaults replaces each nil dimension of sel with every value of d.
// Non-nil empty dimensions stay empty and select nothing.
func FillDefaults(sel domain.Selection, d domain.SelectionDomain) domain.Selection {
	all := DefaultSelection(d)
	if sel.Dates == nil {
		sel.Dates = all.Dates
	}
	if sel.Portfolios == nil {
		sel.Portfolios = all.Portfolios
	}
	if sel.Scenarios == nil {
		sel.Scenarios = all.Scenarios
	}
	return sel
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
