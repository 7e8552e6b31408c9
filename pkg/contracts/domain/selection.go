package domain

// Selection is the caller-owned filter state.
// A nil slice and an empty slice both select nothing; callers that want
// everything start from the full domain (analytics.DefaultSelection).
type Selection struct {
	Dates      []Date   `json:"dates"`
	Portfolios []string `json:"portfolios"`
	Scenarios  []string `json:"scenarios"`
}

// SelectionDomain lists every distinct value observed in a fact table, sorted
type SelectionDomain struct {
	Dates      []Date   `json:"dates"`
	Portfolios []string `json:"portfolios"`
	Scenarios  []string `json:"scenarios"`
}

// SelectionFlags are the "select all" toggles derived from a selection
type SelectionFlags struct {
	AllDates      bool `json:"all_dates"`
	AllPortfolios bool `json:"all_portfolios"`
	AllScenarios  bool `json:"all_scenarios"`
}

// AllDates reports whether the selected dates equal every date in d
func (s Selection) AllDates(d SelectionDomain) bool {
	return sameSet(s.Dates, d.Dates)
}

// AllPortfolios reports whether the selected portfolios equal every portfolio in d
func (s Selection) AllPortfolios(d SelectionDomain) bool {
	return sameSet(s.Portfolios, d.Portfolios)
}

// AllScenarios reports whether the selected scenarios equal every scenario in d
func (s Selection) AllScenarios(d SelectionDomain) bool {
	return sameSet(s.Scenarios, d.Scenarios)
}

// Flags derives the "select all" toggles against d. They are never stored,
// so they cannot drift from the selection itself.
func (s Selection) Flags(d SelectionDomain) SelectionFlags {
	return SelectionFlags{
		AllDates:      s.AllDates(d),
		AllPortfolios: s.AllPortfolios(d),
		AllScenarios:  s.AllScenarios(d),
	}
}

// Restrict drops selected values that d does not contain. Use it when a
// new fact table replaces the one the selection was made against.
func (s Selection) Restrict(d SelectionDomain) Selection {
	return Selection{
		Dates:      intersect(s.Dates, d.Dates),
		Portfolios: intersect(s.Portfolios, d.Portfolios),
		Scenarios:  intersect(s.Scenarios, d.Scenarios),
	}
}

// IsEmpty reports whether any dimension selects nothing
func (s Selection) IsEmpty() bool {
	return len(s.Dates) == 0 || len(s.Portfolios) == 0 || len(s.Scenarios) == 0
}

func sameSet[T comparable](selected, all []T) bool {
	want := make(map[T]struct{}, len(all))
	for _, v := range all {
		want[v] = struct{}{}
	}
	got := make(map[T]struct{}, len(selected))
	for _, v := range selected {
		if _, ok := want[v]; !ok {
			return false
		}
		got[v] = struct{}{}
	}
	return len(got) == len(want)
}

func intersect[T comparable](selected, all []T) []T {
	keep := make(map[T]struct{}, len(all))
	for _, v := range all {
		keep[v] = struct{}{}
	}
	out := make([]T, 0, len(selected))
	for _, v := range selected {
		if _, ok := keep[v]; ok {
			out = append(out, v)
		}
	}
	return out
}
