package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testDomain() SelectionDomain {
	return SelectionDomain{
		Dates:      []Date{NewDate(2024, time.January, 31), NewDate(2024, time.February, 29)},
		Portfolios: []string{"FUND1", "FUND2"},
		Scenarios:  []string{"BASE", "SEVERE"},
	}
}

func TestSelection_Flags(t *testing.T) {
	d := testDomain()

	tests := []struct {
		name string
		sel  Selection
		want SelectionFlags
	}{
		{
			name: "everything",
			sel:  Selection{Dates: d.Dates, Portfolios: d.Portfolios, Scenarios: d.Scenarios},
			want: SelectionFlags{AllDates: true, AllPortfolios: true, AllScenarios: true},
		},
		{
			name: "order and duplicates do not matter",
			sel:  Selection{Dates: d.Dates, Portfolios: []string{"FUND2", "FUND1", "FUND2"}, Scenarios: []string{"BASE"}},
			want: SelectionFlags{AllDates: true, AllPortfolios: true},
		},
		{
			name: "values outside the domain",
			sel:  Selection{Portfolios: []string{"FUND1", "FUND2", "FUND9"}},
			want: SelectionFlags{},
		},
		{
			name: "nothing selected",
			sel:  Selection{},
			want: SelectionFlags{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sel.Flags(d))
		})
	}
}

func TestSelection_FlagsOnEmptyDomain(t *testing.T) {
	assert.Equal(t, SelectionFlags{AllDates: true, AllPortfolios: true, AllScenarios: true}, Selection{}.Flags(SelectionDomain{}))
}

func TestSelection_Restrict(t *testing.T) {
	sel := Selection{
		Dates:      []Date{NewDate(2023, time.December, 29), NewDate(2024, time.January, 31)},
		Portfolios: []string{"FUND3"},
		Scenarios:  []string{"SEVERE", "BASE"},
	}

	got := sel.Restrict(testDomain())
	assert.Equal(t, []Date{NewDate(2024, time.January, 31)}, got.Dates)
	assert.NotNil(t, got.Portfolios)
	assert.Empty(t, got.Portfolios)
	assert.Equal(t, []string{"SEVERE", "BASE"}, got.Scenarios)
	assert.True(t, got.IsEmpty())
}

func TestSelection_IsEmpty(t *testing.T) {
	d := testDomain()
	assert.False(t, Selection{Dates: d.Dates, Portfolios: d.Portfolios, Scenarios: d.Scenarios}.IsEmpty())
	assert.True(t, Selection{Dates: d.Dates, Portfolios: d.Portfolios}.IsEmpty())
}
