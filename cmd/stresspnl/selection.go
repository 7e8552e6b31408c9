package main

import (
	"github.com/spf13/cobra"

	"github.com/giuliam-97/Stress-Test/pkg/contracts/domain"
)

// selectionFlags binds --date, --portfolio and --scenario. A flag that is
// not given selects every value of its dimension.
type selectionFlags struct {
	dates      []string
	portfolios []string
	scenarios  []string
}

func (s *selectionFlags) register(cmd *cobra.Command, withPortfolio bool) {
	cmd.Flags().StringSliceVar(&s.dates, "date", nil, "dates to keep (YYYY-MM-DD), default all")
	if withPortfolio {
		cmd.Flags().StringSliceVar(&s.portfolios, "portfolio", nil, "portfolios to keep, default all")
	}
	cmd.Flags().StringSliceVar(&s.scenarios, "scenario", nil, "scenarios to keep, default all")
}

func (s *selectionFlags) selection(cmd *cobra.Command) (domain.Selection, error) {
	var sel domain.Selection

	if cmd.Flags().Changed("date") {
		sel.Dates = make([]domain.Date, 0, len(s.dates))
		for _, raw := range s.dates {
			d, err := domain.ParseDate(raw)
			if err != nil {
				return domain.Selection{}, err
			}
			sel.Dates = append(sel.Dates, d)
		}
	}
	if cmd.Flags().Changed("portfolio") {
		sel.Portfolios = append([]string{}, s.portfolios...)
	}
	if cmd.Flags().Changed("scenario") {
		sel.Scenarios = append([]string{}, s.scenarios...)
	}
	return sel, nil
}
