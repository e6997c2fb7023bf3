package main

import (
	"fmt"

	"github.com/pricelens/pricewatch"
)

// Run executes the regions command.
func (c *RegionsCmd) Run(deps *Dependencies) error {
	competitor, err := findCompetitorByName(deps, c.Name)
	if err != nil {
		return err
	}

	report, err := deps.Monitor.CompareRegions(deps.Ctx, competitor.ID, c.Regions)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pricewatch.ErrorMessage(err))
		return err
	}

	if len(report.Differences) == 0 {
		fmt.Fprintf(deps.Stdout, "%s: no significant regional price differences (baseline %s)\n",
			competitor.Name, report.BaselineRegion)
		return nil
	}

	fmt.Fprintf(deps.Stdout, "%s: regional differences vs %s\n", competitor.Name, report.BaselineRegion)
	for _, d := range report.Differences {
		label := "premium"
		if d.IsDiscount {
			label = "discount"
		}
		fmt.Fprintf(deps.Stdout, "  %-8s %-20s %+.0f%% %s (%s)\n",
			d.Region, d.PlanName, d.PriceDifferencePercent, label, d.Severity)
	}
	return nil
}
