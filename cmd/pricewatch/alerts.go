package main

import (
	"fmt"

	"github.com/pricelens/pricewatch"
)

// Run executes the alerts command.
func (c *AlertsCmd) Run(deps *Dependencies) error {
	competitorID := ""
	if c.Name != "" {
		competitor, err := findCompetitorByName(deps, c.Name)
		if err != nil {
			return err
		}
		competitorID = competitor.ID
	}

	alerts, err := deps.Alerts.FindAlerts(deps.Ctx, competitorID, c.Limit)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pricewatch.ErrorMessage(err))
		return err
	}

	if len(alerts) == 0 {
		fmt.Fprintln(deps.Stdout, "No alerts recorded.")
		return nil
	}

	for _, a := range alerts {
		fmt.Fprintf(deps.Stdout, "%s  [%s/%d]  %s\n",
			a.CreatedAt.Format("2006-01-02 15:04"), a.Severity, a.Priority, a.Description)
	}
	return nil
}
