package main

import (
	"fmt"

	"github.com/pricelens/pricewatch"
)

// Run executes the list command.
func (c *ListCmd) Run(deps *Dependencies) error {
	filter := pricewatch.CompetitorFilter{}
	if c.Status != "" {
		status := pricewatch.CrawlStatus(c.Status)
		filter.Status = &status
	}

	competitors, err := deps.Competitors.FindCompetitors(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pricewatch.ErrorMessage(err))
		return err
	}

	if len(competitors) == 0 {
		fmt.Fprintln(deps.Stdout, "No competitors found. Use 'pricewatch add' to register one.")
		return nil
	}

	for _, comp := range competitors {
		checked := "never"
		if comp.LastCheckedAt != nil {
			checked = comp.LastCheckedAt.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(deps.Stdout, "%s  %-8s  %-20s  last checked %s  %s\n",
			comp.ID, comp.Status, comp.Name, checked, comp.PricingURL)
	}

	return nil
}
