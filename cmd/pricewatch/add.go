package main

import (
	"fmt"

	"github.com/pricelens/pricewatch"
)

// Run executes the add command.
func (c *AddCmd) Run(deps *Dependencies) error {
	existing, err := deps.Competitors.FindCompetitors(deps.Ctx, pricewatch.CompetitorFilter{Name: &c.Name})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pricewatch.ErrorMessage(err))
		return err
	}
	if len(existing) > 0 {
		fmt.Fprintf(deps.Stderr, "error: competitor %q already exists\n", c.Name)
		return pricewatch.Errorf(pricewatch.ECONFLICT, "competitor %q already exists", c.Name)
	}

	competitor := &pricewatch.Competitor{
		Name:       c.Name,
		PricingURL: c.URL,
	}

	if err := deps.Competitors.CreateCompetitor(deps.Ctx, competitor); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pricewatch.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Added competitor %q (%s)\n", c.Name, competitor.ID)
	return nil
}
