package main

import (
	"fmt"

	"github.com/pricelens/pricewatch"
)

// Run executes the delete command.
func (c *DeleteCmd) Run(deps *Dependencies) error {
	if !c.Force {
		fmt.Fprintf(deps.Stderr, "error: use --force to confirm deletion\n")
		return pricewatch.Errorf(pricewatch.EINVALID, "use --force to confirm deletion")
	}

	competitor, err := findCompetitorByName(deps, c.Name)
	if err != nil {
		return err
	}

	if err := deps.Competitors.DeleteCompetitor(deps.Ctx, competitor.ID); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pricewatch.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Deleted competitor %q\n", competitor.Name)
	return nil
}
