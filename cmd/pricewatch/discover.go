package main

import (
	"fmt"

	"github.com/pricelens/pricewatch"
)

// Run executes the discover command.
func (c *DiscoverCmd) Run(deps *Dependencies) error {
	urls, err := deps.Discovery.DiscoverPricingURLs(deps.Ctx, c.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pricewatch.ErrorMessage(err))
		return err
	}

	if len(urls) == 0 {
		fmt.Fprintln(deps.Stdout, "No pricing pages found in the sitemap.")
		return nil
	}

	for _, u := range urls {
		fmt.Fprintln(deps.Stdout, u)
	}
	return nil
}
