package main

import (
	"fmt"

	"github.com/pricelens/pricewatch"
	"github.com/pricelens/pricewatch/crawl"
)

// Run executes the check command.
func (c *CheckCmd) Run(deps *Dependencies) error {
	if c.All {
		return c.runAll(deps)
	}
	if c.Name == "" {
		fmt.Fprintf(deps.Stderr, "error: competitor name required (or use --all)\n")
		return pricewatch.Errorf(pricewatch.EINVALID, "competitor name required")
	}

	competitor, err := findCompetitorByName(deps, c.Name)
	if err != nil {
		return err
	}
	return c.runOne(deps, competitor)
}

func (c *CheckCmd) runAll(deps *Dependencies) error {
	status := pricewatch.StatusActive
	competitors, err := deps.Competitors.FindCompetitors(deps.Ctx, pricewatch.CompetitorFilter{Status: &status})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pricewatch.ErrorMessage(err))
		return err
	}
	if len(competitors) == 0 {
		fmt.Fprintln(deps.Stdout, "No active competitors to check.")
		return nil
	}

	for i, competitor := range competitors {
		if i > 0 {
			if err := deps.Pacer.Wait(deps.Ctx); err != nil {
				return err
			}
		}
		if err := c.runOne(deps, competitor); err != nil {
			// One broken competitor should not stop the sweep.
			fmt.Fprintf(deps.Stderr, "error checking %q: %s\n", competitor.Name, pricewatch.ErrorMessage(err))
		}
	}
	return nil
}

func (c *CheckCmd) runOne(deps *Dependencies, competitor *pricewatch.Competitor) error {
	deps.Monitor.MaxAttempts = c.Attempts

	report, err := deps.Monitor.Run(deps.Ctx, competitor.ID, c.Region)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pricewatch.ErrorMessage(err))
		return err
	}

	printReport(deps, competitor, report)
	return nil
}

func printReport(deps *Dependencies, competitor *pricewatch.Competitor, report *crawl.RunReport) {
	if report.Skipped {
		fmt.Fprintf(deps.Stdout, "%s: skipped (%s)\n", competitor.Name, report.SkipReason)
		return
	}
	if report.Fetch != nil && !report.Fetch.OK() {
		fmt.Fprintf(deps.Stdout, "%s: fetch failed (%s)\n", competitor.Name, report.Fetch.Failure)
		return
	}
	if report.Diff == nil {
		fmt.Fprintf(deps.Stdout, "%s: extraction failed\n", competitor.Name)
		return
	}

	fmt.Fprintf(deps.Stdout, "%s: %s\n", competitor.Name, report.Diff.Summary)
	for _, d := range report.Diff.Diffs {
		fmt.Fprintf(deps.Stdout, "  [%.2f] %s\n", d.Severity, d.Description)
	}
	if report.AlertsCreated > 0 {
		fmt.Fprintf(deps.Stdout, "  %d alert(s) recorded\n", report.AlertsCreated)
	}
}
