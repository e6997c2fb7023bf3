package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/pricelens/pricewatch"
	"github.com/pricelens/pricewatch/crawl"
	pwhttp "github.com/pricelens/pricewatch/http"
	"github.com/pricelens/pricewatch/sqlite"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx         context.Context
	Stdout      io.Writer
	Stderr      io.Writer
	Logger      *slog.Logger
	DB          *sqlite.DB
	Competitors pricewatch.CompetitorService
	Schemas     pricewatch.SchemaService
	Alerts      pricewatch.AlertService
	Monitor     *crawl.Monitor
	Pacer       *crawl.Pacer
	Discovery   *pwhttp.Discovery
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Add      AddCmd      `cmd:"" help:"Register a competitor pricing page to monitor"`
	List     ListCmd     `cmd:"" help:"List monitored competitors"`
	Delete   DeleteCmd   `cmd:"" help:"Delete a competitor and its history"`
	Check    CheckCmd    `cmd:"" help:"Run the monitoring pipeline for a competitor"`
	Regions  RegionsCmd  `cmd:"" help:"Compare a competitor's pricing across regions"`
	Alerts   AlertsCmd   `cmd:"" help:"Show recent alerts"`
	Discover DiscoverCmd `cmd:"" help:"Discover pricing page URLs from a site's sitemap"`
}

// AddCmd is the "add" subcommand.
type AddCmd struct {
	Name string `arg:"" help:"Competitor name"`
	URL  string `arg:"" help:"Pricing page URL"`
}

// ListCmd is the "list" subcommand.
type ListCmd struct {
	Status string `help:"Filter by crawl status (active, paused, error)"`
}

// DeleteCmd is the "delete" subcommand.
type DeleteCmd struct {
	Name  string `arg:"" help:"Competitor name"`
	Force bool   `help:"Confirm deletion"`
}

// CheckCmd is the "check" subcommand.
type CheckCmd struct {
	Name     string `arg:"" optional:"" help:"Competitor name"`
	All      bool   `help:"Check every active competitor"`
	Region   string `default:"global" help:"Region context to crawl under"`
	Attempts int    `default:"3" help:"Max fetch attempts"`
}

// RegionsCmd is the "regions" subcommand.
type RegionsCmd struct {
	Name    string   `arg:"" help:"Competitor name"`
	Regions []string `default:"us,eu,in" help:"Region keys to compare"`
}

// AlertsCmd is the "alerts" subcommand.
type AlertsCmd struct {
	Name  string `arg:"" optional:"" help:"Competitor name (all competitors when omitted)"`
	Limit int    `default:"20" help:"Max alerts to show"`
}

// DiscoverCmd is the "discover" subcommand.
type DiscoverCmd struct {
	URL string `arg:"" help:"Site URL to scan for pricing pages"`
}

// findCompetitorByName resolves a competitor by its unique name.
func findCompetitorByName(deps *Dependencies, name string) (*pricewatch.Competitor, error) {
	competitors, err := deps.Competitors.FindCompetitors(deps.Ctx, pricewatch.CompetitorFilter{Name: &name})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pricewatch.ErrorMessage(err))
		return nil, err
	}
	if len(competitors) == 0 {
		fmt.Fprintf(deps.Stderr, "error: competitor %q not found. Use 'pricewatch list' to see monitored competitors.\n", name)
		return nil, pricewatch.Errorf(pricewatch.ENOTFOUND, "competitor %q not found", name)
	}
	return competitors[0], nil
}
