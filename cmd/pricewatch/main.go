package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/pricelens/pricewatch"
	"github.com/pricelens/pricewatch/alert"
	"github.com/pricelens/pricewatch/crawl"
	"github.com/pricelens/pricewatch/diff"
	"github.com/pricelens/pricewatch/frankfurter"
	"github.com/pricelens/pricewatch/gemini"
	pwhttp "github.com/pricelens/pricewatch/http"
	"github.com/pricelens/pricewatch/rod"
	"github.com/pricelens/pricewatch/scrapeapi"
	pwslog "github.com/pricelens/pricewatch/slog"
	"github.com/pricelens/pricewatch/sqlite"
	"google.golang.org/genai"
)

func main() {
	// Local development convenience; a missing .env file is not an error.
	_ = godotenv.Load()

	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Services for end-to-end testing.
	CompetitorService pricewatch.CompetitorService
	SchemaService     pricewatch.SchemaService
	AlertService      pricewatch.AlertService
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("pricewatch"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'pricewatch --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set PRICEWATCH_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	defer m.Close()

	m.CompetitorService = sqlite.NewCompetitorService(m.DB)
	m.SchemaService = sqlite.NewSchemaService(m.DB)
	m.AlertService = sqlite.NewAlertService(m.DB)
	deps.DB = m.DB
	deps.Competitors = m.CompetitorService
	deps.Schemas = m.SchemaService
	deps.Alerts = m.AlertService

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: logLevel()}))
	deps.Logger = logger

	if cmd == "discover" {
		deps.Discovery = pwhttp.NewDiscovery(nil)
	}

	// The crawl pipeline needs a browser and the Gemini API; only pay that
	// cost for the commands that run it.
	if cmd == "check" || cmd == "regions" {
		apiKey := os.Getenv("GEMINI_API_KEY")
		if apiKey == "" {
			fmt.Fprintln(stderr, "GEMINI_API_KEY environment variable not set. Get an API key at https://aistudio.google.com/apikey")
			return fmt.Errorf("GEMINI_API_KEY not set")
		}

		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Check your GEMINI_API_KEY is valid")
			return fmt.Errorf("failed to connect to Gemini API: %w", err)
		}

		manager := rod.NewBrowserManager()
		defer manager.Close()

		strategies := []pricewatch.FetchStrategy{
			pwslog.NewLoggingStrategy(scrapeapi.NewFetcher(os.Getenv("SCRAPE_API_URL"), os.Getenv("SCRAPE_API_KEY")), logger),
			pwslog.NewLoggingStrategy(pwhttp.NewFetcher(), logger),
			pwslog.NewLoggingStrategy(rod.NewFetcher(manager), logger),
		}

		deps.Monitor = &crawl.Monitor{
			Competitors:  m.CompetitorService,
			Schemas:      m.SchemaService,
			Alerts:       m.AlertService,
			Orchestrator: crawl.NewOrchestrator(logger, strategies...),
			Extractor:    gemini.NewExtractor(client, rod.NewScreenshotter(manager)),
			Guard:        crawl.NewGuard(m.CompetitorService),
			Classifier:   diff.NewClassifier(nil),
			Differ:       diff.NewSchemaDiffer(nil),
			Comparator:   diff.NewRegionalComparator(frankfurter.NewRateService(nil)),
			Rules:        alert.NewEngine(),
			Logger:       logger,
		}
		deps.Pacer = crawl.NewPacer(crawl.DefaultPaceInterval)
	}

	return kongCtx.Run(deps)
}

func defaultDBPath() string {
	if path := os.Getenv("PRICEWATCH_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "pricewatch.db"
	}
	dir := filepath.Join(home, ".pricewatch")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "pricewatch.db")
}

func logLevel() slog.Level {
	if os.Getenv("PRICEWATCH_DEBUG") != "" {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}
