package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"txdash/internal/cli"
	"txdash/internal/config"
	applog "txdash/internal/log"
	"txdash/internal/report"
	"txdash/internal/services"
)

var (
	month   = flag.String("month", "", "Month name, number or YYYY-MM (default: current month)")
	year    = flag.Int("year", 0, "Year for month names and numbers (default: current year)")
	search  = flag.String("search", "", "Also list transactions matching this text or price")
	page    = flag.Int("page", 1, "Result page for -search")
	perPage = flag.Int("per-page", 10, "Results per page for -search")
	seed    = flag.Bool("seed", false, "Load the seed dataset before reporting")
	timeout = flag.Duration("timeout", 30*time.Second, "Overall timeout")
)

func main() {
	flag.Parse()
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL")).WithComponent(applog.ComponentReport)
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := run(ctx, logger, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "txdash-report: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *applog.Logger, cfg *config.Config) error {
	result, err := cli.OpenBackend(ctx, logger, cfg)
	if err != nil {
		return err
	}
	defer result.Cleanup()

	if *seed {
		seeded, err := services.NewSeeder(result.Store, cfg.SeedURL, cfg.SeedTimeout).Seed(ctx)
		if err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		logger.Info("Dataset loaded", applog.FieldSeedSource, seeded.Source, applog.FieldSeedCount, seeded.Count)
	}

	queries := services.NewQueryService(result.Store)
	r, err := queries.ResolveMonth(*month, *year)
	if err != nil {
		return err
	}

	dashboard, err := queries.Combined(ctx, *month, *year)
	if err != nil {
		return err
	}
	report.WriteDashboard(os.Stdout, r, dashboard)

	if *search != "" {
		p, q, err := queries.Search(ctx, services.SearchParams{
			Text:    *search,
			Month:   *month,
			Year:    *year,
			Page:    *page,
			PerPage: *perPage,
		})
		if err != nil {
			return err
		}
		report.WritePage(os.Stdout, q, p)
	}
	return nil
}
