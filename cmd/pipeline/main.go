// Package main provides the research-helper command line pipeline runner.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/programmers-nightmare/research-helper/internal/config"
	"github.com/programmers-nightmare/research-helper/internal/domain"
	"github.com/programmers-nightmare/research-helper/internal/export"
	"github.com/programmers-nightmare/research-helper/internal/filter"
	"github.com/programmers-nightmare/research-helper/internal/loader"
	"github.com/programmers-nightmare/research-helper/internal/merge"
	"github.com/programmers-nightmare/research-helper/internal/observability"
	"github.com/programmers-nightmare/research-helper/internal/pipeline"
	"github.com/programmers-nightmare/research-helper/internal/report"
)

func main() {
	app := &cli.App{
		Name:  "research-helper",
		Usage: "merge, deduplicate, and chart bibliographic CSV exports",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log level (trace, debug, info, warn, error)",
				Value: "info",
			},
		},
		Commands: []*cli.Command{
			runCommand(),
			filterCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "process every CSV in the input directory",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "input-dir",
				Usage: "directory holding the CSV exports",
				Value: "csv_database",
			},
			&cli.StringFlag{
				Name:  "table-dir",
				Usage: "directory receiving CSV/XLSX artifacts",
				Value: "output_csvs",
			},
			&cli.StringFlag{
				Name:  "chart-dir",
				Usage: "directory receiving PNG charts",
				Value: "output_pngs",
			},
			&cli.StringFlag{
				Name:  "dedup-key",
				Usage: "deduplication key column (Title or DOI)",
				Value: config.DedupKeyDOI,
			},
			&cli.StringFlag{
				Name:  "column-mode",
				Usage: "unknown-column handling (permissive or strict)",
				Value: config.ColumnModePermissive,
			},
			&cli.IntFlag{
				Name:  "top-n",
				Usage: "number of top keywords in charts",
				Value: 20,
			},
			&cli.BoolFlag{
				Name:  "heatmap",
				Usage: "render the keyword co-occurrence heatmap",
			},
			&cli.BoolFlag{
				Name:  "per-source-charts",
				Usage: "render per-source publications-by-year charts",
			},
			&cli.StringFlag{
				Name:  "font-file",
				Usage: "TTF font for word clouds (skipped when empty)",
			},
		},
		Action: runAction,
	}
}

func runAction(c *cli.Context) error {
	logger := newLogger(c)

	switch c.String("dedup-key") {
	case config.DedupKeyTitle, config.DedupKeyDOI:
	default:
		return fmt.Errorf("invalid dedup key: %s", c.String("dedup-key"))
	}

	exporter, err := export.New(c.String("table-dir"), logger)
	if err != nil {
		return fmt.Errorf("create table exporter: %w", err)
	}

	style := report.DefaultStyle()
	style.FontFile = c.String("font-file")
	renderer, err := report.New(c.String("chart-dir"), style, logger)
	if err != nil {
		return fmt.Errorf("create chart renderer: %w", err)
	}

	mode := merge.ModePermissive
	if c.String("column-mode") == config.ColumnModeStrict {
		mode = merge.ModeStrict
	}

	metrics := observability.NewMetrics("research_helper")
	merger := merge.New(domain.DefaultAliasRules(), mode, logger)

	pipe := pipeline.New(loader.New(logger), merger, exporter, renderer, metrics, pipeline.Options{
		DedupKey:        c.String("dedup-key"),
		TopN:            c.Int("top-n"),
		EnableHeatmap:   c.Bool("heatmap"),
		PerSourceCharts: c.Bool("per-source-charts"),
	}, logger)

	result, err := pipe.Run(c.Context, c.String("input-dir"))
	if err != nil {
		return err
	}

	fmt.Printf("processed %d file(s), %d row(s) before dedup, %d after, %d duplicate(s)\n",
		len(result.Processed), result.RowsBefore, result.RowsAfter, result.Duplicates)
	for _, skipped := range result.Skipped {
		fmt.Printf("skipped %s: %v\n", skipped.Path, skipped.Err)
	}
	return nil
}

func filterCommand() *cli.Command {
	return &cli.Command{
		Name:  "filter",
		Usage: "select rows of the processed table by keyword",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "table-dir",
				Usage: "directory holding the processed artifacts",
				Value: "output_csvs",
			},
			&cli.StringFlag{
				Name:     "field",
				Usage:    "column to match against",
				Required: true,
			},
			&cli.StringSliceFlag{
				Name:     "keyword",
				Usage:    "keyword to match (repeatable, OR'ed)",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "invert",
				Usage: "keep rows containing none of the keywords",
			},
		},
		Action: filterAction,
	}
}

func filterAction(c *cli.Context) error {
	logger := newLogger(c)

	exporter, err := export.New(c.String("table-dir"), logger)
	if err != nil {
		return fmt.Errorf("create table exporter: %w", err)
	}

	svc := filter.New(loader.New(logger), exporter, logger)
	subset, artifact, err := svc.Run(c.String("field"), c.StringSlice("keyword"), !c.Bool("invert"))
	if err != nil {
		return err
	}

	fmt.Printf("wrote %s with %d row(s)\n", artifact, subset.Len())
	return nil
}

func newLogger(c *cli.Context) zerolog.Logger {
	cfg := observability.DefaultLoggingConfig()
	cfg.Level = c.String("log-level")
	cfg.Format = "console"
	return observability.NewLogger(cfg)
}
