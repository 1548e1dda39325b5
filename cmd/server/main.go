// Package main provides the entry point for the research-helper HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/programmers-nightmare/research-helper/internal/config"
	"github.com/programmers-nightmare/research-helper/internal/domain"
	"github.com/programmers-nightmare/research-helper/internal/export"
	"github.com/programmers-nightmare/research-helper/internal/filter"
	"github.com/programmers-nightmare/research-helper/internal/loader"
	"github.com/programmers-nightmare/research-helper/internal/merge"
	"github.com/programmers-nightmare/research-helper/internal/observability"
	"github.com/programmers-nightmare/research-helper/internal/pipeline"
	"github.com/programmers-nightmare/research-helper/internal/report"
	"github.com/programmers-nightmare/research-helper/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := observability.NewLogger(observability.LoggingConfig{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		AddSource:  cfg.Logging.AddSource,
		TimeFormat: cfg.Logging.TimeFormat,
	})
	logger = logger.With().Str("component", "server").Logger()
	logger.Info().Msg("research-helper server starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(cfg.Paths.InputDir, 0o755); err != nil {
		return fmt.Errorf("create input directory: %w", err)
	}

	exporter, err := export.New(cfg.Paths.TableDir, logger)
	if err != nil {
		return fmt.Errorf("create table exporter: %w", err)
	}
	renderer, err := report.New(cfg.Paths.ChartDir, chartStyle(cfg.Charts), logger)
	if err != nil {
		return fmt.Errorf("create chart renderer: %w", err)
	}

	metrics := observability.NewMetrics(cfg.Metrics.Namespace)
	merger := merge.New(domain.DefaultAliasRules(), columnMode(cfg.Pipeline.ColumnMode), logger)
	csvLoader := loader.New(logger)

	pipe := pipeline.New(csvLoader, merger, exporter, renderer, metrics, pipeline.Options{
		DedupKey:        cfg.Pipeline.DedupKey,
		TopN:            cfg.Pipeline.TopNKeywords,
		EnableHeatmap:   cfg.Pipeline.EnableHeatmap,
		PerSourceCharts: cfg.Pipeline.PerSourceCharts,
	}, logger)
	filterSvc := filter.New(csvLoader, exporter, logger)

	httpSrv := server.New(cfg.Server, cfg.Paths, pipe, filterSvc, metrics, logger)

	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle(cfg.Metrics.Path, promhttp.Handler())
		metricsServer = &http.Server{
			Addr:         cfg.Server.MetricsAddress(),
			Handler:      metricsMux,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		}
	}

	errCh := make(chan error, 2)

	go func() {
		if err := httpSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	if metricsServer != nil {
		go func() {
			logger.Info().Str("address", metricsServer.Addr).Msg("metrics server starting")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("metrics server error: %w", err)
			}
		}()
	}

	readyLog := logger.Info().Str("http_address", cfg.Server.HTTPAddress())
	if metricsServer != nil {
		readyLog = readyLog.Str("metrics_address", metricsServer.Addr)
	}
	readyLog.Msg("research-helper is ready")

	select {
	case <-ctx.Done():
		logger.Info().Msg("received shutdown signal")
	case err := <-errCh:
		logger.Error().Err(err).Msg("server error")
		return err
	}

	logger.Info().Msg("shutting down research-helper")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("metrics server shutdown error")
		}
	}

	logger.Info().Msg("research-helper shutdown complete")
	return nil
}

func columnMode(mode string) merge.ColumnMode {
	if mode == config.ColumnModeStrict {
		return merge.ModeStrict
	}
	return merge.ModePermissive
}

func chartStyle(cfg config.ChartsConfig) report.Style {
	style := report.DefaultStyle()
	if cfg.Width > 0 {
		style.Width = cfg.Width
	}
	if cfg.Height > 0 {
		style.Height = cfg.Height
	}
	if cfg.BarWidth > 0 {
		style.BarWidth = cfg.BarWidth
	}
	if cfg.HeatPaletteSize > 0 {
		style.HeatPaletteSize = cfg.HeatPaletteSize
	}
	if cfg.WordCloudWidth > 0 {
		style.WordCloudWidth = cfg.WordCloudWidth
	}
	if cfg.WordCloudHeight > 0 {
		style.WordCloudHeight = cfg.WordCloudHeight
	}
	style.FontFile = cfg.FontFile
	return style
}
