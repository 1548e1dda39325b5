// Package pipeline orchestrates one full processing run: load the input
// tables, merge and deduplicate them, persist the table artifacts, and
// render the charts. Stages run strictly in sequence; each stage consumes
// the previous stage's output and nothing else.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/programmers-nightmare/research-helper/internal/aggregate"
	"github.com/programmers-nightmare/research-helper/internal/domain"
	"github.com/programmers-nightmare/research-helper/internal/export"
	"github.com/programmers-nightmare/research-helper/internal/loader"
	"github.com/programmers-nightmare/research-helper/internal/merge"
	"github.com/programmers-nightmare/research-helper/internal/observability"
	"github.com/programmers-nightmare/research-helper/internal/report"
)

// Options controls one pipeline run.
type Options struct {
	// DedupKey is the deduplication key column (Title or DOI).
	DedupKey string
	// TopN is the number of top keywords in bar charts and the
	// co-occurrence axis.
	TopN int
	// EnableHeatmap gates the keyword co-occurrence heatmap.
	EnableHeatmap bool
	// PerSourceCharts gates the per-source publications-by-year charts
	// rendered before the merge.
	PerSourceCharts bool
}

// Result reports what one run processed and produced.
type Result struct {
	// RunID identifies the run in logs and the HTTP response.
	RunID string `json:"run_id"`
	// Processed lists the source names merged into the output.
	Processed []string `json:"processed"`
	// Skipped lists the input files that could not be read.
	Skipped []loader.Failure `json:"skipped"`
	// RowsBefore is the merged row count before duplicate removal.
	RowsBefore int `json:"rows_before"`
	// RowsAfter is the row count after duplicate removal.
	RowsAfter int `json:"rows_after"`
	// Duplicates is the number of rows sharing a duplicated key.
	Duplicates int `json:"duplicates"`
	// Duration is the wall-clock duration of the run.
	Duration time.Duration `json:"duration"`
}

// Pipeline wires the processing stages together.
type Pipeline struct {
	loader  *loader.Loader
	merger  *merge.Merger
	tables  *export.Exporter
	charts  *report.Renderer
	metrics *observability.Metrics
	opts    Options
	logger  zerolog.Logger
}

// New creates a Pipeline from already-constructed stage components.
func New(l *loader.Loader, m *merge.Merger, tables *export.Exporter, charts *report.Renderer, metrics *observability.Metrics, opts Options, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		loader:  l,
		merger:  m,
		tables:  tables,
		charts:  charts,
		metrics: metrics,
		opts:    opts,
		logger:  logger.With().Str("component", "pipeline").Logger(),
	}
}

// Run executes one processing pass over every CSV file in inputDir.
func (p *Pipeline) Run(ctx context.Context, inputDir string) (*Result, error) {
	start := time.Now()
	runID := uuid.NewString()
	log := observability.WithRunContext(p.logger, runID)

	p.metrics.RunsStarted.Inc()
	log.Info().Str("input_dir", inputDir).Msg("pipeline run started")

	result, err := p.run(ctx, inputDir, runID, log)

	p.metrics.RunDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		p.metrics.RunsFailed.Inc()
		log.Error().Err(err).Msg("pipeline run failed")
		return nil, err
	}
	result.Duration = time.Since(start)
	p.metrics.RunsCompleted.Inc()
	log.Info().
		Int("rows_before", result.RowsBefore).
		Int("rows_after", result.RowsAfter).
		Int("duplicates", result.Duplicates).
		Dur("duration", result.Duration).
		Msg("pipeline run completed")
	return result, nil
}

func (p *Pipeline) run(ctx context.Context, inputDir, runID string, log zerolog.Logger) (*Result, error) {
	raw, skipped, err := p.loader.LoadDir(inputDir)
	if err != nil {
		return nil, err
	}
	p.metrics.FilesLoaded.Add(float64(len(raw)))
	p.metrics.FilesSkipped.Add(float64(len(skipped)))
	if len(raw) == 0 {
		return nil, domain.NewNotFoundError("input tables", inputDir)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	normalized := make([]*domain.Table, 0, len(raw))
	perSource := make([]aggregate.CategoryCount, 0, len(raw))
	processed := make([]string, 0, len(raw))
	for _, t := range raw {
		norm := p.merger.Normalize(t)
		normalized = append(normalized, norm)
		perSource = append(perSource, aggregate.CategoryCount{Category: norm.Name, Count: norm.Len()})
		processed = append(processed, norm.Name)

		if p.opts.PerSourceCharts && norm.HasColumn(domain.ColYear) {
			name := fmt.Sprintf("%s_publications_by_year.png", norm.Name)
			title := fmt.Sprintf("Publications by Year (%s)", norm.Name)
			if err := p.charts.YearlyChart(aggregate.YearCounts(norm), title, name); err != nil {
				return nil, err
			}
			p.metrics.ChartsRendered.WithLabelValues("per_source_yearly").Inc()
		}
	}

	merged := p.merger.Merge(normalized)
	p.metrics.RowsMerged.Add(float64(merged.Len()))

	if err := p.writeTable(merged, export.FileMergedCSV, export.FileMergedXLSX); err != nil {
		return nil, err
	}

	deduped, duplicates := p.merger.Dedup(merged, p.opts.DedupKey)
	p.metrics.DuplicatesFound.Add(float64(duplicates.Len()))

	if err := p.tables.WriteXLSX(duplicates, export.FileDuplicates); err != nil {
		return nil, err
	}
	p.metrics.ArtifactsWritten.WithLabelValues("xlsx").Inc()
	if err := p.writeTable(deduped, export.FileFinalCSV, export.FileFinalXLSX); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := p.renderCharts(deduped, perSource, merged.Len(), log); err != nil {
		return nil, err
	}

	return &Result{
		RunID:      runID,
		Processed:  processed,
		Skipped:    skipped,
		RowsBefore: merged.Len(),
		RowsAfter:  deduped.Len(),
		Duplicates: duplicates.Len(),
	}, nil
}

// writeTable persists one table as both a CSV and an XLSX artifact.
func (p *Pipeline) writeTable(t *domain.Table, csvName, xlsxName string) error {
	if err := p.tables.WriteCSV(t, csvName); err != nil {
		return err
	}
	p.metrics.ArtifactsWritten.WithLabelValues("csv").Inc()
	if err := p.tables.WriteXLSX(t, xlsxName); err != nil {
		return err
	}
	p.metrics.ArtifactsWritten.WithLabelValues("xlsx").Inc()
	return nil
}

// renderCharts renders every post-dedup chart. Charts whose input column is
// absent from the table are skipped with a warning, never failed.
func (p *Pipeline) renderCharts(t *domain.Table, perSource []aggregate.CategoryCount, before int, log zerolog.Logger) error {
	if p.columnPresent(t, domain.ColYear, "yearly", log) {
		if err := p.charts.YearlyChart(aggregate.YearCounts(t), "Publications by Year", "publications_by_year.png"); err != nil {
			return err
		}
		p.metrics.ChartsRendered.WithLabelValues("yearly").Inc()
	}

	if p.columnPresent(t, domain.ColKeywords, "keywords", log) {
		freqs := aggregate.KeywordFrequencies(t)
		if err := p.renderTermCharts(freqs, "Keywords", "keyword_bar_chart.png", "keyword_wordcloud.png", "keywords"); err != nil {
			return err
		}
		if p.opts.EnableHeatmap {
			terms := termNames(aggregate.TopN(freqs, p.opts.TopN))
			m := aggregate.CooccurrenceMatrix(t, terms)
			if err := p.charts.Heatmap(m, "Keyword Co-occurrence", "keyword_heatmap.png"); err != nil {
				return err
			}
			p.metrics.ChartsRendered.WithLabelValues("heatmap").Inc()
		}
	}

	if p.columnPresent(t, domain.ColTitle, "title_keywords", log) {
		freqs := aggregate.TextTokenFrequencies(t, domain.ColTitle)
		if err := p.renderTermCharts(freqs, "Title Keywords", "title_keywords_bar_chart.png", "title_keywords_wordcloud.png", "title_keywords"); err != nil {
			return err
		}
	}

	if p.columnPresent(t, domain.ColAbstract, "abstract_keywords", log) {
		freqs := aggregate.TextTokenFrequencies(t, domain.ColAbstract)
		if err := p.renderTermCharts(freqs, "Abstract Keywords", "abstract_keywords_bar_chart.png", "abstract_keywords_wordcloud.png", "abstract_keywords"); err != nil {
			return err
		}
	}

	series := aggregate.SummarySeries(perSource, before, t.Len())
	if err := p.charts.BarChart(series, "Statistics", "Category", "Publications", "stats.png"); err != nil {
		return err
	}
	p.metrics.ChartsRendered.WithLabelValues("stats").Inc()

	return nil
}

// renderTermCharts renders the top-N bar chart and the word cloud for one
// frequency table.
func (p *Pipeline) renderTermCharts(freqs []aggregate.TermCount, title, barName, cloudName, kind string) error {
	if err := p.charts.KeywordBarChart(aggregate.TopN(freqs, p.opts.TopN), title, barName); err != nil {
		return err
	}
	p.metrics.ChartsRendered.WithLabelValues(kind + "_bar").Inc()

	counts := make(map[string]int, len(freqs))
	for _, f := range freqs {
		counts[f.Term] = f.Count
	}
	if err := p.charts.WordCloud(counts, cloudName); err != nil {
		return err
	}
	p.metrics.ChartsRendered.WithLabelValues(kind + "_wordcloud").Inc()
	return nil
}

func (p *Pipeline) columnPresent(t *domain.Table, col, kind string, log zerolog.Logger) bool {
	if t.HasColumn(col) {
		return true
	}
	log.Warn().Str("column", col).Str("chart", kind).Msg("column absent, chart skipped")
	p.metrics.ChartsSkipped.WithLabelValues(kind).Inc()
	return false
}

func termNames(counts []aggregate.TermCount) []string {
	names := make([]string, len(counts))
	for i, c := range counts {
		names[i] = c.Term
	}
	return names
}
