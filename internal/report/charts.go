// Package report renders the aggregated count series into chart artifacts.
// It is a pure consumer of the aggregate package's output; swapping the
// charting backend must never touch the counting logic.
package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/programmers-nightmare/research-helper/internal/aggregate"
	"github.com/programmers-nightmare/research-helper/internal/domain"
)

// Style is the explicit chart configuration passed into every rendering
// call. No ambient styling state is consulted anywhere in this package.
type Style struct {
	// Width and Height are the chart dimensions in inches.
	Width  float64
	Height float64
	// BarWidth is the bar width in points.
	BarWidth float64
	// HeatPaletteSize is the number of colors in the heatmap palette.
	HeatPaletteSize int
	// WordCloudWidth and WordCloudHeight are the word-cloud image
	// dimensions in pixels.
	WordCloudWidth  int
	WordCloudHeight int
	// FontFile is the TTF font used by the word-cloud renderer. Word
	// clouds are skipped with a warning when it is empty or missing.
	FontFile string
}

// DefaultStyle returns the default chart configuration.
func DefaultStyle() Style {
	return Style{
		Width:           10,
		Height:          6,
		BarWidth:        20,
		HeatPaletteSize: 12,
		WordCloudWidth:  1600,
		WordCloudHeight: 800,
	}
}

// Renderer writes chart artifacts into a single output directory.
type Renderer struct {
	dir    string
	style  Style
	logger zerolog.Logger
}

// New creates a Renderer rooted at dir, creating it if needed.
func New(dir string, style Style, logger zerolog.Logger) (*Renderer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create chart directory %s: %w", dir, err)
	}
	return &Renderer{
		dir:    dir,
		style:  style,
		logger: logger.With().Str("component", "renderer").Logger(),
	}, nil
}

// Dir returns the chart output directory.
func (r *Renderer) Dir() string { return r.dir }

// BarChart renders one bar per category.
func (r *Renderer) BarChart(series []aggregate.CategoryCount, title, xlabel, ylabel, filename string) error {
	values := make(plotter.Values, len(series))
	labels := make([]string, len(series))
	for i, c := range series {
		values[i] = float64(c.Count)
		labels[i] = c.Category
	}
	return r.saveBars(values, labels, title, xlabel, ylabel, filename)
}

// YearlyChart renders the publications-per-year series. The series is sparse:
// only years that actually occur get a bar.
func (r *Renderer) YearlyChart(series []aggregate.YearCount, title, filename string) error {
	values := make(plotter.Values, len(series))
	labels := make([]string, len(series))
	for i, yc := range series {
		values[i] = float64(yc.Count)
		labels[i] = fmt.Sprintf("%d", yc.Year)
	}
	return r.saveBars(values, labels, title, "Publication Year", "Number of Publications", filename)
}

// KeywordBarChart renders a top-N keyword frequency table.
func (r *Renderer) KeywordBarChart(counts []aggregate.TermCount, title, filename string) error {
	values := make(plotter.Values, len(counts))
	labels := make([]string, len(counts))
	for i, tc := range counts {
		values[i] = float64(tc.Count)
		labels[i] = tc.Term
	}
	return r.saveBars(values, labels, title, "Keyword", "Count", filename)
}

// Heatmap renders the co-occurrence matrix.
func (r *Renderer) Heatmap(m *aggregate.Cooccurrence, title, filename string) error {
	path := filepath.Join(r.dir, filename)
	if len(m.Terms) == 0 {
		r.logger.Warn().Str("path", path).Msg("no terms to plot; skipping heatmap")
		return nil
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Tick.Label.Rotation = 0.785 // 45 degrees
	p.Add(plotter.NewHeatMap(cooccurrenceGrid{m}, palette.Heat(r.style.HeatPaletteSize, 1)))
	p.NominalX(m.Terms...)
	p.NominalY(m.Terms...)

	if err := p.Save(vg.Length(r.style.Width)*vg.Inch, vg.Length(r.style.Height)*vg.Inch, path); err != nil {
		return r.renderErr(path, err)
	}
	r.logger.Info().Str("path", path).Msg("heatmap rendered")
	return nil
}

func (r *Renderer) saveBars(values plotter.Values, labels []string, title, xlabel, ylabel, filename string) error {
	path := filepath.Join(r.dir, filename)

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	p.X.Tick.Label.Rotation = 0.785

	bars, err := plotter.NewBarChart(values, vg.Points(r.style.BarWidth))
	if err != nil {
		return r.renderErr(path, err)
	}
	p.Add(bars)
	p.NominalX(labels...)

	if err := p.Save(vg.Length(r.style.Width)*vg.Inch, vg.Length(r.style.Height)*vg.Inch, path); err != nil {
		return r.renderErr(path, err)
	}
	r.logger.Info().Str("path", path).Int("bars", len(values)).Msg("bar chart rendered")
	return nil
}

func (r *Renderer) renderErr(path string, cause error) error {
	err := domain.NewExportError(path, cause)
	r.logger.Error().Err(cause).Str("path", path).Msg("chart render failed")
	return err
}

// cooccurrenceGrid adapts a co-occurrence matrix to the heatmap grid
// interface.
type cooccurrenceGrid struct {
	m *aggregate.Cooccurrence
}

func (g cooccurrenceGrid) Dims() (c, r int) {
	n := len(g.m.Terms)
	return n, n
}

func (g cooccurrenceGrid) Z(c, r int) float64 { return float64(g.m.Cells[r][c]) }
func (g cooccurrenceGrid) X(c int) float64    { return float64(c) }
func (g cooccurrenceGrid) Y(r int) float64    { return float64(r) }
