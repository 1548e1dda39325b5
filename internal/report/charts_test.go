package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/programmers-nightmare/research-helper/internal/aggregate"
)

func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := New(t.TempDir(), DefaultStyle(), zerolog.Nop())
	require.NoError(t, err)
	return r
}

func assertArtifact(t *testing.T, r *Renderer, name string) {
	t.Helper()
	info, err := os.Stat(filepath.Join(r.Dir(), name))
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestBarChart(t *testing.T) {
	r := newRenderer(t)
	series := []aggregate.CategoryCount{
		{Category: "ieee", Count: 3},
		{Category: "scopus", Count: 2},
		{Category: "Duplicates", Count: 1},
	}
	require.NoError(t, r.BarChart(series, "Stats", "", "Count (Publications)", "stats.png"))
	assertArtifact(t, r, "stats.png")
}

func TestYearlyChart(t *testing.T) {
	r := newRenderer(t)
	series := []aggregate.YearCount{{Year: 2020, Count: 2}, {Year: 2022, Count: 1}}
	require.NoError(t, r.YearlyChart(series, "Number of Publications by Year", "publications_by_year.png"))
	assertArtifact(t, r, "publications_by_year.png")
}

func TestKeywordBarChart(t *testing.T) {
	r := newRenderer(t)
	counts := []aggregate.TermCount{{Term: "learning", Count: 5}, {Term: "vision", Count: 2}}
	require.NoError(t, r.KeywordBarChart(counts, "Top 2 Keywords", "keyword_bar_chart.png"))
	assertArtifact(t, r, "keyword_bar_chart.png")
}

func TestHeatmap(t *testing.T) {
	r := newRenderer(t)
	m := &aggregate.Cooccurrence{
		Terms: []string{"ml", "nlp"},
		Cells: [][]int{{0, 2}, {2, 0}},
	}
	require.NoError(t, r.Heatmap(m, "Keyword Co-occurrence Heatmap", "keyword_heatmap.png"))
	assertArtifact(t, r, "keyword_heatmap.png")
}

func TestWordCloudSkippedWithoutFont(t *testing.T) {
	r := newRenderer(t)
	require.NoError(t, r.WordCloud(map[string]int{"learning": 3}, "cloud.png"))
	_, err := os.Stat(filepath.Join(r.Dir(), "cloud.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestWordCloudSkippedWithMissingFontFile(t *testing.T) {
	style := DefaultStyle()
	style.FontFile = filepath.Join(t.TempDir(), "nope.ttf")
	r, err := New(t.TempDir(), style, zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, r.WordCloud(map[string]int{"learning": 3}, "cloud.png"))
	_, err = os.Stat(filepath.Join(r.Dir(), "cloud.png"))
	assert.True(t, os.IsNotExist(err))
}
