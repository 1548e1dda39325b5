package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/programmers-nightmare/research-helper/internal/domain"
)

func intp(v int) *int { return &v }

func keywordTable(values ...string) *domain.Table {
	t := domain.NewTable("t", []string{domain.ColKeywords})
	for _, v := range values {
		t.Append(domain.Record{Keywords: v})
	}
	return t
}

func TestYearCountsSparseAscending(t *testing.T) {
	table := domain.NewTable("t", []string{domain.ColYear})
	for _, y := range []int{2020, 2020, 2022} {
		table.Append(domain.Record{Year: intp(y)})
	}
	table.Append(domain.Record{}) // missing year excluded

	got := YearCounts(table)
	require.Equal(t, []YearCount{{2020, 2}, {2022, 1}}, got)
	for _, yc := range got {
		assert.NotEqual(t, 2021, yc.Year)
	}
}

func TestKeywordFrequencies(t *testing.T) {
	got := KeywordFrequencies(keywordTable("alpha beta alpha"))
	require.Equal(t, []TermCount{{"alpha", 2}, {"beta", 1}}, got)
}

func TestKeywordFrequenciesNoCaseFolding(t *testing.T) {
	got := KeywordFrequencies(keywordTable("ML ml"))
	require.Len(t, got, 2)
}

func TestKeywordFrequenciesTieOrderStable(t *testing.T) {
	got := KeywordFrequencies(keywordTable("zeta alpha", "mid"))
	// All counts equal: first-encountered order decides.
	require.Equal(t, []TermCount{{"zeta", 1}, {"alpha", 1}, {"mid", 1}}, got)
}

func TestTextTokenFrequencies(t *testing.T) {
	table := domain.NewTable("t", []string{domain.ColTitle})
	table.Append(domain.Record{Title: "Deep Learning for NLP!"})
	table.Append(domain.Record{Title: "deep models"})
	table.Append(domain.Record{})

	got := TextTokenFrequencies(table, domain.ColTitle)
	require.Equal(t, []TermCount{{"deep", 2}, {"learning", 1}, {"models", 1}}, got)
	// "for" and "NLP!" are dropped: shorter than four characters.
	for _, tc := range got {
		assert.GreaterOrEqual(t, len(tc.Term), 4)
	}
}

func TestTopN(t *testing.T) {
	counts := []TermCount{{"a", 3}, {"b", 2}, {"c", 1}}
	assert.Len(t, TopN(counts, 2), 2)
	assert.Len(t, TopN(counts, 10), 3)
}

func TestSummarySeries(t *testing.T) {
	got := SummarySeries([]CategoryCount{{"ieee", 3}, {"scopus", 2}}, 5, 4)
	require.Len(t, got, 5)
	assert.Equal(t, CategoryCount{"Before Duplicate Removal", 5}, got[2])
	assert.Equal(t, CategoryCount{"After Duplicate Removal", 4}, got[3])
	assert.Equal(t, CategoryCount{"Duplicates", 1}, got[4])
}

func TestCooccurrenceMatrix(t *testing.T) {
	table := keywordTable(
		"ml nlp",
		"ml nlp vision",
		"ml ml nlp", // repeated token still counts the pair once
		"vision",
	)
	terms := []string{"ml", "nlp", "vision"}

	got := CooccurrenceMatrix(table, terms)
	require.Equal(t, terms, got.Terms)

	// Symmetric with zero diagonal.
	for i := range got.Cells {
		assert.Equal(t, 0, got.Cells[i][i])
		for j := range got.Cells {
			assert.Equal(t, got.Cells[i][j], got.Cells[j][i])
		}
	}

	assert.Equal(t, 3, got.Cells[0][1]) // ml+nlp
	assert.Equal(t, 1, got.Cells[0][2]) // ml+vision
	assert.Equal(t, 1, got.Cells[1][2]) // nlp+vision
}

func TestCooccurrenceIgnoresTermsOutsideTop(t *testing.T) {
	table := keywordTable("ml rare")
	got := CooccurrenceMatrix(table, []string{"ml"})
	require.Len(t, got.Cells, 1)
	assert.Equal(t, 0, got.Cells[0][0])
}
