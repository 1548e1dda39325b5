// Package aggregate computes the count series and frequency tables consumed
// by the chart renderers. It never renders anything itself; keeping the
// counting logic free of image output is what makes it testable.
package aggregate

import (
	"regexp"
	"sort"
	"strings"

	"github.com/programmers-nightmare/research-helper/internal/domain"
)

// wordRe extracts tokens of at least four word characters; shorter tokens and
// punctuation are discarded. Used for the free-text Title and Abstract fields.
var wordRe = regexp.MustCompile(`\b\w{4,}\b`)

// YearCount is one point of the yearly publication series.
type YearCount struct {
	Year  int
	Count int
}

// TermCount is one entry of a keyword frequency table.
type TermCount struct {
	Term  string
	Count int
}

// CategoryCount is one bar of the summary comparison chart.
type CategoryCount struct {
	Category string
	Count    int
}

// YearCounts groups rows by publication year and counts rows per year,
// sorted ascending. Years with no rows do not appear; rows with a missing
// year are excluded.
func YearCounts(table *domain.Table) []YearCount {
	counts := make(map[int]int)
	for i := range table.Rows {
		if y := table.Rows[i].Year; y != nil {
			counts[*y]++
		}
	}
	out := make([]YearCount, 0, len(counts))
	for year, n := range counts {
		out = append(out, YearCount{Year: year, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// KeywordFrequencies counts whitespace-separated tokens of the Keywords
// column across all rows, with no case folding. The returned table is
// ordered by count descending; ties keep first-encountered order, which
// makes the ordering stable across runs.
func KeywordFrequencies(table *domain.Table) []TermCount {
	var tokens []string
	for i := range table.Rows {
		v := table.Rows[i].Value(domain.ColKeywords)
		if v == "" {
			continue
		}
		tokens = append(tokens, strings.Fields(v)...)
	}
	return countTokens(tokens)
}

// TextTokenFrequencies counts tokens of a free-text column (Title or
// Abstract): all non-missing values are concatenated, lowercased, and split
// into word-boundary tokens of at least four characters.
func TextTokenFrequencies(table *domain.Table, column string) []TermCount {
	var parts []string
	for i := range table.Rows {
		if v := table.Rows[i].Value(column); v != "" {
			parts = append(parts, v)
		}
	}
	text := strings.ToLower(strings.Join(parts, " "))
	return countTokens(wordRe.FindAllString(text, -1))
}

// TopN returns the first n entries of a frequency table, or the whole table
// when it has fewer.
func TopN(counts []TermCount, n int) []TermCount {
	if n < len(counts) {
		return counts[:n]
	}
	return counts
}

// SummarySeries builds the comparison series for the stats chart: one bar
// per source, then the before/after/difference triple.
func SummarySeries(perSource []CategoryCount, before, after int) []CategoryCount {
	out := make([]CategoryCount, 0, len(perSource)+3)
	out = append(out, perSource...)
	out = append(out,
		CategoryCount{Category: "Before Duplicate Removal", Count: before},
		CategoryCount{Category: "After Duplicate Removal", Count: after},
		CategoryCount{Category: "Duplicates", Count: before - after},
	)
	return out
}

// Cooccurrence is a square symmetric matrix over Terms with a zero diagonal.
// Cells[i][j] counts the records whose keyword field contains both Terms[i]
// and Terms[j] as distinct tokens.
type Cooccurrence struct {
	Terms []string
	Cells [][]int
}

// CooccurrenceMatrix computes pairwise keyword co-occurrence over the given
// terms (the top-N keywords by frequency). Per-record keyword sets are
// deduplicated first, so a repeated token still counts each unordered pair
// once per record.
func CooccurrenceMatrix(table *domain.Table, terms []string) *Cooccurrence {
	index := make(map[string]int, len(terms))
	for i, t := range terms {
		index[t] = i
	}

	cells := make([][]int, len(terms))
	for i := range cells {
		cells[i] = make([]int, len(terms))
	}

	for r := range table.Rows {
		v := table.Rows[r].Value(domain.ColKeywords)
		if v == "" {
			continue
		}
		present := make(map[int]bool)
		for _, tok := range strings.Fields(v) {
			if i, ok := index[tok]; ok {
				present[i] = true
			}
		}
		ids := make([]int, 0, len(present))
		for i := range present {
			ids = append(ids, i)
		}
		sort.Ints(ids)
		for a := 0; a < len(ids); a++ {
			for b := a + 1; b < len(ids); b++ {
				cells[ids[a]][ids[b]]++
				cells[ids[b]][ids[a]]++
			}
		}
	}

	return &Cooccurrence{Terms: terms, Cells: cells}
}

// countTokens builds a frequency table ordered by count descending with ties
// broken by first encounter.
func countTokens(tokens []string) []TermCount {
	counts := make(map[string]int, len(tokens))
	firstSeen := make(map[string]int, len(tokens))
	for i, tok := range tokens {
		if _, ok := counts[tok]; !ok {
			firstSeen[tok] = i
		}
		counts[tok]++
	}

	out := make([]TermCount, 0, len(counts))
	for tok, n := range counts {
		out = append(out, TermCount{Term: tok, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return firstSeen[out[i].Term] < firstSeen[out[j].Term]
	})
	return out
}
