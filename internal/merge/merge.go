// Package merge reconciles heterogeneous bibliographic tables into one merged
// table and splits it into deduplicated and duplicate row sets.
package merge

import (
	"github.com/rs/zerolog"

	"github.com/programmers-nightmare/research-helper/internal/domain"
)

// ColumnMode controls what happens to columns outside the canonical schema.
type ColumnMode string

const (
	// ModePermissive retains unknown columns alongside the canonical ones.
	ModePermissive ColumnMode = "permissive"
	// ModeStrict drops every column that does not resolve to a canonical name.
	ModeStrict ColumnMode = "strict"
)

// Merger normalizes and concatenates loaded tables.
type Merger struct {
	rules  []domain.AliasRule
	mode   ColumnMode
	logger zerolog.Logger
}

// New creates a Merger with the given alias rules and column mode.
func New(rules []domain.AliasRule, mode ColumnMode, logger zerolog.Logger) *Merger {
	return &Merger{
		rules:  rules,
		mode:   mode,
		logger: logger.With().Str("component", "merger").Logger(),
	}
}

// Normalize renames aliased columns to their canonical names, applies the
// column mode, and tags every row with Source = the table's name. Rows keep
// their original order.
func (m *Merger) Normalize(raw *domain.Table) *domain.Table {
	var columns []string
	mapping := make(map[string]string, len(raw.Columns))
	for _, col := range raw.Columns {
		canonical, matched := domain.ResolveColumn(col, m.rules)
		if !matched && m.mode == ModeStrict {
			continue
		}
		mapping[col] = canonical
		if canonical != col {
			m.logger.Debug().Str("source", raw.Name).Str("from", col).Str("to", canonical).
				Msg("column renamed")
		}
		columns = appendUnique(columns, canonical)
	}
	columns = appendUnique(columns, domain.ColSource)

	out := domain.NewTable(raw.Name, columns)
	for _, row := range raw.Rows {
		var rec domain.Record
		for _, col := range raw.Columns {
			canonical, ok := mapping[col]
			if !ok {
				continue
			}
			if err := rec.SetValue(canonical, row.Value(col)); err != nil {
				m.logger.Warn().Str("source", raw.Name).Str("column", canonical).
					Str("value", row.Value(col)).Msg("unparseable value left empty")
			}
		}
		rec.Source = raw.Name
		out.Append(rec)
	}
	return out
}

// Merge concatenates normalized tables, preserving source-then-row order.
// The merged column set is the union of all columns in first-encounter
// order; values for columns a source never had stay empty.
func (m *Merger) Merge(tables []*domain.Table) *domain.Table {
	merged := domain.NewTable("merged", nil)
	for _, t := range tables {
		for _, col := range t.Columns {
			merged.AddColumn(col)
		}
		merged.Rows = append(merged.Rows, t.Rows...)
	}
	m.logger.Info().Int("sources", len(tables)).Int("rows", merged.Len()).Msg("tables merged")
	return merged
}

// Dedup splits the merged table by the given key column. The first occurrence
// of each non-missing key value survives in the deduplicated table; every row
// whose key value occurs more than once (all occurrences, not just the
// extras) lands in the duplicates table. Rows with a missing key are never
// duplicates of each other and all survive. Key comparison is exact and
// case-sensitive. A key column absent from the table means every key is
// missing: nothing is flagged and a warning is logged.
func (m *Merger) Dedup(merged *domain.Table, key string) (deduped, duplicates *domain.Table) {
	if !merged.HasColumn(key) {
		m.logger.Warn().Str("key", key).Msg("dedup key column not present; nothing deduplicated")
	}

	counts := make(map[string]int, merged.Len())
	for i := range merged.Rows {
		if v := merged.Rows[i].Value(key); v != "" {
			counts[v]++
		}
	}

	deduped = domain.NewTable("deduplicated", merged.Columns)
	duplicates = domain.NewTable("duplicates", merged.Columns)
	seen := make(map[string]bool, len(counts))
	for i := range merged.Rows {
		row := merged.Rows[i]
		v := row.Value(key)
		if v == "" {
			deduped.Append(row)
			continue
		}
		if counts[v] > 1 {
			duplicates.Append(row)
		}
		if !seen[v] {
			seen[v] = true
			deduped.Append(row)
		}
	}

	m.logger.Info().Str("key", key).
		Int("before", merged.Len()).
		Int("after", deduped.Len()).
		Int("duplicates", duplicates.Len()).
		Msg("deduplication complete")
	return deduped, duplicates
}

func appendUnique(cols []string, c string) []string {
	for _, existing := range cols {
		if existing == c {
			return cols
		}
	}
	return append(cols, c)
}
