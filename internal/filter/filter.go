// Package filter selects subsets of the deduplicated artifact by keyword.
// It deliberately re-loads the persisted table instead of holding pipeline
// state, so a filter pass can run as a separate invocation.
package filter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/programmers-nightmare/research-helper/internal/domain"
	"github.com/programmers-nightmare/research-helper/internal/export"
	"github.com/programmers-nightmare/research-helper/internal/loader"
)

// Service filters the persisted deduplicated table.
type Service struct {
	loader   *loader.Loader
	exporter *export.Exporter
	logger   zerolog.Logger
}

// New creates a filter Service. The exporter's directory is both where the
// deduplicated artifact is looked up and where filtered subsets are written.
func New(l *loader.Loader, e *export.Exporter, logger zerolog.Logger) *Service {
	return &Service{
		loader:   l,
		exporter: e,
		logger:   logger.With().Str("component", "filter").Logger(),
	}
}

// Run loads the deduplicated artifact and returns the rows whose field value
// contains any of the keywords (case-insensitive substring, OR'ed) when
// contains is true, or the rows containing none of them when false. Rows with
// a missing value never match, so they fall on the does-not-contain side.
// The subset is persisted as a CSV named after the condition, field, and
// keywords; that name is returned alongside the subset.
//
// A missing artifact yields a NotFoundError and a missing field a
// SchemaError; presentation (empty result, 404) is the caller's concern.
func (s *Service) Run(field string, keywords []string, contains bool) (*domain.Table, string, error) {
	path := filepath.Join(s.exporter.Dir(), export.FileFinalCSV)
	if _, err := os.Stat(path); err != nil {
		s.logger.Error().Str("path", path).Msg("deduplicated artifact not found; run the pipeline first")
		return nil, "", domain.NewNotFoundError("artifact", export.FileFinalCSV)
	}

	table, err := s.loader.Read(path)
	if err != nil {
		return nil, "", err
	}
	if !table.HasColumn(field) {
		return nil, "", domain.NewSchemaError(field)
	}

	lowered := make([]string, len(keywords))
	for i, kw := range keywords {
		lowered[i] = strings.ToLower(kw)
	}

	subset := domain.NewTable("filtered", table.Columns)
	for i := range table.Rows {
		matched := containsAny(table.Rows[i].Value(field), lowered)
		if matched == contains {
			subset.Append(table.Rows[i])
		}
	}

	name := subsetName(field, keywords, contains)
	if err := s.exporter.WriteCSV(subset, name); err != nil {
		return nil, "", err
	}

	s.logger.Info().Str("field", field).Strs("keywords", keywords).Bool("contains", contains).
		Int("rows", subset.Len()).Str("artifact", name).Msg("filter pass complete")
	return subset, name, nil
}

// containsAny reports whether value contains at least one keyword,
// case-insensitively. A missing value contains nothing.
func containsAny(value string, loweredKeywords []string) bool {
	if value == "" {
		return false
	}
	v := strings.ToLower(value)
	for _, kw := range loweredKeywords {
		if kw != "" && strings.Contains(v, kw) {
			return true
		}
	}
	return false
}

// subsetName builds the artifact file name for a filter pass. Field and
// keywords come from callers (the HTTP request body included), so path
// separators are replaced to keep the write inside the output directory.
func subsetName(field string, keywords []string, contains bool) string {
	cond := "does_not_contain"
	if contains {
		cond = "contains"
	}
	parts := make([]string, len(keywords))
	for i, kw := range keywords {
		parts[i] = sanitizeNamePart(kw)
	}
	return fmt.Sprintf("filtered_%s_%s_%s.csv", cond, sanitizeNamePart(strings.ToLower(field)), strings.Join(parts, "_"))
}

func sanitizeNamePart(s string) string {
	s = strings.ReplaceAll(s, "/", "-")
	s = strings.ReplaceAll(s, "\\", "-")
	return s
}
