// Package loader reads bibliographic CSV exports into in-memory tables.
package loader

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/programmers-nightmare/research-helper/internal/domain"
	"github.com/programmers-nightmare/research-helper/internal/observability"
)

// Loader enumerates and reads delimited input tables from a directory.
type Loader struct {
	logger zerolog.Logger
}

// New creates a Loader.
func New(logger zerolog.Logger) *Loader {
	return &Loader{
		logger: logger.With().Str("component", "loader").Logger(),
	}
}

// ListTables returns the paths of all .csv files in dir, in filesystem
// enumeration order.
func ListTables(dir string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, fmt.Errorf("enumerate %s: %w", dir, err)
	}
	return paths, nil
}

// Read reads a single CSV file into a raw table. Column names are taken from
// the header row verbatim; values are stored under those raw names, so a
// header that already equals a canonical column fills the typed field (which
// is why a bad year can warn here) and anything else lands in the record's
// Extra map. Renaming and retention are the merger's concern. It returns a
// ParseError when the file cannot be opened, is not valid delimited text, or
// has no header row.
func (l *Loader) Read(path string) (*domain.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, domain.NewParseError(path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // ragged rows are padded below

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, domain.NewParseError(path, errors.New("no header row"))
		}
		return nil, domain.NewParseError(path, err)
	}

	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.TrimSpace(h)
	}

	source := SourceName(path)
	log := observability.WithSourceContext(l.logger, source, path)
	table := domain.NewTable(source, columns)
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, domain.NewParseError(path, err)
		}

		var rec domain.Record
		for i, col := range columns {
			v := ""
			if i < len(row) {
				v = row[i]
			}
			if err := rec.SetValue(col, v); err != nil {
				// Unparseable year: the record is kept with the field empty.
				log.Warn().Str("column", col).Str("value", v).
					Msg("unparseable value left empty")
			}
		}
		table.Append(rec)
	}

	log.Debug().Int("rows", table.Len()).Msg("table loaded")
	return table, nil
}

// Failure records one input file that could not be loaded.
type Failure struct {
	Path string
	Err  error
}

// MarshalJSON reports the failure reason as text so run reports stay
// readable over HTTP.
func (f Failure) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Path   string `json:"path"`
		Reason string `json:"reason"`
	}{Path: f.Path, Reason: f.Err.Error()})
}

// LoadDir reads every .csv file in dir. Per-file failures are isolated: a
// malformed file is reported in the failure list and the remaining files are
// still loaded.
func (l *Loader) LoadDir(dir string) ([]*domain.Table, []Failure, error) {
	paths, err := ListTables(dir)
	if err != nil {
		return nil, nil, err
	}

	var (
		tables   []*domain.Table
		failures []Failure
	)
	for _, path := range paths {
		table, err := l.Read(path)
		if err != nil {
			l.logger.Error().Err(err).Str("path", path).Msg("skipping unreadable input file")
			failures = append(failures, Failure{Path: path, Err: err})
			continue
		}
		tables = append(tables, table)
	}
	return tables, failures, nil
}

// SourceName derives the source identifier for an input file: its base name
// without the extension.
func SourceName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
