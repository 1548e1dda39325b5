// Package export writes tables to CSV and XLSX artifacts in the output
// directory. Artifacts are overwritten on every run; last write wins.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/programmers-nightmare/research-helper/internal/domain"
	"github.com/programmers-nightmare/research-helper/internal/observability"
)

const sheetName = "Sheet1"

// Exporter persists tables into a single output directory.
type Exporter struct {
	dir    string
	logger zerolog.Logger
}

// New creates an Exporter rooted at dir, creating it if needed.
func New(dir string, logger zerolog.Logger) (*Exporter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory %s: %w", dir, err)
	}
	return &Exporter{
		dir:    dir,
		logger: logger.With().Str("component", "exporter").Logger(),
	}, nil
}

// Dir returns the output directory.
func (e *Exporter) Dir() string { return e.dir }

// WriteCSV writes the table as a CSV artifact named filename. The name is
// reduced to its base so an artifact can never land outside the output
// directory. A failed write is logged with its cause and returned as an
// ExportError.
func (e *Exporter) WriteCSV(table *domain.Table, filename string) error {
	filename = filepath.Base(filename)
	path := filepath.Join(e.dir, filename)
	f, err := os.Create(path)
	if err != nil {
		return e.exportErr(path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(table.Columns); err != nil {
		f.Close()
		return e.exportErr(path, err)
	}
	row := make([]string, len(table.Columns))
	for i := range table.Rows {
		for j, col := range table.Columns {
			row[j] = table.Rows[i].Value(col)
		}
		if err := w.Write(row); err != nil {
			f.Close()
			return e.exportErr(path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return e.exportErr(path, err)
	}
	if err := f.Close(); err != nil {
		return e.exportErr(path, err)
	}

	logger := observability.WithArtifactContext(e.logger, filename, "csv")
	logger.Info().Str("path", path).Int("rows", table.Len()).Msg("artifact written")
	return nil
}

// WriteXLSX writes the table as a spreadsheet artifact named filename. The
// name is reduced to its base, as in WriteCSV.
func (e *Exporter) WriteXLSX(table *domain.Table, filename string) error {
	filename = filepath.Base(filename)
	path := filepath.Join(e.dir, filename)
	f := excelize.NewFile()
	defer f.Close()

	header := make([]interface{}, len(table.Columns))
	for i, col := range table.Columns {
		header[i] = col
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return e.exportErr(path, err)
	}

	for i := range table.Rows {
		row := make([]interface{}, len(table.Columns))
		for j, col := range table.Columns {
			row[j] = table.Rows[i].Value(col)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return e.exportErr(path, err)
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return e.exportErr(path, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return e.exportErr(path, err)
	}

	logger := observability.WithArtifactContext(e.logger, filename, "xlsx")
	logger.Info().Str("path", path).Int("rows", table.Len()).Msg("artifact written")
	return nil
}

func (e *Exporter) exportErr(path string, cause error) error {
	err := domain.NewExportError(path, cause)
	e.logger.Error().Err(cause).Str("path", path).Msg("artifact write failed")
	return err
}
