// Package domain defines the tabular record model shared by the pipeline stages.
package domain

import (
	"strconv"
	"strings"
)

// Canonical column names understood by the pipeline. Input headers are mapped
// onto these via the ordered alias rules before tables are merged.
const (
	ColTitle    = "Title"
	ColYear     = "Publication Year"
	ColAuthors  = "Authors"
	ColDOI      = "DOI"
	ColSource   = "Source"
	ColKeywords = "Keywords"
	ColAbstract = "Abstract"
)

// CanonicalColumns lists the canonical schema in export order.
var CanonicalColumns = []string{
	ColTitle,
	ColYear,
	ColAuthors,
	ColDOI,
	ColSource,
	ColKeywords,
	ColAbstract,
}

// IsCanonical reports whether name is one of the canonical column names.
func IsCanonical(name string) bool {
	for _, c := range CanonicalColumns {
		if c == name {
			return true
		}
	}
	return false
}

// Record is a single bibliographic row. The canonical schema lives in named
// fields; unrecognized columns are retained in Extra when the merger runs in
// permissive mode. A missing value is represented by the empty string (Year by
// nil), matching the empty cells of the exported CSV artifacts.
type Record struct {
	Title    string
	Year     *int
	Authors  string
	DOI      string
	Source   string
	Keywords string
	Abstract string

	// Extra holds values of columns outside the canonical schema,
	// keyed by column name.
	Extra map[string]string
}

// Value returns the record's value for the given column name, formatted as a
// string. Missing values come back as "".
func (r *Record) Value(col string) string {
	switch col {
	case ColTitle:
		return r.Title
	case ColYear:
		if r.Year == nil {
			return ""
		}
		return strconv.Itoa(*r.Year)
	case ColAuthors:
		return r.Authors
	case ColDOI:
		return r.DOI
	case ColSource:
		return r.Source
	case ColKeywords:
		return r.Keywords
	case ColAbstract:
		return r.Abstract
	default:
		return r.Extra[col]
	}
}

// SetValue stores a raw string value under the given column name. For the
// year column the value is parsed; an unparseable year leaves the field empty
// and returns the parse failure so the caller can log it (the record itself
// is kept).
func (r *Record) SetValue(col, v string) error {
	switch col {
	case ColTitle:
		r.Title = v
	case ColYear:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			r.Year = nil
			return nil
		}
		year, err := strconv.Atoi(trimmed)
		if err != nil {
			r.Year = nil
			return err
		}
		r.Year = &year
	case ColAuthors:
		r.Authors = v
	case ColDOI:
		r.DOI = v
	case ColSource:
		r.Source = v
	case ColKeywords:
		r.Keywords = v
	case ColAbstract:
		r.Abstract = v
	default:
		if r.Extra == nil {
			r.Extra = make(map[string]string)
		}
		r.Extra[col] = v
	}
	return nil
}

// Table is an ordered sequence of records with an ordered column set.
// Name identifies the originating source (file base name without extension
// once the merger has tagged it).
type Table struct {
	Name    string
	Columns []string
	Rows    []Record
}

// NewTable creates an empty table with the given name and columns.
func NewTable(name string, columns []string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{Name: name, Columns: cols}
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// HasColumn reports whether the table carries the given column.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// AddColumn appends a column if it is not already present.
func (t *Table) AddColumn(name string) {
	if !t.HasColumn(name) {
		t.Columns = append(t.Columns, name)
	}
}

// Append adds a row to the table.
func (t *Table) Append(r Record) {
	t.Rows = append(t.Rows, r)
}
