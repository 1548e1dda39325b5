package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordValueRoundTrip(t *testing.T) {
	var r Record
	require.NoError(t, r.SetValue(ColTitle, "Deep Learning"))
	require.NoError(t, r.SetValue(ColYear, "2021"))
	require.NoError(t, r.SetValue(ColDOI, "10.1000/xyz"))
	require.NoError(t, r.SetValue("Citations", "42"))

	assert.Equal(t, "Deep Learning", r.Value(ColTitle))
	assert.Equal(t, "2021", r.Value(ColYear))
	assert.Equal(t, "10.1000/xyz", r.Value(ColDOI))
	assert.Equal(t, "42", r.Value("Citations"))
	assert.Equal(t, "", r.Value(ColAbstract))
}

func TestRecordUnparseableYearKeptEmpty(t *testing.T) {
	var r Record
	err := r.SetValue(ColYear, "early 2000s")
	assert.Error(t, err)
	assert.Nil(t, r.Year)
	assert.Equal(t, "", r.Value(ColYear))
}

func TestRecordEmptyYearIsMissing(t *testing.T) {
	var r Record
	require.NoError(t, r.SetValue(ColYear, "  "))
	assert.Nil(t, r.Year)
}

func TestResolveColumn(t *testing.T) {
	rules := DefaultAliasRules()

	tests := []struct {
		header  string
		want    string
		matched bool
	}{
		{"Document Title", ColTitle, true},
		{"Title", ColTitle, true},
		{"Year", ColYear, true},
		{"Publication Year", ColYear, true},
		{"Authors", ColAuthors, true},
		{"authors (full name)", ColAuthors, true},
		{"DOI", ColDOI, true},
		{"Author Keywords", ColKeywords, true},
		{"Abstract", ColAbstract, true},
		{"Citations", "Citations", false},
	}
	for _, tt := range tests {
		got, matched := ResolveColumn(tt.header, rules)
		assert.Equal(t, tt.want, got, "header %q", tt.header)
		assert.Equal(t, tt.matched, matched, "header %q", tt.header)
	}
}

func TestResolveColumnPriorityOrder(t *testing.T) {
	rules := DefaultAliasRules()

	// A header matching both the title and year patterns resolves to Title,
	// the highest-priority rule.
	got, matched := ResolveColumn("Title of Publication Year", rules)
	assert.True(t, matched)
	assert.Equal(t, ColTitle, got)
}

func TestTableColumns(t *testing.T) {
	tbl := NewTable("scopus", []string{ColTitle, ColYear})
	assert.True(t, tbl.HasColumn(ColTitle))
	assert.False(t, tbl.HasColumn(ColDOI))

	tbl.AddColumn(ColDOI)
	tbl.AddColumn(ColDOI)
	assert.Equal(t, []string{ColTitle, ColYear, ColDOI}, tbl.Columns)

	tbl.Append(Record{Title: "A"})
	assert.Equal(t, 1, tbl.Len())
}
