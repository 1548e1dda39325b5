package export

// Artifact file names, overwritten on every pipeline run.
const (
	// FileMergedCSV and FileMergedXLSX hold the merged table before
	// deduplication.
	FileMergedCSV  = "before_duplication_post_processed.csv"
	FileMergedXLSX = "before_duplication_post_processed.xlsx"

	// FileDuplicates holds every occurrence of a duplicated key.
	FileDuplicates = "duplicates.xlsx"

	// FileFinalCSV and FileFinalXLSX hold the deduplicated table. The CSV
	// is what the filter pass re-loads.
	FileFinalCSV  = "post_processed.csv"
	FileFinalXLSX = "post_processed.xlsx"
)
