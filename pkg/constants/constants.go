// Package constants provides shared constants used throughout the enrollsync codebase.
// This includes matching windows, file names, permissions, and formats that
// must stay consistent between the import, merge and apply steps.
package constants

import "time"

// Matching and combining thresholds, in days
const (
	// DefaultDaysGap is the largest gap between two clearinghouse terms that
	// still counts as one continuous enrollment
	DefaultDaysGap = 131

	// FuzzyStartBefore is the exclusive lower bound of the start date window:
	// a clearinghouse start this many days before the database start no longer matches
	FuzzyStartBefore = 60

	// FuzzyStartAfter is the inclusive upper bound of the start date window
	FuzzyStartAfter = 131

	// UnderReportedStartDays is the start date difference beyond which the
	// database start date is kept over a later clearinghouse start date
	UnderReportedStartDays = 365
)

// Timeout constants
const (
	// CommandTimeout is the default timeout for CLI commands
	CommandTimeout = 10 * time.Minute

	// QueryTimeout bounds a single CRM query or update batch
	QueryTimeout = 2 * time.Minute

	// ShutdownTimeout is how long the CLI waits for cleanup after a failed run
	ShutdownTimeout = 5 * time.Second
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Default paths and file names
const (
	// DefaultCollegeList is the institution reference table
	DefaultCollegeList = "nsc_inputs/collegelist.csv"

	// DefaultDegreeList is the degree-title lookup table
	DefaultDegreeList = "nsc_inputs/degreelist.csv"

	// DefaultImportOutput is the file written by the import step
	DefaultImportOutput = "import_nsc_output.csv"

	// MissingDegreesFile lists degree titles to add to the degree table
	MissingDegreesFile = "missing_degrees.csv"

	// MissingCollegesFile lists institutions to add to the college table
	MissingCollegesFile = "missing_colleges.csv"

	// DebugDir holds the match table and unmatched dumps of a merge run
	DebugDir = "debugging_output"

	// ReportFile is the markdown summary of a merge run
	ReportFile = "report.md"

	// MetricsFile is the Prometheus textfile of a merge run
	MetricsFile = "metrics.prom"

	// NotAvailable marks an id that could not be translated to a CRM id
	NotAvailable = "N/A"
)

// Format constants
const (
	// DateFormatISO is the canonical date format of CRM exports
	DateFormatISO = "2006-01-02"

	// DateFormatCompact is the clearinghouse YYYYMMDD format
	DateFormatCompact = "20060102"

	// DateFormatUS is the MM/DD/YYYY format of the clearinghouse run date
	DateFormatUS = "01/02/2006"

	// FileDateSuffix is the date stamp appended to merge output files
	FileDateSuffix = "01_02_2006"

	// TimeFormatHuman is a human-readable time format
	TimeFormatHuman = "Jan 2, 2006 at 3:04pm MST"
)
