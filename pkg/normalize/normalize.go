// Package normalize turns raw CRM and clearinghouse tables into typed
// enrollment records.
//
// Conversion is deliberately soft: a cell that fails to parse does not stop
// the run. The field is left null, the failure is logged at debug level and
// counted in the Report, which keeps the raw value for inspection.
package normalize

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/agentstation/enrollsync/pkg/enrollment"
	"github.com/agentstation/enrollsync/pkg/errors"
	"github.com/agentstation/enrollsync/pkg/logging"
	"github.com/agentstation/enrollsync/pkg/table"
)

// CellFailure records one cell that could not be converted.
type CellFailure struct {
	Row    int    `json:"row" yaml:"row"`
	Column string `json:"column" yaml:"column"`
	Value  string `json:"value" yaml:"value"`
	Reason string `json:"reason" yaml:"reason"`
}

// Report summarizes a normalization pass.
type Report struct {
	Rows     int           `json:"rows" yaml:"rows"`
	Failures []CellFailure `json:"failures,omitempty" yaml:"failures,omitempty"`
}

// Failed returns the number of cells that could not be converted.
func (r *Report) Failed() int {
	if r == nil {
		return 0
	}
	return len(r.Failures)
}

// Option configures a normalization pass.
type Option func(*options)

type options struct {
	logger *zerolog.Logger
}

// WithLogger sets the logger used for soft failures.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func apply(opts []Option) *options {
	o := &options{logger: logging.Default()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Clearinghouse projects the enrollment columns of t and converts them to
// records. Index is the row position in t.
func Clearinghouse(t *table.Table, fields enrollment.EnrollmentFields, opts ...Option) ([]enrollment.Record, *Report, error) {
	o := apply(opts)
	projected, err := t.Project(fields.Columns(false)...)
	if err != nil {
		return nil, nil, fmt.Errorf("clearinghouse enrollments: %w", err)
	}
	c := converter{fields: fields, logger: o.logger, report: &Report{Rows: projected.Len()}}
	records := make([]enrollment.Record, projected.Len())
	for i := range records {
		records[i] = c.record(projected, i)
	}
	return records, c.report, nil
}

// Database projects the enrollment columns of a CRM extract, including the
// record id and withdrawal fields, and converts them to records.
func Database(t *table.Table, fields enrollment.EnrollmentFields, opts ...Option) ([]enrollment.DBRecord, *Report, error) {
	o := apply(opts)
	projected, err := t.Project(fields.Columns(true)...)
	if err != nil {
		return nil, nil, fmt.Errorf("database enrollments: %w", err)
	}
	c := converter{fields: fields, logger: o.logger, report: &Report{Rows: projected.Len()}}
	records := make([]enrollment.DBRecord, projected.Len())
	for i := range records {
		records[i] = enrollment.DBRecord{
			Record:           c.record(projected, i),
			ID:               projected.Get(i, fields.ID),
			WithdrawalReason: projected.Get(i, fields.WithdrawalReason),
			WithdrawalCode:   projected.Get(i, fields.WithdrawalCode),
		}
	}
	return records, c.report, nil
}

type converter struct {
	fields enrollment.EnrollmentFields
	logger *zerolog.Logger
	report *Report
}

func (c converter) record(t *table.Table, i int) enrollment.Record {
	f := c.fields
	return enrollment.Record{
		StudentID:    t.Get(i, f.Student),
		CollegeID:    t.Get(i, f.College),
		Start:        c.date(t, i, f.StartDate),
		End:          c.date(t, i, f.EndDate),
		LastVerified: c.date(t, i, f.LastVerified),
		Status:       enrollment.Status(t.Get(i, f.Status)),
		Degree:       enrollment.Degree(t.Get(i, f.Degree)),
		DataSource:   t.Get(i, f.DataSource),
		DegreeText:   t.Get(i, f.DegreeText),
		MajorText:    t.Get(i, f.MajorText),
		Index:        i,
	}
}

func (c converter) date(t *table.Table, i int, column string) enrollment.Date {
	raw := t.Get(i, column)
	d, err := enrollment.ParseDate(raw)
	if err != nil {
		c.report.Failures = append(c.report.Failures, CellFailure{
			Row:    i,
			Column: column,
			Value:  raw,
			Reason: err.Error(),
		})
		c.logger.Debug().
			Int("row", i).
			Str("column", column).
			Str("value", raw).
			Msg("Leaving unparseable date empty")
	}
	return d
}

// Directory builds the student and college lookups from the CRM Contact
// and Account tables.
func Directory(contacts, accounts *table.Table, fields enrollment.Fields) (*enrollment.Directory, error) {
	dir := enrollment.NewDirectory()

	cf := fields.Contact
	if contacts != nil {
		if !contacts.HasColumns(cf.ID, cf.LastName, cf.FirstName) {
			return nil, errors.NewValidationError("contacts", contacts.Header(),
				fmt.Sprintf("contact table needs %s, %s and %s columns", cf.ID, cf.LastName, cf.FirstName))
		}
		for i := range contacts.Len() {
			id := contacts.Get(i, cf.ID)
			dir.Students[id] = enrollment.Contact{
				ID:         id,
				LastName:   contacts.Get(i, cf.LastName),
				FirstName:  contacts.Get(i, cf.FirstName),
				HSClass:    contacts.Get(i, cf.HSClass),
				HighSchool: contacts.Get(i, cf.HighSchool),
			}
		}
	}

	af := fields.Account
	if !accounts.HasColumns(af.ID, af.Name, af.CollegeType) {
		return nil, errors.NewValidationError("accounts", accounts.Header(),
			fmt.Sprintf("account table needs %s, %s and %s columns", af.ID, af.Name, af.CollegeType))
	}
	for i := range accounts.Len() {
		id := accounts.Get(i, af.ID)
		dir.Colleges[id] = enrollment.Institution{
			ID:   id,
			Name: accounts.Get(i, af.Name),
			Type: accounts.Get(i, af.CollegeType),
		}
	}
	return dir, nil
}
