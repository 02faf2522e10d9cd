// Package assemble turns a matching result into the tables a merge run
// writes: enrollment updates, new enrollments, contact review flags and
// the debugging dumps.
package assemble

import (
	"context"
	"strconv"
	"strings"

	"github.com/agentstation/utc"
	"github.com/rs/zerolog"

	"github.com/agentstation/enrollsync/pkg/constants"
	"github.com/agentstation/enrollsync/pkg/enrollment"
	"github.com/agentstation/enrollsync/pkg/errors"
	"github.com/agentstation/enrollsync/pkg/logging"
	"github.com/agentstation/enrollsync/pkg/matchcase"
	"github.com/agentstation/enrollsync/pkg/reconcile"
	"github.com/agentstation/enrollsync/pkg/table"
)

// Column headers of the debugging tables.
const (
	CaseColumn      = "Case"
	FrequencyCase   = "Matching case"
	FrequencyColumn = "Frequency"

	nscPrefix = "NSC_"
	dbPrefix  = "DB_"
)

// Bundle is everything a merge run produces.
type Bundle struct {
	// Updates holds one row per CRM enrollment to change
	Updates *table.Table
	// Inserts holds one row per enrollment to create
	Inserts *table.Table
	// Flags holds one row per contact to review
	Flags *table.Table

	// Matches lists every pairing with its case
	Matches *table.Table
	// UnmatchedClearinghouse and UnmatchedDatabase hold the leftovers
	UnmatchedClearinghouse *table.Table
	UnmatchedDatabase      *table.Table
	// Skipped holds clearinghouse rows that never reached matching
	// because they carry no CRM student or college id
	Skipped *table.Table
	// CaseFrequency counts how often each case fired
	CaseFrequency *table.Table

	Result *reconcile.Result
}

// Assembler builds bundles.
type Assembler struct {
	fields  enrollment.Fields
	env     matchcase.Env
	skipped []enrollment.Record
	logger  *zerolog.Logger
}

// Option configures an Assembler.
type Option func(*Assembler) error

// WithFields sets the CRM column names of the output tables.
func WithFields(f enrollment.Fields) Option {
	return func(a *Assembler) error {
		a.fields = f
		return nil
	}
}

// WithToday sets the date database-only checks compare start dates with.
func WithToday(d enrollment.Date) Option {
	return func(a *Assembler) error {
		if !d.Valid() {
			return errors.NewValidationError("today", d, "date is required")
		}
		a.env.Today = d
		return nil
	}
}

// WithSkipped lists the clearinghouse rows held back from matching.
func WithSkipped(records []enrollment.Record) Option {
	return func(a *Assembler) error {
		a.skipped = records
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *Assembler) error {
		a.logger = logger
		return nil
	}
}

// New creates an Assembler that looks colleges up in dir.
func New(dir *enrollment.Directory, opts ...Option) (*Assembler, error) {
	if dir == nil {
		return nil, errors.NewValidationError("directory", nil, "directory is required")
	}
	a := &Assembler{
		fields: enrollment.DefaultFields(),
		env:    matchcase.Env{Directory: dir, Today: enrollment.DateOf(utc.Now().Time)},
		logger: logging.Default(),
	}
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Assemble derives the actions of every match and lays out the tables.
func (a *Assembler) Assemble(ctx context.Context, r *reconcile.Result) (*Bundle, error) {
	ef := a.fields.Enrollment
	b := &Bundle{
		Updates:                table.New(ef.UpdateColumns()...),
		Inserts:                table.New(ef.Columns(false)...),
		Matches:                table.New(a.matchHeader()...),
		UnmatchedClearinghouse: table.New(ef.Columns(false)...),
		UnmatchedDatabase:      table.New(ef.Columns(true)...),
		Skipped:                table.New(ef.Columns(false)...),
		CaseFrequency:          table.New(FrequencyCase, FrequencyColumn),
		Result:                 r,
	}

	flags := newRollup()
	for i, m := range r.Matches {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, errors.WrapResource("assemble", "match", strconv.Itoa(i), err)
			}
		}
		actions, err := m.Case.Derive(&a.env, m.Pair())
		if err != nil {
			return nil, err
		}
		if actions.Update != nil {
			b.Updates.Append(updateCells(actions.Update)...)
		}
		if actions.Insert != nil {
			b.Inserts.Append(recordCells(actions.Insert)...)
		}
		if actions.Flag != nil {
			flags.add(actions.Flag)
		}
		b.Matches.Append(a.matchCells(m)...)
	}
	b.Flags = flags.table(a.fields.Contact)

	for _, n := range r.UnmatchedClearinghouse {
		b.UnmatchedClearinghouse.Append(recordCells(n)...)
	}
	for _, d := range r.UnmatchedDatabase {
		b.UnmatchedDatabase.Append(dbCells(d)...)
	}
	for i := range a.skipped {
		b.Skipped.Append(recordCells(&a.skipped[i])...)
	}
	for _, c := range r.CaseCounts() {
		b.CaseFrequency.Append(c.Name, strconv.Itoa(c.Count))
	}

	a.logger.Info().
		Int("updates", b.Updates.Len()).
		Int("inserts", b.Inserts.Len()).
		Int("flagged_students", b.Flags.Len()).
		Int("skipped", b.Skipped.Len()).
		Msg("Assembled merge output")
	return b, nil
}

func (a *Assembler) matchHeader() []string {
	ef := a.fields.Enrollment
	header := []string{CaseColumn}
	for _, c := range ef.Columns(false) {
		header = append(header, nscPrefix+c)
	}
	for _, c := range ef.Columns(true) {
		header = append(header, dbPrefix+c)
	}
	return header
}

func (a *Assembler) matchCells(m reconcile.Match) []string {
	ef := a.fields.Enrollment
	cells := []string{m.Case.Name}
	if m.NSC != nil {
		cells = append(cells, recordCells(m.NSC)...)
	} else {
		cells = append(cells, make([]string, len(ef.Columns(false)))...)
	}
	if m.DB != nil {
		cells = append(cells, dbCells(m.DB)...)
	}
	return cells
}

func iso(d enrollment.Date) string {
	return d.Format(constants.DateFormatISO)
}

// recordCells lays a record out in EnrollmentFields.Columns(false) order.
func recordCells(r *enrollment.Record) []string {
	return []string{
		r.StudentID,
		r.CollegeID,
		iso(r.Start),
		iso(r.End),
		iso(r.LastVerified),
		string(r.Status),
		string(r.Degree),
		r.DataSource,
		r.DegreeText,
		r.MajorText,
	}
}

func dbCells(r *enrollment.DBRecord) []string {
	return append(recordCells(&r.Record), r.ID, r.WithdrawalReason, r.WithdrawalCode)
}

// updateCells lays an update out in EnrollmentFields.UpdateColumns() order.
func updateCells(u *matchcase.Update) []string {
	return []string{
		u.ID,
		iso(u.Start),
		iso(u.End),
		iso(u.LastVerified),
		string(u.Status),
		string(u.Degree),
		u.DataSource,
		u.DegreeText,
		u.MajorText,
	}
}

// rollup collects review reasons per student in the order they were found.
type rollup struct {
	order   []string
	reasons map[string][]string
}

func newRollup() *rollup {
	return &rollup{reasons: make(map[string][]string)}
}

func (r *rollup) add(f *matchcase.Flag) {
	if _, ok := r.reasons[f.StudentID]; !ok {
		r.order = append(r.order, f.StudentID)
	}
	r.reasons[f.StudentID] = append(r.reasons[f.StudentID], f.Reason)
}

func (r *rollup) table(cf enrollment.ContactFields) *table.Table {
	t := table.New(cf.FlagColumns()...)
	for _, id := range r.order {
		t.Append(id, "true", strings.Join(r.reasons[id], "; "))
	}
	return t
}
