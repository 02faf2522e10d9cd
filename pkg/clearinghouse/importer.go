package clearinghouse

import (
	"context"
	"fmt"

	"github.com/agentstation/utc"
	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/agentstation/enrollsync/pkg/constants"
	"github.com/agentstation/enrollsync/pkg/enrollment"
	"github.com/agentstation/enrollsync/pkg/errors"
	"github.com/agentstation/enrollsync/pkg/logging"
	"github.com/agentstation/enrollsync/pkg/table"
)

// Importer runs the clearinghouse import pipeline.
type Importer struct {
	refs       *References
	columns    Columns
	fields     enrollment.EnrollmentFields
	daysGap    int
	reportDate enrollment.Date
	reportDir  string
	studentIDs map[string]string
	collegeIDs map[string]string
	logger     *zerolog.Logger
}

// Option configures an Importer.
type Option func(*Importer) error

// WithColumns overrides the detail export column names.
func WithColumns(cols Columns) Option {
	return func(im *Importer) error {
		im.columns = cols
		return nil
	}
}

// WithFields sets the CRM enrollment column names of the output table.
func WithFields(f enrollment.EnrollmentFields) Option {
	return func(im *Importer) error {
		im.fields = f
		return nil
	}
}

// WithDaysGap sets the largest gap, in days, between terms of one enrollment.
func WithDaysGap(days int) Option {
	return func(im *Importer) error {
		if days < 0 {
			return errors.NewValidationError("days_gap", days, "must not be negative")
		}
		im.daysGap = days
		return nil
	}
}

// WithReportDate sets the date the clearinghouse report was produced.
// It becomes the last-verified date of every enrollment.
func WithReportDate(d enrollment.Date) Option {
	return func(im *Importer) error {
		if !d.Valid() {
			return errors.NewValidationError("report_date", d, "must be a date")
		}
		im.reportDate = d
		return nil
	}
}

// WithReportDir sets where pre-flight correction files are written.
func WithReportDir(dir string) Option {
	return func(im *Importer) error {
		im.reportDir = dir
		return nil
	}
}

// WithStudentIDs sets the translation from clearinghouse student ids to CRM contact ids.
func WithStudentIDs(ids map[string]string) Option {
	return func(im *Importer) error {
		im.studentIDs = ids
		return nil
	}
}

// WithCollegeIDs sets the translation from NCES ids to CRM account ids.
func WithCollegeIDs(ids map[string]string) Option {
	return func(im *Importer) error {
		im.collegeIDs = ids
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(im *Importer) error {
		im.logger = logger
		return nil
	}
}

// NewImporter creates an Importer over the given reference tables.
func NewImporter(refs *References, opts ...Option) (*Importer, error) {
	if refs == nil {
		return nil, errors.NewValidationError("references", nil, "reference tables are required")
	}
	im := &Importer{
		refs:       refs,
		columns:    DefaultColumns(),
		fields:     enrollment.DefaultFields().Enrollment,
		daysGap:    constants.DefaultDaysGap,
		reportDate: enrollment.DateOf(utc.Now().Time),
		reportDir:  ".",
		logger:     logging.Default(),
	}
	for _, opt := range opts {
		if err := opt(im); err != nil {
			return nil, err
		}
	}
	return im, nil
}

// Stats counts what an import produced.
type Stats struct {
	Terms           int                       `json:"terms" yaml:"terms"`
	Students        int                       `json:"students" yaml:"students"`
	Enrollments     int                       `json:"enrollments" yaml:"enrollments"`
	ByStatus        map[enrollment.Status]int `json:"by_status" yaml:"by_status"`
	UnknownStudents int                       `json:"unknown_students" yaml:"unknown_students"`
	UnknownColleges int                       `json:"unknown_colleges" yaml:"unknown_colleges"`
}

// Output is the result of an import.
type Output struct {
	Table *table.Table
	Spans []Span
	Stats Stats
}

// Run imports a detail export. It returns a *errors.MissingReferenceError
// when the reference tables do not cover the export.
func (im *Importer) Run(ctx context.Context, detail *table.Table) (*Output, error) {
	cols := im.columns
	var absent []string
	for _, name := range cols.required() {
		if !detail.HasColumns(name) {
			absent = append(absent, name)
		}
	}
	if len(absent) > 0 {
		return nil, errors.NewValidationError("detail", absent, fmt.Sprintf("detail export is missing columns %v", absent))
	}

	if err := Preflight(detail, cols, im.refs, im.reportDir); err != nil {
		return nil, err
	}

	terms, err := im.parse(detail)
	if err != nil {
		return nil, err
	}
	im.logger.Info().Int("terms", len(terms)).Msg("Parsed clearinghouse detail")

	out := &Output{Stats: Stats{Terms: len(terms), ByStatus: make(map[enrollment.Status]int)}}

	students, byStudent := groupTerms(terms, func(t Term) string { return t.StudentID })
	out.Stats.Students = len(students)
	for _, student := range students {
		if err := ctx.Err(); err != nil {
			return nil, errors.WrapResource("import", "clearinghouse", student, err)
		}
		var spans []Span
		colleges, byCollege := groupTerms(byStudent[student], func(t Term) string { return t.NCESID })
		for _, college := range colleges {
			for _, term := range Combine(byCollege[college], im.daysGap) {
				degree, err := DeriveDegree(term, im.refs)
				if err != nil {
					return nil, err
				}
				spans = append(spans, Span{
					Term:         term,
					Status:       DeriveStatus(term, im.reportDate, im.daysGap),
					Degree:       degree,
					LastVerified: im.reportDate,
					DataSource:   enrollment.SourceNSC,
				})
			}
		}
		ResolveTransfers(spans, im.daysGap)
		out.Spans = append(out.Spans, spans...)
	}

	out.Table = im.table(out)
	out.Stats.Enrollments = len(out.Spans)
	im.logger.Info().
		Int("students", out.Stats.Students).
		Int("enrollments", out.Stats.Enrollments).
		Int("unknown_students", out.Stats.UnknownStudents).
		Int("unknown_colleges", out.Stats.UnknownColleges).
		Msg("Combined clearinghouse enrollments")
	return out, nil
}

func (im *Importer) parse(detail *table.Table) ([]Term, error) {
	cols := im.columns
	var terms []Term
	for i := range detail.Len() {
		if detail.Get(i, cols.RecordFound) != "Y" {
			continue
		}
		uid := detail.Get(i, cols.UniqueID)
		term := Term{
			FirstName:        detail.Get(i, cols.FirstName),
			LastName:         detail.Get(i, cols.LastName),
			CollegeCode:      detail.Get(i, cols.CollegeCode),
			TwoYearFour:      detail.Get(i, cols.TwoYearFourYear),
			Graduated:        detail.Get(i, cols.Graduated),
			EnrollmentStatus: detail.Get(i, cols.EnrollmentStatus),
			DegreeTitle:      detail.Get(i, cols.DegreeTitle),
			Major:            detail.Get(i, cols.Major),
			Row:              i,
		}
		// The unique identifier is the student id with one trailing character.
		if uid != "" {
			term.StudentID = uid[:len(uid)-1]
		}
		if grad := detail.Get(i, cols.HSGradDate); len(grad) >= 4 {
			term.HSClass = grad[:4]
		}
		if term.CollegeCode != "" {
			college, ok := im.refs.College(term.CollegeCode)
			if !ok {
				return nil, errors.NewInvariantError("clearinghouse",
					"institution %s passed pre-flight but is not in the college list", term.CollegeCode)
			}
			term.NCESID = college.NCESID
			term.CollegeName = college.Name
		}

		var err error
		for _, d := range []struct {
			column string
			dst    *enrollment.Date
		}{
			{cols.EnrollmentBegin, &term.Start},
			{cols.EnrollmentEnd, &term.End},
			{cols.GraduationDate, &term.GradDate},
		} {
			if *d.dst, err = enrollment.ParseDate(detail.Get(i, d.column)); err != nil {
				return nil, &errors.ParseError{
					Format:  "csv",
					Line:    i + 2,
					Message: fmt.Sprintf("%s: %v", d.column, err),
					Err:     err,
				}
			}
		}
		terms = append(terms, term)
	}
	return terms, nil
}

func (im *Importer) table(out *Output) *table.Table {
	title := cases.Title(language.English)
	t := table.New(OutputHeader(im.fields)...)
	for _, s := range out.Spans {
		studentID, ok := im.studentIDs[s.StudentID]
		if !ok {
			studentID = constants.NotAvailable
			out.Stats.UnknownStudents++
		}
		collegeID, ok := im.collegeIDs[s.NCESID]
		if !ok {
			collegeID = constants.NotAvailable
			out.Stats.UnknownColleges++
		}
		end := s.End.String()
		if s.Status == enrollment.Attending {
			end = ""
		}
		out.Stats.ByStatus[s.Status]++
		t.Append(
			s.StudentID,
			title.String(s.LastName),
			title.String(s.FirstName),
			s.HSClass,
			s.NCESID,
			s.CollegeName,
			studentID,
			collegeID,
			s.Start.String(),
			end,
			s.Status.String(),
			s.Degree.String(),
			s.DataSource,
			s.LastVerified.String(),
			s.DegreeTitle,
			s.Major,
		)
	}
	return t
}

// groupTerms groups terms by key in first-seen key order.
func groupTerms(terms []Term, key func(Term) string) ([]string, map[string][]Term) {
	var keys []string
	groups := make(map[string][]Term)
	for _, t := range terms {
		k := key(t)
		if _, seen := groups[k]; !seen {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], t)
	}
	return keys, groups
}

// Translation builds an id translation from a two-column table: the first
// column is the source id, the second the CRM id.
func Translation(t *table.Table) (map[string]string, error) {
	header := t.Header()
	if len(header) < 2 {
		return nil, errors.NewValidationError("translation", header, "expected two columns")
	}
	return t.Index(header[0], header[1])
}
