// Package reconcile pairs clearinghouse enrollments with CRM enrollments.
//
// For each student, cases are tried in order. Within a case the student's
// clearinghouse rows are scanned from the last row back and, for each, the
// CRM rows from the last row back; the first pair the case accepts is
// consumed, so ties go to the highest row index. A clearinghouse row no CRM
// row satisfies is tried once more against an absent record. CRM rows left
// over by every student then go through the database-only cases.
package reconcile

import (
	"context"
	"slices"

	"github.com/rs/zerolog"

	"github.com/agentstation/enrollsync/pkg/enrollment"
	"github.com/agentstation/enrollsync/pkg/errors"
	"github.com/agentstation/enrollsync/pkg/logging"
	"github.com/agentstation/enrollsync/pkg/matchcase"
)

// Matcher matches clearinghouse enrollments against CRM enrollments.
type Matcher interface {
	// Match runs one matching pass. Records are read, never modified, and
	// their Index fields must be unique within each slice.
	Match(ctx context.Context, nsc []enrollment.Record, db []enrollment.DBRecord) (*Result, error)

	// Cases returns the paired and clearinghouse-only cases in evaluation order.
	Cases() []matchcase.Case

	// DatabaseOnlyCases returns the database-only cases in evaluation order.
	DatabaseOnlyCases() []matchcase.Case
}

// Observer is notified as matching progresses.
type Observer interface {
	StudentProcessed()
	CaseMatched(c *matchcase.Case)
}

// matcher is the default implementation of Matcher.
type matcher struct {
	cases     []matchcase.Case
	dbOnly    []matchcase.Case
	directory *enrollment.Directory
	logger    *zerolog.Logger
	observers []Observer
}

// Option configures a Matcher.
type Option func(*matcher) error

// WithCases replaces the paired and clearinghouse-only cases.
func WithCases(cases []matchcase.Case) Option {
	return func(m *matcher) error {
		if len(cases) == 0 {
			return errors.NewValidationError("cases", nil, "at least one case is required")
		}
		m.cases = cases
		return nil
	}
}

// WithDatabaseOnlyCases replaces the database-only cases.
func WithDatabaseOnlyCases(cases []matchcase.Case) Option {
	return func(m *matcher) error {
		m.dbOnly = cases
		return nil
	}
}

// WithDirectory makes the matcher warn about enrollments at colleges the
// directory does not know.
func WithDirectory(dir *enrollment.Directory) Option {
	return func(m *matcher) error {
		m.directory = dir
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(m *matcher) error {
		m.logger = logger
		return nil
	}
}

// WithObserver adds an observer.
func WithObserver(o Observer) Option {
	return func(m *matcher) error {
		if o != nil {
			m.observers = append(m.observers, o)
		}
		return nil
	}
}

// New creates a Matcher with the default cases.
func New(opts ...Option) (Matcher, error) {
	m := &matcher{
		cases:  matchcase.Default(),
		dbOnly: matchcase.DatabaseOnlyCases(),
		logger: logging.Default(),
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *matcher) Cases() []matchcase.Case { return m.cases }
func (m *matcher) DatabaseOnlyCases() []matchcase.Case { return m.dbOnly }

// Match implements Matcher.
func (m *matcher) Match(ctx context.Context, nsc []enrollment.Record, db []enrollment.DBRecord) (*Result, error) {
	b := NewResultBuilder()

	nscByStudent := groupRows(len(nsc), func(i int) string { return nsc[i].StudentID })
	dbByStudent := groupRows(len(db), func(i int) string { return db[i].StudentID })
	students := unionKeys(nscByStudent, dbByStudent)

	m.logger.Info().
		Int("students", len(students)).
		Int("clearinghouse", len(nsc)).
		Int("database", len(db)).
		Msg("Looking for matches")

	consumedDB := make([]bool, len(db))
	var unmatchedNSC []int

	for _, student := range students {
		if err := ctx.Err(); err != nil {
			return nil, errors.WrapResource("match", "student", student, err)
		}
		log := logging.FromContext(logging.WithStudent(logging.WithLogger(ctx, m.logger), student))
		nscSet := newPool(nscByStudent[student])
		dbSet := newPool(dbByStudent[student])

		for ci := range m.cases {
			if nscSet.empty() {
				break
			}
			c := &m.cases[ci]
			for i := nscSet.len() - 1; i >= 0; i-- {
				n := &nsc[nscSet.at(i)]
				paired := false
				for j := dbSet.len() - 1; j >= 0; j-- {
					d := &db[dbSet.at(j)]
					if c.Match(d, n) {
						m.record(b, log, Match{Case: c, NSC: n, DB: d})
						consumedDB[dbSet.at(j)] = true
						nscSet.remove(i)
						dbSet.remove(j)
						paired = true
						break
					}
				}
				if !paired && c.Match(nil, n) {
					m.record(b, log, Match{Case: c, NSC: n})
					nscSet.remove(i)
				}
			}
		}
		unmatchedNSC = append(unmatchedNSC, nscSet...)
		for _, o := range m.observers {
			o.StudentProcessed()
		}
	}

	var remaining []int
	for i := range db {
		if !consumedDB[i] {
			remaining = append(remaining, i)
		}
	}
	m.logger.Info().Int("database_only", len(remaining)).Msg("Passing through remaining database records")

	dbPool := newPool(remaining)
	for ci := range m.dbOnly {
		c := &m.dbOnly[ci]
		for i := dbPool.len() - 1; i >= 0; i-- {
			d := &db[dbPool.at(i)]
			if c.Match(d, nil) {
				log := logging.FromContext(logging.WithStudent(logging.WithLogger(ctx, m.logger), d.StudentID))
				m.record(b, log, Match{Case: c, DB: d})
				dbPool.remove(i)
			}
		}
	}

	slices.Sort(unmatchedNSC)
	for _, i := range unmatchedNSC {
		b.WithUnmatchedClearinghouse(&nsc[i])
	}
	for _, i := range dbPool {
		b.WithUnmatchedDatabase(&db[i])
	}
	m.warnUnknownColleges(b, nsc, db)

	result := b.WithStatistics(Statistics{
		Students:      len(students),
		Clearinghouse: len(nsc),
		Database:      len(db),
	}).Build()

	if err := checkCoverage(result, nsc, db); err != nil {
		return nil, err
	}

	m.logger.Info().
		Int("paired", result.Metadata.Stats.Paired).
		Int("clearinghouse_only", result.Metadata.Stats.ClearinghouseOnly).
		Int("database_only", result.Metadata.Stats.DatabaseOnly).
		Int("unmatched_clearinghouse", len(result.UnmatchedClearinghouse)).
		Int("unmatched_database", len(result.UnmatchedDatabase)).
		Msg("Matching complete")
	return result, nil
}

func (m *matcher) record(b *ResultBuilder, log *zerolog.Logger, match Match) {
	b.WithMatch(match)
	log.Debug().Str("case", match.Case.Name).Msg("Case matched")
	for _, o := range m.observers {
		o.CaseMatched(match.Case)
	}
}

func (m *matcher) warnUnknownColleges(b *ResultBuilder, nsc []enrollment.Record, db []enrollment.DBRecord) {
	if m.directory == nil {
		return
	}
	seen := make(map[string]bool)
	check := func(id string) {
		if seen[id] {
			return
		}
		seen[id] = true
		if _, ok := m.directory.College(id); !ok {
			b.WithWarning("college " + id + " is not in the account table")
		}
	}
	for i := range nsc {
		check(nsc[i].CollegeID)
	}
	for i := range db {
		check(db[i].CollegeID)
	}
}

// checkCoverage verifies every record appears exactly once across the
// matches and the unmatched lists.
func checkCoverage(r *Result, nsc []enrollment.Record, db []enrollment.DBRecord) error {
	nscSeen := make(map[*enrollment.Record]int, len(nsc))
	dbSeen := make(map[*enrollment.DBRecord]int, len(db))
	for _, m := range r.Matches {
		if m.NSC != nil {
			nscSeen[m.NSC]++
		}
		if m.DB != nil {
			dbSeen[m.DB]++
		}
	}
	for _, n := range r.UnmatchedClearinghouse {
		nscSeen[n]++
	}
	for _, d := range r.UnmatchedDatabase {
		dbSeen[d]++
	}
	for i := range nsc {
		if c := nscSeen[&nsc[i]]; c != 1 {
			return errors.NewInvariantError("reconcile", "clearinghouse row %d accounted for %d times", nsc[i].Index, c)
		}
	}
	for i := range db {
		if c := dbSeen[&db[i]]; c != 1 {
			return errors.NewInvariantError("reconcile", "database row %d accounted for %d times", db[i].Index, c)
		}
	}
	return nil
}

// groupRows groups row positions by key, preserving row order.
func groupRows(n int, key func(int) string) map[string][]int {
	groups := make(map[string][]int)
	for i := range n {
		k := key(i)
		groups[k] = append(groups[k], i)
	}
	return groups
}

func unionKeys(a, b map[string][]int) []string {
	keys := make([]string, 0, len(a)+len(b))
	for k := range a {
		keys = append(keys, k)
	}
	for k := range b {
		if _, ok := a[k]; !ok {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys
}
