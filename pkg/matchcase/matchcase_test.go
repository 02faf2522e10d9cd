package matchcase_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/enrollsync/pkg/enrollment"
	"github.com/agentstation/enrollsync/pkg/errors"
	"github.com/agentstation/enrollsync/pkg/matchcase"
)

func day(s string) enrollment.Date {
	return enrollment.MustParseDate(s)
}

func env() *matchcase.Env {
	dir := enrollment.NewDirectory()
	dir.Colleges["001A"] = enrollment.Institution{ID: "001A", Name: "State University", Type: "4 yr"}
	dir.Colleges["001B"] = enrollment.Institution{ID: "001B", Name: "City College", Type: "2 yr"}
	dir.Colleges["001M"] = enrollment.Institution{ID: "001M", Name: "US Army", Type: "Military Enlistment"}
	return &matchcase.Env{Directory: dir, Today: enrollment.NewDate(2018, time.September, 15)}
}

func nsc(college, start, end string, status enrollment.Status) *enrollment.Record {
	return &enrollment.Record{
		StudentID:    "003A",
		CollegeID:    college,
		Start:        day(start),
		End:          day(end),
		LastVerified: day("2018-08-30"),
		Status:       status,
		Degree:       enrollment.Bachelors,
		DataSource:   enrollment.SourceNSC,
	}
}

func db(college, start, end string, status enrollment.Status) *enrollment.DBRecord {
	return &enrollment.DBRecord{
		Record: enrollment.Record{
			StudentID:    "003A",
			CollegeID:    college,
			Start:        day(start),
			End:          day(end),
			LastVerified: day("2017-06-01"),
			Status:       status,
			Degree:       enrollment.Bachelors,
			DataSource:   enrollment.SourceCoordinatorVerified,
		},
		ID: "a01",
	}
}

func find(t *testing.T, cases []matchcase.Case, name string) *matchcase.Case {
	t.Helper()
	for i := range cases {
		if cases[i].Name == name {
			return &cases[i]
		}
	}
	t.Fatalf("no case %q", name)
	return nil
}

// first returns the name of the first case that fires.
func first(cases []matchcase.Case, d *enrollment.DBRecord, n *enrollment.Record) string {
	for _, c := range cases {
		if c.Match(d, n) {
			return c.Name
		}
	}
	return ""
}

func TestDefaultOrder(t *testing.T) {
	want := []string{
		"Perfect Match",
		"Perfect Match w Start +/- 60 days off",
		"Graduation match chg end dates",
		"Unexpected graduation (had different status)",
		"Attending match chg end dates",
		"T/W match chg end dates",
		"Attending but DB had DNM/Matriculating",
		"Graduation not confirmed (Attending)",
		"Attending but DB had T/W",
		"Graduation not confirmed (T/W)",
		"Unreported left college (was Attending)",
		"Trans/Withd but DB had DNM/Matriculating",
		"(Error) Student-College-Start Match (unspecified)",
		"Status matches, but different start dates",
		"Graduation not confirmed and diff start ds",
		"Unexpected graduation w diff start ds",
		"Non-grad Student-College Match w diff start & status",
		"(NSC only) New attending enrollment",
		"(NSC only) New graduated enrollment",
		"(NSC only) New transferred out enrollment",
		"(NSC only) New withdrew enrollment",
	}
	var got []string
	for _, c := range matchcase.Default() {
		got = append(got, c.Name)
	}
	assert.Equal(t, want, got)

	info := matchcase.Describe(matchcase.Default())
	assert.Equal(t, 1, info[0].Position)
	assert.Equal(t, "paired", info[0].Family)
	assert.True(t, info[0].Updates)
	assert.False(t, info[12].Updates, "the unspecified start match derives nothing")
	assert.Equal(t, "clearinghouse-only", info[17].Family)
	assert.True(t, info[17].Inserts)
}

func TestDatabaseOnlyOrder(t *testing.T) {
	want := []string{
		"(DB Only) Employment",
		"(DB Only) Trade/Vocational",
		"(DB Only) Certificate",
		"(DB Only) Attending",
		"(DB Only) Withdrew",
		"(DB Only) Transferred out",
		"(DB Only) Graduated",
		"(DB Only) Matriculating",
		"(DB Only) <empty status>",
		"(DB Only) Did not matriculate",
	}
	var got []string
	for _, c := range matchcase.DatabaseOnlyCases() {
		assert.Equal(t, matchcase.DatabaseOnly, c.Family)
		got = append(got, c.Name)
	}
	assert.Equal(t, want, got)
}

func TestFuzzyStartWindow(t *testing.T) {
	base := day("2017-08-28")
	tests := []struct {
		offset int
		want   bool
	}{
		{-61, false},
		{-60, false},
		{-59, true},
		{0, true},
		{131, true},
		{132, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, matchcase.FuzzyStart(base, base.AddDays(tt.offset)), "offset %d", tt.offset)
	}
	assert.False(t, matchcase.FuzzyStart(enrollment.Date{}, base))
	assert.False(t, matchcase.FuzzyStart(base, enrollment.Date{}))
}

func TestDegreeCheck(t *testing.T) {
	tests := []struct {
		name        string
		db, nsc     enrollment.Degree
		collegeType string
		want        enrollment.Degree
	}{
		{"military is employment", enrollment.Bachelors, enrollment.Bachelors, "Military Enlistment", enrollment.Employment},
		{"db agrees with college", enrollment.Bachelors, enrollment.AssociatesOrCertificate, "4 yr", enrollment.Bachelors},
		{"blank db takes nsc", enrollment.DegreeNone, enrollment.Associates, "2 yr", enrollment.Associates},
		{"bachelor's at two-year takes nsc", enrollment.Bachelors, enrollment.AssociatesOrCertificate, "2 yr", enrollment.AssociatesOrCertificate},
		{"certificate at two-year kept", enrollment.Certificate, enrollment.AssociatesOrCertificate, "2 yr", enrollment.Certificate},
		{"associate's at two-year kept", enrollment.Associates, enrollment.AssociatesOrCertificate, "2 yr", enrollment.Associates},
		{"master's at four-year kept", enrollment.Masters, enrollment.Bachelors, "4 yr", enrollment.Masters},
		{"unknown type compares with nsc", enrollment.Masters, enrollment.Bachelors, "", enrollment.Masters},
		{"unknown type and blank nsc", enrollment.Bachelors, enrollment.DegreeNone, "", enrollment.Bachelors},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matchcase.DegreeCheck(tt.db, tt.nsc, tt.collegeType))
		})
	}
}

func TestDatabaseOnlyDegreeCheck(t *testing.T) {
	assert.Equal(t, enrollment.Employment, matchcase.DatabaseOnlyDegreeCheck(enrollment.Bachelors, "Military Enlistment"))
	assert.Equal(t, enrollment.Masters, matchcase.DatabaseOnlyDegreeCheck(enrollment.Masters, ""))
	assert.Equal(t, enrollment.Bachelors, matchcase.DatabaseOnlyDegreeCheck(enrollment.DegreeNone, "4 yr"))
	assert.Equal(t, enrollment.AssociatesOrCertificate, matchcase.DatabaseOnlyDegreeCheck(enrollment.Bachelors, "2 yr"))
	assert.Equal(t, enrollment.TradeVocational, matchcase.DatabaseOnlyDegreeCheck(enrollment.TradeVocational, "2 yr"))
	assert.Equal(t, enrollment.Employment, matchcase.DatabaseOnlyDegreeCheck(enrollment.Employment, "2 yr"))
}

func TestExactMatchBeatsCatchAll(t *testing.T) {
	cases := matchcase.Default()
	d := db("001A", "2016-08-22", "2018-05-12", enrollment.Graduated)
	n := nsc("001A", "2016-08-22", "2018-05-12", enrollment.Graduated)

	// Every later same-college rule would also accept this pair.
	assert.True(t, find(t, cases, matchcase.StudentCollegeMatch).Match(d, n))
	assert.True(t, find(t, cases, matchcase.GraduationMatch).Match(d, n))
	assert.Equal(t, matchcase.PerfectMatch, first(cases, d, n))

	// Swapping the two changes the outcome.
	i, j := 0, len(cases)-5
	cases[i], cases[j] = cases[j], cases[i]
	assert.Equal(t, matchcase.StudentCollegeMatch, first(cases, d, n))
}

func TestClassification(t *testing.T) {
	tests := []struct {
		name string
		db   *enrollment.DBRecord
		nsc  *enrollment.Record
		want string
	}{
		{"fuzzy perfect", db("001A", "2016-09-01", "2018-05-12", enrollment.Graduated), nsc("001A", "2016-08-22", "2018-05-12", enrollment.Graduated), matchcase.PerfectMatchFuzzyStart},
		{"graduation end changed", db("001A", "2016-08-22", "2018-05-01", enrollment.Graduated), nsc("001A", "2016-08-22", "2018-05-12", enrollment.Graduated), matchcase.GraduationMatch},
		{"unexpected graduation", db("001A", "2016-08-12", "", enrollment.Attending), nsc("001A", "2016-08-22", "2018-05-12", enrollment.Graduated), matchcase.UnexpectedGraduation},
		{"graduation not confirmed", db("001A", "2016-08-12", "2018-05-12", enrollment.Graduated), nsc("001A", "2016-08-22", "", enrollment.Attending), matchcase.GraduationNotConfirmed},
		{"still attending", db("001A", "2016-08-22", "2017-05-01", enrollment.Withdrew), nsc("001A", "2016-08-22", "", enrollment.Attending), matchcase.AttendingWasLeft},
		{"left unreported", db("001A", "2016-08-22", "", enrollment.Attending), nsc("001A", "2016-08-22", "2017-05-01", enrollment.TransferredOut), matchcase.UnreportedLeft},
		{"matriculated", db("001A", "2016-08-01", "", enrollment.Matriculating), nsc("001A", "2016-08-22", "", enrollment.Attending), matchcase.AttendingWasMatriculating},
		{"status match far start", db("001A", "2014-08-22", "", enrollment.Attending), nsc("001A", "2016-08-22", "", enrollment.Attending), matchcase.StatusMatchDifferentStart},
		{"catch-all", db("001A", "2014-08-22", "", enrollment.Matriculating), nsc("001A", "2016-08-22", "2017-05-01", enrollment.Withdrew), matchcase.StudentCollegeMatch},
		{"other college is new", db("001B", "2016-08-22", "", enrollment.Attending), nsc("001A", "2016-08-22", "", enrollment.Attending), ""},
		{"absent record", nil, nsc("001A", "2016-08-22", "", enrollment.Attending), matchcase.NewAttending},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, first(matchcase.Default(), tt.db, tt.nsc))
		})
	}
}

func TestGraduationNotConfirmedKeepsDatabase(t *testing.T) {
	c := find(t, matchcase.Default(), matchcase.GraduationNotConfirmed)
	d := db("001A", "2016-08-12", "2018-05-12", enrollment.Graduated)
	n := nsc("001A", "2016-08-22", "", enrollment.Attending)
	require.True(t, c.Match(d, n))

	a, err := c.Derive(env(), matchcase.Pair{NSC: n, DB: d})
	require.NoError(t, err)
	require.NotNil(t, a.Update)
	assert.Equal(t, "a01", a.Update.ID)
	assert.Equal(t, n.Start, a.Update.Start)
	assert.Equal(t, d.End, a.Update.End, "end date stays with the database")
	assert.Equal(t, d.LastVerified, a.Update.LastVerified)
	assert.Equal(t, enrollment.Graduated, a.Update.Status)
	assert.Equal(t, enrollment.SourceCoordinatorVerified, a.Update.DataSource)
	assert.Nil(t, a.Insert)
	require.NotNil(t, a.Flag)
	assert.Equal(t, "003A", a.Flag.StudentID)
	assert.Equal(t, "Graduation not confirmed (Attending in NSC): State University (Aug 2016 start)", a.Flag.Reason)
}

func TestMostlyClearinghouseUpdate(t *testing.T) {
	c := find(t, matchcase.Default(), matchcase.UnexpectedGraduation)
	d := db("001A", "2016-08-12", "", enrollment.Attending)
	d.MajorText = "UNDECLARED"
	n := nsc("001A", "2016-08-22", "2018-05-12", enrollment.Graduated)
	n.DegreeText = "BACHELOR OF ARTS"

	a, err := c.Derive(env(), matchcase.Pair{NSC: n, DB: d})
	require.NoError(t, err)
	assert.Equal(t, &matchcase.Update{
		ID:           "a01",
		Start:        n.Start,
		End:          n.End,
		LastVerified: n.LastVerified,
		Status:       enrollment.Graduated,
		Degree:       enrollment.Bachelors,
		DataSource:   enrollment.SourceNSC,
		DegreeText:   "BACHELOR OF ARTS",
		MajorText:    "UNDECLARED",
	}, a.Update)
	assert.Equal(t, "New unreported graduation (was Attending): State University (May 2018)", a.Flag.Reason)
}

func TestTrickyStartDate(t *testing.T) {
	c := find(t, matchcase.Default(), matchcase.StatusMatchDifferentStart)

	underReported := matchcase.Pair{
		DB:  db("001A", "2014-08-22", "", enrollment.Attending),
		NSC: nsc("001A", "2016-08-22", "", enrollment.Attending),
	}
	a, err := c.Derive(env(), underReported)
	require.NoError(t, err)
	assert.Equal(t, day("2014-08-22"), a.Update.Start, "more than a year apart keeps the database start")
	assert.Equal(t, "Date discrepancy (Database has 08/22/14-present and NSC has 08/22/16-present): State University", a.Flag.Reason)

	delayed := matchcase.Pair{
		DB:  db("001A", "2016-01-11", "", enrollment.Attending),
		NSC: nsc("001A", "2016-08-22", "", enrollment.Attending),
	}
	a, err = c.Derive(env(), delayed)
	require.NoError(t, err)
	assert.Equal(t, day("2016-08-22"), a.Update.Start)
}

func TestDegreeChangeFlag(t *testing.T) {
	c := find(t, matchcase.Default(), matchcase.PerfectMatch)
	d := db("001B", "2016-08-22", "", enrollment.Attending)
	n := nsc("001B", "2016-08-22", "", enrollment.Attending)
	n.Degree = enrollment.AssociatesOrCertificate

	a, err := c.Derive(env(), matchcase.Pair{NSC: n, DB: d})
	require.NoError(t, err)
	assert.Equal(t, enrollment.AssociatesOrCertificate, a.Update.Degree)
	require.NotNil(t, a.Flag)
	assert.Equal(t, "Changed enrollment type from Bachelor's to Associate's or Certificate (TBD): City College (Aug 2016 start)", a.Flag.Reason)

	d.Degree = enrollment.Associates
	a, err = c.Derive(env(), matchcase.Pair{NSC: n, DB: d})
	require.NoError(t, err)
	assert.Nil(t, a.Flag, "no flag without a degree change")
}

func TestStillAttendingFlag(t *testing.T) {
	c := find(t, matchcase.Default(), matchcase.AttendingWasLeft)
	n := nsc("001A", "2016-08-22", "", enrollment.Attending)

	a, err := c.Derive(env(), matchcase.Pair{NSC: n, DB: db("001A", "2016-08-22", "2017-05-01", enrollment.Withdrew)})
	require.NoError(t, err)
	assert.Equal(t, "NSC indicates still attending (was Withdrew): State University (Aug 2016 start was 05/01/2017 end)", a.Flag.Reason)

	a, err = c.Derive(env(), matchcase.Pair{NSC: n, DB: db("001A", "2016-08-22", "", enrollment.Withdrew)})
	require.NoError(t, err)
	assert.Equal(t, "NSC indicates still attending (was Withdrew): State University (Aug 2016 start)", a.Flag.Reason)
}

func TestCatchAllFlagShowsStatus(t *testing.T) {
	c := find(t, matchcase.Default(), matchcase.StudentCollegeMatch)
	p := matchcase.Pair{
		DB:  db("001A", "", "", enrollment.StatusNone),
		NSC: nsc("001A", "2016-08-22", "2017-05-01", enrollment.Withdrew),
	}
	a, err := c.Derive(env(), p)
	require.NoError(t, err)
	assert.Equal(t, "Discrepancies (Database has <unknown> <unknown>-present and NSC has Withdrew 08/22/16-05/01/17): State University", a.Flag.Reason)
	assert.Equal(t, p.NSC.Start, a.Update.Start)
}

func TestNewEnrollment(t *testing.T) {
	c := find(t, matchcase.Default(), matchcase.NewAttending)
	n := nsc("001A", "2017-08-28", "", enrollment.Attending)
	require.True(t, c.Match(nil, n))
	require.False(t, c.Match(db("001A", "2017-08-28", "", enrollment.Attending), n))

	a, err := c.Derive(env(), matchcase.Pair{NSC: n})
	require.NoError(t, err)
	assert.Nil(t, a.Update)
	require.NotNil(t, a.Insert)
	assert.Equal(t, *n, *a.Insert)
	assert.NotSame(t, n, a.Insert)
	assert.Equal(t, "NSC indicates previously unreported enrollment (Attending): State University (Aug 2017 start)", a.Flag.Reason)
}

func TestDatabaseOnlyFlags(t *testing.T) {
	cases := matchcase.DatabaseOnlyCases()

	t.Run("unconfirmed with degree correction", func(t *testing.T) {
		d := db("001B", "2016-08-22", "", enrollment.Attending)
		c := find(t, cases, "(DB Only) Attending")
		require.True(t, c.Match(d, nil))
		a, err := c.Derive(env(), matchcase.Pair{DB: d})
		require.NoError(t, err)
		require.NotNil(t, a.Update)
		assert.Equal(t, enrollment.AssociatesOrCertificate, a.Update.Degree)
		assert.Equal(t, d.Start, a.Update.Start)
		assert.Equal(t, "Attending enrollment not confirmed by NSC and Changed Degree Type from Bachelor's to Associate's or Certificate (TBD): City College (Aug 2016 start)", a.Flag.Reason)
	})

	t.Run("matriculating in the past", func(t *testing.T) {
		d := db("001A", "2018-08-20", "", enrollment.Matriculating)
		d.LastVerified = enrollment.Date{}
		d.DataSource = ""
		a, err := find(t, cases, "(DB Only) Matriculating").Derive(env(), matchcase.Pair{DB: d})
		require.NoError(t, err)
		assert.Nil(t, a.Update)
		assert.Equal(t, "Missing Date Last Verified, Matriculating enrollment set to start in the past (Aug 2018), Missing Data Source: State University (Aug 2018 start)", a.Flag.Reason)
	})

	t.Run("empty status without start", func(t *testing.T) {
		d := db("001A", "", "", enrollment.StatusNone)
		a, err := find(t, cases, "(DB Only) <empty status>").Derive(env(), matchcase.Pair{DB: d})
		require.NoError(t, err)
		assert.Equal(t, "Missing Status: State University", a.Flag.Reason)
	})

	t.Run("clean matriculating record says nothing", func(t *testing.T) {
		d := db("001A", "2019-01-07", "", enrollment.Matriculating)
		a, err := find(t, cases, "(DB Only) Matriculating").Derive(env(), matchcase.Pair{DB: d})
		require.NoError(t, err)
		assert.Nil(t, a.Flag)
		assert.Nil(t, a.Update)
	})

	t.Run("ignored degree types derive nothing", func(t *testing.T) {
		d := db("001M", "2016-08-22", "", enrollment.Attending)
		d.Degree = enrollment.Employment
		c := find(t, cases, "(DB Only) Employment")
		require.True(t, c.Match(d, nil))
		a, err := c.Derive(env(), matchcase.Pair{DB: d})
		require.NoError(t, err)
		assert.Equal(t, matchcase.Actions{}, a)
	})
}

func TestMissingCollegeIsInvariantViolation(t *testing.T) {
	c := find(t, matchcase.Default(), matchcase.PerfectMatch)
	d := db("001Z", "2016-08-22", "", enrollment.Attending)
	n := nsc("001Z", "2016-08-22", "", enrollment.Attending)
	_, err := c.Derive(env(), matchcase.Pair{NSC: n, DB: d})
	require.Error(t, err)
	assert.True(t, errors.IsInvariant(err))
}
