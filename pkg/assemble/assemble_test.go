package assemble_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/enrollsync/pkg/assemble"
	"github.com/agentstation/enrollsync/pkg/enrollment"
	"github.com/agentstation/enrollsync/pkg/errors"
	"github.com/agentstation/enrollsync/pkg/logging"
	"github.com/agentstation/enrollsync/pkg/reconcile"
)

func day(s string) enrollment.Date {
	return enrollment.MustParseDate(s)
}

func directory() *enrollment.Directory {
	dir := enrollment.NewDirectory()
	dir.Colleges["001A"] = enrollment.Institution{ID: "001A", Name: "State University", Type: "4 yr"}
	dir.Colleges["001B"] = enrollment.Institution{ID: "001B", Name: "City College", Type: "2 yr"}
	return dir
}

func fixtures() ([]enrollment.Record, []enrollment.DBRecord) {
	nsc := []enrollment.Record{
		{
			StudentID: "003A", CollegeID: "001A",
			Start: day("2016-08-22"), LastVerified: day("2018-10-01"),
			Status: enrollment.Attending, Degree: enrollment.Bachelors,
			DataSource: enrollment.SourceNSC, Index: 0,
		},
		{
			StudentID: "003B", CollegeID: "001A",
			Start: day("2015-08-24"), End: day("2019-05-10"), LastVerified: day("2018-10-01"),
			Status: enrollment.Graduated, Degree: enrollment.Bachelors,
			DataSource: enrollment.SourceNSC, DegreeText: "BACHELOR OF ARTS", MajorText: "HISTORY", Index: 1,
		},
	}
	db := []enrollment.DBRecord{
		{
			ID: "a0B",
			Record: enrollment.Record{
				StudentID: "003B", CollegeID: "001A",
				Start: day("2015-08-24"), End: day("2019-05-10"), LastVerified: day("2017-01-01"),
				Status: enrollment.Graduated, DataSource: enrollment.SourceCoordinatorVerified, Index: 0,
			},
		},
		{
			ID: "a0C",
			Record: enrollment.Record{
				StudentID: "003A", CollegeID: "001B",
				Start: day("2015-08-24"), LastVerified: day("2017-01-01"),
				Status: enrollment.Attending, DataSource: enrollment.SourceCoordinatorVerified, Index: 1,
			},
		},
	}
	return nsc, db
}

func match(t *testing.T, nsc []enrollment.Record, db []enrollment.DBRecord) *reconcile.Result {
	t.Helper()
	m, err := reconcile.New(reconcile.WithLogger(logging.NewNopLogger()))
	require.NoError(t, err)
	r, err := m.Match(context.Background(), nsc, db)
	require.NoError(t, err)
	return r
}

func TestAssemble(t *testing.T) {
	nsc, db := fixtures()
	r := match(t, nsc, db)

	tl := logging.NewTestLogger(t)
	a, err := assemble.New(directory(),
		assemble.WithToday(day("2018-10-15")),
		assemble.WithLogger(tl.Logger))
	require.NoError(t, err)
	b, err := a.Assemble(context.Background(), r)
	require.NoError(t, err)

	f := enrollment.DefaultFields()
	assert.Equal(t, f.Enrollment.UpdateColumns(), b.Updates.Header())
	wantUpdates := [][]string{
		{"a0B", "2015-08-24", "2019-05-10", "2018-10-01", "Graduated", "Bachelor's",
			enrollment.SourceNSC, "BACHELOR OF ARTS", "HISTORY"},
		{"a0C", "2015-08-24", "", "2017-01-01", "Attending", "Associate's or Certificate (TBD)",
			enrollment.SourceCoordinatorVerified, "", ""},
	}
	if diff := cmp.Diff(wantUpdates, b.Updates.Rows()); diff != "" {
		t.Errorf("updates mismatch (-want +got):\n%s", diff)
	}

	wantInserts := [][]string{
		{"003A", "001A", "2016-08-22", "", "2018-10-01", "Attending", "Bachelor's", enrollment.SourceNSC, "", ""},
	}
	if diff := cmp.Diff(wantInserts, b.Inserts.Rows()); diff != "" {
		t.Errorf("inserts mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, []string{"Id", "Needs_NSC_Review__c", "NSC_Review_Reason__c"}, b.Flags.Header())
	wantFlags := [][]string{
		{"003A", "true",
			"NSC indicates previously unreported enrollment (Attending): State University (Aug 2016 start); " +
				"Attending enrollment not confirmed by NSC and Changed Degree Type from <blank> to " +
				"Associate's or Certificate (TBD): City College (Aug 2015 start)"},
	}
	if diff := cmp.Diff(wantFlags, b.Flags.Rows()); diff != "" {
		t.Errorf("flags mismatch (-want +got):\n%s", diff)
	}

	wantFrequency := [][]string{
		{"(NSC only) New attending enrollment", "1"},
		{"Perfect Match", "1"},
		{"(DB Only) Attending", "1"},
	}
	if diff := cmp.Diff(wantFrequency, b.CaseFrequency.Rows()); diff != "" {
		t.Errorf("case frequency mismatch (-want +got):\n%s", diff)
	}

	require.Equal(t, 3, b.Matches.Len())
	assert.Equal(t, "003A", b.Matches.Get(0, "NSC_Student__c"))
	assert.Empty(t, b.Matches.Get(0, "DB_Id"))
	assert.Equal(t, "a0B", b.Matches.Get(1, "DB_Id"))
	assert.Empty(t, b.Matches.Get(2, "NSC_Student__c"))
	assert.Equal(t, "a0C", b.Matches.Get(2, "DB_Id"))

	assert.Zero(t, b.UnmatchedClearinghouse.Len())
	assert.Zero(t, b.UnmatchedDatabase.Len())
	tl.AssertContains(t, "Assembled merge output")
}

func TestAssembleUnmatched(t *testing.T) {
	nsc := []enrollment.Record{{StudentID: "003C", CollegeID: "001A", Start: day("2017-01-09")}}
	db := []enrollment.DBRecord{{ID: "a0D", WithdrawalCode: "7", Record: enrollment.Record{
		StudentID: "003D", CollegeID: "001B", Status: "Deferred",
	}}}
	r := match(t, nsc, db)

	a, err := assemble.New(directory(), assemble.WithLogger(logging.NewNopLogger()))
	require.NoError(t, err)
	b, err := a.Assemble(context.Background(), r)
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"003C", "001A", "2017-01-09", "", "", "", "", "", "", ""}}, b.UnmatchedClearinghouse.Rows())
	assert.Equal(t, [][]string{{"003D", "001B", "", "", "", "Deferred", "", "", "", "", "a0D", "", "7"}}, b.UnmatchedDatabase.Rows())
	assert.Zero(t, b.Flags.Len())
}

func TestAssembleUnknownCollegeIsInvariant(t *testing.T) {
	nsc := []enrollment.Record{{
		StudentID: "003A", CollegeID: "001Z", Start: day("2016-08-22"), Status: enrollment.Attending,
	}}
	r := match(t, nsc, nil)

	a, err := assemble.New(directory(), assemble.WithLogger(logging.NewNopLogger()))
	require.NoError(t, err)
	_, err = a.Assemble(context.Background(), r)
	require.Error(t, err)
	assert.True(t, errors.IsInvariant(err))
}

func TestNewValidates(t *testing.T) {
	_, err := assemble.New(nil)
	assert.True(t, errors.IsValidationError(err))

	_, err = assemble.New(directory(), assemble.WithToday(enrollment.Date{}))
	assert.True(t, errors.IsValidationError(err))
}
