package clearinghouse_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/enrollsync/pkg/clearinghouse"
	"github.com/agentstation/enrollsync/pkg/enrollment"
	"github.com/agentstation/enrollsync/pkg/errors"
	"github.com/agentstation/enrollsync/pkg/logging"
	"github.com/agentstation/enrollsync/pkg/table"
)

const detailHeader = "YOUR_UNIQUE_IDENTIFIER,FIRST_NAME,LAST_NAME,HIGH_SCHOOL_GRAD_DATE,RECORD_FOUND_Y/N," +
	"COLLEGE_CODE/BRANCH,COLLEGE_NAME,COLLEGE_STATE,2-YEAR/4-YEAR,PUBLIC/PRIVATE," +
	"ENROLLMENT_BEGIN,ENROLLMENT_END,ENROLLMENT_STATUS,GRADUATED,GRADUATION_DATE,DEGREE_TITLE,MAJOR\n"

const detailRows = `1001_,ANA,RIVERA,20150601,Y,001650-01,STATE UNIV,IL,4,Public,20150824,20151211,F,N,,,
1001_,ANA,RIVERA,20150601,Y,001650-01,STATE UNIV,IL,4,Public,20160111,20160506,F,N,,,
1001_,ANA,RIVERA,20150601,Y,007777-02,CITY COLLEGE,IL,2,Public,20160829,20161216,F,N,,,
1001_,ANA,RIVERA,20150601,Y,007777-02,CITY COLLEGE,IL,2,Public,20170117,20170512,H,N,,,
1001_,ANA,RIVERA,20150601,Y,007777-02,CITY COLLEGE,IL,2,Public,20170828,20180511,F,N,,,
1002_,BEN,OKAFOR,20150601,N,,,,,,,,,,,,
1003_,CARLA,MCDONALD,20140601,Y,001650-01,STATE UNIV,IL,4,Public,,,,Y,20180512,ASSOCIATE IN ARTS,HISTORY
`

func readTable(t *testing.T, s string) *table.Table {
	t.Helper()
	tbl, err := table.ReadCSV(strings.NewReader(s))
	require.NoError(t, err)
	return tbl
}

func references(t *testing.T) *clearinghouse.References {
	t.Helper()
	colleges := readTable(t, "OPEID,NCESID,Name\n165001,145600,State University\n777700,149900,City College\n")
	degrees := readTable(t, "UpdateDegree,DegreeType\nASSOCIATE IN ARTS,Associate's\nBACHELOR OF ARTS,Bachelor's\n")
	refs, err := clearinghouse.LoadReferences(colleges, degrees)
	require.NoError(t, err)
	return refs
}

func TestOPEIDKeys(t *testing.T) {
	branch, main, err := clearinghouse.OPEIDKeys("001650-01")
	require.NoError(t, err)
	assert.Equal(t, "165001", branch)
	assert.Equal(t, "165000", main)

	_, _, err = clearinghouse.OPEIDKeys("001650")
	assert.True(t, errors.IsValidationError(err))
	_, _, err = clearinghouse.OPEIDKeys("ABCDEF-01")
	assert.True(t, errors.IsValidationError(err))
}

func TestReferencesFallBackToMainCampus(t *testing.T) {
	refs := references(t)
	c, ok := refs.College("007777-02")
	require.True(t, ok)
	assert.Equal(t, "149900", c.NCESID)

	_, ok = refs.College("009999-00")
	assert.False(t, ok)
}

func TestImporterRun(t *testing.T) {
	tl := logging.NewTestLogger(t)
	im, err := clearinghouse.NewImporter(references(t),
		clearinghouse.WithReportDate(enrollment.NewDate(2018, time.August, 30)),
		clearinghouse.WithReportDir(t.TempDir()),
		clearinghouse.WithStudentIDs(map[string]string{"1001": "003A"}),
		clearinghouse.WithCollegeIDs(map[string]string{"145600": "001A", "149900": "001B"}),
		clearinghouse.WithLogger(tl.Logger),
	)
	require.NoError(t, err)

	out, err := im.Run(context.Background(), readTable(t, detailHeader+detailRows))
	require.NoError(t, err)

	want := [][]string{
		{"1001", "Rivera", "Ana", "2015", "145600", "State University", "003A", "001A",
			"2015-08-24", "2016-05-06", "Transferred out", "Bachelor's", "NSC", "2018-08-30", "", ""},
		{"1001", "Rivera", "Ana", "2015", "149900", "City College", "003A", "001B",
			"2016-08-29", "", "Attending", "Associate's or Certificate (TBD)", "NSC", "2018-08-30", "", ""},
		{"1003", "Mcdonald", "Carla", "2014", "145600", "State University", "N/A", "001A",
			"2018-05-12", "2018-05-12", "Graduated", "Associate's", "NSC", "2018-08-30", "ASSOCIATE IN ARTS", "HISTORY"},
	}
	assert.Equal(t, clearinghouse.OutputHeader(enrollment.DefaultFields().Enrollment), out.Table.Header())
	if diff := cmp.Diff(want, out.Table.Rows()); diff != "" {
		t.Errorf("import output mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, 6, out.Stats.Terms)
	assert.Equal(t, 2, out.Stats.Students)
	assert.Equal(t, 3, out.Stats.Enrollments)
	assert.Equal(t, 1, out.Stats.UnknownStudents)
	assert.Equal(t, 0, out.Stats.UnknownColleges)
	assert.Equal(t, 1, out.Stats.ByStatus[enrollment.Attending])
	tl.AssertContains(t, "Combined clearinghouse enrollments")
}

func TestImporterPreflightStopsRun(t *testing.T) {
	dir := t.TempDir()
	im, err := clearinghouse.NewImporter(references(t), clearinghouse.WithReportDir(dir))
	require.NoError(t, err)

	rows := detailRows +
		"1004_,DEV,PATEL,20150601,Y,009999-00,NOWHERE COLLEGE,OH,4,Private,,,,Y,20190511,DOCTOR OF MAGIC,\n" +
		"1005_,EVE,CHO,20150601,Y,001650-01,STATE UNIV,IL,4,Public,,,,Y,20190511,BACHELOR OF FINE ARTS,\n"
	_, err = im.Run(context.Background(), readTable(t, detailHeader+rows))
	require.Error(t, err)
	assert.True(t, errors.IsMissingReference(err))

	var missing *errors.MissingReferenceError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"BACHELOR OF FINE ARTS", "DOCTOR OF MAGIC"}, missing.Degrees)
	assert.Equal(t, []string{"009999-00"}, missing.Institutions)
	require.Len(t, missing.Reports, 2)

	degrees, err := table.ReadFile(filepath.Join(dir, "missing_degrees.csv"))
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"BACHELOR OF FINE ARTS", "Bachelor's"},
		{"DOCTOR OF MAGIC", "?"},
	}, degrees.Rows())

	colleges, err := os.ReadFile(filepath.Join(dir, "missing_colleges.csv"))
	require.NoError(t, err)
	assert.Equal(t, "OPEID,NCESID,Name,State,Control\n999900,?,NOWHERE COLLEGE,OH,Private\n", string(colleges))
}

func TestImporterRejectsIncompleteExport(t *testing.T) {
	im, err := clearinghouse.NewImporter(references(t))
	require.NoError(t, err)
	_, err = im.Run(context.Background(), readTable(t, "YOUR_UNIQUE_IDENTIFIER\n1001_\n"))
	assert.True(t, errors.IsValidationError(err))
}

func TestNewImporterValidatesOptions(t *testing.T) {
	_, err := clearinghouse.NewImporter(nil)
	assert.Error(t, err)
	_, err = clearinghouse.NewImporter(references(t), clearinghouse.WithDaysGap(-1))
	assert.Error(t, err)
	_, err = clearinghouse.NewImporter(references(t), clearinghouse.WithReportDate(enrollment.Date{}))
	assert.Error(t, err)
}

func TestTranslation(t *testing.T) {
	ids, err := clearinghouse.Translation(readTable(t, "Your ID,SF ID\n1001,003A\n1003,003C\n"))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"1001": "003A", "1003": "003C"}, ids)

	_, err = clearinghouse.Translation(readTable(t, "Only\nx\n"))
	assert.Error(t, err)
}
