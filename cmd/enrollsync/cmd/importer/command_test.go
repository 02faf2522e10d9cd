package importer_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/enrollsync/cmd/enrollsync/cmd/importer"
	"github.com/agentstation/enrollsync/internal/appcontext"
	"github.com/agentstation/enrollsync/internal/config"
	"github.com/agentstation/enrollsync/internal/crm"
	"github.com/agentstation/enrollsync/pkg/clearinghouse"
	"github.com/agentstation/enrollsync/pkg/constants"
	"github.com/agentstation/enrollsync/pkg/errors"
	"github.com/agentstation/enrollsync/pkg/table"
)

const detail = `YOUR_UNIQUE_IDENTIFIER,FIRST_NAME,LAST_NAME,HIGH_SCHOOL_GRAD_DATE,RECORD_FOUND_Y/N,COLLEGE_CODE/BRANCH,COLLEGE_NAME,COLLEGE_STATE,2-YEAR/4-YEAR,PUBLIC/PRIVATE,ENROLLMENT_BEGIN,ENROLLMENT_END,ENROLLMENT_STATUS,GRADUATED,GRADUATION_DATE,DEGREE_TITLE,MAJOR
1001_,ANA,RIVERA,20150601,Y,001650-01,STATE UNIV,IL,4,Public,20150824,20151211,F,N,,,
1001_,ANA,RIVERA,20150601,Y,001650-01,STATE UNIV,IL,4,Public,20160111,20160506,F,N,,,
1003_,CARLA,MCDONALD,20140601,Y,001650-01,STATE UNIV,IL,4,Public,,,,Y,20180512,ASSOCIATE IN ARTS,HISTORY
`

func write(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func setup(t *testing.T, degrees string) (*appcontext.Mock, *importer.Flags) {
	t.Helper()
	dir := t.TempDir()
	extracts := t.TempDir()
	write(t, extracts, crm.ObjectContact+".csv", "Id,LastName,FirstName,HS_Class__c,High_School__c,Network_Student_ID__c\n003A,Rivera,Ana,2015,North HS,1001\n")
	write(t, extracts, crm.ObjectAccount+".csv", "Id,Name,College_Type__c,NCES_ID__c\n001A,State University,4 yr,145600\n")

	run := config.DefaultRun()
	run.ExtractDir = extracts
	run.OutputDir = dir
	app := &appcontext.Mock{RunSettings: &run}

	return app, &importer.Flags{
		Detail:   write(t, dir, "detail.csv", detail),
		Colleges: write(t, dir, "colleges.csv", "OPEID,NCESID,Name\n165001,145600,State University\n"),
		Degrees:  write(t, dir, "degrees.csv", degrees),
		Today:    "2018-08-30",
	}
}

func TestImportWritesTable(t *testing.T) {
	app, flags := setup(t, "UpdateDegree,DegreeType\nASSOCIATE IN ARTS,Associate's\n")

	var buf bytes.Buffer
	require.NoError(t, importer.Run(context.Background(), app, &buf, &bytes.Buffer{}, flags))

	out, err := table.ReadFile(filepath.Join(app.Run().OutputDir, constants.DefaultImportOutput))
	require.NoError(t, err)
	assert.Equal(t, []string{"003A", "N/A"}, out.Values("Student__c"))

	var stats clearinghouse.Stats
	require.NoError(t, json.Unmarshal(buf.Bytes(), &stats))
	assert.Equal(t, 2, stats.Enrollments)
	assert.Equal(t, 1, stats.UnknownStudents)
}

func TestImportStopsOnMissingDegree(t *testing.T) {
	app, flags := setup(t, "UpdateDegree,DegreeType\n")

	var errw bytes.Buffer
	err := importer.Run(context.Background(), app, &bytes.Buffer{}, &errw, flags)
	require.Error(t, err)
	assert.True(t, errors.IsMissingReference(err))
	assert.FileExists(t, filepath.Join(app.Run().OutputDir, constants.MissingDegreesFile))
	assert.Contains(t, errw.String(), "degree title: ASSOCIATE IN ARTS")
	assert.NoFileExists(t, filepath.Join(app.Run().OutputDir, constants.DefaultImportOutput))
}

func TestImportRequiresDetail(t *testing.T) {
	cmd := importer.NewCommand(&appcontext.Mock{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(nil)
	assert.Error(t, cmd.Execute())
}
