package cases_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/enrollsync/cmd/enrollsync/cmd/cases"
	"github.com/agentstation/enrollsync/internal/appcontext"
	"github.com/agentstation/enrollsync/internal/cmd/output"
	"github.com/agentstation/enrollsync/pkg/matchcase"
)

func TestCasesJSON(t *testing.T) {
	cmd := cases.NewCommand(&appcontext.Mock{})
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs(nil)
	require.NoError(t, cmd.Execute())

	var infos []matchcase.Info
	require.NoError(t, json.Unmarshal(buf.Bytes(), &infos))
	require.Len(t, infos, len(matchcase.Default()))
	assert.Equal(t, 1, infos[0].Position)
	assert.Equal(t, "Perfect Match", infos[0].Name)
}

func TestCasesDatabaseOnly(t *testing.T) {
	cmd := cases.NewCommand(&appcontext.Mock{})
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"--database-only"})
	require.NoError(t, cmd.Execute())

	var infos []matchcase.Info
	require.NoError(t, json.Unmarshal(buf.Bytes(), &infos))
	assert.Len(t, infos, len(matchcase.DatabaseOnlyCases()))
}

func TestPrintTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, cases.Print(&buf, output.FormatTable, matchcase.Describe(matchcase.Default())))
	out := strings.ToUpper(buf.String())
	assert.Contains(t, out, "PERFECT MATCH")
	assert.Contains(t, out, "FAMILY")
}
