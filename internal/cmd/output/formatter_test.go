package output_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/enrollsync/internal/cmd/output"
)

type row struct {
	Name  string `json:"case_name"`
	Count int    `json:"count"`
}

func TestParseFormat(t *testing.T) {
	f, err := output.ParseFormat("YAML")
	require.NoError(t, err)
	assert.Equal(t, output.FormatYAML, f)

	_, err = output.ParseFormat("wide")
	assert.Error(t, err)
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	data := []row{{"Perfect Match", 3}}
	require.NoError(t, output.Print(&buf, output.FormatJSON, data, &output.Data{Headers: []string{"ignored"}}))
	assert.JSONEq(t, `[{"case_name":"Perfect Match","count":3}]`, buf.String())
}

func TestPrintYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, output.Print(&buf, output.FormatYAML, map[string]int{"students": 2}, nil))
	assert.Equal(t, "students: 2\n", buf.String())
}

func TestPrintTableReflects(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, output.Print(&buf, output.FormatTable, []row{{"Perfect Match", 3}}, nil))
	out := strings.ToUpper(buf.String())
	assert.Contains(t, out, "CASE NAME")
	assert.Contains(t, out, "PERFECT MATCH")
}

func TestDetectFormatExplicit(t *testing.T) {
	assert.Equal(t, output.FormatYAML, output.DetectFormat("yaml"))
}

func TestPrintTableSingleStruct(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, output.Print(&buf, output.FormatTable, row{"Perfect Match", 3}, nil))
	out := strings.ToUpper(buf.String())
	assert.Contains(t, out, "PROPERTY")
	assert.Contains(t, out, "CASE NAME")
}

func TestDetectFormatIgnoresUnknown(t *testing.T) {
	assert.NotEqual(t, output.Format("wide"), output.DetectFormat("wide"))
}
