// Package save writes the output bundle of a merge run.
package save

import (
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/agentstation/enrollsync/pkg/assemble"
	"github.com/agentstation/enrollsync/pkg/constants"
	"github.com/agentstation/enrollsync/pkg/errors"
	"github.com/agentstation/enrollsync/pkg/table"
)

// Output file name prefixes. The run date is appended as MM_DD_YYYY.
const (
	InsertPrefix = "new_enr_"
	UpdatePrefix = "enr_update_"
	FlagPrefix   = "con_update_"
)

// Debugging table file names, written under constants.DebugDir.
const (
	MatchTableFile    = "__match_table.csv"
	UnmatchedNSCFile  = "__unmatched_nsc.csv"
	UnmatchedDBFile   = "__unmatched_db.csv"
	MatchingCasesFile = "__matching_cases.csv"
	SkippedNSCFile    = "__skipped_nsc.csv"
)

type output struct {
	path string
	t    *table.Table
}

// Manifest lists the files a Write produced.
type Manifest struct {
	Inserts string   `json:"inserts" yaml:"inserts"`
	Updates string   `json:"updates" yaml:"updates"`
	Flags   string   `json:"flags" yaml:"flags"`
	Debug   []string `json:"debug,omitempty" yaml:"debug,omitempty"`
	Report  string   `json:"report,omitempty" yaml:"report,omitempty"`
	Metrics string   `json:"metrics,omitempty" yaml:"metrics,omitempty"`
}

// Files returns every path in the manifest.
func (m *Manifest) Files() []string {
	files := []string{m.Inserts, m.Updates, m.Flags}
	files = append(files, m.Debug...)
	for _, f := range []string{m.Report, m.Metrics} {
		if f != "" {
			files = append(files, f)
		}
	}
	return files
}

// Write writes the bundle's tables and, when enabled, the report and
// metrics files.
func Write(b *assemble.Bundle, opts ...Option) (*Manifest, error) {
	if b == nil {
		return nil, errors.NewValidationError("bundle", nil, "bundle is required")
	}
	o := Defaults().Apply(opts...)

	if err := os.MkdirAll(o.dir, constants.DirPermissions); err != nil {
		return nil, errors.WrapIO("create", o.dir, err)
	}

	stamp := o.date.Format(constants.FileDateSuffix)
	m := &Manifest{
		Inserts: filepath.Join(o.dir, InsertPrefix+stamp+".csv"),
		Updates: filepath.Join(o.dir, UpdatePrefix+stamp+".csv"),
		Flags:   filepath.Join(o.dir, FlagPrefix+stamp+".csv"),
	}
	outputs := []output{
		{m.Inserts, b.Inserts},
		{m.Updates, b.Updates},
		{m.Flags, b.Flags},
	}

	if o.debug {
		debugDir := filepath.Join(o.dir, constants.DebugDir)
		if err := os.MkdirAll(debugDir, constants.DirPermissions); err != nil {
			return nil, errors.WrapIO("create", debugDir, err)
		}
		for _, d := range []struct {
			name string
			t    *table.Table
		}{
			{MatchTableFile, b.Matches},
			{UnmatchedNSCFile, b.UnmatchedClearinghouse},
			{UnmatchedDBFile, b.UnmatchedDatabase},
			{MatchingCasesFile, b.CaseFrequency},
			{SkippedNSCFile, b.Skipped},
		} {
			if d.t == nil {
				continue
			}
			path := filepath.Join(debugDir, d.name)
			m.Debug = append(m.Debug, path)
			outputs = append(outputs, output{path, d.t})
		}
	}

	for _, out := range outputs {
		if out.t == nil {
			continue
		}
		if err := out.t.WriteFile(out.path); err != nil {
			return nil, err
		}
		o.logger.Debug().Str("path", out.path).Int("rows", out.t.Len()).Msg("Wrote table")
	}

	if o.report {
		m.Report = filepath.Join(o.dir, constants.ReportFile)
		if err := writeReport(m.Report, b, m, o.date); err != nil {
			return nil, err
		}
	}
	if o.metrics != nil {
		m.Metrics = filepath.Join(o.dir, constants.MetricsFile)
		if err := prometheus.WriteToTextfile(m.Metrics, o.metrics); err != nil {
			return nil, errors.WrapIO("write", m.Metrics, err)
		}
	}

	o.logger.Info().
		Str("dir", o.dir).
		Int("files", len(m.Files())).
		Msg("Merge output written")
	return m, nil
}
