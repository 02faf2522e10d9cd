// Package importer implements the import command, which turns a
// clearinghouse detail report into the enrollment table read by merge.
package importer

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/agentstation/enrollsync"
	"github.com/agentstation/enrollsync/internal/appcontext"
	"github.com/agentstation/enrollsync/internal/cmd/alerts"
	"github.com/agentstation/enrollsync/internal/cmd/output"
	"github.com/agentstation/enrollsync/pkg/clearinghouse"
	"github.com/agentstation/enrollsync/pkg/constants"
	"github.com/agentstation/enrollsync/pkg/enrollment"
	"github.com/agentstation/enrollsync/pkg/errors"
	"github.com/agentstation/enrollsync/pkg/logging"
	"github.com/agentstation/enrollsync/pkg/table"
)

// Flags holds the import command flags.
type Flags struct {
	Detail   string
	Colleges string
	Degrees  string
	Out      string
	Today    string
}

// NewCommand creates the import command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "import",
		GroupID: "core",
		Short:   "Import a clearinghouse detail report",
		Args:    cobra.NoArgs,
		Long: `Import reads a clearinghouse StudentTracker detail report and writes
one enrollment row per continuous stay at a college.

Before parsing, every degree title and institution code in the report is
checked against the degree and college reference tables. When any are
missing, missing_degrees.csv and/or missing_colleges.csv are written to the
output directory and the import stops. Student and college ids are
translated to CRM ids using the contact and account tables of the CRM.`,
		Example: `  enrollsync import --detail nsc_inputs/detail.csv
  enrollsync import --detail detail.csv --out import_nsc_output.csv -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return Run(cmd.Context(), app, cmd.OutOrStdout(), cmd.ErrOrStderr(), flags)
		},
	}

	cmd.Flags().StringVar(&flags.Detail, "detail", "", "clearinghouse detail report (CSV)")
	cmd.Flags().StringVar(&flags.Colleges, "colleges", "", "college reference table (default from config)")
	cmd.Flags().StringVar(&flags.Degrees, "degrees", "", "degree reference table (default from config)")
	cmd.Flags().StringVar(&flags.Out, "out", "", "output file (default <output_dir>/"+constants.DefaultImportOutput+")")
	cmd.Flags().StringVar(&flags.Today, "today", "", "date of the run, YYYY-MM-DD (default today)")
	_ = cmd.MarkFlagRequired("detail")

	return cmd
}

// Run executes the import, writing stats to w and alerts to errw.
func Run(ctx context.Context, app appcontext.Interface, w, errw io.Writer, flags *Flags) error {
	run := app.Run()
	ctx = logging.WithStep(ctx, "import")
	logger := logging.FromContext(ctx)

	colleges := orDefault(flags.Colleges, run.CollegesFile)
	degrees := orDefault(flags.Degrees, run.DegreesFile)
	in := enrollsync.ImportInput{}
	var err error
	if in.Detail, err = table.ReadFile(flags.Detail); err != nil {
		return err
	}
	if in.Colleges, err = table.ReadFile(colleges); err != nil {
		return err
	}
	if in.Degrees, err = table.ReadFile(degrees); err != nil {
		return err
	}

	var opts []enrollsync.Option
	if flags.Today != "" {
		today, err := enrollment.ParseDate(flags.Today)
		if err != nil {
			return errors.WrapValidation("today", err)
		}
		opts = append(opts, enrollsync.WithToday(today))
	}

	client, closeClient, err := app.Client(ctx, opts...)
	if err != nil {
		return err
	}
	defer func() { _ = closeClient() }()

	out, err := client.Import(ctx, in)
	if err != nil {
		var missing *errors.MissingReferenceError
		if errors.As(err, &missing) {
			_ = alerts.NewWriter(errw).Write(missingAlert(missing))
		}
		return err
	}

	path := orDefault(flags.Out, filepath.Join(run.OutputDir, constants.DefaultImportOutput))
	if err := out.Table.WriteFile(path); err != nil {
		return err
	}
	logger.Info().Str("file", path).Int("rows", out.Table.Len()).Msg("Wrote clearinghouse enrollments")

	return output.Print(w, output.DetectFormat(app.OutputFormat()), out.Stats, statsTable(out.Stats))
}

func missingAlert(m *errors.MissingReferenceError) *alerts.Alert {
	a := alerts.NewError("reference tables are incomplete, add these entries and rerun the import")
	for _, d := range m.Degrees {
		a.WithDetails("degree title: " + d)
	}
	for _, i := range m.Institutions {
		a.WithDetails("institution: " + i)
	}
	for _, r := range m.Reports {
		a.WithDetails("see " + r)
	}
	return a
}

func statsTable(s clearinghouse.Stats) *output.Data {
	data := &output.Data{
		Headers:         []string{"Measure", "Count"},
		ColumnAlignment: []output.Align{output.AlignLeft, output.AlignRight},
		Rows: [][]string{
			{"Terms", strconv.Itoa(s.Terms)},
			{"Students", strconv.Itoa(s.Students)},
			{"Enrollments", strconv.Itoa(s.Enrollments)},
			{"Unknown students", strconv.Itoa(s.UnknownStudents)},
			{"Unknown colleges", strconv.Itoa(s.UnknownColleges)},
		},
	}

	statuses := make([]enrollment.Status, 0, len(s.ByStatus))
	for status := range s.ByStatus {
		statuses = append(statuses, status)
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i] < statuses[j] })
	for _, status := range statuses {
		data.Rows = append(data.Rows, []string{fmt.Sprintf("Status %s", status), strconv.Itoa(s.ByStatus[status])})
	}
	return data
}

func orDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}
