// Package merge implements the merge command.
package merge

import (
	"context"
	"io"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/agentstation/enrollsync"
	"github.com/agentstation/enrollsync/internal/appcontext"
	"github.com/agentstation/enrollsync/internal/cmd/alerts"
	"github.com/agentstation/enrollsync/internal/cmd/output"
	"github.com/agentstation/enrollsync/pkg/constants"
	"github.com/agentstation/enrollsync/pkg/enrollment"
	"github.com/agentstation/enrollsync/pkg/errors"
	"github.com/agentstation/enrollsync/pkg/logging"
	"github.com/agentstation/enrollsync/pkg/reconcile"
	"github.com/agentstation/enrollsync/pkg/save"
	"github.com/agentstation/enrollsync/pkg/table"
)

// Flags holds the merge command flags.
type Flags struct {
	Input string
	Today string
}

// Summary is the printed outcome of a merge.
type Summary struct {
	Stats    reconcile.Statistics  `json:"stats" yaml:"stats"`
	Cases    []reconcile.CaseCount `json:"cases" yaml:"cases"`
	Skipped  int                   `json:"skipped" yaml:"skipped"`
	Warnings []string              `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Files    *save.Manifest        `json:"files" yaml:"files"`
}

// NewCommand creates the merge command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "merge",
		GroupID: "core",
		Short:   "Match imported enrollments against the CRM",
		Args:    cobra.NoArgs,
		Long: `Merge matches the enrollments written by import against the CRM
enrollment records of the same students, using an ordered list of match
cases. It writes:

  new_enr_<date>.csv      enrollments to insert into the CRM
  enr_update_<date>.csv   updates to existing CRM enrollments
  con_update_<date>.csv   contacts flagged for manual review

plus the match table and unmatched records under debugging_output/.`,
		Example: `  enrollsync merge
  enrollsync merge --input import_nsc_output.csv --today 2018-08-30`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return Run(cmd.Context(), app, cmd.OutOrStdout(), cmd.ErrOrStderr(), flags)
		},
	}

	cmd.Flags().StringVar(&flags.Input, "input", "", "imported enrollments (default <output_dir>/"+constants.DefaultImportOutput+")")
	cmd.Flags().StringVar(&flags.Today, "today", "", "date of the run, YYYY-MM-DD (default today)")

	return cmd
}

// Run executes the merge, writing the summary to w and warnings to errw.
func Run(ctx context.Context, app appcontext.Interface, w, errw io.Writer, flags *Flags) error {
	ctx = logging.WithStep(ctx, "merge")
	logger := logging.FromContext(ctx)

	input := flags.Input
	if input == "" {
		input = filepath.Join(app.Run().OutputDir, constants.DefaultImportOutput)
	}
	imported, err := table.ReadFile(input)
	if err != nil {
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

	res, err := client.Merge(ctx, imported)
	if err != nil {
		return err
	}
	result := res.Bundle.Result
	if result.HasWarnings() {
		_ = alerts.NewWriter(errw).Write(alerts.NewWarning("review before loading the output files").
			WithDetails(result.Warnings...))
	}
	logger.Info().Msg(result.Summary())

	summary := Summary{
		Stats:    result.Metadata.Stats,
		Cases:    result.CaseCounts(),
		Skipped:  res.Skipped,
		Warnings: result.Warnings,
		Files:    res.Manifest,
	}
	return output.Print(w, output.DetectFormat(app.OutputFormat()), summary, filesTable(res))
}

func filesTable(res *enrollsync.MergeResult) *output.Data {
	b := res.Bundle
	m := res.Manifest
	return &output.Data{
		Headers:         []string{"File", "Rows"},
		ColumnAlignment: []output.Align{output.AlignLeft, output.AlignRight},
		Rows: [][]string{
			{m.Inserts, strconv.Itoa(b.Inserts.Len())},
			{m.Updates, strconv.Itoa(b.Updates.Len())},
			{m.Flags, strconv.Itoa(b.Flags.Len())},
		},
	}
}
