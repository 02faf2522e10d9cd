// Package apply implements the apply command, which writes an enrollment
// update file back to the CRM database.
package apply

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/agentstation/enrollsync/internal/appcontext"
	"github.com/agentstation/enrollsync/pkg/logging"
	"github.com/agentstation/enrollsync/pkg/table"
)

// NewCommand creates the apply command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:     "apply",
		GroupID: "core",
		Short:   "Apply an enrollment update file to the CRM",
		Args:    cobra.NoArgs,
		Long: `Apply writes the rows of an enr_update_<date>.csv file produced by merge
to the CRM enrollment table, in one transaction. Blank date cells clear
the stored date. Requires the postgres source.`,
		Example: `  enrollsync apply --file enr_update_08_30_2018.csv`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return Run(cmd.Context(), app, cmd.OutOrStdout(), file)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "enrollment update file")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

// Run applies the update file.
func Run(ctx context.Context, app appcontext.Interface, w io.Writer, file string) error {
	ctx = logging.WithStep(ctx, "apply")

	updates, err := table.ReadFile(file)
	if err != nil {
		return err
	}

	client, closeClient, err := app.Client(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = closeClient() }()

	n, err := client.Apply(ctx, updates)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "Updated %d of %d enrollments\n", n, updates.Len())
	return err
}
