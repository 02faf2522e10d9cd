// Package cases implements the cases command, which lists the match cases
// in evaluation order.
package cases

import (
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/agentstation/enrollsync/internal/appcontext"
	"github.com/agentstation/enrollsync/internal/cmd/output"
	"github.com/agentstation/enrollsync/pkg/matchcase"
)

// NewCommand creates the cases command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	var databaseOnly bool

	cmd := &cobra.Command{
		Use:     "cases",
		GroupID: "core",
		Short:   "List the match cases in evaluation order",
		Args:    cobra.NoArgs,
		Example: `  enrollsync cases
  enrollsync cases --database-only -o yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list := matchcase.Default()
			if databaseOnly {
				list = matchcase.DatabaseOnlyCases()
			}
			return Print(cmd.OutOrStdout(), output.DetectFormat(app.OutputFormat()), matchcase.Describe(list))
		},
	}

	cmd.Flags().BoolVar(&databaseOnly, "database-only", false, "list the cases of unmatched CRM enrollments")

	return cmd
}

// Print writes the case list in format.
func Print(w io.Writer, format output.Format, infos []matchcase.Info) error {
	data := &output.Data{
		Headers:         []string{"#", "Case", "Family", "Update", "Insert", "Flag"},
		ColumnAlignment: []output.Align{
			output.AlignRight, output.AlignLeft, output.AlignLeft,
			output.AlignCenter, output.AlignCenter, output.AlignCenter,
		},
	}
	for _, info := range infos {
		data.Rows = append(data.Rows, []string{
			strconv.Itoa(info.Position),
			info.Name,
			info.Family,
			mark(info.Updates),
			mark(info.Inserts),
			mark(info.Flags),
		})
	}
	return output.Print(w, format, infos, data)
}

func mark(b bool) string {
	if b {
		return "x"
	}
	return ""
}
