package app

import (
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/agentstation/enrollsync/cmd/enrollsync/cmd/apply"
	"github.com/agentstation/enrollsync/cmd/enrollsync/cmd/cases"
	"github.com/agentstation/enrollsync/cmd/enrollsync/cmd/importer"
	"github.com/agentstation/enrollsync/cmd/enrollsync/cmd/merge"
)

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(importer.NewCommand(a))
	rootCmd.AddCommand(merge.NewCommand(a))
	rootCmd.AddCommand(apply.NewCommand(a))
	rootCmd.AddCommand(cases.NewCommand(a))

	rootCmd.AddCommand(a.CreateVersionCommand())
	rootCmd.AddCommand(a.CreateManCommand())
}

// CreateVersionCommand creates the version command.
func (a *App) CreateVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("enrollsync %s\n", a.version)
			if a.config.Verbose {
				cmd.Printf("  commit:   %s\n", a.commit)
				cmd.Printf("  built:    %s\n", a.date)
				cmd.Printf("  built by: %s\n", a.builtBy)
			}
		},
	}
}

// CreateManCommand creates the hidden man command.
func (a *App) CreateManCommand() *cobra.Command {
	return &cobra.Command{
		Use:    "man",
		Short:  "Generate man page",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			header := &doc.GenManHeader{
				Title:   "ENROLLSYNC",
				Section: "1",
				Source:  "enrollsync " + a.version,
				Manual:  "enrollsync Manual",
			}
			return doc.GenMan(cmd.Root(), header, cmd.OutOrStdout())
		},
	}
}
