// Package command holds the practice-service command line.
package command

import (
	"github.com/spf13/cobra"
)

// NewRootCommand serves the API when no subcommand is given.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "practice-service",
		Short:         "Multi-tenant practice management API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serveCommand(cmd, false)
		},
	}

	root.AddCommand(newServeCommand())
	root.AddCommand(newMigrateCommand())
	root.AddCommand(newCreateAdminCommand())
	return root
}
