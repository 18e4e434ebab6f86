package command

import (
	"github.com/spf13/cobra"

	"practice-service/pkg/database"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(_ *cobra.Command, _ []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.close()

			if err := database.MigrateModels(a.db); err != nil {
				return err
			}
			a.log.Info("Database migrated")
			return nil
		},
	}
}
