package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"uni-portal/backend/pkg/database"
)

func newMigrateCmd(root *rootOptions) *cobra.Command {
	var statusOnly bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply embedded schema migrations, or show their status",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := connect(root)
			if err != nil {
				return err
			}
			defer e.close()

			sqlDB, err := e.db.DB()
			if err != nil {
				return err
			}
			if !statusOnly {
				if err := database.RunMigrations(sqlDB, e.logger); err != nil {
					return err
				}
			}

			state, err := database.MigrationStatus(sqlDB)
			if err != nil {
				return err
			}
			renderMigrationState(cmd.OutOrStdout(), state)
			if state.Dirty {
				return &exitError{code: exitFailed, err: fmt.Errorf("%w: version=%d", database.ErrDirtyMigration, state.Version)}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&statusOnly, "status", false, "Only print the current version")
	return cmd
}
