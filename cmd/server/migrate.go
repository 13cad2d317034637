package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var migrateDown bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Bring the database schema up to date",
	Long: `Creates the bhajans table if needed, adds any columns missing from an
older database, converts legacy manual_tags values and applies pending
schema versions. With --down the last applied version is rolled back.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if migrateDown {
			if err := a.db.MigrateDown(); err != nil {
				return err
			}
			fmt.Println("Rolled back one schema version")
			return nil
		}

		stats, err := a.services.Bhajan.Stats(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Migration complete: %d active bhajans\n", stats.TotalBhajans)
		return nil
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateDown, "down", false, "roll back the last schema version")
}
