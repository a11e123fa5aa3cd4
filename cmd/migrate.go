package cmd

import (
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Open migrates.
		e, err := setup()
		if err != nil {
			return err
		}
		defer e.Close()

		e.log.WithField("driver", e.cfg.Database.Driver).Info("schema is up to date")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
