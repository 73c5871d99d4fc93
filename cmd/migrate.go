package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// migrateCmd exists for operators who want to apply schema migrations
// without starting a worker or touching the queue; every other command
// already runs migrations as part of PersistentPreRunE's store.Open.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply any pending database schema migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("schema up to date")
		return nil
	},
}

func init() { rootCmd.AddCommand(migrateCmd) }
