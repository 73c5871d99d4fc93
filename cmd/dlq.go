package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var dlqListLimit int

var dlqCmd = &cobra.Command{
	Use:   "dlq",
	Short: "Dead letter queue inspection and recovery",
}

var dlqListCmd = &cobra.Command{
	Use:   "list",
	Short: "List jobs in the dead letter queue",
	RunE: func(cmd *cobra.Command, args []string) error {
		jobs, err := adm.DlqList(dlqListLimit)
		if err != nil {
			return err
		}
		for _, j := range jobs {
			lastErr := ""
			if j.LastError != nil {
				lastErr = *j.LastError
			}
			fmt.Printf("%s  attempts=%d/%d  cmd=%q  err=%q\n", j.ID, j.Attempts, j.MaxRetries, j.Command, lastErr)
		}
		return nil
	},
}

var dlqRetryCmd = &cobra.Command{
	Use:   "retry <id>",
	Short: "Reset a dead job back to pending with a fresh attempt budget",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := adm.DlqRetry(args[0]); err != nil {
			return err
		}
		fmt.Printf("%s reset to pending\n", args[0])
		return nil
	},
}

func init() {
	dlqListCmd.Flags().IntVar(&dlqListLimit, "limit", 50, "Max rows")
	dlqCmd.AddCommand(dlqListCmd, dlqRetryCmd)
	rootCmd.AddCommand(dlqCmd)
}
