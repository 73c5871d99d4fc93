package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var logsLimit int

var logsCmd = &cobra.Command{
	Use:   "logs <job_id>",
	Short: "Print stored log lines for a job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lines, err := adm.Logs(args[0], logsLimit)
		if err != nil {
			return err
		}
		for _, l := range lines {
			fmt.Printf("%s [%s] %s\n", l.Timestamp.Format(time.RFC3339), l.Stream, l.Chunk)
		}
		return nil
	},
}

func init() {
	logsCmd.Flags().IntVar(&logsLimit, "limit", 200, "Max lines")
	rootCmd.AddCommand(logsCmd)
}
