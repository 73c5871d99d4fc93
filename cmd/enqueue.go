package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"queuectl/internal/admin"
)

var enqueueCmd = &cobra.Command{
	Use:   "enqueue <json>",
	Short: `Add a job to the queue, e.g. enqueue '{"id":"a","command":"echo hi"}'`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var req struct {
			ID         string `json:"id"`
			Command    string `json:"command"`
			MaxRetries *int   `json:"max_retries"`
		}
		if err := json.Unmarshal([]byte(args[0]), &req); err != nil {
			return fmt.Errorf("%w: %v", admin.ErrValidation, err)
		}

		job, err := adm.Enqueue(req.ID, req.Command, req.MaxRetries)
		if err != nil {
			return err
		}
		fmt.Printf("enqueued %s (max_retries=%d)\n", job.ID, job.MaxRetries)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(enqueueCmd)
}
