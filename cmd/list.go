package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"queuectl/internal/admin"
	"queuectl/internal/model"
)

var listState string
var listLimit int
var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List jobs, optionally filtered by state",
	RunE: func(cmd *cobra.Command, args []string) error {
		state := model.State(listState) // "" means all
		if state != "" && !state.Valid() {
			return fmt.Errorf("%w: unknown state %q", admin.ErrValidation, listState)
		}
		jobs, err := adm.List(state, listLimit)
		if err != nil {
			return err
		}
		if listJSON {
			b, err := json.MarshalIndent(jobs, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(b))
			return nil
		}
		for _, j := range jobs {
			lastErr := ""
			if j.LastError != nil {
				lastErr = *j.LastError
			}
			fmt.Printf("%s  %-10s  attempts=%d/%d  cmd=%q  err=%q\n",
				j.ID, j.State, j.Attempts, j.MaxRetries, j.Command, lastErr)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().StringVar(&listState, "state", "", "Filter by state (pending|processing|completed|failed|dead)")
	listCmd.Flags().IntVar(&listLimit, "limit", 50, "Max rows")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "JSON output")
	rootCmd.AddCommand(listCmd)
}
