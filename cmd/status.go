package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"queuectl/internal/model"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print job counts by state and active worker PIDs",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := adm.Status()
		if err != nil {
			return err
		}
		fmt.Printf("pending=%d processing=%d completed=%d failed=%d dead=%d\n",
			s.Counts[model.StatePending], s.Counts[model.StateProcessing],
			s.Counts[model.StateCompleted], s.Counts[model.StateFailed], s.Counts[model.StateDead])
		fmt.Printf("workers=%v\n", s.AlivePids)
		return nil
	},
}

func init() { rootCmd.AddCommand(statusCmd) }
