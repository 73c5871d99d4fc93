package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{Use: "config", Short: "Get or set tunable configuration keys"}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every known config key and its current value",
	RunE: func(cmd *cobra.Command, args []string) error {
		kvs, err := cfg.List()
		if err != nil {
			return err
		}
		for _, kv := range kvs {
			fmt.Printf("%s=%s\n", kv.Key, kv.Value)
		}
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a single config key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := cfg.Get(args[0])
		if err != nil {
			return err
		}
		fmt.Println(v)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config key",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cfg.Set(args[0], args[1])
	},
}

func init() {
	configCmd.AddCommand(configListCmd, configGetCmd, configSetCmd)
	rootCmd.AddCommand(configCmd)
}
