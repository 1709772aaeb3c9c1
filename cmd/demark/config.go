package main

import (
	"fmt"

	"github.com/aretw0/demark/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := cfg.Dump()
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List every configuration key with its default",
	Run: func(cmd *cobra.Command, args []string) {
		for _, o := range config.Options() {
			fmt.Fprintf(cmd.OutOrStdout(), "%-24s %-28v %s\n", o.Key, o.Default, o.Comment)
		}
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configKeysCmd)
}
