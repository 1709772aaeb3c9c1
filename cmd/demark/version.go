package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/demark"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of demark",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "demark version %s\n", strings.TrimSpace(demark.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
