package main

import (
	"fmt"

	"github.com/aretw0/fsmtrail"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of fsmtrail",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "fsmtrail version %s\n", fsmtrail.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
