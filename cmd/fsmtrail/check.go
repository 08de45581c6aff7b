package main

import (
	"fmt"

	"github.com/aretw0/fsmtrail/pkg/definition"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check <definition.yaml>",
	Short: "Check a machine definition for consistency",
	Long:  `Loads a YAML machine definition and reports transitions to unknown states, unreachable states and malformed callable references.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := definition.Load(args[0])
		if err != nil {
			return err
		}
		report := definition.Check(doc)
		if err := report.Err(); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		if _, err := doc.Machine(); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(report.Terminal) > 0 {
			fmt.Fprintf(out, "terminal states: %v\n", report.Terminal)
		}
		fmt.Fprintln(out, "Machine is valid! ✅")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
