package main

import (
	"errors"
	"fmt"

	"github.com/aretw0/fsmtrail/pkg/history"
	"github.com/spf13/cobra"
)

const entityArgs = "<entity-type> <entity-id> <attribute>"

var errInconsistent = errors.New("history is inconsistent")

// entityCommand builds a command that runs one history query.
func entityCommand(use, short string, run func(e *env, svc *history.Service, cmd *cobra.Command, args []string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " " + entityArgs,
		Short: short,
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			defer e.Close()
			return run(e, history.New(e.log, history.WithLogger(e.logger)), cmd, args)
		},
	}
}

var historyCmd = entityCommand("history", "List the recorded transitions of an entity attribute",
	func(e *env, svc *history.Service, cmd *cobra.Command, args []string) error {
		records, err := svc.GetHistory(cmd.Context(), args[0], args[1], args[2])
		if err != nil {
			return err
		}
		return e.printer.History(records)
	})

var replayCmd = entityCommand("replay", "Reconstruct the initial and final state from the history",
	func(e *env, svc *history.Service, cmd *cobra.Command, args []string) error {
		res, err := svc.Replay(cmd.Context(), args[0], args[1], args[2])
		if err != nil {
			return err
		}
		return e.printer.Replay(res)
	})

var validateCmd = entityCommand("validate", "Check that every transition starts where the previous one ended",
	func(e *env, svc *history.Service, cmd *cobra.Command, args []string) error {
		v, err := svc.Validate(cmd.Context(), args[0], args[1], args[2])
		if err != nil {
			return err
		}
		if err := e.printer.Validation(v); err != nil {
			return err
		}
		if !v.Valid {
			return errInconsistent
		}
		return nil
	})

var statsCmd = entityCommand("stats", "Aggregate state and transition frequencies",
	func(e *env, svc *history.Service, cmd *cobra.Command, args []string) error {
		s, err := svc.Statistics(cmd.Context(), args[0], args[1], args[2])
		if err != nil {
			return err
		}
		return e.printer.Stats(s)
	})

var streamsCmd = &cobra.Command{
	Use:   "streams",
	Short: "List the entity attributes that have recorded transitions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()
		streams, err := e.log.Streams(cmd.Context())
		if err != nil {
			return fmt.Errorf("%s backend: %w", e.cfg.Backend, err)
		}
		return e.printer.Streams(streams)
	},
}

func init() {
	rootCmd.AddCommand(historyCmd, replayCmd, validateCmd, statsCmd, streamsCmd)
}
