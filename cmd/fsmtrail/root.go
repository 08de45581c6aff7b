package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/fsmtrail/internal/cli"
	"github.com/aretw0/fsmtrail/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fsmtrail",
	Short: "fsmtrail inspects the transition audit trail of state machines",
	Long: `fsmtrail reads the append-only transition log written by the fsmtrail engine.
It replays the history of an entity attribute, checks that the recorded transitions
chain correctly, aggregates statistics and serves the same views over HTTP.

Settings come from FSMTRAIL_* environment variables; flags take precedence.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	flags := rootCmd.PersistentFlags()
	flags.String("backend", "", "Event log backend: memory, sqlite or redis")
	flags.String("sqlite-path", "", "Path of the sqlite database")
	flags.String("redis-addr", "", "Address of the redis server")
	flags.String("redis-prefix", "", "Key prefix of the redis event log")
	flags.String("log-level", "", "Log level: debug, info, warn or error")
	flags.StringP("format", "o", "text", "Output format: text or json")
}

// loadConfig reads the environment and applies the flags the user set explicitly.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	override := func(name string, target *string) {
		if flags.Changed(name) {
			*target, _ = flags.GetString(name)
		}
	}
	var backend string
	override("backend", &backend)
	if backend != "" {
		cfg.Backend = config.Backend(backend)
	}
	override("sqlite-path", &cfg.SQLitePath)
	override("redis-addr", &cfg.RedisAddr)
	override("redis-prefix", &cfg.RedisPrefix)
	override("log-level", &cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// env bundles what every log command needs.
type env struct {
	cfg     config.Config
	logger  *slog.Logger
	log     *cli.EventLog
	printer *cli.Printer
}

func setup(cmd *cobra.Command) (*env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	format, _ := cmd.Flags().GetString("format")
	printer, err := cli.NewPrinter(cmd.OutOrStdout(), format)
	if err != nil {
		return nil, err
	}
	logger := cli.CreateLogger(cfg)
	log, err := cli.OpenEventLog(cfg, logger)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, logger: logger, log: log, printer: printer}, nil
}

func (e *env) Close() {
	if err := e.log.Close(); err != nil {
		e.logger.Warn("closing event log failed", "err", err)
	}
}
