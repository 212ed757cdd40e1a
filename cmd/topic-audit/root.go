package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aalemi-dev/topic-audit/audit"
	"github.com/aalemi-dev/topic-audit/config"
)

func newRootCommand() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "topic-audit",
		Short: "Audit the change records of a Kafka topic",
		Long: `topic-audit positions every partition of a topic at a point in time,
consumes until the topic goes idle, and reports per-table message,
operation and distinct id counts.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/topic-audit.yaml)")

	flags.StringP("topic", "t", "", "Topic to consume")
	flags.IntP("days", "d", 0, "Start at records written this many days ago")
	flags.IntP("timeout", "p", int(audit.DefaultPollTimeout.Seconds()), "Poll timeout in seconds; an empty poll ends the run")
	flags.BoolP("log", "l", false, "Log message values")
	flags.StringSliceP("tables", "i", nil, "Included tables")
	flags.StringSliceP("sources", "s", nil, "Included source systems")
	flags.BoolP("cda", "c", false, "Consume a change-data topic")
	flags.Bool("print-schemas", false, "Log the latest key and value schemas of the topic before consuming")

	flags.StringSlice("brokers", nil, "Kafka bootstrap brokers")
	flags.String("group-id", "", "Consumer group id (default is a generated topic-audit-<uuid>)")
	flags.String("schema-registry-url", "", "Schema registry URL")
	flags.String("log-level", "", "Log level (debug, info, warning, error)")
	flags.String("metrics-address", "", "Serve Prometheus metrics on this address during the run")

	return cmd
}
