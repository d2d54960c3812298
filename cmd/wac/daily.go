package main

import (
	"time"

	"github.com/spf13/cobra"
)

func dailyCmd() *cobra.Command {
	f := runFlags{skipTests: true, skipMessages: true}

	cmd := &cobra.Command{
		Use:   "daily",
		Short: "Rebuild the daily contact table from an existing messages CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(cmd)
			if err != nil {
				return err
			}
			f.apply(cmd, cfg)
			p := pipeline{
				cfg:   cfg,
				flags: f,
				out:   cmd.OutOrStdout(),
				color: stdoutIsTerminal(),
				now:   time.Now,
				log:   log,
			}
			return p.run()
		},
	}

	cmd.Flags().StringVar(&f.messagesCSV, "messages-csv", "whatsapp_messages.csv", "Messages table to read")
	cmd.Flags().StringVar(&f.dailyCSV, "daily-csv", "daily_interactions.csv", "Daily interactions table output")
	cmd.Flags().BoolVar(&f.noLedger, "no-ledger", false, "Do not record this run in the ledger database")

	return cmd
}
