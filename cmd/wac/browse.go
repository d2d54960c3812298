package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/Zuo-Peng/wa-contacts/internal/daily"
	"github.com/Zuo-Peng/wa-contacts/internal/render"
	"github.com/Zuo-Peng/wa-contacts/internal/store"
	"github.com/Zuo-Peng/wa-contacts/internal/table"
	"github.com/Zuo-Peng/wa-contacts/internal/tui"
	"github.com/spf13/cobra"
)

func browseCmd() *cobra.Command {
	var dailyCSV, runID string

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse contacts and the days you talked to them",
		Long: `Opens a TUI over the daily interactions table when stdout is a terminal.
Type to filter by name; Enter prints the selected contact's days.

When piped, prints one TSV line per contact:
  name, days contacted, first day, last day`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := setup(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("daily-csv") {
				cfg.DailyCSV = dailyCSV
			}

			var rows []daily.Interaction
			if runID != "" {
				rows, err = ledgerDaily(cfg.DBPath, runID)
			} else {
				rows, err = table.LoadDaily(cfg.DailyCSV)
			}
			if err != nil {
				return err
			}

			if len(rows) == 0 {
				fmt.Fprintln(os.Stderr, "No contacts.")
				return nil
			}

			if stdoutIsTerminal() {
				return tui.Run(rows, os.Stdout)
			}

			for _, c := range render.Contacts(rows) {
				name := strings.ReplaceAll(c.Name, "\t", " ")
				fmt.Printf("%s\t%d\t%s\t%s\n", name, len(c.Days),
					c.First().Format(table.DayLayout), c.Last().Format(table.DayLayout))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dailyCSV, "daily-csv", "daily_interactions.csv", "Daily interactions table to read")
	cmd.Flags().StringVar(&runID, "run", "", "Browse the daily table stored with a ledger run (id or prefix)")

	return cmd
}

func ledgerDaily(dbPath, runID string) ([]daily.Interaction, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("ledger disabled (db_path is empty)")
	}
	db, err := store.OpenDB(dbPath)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	run, err := db.GetRun(runID)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, fmt.Errorf("run %q not found", runID)
	}
	return db.RunDaily(run.ID)
}
