package main

import (
	"fmt"
	"io"
	"os"

	"github.com/Zuo-Peng/wa-contacts/internal/store"
	"github.com/Zuo-Peng/wa-contacts/internal/table"
	"github.com/spf13/cobra"
)

const (
	hColorReset = "\033[0m"
	hColorRed   = "\033[1;31m"
	hColorDim   = "\033[2m"
)

func historyCmd() *cobra.Command {
	var runID string
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs, or show one run's per-chat stats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := setup(cmd)
			if err != nil {
				return err
			}
			if cfg.DBPath == "" {
				return fmt.Errorf("ledger disabled (db_path is empty)")
			}
			if _, err := os.Stat(cfg.DBPath); os.IsNotExist(err) {
				fmt.Fprintln(os.Stderr, "No runs recorded yet (run 'wac run' first).")
				return nil
			}

			db, err := store.OpenDB(cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()

			color := stdoutIsTerminal()
			out := cmd.OutOrStdout()
			if runID != "" {
				return showRun(out, db, runID, color)
			}

			runs, err := db.RecentRuns(limit)
			if err != nil {
				return fmt.Errorf("list runs: %w", err)
			}
			if len(runs) == 0 {
				fmt.Fprintln(os.Stderr, "No runs recorded yet.")
				return nil
			}
			for _, r := range runs {
				writeRunLine(out, r, color)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "Show one run (id or unique prefix)")
	cmd.Flags().IntVar(&limit, "limit", 20, "Max runs to list")

	return cmd
}

// writeRunLine prints one TSV line per run: id, started, messages,
// interactions, sources, decode errors, input.
func writeRunLine(w io.Writer, r store.Run, color bool) {
	started := r.StartedAt.Local().Format("2006-01-02 15:04")
	decodeErrs := fmt.Sprint(r.DecodeErrors)
	if color {
		started = hColorDim + started + hColorReset
		if r.DecodeErrors > 0 {
			decodeErrs = hColorRed + decodeErrs + hColorReset
		}
	}
	fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%s\t%s\n",
		r.ID, started, r.Messages, r.Interactions, r.Sources, decodeErrs, r.InputDir)
}

func showRun(w io.Writer, db *store.DB, idOrPrefix string, color bool) error {
	run, err := db.GetRun(idOrPrefix)
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("run %q not found", idOrPrefix)
	}

	fmt.Fprintf(w, "Run:       %s\n", run.ID)
	fmt.Fprintf(w, "Started:   %s\n", run.StartedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Duration:  %s\n", run.FinishedAt.Sub(run.StartedAt))
	fmt.Fprintf(w, "Input:     %s\n", run.InputDir)
	fmt.Fprintf(w, "Cutoff:    %s\n", run.Cutoff.Format(table.MessageDateLayout))
	if run.Excluded != "" {
		fmt.Fprintf(w, "Excluded:  %s\n", run.Excluded)
	}
	fmt.Fprintf(w, "Archives:  %d (%d failed)\n", run.Archives, run.ArchiveErrors)
	fmt.Fprintf(w, "Chats:     %d (%d undecodable)\n", run.Sources, run.DecodeErrors)
	fmt.Fprintf(w, "Messages:  %d\n", run.Messages)
	fmt.Fprintf(w, "Daily:     %d rows\n", run.Interactions)

	sources, err := db.RunSources(run.ID)
	if err != nil {
		return fmt.Errorf("run sources: %w", err)
	}
	if len(sources) == 0 {
		return nil
	}

	fmt.Fprintln(w, "\n=== Chats ===")
	for _, s := range sources {
		if s.Error != "" {
			msg := "error: " + s.Error
			if color {
				msg = hColorRed + msg + hColorReset
			}
			fmt.Fprintf(w, "  %s  %s\n", s.Source, msg)
			continue
		}
		fmt.Fprintf(w, "  %s  [%s] lines=%d candidates=%d accepted=%d rejected=%d filtered=%d\n",
			s.Source, s.Encoding, s.Lines, s.Candidates, s.Accepted, s.Rejected, s.Filtered)
	}
	return nil
}
