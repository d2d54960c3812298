package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Zuo-Peng/wa-contacts/internal/analyze"
	"github.com/Zuo-Peng/wa-contacts/internal/collect"
	"github.com/Zuo-Peng/wa-contacts/internal/config"
	"github.com/Zuo-Peng/wa-contacts/internal/daily"
	"github.com/Zuo-Peng/wa-contacts/internal/parse"
	"github.com/Zuo-Peng/wa-contacts/internal/render"
	"github.com/Zuo-Peng/wa-contacts/internal/selftest"
	"github.com/Zuo-Peng/wa-contacts/internal/store"
	"github.com/Zuo-Peng/wa-contacts/internal/table"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const headRows = 5

type runFlags struct {
	inputDir     string
	messagesCSV  string
	dailyCSV     string
	days         int
	exclude      string
	skipTests    bool
	skipMessages bool
	noLedger     bool
}

// apply copies the flags set on the command line over the config values.
func (f *runFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("input-dir") {
		cfg.InputDir = f.inputDir
	}
	if flags.Changed("messages-csv") {
		cfg.MessagesCSV = f.messagesCSV
	}
	if flags.Changed("daily-csv") {
		cfg.DailyCSV = f.dailyCSV
	}
	if flags.Changed("days") {
		cfg.Days = f.days
	}
	if flags.Changed("exclude") {
		cfg.Exclude = f.exclude
	}
}

func runCmd() *cobra.Command {
	var f runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Extract recent messages from chat archives and build the daily contact table",
		Long: `Reads every .zip export in the input directory, decodes each chat,
keeps the messages newer than --days days, and writes two tables:

  messages CSV  Name,Date,Message   one row per message, sorted by time
  daily CSV     Name,Date           one row per person per day contacted`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.days < 0 {
				return fmt.Errorf("--days must not be negative")
			}
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

	cmd.Flags().StringVar(&f.inputDir, "input-dir", "conversations", "Directory with exported chat archives (.zip)")
	cmd.Flags().StringVar(&f.messagesCSV, "messages-csv", "whatsapp_messages.csv", "Messages table output")
	cmd.Flags().StringVar(&f.dailyCSV, "daily-csv", "daily_interactions.csv", "Daily interactions table output")
	cmd.Flags().IntVar(&f.days, "days", 30, "Keep messages from the last N days")
	cmd.Flags().StringVar(&f.exclude, "exclude", "", "Drop messages whose sender contains this text")
	cmd.Flags().BoolVar(&f.skipTests, "skip-tests", false, "Skip the built-in self-test")
	cmd.Flags().BoolVar(&f.skipMessages, "skip-messages", false, "Reuse the existing messages CSV instead of reading archives")
	cmd.Flags().BoolVar(&f.noLedger, "no-ledger", false, "Do not record this run in the ledger database")

	return cmd
}

// pipeline is one execution of run (or daily).
type pipeline struct {
	cfg   *config.Config
	flags runFlags
	out   io.Writer
	color bool
	now   func() time.Time
	log   zerolog.Logger
}

func (p pipeline) run() error {
	started := p.now()

	if !p.flags.skipTests {
		if err := p.selfTest(); err != nil {
			return err
		}
	}

	criteria := collect.CriteriaFor(started, p.cfg.Days, p.cfg.Exclude)

	var msgs []parse.Message
	var res *analyze.Result
	if p.flags.skipMessages {
		var err error
		msgs, err = table.LoadMessages(p.cfg.MessagesCSV)
		if err != nil {
			return fmt.Errorf("reuse messages table: %w", err)
		}
		p.log.Info().Str("path", p.cfg.MessagesCSV).Int("messages", len(msgs)).Msg("loaded messages table")
	} else {
		p.log.Info().
			Str("input_dir", p.cfg.InputDir).
			Str("cutoff", criteria.Cutoff.Format(table.MessageDateLayout)).
			Str("exclude", criteria.ExcludedSender).
			Msg("reading archives")

		var err error
		res, err = analyze.Run(analyze.Options{
			InputDir:  p.cfg.InputDir,
			Criteria:  criteria,
			Encodings: p.cfg.Encodings,
		}, p.log)
		if err != nil {
			return err
		}
		msgs = res.Messages
		p.log.Info().Msgf("analysis done: %s", res.Stats)
	}

	if len(msgs) == 0 {
		if p.flags.skipMessages {
			fmt.Fprintf(p.out, "No messages in %s.\n", p.cfg.MessagesCSV)
		} else {
			fmt.Fprintf(p.out, "No messages found from the last %d days.\n", p.cfg.Days)
		}
		p.record(started, criteria, res, 0, nil)
		return nil
	}

	if !p.flags.skipMessages {
		if err := table.SaveMessages(p.cfg.MessagesCSV, msgs); err != nil {
			return fmt.Errorf("save messages: %w", err)
		}
		p.log.Info().Str("path", p.cfg.MessagesCSV).Int("rows", len(msgs)).Msg("saved messages table")
	}

	rows := daily.Reduce(msgs)
	if err := table.SaveDaily(p.cfg.DailyCSV, rows); err != nil {
		return fmt.Errorf("save daily table: %w", err)
	}
	p.log.Info().Str("path", p.cfg.DailyCSV).Int("rows", len(rows)).Msg("saved daily table")

	p.report(msgs, rows)
	p.record(started, criteria, res, len(msgs), rows)
	return nil
}

func (p pipeline) selfTest() error {
	dir, err := os.MkdirTemp("", "wac-selftest-")
	if err != nil {
		return fmt.Errorf("self-test: %w", err)
	}
	defer os.RemoveAll(dir)

	if err := selftest.Run(dir); err != nil {
		return fmt.Errorf("self-test failed (use --skip-tests to bypass): %w", err)
	}
	p.log.Info().Int("checks", selftest.Count()).Msg("self-test passed")
	return nil
}

func (p pipeline) report(msgs []parse.Message, rows []daily.Interaction) {
	opts := render.Options{Color: p.color, MaxWidth: 40}

	fmt.Fprintf(p.out, "=== Messages (%d rows, %s) ===\n", len(msgs), p.cfg.MessagesCSV)
	fmt.Fprint(p.out, render.MessagesHead(msgs, headRows))

	fmt.Fprintf(p.out, "\n=== Daily interactions (%d rows, %s) ===\n", len(rows), p.cfg.DailyCSV)
	fmt.Fprint(p.out, render.DailyHead(rows, headRows))

	contacts := render.Contacts(rows)
	fmt.Fprintf(p.out, "\n=== Contacts (%d) ===\n", len(contacts))
	fmt.Fprint(p.out, render.ContactTable(contacts, opts))
}

// record writes the run to the ledger unless it is disabled. Ledger
// failures are logged only; the tables are already on disk.
func (p pipeline) record(started time.Time, criteria collect.Criteria, res *analyze.Result, messages int, rows []daily.Interaction) {
	if p.flags.noLedger || p.cfg.DBPath == "" {
		return
	}

	db, err := store.OpenDB(p.cfg.DBPath)
	if err != nil {
		p.log.Error().Err(err).Str("db", p.cfg.DBPath).Msg("ledger unavailable")
		return
	}
	defer db.Close()

	run := store.Run{
		StartedAt:    started,
		FinishedAt:   p.now(),
		InputDir:     p.cfg.InputDir,
		Cutoff:       criteria.Cutoff,
		Excluded:     criteria.ExcludedSender,
		Interactions: len(rows),
	}
	var sources []store.SourceRow
	if res != nil {
		run.Archives = res.Stats.Archives
		run.ArchiveErrors = res.Stats.ArchiveErrors
		run.Sources = res.Stats.Sources
		run.DecodeErrors = res.Stats.DecodeErrors
		run.Messages = res.Stats.Messages
		sources = sourceRows(res.Sources)
	} else {
		run.InputDir = p.cfg.MessagesCSV
		run.Messages = messages
	}

	id, err := db.RecordRun(run, sources, rows)
	if err != nil {
		p.log.Error().Err(err).Msg("record run")
		return
	}
	p.log.Info().Str("run", id).Str("db", p.cfg.DBPath).Msg("run recorded")
}

func sourceRows(reports []analyze.SourceReport) []store.SourceRow {
	out := make([]store.SourceRow, 0, len(reports))
	for _, r := range reports {
		row := store.SourceRow{
			Source:     r.Source,
			Encoding:   r.Encoding,
			Lines:      r.Lines,
			Candidates: r.Candidates,
			Accepted:   r.Accepted,
			Rejected:   r.Rejected,
			Filtered:   r.Filtered,
		}
		if r.Err != nil {
			row.Error = r.Err.Error()
		}
		out = append(out, row)
	}
	return out
}
