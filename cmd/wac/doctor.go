package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/Zuo-Peng/wa-contacts/internal/decode"
	"github.com/Zuo-Peng/wa-contacts/internal/scan"
	"github.com/Zuo-Peng/wa-contacts/internal/selftest"
	"github.com/Zuo-Peng/wa-contacts/internal/store"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func doctorCmd() *cobra.Command {
	var inputDir string

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Self-check: verify input dir, archives, encodings and the run ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := setup(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("input-dir") {
				cfg.InputDir = inputDir
			}

			fmt.Println("=== Input ===")
			checkDir("Archives", cfg.InputDir)

			fmt.Println("\n=== Encodings ===")
			resolver, err := decode.NewResolver(cfg.Encodings, zerolog.Nop())
			if err != nil {
				fmt.Printf("  error: %v\n", err)
			} else {
				fmt.Printf("  Candidates: %s (OK)\n", strings.Join(resolver.Names(), ", "))
			}

			fmt.Println("\n=== Archives ===")
			archives, err := scan.ScanArchives(cfg.InputDir)
			if err != nil {
				fmt.Printf("  scan error: %v\n", err)
			} else {
				fmt.Printf("  Zip files: %d\n", len(archives))
				for _, a := range archives {
					checkArchive(a, resolver)
				}
			}

			fmt.Println("\n=== Self-test ===")
			dir, err := os.MkdirTemp("", "wac-doctor-")
			if err != nil {
				return fmt.Errorf("self-test dir: %w", err)
			}
			defer os.RemoveAll(dir)
			if err := selftest.Run(dir); err != nil {
				fmt.Printf("  FAILED: %v\n", err)
			} else {
				fmt.Printf("  %d checks passed\n", selftest.Count())
			}

			fmt.Println("\n=== Ledger ===")
			if cfg.DBPath == "" {
				fmt.Println("  Status: disabled (db_path is empty)")
				return nil
			}
			fmt.Printf("  Path: %s\n", cfg.DBPath)
			if _, err := os.Stat(cfg.DBPath); os.IsNotExist(err) {
				fmt.Println("  Status: NOT FOUND (created by the first 'wac run')")
				return nil
			}

			db, err := store.OpenDB(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer db.Close()

			ver, err := db.SchemaVersion()
			if err != nil {
				return fmt.Errorf("schema version: %w", err)
			}
			runCount, err := db.RunCount()
			if err != nil {
				return fmt.Errorf("count runs: %w", err)
			}
			fmt.Printf("  Schema: v%s\n", ver)
			fmt.Printf("  Runs:   %d\n", runCount)

			latest, err := db.LatestRun()
			if err != nil {
				return fmt.Errorf("latest run: %w", err)
			}
			if latest != nil {
				fmt.Printf("  Latest: %s (%s, %d messages)\n",
					latest.ID, latest.StartedAt.Local().Format("2006-01-02 15:04"), latest.Messages)
			}

			if info, err := os.Stat(cfg.DBPath); err == nil {
				sizeKB := float64(info.Size()) / 1024
				fmt.Printf("\n=== DB Size: %.1f KB ===\n", sizeKB)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&inputDir, "input-dir", "conversations", "Directory with exported chat archives (.zip)")

	return cmd
}

func checkDir(name, path string) {
	if info, err := os.Stat(path); err != nil {
		fmt.Printf("  %s: %s (NOT FOUND)\n", name, path)
	} else if !info.IsDir() {
		fmt.Printf("  %s: %s (NOT A DIRECTORY)\n", name, path)
	} else {
		fmt.Printf("  %s: %s (OK)\n", name, path)
	}
}

// checkArchive prints one line per chat in the archive with the encoding
// the resolver picks and the charset chardet guesses.
func checkArchive(a scan.Archive, resolver *decode.Resolver) {
	sources, err := scan.Extract(a)
	if err != nil {
		fmt.Printf("  %s: ERROR %v\n", a.Name, err)
		return
	}
	if len(sources) == 0 {
		fmt.Printf("  %s: no .txt chats\n", a.Name)
		return
	}
	for _, src := range sources {
		guess := decode.Guess(src.Data)
		if guess == "" {
			guess = "?"
		}
		status := "no resolver"
		if resolver != nil {
			if d, err := resolver.Decode(src.Label(), src.Data); err != nil {
				status = "UNDECODABLE"
			} else {
				status = fmt.Sprintf("%s, %d lines", d.Encoding, len(d.Lines))
			}
		}
		fmt.Printf("  %s: %s (guess %s)\n", src.Label(), status, guess)
	}
}
