package main

import (
	"fmt"
	"os"

	"github.com/Zuo-Peng/wa-contacts/internal/config"
	"github.com/Zuo-Peng/wa-contacts/internal/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var version = "dev"

var global struct {
	configPath string
	logLevel   string
	logFormat  string
}

func main() {
	rootCmd := &cobra.Command{
		Use:           "wac",
		Short:         "WhatsApp contact analyzer - build daily contact tables from exported chats",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&global.configPath, "config", "", "Config file (default ~/.config/wac/config.toml)")
	pf.StringVar(&global.logLevel, "log-level", "info", "Log level (trace/debug/info/warn/error/off)")
	pf.StringVar(&global.logFormat, "log-format", "console", "Log format (console/json)")

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(dailyCmd())
	rootCmd.AddCommand(browseCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(openCmd())
	rootCmd.AddCommand(doctorCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// setup loads the config file and applies the persistent flags that were
// set on the command line.
func setup(cmd *cobra.Command) (*config.Config, zerolog.Logger, error) {
	var cfg *config.Config
	var err error
	if global.configPath != "" {
		cfg, err = config.LoadFile(global.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = global.logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = global.logFormat
	}

	log := logger.New(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	return cfg, log, nil
}

func stdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
