package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/schemata/internal/config"
	"github.com/aretw0/schemata/internal/logging"
	"github.com/aretw0/schemata/pkg/report"
	"github.com/spf13/cobra"
)

// exitError carries a process exit status out of a command.
type exitError struct {
	code int
}

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

// settings is resolved once per invocation by loadSettings.
var settings struct {
	cfg    config.Config
	logger *slog.Logger
}

var rootCmd = &cobra.Command{
	Use:   "schemata",
	Short: "schemata validates JSON datasets against collection schemas",
	Long: `schemata checks every collection file of a dataset directory against the
structural schema registered for its collection and reports each violation.

Exit status: 0 when every document is valid, 1 when at least one document is
invalid or unreadable, 2 when the dataset or configuration cannot be used.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadSettings,
}

// Execute runs the root command and returns the process exit status.
func Execute() int {
	err := rootCmd.Execute()
	if err == nil {
		return report.ExitValid
	}
	var exit *exitError
	if errors.As(err, &exit) {
		return exit.code
	}
	fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
	return report.ExitEnvironment
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Config file (default ./"+config.FileName+" when present)")
	flags.StringP("dir", "d", "", "Dataset directory")
	flags.String("schema-dir", "", "Directory of extra schema files (overrides built-in schemas by name)")
	flags.StringP("format", "f", "", "Output format: auto, text, json or markdown")
	flags.String("log-level", "", "Log level: debug, info, warn or error")
	flags.String("log-format", "", "Log format: text or json")
	flags.Int("concurrency", 0, "Files validated in parallel")
	flags.String("store", "", "Report store: none, memory, file or redis")
}

// loadSettings layers defaults, the config file, SCHEMATA_* variables and
// flags, in that order.
func loadSettings(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("dir") {
		cfg.Dataset, _ = flags.GetString("dir")
	}
	if flags.Changed("schema-dir") {
		cfg.SchemaDir, _ = flags.GetString("schema-dir")
	}
	if flags.Changed("format") {
		cfg.Format, _ = flags.GetString("format")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-format") {
		cfg.LogFormat, _ = flags.GetString("log-format")
	}
	if flags.Changed("concurrency") {
		cfg.Concurrency, _ = flags.GetInt("concurrency")
	}
	if flags.Changed("store") {
		cfg.Store.Kind, _ = flags.GetString("store")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	format, err := logging.ParseFormat(cfg.LogFormat)
	if err != nil {
		return err
	}

	settings.cfg = cfg
	settings.logger = logging.NewWithFormat(os.Stderr, level, format)
	slog.SetDefault(settings.logger)
	return nil
}
