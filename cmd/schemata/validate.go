package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/aretw0/schemata"
	"github.com/aretw0/schemata/internal/presentation/output"
	"github.com/aretw0/schemata/internal/presentation/tui"
	"github.com/aretw0/schemata/pkg/observability"
	"github.com/aretw0/schemata/pkg/report"
	"github.com/aretw0/schemata/pkg/runner"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [dir]",
	Short: "Validate every collection file of a dataset directory",
	Long: `Reads each *.json file of the dataset directory, selects the schema named
after the file and reports every document that violates it. Files without a
registered schema are skipped.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().Bool("no-banner", false, "Do not print the banner on interactive terminals")
	validateCmd.Flags().String("metrics-file", "", "Write run metrics in Prometheus text format to this file")
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg := settings.cfg
	logger := settings.logger

	dir := cfg.Dataset
	if len(args) > 0 {
		dir = args[0]
	}

	format, err := output.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	outFile, interactive := terminal(out)
	noBanner, _ := cmd.Flags().GetBool("no-banner")
	if interactive && !noBanner && format.Resolve(interactive) == output.FormatText {
		tui.PrintBanner(out, strings.TrimSpace(schemata.Version))
	}

	cat, err := buildCatalog(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closer, err := openStore(ctx, cfg.Store, false)
	if err != nil {
		return err
	}
	defer closer.Close()

	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)

	pub := newPublisher(cfg.Kafka, logger, metrics)
	defer pub.Close()

	r := runner.New(runnerOptions(cfg, logger, cat, store, pub, metrics)...)
	rep, err := r.Run(ctx, dir)
	if metricsFile, _ := cmd.Flags().GetString("metrics-file"); metricsFile != "" {
		if werr := prometheus.WriteToTextfile(metricsFile, reg); werr != nil {
			logger.Warn("metrics not written", "path", metricsFile, "err", werr)
		}
	}
	if err != nil {
		if rep == nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			return &exitError{code: report.ExitEnvironment}
		}
		if errors.Is(err, runner.ErrPersist) {
			logger.Warn("report not persisted", "id", rep.ID, "err", err)
		}
	}

	var render func(string) (string, error)
	if format == output.FormatMarkdown && interactive {
		render, err = tui.NewRenderer(tui.Width(outFile))
		if err != nil {
			logger.Warn("markdown renderer unavailable, printing raw markdown", "err", err)
			render = nil
		}
	}
	if err := output.Write(out, rep, format, interactive, render); err != nil {
		return err
	}

	if code := rep.Outcome().ExitCode(); code != report.ExitValid {
		return &exitError{code: code}
	}
	return nil
}

// terminal reports whether w is a terminal, returning it as a file if so.
func terminal(w io.Writer) (*os.File, bool) {
	f, ok := w.(*os.File)
	if !ok || !tui.IsTerminal(f) {
		return nil, false
	}
	return f, true
}
