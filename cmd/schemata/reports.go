package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/aretw0/schemata/internal/config"
	"github.com/aretw0/schemata/internal/presentation/output"
	"github.com/aretw0/schemata/pkg/ports"
	"github.com/spf13/cobra"
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Browse reports kept by the configured store",
}

var reportsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored report ids",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closer, err := requireStore(cmd)
		if err != nil {
			return err
		}
		defer closer()

		ids, err := store.List(cmd.Context())
		if err != nil {
			return err
		}
		for _, id := range ids {
			fmt.Fprintln(cmd.OutOrStdout(), id)
		}
		return nil
	},
}

var reportsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a stored report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closer, err := requireStore(cmd)
		if err != nil {
			return err
		}
		defer closer()

		rep, err := store.Load(cmd.Context(), args[0])
		if errors.Is(err, ports.ErrReportNotFound) {
			return fmt.Errorf("report %q not found", args[0])
		}
		if err != nil {
			return err
		}

		format, err := output.ParseFormat(settings.cfg.Format)
		if err != nil {
			return err
		}
		_, interactive := terminal(cmd.OutOrStdout())
		return output.Write(cmd.OutOrStdout(), rep, format, interactive, nil)
	},
}

var reportsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a stored report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closer, err := requireStore(cmd)
		if err != nil {
			return err
		}
		defer closer()
		return store.Delete(cmd.Context(), args[0])
	},
}

func requireStore(cmd *cobra.Command) (ports.ReportStore, func(), error) {
	store, closer, err := openStore(cmd.Context(), settings.cfg.Store, false)
	if err != nil {
		return nil, nil, err
	}
	if store == nil {
		return nil, nil, fmt.Errorf("no report store configured (use --store or store.kind in %s)", config.FileName)
	}
	return store, func() {
		if err := closer.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "close store: %v\n", err)
		}
	}, nil
}

func init() {
	rootCmd.AddCommand(reportsCmd)
	reportsCmd.AddCommand(reportsListCmd, reportsShowCmd, reportsDeleteCmd)
}
