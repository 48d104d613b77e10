package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/aretw0/schemata"
	loamAdapter "github.com/aretw0/schemata/pkg/adapters/loam"
	"github.com/aretw0/schemata/pkg/adapters/mcp"
	"github.com/aretw0/schemata/pkg/catalog"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes the schema catalog and the validator as MCP tools, so AI agents can
check documents before writing them.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 0, "Port to listen on (only for SSE, default from config)")
	mcpCmd.Flags().BoolP("watch", "w", false, "Reload schemas from --schema-dir on change")
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg := settings.cfg
	logger := settings.logger

	transport, _ := cmd.Flags().GetString("transport")
	port := cfg.HTTP.Port
	if cmd.Flags().Changed("port") {
		port, _ = cmd.Flags().GetInt("port")
	}
	watch, _ := cmd.Flags().GetBool("watch")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		cat *catalog.Catalog
		err error
	)
	if watch {
		if cfg.SchemaDir == "" {
			return fmt.Errorf("--watch requires --schema-dir")
		}
		loader, err := loamAdapter.Open(cfg.SchemaDir)
		if err != nil {
			return err
		}
		cat = catalog.New()
		if err := reloadCatalog(ctx, cat, loader); err != nil {
			return err
		}
		if err := watchCatalog(ctx, logger, cat, loader, nil); err != nil {
			return err
		}
	} else if cat, err = buildCatalog(cfg); err != nil {
		return err
	}

	srv := mcp.NewServer(cat, strings.TrimSpace(schemata.Version), mcp.WithLogger(logger))

	switch transport {
	case "stdio":
		// Ensure logs don't corrupt JSON-RPC on Stdout
		log.SetOutput(os.Stderr)
		logger.Info("starting schemata MCP server (stdio)")
		return srv.ServeStdio()
	case "sse":
		logger.Info("starting schemata MCP server (SSE)", "port", port)
		if err := srv.ServeSSE(ctx, port); err != nil {
			return err
		}
		logger.Info("MCP server stopped gracefully")
		return nil
	default:
		return fmt.Errorf("unknown transport %q (supported: stdio, sse)", transport)
	}
}
