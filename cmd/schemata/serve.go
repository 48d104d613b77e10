package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/aretw0/schemata"
	httpAdapter "github.com/aretw0/schemata/pkg/adapters/http"
	loamAdapter "github.com/aretw0/schemata/pkg/adapters/loam"
	"github.com/aretw0/schemata/pkg/catalog"
	"github.com/aretw0/schemata/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the validation HTTP server",
	Long: `Exposes the schema catalog and ad-hoc validation as a JSON API, together with
stored reports and Prometheus metrics. With --watch the schema directory is
reloaded on every change and clients on /events are notified.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (default from config, 8080)")
	serveCmd.Flags().BoolP("watch", "w", false, "Reload schemas from --schema-dir on change")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := settings.cfg
	logger := settings.logger

	port := strconv.Itoa(cfg.HTTP.Port)
	if cmd.Flags().Changed("port") {
		port, _ = cmd.Flags().GetString("port")
	}
	watch, _ := cmd.Flags().GetBool("watch")
	if watch && cfg.SchemaDir == "" {
		return fmt.Errorf("--watch requires --schema-dir")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		cat    *catalog.Catalog
		loader *loamAdapter.Loader
		err    error
	)
	if watch {
		loader, err = loamAdapter.Open(cfg.SchemaDir)
		if err != nil {
			return err
		}
		cat = catalog.New()
		if err := reloadCatalog(ctx, cat, loader); err != nil {
			return err
		}
	} else if cat, err = buildCatalog(cfg); err != nil {
		return err
	}

	store, closer, err := openStore(ctx, cfg.Store, true)
	if err != nil {
		return err
	}
	defer closer.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(reg)

	server := httpAdapter.New(httpAdapter.Config{
		Catalog:  cat,
		Store:    store,
		Metrics:  metrics,
		Gatherer: reg,
		Version:  strings.TrimSpace(schemata.Version),
		Logger:   logger,
	})

	if watch {
		notify := func(id string) { server.Streams.Broadcast("reload:" + id) }
		if err := watchCatalog(ctx, logger, cat, loader, notify); err != nil {
			return err
		}
	}

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)

	go func() {
		logger.Info("starting schemata server", "addr", srv.Addr, "schemas", cat.Len(), "watch", watch)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		logger.Info("shutdown signal received")

		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown did not complete", "timeout", 5*time.Second, "err", err)
			if err := srv.Close(); err != nil {
				logger.Error("error killing server", "err", err)
			}
		}
		logger.Info("schemata server stopped gracefully")
		return nil
	}
}
