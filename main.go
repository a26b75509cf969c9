package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"invcost/aggregation"
	"invcost/automation"
	"invcost/cache"
	"invcost/config"
	"invcost/database"
	"invcost/logging"
	"invcost/render"
	"invcost/valuation"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var rootCmd = &cobra.Command{
	Use:          "invcost",
	Short:        "Inventory COGS dashboard over an ERP database",
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard web server (default)",
	RunE:  runServe,
}

func main() {
	rootCmd.AddCommand(serveCmd, checkCmd, seedCmd, captureCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads configuration and builds the logger every command shares.
func setup() (config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger, err := logging.NewLogger(logging.Config{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		OutputPath:  cfg.LogOutput,
		Development: cfg.LogDevelopment,
	})
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, logger, nil
}

func newSource(cfg config.Config, logger *zap.Logger) *database.Source {
	return database.NewSource(database.NewStrategy(cfg), logger, cfg.FetchBatchSize, cfg.QueryTimeout)
}

func newService(cfg config.Config, source *database.Source, logger *zap.Logger) (*valuation.Service, error) {
	zones, err := aggregation.NewZoneMap(cfg.ZoneMap)
	if err != nil {
		return nil, err
	}
	tmpl, err := render.ParsePageTemplate()
	if err != nil {
		return nil, err
	}
	return &valuation.Service{
		Cache:    cache.New(cache.SourceLoader(source, zones, logger), cfg.CacheTTL, logger),
		Source:   source,
		Template: tmpl,
		Logger:   logger,
		SourceID: cfg.SourceID,
		TopN:     cfg.TopN,
		Now:      time.Now,
	}, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	source := newSource(cfg, logger)
	svc, err := newService(cfg, source, logger)
	if err != nil {
		logger.Error("Failed to build dashboard", zap.Error(err))
		return err
	}

	mux := http.NewServeMux()
	SetupRoutes(mux, svc)

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Dashboard starting",
			zap.String("addr", cfg.ListenAddr),
			zap.String("source", source.Target()),
			zap.Duration("cacheTtl", cfg.CacheTTL))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	if cfg.OpenBrowser {
		automation.OpenBrowser(automation.DashboardURL(cfg.ListenAddr))
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	// SIGHUP drops the cached dataset, e.g. after `invcost seed` rewrote the snapshot.
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)

wait:
	for {
		select {
		case err := <-errCh:
			if err != nil {
				logger.Error("Server failed", zap.Error(err))
				return err
			}
			return nil
		case <-hup:
			svc.Cache.Invalidate()
		case <-quit:
			break wait
		}
	}

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
		return err
	}
	logger.Info("Server stopped")
	return nil
}
