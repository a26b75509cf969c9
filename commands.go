package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"invcost/automation"
	"invcost/database"
	"invcost/loader"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Test the database connection and exit non-zero on failure",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer logger.Sync()

		source := newSource(cfg, logger)
		if err := source.TestConnection(cmd.Context()); err != nil {
			_, msg := database.Classify(err)
			fmt.Fprintln(cmd.ErrOrStderr(), msg)
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Connection to %s OK\n", source.Target())
		return nil
	},
}

var (
	seedDBPath         string
	seedPartMaster     string
	seedLocationDetail string
	seedEncoding       string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load part_master / location_detail CSV extracts into a SQLite snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer logger.Sync()

		path := seedDBPath
		if path == "" {
			path = cfg.DBName
		}
		n, err := seedSnapshot(path, seedPartMaster, seedLocationDetail, seedEncoding, logger)
		if err != nil {
			logger.Error("Seeding snapshot failed", zap.String("db", path), zap.Error(err))
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d rows into %s\n", n, path)
		return nil
	},
}

// seedSnapshot creates or updates the SQLite snapshot at path from the given
// CSV files. Either file may be empty to skip it.
func seedSnapshot(path, partMasterCSV, locationDetailCSV, encoding string, logger *zap.Logger) (int, error) {
	db, err := sqlx.Open("sqlite3", "file:"+path+"?_busy_timeout=5000")
	if err != nil {
		return 0, fmt.Errorf("failed to open snapshot %s: %w", path, err)
	}
	defer db.Close()

	if err := loader.InitSnapshot(db); err != nil {
		return 0, err
	}

	total := 0
	steps := []struct {
		file string
		load func(*sqlx.DB, io.Reader, string, *zap.Logger) (int, error)
	}{
		{partMasterCSV, loader.LoadPartMaster},
		{locationDetailCSV, loader.LoadLocationDetail},
	}
	for _, step := range steps {
		if step.file == "" {
			continue
		}
		f, err := os.Open(step.file)
		if err != nil {
			return total, fmt.Errorf("failed to open %s: %w", step.file, err)
		}
		n, err := step.load(db, f, encoding, logger)
		f.Close()
		if err != nil {
			return total, fmt.Errorf("%s: %w", step.file, err)
		}
		total += n
	}
	return total, nil
}

var (
	captureURL     string
	captureOut     string
	captureTimeout time.Duration
)

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Save a PNG screenshot of a running dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer logger.Sync()

		url := captureURL
		if url == "" {
			url = automation.DashboardURL(cfg.ListenAddr)
		}
		out := captureOut
		if out == "" {
			out = fmt.Sprintf("inventory_dashboard_%s_%s.png", cfg.SourceID, time.Now().Format("20060102_150405"))
		}
		if err := automation.CaptureDashboard(cmd.Context(), url, out, captureTimeout); err != nil {
			logger.Error("Dashboard capture failed", zap.String("url", url), zap.Error(err))
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", out)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedDBPath, "db", "", "SQLite snapshot path (default DB_NAME)")
	seedCmd.Flags().StringVar(&seedPartMaster, "part-master", "", "part_master CSV file")
	seedCmd.Flags().StringVar(&seedLocationDetail, "location-detail", "", "location_detail CSV file")
	seedCmd.Flags().StringVar(&seedEncoding, "encoding", "utf-8", "input encoding, e.g. shift_jis or windows-1252")

	captureCmd.Flags().StringVar(&captureURL, "url", "", "dashboard URL (default from LISTEN_ADDR)")
	captureCmd.Flags().StringVar(&captureOut, "out", "", "output PNG path")
	captureCmd.Flags().DurationVar(&captureTimeout, "timeout", time.Minute, "page load timeout")
}
