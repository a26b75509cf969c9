package loader

import (
	_ "embed"
	"fmt"
	"io"
	"strings"

	"invcost/parsers"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

//go:embed schema.sql
var snapshotSchema string

// InitSnapshot applies the snapshot schema. It is safe to run repeatedly.
func InitSnapshot(db *sqlx.DB) error {
	if _, err := db.Exec(snapshotSchema); err != nil {
		return fmt.Errorf("failed to apply snapshot schema: %w", err)
	}
	return nil
}

// decodeInput wraps r with a decoder for legacy ERP extracts. An empty name or
// "utf-8" leaves the input untouched.
func decodeInput(r io.Reader, encodingName string) (io.Reader, error) {
	name := strings.ToLower(strings.TrimSpace(encodingName))
	if name == "" || name == "utf-8" || name == "utf8" {
		return r, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unsupported input encoding %q: %w", encodingName, err)
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}

// LoadPartMaster parses a part_master CSV and upserts it in one transaction.
func LoadPartMaster(db *sqlx.DB, r io.Reader, encodingName string, logger *zap.Logger) (int, error) {
	in, err := decodeInput(r, encodingName)
	if err != nil {
		return 0, err
	}
	records, err := parsers.ParsePartMasterCSV(in)
	if err != nil {
		return 0, fmt.Errorf("failed to parse part_master CSV: %w", err)
	}

	err = withTx(db, "part_master", logger, func(tx *sqlx.Tx) error {
		stmt, err := tx.Preparex(`INSERT OR REPLACE INTO part_master
			(pt_part, pt_desc1, pt_dsgn_grp, pt_prod_line, pt__chr02, pt_cost)
			VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare part_master insert: %w", err)
		}
		defer stmt.Close()

		for _, rec := range records {
			if _, err := stmt.Exec(rec.Part, nullIfEmpty(rec.Description), nullIfEmpty(rec.DesignGroup),
				nullIfEmpty(rec.ProductLine), nullIfEmpty(rec.Chr02), rec.Cost); err != nil {
				return fmt.Errorf("failed to insert part %s: %w", rec.Part, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	logger.Info("Loaded part_master", zap.Int("rows", len(records)))
	return len(records), nil
}

// LoadLocationDetail parses a location_detail CSV and upserts it in one transaction.
func LoadLocationDetail(db *sqlx.DB, r io.Reader, encodingName string, logger *zap.Logger) (int, error) {
	in, err := decodeInput(r, encodingName)
	if err != nil {
		return 0, err
	}
	records, err := parsers.ParseLocationDetailCSV(in)
	if err != nil {
		return 0, fmt.Errorf("failed to parse location_detail CSV: %w", err)
	}

	err = withTx(db, "location_detail", logger, func(tx *sqlx.Tx) error {
		stmt, err := tx.Preparex(`INSERT OR REPLACE INTO location_detail
			(ld_part, ld_loc, ld_lot, qty_avail) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare location_detail insert: %w", err)
		}
		defer stmt.Close()

		for _, rec := range records {
			if _, err := stmt.Exec(rec.Part, rec.Location, rec.Lot, rec.QtyAvail); err != nil {
				return fmt.Errorf("failed to insert location %s/%s: %w", rec.Part, rec.Location, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	logger.Info("Loaded location_detail", zap.Int("rows", len(records)))
	return len(records), nil
}

// withTx commits when fn succeeds and rolls back on error or panic.
func withTx(db *sqlx.DB, table string, logger *zap.Logger, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		} else if err != nil {
			logger.Warn("Rolling back snapshot load", zap.String("table", table), zap.Error(err))
			tx.Rollback()
		} else {
			err = tx.Commit()
			if err != nil {
				logger.Error("Committing snapshot load failed", zap.String("table", table), zap.Error(err))
			}
		}
	}()

	return fn(tx)
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
