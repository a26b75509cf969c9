package database

import (
	"context"
	"time"

	"invcost/metrics"
	"invcost/model"

	"go.uber.org/zap"
)

// InventoryCostQuery returns one row per part and location with the on-hand
// quantity and the part's standard cost. Zone bucketing and per-part totals
// are computed after retrieval. It takes no parameters; all filtering happens
// in memory.
const InventoryCostQuery = `
SELECT
    pt_part       AS part_id,
    pt_desc1      AS description,
    pt_dsgn_grp   AS design_group,
    pt_prod_line  AS product_line,
    pt__chr02     AS classification_code,
    ld_loc        AS location,
    SUM(qty_avail) AS qty_on_hand,
    MAX(pt_cost)   AS unit_cost
FROM part_master
JOIN location_detail ON pt_part = ld_part
WHERE qty_avail > 0
GROUP BY pt_part, pt_desc1, pt_dsgn_grp, pt_prod_line, pt__chr02, ld_loc
ORDER BY pt_part, ld_loc`

const defaultBatchSize = 500

// Source is the data source adapter: each call opens its own connection and
// releases it before returning.
type Source struct {
	strategy  Strategy
	logger    *zap.Logger
	batchSize int
	timeout   time.Duration
}

func NewSource(strategy Strategy, logger *zap.Logger, batchSize int, timeout time.Duration) *Source {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Source{
		strategy:  strategy,
		logger:    logger.With(zap.String("strategy", strategy.Name()), zap.String("target", strategy.Target())),
		batchSize: batchSize,
		timeout:   timeout,
	}
}

// FetchRawRows runs InventoryCostQuery and returns every row. Rows are read in
// chunks of the batch size but only the complete set is returned; on error
// the rows read so far are discarded.
func (s *Source) FetchRawRows(ctx context.Context) (result []model.RawCostRow, err error) {
	start := time.Now()
	defer func() {
		status := "ok"
		if err != nil {
			kind, _ := Classify(err)
			status = string(kind)
			metrics.FetchErrorsTotal.WithLabelValues(status).Inc()
		}
		metrics.FetchDuration.WithLabelValues(s.strategy.Name(), status).Observe(time.Since(start).Seconds())
	}()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	s.logger.Info("Connecting to inventory database")
	db, err := s.strategy.Connect(ctx)
	if err != nil {
		s.logger.Error("Database connection failed", zap.Error(err))
		return nil, &ConnectionError{Strategy: s.strategy.Name(), Target: s.strategy.Target(), Err: err}
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			s.logger.Warn("Closing database connection failed", zap.Error(cerr))
		}
		s.logger.Debug("Database connection closed")
	}()

	rows, err := db.QueryxContext(ctx, InventoryCostQuery)
	if err != nil {
		s.logger.Error("Inventory cost query failed", zap.Error(err))
		return nil, &QueryError{Err: err}
	}
	defer rows.Close()

	chunk := make([]model.RawCostRow, 0, s.batchSize)
	chunks := 0
	for rows.Next() {
		var r model.RawCostRow
		if err := rows.StructScan(&r); err != nil {
			s.logger.Error("Scanning inventory row failed", zap.Int("rowsRead", len(result)+len(chunk)), zap.Error(err))
			return nil, &QueryError{Err: err}
		}
		chunk = append(chunk, r)
		if len(chunk) == s.batchSize {
			result = append(result, chunk...)
			chunk = chunk[:0]
			chunks++
			s.logger.Debug("Read inventory chunk", zap.Int("chunk", chunks), zap.Int("rowsRead", len(result)))
		}
	}
	if err := rows.Err(); err != nil {
		s.logger.Error("Reading inventory rows failed", zap.Error(err))
		return nil, &QueryError{Err: err}
	}
	result = append(result, chunk...)

	metrics.RowsFetchedTotal.Add(float64(len(result)))
	s.logger.Info("Inventory rows fetched",
		zap.Int("rows", len(result)),
		zap.Duration("elapsed", time.Since(start)))
	return result, nil
}

// TestConnection opens and immediately releases a connection.
func (s *Source) TestConnection(ctx context.Context) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	db, err := s.strategy.Connect(ctx)
	if err != nil {
		s.logger.Error("Connection test failed", zap.Error(err))
		return &ConnectionError{Strategy: s.strategy.Name(), Target: s.strategy.Target(), Err: err}
	}
	if err := db.Close(); err != nil {
		s.logger.Warn("Closing database connection failed", zap.Error(err))
	}
	s.logger.Info("Connection test succeeded")
	return nil
}

// Target describes the configured connection.
func (s *Source) Target() string {
	return s.strategy.Target()
}
