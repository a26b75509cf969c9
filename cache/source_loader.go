package cache

import (
	"context"

	"invcost/aggregation"
	"invcost/logging"
	"invcost/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RowFetcher is the part of the data source the loader needs.
type RowFetcher interface {
	FetchRawRows(ctx context.Context) ([]model.RawCostRow, error)
}

// SourceLoader fetches raw rows and aggregates them into a new dataset.
func SourceLoader(source RowFetcher, zones aggregation.ZoneMap, logger *zap.Logger) LoadFunc {
	return func(ctx context.Context) (*model.Dataset, error) {
		rows, err := source.FetchRawRows(ctx)
		if err != nil {
			return nil, err
		}

		records, stats := aggregation.Aggregate(rows, zones)
		if len(stats.UnzonedLocations) > 0 {
			logging.DataQuality(logger, "location", "location not mapped to a zone; quantity counted, cost excluded",
				zap.Strings("locations", stats.UnzonedLocations))
		}
		if stats.DroppedParts > 0 {
			logger.Debug("Dropped parts without positive quantity", zap.Int("parts", stats.DroppedParts))
		}
		logger.Info("Aggregated inventory rows",
			zap.Int("rawRows", stats.RawRows),
			zap.Int("parts", stats.Parts))

		return &model.Dataset{
			SnapshotID: uuid.NewString(),
			Records:    records,
		}, nil
	}
}
