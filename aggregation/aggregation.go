package aggregation

import (
	"database/sql"
	"sort"

	"invcost/model"
)

// Stats describes one aggregation run for logging.
type Stats struct {
	RawRows int
	Parts   int
	// DroppedParts counts parts whose total on-hand quantity was not positive.
	DroppedParts int
	// UnzonedLocations lists location codes that map to no zone. Their
	// quantity counts toward the part's quantity but their cost toward no
	// bucket and therefore not toward TotalCost.
	UnzonedLocations []string
}

// partAccumulator collects one part's rows. seen tracks which categorical
// fields already took their first non-null value.
type partAccumulator struct {
	record model.PartCostRecord
	seen   [4]bool
}

// Aggregate turns (part, location) rows into one record per part with the
// quantity and the three zone costs summed, drops parts without positive
// quantity, and sorts by TotalCost descending. Ties keep first-appearance
// order. An empty input yields an empty, non-nil slice.
func Aggregate(rows []model.RawCostRow, zones ZoneMap) ([]model.PartCostRecord, Stats) {
	stats := Stats{RawRows: len(rows)}

	byPart := make(map[string]*partAccumulator)
	var order []string
	unzoned := make(map[string]bool)

	for _, row := range rows {
		acc, ok := byPart[row.PartID]
		if !ok {
			acc = &partAccumulator{record: model.PartCostRecord{PartID: row.PartID}}
			byPart[row.PartID] = acc
			order = append(order, row.PartID)
		}
		acc.absorbAttributes(row)

		acc.record.QuantityOnHand += row.QtyOnHand
		cost := row.QtyOnHand * row.UnitCost.Float64

		zone, ok := zones.ZoneFor(row.Location)
		if !ok {
			unzoned[row.Location] = true
			continue
		}
		switch zone {
		case model.ZoneWarehouse:
			acc.record.CostWarehouse += cost
		case model.ZoneWIP:
			acc.record.CostWIP += cost
		case model.ZoneExternalPick:
			acc.record.CostExlPick += cost
		}
	}

	records := make([]model.PartCostRecord, 0, len(order))
	for _, id := range order {
		rec := byPart[id].record
		if rec.QuantityOnHand <= 0 {
			stats.DroppedParts++
			continue
		}
		rec.TotalCost = rec.CostWarehouse + rec.CostWIP + rec.CostExlPick
		records = append(records, rec)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].TotalCost > records[j].TotalCost
	})

	stats.Parts = len(records)
	for loc := range unzoned {
		stats.UnzonedLocations = append(stats.UnzonedLocations, loc)
	}
	sort.Strings(stats.UnzonedLocations)

	return records, stats
}

func (a *partAccumulator) absorbAttributes(row model.RawCostRow) {
	fields := [4]struct {
		dst *string
		src sql.NullString
	}{
		{&a.record.Description, row.Description},
		{&a.record.DesignGroup, row.DesignGroup},
		{&a.record.ProductLine, row.ProductLine},
		{&a.record.ClassificationCode, row.ClassificationCode},
	}
	for i, f := range fields {
		if a.seen[i] || !f.src.Valid {
			continue
		}
		*f.dst = f.src.String
		a.seen[i] = true
	}
}
