package model

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Zone is the storage-zone classification a location code maps to.
type Zone string

const (
	ZoneWarehouse    Zone = "WAREHOUSE"
	ZoneWIP          Zone = "WIP"
	ZoneExternalPick Zone = "EXTERNAL_PICK"
)

// ParseZone accepts the zone names case-insensitively.
func ParseZone(s string) (Zone, error) {
	switch Zone(strings.ToUpper(strings.TrimSpace(s))) {
	case ZoneWarehouse:
		return ZoneWarehouse, nil
	case ZoneWIP:
		return ZoneWIP, nil
	case ZoneExternalPick:
		return ZoneExternalPick, nil
	}
	return "", fmt.Errorf("unknown zone %q", s)
}

// RawCostRow is one (part, location) row returned by the inventory cost query.
type RawCostRow struct {
	PartID             string          `db:"part_id"`
	Description        sql.NullString  `db:"description"`
	DesignGroup        sql.NullString  `db:"design_group"`
	ProductLine        sql.NullString  `db:"product_line"`
	ClassificationCode sql.NullString  `db:"classification_code"`
	Location           string          `db:"location"`
	QtyOnHand          float64         `db:"qty_on_hand"`
	UnitCost           sql.NullFloat64 `db:"unit_cost"`
}

// PartCostRecord is one stock-keeping part after aggregation.
// Currency fields keep full precision; rounding is a display concern.
type PartCostRecord struct {
	PartID             string  `json:"partId"`
	Description        string  `json:"description"`
	DesignGroup        string  `json:"designGroup"`
	ProductLine        string  `json:"productLine"`
	ClassificationCode string  `json:"classificationCode"`
	QuantityOnHand     float64 `json:"quantityOnHand"`
	TotalCost          float64 `json:"totalCost"`
	CostWarehouse      float64 `json:"costWarehouse"`
	CostWIP            float64 `json:"costWip"`
	CostExlPick        float64 `json:"costExlPick"`
}

// Dataset is the aggregated, cached record set. Records are sorted by
// TotalCost descending and must not be modified once the dataset is published.
type Dataset struct {
	SnapshotID string           `json:"snapshotId"`
	LoadedAt   time.Time        `json:"loadedAt"`
	Records    []PartCostRecord `json:"records"`
}

// Len returns the number of records, treating a nil dataset as empty.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}
