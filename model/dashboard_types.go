package model

import "fmt"

// Metric names one of the four cost columns a view can be driven by.
type Metric string

const (
	MetricTotalCost     Metric = "total_cost"
	MetricCostWarehouse Metric = "cost_warehouse"
	MetricCostWIP       Metric = "cost_wip"
	MetricCostExlPick   Metric = "cost_exl_pick"
)

// Metrics lists the selectable metrics in display order.
var Metrics = []Metric{MetricTotalCost, MetricCostWarehouse, MetricCostWIP, MetricCostExlPick}

// ParseMetric maps a request value to a Metric. An empty value selects total cost.
func ParseMetric(s string) (Metric, error) {
	if s == "" {
		return MetricTotalCost, nil
	}
	for _, m := range Metrics {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown cost metric %q", s)
}

// Label is the human-readable metric name.
func (m Metric) Label() string {
	switch m {
	case MetricCostWarehouse:
		return "Warehouse COGS"
	case MetricCostWIP:
		return "WIP COGS"
	case MetricCostExlPick:
		return "External Pick COGS"
	default:
		return "Total COGS"
	}
}

// Value reads the metric's column from a record.
func (m Metric) Value(r PartCostRecord) float64 {
	switch m {
	case MetricCostWarehouse:
		return r.CostWarehouse
	case MetricCostWIP:
		return r.CostWIP
	case MetricCostExlPick:
		return r.CostExlPick
	default:
		return r.TotalCost
	}
}

// FilterCriteria is the per-request selection. An empty slice places no
// constraint on that dimension.
type FilterCriteria struct {
	DesignGroups        []string `json:"designGroups"`
	ProductLines        []string `json:"productLines"`
	ClassificationCodes []string `json:"classificationCodes"`
	Metric              Metric   `json:"metric"`
}

// Summary holds the headline figures for a filtered view.
type Summary struct {
	UniquePartCount int     `json:"uniquePartCount"`
	MetricSum       float64 `json:"metricSum"`
	MetricMean      float64 `json:"metricMean"`
	QuantitySum     float64 `json:"quantitySum"`
}

// GroupTotal is one design group's share of the chosen metric.
type GroupTotal struct {
	DesignGroup string  `json:"designGroup"`
	MetricSum   float64 `json:"metricSum"`
	Share       float64 `json:"share"`
}

// FilterOptions lists the distinct values available to each selector.
type FilterOptions struct {
	DesignGroups        []string `json:"designGroups"`
	ProductLines        []string `json:"productLines"`
	ClassificationCodes []string `json:"classificationCodes"`
}

// CostReportColumns is the header of the CSV/XLSX export, in column order.
var CostReportColumns = []string{
	"part_id",
	"description",
	"design_group",
	"product_line",
	"classification_code",
	"quantity_on_hand",
	"total_cost",
	"cost_warehouse",
	"cost_wip",
	"cost_exl_pick",
}
