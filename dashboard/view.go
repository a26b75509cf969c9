package dashboard

import (
	"time"

	"invcost/model"
)

// State is the presentation state of a dashboard response.
type State string

const (
	StateOK                State = "ok"
	StateConnectionError   State = "connection_error"
	StateQueryError        State = "query_error"
	StateNoData            State = "no_data"
	StateNoDataAfterFilter State = "no_data_after_filter"
)

const (
	noDataMessage            = "The inventory query returned no parts with positive on-hand quantity."
	noDataAfterFilterMessage = "No parts match the selected filters."
)

// View is everything one dashboard render or JSON response needs.
type View struct {
	State       State                  `json:"state"`
	Message     string                 `json:"message,omitempty"`
	SnapshotID  string                 `json:"snapshotId,omitempty"`
	LoadedAt    time.Time              `json:"loadedAt"`
	Criteria    model.FilterCriteria   `json:"criteria"`
	MetricLabel string                 `json:"metricLabel"`
	Options     model.FilterOptions    `json:"options"`
	Summary     model.Summary          `json:"summary"`
	Groups      []model.GroupTotal     `json:"groups"`
	Top         []model.PartCostRecord `json:"top"`
	Records     []model.PartCostRecord `json:"records"`
}

// BuildView filters the dataset and computes every figure for criteria. An
// empty dataset and an empty filter result get their own states.
func BuildView(ds *model.Dataset, criteria model.FilterCriteria, topN int) View {
	if criteria.Metric == "" {
		criteria.Metric = model.MetricTotalCost
	}
	v := View{
		Criteria:    criteria,
		MetricLabel: criteria.Metric.Label(),
		Groups:      []model.GroupTotal{},
		Top:         []model.PartCostRecord{},
		Records:     []model.PartCostRecord{},
	}
	if ds == nil || ds.Len() == 0 {
		v.State = StateNoData
		v.Message = noDataMessage
		if ds != nil {
			v.SnapshotID = ds.SnapshotID
			v.LoadedAt = ds.LoadedAt
		}
		return v
	}

	v.SnapshotID = ds.SnapshotID
	v.LoadedAt = ds.LoadedAt
	v.Options = FilterOptions(ds.Records)

	filtered := ApplyFilters(ds.Records, criteria)
	v.Records = filtered
	v.Summary = Summarize(filtered, criteria.Metric)
	if len(filtered) == 0 {
		v.State = StateNoDataAfterFilter
		v.Message = noDataAfterFilterMessage
		return v
	}

	v.State = StateOK
	v.Groups = GroupByDesignGroup(filtered, criteria.Metric)
	v.Top = TopN(filtered, criteria.Metric, topN)
	return v
}

// ErrorView is the view for a failed load.
func ErrorView(state State, message string, criteria model.FilterCriteria) View {
	if criteria.Metric == "" {
		criteria.Metric = model.MetricTotalCost
	}
	return View{
		State:       state,
		Message:     message,
		Criteria:    criteria,
		MetricLabel: criteria.Metric.Label(),
		Groups:      []model.GroupTotal{},
		Top:         []model.PartCostRecord{},
		Records:     []model.PartCostRecord{},
	}
}
