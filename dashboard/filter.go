// Package dashboard holds the request-time view functions over the cached
// dataset. None of them modify their input.
package dashboard

import (
	"sort"

	"invcost/model"
)

// DefaultTopN is the ranking length used when none is configured.
const DefaultTopN = 10

func toSet(values []string) map[string]bool {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

// ApplyFilters returns the records matching every constrained dimension, in
// input order. Within a dimension any selected value matches.
func ApplyFilters(records []model.PartCostRecord, criteria model.FilterCriteria) []model.PartCostRecord {
	groups := toSet(criteria.DesignGroups)
	lines := toSet(criteria.ProductLines)
	classes := toSet(criteria.ClassificationCodes)

	filtered := make([]model.PartCostRecord, 0, len(records))
	for _, r := range records {
		if groups != nil && !groups[r.DesignGroup] {
			continue
		}
		if lines != nil && !lines[r.ProductLine] {
			continue
		}
		if classes != nil && !classes[r.ClassificationCode] {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered
}

// FilterOptions lists the sorted distinct values of each filter dimension.
// The empty value is included when some record has it.
func FilterOptions(records []model.PartCostRecord) model.FilterOptions {
	groups := make(map[string]bool)
	lines := make(map[string]bool)
	classes := make(map[string]bool)
	for _, r := range records {
		groups[r.DesignGroup] = true
		lines[r.ProductLine] = true
		classes[r.ClassificationCode] = true
	}
	return model.FilterOptions{
		DesignGroups:        sortedKeys(groups),
		ProductLines:        sortedKeys(lines),
		ClassificationCodes: sortedKeys(classes),
	}
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Summarize computes the headline figures. An empty input gives all zeros.
func Summarize(records []model.PartCostRecord, metric model.Metric) model.Summary {
	var s model.Summary
	if len(records) == 0 {
		return s
	}
	parts := make(map[string]bool, len(records))
	for _, r := range records {
		parts[r.PartID] = true
		s.MetricSum += metric.Value(r)
		s.QuantitySum += r.QuantityOnHand
	}
	s.UniquePartCount = len(parts)
	s.MetricMean = s.MetricSum / float64(len(records))
	return s
}

// GroupByDesignGroup sums the metric per design group, ascending by sum with
// ties ordered by group name. Records without a group fall under "".
func GroupByDesignGroup(records []model.PartCostRecord, metric model.Metric) []model.GroupTotal {
	sums := make(map[string]float64)
	var total float64
	for _, r := range records {
		v := metric.Value(r)
		sums[r.DesignGroup] += v
		total += v
	}

	groups := make([]model.GroupTotal, 0, len(sums))
	for name, sum := range sums {
		g := model.GroupTotal{DesignGroup: name, MetricSum: sum}
		if total != 0 {
			g.Share = sum / total
		}
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].MetricSum != groups[j].MetricSum {
			return groups[i].MetricSum < groups[j].MetricSum
		}
		return groups[i].DesignGroup < groups[j].DesignGroup
	})
	return groups
}

// TopN returns up to n records ranked by the metric, descending. Equal values
// keep their input order. n <= 0 selects DefaultTopN.
func TopN(records []model.PartCostRecord, metric model.Metric, n int) []model.PartCostRecord {
	if n <= 0 {
		n = DefaultTopN
	}
	ranked := make([]model.PartCostRecord, len(records))
	copy(ranked, records)
	sort.SliceStable(ranked, func(i, j int) bool {
		return metric.Value(ranked[i]) > metric.Value(ranked[j])
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
