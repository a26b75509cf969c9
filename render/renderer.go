package render

import (
	"fmt"
	"html"
	"strings"

	"invcost/dashboard"
	"invcost/model"
)

// palette cycles through the design-group slices of the share chart.
var palette = []string{
	"#4e79a7", "#f28e2b", "#e15759", "#76b7b2", "#59a14f",
	"#edc948", "#b07aa1", "#ff9da7", "#9c755f", "#bab0ac",
}

func esc(s string) string {
	return html.EscapeString(s)
}

// RenderCostTableHTML builds the <thead>/<tbody> of the part table. The
// selected metric column is highlighted.
func RenderCostTableHTML(records []model.PartCostRecord, metric model.Metric) string {
	var sb strings.Builder

	headers := []struct {
		label  string
		metric model.Metric
	}{
		{"Total COGS", model.MetricTotalCost},
		{"Warehouse", model.MetricCostWarehouse},
		{"WIP", model.MetricCostWIP},
		{"External Pick", model.MetricCostExlPick},
	}

	sb.WriteString(`<thead><tr>
            <th class="col-part">Part</th>
            <th class="col-desc">Description</th>
            <th class="col-group">Design group</th>
            <th class="col-line">Product line</th>
            <th class="col-class">Class</th>
            <th class="col-qty">Qty on hand</th>`)
	for _, h := range headers {
		class := "col-cost"
		if h.metric == metric {
			class += " selected"
		}
		sb.WriteString(fmt.Sprintf(`<th class="%s">%s</th>`, class, h.label))
	}
	sb.WriteString(`</tr></thead>`)

	sb.WriteString(`<tbody>`)
	if len(records) == 0 {
		sb.WriteString(`<tr><td colspan="10">No parts to show.</td></tr>`)
	} else {
		for _, r := range records {
			sb.WriteString(`<tr>`)
			sb.WriteString(fmt.Sprintf(`<td class="col-part">%s</td>`, esc(r.PartID)))
			sb.WriteString(fmt.Sprintf(`<td class="col-desc">%s</td>`, esc(r.Description)))
			sb.WriteString(fmt.Sprintf(`<td class="col-group">%s</td>`, esc(dashboard.GroupLabel(r.DesignGroup))))
			sb.WriteString(fmt.Sprintf(`<td class="col-line">%s</td>`, esc(r.ProductLine)))
			sb.WriteString(fmt.Sprintf(`<td class="col-class">%s</td>`, esc(r.ClassificationCode)))
			sb.WriteString(fmt.Sprintf(`<td class="right col-qty">%s</td>`, dashboard.FormatQuantity(r.QuantityOnHand)))
			for _, h := range headers {
				sb.WriteString(fmt.Sprintf(`<td class="right col-cost">%s</td>`, dashboard.FormatCurrency(h.metric.Value(r))))
			}
			sb.WriteString(`</tr>`)
		}
	}
	sb.WriteString(`</tbody>`)

	return sb.String()
}

// RenderShareChartHTML draws the design-group distribution as a donut with a
// legend. Groups arrive ascending by sum.
func RenderShareChartHTML(groups []model.GroupTotal) string {
	var sb strings.Builder
	if len(groups) == 0 {
		return `<p class="chart-empty">No cost to distribute.</p>`
	}

	var stops []string
	var start float64
	for i, g := range groups {
		end := start + g.Share*100
		stops = append(stops, fmt.Sprintf("%s %.2f%% %.2f%%", palette[i%len(palette)], start, end))
		start = end
	}
	if start == 0 {
		stops = []string{"#dddddd 0% 100%"}
	}

	sb.WriteString(fmt.Sprintf(`<div class="donut" style="background: conic-gradient(%s);"><div class="donut-hole"></div></div>`,
		strings.Join(stops, ", ")))

	sb.WriteString(`<ul class="legend">`)
	for i, g := range groups {
		sb.WriteString(fmt.Sprintf(`<li><span class="swatch" style="background:%s"></span>%s <span class="right">%s (%s)</span></li>`,
			palette[i%len(palette)],
			esc(dashboard.GroupLabel(g.DesignGroup)),
			dashboard.FormatCurrency(g.MetricSum),
			dashboard.FormatPercent(g.Share)))
	}
	sb.WriteString(`</ul>`)

	return sb.String()
}

// RenderTopChartHTML draws the ranked parts as horizontal bars scaled to the
// largest value.
func RenderTopChartHTML(top []model.PartCostRecord, metric model.Metric) string {
	var sb strings.Builder
	if len(top) == 0 {
		return `<p class="chart-empty">No parts to rank.</p>`
	}

	max := metric.Value(top[0])
	sb.WriteString(`<div class="bars">`)
	for _, r := range top {
		v := metric.Value(r)
		width := 0.0
		if max > 0 && v > 0 {
			width = v / max * 100
		}
		sb.WriteString(`<div class="bar-row">`)
		sb.WriteString(fmt.Sprintf(`<span class="bar-label" title="%s">%s</span>`, esc(r.Description), esc(r.PartID)))
		sb.WriteString(fmt.Sprintf(`<span class="bar" style="width:%.2f%%"></span>`, width))
		sb.WriteString(fmt.Sprintf(`<span class="bar-value">%s</span>`, dashboard.FormatCurrency(v)))
		sb.WriteString(`</div>`)
	}
	sb.WriteString(`</div>`)

	return sb.String()
}
