package render

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"invcost/dashboard"
	"invcost/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func records() []model.PartCostRecord {
	return []model.PartCostRecord{
		{PartID: "P1", Description: "<gear>", DesignGroup: "A", ProductLine: "L1", QuantityOnHand: 1200, TotalCost: 300, CostWarehouse: 300},
		{PartID: "P2", Description: "shaft", DesignGroup: "", ProductLine: "L2", QuantityOnHand: 2, TotalCost: 100, CostWIP: 100},
	}
}

func TestRenderCostTableHTML(t *testing.T) {
	out := RenderCostTableHTML(records(), model.MetricCostWIP)

	assert.Contains(t, out, "&lt;gear&gt;")
	assert.NotContains(t, out, "<gear>")
	assert.Contains(t, out, "(blank)")
	assert.Contains(t, out, "1,200")
	assert.Contains(t, out, "$300.00")
	assert.Contains(t, out, `<th class="col-cost selected">WIP</th>`)

	empty := RenderCostTableHTML(nil, model.MetricTotalCost)
	assert.Contains(t, empty, "No parts to show.")
}

func TestRenderShareChartHTML(t *testing.T) {
	groups := []model.GroupTotal{
		{DesignGroup: "", MetricSum: 100, Share: 0.25},
		{DesignGroup: "A", MetricSum: 300, Share: 0.75},
	}
	out := RenderShareChartHTML(groups)

	assert.Contains(t, out, "conic-gradient(")
	assert.Contains(t, out, "0.00% 25.00%")
	assert.Contains(t, out, "25.00% 100.00%")
	assert.Contains(t, out, "(blank)")
	assert.Contains(t, out, "75.0%")

	assert.Contains(t, RenderShareChartHTML(nil), "chart-empty")
}

func TestRenderTopChartHTML(t *testing.T) {
	out := RenderTopChartHTML(records(), model.MetricTotalCost)
	assert.Contains(t, out, "width:100.00%")
	assert.Contains(t, out, "width:33.33%")
	assert.Equal(t, 2, strings.Count(out, `class="bar-row"`))
}

func TestCriteriaQuery(t *testing.T) {
	q := CriteriaQuery(model.FilterCriteria{
		DesignGroups: []string{"A", ""},
		Metric:       model.MetricCostWIP,
	})
	assert.Equal(t, "designGroup=A&designGroup=&metric=cost_wip", q)
}

func TestRenderPage(t *testing.T) {
	tmpl, err := ParsePageTemplate()
	require.NoError(t, err)

	ds := &model.Dataset{SnapshotID: "s", LoadedAt: time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC), Records: records()}
	criteria := model.FilterCriteria{DesignGroups: []string{"A"}, Metric: model.MetricTotalCost}
	view := dashboard.BuildView(ds, criteria, 10)

	var buf bytes.Buffer
	require.NoError(t, RenderPage(&buf, tmpl, NewPageData(view, "erp", 10)))
	out := buf.String()

	assert.Contains(t, out, "Inventory COGS Dashboard")
	assert.Contains(t, out, `<option value="A" selected>A</option>`)
	assert.Contains(t, out, "/api/inventory/export_csv?designGroup=A&amp;metric=total_cost")
	assert.Contains(t, out, "conic-gradient")
	assert.Contains(t, out, "2026-05-01 08:00:00")
}

func TestRenderPage_ErrorState(t *testing.T) {
	tmpl, err := ParsePageTemplate()
	require.NoError(t, err)

	view := dashboard.ErrorView(dashboard.StateConnectionError, "Could not connect", model.FilterCriteria{})
	var buf bytes.Buffer
	require.NoError(t, RenderPage(&buf, tmpl, NewPageData(view, "erp", 10)))

	out := buf.String()
	assert.Contains(t, out, `class="banner error">Could not connect`)
	assert.NotContains(t, out, "Download CSV")
	assert.NotContains(t, out, "Total unique parts")
}
