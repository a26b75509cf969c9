package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/url"

	"invcost/dashboard"
	"invcost/model"
)

//go:embed templates/*.html
var templateFS embed.FS

var funcs = template.FuncMap{
	"currency":   dashboard.FormatCurrency,
	"quantity":   dashboard.FormatQuantity,
	"groupLabel": dashboard.GroupLabel,
}

// ParsePageTemplate parses the embedded dashboard page.
func ParsePageTemplate() (*template.Template, error) {
	t, err := template.New("dashboard.html").Funcs(funcs).ParseFS(templateFS, "templates/dashboard.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse dashboard template: %w", err)
	}
	return t, nil
}

// Option is one selectable filter value.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

// PageData is the dashboard template input.
type PageData struct {
	View           dashboard.View
	SourceID       string
	TopN           int
	IsError        bool
	IsEmpty        bool
	DesignGroups   []Option
	ProductLines   []Option
	ClassCodes     []Option
	Metrics        []Option
	ExportCSVURL   template.URL
	ExportXLSXURL  template.URL
	TableHTML      template.HTML
	ShareChartHTML template.HTML
	TopChartHTML   template.HTML
}

func options(values, selected []string) []Option {
	chosen := make(map[string]bool, len(selected))
	for _, s := range selected {
		chosen[s] = true
	}
	opts := make([]Option, 0, len(values))
	for _, v := range values {
		opts = append(opts, Option{Value: v, Label: dashboard.GroupLabel(v), Selected: chosen[v]})
	}
	return opts
}

// CriteriaQuery encodes criteria back into query parameters.
func CriteriaQuery(c model.FilterCriteria) string {
	q := url.Values{}
	for _, v := range c.DesignGroups {
		q.Add("designGroup", v)
	}
	for _, v := range c.ProductLines {
		q.Add("productLine", v)
	}
	for _, v := range c.ClassificationCodes {
		q.Add("classCode", v)
	}
	if c.Metric != "" {
		q.Set("metric", string(c.Metric))
	}
	return q.Encode()
}

// NewPageData prepares the fragments and selector state for a view.
func NewPageData(v dashboard.View, sourceID string, topN int) PageData {
	pd := PageData{
		View:         v,
		SourceID:     sourceID,
		TopN:         topN,
		IsError:      v.State == dashboard.StateConnectionError || v.State == dashboard.StateQueryError,
		IsEmpty:      v.State == dashboard.StateNoData || v.State == dashboard.StateNoDataAfterFilter,
		DesignGroups: options(v.Options.DesignGroups, v.Criteria.DesignGroups),
		ProductLines: options(v.Options.ProductLines, v.Criteria.ProductLines),
		ClassCodes:   options(v.Options.ClassificationCodes, v.Criteria.ClassificationCodes),
	}
	query := CriteriaQuery(v.Criteria)
	pd.ExportCSVURL = template.URL("/api/inventory/export_csv?" + query)
	pd.ExportXLSXURL = template.URL("/api/inventory/export_xlsx?" + query)
	for _, m := range model.Metrics {
		pd.Metrics = append(pd.Metrics, Option{Value: string(m), Label: m.Label(), Selected: m == v.Criteria.Metric})
	}
	if v.State == dashboard.StateOK {
		pd.TableHTML = template.HTML(RenderCostTableHTML(v.Records, v.Criteria.Metric))
		pd.ShareChartHTML = template.HTML(RenderShareChartHTML(v.Groups))
		pd.TopChartHTML = template.HTML(RenderTopChartHTML(v.Top, v.Criteria.Metric))
	}
	return pd
}

// RenderPage executes the dashboard page for pd.
func RenderPage(w io.Writer, t *template.Template, pd PageData) error {
	return t.ExecuteTemplate(w, "dashboard.html", pd)
}
