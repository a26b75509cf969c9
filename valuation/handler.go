package valuation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"time"

	"invcost/cache"
	"invcost/dashboard"
	"invcost/database"
	"invcost/metrics"
	"invcost/model"
	"invcost/render"

	"go.uber.org/zap"
)

// ConnectionTester runs the user-triggered connection check.
type ConnectionTester interface {
	TestConnection(ctx context.Context) error
}

// Service carries what the dashboard handlers share.
type Service struct {
	Cache    *cache.DatasetCache
	Source   ConnectionTester
	Template *template.Template
	Logger   *zap.Logger
	SourceID string
	TopN     int
	Now      func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// ParseCriteria reads the filter selection from query parameters. Selectors
// may repeat. An unknown metric is an error.
func ParseCriteria(q url.Values) (model.FilterCriteria, error) {
	metric, err := model.ParseMetric(q.Get("metric"))
	if err != nil {
		return model.FilterCriteria{}, err
	}
	return model.FilterCriteria{
		DesignGroups:        q["designGroup"],
		ProductLines:        q["productLine"],
		ClassificationCodes: q["classCode"],
		Metric:              metric,
	}, nil
}

func stateFor(kind database.Kind) dashboard.State {
	if kind == database.KindConnection {
		return dashboard.StateConnectionError
	}
	return dashboard.StateQueryError
}

// loadView returns the view for criteria, or an error view when the dataset
// could not be loaded.
func (s *Service) loadView(ctx context.Context, criteria model.FilterCriteria, force bool) (dashboard.View, bool) {
	ds, err := s.Cache.GetOrRefresh(ctx, s.now(), force)
	if err != nil {
		kind, msg := database.Classify(err)
		s.Logger.Error("Inventory dataset unavailable", zap.String("kind", string(kind)), zap.Error(err))
		return dashboard.ErrorView(stateFor(kind), msg, criteria), false
	}
	return dashboard.BuildView(ds, criteria, s.TopN), true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	writeJSON(w, statusCode, map[string]string{"message": message})
}

// DashboardPageHandler serves the HTML dashboard at "/".
func DashboardPageHandler(s *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		criteria, err := ParseCriteria(r.URL.Query())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		view, _ := s.loadView(r.Context(), criteria, false)

		var buf bytes.Buffer
		if err := render.RenderPage(&buf, s.Template, render.NewPageData(view, s.SourceID, s.TopN)); err != nil {
			s.Logger.Error("Rendering dashboard failed", zap.Error(err))
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(buf.Bytes())
	}
}

// GetInventoryHandler returns the dashboard view as JSON. Load failures
// answer 502 with the error state in the body.
func GetInventoryHandler(s *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		criteria, err := ParseCriteria(r.URL.Query())
		if err != nil {
			writeJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		view, ok := s.loadView(r.Context(), criteria, false)
		status := http.StatusOK
		if !ok {
			status = http.StatusBadGateway
		}
		writeJSON(w, status, view)
	}
}

// GetOptionsHandler returns the distinct values of each filter dimension.
func GetOptionsHandler(s *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ds, err := s.Cache.GetOrRefresh(r.Context(), s.now(), false)
		if err != nil {
			_, msg := database.Classify(err)
			writeJSONError(w, msg, http.StatusBadGateway)
			return
		}
		var records []model.PartCostRecord
		if ds != nil {
			records = ds.Records
		}
		writeJSON(w, http.StatusOK, dashboard.FilterOptions(records))
	}
}

// RefreshHandler reloads the dataset regardless of its age.
func RefreshHandler(s *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		ds, err := s.Cache.GetOrRefresh(r.Context(), s.now(), true)
		if err != nil {
			kind, msg := database.Classify(err)
			s.Logger.Error("Manual refresh failed", zap.String("kind", string(kind)), zap.Error(err))
			writeJSON(w, http.StatusBadGateway, map[string]interface{}{
				"state":   stateFor(kind),
				"message": msg,
			})
			return
		}

		state := dashboard.StateOK
		message := fmt.Sprintf("Loaded %d parts.", ds.Len())
		if ds.Len() == 0 {
			state = dashboard.StateNoData
			message = "Refresh finished, but the query returned no parts with stock on hand."
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"state":      state,
			"message":    message,
			"records":    ds.Len(),
			"snapshotId": ds.SnapshotID,
			"loadedAt":   ds.LoadedAt,
		})
	}
}

// TestConnectionHandler opens and closes a database connection.
func TestConnectionHandler(s *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if err := s.Source.TestConnection(r.Context()); err != nil {
			_, msg := database.Classify(err)
			writeJSON(w, http.StatusBadGateway, map[string]interface{}{"ok": false, "message": msg})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "message": "Connection successful."})
	}
}

// filteredRecords loads the dataset and applies the request's filters for an export.
func (s *Service) filteredRecords(w http.ResponseWriter, r *http.Request) ([]model.PartCostRecord, model.FilterCriteria, bool) {
	criteria, err := ParseCriteria(r.URL.Query())
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return nil, criteria, false
	}
	ds, err := s.Cache.GetOrRefresh(r.Context(), s.now(), false)
	if err != nil {
		kind, msg := database.Classify(err)
		s.Logger.Error("Export failed to load dataset", zap.String("kind", string(kind)), zap.Error(err))
		writeJSONError(w, msg, http.StatusBadGateway)
		return nil, criteria, false
	}
	var records []model.PartCostRecord
	if ds != nil {
		records = ds.Records
	}
	return dashboard.ApplyFilters(records, criteria), criteria, true
}

func setDownloadHeaders(w http.ResponseWriter, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(filename))
}

// ExportCSVHandler downloads the filtered records as CSV.
func ExportCSVHandler(s *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, _, ok := s.filteredRecords(w, r)
		if !ok {
			return
		}

		var buf bytes.Buffer
		if err := dashboard.WriteCSV(&buf, records); err != nil {
			s.Logger.Error("CSV export failed", zap.Error(err))
			writeJSONError(w, "Failed to build the CSV export.", http.StatusInternalServerError)
			return
		}
		metrics.ExportsTotal.WithLabelValues("csv").Inc()

		setDownloadHeaders(w, "text/csv; charset=utf-8", dashboard.ExportFilename(s.SourceID, s.now(), "csv"))
		w.Write(buf.Bytes())
	}
}

// ExportXLSXHandler downloads the filtered records and group totals as an Excel workbook.
func ExportXLSXHandler(s *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, criteria, ok := s.filteredRecords(w, r)
		if !ok {
			return
		}

		var buf bytes.Buffer
		if err := dashboard.WriteXLSX(&buf, records, criteria.Metric); err != nil {
			s.Logger.Error("XLSX export failed", zap.Error(err))
			writeJSONError(w, "Failed to build the Excel export.", http.StatusInternalServerError)
			return
		}
		metrics.ExportsTotal.WithLabelValues("xlsx").Inc()

		setDownloadHeaders(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			dashboard.ExportFilename(s.SourceID, s.now(), "xlsx"))
		w.Write(buf.Bytes())
	}
}
