package main

import (
	"net/http"

	"invcost/metrics"
	"invcost/valuation"
)

// SetupRoutes registers the dashboard, API, and operational endpoints.
func SetupRoutes(mux *http.ServeMux, svc *valuation.Service) {
	mux.HandleFunc("/", valuation.DashboardPageHandler(svc))

	mux.HandleFunc("/api/inventory", valuation.GetInventoryHandler(svc))
	mux.HandleFunc("/api/inventory/options", valuation.GetOptionsHandler(svc))
	mux.HandleFunc("/api/inventory/refresh", valuation.RefreshHandler(svc))
	mux.HandleFunc("/api/inventory/export_csv", valuation.ExportCSVHandler(svc))
	mux.HandleFunc("/api/inventory/export_xlsx", valuation.ExportXLSXHandler(svc))
	mux.HandleFunc("/api/connection/test", valuation.TestConnectionHandler(svc))

	mux.HandleFunc("/api/config", GetConfigHandler())
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/healthz", HealthHandler(svc.Cache))
}
