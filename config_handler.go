package main

import (
	"encoding/json"
	"net/http"
	"time"

	"invcost/cache"
	"invcost/config"
)

// writeJSONError writes {"message": ...} with the given status.
func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}

// GetConfigHandler returns the effective configuration with the password redacted.
func GetConfigHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(config.GetConfig().Redacted())
	}
}

// HealthHandler reports that the process is serving, with the cached snapshot
// and hit counters. It does not touch the database.
func HealthHandler(c *cache.DatasetCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(struct {
			Status string       `json:"status"`
			Cache  cache.Status `json:"cache"`
		}{"ok", c.Status(time.Now())})
	}
}
