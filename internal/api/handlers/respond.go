package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/wonny/predictarena/internal/contracts"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// parseDate validates a YYYY-MM-DD path or query value
func parseDate(s string) (time.Time, bool) {
	d, err := contracts.ParseDate(s)
	return d, err == nil
}
