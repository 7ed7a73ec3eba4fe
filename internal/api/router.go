package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/predictarena/internal/api/handlers"
	"github.com/wonny/predictarena/internal/api/stream"
	"github.com/wonny/predictarena/internal/metrics"
	"github.com/wonny/predictarena/pkg/database"
	"github.com/wonny/predictarena/pkg/logger"
)

// RouterDeps holds everything the router mounts; nil entries are skipped
type RouterDeps struct {
	Documents *handlers.DocumentHandler
	Runs      *handlers.RunHandler
	Hub       *stream.Hub
	Metrics   *metrics.Registry
	DB        *database.DB
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(d RouterDeps, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler(d.DB)).Methods("GET")

	if d.Metrics != nil {
		r.Handle("/metrics", d.Metrics.Handler()).Methods("GET")
	}
	if d.Hub != nil {
		r.Handle("/ws", d.Hub).Methods("GET")
	}

	api := r.PathPrefix("/api").Subrouter()

	// Documents
	if d.Documents != nil {
		api.HandleFunc("/leaderboard", d.Documents.GetLeaderboard).Methods("GET")
		api.HandleFunc("/winner", d.Documents.GetWinner).Methods("GET")
		api.HandleFunc("/simulator", d.Documents.GetSimulator).Methods("GET")
		api.HandleFunc("/scores/{date}", d.Documents.GetScores).Methods("GET")
		api.HandleFunc("/predictions/{date}", d.Documents.ListPredictions).Methods("GET")
		api.HandleFunc("/predictions/{date}/{forecaster}", d.Documents.GetPrediction).Methods("GET")
	}

	// Manual triggers
	if d.Runs != nil {
		api.HandleFunc("/runs/morning", d.Runs.Morning).Methods("POST")
		api.HandleFunc("/runs/evening", d.Runs.Evening).Methods("POST")
	}

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status (and the database's, when configured)
func healthCheckHandler(db *database.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := map[string]interface{}{
			"status":  "ok",
			"service": "predictarena-api",
		}
		status := http.StatusOK

		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
			defer cancel()
			health := db.HealthCheck(ctx)
			body["database"] = health
			if !health.Healthy {
				body["status"] = "degraded"
				status = http.StatusServiceUnavailable
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	}
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Call next handler
			next.ServeHTTP(w, r)

			// Log request
			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
