package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/predictarena/internal/contracts"
	"github.com/wonny/predictarena/internal/forecast"
	"github.com/wonny/predictarena/internal/papertrade"
	"github.com/wonny/predictarena/internal/store"
	"github.com/wonny/predictarena/pkg/logger"
)

// DocumentHandler serves the published tournament documents (read-only)
// ⭐ SSOT: 문서 조회 API 핸들러는 이 구조체에서만
type DocumentHandler struct {
	store           store.Store
	startingBalance float64
	logger          *logger.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(s store.Store, startingBalance float64, log *logger.Logger) *DocumentHandler {
	return &DocumentHandler{store: s, startingBalance: startingBalance, logger: log}
}

// LeaderboardResponse is the leaderboard with ranked entries
type LeaderboardResponse struct {
	LastUpdated string                       `json:"last_updated"`
	Models      []contracts.LeaderboardEntry `json:"models"`
}

// GetLeaderboard returns the leaderboard ranked by total score
// GET /api/leaderboard
func (h *DocumentHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	lb, err := store.LoadLeaderboard(r.Context(), h.store)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load leaderboard")
		respondError(w, http.StatusInternalServerError, "failed to load leaderboard")
		return
	}

	respondJSON(w, http.StatusOK, LeaderboardResponse{
		LastUpdated: lb.LastUpdated,
		Models:      forecast.Ranked(lb),
	})
}

// GetWinner returns today's consensus pick document
// GET /api/winner
func (h *DocumentHandler) GetWinner(w http.ResponseWriter, r *http.Request) {
	doc, err := store.LoadWinner(r.Context(), h.store)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load winner")
		respondError(w, http.StatusInternalServerError, "failed to load winner")
		return
	}
	if doc == nil {
		respondError(w, http.StatusNotFound, "no winner selected yet")
		return
	}
	respondJSON(w, http.StatusOK, doc)
}

// SimulatorResponse is the simulator state plus its summary
type SimulatorResponse struct {
	contracts.SimulatorState
	Summary papertrade.Summary `json:"summary"`
}

// GetSimulator returns the paper-trading account
// GET /api/simulator
func (h *DocumentHandler) GetSimulator(w http.ResponseWriter, r *http.Request) {
	initial := contracts.SimulatorState{
		Balance:         h.startingBalance,
		StartingBalance: h.startingBalance,
		Trades:          []contracts.Trade{},
	}
	state, err := store.LoadSimulator(r.Context(), h.store, initial)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load simulator")
		respondError(w, http.StatusInternalServerError, "failed to load simulator")
		return
	}
	respondJSON(w, http.StatusOK, SimulatorResponse{SimulatorState: state, Summary: papertrade.Summarize(state)})
}

// GetScores returns the score document for a date
// GET /api/scores/{date}
func (h *DocumentHandler) GetScores(w http.ResponseWriter, r *http.Request) {
	date := mux.Vars(r)["date"]
	if _, ok := parseDate(date); !ok {
		respondError(w, http.StatusBadRequest, "invalid date (expected YYYY-MM-DD)")
		return
	}

	var doc contracts.ScoreDocument
	h.get(w, r, store.ScoresKey(date), &doc)
}

// ListPredictions returns every batch for a date
// GET /api/predictions/{date}
func (h *DocumentHandler) ListPredictions(w http.ResponseWriter, r *http.Request) {
	date := mux.Vars(r)["date"]
	if _, ok := parseDate(date); !ok {
		respondError(w, http.StatusBadRequest, "invalid date (expected YYYY-MM-DD)")
		return
	}

	batches, err := store.LoadBatches(r.Context(), h.store, date)
	if err != nil {
		h.logger.WithError(err).WithField("date", date).Error("Failed to load batches")
		respondError(w, http.StatusInternalServerError, "failed to load predictions")
		return
	}
	if batches == nil {
		batches = []contracts.ForecastBatch{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"date":    date,
		"batches": batches,
	})
}

// GetPrediction returns one forecaster's batch
// GET /api/predictions/{date}/{forecaster}
func (h *DocumentHandler) GetPrediction(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if _, ok := parseDate(vars["date"]); !ok {
		respondError(w, http.StatusBadRequest, "invalid date (expected YYYY-MM-DD)")
		return
	}

	var batch contracts.ForecastBatch
	h.get(w, r, store.PredictionKey(vars["date"], vars["forecaster"]), &batch)
}

func (h *DocumentHandler) get(w http.ResponseWriter, r *http.Request, key store.Key, dest interface{}) {
	err := h.store.Get(r.Context(), key, dest)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, key.Path()+" not found")
		return
	}
	if err != nil {
		h.logger.WithError(err).WithField("key", key.Path()).Error("Failed to load document")
		respondError(w, http.StatusInternalServerError, "failed to load document")
		return
	}
	respondJSON(w, http.StatusOK, dest)
}
