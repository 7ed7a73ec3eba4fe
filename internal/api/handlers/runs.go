package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/wonny/predictarena/internal/calendar"
	"github.com/wonny/predictarena/internal/tournament"
	"github.com/wonny/predictarena/pkg/logger"
)

// Passes is the part of tournament.Runner exposed as manual triggers
type Passes interface {
	Morning(ctx context.Context, date time.Time) (*tournament.MorningResult, error)
	Evening(ctx context.Context, date time.Time) (*tournament.EveningResult, error)
}

// RunHandler triggers tournament passes on demand
type RunHandler struct {
	runner   Passes
	calendar *calendar.Calendar
	now      func() time.Time
	logger   *logger.Logger
}

// NewRunHandler creates a new run handler
func NewRunHandler(runner Passes, cal *calendar.Calendar, log *logger.Logger) *RunHandler {
	return &RunHandler{runner: runner, calendar: cal, now: time.Now, logger: log}
}

// RunResponse wraps a pass result
type RunResponse struct {
	Date    string      `json:"date"`
	Skipped bool        `json:"skipped"`
	Reason  string      `json:"reason,omitempty"`
	Result  interface{} `json:"result,omitempty"`
}

// resolveDate reads ?date= (default: today in exchange time) and ?force=
func (h *RunHandler) resolveDate(w http.ResponseWriter, r *http.Request) (time.Time, bool, bool) {
	date := h.calendar.Today(h.now())
	if s := r.URL.Query().Get("date"); s != "" {
		d, ok := parseDate(s)
		if !ok {
			respondError(w, http.StatusBadRequest, "invalid date (expected YYYY-MM-DD)")
			return time.Time{}, false, false
		}
		date = d
	}

	force, _ := strconv.ParseBool(r.URL.Query().Get("force"))
	if !force && !h.calendar.IsMarketDay(date) {
		respondJSON(w, http.StatusOK, RunResponse{
			Date:    date.Format("2006-01-02"),
			Skipped: true,
			Reason:  "market closed",
		})
		return date, false, true
	}
	return date, true, true
}

// Morning runs ingest -> winner -> open
// POST /api/runs/morning?date=YYYY-MM-DD&force=true
func (h *RunHandler) Morning(w http.ResponseWriter, r *http.Request) {
	date, run, ok := h.resolveDate(w, r)
	if !ok || !run {
		return
	}

	res, err := h.runner.Morning(r.Context(), date)
	if err != nil {
		h.logger.WithError(err).WithField("date", date.Format("2006-01-02")).Error("Morning pass failed")
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, RunResponse{Date: date.Format("2006-01-02"), Result: res})
}

// Evening runs score -> fold -> close
// POST /api/runs/evening?date=YYYY-MM-DD&force=true
func (h *RunHandler) Evening(w http.ResponseWriter, r *http.Request) {
	date, run, ok := h.resolveDate(w, r)
	if !ok || !run {
		return
	}

	res, err := h.runner.Evening(r.Context(), date)
	if err != nil {
		h.logger.WithError(err).WithField("date", date.Format("2006-01-02")).Error("Evening pass failed")
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, RunResponse{Date: date.Format("2006-01-02"), Result: res})
}
