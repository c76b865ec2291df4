package main

import (
	"github.com/myrjola/interviewprep/internal/errors"
	"github.com/myrjola/interviewprep/internal/models"
	"log/slog"
	"net/http"
	"strconv"
)

const (
	defaultEvaluationsLimit = 20
	maxEvaluationsLimit     = 200
)

// evaluationStats reports how many interviews were evaluated and how many of them fell back to the default result.
func (app *application) evaluationStats(w http.ResponseWriter, r *http.Request) {
	stats, err := app.evaluations.Stats(r.Context())
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "evaluation stats"))
		return
	}
	app.writeJSON(w, r, http.StatusOK, stats)
}

// recentEvaluations lists the newest evaluation outcomes.
func (app *application) recentEvaluations(w http.ResponseWriter, r *http.Request) {
	limit := defaultEvaluationsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		var err error
		if limit, err = strconv.Atoi(raw); err != nil || limit < 1 || limit > maxEvaluationsLimit {
			app.interviewError(w, r, errors.Wrap(errBadRequest, "limit must be between 1 and 200",
				slog.String("limit", raw)))
			return
		}
	}
	records, err := app.evaluations.Recent(r.Context(), limit)
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "recent evaluations"))
		return
	}
	if records == nil {
		records = []models.EvaluationRecord{}
	}
	app.writeJSON(w, r, http.StatusOK, models.EvaluationsResponse{Evaluations: records, Count: len(records)})
}
