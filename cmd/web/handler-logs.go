package main

import (
	"github.com/myrjola/interviewprep/internal/errors"
	"github.com/myrjola/interviewprep/internal/logging"
	"github.com/myrjola/interviewprep/internal/models"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"
)

const (
	defaultLogsLimit = 100
	maxLogsLimit     = 1000
)

var logLevels = []string{
	slog.LevelDebug.String(),
	slog.LevelInfo.String(),
	slog.LevelWarn.String(),
	slog.LevelError.String(),
}

// parseLogQuery reads the limit, level and since (RFC 3339) query parameters.
func parseLogQuery(r *http.Request) (logging.LogQuery, error) {
	values := r.URL.Query()
	query := logging.LogQuery{Limit: defaultLogsLimit, Level: "", Since: time.Time{}}

	if raw := values.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > maxLogsLimit {
			return query, errors.Wrap(errBadRequest, "limit must be between 1 and 1000", slog.String("limit", raw))
		}
		query.Limit = limit
	}
	if raw := values.Get("level"); raw != "" {
		level := strings.ToUpper(raw)
		if !slices.Contains(logLevels, level) {
			return query, errors.Wrap(errBadRequest, "level must be one of DEBUG, INFO, WARN, ERROR",
				slog.String("level", raw))
		}
		query.Level = level
	}
	if raw := values.Get("since"); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return query, errors.Wrap(errBadRequest, "since must be an RFC 3339 timestamp", slog.String("since", raw))
		}
		query.Since = since
	}
	return query, nil
}

func (app *application) listLogs(w http.ResponseWriter, r *http.Request) {
	query, err := parseLogQuery(r)
	if err != nil {
		app.interviewError(w, r, err)
		return
	}
	entries := app.logs.Query(query)
	app.writeJSON(w, r, http.StatusOK, models.LogsResponse{Success: true, Count: len(entries), Logs: entries})
}

func (app *application) logStats(w http.ResponseWriter, r *http.Request) {
	app.writeJSON(w, r, http.StatusOK, models.LogStatsResponse{Success: true, Stats: app.logs.Stats()})
}

func (app *application) clearLogs(w http.ResponseWriter, r *http.Request) {
	app.logs.Clear()
	app.logger.LogAttrs(r.Context(), slog.LevelInfo, "logs cleared")
	app.writeJSON(w, r, http.StatusOK, models.ClearLogsResponse{Success: true, Message: "All logs cleared successfully"})
}

type logsPageData struct {
	BaseTemplateData
	Entries []logging.LogEntry
	Stats   logging.LogStats
	Levels  []string
	Level   string
	Limit   int
}

// logsPage renders the captured logs newest first.
func (app *application) logsPage(w http.ResponseWriter, r *http.Request) {
	query, err := parseLogQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	entries := app.logs.Query(query)
	slices.Reverse(entries)
	app.render(w, r, http.StatusOK, "logs", logsPageData{
		BaseTemplateData: newBaseTemplateData(r),
		Entries:          entries,
		Stats:            app.logs.Stats(),
		Levels:           logLevels,
		Level:            query.Level,
		Limit:            query.Limit,
	})
}
