package main

import (
	"encoding/json"
	"github.com/myrjola/interviewprep/internal/errors"
	"github.com/myrjola/interviewprep/internal/interview"
	"github.com/myrjola/interviewprep/internal/models"
	"io"
	"log/slog"
	"net/http"
)

const (
	maxJSONBodyBytes = 1 << 20
	retryMessage     = "The interviewer could not come up with a question. Please try again."
)

var errBadRequest = errors.NewSentinel("bad request")

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	app.logger.LogAttrs(r.Context(), slog.LevelError, "server error",
		slog.String("method", method), slog.String("uri", uri), errors.SlogError(err))
	app.writeJSON(w, r, http.StatusInternalServerError,
		models.ErrorResponse{Detail: http.StatusText(http.StatusInternalServerError)})
}

// clientError answers with status and a detail message that is safe to show to the user.
func (app *application) clientError(w http.ResponseWriter, r *http.Request, status int, detail string) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	app.logger.LogAttrs(r.Context(), slog.LevelDebug, http.StatusText(status),
		slog.String("method", method), slog.String("uri", uri), slog.String("detail", detail))
	app.writeJSON(w, r, status, models.ErrorResponse{Detail: detail})
}

func (app *application) notFound(w http.ResponseWriter, r *http.Request) {
	app.clientError(w, r, http.StatusNotFound, http.StatusText(http.StatusNotFound))
}

// interviewError maps errors of the interview protocol to responses. Caller mistakes become 400 with the error
// message, question generation failures become 502 with a generic message and everything else is a server error.
func (app *application) interviewError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, errBadRequest) || interview.IsClientError(err):
		app.logger.LogAttrs(r.Context(), slog.LevelInfo, "rejected interview request", errors.SlogError(err))
		app.clientError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, interview.ErrQuestionGenerationFailed):
		app.logger.LogAttrs(r.Context(), slog.LevelError, "question generation failed", errors.SlogError(err))
		app.writeJSON(w, r, http.StatusBadGateway, models.ErrorResponse{Detail: retryMessage})
	default:
		app.serverError(w, r, err)
	}
}

func (app *application) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		err = errors.Wrap(err, "marshal response")
		app.logger.LogAttrs(r.Context(), slog.LevelError, "failed to marshal response", errors.SlogError(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// decodeJSON reads a single JSON object from the request body into dst. Failures wrap errBadRequest.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBodyBytes))
	if err := decoder.Decode(dst); err != nil {
		return errors.Join(errors.Wrap(errBadRequest, "invalid JSON body"), err)
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return errors.Wrap(errBadRequest, "body must contain a single JSON object")
	}
	return nil
}

// toHistory converts the wire messages to a conversation history. Validation is left to the interview package.
func toHistory(messages []models.Message) interview.History {
	history := make(interview.History, 0, len(messages))
	for _, m := range messages {
		history = append(history, interview.Turn{Role: interview.Role(m.Role), Content: m.Content})
	}
	return history
}
