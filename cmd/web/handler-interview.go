package main

import (
	"encoding/base64"
	"github.com/myrjola/interviewprep/internal/contexthelpers"
	"github.com/myrjola/interviewprep/internal/errors"
	"github.com/myrjola/interviewprep/internal/interview"
	"github.com/myrjola/interviewprep/internal/logging"
	"github.com/myrjola/interviewprep/internal/models"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
)

// withInterviewType tags the request and its log records with the interview type.
func withInterviewType(r *http.Request, interviewType string) *http.Request {
	r = contexthelpers.SetInterviewType(r, interviewType)
	return r.WithContext(logging.WithAttrs(r.Context(), slog.String("interview_type", interviewType)))
}

// questionOptions reads the include_audio query parameter, which defaults to true.
func questionOptions(r *http.Request) (interview.QuestionOptions, error) {
	opts := interview.QuestionOptions{Audio: true}
	raw := r.URL.Query().Get("include_audio")
	if raw == "" {
		return opts, nil
	}
	audio, err := strconv.ParseBool(raw)
	if err != nil {
		return opts, errors.Wrap(errBadRequest, "include_audio must be a boolean", slog.String("include_audio", raw))
	}
	opts.Audio = audio
	return opts, nil
}

func questionResponse(sess interview.Session, q interview.Question) models.QuestionResponse {
	resp := models.QuestionResponse{
		Question:       q.Text,
		Category:       q.Category,
		QuestionNumber: q.Number,
		TotalQuestions: q.Total,
		Variant:        sess.Sequence.Name,
		Completed:      false,
		AudioBase64:    nil,
	}
	if q.Audio != nil {
		encoded := base64.StdEncoding.EncodeToString(q.Audio)
		resp.AudioBase64 = &encoded
	}
	return resp
}

// startInterview asks the greeting question of a new interview.
func (app *application) startInterview(w http.ResponseWriter, r *http.Request) {
	var req models.StartInterviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		app.interviewError(w, r, err)
		return
	}
	r = withInterviewType(r, req.InterviewType)
	opts, err := questionOptions(r)
	if err != nil {
		app.interviewError(w, r, err)
		return
	}
	userName := strings.TrimSpace(req.UserName)
	if userName == "" {
		app.interviewError(w, r, errors.Wrap(errBadRequest, "user_name is required"))
		return
	}

	var sess interview.Session
	if sess, err = app.controller.Catalog().NewSession(req.InterviewType, userName, req.Variant); err != nil {
		app.interviewError(w, r, err)
		return
	}
	app.logger.LogAttrs(r.Context(), slog.LevelInfo, "starting interview",
		slog.String("user_name", userName), slog.String("variant", sess.Sequence.Name))

	var q interview.Question
	if sess, q, err = app.controller.Start(r.Context(), sess, opts); err != nil {
		app.interviewError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, questionResponse(sess, q))
}

// nextQuestion accepts the answer to question_number and asks the following question. After the last answer it
// reports the interview as completed.
func (app *application) nextQuestion(w http.ResponseWriter, r *http.Request) {
	var req models.QuestionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		app.interviewError(w, r, err)
		return
	}
	r = withInterviewType(r, req.InterviewType)
	opts, err := questionOptions(r)
	if err != nil {
		app.interviewError(w, r, err)
		return
	}

	history := toHistory(req.ConversationHistory)
	if err = history.Validate(); err != nil {
		app.interviewError(w, r, err)
		return
	}
	var prior interview.History
	if prior, _, err = history.SplitPendingAnswer(); err != nil {
		app.interviewError(w, r, err)
		return
	}
	var sess interview.Session
	if sess, err = app.controller.Catalog().Restore(req.InterviewType, req.UserName, req.Variant, prior); err != nil {
		app.interviewError(w, r, err)
		return
	}

	var q *interview.Question
	if sess, q, err = app.controller.SubmitAnswer(r.Context(), sess, history, req.QuestionNumber, opts); err != nil {
		app.interviewError(w, r, err)
		return
	}
	if q == nil {
		app.writeJSON(w, r, http.StatusOK, models.QuestionResponse{
			Question:       "",
			Category:       "",
			QuestionNumber: sess.QuestionNumber,
			TotalQuestions: sess.Total(),
			Variant:        sess.Sequence.Name,
			Completed:      true,
			AudioBase64:    nil,
		})
		return
	}
	app.writeJSON(w, r, http.StatusOK, questionResponse(sess, *q))
}

// evaluateInterview scores a completed interview. Scoring trouble yields the fallback evaluation, never an error.
func (app *application) evaluateInterview(w http.ResponseWriter, r *http.Request) {
	var req models.EvaluationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		app.interviewError(w, r, err)
		return
	}
	r = withInterviewType(r, req.InterviewType)

	sess, err := app.controller.Catalog().Restore(req.InterviewType, req.UserName, req.Variant,
		toHistory(req.ConversationHistory))
	if err != nil {
		app.interviewError(w, r, err)
		return
	}
	var result interview.EvaluationResult
	if _, result, err = app.controller.Evaluate(r.Context(), sess); err != nil {
		app.interviewError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, models.EvaluationResponse{
		OverallScore:        result.OverallScore,
		CategoryScores:      result.CategoryScores,
		Strengths:           result.Strengths,
		AreasForImprovement: result.AreasForImprovement,
		DetailedFeedback:    result.DetailedFeedback,
		Summary:             result.Summary,
	})
}

// evaluateTurn scores a single answer against the rubric of its category.
func (app *application) evaluateTurn(w http.ResponseWriter, r *http.Request) {
	var req models.TurnEvaluationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		app.interviewError(w, r, err)
		return
	}
	r = withInterviewType(r, req.InterviewType)

	score, err := app.turns.EvaluateTurn(r.Context(), interview.TurnInput{
		InterviewType: req.InterviewType,
		Category:      req.Category,
		Question:      req.Question,
		Answer:        req.Answer,
		TurnNumber:    req.TurnNumber,
	})
	if err != nil {
		if interview.IsClientError(err) {
			app.interviewError(w, r, err)
			return
		}
		app.logger.LogAttrs(r.Context(), slog.LevelError, "turn evaluation failed", errors.SlogError(err))
		app.writeJSON(w, r, http.StatusBadGateway,
			models.ErrorResponse{Detail: "The answer could not be evaluated. Please try again."})
		return
	}
	app.writeJSON(w, r, http.StatusOK, models.TurnEvaluationResponse{TurnScore: models.TurnScore{
		TurnNumber:       score.TurnNumber,
		Question:         score.Question,
		Answer:           score.Answer,
		Category:         score.Category,
		CriterionScores:  score.CriterionScores,
		OverallTurnScore: score.OverallTurnScore,
		Feedback:         score.Feedback,
		Strengths:        score.Strengths,
		Improvements:     score.Improvements,
	}})
}
