package main

import (
	"github.com/justinas/alice"
	"net/http"
)

func (app *application) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/healthy", app.healthy)
	mux.HandleFunc("GET /health", app.healthy)

	mux.HandleFunc("POST /api/interview/start", app.startInterview)
	mux.HandleFunc("POST /api/interview/question", app.nextQuestion)
	mux.HandleFunc("POST /api/interview/evaluate", app.evaluateInterview)
	mux.HandleFunc("POST /api/interview/evaluate-turn", app.evaluateTurn)

	mux.HandleFunc("POST /api/audio/generate", app.generateAudio)
	mux.HandleFunc("POST /api/audio/transcribe", app.transcribeAudio)

	mux.HandleFunc("GET /api/categories", app.categories)
	mux.HandleFunc("GET /api/interview-types", app.interviewTypes)

	mux.HandleFunc("GET /api/evaluations", app.recentEvaluations)
	mux.HandleFunc("GET /api/evaluations/stats", app.evaluationStats)

	mux.HandleFunc("GET /api/logs", app.listLogs)
	mux.HandleFunc("DELETE /api/logs", app.clearLogs)
	mux.HandleFunc("GET /api/logs/stats", app.logStats)
	mux.Handle("GET /logs", alice.New(app.cspNonce).ThenFunc(app.logsPage))

	mux.HandleFunc("/", app.notFound)

	common := alice.New(app.recoverPanic, app.logRequest, app.requestID, cors, secureHeaders)
	return common.Then(timeoutHandler(mux, app.requestTimeout))
}
