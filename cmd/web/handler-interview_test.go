package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"github.com/myrjola/interviewprep/internal/e2etest"
	"github.com/myrjola/interviewprep/internal/errors"
	"github.com/myrjola/interviewprep/internal/models"
	"github.com/myrjola/interviewprep/internal/testhelpers"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"io"
	"net/http"
	"strings"
	"testing"
)

const coreTotal = 7

// completedHistory builds a finished conversation of n questions and answers.
func completedHistory(n int) []models.Message {
	history := make([]models.Message, 0, 2*n)
	for i := 0; i < n; i++ {
		history = append(history,
			models.Message{Role: "assistant", Content: fmt.Sprintf("Question %d?", i+1)},
			models.Message{Role: "user", Content: fmt.Sprintf("My detailed answer number %d.", i+1)},
		)
	}
	return history
}

func Test_application_interviewFlow(t *testing.T) {
	server := startTestServer(t, io.Discard, nil)

	var question models.QuestionResponse
	status := server.PostJSON(t, "/api/interview/start?include_audio=true", models.StartInterviewRequest{
		InterviewType: "hygienist",
		UserName:      "Ada",
		UserEmail:     "ada@example.com",
		Variant:       "core",
	}, &question)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "Hello Ada, welcome! What drew you to this profession?", question.Question)
	require.Equal(t, "Introduction", question.Category)
	require.Equal(t, 1, question.QuestionNumber)
	require.Equal(t, coreTotal, question.TotalQuestions)
	require.Equal(t, "core", question.Variant)
	require.NotNil(t, question.AudioBase64)
	audio, err := base64.StdEncoding.DecodeString(*question.AudioBase64)
	require.NoError(t, err)
	require.Equal(t, testhelpers.FakeAudio, audio)

	history := []models.Message{{Role: "assistant", Content: question.Question}}
	for n := 1; n <= coreTotal; n++ {
		history = append(history, models.Message{Role: "user", Content: fmt.Sprintf("A thoughtful answer %d.", n)})
		var next models.QuestionResponse
		status = server.PostJSON(t, "/api/interview/question?include_audio=false", models.QuestionRequest{
			InterviewType:       "hygienist",
			ConversationHistory: history,
			QuestionNumber:      n,
			UserName:            "Ada",
			Variant:             "core",
		}, &next)
		require.Equal(t, http.StatusOK, status, "question %d", n)
		require.Nil(t, next.AudioBase64)
		if n == coreTotal {
			require.True(t, next.Completed)
			require.Empty(t, next.Question)
			require.Equal(t, coreTotal, next.QuestionNumber)
			break
		}
		require.False(t, next.Completed)
		require.Equal(t, n+1, next.QuestionNumber)
		require.NotEmpty(t, next.Question)
		history = append(history, models.Message{Role: "assistant", Content: next.Question})
	}

	var evaluation models.EvaluationResponse
	status = server.PostJSON(t, "/api/interview/evaluate", models.EvaluationRequest{
		InterviewType:       "hygienist",
		ConversationHistory: history,
		UserName:            "Ada",
		Variant:             "core",
	}, &evaluation)
	require.Equal(t, http.StatusOK, status)
	require.InDelta(t, 8.1, evaluation.OverallScore, 0.001)
	require.Len(t, evaluation.CategoryScores, coreTotal)
	for category, score := range evaluation.CategoryScores {
		require.InDelta(t, 8.0, score, 0.001, category)
	}
	require.Equal(t, "A solid interview.", evaluation.Summary)

	var stats models.EvaluationStats
	require.Equal(t, http.StatusOK, server.GetJSON(t, "/api/evaluations/stats", &stats))
	require.Equal(t, 1, stats.Total)
	require.Equal(t, 0, stats.Degraded)
	require.InDelta(t, 8.1, stats.AverageScore, 0.001)

	var recent models.EvaluationsResponse
	require.Equal(t, http.StatusOK, server.GetJSON(t, "/api/evaluations?limit=5", &recent))
	require.Equal(t, 1, recent.Count)
	require.Equal(t, "hygienist", recent.Evaluations[0].InterviewType)
	require.Equal(t, "core", recent.Evaluations[0].Variant)
}

func Test_application_startInterview_rejected(t *testing.T) {
	server := startTestServer(t, io.Discard, nil)

	tests := []struct {
		name   string
		path   string
		body   any
		detail string
	}{
		{
			name:   "unknown interview type",
			path:   "/api/interview/start",
			body:   models.StartInterviewRequest{InterviewType: "surgeon", UserName: "Ada", UserEmail: "", Variant: ""},
			detail: "unknown interview type",
		},
		{
			name:   "unknown variant",
			path:   "/api/interview/start",
			body:   models.StartInterviewRequest{InterviewType: "dentist", UserName: "Ada", UserEmail: "", Variant: "x"},
			detail: "unknown interview variant",
		},
		{
			name:   "missing name",
			path:   "/api/interview/start",
			body:   models.StartInterviewRequest{InterviewType: "dentist", UserName: " ", UserEmail: "", Variant: ""},
			detail: "user_name is required",
		},
		{
			name:   "invalid include_audio",
			path:   "/api/interview/start?include_audio=maybe",
			body:   models.StartInterviewRequest{InterviewType: "dentist", UserName: "Ada", UserEmail: "", Variant: ""},
			detail: "include_audio must be a boolean",
		},
		{
			name:   "not an object",
			path:   "/api/interview/start",
			body:   []string{"dentist"},
			detail: "invalid JSON body",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp models.ErrorResponse
			require.Equal(t, http.StatusBadRequest, server.PostJSON(t, tt.path, tt.body, &resp))
			require.Contains(t, resp.Detail, tt.detail)
		})
	}
	require.Empty(t, server.fake.ChatRequests(), "rejected requests never reach the vendor")
}

func Test_application_nextQuestion_rejected(t *testing.T) {
	server := startTestServer(t, io.Discard, nil)
	firstExchange := []models.Message{
		{Role: "assistant", Content: "Hello Ada, what drew you to dentistry?"},
		{Role: "user", Content: "I enjoy helping people."},
	}

	tests := []struct {
		name   string
		req    models.QuestionRequest
		detail string
	}{
		{
			name: "answer for another question",
			req: models.QuestionRequest{InterviewType: "dentist", ConversationHistory: firstExchange,
				QuestionNumber: 2, UserName: "Ada", Variant: ""},
			detail: "sequence violation",
		},
		{
			name: "history without a pending answer",
			req: models.QuestionRequest{InterviewType: "dentist", ConversationHistory: firstExchange[:1],
				QuestionNumber: 1, UserName: "Ada", Variant: ""},
			detail: "sequence violation",
		},
		{
			name: "history starting with an answer",
			req: models.QuestionRequest{InterviewType: "dentist", ConversationHistory: firstExchange[1:],
				QuestionNumber: 1, UserName: "Ada", Variant: ""},
			detail: "malformed conversation history",
		},
		{
			name: "unknown role",
			req: models.QuestionRequest{InterviewType: "dentist", ConversationHistory: []models.Message{
				{Role: "assistant", Content: "Hello?"}, {Role: "system", Content: "hi"},
			}, QuestionNumber: 1, UserName: "Ada", Variant: ""},
			detail: "malformed conversation history",
		},
		{
			name: "more answers than questions in the variant",
			req: models.QuestionRequest{InterviewType: "dentist",
				ConversationHistory: append(completedHistory(coreTotal),
					models.Message{Role: "assistant", Content: "One more?"},
					models.Message{Role: "user", Content: "Sure."}),
				QuestionNumber: coreTotal + 1, UserName: "Ada", Variant: "core"},
			detail: "sequence violation",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp models.ErrorResponse
			require.Equal(t, http.StatusBadRequest, server.PostJSON(t, "/api/interview/question", tt.req, &resp))
			require.Contains(t, resp.Detail, tt.detail)
		})
	}
	require.Empty(t, server.fake.ChatRequests())
}

func Test_application_questionGenerationFailure(t *testing.T) {
	server := startTestServer(t, io.Discard, nil)
	server.fake.SetChat(func(openai.ChatCompletionRequest) (string, error) {
		return "", errors.New("upstream exploded with secret details")
	})

	var resp models.ErrorResponse
	status := server.PostJSON(t, "/api/interview/start", models.StartInterviewRequest{
		InterviewType: "dentist",
		UserName:      "Ada",
		UserEmail:     "",
		Variant:       "",
	}, &resp)
	require.Equal(t, http.StatusBadGateway, status)
	require.Equal(t, retryMessage, resp.Detail)
	require.NotContains(t, resp.Detail, "secret")
}

func Test_application_speechFailureDeliversText(t *testing.T) {
	server := startTestServer(t, io.Discard, nil)
	server.fake.SetSpeech(func(openai.CreateSpeechRequest) ([]byte, error) {
		return nil, errors.New("voice unavailable")
	})

	var question models.QuestionResponse
	status := server.PostJSON(t, "/api/interview/start", models.StartInterviewRequest{
		InterviewType: "dentist",
		UserName:      "Grace",
		UserEmail:     "",
		Variant:       "",
	}, &question)
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, question.Question, "Grace")
	require.Nil(t, question.AudioBase64)
	require.Equal(t, 10, question.TotalQuestions, "the default variant is the full interview")
}

func Test_application_evaluateInterview(t *testing.T) {
	t.Run("malformed scorer reply falls back", func(t *testing.T) {
		server := startTestServer(t, io.Discard, nil)
		server.fake.SetChat(func(openai.ChatCompletionRequest) (string, error) {
			return "I would rate this candidate highly.", nil
		})

		var evaluation models.EvaluationResponse
		status := server.PostJSON(t, "/api/interview/evaluate", models.EvaluationRequest{
			InterviewType:       "dentist",
			ConversationHistory: completedHistory(coreTotal),
			UserName:            "Ada",
			Variant:             "core",
		}, &evaluation)
		require.Equal(t, http.StatusOK, status)
		require.InDelta(t, 7.0, evaluation.OverallScore, 0.001)
		require.Len(t, evaluation.CategoryScores, coreTotal)
		require.Contains(t, evaluation.Strengths, "Completed the interview")

		var stats models.EvaluationStats
		require.Equal(t, http.StatusOK, server.GetJSON(t, "/api/evaluations/stats", &stats))
		require.Equal(t, 1, stats.Total)
		require.Equal(t, 1, stats.Degraded)
	})

	t.Run("incomplete interview is rejected", func(t *testing.T) {
		server := startTestServer(t, io.Discard, nil)

		var resp models.ErrorResponse
		status := server.PostJSON(t, "/api/interview/evaluate", models.EvaluationRequest{
			InterviewType:       "dentist",
			ConversationHistory: completedHistory(3),
			UserName:            "Ada",
			Variant:             "core",
		}, &resp)
		require.Equal(t, http.StatusBadRequest, status)
		assert.Contains(t, resp.Detail, "sequence violation")
		require.Empty(t, server.fake.ChatRequests())
	})
}

func Test_application_evaluateTurn(t *testing.T) {
	server := startTestServer(t, io.Discard, nil)

	var resp models.TurnEvaluationResponse
	status := server.PostJSON(t, "/api/interview/evaluate-turn", models.TurnEvaluationRequest{
		InterviewType: "dentist",
		Question:      "How do you handle an anxious patient?",
		Answer:        "I explain every step and agree on a stop signal before I start.",
		Category:      "Clinical Judgement",
		TurnNumber:    2,
	}, &resp)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 2, resp.TurnScore.TurnNumber)
	require.Len(t, resp.TurnScore.CriterionScores, 3)
	require.InDelta(t, 7.0, resp.TurnScore.OverallTurnScore, 0.001)
	require.Equal(t, []string{"Relevant"}, resp.TurnScore.Strengths)

	requests := len(server.fake.ChatRequests())
	status = server.PostJSON(t, "/api/interview/evaluate-turn", models.TurnEvaluationRequest{
		InterviewType: "dentist",
		Question:      "How do you handle an anxious patient?",
		Answer:        " um ",
		Category:      "Clinical Judgement",
		TurnNumber:    3,
	}, &resp)
	require.Equal(t, http.StatusOK, status)
	require.Zero(t, resp.TurnScore.OverallTurnScore)
	require.Len(t, server.fake.ChatRequests(), requests, "short answers are not sent to the scorer")

	server.fake.SetChat(func(openai.ChatCompletionRequest) (string, error) {
		return "", errors.New("rate limited")
	})
	var errResp models.ErrorResponse
	status = server.PostJSON(t, "/api/interview/evaluate-turn", models.TurnEvaluationRequest{
		InterviewType: "dentist",
		Question:      "How do you handle an anxious patient?",
		Answer:        "I keep talking to them calmly.",
		Category:      "Clinical Judgement",
		TurnNumber:    4,
	}, &errResp)
	require.Equal(t, http.StatusBadGateway, status)
	require.True(t, strings.HasPrefix(errResp.Detail, "The answer could not be evaluated"))
}

func Test_application_e2eClient(t *testing.T) {
	server := startTestServer(t, io.Discard, map[string]string{"INTERVIEW_ANALYZE_ANSWERS": "false"})
	ctx := context.Background()

	asked := 0
	evaluation, err := server.Client().Interview(ctx, models.StartInterviewRequest{
		InterviewType: "dentist",
		UserName:      "Linus",
		UserEmail:     "",
		Variant:       "core",
	}, func(_ context.Context, q models.QuestionResponse) (string, error) {
		asked++
		require.Equal(t, asked, q.QuestionNumber)
		return "I would talk it through with the patient first.", nil
	})
	require.NoError(t, err)
	require.Equal(t, coreTotal, asked)
	require.InDelta(t, 8.1, evaluation.OverallScore, 0.001)

	// Without answer analysis only questions and the evaluation reach the vendor.
	require.Len(t, server.fake.ChatRequests(), coreTotal+1)

	_, err = server.Client().Categories(ctx, "express")
	require.ErrorIs(t, err, e2etest.ErrUnexpectedStatus)
	require.Contains(t, err.Error(), "unknown interview variant")
}
