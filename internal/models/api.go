package models

import "github.com/myrjola/interviewprep/internal/logging"

// Message is one turn of the conversation history exchanged with clients.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type StartInterviewRequest struct {
	InterviewType string `json:"interview_type"`
	UserName      string `json:"user_name"`
	UserEmail     string `json:"user_email"`
	Variant       string `json:"variant,omitempty"`
}

type QuestionRequest struct {
	InterviewType       string    `json:"interview_type"`
	ConversationHistory []Message `json:"conversation_history"`
	// QuestionNumber is the number of the question the last message answers.
	QuestionNumber int    `json:"question_number"`
	UserName       string `json:"user_name"`
	Variant        string `json:"variant,omitempty"`
}

// QuestionResponse carries the next question, or Completed once every question has been answered.
type QuestionResponse struct {
	Question       string  `json:"question,omitempty"`
	Category       string  `json:"category,omitempty"`
	QuestionNumber int     `json:"question_number"`
	TotalQuestions int     `json:"total_questions"`
	Variant        string  `json:"variant"`
	Completed      bool    `json:"completed"`
	AudioBase64    *string `json:"audio_base64,omitempty"`
}

type EvaluationRequest struct {
	InterviewType       string    `json:"interview_type"`
	ConversationHistory []Message `json:"conversation_history"`
	UserName            string    `json:"user_name"`
	Variant             string    `json:"variant,omitempty"`
}

type EvaluationResponse struct {
	OverallScore        float64            `json:"overall_score"`
	CategoryScores      map[string]float64 `json:"category_scores"`
	Strengths           []string           `json:"strengths"`
	AreasForImprovement []string           `json:"areas_for_improvement"`
	DetailedFeedback    string             `json:"detailed_feedback"`
	Summary             string             `json:"summary"`
}

type TurnEvaluationRequest struct {
	InterviewType string `json:"interview_type"`
	Question      string `json:"question"`
	Answer        string `json:"answer"`
	Category      string `json:"category"`
	TurnNumber    int    `json:"turn_number"`
}

type TurnScore struct {
	TurnNumber       int                `json:"turn_number"`
	Question         string             `json:"question"`
	Answer           string             `json:"answer"`
	Category         string             `json:"category"`
	CriterionScores  map[string]float64 `json:"criterion_scores"`
	OverallTurnScore float64            `json:"overall_turn_score"`
	Feedback         string             `json:"feedback"`
	Strengths        []string           `json:"strengths"`
	Improvements     []string           `json:"improvements"`
}

type TurnEvaluationResponse struct {
	TurnScore TurnScore `json:"turn_score"`
}

type AudioGenerateRequest struct {
	Text string `json:"text"`
}

type AudioGenerateResponse struct {
	AudioBase64 string `json:"audio_base64"`
	ContentType string `json:"content_type"`
}

type TranscriptionResponse struct {
	Transcription string `json:"transcription"`
	Success       bool   `json:"success"`
}

type CategoriesResponse struct {
	Categories []string `json:"categories"`
	Total      int      `json:"total"`
	Variant    string   `json:"variant"`
	Variants   []string `json:"variants"`
}

type InterviewTypesResponse struct {
	Types        []string          `json:"types"`
	Descriptions map[string]string `json:"descriptions"`
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

type LogsResponse struct {
	Success bool               `json:"success"`
	Count   int                `json:"count"`
	Logs    []logging.LogEntry `json:"logs"`
}

type LogStatsResponse struct {
	Success bool             `json:"success"`
	Stats   logging.LogStats `json:"stats"`
}

type ClearLogsResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type EvaluationsResponse struct {
	Evaluations []EvaluationRecord `json:"evaluations"`
	Count       int                `json:"count"`
}
