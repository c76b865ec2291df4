package e2etest

import (
	"context"
	"github.com/myrjola/interviewprep/internal/errors"
	"github.com/myrjola/interviewprep/internal/models"
	"log/slog"
)

// Answerer produces the candidate's answer to a question.
type Answerer func(ctx context.Context, question models.QuestionResponse) (string, error)

// Interview drives an interview from the greeting to the evaluation, answering every question with answer.
func (c *Client) Interview(
	ctx context.Context,
	start models.StartInterviewRequest,
	answer Answerer,
) (models.EvaluationResponse, error) {
	var evaluation models.EvaluationResponse
	question, err := c.StartInterview(ctx, start, false)
	if err != nil {
		return evaluation, errors.Wrap(err, "start interview")
	}
	variant := question.Variant
	history := []models.Message{{Role: "assistant", Content: question.Question}}
	for !question.Completed {
		var text string
		if text, err = answer(ctx, question); err != nil {
			return evaluation, errors.Wrap(err, "answer", slog.Int("question_number", question.QuestionNumber))
		}
		history = append(history, models.Message{Role: "user", Content: text})
		answered := question.QuestionNumber
		if question, err = c.NextQuestion(ctx, models.QuestionRequest{
			InterviewType:       start.InterviewType,
			ConversationHistory: history,
			QuestionNumber:      answered,
			UserName:            start.UserName,
			Variant:             variant,
		}, false); err != nil {
			return evaluation, errors.Wrap(err, "next question", slog.Int("question_number", answered+1))
		}
		if !question.Completed {
			history = append(history, models.Message{Role: "assistant", Content: question.Question})
		}
	}
	if evaluation, err = c.Evaluate(ctx, models.EvaluationRequest{
		InterviewType:       start.InterviewType,
		ConversationHistory: history,
		UserName:            start.UserName,
		Variant:             variant,
	}); err != nil {
		return evaluation, errors.Wrap(err, "evaluate")
	}
	return evaluation, nil
}
