package interview

import (
	"context"
	"encoding/json"
	"github.com/myrjola/interviewprep/internal/errors"
	"log/slog"
	"strings"
)

const (
	// minAnswerLength is the shortest answer that is sent to the scorer.
	minAnswerLength = 5
	neutralScore    = 5.0
)

// TurnInput is a single question and answer to score.
type TurnInput struct {
	InterviewType string
	Category      string
	Question      string
	Answer        string
	TurnNumber    int
}

// TurnScore is the rubric based assessment of one answer.
type TurnScore struct {
	TurnNumber       int
	Question         string
	Answer           string
	Category         string
	CriterionScores  map[string]float64
	OverallTurnScore float64
	Feedback         string
	Strengths        []string
	Improvements     []string
}

// TurnEvaluator scores individual answers against the rubric of their category.
type TurnEvaluator struct {
	catalog *Catalog
	scorer  Scorer
	logger  *slog.Logger
}

func NewTurnEvaluator(catalog *Catalog, scorer Scorer, logger *slog.Logger) *TurnEvaluator {
	return &TurnEvaluator{catalog: catalog, scorer: scorer, logger: logger}
}

// EvaluateTurn scores in. Answers too short to carry meaning score zero without consulting the scorer. Malformed
// scorer replies produce a neutral score while scorer errors are returned.
func (e *TurnEvaluator) EvaluateTurn(ctx context.Context, in TurnInput) (TurnScore, error) {
	if _, err := e.catalog.Type(in.InterviewType); err != nil {
		return TurnScore{}, err //nolint:exhaustruct // zero value on error.
	}
	rubric := e.catalog.Rubric(in.Category)
	score := TurnScore{
		TurnNumber:       in.TurnNumber,
		Question:         in.Question,
		Answer:           in.Answer,
		Category:         in.Category,
		CriterionScores:  nil,
		OverallTurnScore: 0,
		Feedback:         "",
		Strengths:        []string{},
		Improvements:     []string{},
	}

	if len(strings.TrimSpace(in.Answer)) < minAnswerLength {
		score.CriterionScores = uniformScores(rubric, 0)
		score.Feedback = "No meaningful response provided. Please ensure you speak clearly into the microphone."
		score.Improvements = []string{
			"Provide a verbal response to the question",
			"Speak clearly and ensure microphone is working",
		}
		e.logger.LogAttrs(ctx, slog.LevelInfo, "empty answer scored zero", slog.Int("turn_number", in.TurnNumber))
		return score, nil
	}

	reply, err := e.scorer.Score(ctx, turnInstructions(rubric),
		"QUESTION: "+in.Question+"\n\nCANDIDATE'S ANSWER: "+in.Answer+"\n\nNow evaluate this answer using the rubric.")
	if err != nil {
		return TurnScore{}, errors.Wrap(err, "score turn", slog.Int("turn_number", in.TurnNumber)) //nolint:exhaustruct // zero value on error.
	}

	parsed, err := parseTurnReply(reply, rubric)
	if err != nil {
		e.logger.LogAttrs(ctx, slog.LevelWarn, "malformed turn evaluation", errors.SlogError(err),
			slog.Int("turn_number", in.TurnNumber))
		score.CriterionScores = uniformScores(rubric, neutralScore)
		score.OverallTurnScore = neutralScore
		score.Feedback = "Response received and recorded. Continue to the next question."
		score.Strengths = []string{"Provided an answer"}
		score.Improvements = []string{"Could provide more detail"}
		return score, nil
	}

	score.CriterionScores = parsed.CriterionScores
	score.OverallTurnScore = rubric.WeightedScore(parsed.CriterionScores)
	score.Feedback = parsed.Feedback
	if parsed.Strengths != nil {
		score.Strengths = parsed.Strengths
	}
	if parsed.Improvements != nil {
		score.Improvements = parsed.Improvements
	}
	e.logger.LogAttrs(ctx, slog.LevelInfo, "turn evaluated",
		slog.Int("turn_number", in.TurnNumber), slog.Float64("score", score.OverallTurnScore))
	return score, nil
}

func uniformScores(rubric Rubric, value float64) map[string]float64 {
	scores := make(map[string]float64, len(rubric.Criteria))
	for _, c := range rubric.Criteria {
		scores[c.Name] = value
	}
	return scores
}

func turnInstructions(rubric Rubric) string {
	return "You are an expert interview evaluator. Evaluate the candidate's response using the rubric.\n\n" +
		rubric.Format() + `
Instructions:
1. Score each criterion independently from 0 to 10 based on the scoring guide.
2. Use the exact criterion names from the rubric.
3. Reference specific parts of the candidate's answer.
4. Identify one or two strengths and one or two areas for improvement.
5. If the answer is "I don't know" or completely off-topic, score Relevance 0-2.

Return ONLY a JSON object in this exact format:
{
  "criterion_scores": {"<criterion name>": <score 0-10>},
  "feedback": "<two or three sentences explaining the scores>",
  "strengths": ["<strength>"],
  "improvements": ["<improvement>"]
}`
}

type turnReply struct {
	CriterionScores map[string]float64
	Feedback        string
	Strengths       []string
	Improvements    []string
}

func parseTurnReply(reply string, rubric Rubric) (turnReply, error) {
	var raw struct {
		CriterionScores map[string]*float64 `json:"criterion_scores"`
		Feedback        string              `json:"feedback"`
		Strengths       []string            `json:"strengths"`
		Improvements    []string            `json:"improvements"`
	}
	if err := json.Unmarshal([]byte(cleanJSON(reply)), &raw); err != nil {
		return turnReply{}, errors.Wrap(err, "decode turn evaluation") //nolint:exhaustruct // zero value on error.
	}
	scores := make(map[string]float64, len(rubric.Criteria))
	for _, c := range rubric.Criteria {
		s, ok := raw.CriterionScores[c.Name]
		if !ok || s == nil {
			return turnReply{}, errors.New("missing criterion score", slog.String("criterion", c.Name)) //nolint:exhaustruct // zero value on error.
		}
		if !validScore(*s) {
			return turnReply{}, errors.New("criterion score out of range", //nolint:exhaustruct // zero value on error.
				slog.String("criterion", c.Name), slog.Float64("score", *s))
		}
		scores[c.Name] = roundScore(*s)
	}
	if raw.Feedback == "" {
		raw.Feedback = "No feedback provided"
	}
	return turnReply{
		CriterionScores: scores,
		Feedback:        raw.Feedback,
		Strengths:       raw.Strengths,
		Improvements:    raw.Improvements,
	}, nil
}
