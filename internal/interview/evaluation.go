package interview

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/myrjola/interviewprep/internal/errors"
	"log/slog"
	"strings"
)

// fallbackScore is awarded to every category when the scorer cannot be used.
const fallbackScore = 7.0

// EvaluationResult is the final assessment of a completed interview.
type EvaluationResult struct {
	OverallScore        float64            `json:"overall_score"`
	CategoryScores      map[string]float64 `json:"category_scores"`
	Strengths           []string           `json:"strengths"`
	AreasForImprovement []string           `json:"areas_for_improvement"`
	DetailedFeedback    string             `json:"detailed_feedback"`
	Summary             string             `json:"summary"`
	// Degraded is set when the result is the fallback assessment.
	Degraded       bool   `json:"-"`
	DegradedReason string `json:"-"`
}

// EvaluationInput is everything the evaluator needs about a completed session.
type EvaluationInput struct {
	InterviewType string
	UserName      string
	Sequence      Sequence
	History       History
}

// Evaluator scores complete transcripts.
type Evaluator struct {
	catalog *Catalog
	scorer  Scorer
	logger  *slog.Logger
}

func NewEvaluator(catalog *Catalog, scorer Scorer, logger *slog.Logger) *Evaluator {
	return &Evaluator{catalog: catalog, scorer: scorer, logger: logger}
}

// Evaluate never fails. Scorer errors and malformed replies produce [FallbackResult].
func (e *Evaluator) Evaluate(ctx context.Context, in EvaluationInput) EvaluationResult {
	instructions, err := e.instructions(in)
	if err != nil {
		return FallbackResult(in.Sequence, err.Error())
	}
	reply, err := e.scorer.Score(ctx, instructions, in.History.Transcript())
	if err != nil {
		e.logger.LogAttrs(ctx, slog.LevelWarn, "scorer failed", errors.SlogError(err))
		return FallbackResult(in.Sequence, "scorer unavailable")
	}
	result, err := ParseEvaluation(reply, in.Sequence.Categories)
	if err != nil {
		e.logger.LogAttrs(ctx, slog.LevelWarn, "malformed evaluation", errors.SlogError(err),
			slog.Int("reply_length", len(reply)))
		return FallbackResult(in.Sequence, "malformed scorer reply")
	}
	return result
}

func (e *Evaluator) instructions(in EvaluationInput) (string, error) {
	t, err := e.catalog.Type(in.InterviewType)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert interviewer and career coach evaluating a mock interview for a %s position.\n",
		t.Position)
	if in.UserName != "" {
		fmt.Fprintf(&b, "The candidate is %s.\n", in.UserName)
	}
	b.WriteString("\nScore the candidate from 0 to 10 in each of these categories, using the listed criteria:\n")
	for i, category := range in.Sequence.Categories {
		fmt.Fprintf(&b, "%d. %s (%s)\n", i+1, category, strings.Join(e.catalog.Rubric(category).CriterionNames(), ", "))
	}
	b.WriteString(`
Scoring guidelines:
- 9-10: exceptional, specific and insightful answers
- 6-8: solid answers with room for more depth
- 3-5: partial or vague answers
- 0-2: missing, off-topic or incorrect answers

Return ONLY a JSON object in this exact format:
{
  "overall_score": <score 0-10>,
  "category_scores": {
`)
	for i, category := range in.Sequence.Categories {
		sep := ","
		if i == len(in.Sequence.Categories)-1 {
			sep = ""
		}
		fmt.Fprintf(&b, "    %q: <score 0-10>%s\n", category, sep)
	}
	b.WriteString(`  },
  "strengths": ["<strength>", "<strength>", "<strength>"],
  "areas_for_improvement": ["<area>", "<area>", "<area>"],
  "detailed_feedback": "<two or three paragraphs of feedback>",
  "summary": "<two sentence summary>"
}
Use the category names exactly as given.`)
	return b.String(), nil
}

type rawEvaluation struct {
	OverallScore        *float64            `json:"overall_score"`
	CategoryScores      map[string]*float64 `json:"category_scores"`
	Strengths           []string            `json:"strengths"`
	AreasForImprovement []string            `json:"areas_for_improvement"`
	DetailedFeedback    *string             `json:"detailed_feedback"`
	Summary             *string             `json:"summary"`
}

// ParseEvaluation strictly decodes a scorer reply. Every field must be present, every score must be within [0, 10],
// and the category scores must cover exactly categories.
func ParseEvaluation(reply string, categories []string) (EvaluationResult, error) {
	var (
		raw    rawEvaluation
		result EvaluationResult
	)
	if err := json.Unmarshal([]byte(cleanJSON(reply)), &raw); err != nil {
		return result, errors.Wrap(err, "decode evaluation")
	}
	switch {
	case raw.OverallScore == nil:
		return result, errors.New("missing overall_score")
	case raw.CategoryScores == nil:
		return result, errors.New("missing category_scores")
	case raw.Strengths == nil:
		return result, errors.New("missing strengths")
	case raw.AreasForImprovement == nil:
		return result, errors.New("missing areas_for_improvement")
	case raw.DetailedFeedback == nil:
		return result, errors.New("missing detailed_feedback")
	case raw.Summary == nil:
		return result, errors.New("missing summary")
	}
	if !validScore(*raw.OverallScore) {
		return result, errors.New("overall_score out of range", slog.Float64("score", *raw.OverallScore))
	}
	if len(raw.CategoryScores) != len(categories) {
		return result, errors.New("category_scores do not match categories",
			slog.Int("got", len(raw.CategoryScores)), slog.Int("want", len(categories)))
	}
	scores := make(map[string]float64, len(categories))
	for _, category := range categories {
		score, ok := raw.CategoryScores[category]
		if !ok || score == nil {
			return result, errors.New("missing category score", slog.String("category", category))
		}
		if !validScore(*score) {
			return result, errors.New("category score out of range",
				slog.String("category", category), slog.Float64("score", *score))
		}
		scores[category] = roundScore(*score)
	}
	result = EvaluationResult{
		OverallScore:        roundScore(*raw.OverallScore),
		CategoryScores:      scores,
		Strengths:           raw.Strengths,
		AreasForImprovement: raw.AreasForImprovement,
		DetailedFeedback:    *raw.DetailedFeedback,
		Summary:             *raw.Summary,
		Degraded:            false,
		DegradedReason:      "",
	}
	return result, nil
}

func validScore(score float64) bool {
	return score >= 0 && score <= 10
}

// FallbackResult is the deterministic assessment returned when scoring is unavailable.
func FallbackResult(seq Sequence, reason string) EvaluationResult {
	scores := make(map[string]float64, seq.Total())
	for _, category := range seq.Categories {
		scores[category] = fallbackScore
	}
	return EvaluationResult{
		OverallScore:   fallbackScore,
		CategoryScores: scores,
		Strengths: []string{
			"Completed the interview",
			"Engaged with questions",
			"Professional demeanor",
		},
		AreasForImprovement: []string{
			"Provide more specific examples",
			"Elaborate on technical knowledge",
			"Strengthen communication skills",
		},
		DetailedFeedback: "Thank you for completing the interview practice session. Your responses showed " +
			"engagement with the questions. To improve, focus on providing more detailed examples from your " +
			"experience and demonstrating deeper technical knowledge.",
		Summary:        "You completed the interview practice session. Keep practicing to build confidence.",
		Degraded:       true,
		DegradedReason: reason,
	}
}
