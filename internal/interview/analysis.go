package interview

import (
	"context"
	"encoding/json"
	"github.com/myrjola/interviewprep/internal/errors"
	"log/slog"
	"strings"
)

// Scenario classifies how an answer relates to its question.
type Scenario string

const (
	ScenarioOnTopic     Scenario = "on_topic"
	ScenarioOffTopic    Scenario = "off_topic"
	ScenarioDoesNotKnow Scenario = "does_not_know"
)

// AnswerAnalysis is the classification of the latest answer used to shape the next question.
type AnswerAnalysis struct {
	Scenario  Scenario `json:"scenario"`
	Reasoning string   `json:"reasoning"`
	Quality   string   `json:"answer_quality"`
}

const analysisInstructions = `You are an expert interviewer analyzing a candidate's response.

Classify the answer into ONE of these scenarios:
- on_topic: the answer addresses the question. It can be right, partially right, or wrong but still within the context of what was asked.
- off_topic: the answer is completely irrelevant and does not address what was asked.
- does_not_know: the candidate says they do not know, are unsure, have no experience with this, or cannot answer.

Return ONLY a JSON object in this exact format:
{
  "scenario": "<on_topic, off_topic or does_not_know>",
  "reasoning": "<brief one sentence explanation>",
  "answer_quality": "<good, weak, wrong, irrelevant or unknown>"
}`

// AnswerAnalyzer classifies answers with a [Scorer].
type AnswerAnalyzer struct {
	scorer Scorer
	logger *slog.Logger
}

func NewAnswerAnalyzer(scorer Scorer, logger *slog.Logger) *AnswerAnalyzer {
	return &AnswerAnalyzer{scorer: scorer, logger: logger}
}

// Analyze classifies answer. Failures degrade to an on-topic classification so that the interview continues.
func (a *AnswerAnalyzer) Analyze(ctx context.Context, question string, answer string) AnswerAnalysis {
	transcript := "PREVIOUS QUESTION: " + question + "\n\nCANDIDATE'S ANSWER: " + answer
	reply, err := a.scorer.Score(ctx, analysisInstructions, transcript)
	if err == nil {
		var analysis AnswerAnalysis
		if analysis, err = parseAnalysis(reply); err == nil {
			a.logger.LogAttrs(ctx, slog.LevelDebug, "answer analysed",
				slog.String("scenario", string(analysis.Scenario)), slog.String("quality", analysis.Quality))
			return analysis
		}
	}
	a.logger.LogAttrs(ctx, slog.LevelWarn, "answer analysis unavailable", errors.SlogError(err))
	return AnswerAnalysis{Scenario: ScenarioOnTopic, Reasoning: "Analysis unavailable", Quality: "unknown"}
}

func parseAnalysis(reply string) (AnswerAnalysis, error) {
	var analysis AnswerAnalysis
	if err := json.Unmarshal([]byte(cleanJSON(reply)), &analysis); err != nil {
		return analysis, errors.Wrap(err, "decode analysis")
	}
	switch strings.ToLower(strings.TrimSpace(string(analysis.Scenario))) {
	case "on_topic", "a":
		analysis.Scenario = ScenarioOnTopic
	case "off_topic", "b":
		analysis.Scenario = ScenarioOffTopic
	case "does_not_know", "c":
		analysis.Scenario = ScenarioDoesNotKnow
	default:
		return analysis, errors.New("unknown scenario", slog.String("scenario", string(analysis.Scenario)))
	}
	if analysis.Quality == "" {
		analysis.Quality = "unknown"
	}
	return analysis, nil
}
