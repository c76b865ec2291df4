package interview

import (
	"context"
	"github.com/myrjola/interviewprep/internal/models"
	"io"
)

// QuestionGenerator produces the interviewer's next utterance.
type QuestionGenerator interface {
	GenerateQuestion(ctx context.Context, prompt Prompt, history History) (string, error)
}

// Synthesizer converts question text into audio. Its failure degrades delivery to text only.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Transcriber converts a spoken answer into text before it is submitted.
type Transcriber interface {
	Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error)
}

// Scorer answers scoring instructions about a transcript with JSON text. The reply may be malformed.
type Scorer interface {
	Score(ctx context.Context, instructions string, transcript string) (string, error)
}

// EvaluationRecorder stores evaluation outcomes for observability.
type EvaluationRecorder interface {
	RecordEvaluation(ctx context.Context, record models.EvaluationRecord) error
}
