package interview_test

import (
	"context"
	"fmt"
	"github.com/myrjola/interviewprep/internal/interview"
	"github.com/myrjola/interviewprep/internal/models"
	"github.com/myrjola/interviewprep/internal/testhelpers"
	"github.com/stretchr/testify/require"
	"strings"
	"sync"
	"testing"
)

type stubGenerator struct {
	mu      sync.Mutex
	err     error
	prompts []interview.Prompt
}

func (g *stubGenerator) GenerateQuestion(_ context.Context, prompt interview.Prompt, history interview.History) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return "", g.err
	}
	if _, rest, ok := strings.Cut(prompt.Instruction, "first question for "); ok {
		name, _, _ := strings.Cut(rest, ". Start")
		return fmt.Sprintf("Hello, %s! Tell me about yourself.", name), nil
	}
	return fmt.Sprintf("Question %d: what would you do next?", history.Questions()+1), nil
}

type stubScorer struct {
	mu    sync.Mutex
	reply func(instructions string) string
	err   error
	calls int
}

func (s *stubScorer) Score(_ context.Context, instructions string, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.reply(instructions), nil
}

type stubSynthesizer struct {
	err error
}

func (s stubSynthesizer) Synthesize(_ context.Context, text string) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []byte("mp3:" + text), nil
}

type stubRecorder struct {
	mu      sync.Mutex
	records []models.EvaluationRecord
}

func (r *stubRecorder) RecordEvaluation(_ context.Context, record models.EvaluationRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, record)
	return nil
}

// evaluationReply builds a well-formed evaluation reply for categories.
func evaluationReply(categories []string, score float64) string {
	var b strings.Builder
	b.WriteString("```json\n{\"overall_score\": ")
	fmt.Fprintf(&b, "%g, \"category_scores\": {", score)
	for i, c := range categories {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%q: %g", c, score)
	}
	b.WriteString(`}, "strengths": ["clear"], "areas_for_improvement": ["depth"], ` +
		`"detailed_feedback": "Good work.", "summary": "Solid."}` + "\n```")
	return b.String()
}

func defaultCatalog(t *testing.T) *interview.Catalog {
	t.Helper()
	catalog, err := interview.DefaultCatalog()
	require.NoError(t, err)
	return catalog
}

type fixture struct {
	catalog    *interview.Catalog
	generator  *stubGenerator
	scorer     *stubScorer
	recorder   *stubRecorder
	controller *interview.Controller
}

func newFixture(t *testing.T, speech interview.Synthesizer) *fixture {
	t.Helper()
	var (
		logger    = testhelpers.NewTestLogger(t)
		catalog   = defaultCatalog(t)
		generator = &stubGenerator{}
		recorder  = &stubRecorder{}
		scorer    = &stubScorer{}
	)
	scorer.reply = func(instructions string) string {
		if strings.Contains(instructions, "category_scores") {
			seq, _ := catalog.Variant("full")
			if !strings.Contains(instructions, seq.Categories[2]) {
				seq, _ = catalog.Variant("core")
			}
			return evaluationReply(seq.Categories, 8)
		}
		return `{"scenario": "on_topic", "reasoning": "Relevant.", "answer_quality": "good"}`
	}
	controller := interview.NewController(interview.ControllerConfig{
		Catalog:       catalog,
		Questions:     generator,
		Speech:        speech,
		Analyzer:      interview.NewAnswerAnalyzer(scorer, logger),
		Evaluator:     interview.NewEvaluator(catalog, scorer, logger),
		Recorder:      recorder,
		SpeechTimeout: 0,
		Logger:        logger,
	})
	return &fixture{
		catalog:    catalog,
		generator:  generator,
		scorer:     scorer,
		recorder:   recorder,
		controller: controller,
	}
}
