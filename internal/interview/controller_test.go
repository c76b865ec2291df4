package interview_test

import (
	"context"
	"github.com/myrjola/interviewprep/internal/errors"
	"github.com/myrjola/interviewprep/internal/interview"
	"github.com/stretchr/testify/require"
	"testing"
)

var noAudio = interview.QuestionOptions{Audio: false}

func TestController_FullInterview(t *testing.T) {
	for _, variant := range []string{"full", "core"} {
		t.Run(variant, func(t *testing.T) {
			var (
				f   = newFixture(t, nil)
				ctx = context.Background()
			)
			sess, err := f.catalog.NewSession("dentist", "Jane Doe", variant)
			require.NoError(t, err)
			require.Equal(t, interview.StateNotStarted, sess.State)

			sess, q, err := f.controller.Start(ctx, sess, noAudio)
			require.NoError(t, err)
			require.Equal(t, 1, q.Number)
			require.Equal(t, sess.Sequence.Categories[0], q.Category)
			require.Contains(t, q.Text, "Jane Doe")
			require.Nil(t, q.Audio)
			require.Equal(t, interview.StateAwaitingAnswer, sess.State)

			for n := 1; n <= sess.Total(); n++ {
				history := sess.History.Append(responder("I have five years experience"))
				var next *interview.Question
				sess, next, err = f.controller.SubmitAnswer(ctx, sess, history, n, noAudio)
				require.NoError(t, err)
				if n == sess.Total() {
					require.Nil(t, next)
					require.Equal(t, interview.StateCompleted, sess.State)
					continue
				}
				require.NotNil(t, next)
				require.Equal(t, n+1, next.Number)
				require.Equal(t, sess.Sequence.Categories[n], next.Category)
				require.Equal(t, interview.StateAwaitingAnswer, sess.State)
			}
			require.Len(t, sess.History, 2*sess.Total())

			sess, result, err := f.controller.Evaluate(ctx, sess)
			require.NoError(t, err)
			require.Equal(t, interview.StateEvaluated, sess.State)
			require.False(t, result.Degraded)
			require.InDelta(t, 8.0, result.OverallScore, 0.001)
			require.Len(t, result.CategoryScores, sess.Total())
			for _, category := range sess.Sequence.Categories {
				require.Contains(t, result.CategoryScores, category)
			}

			require.Len(t, f.recorder.records, 1)
			require.Equal(t, variant, f.recorder.records[0].Variant)
			require.False(t, f.recorder.records[0].Degraded)
		})
	}
}

func TestController_SubmitAnswer_SequenceViolation(t *testing.T) {
	var (
		f   = newFixture(t, nil)
		ctx = context.Background()
	)
	sess, err := f.catalog.NewSession("hygienist", "Sam", "core")
	require.NoError(t, err)
	sess, _, err = f.controller.Start(ctx, sess, noAudio)
	require.NoError(t, err)
	before := sess.History.Clone()

	history := sess.History.Append(responder("An answer"))
	got, next, err := f.controller.SubmitAnswer(ctx, sess, history, 2, noAudio)
	require.ErrorIs(t, err, interview.ErrSequenceViolation)
	require.Nil(t, next)
	require.Equal(t, sess, got)
	require.Equal(t, before, sess.History, "history is not altered")

	// History that does not extend the session by exactly one answer.
	_, _, err = f.controller.SubmitAnswer(ctx, sess, sess.History, 1, noAudio)
	require.ErrorIs(t, err, interview.ErrSequenceViolation)

	tampered := interview.History{asker("A different question"), responder("An answer")}
	_, _, err = f.controller.SubmitAnswer(ctx, sess, tampered, 1, noAudio)
	require.ErrorIs(t, err, interview.ErrSequenceViolation)

	malformed := sess.History.Append(asker("Another question"))
	_, _, err = f.controller.SubmitAnswer(ctx, sess, malformed, 1, noAudio)
	require.ErrorIs(t, err, interview.ErrMalformedHistory)
}

func TestController_CompletedIsTerminalForQuestions(t *testing.T) {
	var (
		f   = newFixture(t, nil)
		ctx = context.Background()
	)
	sess, err := f.catalog.NewSession("dentist", "Sam", "core")
	require.NoError(t, err)
	sess, _, err = f.controller.Start(ctx, sess, noAudio)
	require.NoError(t, err)
	for n := 1; n <= sess.Total(); n++ {
		sess, _, err = f.controller.SubmitAnswer(ctx, sess, sess.History.Append(responder("answer")), n, noAudio)
		require.NoError(t, err)
	}
	require.Equal(t, interview.StateCompleted, sess.State)

	_, _, err = f.controller.Start(ctx, sess, noAudio)
	require.ErrorIs(t, err, interview.ErrSequenceViolation)

	_, _, err = f.controller.SubmitAnswer(ctx, sess, sess.History.Append(asker("Q"), responder("A")), sess.Total()+1,
		noAudio)
	require.ErrorIs(t, err, interview.ErrSequenceViolation)

	evaluated, _, err := f.controller.Evaluate(ctx, sess)
	require.NoError(t, err)

	_, _, err = f.controller.Evaluate(ctx, evaluated)
	require.ErrorIs(t, err, interview.ErrSequenceViolation, "evaluated is terminal")
}

func TestController_EvaluateBeforeCompletion(t *testing.T) {
	f := newFixture(t, nil)
	sess, err := f.catalog.NewSession("dentist", "Sam", "")
	require.NoError(t, err)
	_, _, err = f.controller.Evaluate(context.Background(), sess)
	require.ErrorIs(t, err, interview.ErrSequenceViolation)
}

func TestController_EvaluateFallsBackOnGarbage(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		err   error
	}{
		{"garbage", "I'm sorry, I cannot help with that.", nil},
		{"missing categories", `{"overall_score": 8, "category_scores": {}, "strengths": [], ` +
			`"areas_for_improvement": [], "detailed_feedback": "", "summary": ""}`, nil},
		{"score out of range", `{"overall_score": 42}`, nil},
		{"vendor failure", "", errors.New("connection reset")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				f   = newFixture(t, nil)
				ctx = context.Background()
			)
			sess, err := f.catalog.Restore("dentist", "Sam", "core", completedHistory(7))
			require.NoError(t, err)
			require.Equal(t, interview.StateCompleted, sess.State)

			f.scorer.reply = func(string) string { return tt.reply }
			f.scorer.err = tt.err

			_, result, err := f.controller.Evaluate(ctx, sess)
			require.NoError(t, err)
			require.True(t, result.Degraded)
			require.InDelta(t, 7.0, result.OverallScore, 0.001)
			require.Len(t, result.CategoryScores, 7)
			for _, category := range sess.Sequence.Categories {
				score, ok := result.CategoryScores[category]
				require.True(t, ok, category)
				require.GreaterOrEqual(t, score, 0.0)
				require.LessOrEqual(t, score, 10.0)
			}
			require.NotEmpty(t, result.Strengths)
			require.NotEmpty(t, result.AreasForImprovement)
			require.NotEmpty(t, result.DetailedFeedback)
			require.NotEmpty(t, result.Summary)

			require.Len(t, f.recorder.records, 1)
			require.True(t, f.recorder.records[0].Degraded)
			require.NotEmpty(t, f.recorder.records[0].DegradedReason)
		})
	}
}

func TestController_QuestionGenerationFailure(t *testing.T) {
	var (
		f   = newFixture(t, nil)
		ctx = context.Background()
	)
	sess, err := f.catalog.NewSession("dentist", "Sam", "full")
	require.NoError(t, err)
	sess, _, err = f.controller.Start(ctx, sess, noAudio)
	require.NoError(t, err)

	vendorErr := errors.New("rate limited")
	f.generator.err = vendorErr
	history := sess.History.Append(responder("answer"))
	got, next, err := f.controller.SubmitAnswer(ctx, sess, history, 1, noAudio)
	require.ErrorIs(t, err, interview.ErrQuestionGenerationFailed)
	require.ErrorIs(t, err, vendorErr)
	require.Nil(t, next)
	require.Equal(t, sess, got, "session is not advanced")

	// The caller retries the same turn once the vendor recovers.
	f.generator.err = nil
	got, next, err = f.controller.SubmitAnswer(ctx, sess, history, 1, noAudio)
	require.NoError(t, err)
	require.Equal(t, 2, next.Number)
	require.Equal(t, 2, got.QuestionNumber)

	fresh, err := f.catalog.NewSession("dentist", "Sam", "full")
	require.NoError(t, err)
	f.generator.err = vendorErr
	_, _, err = f.controller.Start(ctx, fresh, noAudio)
	require.ErrorIs(t, err, interview.ErrQuestionGenerationFailed)
}

func TestController_Audio(t *testing.T) {
	ctx := context.Background()

	f := newFixture(t, stubSynthesizer{err: nil})
	sess, err := f.catalog.NewSession("dentist", "Sam", "core")
	require.NoError(t, err)
	_, q, err := f.controller.Start(ctx, sess, interview.QuestionOptions{Audio: true})
	require.NoError(t, err)
	require.Equal(t, "mp3:"+q.Text, string(q.Audio))

	f = newFixture(t, stubSynthesizer{err: errors.New("speech service down")})
	next, q, err := f.controller.Start(ctx, sess, interview.QuestionOptions{Audio: true})
	require.NoError(t, err, "speech failure degrades to text")
	require.Nil(t, q.Audio)
	require.NotEmpty(t, q.Text)
	require.Equal(t, interview.StateAwaitingAnswer, next.State)
}

func TestController_AnalysisShapesNextPrompt(t *testing.T) {
	var (
		f   = newFixture(t, nil)
		ctx = context.Background()
	)
	f.scorer.reply = func(string) string {
		return `{"scenario": "C", "reasoning": "Candidate said they do not know.", "answer_quality": "unknown"}`
	}
	sess, err := f.catalog.NewSession("dentist", "Sam", "core")
	require.NoError(t, err)
	sess, _, err = f.controller.Start(ctx, sess, noAudio)
	require.NoError(t, err)
	_, _, err = f.controller.SubmitAnswer(ctx, sess, sess.History.Append(responder("I don't know")), 1, noAudio)
	require.NoError(t, err)

	require.Len(t, f.generator.prompts, 2)
	require.Contains(t, f.generator.prompts[1].Instruction, "Acknowledge their honesty")
	require.Contains(t, f.generator.prompts[1].Instruction, sess.History[0].Content)
}

func TestCatalog_Restore(t *testing.T) {
	catalog := defaultCatalog(t)
	tests := []struct {
		name       string
		history    interview.History
		wantState  interview.State
		wantNumber int
	}{
		{"empty", interview.History{}, interview.StateNotStarted, 0},
		{"awaiting first answer", interview.History{asker("Q1")}, interview.StateAwaitingAnswer, 1},
		{"awaiting second question", interview.History{asker("Q1"), responder("A1")},
			interview.StateAwaitingQuestion, 2},
		{"completed", completedHistory(7), interview.StateCompleted, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess, err := catalog.Restore("dentist", "Sam", "core", tt.history)
			require.NoError(t, err)
			require.Equal(t, tt.wantState, sess.State)
			require.Equal(t, tt.wantNumber, sess.QuestionNumber)
		})
	}

	_, err := catalog.Restore("dentist", "Sam", "core", completedHistory(8))
	require.ErrorIs(t, err, interview.ErrSequenceViolation)
	_, err = catalog.Restore("dentist", "Sam", "core", interview.History{responder("A1")})
	require.ErrorIs(t, err, interview.ErrMalformedHistory)
	_, err = catalog.Restore("orthodontist", "Sam", "core", nil)
	require.ErrorIs(t, err, interview.ErrUnknownInterviewType)
	_, err = catalog.Restore("dentist", "Sam", "express", nil)
	require.ErrorIs(t, err, interview.ErrUnknownVariant)
}

func completedHistory(questions int) interview.History {
	h := interview.History{}
	for i := 0; i < questions; i++ {
		h = h.Append(asker("Question?"), responder("Answer."))
	}
	return h
}
