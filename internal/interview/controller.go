package interview

import (
	"context"
	"github.com/google/uuid"
	"github.com/myrjola/interviewprep/internal/errors"
	"github.com/myrjola/interviewprep/internal/models"
	"log/slog"
	"strings"
	"time"
)

// Question is one generated interviewer turn.
type Question struct {
	Text     string
	Category string
	Number   int
	Total    int
	// Audio holds the synthesized speech. Nil when audio was not requested or synthesis failed.
	Audio []byte
}

// QuestionOptions tune how a question is delivered.
type QuestionOptions struct {
	Audio bool
}

// ControllerConfig wires the collaborators of a [Controller]. Speech, Analyzer and Recorder are optional.
type ControllerConfig struct {
	Catalog       *Catalog
	Questions     QuestionGenerator
	Speech        Synthesizer
	Analyzer      *AnswerAnalyzer
	Evaluator     *Evaluator
	Recorder      EvaluationRecorder
	SpeechTimeout time.Duration
	Logger        *slog.Logger
}

// Controller drives sessions through the interview protocol. It holds no per-session state and is safe for
// concurrent use.
type Controller struct {
	catalog       *Catalog
	questions     QuestionGenerator
	speech        Synthesizer
	analyzer      *AnswerAnalyzer
	evaluator     *Evaluator
	recorder      EvaluationRecorder
	speechTimeout time.Duration
	logger        *slog.Logger
}

func NewController(cfg ControllerConfig) *Controller {
	return &Controller{
		catalog:       cfg.Catalog,
		questions:     cfg.Questions,
		speech:        cfg.Speech,
		analyzer:      cfg.Analyzer,
		evaluator:     cfg.Evaluator,
		recorder:      cfg.Recorder,
		speechTimeout: cfg.SpeechTimeout,
		logger:        cfg.Logger,
	}
}

// Catalog returns the catalog sessions are validated against.
func (c *Controller) Catalog() *Catalog {
	return c.catalog
}

// Start asks the first question of a session that has not started.
func (c *Controller) Start(ctx context.Context, sess Session, opts QuestionOptions) (Session, Question, error) {
	if sess.State != StateNotStarted {
		return sess, Question{}, sess.violation("interview already started") //nolint:exhaustruct // zero value on error.
	}
	pending := sess
	pending.QuestionNumber = 1
	pending.State = StateAwaitingQuestion
	next, q, err := c.ask(ctx, pending, nil, opts)
	if err != nil {
		return sess, q, err
	}
	return next, q, nil
}

// SubmitAnswer records the answer to the current question and asks the next one.
//
// history must be the session history followed by exactly one answer and questionNumber must be the question being
// answered. After the last answer the session completes and the returned question is nil. On error the returned
// session is sess.
func (c *Controller) SubmitAnswer(
	ctx context.Context,
	sess Session,
	history History,
	questionNumber int,
	opts QuestionOptions,
) (Session, *Question, error) {
	if sess.State != StateAwaitingAnswer {
		return sess, nil, sess.violation("no question awaits an answer")
	}
	if questionNumber != sess.QuestionNumber {
		return sess, nil, sess.violation("answer submitted for another question",
			slog.Int("submitted_question_number", questionNumber))
	}
	if err := history.Validate(); err != nil {
		return sess, nil, err
	}
	if len(history) != len(sess.History)+1 || !history[:len(sess.History)].Equal(sess.History) {
		return sess, nil, sess.violation("history must extend the session by exactly one answer",
			slog.Int("turns", len(history)))
	}

	answered := sess
	answered.History = history.Clone()
	if questionNumber == sess.Total() {
		answered.State = StateCompleted
		c.logger.LogAttrs(ctx, slog.LevelInfo, "interview completed", answered.attrs()...)
		return answered, nil, nil
	}
	answered.QuestionNumber = questionNumber + 1
	answered.State = StateAwaitingQuestion

	var analysis *AnswerAnalysis
	if c.analyzer != nil {
		question, answer, _ := answered.History.LastExchange()
		a := c.analyzer.Analyze(ctx, question, answer)
		analysis = &a
	}

	next, q, err := c.ask(ctx, answered, analysis, opts)
	if err != nil {
		return sess, nil, err
	}
	return next, &q, nil
}

// Evaluate scores a completed session. Scoring problems never fail the call; they produce the fallback result,
// which is logged and recorded.
func (c *Controller) Evaluate(ctx context.Context, sess Session) (Session, EvaluationResult, error) {
	if sess.State != StateCompleted {
		return sess, EvaluationResult{}, sess.violation("interview is not completed") //nolint:exhaustruct // zero value on error.
	}
	result := c.evaluator.Evaluate(ctx, EvaluationInput{
		InterviewType: sess.InterviewType,
		UserName:      sess.UserName,
		Sequence:      sess.Sequence,
		History:       sess.History.Clone(),
	})
	if result.Degraded {
		c.logger.LogAttrs(ctx, slog.LevelWarn, "evaluation degraded", slog.String("reason", result.DegradedReason))
	} else {
		c.logger.LogAttrs(ctx, slog.LevelInfo, "interview evaluated", slog.Float64("overall_score", result.OverallScore))
	}
	c.record(ctx, sess, result)

	evaluated := sess
	evaluated.State = StateEvaluated
	return evaluated, result, nil
}

func (c *Controller) record(ctx context.Context, sess Session, result EvaluationResult) {
	if c.recorder == nil {
		return
	}
	err := c.recorder.RecordEvaluation(ctx, models.EvaluationRecord{
		ID:             uuid.NewString(),
		InterviewType:  sess.InterviewType,
		Variant:        sess.Sequence.Name,
		OverallScore:   result.OverallScore,
		Degraded:       result.Degraded,
		DegradedReason: result.DegradedReason,
		Created:        time.Now().UTC(),
	})
	if err != nil {
		c.logger.LogAttrs(ctx, slog.LevelError, "record evaluation", errors.SlogError(err))
	}
}

// ask generates the question for a session awaiting one.
func (c *Controller) ask(
	ctx context.Context,
	sess Session,
	analysis *AnswerAnalysis,
	opts QuestionOptions,
) (Session, Question, error) {
	var q Question
	category, err := sess.Category()
	if err != nil {
		return sess, q, err
	}
	system, err := c.catalog.SystemPrompt(sess.InterviewType, sess.Sequence)
	if err != nil {
		return sess, q, err
	}
	params := PromptParams{
		InterviewType:    sess.InterviewType,
		Category:         category,
		UserName:         sess.UserName,
		First:            sess.QuestionNumber == 1,
		PreviousQuestion: "",
		Analysis:         analysis,
	}
	if previous, _, ok := sess.History.LastExchange(); ok {
		params.PreviousQuestion = previous
	}
	instruction, err := c.catalog.Instruction(params)
	if err != nil {
		return sess, q, err
	}

	start := time.Now()
	text, err := c.questions.GenerateQuestion(ctx, Prompt{System: system, Instruction: instruction}, sess.History.Clone())
	if err != nil {
		return sess, q, errors.Join(
			errors.Wrap(ErrQuestionGenerationFailed, "generate question", sess.attrs()...), err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return sess, q, errors.Wrap(ErrQuestionGenerationFailed, "empty question", sess.attrs()...)
	}
	c.logger.LogAttrs(ctx, slog.LevelInfo, "question generated",
		slog.Int("question_number", sess.QuestionNumber),
		slog.String("category", category),
		slog.Duration("duration", time.Since(start)))

	q = Question{
		Text:     text,
		Category: category,
		Number:   sess.QuestionNumber,
		Total:    sess.Total(),
		Audio:    nil,
	}
	if opts.Audio {
		q.Audio = c.synthesize(ctx, text)
	}

	next := sess
	next.History = sess.History.Append(Turn{Role: RoleAsker, Content: text})
	next.State = StateAwaitingAnswer
	return next, q, nil
}

// synthesize returns nil when speech is unavailable so that the question is still delivered as text.
func (c *Controller) synthesize(ctx context.Context, text string) []byte {
	if c.speech == nil {
		return nil
	}
	if c.speechTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.speechTimeout)
		defer cancel()
	}
	audio, err := c.speech.Synthesize(ctx, text)
	if err != nil {
		c.logger.LogAttrs(ctx, slog.LevelWarn, "speech synthesis failed, delivering text only", errors.SlogError(err))
		return nil
	}
	return audio
}
