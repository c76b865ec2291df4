package interview

import (
	"github.com/myrjola/interviewprep/internal/errors"
	"log/slog"
)

// State is the position of a session in the interview protocol.
type State string

const (
	StateNotStarted       State = "not_started"
	StateAwaitingQuestion State = "awaiting_question"
	StateAwaitingAnswer   State = "awaiting_answer"
	StateCompleted        State = "completed"
	StateEvaluated        State = "evaluated"
)

// Session is the client held state of one interview attempt.
//
// Sessions are values. Controller operations return a new Session and leave their input untouched, so a failed
// operation never advances the caller's copy.
type Session struct {
	InterviewType string
	UserName      string
	Sequence      Sequence
	// QuestionNumber is the question being asked or answered. Zero before the interview starts.
	QuestionNumber int
	State          State
	History        History
}

// Total is the number of questions of the session.
func (s Session) Total() int {
	return s.Sequence.Total()
}

// Category is the category of the current question.
func (s Session) Category() (string, error) {
	return s.Sequence.CategoryFor(s.QuestionNumber)
}

func (s Session) attrs() []slog.Attr {
	return []slog.Attr{
		slog.String("state", string(s.State)),
		slog.Int("question_number", s.QuestionNumber),
		slog.Int("total_questions", s.Total()),
	}
}

func (s Session) violation(msg string, attrs ...slog.Attr) error {
	return errors.Wrap(ErrSequenceViolation, msg, append(s.attrs(), attrs...)...)
}

// NewSession creates a session that has not started yet.
func (c *Catalog) NewSession(interviewType string, userName string, variant string) (Session, error) {
	if _, err := c.Type(interviewType); err != nil {
		return Session{}, err //nolint:exhaustruct // zero value on error.
	}
	seq, err := c.Variant(variant)
	if err != nil {
		return Session{}, err //nolint:exhaustruct // zero value on error.
	}
	return Session{
		InterviewType:  interviewType,
		UserName:       userName,
		Sequence:       seq,
		QuestionNumber: 0,
		State:          StateNotStarted,
		History:        History{},
	}, nil
}

// Restore rebuilds a session from the history a stateless client sends back.
//
// An empty history has not started. A history ending with question n awaits its answer. A history ending with the
// answer to question n awaits question n+1, or is completed when n is the last question.
func (c *Catalog) Restore(interviewType string, userName string, variant string, history History) (Session, error) {
	sess, err := c.NewSession(interviewType, userName, variant)
	if err != nil {
		return sess, err
	}
	if err = history.Validate(); err != nil {
		return sess, err
	}
	n := history.Questions()
	if n > sess.Total() {
		return sess, errors.Wrap(ErrSequenceViolation, "more questions than the variant allows",
			slog.Int("questions", n), slog.Int("total_questions", sess.Total()))
	}
	sess.History = history.Clone()
	last, ok := history.Last()
	switch {
	case !ok:
		return sess, nil
	case last.Role == RoleAsker:
		sess.QuestionNumber = n
		sess.State = StateAwaitingAnswer
	case n == sess.Total():
		sess.QuestionNumber = n
		sess.State = StateCompleted
	default:
		sess.QuestionNumber = n + 1
		sess.State = StateAwaitingQuestion
	}
	return sess, nil
}
