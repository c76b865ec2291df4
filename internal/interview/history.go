package interview

import (
	"github.com/myrjola/interviewprep/internal/errors"
	"log/slog"
	"strings"
)

// Role identifies who produced a [Turn]. The values match the chat roles used on the wire.
type Role string

const (
	RoleAsker     Role = "assistant"
	RoleResponder Role = "user"
)

// Turn is a single utterance in the interview.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// History is the ordered list of turns of a session.
//
// History values are treated as immutable. Methods that extend a history return a new slice and never write to the
// backing array of the receiver.
type History []Turn

// Validate checks that the history starts with the asker, alternates strictly between the asker and the responder,
// uses only known roles, and that every question has content. Responder turns may be empty because a silent answer
// is still an answer.
func (h History) Validate() error {
	for i, turn := range h {
		expected := RoleAsker
		if i%2 == 1 {
			expected = RoleResponder
		}
		if turn.Role != RoleAsker && turn.Role != RoleResponder {
			return errors.Wrap(ErrMalformedHistory, "unknown role",
				slog.Int("turn", i), slog.String("role", string(turn.Role)))
		}
		if turn.Role != expected {
			return errors.Wrap(ErrMalformedHistory, "turns must alternate starting with the interviewer",
				slog.Int("turn", i), slog.String("role", string(turn.Role)))
		}
		if turn.Role == RoleAsker && strings.TrimSpace(turn.Content) == "" {
			return errors.Wrap(ErrMalformedHistory, "question without content", slog.Int("turn", i))
		}
	}
	return nil
}

// Append returns a copy of h with turns appended.
func (h History) Append(turns ...Turn) History {
	out := make(History, 0, len(h)+len(turns))
	out = append(out, h...)
	return append(out, turns...)
}

// Clone returns a copy of h that shares no memory with it.
func (h History) Clone() History {
	return h.Append()
}

// Equal reports whether both histories contain the same turns.
func (h History) Equal(other History) bool {
	if len(h) != len(other) {
		return false
	}
	for i := range h {
		if h[i] != other[i] {
			return false
		}
	}
	return true
}

// Questions counts the asker turns.
func (h History) Questions() int {
	n := 0
	for _, turn := range h {
		if turn.Role == RoleAsker {
			n++
		}
	}
	return n
}

// Last returns the most recent turn.
func (h History) Last() (Turn, bool) {
	if len(h) == 0 {
		return Turn{}, false //nolint:exhaustruct // zero value.
	}
	return h[len(h)-1], true
}

// LastExchange returns the latest question and the answer given to it.
func (h History) LastExchange() (string, string, bool) {
	if len(h) < 2 { //nolint:mnd // question and answer.
		return "", "", false
	}
	question, answer := h[len(h)-2], h[len(h)-1]
	if question.Role != RoleAsker || answer.Role != RoleResponder {
		return "", "", false
	}
	return question.Content, answer.Content, true
}

// SplitPendingAnswer separates the trailing responder turn from the history that preceded it.
//
// Stateless callers submit the history including the answer to the latest question. The returned prefix is the
// history the session had while it was waiting for that answer.
func (h History) SplitPendingAnswer() (History, Turn, error) {
	last, ok := h.Last()
	if !ok || last.Role != RoleResponder {
		return nil, Turn{}, errors.Wrap(ErrSequenceViolation, "history does not end with an answer") //nolint:exhaustruct // zero value.
	}
	return h[:len(h)-1].Clone(), last, nil
}

// Transcript renders the history as plain text for scoring.
func (h History) Transcript() string {
	var b strings.Builder
	for i, turn := range h {
		if i > 0 {
			b.WriteString("\n\n")
		}
		switch turn.Role {
		case RoleAsker:
			b.WriteString("INTERVIEWER: ")
		case RoleResponder:
			b.WriteString("CANDIDATE: ")
		}
		b.WriteString(turn.Content)
	}
	return b.String()
}
