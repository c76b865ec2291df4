package interview

import (
	"github.com/myrjola/interviewprep/internal/errors"
	"log/slog"
)

// Sequence is an interview variant: the ordered category table that fixes both the number of questions and the
// category asked at each position.
type Sequence struct {
	Name       string   `json:"variant"    yaml:"id"`
	Categories []string `json:"categories" yaml:"categories"`
}

// Total is the number of questions in the sequence.
func (s Sequence) Total() int {
	return len(s.Categories)
}

// CategoryFor returns the category asked as question n, counting from one.
func (s Sequence) CategoryFor(n int) (string, error) {
	return CategoryFor(s.Categories, n, s.Total())
}

// CategoryFor returns table[n-1]. It fails with [ErrInvalidQuestionNumber] when n is outside [1, total] or when total
// disagrees with the table.
func CategoryFor(table []string, n int, total int) (string, error) {
	if total != len(table) {
		return "", errors.Wrap(ErrInvalidQuestionNumber, "total does not match category table",
			slog.Int("total", total), slog.Int("categories", len(table)))
	}
	if n < 1 || n > total {
		return "", errors.Wrap(ErrInvalidQuestionNumber, "question number out of range",
			slog.Int("question_number", n), slog.Int("total", total))
	}
	return table[n-1], nil
}
