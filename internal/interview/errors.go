package interview

import "github.com/myrjola/interviewprep/internal/errors"

var (
	// ErrInvalidQuestionNumber is returned when a question number falls outside the category table.
	ErrInvalidQuestionNumber = errors.NewSentinel("invalid question number")
	// ErrSequenceViolation is returned when an operation is not allowed in the current session state.
	ErrSequenceViolation = errors.NewSentinel("sequence violation")
	// ErrUnknownInterviewType is returned for interview types missing from the catalog.
	ErrUnknownInterviewType = errors.NewSentinel("unknown interview type")
	// ErrUnknownVariant is returned for variants missing from the catalog.
	ErrUnknownVariant = errors.NewSentinel("unknown interview variant")
	// ErrMalformedHistory is returned when caller supplied history does not follow the turn protocol.
	ErrMalformedHistory = errors.NewSentinel("malformed conversation history")
	// ErrQuestionGenerationFailed wraps vendor failures while generating a question.
	ErrQuestionGenerationFailed = errors.NewSentinel("question generation failed")
	// ErrInvalidCatalog is returned when the catalog configuration does not validate.
	ErrInvalidCatalog = errors.NewSentinel("invalid interview catalog")
)

// IsClientError reports whether err was caused by the caller rather than a collaborator.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidQuestionNumber) ||
		errors.Is(err, ErrSequenceViolation) ||
		errors.Is(err, ErrUnknownInterviewType) ||
		errors.Is(err, ErrUnknownVariant) ||
		errors.Is(err, ErrMalformedHistory)
}
