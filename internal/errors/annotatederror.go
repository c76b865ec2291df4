package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
)

// AnnotatedError includes more context than a plain error that is useful for troubleshooting.
type AnnotatedError struct {
	// msg is the error message.
	msg string
	// cause is the wrapped error, nil for errors created with New.
	cause error
	// pc is the program counter for the location of the error provided by runtime.Callers.
	pc uintptr
	// attrs are slog attributes that are added to the log event to provide more context for the error.
	attrs []slog.Attr
}

func callerPC() uintptr {
	var pcs [1]uintptr
	// Skip runtime.Callers, callerPC, and the exported constructor.
	runtime.Callers(3, pcs[:]) //nolint:mnd // see above
	return pcs[0]
}

// New creates a new AnnotatedError with the given message and attributes.
func New(msg string, attrs ...slog.Attr) error {
	return &AnnotatedError{
		msg:   msg,
		cause: nil,
		pc:    callerPC(),
		attrs: attrs,
	}
}

// NewSentinel creates a plain error without other context that can be used as sentinel error that can be detected
// with errors.Is.
func NewSentinel(msg string) error {
	return errors.New(msg)
}

// Wrap adds msg and attrs to err. A nil err stays nil so that Wrap can be used on the return path unconditionally.
func Wrap(err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	return &AnnotatedError{
		msg:   msg,
		cause: err,
		pc:    callerPC(),
		attrs: attrs,
	}
}

// Error implements error interface.
func (err *AnnotatedError) Error() string {
	if err.cause == nil {
		return err.msg
	}
	return fmt.Sprintf("%s: %s", err.msg, err.cause.Error())
}

// Unwrap returns the wrapped error.
func (err *AnnotatedError) Unwrap() error {
	return err.cause
}

func (err *AnnotatedError) source() slog.Attr {
	// Retrieve the source location of the error so that developers can locate it faster.
	frames := runtime.CallersFrames([]uintptr{err.pc})
	frame, _ := frames.Next()
	return slog.String("source", fmt.Sprintf("%s:%d", frame.File, frame.Line))
}

// LogValue formats the error for useful logging.
func (err *AnnotatedError) LogValue() slog.Value {
	attrs := append(
		[]slog.Attr{slog.String("msg", err.Error()), err.source()},
		err.attrs...,
	)
	return slog.GroupValue(attrs...)
}

// SlogError returns a slog attribute for err that collects the attributes of every AnnotatedError in the chain.
//
// The source points to the innermost annotated error because that is where the problem originated.
func SlogError(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	var (
		attrs  []slog.Attr
		source slog.Attr
		found  bool
	)
	for e := err; e != nil; e = errors.Unwrap(e) {
		if annotated, ok := e.(*AnnotatedError); ok {
			attrs = append(attrs, annotated.attrs...)
			source = annotated.source()
			found = true
		}
	}
	group := []any{slog.String("msg", err.Error())}
	if found {
		group = append(group, source)
	}
	for _, attr := range attrs {
		group = append(group, attr)
	}
	return slog.Group("error", group...)
}

// As exposes stdlib errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Is exposes stdlib errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// Unwrap exposes stdlib errors.Unwrap.
func Unwrap(err error) error {
	return errors.Unwrap(err)
}

// Join exposes stdlib errors.Join.
func Join(errs ...error) error {
	return errors.Join(errs...)
}
