// Package errs defines the error kinds from the error handling design:
// each mutation path returns one of these, wrapped with context via %w so
// callers can distinguish user-facing failures from internal ones.
package errs

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Sentinel kinds. Use errors.Is(err, errs.Conflict) etc. to classify.
var (
	Validation        = errors.New("validation error")
	Conflict          = errors.New("conflict error")
	MissingReference  = errors.New("missing reference error")
	Remote            = errors.New("remote error")
	Template          = errors.New("template error")
	Integrity         = errors.New("integrity error")
	Aborted           = errors.New("aborted")
)

// Validationf wraps a formatted message as a ValidationError.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{Validation}, args...)...)
}

// Conflictf wraps a formatted message as a ConflictError.
func Conflictf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{Conflict}, args...)...)
}

// MissingReferencef wraps a formatted message as a MissingReferenceError.
func MissingReferencef(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{MissingReference}, args...)...)
}

// Remotef wraps a formatted message as a RemoteError.
func Remotef(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{Remote}, args...)...)
}

// Templatef wraps a formatted message as a TemplateError.
func Templatef(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{Template}, args...)...)
}

// Integrityf wraps a formatted message as an IntegrityError.
func Integrityf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{Integrity}, args...)...)
}

// Abortedf wraps a formatted message as an AbortedError.
func Abortedf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{Aborted}, args...)...)
}

// Is reports whether err matches kind, looking through fmt.Errorf %w chains.
func Is(err, kind error) bool { return errors.Is(err, kind) }
