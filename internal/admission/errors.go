package admission

import (
	"errors"
	"fmt"
)

var (
	ErrSessionNotFound = errors.New("workflow session not found")
)

// ValidationError marks malformed or out-of-range operator input. The stage
// does not advance and the message is safe to show back to the operator.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is operator input rejection rather than a
// persistence failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
