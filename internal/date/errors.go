package date

import (
	"errors"
	"fmt"
)

var (
	ErrUnrecognizedFormat  = errors.New("unrecognized date format")
	ErrInvalidCalendarDate = errors.New("invalid calendar date")
)

// ResolutionError reports why an expression failed to resolve. Unwrap
// exposes one of the sentinel errors above for errors.Is checks.
type ResolutionError struct {
	Expr string
	Err  error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve %q: %v", e.Expr, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}
