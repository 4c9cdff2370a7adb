package webargs

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/vitalvas/apispec/schema"
)

// DefaultErrorStatus is the status of argument validation failures.
const DefaultErrorStatus = http.StatusUnprocessableEntity

var (
	// ErrUnknownLocation is returned for unsupported argument locations.
	ErrUnknownLocation = errors.New("webargs: unknown location")

	// ErrMalformedBody is returned when a request body cannot be decoded.
	ErrMalformedBody = errors.New("webargs: malformed request body")
)

// Error reports arguments that failed to parse or validate.
type Error struct {
	Status   int
	Location Location
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("webargs: invalid %s arguments: %v", e.Location, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Messages returns field messages keyed by location, the shape used in
// error response bodies.
func (e *Error) Messages() map[string]any {
	var verr *schema.ValidationError
	if errors.As(e.Err, &verr) {
		return map[string]any{string(e.Location): verr.Fields}
	}
	return map[string]any{string(e.Location): map[string][]string{"_schema": {e.Err.Error()}}}
}
