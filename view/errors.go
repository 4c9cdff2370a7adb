package view

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUsage is returned at request time when annotations cannot be
	// applied to a call, such as a keyword schema that loads a list.
	ErrUsage = errors.New("view: usage error")

	// ErrConfiguration is returned at setup time for invalid handler or
	// resource definitions.
	ErrConfiguration = errors.New("view: configuration error")
)

// HTTPError is returned by handlers to answer with a status and message.
type HTTPError struct {
	Status  int
	Message string
}

// Abort returns an HTTPError. An empty message uses the status text.
func Abort(status int, message string) error {
	if message == "" {
		message = http.StatusText(status)
	}
	return &HTTPError{Status: status, Message: message}
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("view: %d %s", e.Status, e.Message)
}

func usageError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUsage, fmt.Sprintf(format, args...))
}
