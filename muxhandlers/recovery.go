package muxhandlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/vitalvas/apispec/mux"
	"github.com/vitalvas/apispec/view"
)

// ErrPanic wraps values recovered from panicking handlers.
var ErrPanic = errors.New("muxhandlers: handler panicked")

// RecoveryConfig configures the Recovery middleware behaviour.
type RecoveryConfig struct {
	// ErrorHandler answers the request after a panic. When nil, the
	// error handler of the view settings in the request context is used.
	ErrorHandler view.ErrorHandler
}

// RecoveryMiddleware returns a middleware that recovers from panics in
// downstream handlers. The recovered value is wrapped in ErrPanic and
// answered like any other failed view call, which by default logs it and
// returns 500 Internal Server Error. http.ErrAbortHandler is re-raised.
func RecoveryMiddleware(cfg RecoveryConfig) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				err, ok := rec.(error)
				if ok {
					err = fmt.Errorf("%w: %w", ErrPanic, err)
				} else {
					err = fmt.Errorf("%w: %v", ErrPanic, rec)
				}

				handle := cfg.ErrorHandler
				if handle == nil {
					handle = view.SettingsFrom(r.Context()).ErrorHandler
				}
				handle(w, r, err)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
