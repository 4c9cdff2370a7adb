package view

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/vitalvas/apispec/mux"
	"github.com/vitalvas/apispec/webargs"
)

// FormatFunc turns a marshalled body into a response. Status and headers
// are applied by the wrapper afterwards.
type FormatFunc func(body any) (*mux.Response, error)

// ErrorHandler writes the response for a failed call.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// Settings configure how wrappers parse, format and report errors.
type Settings struct {
	// Parser reads request arguments (default: webargs.NewParser()).
	Parser webargs.Parser

	// Format builds the response from the marshalled body
	// (default: FormatJSON).
	Format FormatFunc

	// ErrorHandler answers failed calls (default: DefaultErrorHandler).
	ErrorHandler ErrorHandler

	// Logger records handler failures (default: slog.Default()).
	Logger *slog.Logger

	// DefaultStatus is used when a handler result carries no status
	// (default: 200).
	DefaultStatus int
}

type settingsKey struct{}

// WithSettings returns a context carrying s.
func WithSettings(ctx context.Context, s Settings) context.Context {
	return context.WithValue(ctx, settingsKey{}, s.withDefaults())
}

// SettingsFrom returns the settings stored in ctx, or the defaults.
func SettingsFrom(ctx context.Context) Settings {
	if ctx != nil {
		if s, ok := ctx.Value(settingsKey{}).(Settings); ok {
			return s
		}
	}
	return Settings{}.withDefaults()
}

// Middleware injects s into every request context.
func Middleware(s Settings) mux.MiddlewareFunc {
	s = s.withDefaults()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(WithSettings(r.Context(), s)))
		})
	}
}

func (s Settings) withDefaults() Settings {
	if s.Parser == nil {
		s.Parser = webargs.NewParser()
	}
	if s.Format == nil {
		s.Format = FormatJSON
	}
	if s.ErrorHandler == nil {
		s.ErrorHandler = DefaultErrorHandler
	}
	if s.Logger == nil {
		s.Logger = slog.Default()
	}
	if s.DefaultStatus == 0 {
		s.DefaultStatus = http.StatusOK
	}
	return s
}

// FormatJSON encodes body as JSON. A nil body produces an empty response.
func FormatJSON(body any) (*mux.Response, error) {
	if body == nil {
		return mux.NewResponse(http.StatusOK, nil), nil
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	resp := mux.NewResponse(http.StatusOK, append(data, '\n'))
	resp.Header.Set("Content-Type", "application/json")
	return resp, nil
}

// DefaultErrorHandler answers argument errors with their status and field
// messages, HTTPError with its status and message, and everything else with
// 500 after logging it.
func DefaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	var argErr *webargs.Error
	if errors.As(err, &argErr) {
		mux.ResponseJSON(w, argErr.Status, map[string]any{"messages": argErr.Messages()})
		return
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		mux.ResponseJSON(w, httpErr.Status, map[string]any{"message": httpErr.Message})
		return
	}

	SettingsFrom(r.Context()).Logger.ErrorContext(r.Context(), "view failed",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Any("error", err),
	)

	mux.ResponseJSON(w, http.StatusInternalServerError, map[string]any{
		"message": http.StatusText(http.StatusInternalServerError),
	})
}
