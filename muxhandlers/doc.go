// Package muxhandlers provides HTTP middleware for routers serving views.
//
// # Recovery Middleware
//
// RecoveryMiddleware turns handler panics into errors answered by the view
// error handler, so a panic produces the same JSON 500 response and log
// record as a failed view call.
//
//	r.Use(muxhandlers.RecoveryMiddleware(muxhandlers.RecoveryConfig{}))
//
// # Request ID Middleware
//
// RequestIDMiddleware generates or propagates a request ID header and
// stores it in the request context. RequestIDHandler adds it to slog
// records logged with that context:
//
//	logger := slog.New(muxhandlers.RequestIDHandler(slog.NewJSONHandler(os.Stdout, nil)))
//	r.Use(muxhandlers.RequestIDMiddleware(muxhandlers.RequestIDConfig{
//	    TrustIncoming: true,
//	}))
package muxhandlers
