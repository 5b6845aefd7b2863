// Package middleware provides the HTTP middleware chain for the dashboard API.
//
// Every request passes through Recovery, RequestID, Logger and CORS. The
// optional layers are:
//
//   - RateLimit: a per-client token bucket built on golang.org/x/time/rate
//   - Idempotency: replays the first response to a write carrying an
//     Idempotency-Key header
//   - Compress: gzip for clients that accept it, skipped for event streams
//
// Compose them with Chain:
//
//	h := middleware.Chain(mux,
//	    middleware.Recovery,
//	    middleware.RequestID,
//	    middleware.Logger,
//	)
//
// Handlers read the request id with GetRequestID(r.Context()).
package middleware
