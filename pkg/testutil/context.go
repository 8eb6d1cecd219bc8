package testutil

import (
	"net/http"
	"time"

	"labfhir/pkg/requestcontext"
)

// WithActor injects an authenticated caller identity into the request
// context, simulating what the auth middleware does. The actor becomes the
// recorded author on versions, edits, and audit events.
func WithActor(req *http.Request, actor string) *http.Request {
	return req.WithContext(requestcontext.WithActor(req.Context(), actor))
}

// WithRequestID injects a request ID into the request context, simulating
// the request ID middleware.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}

// WithRequestTime pins the request-scoped clock, so timestamps recorded
// during the request are deterministic.
func WithRequestTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}

// WithClientMetadata injects the client IP and User-Agent the audit trail
// records.
func WithClientMetadata(req *http.Request, clientIP, userAgent string) *http.Request {
	return req.WithContext(requestcontext.WithClientMetadata(req.Context(), clientIP, userAgent))
}
